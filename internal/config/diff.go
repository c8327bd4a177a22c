package config

import "reflect"

// ConfigDiff describes what changed between two configs. Log level and
// dictation settings are applied live; everything else needs a restart.
type ConfigDiff struct {
	LogLevelChanged bool
	NewLogLevel     LogLevel

	DictationChanged bool
	Combined         bool
	TurnAttempts     int

	// RestartRequired is set when providers, records, vocabulary or the
	// listen address changed.
	RestartRequired bool
}

// Changed reports whether any hot-reloadable setting changed.
func (d ConfigDiff) Changed() bool {
	return d.LogLevelChanged || d.DictationChanged
}

// Diff compares old and new configs and returns what changed.
func Diff(old, new *Config) ConfigDiff {
	d := ConfigDiff{
		Combined:     new.Kiosk.DictationMode == DictationCombined,
		TurnAttempts: new.Kiosk.TurnAttempts,
	}

	if old.Server.LogLevel != new.Server.LogLevel {
		d.LogLevelChanged = true
		d.NewLogLevel = new.Server.LogLevel
	}
	if old.Kiosk.DictationMode != new.Kiosk.DictationMode || old.Kiosk.TurnAttempts != new.Kiosk.TurnAttempts {
		d.DictationChanged = true
	}

	if old.Server.ListenAddr != new.Server.ListenAddr ||
		!reflect.DeepEqual(old.Server.TLS, new.Server.TLS) ||
		old.Server.KioskID != new.Server.KioskID ||
		old.Server.Location != new.Server.Location ||
		old.Server.TraceSampleRatio != new.Server.TraceSampleRatio ||
		!reflect.DeepEqual(old.Providers, new.Providers) ||
		!reflect.DeepEqual(old.Records, new.Records) ||
		old.Vocabulary != new.Vocabulary ||
		!sameKioskStatic(old.Kiosk, new.Kiosk) {
		d.RestartRequired = true
	}
	return d
}

// sameKioskStatic compares the kiosk settings that are fixed at startup.
func sameKioskStatic(a, b KioskConfig) bool {
	a.DictationMode, b.DictationMode = "", ""
	a.TurnAttempts, b.TurnAttempts = 0, 0
	return reflect.DeepEqual(a, b)
}
