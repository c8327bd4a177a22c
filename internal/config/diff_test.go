package config_test

import (
	"testing"

	"github.com/MrWong99/courtkiosk/internal/config"
)

func TestDiff_NoChanges(t *testing.T) {
	t.Parallel()
	cfg := validConfig()
	d := config.Diff(cfg, cfg)
	if d.Changed() {
		t.Errorf("expected no hot changes, got %+v", d)
	}
	if d.RestartRequired {
		t.Error("expected RestartRequired=false for identical configs")
	}
}

func TestDiff_LogLevelChanged(t *testing.T) {
	t.Parallel()
	old, new := validConfig(), validConfig()
	new.Server.LogLevel = config.LogDebug

	d := config.Diff(old, new)
	if !d.LogLevelChanged {
		t.Error("expected LogLevelChanged=true")
	}
	if d.NewLogLevel != config.LogDebug {
		t.Errorf("expected NewLogLevel=debug, got %q", d.NewLogLevel)
	}
	if d.RestartRequired {
		t.Error("log level changes must not require a restart")
	}
}

func TestDiff_DictationChanged(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name   string
		mutate func(*config.Config)
	}{
		{"mode", func(c *config.Config) { c.Kiosk.DictationMode = config.DictationCombined }},
		{"attempts", func(c *config.Config) { c.Kiosk.TurnAttempts = 3 }},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			old, new := validConfig(), validConfig()
			tt.mutate(new)
			d := config.Diff(old, new)
			if !d.DictationChanged || !d.Changed() {
				t.Errorf("expected DictationChanged, got %+v", d)
			}
			if d.RestartRequired {
				t.Error("dictation changes must not require a restart")
			}
			if d.Combined != (new.Kiosk.DictationMode == config.DictationCombined) || d.TurnAttempts != new.Kiosk.TurnAttempts {
				t.Errorf("diff carries %v/%d", d.Combined, d.TurnAttempts)
			}
		})
	}
}

func TestDiff_RestartRequired(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name   string
		mutate func(*config.Config)
	}{
		{"listen addr", func(c *config.Config) { c.Server.ListenAddr = ":9999" }},
		{"tls", func(c *config.Config) { c.Server.TLS = &config.TLSConfig{CertFile: "c", KeyFile: "k"} }},
		{"kiosk id", func(c *config.Config) { c.Server.KioskID = "lobby-2" }},
		{"stt provider", func(c *config.Config) { c.Providers.STT.Name = "openai" }},
		{"tts fallback", func(c *config.Config) {
			c.Providers.TTS.Fallbacks = []config.ProviderEntry{{Name: "openai"}}
		}},
		{"records backend", func(c *config.Config) { c.Records.Cache = true }},
		{"vocabulary", func(c *config.Config) { c.Vocabulary.File = "types.yaml" }},
		{"default language", func(c *config.Config) { c.Kiosk.DefaultLanguage = "en" }},
		{"presence", func(c *config.Config) { c.Kiosk.Presence.MinFace = 100 }},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			old, new := validConfig(), validConfig()
			tt.mutate(new)
			d := config.Diff(old, new)
			if !d.RestartRequired {
				t.Errorf("expected RestartRequired, got %+v", d)
			}
			if d.Changed() {
				t.Errorf("expected no hot changes, got %+v", d)
			}
		})
	}
}
