package config

import (
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"slices"

	"gopkg.in/yaml.v3"

	"github.com/MrWong99/courtkiosk/internal/presence"
	"github.com/MrWong99/courtkiosk/pkg/caseid"
)

// ValidProviderNames lists known provider names per provider kind.
// Used by [Validate] to warn about unrecognised provider names.
var ValidProviderNames = map[string][]string{
	"stt":       {"whisper", "openai"},
	"tts":       {"coqui", "openai"},
	"translate": {"libre", "openai", "anthropic", "ollama", "gemini", "deepseek", "mistral", "groq", "llamacpp", "llamafile"},
	"capture":   {"command"},
	"audio":     {"command", "timer"},
}

// Load reads the YAML configuration file at path and returns a validated [Config]
// with defaults applied. It is a convenience wrapper around [LoadFromReader].
func Load(path string) (*Config, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("config: open %q: %w", path, err)
	}
	defer f.Close()

	cfg, err := LoadFromReader(f)
	if err != nil {
		return nil, fmt.Errorf("config: parse %q: %w", path, err)
	}
	return cfg, nil
}

// LoadFromReader decodes a YAML config from r, applies defaults and validates
// the result. Useful in tests where configs are constructed from string literals.
func LoadFromReader(r io.Reader) (*Config, error) {
	cfg := &Config{}
	dec := yaml.NewDecoder(r)
	dec.KnownFields(true)
	if err := dec.Decode(cfg); err != nil && !errors.Is(err, io.EOF) {
		return nil, fmt.Errorf("config: decode yaml: %w", err)
	}
	ApplyDefaults(cfg)
	if err := Validate(cfg); err != nil {
		return nil, err
	}
	return cfg, nil
}

// ApplyDefaults fills unset fields with their defaults.
func ApplyDefaults(cfg *Config) {
	if cfg.Server.ListenAddr == "" {
		cfg.Server.ListenAddr = DefaultListenAddr
	}
	if cfg.Server.LogLevel == "" {
		cfg.Server.LogLevel = LogInfo
	}

	k := &cfg.Kiosk
	if k.DefaultLanguage == "" {
		k.DefaultLanguage = DefaultLanguage
	}
	if k.DictationMode == "" {
		k.DictationMode = DictationTurns
	}
	if k.TurnAttempts == 0 {
		k.TurnAttempts = DefaultTurnAttempts
	}
	if k.ListenTimeout == 0 {
		k.ListenTimeout = DefaultListenTimeout
	}
	if k.FallbackAudioSeconds == 0 {
		k.FallbackAudioSeconds = DefaultFallbackAudioSeconds
	}

	if cfg.Providers.Capture.Name == "" {
		cfg.Providers.Capture.Name = "command"
	}
	if cfg.Providers.Audio.Name == "" {
		cfg.Providers.Audio.Name = "command"
	}

	rc := &cfg.Records
	if rc.Backend == "" {
		rc.Backend = RecordsJSON
	}
	if rc.Backend == RecordsJSON && rc.Path == "" {
		rc.Path = DefaultRecordsPath
	}
	if rc.LegacyPrefix == "" {
		rc.LegacyPrefix = DefaultLegacyPrefix
	}
	if rc.WatchInterval == 0 {
		rc.WatchInterval = DefaultWatchInterval
	}
}

// Validate checks that cfg contains a coherent set of values.
// It returns a joined error listing all validation failures found.
func Validate(cfg *Config) error {
	var errs []error

	// Server
	if cfg.Server.LogLevel != "" && !cfg.Server.LogLevel.IsValid() {
		errs = append(errs, fmt.Errorf("server.log_level %q is invalid; valid values: debug, info, warn, error", cfg.Server.LogLevel))
	}
	if tls := cfg.Server.TLS; tls != nil && (tls.CertFile == "" || tls.KeyFile == "") {
		errs = append(errs, errors.New("server.tls requires both cert_file and key_file"))
	}
	if r := cfg.Server.TraceSampleRatio; r < 0 || r > 1 {
		errs = append(errs, fmt.Errorf("server.trace_sample_ratio %v must be between 0 and 1", r))
	}

	// Kiosk
	k := cfg.Kiosk
	if k.DefaultLanguage != "" {
		if _, ok := caseid.ParseLanguage(k.DefaultLanguage); !ok {
			errs = append(errs, fmt.Errorf("kiosk.default_language %q is invalid; valid values: en, hi, pa", k.DefaultLanguage))
		}
	}
	if k.DictationMode != "" && !k.DictationMode.IsValid() {
		errs = append(errs, fmt.Errorf("kiosk.dictation_mode %q is invalid; valid values: turns, combined", k.DictationMode))
	}
	if k.TurnAttempts < 0 {
		errs = append(errs, fmt.Errorf("kiosk.turn_attempts %d must not be negative", k.TurnAttempts))
	}
	if k.ListenTimeout < 0 {
		errs = append(errs, fmt.Errorf("kiosk.listen_timeout %v must not be negative", k.ListenTimeout))
	}
	if k.FallbackAudioSeconds < 0 {
		errs = append(errs, fmt.Errorf("kiosk.fallback_audio_seconds %.2f must not be negative", k.FallbackAudioSeconds))
	}
	if k.PresenceCooldown < 0 {
		errs = append(errs, fmt.Errorf("kiosk.presence_cooldown %v must not be negative", k.PresenceCooldown))
	}
	p := k.Presence
	if p.Zone != (presence.Zone{}) {
		if err := p.Zone.Validate(); err != nil {
			errs = append(errs, fmt.Errorf("kiosk.presence.zone: %w", err))
		}
	}
	if p.MinFace < 0 || p.MaxFace < 0 {
		errs = append(errs, errors.New("kiosk.presence face bounds must not be negative"))
	}
	if p.MinFace > 0 && p.MaxFace > 0 && p.MinFace > p.MaxFace {
		errs = append(errs, fmt.Errorf("kiosk.presence.min_face %d exceeds max_face %d", p.MinFace, p.MaxFace))
	}

	// Providers
	if cfg.Providers.STT.Name == "" {
		errs = append(errs, errors.New("providers.stt is required"))
	}
	if cfg.Providers.TTS.Name == "" {
		errs = append(errs, errors.New("providers.tts is required"))
	}
	if cfg.Providers.Translate.Name == "" {
		slog.Warn("providers.translate is not configured; prompts and narrations will be spoken in English")
	}
	validateProviderEntry("stt", "providers.stt", cfg.Providers.STT, true)
	validateProviderEntry("tts", "providers.tts", cfg.Providers.TTS, true)
	validateProviderEntry("translate", "providers.translate", cfg.Providers.Translate, true)
	validateProviderEntry("capture", "providers.capture", cfg.Providers.Capture, false)
	validateProviderEntry("audio", "providers.audio", cfg.Providers.Audio, false)
	for _, kind := range []struct {
		name  string
		entry ProviderEntry
	}{
		{"capture", cfg.Providers.Capture},
		{"audio", cfg.Providers.Audio},
	} {
		if len(kind.entry.Fallbacks) > 0 {
			errs = append(errs, fmt.Errorf("providers.%s does not support fallbacks", kind.name))
		}
	}
	for _, kind := range []struct {
		name  string
		entry ProviderEntry
	}{
		{"stt", cfg.Providers.STT},
		{"tts", cfg.Providers.TTS},
		{"translate", cfg.Providers.Translate},
	} {
		for i, fb := range kind.entry.Fallbacks {
			if fb.Name == "" {
				errs = append(errs, fmt.Errorf("providers.%s.fallbacks[%d].name is required", kind.name, i))
			}
			if len(fb.Fallbacks) > 0 {
				errs = append(errs, fmt.Errorf("providers.%s.fallbacks[%d] must not declare nested fallbacks", kind.name, i))
			}
		}
	}

	// Records
	rc := cfg.Records
	switch {
	case rc.Backend != "" && !rc.Backend.IsValid():
		errs = append(errs, fmt.Errorf("records.backend %q is invalid; valid values: json, http, postgres", rc.Backend))
	case rc.Backend == RecordsHTTP && rc.BaseURL == "":
		errs = append(errs, errors.New("records.base_url is required when backend is http"))
	case rc.Backend == RecordsPostgres && rc.PostgresDSN == "":
		errs = append(errs, errors.New("records.postgres_dsn is required when backend is postgres"))
	}
	if rc.Backend != RecordsJSON && rc.Path != "" {
		slog.Warn("records.path is ignored unless backend is json", "backend", rc.Backend)
	}

	return errors.Join(errs...)
}

// validateProviderEntry logs a warning if the entry or one of its fallbacks
// names a provider not found in the [ValidProviderNames] list for kind.
func validateProviderEntry(kind, path string, e ProviderEntry, withFallbacks bool) {
	validateProviderName(kind, path, e.Name)
	if !withFallbacks {
		return
	}
	for i, fb := range e.Fallbacks {
		validateProviderName(kind, fmt.Sprintf("%s.fallbacks[%d]", path, i), fb.Name)
	}
}

// validateProviderName logs a warning if name is non-empty and not found in
// the [ValidProviderNames] list for the given kind.
func validateProviderName(kind, path, name string) {
	if name == "" {
		return
	}
	known, ok := ValidProviderNames[kind]
	if !ok {
		return
	}
	if slices.Contains(known, name) {
		return
	}
	slog.Warn("unknown provider name, may be a typo or third-party provider",
		"kind", kind,
		"path", path,
		"name", name,
		"known", known,
	)
}
