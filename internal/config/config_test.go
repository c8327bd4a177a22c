package config_test

import (
	"context"
	"errors"
	"log/slog"
	"slices"
	"strings"
	"testing"
	"time"

	"github.com/MrWong99/courtkiosk/internal/config"
	"github.com/MrWong99/courtkiosk/pkg/audio"
	"github.com/MrWong99/courtkiosk/pkg/provider/stt"
	sttmock "github.com/MrWong99/courtkiosk/pkg/provider/stt/mock"
	"github.com/MrWong99/courtkiosk/pkg/provider/translate"
	translatemock "github.com/MrWong99/courtkiosk/pkg/provider/translate/mock"
	"github.com/MrWong99/courtkiosk/pkg/provider/tts"
	ttsmock "github.com/MrWong99/courtkiosk/pkg/provider/tts/mock"
)

// ── helpers ──────────────────────────────────────────────────────────────────

const sampleYAML = `
server:
  listen_addr: ":9090"
  log_level: debug

kiosk:
  default_language: hi
  dictation_mode: combined
  turn_attempts: 2
  listen_timeout: 7s
  fallback_audio_seconds: 2.5
  clear_caption: false
  presence_cooldown: 15s
  presence:
    zone: {left: 0.25, right: 0.75, top: 0.1, bottom: 0.9}
    min_face: 120
    max_face: 260
  origin_patterns: ["display.local"]

providers:
  stt:
    name: whisper
    base_url: http://localhost:8178
    fallbacks:
      - name: openai
        api_key: sk-test
        model: whisper-1
  tts:
    name: coqui
    base_url: http://localhost:5002
    options:
      api_mode: xtts
  translate:
    name: libre
    base_url: http://localhost:5000
    fallbacks:
      - name: openai
        model: gpt-4o-mini
  capture:
    name: command
    options:
      command: ["arecord", "-q", "-f", "S16_LE"]
  audio:
    name: timer

records:
  backend: http
  base_url: http://records.local
  legacy_prefix: "2024-"
  cache: true

vocabulary:
  file: /etc/courtkiosk/types.yaml
`

const minimalYAML = `
providers:
  stt:
    name: whisper
  tts:
    name: coqui
`

// ── YAML loading ──────────────────────────────────────────────────────────────

func TestLoadFromReader_Valid(t *testing.T) {
	t.Parallel()

	cfg, err := config.LoadFromReader(strings.NewReader(sampleYAML))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if cfg.Server.ListenAddr != ":9090" {
		t.Errorf("server.listen_addr: got %q, want %q", cfg.Server.ListenAddr, ":9090")
	}
	if cfg.Server.LogLevel != config.LogDebug {
		t.Errorf("server.log_level: got %q, want %q", cfg.Server.LogLevel, config.LogDebug)
	}

	k := cfg.Kiosk
	if k.DefaultLanguage != "hi" {
		t.Errorf("kiosk.default_language: got %q", k.DefaultLanguage)
	}
	if k.DictationMode != config.DictationCombined {
		t.Errorf("kiosk.dictation_mode: got %q", k.DictationMode)
	}
	if k.TurnAttempts != 2 {
		t.Errorf("kiosk.turn_attempts: got %d", k.TurnAttempts)
	}
	if k.ListenTimeout != 7*time.Second {
		t.Errorf("kiosk.listen_timeout: got %v", k.ListenTimeout)
	}
	if got := k.FallbackAudio(); got != 2500*time.Millisecond {
		t.Errorf("FallbackAudio: got %v", got)
	}
	if k.ClearCaptionEnabled() {
		t.Error("ClearCaptionEnabled: got true, want false")
	}
	if k.PresenceCooldown != 15*time.Second {
		t.Errorf("kiosk.presence_cooldown: got %v", k.PresenceCooldown)
	}
	if k.Presence.Zone.Left != 0.25 || k.Presence.MaxFace != 260 {
		t.Errorf("kiosk.presence: got %+v", k.Presence)
	}
	if !slices.Equal(k.OriginPatterns, []string{"display.local"}) {
		t.Errorf("kiosk.origin_patterns: got %v", k.OriginPatterns)
	}

	p := cfg.Providers
	if p.STT.Name != "whisper" || len(p.STT.Fallbacks) != 1 || p.STT.Fallbacks[0].Model != "whisper-1" {
		t.Errorf("providers.stt: got %+v", p.STT)
	}
	if p.TTS.Options["api_mode"] != "xtts" {
		t.Errorf("providers.tts.options: got %v", p.TTS.Options)
	}
	if p.Translate.Name != "libre" || p.Translate.Fallbacks[0].Name != "openai" {
		t.Errorf("providers.translate: got %+v", p.Translate)
	}
	if p.Audio.Name != "timer" {
		t.Errorf("providers.audio: got %q", p.Audio.Name)
	}

	if cfg.Records.Backend != config.RecordsHTTP || cfg.Records.BaseURL != "http://records.local" || !cfg.Records.Cache {
		t.Errorf("records: got %+v", cfg.Records)
	}
	if cfg.Records.LegacyPrefix != "2024-" {
		t.Errorf("records.legacy_prefix: got %q", cfg.Records.LegacyPrefix)
	}
	if cfg.Vocabulary.File != "/etc/courtkiosk/types.yaml" {
		t.Errorf("vocabulary.file: got %q", cfg.Vocabulary.File)
	}
}

func TestLoadFromReader_Defaults(t *testing.T) {
	t.Parallel()

	cfg, err := config.LoadFromReader(strings.NewReader(minimalYAML))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if cfg.Server.ListenAddr != config.DefaultListenAddr {
		t.Errorf("listen_addr: got %q", cfg.Server.ListenAddr)
	}
	if cfg.Server.LogLevel != config.LogInfo {
		t.Errorf("log_level: got %q", cfg.Server.LogLevel)
	}
	k := cfg.Kiosk
	if k.DefaultLanguage != "pa" {
		t.Errorf("default_language: got %q, want pa", k.DefaultLanguage)
	}
	if k.DictationMode != config.DictationTurns {
		t.Errorf("dictation_mode: got %q", k.DictationMode)
	}
	if k.TurnAttempts != 1 {
		t.Errorf("turn_attempts: got %d", k.TurnAttempts)
	}
	if k.ListenTimeout != 5*time.Second {
		t.Errorf("listen_timeout: got %v", k.ListenTimeout)
	}
	if k.FallbackAudio() != 3*time.Second {
		t.Errorf("FallbackAudio: got %v", k.FallbackAudio())
	}
	if !k.ClearCaptionEnabled() {
		t.Error("ClearCaptionEnabled: got false, want true")
	}
	if cfg.Providers.Capture.Name != "command" || cfg.Providers.Audio.Name != "command" {
		t.Errorf("capture/audio defaults: got %q/%q", cfg.Providers.Capture.Name, cfg.Providers.Audio.Name)
	}
	rc := cfg.Records
	if rc.Backend != config.RecordsJSON || rc.Path != config.DefaultRecordsPath {
		t.Errorf("records defaults: got %+v", rc)
	}
	if rc.LegacyPrefix != "2025-" || rc.WatchInterval != 5*time.Second {
		t.Errorf("records defaults: got %+v", rc)
	}
}

func TestLoadFromReader_UnknownField(t *testing.T) {
	t.Parallel()

	_, err := config.LoadFromReader(strings.NewReader(minimalYAML + "\nkiosks: []\n"))
	if err == nil {
		t.Fatal("expected error for unknown top-level field")
	}
}

func TestLoadFromReader_InvalidYAML(t *testing.T) {
	t.Parallel()

	_, err := config.LoadFromReader(strings.NewReader("server: [unterminated"))
	if err == nil {
		t.Fatal("expected decode error")
	}
}

// ── Validation ────────────────────────────────────────────────────────────────

func validConfig() *config.Config {
	cfg := &config.Config{
		Providers: config.ProvidersConfig{
			STT: config.ProviderEntry{Name: "whisper"},
			TTS: config.ProviderEntry{Name: "coqui"},
		},
	}
	config.ApplyDefaults(cfg)
	return cfg
}

func TestValidate(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name    string
		mutate  func(*config.Config)
		wantErr string
	}{
		{name: "valid", mutate: func(*config.Config) {}},
		{
			name:    "bad log level",
			mutate:  func(c *config.Config) { c.Server.LogLevel = "verbose" },
			wantErr: "server.log_level",
		},
		{
			name:    "tls without key",
			mutate:  func(c *config.Config) { c.Server.TLS = &config.TLSConfig{CertFile: "cert.pem"} },
			wantErr: "server.tls",
		},
		{
			name:    "sample ratio above one",
			mutate:  func(c *config.Config) { c.Server.TraceSampleRatio = 1.5 },
			wantErr: "server.trace_sample_ratio",
		},
		{
			name:    "bad language",
			mutate:  func(c *config.Config) { c.Kiosk.DefaultLanguage = "fr" },
			wantErr: "kiosk.default_language",
		},
		{
			name:    "bad dictation mode",
			mutate:  func(c *config.Config) { c.Kiosk.DictationMode = "spelled" },
			wantErr: "kiosk.dictation_mode",
		},
		{
			name:    "negative attempts",
			mutate:  func(c *config.Config) { c.Kiosk.TurnAttempts = -1 },
			wantErr: "kiosk.turn_attempts",
		},
		{
			name: "bad zone",
			mutate: func(c *config.Config) {
				c.Kiosk.Presence.Zone.Left, c.Kiosk.Presence.Zone.Right = 0.8, 0.2
			},
			wantErr: "kiosk.presence.zone",
		},
		{
			name: "face range inverted",
			mutate: func(c *config.Config) {
				c.Kiosk.Presence.MinFace, c.Kiosk.Presence.MaxFace = 300, 100
			},
			wantErr: "min_face",
		},
		{
			name:    "missing stt",
			mutate:  func(c *config.Config) { c.Providers.STT.Name = "" },
			wantErr: "providers.stt is required",
		},
		{
			name:    "missing tts",
			mutate:  func(c *config.Config) { c.Providers.TTS.Name = "" },
			wantErr: "providers.tts is required",
		},
		{
			name: "unnamed fallback",
			mutate: func(c *config.Config) {
				c.Providers.STT.Fallbacks = []config.ProviderEntry{{}}
			},
			wantErr: "providers.stt.fallbacks[0].name",
		},
		{
			name: "nested fallback",
			mutate: func(c *config.Config) {
				c.Providers.TTS.Fallbacks = []config.ProviderEntry{{
					Name:      "openai",
					Fallbacks: []config.ProviderEntry{{Name: "coqui"}},
				}}
			},
			wantErr: "nested fallbacks",
		},
		{
			name: "audio fallback",
			mutate: func(c *config.Config) {
				c.Providers.Audio.Fallbacks = []config.ProviderEntry{{Name: "timer"}}
			},
			wantErr: "providers.audio does not support fallbacks",
		},
		{
			name:    "bad backend",
			mutate:  func(c *config.Config) { c.Records.Backend = "mysql" },
			wantErr: "records.backend",
		},
		{
			name:    "http without url",
			mutate:  func(c *config.Config) { c.Records.Backend = config.RecordsHTTP },
			wantErr: "records.base_url",
		},
		{
			name:    "postgres without dsn",
			mutate:  func(c *config.Config) { c.Records.Backend = config.RecordsPostgres },
			wantErr: "records.postgres_dsn",
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			cfg := validConfig()
			tt.mutate(cfg)
			err := config.Validate(cfg)
			if tt.wantErr == "" {
				if err != nil {
					t.Fatalf("unexpected error: %v", err)
				}
				return
			}
			if err == nil || !strings.Contains(err.Error(), tt.wantErr) {
				t.Fatalf("Validate() = %v, want error containing %q", err, tt.wantErr)
			}
		})
	}
}

func TestValidate_JoinsErrors(t *testing.T) {
	t.Parallel()

	cfg := &config.Config{
		Server: config.ServerConfig{LogLevel: "loud"},
		Kiosk:  config.KioskConfig{DictationMode: "spelled"},
	}
	err := config.Validate(cfg)
	if err == nil {
		t.Fatal("expected error")
	}
	for _, want := range []string{"server.log_level", "kiosk.dictation_mode", "providers.stt", "providers.tts"} {
		if !strings.Contains(err.Error(), want) {
			t.Errorf("error %q does not mention %q", err, want)
		}
	}
}

func TestEnums(t *testing.T) {
	t.Parallel()

	if !config.LogWarn.IsValid() || config.LogLevel("trace").IsValid() {
		t.Error("LogLevel.IsValid mismatch")
	}
	if config.LogDebug.Slog() != slog.LevelDebug || config.LogLevel("").Slog() != slog.LevelInfo {
		t.Error("LogLevel.Slog mismatch")
	}
	if !config.DictationCombined.IsValid() || config.DictationMode("").IsValid() {
		t.Error("DictationMode.IsValid mismatch")
	}
	if !config.RecordsPostgres.IsValid() || config.RecordsBackend("sqlite").IsValid() {
		t.Error("RecordsBackend.IsValid mismatch")
	}
}

// ── Registry ─────────────────────────────────────────────────────────────────

func TestRegistry_CreateRegistered(t *testing.T) {
	t.Parallel()

	reg := config.NewRegistry()
	reg.RegisterSTT("fake", func(e config.ProviderEntry) (stt.Recognizer, error) {
		return &sttmock.Recognizer{}, nil
	})
	reg.RegisterTTS("fake", func(config.ProviderEntry) (tts.Synthesizer, error) {
		return &ttsmock.Synthesizer{}, nil
	})
	reg.RegisterTranslate("fake", func(config.ProviderEntry) (translate.Factory, error) {
		return &translatemock.Factory{}, nil
	})
	reg.RegisterCapture("fake", func(config.ProviderEntry) (stt.Capturer, error) {
		return &sttmock.Capturer{}, nil
	})
	reg.RegisterAudio("fake", func(config.ProviderEntry) (audio.Player, error) {
		return audio.TimerPlayer{}, nil
	})

	entry := config.ProviderEntry{Name: "fake"}
	if r, err := reg.CreateSTT(entry); err != nil || r == nil {
		t.Errorf("CreateSTT: %v, %v", r, err)
	}
	if s, err := reg.CreateTTS(entry); err != nil || s == nil {
		t.Errorf("CreateTTS: %v, %v", s, err)
	}
	if f, err := reg.CreateTranslate(entry); err != nil || f == nil {
		t.Errorf("CreateTranslate: %v, %v", f, err)
	}
	if c, err := reg.CreateCapture(entry); err != nil || c == nil {
		t.Errorf("CreateCapture: %v, %v", c, err)
	}
	if p, err := reg.CreateAudio(entry); err != nil || p == nil {
		t.Errorf("CreateAudio: %v, %v", p, err)
	}
	if got := reg.Names("stt"); !slices.Equal(got, []string{"fake"}) {
		t.Errorf("Names(stt) = %v", got)
	}
}

func TestRegistry_NotRegistered(t *testing.T) {
	t.Parallel()

	reg := config.NewRegistry()
	entry := config.ProviderEntry{Name: "missing"}

	checks := map[string]error{}
	_, checks["stt"] = reg.CreateSTT(entry)
	_, checks["tts"] = reg.CreateTTS(entry)
	_, checks["translate"] = reg.CreateTranslate(entry)
	_, checks["capture"] = reg.CreateCapture(entry)
	_, checks["audio"] = reg.CreateAudio(entry)
	for kind, err := range checks {
		if !errors.Is(err, config.ErrProviderNotRegistered) {
			t.Errorf("%s: got %v, want ErrProviderNotRegistered", kind, err)
		}
		if err != nil && !strings.Contains(err.Error(), kind+`/"missing"`) {
			t.Errorf("%s: error %q does not name the provider", kind, err)
		}
	}
}

func TestRegistry_FactoryErrorPropagates(t *testing.T) {
	t.Parallel()

	reg := config.NewRegistry()
	boom := errors.New("boom")
	reg.RegisterTTS("broken", func(config.ProviderEntry) (tts.Synthesizer, error) {
		return nil, boom
	})
	if _, err := reg.CreateTTS(config.ProviderEntry{Name: "broken"}); !errors.Is(err, boom) {
		t.Errorf("CreateTTS error = %v, want boom", err)
	}
}

func TestRegistry_ReceivesEntry(t *testing.T) {
	t.Parallel()

	reg := config.NewRegistry()
	var got config.ProviderEntry
	reg.RegisterSTT("capture-entry", func(e config.ProviderEntry) (stt.Recognizer, error) {
		got = e
		return &sttmock.Recognizer{Default: sttmock.Result{Text: "ok"}}, nil
	})
	want := config.ProviderEntry{Name: "capture-entry", APIKey: "k", BaseURL: "http://x", Model: "m"}
	r, err := reg.CreateSTT(want)
	if err != nil {
		t.Fatalf("CreateSTT: %v", err)
	}
	if got.APIKey != "k" || got.BaseURL != "http://x" || got.Model != "m" {
		t.Errorf("factory received %+v", got)
	}
	if _, err := r.Recognize(context.Background(), stt.Capture{}, "en"); err != nil {
		t.Errorf("mock Recognize: %v", err)
	}
}
