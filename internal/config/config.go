// Package config provides the configuration schema, loader, and provider registry
// for the court case kiosk.
package config

import (
	"log/slog"
	"time"

	"github.com/MrWong99/courtkiosk/internal/presence"
)

// LogLevel controls log verbosity for the kiosk server.
type LogLevel string

const (
	LogDebug LogLevel = "debug"
	LogInfo  LogLevel = "info"
	LogWarn  LogLevel = "warn"
	LogError LogLevel = "error"
)

// IsValid reports whether l is a recognised log level.
func (l LogLevel) IsValid() bool {
	switch l {
	case LogDebug, LogInfo, LogWarn, LogError:
		return true
	}
	return false
}

// Slog maps l to a slog level. Unknown levels map to info.
func (l LogLevel) Slog() slog.Level {
	switch l {
	case LogDebug:
		return slog.LevelDebug
	case LogWarn:
		return slog.LevelWarn
	case LogError:
		return slog.LevelError
	default:
		return slog.LevelInfo
	}
}

// DictationMode selects how the case identifier is dictated.
type DictationMode string

const (
	// DictationTurns asks for type, number and year in three turns.
	DictationTurns DictationMode = "turns"

	// DictationCombined asks for the whole identifier in one utterance and
	// falls back to turns when it cannot be parsed.
	DictationCombined DictationMode = "combined"
)

// IsValid reports whether m is a recognised dictation mode.
func (m DictationMode) IsValid() bool {
	return m == DictationTurns || m == DictationCombined
}

// RecordsBackend selects where case records are looked up.
type RecordsBackend string

const (
	RecordsJSON     RecordsBackend = "json"
	RecordsHTTP     RecordsBackend = "http"
	RecordsPostgres RecordsBackend = "postgres"
)

// IsValid reports whether b is a recognised records backend.
func (b RecordsBackend) IsValid() bool {
	switch b {
	case RecordsJSON, RecordsHTTP, RecordsPostgres:
		return true
	}
	return false
}

// Defaults applied by [ApplyDefaults].
const (
	DefaultListenAddr           = ":8080"
	DefaultLanguage             = "pa"
	DefaultTurnAttempts         = 1
	DefaultListenTimeout        = 5 * time.Second
	DefaultFallbackAudioSeconds = 3.0
	DefaultRecordsPath          = "cases.json"
	DefaultLegacyPrefix         = "2025-"
	DefaultWatchInterval        = 5 * time.Second
)

// Config is the root configuration structure for the kiosk.
// It is typically loaded from a YAML file using [Load] or [LoadFromReader].
type Config struct {
	Server     ServerConfig     `yaml:"server"`
	Kiosk      KioskConfig      `yaml:"kiosk"`
	Providers  ProvidersConfig  `yaml:"providers"`
	Records    RecordsConfig    `yaml:"records"`
	Vocabulary VocabularyConfig `yaml:"vocabulary"`
}

// ServerConfig holds network and logging settings for the kiosk server.
type ServerConfig struct {
	// ListenAddr is the TCP address the server listens on (e.g., ":8080").
	ListenAddr string `yaml:"listen_addr"`

	// LogLevel controls verbosity.
	LogLevel LogLevel `yaml:"log_level"`

	// TLS configures TLS for the server. When nil, the server runs plain HTTP.
	TLS *TLSConfig `yaml:"tls"`

	// KioskID identifies this kiosk in telemetry. Defaults to the host name.
	KioskID string `yaml:"kiosk_id"`

	// Location names where the kiosk stands, for telemetry.
	Location string `yaml:"location"`

	// TraceSampleRatio is the fraction of conversations traced, in [0, 1].
	// Zero traces everything.
	TraceSampleRatio float64 `yaml:"trace_sample_ratio"`
}

// TLSConfig holds TLS certificate paths for enabling HTTPS.
type TLSConfig struct {
	// CertFile is the path to the PEM-encoded TLS certificate.
	CertFile string `yaml:"cert_file"`

	// KeyFile is the path to the PEM-encoded TLS private key.
	KeyFile string `yaml:"key_file"`
}

// KioskConfig holds the conversation settings.
type KioskConfig struct {
	// DefaultLanguage is used when the visitor names no language.
	// One of "en", "hi", "pa".
	DefaultLanguage string `yaml:"default_language"`

	// DictationMode is "turns" (default) or "combined".
	DictationMode DictationMode `yaml:"dictation_mode"`

	// TurnAttempts is how often a turn with a recoverable error is asked
	// again. 1 means no retries.
	TurnAttempts int `yaml:"turn_attempts"`

	// ListenTimeout bounds a single capture.
	ListenTimeout time.Duration `yaml:"listen_timeout"`

	// FallbackAudioSeconds is the caption duration used when a clip's
	// length cannot be measured.
	FallbackAudioSeconds float64 `yaml:"fallback_audio_seconds"`

	// ClearCaption clears the caption after each clip. Defaults to true.
	ClearCaption *bool `yaml:"clear_caption"`

	// PresenceCooldown is the minimum time between presence triggers.
	PresenceCooldown time.Duration `yaml:"presence_cooldown"`

	Presence PresenceConfig `yaml:"presence"`

	// OriginPatterns lists the hosts allowed to open the caption WebSocket
	// from a browser on another origin.
	OriginPatterns []string `yaml:"origin_patterns"`
}

// PresenceConfig configures the presence gate.
type PresenceConfig struct {
	// Zone is the detection zone as fractions of the frame. Zero uses the
	// centre of the frame.
	Zone presence.Zone `yaml:"zone"`

	// MinFace and MaxFace bound the face box size in pixels.
	MinFace int `yaml:"min_face"`
	MaxFace int `yaml:"max_face"`
}

// ProvidersConfig selects the provider implementation for each pipeline stage.
type ProvidersConfig struct {
	STT       ProviderEntry `yaml:"stt"`
	TTS       ProviderEntry `yaml:"tts"`
	Translate ProviderEntry `yaml:"translate"`
	Capture   ProviderEntry `yaml:"capture"`
	Audio     ProviderEntry `yaml:"audio"`
}

// ProviderEntry is the configuration for a single provider instance.
type ProviderEntry struct {
	// Name is the registered provider name (e.g., "whisper", "coqui").
	Name string `yaml:"name"`

	// APIKey is the authentication key for the provider's API.
	APIKey string `yaml:"api_key"`

	// BaseURL overrides the provider's default API endpoint.
	BaseURL string `yaml:"base_url"`

	// Model selects a specific model offered by the provider.
	Model string `yaml:"model"`

	// Options holds arbitrary provider-specific configuration.
	Options map[string]any `yaml:"options"`

	// Fallbacks are tried in order when this provider fails. Only
	// recognizers, synthesizers and translators support fallbacks.
	Fallbacks []ProviderEntry `yaml:"fallbacks"`
}

// RecordsConfig selects and configures the case record store.
type RecordsConfig struct {
	// Backend is "json" (default), "http" or "postgres".
	Backend RecordsBackend `yaml:"backend"`

	// Path is the JSON database file for the json backend.
	Path string `yaml:"path"`

	// BaseURL is the case records service for the http backend.
	BaseURL string `yaml:"base_url"`

	// PostgresDSN is the connection string for the postgres backend.
	PostgresDSN string `yaml:"postgres_dsn"`

	// LegacyPrefix is prepended to zero-padded digits when an identifier
	// is not found verbatim. Defaults to "2025-"; set "-" to disable.
	LegacyPrefix string `yaml:"legacy_prefix"`

	// WatchInterval is how often the JSON file is checked for changes.
	// Negative disables watching.
	WatchInterval time.Duration `yaml:"watch_interval"`

	// Cache keeps looked-up records in memory.
	Cache bool `yaml:"cache"`
}

// VocabularyConfig points at an optional case-type vocabulary override.
type VocabularyConfig struct {
	// File is a YAML list of {key, description} entries. Empty uses the
	// built-in vocabulary.
	File string `yaml:"file"`
}

// ClearCaptionEnabled reports whether captions are cleared after each clip.
func (k KioskConfig) ClearCaptionEnabled() bool {
	return k.ClearCaption == nil || *k.ClearCaption
}

// FallbackAudio returns the fallback caption duration.
func (k KioskConfig) FallbackAudio() time.Duration {
	return time.Duration(k.FallbackAudioSeconds * float64(time.Second))
}
