package app

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strconv"

	"github.com/MrWong99/courtkiosk/internal/config"
	"github.com/MrWong99/courtkiosk/internal/health"
	"github.com/MrWong99/courtkiosk/internal/observe"
	"github.com/MrWong99/courtkiosk/internal/resilience"
	"github.com/MrWong99/courtkiosk/pkg/audio"
	"github.com/MrWong99/courtkiosk/pkg/provider/stt"
	"github.com/MrWong99/courtkiosk/pkg/provider/translate"
	"github.com/MrWong99/courtkiosk/pkg/provider/tts"
)

// Providers holds one interface value per provider slot. Translator may be
// nil; every other slot is required. Populated by [BuildProviders] or
// injected by tests.
type Providers struct {
	Recognizer  stt.Recognizer
	Synthesizer tts.Synthesizer
	Translator  translate.Factory
	Capturer    stt.Capturer
	Player      audio.Player

	// Checks report the circuit state of providers configured with
	// fallbacks. They are served on /readyz.
	Checks []health.Checker
}

// BuildProviders instantiates every provider named in cfg from reg. Entries
// with fallbacks are wrapped in a resilience group whose failures are
// counted in m.
func BuildProviders(cfg *config.Config, reg *config.Registry, m *observe.Metrics) (*Providers, error) {
	ps := &Providers{}
	pc := cfg.Providers
	fbCfg := func(kind string) resilience.FallbackConfig {
		return resilience.FallbackConfig{
			CircuitBreaker: resilience.CircuitBreakerConfig{
				OnStateChange: func(provider string, _, to resilience.State) {
					m.RecordCircuitTransition(context.Background(), provider, kind, to.String())
				},
			},
			OnError: func(provider string, err error) {
				m.RecordProviderError(context.Background(), provider, kind)
				slog.Debug("provider failure", "kind", kind, "provider", provider, "err", err)
			},
		}
	}

	var errs []error

	// ── STT ───────────────────────────────────────────────────────────────
	if r, err := reg.CreateSTT(pc.STT); err != nil {
		errs = append(errs, fmt.Errorf("create stt provider %q: %w", pc.STT.Name, err))
	} else if len(pc.STT.Fallbacks) == 0 {
		ps.Recognizer = r
	} else {
		g := resilience.NewRecognizerFallback(r, pc.STT.Name, fbCfg("stt"))
		for i, e := range pc.STT.Fallbacks {
			fb, err := reg.CreateSTT(e)
			if err != nil {
				errs = append(errs, fmt.Errorf("create stt fallback %q: %w", e.Name, err))
				continue
			}
			g.AddFallback(fallbackName(pc.STT, i), fb)
		}
		ps.Recognizer = g
		ps.Checks = append(ps.Checks, breakerCheck("stt", g.States))
	}

	// ── TTS ───────────────────────────────────────────────────────────────
	if s, err := reg.CreateTTS(pc.TTS); err != nil {
		errs = append(errs, fmt.Errorf("create tts provider %q: %w", pc.TTS.Name, err))
	} else if len(pc.TTS.Fallbacks) == 0 {
		ps.Synthesizer = s
	} else {
		g := resilience.NewSynthesizerFallback(s, pc.TTS.Name, fbCfg("tts"))
		for i, e := range pc.TTS.Fallbacks {
			fb, err := reg.CreateTTS(e)
			if err != nil {
				errs = append(errs, fmt.Errorf("create tts fallback %q: %w", e.Name, err))
				continue
			}
			g.AddFallback(fallbackName(pc.TTS, i), fb)
		}
		ps.Synthesizer = g
		ps.Checks = append(ps.Checks, breakerCheck("tts", g.States))
	}

	// ── Translation (optional) ────────────────────────────────────────────
	if pc.Translate.Name != "" {
		if f, err := reg.CreateTranslate(pc.Translate); err != nil {
			errs = append(errs, fmt.Errorf("create translate provider %q: %w", pc.Translate.Name, err))
		} else if len(pc.Translate.Fallbacks) == 0 {
			ps.Translator = f
		} else {
			g := resilience.NewTranslateFallback(f, pc.Translate.Name, fbCfg("translate"))
			for i, e := range pc.Translate.Fallbacks {
				fb, err := reg.CreateTranslate(e)
				if err != nil {
					errs = append(errs, fmt.Errorf("create translate fallback %q: %w", e.Name, err))
					continue
				}
				g.AddFallback(fallbackName(pc.Translate, i), fb)
			}
			ps.Translator = g
			ps.Checks = append(ps.Checks, breakerCheck("translate", g.States))
		}
	}

	// ── Capture and playback ──────────────────────────────────────────────
	if c, err := reg.CreateCapture(pc.Capture); err != nil {
		errs = append(errs, fmt.Errorf("create capture provider %q: %w", pc.Capture.Name, err))
	} else {
		ps.Capturer = c
	}
	if p, err := reg.CreateAudio(pc.Audio); err != nil {
		errs = append(errs, fmt.Errorf("create audio provider %q: %w", pc.Audio.Name, err))
	} else {
		ps.Player = p
	}

	if err := errors.Join(errs...); err != nil {
		return nil, err
	}
	for kind, e := range map[string]config.ProviderEntry{
		"stt": pc.STT, "tts": pc.TTS, "translate": pc.Translate, "capture": pc.Capture, "audio": pc.Audio,
	} {
		if e.Name != "" {
			slog.Info("provider created", "kind", kind, "name", e.Name, "fallbacks", len(e.Fallbacks))
		}
	}
	return ps, nil
}

// fallbackName labels fallback i of e, numbering names that repeat the
// primary so breaker states stay distinct.
func fallbackName(e config.ProviderEntry, i int) string {
	name := e.Fallbacks[i].Name
	if name == e.Name {
		return name + "-" + strconv.Itoa(i+1)
	}
	for j := range i {
		if e.Fallbacks[j].Name == name {
			return name + "-" + strconv.Itoa(i+1)
		}
	}
	return name
}

// breakerCheck fails when every backend of a fallback group has an open
// circuit. A failing translate group only degrades readiness.
func breakerCheck(kind string, states func() map[string]resilience.State) health.Checker {
	return health.Checker{
		Name:     kind,
		Optional: kind == "translate", // conversations fall back to English
		Check: func(context.Context) error {
			for _, st := range states() {
				if st != resilience.StateOpen {
					return nil
				}
			}
			return fmt.Errorf("%s: every backend circuit is open", kind)
		},
	}
}
