// Package app wires all kiosk subsystems into a running application.
//
// The App struct owns the full lifecycle: New creates and connects all
// subsystems, Run serves HTTP until the context ends, and Shutdown tears
// everything down in order.
//
// For testing, inject mock implementations via functional options
// (WithStore, WithMetrics, etc.). When an option is not provided, New creates
// real implementations from the config.
package app

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"sync"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/MrWong99/courtkiosk/internal/captionfeed"
	"github.com/MrWong99/courtkiosk/internal/config"
	"github.com/MrWong99/courtkiosk/internal/health"
	"github.com/MrWong99/courtkiosk/internal/kiosk"
	"github.com/MrWong99/courtkiosk/internal/observe"
	"github.com/MrWong99/courtkiosk/internal/presence"
	"github.com/MrWong99/courtkiosk/internal/records"
	"github.com/MrWong99/courtkiosk/pkg/audio"
	"github.com/MrWong99/courtkiosk/pkg/caption"
	"github.com/MrWong99/courtkiosk/pkg/caseid"
	"github.com/MrWong99/courtkiosk/pkg/provider/stt"
)

// shutdownGrace bounds the HTTP server drain when Run's context ends.
const shutdownGrace = 10 * time.Second

// App owns all subsystem lifetimes and serves the kiosk over HTTP.
type App struct {
	cfg       *config.Config
	providers *Providers
	metrics   *observe.Metrics

	// Subsystems, initialised in New and torn down in Shutdown.
	store     records.Store
	storeName string
	vocab     *caseid.Vocabulary
	hub       *captionfeed.Hub
	kiosk     *kiosk.Kiosk
	health    *health.Handler
	handler   http.Handler
	server    *http.Server
	watcher   *config.Watcher
	clock     caption.Clock

	configPath string
	levelVar   *slog.LevelVar

	// closers are called in order during Shutdown.
	closers []func() error

	// stopOnce guards the Shutdown path.
	stopOnce sync.Once
}

// Option is a functional option for New. Use these to inject test doubles.
type Option func(*App)

// WithStore injects a record store instead of opening the configured backend.
func WithStore(s records.Store) Option {
	return func(a *App) { a.store = s }
}

// WithMetrics sets the metrics recorder. Defaults to observe.DefaultMetrics().
func WithMetrics(m *observe.Metrics) Option {
	return func(a *App) { a.metrics = m }
}

// WithConfigPath enables hot reload of the file at path.
func WithConfigPath(path string) Option {
	return func(a *App) { a.configPath = path }
}

// WithLogLevel lets hot reload change the level of the process logger.
func WithLogLevel(lv *slog.LevelVar) Option {
	return func(a *App) { a.levelVar = lv }
}

// WithVocabulary injects a case-type vocabulary instead of loading one from
// config.
func WithVocabulary(v *caseid.Vocabulary) Option {
	return func(a *App) { a.vocab = v }
}

// WithClock replaces the caption pacer's clock.
func WithClock(c caption.Clock) Option {
	return func(a *App) { a.clock = c }
}

// ─── New ─────────────────────────────────────────────────────────────────────

// New creates an App by wiring all subsystems together. The providers struct
// comes from [BuildProviders] or from tests.
func New(ctx context.Context, cfg *config.Config, providers *Providers, opts ...Option) (*App, error) {
	if providers == nil {
		return nil, errors.New("app: providers are required")
	}
	a := &App{
		cfg:       cfg,
		providers: providers,
	}
	for _, o := range opts {
		o(a)
	}
	if a.metrics == nil {
		a.metrics = observe.DefaultMetrics()
	}

	// ── 1. Vocabulary ────────────────────────────────────────────────────
	if a.vocab == nil {
		if f := cfg.Vocabulary.File; f != "" {
			v, err := caseid.LoadVocabulary(f)
			if err != nil {
				return nil, fmt.Errorf("app: load vocabulary: %w", err)
			}
			a.vocab = v
			slog.Info("vocabulary loaded", "path", f, "types", v.Len())
		} else {
			a.vocab = caseid.DefaultVocabulary()
		}
	}

	// ── 2. Record store ──────────────────────────────────────────────────
	if err := a.initRecords(ctx); err != nil {
		a.closeAll()
		return nil, fmt.Errorf("app: init records: %w", err)
	}

	// ── 3. Caption feed ──────────────────────────────────────────────────
	hubOpts := []captionfeed.Option{
		captionfeed.WithClientObserver(func(delta int64) {
			a.metrics.DisplayClients.Add(context.Background(), delta)
		}),
	}
	if len(cfg.Kiosk.OriginPatterns) > 0 {
		hubOpts = append(hubOpts, captionfeed.WithOriginPatterns(cfg.Kiosk.OriginPatterns...))
	}
	a.hub = captionfeed.New(hubOpts...)

	// ── 4. Kiosk ─────────────────────────────────────────────────────────
	if err := a.initKiosk(); err != nil {
		a.closeAll()
		return nil, fmt.Errorf("app: init kiosk: %w", err)
	}

	// ── 5. Health + routes ───────────────────────────────────────────────
	checks := append([]health.Checker{{Name: "records", Check: a.recordsCheck}}, providers.Checks...)
	a.health = health.New(checks...)
	a.handler = a.routes()
	a.server = &http.Server{
		Addr:              cfg.Server.ListenAddr,
		Handler:           a.handler,
		ReadHeaderTimeout: 10 * time.Second,
	}

	// ── 6. Config watcher ────────────────────────────────────────────────
	if a.configPath != "" {
		w, err := config.NewWatcher(a.configPath, a.reconfigure)
		if err != nil {
			a.closeAll()
			return nil, fmt.Errorf("app: watch config: %w", err)
		}
		a.watcher = w
	}

	slog.Info("app initialised",
		"records", a.storeName,
		"case_types", a.vocab.Len(),
		"dictation", cfg.Kiosk.DictationMode,
		"translation", providers.Translator != nil,
	)
	return a, nil
}

func (a *App) initKiosk() error {
	p := a.providers
	kc := a.cfg.Kiosk

	listenOpts := []stt.ListenerOption{}
	if kc.ListenTimeout > 0 {
		listenOpts = append(listenOpts, stt.WithTimeout(kc.ListenTimeout))
	}
	if optBool(a.cfg.Providers.Capture.Options, "cues", true) {
		chime := audio.NewChime()
		listenOpts = append(listenOpts, stt.WithCues(chime.Start, chime.End))
	}
	var listener *stt.Listener
	if p.Capturer != nil && p.Recognizer != nil {
		listener = stt.NewListener(p.Capturer, p.Recognizer, listenOpts...)
	}

	gateOpts := []presence.Option{}
	if z := kc.Presence.Zone; z != (presence.Zone{}) {
		gateOpts = append(gateOpts, presence.WithZone(z))
	}
	if kc.Presence.MinFace > 0 || kc.Presence.MaxFace > 0 {
		lo, hi := kc.Presence.MinFace, kc.Presence.MaxFace
		if lo == 0 {
			lo = presence.DefaultMinFace
		}
		if hi == 0 {
			hi = presence.DefaultMaxFace
		}
		gateOpts = append(gateOpts, presence.WithFaceRange(lo, hi))
	}
	if kc.PresenceCooldown > 0 {
		gateOpts = append(gateOpts, presence.WithCooldown(kc.PresenceCooldown))
	}

	lang, _ := caseid.ParseLanguage(kc.DefaultLanguage)
	kopts := []kiosk.Option{
		kiosk.WithFeed(a.hub),
		kiosk.WithDisplay(a.hub),
		kiosk.WithCombinedDictation(kc.DictationMode == config.DictationCombined),
		kiosk.WithTurnAttempts(max(kc.TurnAttempts, 1)),
		kiosk.WithDefaultLanguage(lang),
		kiosk.WithGate(presence.NewGate(gateOpts...)),
		kiosk.WithClearCaption(kc.ClearCaptionEnabled()),
		kiosk.WithFallbackAudio(kc.FallbackAudio()),
		kiosk.WithMetrics(a.metrics),
		kiosk.WithStoreName(a.storeName),
	}
	if a.clock != nil {
		kopts = append(kopts, kiosk.WithClock(a.clock))
	}

	deps := kiosk.Deps{
		Synthesizer: p.Synthesizer,
		Player:      p.Player,
		Store:       a.store,
		Translator:  p.Translator,
		Vocabulary:  a.vocab,
	}
	if listener != nil {
		deps.Listener = listener
	}
	k, err := kiosk.New(deps, kopts...)
	if err != nil {
		return err
	}
	a.kiosk = k
	a.closers = append(a.closers, k.Close)
	return nil
}

// ─── Run ─────────────────────────────────────────────────────────────────────

// Run serves HTTP and watches the config file until ctx is cancelled. It
// returns ctx.Err() on a clean stop and the server error otherwise.
func (a *App) Run(ctx context.Context) error {
	g, gctx := errgroup.WithContext(ctx)

	g.Go(func() error {
		slog.Info("http server listening", "addr", a.server.Addr, "tls", a.cfg.Server.TLS != nil)
		var err error
		if tls := a.cfg.Server.TLS; tls != nil {
			err = a.server.ListenAndServeTLS(tls.CertFile, tls.KeyFile)
		} else {
			err = a.server.ListenAndServe()
		}
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return fmt.Errorf("app: http server: %w", err)
	})

	g.Go(func() error {
		<-gctx.Done()
		sctx, cancel := context.WithTimeout(context.Background(), shutdownGrace)
		defer cancel()
		if err := a.server.Shutdown(sctx); err != nil {
			slog.Warn("http server shutdown error", "err", err)
		}
		return nil
	})

	if a.watcher != nil {
		g.Go(func() error { return a.watcher.Run(gctx) })
	}

	slog.Info("app running")
	if err := g.Wait(); err != nil {
		return err
	}
	return ctx.Err()
}

// Handler returns the HTTP handler serving every kiosk route.
func (a *App) Handler() http.Handler { return a.handler }

// Kiosk returns the conversation engine.
func (a *App) Kiosk() *kiosk.Kiosk { return a.kiosk }

// reconfigure applies the hot-reloadable parts of a changed config file.
func (a *App) reconfigure(d config.ConfigDiff, cfg *config.Config) {
	if d.LogLevelChanged && a.levelVar != nil {
		a.levelVar.Set(d.NewLogLevel.Slog())
		slog.Info("log level changed", "level", d.NewLogLevel)
	}
	if d.DictationChanged {
		a.kiosk.SetDictation(d.Combined, d.TurnAttempts)
		slog.Info("dictation settings changed", "combined", d.Combined, "turn_attempts", d.TurnAttempts)
	}
	if d.RestartRequired {
		slog.Warn("config change requires a restart to take effect", "path", a.configPath)
	}
}

// ─── Shutdown ────────────────────────────────────────────────────────────────

// Shutdown stops background conversations and releases every subsystem in
// order. It is safe to call more than once.
func (a *App) Shutdown(ctx context.Context) error {
	var shutdownErr error
	a.stopOnce.Do(func() {
		slog.Info("shutting down", "closers", len(a.closers))

		// Run closers in order.
		for i, closer := range a.closers {
			select {
			case <-ctx.Done():
				slog.Warn("shutdown deadline exceeded", "remaining", len(a.closers)-i)
				shutdownErr = ctx.Err()
				return
			default:
			}
			if err := closer(); err != nil {
				slog.Warn("closer error", "index", i, "err", err)
			}
		}

		slog.Info("shutdown complete")
	})
	return shutdownErr
}

// closeAll releases whatever New opened before failing.
func (a *App) closeAll() {
	for _, c := range a.closers {
		_ = c()
	}
	a.closers = nil
}

// ─── Helpers ─────────────────────────────────────────────────────────────────

// optBool extracts a bool from a provider Options map, returning def when
// the key is absent or not a bool.
func optBool(opts map[string]any, key string, def bool) bool {
	v, ok := opts[key].(bool)
	if !ok {
		return def
	}
	return v
}
