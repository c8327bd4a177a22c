// Package kiosk runs the visitor conversation of the court case kiosk.
//
// A conversation asks for a language, offers the search menu, dictates a
// case identifier, confirms it, looks the case up and reads the result
// aloud while the caption display follows the audio word by word. Only one
// conversation runs at a time: presence triggers that arrive while the kiosk
// is busy are dropped, and explicit requests fail with [ErrBusy].
package kiosk

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/MrWong99/courtkiosk/internal/dictation"
	"github.com/MrWong99/courtkiosk/internal/observe"
	"github.com/MrWong99/courtkiosk/internal/presence"
	"github.com/MrWong99/courtkiosk/internal/records"
	"github.com/MrWong99/courtkiosk/pkg/audio"
	"github.com/MrWong99/courtkiosk/pkg/caption"
	"github.com/MrWong99/courtkiosk/pkg/caseid"
	"github.com/MrWong99/courtkiosk/pkg/provider/translate"
	"github.com/MrWong99/courtkiosk/pkg/provider/tts"
)

// ErrBusy is returned when a conversation is already in progress.
var ErrBusy = errors.New("kiosk: a conversation is already in progress")

// Feed receives the non-caption display updates. captionfeed.Hub satisfies
// it.
type Feed interface {
	Echo(ctx context.Context, partial string)
	Status(ctx context.Context, msg string)
	Record(ctx context.Context, rec any)
}

// Deps holds the collaborators of a [Kiosk]. Listener, Synthesizer, Player
// and Store are required.
type Deps struct {
	Listener    dictation.Listener
	Synthesizer tts.Synthesizer
	Player      audio.Player
	Store       records.Store

	// Translator creates per-language translators. Nil speaks English text
	// untranslated.
	Translator translate.Factory

	// Vocabulary defaults to caseid.DefaultVocabulary().
	Vocabulary *caseid.Vocabulary
}

// Option configures a [Kiosk].
type Option func(*Kiosk)

// WithFeed sets the display feed for echoes, status lines and records.
func WithFeed(f Feed) Option { return func(k *Kiosk) { k.feed = f } }

// WithDisplay sets the caption display driven by the pacer.
func WithDisplay(d caption.Display) Option { return func(k *Kiosk) { k.display = d } }

// WithCombinedDictation asks for the whole identifier in one utterance
// before falling back to the three-turn protocol.
func WithCombinedDictation(on bool) Option { return func(k *Kiosk) { k.combined = on } }

// WithTurnAttempts sets the attempts per dictation turn.
func WithTurnAttempts(n int) Option { return func(k *Kiosk) { k.attempts = n } }

// WithDefaultLanguage sets the language used when the visitor names none.
func WithDefaultLanguage(l caseid.Language) Option {
	return func(k *Kiosk) {
		if l.IsValid() {
			k.defaultLang = l
		}
	}
}

// WithGate sets the presence gate used by [Kiosk.OnPresence].
func WithGate(g *presence.Gate) Option { return func(k *Kiosk) { k.gate = g } }

// WithClearCaption controls whether captions are cleared after each clip.
func WithClearCaption(clear bool) Option { return func(k *Kiosk) { k.clearCaption = clear } }

// WithFallbackAudio sets the caption duration used when a clip reports no
// length.
func WithFallbackAudio(d time.Duration) Option {
	return func(k *Kiosk) {
		if d > 0 {
			k.fallbackAudio = d
		}
	}
}

// WithClock replaces the caption pacer's clock.
func WithClock(c caption.Clock) Option { return func(k *Kiosk) { k.clock = c } }

// WithMetrics sets the metrics recorder. Defaults to observe.DefaultMetrics().
func WithMetrics(m *observe.Metrics) Option { return func(k *Kiosk) { k.metrics = m } }

// WithStoreName labels lookup metrics with the record backend name.
func WithStoreName(name string) Option { return func(k *Kiosk) { k.storeName = name } }

// WithLogger sets the logger. Defaults to slog.Default().
func WithLogger(l *slog.Logger) Option { return func(k *Kiosk) { k.log = l } }

// Kiosk owns the conversation loop. All exported methods are safe for
// concurrent use.
type Kiosk struct {
	listener    dictation.Listener
	synth       tts.Synthesizer
	player      audio.Player
	store       records.Store
	translator  translate.Factory
	vocab       *caseid.Vocabulary
	feed        Feed
	display     caption.Display
	gate        *presence.Gate
	pacer       *caption.Pacer
	clock       caption.Clock
	metrics     *observe.Metrics
	log         *slog.Logger
	storeName   string
	defaultLang caseid.Language

	clearCaption  bool
	fallbackAudio time.Duration

	// busy is held for the duration of a conversation or typed search.
	busy sync.Mutex

	mu       sync.Mutex
	current  *Session
	combined bool
	attempts int

	// root bounds conversations started in the background.
	root   context.Context
	cancel context.CancelFunc
	wg     sync.WaitGroup
}

// New returns a kiosk over d.
func New(d Deps, opts ...Option) (*Kiosk, error) {
	var errs []error
	if d.Listener == nil {
		errs = append(errs, errors.New("kiosk: listener is required"))
	}
	if d.Synthesizer == nil {
		errs = append(errs, errors.New("kiosk: synthesizer is required"))
	}
	if d.Player == nil {
		errs = append(errs, errors.New("kiosk: player is required"))
	}
	if d.Store == nil {
		errs = append(errs, errors.New("kiosk: record store is required"))
	}
	if err := errors.Join(errs...); err != nil {
		return nil, err
	}

	k := &Kiosk{
		listener:     d.Listener,
		synth:        d.Synthesizer,
		player:       d.Player,
		store:        d.Store,
		translator:   d.Translator,
		vocab:        d.Vocabulary,
		display:      caption.Discard,
		clock:        caption.SystemClock,
		log:          slog.Default(),
		storeName:    "records",
		defaultLang:  caseid.Punjabi,
		attempts:     1,
		clearCaption: true,

		fallbackAudio: caption.FallbackDuration,
	}
	for _, o := range opts {
		o(k)
	}
	if k.vocab == nil {
		k.vocab = caseid.DefaultVocabulary()
	}
	if k.feed == nil {
		k.feed = nopFeed{}
	}
	if k.metrics == nil {
		k.metrics = observe.DefaultMetrics()
	}
	if k.gate == nil {
		k.gate = presence.NewGate()
	}
	k.listener = &timedListener{next: k.listener, metrics: k.metrics}
	k.pacer = caption.NewPacer(k.display,
		caption.WithClock(k.clock),
		caption.WithClearOnFinish(k.clearCaption),
		caption.WithDriftObserver(k.metrics.RecordCaptionDrift),
		caption.WithLogger(k.log),
	)
	k.root, k.cancel = context.WithCancel(context.Background())
	return k, nil
}

// Busy reports whether a conversation is in progress.
func (k *Kiosk) Busy() bool {
	k.mu.Lock()
	defer k.mu.Unlock()
	return k.current != nil
}

// SetDictation changes the dictation mode and turn attempts. Conversations
// already in progress keep their settings.
func (k *Kiosk) SetDictation(combined bool, attempts int) {
	k.mu.Lock()
	defer k.mu.Unlock()
	k.combined = combined
	if attempts > 0 {
		k.attempts = attempts
	}
}

func (k *Kiosk) dictationSettings() (combined bool, attempts int) {
	k.mu.Lock()
	defer k.mu.Unlock()
	return k.combined, k.attempts
}

// Current returns the active session, or nil.
func (k *Kiosk) Current() *Session {
	k.mu.Lock()
	defer k.mu.Unlock()
	return k.current
}

// Converse runs one conversation to completion. lang preselects the
// conversation language; an empty lang asks the visitor.
func (k *Kiosk) Converse(ctx context.Context, lang caseid.Language) (*Result, error) {
	sess, err := k.acquire(lang)
	if err != nil {
		return nil, err
	}
	defer k.release()
	return k.converse(ctx, sess)
}

// Start runs a conversation in the background and returns its session ID.
// The conversation outlives the caller's request and ends with [Kiosk.Close].
func (k *Kiosk) Start(lang caseid.Language) (string, error) {
	sess, err := k.acquire(lang)
	if err != nil {
		return "", err
	}
	k.wg.Add(1)
	go func() {
		defer k.wg.Done()
		defer k.release()
		res, err := k.converse(k.root, sess)
		if err != nil {
			k.log.Info("kiosk: conversation ended", "session_id", sess.ID, "outcome", res.Outcome, "err", err)
			return
		}
		k.log.Info("kiosk: conversation ended", "session_id", sess.ID, "outcome", res.Outcome, "case_id", res.Identifier.String())
	}()
	return sess.ID, nil
}

// OnPresence feeds one detector frame to the presence gate and starts a
// conversation when it triggers. Frames are ignored while the kiosk is busy
// so a visitor in front of the screen does not queue new conversations.
func (k *Kiosk) OnPresence(ctx context.Context, fr presence.Frame) (bool, presence.Placement) {
	if k.Busy() {
		return false, k.gate.Best(fr)
	}
	triggered, placement := k.gate.Observe(fr)
	k.metrics.RecordPresence(ctx, placement.String(), triggered)
	if !triggered {
		return false, placement
	}
	id, err := k.Start("")
	if err != nil {
		k.log.Debug("kiosk: presence trigger dropped", "err", err)
		return false, placement
	}
	k.log.Info("kiosk: visitor detected, conversation started", "session_id", id)
	return true, placement
}

// Search looks up a typed identifier and narrates the result in lang.
func (k *Kiosk) Search(ctx context.Context, id string, lang caseid.Language) (*records.Record, error) {
	if !lang.IsValid() {
		lang = k.defaultLang
	}
	sess, err := k.acquire(lang)
	if err != nil {
		return nil, err
	}
	defer k.release()
	k.feed.Echo(ctx, id)
	return k.narrate(ctx, sess, id)
}

// Close cancels background conversations and waits for them to finish.
func (k *Kiosk) Close() error {
	k.cancel()
	k.wg.Wait()
	return nil
}

func (k *Kiosk) acquire(lang caseid.Language) (*Session, error) {
	if !k.busy.TryLock() {
		return nil, ErrBusy
	}
	sess := newSession(k.translator, lang)
	k.mu.Lock()
	k.current = sess
	k.mu.Unlock()
	k.metrics.ActiveConversations.Add(context.Background(), 1)
	return sess, nil
}

func (k *Kiosk) release() {
	k.mu.Lock()
	k.current = nil
	k.mu.Unlock()
	k.metrics.ActiveConversations.Add(context.Background(), -1)
	k.busy.Unlock()
}

// timedListener records recognition latency.
type timedListener struct {
	next    dictation.Listener
	metrics *observe.Metrics
}

func (l *timedListener) Listen(ctx context.Context, language string) (string, error) {
	start := time.Now()
	text, err := l.next.Listen(ctx, language)
	l.metrics.STTDuration.Record(ctx, time.Since(start).Seconds())
	if err != nil {
		return "", fmt.Errorf("kiosk: listen: %w", err)
	}
	return text, nil
}

type nopFeed struct{}

func (nopFeed) Echo(context.Context, string)   {}
func (nopFeed) Status(context.Context, string) {}
func (nopFeed) Record(context.Context, any)    {}
