package dictation

import (
	"context"
	"errors"
	"log/slog"

	"github.com/MrWong99/courtkiosk/pkg/caseid"
)

// Listener captures and transcribes one spoken answer. stt.Listener
// satisfies it.
type Listener interface {
	Listen(ctx context.Context, language string) (string, error)
}

// Turn outcome labels passed to the turn observer.
const (
	StatusOK          = "ok"
	StatusRejected    = "rejected"
	StatusNoSpeech    = "no_speech"
	StatusUnavailable = "unavailable"
	StatusCancelled   = "cancelled"
)

// Option configures a [Protocol].
type Option func(*Protocol)

// WithEcho registers fn to receive the partial identifier after every
// accepted turn, before the next turn starts.
func WithEcho(fn func(ctx context.Context, partial string)) Option {
	return func(p *Protocol) { p.echo = fn }
}

// WithStatus registers fn to receive short English status lines such as
// "Listening Case Number..." or the reason a turn failed.
func WithStatus(fn func(ctx context.Context, msg string)) Option {
	return func(p *Protocol) { p.status = fn }
}

// WithPrompt registers fn to ask the visitor for the answer of state s.
// retry is true when the previous attempt at the same turn failed. It runs
// before every listen, typically speaking a translated prompt.
func WithPrompt(fn func(ctx context.Context, s State, retry bool)) Option {
	return func(p *Protocol) { p.prompt = fn }
}

// WithTurnObserver registers fn to run after every turn with its kind
// ("type", "number", "year" or "combined") and outcome label.
func WithTurnObserver(fn func(kind, status string)) Option {
	return func(p *Protocol) { p.observe = fn }
}

// WithTurnAttempts allows n attempts per turn for recoverable errors.
func WithTurnAttempts(n int) Option {
	return func(p *Protocol) {
		if n > 0 {
			p.attempts = n
		}
	}
}

// WithTypeLanguage sets the recognition hint for the case type turn. Case
// type abbreviations are Latin letters whatever the conversation language,
// so the default is English.
func WithTypeLanguage(lang caseid.Language) Option {
	return func(p *Protocol) { p.typeLang = lang }
}

// WithLogger sets the logger. Defaults to slog.Default().
func WithLogger(l *slog.Logger) Option {
	return func(p *Protocol) { p.log = l }
}

// Protocol runs dictation against a listener.
type Protocol struct {
	vocab    *caseid.Vocabulary
	listener Listener
	attempts int
	typeLang caseid.Language

	echo    func(ctx context.Context, partial string)
	status  func(ctx context.Context, msg string)
	prompt  func(ctx context.Context, s State, retry bool)
	observe func(kind, status string)
	log     *slog.Logger
}

// New returns a protocol using vocabulary v and listener l.
func New(v *caseid.Vocabulary, l Listener, opts ...Option) *Protocol {
	p := &Protocol{
		vocab:    v,
		listener: l,
		attempts: 1,
		typeLang: caseid.English,
		log:      slog.Default(),
	}
	for _, o := range opts {
		o(p)
	}
	return p
}

var listeningStatus = map[State]string{
	AwaitingType:   "Listening Case Type...",
	AwaitingNumber: "Listening Case Number...",
	AwaitingYear:   "Listening Case Year...",
}

// Run drives the three-turn protocol in lang. It returns the complete
// identifier, or the *TurnError that failed the protocol. A cancelled ctx
// or a recognition timeout ends the protocol; nothing is resumed.
func (p *Protocol) Run(ctx context.Context, lang caseid.Language) (caseid.Identifier, error) {
	m := NewMachine(p.vocab, lang, WithAttempts(p.attempts))
	retry := false

	for !m.State().Done() {
		st := m.State()
		kind := st.Kind()
		p.setStatus(ctx, listeningStatus[st])
		if p.prompt != nil {
			p.prompt(ctx, st, retry)
		}

		hint := lang
		if st == AwaitingType {
			hint = p.typeLang
		}
		text, err := p.listener.Listen(ctx, string(hint))
		switch {
		case err != nil && ctx.Err() != nil:
			m.Abort(ctx.Err())
			p.turn(kind, StatusCancelled)
			continue
		case err != nil:
			err = classifyListen(err)
			if errors.Is(err, ErrUnrecognizedSpeech) {
				m.Reject(err)
				p.turn(kind, StatusRejected)
			} else {
				m.Abort(err)
				p.turn(kind, statusFor(err))
			}
			p.setStatus(ctx, Message(err))
			retry = true
			continue
		}

		p.log.Debug("dictation: turn transcript", "state", st, "transcript", text)
		if err := m.Apply(text); err != nil {
			p.turn(kind, StatusRejected)
			p.setStatus(ctx, Message(err))
			retry = true
			continue
		}
		p.turn(kind, StatusOK)
		retry = false
		if p.echo != nil {
			p.echo(ctx, m.Partial())
		}
	}

	if m.State() == Failed {
		return caseid.Identifier{}, m.Err()
	}
	return m.Identifier(), nil
}

// RunCombined asks for the whole identifier in one utterance. When the
// utterance cannot be parsed or understood it falls back to [Protocol.Run];
// timeouts and service failures end the protocol.
func (p *Protocol) RunCombined(ctx context.Context, lang caseid.Language) (caseid.Identifier, error) {
	p.setStatus(ctx, "Listening for the full Case ID...")
	if p.prompt != nil {
		p.prompt(ctx, AwaitingType, false)
	}

	text, err := p.listener.Listen(ctx, string(lang))
	if err != nil {
		if ctx.Err() != nil {
			p.turn("combined", StatusCancelled)
			return caseid.Identifier{}, &TurnError{State: AwaitingType, Err: ctx.Err()}
		}
		err = classifyListen(err)
		if !errors.Is(err, ErrUnrecognizedSpeech) {
			p.turn("combined", statusFor(err))
			p.setStatus(ctx, Message(err))
			return caseid.Identifier{}, &TurnError{State: AwaitingType, Err: err}
		}
		p.turn("combined", StatusRejected)
		p.setStatus(ctx, Message(err))
		return p.Run(ctx, lang)
	}

	id, err := p.vocab.ParseCombined(text, lang)
	if err != nil {
		p.log.Debug("dictation: combined utterance rejected, falling back to turns", "transcript", text, "err", err)
		p.turn("combined", StatusRejected)
		p.setStatus(ctx, Message(err))
		return p.Run(ctx, lang)
	}
	p.turn("combined", StatusOK)
	if p.echo != nil {
		p.echo(ctx, id.String())
	}
	return id, nil
}

func (p *Protocol) setStatus(ctx context.Context, msg string) {
	if p.status != nil && msg != "" {
		p.status(ctx, msg)
	}
}

func (p *Protocol) turn(kind, status string) {
	if p.observe != nil {
		p.observe(kind, status)
	}
}

func statusFor(err error) string {
	switch {
	case errors.Is(err, ErrNoSpeechDetected):
		return StatusNoSpeech
	case errors.Is(err, ErrRecognitionServiceUnavailable):
		return StatusUnavailable
	}
	return StatusRejected
}
