package caption

import (
	"context"
	"log/slog"
	"strings"
	"time"
)

// Pacer plays caption schedules against a clock.
//
// A Pacer holds no per-utterance state and may be shared, though concurrent
// Play calls on the same display interleave their words.
type Pacer struct {
	display       Display
	clock         Clock
	clearOnFinish bool
	onDrift       func(ctx context.Context, drift time.Duration)
	log           *slog.Logger
}

// Option configures a [Pacer].
type Option func(*Pacer)

// WithClock replaces the system clock.
func WithClock(c Clock) Option {
	return func(p *Pacer) { p.clock = c }
}

// WithClearOnFinish controls whether the caption is cleared once audio is
// done. The default is true.
func WithClearOnFinish(clear bool) Option {
	return func(p *Pacer) { p.clearOnFinish = clear }
}

// WithDriftObserver registers fn to receive, for every word, how late the
// reveal happened relative to its target.
func WithDriftObserver(fn func(ctx context.Context, drift time.Duration)) Option {
	return func(p *Pacer) { p.onDrift = fn }
}

// WithLogger sets the logger used for display failures.
func WithLogger(l *slog.Logger) Option {
	return func(p *Pacer) { p.log = l }
}

// NewPacer returns a Pacer that writes to d.
func NewPacer(d Display, opts ...Option) *Pacer {
	p := &Pacer{
		display:       d,
		clock:         SystemClock,
		clearOnFinish: true,
		log:           slog.Default(),
	}
	for _, o := range opts {
		o(p)
	}
	return p
}

// Play reveals the words of text over total and then waits on audioDone.
//
// Word i is revealed once the elapsed time reaches total*(i+1)/n; each wait
// covers only the remaining time to that target, so per-word overhead does not
// accumulate. A nil audioDone is treated as already closed. Play returns
// ctx.Err() when cancelled and nil otherwise; display errors are logged and
// ignored.
func (p *Pacer) Play(ctx context.Context, text string, total time.Duration, audioDone <-chan struct{}) error {
	cues := Schedule(text, total)
	p.clear(ctx)

	start := p.clock.Now()
	var shown strings.Builder
	for _, cue := range cues {
		if wait := cue.At - p.clock.Now().Sub(start); wait > 0 {
			select {
			case <-ctx.Done():
				p.clear(context.WithoutCancel(ctx))
				return ctx.Err()
			case <-p.clock.After(wait):
			}
		}
		if shown.Len() > 0 {
			shown.WriteByte(' ')
		}
		shown.WriteString(cue.Word)

		if p.onDrift != nil {
			p.onDrift(ctx, p.clock.Now().Sub(start)-cue.At)
		}
		if err := p.display.Reveal(ctx, Update{Cue: cue, Text: shown.String()}); err != nil {
			p.log.Debug("caption: reveal failed", "index", cue.Index, "err", err)
		}
	}

	if audioDone != nil {
		select {
		case <-ctx.Done():
			p.clear(context.WithoutCancel(ctx))
			return ctx.Err()
		case <-audioDone:
		}
	}
	if p.clearOnFinish {
		p.clear(ctx)
	}
	return nil
}

func (p *Pacer) clear(ctx context.Context) {
	if err := p.display.Clear(ctx); err != nil {
		p.log.Debug("caption: clear failed", "err", err)
	}
}

// Discard is a [Display] that drops every update.
var Discard Display = discard{}

type discard struct{}

func (discard) Reveal(context.Context, Update) error { return nil }
func (discard) Clear(context.Context) error          { return nil }
