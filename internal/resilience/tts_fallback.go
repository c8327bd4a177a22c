package resilience

import (
	"context"
	"errors"

	"github.com/MrWong99/courtkiosk/pkg/audio"
	"github.com/MrWong99/courtkiosk/pkg/provider/tts"
)

// SynthesizerFallback implements [tts.Synthesizer] with automatic failover
// across multiple synthesis backends. Each backend has its own circuit breaker.
type SynthesizerFallback struct {
	group *FallbackGroup[tts.Synthesizer]
}

// Compile-time interface assertion.
var _ tts.Synthesizer = (*SynthesizerFallback)(nil)

// NewSynthesizerFallback creates a [SynthesizerFallback] with primary as the
// preferred backend.
func NewSynthesizerFallback(primary tts.Synthesizer, primaryName string, cfg FallbackConfig) *SynthesizerFallback {
	cfg.CircuitBreaker.Ignore = func(err error) bool {
		return IgnoreContext(err) || errors.Is(err, tts.ErrEmptyText)
	}
	return &SynthesizerFallback{
		group: NewFallbackGroup(primary, primaryName, cfg),
	}
}

// AddFallback registers an additional synthesizer as a fallback.
func (f *SynthesizerFallback) AddFallback(name string, s tts.Synthesizer) {
	f.group.AddFallback(name, s)
}

// States returns the breaker state of every backend keyed by name.
func (f *SynthesizerFallback) States() map[string]State { return f.group.States() }

// Synthesize speaks text with the first healthy synthesizer.
func (f *SynthesizerFallback) Synthesize(ctx context.Context, text, language string) (*audio.Clip, error) {
	return ExecuteWithResult(f.group, func(s tts.Synthesizer) (*audio.Clip, error) {
		return s.Synthesize(ctx, text, language)
	})
}
