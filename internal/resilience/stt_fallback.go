package resilience

import (
	"context"
	"errors"
	"fmt"

	"github.com/MrWong99/courtkiosk/pkg/provider/stt"
)

// RecognizerFallback implements [stt.Recognizer] with automatic failover across
// multiple recognition backends. Each backend has its own circuit breaker.
// Silence and unintelligible speech are answers about the capture, so they
// are returned as they are and never fail over.
type RecognizerFallback struct {
	group *FallbackGroup[stt.Recognizer]
}

// Compile-time interface assertion.
var _ stt.Recognizer = (*RecognizerFallback)(nil)

// NewRecognizerFallback creates a [RecognizerFallback] with primary as the
// preferred backend.
func NewRecognizerFallback(primary stt.Recognizer, primaryName string, cfg FallbackConfig) *RecognizerFallback {
	cfg.CircuitBreaker.Ignore = ignoreRecognition
	return &RecognizerFallback{
		group: NewFallbackGroup(primary, primaryName, cfg),
	}
}

// AddFallback registers an additional recognizer as a fallback.
func (f *RecognizerFallback) AddFallback(name string, r stt.Recognizer) {
	f.group.AddFallback(name, r)
}

// States returns the breaker state of every backend keyed by name.
func (f *RecognizerFallback) States() map[string]State { return f.group.States() }

// Recognize transcribes c with the first healthy recognizer. When every
// backend fails the error wraps [stt.ErrServiceUnavailable].
func (f *RecognizerFallback) Recognize(ctx context.Context, c stt.Capture, language string) (string, error) {
	text, err := ExecuteWithResult(f.group, func(r stt.Recognizer) (string, error) {
		return r.Recognize(ctx, c, language)
	})
	if errors.Is(err, ErrAllFailed) {
		return "", fmt.Errorf("%w: %w", stt.ErrServiceUnavailable, err)
	}
	return text, err
}

func ignoreRecognition(err error) bool {
	return IgnoreContext(err) || errors.Is(err, stt.ErrNoSpeech) || errors.Is(err, stt.ErrUnrecognized)
}
