package resilience

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/MrWong99/courtkiosk/pkg/provider/tts"
	ttsmock "github.com/MrWong99/courtkiosk/pkg/provider/tts/mock"
)

func TestSynthesizerFallback_PrimarySuccess(t *testing.T) {
	primary := &ttsmock.Synthesizer{Duration: 2 * time.Second}
	secondary := &ttsmock.Synthesizer{}

	fb := NewSynthesizerFallback(primary, "primary", FallbackConfig{
		CircuitBreaker: CircuitBreakerConfig{MaxFailures: 3},
	})
	fb.AddFallback("secondary", secondary)

	clip, err := fb.Synthesize(context.Background(), "Case not found.", "en")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if clip.Duration != 2*time.Second || clip.Text != "Case not found." {
		t.Fatalf("clip = %+v", clip)
	}
	if len(secondary.Texts()) != 0 {
		t.Fatalf("secondary called %d times, want 0", len(secondary.Texts()))
	}
}

func TestSynthesizerFallback_Failover(t *testing.T) {
	primary := &ttsmock.Synthesizer{Err: errors.New("primary down")}
	secondary := &ttsmock.Synthesizer{}

	fb := NewSynthesizerFallback(primary, "primary", FallbackConfig{
		CircuitBreaker: CircuitBreakerConfig{MaxFailures: 3},
	})
	fb.AddFallback("secondary", secondary)

	clip, err := fb.Synthesize(context.Background(), "ਕੇਸ ਨਹੀਂ ਮਿਲਿਆ", "pa")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if clip.Language != "pa" {
		t.Errorf("language = %q, want pa", clip.Language)
	}
	if got := secondary.Texts(); len(got) != 1 {
		t.Errorf("secondary calls = %d, want 1", len(got))
	}
}

func TestSynthesizerFallback_EmptyTextIsNotAFailure(t *testing.T) {
	primary := &ttsmock.Synthesizer{Err: tts.ErrEmptyText}
	secondary := &ttsmock.Synthesizer{}

	fb := NewSynthesizerFallback(primary, "primary", FallbackConfig{
		CircuitBreaker: CircuitBreakerConfig{MaxFailures: 1},
	})
	fb.AddFallback("secondary", secondary)

	if _, err := fb.Synthesize(context.Background(), "", "en"); !errors.Is(err, tts.ErrEmptyText) {
		t.Fatalf("err = %v, want ErrEmptyText", err)
	}
	if len(secondary.Texts()) != 0 {
		t.Error("empty text was sent to the fallback")
	}
}

func TestSynthesizerFallback_AllFail(t *testing.T) {
	primary := &ttsmock.Synthesizer{Err: errors.New("primary down")}
	secondary := &ttsmock.Synthesizer{Err: errors.New("secondary down")}

	fb := NewSynthesizerFallback(primary, "primary", FallbackConfig{
		CircuitBreaker: CircuitBreakerConfig{MaxFailures: 3},
	})
	fb.AddFallback("secondary", secondary)

	_, err := fb.Synthesize(context.Background(), "hello", "en")
	if !errors.Is(err, ErrAllFailed) {
		t.Fatalf("err = %v, want ErrAllFailed", err)
	}
}

func TestSynthesizerFallback_CircuitOpens(t *testing.T) {
	primary := &ttsmock.Synthesizer{Err: errors.New("primary down")}
	secondary := &ttsmock.Synthesizer{}

	fb := NewSynthesizerFallback(primary, "primary", FallbackConfig{
		CircuitBreaker: CircuitBreakerConfig{MaxFailures: 2, ResetTimeout: time.Hour},
	})
	fb.AddFallback("secondary", secondary)

	for range 4 {
		if _, err := fb.Synthesize(context.Background(), "hello", "en"); err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
	}
	// The primary is skipped once its breaker opens.
	if got := len(primary.Texts()); got != 2 {
		t.Errorf("primary calls = %d, want 2", got)
	}
}
