package resilience

import (
	"context"

	"github.com/MrWong99/courtkiosk/pkg/provider/translate"
)

// TranslateFallback implements [translate.Factory] with automatic failover
// across multiple translation backends. Each backend has its own circuit
// breaker; a backend that cannot serve a language pair counts as failed for
// that call and the next one is tried.
type TranslateFallback struct {
	group *FallbackGroup[*translate.Cache]
}

// Compile-time interface assertion.
var _ translate.Factory = (*TranslateFallback)(nil)

// NewTranslateFallback creates a [TranslateFallback] with primary as the
// preferred backend.
func NewTranslateFallback(primary translate.Factory, primaryName string, cfg FallbackConfig) *TranslateFallback {
	cfg.CircuitBreaker.Ignore = IgnoreContext
	return &TranslateFallback{
		group: NewFallbackGroup(translate.NewCache(primary), primaryName, cfg),
	}
}

// AddFallback registers an additional translation backend as a fallback.
func (f *TranslateFallback) AddFallback(name string, factory translate.Factory) {
	f.group.AddFallback(name, translate.NewCache(factory))
}

// States returns the breaker state of every backend keyed by name.
func (f *TranslateFallback) States() map[string]State { return f.group.States() }

// New returns a translator for the pair. Backend handles are created on first
// use and shared by all translators of the same pair.
func (f *TranslateFallback) New(source, target string) (translate.Translator, error) {
	return &fallbackTranslator{group: f.group, source: source, target: target}, nil
}

type fallbackTranslator struct {
	group  *FallbackGroup[*translate.Cache]
	source string
	target string
}

func (t *fallbackTranslator) Translate(ctx context.Context, text string) (string, error) {
	return ExecuteWithResult(t.group, func(c *translate.Cache) (string, error) {
		tr, err := c.Translator(t.source, t.target)
		if err != nil {
			return "", err
		}
		return tr.Translate(ctx, text)
	})
}
