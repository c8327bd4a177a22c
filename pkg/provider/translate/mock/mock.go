// Package mock provides a test double for the translate package interfaces.
//
// Factory hands out translators that prefix text with the target language,
// so "Case not found." to "hi" becomes "[hi] Case not found.":
//
//	f := &mock.Factory{}
//	c := translate.NewCache(f)
//	out, _ := c.Text(ctx, "Case not found.", "en", "hi")
package mock

import (
	"context"
	"sync"

	"github.com/MrWong99/courtkiosk/pkg/provider/translate"
)

var _ translate.Factory = (*Factory)(nil)

// Factory is a mock implementation of translate.Factory.
type Factory struct {
	mu sync.Mutex

	// NewErr, if non-nil, is returned by New.
	NewErr error

	// TranslateErr, if non-nil, is returned by every translator.
	TranslateErr error

	// Dictionary maps target language, then source text, to a translation.
	// Texts missing from it are prefixed with "[target] ".
	Dictionary map[string]map[string]string

	// NewCalls records every pair passed to New as "source->target".
	NewCalls []string

	// Translated counts Translate calls across all translators.
	Translated int
}

// New implements translate.Factory.
func (f *Factory) New(source, target string) (translate.Translator, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.NewCalls = append(f.NewCalls, source+"->"+target)
	if f.NewErr != nil {
		return nil, f.NewErr
	}
	return &translator{f: f, target: target}, nil
}

// NewCallCount returns the number of New calls.
func (f *Factory) NewCallCount() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return len(f.NewCalls)
}

type translator struct {
	f      *Factory
	target string
}

func (t *translator) Translate(_ context.Context, text string) (string, error) {
	t.f.mu.Lock()
	defer t.f.mu.Unlock()
	t.f.Translated++
	if t.f.TranslateErr != nil {
		return "", t.f.TranslateErr
	}
	if d, ok := t.f.Dictionary[t.target]; ok {
		if out, ok := d[text]; ok {
			return out, nil
		}
	}
	return "[" + t.target + "] " + text, nil
}
