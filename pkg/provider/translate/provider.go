// Package translate defines the translation collaborator of the kiosk.
//
// Backends hand out one [Translator] per language pair through a [Factory],
// mirroring clients whose handles are bound to a (source, target) pair. A
// [Cache] memoises those handles for the lifetime of one conversation.
package translate

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"sync"
)

// ErrUnsupportedPair is returned by factories that cannot translate between
// the requested languages.
var ErrUnsupportedPair = errors.New("translate: unsupported language pair")

// Translator translates text for one fixed language pair.
type Translator interface {
	Translate(ctx context.Context, text string) (string, error)
}

// Factory creates translators. source and target are BCP-47 primary subtags.
// Implementations must be safe for concurrent use.
type Factory interface {
	New(source, target string) (Translator, error)
}

// FactoryFunc adapts a function to [Factory].
type FactoryFunc func(source, target string) (Translator, error)

// New implements [Factory].
func (f FactoryFunc) New(source, target string) (Translator, error) { return f(source, target) }

type pair struct{ source, target string }

// Cache memoises translators per (source, target) pair. A Cache belongs to
// one conversation; it is nevertheless safe for concurrent use so prompts can
// be translated in parallel.
type Cache struct {
	factory Factory

	mu      sync.Mutex
	handles map[pair]Translator
}

// NewCache returns an empty cache over f.
func NewCache(f Factory) *Cache {
	return &Cache{factory: f, handles: make(map[pair]Translator)}
}

// Translator returns the cached handle for the pair, creating it on first use.
// Failed creations are not cached.
func (c *Cache) Translator(source, target string) (Translator, error) {
	key := pair{source, target}
	c.mu.Lock()
	defer c.mu.Unlock()
	if t, ok := c.handles[key]; ok {
		return t, nil
	}
	t, err := c.factory.New(source, target)
	if err != nil {
		return nil, fmt.Errorf("translate: new %s->%s: %w", source, target, err)
	}
	c.handles[key] = t
	return t, nil
}

// Len returns the number of cached handles.
func (c *Cache) Len() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return len(c.handles)
}

// Text translates text from source to target. It never fails: when the pair
// is the same, the text is blank, or translation errors, the input is
// returned unchanged. The boolean reports whether a translation was applied.
func (c *Cache) Text(ctx context.Context, text, source, target string) (string, bool) {
	if source == target || strings.TrimSpace(text) == "" || c == nil || c.factory == nil {
		return text, false
	}
	t, err := c.Translator(source, target)
	if err != nil {
		slog.Warn("translate: falling back to source text", "source", source, "target", target, "err", err)
		return text, false
	}
	out, err := t.Translate(ctx, text)
	if err != nil {
		slog.Warn("translate: falling back to source text", "source", source, "target", target, "err", err)
		return text, false
	}
	out = strings.TrimSpace(out)
	if out == "" {
		return text, false
	}
	return out, true
}
