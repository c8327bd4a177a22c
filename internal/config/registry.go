package config

import (
	"errors"
	"fmt"
	"sort"
	"sync"

	"github.com/MrWong99/courtkiosk/pkg/audio"
	"github.com/MrWong99/courtkiosk/pkg/provider/stt"
	"github.com/MrWong99/courtkiosk/pkg/provider/translate"
	"github.com/MrWong99/courtkiosk/pkg/provider/tts"
)

// ErrProviderNotRegistered is returned by Create* methods when no factory has
// been registered under the requested provider name.
var ErrProviderNotRegistered = errors.New("config: provider not registered")

// Registry maps provider names to their constructor functions for each
// provider type. It is safe for concurrent use.
type Registry struct {
	mu        sync.RWMutex
	stt       map[string]func(ProviderEntry) (stt.Recognizer, error)
	tts       map[string]func(ProviderEntry) (tts.Synthesizer, error)
	translate map[string]func(ProviderEntry) (translate.Factory, error)
	capture   map[string]func(ProviderEntry) (stt.Capturer, error)
	audio     map[string]func(ProviderEntry) (audio.Player, error)
}

// NewRegistry returns an empty, ready-to-use [Registry].
func NewRegistry() *Registry {
	return &Registry{
		stt:       make(map[string]func(ProviderEntry) (stt.Recognizer, error)),
		tts:       make(map[string]func(ProviderEntry) (tts.Synthesizer, error)),
		translate: make(map[string]func(ProviderEntry) (translate.Factory, error)),
		capture:   make(map[string]func(ProviderEntry) (stt.Capturer, error)),
		audio:     make(map[string]func(ProviderEntry) (audio.Player, error)),
	}
}

// RegisterSTT registers a speech recognizer factory under name.
// Subsequent calls with the same name overwrite the previous registration.
func (r *Registry) RegisterSTT(name string, factory func(ProviderEntry) (stt.Recognizer, error)) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.stt[name] = factory
}

// RegisterTTS registers a speech synthesizer factory under name.
func (r *Registry) RegisterTTS(name string, factory func(ProviderEntry) (tts.Synthesizer, error)) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.tts[name] = factory
}

// RegisterTranslate registers a translator factory under name.
func (r *Registry) RegisterTranslate(name string, factory func(ProviderEntry) (translate.Factory, error)) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.translate[name] = factory
}

// RegisterCapture registers an audio capturer factory under name.
func (r *Registry) RegisterCapture(name string, factory func(ProviderEntry) (stt.Capturer, error)) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.capture[name] = factory
}

// RegisterAudio registers an audio player factory under name.
func (r *Registry) RegisterAudio(name string, factory func(ProviderEntry) (audio.Player, error)) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.audio[name] = factory
}

// CreateSTT instantiates a recognizer using the factory registered under entry.Name.
// Returns [ErrProviderNotRegistered] if no factory has been registered for that name.
func (r *Registry) CreateSTT(entry ProviderEntry) (stt.Recognizer, error) {
	return create(r, r.stt, "stt", entry)
}

// CreateTTS instantiates a synthesizer using the factory registered under entry.Name.
func (r *Registry) CreateTTS(entry ProviderEntry) (tts.Synthesizer, error) {
	return create(r, r.tts, "tts", entry)
}

// CreateTranslate instantiates a translator factory using the factory
// registered under entry.Name.
func (r *Registry) CreateTranslate(entry ProviderEntry) (translate.Factory, error) {
	return create(r, r.translate, "translate", entry)
}

// CreateCapture instantiates a capturer using the factory registered under entry.Name.
func (r *Registry) CreateCapture(entry ProviderEntry) (stt.Capturer, error) {
	return create(r, r.capture, "capture", entry)
}

// CreateAudio instantiates a player using the factory registered under entry.Name.
func (r *Registry) CreateAudio(entry ProviderEntry) (audio.Player, error) {
	return create(r, r.audio, "audio", entry)
}

// Names returns the sorted provider names registered for kind, one of
// "stt", "tts", "translate", "capture", "audio".
func (r *Registry) Names(kind string) []string {
	r.mu.RLock()
	defer r.mu.RUnlock()
	var names []string
	switch kind {
	case "stt":
		names = keys(r.stt)
	case "tts":
		names = keys(r.tts)
	case "translate":
		names = keys(r.translate)
	case "capture":
		names = keys(r.capture)
	case "audio":
		names = keys(r.audio)
	}
	sort.Strings(names)
	return names
}

func create[T any](r *Registry, m map[string]func(ProviderEntry) (T, error), kind string, entry ProviderEntry) (T, error) {
	r.mu.RLock()
	factory, ok := m[entry.Name]
	r.mu.RUnlock()
	if !ok {
		var zero T
		return zero, fmt.Errorf("%w: %s/%q", ErrProviderNotRegistered, kind, entry.Name)
	}
	return factory(entry)
}

func keys[V any](m map[string]V) []string {
	out := make([]string, 0, len(m))
	for k := range m {
		out = append(out, k)
	}
	return out
}
