// Package mock provides a test double for the tts.Synthesizer interface.
//
// Example:
//
//	s := &mock.Synthesizer{Duration: 2 * time.Second}
//	clip, _ := s.Synthesize(ctx, "Case not found.", "en")
//	s.Calls // [{Text: "Case not found.", Language: "en"}]
package mock

import (
	"context"
	"sync"
	"time"

	"github.com/MrWong99/courtkiosk/pkg/audio"
	"github.com/MrWong99/courtkiosk/pkg/provider/tts"
)

var _ tts.Synthesizer = (*Synthesizer)(nil)

// SynthesizeCall records a single invocation of Synthesize.
type SynthesizeCall struct {
	Text     string
	Language string
}

// Synthesizer is a mock implementation of tts.Synthesizer.
type Synthesizer struct {
	mu sync.Mutex

	// Duration is set on every returned clip.
	Duration time.Duration

	// Err, if non-nil, is returned instead of a clip.
	Err error

	// Calls records every call to Synthesize.
	Calls []SynthesizeCall
}

// Synthesize implements tts.Synthesizer.
func (s *Synthesizer) Synthesize(_ context.Context, text, language string) (*audio.Clip, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.Calls = append(s.Calls, SynthesizeCall{Text: text, Language: language})
	if s.Err != nil {
		return nil, s.Err
	}
	return &audio.Clip{
		Data:        []byte(text),
		ContentType: "text/plain",
		Duration:    s.Duration,
		Text:        text,
		Language:    language,
	}, nil
}

// Texts returns the text of every call, in order.
func (s *Synthesizer) Texts() []string {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]string, len(s.Calls))
	for i, c := range s.Calls {
		out[i] = c.Text
	}
	return out
}
