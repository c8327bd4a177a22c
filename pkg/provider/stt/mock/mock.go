// Package mock provides test doubles for the stt package interfaces.
//
// Recognizer replays a scripted list of results, one per call, which makes it
// convenient for driving multi-turn dictation:
//
//	r := &mock.Recognizer{Results: []mock.Result{{Text: "CWP"}, {Text: "1234"}}}
//	l := stt.NewListener(&mock.Capturer{}, r)
package mock

import (
	"context"
	"sync"
	"time"

	"github.com/MrWong99/courtkiosk/pkg/provider/stt"
)

var (
	_ stt.Recognizer = (*Recognizer)(nil)
	_ stt.Capturer   = (*Capturer)(nil)
)

// Result is one scripted recognition outcome.
type Result struct {
	Text string
	Err  error
}

// RecognizeCall records a single invocation of Recognizer.Recognize.
type RecognizeCall struct {
	Capture  stt.Capture
	Language string
}

// Recognizer is a mock implementation of stt.Recognizer. Each call consumes
// the next entry of Results; once they run out it returns Default.
type Recognizer struct {
	mu sync.Mutex

	// Results are returned in order.
	Results []Result

	// Default is returned after Results is exhausted. A zero Default yields
	// stt.ErrNoSpeech.
	Default Result

	// Calls records every call to Recognize.
	Calls []RecognizeCall
}

// Recognize implements stt.Recognizer.
func (r *Recognizer) Recognize(ctx context.Context, c stt.Capture, language string) (string, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.Calls = append(r.Calls, RecognizeCall{Capture: c, Language: language})
	if err := ctx.Err(); err != nil {
		return "", err
	}
	if len(r.Results) > 0 {
		res := r.Results[0]
		r.Results = r.Results[1:]
		return res.Text, res.Err
	}
	if r.Default == (Result{}) {
		return "", stt.ErrNoSpeech
	}
	return r.Default.Text, r.Default.Err
}

// CallCount returns the number of Recognize calls.
func (r *Recognizer) CallCount() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.Calls)
}

// Capturer is a mock implementation of stt.Capturer.
type Capturer struct {
	mu sync.Mutex

	// Result is returned by every successful call. A zero value yields a
	// placeholder WAV.
	Result stt.Capture

	// Err, if non-nil, is returned instead.
	Err error

	// Timeouts records the timeout of every call.
	Timeouts []time.Duration
}

// Capture implements stt.Capturer.
func (c *Capturer) Capture(_ context.Context, timeout time.Duration) (stt.Capture, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.Timeouts = append(c.Timeouts, timeout)
	if c.Err != nil {
		return stt.Capture{}, c.Err
	}
	if c.Result.WAV == nil {
		return stt.Capture{WAV: []byte("RIFF"), Duration: time.Second}, nil
	}
	return c.Result, nil
}
