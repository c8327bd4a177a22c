// Package caption reveals spoken text word by word in step with audio
// playback.
//
// [Schedule] computes when each word should appear for a clip of a given
// length; a [Pacer] plays that schedule against a [Clock] and pushes every
// word to a [Display]. Word timing is an estimate derived from the clip
// length, so the pacer waits for the caller's playback-done signal before it
// returns.
package caption

import (
	"context"
	"strings"
	"time"
)

// FallbackDuration is used when the length of a clip cannot be determined.
const FallbackDuration = 3 * time.Second

// Cue is one scheduled word reveal.
type Cue struct {
	// Index is the 0-based word position.
	Index int
	// Word is the word being revealed.
	Word string
	// At is the elapsed time since playback start at which the word appears.
	At time.Duration
}

// Schedule splits text on whitespace and assigns word i the target
// total*(i+1)/n. Text without words yields nil. A negative total is treated
// as zero.
func Schedule(text string, total time.Duration) []Cue {
	words := strings.Fields(text)
	n := len(words)
	if n == 0 {
		return nil
	}
	if total < 0 {
		total = 0
	}
	cues := make([]Cue, n)
	for i, w := range words {
		// Multiply first so the last target is exactly total.
		at := time.Duration(int64(total) * int64(i+1) / int64(n))
		cues[i] = Cue{Index: i, Word: w, At: at}
	}
	return cues
}

// ResolveDuration returns d, or [FallbackDuration] when the duration query
// failed or produced a non-positive length.
func ResolveDuration(d time.Duration, err error) time.Duration {
	if err != nil || d <= 0 {
		return FallbackDuration
	}
	return d
}

// Update is the caption state after one reveal.
type Update struct {
	Cue
	// Text is the visible caption: every word revealed so far.
	Text string
}

// Display shows captions. Errors are reported to the pacer for logging only;
// a broken display never aborts playback.
type Display interface {
	Reveal(ctx context.Context, u Update) error
	Clear(ctx context.Context) error
}

// Clock abstracts wall time so playback can be tested without sleeping.
type Clock interface {
	Now() time.Time
	After(d time.Duration) <-chan time.Time
}

type systemClock struct{}

func (systemClock) Now() time.Time                         { return time.Now() }
func (systemClock) After(d time.Duration) <-chan time.Time { return time.After(d) }

// SystemClock is the [Clock] backed by package time.
var SystemClock Clock = systemClock{}
