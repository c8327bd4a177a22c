// Package stt defines the speech-to-text collaborator of the kiosk.
//
// Recognition is split in two: a [Capturer] records one bounded utterance
// from the microphone and a [Recognizer] transcribes it. [Listener] glues the
// two together into the single blocking "listen for one answer" call used by
// the dictation protocol.
//
// Failures are reported with three sentinels so callers can prompt the user
// appropriately: [ErrNoSpeech] when nothing was said before the timeout,
// [ErrUnrecognized] when audio was captured but could not be transcribed and
// [ErrServiceUnavailable] when the recognition backend could not be reached.
package stt

import (
	"context"
	"errors"
	"time"
)

// Sentinel errors. Implementations wrap them with context.
var (
	ErrNoSpeech           = errors.New("stt: no speech detected")
	ErrUnrecognized       = errors.New("stt: speech not recognized")
	ErrServiceUnavailable = errors.New("stt: recognition service unavailable")
)

// Capture is one recorded utterance.
type Capture struct {
	// WAV holds a complete RIFF/WAV file.
	WAV []byte
	// Duration is the recorded length.
	Duration time.Duration
}

// Capturer records a single utterance. Implementations return [ErrNoSpeech]
// when the recording holds only silence, and must stop recording after
// timeout even if the user keeps talking.
type Capturer interface {
	Capture(ctx context.Context, timeout time.Duration) (Capture, error)
}

// Recognizer transcribes a capture. language is a BCP-47 primary subtag such
// as "en", "hi" or "pa"; an empty string lets the backend detect it.
//
// Implementations must be safe for concurrent use.
type Recognizer interface {
	Recognize(ctx context.Context, c Capture, language string) (string, error)
}
