// Package tts defines the text-to-speech collaborator of the kiosk.
//
// A [Synthesizer] turns one utterance into a playable [audio.Clip]. Clips
// report their duration when the backend returns WAV, which the caption
// pacer uses to spread words across the audio.
package tts

import (
	"context"
	"errors"
	"time"

	"github.com/MrWong99/courtkiosk/pkg/audio"
)

// ErrEmptyText is returned when there is nothing to speak.
var ErrEmptyText = errors.New("tts: empty text")

// Synthesizer converts text into speech. language is a BCP-47 primary subtag
// ("en", "hi", "pa").
//
// Implementations must be safe for concurrent use.
type Synthesizer interface {
	Synthesize(ctx context.Context, text, language string) (*audio.Clip, error)
}

// NewWAVClip builds a clip from WAV bytes. The duration is counted from the
// decoded samples, since streamed WAV headers often carry a placeholder size,
// and falls back to the header. Unreadable audio leaves it at zero.
func NewWAVClip(data []byte, text, language string) *audio.Clip {
	var d time.Duration
	if st, err := audio.AnalyzeWAV(data); err == nil && st.Duration > 0 {
		d = st.Duration
	} else if hd, err := audio.WAVDuration(data); err == nil {
		d = hd
	}
	return &audio.Clip{
		Data:        data,
		ContentType: "audio/wav",
		Duration:    d,
		Text:        text,
		Language:    language,
	}
}
