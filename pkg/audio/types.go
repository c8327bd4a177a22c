package audio

import (
	"context"
	"time"
)

// Clip is a complete synthesized utterance ready for playback.
type Clip struct {
	// Data holds the encoded audio, normally a RIFF/WAV file.
	Data []byte

	// ContentType is the MIME type of Data (e.g., "audio/wav", "audio/mpeg").
	ContentType string

	// Duration is the playback length. Zero means unknown.
	Duration time.Duration

	// Text and Language describe what was spoken.
	Text     string
	Language string
}

// Player plays clips on the kiosk's speaker.
//
// Play starts playback and returns immediately. The returned channel is closed
// when playback ends, whether it completed, failed or ctx was cancelled.
// Implementations must be safe for concurrent use, though kiosks play one clip
// at a time.
type Player interface {
	Play(ctx context.Context, clip *Clip) (<-chan struct{}, error)
}
