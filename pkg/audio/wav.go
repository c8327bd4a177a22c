// Package audio holds the kiosk's audio plumbing: WAV inspection, clip
// playback and listening cues.
package audio

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"math"
	"time"

	goaudio "github.com/go-audio/audio"
	"github.com/go-audio/wav"
)

// ErrNotWAV is returned when data is not a readable RIFF/WAV file.
var ErrNotWAV = errors.New("audio: not a valid wav file")

// WAVDuration returns the playback length of a WAV file.
func WAVDuration(data []byte) (time.Duration, error) {
	d := wav.NewDecoder(bytes.NewReader(data))
	if !d.IsValidFile() {
		return 0, ErrNotWAV
	}
	dur, err := d.Duration()
	if err != nil {
		return 0, fmt.Errorf("audio: wav duration: %w", err)
	}
	return dur, nil
}

// PCMStats summarises the samples of a WAV file.
type PCMStats struct {
	SampleRate int
	Channels   int
	BitDepth   int
	Duration   time.Duration
	// RMS is the root-mean-square level scaled to 16-bit sample units
	// (0–32767) regardless of the file's bit depth.
	RMS float64
}

// AnalyzeWAV decodes a WAV file and computes its energy.
func AnalyzeWAV(data []byte) (PCMStats, error) {
	d := wav.NewDecoder(bytes.NewReader(data))
	if !d.IsValidFile() {
		return PCMStats{}, ErrNotWAV
	}
	buf, err := d.FullPCMBuffer()
	if err != nil {
		return PCMStats{}, fmt.Errorf("audio: decode pcm: %w", err)
	}
	st := PCMStats{
		SampleRate: int(d.SampleRate),
		Channels:   int(d.NumChans),
		BitDepth:   int(d.BitDepth),
	}
	if st.SampleRate > 0 && st.Channels > 0 {
		frames := len(buf.Data) / st.Channels
		st.Duration = time.Duration(frames) * time.Second / time.Duration(st.SampleRate)
	}
	st.RMS = rms(buf.Data, st.BitDepth)
	return st, nil
}

func rms(samples []int, bitDepth int) float64 {
	if len(samples) == 0 {
		return 0
	}
	scale := 1.0
	if bitDepth > 0 && bitDepth != 16 {
		scale = math.Pow(2, float64(16-bitDepth))
	}
	var sum float64
	for _, s := range samples {
		v := float64(s) * scale
		sum += v * v
	}
	return math.Sqrt(sum / float64(len(samples)))
}

// EncodeWAV wraps PCM samples in a RIFF/WAV container.
func EncodeWAV(samples []int, sampleRate, channels, bitDepth int) ([]byte, error) {
	var out seekBuffer
	enc := wav.NewEncoder(&out, sampleRate, bitDepth, channels, 1)
	buf := &goaudio.IntBuffer{
		Format:         &goaudio.Format{NumChannels: channels, SampleRate: sampleRate},
		Data:           samples,
		SourceBitDepth: bitDepth,
	}
	if err := enc.Write(buf); err != nil {
		return nil, fmt.Errorf("audio: encode wav: %w", err)
	}
	if err := enc.Close(); err != nil {
		return nil, fmt.Errorf("audio: finalize wav: %w", err)
	}
	return out.buf, nil
}

// seekBuffer is an in-memory io.WriteSeeker; the wav encoder seeks back to
// patch chunk sizes once all samples are written.
type seekBuffer struct {
	buf []byte
	pos int
}

func (b *seekBuffer) Write(p []byte) (int, error) {
	end := b.pos + len(p)
	if end > len(b.buf) {
		b.buf = append(b.buf, make([]byte, end-len(b.buf))...)
	}
	copy(b.buf[b.pos:], p)
	b.pos = end
	return len(p), nil
}

func (b *seekBuffer) Seek(offset int64, whence int) (int64, error) {
	var abs int64
	switch whence {
	case io.SeekStart:
		abs = offset
	case io.SeekCurrent:
		abs = int64(b.pos) + offset
	case io.SeekEnd:
		abs = int64(len(b.buf)) + offset
	default:
		return 0, fmt.Errorf("audio: seek: invalid whence %d", whence)
	}
	if abs < 0 {
		return 0, errors.New("audio: seek: negative position")
	}
	b.pos = int(abs)
	return abs, nil
}
