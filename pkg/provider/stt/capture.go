package stt

import (
	"context"
	"errors"
	"fmt"
	"math"
	"os"
	"os/exec"
	"strconv"
	"strings"
	"time"

	"github.com/MrWong99/courtkiosk/pkg/audio"
)

const (
	// DefaultRMSThreshold is the energy, in 16-bit sample units, below which a
	// capture counts as silence. 32767 is full scale; 300 is near silence.
	DefaultRMSThreshold = 300.0

	// captureGrace is added to the recorder's own duration limit before the
	// process is killed.
	captureGrace = 2 * time.Second
)

// DefaultRecordCommand records 16 kHz mono WAV with ALSA's arecord.
// "{seconds}" and "{file}" are substituted per capture.
var DefaultRecordCommand = []string{"arecord", "-q", "-f", "S16_LE", "-r", "16000", "-c", "1", "-d", "{seconds}", "{file}"}

var _ Capturer = (*CommandCapturer)(nil)

// CommandCapturer records by running an external program that writes a WAV
// file. The arguments may contain "{seconds}", replaced by the capture timeout
// rounded up to whole seconds, and "{file}", replaced by a temporary output
// path.
type CommandCapturer struct {
	argv      []string
	threshold float64
}

// CaptureOption configures a [CommandCapturer].
type CaptureOption func(*CommandCapturer)

// WithRMSThreshold sets the silence threshold. Defaults to
// [DefaultRMSThreshold].
func WithRMSThreshold(v float64) CaptureOption {
	return func(c *CommandCapturer) { c.threshold = v }
}

// NewCommandCapturer returns a capturer running argv, or
// [DefaultRecordCommand] when argv is empty.
func NewCommandCapturer(argv []string, opts ...CaptureOption) *CommandCapturer {
	if len(argv) == 0 {
		argv = DefaultRecordCommand
	}
	c := &CommandCapturer{argv: argv, threshold: DefaultRMSThreshold}
	for _, o := range opts {
		o(c)
	}
	return c
}

// Capture records for at most timeout and returns the WAV. A recording whose
// energy stays under the threshold yields [ErrNoSpeech].
func (c *CommandCapturer) Capture(ctx context.Context, timeout time.Duration) (Capture, error) {
	f, err := os.CreateTemp("", "courtkiosk-capture-*.wav")
	if err != nil {
		return Capture{}, fmt.Errorf("stt: create capture file: %w", err)
	}
	path := f.Name()
	f.Close()
	defer os.Remove(path)

	secs := strconv.Itoa(int(math.Ceil(timeout.Seconds())))
	args := make([]string, len(c.argv))
	for i, a := range c.argv {
		a = strings.ReplaceAll(a, "{seconds}", secs)
		args[i] = strings.ReplaceAll(a, "{file}", path)
	}

	rctx, cancel := context.WithTimeout(ctx, timeout+captureGrace)
	defer cancel()
	cmd := exec.CommandContext(rctx, args[0], args[1:]...)
	if out, err := cmd.CombinedOutput(); err != nil {
		if ctxErr := rctx.Err(); ctxErr != nil {
			return Capture{}, fmt.Errorf("stt: record: %w", ctxErr)
		}
		return Capture{}, fmt.Errorf("stt: record with %s: %w: %s", args[0], err, strings.TrimSpace(string(out)))
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return Capture{}, fmt.Errorf("stt: read capture: %w", err)
	}
	return c.inspect(data)
}

// inspect validates a recorded WAV and applies the silence check.
func (c *CommandCapturer) inspect(data []byte) (Capture, error) {
	st, err := audio.AnalyzeWAV(data)
	if err != nil {
		if errors.Is(err, audio.ErrNotWAV) && len(data) == 0 {
			return Capture{}, ErrNoSpeech
		}
		return Capture{}, fmt.Errorf("stt: decode capture: %w", err)
	}
	if st.RMS < c.threshold {
		return Capture{}, fmt.Errorf("%w: rms %.0f below %.0f", ErrNoSpeech, st.RMS, c.threshold)
	}
	return Capture{WAV: data, Duration: st.Duration}, nil
}
