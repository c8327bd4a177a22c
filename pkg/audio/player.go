package audio

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os/exec"
	"time"
)

// DefaultClipDuration stands in for clips of unknown length.
const DefaultClipDuration = 3 * time.Second

// Compile-time interface assertions.
var (
	_ Player = (*CommandPlayer)(nil)
	_ Player = (*TimerPlayer)(nil)
)

// CommandPlayer plays clips by piping them into an external program such as
// "aplay -q -" or "ffplay -nodisp -autoexit -".
type CommandPlayer struct {
	name string
	args []string
}

// NewCommandPlayer returns a player that runs argv[0] with argv[1:] for each
// clip, writing the clip to its stdin.
func NewCommandPlayer(argv []string) (*CommandPlayer, error) {
	if len(argv) == 0 || argv[0] == "" {
		return nil, errors.New("audio: player command must not be empty")
	}
	return &CommandPlayer{name: argv[0], args: argv[1:]}, nil
}

// Play starts the player process. The returned channel closes when the
// process exits.
func (p *CommandPlayer) Play(ctx context.Context, clip *Clip) (<-chan struct{}, error) {
	if clip == nil {
		return nil, errors.New("audio: nil clip")
	}
	cmd := exec.CommandContext(ctx, p.name, p.args...)
	cmd.Stdin = bytes.NewReader(clip.Data)
	if err := cmd.Start(); err != nil {
		return nil, fmt.Errorf("audio: start %s: %w", p.name, err)
	}
	done := make(chan struct{})
	go func() {
		defer close(done)
		if err := cmd.Wait(); err != nil && ctx.Err() == nil {
			slog.Warn("audio: player exited with error", "cmd", p.name, "err", err)
		}
	}()
	return done, nil
}

// TimerPlayer plays nothing and signals completion after the clip's duration.
// It suits headless kiosks where the browser display plays the audio.
type TimerPlayer struct{}

// Play implements [Player].
func (TimerPlayer) Play(ctx context.Context, clip *Clip) (<-chan struct{}, error) {
	if clip == nil {
		return nil, errors.New("audio: nil clip")
	}
	d := clip.Duration
	if d <= 0 {
		d = DefaultClipDuration
	}
	done := make(chan struct{})
	go func() {
		defer close(done)
		t := time.NewTimer(d)
		defer t.Stop()
		select {
		case <-ctx.Done():
		case <-t.C:
		}
	}()
	return done, nil
}
