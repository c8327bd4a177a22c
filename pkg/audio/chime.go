package audio

import (
	"log/slog"

	"github.com/gen2brain/beeep"
)

// Chime plays the short tones that tell a kiosk user when the microphone
// opens and closes.
type Chime struct {
	// StartFreq and EndFreq are the tone frequencies in Hz.
	StartFreq float64
	EndFreq   float64
	// DurationMs is the tone length in milliseconds.
	DurationMs int

	beep func(freq float64, ms int) error
}

// NewChime returns a chime with a rising start tone and a lower end tone.
func NewChime() *Chime {
	return &Chime{StartFreq: 880, EndFreq: 587, DurationMs: 150, beep: beeep.Beep}
}

// Start signals that listening has begun.
func (c *Chime) Start() { c.play(c.StartFreq) }

// End signals that listening has stopped.
func (c *Chime) End() { c.play(c.EndFreq) }

func (c *Chime) play(freq float64) {
	if c == nil || c.beep == nil {
		return
	}
	if err := c.beep(freq, c.DurationMs); err != nil {
		slog.Debug("audio: chime failed", "freq", freq, "err", err)
	}
}
