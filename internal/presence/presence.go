// Package presence decides when a visitor standing at the kiosk should start
// a conversation.
//
// An external face detector posts the face boxes it sees in each camera
// frame. A [Gate] accepts a face when its centre lies inside the detection
// zone and its size is within the range that corresponds to a visitor
// standing at arm's length. After a trigger the gate stays closed for a
// cooldown period.
package presence

import (
	"fmt"
	"sync"
	"time"
)

// Defaults match a 640x480 camera mounted above the screen.
const (
	DefaultMinFace  = 160
	DefaultMaxFace  = 240
	DefaultCooldown = 10 * time.Second
)

// Zone is the detection zone as fractions of the frame size.
type Zone struct {
	Left   float64 `json:"left" yaml:"left"`
	Right  float64 `json:"right" yaml:"right"`
	Top    float64 `json:"top" yaml:"top"`
	Bottom float64 `json:"bottom" yaml:"bottom"`
}

// DefaultZone is the central 40% horizontally and 60% vertically.
var DefaultZone = Zone{Left: 0.3, Right: 0.7, Top: 0.2, Bottom: 0.8}

// Validate checks that the zone is a non-empty sub-rectangle of the frame.
func (z Zone) Validate() error {
	if z.Left < 0 || z.Right > 1 || z.Top < 0 || z.Bottom > 1 || z.Left >= z.Right || z.Top >= z.Bottom {
		return fmt.Errorf("presence: invalid zone %+v", z)
	}
	return nil
}

// Face is one detected face box in pixels.
type Face struct {
	X int `json:"x"`
	Y int `json:"y"`
	W int `json:"w"`
	H int `json:"h"`
}

// Frame is the detector output for one camera frame.
type Frame struct {
	Width  int    `json:"width"`
	Height int    `json:"height"`
	Faces  []Face `json:"faces"`
}

// Placement classifies a face relative to the gate.
type Placement int

const (
	Outside Placement = iota
	TooFar
	TooClose
	InZone
)

func (p Placement) String() string {
	switch p {
	case Outside:
		return "outside"
	case TooFar:
		return "too far"
	case TooClose:
		return "too close"
	case InZone:
		return "in zone"
	}
	return "unknown"
}

// Option configures a [Gate].
type Option func(*Gate)

// WithZone sets the detection zone.
func WithZone(z Zone) Option { return func(g *Gate) { g.zone = z } }

// WithFaceRange sets the accepted face size range in pixels.
func WithFaceRange(lo, hi int) Option {
	return func(g *Gate) {
		g.minFace = lo
		g.maxFace = hi
	}
}

// WithCooldown sets the time the gate stays closed after a trigger.
func WithCooldown(d time.Duration) Option { return func(g *Gate) { g.cooldown = d } }

// WithClock replaces time.Now.
func WithClock(now func() time.Time) Option { return func(g *Gate) { g.now = now } }

// Gate turns detector frames into conversation triggers. It is safe for
// concurrent use.
type Gate struct {
	zone     Zone
	minFace  int
	maxFace  int
	cooldown time.Duration
	now      func() time.Time

	mu   sync.Mutex
	last time.Time
}

// NewGate returns a gate with the default zone, face range and cooldown.
func NewGate(opts ...Option) *Gate {
	g := &Gate{
		zone:     DefaultZone,
		minFace:  DefaultMinFace,
		maxFace:  DefaultMaxFace,
		cooldown: DefaultCooldown,
		now:      time.Now,
	}
	for _, o := range opts {
		o(g)
	}
	return g
}

// Place classifies one face of a width x height frame. The face size is the
// larger of its two sides.
func (g *Gate) Place(f Face, width, height int) Placement {
	cx := float64(f.X + f.W/2)
	cy := float64(f.Y + f.H/2)
	inside := cx > g.zone.Left*float64(width) && cx < g.zone.Right*float64(width) &&
		cy > g.zone.Top*float64(height) && cy < g.zone.Bottom*float64(height)
	if !inside {
		return Outside
	}
	size := max(f.W, f.H)
	switch {
	case size < g.minFace:
		return TooFar
	case size > g.maxFace:
		return TooClose
	}
	return InZone
}

// Observe reports whether the frame should start a conversation, along with
// the placement of its best-placed face. A trigger closes the gate for the
// cooldown period.
func (g *Gate) Observe(fr Frame) (bool, Placement) {
	best := g.Best(fr)
	if best != InZone {
		return false, best
	}

	g.mu.Lock()
	defer g.mu.Unlock()
	now := g.now()
	if !g.last.IsZero() && now.Sub(g.last) <= g.cooldown {
		return false, best
	}
	g.last = now
	return true, best
}

// Best returns the placement of the best-placed face in fr without touching
// the cooldown.
func (g *Gate) Best(fr Frame) Placement {
	best := Outside
	for _, f := range fr.Faces {
		if p := g.Place(f, fr.Width, fr.Height); p > best {
			best = p
		}
	}
	return best
}

// Reset reopens the gate immediately.
func (g *Gate) Reset() {
	g.mu.Lock()
	g.last = time.Time{}
	g.mu.Unlock()
}
