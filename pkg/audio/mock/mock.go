// Package mock provides an in-memory [audio.Player] for unit tests.
//
// Typical usage:
//
//	p := &mock.Player{}
//	done, _ := p.Play(ctx, clip) // closed immediately
//	p.Calls()                   // [clip]
package mock

import (
	"context"
	"sync"

	"github.com/MrWong99/courtkiosk/pkg/audio"
)

var _ audio.Player = (*Player)(nil)

// Player is a mock implementation of [audio.Player]. It records every clip.
// Playback finishes immediately unless Hold is set, in which case it finishes
// when Hold is closed.
type Player struct {
	mu sync.Mutex

	// PlayErr is returned by Play when non-nil.
	PlayErr error

	// Hold, when non-nil, delays completion until it is closed.
	Hold chan struct{}

	clips []*audio.Clip
}

// Play implements [audio.Player].
func (p *Player) Play(_ context.Context, clip *audio.Clip) (<-chan struct{}, error) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.clips = append(p.clips, clip)
	if p.PlayErr != nil {
		return nil, p.PlayErr
	}
	if p.Hold != nil {
		return p.Hold, nil
	}
	done := make(chan struct{})
	close(done)
	return done, nil
}

// Calls returns the clips passed to Play, in order.
func (p *Player) Calls() []*audio.Clip {
	p.mu.Lock()
	defer p.mu.Unlock()
	out := make([]*audio.Clip, len(p.clips))
	copy(out, p.clips)
	return out
}
