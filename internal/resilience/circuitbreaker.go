// Package resilience keeps the kiosk talking when a speech, synthesis or
// translation backend misbehaves.
//
// [CircuitBreaker] stops calling a backend after repeated failures and lets a
// few probe calls through once a cool-down has passed. [FallbackGroup] puts a
// breaker in front of each configured backend and walks them in order.
// [RecognizerFallback], [SynthesizerFallback] and [TranslateFallback] adapt
// the group to the provider interfaces.
//
// All types are safe for concurrent use.
package resilience

import (
	"context"
	"errors"
	"log/slog"
	"sync"
	"time"
)

// ErrCircuitOpen is returned by [CircuitBreaker.Execute] while the breaker
// refuses calls.
var ErrCircuitOpen = errors.New("resilience: circuit breaker is open")

// State is the operating mode of a [CircuitBreaker].
type State int

const (
	// StateClosed forwards every call.
	StateClosed State = iota

	// StateOpen rejects calls with [ErrCircuitOpen] until the reset timeout
	// has passed since the breaker tripped.
	StateOpen

	// StateHalfOpen lets a bounded number of probe calls through. One failed
	// probe re-opens the breaker; enough successful probes close it.
	StateHalfOpen
)

// String returns the label used in logs and metrics.
func (s State) String() string {
	switch s {
	case StateClosed:
		return "closed"
	case StateOpen:
		return "open"
	case StateHalfOpen:
		return "half-open"
	default:
		return "unknown"
	}
}

// CircuitBreakerConfig holds tuning knobs for a [CircuitBreaker]. Zero values
// select the defaults noted on each field.
type CircuitBreakerConfig struct {
	// Name labels the breaker in logs and state change callbacks.
	Name string

	// MaxFailures consecutive failures trip a closed breaker. Default: 5.
	MaxFailures int

	// ResetTimeout is how long a tripped breaker waits before probing.
	// Default: 30s.
	ResetTimeout time.Duration

	// HalfOpenMax bounds the probe calls in the half-open state, and is also
	// the number of successful probes needed to close. Default: 3.
	HalfOpenMax int

	// Ignore reports errors that describe the request rather than the
	// backend, such as silence handed to a recognizer or a cancelled
	// context. They are returned to the caller but never trip the breaker.
	Ignore func(error) bool

	// OnStateChange is called after every transition, outside the lock.
	OnStateChange func(name string, from, to State)

	// Now replaces time.Now. Tests use it to step past the reset timeout.
	Now func() time.Time
}

// CircuitBreaker implements the closed, open and half-open breaker.
type CircuitBreaker struct {
	name         string
	maxFailures  int
	resetTimeout time.Duration
	halfOpenMax  int
	ignore       func(error) bool
	onChange     func(name string, from, to State)
	now          func() time.Time

	mu       sync.Mutex
	state    State
	failures int       // consecutive failures while closed
	openedAt time.Time // when the breaker last tripped
	probes   int       // probe calls admitted while half-open
	probeOK  int       // successful probes while half-open
}

// transition is a state change waiting to be reported.
type transition struct {
	from, to State
}

// NewCircuitBreaker creates a closed [CircuitBreaker] from cfg.
func NewCircuitBreaker(cfg CircuitBreakerConfig) *CircuitBreaker {
	if cfg.MaxFailures <= 0 {
		cfg.MaxFailures = 5
	}
	if cfg.ResetTimeout <= 0 {
		cfg.ResetTimeout = 30 * time.Second
	}
	if cfg.HalfOpenMax <= 0 {
		cfg.HalfOpenMax = 3
	}
	if cfg.Now == nil {
		cfg.Now = time.Now
	}
	return &CircuitBreaker{
		name:         cfg.Name,
		maxFailures:  cfg.MaxFailures,
		resetTimeout: cfg.ResetTimeout,
		halfOpenMax:  cfg.HalfOpenMax,
		ignore:       cfg.Ignore,
		onChange:     cfg.OnStateChange,
		now:          cfg.Now,
		state:        StateClosed,
	}
}

// Execute runs fn unless the breaker refuses the call, in which case it
// returns [ErrCircuitOpen] without calling fn. The error from fn is returned
// unchanged.
func (cb *CircuitBreaker) Execute(fn func() error) error {
	if err := cb.admit(); err != nil {
		return err
	}
	err := fn()
	cb.settle(err)
	return err
}

// Ignored reports whether err is excluded from failure accounting.
func (cb *CircuitBreaker) Ignored(err error) bool {
	return err != nil && cb.ignore != nil && cb.ignore(err)
}

// admit decides whether a call may proceed, moving an expired open breaker
// to half-open.
func (cb *CircuitBreaker) admit() error {
	var tr *transition
	cb.mu.Lock()
	defer func() {
		cb.mu.Unlock()
		cb.notify(tr)
	}()

	switch cb.state {
	case StateOpen:
		if cb.now().Sub(cb.openedAt) < cb.resetTimeout {
			return ErrCircuitOpen
		}
		tr = cb.setState(StateHalfOpen)
	case StateHalfOpen:
		if cb.probes >= cb.halfOpenMax {
			return ErrCircuitOpen
		}
	default:
		return nil
	}
	cb.probes++
	return nil
}

// settle records the outcome of an admitted call against the current state.
func (cb *CircuitBreaker) settle(err error) {
	var tr *transition
	cb.mu.Lock()
	defer func() {
		cb.mu.Unlock()
		cb.notify(tr)
	}()

	failed := err != nil && !cb.Ignored(err)
	switch cb.state {
	case StateClosed:
		if !failed {
			cb.failures = 0
			return
		}
		cb.failures++
		if cb.failures >= cb.maxFailures {
			tr = cb.setState(StateOpen)
		}
	case StateHalfOpen:
		if failed {
			tr = cb.setState(StateOpen)
			return
		}
		cb.probeOK++
		if cb.probeOK >= cb.halfOpenMax {
			tr = cb.setState(StateClosed)
		}
	}
}

// setState switches to s and resets the counters that belong to it. Must be
// called with cb.mu held.
func (cb *CircuitBreaker) setState(s State) *transition {
	from := cb.state
	if from == s {
		return nil
	}
	cb.state = s
	switch s {
	case StateClosed:
		cb.failures = 0
	case StateOpen:
		cb.openedAt = cb.now()
	case StateHalfOpen:
		cb.probes, cb.probeOK = 0, 0
	}

	level := slog.LevelInfo
	if s == StateOpen {
		level = slog.LevelWarn
	}
	slog.Log(context.Background(), level, "resilience: circuit breaker state changed",
		"name", cb.name, "from", from, "to", s, "failures", cb.failures)
	return &transition{from: from, to: s}
}

func (cb *CircuitBreaker) notify(tr *transition) {
	if tr != nil && cb.onChange != nil {
		cb.onChange(cb.name, tr.from, tr.to)
	}
}

// State returns the current [State]. An open breaker whose reset timeout has
// passed reports [StateHalfOpen]; the transition itself happens on the next
// call.
func (cb *CircuitBreaker) State() State {
	cb.mu.Lock()
	defer cb.mu.Unlock()

	if cb.state == StateOpen && cb.now().Sub(cb.openedAt) >= cb.resetTimeout {
		return StateHalfOpen
	}
	return cb.state
}

// Reset forces the breaker closed.
func (cb *CircuitBreaker) Reset() {
	cb.mu.Lock()
	tr := cb.setState(StateClosed)
	cb.failures = 0
	cb.mu.Unlock()
	cb.notify(tr)
}
