package resilience

import (
	"errors"
	"slices"
	"sync"
	"testing"
	"time"
)

var errTest = errors.New("test error")

// stepClock is a manual clock for breaker tests.
type stepClock struct {
	mu sync.Mutex
	t  time.Time
}

func newStepClock() *stepClock {
	return &stepClock{t: time.Date(2026, 3, 2, 9, 0, 0, 0, time.UTC)}
}

func (c *stepClock) Now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.t
}

func (c *stepClock) Advance(d time.Duration) {
	c.mu.Lock()
	c.t = c.t.Add(d)
	c.mu.Unlock()
}

// transitions records state change callbacks as "from>to".
type transitions struct {
	mu  sync.Mutex
	got []string
}

func (tr *transitions) record(_ string, from, to State) {
	tr.mu.Lock()
	tr.got = append(tr.got, from.String()+">"+to.String())
	tr.mu.Unlock()
}

func (tr *transitions) list() []string {
	tr.mu.Lock()
	defer tr.mu.Unlock()
	return slices.Clone(tr.got)
}

func fail() error    { return errTest }
func succeed() error { return nil }

// tripped returns a breaker that has just opened after two failures.
func tripped(t *testing.T, clk *stepClock, tr *transitions, halfOpenMax int) *CircuitBreaker {
	t.Helper()
	cb := NewCircuitBreaker(CircuitBreakerConfig{
		Name:          "whisper",
		MaxFailures:   2,
		ResetTimeout:  time.Minute,
		HalfOpenMax:   halfOpenMax,
		Now:           clk.Now,
		OnStateChange: tr.record,
	})
	_ = cb.Execute(fail)
	_ = cb.Execute(fail)
	if st := cb.State(); st != StateOpen {
		t.Fatalf("state = %v after two failures, want open", st)
	}
	return cb
}

func TestNewCircuitBreaker_Defaults(t *testing.T) {
	t.Parallel()

	cb := NewCircuitBreaker(CircuitBreakerConfig{Name: "coqui"})
	if cb.maxFailures != 5 || cb.resetTimeout != 30*time.Second || cb.halfOpenMax != 3 {
		t.Errorf("defaults = (%d, %v, %d), want (5, 30s, 3)", cb.maxFailures, cb.resetTimeout, cb.halfOpenMax)
	}
	if cb.State() != StateClosed {
		t.Errorf("initial state = %v, want closed", cb.State())
	}
}

func TestCircuitBreaker_TripsAndRejects(t *testing.T) {
	t.Parallel()

	clk, tr := newStepClock(), &transitions{}
	cb := tripped(t, clk, tr, 1)

	called := false
	err := cb.Execute(func() error {
		called = true
		return nil
	})
	if !errors.Is(err, ErrCircuitOpen) {
		t.Fatalf("err = %v, want ErrCircuitOpen", err)
	}
	if called {
		t.Error("fn ran while the breaker was open")
	}
	if got := tr.list(); !slices.Equal(got, []string{"closed>open"}) {
		t.Errorf("transitions = %v", got)
	}
}

func TestCircuitBreaker_SuccessClearsFailures(t *testing.T) {
	t.Parallel()

	cb := NewCircuitBreaker(CircuitBreakerConfig{MaxFailures: 3})
	for _, fn := range []func() error{fail, fail, succeed, fail, fail} {
		_ = cb.Execute(fn)
	}
	if st := cb.State(); st != StateClosed {
		t.Fatalf("state = %v, want closed: the success should reset the count", st)
	}
	_ = cb.Execute(fail)
	if st := cb.State(); st != StateOpen {
		t.Fatalf("state = %v after three consecutive failures, want open", st)
	}
}

func TestCircuitBreaker_HalfOpenAfterTimeout(t *testing.T) {
	t.Parallel()

	clk, tr := newStepClock(), &transitions{}
	cb := tripped(t, clk, tr, 2)

	clk.Advance(59 * time.Second)
	if st := cb.State(); st != StateOpen {
		t.Fatalf("state = %v before the timeout, want open", st)
	}
	clk.Advance(time.Second)
	if st := cb.State(); st != StateHalfOpen {
		t.Fatalf("state = %v at the timeout, want half-open", st)
	}
	// Reporting half-open does not transition.
	if got := tr.list(); len(got) != 1 {
		t.Errorf("transitions = %v, want only the trip", got)
	}
}

func TestCircuitBreaker_ProbesClose(t *testing.T) {
	t.Parallel()

	clk, tr := newStepClock(), &transitions{}
	cb := tripped(t, clk, tr, 2)
	clk.Advance(time.Minute)

	for i := range 2 {
		if err := cb.Execute(succeed); err != nil {
			t.Fatalf("probe %d: %v", i, err)
		}
	}
	if st := cb.State(); st != StateClosed {
		t.Fatalf("state = %v, want closed after successful probes", st)
	}
	want := []string{"closed>open", "open>half-open", "half-open>closed"}
	if got := tr.list(); !slices.Equal(got, want) {
		t.Errorf("transitions = %v, want %v", got, want)
	}
}

func TestCircuitBreaker_FailedProbeReopens(t *testing.T) {
	t.Parallel()

	clk, tr := newStepClock(), &transitions{}
	cb := tripped(t, clk, tr, 3)
	clk.Advance(time.Minute)

	if err := cb.Execute(fail); !errors.Is(err, errTest) {
		t.Fatalf("probe err = %v, want the backend error", err)
	}
	if st := cb.State(); st != StateOpen {
		t.Fatalf("state = %v, want open after a failed probe", st)
	}
	// The reset timeout restarts from the failed probe.
	clk.Advance(30 * time.Second)
	if err := cb.Execute(succeed); !errors.Is(err, ErrCircuitOpen) {
		t.Fatalf("err = %v, want ErrCircuitOpen", err)
	}
	want := []string{"closed>open", "open>half-open", "half-open>open"}
	if got := tr.list(); !slices.Equal(got, want) {
		t.Errorf("transitions = %v, want %v", got, want)
	}
}

func TestCircuitBreaker_ProbeBudget(t *testing.T) {
	t.Parallel()

	clk := newStepClock()
	cb := tripped(t, clk, &transitions{}, 2)
	clk.Advance(time.Minute)

	// Two slow probes occupy the budget; a third call is refused.
	release := make(chan struct{})
	var wg sync.WaitGroup
	started := make(chan struct{}, 2)
	for range 2 {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_ = cb.Execute(func() error {
				started <- struct{}{}
				<-release
				return nil
			})
		}()
	}
	<-started
	<-started
	if err := cb.Execute(succeed); !errors.Is(err, ErrCircuitOpen) {
		t.Errorf("third probe err = %v, want ErrCircuitOpen", err)
	}
	close(release)
	wg.Wait()

	if st := cb.State(); st != StateClosed {
		t.Errorf("state = %v, want closed", st)
	}
}

func TestCircuitBreaker_Reset(t *testing.T) {
	t.Parallel()

	clk, tr := newStepClock(), &transitions{}
	cb := tripped(t, clk, tr, 1)

	cb.Reset()
	if st := cb.State(); st != StateClosed {
		t.Fatalf("state = %v, want closed after reset", st)
	}
	if err := cb.Execute(succeed); err != nil {
		t.Fatalf("unexpected error after reset: %v", err)
	}
	cb.Reset()
	if got := tr.list(); !slices.Equal(got, []string{"closed>open", "open>closed"}) {
		t.Errorf("transitions = %v; resetting a closed breaker should not report", got)
	}
}

func TestState_String(t *testing.T) {
	t.Parallel()

	tests := []struct {
		state State
		want  string
	}{
		{StateClosed, "closed"},
		{StateOpen, "open"},
		{StateHalfOpen, "half-open"},
		{State(99), "unknown"},
	}
	for _, tt := range tests {
		if got := tt.state.String(); got != tt.want {
			t.Errorf("State(%d).String() = %q, want %q", tt.state, got, tt.want)
		}
	}
}

func TestCircuitBreaker_IgnoredErrorsDoNotTrip(t *testing.T) {
	t.Parallel()

	errSilence := errors.New("silence")
	cb := NewCircuitBreaker(CircuitBreakerConfig{
		MaxFailures: 1,
		Ignore:      func(err error) bool { return errors.Is(err, errSilence) },
	})

	for range 3 {
		if err := cb.Execute(func() error { return errSilence }); !errors.Is(err, errSilence) {
			t.Fatalf("err = %v, want the ignored error", err)
		}
	}
	if st := cb.State(); st != StateClosed {
		t.Fatalf("state = %v, want closed", st)
	}
	_ = cb.Execute(fail)
	if st := cb.State(); st != StateOpen {
		t.Fatalf("state = %v, want open", st)
	}
}
