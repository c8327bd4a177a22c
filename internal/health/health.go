// Package health serves the kiosk's liveness and readiness probes.
//
// GET /healthz answers 200 with the process uptime as long as the server can
// serve HTTP. GET /readyz runs every registered [Checker] concurrently:
//
//   - all pass: 200, status "ok";
//   - only optional checks fail: 200, status "degraded";
//   - a required check fails: 503, status "fail".
//
// An optional check covers a collaborator the kiosk can do without, such as
// the translator: conversations then continue in English.
package health

import (
	"context"
	"encoding/json"
	"net/http"
	"sync"
	"time"

	"golang.org/x/sync/errgroup"
)

// checkTimeout bounds a single readiness check.
const checkTimeout = 5 * time.Second

// Response statuses.
const (
	StatusOK       = "ok"
	StatusDegraded = "degraded"
	StatusFail     = "fail"
)

// Checker is a named readiness check.
type Checker struct {
	// Name keys the check in the response, e.g. "records" or "stt".
	Name string

	// Check returns nil when the dependency is usable. It must respect ctx.
	Check func(ctx context.Context) error

	// Optional failures degrade readiness instead of failing it.
	Optional bool
}

// Pinger is implemented by dependencies that can report their own health,
// such as record stores.
type Pinger interface {
	Ping(ctx context.Context) error
}

// Ping returns a required [Checker] that pings p.
func Ping(name string, p Pinger) Checker {
	return Checker{Name: name, Check: p.Ping}
}

type result struct {
	Status string            `json:"status"`
	Uptime string            `json:"uptime,omitempty"`
	Checks map[string]string `json:"checks,omitempty"`
}

// Handler serves /healthz and /readyz. The checker list is fixed by [New].
type Handler struct {
	checkers []Checker
	started  time.Time
}

// New creates a [Handler] over checkers.
func New(checkers ...Checker) *Handler {
	return &Handler{
		checkers: append([]Checker(nil), checkers...),
		started:  time.Now(),
	}
}

// Healthz always answers 200 with the uptime.
func (h *Handler) Healthz(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, result{
		Status: StatusOK,
		Uptime: time.Since(h.started).Truncate(time.Second).String(),
	})
}

// Readyz runs the checkers, each under its own [checkTimeout] derived from
// the request context, and reports the combined status.
func (h *Handler) Readyz(w http.ResponseWriter, r *http.Request) {
	res := h.evaluate(r.Context())
	code := http.StatusOK
	if res.Status == StatusFail {
		code = http.StatusServiceUnavailable
	}
	writeJSON(w, code, res)
}

func (h *Handler) evaluate(ctx context.Context) result {
	var (
		mu       sync.Mutex
		g        errgroup.Group
		checks   = make(map[string]string, len(h.checkers))
		failed   bool
		degraded bool
	)
	for _, c := range h.checkers {
		g.Go(func() error {
			cctx, cancel := context.WithTimeout(ctx, checkTimeout)
			defer cancel()
			err := c.Check(cctx)

			mu.Lock()
			defer mu.Unlock()
			switch {
			case err == nil:
				checks[c.Name] = StatusOK
			case c.Optional:
				checks[c.Name] = StatusDegraded + ": " + err.Error()
				degraded = true
			default:
				checks[c.Name] = StatusFail + ": " + err.Error()
				failed = true
			}
			return nil
		})
	}
	_ = g.Wait()

	status := StatusOK
	switch {
	case failed:
		status = StatusFail
	case degraded:
		status = StatusDegraded
	}
	return result{Status: status, Checks: checks}
}

// Register adds GET /healthz and GET /readyz to mux.
func (h *Handler) Register(mux *http.ServeMux) {
	mux.HandleFunc("GET /healthz", h.Healthz)
	mux.HandleFunc("GET /readyz", h.Readyz)
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}
