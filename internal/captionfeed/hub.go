// Package captionfeed broadcasts kiosk display events to WebSocket clients.
//
// The kiosk screen is a browser page connected to GET /ws/captions. A [Hub]
// implements caption.Display, so the caption pacer drives it directly, and
// additionally carries the echoed partial identifier, status lines and the
// looked-up record. Newly connected clients receive the current caption,
// echo and status first.
package captionfeed

import (
	"context"
	"encoding/json"
	"log/slog"
	"net/http"
	"sync"
	"time"

	"github.com/coder/websocket"

	"github.com/MrWong99/courtkiosk/pkg/caption"
)

// Event types.
const (
	TypeReveal = "reveal"
	TypeClear  = "clear"
	TypeEcho   = "echo"
	TypeStatus = "status"
	TypeRecord = "record"
)

// Event is one JSON message sent to display clients.
type Event struct {
	Type  string `json:"type"`
	Index int    `json:"index,omitempty"`
	Word  string `json:"word,omitempty"`
	Text  string `json:"text,omitempty"`
	// AtMS is the scheduled reveal time in milliseconds since playback start.
	AtMS   int64     `json:"at_ms,omitempty"`
	Record any       `json:"record,omitempty"`
	Time   time.Time `json:"time"`
}

const (
	defaultBuffer = 64
	writeTimeout  = 5 * time.Second
)

var _ caption.Display = (*Hub)(nil)

// Option configures a [Hub].
type Option func(*Hub)

// WithBuffer sets the per-client queue length. Clients whose queue fills up
// are disconnected.
func WithBuffer(n int) Option {
	return func(h *Hub) {
		if n > 0 {
			h.buffer = n
		}
	}
}

// WithOriginPatterns allows cross-origin display pages matching patterns.
func WithOriginPatterns(patterns ...string) Option {
	return func(h *Hub) { h.origins = patterns }
}

// WithClientObserver registers fn to run with +1 or -1 whenever a display
// client connects or is dropped.
func WithClientObserver(fn func(delta int64)) Option {
	return func(h *Hub) {
		if fn != nil {
			h.onClients = fn
		}
	}
}

// Hub fans events out to connected clients. It is safe for concurrent use.
type Hub struct {
	buffer  int
	origins []string
	now     func() time.Time

	onClients func(delta int64)

	mu      sync.Mutex
	clients map[*client]struct{}
	caption string
	echo    string
	status  string
}

type client struct {
	send chan Event
	// gone is closed when the hub drops the client.
	gone chan struct{}
	once sync.Once
}

func (c *client) drop() { c.once.Do(func() { close(c.gone) }) }

// New returns an empty hub.
func New(opts ...Option) *Hub {
	h := &Hub{
		buffer:  defaultBuffer,
		now:       time.Now,
		clients:   make(map[*client]struct{}),
		onClients: func(int64) {},
	}
	for _, o := range opts {
		o(h)
	}
	return h
}

// Clients returns the number of connected clients.
func (h *Hub) Clients() int {
	h.mu.Lock()
	defer h.mu.Unlock()
	return len(h.clients)
}

// Reveal implements caption.Display.
func (h *Hub) Reveal(_ context.Context, u caption.Update) error {
	h.mu.Lock()
	h.caption = u.Text
	h.mu.Unlock()
	h.broadcast(Event{Type: TypeReveal, Index: u.Index, Word: u.Word, Text: u.Text, AtMS: u.At.Milliseconds()})
	return nil
}

// Clear implements caption.Display.
func (h *Hub) Clear(context.Context) error {
	h.mu.Lock()
	h.caption = ""
	h.mu.Unlock()
	h.broadcast(Event{Type: TypeClear})
	return nil
}

// Echo shows the identifier dictated so far.
func (h *Hub) Echo(_ context.Context, partial string) {
	h.mu.Lock()
	h.echo = partial
	h.mu.Unlock()
	h.broadcast(Event{Type: TypeEcho, Text: partial})
}

// Status shows a short status line such as "Listening Case Number...".
func (h *Hub) Status(_ context.Context, msg string) {
	h.mu.Lock()
	h.status = msg
	h.mu.Unlock()
	h.broadcast(Event{Type: TypeStatus, Text: msg})
}

// Record shows a looked-up record. A nil record clears the table.
func (h *Hub) Record(_ context.Context, rec any) {
	h.broadcast(Event{Type: TypeRecord, Record: rec})
}

func (h *Hub) broadcast(ev Event) {
	ev.Time = h.now()
	h.mu.Lock()
	defer h.mu.Unlock()
	for c := range h.clients {
		select {
		case c.send <- ev:
		default:
			slog.Warn("captionfeed: dropping slow client")
			delete(h.clients, c)
			h.onClients(-1)
			c.drop()
		}
	}
}

// snapshot returns the events that bring a new client up to date.
func (h *Hub) snapshot() []Event {
	now := h.now()
	var evs []Event
	if h.status != "" {
		evs = append(evs, Event{Type: TypeStatus, Text: h.status, Time: now})
	}
	if h.echo != "" {
		evs = append(evs, Event{Type: TypeEcho, Text: h.echo, Time: now})
	}
	if h.caption != "" {
		evs = append(evs, Event{Type: TypeReveal, Text: h.caption, Time: now})
	}
	return evs
}

func (h *Hub) register() *client {
	c := &client{send: make(chan Event, h.buffer), gone: make(chan struct{})}
	h.mu.Lock()
	for _, ev := range h.snapshot() {
		select {
		case c.send <- ev:
		default:
		}
	}
	h.clients[c] = struct{}{}
	h.onClients(1)
	h.mu.Unlock()
	return c
}

func (h *Hub) unregister(c *client) {
	h.mu.Lock()
	if _, ok := h.clients[c]; ok {
		delete(h.clients, c)
		h.onClients(-1)
	}
	h.mu.Unlock()
	c.drop()
}

// ServeHTTP upgrades the request and streams events until the client
// disconnects or the request context ends.
func (h *Hub) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	conn, err := websocket.Accept(w, r, &websocket.AcceptOptions{OriginPatterns: h.origins})
	if err != nil {
		slog.Debug("captionfeed: accept failed", "err", err)
		return
	}
	defer conn.CloseNow()

	// Display clients never send; CloseRead handles pings and close frames.
	ctx := conn.CloseRead(r.Context())

	c := h.register()
	defer h.unregister(c)

	for {
		select {
		case <-ctx.Done():
			return
		case <-c.gone:
			conn.Close(websocket.StatusPolicyViolation, "client too slow")
			return
		case ev := <-c.send:
			data, err := json.Marshal(ev)
			if err != nil {
				slog.Error("captionfeed: marshal event", "err", err)
				continue
			}
			wctx, cancel := context.WithTimeout(ctx, writeTimeout)
			err = conn.Write(wctx, websocket.MessageText, data)
			cancel()
			if err != nil {
				return
			}
		}
	}
}
