package captionfeed_test

import (
	"context"
	"encoding/json"
	"net/http/httptest"
	"strings"
	"sync/atomic"
	"testing"
	"time"

	"github.com/coder/websocket"

	"github.com/MrWong99/courtkiosk/internal/captionfeed"
	"github.com/MrWong99/courtkiosk/pkg/caption"
)

func dial(t *testing.T, srv *httptest.Server) *websocket.Conn {
	t.Helper()
	ctx, cancel := context.WithTimeout(context.Background(), 3*time.Second)
	defer cancel()
	conn, _, err := websocket.Dial(ctx, "ws"+strings.TrimPrefix(srv.URL, "http"), nil)
	if err != nil {
		t.Fatalf("dial: %v", err)
	}
	t.Cleanup(func() { conn.CloseNow() })
	return conn
}

func readEvent(t *testing.T, conn *websocket.Conn) captionfeed.Event {
	t.Helper()
	ctx, cancel := context.WithTimeout(context.Background(), 3*time.Second)
	defer cancel()
	_, data, err := conn.Read(ctx)
	if err != nil {
		t.Fatalf("read: %v", err)
	}
	var ev captionfeed.Event
	if err := json.Unmarshal(data, &ev); err != nil {
		t.Fatalf("unmarshal %s: %v", data, err)
	}
	return ev
}

func waitClients(t *testing.T, h *captionfeed.Hub, n int) {
	t.Helper()
	deadline := time.Now().Add(3 * time.Second)
	for h.Clients() != n {
		if time.Now().After(deadline) {
			t.Fatalf("clients = %d, want %d", h.Clients(), n)
		}
		time.Sleep(5 * time.Millisecond)
	}
}

func TestHub_BroadcastsEvents(t *testing.T) {
	t.Parallel()

	h := captionfeed.New()
	srv := httptest.NewServer(h)
	t.Cleanup(srv.Close)

	a := dial(t, srv)
	b := dial(t, srv)
	waitClients(t, h, 2)

	ctx := context.Background()
	h.Echo(ctx, "CWP-1234")
	_ = h.Reveal(ctx, caption.Update{Cue: caption.Cue{Index: 1, Word: "case", At: 1500 * time.Millisecond}, Text: "Your case"})
	_ = h.Clear(ctx)

	for _, conn := range []*websocket.Conn{a, b} {
		if ev := readEvent(t, conn); ev.Type != captionfeed.TypeEcho || ev.Text != "CWP-1234" {
			t.Errorf("first event = %+v", ev)
		}
		ev := readEvent(t, conn)
		if ev.Type != captionfeed.TypeReveal || ev.Word != "case" || ev.Index != 1 || ev.Text != "Your case" || ev.AtMS != 1500 {
			t.Errorf("reveal event = %+v", ev)
		}
		if ev := readEvent(t, conn); ev.Type != captionfeed.TypeClear {
			t.Errorf("third event = %+v", ev)
		}
	}
}

func TestHub_SnapshotForLateClients(t *testing.T) {
	t.Parallel()

	h := captionfeed.New()
	srv := httptest.NewServer(h)
	t.Cleanup(srv.Close)

	ctx := context.Background()
	h.Status(ctx, "Listening Case Year...")
	h.Echo(ctx, "CWP-1234")
	_ = h.Reveal(ctx, caption.Update{Cue: caption.Cue{Word: "Kindly"}, Text: "Kindly"})

	conn := dial(t, srv)
	want := []captionfeed.Event{
		{Type: captionfeed.TypeStatus, Text: "Listening Case Year..."},
		{Type: captionfeed.TypeEcho, Text: "CWP-1234"},
		{Type: captionfeed.TypeReveal, Text: "Kindly"},
	}
	for _, w := range want {
		ev := readEvent(t, conn)
		if ev.Type != w.Type || ev.Text != w.Text {
			t.Errorf("event = %+v, want type %q text %q", ev, w.Type, w.Text)
		}
	}
}

func TestHub_Record(t *testing.T) {
	t.Parallel()

	h := captionfeed.New()
	srv := httptest.NewServer(h)
	t.Cleanup(srv.Close)

	conn := dial(t, srv)
	waitClients(t, h, 1)
	h.Record(context.Background(), map[string]string{"case_number": "2025-001"})

	ev := readEvent(t, conn)
	rec, ok := ev.Record.(map[string]any)
	if ev.Type != captionfeed.TypeRecord || !ok || rec["case_number"] != "2025-001" {
		t.Errorf("event = %+v", ev)
	}
}

func TestHub_UnregistersOnDisconnect(t *testing.T) {
	t.Parallel()

	h := captionfeed.New()
	srv := httptest.NewServer(h)
	t.Cleanup(srv.Close)

	conn := dial(t, srv)
	waitClients(t, h, 1)
	conn.Close(websocket.StatusNormalClosure, "bye")
	waitClients(t, h, 0)
}

func TestHub_ClientObserver(t *testing.T) {
	t.Parallel()

	var count atomic.Int64
	h := captionfeed.New(captionfeed.WithClientObserver(func(d int64) { count.Add(d) }))
	srv := httptest.NewServer(h)
	t.Cleanup(srv.Close)

	a := dial(t, srv)
	dial(t, srv)
	waitClients(t, h, 2)
	if got := count.Load(); got != 2 {
		t.Errorf("observed clients = %d, want 2", got)
	}
	a.Close(websocket.StatusNormalClosure, "bye")
	waitClients(t, h, 1)
	if got := count.Load(); got != 1 {
		t.Errorf("observed clients = %d, want 1", got)
	}
}

func TestHub_NoClients(t *testing.T) {
	t.Parallel()

	h := captionfeed.New(captionfeed.WithBuffer(1))
	if err := h.Reveal(context.Background(), caption.Update{Text: "x"}); err != nil {
		t.Errorf("Reveal: %v", err)
	}
	if err := h.Clear(context.Background()); err != nil {
		t.Errorf("Clear: %v", err)
	}
}
