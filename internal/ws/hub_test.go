package ws

import (
	"context"
	"encoding/json"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/coder/websocket"
)

func dialTestHub(t *testing.T, h *Hub) *websocket.Conn {
	t.Helper()
	srv := httptest.NewServer(h)
	t.Cleanup(srv.Close)

	url := "ws" + strings.TrimPrefix(srv.URL, "http")
	conn, _, err := websocket.Dial(context.Background(), url, nil)
	if err != nil {
		t.Fatalf("dial failed: %v", err)
	}
	t.Cleanup(func() { _ = conn.Close(websocket.StatusNormalClosure, "") })
	return conn
}

func TestBroadcast_DeliversToClient(t *testing.T) {
	h := NewHub()
	conn := dialTestHub(t, h)

	// Registration happens in the server goroutine after the upgrade.
	deadline := time.Now().Add(2 * time.Second)
	for {
		h.mu.Lock()
		n := len(h.conns)
		h.mu.Unlock()
		if n == 1 {
			break
		}
		if time.Now().After(deadline) {
			t.Fatal("client never registered")
		}
		time.Sleep(10 * time.Millisecond)
	}

	h.DomainUpdated("schedules")

	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer cancel()
	_, data, err := conn.Read(ctx)
	if err != nil {
		t.Fatalf("read failed: %v", err)
	}
	var ev Event
	if err := json.Unmarshal(data, &ev); err != nil {
		t.Fatalf("event is not valid JSON: %v", err)
	}
	if ev.Type != "domain_updated" || ev.Domain != "schedules" {
		t.Errorf("Unexpected event: %+v", ev)
	}
}

func TestBroadcast_ReturnsImmediately(t *testing.T) {
	h := NewHub()
	_ = dialTestHub(t, h)

	// Writes run in their own goroutines; the caller must come back right
	// away regardless of client behavior.
	start := time.Now()
	h.Notify("알림", "테스트")
	if elapsed := time.Since(start); elapsed > time.Second {
		t.Errorf("Broadcast blocked the caller for %v", elapsed)
	}
}
