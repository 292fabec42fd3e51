// Package ws pushes state-change and notification events to UI clients.
package ws

import (
	"context"
	"encoding/json"
	"log/slog"
	"net/http"
	"sync"
	"time"

	"github.com/coder/websocket"
)

const writeTimeout = 5 * time.Second

// Event is one push message to the UI.
type Event struct {
	Type   string `json:"type"` // "domain_updated", "notification"
	Domain string `json:"domain,omitempty"`
	Title  string `json:"title,omitempty"`
	Body   string `json:"body,omitempty"`
}

// Hub fans events out to every connected client. Clients that fail a write
// are dropped; the UI reconnects and re-reads state over HTTP.
type Hub struct {
	mu    sync.Mutex
	conns map[*websocket.Conn]struct{}
}

// NewHub creates an empty hub.
func NewHub() *Hub {
	return &Hub{conns: make(map[*websocket.Conn]struct{})}
}

// ServeHTTP upgrades the request and keeps the connection registered until
// the client goes away. Clients only listen; inbound messages are drained
// and ignored.
func (h *Hub) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	conn, err := websocket.Accept(w, r, &websocket.AcceptOptions{
		OriginPatterns: []string{"*"},
	})
	if err != nil {
		slog.Warn("websocket accept failed", "error", err)
		return
	}

	h.register(conn)
	defer h.unregister(conn)
	defer func() {
		if closeErr := conn.Close(websocket.StatusNormalClosure, "bye"); closeErr != nil {
			slog.Debug("websocket close", "error", closeErr)
		}
	}()

	ctx := r.Context()
	for {
		if _, _, err := conn.Read(ctx); err != nil {
			return
		}
	}
}

func (h *Hub) register(conn *websocket.Conn) {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.conns[conn] = struct{}{}
}

func (h *Hub) unregister(conn *websocket.Conn) {
	h.mu.Lock()
	defer h.mu.Unlock()
	delete(h.conns, conn)
}

// Broadcast sends an event to every connected client. Writes run in their
// own goroutines: Broadcast is called from command handlers via the state
// on-change callback, and a stalled client must not stall the command.
func (h *Hub) Broadcast(ev Event) {
	data, err := json.Marshal(ev)
	if err != nil {
		slog.Error("marshal event failed", "type", ev.Type, "error", err)
		return
	}

	h.mu.Lock()
	conns := make([]*websocket.Conn, 0, len(h.conns))
	for c := range h.conns {
		conns = append(conns, c)
	}
	h.mu.Unlock()

	for _, c := range conns {
		go func(c *websocket.Conn) {
			ctx, cancel := context.WithTimeout(context.Background(), writeTimeout)
			defer cancel()
			if err := c.Write(ctx, websocket.MessageText, data); err != nil {
				slog.Debug("dropping slow websocket client", "error", err)
				h.unregister(c)
				_ = c.Close(websocket.StatusPolicyViolation, "write timeout")
			}
		}(c)
	}
}

// DomainUpdated pushes a state-change event; wired as the state handle's
// on-change callback.
func (h *Hub) DomainUpdated(domain string) {
	h.Broadcast(Event{Type: "domain_updated", Domain: domain})
}

// Notify implements notify.Notifier: the UI shell turns this into an
// OS-level notification and brings the dashboard forward on click.
func (h *Hub) Notify(title, body string) {
	slog.Info("notification", "title", title, "body", body)
	h.Broadcast(Event{Type: "notification", Title: title, Body: body})
}
