package api

import (
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/jaeyunk/partner/internal/store"
)

// HealthHandler reports service and chat-store health.
type HealthHandler struct {
	chat    *store.ChatStore
	started time.Time
}

// NewHealthHandler creates a health handler. chat may be nil.
func NewHealthHandler(chat *store.ChatStore) *HealthHandler {
	return &HealthHandler{chat: chat, started: time.Now()}
}

// Health answers with uptime and database status.
func (h *HealthHandler) Health(w http.ResponseWriter, r *http.Request) {
	dbStatus := "disabled"
	status := http.StatusOK
	if h.chat != nil {
		dbStatus = "ok"
		if err := h.chat.Ping(r.Context()); err != nil {
			dbStatus = "unreachable"
			status = http.StatusServiceUnavailable
		}
	}
	JSON(w, status, map[string]string{
		"status":   "ok",
		"database": dbStatus,
		"uptime":   time.Since(h.started).Round(time.Second).String(),
	})
}

// RegisterHealth registers the health route.
func (h *HealthHandler) RegisterHealth(r chi.Router) {
	r.Get("/api/health", h.Health)
}
