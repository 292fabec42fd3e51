package api

import (
	"encoding/json"
	"io"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/jaeyunk/partner/internal/agent"
	"github.com/jaeyunk/partner/internal/command"
	"github.com/jaeyunk/partner/internal/dispatch"
	"github.com/jaeyunk/partner/internal/domain"
	"github.com/jaeyunk/partner/internal/state"
	"github.com/jaeyunk/partner/internal/store"
)

const (
	replyAIDisabled   = "AI 기능이 설정되어 있지 않아요. API 키를 확인해 주세요."
	replyModelFailure = "죄송해요, 네트워크 연결 상태가 좋지 않아 잠시 생각할 시간이 필요해요."
	replyParseFailure = "죄송해요, 응답을 이해하지 못했어요. 다시 한 번 말씀해 주시겠어요?"
)

// ChatHandler serves the chat endpoint and the domain state surface.
type ChatHandler struct {
	st   *state.App
	svc  *agent.Service // nil when AI is disabled
	disp *dispatch.Dispatcher
	chat *store.ChatStore
}

// NewChatHandler creates the handler. svc may be nil; chat requests then
// answer with a fixed disabled notice.
func NewChatHandler(st *state.App, svc *agent.Service, disp *dispatch.Dispatcher, chat *store.ChatStore) *ChatHandler {
	return &ChatHandler{st: st, svc: svc, disp: disp, chat: chat}
}

// RegisterRoutes registers chat and state routes.
func (h *ChatHandler) RegisterRoutes(r chi.Router) {
	r.Route("/api", func(r chi.Router) {
		r.Post("/chat", h.Chat)
		r.Get("/history", h.History)
		r.Get("/state/{domain}", h.GetState)
		r.Put("/state/{domain}", h.PutState)
	})
}

type chatRequest struct {
	Message string `json:"message"`
}

// Chat runs one utterance through the model, the interpreter and the
// dispatcher, and answers with the accumulated reply and payloads.
func (h *ChatHandler) Chat(w http.ResponseWriter, r *http.Request) {
	var req chatRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		Error(w, http.StatusBadRequest, "invalid request body")
		return
	}
	if req.Message == "" {
		Error(w, http.StatusBadRequest, "message cannot be empty")
		return
	}

	h.appendHistory(r, "user", "text", req.Message)

	if h.svc == nil {
		h.respond(w, r, dispatch.Outcome{Reply: replyAIDisabled})
		return
	}

	raw, err := h.svc.Ask(r.Context(), req.Message)
	if err != nil {
		slog.Error("model call failed", "error", err)
		h.respond(w, r, dispatch.Outcome{Reply: replyModelFailure})
		return
	}

	result, err := command.Parse(raw)
	if err != nil {
		// Malformed model output: one apologetic reply, no state mutation.
		slog.Warn("model response unparseable", "error", err, "text", raw)
		h.respond(w, r, dispatch.Outcome{Reply: replyParseFailure})
		return
	}
	if result.Raw != nil {
		h.respond(w, r, dispatch.Outcome{
			Payloads: []dispatch.Payload{{Kind: "raw", Data: result.Raw}},
		})
		return
	}

	h.respond(w, r, h.disp.Dispatch(r.Context(), result.Commands))
}

func (h *ChatHandler) respond(w http.ResponseWriter, r *http.Request, out dispatch.Outcome) {
	if out.Reply != "" {
		h.appendHistory(r, "ai", "text", out.Reply)
	}
	for _, p := range out.Payloads {
		h.appendHistory(r, "ai", p.Kind, "")
	}
	JSON(w, http.StatusOK, out)
}

func (h *ChatHandler) appendHistory(r *http.Request, role, kind, content string) {
	if h.chat == nil {
		return
	}
	msg := domain.ChatMessage{Role: role, Kind: kind, Content: content}
	if err := h.chat.AppendMessage(r.Context(), &msg); err != nil {
		slog.Warn("append chat history failed", "role", role, "error", err)
	}
}

// History returns the recent transcript, oldest first.
func (h *ChatHandler) History(w http.ResponseWriter, r *http.Request) {
	if h.chat == nil {
		JSON(w, http.StatusOK, []domain.ChatMessage{})
		return
	}
	msgs, err := h.chat.RecentMessages(r.Context(), 100)
	if err != nil {
		slog.Error("load chat history failed", "error", err)
		Error(w, http.StatusInternalServerError, "failed to load history")
		return
	}
	if msgs == nil {
		msgs = []domain.ChatMessage{}
	}
	JSON(w, http.StatusOK, msgs)
}

func validDomain(key string) bool {
	for _, d := range store.Domains {
		if d == key {
			return true
		}
	}
	return false
}

// GetState returns one domain's aggregate as JSON.
func (h *ChatHandler) GetState(w http.ResponseWriter, r *http.Request) {
	key := chi.URLParam(r, "domain")
	if !validDomain(key) {
		Error(w, http.StatusNotFound, "unknown domain")
		return
	}
	doc, err := h.st.Snapshot(key)
	if err != nil {
		Error(w, http.StatusInternalServerError, "failed to read state")
		return
	}
	Raw(w, http.StatusOK, doc)
}

// PutState replaces one domain's aggregate with a document from a direct UI
// edit. It runs through the same mutation path as commands, so it persists
// and broadcasts like any local change.
func (h *ChatHandler) PutState(w http.ResponseWriter, r *http.Request) {
	key := chi.URLParam(r, "domain")
	if !validDomain(key) {
		Error(w, http.StatusNotFound, "unknown domain")
		return
	}
	doc, err := io.ReadAll(http.MaxBytesReader(w, r.Body, 1<<20))
	if err != nil {
		Error(w, http.StatusBadRequest, "failed to read body")
		return
	}
	if err := h.st.ApplyLocal(key, doc); err != nil {
		Error(w, http.StatusBadRequest, "invalid state document")
		return
	}
	JSON(w, http.StatusOK, map[string]string{"status": "ok"})
}
