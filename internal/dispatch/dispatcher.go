// Package dispatch applies parsed commands to the domain state.
package dispatch

import (
	"context"
	"encoding/json"
	"log/slog"
	"strings"
	"time"

	"github.com/jaeyunk/partner/internal/command"
	"github.com/jaeyunk/partner/internal/domain"
	"github.com/jaeyunk/partner/internal/state"
	"github.com/jaeyunk/partner/internal/store"
)

// Payload is a structured reply for commands that answer with data or a view
// switch instead of (not in addition to) a text line.
type Payload struct {
	Kind    string          `json:"kind"` // "widgets", "view", "quiz", "books", "raw"
	View    string          `json:"view,omitempty"`
	Topic   string          `json:"topic,omitempty"`
	Widgets []domain.Widget `json:"widgets,omitempty"`
	Data    json.RawMessage `json:"data,omitempty"`
}

// Outcome is the combined result of one dispatch batch.
type Outcome struct {
	Reply    string    `json:"reply"`
	Payloads []Payload `json:"payloads,omitempty"`
}

// Dispatcher validates and applies commands. It holds the state handle and
// the gateway: duplicate checks deliberately re-fetch authoritative state
// from the gateway instead of trusting the in-memory cache, which defends
// against concurrent external writers.
type Dispatcher struct {
	st  *state.App
	gw  store.Gateway
	now func() time.Time
}

// New creates a dispatcher over the given state handle and gateway.
func New(st *state.App, gw store.Gateway) *Dispatcher {
	return &Dispatcher{st: st, gw: gw, now: time.Now}
}

// Dispatch applies commands strictly in order. Each command yields at most
// one reply line or one payload; a command's failure is reported in its own
// line and never aborts the rest of the batch. Lines are joined with
// newlines into the user-visible reply.
func (d *Dispatcher) Dispatch(ctx context.Context, cmds []command.Command) Outcome {
	var lines []string
	var payloads []Payload

	for _, c := range cmds {
		line, payload := d.apply(ctx, c)
		if payload != nil {
			payloads = append(payloads, *payload)
			continue
		}
		if line != "" {
			lines = append(lines, line)
		}
	}
	return Outcome{Reply: strings.Join(lines, "\n"), Payloads: payloads}
}

func (d *Dispatcher) apply(ctx context.Context, c command.Command) (string, *Payload) {
	switch c.Action {
	case command.ActionAddTodo:
		return d.addTodo(ctx, c), nil
	case command.ActionModifyTodo:
		return d.modifyTodo(c), nil
	case command.ActionDeleteTodo:
		return d.deleteTodo(c), nil
	case command.ActionRecordStudy:
		return d.recordStudy(c), nil
	case command.ActionDeleteBook:
		return d.deleteBook(c), nil
	case command.ActionCurriculum:
		return d.generateCurriculum(c), nil
	case command.ActionStartQuiz:
		return d.startQuiz(c)
	case command.ActionSearchBooks:
		return d.searchBooks(c)
	case command.ActionAnalyzeMind:
		return d.analyzeMental(c), nil
	case command.ActionEquipmentLog:
		return d.addEquipmentLog(c), nil
	case command.ActionCreateWidget:
		return d.createWidget(c), nil
	case command.ActionDeleteWidget:
		return d.deleteWidget(c), nil
	case command.ActionShowWidgets:
		return d.showWidgets(c)
	case command.ActionShowSchedule:
		return "", &Payload{Kind: "view", View: "schedule"}
	case command.ActionShowFinance:
		return "", &Payload{Kind: "view", View: "finance"}
	case command.ActionShowMental:
		return "", &Payload{Kind: "view", View: "mental"}
	case command.ActionShowDev:
		return "", &Payload{Kind: "view", View: "development"}
	case command.ActionChat:
		return c.Message, nil
	default:
		// Likely a hallucinated action; degrade gracefully but never
		// drop it silently.
		slog.Warn("unrecognized command action ignored", "action", c.Action)
		return "", nil
	}
}
