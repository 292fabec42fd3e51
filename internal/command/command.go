// Package command turns raw model output into typed mutation commands.
package command

import (
	"bytes"
	"encoding/json"
	"strconv"
)

// Action names the fixed command set the model may emit.
const (
	ActionAddTodo      = "add_todo"
	ActionModifyTodo   = "modify_todo"
	ActionDeleteTodo   = "delete_todo"
	ActionRecordStudy  = "record_study"
	ActionDeleteBook   = "delete_book"
	ActionSearchBooks  = "search_books"
	ActionCurriculum   = "generate_curriculum"
	ActionStartQuiz    = "start_quiz"
	ActionAnalyzeMind  = "analyze_mental"
	ActionEquipmentLog = "add_equipment_log"
	ActionCreateWidget = "create_dashboard_widget"
	ActionDeleteWidget = "delete_dashboard_widget"
	ActionShowWidgets  = "show_dashboard_widgets"
	ActionShowSchedule = "show_schedule"
	ActionShowFinance  = "show_finance"
	ActionShowMental   = "show_mental"
	ActionShowDev      = "show_development"
	ActionChat         = "chat"
)

// FlexID decodes a JSON string or number into a normalized string. The model
// drifts between the two for ids, so equality checks always go through this.
type FlexID string

// UnmarshalJSON accepts "42", 42 and 42.0 alike.
func (f *FlexID) UnmarshalJSON(b []byte) error {
	b = bytes.TrimSpace(b)
	if len(b) == 0 || string(b) == "null" {
		*f = ""
		return nil
	}
	if b[0] == '"' {
		var s string
		if err := json.Unmarshal(b, &s); err != nil {
			return err
		}
		*f = FlexID(s)
		return nil
	}
	var n json.Number
	if err := json.Unmarshal(b, &n); err != nil {
		return err
	}
	if i, err := n.Int64(); err == nil {
		*f = FlexID(strconv.FormatInt(i, 10))
		return nil
	}
	*f = FlexID(n.String())
	return nil
}

// Command is one tagged mutation/query request. Only Action is always set;
// the rest are payload fields of whichever action was emitted. Commands are
// transient: dispatched once, never persisted.
type Command struct {
	Action string `json:"action"`

	// schedule
	ID        FlexID `json:"id,omitempty"`
	Date      string `json:"date,omitempty"`
	StartTime string `json:"startTime,omitempty"`
	EndTime   string `json:"endTime,omitempty"`
	Content   string `json:"content,omitempty"`
	Category  string `json:"category,omitempty"`

	// study
	Topic    string          `json:"topic,omitempty"`
	Note     string          `json:"note,omitempty"`
	MarkDone bool            `json:"mark_done,omitempty"`
	Children json.RawMessage `json:"children,omitempty"`
	Results  json.RawMessage `json:"results,omitempty"`

	// mental
	Summary     string   `json:"summary,omitempty"`
	Mood        string   `json:"mood,omitempty"`
	Score       int      `json:"score,omitempty"`
	Advice      string   `json:"advice,omitempty"`
	DailyAdvice string   `json:"daily_advice,omitempty"`
	Tags        []string `json:"tags,omitempty"`

	// equipment
	EquipID FlexID `json:"equipId,omitempty"`

	// widgets
	WidgetType string          `json:"widgetType,omitempty"`
	Title      string          `json:"title,omitempty"`
	URL        string          `json:"url,omitempty"`
	TargetTime string          `json:"targetTime,omitempty"`
	Color      string          `json:"color,omitempty"`
	Data       json.RawMessage `json:"data,omitempty"`

	// chat
	Message string `json:"message,omitempty"`
}
