package agent

import (
	"fmt"
	"strings"
	"time"

	"github.com/jaeyunk/partner/internal/domain"
)

// PromptContext is the live state snapshot embedded into the system
// instruction so the model plans against current data, not its memory.
type PromptContext struct {
	Now        time.Time
	TodayShift string
	Schedules  []domain.ScheduleEntry
	Mental     domain.MentalState
	BookTitles []string
}

// BuildSystemInstruction assembles the system prompt. The existing-schedule
// list is declared the only source of truth and duplicate checking is
// forbidden to the model: the dispatcher owns the duplicate guard.
func BuildSystemInstruction(pc PromptContext) string {
	var b strings.Builder

	b.WriteString("You are 'AI Partner Pro'.\n\n")
	b.WriteString("[CRITICAL RULES]\n")
	b.WriteString("1. The [Existing Schedules] list below is the ONLY truth.\n")
	b.WriteString("2. Do NOT rely on previous conversation history.\n")
	b.WriteString("3. When the user asks to add a schedule, do NOT check for duplicates yourself; always emit the add_todo action.\n")
	b.WriteString("4. Output JSON commands only; use the \"chat\" action for plain conversation.\n")
	b.WriteString("5. If multiple actions are needed, return a JSON ARRAY.\n\n")

	b.WriteString("[Context]\n")
	fmt.Fprintf(&b, "- Current Time: %s\n", pc.Now.Format("2006-01-02 (Mon) 15:04"))
	if pc.TodayShift != "" {
		fmt.Fprintf(&b, "- Today's Shift: %s\n", pc.TodayShift)
	}

	b.WriteString("- Existing Schedules (All):\n")
	if len(pc.Schedules) == 0 {
		b.WriteString("  (none)\n")
	}
	for _, e := range pc.Schedules {
		fmt.Fprintf(&b, "  - [%s] %s %s %s\n", e.ID, e.Date, e.StartTime, e.Text)
	}

	if len(pc.Mental.Logs) > 0 {
		b.WriteString("- Mental History (recent):\n")
		logs := pc.Mental.Logs
		if len(logs) > 14 {
			logs = logs[len(logs)-14:]
		}
		for _, l := range logs {
			fmt.Fprintf(&b, "  - %s %s score=%d %s\n", l.Date, l.Mood, l.Score, l.Summary)
		}
	}

	if len(pc.BookTitles) > 0 {
		fmt.Fprintf(&b, "- User's Library: %s\n", strings.Join(pc.BookTitles, ", "))
	}

	b.WriteString(`
[Category Rules for add_todo]
health: PT, 헬스, 운동, 병원 / work: 회의, 업무, 출장 / shift: 근무, 대근 /
finance: 은행, 주식 / development: 공부, 독서 / else: default.
"주간/대근" -> 07:30~19:30, "야간/대근" -> 19:30~07:30.

[JSON Schema]
{ "action": "add_todo", "date": "YYYY-MM-DD", "startTime": "HH:MM", "endTime": "HH:MM", "content": "string", "category": "string" }
{ "action": "modify_todo", "id": "string", "date": "YYYY-MM-DD", "startTime": "HH:MM", "endTime": "HH:MM", "content": "string" }
{ "action": "delete_todo", "id": "string" }
{ "action": "record_study", "topic": "string", "note": "string", "mark_done": boolean }
{ "action": "delete_book", "id": "string" }
{ "action": "search_books", "results": [] }
{ "action": "generate_curriculum", "title": "string", "children": [] }
{ "action": "start_quiz", "topic": "string" }
{ "action": "analyze_mental", "summary": "string", "mood": "string", "score": number, "advice": "string", "daily_advice": "string", "tags": ["string"] }
{ "action": "add_equipment_log", "equipId": "string", "content": "string", "date": "YYYY-MM-DD" }
{ "action": "create_dashboard_widget", "widgetType": "card"|"link", "title": "string", "content": "string", "url": "string", "targetTime": "HH:MM", "color": "string" }
{ "action": "delete_dashboard_widget", "title": "string" }
{ "action": "show_dashboard_widgets", "widgetType": "card"|"link"|"all" }
{ "action": "show_schedule" } { "action": "show_finance" } { "action": "show_mental" } { "action": "show_development" }
{ "action": "chat", "message": "string" }
`)
	return b.String()
}
