package command

import (
	"encoding/json"
	"errors"
	"testing"
)

func TestParse_SingleObject(t *testing.T) {
	res, err := Parse(`{"action": "add_todo", "content": "PT 예약", "date": "2026-09-01", "startTime": "18:00"}`)
	if err != nil {
		t.Fatalf("Parse failed: %v", err)
	}
	if len(res.Commands) != 1 {
		t.Fatalf("Expected 1 command, got %d", len(res.Commands))
	}
	c := res.Commands[0]
	if c.Action != ActionAddTodo {
		t.Errorf("Expected action %q, got %q", ActionAddTodo, c.Action)
	}
	if c.Content != "PT 예약" || c.Date != "2026-09-01" || c.StartTime != "18:00" {
		t.Errorf("Unexpected payload: %+v", c)
	}
}

func TestParse_Array(t *testing.T) {
	res, err := Parse(`[{"action":"delete_todo","id":123},{"action":"chat","message":"완료!"}]`)
	if err != nil {
		t.Fatalf("Parse failed: %v", err)
	}
	if len(res.Commands) != 2 {
		t.Fatalf("Expected 2 commands, got %d", len(res.Commands))
	}
	if res.Commands[0].ID != "123" {
		t.Errorf("Expected numeric id normalized to \"123\", got %q", res.Commands[0].ID)
	}
	if res.Commands[1].Message != "완료!" {
		t.Errorf("Expected chat message, got %q", res.Commands[1].Message)
	}
}

func TestParse_MarkdownFences(t *testing.T) {
	raw := "```json\n{\"action\": \"show_finance\"}\n```"
	res, err := Parse(raw)
	if err != nil {
		t.Fatalf("Parse failed: %v", err)
	}
	if len(res.Commands) != 1 || res.Commands[0].Action != ActionShowFinance {
		t.Errorf("Expected show_finance command, got %+v", res.Commands)
	}
}

func TestParse_SurroundingProse(t *testing.T) {
	raw := `알겠습니다! 일정을 추가할게요. {"action":"add_todo","content":"회의"} 도움이 되었길 바라요.`
	res, err := Parse(raw)
	if err != nil {
		t.Fatalf("Parse failed: %v", err)
	}
	if len(res.Commands) != 1 || res.Commands[0].Content != "회의" {
		t.Errorf("Expected sliced command, got %+v", res.Commands)
	}
}

func TestParse_RawDataPassthrough(t *testing.T) {
	res, err := Parse(`[{"title":"정보처리기사 실기","author":"김철수"},{"title":"Go 입문"}]`)
	if err != nil {
		t.Fatalf("Parse failed: %v", err)
	}
	if res.Raw == nil {
		t.Fatal("Expected raw data passthrough, got command list")
	}
	if len(res.Commands) != 0 {
		t.Errorf("Expected no commands, got %d", len(res.Commands))
	}
}

func TestParse_Malformed(t *testing.T) {
	_, err := Parse("오늘은 날씨가 좋네요. 무엇을 도와드릴까요?")
	if err == nil {
		t.Fatal("Expected parse error for prose without JSON")
	}
	var parseErr *ParseError
	if !errors.As(err, &parseErr) {
		t.Fatalf("Expected *ParseError, got %T", err)
	}
	if parseErr.Text == "" {
		t.Error("Expected offending text attached to error")
	}
}

func TestFlexID(t *testing.T) {
	tests := []struct {
		name string
		in   string
		want FlexID
	}{
		{"string", `{"id":"abc-42"}`, "abc-42"},
		{"integer", `{"id":42}`, "42"},
		{"float", `{"id":42.5}`, "42.5"},
		{"null", `{"id":null}`, ""},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var c Command
			if err := json.Unmarshal([]byte(tt.in), &c); err != nil {
				t.Fatalf("Unmarshal failed: %v", err)
			}
			if c.ID != tt.want {
				t.Errorf("Expected id %q, got %q", tt.want, c.ID)
			}
		})
	}
}
