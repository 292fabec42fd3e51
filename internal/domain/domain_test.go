package domain

import (
	"testing"
	"time"
)

func TestInferCategory(t *testing.T) {
	tests := []struct {
		text string
		want string
	}{
		{"PT 예약", "health"},
		{"병원 진료", "health"},
		{"팀 회의 준비", "work"},
		{"야간 근무", "shift"},
		{"Go 공부", "development"},
		{"주식 정리", "finance"},
		{"친구 약속", "default"},
	}
	for _, tt := range tests {
		if got := InferCategory(tt.text); got != tt.want {
			t.Errorf("InferCategory(%q) = %q, want %q", tt.text, got, tt.want)
		}
	}
}

func TestInferCategory_HealthBeforeShift(t *testing.T) {
	// "헬스장 근무 전" hits both health and shift keywords; the ordered rule
	// list must pick health.
	if got := InferCategory("헬스장 근무 전"); got != "health" {
		t.Errorf("Expected health to win the ordered rules, got %q", got)
	}
}

func TestNewID_Unique(t *testing.T) {
	now := time.Now()
	seen := make(map[string]struct{})
	for i := 0; i < 1000; i++ {
		id := NewID(now)
		if _, dup := seen[id]; dup {
			t.Fatalf("Duplicate id generated: %s", id)
		}
		seen[id] = struct{}{}
	}
}

func TestMentalRecompute(t *testing.T) {
	s := MentalState{Logs: []MentalLog{
		{Date: "2026-08-30", Mood: "지침", Score: 80},
		{Date: "2026-08-30", Mood: "보통", Score: 60},
		{Date: "2026-08-29", Mood: "좋음", Score: 100}, // different day, excluded
	}}
	s.Recompute("2026-08-30")
	if s.Score != 70 {
		t.Errorf("Expected score 70, got %d", s.Score)
	}
	if s.CurrentMood != "좋음" {
		t.Errorf("Expected most recent mood to win, got %q", s.CurrentMood)
	}
}

func TestMentalRecompute_Empty(t *testing.T) {
	var s MentalState
	s.Recompute("2026-08-30")
	if s.Score != 0 || s.CurrentMood != "" {
		t.Errorf("Expected zero state, got score=%d mood=%q", s.Score, s.CurrentMood)
	}
}

func TestStudyProgress(t *testing.T) {
	root := &StudyNode{Title: "1장", Children: []*StudyNode{
		{Title: "1.1", Done: true},
		{Title: "1.2", Done: false},
	}}
	if got := root.Progress(); got != 50 {
		t.Errorf("Expected parent progress 50, got %v", got)
	}

	leaf := &StudyNode{Title: "단원", Done: true}
	if got := leaf.Progress(); got != 100 {
		t.Errorf("Expected done leaf progress 100, got %v", got)
	}
}

func TestStudyFind_PreOrderFirstMatch(t *testing.T) {
	tree := StudyTree{Books: []*StudyBook{
		{Title: "Go 입문", Children: []*StudyNode{
			{Title: "고루틴 기초", Children: []*StudyNode{
				{Title: "고루틴과 채널"},
			}},
			{Title: "고루틴 심화"},
		}},
	}}
	hit := tree.Find("고루틴")
	if hit == nil {
		t.Fatal("Expected a match")
	}
	if hit.Title != "고루틴 기초" {
		t.Errorf("Expected first pre-order match, got %q", hit.Title)
	}
	if tree.Find("없는 주제") != nil {
		t.Error("Expected no match for unknown topic")
	}
}

func TestTitleMatch(t *testing.T) {
	tests := []struct {
		a, b string
		want bool
	}{
		{"Google 바로가기", "google", true},
		{"Google 바로가기", "GOOGLE바로가기", true},
		{"구글지도", "구글", true},
		{"Google 바로가기", "구글", false},
		{"", "구글", false},
	}
	for _, tt := range tests {
		if got := TitleMatch(tt.a, tt.b); got != tt.want {
			t.Errorf("TitleMatch(%q, %q) = %v, want %v", tt.a, tt.b, got, tt.want)
		}
	}
}

func TestShiftFor(t *testing.T) {
	// Group 1 starts 2025-03-05 on the first pattern day.
	start := time.Date(2025, time.March, 5, 12, 0, 0, 0, time.Local)
	if got := ShiftFor("운영 1그룹", start); got != "주간 근무" {
		t.Errorf("Expected 주간 근무 on pattern day 0, got %q", got)
	}
	if got := ShiftFor("운영 1그룹", start.AddDate(0, 0, 2)); got != "휴무" {
		t.Errorf("Expected 휴무 on pattern day 2, got %q", got)
	}
	// A full cycle later the pattern repeats.
	if got := ShiftFor("운영 1그룹", start.AddDate(0, 0, 28)); got != "주간 근무" {
		t.Errorf("Expected pattern to repeat after 28 days, got %q", got)
	}
	if got := ShiftFor("미등록 그룹", start); got != "" {
		t.Errorf("Expected empty shift for unknown group, got %q", got)
	}
}
