// Package domain defines the application's persisted aggregates.
package domain

import (
	"fmt"
	"math/rand/v2"
	"strings"
	"time"
)

// ScheduleEntry is a single calendar item. Entries are kept in insertion
// order; ID is the only lookup key and must be unique within the set.
type ScheduleEntry struct {
	ID        string `json:"id"`
	Text      string `json:"text"`
	Date      string `json:"date"`      // YYYY-MM-DD
	StartTime string `json:"startTime"` // HH:MM
	EndTime   string `json:"endTime,omitempty"`
	Done      bool   `json:"done"`
	Memo      string `json:"memo,omitempty"`
	Category  string `json:"category,omitempty"`
}

// NewID returns a process-unique token: creation time in unix millis plus a
// random tie-breaker so two entries created in the same millisecond still
// get distinct IDs.
func NewID(now time.Time) string {
	return fmt.Sprintf("%d-%04x", now.UnixMilli(), rand.IntN(0x10000))
}

// categoryRules is an ordered keyword list; the first group with a hit wins.
var categoryRules = []struct {
	category string
	keywords []string
}{
	{"health", []string{"pt", "운동", "헬스", "병원"}},
	{"work", []string{"미팅", "회의", "업무", "보고", "출장"}},
	{"shift", []string{"대근", "근무", "당직", "shift"}},
	{"development", []string{"공부", "강의", "독서", "개발"}},
	{"finance", []string{"자산", "은행", "주식", "적금"}},
}

// InferCategory guesses a schedule category from its text. Returns "default"
// when no keyword matches.
func InferCategory(text string) string {
	lower := strings.ToLower(text)
	for _, rule := range categoryRules {
		for _, kw := range rule.keywords {
			if strings.Contains(lower, kw) {
				return rule.category
			}
		}
	}
	return "default"
}
