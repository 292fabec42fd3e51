package domain

import "math"

// MentalLog is one mood/diary entry analyzed by the model.
type MentalLog struct {
	ID      string   `json:"id"`
	Date    string   `json:"date"` // YYYY-MM-DD
	Time    string   `json:"time"` // HH:MM
	Summary string   `json:"summary"`
	Mood    string   `json:"mood"`
	Score   int      `json:"score"` // 0-100
	Advice  string   `json:"advice"`
	Tags    []string `json:"tags,omitempty"`
}

// MentalState carries the log history plus fields derived from it.
// CurrentMood, Score and TodayAdvice are recomputed on every insertion or
// removal, never edited directly.
type MentalState struct {
	Logs        []MentalLog `json:"logs"`
	CurrentMood string      `json:"currentMood"`
	Score       int         `json:"score"` // rounded mean of today's logs
	TodayAdvice string      `json:"todayAdvice"`
}

// Recompute refreshes the derived fields. Score is the integer-rounded mean
// of all logs dated today; CurrentMood follows the most recent log
// (most-recent-wins, not majority).
func (s *MentalState) Recompute(today string) {
	sum, n := 0, 0
	for _, l := range s.Logs {
		if l.Date == today {
			sum += l.Score
			n++
		}
	}
	if n == 0 {
		s.Score = 0
	} else {
		s.Score = int(math.Round(float64(sum) / float64(n)))
	}
	if len(s.Logs) > 0 {
		s.CurrentMood = s.Logs[len(s.Logs)-1].Mood
	} else {
		s.CurrentMood = ""
	}
}
