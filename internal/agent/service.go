package agent

import (
	"context"
	"fmt"
	"time"

	"github.com/jaeyunk/partner/internal/domain"
	"github.com/jaeyunk/partner/internal/state"
)

// Service assembles the system instruction from live state and forwards one
// user utterance to the model.
type Service struct {
	model Model
	st    *state.App
	now   func() time.Time
}

// NewService creates an agent service over the given model and state handle.
func NewService(model Model, st *state.App) *Service {
	return &Service{model: model, st: st, now: time.Now}
}

// Ask sends the user's text with full prompt context and returns the raw
// model response for the interpreter.
func (s *Service) Ask(ctx context.Context, userText string) (string, error) {
	now := s.now()
	profile := s.st.ProfileCopy()

	pc := PromptContext{
		Now:        now,
		TodayShift: domain.ShiftFor(profile.ShiftGroup, now),
		Schedules:  s.st.SchedulesCopy(),
		Mental:     s.st.MentalCopy(),
		BookTitles: s.st.BookTitles(),
	}

	prompt := fmt.Sprintf("%s\n\n사용자: %s", BuildSystemInstruction(pc), userText)
	return s.model.Generate(ctx, prompt)
}
