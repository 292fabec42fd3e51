package dispatch

import (
	"log/slog"

	"github.com/jaeyunk/partner/internal/command"
	"github.com/jaeyunk/partner/internal/domain"
	"github.com/jaeyunk/partner/internal/state"
	"github.com/jaeyunk/partner/internal/store"
)

func (d *Dispatcher) analyzeMental(c command.Command) string {
	now := d.now()
	today := now.Format("2006-01-02")

	log := domain.MentalLog{
		ID:      domain.NewID(now),
		Date:    today,
		Time:    now.Format("15:04"),
		Summary: c.Summary,
		Mood:    c.Mood,
		Score:   c.Score,
		Advice:  c.Advice,
		Tags:    c.Tags,
	}

	err := d.st.Mutate(store.DomainMental, func(data *state.Data) error {
		data.Mental.Logs = append(data.Mental.Logs, log)
		data.Mental.Recompute(today)
		if c.DailyAdvice != "" {
			data.Mental.TodayAdvice = c.DailyAdvice
		}
		return nil
	})
	if err != nil {
		slog.Error("analyze mental failed", "error", err)
		return "마음 기록을 저장하지 못했어요."
	}
	if c.Advice != "" {
		return c.Advice
	}
	return "오늘의 마음을 기록했습니다. 💙"
}
