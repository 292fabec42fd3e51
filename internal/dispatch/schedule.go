package dispatch

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"

	"github.com/jaeyunk/partner/internal/command"
	"github.com/jaeyunk/partner/internal/domain"
	"github.com/jaeyunk/partner/internal/state"
	"github.com/jaeyunk/partner/internal/store"
)

// authoritativeSchedules unions the gateway's document with the in-memory
// set for the duplicate check. The gateway side sees entries written by other
// processes; the in-memory side sees entries whose save is still sitting in
// the gateway's write queue. Either alone can be stale.
func (d *Dispatcher) authoritativeSchedules(ctx context.Context) []domain.ScheduleEntry {
	entries := d.st.SchedulesCopy()

	doc, err := d.gw.Load(ctx, store.DomainSchedules)
	if err != nil {
		slog.Warn("authoritative schedule load failed, using cached set", "error", err)
		return entries
	}
	var stored []domain.ScheduleEntry
	if err := json.Unmarshal(doc, &stored); err != nil {
		slog.Warn("authoritative schedule decode failed, using cached set", "error", err)
		return entries
	}

	seen := make(map[string]struct{}, len(entries))
	for _, e := range entries {
		seen[e.ID] = struct{}{}
	}
	for _, e := range stored {
		if _, ok := seen[e.ID]; !ok {
			entries = append(entries, e)
		}
	}
	return entries
}

func (d *Dispatcher) addTodo(ctx context.Context, c command.Command) string {
	if c.Content == "" {
		return "추가할 일정 내용이 비어 있어요."
	}
	date := c.Date
	if date == "" {
		date = d.now().Format("2006-01-02")
	}

	category := c.Category
	if category == "" || category == "default" {
		category = domain.InferCategory(c.Content)
	}

	for _, e := range d.authoritativeSchedules(ctx) {
		if e.Date == date && e.StartTime == c.StartTime && e.Text == c.Content {
			return fmt.Sprintf("%q 일정은 이미 등록되어 있어요.", c.Content)
		}
	}

	entry := domain.ScheduleEntry{
		ID:        domain.NewID(d.now()),
		Text:      c.Content,
		Date:      date,
		StartTime: c.StartTime,
		EndTime:   c.EndTime,
		Category:  category,
	}
	err := d.st.Mutate(store.DomainSchedules, func(data *state.Data) error {
		data.Schedules = append(data.Schedules, entry)
		return nil
	})
	if err != nil {
		slog.Error("add schedule failed", "error", err)
		return "일정을 추가하지 못했어요."
	}
	return fmt.Sprintf("%q 일정을 추가했습니다. ✅", c.Content)
}

func (d *Dispatcher) modifyTodo(c command.Command) string {
	if c.ID == "" {
		return "수정할 일정의 ID가 없어요."
	}
	found := false
	err := d.st.Mutate(store.DomainSchedules, func(data *state.Data) error {
		for i := range data.Schedules {
			if data.Schedules[i].ID != string(c.ID) {
				continue
			}
			found = true
			// Partial update: absent fields keep their previous value.
			if c.Date != "" {
				data.Schedules[i].Date = c.Date
			}
			if c.StartTime != "" {
				data.Schedules[i].StartTime = c.StartTime
			}
			if c.EndTime != "" {
				data.Schedules[i].EndTime = c.EndTime
			}
			if c.Content != "" {
				data.Schedules[i].Text = c.Content
			}
			if c.Category != "" {
				data.Schedules[i].Category = c.Category
			}
			return nil
		}
		return state.ErrNoChange
	})
	if err != nil {
		slog.Error("modify schedule failed", "error", err)
		return "일정을 수정하지 못했어요."
	}
	if !found {
		return "해당 일정을 찾지 못했어요."
	}
	return "일정을 수정했습니다. ✏️"
}

func (d *Dispatcher) deleteTodo(c command.Command) string {
	if c.ID == "" {
		return "삭제할 일정의 ID가 없어요."
	}
	removed := ""
	err := d.st.Mutate(store.DomainSchedules, func(data *state.Data) error {
		for i := range data.Schedules {
			// IDs arrive as numbers or strings; FlexID already normalized.
			if data.Schedules[i].ID == string(c.ID) {
				removed = data.Schedules[i].Text
				data.Schedules = append(data.Schedules[:i], data.Schedules[i+1:]...)
				return nil
			}
		}
		return state.ErrNoChange
	})
	if err != nil {
		slog.Error("delete schedule failed", "error", err)
		return "일정을 삭제하지 못했어요."
	}
	if removed == "" {
		return "해당 일정을 찾지 못했어요."
	}
	return fmt.Sprintf("%q 일정을 삭제했습니다. 🗑️", removed)
}
