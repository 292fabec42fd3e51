// Package notify raises deduplicated, time-windowed notifications from the
// schedule and widget aggregates.
package notify

import (
	"context"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/jaeyunk/partner/internal/domain"
)

// Offsets are the minutes-until-trigger values at which a notification
// fires, once each per entity.
var Offsets = []int{30, 15, 10}

// DefaultInterval is the scan period. Coarser than the offset granularity on
// purpose: minutes-until is floored, so each offset is observed at least
// once per entity regardless of timer drift.
const DefaultInterval = 30 * time.Second

// Notifier is the boundary to the host's notification mechanism.
type Notifier interface {
	Notify(title, body string)
}

// Source supplies the time-bearing entities scanned on every tick.
type Source interface {
	SchedulesCopy() []domain.ScheduleEntry
	WidgetsCopy() []domain.Widget
}

// Scheduler runs the recurring scan. Fired (entity, offset) pairs are
// remembered for the process lifetime; offsets are a small finite set and
// entities are rarely re-scheduled to an identical instant, so the set
// stays small.
type Scheduler struct {
	src      Source
	notifier Notifier
	interval time.Duration
	now      func() time.Time

	mu    sync.Mutex
	fired map[string]struct{}
}

// NewScheduler creates a scheduler over the given source and notifier.
// interval <= 0 selects DefaultInterval.
func NewScheduler(src Source, notifier Notifier, interval time.Duration) *Scheduler {
	if interval <= 0 {
		interval = DefaultInterval
	}
	return &Scheduler{
		src:      src,
		notifier: notifier,
		interval: interval,
		now:      time.Now,
		fired:    make(map[string]struct{}),
	}
}

// Start runs the scan loop in a background goroutine until ctx is done.
func (s *Scheduler) Start(ctx context.Context) {
	ticker := time.NewTicker(s.interval)
	go func() {
		defer ticker.Stop()
		slog.Info("notification scheduler started", "interval", s.interval)
		for {
			select {
			case <-ticker.C:
				s.scan(s.now())
			case <-ctx.Done():
				slog.Info("notification scheduler shutting down", "reason", ctx.Err())
				return
			}
		}
	}()
}

func (s *Scheduler) scan(now time.Time) {
	for _, e := range s.src.SchedulesCopy() {
		if e.Date == "" || e.StartTime == "" || e.Done {
			continue
		}
		target, err := time.ParseInLocation("2006-01-02 15:04", e.Date+" "+e.StartTime, now.Location())
		if err != nil {
			continue
		}
		s.check(now, target, e.ID, "다가오는 일정", e.Text)
	}
	for _, w := range s.src.WidgetsCopy() {
		if w.TargetTime == "" {
			continue
		}
		// A widget target time means "today".
		target, err := time.ParseInLocation("2006-01-02 15:04", now.Format("2006-01-02")+" "+w.TargetTime, now.Location())
		if err != nil {
			continue
		}
		s.check(now, target, w.ID, "위젯 알림", w.Title)
	}
}

func (s *Scheduler) check(now, target time.Time, entityID, title, text string) {
	until := target.Sub(now)
	if until < 0 {
		return
	}
	mins := int(until / time.Minute) // floored minutes

	for _, offset := range Offsets {
		if mins != offset {
			continue
		}
		key := fmt.Sprintf("%s-%d", entityID, offset)

		s.mu.Lock()
		_, seen := s.fired[key]
		if !seen {
			// Recorded before notifying, so a jittered second tick at the
			// same floored minute can never fire twice.
			s.fired[key] = struct{}{}
		}
		s.mu.Unlock()

		if seen {
			return
		}
		s.notifier.Notify(title, fmt.Sprintf("%d분 후: %s", offset, text))
		return
	}
}
