// Package state owns the in-memory domain aggregates and decides, for every
// change, whether it must be persisted outward or was itself caused by an
// inbound load and must not be re-persisted.
package state

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"sync"

	"github.com/jaeyunk/partner/internal/domain"
	"github.com/jaeyunk/partner/internal/store"
)

// ErrNoChange is returned by a Mutate closure that decided not to touch the
// aggregate after all (lookup miss, validation gap). The save and the change
// notification are skipped; Mutate itself returns nil.
var ErrNoChange = errors.New("state: no change")

// Data groups every domain aggregate. Aggregates are created empty at start,
// hydrated once from the gateway, and never destroyed before process exit.
type Data struct {
	Schedules []domain.ScheduleEntry
	Finance   domain.FinanceState
	Mental    domain.MentalState
	Study     domain.StudyTree
	Work      domain.WorkState
	Equipment []domain.Equipment
	Widgets   []domain.Widget
	Profile   domain.Profile
}

// App is the single owned state handle threaded into the dispatcher, the
// notification scheduler and the HTTP layer.
type App struct {
	gw    store.Gateway
	flags *Flags
	locks map[string]*sync.Mutex

	data Data

	onChange func(domain string)
}

// New creates an empty state handle backed by the given gateway.
func New(gw store.Gateway) *App {
	locks := make(map[string]*sync.Mutex, len(store.Domains))
	for _, d := range store.Domains {
		locks[d] = &sync.Mutex{}
	}
	return &App{gw: gw, flags: NewFlags(), locks: locks}
}

// SetOnChange installs a callback invoked after every applied change
// (local or inbound) with the affected domain key.
func (a *App) SetOnChange(fn func(domain string)) { a.onChange = fn }

// Flags exposes the sync flag tracker, mainly for tests.
func (a *App) Flags() *Flags { return a.flags }

func (a *App) lock(dom string) *sync.Mutex {
	mu, ok := a.locks[dom]
	if !ok {
		panic("state: unknown domain " + dom)
	}
	return mu
}

// Mutate applies fn to the aggregates under the domain's lock, then either
// persists the domain outward or, when the pending-inbound token is set,
// consumes it and skips the save. The token check and the save decision
// happen inside the same critical section as the mutation, so no other
// mutation of the same domain can interleave between mark and consume.
//
// fn must only touch the aggregate owned by dom.
func (a *App) Mutate(dom string, fn func(*Data) error) error {
	mu := a.lock(dom)
	mu.Lock()
	err := func() error {
		if err := fn(&a.data); err != nil {
			return err
		}
		a.finish(dom)
		return nil
	}()
	mu.Unlock()

	if errors.Is(err, ErrNoChange) {
		return nil
	}
	if err == nil && a.onChange != nil {
		a.onChange(dom)
	}
	return err
}

// Reload replaces a domain's aggregate with the gateway's current document.
// The pending-inbound token is marked under the lock immediately before the
// apply, so the resulting change cycle suppresses exactly one save.
func (a *App) Reload(ctx context.Context, dom string) error {
	doc, err := a.gw.Load(ctx, dom)
	if err != nil {
		return fmt.Errorf("reload %s: %w", dom, err)
	}

	mu := a.lock(dom)
	mu.Lock()
	err = func() error {
		a.flags.Mark(dom)
		if err := a.decodeInto(dom, doc); err != nil {
			// Still consume the token: the inbound cycle is over either way
			// and a stuck token would suppress the next genuine save.
			a.flags.Consume(dom)
			return err
		}
		a.finish(dom)
		return nil
	}()
	mu.Unlock()

	if err != nil {
		return err
	}
	if a.onChange != nil {
		a.onChange(dom)
	}
	return nil
}

// finish decides the outward save for one change cycle. Caller holds the
// domain lock.
func (a *App) finish(dom string) {
	if a.flags.Consume(dom) {
		slog.Debug("inbound change, save suppressed", "domain", dom)
		return
	}
	doc, err := a.snapshot(dom)
	if err != nil {
		slog.Error("snapshot domain failed, save skipped", "domain", dom, "error", err)
		return
	}
	a.gw.Save(dom, doc)
}

// Hydrate loads every domain once at startup.
func (a *App) Hydrate(ctx context.Context) error {
	for _, dom := range store.Domains {
		if err := a.Reload(ctx, dom); err != nil {
			return err
		}
	}
	return nil
}

// RunUpdatePump applies remote-update pushes until ctx is done. Run it in
// its own goroutine.
func (a *App) RunUpdatePump(ctx context.Context) {
	for {
		select {
		case <-ctx.Done():
			return
		case dom, ok := <-a.gw.Updates():
			if !ok {
				return
			}
			slog.Info("remote update received", "domain", dom)
			if err := a.Reload(ctx, dom); err != nil {
				slog.Error("apply remote update failed", "domain", dom, "error", err)
			}
		}
	}
}

func (a *App) snapshot(dom string) ([]byte, error) {
	switch dom {
	case store.DomainSchedules:
		return json.Marshal(a.data.Schedules)
	case store.DomainFinance:
		return json.Marshal(a.data.Finance)
	case store.DomainMental:
		return json.Marshal(a.data.Mental)
	case store.DomainDevelopment:
		return json.Marshal(a.data.Study)
	case store.DomainWork:
		return json.Marshal(a.data.Work)
	case store.DomainEquipment:
		return json.Marshal(a.data.Equipment)
	case store.DomainWidgets:
		return json.Marshal(a.data.Widgets)
	case store.DomainProfile:
		return json.Marshal(a.data.Profile)
	}
	return nil, fmt.Errorf("unknown domain %q", dom)
}

// decodeInto replaces one domain's aggregate with the decoded document.
// Decoding happens into a local value first: a malformed document must leave
// the current aggregate untouched, not wiped.
func (a *App) decodeInto(dom string, doc []byte) error {
	switch dom {
	case store.DomainSchedules:
		var v []domain.ScheduleEntry
		if err := json.Unmarshal(doc, &v); err != nil {
			return fmt.Errorf("decode %s: %w", dom, err)
		}
		a.data.Schedules = v
	case store.DomainFinance:
		var v domain.FinanceState
		if err := json.Unmarshal(doc, &v); err != nil {
			return fmt.Errorf("decode %s: %w", dom, err)
		}
		a.data.Finance = v
	case store.DomainMental:
		var v domain.MentalState
		if err := json.Unmarshal(doc, &v); err != nil {
			return fmt.Errorf("decode %s: %w", dom, err)
		}
		a.data.Mental = v
	case store.DomainDevelopment:
		var v domain.StudyTree
		if err := json.Unmarshal(doc, &v); err != nil {
			return fmt.Errorf("decode %s: %w", dom, err)
		}
		a.data.Study = v
	case store.DomainWork:
		var v domain.WorkState
		if err := json.Unmarshal(doc, &v); err != nil {
			return fmt.Errorf("decode %s: %w", dom, err)
		}
		a.data.Work = v
	case store.DomainEquipment:
		var v []domain.Equipment
		if err := json.Unmarshal(doc, &v); err != nil {
			return fmt.Errorf("decode %s: %w", dom, err)
		}
		a.data.Equipment = v
	case store.DomainWidgets:
		var v []domain.Widget
		if err := json.Unmarshal(doc, &v); err != nil {
			return fmt.Errorf("decode %s: %w", dom, err)
		}
		a.data.Widgets = v
	case store.DomainProfile:
		var v domain.Profile
		if err := json.Unmarshal(doc, &v); err != nil {
			return fmt.Errorf("decode %s: %w", dom, err)
		}
		a.data.Profile = v
	default:
		return fmt.Errorf("unknown domain %q", dom)
	}
	return nil
}

// Snapshot marshals a domain's current aggregate for read endpoints.
func (a *App) Snapshot(dom string) ([]byte, error) {
	mu := a.lock(dom)
	mu.Lock()
	defer mu.Unlock()
	return a.snapshot(dom)
}

// ApplyLocal replaces a domain's aggregate with a document produced by a
// direct UI edit. Unlike Reload this is a genuine local mutation and is
// persisted outward.
func (a *App) ApplyLocal(dom string, doc []byte) error {
	return a.Mutate(dom, func(d *Data) error {
		return a.decodeInto(dom, doc)
	})
}

// SchedulesCopy returns a copy of the schedule set.
func (a *App) SchedulesCopy() []domain.ScheduleEntry {
	mu := a.lock(store.DomainSchedules)
	mu.Lock()
	defer mu.Unlock()
	out := make([]domain.ScheduleEntry, len(a.data.Schedules))
	copy(out, a.data.Schedules)
	return out
}

// WidgetsCopy returns a copy of the dashboard widget set.
func (a *App) WidgetsCopy() []domain.Widget {
	mu := a.lock(store.DomainWidgets)
	mu.Lock()
	defer mu.Unlock()
	out := make([]domain.Widget, len(a.data.Widgets))
	copy(out, a.data.Widgets)
	return out
}

// MentalCopy returns the mental state with a copied log slice.
func (a *App) MentalCopy() domain.MentalState {
	mu := a.lock(store.DomainMental)
	mu.Lock()
	defer mu.Unlock()
	out := a.data.Mental
	out.Logs = make([]domain.MentalLog, len(a.data.Mental.Logs))
	copy(out.Logs, a.data.Mental.Logs)
	return out
}

// EquipmentCopy returns a copy of the asset list (logs shared, read-only use).
func (a *App) EquipmentCopy() []domain.Equipment {
	mu := a.lock(store.DomainEquipment)
	mu.Lock()
	defer mu.Unlock()
	out := make([]domain.Equipment, len(a.data.Equipment))
	copy(out, a.data.Equipment)
	return out
}

// BookTitles lists the library's book titles for prompt context.
func (a *App) BookTitles() []string {
	mu := a.lock(store.DomainDevelopment)
	mu.Lock()
	defer mu.Unlock()
	titles := make([]string, 0, len(a.data.Study.Books))
	for _, b := range a.data.Study.Books {
		titles = append(titles, b.Title)
	}
	return titles
}

// ProfileCopy returns the user profile.
func (a *App) ProfileCopy() domain.Profile {
	mu := a.lock(store.DomainProfile)
	mu.Lock()
	defer mu.Unlock()
	return a.data.Profile
}
