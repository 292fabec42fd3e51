package dispatch

import (
	"context"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/jaeyunk/partner/internal/command"
	"github.com/jaeyunk/partner/internal/domain"
	"github.com/jaeyunk/partner/internal/state"
	"github.com/jaeyunk/partner/internal/store"
)

type fakeGateway struct {
	mu    sync.Mutex
	docs  map[string][]byte
	saves map[string]int
}

func newFakeGateway() *fakeGateway {
	return &fakeGateway{docs: make(map[string][]byte), saves: make(map[string]int)}
}

func (g *fakeGateway) Load(_ context.Context, dom string) ([]byte, error) {
	g.mu.Lock()
	defer g.mu.Unlock()
	if doc, ok := g.docs[dom]; ok {
		return doc, nil
	}
	return store.DefaultDoc(dom), nil
}

func (g *fakeGateway) Save(dom string, doc []byte) {
	g.mu.Lock()
	defer g.mu.Unlock()
	g.docs[dom] = doc
	g.saves[dom]++
}

func (g *fakeGateway) Updates() <-chan string { return nil }
func (g *fakeGateway) Close() error           { return nil }

func newTestDispatcher(t *testing.T) (*Dispatcher, *state.App, *fakeGateway) {
	t.Helper()
	gw := newFakeGateway()
	st := state.New(gw)
	if err := st.Hydrate(context.Background()); err != nil {
		t.Fatalf("Hydrate failed: %v", err)
	}
	d := New(st, gw)
	d.now = func() time.Time {
		return time.Date(2026, time.August, 30, 14, 0, 0, 0, time.Local)
	}
	return d, st, gw
}

func dispatchOne(t *testing.T, d *Dispatcher, c command.Command) Outcome {
	t.Helper()
	return d.Dispatch(context.Background(), []command.Command{c})
}

func TestAddTodo_DuplicateGuard(t *testing.T) {
	d, st, _ := newTestDispatcher(t)
	c := command.Command{
		Action:    command.ActionAddTodo,
		Date:      "2026-09-01",
		StartTime: "18:00",
		Content:   "PT 예약",
	}

	first := dispatchOne(t, d, c)
	if !strings.Contains(first.Reply, "추가했습니다") {
		t.Errorf("Expected add reply, got %q", first.Reply)
	}

	second := dispatchOne(t, d, c)
	if !strings.Contains(second.Reply, "이미 등록") {
		t.Errorf("Expected duplicate reply, got %q", second.Reply)
	}

	entries := st.SchedulesCopy()
	if len(entries) != 1 {
		t.Fatalf("Expected exactly 1 stored entry, got %d", len(entries))
	}
	if entries[0].Category != "health" {
		t.Errorf("Expected inferred category health, got %q", entries[0].Category)
	}
}

func TestAddTodo_DuplicateGuardWithQueuedSaves(t *testing.T) {
	// The file store only enqueues writes; the duplicate guard must not
	// depend on the first add having been flushed to disk yet.
	fs, err := store.NewFileStore(t.TempDir(), 8)
	if err != nil {
		t.Fatalf("NewFileStore failed: %v", err)
	}
	defer fs.Close()

	st := state.New(fs)
	if err := st.Hydrate(context.Background()); err != nil {
		t.Fatalf("Hydrate failed: %v", err)
	}
	d := New(st, fs)
	d.now = func() time.Time {
		return time.Date(2026, time.August, 30, 14, 0, 0, 0, time.Local)
	}

	c := command.Command{
		Action:    command.ActionAddTodo,
		Date:      "2026-09-01",
		StartTime: "18:00",
		Content:   "PT 예약",
	}
	out := d.Dispatch(context.Background(), []command.Command{c, c})

	lines := strings.Split(out.Reply, "\n")
	if len(lines) != 2 || !strings.Contains(lines[0], "추가했습니다") || !strings.Contains(lines[1], "이미 등록") {
		t.Errorf("Expected add then duplicate reply, got %q", out.Reply)
	}
	if entries := st.SchedulesCopy(); len(entries) != 1 {
		t.Errorf("Expected exactly 1 stored entry, got %d", len(entries))
	}
}

func TestAddTodo_DuplicateCheckUsesAuthoritativeStore(t *testing.T) {
	d, st, gw := newTestDispatcher(t)

	// Another writer already stored the same entry; the in-memory cache
	// does not know about it yet.
	gw.docs[store.DomainSchedules] = []byte(`[{"id":"x1","text":"회의","date":"2026-09-01","startTime":"10:00","done":false}]`)

	out := dispatchOne(t, d, command.Command{
		Action:    command.ActionAddTodo,
		Date:      "2026-09-01",
		StartTime: "10:00",
		Content:   "회의",
	})
	if !strings.Contains(out.Reply, "이미 등록") {
		t.Errorf("Expected duplicate reply from authoritative check, got %q", out.Reply)
	}
	if len(st.SchedulesCopy()) != 0 {
		t.Error("Expected no in-memory mutation on duplicate")
	}
}

func TestModifyTodo_PartialUpdate(t *testing.T) {
	d, st, _ := newTestDispatcher(t)
	dispatchOne(t, d, command.Command{
		Action:    command.ActionAddTodo,
		Date:      "2026-09-01",
		StartTime: "18:00",
		EndTime:   "19:00",
		Content:   "PT 예약",
	})
	id := st.SchedulesCopy()[0].ID

	out := dispatchOne(t, d, command.Command{
		Action:  command.ActionModifyTodo,
		ID:      command.FlexID(id),
		Content: "PT 예약 (변경)",
	})
	if !strings.Contains(out.Reply, "수정") {
		t.Errorf("Expected modify reply, got %q", out.Reply)
	}

	e := st.SchedulesCopy()[0]
	if e.Text != "PT 예약 (변경)" {
		t.Errorf("Expected content updated, got %q", e.Text)
	}
	if e.Date != "2026-09-01" || e.StartTime != "18:00" || e.EndTime != "19:00" {
		t.Errorf("Absent fields must be preserved, got %+v", e)
	}
}

func TestDeleteTodo_NotFound(t *testing.T) {
	d, _, gw := newTestDispatcher(t)
	out := dispatchOne(t, d, command.Command{Action: command.ActionDeleteTodo, ID: "없는-id"})
	if !strings.Contains(out.Reply, "찾지 못했") {
		t.Errorf("Expected not-found reply, got %q", out.Reply)
	}
	if gw.saves[store.DomainSchedules] != 0 {
		t.Error("Not-found delete must not persist anything")
	}
}

func TestBatchIndependence(t *testing.T) {
	d, st, _ := newTestDispatcher(t)
	out := d.Dispatch(context.Background(), []command.Command{
		{Action: command.ActionDeleteTodo, ID: "missing"},
		{Action: command.ActionAddTodo, Date: "2026-09-01", StartTime: "09:00", Content: "회의"},
	})

	lines := strings.Split(out.Reply, "\n")
	if len(lines) != 2 {
		t.Fatalf("Expected 2 reply lines, got %d: %q", len(lines), out.Reply)
	}
	if !strings.Contains(lines[0], "찾지 못했") {
		t.Errorf("Expected first line to report the failure, got %q", lines[0])
	}
	if !strings.Contains(lines[1], "추가했습니다") {
		t.Errorf("Expected second line to report the add, got %q", lines[1])
	}
	if len(st.SchedulesCopy()) != 1 {
		t.Error("Second command must still apply after the first failed")
	}
}

func TestAnalyzeMental_DerivedScore(t *testing.T) {
	d, st, _ := newTestDispatcher(t)
	today := "2026-08-30"

	seed := func(score int, mood string) {
		_ = st.Mutate(store.DomainMental, func(data *state.Data) error {
			data.Mental.Logs = append(data.Mental.Logs, domain.MentalLog{
				ID: domain.NewID(time.Now()), Date: today, Mood: mood, Score: score,
			})
			data.Mental.Recompute(today)
			return nil
		})
	}
	seed(80, "좋음")
	seed(60, "지침")

	out := dispatchOne(t, d, command.Command{
		Action:      command.ActionAnalyzeMind,
		Summary:     "무난한 하루",
		Mood:        "평온",
		Score:       70,
		Advice:      "잘 버텼어요.",
		DailyAdvice: "저녁엔 일찍 쉬어요.",
	})
	if out.Reply != "잘 버텼어요." {
		t.Errorf("Expected advice as reply, got %q", out.Reply)
	}

	m := st.MentalCopy()
	if m.Score != 70 {
		t.Errorf("Expected round((80+60+70)/3) = 70, got %d", m.Score)
	}
	if m.CurrentMood != "평온" {
		t.Errorf("Expected most recent mood, got %q", m.CurrentMood)
	}
	if m.TodayAdvice != "저녁엔 일찍 쉬어요." {
		t.Errorf("Expected daily advice stored, got %q", m.TodayAdvice)
	}
}

func TestRecordStudy_AppendsNote(t *testing.T) {
	d, st, _ := newTestDispatcher(t)
	_ = st.Mutate(store.DomainDevelopment, func(data *state.Data) error {
		data.Study.Books = []*domain.StudyBook{{
			ID: "b1", Title: "Go 입문",
			Children: []*domain.StudyNode{{ID: "n1", Title: "고루틴 기초", Note: "첫 메모"}},
		}}
		return nil
	})

	out := dispatchOne(t, d, command.Command{
		Action: command.ActionRecordStudy,
		Topic:  "고루틴",
		Note:   "채널과 함께 쓰기",
	})
	if !strings.Contains(out.Reply, "노트") {
		t.Errorf("Expected note reply, got %q", out.Reply)
	}

	var note string
	_ = st.Mutate(store.DomainDevelopment, func(data *state.Data) error {
		note = data.Study.Books[0].Children[0].Note
		return state.ErrNoChange
	})
	want := "첫 메모\n\n채널과 함께 쓰기"
	if note != want {
		t.Errorf("Expected appended note %q, got %q", want, note)
	}
}

func TestAddEquipmentLog_EmptyList(t *testing.T) {
	d, _, _ := newTestDispatcher(t)
	out := dispatchOne(t, d, command.Command{
		Action:  command.ActionEquipmentLog,
		Content: "밸브 교체",
	})
	if !strings.Contains(out.Reply, "등록된 설비가 없어") {
		t.Errorf("Expected explicit empty-list failure, got %q", out.Reply)
	}
}

func TestAddEquipmentLog_DefaultsToFirstAsset(t *testing.T) {
	d, st, _ := newTestDispatcher(t)
	_ = st.Mutate(store.DomainEquipment, func(data *state.Data) error {
		data.Equipment = []domain.Equipment{
			{ID: "e1", Name: "가스터빈 1호기"},
			{ID: "e2", Name: "가스터빈 2호기"},
		}
		return nil
	})

	out := dispatchOne(t, d, command.Command{
		Action:  command.ActionEquipmentLog,
		Content: "오일 보충",
	})
	if !strings.Contains(out.Reply, "가스터빈 1호기") {
		t.Errorf("Expected first asset used by default, got %q", out.Reply)
	}

	eq := st.EquipmentCopy()
	if len(eq[0].Logs) != 1 || len(eq[1].Logs) != 0 {
		t.Errorf("Expected log on first asset only, got %+v", eq)
	}
}

func TestAddEquipmentLog_UnknownIDIsNotFound(t *testing.T) {
	d, st, _ := newTestDispatcher(t)
	_ = st.Mutate(store.DomainEquipment, func(data *state.Data) error {
		data.Equipment = []domain.Equipment{{ID: "e1", Name: "가스터빈 1호기"}}
		return nil
	})

	out := dispatchOne(t, d, command.Command{
		Action:  command.ActionEquipmentLog,
		EquipID: "없는-설비",
		Content: "오일 보충",
	})
	if !strings.Contains(out.Reply, "찾지 못했") {
		t.Errorf("Unknown equipId must answer not-found, got %q", out.Reply)
	}
	if eq := st.EquipmentCopy(); len(eq[0].Logs) != 0 {
		t.Errorf("Unknown equipId must not log anywhere, got %+v", eq[0].Logs)
	}
}

func TestDeleteWidget_FuzzyFirstMatchWins(t *testing.T) {
	d, st, _ := newTestDispatcher(t)
	_ = st.Mutate(store.DomainWidgets, func(data *state.Data) error {
		data.Widgets = []domain.Widget{
			{ID: "w1", Type: "link", Title: "구글지도"},
			{ID: "w2", Type: "link", Title: "구글캘린더"},
		}
		return nil
	})

	out := dispatchOne(t, d, command.Command{
		Action: command.ActionDeleteWidget,
		Title:  "구글",
	})
	if !strings.Contains(out.Reply, "구글지도") {
		t.Errorf("Expected first match removed, got %q", out.Reply)
	}

	left := st.WidgetsCopy()
	if len(left) != 1 || left[0].Title != "구글캘린더" {
		t.Errorf("Expected only the first match removed, got %+v", left)
	}
}

func TestDeleteWidget_NormalizedMatch(t *testing.T) {
	d, st, _ := newTestDispatcher(t)
	_ = st.Mutate(store.DomainWidgets, func(data *state.Data) error {
		data.Widgets = []domain.Widget{{ID: "w1", Type: "link", Title: "Google 바로가기"}}
		return nil
	})

	// "구글" shares no normalized substring with "Google 바로가기".
	miss := dispatchOne(t, d, command.Command{Action: command.ActionDeleteWidget, Title: "구글"})
	if !strings.Contains(miss.Reply, "찾지 못했") || !strings.Contains(miss.Reply, "Google 바로가기") {
		t.Errorf("Expected not-found reply enumerating titles, got %q", miss.Reply)
	}

	hit := dispatchOne(t, d, command.Command{Action: command.ActionDeleteWidget, Title: "google"})
	if !strings.Contains(hit.Reply, "삭제했습니다") {
		t.Errorf("Expected normalized match to remove, got %q", hit.Reply)
	}
	if len(st.WidgetsCopy()) != 0 {
		t.Error("Expected widget removed")
	}
}

func TestShowWidgets_FilterAndReplySuppression(t *testing.T) {
	d, st, _ := newTestDispatcher(t)
	_ = st.Mutate(store.DomainWidgets, func(data *state.Data) error {
		data.Widgets = []domain.Widget{
			{ID: "w1", Type: "card", Title: "오늘의 한마디"},
			{ID: "w2", Type: "link", Title: "Google"},
		}
		return nil
	})

	out := dispatchOne(t, d, command.Command{
		Action:     command.ActionShowWidgets,
		WidgetType: "link",
	})
	if out.Reply != "" {
		t.Errorf("Widget-list payload must suppress the text reply, got %q", out.Reply)
	}
	if len(out.Payloads) != 1 || out.Payloads[0].Kind != "widgets" {
		t.Fatalf("Expected one widgets payload, got %+v", out.Payloads)
	}
	if len(out.Payloads[0].Widgets) != 1 || out.Payloads[0].Widgets[0].Title != "Google" {
		t.Errorf("Expected only link widgets, got %+v", out.Payloads[0].Widgets)
	}
}

func TestCreateWidget_Overrides(t *testing.T) {
	d, st, _ := newTestDispatcher(t)
	dispatchOne(t, d, command.Command{
		Action:     command.ActionCreateWidget,
		WidgetType: "link",
		Title:      "YouTube",
	})

	w := st.WidgetsCopy()[0]
	if w.URL != "https://www.youtube.com" {
		t.Errorf("Expected canonical URL substituted, got %q", w.URL)
	}
	if w.Color != "rose" {
		t.Errorf("Expected house color substituted, got %q", w.Color)
	}
	if w.ID == "" {
		t.Error("Expected a fresh widget id")
	}
}

func TestUnrecognizedAction_Ignored(t *testing.T) {
	d, st, gw := newTestDispatcher(t)
	out := dispatchOne(t, d, command.Command{Action: "teleport_user"})
	if out.Reply != "" || len(out.Payloads) != 0 {
		t.Errorf("Unrecognized action must produce no reply, got %+v", out)
	}
	if len(st.SchedulesCopy()) != 0 || len(gw.saves) != 0 {
		t.Error("Unrecognized action must not mutate or persist")
	}
}

func TestGenerateCurriculum(t *testing.T) {
	d, st, _ := newTestDispatcher(t)
	out := dispatchOne(t, d, command.Command{
		Action:   command.ActionCurriculum,
		Title:    "정보처리기사 실기",
		Children: []byte(`[{"title":"1장","children":[{"title":"1.1"},{"title":"1.2"}]},{"title":"2장"}]`),
	})
	if !strings.Contains(out.Reply, "커리큘럼") {
		t.Errorf("Expected curriculum reply, got %q", out.Reply)
	}

	var root *domain.StudyBook
	_ = st.Mutate(store.DomainDevelopment, func(data *state.Data) error {
		root = data.Study.Books[0]
		return state.ErrNoChange
	})
	if root.Title != "정보처리기사 실기" || len(root.Children) != 2 {
		t.Fatalf("Unexpected book structure: %+v", root)
	}
	if len(root.Children[0].Children) != 2 {
		t.Errorf("Expected nested children built, got %+v", root.Children[0])
	}
}
