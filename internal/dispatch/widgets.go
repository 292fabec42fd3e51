package dispatch

import (
	"fmt"
	"log/slog"
	"strings"

	"github.com/jaeyunk/partner/internal/command"
	"github.com/jaeyunk/partner/internal/domain"
	"github.com/jaeyunk/partner/internal/state"
	"github.com/jaeyunk/partner/internal/store"
)

// widgetOverride fixes up well-known shortcuts the model tends to get wrong:
// matched by exact title or URL substring, it substitutes the canonical URL
// and a house color before the widget is constructed.
type widgetOverride struct {
	titleExact  string
	urlContains string
	url         string
	color       string
}

var widgetOverrides = []widgetOverride{
	{titleExact: "Google", url: "https://www.google.com", color: "blue"},
	{titleExact: "YouTube", url: "https://www.youtube.com", color: "rose"},
	{titleExact: "Naver", url: "https://www.naver.com", color: "emerald"},
	{urlContains: "youtube.com", color: "rose"},
	{urlContains: "github.com", color: "zinc"},
}

func applyWidgetOverrides(w *domain.Widget) {
	for _, o := range widgetOverrides {
		switch {
		case o.titleExact != "" && w.Title == o.titleExact:
		case o.urlContains != "" && strings.Contains(w.URL, o.urlContains):
		default:
			continue
		}
		if o.url != "" {
			w.URL = o.url
		}
		if o.color != "" && w.Color == "" {
			w.Color = o.color
		}
		return
	}
}

func (d *Dispatcher) createWidget(c command.Command) string {
	if c.Title == "" {
		return "위젯 제목이 없어요."
	}
	widgetType := c.WidgetType
	if widgetType == "" {
		if c.URL != "" {
			widgetType = "link"
		} else {
			widgetType = "card"
		}
	}

	w := domain.Widget{
		ID:         domain.NewID(d.now()),
		Type:       widgetType,
		Title:      c.Title,
		Content:    c.Content,
		URL:        c.URL,
		TargetTime: c.TargetTime,
		Color:      c.Color,
		Data:       c.Data,
	}
	applyWidgetOverrides(&w)

	err := d.st.Mutate(store.DomainWidgets, func(data *state.Data) error {
		data.Widgets = append(data.Widgets, w)
		return nil
	})
	if err != nil {
		slog.Error("create widget failed", "error", err)
		return "위젯을 추가하지 못했어요."
	}
	return fmt.Sprintf("%q 위젯을 대시보드에 추가했습니다. ✨", w.Title)
}

func (d *Dispatcher) deleteWidget(c command.Command) string {
	if c.Title == "" {
		return "삭제할 위젯 제목이 없어요."
	}
	removed := ""
	var remaining []string
	err := d.st.Mutate(store.DomainWidgets, func(data *state.Data) error {
		// Fuzzy match, first match wins: the model's title and the stored
		// title rarely agree byte for byte.
		for i := range data.Widgets {
			if domain.TitleMatch(data.Widgets[i].Title, c.Title) {
				removed = data.Widgets[i].Title
				data.Widgets = append(data.Widgets[:i], data.Widgets[i+1:]...)
				return nil
			}
		}
		for _, w := range data.Widgets {
			remaining = append(remaining, w.Title)
		}
		return state.ErrNoChange
	})
	if err != nil {
		slog.Error("delete widget failed", "error", err)
		return "위젯을 삭제하지 못했어요."
	}
	if removed == "" {
		if len(remaining) == 0 {
			return "삭제할 위젯을 찾지 못했어요. 현재 대시보드에 위젯이 없어요."
		}
		return fmt.Sprintf("삭제할 위젯을 찾지 못했어요. 현재 위젯: %s", strings.Join(remaining, ", "))
	}
	return fmt.Sprintf("%q 위젯을 삭제했습니다. 🗑️", removed)
}

func (d *Dispatcher) showWidgets(c command.Command) (string, *Payload) {
	widgetType := c.WidgetType
	if widgetType == "" {
		widgetType = "all"
	}
	var filtered []domain.Widget
	for _, w := range d.st.WidgetsCopy() {
		if widgetType == "all" || w.Type == widgetType {
			filtered = append(filtered, w)
		}
	}
	// Pure read; the widget-list payload replaces the text reply.
	return "", &Payload{Kind: "widgets", Widgets: filtered}
}
