package domain

import "encoding/json"

// Widget is one dashboard tile: either an info card or a web shortcut link.
type Widget struct {
	ID         string          `json:"id"`
	Type       string          `json:"type"` // "card" or "link"
	Title      string          `json:"title"`
	Content    string          `json:"content,omitempty"`
	URL        string          `json:"url,omitempty"`
	TargetTime string          `json:"targetTime,omitempty"` // HH:MM, interpreted as today
	Color      string          `json:"color,omitempty"`
	Data       json.RawMessage `json:"data,omitempty"`
}
