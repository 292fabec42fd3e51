package domain

import "time"

// FinanceState is a lightweight asset snapshot shown on the dashboard.
type FinanceState struct {
	TotalAssets int64   `json:"totalAssets"`
	ChangePct   float64 `json:"changePct"`
	History     []int   `json:"history,omitempty"`
}

// ManualCategory groups job manuals into dashboard sections.
type ManualCategory struct {
	ID    string `json:"id"`
	Group string `json:"group"` // COMMON, FACILITY, PROCESS
	Label string `json:"label"`
}

// Manual is one job-training document reference.
type Manual struct {
	ID       string `json:"id"`
	Title    string `json:"title"`
	Category string `json:"category"`
	Path     string `json:"path,omitempty"`
}

// WorkState holds job manuals and their section layout.
type WorkState struct {
	Categories []ManualCategory `json:"categories,omitempty"`
	Manuals    []Manual         `json:"manuals,omitempty"`
}

// ChatMessage is one transcript row; persisted in the chat history store.
type ChatMessage struct {
	ID        string    `json:"id"`
	Role      string    `json:"role"` // "user" or "ai"
	Kind      string    `json:"kind"` // "text" or a payload kind
	Content   string    `json:"content"`
	CreatedAt time.Time `json:"createdAt"`
}
