package domain

// EquipmentLog is one maintenance/operation record for an asset.
type EquipmentLog struct {
	ID      string `json:"id"`
	Date    string `json:"date"` // YYYY-MM-DD
	Content string `json:"content"`
	Type    string `json:"type,omitempty"` // "maintenance", "operation", ...
}

// Equipment is one managed asset with its log history.
type Equipment struct {
	ID   string         `json:"id"`
	Name string         `json:"name"`
	Logs []EquipmentLog `json:"logs"`
}
