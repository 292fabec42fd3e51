package domain

import "time"

// Profile holds the single user's settings.
type Profile struct {
	Name       string `json:"name,omitempty"`
	ShiftGroup string `json:"shiftGroup,omitempty"` // "운영 1그룹" .. "운영 4그룹"
	ThemeMode  string `json:"themeMode,omitempty"`  // "auto", "light", "dark"
}

// groupStartDates anchors each operations group to the day its rotation
// pattern starts.
var groupStartDates = map[string]time.Time{
	"운영 1그룹": time.Date(2025, time.March, 5, 0, 0, 0, 0, time.Local),
	"운영 2그룹": time.Date(2025, time.March, 26, 0, 0, 0, 0, time.Local),
	"운영 3그룹": time.Date(2025, time.March, 12, 0, 0, 0, 0, time.Local),
	"운영 4그룹": time.Date(2025, time.March, 19, 0, 0, 0, 0, time.Local),
}

// shiftPattern is the 28-day rotation shared by all groups.
var shiftPattern = []string{
	"주간 근무", "주간 근무", "휴무", "휴무", "휴무",
	"야간 근무", "야간 근무", "휴무", "휴무",
	"주간 근무", "주간 근무", "주간 근무", "휴무", "휴무",
	"야간 근무", "야간 근무", "휴무", "휴무", "휴무",
	"주간 근무", "주간 근무", "휴무", "휴무",
	"야간 근무", "야간 근무", "야간 근무", "휴무", "휴무",
}

// ShiftFor returns the shift label for the profile's group on the given day,
// or "" when the group is unknown.
func ShiftFor(group string, day time.Time) string {
	start, ok := groupStartDates[group]
	if !ok {
		return ""
	}
	days := int(day.Sub(start).Hours() / 24)
	idx := days % len(shiftPattern)
	if idx < 0 {
		idx += len(shiftPattern)
	}
	return shiftPattern[idx]
}
