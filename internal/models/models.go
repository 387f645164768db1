// Package models defines the entities shared between the tracker, the store,
// and the display surfaces.
package models

// Rule maps a URL pattern to a daily time limit. Patterns are matched as
// case-insensitive substrings of the page URL, in list order.
type Rule struct {
	URL          string `json:"url"`
	TotalSeconds int    `json:"totalSeconds"`
}

// DailyCounters holds the running totals for the current day. It is a
// singleton owned by the store; every mutation is a store round trip.
type DailyCounters struct {
	TotalWastedToday   int            `json:"totalWastedToday"`
	SiteBreakdownToday map[string]int `json:"siteBreakdownToday"`
	LastResetDate      string         `json:"lastResetDate"`
}

// HistoryEntry is one archived day. Entries are immutable once appended.
type HistoryEntry struct {
	Date      string         `json:"date"`
	Seconds   int            `json:"seconds"`
	Breakdown map[string]int `json:"breakdown"`
}

// MaxHistoryEntries caps the history log; the oldest entry is evicted first.
const MaxHistoryEntries = 30

// Preferences are the low-frequency user settings.
type Preferences struct {
	DeepWork bool   `json:"deepWork"`
	Theme    string `json:"theme"`
}

const (
	ThemeLight = "light"
	ThemeDark  = "dark"
)
