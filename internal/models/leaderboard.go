package models

import "time"

// User is one record of the public user-list endpoint the leaderboard is
// seeded from. Only id, name and username are used.
type User struct {
	ID       string `json:"id"`
	Name     string `json:"name"`
	Username string `json:"username"`
	Email    string `json:"email,omitempty"`
}

// LeaderboardEntry is a user decorated with a client-side score. Entries are
// never mutated after a fetch; a new fetch replaces the whole list.
type LeaderboardEntry struct {
	ID       string `json:"id"`
	Name     string `json:"name"`
	Username string `json:"username"`
	Points   int    `json:"points"`
}

// RankedEntry is a display row: the entry plus its absolute points rank in
// the canonical list, which does not follow the display order.
type RankedEntry struct {
	LeaderboardEntry
	Rank  int    `json:"rank"`
	Badge string `json:"badge,omitempty"` // "gold", "silver", "bronze"
}

// LoadStatus is the loader lifecycle as seen by the page.
type LoadStatus string

const (
	LoadIdle    LoadStatus = "idle"
	LoadLoading LoadStatus = "loading"
	LoadReady   LoadStatus = "ready"
	LoadError   LoadStatus = "error"
)

// LeaderboardState is a point-in-time snapshot of the loader.
type LeaderboardState struct {
	Status    LoadStatus `json:"status"`
	Attempt   int        `json:"attempt"`
	Error     string     `json:"error,omitempty"`
	Retryable bool       `json:"retryable"`
	LoadedAt  *time.Time `json:"loadedAt,omitempty"`
}

// LeaderboardView is the response body of the leaderboard endpoint.
type LeaderboardView struct {
	State   LeaderboardState `json:"state"`
	SortBy  string           `json:"sortBy"`
	Order   string           `json:"order"`
	Filter  string           `json:"filter,omitempty"`
	Entries []RankedEntry    `json:"entries"`
	TopIDs  []string         `json:"topIds"`
	Total   int              `json:"total"`
}
