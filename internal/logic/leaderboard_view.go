package logic

import (
	"cmp"
	"fmt"
	"slices"
	"strings"

	"github.com/mettlestate/tournament-site/internal/models"
)

type SortKey string

const (
	SortByPoints SortKey = "points"
	SortByHandle SortKey = "handle"
)

type SortOrder string

const (
	OrderAsc  SortOrder = "asc"
	OrderDesc SortOrder = "desc"
)

// ViewOptions selects the display order and filter of the leaderboard.
type ViewOptions struct {
	SortBy SortKey
	Order  SortOrder
	Filter string
}

// ParseViewOptions reads query values; empty values take the defaults
// (points, descending).
func ParseViewOptions(sortBy, order, filter string) (ViewOptions, error) {
	opts := ViewOptions{
		SortBy: SortKey(strings.ToLower(strings.TrimSpace(sortBy))),
		Order:  SortOrder(strings.ToLower(strings.TrimSpace(order))),
		Filter: strings.TrimSpace(filter),
	}
	switch opts.SortBy {
	case "", SortByPoints, SortByHandle:
	case "username":
		opts.SortBy = SortByHandle
	default:
		return ViewOptions{}, fmt.Errorf("unknown sort key %q", sortBy)
	}
	switch opts.Order {
	case "", OrderAsc, OrderDesc:
	default:
		return ViewOptions{}, fmt.Errorf("unknown sort order %q", order)
	}
	return opts.withDefaults(), nil
}

func (o ViewOptions) withDefaults() ViewOptions {
	if o.SortBy == "" {
		o.SortBy = SortByPoints
	}
	if o.Order == "" {
		o.Order = OrderDesc
	}
	return o
}

// SortEntries returns a sorted copy of entries. The sort is stable: entries
// that compare equal keep their canonical relative order in both directions.
func SortEntries(entries []models.LeaderboardEntry, key SortKey, order SortOrder) []models.LeaderboardEntry {
	out := slices.Clone(entries)
	slices.SortStableFunc(out, func(a, b models.LeaderboardEntry) int {
		var c int
		switch key {
		case SortByHandle:
			c = strings.Compare(strings.ToLower(a.Username), strings.ToLower(b.Username))
		default:
			c = cmp.Compare(a.Points, b.Points)
		}
		if order == OrderDesc {
			return -c
		}
		return c
	})
	return out
}

// FilterEntries keeps entries whose handle or name contains query,
// ignoring case. An empty query keeps everything.
func FilterEntries(entries []models.LeaderboardEntry, query string) []models.LeaderboardEntry {
	query = strings.ToLower(strings.TrimSpace(query))
	if query == "" {
		return entries
	}
	out := make([]models.LeaderboardEntry, 0, len(entries))
	for _, e := range entries {
		if strings.Contains(strings.ToLower(e.Username), query) || strings.Contains(strings.ToLower(e.Name), query) {
			out = append(out, e)
		}
	}
	return out
}

// RankByPoints maps entry id to its 1-based rank by points, highest first.
// Equal scores are ranked in canonical order.
func RankByPoints(canonical []models.LeaderboardEntry) map[string]int {
	ranked := SortEntries(canonical, SortByPoints, OrderDesc)
	ranks := make(map[string]int, len(ranked))
	for i, e := range ranked {
		ranks[e.ID] = i + 1
	}
	return ranks
}

// TopThree returns the ids of the three highest-scoring canonical entries.
// It depends only on the canonical list, never on a display order.
func TopThree(canonical []models.LeaderboardEntry) []string {
	ranked := SortEntries(canonical, SortByPoints, OrderDesc)
	n := min(3, len(ranked))
	ids := make([]string, 0, n)
	for _, e := range ranked[:n] {
		ids = append(ids, e.ID)
	}
	return ids
}

func badgeFor(rank int) string {
	switch rank {
	case 1:
		return "gold"
	case 2:
		return "silver"
	case 3:
		return "bronze"
	}
	return ""
}
