// Package ranking filters, orders and classifies candidates for display.
package ranking

import (
	"sort"
	"strings"

	"github.com/spigell/hr-screener/internal/backend"
)

// SortKey selects the ordering of View.
type SortKey string

const (
	SortByDate       SortKey = "date"
	SortByScore      SortKey = "score"
	SortByExperience SortKey = "experience"
)

// FilterAll disables category filtering.
const FilterAll = "all"

// FilterPreset is one of the category filters offered to the user.
type FilterPreset struct {
	Key   string
	Label string
}

// FilterPresets lists the dashboard category filters in display order.
var FilterPresets = []FilterPreset{
	{Key: FilterAll, Label: "All Candidates"},
	{Key: "high", Label: "Highly Qualified"},
	{Key: "qualified", Label: "Qualified"},
	{Key: "not", Label: "Not a Fit"},
}

// SortKeys lists the supported orderings with their labels.
var SortKeys = []struct {
	Key   SortKey
	Label string
}{
	{Key: SortByDate, Label: "Upload Date (Newest)"},
	{Key: SortByScore, Label: "Relevance Score (Highest)"},
	{Key: SortByExperience, Label: "Experience (Most)"},
}

// ParseSortKey maps user input onto a SortKey. Unknown values fall back to date.
func ParseSortKey(s string) SortKey {
	switch SortKey(strings.ToLower(strings.TrimSpace(s))) {
	case SortByScore:
		return SortByScore
	case SortByExperience:
		return SortByExperience
	default:
		return SortByDate
	}
}

// Matches reports whether the candidate passes the category filter.
// The check is a case-insensitive substring match, so "qualified" also matches "Highly Qualified".
func Matches(c *backend.Candidate, filterKey string) bool {
	key := strings.ToLower(strings.TrimSpace(filterKey))
	if key == "" || key == FilterAll {
		return true
	}

	return strings.Contains(strings.ToLower(c.Category()), key)
}

// View returns the filtered and sorted candidates. The input is not modified.
// Ties keep their input order.
func View(candidates []backend.Candidate, filterKey string, sortKey SortKey) []backend.Candidate {
	out := make([]backend.Candidate, 0, len(candidates))
	for i := range candidates {
		if Matches(&candidates[i], filterKey) {
			out = append(out, candidates[i])
		}
	}

	var less func(a, b *backend.Candidate) bool
	switch sortKey {
	case SortByScore:
		less = func(a, b *backend.Candidate) bool { return a.RelevanceScore() > b.RelevanceScore() }
	case SortByExperience:
		less = func(a, b *backend.Candidate) bool { return a.YearsExperience() > b.YearsExperience() }
	default:
		less = func(a, b *backend.Candidate) bool { return a.CreatedTime().After(b.CreatedTime()) }
	}

	sort.SliceStable(out, func(i, j int) bool { return less(&out[i], &out[j]) })

	return out
}
