// ABOUTME: Pure projections over a loaded note collection.
// ABOUTME: Sorting, category/search filtering, category counts and tag counts.

package store

import (
	"sort"
	"strings"

	"github.com/harper/inote/internal/models"
)

// Filter selects notes for display. Zero values match everything.
type Filter struct {
	Category      string // "all" or "" is the wildcard
	SearchText    string // case-insensitive substring of title or content
	FavoritesOnly bool
	Tag           string
	Priority      string
	Limit         int // 0 = unlimited
}

// FilterAndSort returns the notes matching f, most recently edited first.
// Equal timestamps keep their storage order. The input slice is not modified.
func FilterAndSort(notes []models.Note, f Filter) []models.Note {
	sorted := make([]models.Note, len(notes))
	copy(sorted, notes)
	sort.SliceStable(sorted, func(i, j int) bool {
		return sorted[i].LastEdited.After(sorted[j].LastEdited)
	})

	search := strings.ToLower(f.SearchText)
	result := make([]models.Note, 0, len(sorted))
	for _, n := range sorted {
		if !matchesFilter(&n, f, search) {
			continue
		}
		result = append(result, n)
		if f.Limit > 0 && len(result) == f.Limit {
			break
		}
	}
	return result
}

func matchesFilter(n *models.Note, f Filter, search string) bool {
	if f.Category != "" && f.Category != models.CategoryAll && n.Category != f.Category {
		return false
	}
	if search != "" {
		titleMatch := strings.Contains(strings.ToLower(n.Title), search)
		contentMatch := strings.Contains(strings.ToLower(n.Content), search)
		if !titleMatch && !contentMatch {
			return false
		}
	}
	if f.FavoritesOnly && !n.IsFavorite {
		return false
	}
	if f.Tag != "" && !n.HasTag(f.Tag) {
		return false
	}
	if f.Priority != "" && n.Priority != f.Priority {
		return false
	}
	return true
}

// CountByCategory counts notes per category id; the "all" entry holds the total.
func CountByCategory(notes []models.Note) map[string]int {
	counts := map[string]int{models.CategoryAll: len(notes)}
	for _, n := range notes {
		if n.Category != "" && n.Category != models.CategoryAll {
			counts[n.Category]++
		}
	}
	return counts
}

// TagCount is a tag with its usage count.
type TagCount struct {
	Tag   *models.Tag
	Count int
}

// ListTags returns all tags in use with their counts, sorted by name.
func ListTags(notes []models.Note) []TagCount {
	counts := make(map[string]int)
	for _, n := range notes {
		for _, t := range n.Tags {
			counts[strings.ToLower(t)]++
		}
	}

	result := make([]TagCount, 0, len(counts))
	for name, count := range counts {
		result = append(result, TagCount{Tag: models.NewTag(name), Count: count})
	}
	sort.Slice(result, func(i, j int) bool {
		return result[i].Tag.Name < result[j].Tag.Name
	})
	return result
}
