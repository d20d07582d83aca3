// ABOUTME: Tests for list projections over a note collection.
// ABOUTME: Covers ordering, category and search filters, counts and tag listing.

package store

import (
	"testing"
	"time"

	"github.com/harper/inote/internal/models"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func fixtureNotes() []models.Note {
	t1 := time.Date(2024, 3, 1, 10, 0, 0, 0, time.UTC)
	t2 := t1.Add(time.Hour)
	return []models.Note{
		{ID: "1", Title: "Buy milk", Category: "personal", LastEdited: t1},
		{ID: "2", Title: "Sprint plan", Category: "work", LastEdited: t2},
	}
}

func titles(notes []models.Note) []string {
	out := make([]string, 0, len(notes))
	for _, n := range notes {
		out = append(out, n.Title)
	}
	return out
}

func TestFilterAndSortScenario(t *testing.T) {
	notes := fixtureNotes()

	assert.Equal(t, []string{"Sprint plan", "Buy milk"}, titles(FilterAndSort(notes, Filter{Category: "all"})))
	assert.Equal(t, []string{"Buy milk"}, titles(FilterAndSort(notes, Filter{Category: "all", SearchText: "MILK"})))
	assert.Equal(t, []string{"Sprint plan"}, titles(FilterAndSort(notes, Filter{Category: "work"})))
	assert.Empty(t, FilterAndSort(notes, Filter{Category: "ideas"}))
}

func TestFilterAndSortDoesNotMutateInput(t *testing.T) {
	notes := fixtureNotes()
	FilterAndSort(notes, Filter{})
	assert.Equal(t, "Buy milk", notes[0].Title)
}

func TestFilterAndSortEmptyCategoryIsWildcard(t *testing.T) {
	assert.Len(t, FilterAndSort(fixtureNotes(), Filter{}), 2)
}

func TestFilterAndSortSearchesContent(t *testing.T) {
	notes := fixtureNotes()
	notes[1].Content = "Estimate the Milkshake backlog"
	assert.Equal(t, []string{"Sprint plan", "Buy milk"}, titles(FilterAndSort(notes, Filter{SearchText: "milk"})))
}

func TestFilterAndSortStableOnTies(t *testing.T) {
	same := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)
	notes := []models.Note{
		{ID: "a", Title: "first", LastEdited: same},
		{ID: "b", Title: "second", LastEdited: same},
		{ID: "c", Title: "third", LastEdited: same},
	}
	assert.Equal(t, []string{"first", "second", "third"}, titles(FilterAndSort(notes, Filter{})))
}

func TestFilterAndSortExtras(t *testing.T) {
	notes := fixtureNotes()
	notes[0].IsFavorite = true
	notes[0].Tags = []string{"todo"}
	notes[1].Priority = "high"

	assert.Equal(t, []string{"Buy milk"}, titles(FilterAndSort(notes, Filter{FavoritesOnly: true})))
	assert.Equal(t, []string{"Buy milk"}, titles(FilterAndSort(notes, Filter{Tag: "TODO"})))
	assert.Equal(t, []string{"Sprint plan"}, titles(FilterAndSort(notes, Filter{Priority: "high"})))
	assert.Equal(t, []string{"Sprint plan"}, titles(FilterAndSort(notes, Filter{Limit: 1})))
}

func TestCountByCategory(t *testing.T) {
	notes := fixtureNotes()
	notes = append(notes, models.Note{ID: "3", Title: "Loose"})

	counts := CountByCategory(notes)
	assert.Equal(t, 3, counts[models.CategoryAll])
	assert.Equal(t, 1, counts["work"])
	assert.Equal(t, 1, counts["personal"])
	assert.Zero(t, counts["ideas"])
}

func TestListTags(t *testing.T) {
	notes := []models.Note{
		{ID: "1", Tags: []string{"work", "Todo"}},
		{ID: "2", Tags: []string{"todo"}},
	}

	tags := ListTags(notes)
	require.Len(t, tags, 2)
	assert.Equal(t, "todo", tags[0].Tag.Name)
	assert.Equal(t, 2, tags[0].Count)
	assert.Equal(t, "work", tags[1].Tag.Name)
	assert.Equal(t, 1, tags[1].Count)
}
