// ABOUTME: Tag model and the fixed label vocabularies notes refer to.
// ABOUTME: Vocabularies are display data only; stored ids are never checked against them.

package models

import "strings"

type Tag struct {
	Name string
}

// NewTag normalizes a free-form tag name to lowercase with trimmed whitespace.
func NewTag(name string) *Tag {
	return &Tag{
		Name: strings.ToLower(strings.TrimSpace(name)),
	}
}

// Label is an entry of a fixed vocabulary (category, priority, tag or color).
type Label struct {
	ID    string
	Name  string
	Color string
}

// CategoryAll is the wildcard category used by list filters.
const CategoryAll = "all"

// PriorityNone is the "no priority" entry offered by the editor.
const PriorityNone = "none"

var Categories = []Label{
	{ID: CategoryAll, Name: "All Notes", Color: "#7C5CE9"},
	{ID: "work", Name: "Work Ideas", Color: "#00B8A9"},
	{ID: "personal", Name: "Personal", Color: "#F8B195"},
	{ID: "projects", Name: "Future Projects", Color: "#5C95FF"},
	{ID: "ideas", Name: "Ideas", Color: "#FF9800"},
	{ID: "tasks", Name: "Tasks", Color: "#E91E63"},
	{ID: "archive", Name: "Archive", Color: "#9013FE"},
}

var Priorities = []Label{
	{ID: "high", Name: "High", Color: "#FF5252"},
	{ID: "medium", Name: "Medium", Color: "#FFC107"},
	{ID: "low", Name: "Low", Color: "#4CAF50"},
	{ID: PriorityNone, Name: "None", Color: "#808080"},
}

var Tags = []Label{
	{ID: "work", Name: "Work", Color: "#4A90E2"},
	{ID: "personal", Name: "Personal", Color: "#50E3C2"},
	{ID: "ideas", Name: "Ideas", Color: "#F5A623"},
	{ID: "todo", Name: "To-Do", Color: "#D0021B"},
	{ID: "important", Name: "Important", Color: "#7ED321"},
	{ID: "archive", Name: "Archive", Color: "#9013FE"},
}

var Colors = []Label{
	{ID: "default", Name: "White", Color: "#FFFFFF"},
	{ID: "lavender", Name: "Lavender", Color: "#E6E6FA"},
	{ID: "mint", Name: "Mint", Color: "#E0F5E9"},
	{ID: "peach", Name: "Peach", Color: "#FFE5D9"},
	{ID: "sky", Name: "Sky Blue", Color: "#E1F5FE"},
	{ID: "cream", Name: "Cream", Color: "#FFF8DC"},
	{ID: "rose", Name: "Rose", Color: "#FFE4E1"},
	{ID: "sage", Name: "Sage", Color: "#E0EEE0"},
	{ID: "lemon", Name: "Lemon", Color: "#FFFACD"},
	{ID: "lilac", Name: "Lilac", Color: "#E6E6FF"},
}

func CategoryByID(id string) (Label, bool) { return findLabel(Categories, id) }
func PriorityByID(id string) (Label, bool) { return findLabel(Priorities, id) }
func TagByID(id string) (Label, bool)      { return findLabel(Tags, id) }

// ColorByID resolves a palette id ("mint") to its label. Raw hex values are not palette ids.
func ColorByID(id string) (Label, bool) { return findLabel(Colors, id) }

// ResolveColor maps a palette id to its hex value and passes anything else through.
func ResolveColor(value string) string {
	if l, ok := ColorByID(value); ok {
		return l.Color
	}
	return value
}

func findLabel(labels []Label, id string) (Label, bool) {
	for _, l := range labels {
		if l.ID == id {
			return l, true
		}
	}
	return Label{}, false
}
