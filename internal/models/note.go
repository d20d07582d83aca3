// ABOUTME: Note model representing a short styled note with metadata.
// ABOUTME: Provides the draft constructor and field helpers used by the editor flows.

package models

import (
	"strings"
	"time"
)

// NewNoteID marks a note that has not been persisted yet.
const NewNoteID = "new"

const (
	DefaultBackgroundColor = "#FFFFFF"
	DefaultTextColor       = "#000000"
	DefaultFontSize        = 16
	FontSizeMin            = 12
	FontSizeMax            = 32
)

type Note struct {
	ID              string
	Title           string
	Content         string
	Category        string
	Priority        string
	Tags            []string
	BackgroundColor string
	TextColor       string
	FontSize        int
	Images          []string
	IsFavorite      bool
	CreatedAt       time.Time
	LastEdited      time.Time
}

// NewNote returns an unsaved draft with default styling.
func NewNote(title, content string) *Note {
	now := time.Now()
	return &Note{
		ID:              NewNoteID,
		Title:           title,
		Content:         content,
		Tags:            []string{},
		BackgroundColor: DefaultBackgroundColor,
		TextColor:       DefaultTextColor,
		FontSize:        DefaultFontSize,
		Images:          []string{},
		CreatedAt:       now,
		LastEdited:      now,
	}
}

// IsNew reports whether the note still carries the unsaved sentinel.
func (n *Note) IsNew() bool {
	return n.ID == "" || n.ID == NewNoteID
}

// ApplyDefaults fills zero-valued optional fields.
func (n *Note) ApplyDefaults() {
	if n.Tags == nil {
		n.Tags = []string{}
	}
	if n.Images == nil {
		n.Images = []string{}
	}
	if n.BackgroundColor == "" {
		n.BackgroundColor = DefaultBackgroundColor
	}
	if n.TextColor == "" {
		n.TextColor = DefaultTextColor
	}
	if n.FontSize == 0 {
		n.FontSize = DefaultFontSize
	}
	switch {
	case n.CreatedAt.IsZero() && !n.LastEdited.IsZero():
		n.CreatedAt = n.LastEdited
	case n.LastEdited.IsZero() && !n.CreatedAt.IsZero():
		n.LastEdited = n.CreatedAt
	}
}

// Clone returns a copy that shares no slices with n.
func (n Note) Clone() Note {
	c := n
	c.Tags = append([]string(nil), n.Tags...)
	c.Images = append([]string(nil), n.Images...)
	if c.Tags == nil {
		c.Tags = []string{}
	}
	if c.Images == nil {
		c.Images = []string{}
	}
	return c
}

// HasTag checks tag membership case-insensitively.
func (n *Note) HasTag(name string) bool {
	name = NewTag(name).Name
	for _, t := range n.Tags {
		if strings.ToLower(t) == name {
			return true
		}
	}
	return false
}

// AddTag adds a normalized tag; returns false if it was already present.
func (n *Note) AddTag(name string) bool {
	tag := NewTag(name)
	if tag.Name == "" || n.HasTag(tag.Name) {
		return false
	}
	n.Tags = append(n.Tags, tag.Name)
	return true
}

// RemoveTag drops a tag; returns false if it was absent.
func (n *Note) RemoveTag(name string) bool {
	name = NewTag(name).Name
	kept := make([]string, 0, len(n.Tags))
	for _, t := range n.Tags {
		if strings.ToLower(t) != name {
			kept = append(kept, t)
		}
	}
	removed := len(kept) != len(n.Tags)
	n.Tags = kept
	return removed
}

// AddImage appends an image reference; order is display order.
func (n *Note) AddImage(uri string) {
	n.Images = append(n.Images, uri)
}

// RemoveImage drops the image at index; returns false when out of range.
func (n *Note) RemoveImage(index int) bool {
	if index < 0 || index >= len(n.Images) {
		return false
	}
	images := make([]string, 0, len(n.Images)-1)
	images = append(images, n.Images[:index]...)
	n.Images = append(images, n.Images[index+1:]...)
	return true
}
