// ABOUTME: JSON encoding of the persisted note collection.
// ABOUTME: Writes a versioned envelope and reads the original bare-array layout too.

package store

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"math"
	"strconv"
	"strings"
	"time"

	"github.com/harper/inote/internal/models"
)

// SchemaVersion is the envelope version written by this package.
const SchemaVersion = 1

var errUnsupportedVersion = errors.New("unsupported collection version")

type envelope struct {
	Version int        `json:"version"`
	Notes   []NoteData `json:"notes"`
}

// NoteData is the wire form of a note.
type NoteData struct {
	ID              FlexString `json:"id"`
	Title           string     `json:"title"`
	Content         string     `json:"content"`
	Category        *string    `json:"category"`
	Priority        *string    `json:"priority"`
	Tags            []string   `json:"tags"`
	BackgroundColor string     `json:"backgroundColor"`
	TextColor       string     `json:"textColor"`
	FontSize        float64    `json:"fontSize"`
	Images          []string   `json:"images"`
	IsFavorite      bool       `json:"isFavorite"`
	CreatedAt       FlexTime   `json:"createdAt"`
	LastEdited      FlexTime   `json:"lastEdited"`
}

// ToModel converts NoteData to a models.Note, substituting defaults for missing fields.
func (n *NoteData) ToModel() models.Note {
	note := models.Note{
		ID:              string(n.ID),
		Title:           n.Title,
		Content:         n.Content,
		Tags:            n.Tags,
		BackgroundColor: n.BackgroundColor,
		TextColor:       n.TextColor,
		FontSize:        int(math.Round(n.FontSize)),
		Images:          n.Images,
		IsFavorite:      n.IsFavorite,
		CreatedAt:       time.Time(n.CreatedAt),
		LastEdited:      time.Time(n.LastEdited),
	}
	if n.Category != nil {
		note.Category = *n.Category
	}
	if n.Priority != nil {
		note.Priority = *n.Priority
	}
	note.ApplyDefaults()
	return note
}

// FromModel creates NoteData from a models.Note. Unset category and priority encode as null.
func FromModel(note models.Note) NoteData {
	note = note.Clone()
	data := NoteData{
		ID:              FlexString(note.ID),
		Title:           note.Title,
		Content:         note.Content,
		Tags:            note.Tags,
		BackgroundColor: note.BackgroundColor,
		TextColor:       note.TextColor,
		FontSize:        float64(note.FontSize),
		Images:          note.Images,
		IsFavorite:      note.IsFavorite,
		CreatedAt:       FlexTime(note.CreatedAt.UTC()),
		LastEdited:      FlexTime(note.LastEdited.UTC()),
	}
	if note.Category != "" {
		data.Category = &note.Category
	}
	if note.Priority != "" {
		data.Priority = &note.Priority
	}
	return data
}

// decodeCollection parses a persisted payload into notes in storage order.
func decodeCollection(raw string) ([]models.Note, error) {
	trimmed := bytes.TrimSpace([]byte(raw))
	if len(trimmed) == 0 || bytes.Equal(trimmed, []byte("null")) {
		return []models.Note{}, nil
	}

	var items []NoteData
	switch trimmed[0] {
	case '[':
		// Version 0: the bare array written by the original app.
		if err := json.Unmarshal(trimmed, &items); err != nil {
			return nil, fmt.Errorf("unmarshal notes: %w", err)
		}
	case '{':
		var env envelope
		if err := json.Unmarshal(trimmed, &env); err != nil {
			return nil, fmt.Errorf("unmarshal envelope: %w", err)
		}
		if env.Version > SchemaVersion {
			return nil, fmt.Errorf("%w: %d", errUnsupportedVersion, env.Version)
		}
		items = env.Notes
	default:
		return nil, errors.New("payload is not a note collection")
	}

	notes := make([]models.Note, 0, len(items))
	for i := range items {
		if items[i].ID == "" {
			return nil, fmt.Errorf("note at index %d has no id", i)
		}
		notes = append(notes, items[i].ToModel())
	}
	return notes, nil
}

func encodeCollection(notes []models.Note) (string, error) {
	env := envelope{Version: SchemaVersion, Notes: make([]NoteData, 0, len(notes))}
	for _, n := range notes {
		env.Notes = append(env.Notes, FromModel(n))
	}
	data, err := json.Marshal(env)
	if err != nil {
		return "", fmt.Errorf("marshal notes: %w", err)
	}
	return string(data), nil
}

// FlexString accepts a JSON string or number; older payloads used numeric ids.
type FlexString string

func (s *FlexString) UnmarshalJSON(b []byte) error {
	if bytes.Equal(b, []byte("null")) {
		*s = ""
		return nil
	}
	if len(b) > 0 && b[0] == '"' {
		var v string
		if err := json.Unmarshal(b, &v); err != nil {
			return err
		}
		*s = FlexString(v)
		return nil
	}
	var num json.Number
	if err := json.Unmarshal(b, &num); err != nil {
		return fmt.Errorf("id must be a string or number: %w", err)
	}
	*s = FlexString(num.String())
	return nil
}

// FlexTime accepts an RFC 3339 string or a number of milliseconds since the epoch.
type FlexTime time.Time

func (t FlexTime) MarshalJSON() ([]byte, error) {
	if time.Time(t).IsZero() {
		return []byte("null"), nil
	}
	return json.Marshal(time.Time(t).Format(time.RFC3339Nano))
}

func (t *FlexTime) UnmarshalJSON(b []byte) error {
	s := strings.TrimSpace(string(b))
	if s == "null" || s == `""` {
		*t = FlexTime{}
		return nil
	}
	if strings.HasPrefix(s, `"`) {
		var v string
		if err := json.Unmarshal(b, &v); err != nil {
			return err
		}
		parsed, err := time.Parse(time.RFC3339Nano, v)
		if err != nil {
			return fmt.Errorf("parse timestamp: %w", err)
		}
		*t = FlexTime(parsed)
		return nil
	}
	ms, err := strconv.ParseFloat(s, 64)
	if err != nil {
		return fmt.Errorf("parse timestamp: %w", err)
	}
	*t = FlexTime(time.UnixMilli(int64(ms)).UTC())
	return nil
}
