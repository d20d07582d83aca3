// ABOUTME: Portable export formats for notes: a JSON bundle and markdown with YAML frontmatter.
// ABOUTME: Shared by the CLI export/import commands and the MCP export tool.

package export

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"path/filepath"
	"strings"
	"time"

	"github.com/harper/inote/internal/models"
	"gopkg.in/yaml.v3"
)

// FormatVersion is written into JSON bundles.
const FormatVersion = "1.0"

const frontmatterDelim = "---\n"

var ErrEmptyNote = errors.New("note has neither title nor content")

type Note struct {
	ID              string    `json:"id" yaml:"id"`
	Title           string    `json:"title" yaml:"title"`
	Content         string    `json:"content" yaml:"-"`
	Category        string    `json:"category,omitempty" yaml:"category,omitempty"`
	Priority        string    `json:"priority,omitempty" yaml:"priority,omitempty"`
	Tags            []string  `json:"tags" yaml:"tags,omitempty"`
	BackgroundColor string    `json:"background_color,omitempty" yaml:"background_color,omitempty"`
	TextColor       string    `json:"text_color,omitempty" yaml:"text_color,omitempty"`
	FontSize        int       `json:"font_size,omitempty" yaml:"font_size,omitempty"`
	Images          []string  `json:"images,omitempty" yaml:"images,omitempty"`
	IsFavorite      bool      `json:"is_favorite,omitempty" yaml:"favorite,omitempty"`
	CreatedAt       time.Time `json:"created_at" yaml:"created"`
	LastEdited      time.Time `json:"last_edited" yaml:"edited"`
}

type Bundle struct {
	ExportedAt time.Time `json:"exported_at"`
	Version    string    `json:"version"`
	Notes      []Note    `json:"notes"`
}

func FromModel(n models.Note) Note {
	n = n.Clone()
	return Note{
		ID:              n.ID,
		Title:           n.Title,
		Content:         n.Content,
		Category:        n.Category,
		Priority:        n.Priority,
		Tags:            n.Tags,
		BackgroundColor: n.BackgroundColor,
		TextColor:       n.TextColor,
		FontSize:        n.FontSize,
		Images:          n.Images,
		IsFavorite:      n.IsFavorite,
		CreatedAt:       n.CreatedAt,
		LastEdited:      n.LastEdited,
	}
}

// ToModel converts an exported note back. The id is kept so a re-import updates
// the same note; Save decides whether it is new.
func (e Note) ToModel() models.Note {
	n := models.Note{
		ID:              e.ID,
		Title:           e.Title,
		Content:         e.Content,
		Category:        e.Category,
		Priority:        e.Priority,
		Tags:            append([]string(nil), e.Tags...),
		BackgroundColor: e.BackgroundColor,
		TextColor:       e.TextColor,
		FontSize:        e.FontSize,
		Images:          append([]string(nil), e.Images...),
		IsFavorite:      e.IsFavorite,
		CreatedAt:       e.CreatedAt,
		LastEdited:      e.LastEdited,
	}
	if n.ID == "" {
		n.ID = models.NewNoteID
	}
	n.ApplyDefaults()
	return n
}

func NewBundle(notes []models.Note, now time.Time) Bundle {
	b := Bundle{ExportedAt: now, Version: FormatVersion, Notes: make([]Note, 0, len(notes))}
	for _, n := range notes {
		b.Notes = append(b.Notes, FromModel(n))
	}
	return b
}

func MarshalJSON(b Bundle) ([]byte, error) {
	return json.MarshalIndent(b, "", "  ")
}

func UnmarshalJSON(data []byte) (Bundle, error) {
	var b Bundle
	if err := json.Unmarshal(data, &b); err != nil {
		return Bundle{}, fmt.Errorf("parse bundle: %w", err)
	}
	return b, nil
}

// Markdown renders a note as YAML frontmatter followed by its content.
func Markdown(n models.Note) ([]byte, error) {
	frontmatter, err := yaml.Marshal(FromModel(n))
	if err != nil {
		return nil, fmt.Errorf("marshal frontmatter: %w", err)
	}
	var buf bytes.Buffer
	buf.WriteString(frontmatterDelim)
	buf.Write(frontmatter)
	buf.WriteString(frontmatterDelim)
	buf.WriteString("\n")
	buf.WriteString(n.Content)
	return buf.Bytes(), nil
}

// ParseMarkdown reads a markdown file, with or without frontmatter. Files without
// a title in frontmatter are titled after their file name.
func ParseMarkdown(path string, data []byte) (models.Note, error) {
	content := string(data)
	var meta Note

	if strings.HasPrefix(content, frontmatterDelim) {
		parts := strings.SplitN(content, frontmatterDelim, 3)
		if len(parts) == 3 {
			if err := yaml.Unmarshal([]byte(parts[1]), &meta); err != nil {
				return models.Note{}, fmt.Errorf("parse frontmatter: %w", err)
			}
			content = parts[2]
		}
	}

	meta.Content = strings.TrimSpace(content)
	if meta.Title == "" {
		meta.Title = strings.TrimSuffix(filepath.Base(path), filepath.Ext(path))
	}
	if strings.TrimSpace(meta.Title) == "" && meta.Content == "" {
		return models.Note{}, ErrEmptyNote
	}
	return meta.ToModel(), nil
}

// Filename turns a title into a safe markdown file name.
func Filename(title string) string {
	replacer := strings.NewReplacer(
		"/", "-", "\\", "-", ":", "-", "*", "-",
		"?", "-", "\"", "-", "<", "-", ">", "-", "|", "-",
	)
	name := strings.TrimSpace(replacer.Replace(title))
	if name == "" {
		name = "untitled"
	}
	if len(name) > 100 {
		name = name[:100]
	}
	return name + ".md"
}
