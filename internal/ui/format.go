// ABOUTME: Terminal UI formatting for inote output.
// ABOUTME: Uses glamour for markdown and fatih/color for styling.

package ui

import (
	"fmt"
	"sort"
	"strconv"
	"strings"

	"github.com/charmbracelet/glamour"
	"github.com/fatih/color"
	"github.com/harper/inote/internal/models"
)

const timeLayout = "2006-01-02 15:04"

var (
	faint  = color.New(color.Faint).SprintFunc()
	bold   = color.New(color.Bold).SprintFunc()
	cyan   = color.New(color.FgCyan).SprintFunc()
	yellow = color.New(color.FgYellow).SprintFunc()
)

type TagCount struct {
	Name  string
	Count int
}

// ShortID returns the display prefix of an id. Legacy ids may be shorter than the prefix.
func ShortID(id string) string {
	if len(id) <= 6 {
		return id
	}
	return id[:6]
}

func FormatNoteListItem(note models.Note) string {
	var sb strings.Builder

	star := " "
	if note.IsFavorite {
		star = yellow("★")
	}
	sb.WriteString(fmt.Sprintf("%s %s  %s\n", star, faint(ShortID(note.ID)), bold(note.Title)))

	if meta := metaLine(note); meta != "" {
		sb.WriteString(fmt.Sprintf("         %s\n", meta))
	}

	if len(note.Tags) > 0 {
		sb.WriteString(fmt.Sprintf("         %s %s\n",
			faint("Tags:"),
			cyan(strings.Join(note.Tags, ", "))))
	}

	sb.WriteString(fmt.Sprintf("         %s %s\n",
		faint("Edited:"),
		faint(note.LastEdited.Local().Format(timeLayout))))

	return sb.String()
}

// metaLine renders category and priority chips, or "" when neither is set.
func metaLine(note models.Note) string {
	var parts []string
	if note.Category != "" {
		parts = append(parts, chip(note.Category, models.CategoryByID))
	}
	if note.Priority != "" && note.Priority != models.PriorityNone {
		parts = append(parts, chip(note.Priority, models.PriorityByID))
	}
	return strings.Join(parts, " ")
}

func chip(id string, lookup func(string) (models.Label, bool)) string {
	label, ok := lookup(id)
	if !ok {
		return faint("[" + id + "]")
	}
	return Swatch(label.Color, "["+label.Name+"]")
}

// Swatch colors text with a #RRGGBB foreground. Unparseable colors leave text plain.
func Swatch(hex, text string) string {
	r, g, b, ok := parseHex(models.ResolveColor(hex))
	if !ok {
		return text
	}
	return color.RGB(r, g, b).Sprint(text)
}

func parseHex(hex string) (r, g, b int, ok bool) {
	hex = strings.TrimPrefix(hex, "#")
	if len(hex) != 6 {
		return 0, 0, 0, false
	}
	v, err := strconv.ParseUint(hex, 16, 32)
	if err != nil {
		return 0, 0, 0, false
	}
	return int(v >> 16 & 0xFF), int(v >> 8 & 0xFF), int(v & 0xFF), true
}

func FormatNoteContent(content string) (string, error) {
	renderer, err := glamour.NewTermRenderer(
		glamour.WithAutoStyle(),
		glamour.WithWordWrap(80),
	)
	if err != nil {
		return content, nil //nolint:nilerr // fall back to raw content
	}

	out, err := renderer.Render(content)
	if err != nil {
		return content, nil //nolint:nilerr // fall back to raw content
	}
	return out, nil
}

func FormatNoteHeader(note models.Note) string {
	var sb strings.Builder

	title := bold(note.Title)
	if note.IsFavorite {
		title = yellow("★ ") + title
	}
	sb.WriteString(title + "\n")
	sb.WriteString(fmt.Sprintf("%s %s\n", faint("ID:"), faint(note.ID)))
	if meta := metaLine(note); meta != "" {
		sb.WriteString(meta + "\n")
	}
	sb.WriteString(fmt.Sprintf("%s %s\n", faint("Created:"), faint(note.CreatedAt.Local().Format(timeLayout))))
	sb.WriteString(fmt.Sprintf("%s %s\n", faint("Edited:"), faint(note.LastEdited.Local().Format(timeLayout))))

	if len(note.Tags) > 0 {
		sb.WriteString(fmt.Sprintf("%s %s\n", faint("Tags:"), cyan(strings.Join(note.Tags, ", "))))
	}
	sb.WriteString(fmt.Sprintf("%s %s on %s, %dpt\n",
		faint("Style:"),
		Swatch(note.TextColor, note.TextColor),
		Swatch(note.BackgroundColor, note.BackgroundColor),
		note.FontSize))

	sb.WriteString(Separator())
	return sb.String()
}

func FormatTagList(tags []TagCount) string {
	var sb strings.Builder

	for _, t := range tags {
		name := cyan(t.Name)
		if l, ok := models.TagByID(t.Name); ok && l.Name != t.Name {
			name += " " + faint(l.Name)
		}
		sb.WriteString(fmt.Sprintf("  %s %s\n",
			name,
			faint(fmt.Sprintf("(%d)", t.Count))))
	}

	return sb.String()
}

// FormatImageList lists image references with the index used by "image rm".
func FormatImageList(images []string) string {
	var sb strings.Builder

	sb.WriteString(fmt.Sprintf("\n%s\n", bold("Images:")))
	for i, uri := range images {
		sb.WriteString(fmt.Sprintf("  %s  %s\n", faint(fmt.Sprintf("[%d]", i)), uri))
	}

	return sb.String()
}

// FormatCategoryList renders the category chips in vocabulary order with counts.
// Categories that only appear in stored notes are appended after the known ones.
func FormatCategoryList(counts map[string]int, selected string) string {
	var sb strings.Builder

	seen := make(map[string]bool)
	for _, c := range models.Categories {
		seen[c.ID] = true
		marker := " "
		if c.ID == selected {
			marker = bold(">")
		}
		sb.WriteString(fmt.Sprintf("%s %s %s\n",
			marker,
			Swatch(c.Color, fmt.Sprintf("%-16s", c.Name)),
			faint(fmt.Sprintf("(%d)", counts[c.ID]))))
	}
	var extra []string
	for id := range counts {
		if !seen[id] {
			extra = append(extra, id)
		}
	}
	sort.Strings(extra)
	for _, id := range extra {
		sb.WriteString(fmt.Sprintf("  %s %s\n", faint(fmt.Sprintf("%-16s", id)), faint(fmt.Sprintf("(%d)", counts[id]))))
	}

	return sb.String()
}

func Separator() string {
	return faint(strings.Repeat("─", 50)) + "\n"
}

func Success(msg string) string {
	return color.New(color.FgGreen).Sprint("✓ ") + msg
}

func Error(msg string) string {
	return color.New(color.FgRed).Sprint("✗ ") + msg
}

func Warning(msg string) string {
	return color.New(color.FgYellow).Sprint("! ") + msg
}

func FormatWatchHeader(key string, count int) string {
	return fmt.Sprintf("\n%s %s %s\n", "👀", bold("Watching "+key), faint(fmt.Sprintf("(%d notes)", count)))
}
