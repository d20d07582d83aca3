// ABOUTME: Add command for creating new notes.
// ABOUTME: Supports inline content, file input, or $EDITOR, plus styling flags.

package main

import (
	"fmt"
	"os"
	"os/exec"
	"strings"

	"github.com/harper/inote/internal/models"
	"github.com/harper/inote/internal/ui"
	"github.com/spf13/cobra"
)

var addCmd = &cobra.Command{
	Use:   "add <title>",
	Short: "Add a new note",
	Long: `Create a new note with the given title. Content can be provided via --content,
--file, or $EDITOR. Category, priority, colors and font size are optional.`,
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		contentFlag, _ := cmd.Flags().GetString("content")
		fileFlag, _ := cmd.Flags().GetString("file")
		tagsFlag, _ := cmd.Flags().GetString("tags")
		images, _ := cmd.Flags().GetStringArray("image")
		favorite, _ := cmd.Flags().GetBool("favorite")

		var content string
		switch {
		case cmd.Flags().Changed("content"):
			content = contentFlag
		case fileFlag != "":
			data, err := os.ReadFile(fileFlag) //nolint:gosec // User-specified file path is expected CLI behavior
			if err != nil {
				return fmt.Errorf("failed to read file: %w", err)
			}
			content = string(data)
		default:
			var err error
			content, err = openEditor("")
			if err != nil {
				return fmt.Errorf("failed to open editor: %w", err)
			}
		}

		note := models.NewNote(args[0], strings.TrimRight(content, "\n"))
		for _, tag := range splitTags(tagsFlag) {
			note.AddTag(tag)
		}
		for _, uri := range images {
			note.AddImage(uri)
		}
		note.IsFavorite = favorite
		for _, change := range fieldChanges(cmd) {
			change(note)
		}

		saved, err := noteStore.Save(cmd.Context(), *note)
		if err != nil {
			return fmt.Errorf("failed to create note: %w", err)
		}

		fmt.Fprintln(cmd.OutOrStdout(), ui.Success(fmt.Sprintf("Created note %s", ui.ShortID(saved.ID))))
		return nil
	},
}

// addFieldFlags registers the flags shared by add and edit.
func addFieldFlags(cmd *cobra.Command) {
	cmd.Flags().StringP("category", "c", "", "category id (work, personal, projects, ideas, tasks, archive)")
	cmd.Flags().StringP("priority", "p", "", "priority (high, medium, low, none)")
	cmd.Flags().String("color", "", "background color: palette id (mint, sky, ...) or hex")
	cmd.Flags().String("text-color", "", "text color (hex)")
	cmd.Flags().Int("font-size", 0, fmt.Sprintf("font size (%d-%d)", models.FontSizeMin, models.FontSizeMax))
}

// fieldChanges turns each explicitly set field flag into one note mutation.
func fieldChanges(cmd *cobra.Command) []func(n *models.Note) {
	var changes []func(n *models.Note)
	flags := cmd.Flags()

	if flags.Changed("category") {
		v, _ := flags.GetString("category")
		changes = append(changes, func(n *models.Note) { n.Category = v })
	}
	if flags.Changed("priority") {
		v, _ := flags.GetString("priority")
		changes = append(changes, func(n *models.Note) { n.Priority = v })
	}
	if flags.Changed("color") {
		v, _ := flags.GetString("color")
		changes = append(changes, func(n *models.Note) { n.BackgroundColor = models.ResolveColor(v) })
	}
	if flags.Changed("text-color") {
		v, _ := flags.GetString("text-color")
		changes = append(changes, func(n *models.Note) { n.TextColor = v })
	}
	if flags.Changed("font-size") {
		v, _ := flags.GetInt("font-size")
		changes = append(changes, func(n *models.Note) { n.FontSize = v })
	}
	return changes
}

func splitTags(s string) []string {
	var tags []string
	for _, tag := range strings.Split(s, ",") {
		if tag = strings.TrimSpace(tag); tag != "" {
			tags = append(tags, tag)
		}
	}
	return tags
}

func openEditor(initial string) (string, error) {
	editor := os.Getenv("EDITOR")
	if editor == "" {
		editor = "vim"
	}

	tmpFile, err := os.CreateTemp("", "inote-*.md")
	if err != nil {
		return "", err
	}
	defer func() {
		_ = os.Remove(tmpFile.Name()) // Best-effort cleanup
	}()

	if initial != "" {
		if _, err := tmpFile.WriteString(initial); err != nil {
			_ = tmpFile.Close()
			return "", fmt.Errorf("failed to write initial content: %w", err)
		}
	}
	if err := tmpFile.Close(); err != nil {
		return "", fmt.Errorf("failed to close temp file: %w", err)
	}

	cmd := exec.Command(editor, tmpFile.Name()) //nolint:gosec // Launching $EDITOR is expected CLI behavior
	cmd.Stdin = os.Stdin
	cmd.Stdout = os.Stdout
	cmd.Stderr = os.Stderr

	if err := cmd.Run(); err != nil {
		return "", err
	}

	data, err := os.ReadFile(tmpFile.Name())
	if err != nil {
		return "", err
	}

	return string(data), nil
}

func init() {
	addCmd.Flags().String("content", "", "note content (inline)")
	addCmd.Flags().String("file", "", "read content from file")
	addCmd.Flags().String("tags", "", "comma-separated tags")
	addCmd.Flags().StringArray("image", nil, "image URI (repeatable)")
	addCmd.Flags().Bool("favorite", false, "mark as favorite")
	addFieldFlags(addCmd)
	rootCmd.AddCommand(addCmd)
}
