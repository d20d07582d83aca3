// ABOUTME: Edit command for modifying existing notes.
// ABOUTME: Applies field flags through an edit session, or opens content in $EDITOR.

package main

import (
	"fmt"
	"strings"

	"github.com/harper/inote/internal/models"
	"github.com/harper/inote/internal/session"
	"github.com/harper/inote/internal/ui"
	"github.com/spf13/cobra"
)

var editCmd = &cobra.Command{
	Use:   "edit <id-prefix>",
	Short: "Edit a note",
	Long: `Change a note's fields with flags, or open its content in $EDITOR when no
field flags are given. --undo-last drops the last flag change before saving.

Flags are applied in a fixed order: title, content, category, priority, color,
text color, font size, then --format.`,
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := cmd.Context()
		note, err := findNote(ctx, args[0])
		if err != nil {
			return err
		}

		draft := session.New(note)
		changes := editChanges(cmd)
		for _, change := range changes {
			draft.Apply(change)
		}
		for _, style := range mustStrings(cmd, "format") {
			if err := draft.Format(session.Style(style)); err != nil {
				return err
			}
		}

		if draft.CanUndo() {
			if undo, _ := cmd.Flags().GetBool("undo-last"); undo {
				draft.Undo()
			}
		} else {
			updated, err := openEditor(note.Content)
			if err != nil {
				return fmt.Errorf("failed to open editor: %w", err)
			}
			updated = strings.TrimRight(updated, "\n")
			if updated != note.Content {
				draft.Apply(func(n *models.Note) { n.Content = updated })
			}
		}

		out := cmd.OutOrStdout()
		if !draft.Dirty() || !draft.CanUndo() {
			fmt.Fprintln(out, "No changes made.")
			return nil
		}

		saved, err := draft.Save(ctx, noteStore)
		if err != nil {
			return fmt.Errorf("failed to update note: %w", err)
		}

		fmt.Fprintln(out, ui.Success(fmt.Sprintf("Updated note %s", ui.ShortID(saved.ID))))
		return nil
	},
}

func editChanges(cmd *cobra.Command) []func(n *models.Note) {
	var changes []func(n *models.Note)
	if cmd.Flags().Changed("title") {
		v, _ := cmd.Flags().GetString("title")
		changes = append(changes, func(n *models.Note) { n.Title = v })
	}
	if cmd.Flags().Changed("content") {
		v, _ := cmd.Flags().GetString("content")
		changes = append(changes, func(n *models.Note) { n.Content = v })
	}
	return append(changes, fieldChanges(cmd)...)
}

func mustStrings(cmd *cobra.Command, name string) []string {
	v, _ := cmd.Flags().GetStringArray(name)
	return v
}

func init() {
	editCmd.Flags().String("title", "", "new title")
	editCmd.Flags().String("content", "", "new content (skips $EDITOR)")
	editCmd.Flags().StringArray("format", nil, "append a formatting snippet: "+styleNames())
	editCmd.Flags().Bool("undo-last", false, "drop the last flag change before saving")
	addFieldFlags(editCmd)
	rootCmd.AddCommand(editCmd)
}

func styleNames() string {
	names := make([]string, 0, len(session.Styles()))
	for _, s := range session.Styles() {
		names = append(names, string(s))
	}
	return strings.Join(names, ", ")
}
