// ABOUTME: Show command for displaying a single note.
// ABOUTME: Renders markdown content with glamour.

package main

import (
	"fmt"

	"github.com/harper/inote/internal/ui"
	"github.com/spf13/cobra"
)

var showCmd = &cobra.Command{
	Use:   "show <id-prefix>",
	Short: "Show a note",
	Long:  `Display a note's metadata and full content with rendered markdown.`,
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		note, err := findNote(cmd.Context(), args[0])
		if err != nil {
			return err
		}

		out := cmd.OutOrStdout()
		fmt.Fprint(out, ui.FormatNoteHeader(note))

		raw, _ := cmd.Flags().GetBool("raw")
		if raw {
			fmt.Fprintln(out, note.Content)
		} else {
			content, _ := ui.FormatNoteContent(note.Content)
			fmt.Fprint(out, content)
		}

		if len(note.Images) > 0 {
			fmt.Fprint(out, ui.FormatImageList(note.Images))
		}
		return nil
	},
}

func init() {
	showCmd.Flags().Bool("raw", false, "print content without markdown rendering")
	rootCmd.AddCommand(showCmd)
}
