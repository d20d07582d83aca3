// ABOUTME: List command for displaying notes.
// ABOUTME: Filters by category, search text, tag, priority and favorites; can watch for changes.

package main

import (
	"context"
	"fmt"
	"io"

	"github.com/harper/inote/internal/models"
	"github.com/harper/inote/internal/store"
	"github.com/harper/inote/internal/ui"
	"github.com/harper/inote/internal/watch"
	"github.com/spf13/cobra"
)

var listCmd = &cobra.Command{
	Use:   "list",
	Short: "List notes",
	Long: `List notes, most recently edited first, optionally filtered by category,
search text, tag, priority or favorites. --watch keeps the list open and
redraws it when the backend changes.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		f := store.Filter{}
		f.Category, _ = cmd.Flags().GetString("category")
		f.SearchText, _ = cmd.Flags().GetString("search")
		f.Tag, _ = cmd.Flags().GetString("tag")
		f.Priority, _ = cmd.Flags().GetString("priority")
		f.FavoritesOnly, _ = cmd.Flags().GetBool("favorites")
		f.Limit, _ = cmd.Flags().GetInt("limit")
		watchFlag, _ := cmd.Flags().GetBool("watch")

		out := cmd.OutOrStdout()
		// An unreadable collection is logged and listed as empty.
		if !watchFlag {
			printNotes(out, store.FilterAndSort(noteStore.LoadOrEmpty(cmd.Context()), f))
			return nil
		}

		return watch.Run(cmd.Context(), conn.Watch, func(ctx context.Context) error {
			notes := noteStore.LoadOrEmpty(ctx)
			filtered := store.FilterAndSort(notes, f)
			fmt.Fprint(out, ui.FormatWatchHeader(noteStore.Key(), len(filtered)))
			printNotes(out, filtered)
			return nil
		})
	},
}

func printNotes(out io.Writer, notes []models.Note) {
	if len(notes) == 0 {
		fmt.Fprintln(out, "No notes found.")
		return
	}
	for _, note := range notes {
		fmt.Fprint(out, ui.FormatNoteListItem(note))
	}
}

func init() {
	listCmd.Flags().StringP("category", "c", models.CategoryAll, "filter by category ('all' for every category)")
	listCmd.Flags().StringP("search", "s", "", "case-insensitive text in title or content")
	listCmd.Flags().StringP("tag", "t", "", "filter by tag")
	listCmd.Flags().StringP("priority", "p", "", "filter by priority")
	listCmd.Flags().Bool("favorites", false, "only favorites")
	listCmd.Flags().IntP("limit", "n", 20, "number of results (0 for all)")
	listCmd.Flags().BoolP("watch", "w", false, "keep listing as notes change")
	rootCmd.AddCommand(listCmd)
}
