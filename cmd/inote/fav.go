// ABOUTME: Favorite command for starring notes.
// ABOUTME: Sets, clears or toggles the favorite flag without touching the edit time.

package main

import (
	"fmt"

	"github.com/harper/inote/internal/ui"
	"github.com/spf13/cobra"
)

var favCmd = &cobra.Command{
	Use:   "fav <id-prefix>",
	Short: "Mark a note as favorite",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		off, _ := cmd.Flags().GetBool("off")
		toggle, _ := cmd.Flags().GetBool("toggle")
		ctx := cmd.Context()

		note, err := findNote(ctx, args[0])
		if err != nil {
			return err
		}

		favorite := !off
		if toggle {
			favorite, err = noteStore.ToggleFavorite(ctx, note.ID)
		} else {
			err = noteStore.SetFavorite(ctx, note.ID, favorite)
		}
		if err != nil {
			return fmt.Errorf("failed to update favorite: %w", err)
		}

		msg := fmt.Sprintf("Starred note %s", ui.ShortID(note.ID))
		if !favorite {
			msg = fmt.Sprintf("Unstarred note %s", ui.ShortID(note.ID))
		}
		fmt.Fprintln(cmd.OutOrStdout(), ui.Success(msg))
		return nil
	},
}

func init() {
	favCmd.Flags().Bool("off", false, "remove the favorite mark")
	favCmd.Flags().Bool("toggle", false, "flip the favorite mark")
	favCmd.MarkFlagsMutuallyExclusive("off", "toggle")
	rootCmd.AddCommand(favCmd)
}
