// ABOUTME: Categories command listing the category chips.
// ABOUTME: Shows how many notes fall in each category.

package main

import (
	"fmt"

	"github.com/harper/inote/internal/store"
	"github.com/harper/inote/internal/ui"
	"github.com/spf13/cobra"
)

var categoriesCmd = &cobra.Command{
	Use:   "categories",
	Short: "List categories with note counts",
	RunE: func(cmd *cobra.Command, args []string) error {
		notes, err := noteStore.LoadAll(cmd.Context())
		if err != nil {
			return fmt.Errorf("failed to load notes: %w", err)
		}
		selected, _ := cmd.Flags().GetString("selected")
		fmt.Fprint(cmd.OutOrStdout(), ui.FormatCategoryList(store.CountByCategory(notes), selected))
		return nil
	},
}

func init() {
	categoriesCmd.Flags().String("selected", "all", "category to highlight")
	rootCmd.AddCommand(categoriesCmd)
}
