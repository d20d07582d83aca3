// ABOUTME: Tag command for managing note tags.
// ABOUTME: Provides add, rm, and list subcommands.

package main

import (
	"fmt"

	"github.com/harper/inote/internal/models"
	"github.com/harper/inote/internal/store"
	"github.com/harper/inote/internal/ui"
	"github.com/spf13/cobra"
)

var tagCmd = &cobra.Command{
	Use:   "tag",
	Short: "Manage tags",
	Long:  `Add, remove, or list tags on notes. Tags are lowercased.`,
}

var tagAddCmd = &cobra.Command{
	Use:   "add <id-prefix> <tag>",
	Short: "Add a tag to a note",
	Args:  cobra.ExactArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		note, err := findNote(cmd.Context(), args[0])
		if err != nil {
			return err
		}

		tag := models.NewTag(args[1])
		if !note.AddTag(tag.Name) {
			return fmt.Errorf("note %s already has tag %q", ui.ShortID(note.ID), tag.Name)
		}
		if _, err := noteStore.Save(cmd.Context(), note); err != nil {
			return fmt.Errorf("failed to add tag: %w", err)
		}

		fmt.Fprintln(cmd.OutOrStdout(), ui.Success(fmt.Sprintf("Added tag %q to note %s", tag.Name, ui.ShortID(note.ID))))
		return nil
	},
}

var tagRmCmd = &cobra.Command{
	Use:   "rm <id-prefix> <tag>",
	Short: "Remove a tag from a note",
	Args:  cobra.ExactArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		note, err := findNote(cmd.Context(), args[0])
		if err != nil {
			return err
		}

		if !note.RemoveTag(args[1]) {
			return fmt.Errorf("note %s has no tag %q", ui.ShortID(note.ID), args[1])
		}
		if _, err := noteStore.Save(cmd.Context(), note); err != nil {
			return fmt.Errorf("failed to remove tag: %w", err)
		}

		fmt.Fprintln(cmd.OutOrStdout(), ui.Success(fmt.Sprintf("Removed tag %q from note %s", args[1], ui.ShortID(note.ID))))
		return nil
	},
}

var tagListCmd = &cobra.Command{
	Use:   "list",
	Short: "List all tags",
	RunE: func(cmd *cobra.Command, args []string) error {
		notes, err := noteStore.LoadAll(cmd.Context())
		if err != nil {
			return fmt.Errorf("failed to list tags: %w", err)
		}

		tags := store.ListTags(notes)
		if len(tags) == 0 {
			fmt.Fprintln(cmd.OutOrStdout(), "No tags found.")
			return nil
		}

		var tagCounts []ui.TagCount
		for _, t := range tags {
			tagCounts = append(tagCounts, ui.TagCount{
				Name:  t.Tag.Name,
				Count: t.Count,
			})
		}
		fmt.Fprint(cmd.OutOrStdout(), ui.FormatTagList(tagCounts))
		return nil
	},
}

func init() {
	tagCmd.AddCommand(tagAddCmd)
	tagCmd.AddCommand(tagRmCmd)
	tagCmd.AddCommand(tagListCmd)
	rootCmd.AddCommand(tagCmd)
}
