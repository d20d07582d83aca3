// ABOUTME: Image command for managing a note's image references.
// ABOUTME: References are stored as opaque URIs; no image data is read.

package main

import (
	"fmt"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/harper/inote/internal/ui"
	"github.com/spf13/cobra"
)

var imageCmd = &cobra.Command{
	Use:   "image",
	Short: "Manage image references",
	Long:  `Add, remove, or list the images referenced by a note, in display order.`,
}

var imageAddCmd = &cobra.Command{
	Use:   "add <id-prefix> <uri-or-path>",
	Short: "Reference an image from a note",
	Args:  cobra.ExactArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		note, err := findNote(cmd.Context(), args[0])
		if err != nil {
			return err
		}

		uri, err := imageURI(args[1])
		if err != nil {
			return err
		}
		note.AddImage(uri)
		if _, err := noteStore.Save(cmd.Context(), note); err != nil {
			return fmt.Errorf("failed to add image: %w", err)
		}

		fmt.Fprintln(cmd.OutOrStdout(), ui.Success(fmt.Sprintf("Added image %d to note %s", len(note.Images)-1, ui.ShortID(note.ID))))
		return nil
	},
}

var imageRmCmd = &cobra.Command{
	Use:   "rm <id-prefix> <index>",
	Short: "Remove an image reference by position",
	Args:  cobra.ExactArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		index, err := strconv.Atoi(args[1])
		if err != nil {
			return fmt.Errorf("invalid index %q: %w", args[1], err)
		}

		note, err := findNote(cmd.Context(), args[0])
		if err != nil {
			return err
		}
		if !note.RemoveImage(index) {
			return fmt.Errorf("note %s has no image at index %d", ui.ShortID(note.ID), index)
		}
		if _, err := noteStore.Save(cmd.Context(), note); err != nil {
			return fmt.Errorf("failed to remove image: %w", err)
		}

		fmt.Fprintln(cmd.OutOrStdout(), ui.Success(fmt.Sprintf("Removed image %d from note %s", index, ui.ShortID(note.ID))))
		return nil
	},
}

var imageListCmd = &cobra.Command{
	Use:   "list <id-prefix>",
	Short: "List a note's images",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		note, err := findNote(cmd.Context(), args[0])
		if err != nil {
			return err
		}
		if len(note.Images) == 0 {
			fmt.Fprintln(cmd.OutOrStdout(), "No images.")
			return nil
		}
		fmt.Fprint(cmd.OutOrStdout(), ui.FormatImageList(note.Images))
		return nil
	},
}

// imageURI keeps URIs as given and turns local paths into absolute file URIs.
func imageURI(arg string) (string, error) {
	if strings.Contains(arg, "://") {
		return arg, nil
	}
	abs, err := filepath.Abs(arg)
	if err != nil {
		return "", fmt.Errorf("failed to resolve path: %w", err)
	}
	return "file://" + filepath.ToSlash(abs), nil
}

func init() {
	imageCmd.AddCommand(imageAddCmd)
	imageCmd.AddCommand(imageRmCmd)
	imageCmd.AddCommand(imageListCmd)
	rootCmd.AddCommand(imageCmd)
}
