// ABOUTME: Export command for backing up notes.
// ABOUTME: Supports a JSON bundle and markdown files with YAML frontmatter.

package main

import (
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/harper/inote/internal/export"
	"github.com/harper/inote/internal/models"
	"github.com/harper/inote/internal/ui"
	"github.com/spf13/cobra"
)

var exportCmd = &cobra.Command{
	Use:   "export",
	Short: "Export notes",
	Long:  `Export notes to a JSON bundle or a directory of markdown files.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		format, _ := cmd.Flags().GetString("format")
		outputPath, _ := cmd.Flags().GetString("output")
		notePrefix, _ := cmd.Flags().GetString("note")

		var notes []models.Note
		if notePrefix != "" {
			note, err := findNote(cmd.Context(), notePrefix)
			if err != nil {
				return err
			}
			notes = append(notes, note)
		} else {
			all, err := noteStore.LoadAll(cmd.Context())
			if err != nil {
				return fmt.Errorf("failed to list notes: %w", err)
			}
			notes = all
		}

		switch format {
		case "json":
			return exportJSON(cmd, notes, outputPath)
		case "md", "markdown":
			return exportMarkdown(cmd, notes, outputPath)
		default:
			return fmt.Errorf("unknown format: %s", format)
		}
	},
}

func exportJSON(cmd *cobra.Command, notes []models.Note, outputPath string) error {
	data, err := export.MarshalJSON(export.NewBundle(notes, time.Now()))
	if err != nil {
		return err
	}

	if outputPath == "" || outputPath == "-" {
		fmt.Fprintln(cmd.OutOrStdout(), string(data))
		return nil
	}

	if err := os.WriteFile(outputPath, data, 0600); err != nil {
		return fmt.Errorf("failed to write export: %w", err)
	}
	fmt.Fprintln(cmd.ErrOrStderr(), ui.Success(fmt.Sprintf("Exported %d notes to %s", len(notes), outputPath)))
	return nil
}

func exportMarkdown(cmd *cobra.Command, notes []models.Note, outputDir string) error {
	if outputDir == "" {
		outputDir = "export"
	}
	if err := os.MkdirAll(outputDir, 0750); err != nil {
		return err
	}

	used := make(map[string]int)
	for _, n := range notes {
		data, err := export.Markdown(n)
		if err != nil {
			return fmt.Errorf("failed to render %q: %w", n.Title, err)
		}

		filename := export.Filename(n.Title)
		if used[filename]++; used[filename] > 1 {
			ext := filepath.Ext(filename)
			filename = fmt.Sprintf("%s-%s%s", filename[:len(filename)-len(ext)], ui.ShortID(n.ID), ext)
		}
		if err := os.WriteFile(filepath.Join(outputDir, filename), data, 0600); err != nil {
			return err
		}
	}

	fmt.Fprintln(cmd.OutOrStdout(), ui.Success(fmt.Sprintf("Exported %d notes to %s", len(notes), outputDir)))
	return nil
}

func init() {
	exportCmd.Flags().StringP("format", "f", "json", "export format (json|md)")
	exportCmd.Flags().StringP("output", "o", "", "output file (json) or directory (md)")
	exportCmd.Flags().StringP("note", "n", "", "single note ID to export")
	rootCmd.AddCommand(exportCmd)
}
