// ABOUTME: Import command for restoring notes from backup.
// ABOUTME: Accepts JSON bundles, markdown files, directories and glob patterns.

package main

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"runtime"
	"sort"
	"strings"

	"github.com/bmatcuk/doublestar/v4"
	"github.com/harper/inote/internal/export"
	"github.com/harper/inote/internal/models"
	"github.com/harper/inote/internal/ui"
	"github.com/spf13/cobra"
	"golang.org/x/sync/errgroup"
)

var importCmd = &cobra.Command{
	Use:   "import <path-or-glob>...",
	Short: "Import notes",
	Long: `Import notes from JSON bundles (as written by "inote export"), markdown
files, directories of markdown files, or glob patterns such as "notes/**/*.md".

Notes keep their ids, so re-importing an export updates the same notes.
All notes are written in one step: new notes go to the top in the order they
were read, and their created and edited times are kept. Notes without a title
are skipped and make the command fail after the rest are imported.`,
	Args: cobra.MinimumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		files, err := expandImportPaths(args)
		if err != nil {
			return err
		}
		if len(files) == 0 {
			return fmt.Errorf("no files matched %s", strings.Join(args, " "))
		}

		notes, err := readImportFiles(cmd.Context(), files)
		if err != nil {
			return err
		}

		out := cmd.OutOrStdout()
		imported, skipped, err := noteStore.Import(cmd.Context(), notes)
		for _, sk := range skipped {
			fmt.Fprintln(out, ui.Warning(fmt.Sprintf("skipped %q: %v", sk.Note.Title, sk.Err)))
		}
		if err != nil {
			return fmt.Errorf("failed to import notes: %w", err)
		}

		fmt.Fprintln(out, ui.Success(fmt.Sprintf("Imported %d notes", len(imported))))
		if len(skipped) > 0 {
			return fmt.Errorf("%d of %d notes could not be imported", len(skipped), len(notes))
		}
		return nil
	},
}

// expandImportPaths resolves directories to the markdown files below them and
// glob patterns to their matches. Results are de-duplicated and sorted.
func expandImportPaths(args []string) ([]string, error) {
	seen := make(map[string]bool)
	var files []string
	add := func(p string) {
		if !seen[p] {
			seen[p] = true
			files = append(files, p)
		}
	}

	for _, arg := range args {
		info, err := os.Stat(arg)
		switch {
		case err == nil && info.IsDir():
			matches, err := doublestar.Glob(os.DirFS(arg), "**/*.md")
			if err != nil {
				return nil, fmt.Errorf("failed to scan %s: %w", arg, err)
			}
			for _, m := range matches {
				add(filepath.Join(arg, filepath.FromSlash(m)))
			}
		case err == nil:
			add(arg)
		default:
			if !doublestar.ValidatePathPattern(arg) {
				return nil, fmt.Errorf("failed to stat path: %w", err)
			}
			matches, err := doublestar.FilepathGlob(arg)
			if err != nil {
				return nil, fmt.Errorf("invalid pattern %q: %w", arg, err)
			}
			for _, m := range matches {
				add(m)
			}
		}
	}

	sort.Strings(files)
	return files, nil
}

// readImportFiles parses files concurrently and returns their notes in file order.
func readImportFiles(ctx context.Context, files []string) ([]models.Note, error) {
	parsed := make([][]models.Note, len(files))

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(runtime.NumCPU())
	for i, path := range files {
		g.Go(func() error {
			if err := gctx.Err(); err != nil {
				return err
			}
			notes, err := parseImportFile(path)
			if err != nil {
				return fmt.Errorf("%s: %w", path, err)
			}
			parsed[i] = notes
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}

	var notes []models.Note
	for _, ns := range parsed {
		notes = append(notes, ns...)
	}
	return notes, nil
}

func parseImportFile(path string) ([]models.Note, error) {
	data, err := os.ReadFile(path) //nolint:gosec // User-specified file path is expected CLI behavior
	if err != nil {
		return nil, err
	}

	if strings.EqualFold(filepath.Ext(path), ".json") {
		bundle, err := export.UnmarshalJSON(data)
		if err != nil {
			return nil, err
		}
		notes := make([]models.Note, 0, len(bundle.Notes))
		for _, en := range bundle.Notes {
			notes = append(notes, en.ToModel())
		}
		return notes, nil
	}

	note, err := export.ParseMarkdown(path, data)
	if err != nil {
		return nil, err
	}
	return []models.Note{note}, nil
}

func init() {
	rootCmd.AddCommand(importCmd)
}
