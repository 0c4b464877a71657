package main

import (
	"context"
	"fmt"
	"os"
	"time"

	"github.com/spf13/cobra"

	"github.com/2pages/FieldWorksMacOS-sub008/pkg/types"
	"github.com/2pages/FieldWorksMacOS-sub008/pua/chardefs"
	"github.com/2pages/FieldWorksMacOS-sub008/pua/install"
	"github.com/2pages/FieldWorksMacOS-sub008/pua/merge"
)

var (
	mergeOutput  string
	mergeComment string
)

func init() {
	cmd := newMergeCmd()
	cmd.Flags().StringVarP(&mergeOutput, "output", "o", "", "Write the merged table here instead of stdout")
	cmd.Flags().StringVar(&mergeComment, "comment", "", "Comment appended to merged lines (default: install-style tag)")
	rootCmd.AddCommand(cmd)
}

func newMergeCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "merge <table> <chardefs.xml>",
		Short: "Merge character definitions into an override table",
		Long: `The merge command inserts the definitions from an XML file into a
UnicodeDataOverrides.txt-style table, keeping it sorted. A definition with
the same codepoint as a table line replaces that line. No other file is
touched and gennorm2 is not run.

Example:
  puactl merge data/UnicodeDataOverrides.txt CustomChars.xml > merged.txt
  puactl merge data/UnicodeDataOverrides.txt CustomChars.xml -o UnicodeDataOverrides.txt`,
		Args: cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runMerge(cmd.Context(), args)
		},
	}
	return cmd
}

func runMerge(ctx context.Context, args []string) error {
	tablePath, defsPath := args[0], args[1]

	b, err := chardefs.ParseFile(defsPath)
	if err != nil {
		return err
	}

	comment := mergeComment
	if comment == "" {
		comment = install.CommentTag(cfg.CommentPrefix, defsPath, time.Now())
	}
	opts := merge.DefaultOptions(comment)
	opts.Flush = cfg.FlushMode()

	var stats merge.Stats
	if mergeOutput == "" {
		f, err := os.Open(tablePath)
		if err != nil {
			return types.IOError("open override table", tablePath, err)
		}
		defer f.Close()

		stats, err = merge.Insert(ctx, os.Stdout, f, b.Sorted(), opts)
		if err != nil {
			return fmt.Errorf("merge %s: %w", tablePath, err)
		}
		// stdout carries the table; keep the summary off it.
		if verbose && !quiet {
			fmt.Fprintf(os.Stderr, "merged %d definitions: %s\n", b.Len(), stats)
		}
		return nil
	}

	stats, err = merge.InsertFile(ctx, tablePath, mergeOutput, b.Sorted(), opts)
	if err != nil {
		return fmt.Errorf("merge %s: %w", tablePath, err)
	}

	if jsonOut {
		return printJSON(map[string]any{
			"table":    tablePath,
			"output":   mergeOutput,
			"inserted": stats.Inserted,
			"replaced": stats.Replaced,
			"appended": stats.Appended,
			"kept":     stats.Kept,
			"success":  true,
		})
	}
	printInfo("%s\n", render(headerStyle, "Merged into "+mergeOutput))
	printInfo("%s", field("Inserted", stats.Inserted+stats.Appended))
	printInfo("%s", field("Replaced", stats.Replaced))
	printInfo("%s", field("Kept", stats.Kept))
	printInfo("%s\n", render(successStyle, "✓ Merge complete"))
	return nil
}
