package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/2pages/FieldWorksMacOS-sub008/internal/format"
	"github.com/2pages/FieldWorksMacOS-sub008/pua/normfrag"
)

var (
	extractNFC  string
	extractNFKC string
)

func init() {
	cmd := newExtractCmd()
	cmd.Flags().StringVar(&extractNFC, "nfc", "", "Write the combining-class fragment to this file")
	cmd.Flags().StringVar(&extractNFKC, "nfkc", "", "Write the decomposition fragment to this file")
	cmd.MarkFlagsRequiredTogether("nfc", "nfkc")
	rootCmd.AddCommand(cmd)
}

func newExtractCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "extract <table>",
		Short: "Derive the gennorm2 override fragments from a table",
		Long: `The extract command reads an override table and derives the two gennorm2
input fragments: combining classes (CODE:CLASS) and decompositions
(CODE>MAPPING). Without --nfc and --nfkc both are printed to stdout.

Example:
  puactl extract UnicodeDataOverrides.txt
  puactl extract UnicodeDataOverrides.txt --nfc nfcOverrides.txt --nfkc nfkcOverrides.txt`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runExtract(args)
		},
	}
	return cmd
}

func runExtract(args []string) error {
	tablePath := args[0]

	frags, err := normfrag.ExtractFile(tablePath)
	if err != nil {
		return err
	}
	if frags.Skipped > 0 {
		printVerbose("skipped %d malformed lines\n", frags.Skipped)
	}

	toFiles := extractNFC != "" && extractNFKC != ""
	if toFiles {
		if err := frags.WriteFiles(extractNFC, extractNFKC, cfg.FlushMode()); err != nil {
			return err
		}
	}

	if jsonOut {
		return printJSON(map[string]any{
			"table":         tablePath,
			"combining":     nonNil(frags.Combining),
			"decomposition": nonNil(frags.Decomposition),
			"skipped":       frags.Skipped,
		})
	}

	if !toFiles {
		fmt.Fprintf(os.Stdout, "# %s\n", format.NFCOverridesFile)
		if err := normfrag.WriteTo(os.Stdout, frags.Combining); err != nil {
			return err
		}
		fmt.Fprintf(os.Stdout, "# %s\n", format.NFKCOverridesFile)
		return normfrag.WriteTo(os.Stdout, frags.Decomposition)
	}

	printInfo("%s", field(extractNFC, fmt.Sprintf("%d lines", len(frags.Combining))))
	printInfo("%s", field(extractNFKC, fmt.Sprintf("%d lines", len(frags.Decomposition))))
	printInfo("%s\n", render(successStyle, "✓ Extract complete"))
	return nil
}

func nonNil(s []string) []string {
	if s == nil {
		return []string{}
	}
	return s
}
