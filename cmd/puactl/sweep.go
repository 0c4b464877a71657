package main

import (
	"github.com/spf13/cobra"

	"github.com/2pages/FieldWorksMacOS-sub008/pua/gennorm"
)

func init() {
	rootCmd.AddCommand(newSweepCmd())
}

func newSweepCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "sweep [dir]",
		Short: "Delete compiled data files that were moved aside while locked",
		Long: `When gennorm2 output is held open by another program, install renames the
old file and lists it in TempFilesToDelete. The sweep command deletes the
listed files; entries that are still locked stay listed.

Without an argument the versioned data directory of the configured ICU
directory is swept.

Example:
  puactl sweep
  puactl sweep /usr/share/icu/70/icudt70l`,
		Args: cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runSweep(args)
		},
	}
	return cmd
}

func runSweep(args []string) error {
	var dir string
	if len(args) == 1 {
		dir = args[0]
	} else {
		layout, err := resolveLayout()
		if err != nil {
			return err
		}
		dir = layout.BinaryDir
	}

	printVerbose("Sweeping %s\n", dir)
	res, err := gennorm.Sweep(dir)
	if err != nil {
		return err
	}

	if jsonOut {
		return printJSON(map[string]any{
			"dir":       dir,
			"deleted":   nonNil(res.Deleted),
			"remaining": nonNil(res.Remaining),
		})
	}

	for _, p := range res.Deleted {
		printVerbose("  deleted %s\n", p)
	}
	for _, p := range res.Remaining {
		printInfo("  %s %s\n", render(warningStyle, "still locked"), p)
	}
	printInfo("%s\n", render(successStyle, "✓ Sweep complete"))
	printInfo("%s", field("Deleted", len(res.Deleted)))
	printInfo("%s", field("Remaining", len(res.Remaining)))
	return nil
}
