package main

import (
	"context"
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/2pages/FieldWorksMacOS-sub008/pua/gennorm"
	"github.com/2pages/FieldWorksMacOS-sub008/pua/install"
)

var installPrefix string

func init() {
	cmd := newInstallCmd()
	cmd.Flags().StringVar(&installPrefix, "comment-prefix", "", "Start of the comment on installed lines (default [SIL-Corp])")
	rootCmd.AddCommand(cmd)
}

func newInstallCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "install <chardefs.xml>",
		Short: "Install character definitions and rebuild normalization data",
		Long: `The install command reads CharDef elements from an XML file, merges them
into UnicodeDataOverrides.txt, regenerates nfcOverrides.txt and
nfkcOverrides.txt, and runs gennorm2 to rebuild nfc_fw.nrm and nfkc_fw.nrm.

Every file is backed up first. If any step fails, all of them are restored.

Example:
  puactl install CustomChars.xml --icu-dir /usr/share/icu/70
  ICU_DATA=/opt/icu puactl install CustomChars.xml --json`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runInstall(cmd.Context(), args)
		},
	}
	return cmd
}

func runInstall(ctx context.Context, args []string) error {
	defsPath := args[0]

	layout, err := resolveLayout()
	if err != nil {
		return err
	}
	tool, err := gennorm.LookTool(cfg.Gennorm2)
	if err != nil {
		return err
	}

	prefix := cfg.CommentPrefix
	if installPrefix != "" {
		prefix = installPrefix
	}

	printVerbose("ICU directory: %s\n", layout.Dir)
	printVerbose("gennorm2: %s\n", tool)

	inst := install.New(layout, gennorm.NewCompiler(tool, nil), install.Options{
		CommentPrefix: prefix,
		Flush:         cfg.FlushMode(),
	})
	res, err := inst.InstallFile(ctx, defsPath)
	if err != nil {
		return fmt.Errorf("install %s: %w", defsPath, err)
	}

	if jsonOut {
		dups := make([]string, len(res.Duplicates))
		for i, c := range res.Duplicates {
			dups[i] = c.String()
		}
		return printJSON(map[string]any{
			"definitions":   defsPath,
			"icu_dir":       layout.Dir,
			"comment":       res.Comment,
			"inserted":      res.Merge.Inserted,
			"replaced":      res.Merge.Replaced,
			"appended":      res.Merge.Appended,
			"combining":     res.Combining,
			"decomposition": res.Decomp,
			"duplicates":    dups,
			"deferred":      res.Deferred,
			"files":         res.Files,
			"success":       true,
		})
	}

	printInfo("%s\n", render(headerStyle, "Installed "+defsPath))
	printInfo("%s", field("ICU directory", layout.Dir))
	printInfo("%s", field("Inserted", res.Merge.Inserted+res.Merge.Appended))
	printInfo("%s", field("Replaced", res.Merge.Replaced))
	printInfo("%s", field("Combining", res.Combining))
	printInfo("%s", field("Decompositions", res.Decomp))
	if len(res.Duplicates) > 0 {
		codes := make([]string, len(res.Duplicates))
		for i, c := range res.Duplicates {
			codes[i] = "U+" + c.String()
		}
		printInfo("%s", field("Duplicates", render(warningStyle, strings.Join(codes, ", "))))
	}
	if len(res.Deferred) > 0 {
		printInfo("%s", field("Moved aside", len(res.Deferred)))
		printInfo("  %s\n", render(mutedStyle, "Run 'puactl sweep' once no program holds the old files."))
	}
	for _, f := range res.Files {
		printVerbose("  rewrote %s\n", f)
	}
	printInfo("%s\n", render(successStyle, "✓ Install complete"))
	return nil
}
