package main

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"os/signal"

	"github.com/spf13/cobra"

	"github.com/2pages/FieldWorksMacOS-sub008/internal/config"
	"github.com/2pages/FieldWorksMacOS-sub008/internal/logger"
	"github.com/2pages/FieldWorksMacOS-sub008/pkg/types"
	"github.com/2pages/FieldWorksMacOS-sub008/pua/install"
)

var (
	// Global flags
	verbose    bool
	quiet      bool
	jsonOut    bool
	noColor    bool
	configPath string

	// ICU location flags, shared by install, sweep, and config
	icuDirFlag     string
	icuVersionFlag string
	gennormFlag    string

	cfg      = config.Default()
	closeLog = func() error { return nil }
)

var rootCmd = &cobra.Command{
	Use:   "puactl",
	Short: "Install private-use character definitions into ICU data",
	Long: `puactl merges custom Private Use Area character definitions into an ICU
UnicodeDataOverrides.txt table, regenerates the normalization override
fragments, and recompiles the nfc_fw.nrm and nfkc_fw.nrm data files with
gennorm2. A failed install leaves every file as it was.`,
	Version:       "0.1.0",
	SilenceUsage:  true,
	SilenceErrors: true,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		return setup()
	},
	PersistentPostRunE: func(cmd *cobra.Command, args []string) error {
		return closeLog()
	},
}

func init() {
	// Global flags
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "Enable verbose output")
	rootCmd.PersistentFlags().
		BoolVarP(&quiet, "quiet", "q", false, "Suppress all output except errors")
	rootCmd.PersistentFlags().BoolVar(&jsonOut, "json", false, "Output in JSON format")
	rootCmd.PersistentFlags().BoolVar(&noColor, "no-color", false, "Disable colored output")
	rootCmd.PersistentFlags().
		StringVar(&configPath, "config", "", "Configuration file (default ./"+config.DefaultFileName+")")

	rootCmd.PersistentFlags().StringVar(&icuDirFlag, "icu-dir", "", "ICU directory (overrides icu_dir and $"+config.EnvICUDir+")")
	rootCmd.PersistentFlags().StringVar(&icuVersionFlag, "icu-version", "", "ICU version in icudt<version>l (detected when empty)")
	rootCmd.PersistentFlags().StringVar(&gennormFlag, "gennorm2", "", "gennorm2 executable (overrides gennorm2 and $"+config.EnvGennorm2+")")
}

// setup loads configuration, applies flag overrides, and starts logging.
func setup() error {
	c, err := config.Load(configPath)
	if err != nil {
		return err
	}
	if icuDirFlag != "" {
		c.ICUDir = icuDirFlag
	}
	if icuVersionFlag != "" {
		c.ICUVersion = icuVersionFlag
	}
	if gennormFlag != "" {
		c.Gennorm2 = gennormFlag
	}
	cfg = c

	opts := logger.Options{Enabled: cfg.Log.Enabled, LogDir: cfg.Log.Dir, Level: cfg.LogLevel()}
	if verbose && !quiet {
		opts.Stderr = os.Stderr
		opts.Level = slog.LevelDebug
	}
	closeFn, err := logger.Init(opts)
	if err != nil {
		return fmt.Errorf("init logging: %w", err)
	}
	closeLog = closeFn
	return nil
}

func execute() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	err := rootCmd.ExecuteContext(ctx)
	stop()
	if err != nil {
		reportError(err)
		os.Exit(1)
	}
}

// Helper functions for output

// printInfo prints an info message if not in quiet mode
func printInfo(format string, args ...any) {
	if !quiet {
		fmt.Fprintf(os.Stdout, format, args...)
	}
}

// printError prints an error message
func printError(format string, args ...any) {
	fmt.Fprintf(os.Stderr, render(errorStyle, "Error:")+" "+format, args...)
}

// reportError prints err, the external tool's diagnostics, and a hint.
func reportError(err error) {
	printError("%v\n", err)
	var te *types.Error
	if errors.As(err, &te) && te.Detail != "" {
		fmt.Fprintln(os.Stderr, render(mutedStyle, te.Detail))
	}
	printHint(err)
}

// printVerbose prints a verbose message if verbose mode is enabled
func printVerbose(format string, args ...any) {
	if verbose && !quiet {
		fmt.Fprintf(os.Stdout, format, args...)
	}
}

// printJSON outputs data as JSON
func printJSON(v any) error {
	encoder := json.NewEncoder(os.Stdout)
	encoder.SetIndent("", "  ")
	encoder.SetEscapeHTML(false)
	return encoder.Encode(v)
}

// printHint suggests a remedy for errors the user can fix.
func printHint(err error) {
	kind, ok := types.KindOf(err)
	if !ok {
		return
	}
	var hint string
	switch kind {
	case types.ErrKindLocked:
		hint = "The ICU data files are in use. Close every program that uses them and run the install again;\n" +
			"afterwards run 'puactl sweep' to delete files that were moved aside."
	case types.ErrKindDirectoryNotFound:
		hint = "Set icu_dir in " + config.DefaultFileName + ", $" + config.EnvICUDir + ", or --icu-dir."
	case types.ErrKindToolFailure:
		hint = "Check that gennorm2 is installed (set gennorm2 in " + config.DefaultFileName + " or --gennorm2)."
	default:
		return
	}
	fmt.Fprintln(os.Stderr, render(warningStyle, "Hint:")+" "+hint)
}

// resolveLayout locates the ICU directory from the effective configuration.
func resolveLayout() (install.Layout, error) {
	return install.ResolveLayout(cfg.ICUDir, cfg.ICUVersion)
}
