package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"

	"github.com/2pages/FieldWorksMacOS-sub008/internal/config"
)

var configDefault bool

func init() {
	cmd := newConfigCmd()
	cmd.Flags().BoolVar(&configDefault, "default", false, "Print a commented default configuration file")
	rootCmd.AddCommand(cmd)
}

func newConfigCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "config",
		Short: "Print the effective configuration",
		Long: `The config command prints the configuration puactl would use after
reading the configuration file, environment variables, and flags.

Example:
  puactl config
  puactl config --default > puactl.yaml`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runConfig()
		},
	}
	return cmd
}

func runConfig() error {
	if configDefault {
		_, err := fmt.Fprint(os.Stdout, config.DefaultYAML())
		return err
	}
	if jsonOut {
		return printJSON(cfg)
	}
	out, err := yaml.Marshal(cfg)
	if err != nil {
		return fmt.Errorf("encode configuration: %w", err)
	}
	_, err = os.Stdout.Write(out)
	return err
}
