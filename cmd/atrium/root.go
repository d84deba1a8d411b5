package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
)

var (
	// Global flags
	cfgFile string
	verbose bool
)

var rootCmd = &cobra.Command{
	Use:   "atrium",
	Short: "Atrium - condition-driven template resolution service",
	Long: `Atrium stores page templates with targeting conditions and selects,
per request, the single template that applies to the current context.

It provides:
  - A condition catalog covering structural, contextual and storefront targeting
  - First-match-wins resolution over active templates
  - Header/footer slot templates alongside full-page and content replacements
  - Memory, SQLite, and watched-file template backends
  - An HTTP API for template management and resolution

For more information, visit: https://github.com/stencil-hq/atrium`,
	Version: Version,
}

// Execute runs the root command.
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func init() {
	// Global persistent flags (available to all subcommands)
	rootCmd.PersistentFlags().StringVarP(&cfgFile, "config", "c", "config.yaml", "config file path")
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "verbose output")
}
