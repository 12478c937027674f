package main

import (
	"log"
	"os"

	"github.com/spf13/cobra"

	"github.com/dcosson/goexpect/internal/config"
	"github.com/dcosson/goexpect/internal/version"
)

var (
	verbose bool
	logger  *log.Logger
)

// Execute builds the root cobra command and runs it, matching h2's
// internal/cmd/root.go's NewRootCmd/PersistentPreRunE shape.
func Execute() error {
	rootCmd := &cobra.Command{
		Use:     "expect",
		Short:   "Automate interactive terminal programs",
		Long:    "expect spawns a program under a PTY and scripts, interacts with, or records it.",
		Version: version.DisplayVersion(),
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			if verbose {
				logger = log.New(os.Stderr, "expect: ", log.LstdFlags)
			}
			return nil
		},
	}
	rootCmd.SetVersionTemplate("expect {{.Version}}\n")
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "log session lifecycle diagnostics to stderr")

	rootCmd.AddCommand(newRunCmd(), newInteractCmd(), newRecordCmd())
	return rootCmd.Execute()
}

// loadedConfig reads the on-disk overlay, treating a missing/invalid file
// as "use built-in defaults" rather than a hard failure — this is a
// convenience layer, not a required input.
func loadedConfig() *config.Config {
	cfg, err := config.Load()
	if err != nil {
		if logger != nil {
			logger.Printf("config: %v (using defaults)", err)
		}
		return &config.Config{}
	}
	return cfg
}
