package main

import (
	"fmt"

	"github.com/spf13/cobra"
)

// validateCmd validates a config file without starting the server.
var validateCmd = &cobra.Command{
	Use:   "validate",
	Short: "Validate a config file",
	Long: `Validate a Serverboard configuration file without starting the server.

This command parses the YAML, expands environment variables, applies
SERVERBOARD_* overrides, and validates all fields. It's useful for CI/CD
pipelines or pre-deployment checks. The manifest itself is not fetched.

Exit codes:
  0 - Config is valid
  1 - Config is invalid (error details printed to stderr)

Example:
  serverboard validate -c config.yaml`,
	RunE: runValidate,
}

func init() {
	rootCmd.AddCommand(validateCmd)

	addConfigFlag(validateCmd)
}

func runValidate(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig(cmd)
	if err != nil {
		return fmt.Errorf("invalid config: %w", err)
	}

	manifest := manifestKind(cfg.Manifest)
	switch manifest {
	case "url":
		manifest += " " + cfg.Manifest.URL
	case "file":
		manifest += " " + cfg.Manifest.File
	}

	history := "disabled"
	if cfg.History.Path != "" {
		history = cfg.History.Path
	}

	fmt.Printf("Config is valid!\n")
	fmt.Printf("  Port:          %d\n", cfg.Port)
	fmt.Printf("  Poll interval: %s\n", cfg.PollInterval.Duration())
	fmt.Printf("  Manifest:      %s\n", manifest)
	fmt.Printf("  Status API:    %s\n", cfg.StatusAPI.Provider)
	fmt.Printf("  Concurrency:   %d\n", cfg.MaxConcurrency)
	fmt.Printf("  History:       %s\n", history)

	return nil
}
