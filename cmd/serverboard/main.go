// Package main is the entry point for the serverboard CLI.
//
// Serverboard can be run either as a library (SDK) or as a standalone binary
// with YAML configuration. This CLI provides the standalone binary approach.
//
// Usage:
//
//	serverboard serve -c config.yaml    # Start the dashboard
//	serverboard validate -c config.yaml # Validate configuration
//	serverboard status -c config.yaml   # Run one cycle and print a table
//	serverboard mcp -c config.yaml      # Serve MCP tools over stdio
//	serverboard version                 # Show version info
package main

import (
	"fmt"
	"log/slog"
	"os"

	"github.com/jpalmerr/serverboard/internal/logging"
	"github.com/spf13/cobra"
)

// Version information - set by GoReleaser at build time via ldflags.
// Example: go build -ldflags "-X main.version=1.0.0"
var (
	version = "dev"
	commit  = "none"
	date    = "unknown"
)

// rootCmd is the base command when called without subcommands.
var rootCmd = &cobra.Command{
	Use:   "serverboard",
	Short: "A live status board for Minecraft servers",
	Long: `Serverboard is a live status board for a fleet of Minecraft servers.

It reads a manifest of servers, looks up each one's live status every
poll interval, and publishes the results to a web dashboard with
Server-Sent Events and WebSocket updates.

Quick start:
  1. Create a config file (serverboard.yaml)
  2. Run: serverboard serve -c serverboard.yaml
  3. Open http://localhost:8080 in your browser

Example config:
  title: ForgeServ
  port: 8080
  poll_interval: 30s
  manifest:
    url: https://forgeserv.net/servers.json
    default_host: forgeserv.net`,
	SilenceUsage: true,
}

// Execute runs the root command.
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		// Cobra already prints the error, just exit with code 1
		os.Exit(1)
	}
}

func main() {
	Execute()
}

// versionCmd prints version information.
var versionCmd = &cobra.Command{
	Use:   "version",
	Short: "Print version information",
	Long:  `Print the version, commit hash, and build date of this serverboard binary.`,
	Run: func(cmd *cobra.Command, args []string) {
		out := cmd.OutOrStdout()
		_, _ = fmt.Fprintf(out, "serverboard %s\n", version)
		_, _ = fmt.Fprintf(out, "  commit: %s\n", commit)
		_, _ = fmt.Fprintf(out, "  built:  %s\n", date)
	},
}

func init() {
	rootCmd.PersistentFlags().String("log-format", logging.FormatJSON, "log format: json or console")
	rootCmd.PersistentFlags().String("log-level", "info", "log level: debug, info, warn or error")

	rootCmd.AddCommand(versionCmd)
}

// newLogger creates the CLI logger from the persistent flags. Logs always go
// to stderr so stdout stays free for command output and the MCP transport.
func newLogger(cmd *cobra.Command) (*slog.Logger, error) {
	format, _ := cmd.Flags().GetString("log-format")
	level, _ := cmd.Flags().GetString("log-level")
	return logging.New(os.Stderr, format, level)
}

// addConfigFlag registers the required -c/--config flag on cmd.
func addConfigFlag(cmd *cobra.Command) {
	cmd.Flags().StringP("config", "c", "", "path to config file (required)")
	_ = cmd.MarkFlagRequired("config")
}
