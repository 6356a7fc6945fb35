package main

import (
	"context"
	"fmt"
	"io"
	"os/signal"
	"strconv"
	"strings"
	"syscall"
	"text/tabwriter"
	"time"

	"github.com/jpalmerr/serverboard"
	"github.com/jpalmerr/serverboard/config"
	"github.com/jpalmerr/serverboard/internal/logging"
	"github.com/spf13/cobra"
)

const (
	ansiGreen = "\x1b[32m"
	ansiRed   = "\x1b[31m"
	ansiReset = "\x1b[0m"
)

// statusCmd runs a single refresh cycle and prints the result.
var statusCmd = &cobra.Command{
	Use:   "status",
	Short: "Refresh once and print a status table",
	Long: `Run a single refresh cycle against the configured manifest and status
API, then print one row per enabled server.

Online and offline markers are colored when stdout is a terminal.

Example:
  serverboard status -c config.yaml
  serverboard status -c config.yaml --timeout 10s`,
	RunE: runStatus,
}

func init() {
	rootCmd.AddCommand(statusCmd)

	addConfigFlag(statusCmd)
	statusCmd.Flags().Duration("timeout", 30*time.Second, "maximum time for the refresh cycle")
}

func runStatus(cmd *cobra.Command, args []string) error {
	logger, err := newLogger(cmd)
	if err != nil {
		return err
	}

	cfg, err := loadConfig(cmd)
	if err != nil {
		return fmt.Errorf("failed to load config: %w", err)
	}

	opts, closer, err := config.Build(cfg)
	if err != nil {
		return fmt.Errorf("failed to build options: %w", err)
	}
	defer func() { _ = closer.Close() }()

	b, err := serverboard.New(append(opts, serverboard.WithLogger(logger))...)
	if err != nil {
		return fmt.Errorf("failed to create Serverboard: %w", err)
	}

	timeout, _ := cmd.Flags().GetDuration("timeout")
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()
	if timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, timeout)
		defer cancel()
	}

	result, err := b.Refresh(ctx)
	if err != nil {
		return fmt.Errorf("refresh failed: %w", err)
	}

	out := cmd.OutOrStdout()
	return writeStatusTable(out, result.Summaries, logging.IsTerminal(out))
}

// writeStatusTable prints summaries as an aligned table. STATUS is the last
// column so color codes do not disturb the alignment.
func writeStatusTable(w io.Writer, summaries []serverboard.Summary, color bool) error {
	tw := tabwriter.NewWriter(w, 0, 0, 2, ' ', 0)
	_, _ = fmt.Fprintln(tw, "ID\tNAME\tPLAYERS\tVERSION\tPACK\tSTATUS")

	for _, s := range summaries {
		players := "-"
		if s.Online {
			players = strconv.Itoa(s.PlayersNow) + "/" + strconv.Itoa(s.PlayersMax)
		}
		pack := s.PackVersion
		if pack == "" {
			pack = "-"
		}
		version := strings.TrimSpace(strings.TrimPrefix(s.VersionText, "Server Running"))
		if !s.Online || version == "" {
			version = "-"
		}

		status := s.StatusLabel
		if color {
			if s.Online {
				status = ansiGreen + status + ansiReset
			} else {
				status = ansiRed + status + ansiReset
			}
		}

		_, _ = fmt.Fprintf(tw, "%s\t%s\t%s\t%s\t%s\t%s\n", s.ID, s.Name, players, version, pack, status)
	}

	if err := tw.Flush(); err != nil {
		return err
	}
	if len(summaries) == 0 {
		_, err := fmt.Fprintln(w, "no enabled servers")
		return err
	}
	return nil
}
