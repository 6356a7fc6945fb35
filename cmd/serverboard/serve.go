package main

import (
	"context"
	"fmt"
	"os/signal"
	"syscall"
	"time"

	"github.com/jpalmerr/serverboard"
	"github.com/jpalmerr/serverboard/config"
	"github.com/spf13/cobra"
)

const (
	shutdownTimeout = 10 * time.Second
)

// serveCmd starts the Serverboard dashboard server.
var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Start the dashboard server",
	Long: `Start the Serverboard dashboard server.

The server will:
  - Load configuration from the specified YAML file
  - Refresh every server in the manifest each poll interval
  - Serve the dashboard UI and JSON API on the configured port

The server runs until interrupted (Ctrl+C) or receives SIGTERM.

Environment overrides:
  SERVERBOARD_PORT, SERVERBOARD_POLL_INTERVAL

Example:
  serverboard serve -c config.yaml
  serverboard serve -c config.yaml --port 9090 --log-format console`,
	RunE: runServe,
}

func init() {
	rootCmd.AddCommand(serveCmd)

	addConfigFlag(serveCmd)
	addOverrideFlags(serveCmd)
}

func runServe(cmd *cobra.Command, args []string) error {
	logger, err := newLogger(cmd)
	if err != nil {
		return err
	}

	cfg, err := loadConfig(cmd)
	if err != nil {
		return fmt.Errorf("failed to load config: %w", err)
	}

	logger.Info("config loaded",
		"manifest", manifestKind(cfg.Manifest),
		"provider", cfg.StatusAPI.Provider,
		"history", cfg.History.Path != "",
	)
	logger.Info("starting server",
		"port", cfg.Port,
		"poll_interval", cfg.PollInterval.Duration().String(),
	)

	opts, closer, err := config.Build(cfg)
	if err != nil {
		return fmt.Errorf("failed to build options: %w", err)
	}
	defer func() { _ = closer.Close() }()

	b, err := serverboard.New(append(opts, serverboard.WithLogger(logger))...)
	if err != nil {
		return fmt.Errorf("failed to create Serverboard: %w", err)
	}

	// set up context with signal handling - cancel on SIGINT/SIGTERM
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	// start server - blocks until context cancelled
	errChan := make(chan error, 1)
	go func() {
		errChan <- b.Start(ctx)
	}()

	select {
	case err := <-errChan:
		if err != nil {
			return fmt.Errorf("server error: %w", err)
		}
		logger.Info("shutdown complete")
		return nil

	case <-ctx.Done():
		// signal received, wait for graceful shutdown with timeout
		select {
		case err := <-errChan:
			if err != nil {
				return fmt.Errorf("server error: %w", err)
			}
			logger.Info("shutdown complete")
			return nil
		case <-time.After(shutdownTimeout):
			logger.Warn("shutdown timed out",
				"timeout", shutdownTimeout.String(),
				"action", "forcing exit",
			)
			return nil
		}
	}
}

// manifestKind names the configured manifest source for logs and output.
func manifestKind(mc config.ManifestConfig) string {
	switch {
	case mc.URL != "":
		return "url"
	case mc.File != "":
		return "file"
	case mc.Docker != nil:
		return "docker"
	default:
		return "none"
	}
}
