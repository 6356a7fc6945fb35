package main

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/jpalmerr/serverboard"
)

func main() {
	// start mock manifest host and status API (see mock_server.go)
	go StartMockFleet(":9999")
	time.Sleep(100 * time.Millisecond)

	provider, err := serverboard.NewMCSrvStatProvider(
		serverboard.WithBaseURL("http://localhost:9999"),
		serverboard.WithRequestTimeout(5*time.Second),
	)
	if err != nil {
		slog.Error("failed to create status provider", "error", err)
		os.Exit(1)
	}

	b, err := serverboard.New(
		serverboard.WithTitle("Serverboard Demo"),
		serverboard.WithManifestURL("http://localhost:9999/servers.json"),
		serverboard.WithStatusProvider(provider),
		serverboard.WithPollingInterval(5*time.Second),
		serverboard.WithMaxConcurrency(3),
		serverboard.WithPort(8080),
		serverboard.WithCycleCallback(func(r serverboard.CycleResult) {
			if !r.OK() {
				slog.Warn("cycle failed", "cycle_id", r.ID, "error", r.Err)
			}
		}),
	)
	if err != nil {
		slog.Error("failed to create serverboard", "error", err)
		os.Exit(1)
	}

	fmt.Println()
	fmt.Println("  ╔═══════════════════════════════════════════════════════╗")
	fmt.Println("  ║                                                       ║")
	fmt.Println("  ║   Serverboard Demo                                    ║")
	fmt.Println("  ║                                                       ║")
	fmt.Println("  ║   Open http://localhost:8080 in your browser          ║")
	fmt.Println("  ║                                                       ║")
	fmt.Println("  ║   Servers:                                            ║")
	fmt.Println("  ║   • 3 enabled mock servers, 1 disabled                ║")
	fmt.Println("  ║   • each flips online/offline every 20-60s            ║")
	fmt.Println("  ║                                                       ║")
	fmt.Println("  ║   Press Ctrl+C to stop                                ║")
	fmt.Println("  ║                                                       ║")
	fmt.Println("  ╚═══════════════════════════════════════════════════════╝")
	fmt.Println()

	// set up context with signal handling for graceful shutdown
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	if err := b.Start(ctx); err != nil {
		slog.Error("serverboard error", "error", err)
		os.Exit(1)
	}
}
