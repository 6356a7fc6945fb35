package main

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"os/signal"
	"syscall"

	"github.com/jpalmerr/serverboard"
	"github.com/jpalmerr/serverboard/config"
	"github.com/mark3labs/mcp-go/mcp"
	"github.com/mark3labs/mcp-go/server"
	"github.com/spf13/cobra"
)

// mcpCmd serves the published snapshot as MCP tools over stdio.
var mcpCmd = &cobra.Command{
	Use:   "mcp",
	Short: "Serve server status as MCP tools over stdio",
	Long: `Start an MCP (Model Context Protocol) server on stdin/stdout.

The board refreshes on the configured poll interval without starting the
HTTP server. Agents can call:
  list_servers   - the latest published snapshot
  server_status  - one server from the latest snapshot, by id

Logs go to stderr; stdout carries the protocol.

Example:
  serverboard mcp -c config.yaml`,
	RunE: runMCP,
}

func init() {
	rootCmd.AddCommand(mcpCmd)

	addConfigFlag(mcpCmd)
}

// snapshotSource is satisfied by *serverboard.Board.
type snapshotSource interface {
	Published() serverboard.Snapshot
}

func runMCP(cmd *cobra.Command, args []string) error {
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

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	refresh := func(ctx context.Context) error {
		return b.ScheduleRecurring(ctx, b.PollingInterval())
	}
	serve := func() error {
		return server.ServeStdio(newMCPServer(b))
	}
	if err := serveWhileRefreshing(ctx, logger, refresh, serve); err != nil {
		return fmt.Errorf("mcp server error: %w", err)
	}
	return nil
}

// serveWhileRefreshing runs refresh in the background for as long as serve
// runs. Once serve returns, refresh is cancelled and awaited so no cycle is
// left running.
func serveWhileRefreshing(ctx context.Context, logger *slog.Logger, refresh func(context.Context) error, serve func() error) error {
	ctx, cancel := context.WithCancel(ctx)
	done := make(chan struct{})
	go func() {
		defer close(done)
		if err := refresh(ctx); err != nil {
			logger.Error("refresh scheduler stopped", "error", err)
		}
	}()

	err := serve()
	cancel()
	<-done
	return err
}

// newMCPServer registers the status tools against src.
func newMCPServer(src snapshotSource) *server.MCPServer {
	s := server.NewMCPServer(
		"serverboard",
		version,
		server.WithToolCapabilities(true),
	)

	listTool := mcp.NewTool("list_servers",
		mcp.WithDescription("List every enabled Minecraft server from the latest refresh cycle, in manifest order, with online state, player counts, version and modpack version."),
	)
	s.AddTool(listTool, handleListServers(src))

	statusTool := mcp.NewTool("server_status",
		mcp.WithDescription("Get the latest status of one Minecraft server by its manifest id."),
		mcp.WithString("id",
			mcp.Required(),
			mcp.Description("Server id from the manifest, e.g. \"survival\""),
		),
	)
	s.AddTool(statusTool, handleServerStatus(src))

	return s
}

func handleListServers(src snapshotSource) server.ToolHandlerFunc {
	return func(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
		snap := src.Published()
		if snap.CycleID == "" {
			return mcp.NewToolResultError("No refresh cycle has completed yet"), nil
		}
		return jsonResult(snap)
	}
}

func handleServerStatus(src snapshotSource) server.ToolHandlerFunc {
	return func(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
		id, err := req.RequireString("id")
		if err != nil {
			return mcp.NewToolResultError(err.Error()), nil
		}

		snap := src.Published()
		for _, s := range snap.Summaries {
			if s.ID == id {
				return jsonResult(s)
			}
		}
		return mcp.NewToolResultError(fmt.Sprintf("Server %q is not in the latest snapshot", id)), nil
	}
}

func jsonResult(v any) (*mcp.CallToolResult, error) {
	data, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return mcp.NewToolResultError(fmt.Sprintf("JSON encoding failed: %v", err)), nil
	}
	return mcp.NewToolResultText(string(data)), nil
}
