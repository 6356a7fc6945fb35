// Package serverboard provides an embeddable status board for a fleet of
// Minecraft servers.
//
// A [Board] periodically reads a manifest of servers, looks up the live
// status of every enabled server through a [StatusProvider], builds a
// display-ready [Summary] per server and publishes the whole set at once.
// The published set is served as an embedded dashboard, a JSON API,
// Server-Sent Events and a WebSocket stream.
//
// # Quick Start
//
// Point the board at a manifest and start it with graceful shutdown:
//
//	b, _ := serverboard.New(serverboard.WithManifestURL("https://forgeserv.net/servers.json"))
//
//	// Set up graceful shutdown on SIGINT/SIGTERM
//	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
//	defer stop()
//
//	b.Start(ctx) // blocks until context is cancelled
//
// # Configuration
//
// Board uses the functional options pattern for configuration:
//
//	b, err := serverboard.New(
//	    serverboard.WithManifestFile("./servers.json", serverboard.WithDefaultHost("forgeserv.net")),
//	    serverboard.WithPollingInterval(30 * time.Second),
//	    serverboard.WithPort(9090),
//	    serverboard.WithMaxConcurrency(4),
//	    serverboard.WithHistory("./serverboard.db", 0),
//	)
//
// # Manifests
//
// The manifest is the document {"servers": [...]} listing every server:
//
//	{"servers": [
//	  {"id": "survival", "name": "Survival", "enabled": true,
//	   "hasPackVer": false, "dynmapUrl": "https://map.example.com",
//	   "queryTarget": "play.example.com:25565"}
//	]}
//
// A missing "enabled" key means enabled. Legacy entries that carry only a
// "port" resolve to <default host>:<port>. Built-in sources are
// [HTTPManifest], [FileManifest], [DockerManifest] and [StaticManifest].
//
// # Status Providers
//
//   - [MCSrvStatProvider]: the api.mcsrvstat.us v2 API (default)
//   - [MCAPIProvider]: the mcapi.us status API
//   - [PingProvider]: a direct Server List Ping to the server itself
//
// # Cycles
//
// Each refresh cycle either publishes a complete new set or publishes
// nothing. A manifest or status failure for any server aborts the cycle and
// leaves the previous set in place; the error wraps [ErrManifest] or
// [ErrStatus]. There are no retries: the next cycle is the recovery.
//
// # Architecture
//
// Board consists of several internal packages (under internal/):
//
//   - internal/poller: Cycle scheduler and ordered worker pool
//   - internal/fetch: Shared HTTP client for manifests and status APIs
//   - internal/slp: Minecraft Server List Ping client
//   - internal/dockerscan: Docker container discovery
//   - internal/store: In-memory snapshot store with pub/sub
//   - internal/history: SQLite cycle history
//   - internal/server: HTTP server with REST API, SSE and WebSocket
//   - internal/logging: slog handler construction for the CLI
//   - dashboard: Embedded web UI assets
//
// The internal packages are not part of the public API and may change
// without notice.
package serverboard
