// Package server provides the HTTP server for the serverboard dashboard and API.
//
// This package is internal to serverboard and handles all HTTP concerns:
//
//   - Dashboard serving: Serves the embedded HTML dashboard at "/"
//   - REST API: JSON snapshot at "/api/servers", optionally sorted
//   - Server-Sent Events: Every published snapshot at "/api/sse"
//   - WebSocket: Snapshots that changed since the last push at "/api/ws"
//   - History: Recorded cycles and per-server samples at "/api/history"
//   - Static files: The local manifest at "/servers.json" and cover/icon
//     images under "/Resources/"
//
// The server supports graceful shutdown via context cancellation, with a
// 5-second timeout for in-flight requests.
//
// Users of the serverboard library should not need to interact with this
// package directly. The server is started automatically by
// [serverboard.Board.Start].
package server
