// Package dashboard provides the embedded web UI assets for Serverboard.
//
// This package uses Go's embed directive to include the dashboard HTML, CSS,
// and JavaScript at compile time. This enables single-binary deployment
// without external asset files.
//
// The embedded assets are served by the server package at the root path ("/").
// Users of the serverboard library should not need to interact with this
// package directly.
package dashboard

import "embed"

// Assets is an embedded filesystem containing the dashboard web UI.
//
// The filesystem structure is:
//
//	assets/
//	  index.html    - Main dashboard page with inline CSS and JavaScript
//
// The page renders server cards from the published snapshot and follows
// updates over /api/sse. Cover images and icons are loaded from /Resources/.
//
//go:embed assets/*
var Assets embed.FS
