package server

import (
	"context"
	"fmt"
	"html"
	"io/fs"
	"log/slog"
	"net"
	"net/http"
	"strings"
	"time"

	"github.com/jpalmerr/serverboard/internal/store"
)

const (
	// sseWriteTimeout is the maximum time allowed for a single SSE write operation.
	// This prevents goroutine leaks when clients are slow or disconnected.
	// Must be <= shutdown timeout to ensure clean shutdown.
	sseWriteTimeout = 5 * time.Second

	// shutdownTimeout bounds graceful shutdown of in-flight requests.
	shutdownTimeout = 5 * time.Second

	// defaultTitle is used when no custom title is configured.
	defaultTitle = "Serverboard"

	// titlePlaceholder is the marker in HTML that gets replaced with the actual title.
	titlePlaceholder = "{{.Title}}"
)

// Config holds the optional parts of the HTTP surface.
type Config struct {
	// Port is the TCP port to listen on.
	Port int

	// Title is the dashboard title (defaults to "Serverboard" if empty).
	Title string

	// Assets is the embedded filesystem containing assets/index.html.
	// nil disables the dashboard route.
	Assets fs.FS

	// StaticDir is served under /Resources/ (cover images, icons).
	// Empty disables the route.
	StaticDir string

	// ManifestFile is served verbatim at /servers.json. Empty disables the route.
	ManifestFile string

	// History backs /api/history. nil disables the route (404).
	History HistoryReader
}

// Server handles HTTP requests for the serverboard dashboard and API.
//
// Routes:
//   - GET /: Serves the embedded dashboard HTML
//   - GET /api/servers: Returns the published snapshot as JSON
//   - GET /api/sse: Server-Sent Events stream of snapshots
//   - GET /api/ws: WebSocket stream of snapshots whose content changed
//   - GET /api/history: Recorded cycles or per-server samples
//   - GET /servers.json: The local manifest file
//   - GET /Resources/...: Static cover and icon images
//
// The server is designed for graceful shutdown via context cancellation.
type Server struct {
	store      store.Store
	cfg        Config
	httpServer *http.Server
	logger     *slog.Logger
}

// NewServer creates a new HTTP [Server] backed by st.
//
// The server is not started until [Server.Start] is called.
func NewServer(st store.Store, cfg Config, logger *slog.Logger) *Server {
	if logger == nil {
		logger = slog.Default()
	}
	return &Server{
		store:  st,
		cfg:    cfg,
		logger: logger,
	}
}

// Handler returns the route multiplexer. Exposed for tests and for
// embedding the board into an existing server.
func (s *Server) Handler() http.Handler {
	mux := http.NewServeMux()

	// API routes
	mux.HandleFunc("/api/servers", s.handleServers)
	mux.HandleFunc("/api/sse", s.handleSSE)
	mux.HandleFunc("/api/ws", s.handleWS)
	mux.HandleFunc("/api/history", s.handleHistory)

	if s.cfg.ManifestFile != "" {
		mux.HandleFunc("/servers.json", s.handleManifest)
	}

	if s.cfg.StaticDir != "" {
		mux.Handle("/Resources/", http.StripPrefix("/Resources/", http.FileServer(http.Dir(s.cfg.StaticDir))))
	}

	// serve dashboard assets
	if s.cfg.Assets != nil {
		mux.HandleFunc("/", s.handleDashboard)
	}

	return mux
}

// Start begins serving HTTP requests in a background goroutine.
//
// Start is non-blocking and returns immediately after confirming the server
// is listening. The server will continue running until the context is
// cancelled, at which point it initiates a graceful shutdown with a 5-second
// timeout.
//
// Returns an error if the server fails to bind to the configured port.
func (s *Server) Start(ctx context.Context) error {
	// create listener first to verify port availability synchronously
	addr := fmt.Sprintf(":%d", s.cfg.Port)
	ln, err := net.Listen("tcp", addr)
	if err != nil {
		return fmt.Errorf("failed to bind to port %d: %w", s.cfg.Port, err)
	}

	s.httpServer = &http.Server{
		Handler:           s.Handler(),
		ReadHeaderTimeout: 10 * time.Second,
		// BaseContext derives all request contexts from the server context.
		// When ctx is cancelled, all request contexts are also cancelled,
		// enabling graceful shutdown of long-running handlers like SSE.
		BaseContext: func(_ net.Listener) context.Context {
			return ctx
		},
	}

	go func() {
		if err := s.httpServer.Serve(ln); err != nil && err != http.ErrServerClosed {
			s.logger.Error("http server error", "error", err)
		}
	}()

	// shutdown on context cancellation
	go func() {
		<-ctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancel()
		if err := s.httpServer.Shutdown(shutdownCtx); err != nil {
			s.logger.Error("http server shutdown error", "error", err)
		}
	}()

	return nil
}

// handleDashboard serves the main dashboard page.
func (s *Server) handleDashboard(w http.ResponseWriter, r *http.Request) {
	if r.URL.Path != "/" {
		http.NotFound(w, r)
		return
	}

	if s.cfg.Assets == nil {
		http.Error(w, "Dashboard not found", http.StatusInternalServerError)
		return
	}

	// read index.html from embedded assets
	content, err := fs.ReadFile(s.cfg.Assets, "assets/index.html")
	if err != nil {
		http.Error(w, "Dashboard not found", http.StatusInternalServerError)
		return
	}

	// apply title substitution with HTML escaping to prevent XSS
	title := s.cfg.Title
	if title == "" {
		title = defaultTitle
	}
	safeTitle := html.EscapeString(title)
	rendered := strings.ReplaceAll(string(content), titlePlaceholder, safeTitle)

	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	if _, err = w.Write([]byte(rendered)); err != nil {
		s.logger.Error("failed to write dashboard response", "error", err)
	}
}

// handleManifest serves the configured manifest file.
func (s *Server) handleManifest(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet && r.Method != http.MethodHead {
		http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
		return
	}
	w.Header().Set("Cache-Control", "no-cache")
	http.ServeFile(w, r, s.cfg.ManifestFile)
}
