package server

import (
	"context"
	"io"
	"io/fs"
	"log/slog"
	"net"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/jpalmerr/serverboard/internal/store"
)

// testLogger returns a logger that discards all output for clean test output.
func testLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

// publishedStore returns a MemoryStore holding one snapshot with the given ids.
func publishedStore(cycle string, ids ...string) *store.MemoryStore {
	ms := store.NewMemoryStore()
	if cycle == "" {
		return ms
	}
	ms.Publish(snapshot(cycle, ids...))
	return ms
}

func snapshot(cycle string, ids ...string) store.Snapshot {
	servers := make([]store.ServerSummary, len(ids))
	for i, id := range ids {
		servers[i] = store.ServerSummary{ID: id, Name: id, Online: true, StatusLabel: "Online"}
	}
	return store.Snapshot{CycleID: cycle, PublishedAt: time.Now(), Servers: servers}
}

// --- Server Start Tests ---

func TestStart_AvailablePort_ReturnsNil(t *testing.T) {
	// port 0 = OS assigns available port. Valid for internal Server package,
	// though the public Board API validates port > 0.
	srv := NewServer(store.NewMemoryStore(), Config{}, testLogger())

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	if err := srv.Start(ctx); err != nil {
		t.Errorf("Start() on available port returned error: %v", err)
	}
}

func TestStart_PortInUse_ReturnsError(t *testing.T) {
	// occupy a port
	ln, err := net.Listen("tcp", ":0")
	if err != nil {
		t.Fatalf("failed to create listener: %v", err)
	}
	defer func() { _ = ln.Close() }()

	port := ln.Addr().(*net.TCPAddr).Port

	srv := NewServer(store.NewMemoryStore(), Config{Port: port}, testLogger())

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	err = srv.Start(ctx)
	if err == nil {
		t.Fatal("Start() on occupied port should return error")
	}
	if !strings.Contains(err.Error(), "failed to bind") {
		t.Errorf("expected bind error, got: %v", err)
	}
}

func TestStart_InvalidPort_ReturnsError(t *testing.T) {
	srv := NewServer(store.NewMemoryStore(), Config{Port: -1}, testLogger())

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	if err := srv.Start(ctx); err == nil {
		t.Fatal("Start() with invalid port should return error")
	}
}

// --- Dashboard Title Tests ---

// mockFS implements fs.ReadFileFS for testing dashboard rendering.
type mockFS struct {
	content string
}

func (m *mockFS) Open(name string) (fs.File, error) {
	return nil, fs.ErrNotExist
}

func (m *mockFS) ReadFile(name string) ([]byte, error) {
	if name == "assets/index.html" {
		return []byte(m.content), nil
	}
	return nil, fs.ErrNotExist
}

func TestHandleDashboard_CustomTitle(t *testing.T) {
	mockAssets := &mockFS{content: "<title>{{.Title}}</title><h1>{{.Title}}</h1>"}
	srv := NewServer(store.NewMemoryStore(), Config{Assets: mockAssets, Title: "ForgeServ"}, testLogger())

	req := httptest.NewRequest(http.MethodGet, "/", nil)
	rec := httptest.NewRecorder()

	srv.handleDashboard(rec, req)

	body := rec.Body.String()
	if !strings.Contains(body, "<title>ForgeServ</title>") {
		t.Errorf("expected title tag with custom title, got: %s", body)
	}
	if !strings.Contains(body, "<h1>ForgeServ</h1>") {
		t.Errorf("expected h1 with custom title, got: %s", body)
	}
}

func TestHandleDashboard_DefaultTitle(t *testing.T) {
	mockAssets := &mockFS{content: "<title>{{.Title}}</title>"}
	srv := NewServer(store.NewMemoryStore(), Config{Assets: mockAssets}, testLogger())

	req := httptest.NewRequest(http.MethodGet, "/", nil)
	rec := httptest.NewRecorder()

	srv.handleDashboard(rec, req)

	if body := rec.Body.String(); !strings.Contains(body, "<title>Serverboard</title>") {
		t.Errorf("expected default title Serverboard, got: %s", body)
	}
}

func TestHandleDashboard_AssetsMissing(t *testing.T) {
	srv := NewServer(store.NewMemoryStore(), Config{Title: "Custom Title"}, testLogger()) // nil assets

	req := httptest.NewRequest(http.MethodGet, "/", nil)
	rec := httptest.NewRecorder()

	srv.handleDashboard(rec, req)

	if rec.Code != http.StatusInternalServerError {
		t.Errorf("expected status %d, got %d", http.StatusInternalServerError, rec.Code)
	}
}

func TestHandleDashboard_NonRootPath(t *testing.T) {
	mockAssets := &mockFS{content: "<title>{{.Title}}</title>"}
	srv := NewServer(store.NewMemoryStore(), Config{Assets: mockAssets}, testLogger())

	req := httptest.NewRequest(http.MethodGet, "/other", nil)
	rec := httptest.NewRecorder()

	srv.handleDashboard(rec, req)

	if rec.Code != http.StatusNotFound {
		t.Errorf("expected status %d for non-root path, got %d", http.StatusNotFound, rec.Code)
	}
}

func TestHandleDashboard_TitleWithHTMLChars(t *testing.T) {
	mockAssets := &mockFS{content: "<title>{{.Title}}</title>"}
	srv := NewServer(store.NewMemoryStore(), Config{
		Assets: mockAssets,
		Title:  "<script>alert('xss')</script>",
	}, testLogger())

	req := httptest.NewRequest(http.MethodGet, "/", nil)
	rec := httptest.NewRecorder()

	srv.handleDashboard(rec, req)

	body := rec.Body.String()

	// should NOT contain unescaped script tag
	if strings.Contains(body, "<script>") {
		t.Error("title should be HTML-escaped to prevent XSS")
	}
	if !strings.Contains(body, "&lt;script&gt;") {
		t.Errorf("expected escaped HTML, got: %s", body)
	}
}

// --- Static Routes ---

func TestHandler_ManifestFile(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "servers.json")
	manifest := `{"servers":[{"id":"survival","name":"Survival","queryTarget":"localhost:25565"}]}`
	if err := os.WriteFile(path, []byte(manifest), 0o644); err != nil {
		t.Fatalf("WriteFile() error = %v", err)
	}

	srv := NewServer(store.NewMemoryStore(), Config{ManifestFile: path}, testLogger())

	req := httptest.NewRequest(http.MethodGet, "/servers.json", nil)
	rec := httptest.NewRecorder()
	srv.Handler().ServeHTTP(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200", rec.Code)
	}
	if rec.Body.String() != manifest {
		t.Errorf("body = %q, want manifest verbatim", rec.Body.String())
	}
}

func TestHandler_ManifestFileDisabled(t *testing.T) {
	srv := NewServer(store.NewMemoryStore(), Config{}, testLogger())

	req := httptest.NewRequest(http.MethodGet, "/servers.json", nil)
	rec := httptest.NewRecorder()
	srv.Handler().ServeHTTP(rec, req)

	if rec.Code != http.StatusNotFound {
		t.Errorf("status = %d, want 404 without a manifest file", rec.Code)
	}
}

func TestHandler_Resources(t *testing.T) {
	dir := t.TempDir()
	if err := os.MkdirAll(filepath.Join(dir, "servers", "survival"), 0o755); err != nil {
		t.Fatalf("MkdirAll() error = %v", err)
	}
	if err := os.WriteFile(filepath.Join(dir, "servers", "survival", "cover.png"), []byte("png"), 0o644); err != nil {
		t.Fatalf("WriteFile() error = %v", err)
	}

	srv := NewServer(store.NewMemoryStore(), Config{StaticDir: dir}, testLogger())
	h := srv.Handler()

	req := httptest.NewRequest(http.MethodGet, "/Resources/servers/survival/cover.png", nil)
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)

	if rec.Code != http.StatusOK || rec.Body.String() != "png" {
		t.Errorf("cover: status = %d body = %q, want 200 png", rec.Code, rec.Body.String())
	}

	req = httptest.NewRequest(http.MethodGet, "/Resources/servers/missing/cover.png", nil)
	rec = httptest.NewRecorder()
	h.ServeHTTP(rec, req)

	if rec.Code != http.StatusNotFound {
		t.Errorf("missing cover: status = %d, want 404", rec.Code)
	}
}
