package serverboard

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/url"
	"os"
	"path/filepath"
	"strings"
	"time"

	"gopkg.in/yaml.v3"

	"github.com/jpalmerr/serverboard/internal/fetch"
)

// ManifestSource supplies the list of configured servers.
//
// The board calls Descriptors once per refresh cycle; sources must not
// cache across calls unless the underlying data is static.
//
// Built-in sources: [HTTPManifest], [FileManifest], [StaticManifest] and
// [DockerManifest].
type ManifestSource interface {
	Descriptors(ctx context.Context) ([]ServerDescriptor, error)
}

// manifestConfig holds options shared by the manifest sources.
type manifestConfig struct {
	defaultHost string
	timeout     time.Duration
}

// ManifestOption configures a manifest source during construction.
type ManifestOption func(*manifestConfig) error

// WithDefaultHost sets the host used for legacy manifest entries that only
// carry a "port" field.
//
// Example:
//
//	src, err := serverboard.NewHTTPManifest("https://example.com/servers.json",
//	    serverboard.WithDefaultHost("play.example.com"),
//	)
func WithDefaultHost(host string) ManifestOption {
	return func(cfg *manifestConfig) error {
		if strings.TrimSpace(host) == "" {
			return errors.New("default host cannot be empty")
		}
		cfg.defaultHost = host
		return nil
	}
}

// WithManifestTimeout bounds each manifest request. Zero (the default)
// applies no timeout.
func WithManifestTimeout(d time.Duration) ManifestOption {
	return func(cfg *manifestConfig) error {
		if d < 0 {
			return errors.New("manifest timeout cannot be negative")
		}
		cfg.timeout = d
		return nil
	}
}

func applyManifestOptions(opts []ManifestOption) (*manifestConfig, error) {
	cfg := &manifestConfig{}
	for _, opt := range opts {
		if err := opt(cfg); err != nil {
			return nil, err
		}
	}
	return cfg, nil
}

// HTTPManifest fetches {"servers": [...]} from a URL every cycle.
type HTTPManifest struct {
	url    string
	cfg    *manifestConfig
	client *fetch.Client
}

// NewHTTPManifest creates an [HTTPManifest] for rawURL, which must be an
// absolute http(s) URL.
func NewHTTPManifest(rawURL string, opts ...ManifestOption) (*HTTPManifest, error) {
	parsed, err := url.Parse(rawURL)
	if err != nil {
		return nil, fmt.Errorf("invalid manifest URL: %w", err)
	}
	if parsed.Scheme != "http" && parsed.Scheme != "https" {
		return nil, fmt.Errorf("manifest URL must be http or https, got %q", rawURL)
	}

	cfg, err := applyManifestOptions(opts)
	if err != nil {
		return nil, err
	}

	return &HTTPManifest{url: rawURL, cfg: cfg, client: sharedClient()}, nil
}

// URL returns the manifest URL.
func (m *HTTPManifest) URL() string {
	return m.url
}

// Descriptors implements [ManifestSource].
func (m *HTTPManifest) Descriptors(ctx context.Context) ([]ServerDescriptor, error) {
	var doc manifestDocument
	if err := m.client.GetJSON(ctx, m.url, m.cfg.timeout, &doc); err != nil {
		return nil, err
	}
	return resolveDescriptors(doc, m.cfg.defaultHost)
}

// FileManifest reads a local manifest file every cycle.
//
// Files ending in .json are decoded as JSON; anything else as YAML.
type FileManifest struct {
	path string
	cfg  *manifestConfig
}

// NewFileManifest creates a [FileManifest]. The file must exist at
// construction time.
func NewFileManifest(path string, opts ...ManifestOption) (*FileManifest, error) {
	if _, err := os.Stat(path); err != nil {
		return nil, fmt.Errorf("manifest file: %w", err)
	}

	cfg, err := applyManifestOptions(opts)
	if err != nil {
		return nil, err
	}

	return &FileManifest{path: path, cfg: cfg}, nil
}

// Path returns the manifest file path.
func (m *FileManifest) Path() string {
	return m.path
}

// Descriptors implements [ManifestSource].
func (m *FileManifest) Descriptors(ctx context.Context) ([]ServerDescriptor, error) {
	data, err := os.ReadFile(m.path)
	if err != nil {
		return nil, fmt.Errorf("failed to read manifest: %w", err)
	}

	doc, err := decodeManifest(data, strings.EqualFold(filepath.Ext(m.path), ".json"))
	if err != nil {
		return nil, err
	}
	return resolveDescriptors(doc, m.cfg.defaultHost)
}

// decodeManifest parses manifest bytes as JSON or YAML.
func decodeManifest(data []byte, isJSON bool) (manifestDocument, error) {
	var doc manifestDocument
	if isJSON {
		if err := json.Unmarshal(data, &doc); err != nil {
			return manifestDocument{}, fmt.Errorf("failed to parse manifest JSON: %w", err)
		}
		return doc, nil
	}
	if err := yaml.Unmarshal(data, &doc); err != nil {
		return manifestDocument{}, fmt.Errorf("failed to parse manifest YAML: %w", err)
	}
	return doc, nil
}

// StaticManifest is a fixed descriptor list.
type StaticManifest []ServerDescriptor

// Descriptors implements [ManifestSource]. It returns a copy.
func (m StaticManifest) Descriptors(ctx context.Context) ([]ServerDescriptor, error) {
	cp := make([]ServerDescriptor, len(m))
	copy(cp, m)
	return cp, nil
}
