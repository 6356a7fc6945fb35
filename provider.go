package serverboard

import (
	"errors"
	"fmt"
	"net/url"
	"strings"
	"sync"
	"time"

	"github.com/jpalmerr/serverboard/internal/fetch"
)

// providerConfig holds mutable state during provider construction.
type providerConfig struct {
	baseURL string
	timeout time.Duration
}

// ProviderOption configures a [StatusProvider] during construction.
//
// Options return an error if validation fails.
type ProviderOption func(*providerConfig) error

// WithBaseURL overrides the status API base URL. Useful for self-hosted
// mirrors and for tests. Ignored by [PingProvider].
//
// Returns an error if the URL is not an absolute http(s) URL.
func WithBaseURL(rawURL string) ProviderOption {
	return func(cfg *providerConfig) error {
		parsed, err := url.Parse(rawURL)
		if err != nil {
			return fmt.Errorf("invalid base URL: %w", err)
		}
		if parsed.Scheme != "http" && parsed.Scheme != "https" {
			return fmt.Errorf("base URL must be http or https, got %q", rawURL)
		}
		cfg.baseURL = strings.TrimRight(rawURL, "/")
		return nil
	}
}

// WithRequestTimeout bounds each status lookup. Zero (the default) applies
// no timeout: a hung lookup stalls its cycle until the parent context ends.
//
// Returns an error if the duration is negative.
func WithRequestTimeout(d time.Duration) ProviderOption {
	return func(cfg *providerConfig) error {
		if d < 0 {
			return errors.New("request timeout cannot be negative")
		}
		cfg.timeout = d
		return nil
	}
}

func applyProviderOptions(defaultBase string, opts []ProviderOption) (*providerConfig, error) {
	cfg := &providerConfig{baseURL: defaultBase}
	for _, opt := range opts {
		if err := opt(cfg); err != nil {
			return nil, err
		}
	}
	return cfg, nil
}

// sharedClient is the connection pool used by every HTTP provider and
// [HTTPManifest] in the process.
var sharedClient = sync.OnceValue(fetch.NewClient)

// httpProvider is the shared plumbing of the HTTP status API providers.
type httpProvider struct {
	cfg    *providerConfig
	client *fetch.Client
}

func newHTTPProvider(defaultBase string, opts []ProviderOption) (httpProvider, error) {
	cfg, err := applyProviderOptions(defaultBase, opts)
	if err != nil {
		return httpProvider{}, err
	}
	return httpProvider{cfg: cfg, client: sharedClient()}, nil
}

// Close releases idle connections in the shared pool. The provider stays
// usable afterwards.
func (p httpProvider) Close() {
	p.client.Close()
}
