package serverboard

import (
	"errors"
	"log/slog"
	"strings"
	"time"
)

// boardConfig holds mutable state during Board construction.
type boardConfig struct {
	title            string
	manifest         ManifestSource
	provider         StatusProvider
	pollingInterval  time.Duration
	port             int
	maxConcurrency   int
	overlapGuard     bool
	staticDir        string
	manifestFile     string
	historyPath      string
	historyRetention time.Duration
	logger           *slog.Logger
	cycleCallbacks   []func(CycleResult)
}

// Option is a function that configures a [Board] instance during construction.
//
// Option implements the functional options pattern, allowing optional
// configuration to be passed to [New] in a type-safe, extensible way.
// Options return an error if validation fails.
//
// Built-in options: [WithManifest], [WithManifestURL], [WithManifestFile],
// [WithStatusProvider], [WithPollingInterval], [WithPort],
// [WithMaxConcurrency], [WithOverlapGuard], [WithLogger],
// [WithCycleCallback], [WithTitle], [WithStaticDir], [WithHistory].
type Option func(*boardConfig) error

// WithManifest sets the [ManifestSource] the board reads every cycle.
//
// Exactly one manifest is used; a later manifest option replaces an earlier
// one. Returns an error if src is nil.
func WithManifest(src ManifestSource) Option {
	return func(cfg *boardConfig) error {
		if src == nil {
			return errors.New("manifest source cannot be nil")
		}
		cfg.manifest = src
		cfg.manifestFile = ""
		return nil
	}
}

// WithManifestURL reads the manifest from a remote servers.json.
//
// Example:
//
//	b, err := serverboard.New(
//	    serverboard.WithManifestURL("https://forgeserv.net/servers.json",
//	        serverboard.WithDefaultHost("forgeserv.net")),
//	)
func WithManifestURL(rawURL string, opts ...ManifestOption) Option {
	return func(cfg *boardConfig) error {
		src, err := NewHTTPManifest(rawURL, opts...)
		if err != nil {
			return err
		}
		cfg.manifest = src
		cfg.manifestFile = ""
		return nil
	}
}

// WithManifestFile reads the manifest from a local JSON or YAML file.
//
// The file is also served verbatim at /servers.json so the dashboard and
// other consumers can read the same manifest.
func WithManifestFile(path string, opts ...ManifestOption) Option {
	return func(cfg *boardConfig) error {
		src, err := NewFileManifest(path, opts...)
		if err != nil {
			return err
		}
		cfg.manifest = src
		cfg.manifestFile = src.Path()
		return nil
	}
}

// WithStatusProvider sets the [StatusProvider] used for live status.
//
// Defaults to [MCSrvStatProvider]. Returns an error if p is nil.
//
// Example:
//
//	ping, _ := serverboard.NewPingProvider(serverboard.WithRequestTimeout(5 * time.Second))
//	b, err := serverboard.New(
//	    serverboard.WithManifestFile("./servers.json"),
//	    serverboard.WithStatusProvider(ping),
//	)
func WithStatusProvider(p StatusProvider) Option {
	return func(cfg *boardConfig) error {
		if p == nil {
			return errors.New("status provider cannot be nil")
		}
		cfg.provider = p
		return nil
	}
}

// WithPollingInterval sets how often a refresh cycle runs.
//
// Defaults to 30 seconds if not specified.
//
// Returns an error if the duration is zero or negative.
func WithPollingInterval(d time.Duration) Option {
	return func(cfg *boardConfig) error {
		if d <= 0 {
			return errors.New("polling interval must be positive")
		}
		cfg.pollingInterval = d
		return nil
	}
}

// WithPort sets the HTTP port for the dashboard server.
//
// The dashboard UI and API will be available at http://localhost:<port>.
// Defaults to 8080 if not specified.
//
// Returns an error if the port is outside the valid range (1-65535).
func WithPort(port int) Option {
	return func(cfg *boardConfig) error {
		if port < 1 || port > 65535 {
			return errors.New("port must be between 1 and 65535")
		}
		cfg.port = port
		return nil
	}
}

// WithMaxConcurrency sets how many servers are queried at once within a
// cycle.
//
// Defaults to 1, which queries servers one after another. Published order
// always follows the manifest regardless of this setting.
//
// Returns an error if the value is zero or negative.
func WithMaxConcurrency(n int) Option {
	return func(cfg *boardConfig) error {
		if n <= 0 {
			return errors.New("max concurrency must be positive")
		}
		cfg.maxConcurrency = n
		return nil
	}
}

// WithOverlapGuard skips a scheduled cycle while the previous one is still
// running.
//
// Off by default: every tick starts a cycle and a slow cycle may overlap the
// next, with the last to finish winning.
func WithOverlapGuard(enabled bool) Option {
	return func(cfg *boardConfig) error {
		cfg.overlapGuard = enabled
		return nil
	}
}

// WithLogger sets a custom [slog.Logger] for the Board instance.
//
// If not specified, [slog.Default] is used.
//
// Returns an error if the logger is nil.
func WithLogger(logger *slog.Logger) Option {
	return func(cfg *boardConfig) error {
		if logger == nil {
			return errors.New("logger cannot be nil")
		}
		cfg.logger = logger
		return nil
	}
}

// WithCycleCallback registers a function to be called after every refresh
// cycle, successful or not.
//
// Multiple callbacks may be registered; they execute in registration order
// on the goroutine that ran the cycle. Callbacks must be non-blocking.
// Panics within callbacks are recovered and logged.
//
// Example:
//
//	b, err := serverboard.New(
//	    serverboard.WithManifestFile("./servers.json"),
//	    serverboard.WithCycleCallback(func(r serverboard.CycleResult) {
//	        if !r.OK() {
//	            log.Printf("cycle %s failed: %v", r.ID, r.Err)
//	        }
//	    }),
//	)
//
// Nil callbacks are silently ignored.
func WithCycleCallback(cb func(CycleResult)) Option {
	return func(cfg *boardConfig) error {
		if cb == nil {
			return nil // no-op for nil callback (safe to call)
		}
		cfg.cycleCallbacks = append(cfg.cycleCallbacks, cb)
		return nil
	}
}

// WithTitle sets the dashboard title displayed in the browser tab and header.
//
// If not specified, defaults to "Serverboard".
func WithTitle(title string) Option {
	return func(cfg *boardConfig) error {
		cfg.title = title
		return nil
	}
}

// WithStaticDir serves cover images and icons from dir under /Resources/.
//
// Server covers are looked up at <dir>/servers/<id>/cover.png and the
// fallback icon at <dir>/default-icon.png.
func WithStaticDir(dir string) Option {
	return func(cfg *boardConfig) error {
		if strings.TrimSpace(dir) == "" {
			return errors.New("static dir cannot be empty")
		}
		cfg.staticDir = dir
		return nil
	}
}

// WithHistory records every cycle in a SQLite database at path and serves
// it at /api/history.
//
// Rows older than retention are deleted periodically; zero keeps 30 days.
func WithHistory(path string, retention time.Duration) Option {
	return func(cfg *boardConfig) error {
		if strings.TrimSpace(path) == "" {
			return errors.New("history path cannot be empty")
		}
		if retention < 0 {
			return errors.New("history retention cannot be negative")
		}
		cfg.historyPath = path
		cfg.historyRetention = retention
		return nil
	}
}
