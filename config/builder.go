package config

import (
	"fmt"
	"io"

	"github.com/jpalmerr/serverboard"
)

// Build converts a Config into Serverboard options.
//
// The returned closer releases resources held by the manifest source (the
// Docker client for docker discovery). It is never nil and must be closed
// once the board has stopped.
func Build(cfg *Config) ([]serverboard.Option, io.Closer, error) {
	manifestOpt, closer, err := BuildManifest(cfg.Manifest)
	if err != nil {
		return nil, nil, fmt.Errorf("manifest: %w", err)
	}

	provider, err := BuildProvider(cfg.StatusAPI)
	if err != nil {
		_ = closer.Close()
		return nil, nil, fmt.Errorf("status_api: %w", err)
	}

	opts := []serverboard.Option{
		manifestOpt,
		serverboard.WithStatusProvider(provider),
		serverboard.WithPort(cfg.Port),
		serverboard.WithPollingInterval(cfg.PollInterval.Duration()),
		serverboard.WithMaxConcurrency(cfg.MaxConcurrency),
		serverboard.WithOverlapGuard(cfg.OverlapGuard),
	}
	if cfg.Title != "" {
		opts = append(opts, serverboard.WithTitle(cfg.Title))
	}
	if cfg.StaticDir != "" {
		opts = append(opts, serverboard.WithStaticDir(cfg.StaticDir))
	}
	if cfg.History.Path != "" {
		opts = append(opts, serverboard.WithHistory(cfg.History.Path, cfg.History.Retention.Duration()))
	}

	return opts, closer, nil
}

// BuildManifest converts a ManifestConfig into the matching manifest option.
func BuildManifest(mc ManifestConfig) (serverboard.Option, io.Closer, error) {
	var manifestOpts []serverboard.ManifestOption
	if mc.DefaultHost != "" {
		manifestOpts = append(manifestOpts, serverboard.WithDefaultHost(mc.DefaultHost))
	}
	if mc.Timeout != 0 {
		manifestOpts = append(manifestOpts, serverboard.WithManifestTimeout(mc.Timeout.Duration()))
	}

	switch {
	case mc.URL != "":
		return serverboard.WithManifestURL(mc.URL, manifestOpts...), nopCloser{}, nil
	case mc.File != "":
		return serverboard.WithManifestFile(mc.File, manifestOpts...), nopCloser{}, nil
	case mc.Docker != nil:
		src, err := serverboard.NewDockerManifest(mc.Docker.QueryHost, mc.Docker.Image)
		if err != nil {
			return nil, nil, fmt.Errorf("docker: %w", err)
		}
		return serverboard.WithManifest(src), src, nil
	default:
		return nil, nil, fmt.Errorf("no manifest source configured")
	}
}

// BuildProvider converts a StatusAPIConfig into a status provider.
func BuildProvider(sc StatusAPIConfig) (serverboard.StatusProvider, error) {
	var opts []serverboard.ProviderOption
	if sc.BaseURL != "" {
		opts = append(opts, serverboard.WithBaseURL(sc.BaseURL))
	}
	if sc.Timeout != 0 {
		opts = append(opts, serverboard.WithRequestTimeout(sc.Timeout.Duration()))
	}

	switch sc.Provider {
	case "", ProviderMCSrvStat:
		return serverboard.NewMCSrvStatProvider(opts...)
	case ProviderMCAPI:
		return serverboard.NewMCAPIProvider(opts...)
	case ProviderPing:
		return serverboard.NewPingProvider(opts...)
	default:
		return nil, fmt.Errorf("unknown provider %q", sc.Provider)
	}
}

type nopCloser struct{}

func (nopCloser) Close() error { return nil }
