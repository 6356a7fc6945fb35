// Package config provides YAML configuration parsing for Serverboard.
//
// This package enables running Serverboard as a standalone binary with a
// configuration file, as an alternative to the programmatic SDK approach.
//
// Example configuration:
//
//	title: ForgeServ
//	port: 8080
//	poll_interval: 30s
//
//	manifest:
//	  url: https://forgeserv.net/servers.json
//	  default_host: forgeserv.net
//
//	status_api:
//	  provider: mcsrvstat
//	  timeout: 10s
//
//	history:
//	  path: ./serverboard.db
//	  retention: 720h
package config

import (
	"errors"
	"fmt"
	"net/url"
	"os"
	"regexp"
	"strings"
	"time"

	"gopkg.in/yaml.v3"
)

const (
	// minPollInterval is the minimum allowed polling interval. Status APIs
	// rate limit aggressive clients.
	minPollInterval = 1 * time.Second

	defaultPort         = 8080
	defaultPollInterval = 30 * time.Second
)

// Status provider names accepted by status_api.provider.
const (
	ProviderMCSrvStat = "mcsrvstat"
	ProviderMCAPI     = "mcapi"
	ProviderPing      = "ping"
)

// Config is the root configuration structure for Serverboard.
//
// It maps directly to the YAML configuration file structure.
// Use [Load] or [Parse] to create a Config from YAML.
type Config struct {
	// Title is the dashboard title. Defaults to "Serverboard" if not set.
	Title string `yaml:"title"`

	// Port is the HTTP server port. Defaults to 8080.
	Port int `yaml:"port"`

	// PollInterval is the time between refresh cycles.
	// Accepts duration strings like "30s", "1m". Defaults to 30s.
	PollInterval Duration `yaml:"poll_interval"`

	// Manifest selects where the server list comes from.
	Manifest ManifestConfig `yaml:"manifest"`

	// StatusAPI selects how live status is looked up.
	StatusAPI StatusAPIConfig `yaml:"status_api"`

	// MaxConcurrency is how many servers are queried at once.
	// Defaults to 1 (one after another).
	MaxConcurrency int `yaml:"max_concurrency"`

	// OverlapGuard skips a cycle while the previous one is still running.
	OverlapGuard bool `yaml:"overlap_guard"`

	// StaticDir is served under /Resources/ for covers and icons.
	StaticDir string `yaml:"static_dir"`

	// History enables the SQLite cycle history when Path is set.
	History HistoryConfig `yaml:"history"`
}

// ManifestConfig defines the manifest source. Exactly one of URL, File or
// Docker must be set.
type ManifestConfig struct {
	// URL is a remote servers.json.
	// Supports environment variable substitution: ${VAR} or ${VAR:-default}
	URL string `yaml:"url"`

	// File is a local JSON or YAML manifest, also served at /servers.json.
	File string `yaml:"file"`

	// Docker discovers servers from local Minecraft containers.
	Docker *DockerConfig `yaml:"docker"`

	// DefaultHost resolves legacy entries that only carry a port.
	DefaultHost string `yaml:"default_host"`

	// Timeout bounds each manifest request. Zero means no timeout.
	Timeout Duration `yaml:"timeout"`
}

// DockerConfig configures container discovery.
type DockerConfig struct {
	// QueryHost is the host used to reach published ports.
	// Defaults to "localhost".
	QueryHost string `yaml:"query_host"`

	// Image overrides the image substring match
	// (default "itzg/minecraft-server").
	Image string `yaml:"image"`
}

// StatusAPIConfig selects the status provider.
type StatusAPIConfig struct {
	// Provider is "mcsrvstat" (default), "mcapi" or "ping".
	Provider string `yaml:"provider"`

	// BaseURL overrides the API root for HTTP providers.
	BaseURL string `yaml:"base_url"`

	// Timeout bounds each status lookup. Zero means no timeout.
	Timeout Duration `yaml:"timeout"`
}

// HistoryConfig configures the SQLite cycle history.
type HistoryConfig struct {
	// Path is the database file. Empty disables history.
	Path string `yaml:"path"`

	// Retention is how long rows are kept. Zero keeps 30 days.
	Retention Duration `yaml:"retention"`
}

// Duration wraps time.Duration for YAML unmarshalling.
type Duration time.Duration

// UnmarshalYAML implements yaml.Unmarshaler for Duration.
func (d *Duration) UnmarshalYAML(node *yaml.Node) error {
	var s string
	if err := node.Decode(&s); err != nil {
		return err
	}

	parsed, err := time.ParseDuration(s)
	if err != nil {
		return fmt.Errorf("invalid duration %q: %w", s, err)
	}

	*d = Duration(parsed)
	return nil
}

// Duration returns the underlying time.Duration value.
func (d Duration) Duration() time.Duration {
	return time.Duration(d)
}

// envVarPattern matches ${VAR} and ${VAR:-default} patterns.
// Group 1: variable name
// Group 2: the ":-default" part (if present, indicates a default was specified)
// Group 3: the default value (may be empty for ${VAR:-})
var envVarPattern = regexp.MustCompile(`\$\{([^}:]+)(:-([^}]*))?\}`)

// expandEnvVars replaces ${VAR} and ${VAR:-default} patterns with environment values.
func expandEnvVars(s string) (string, error) {
	var firstErr error

	result := envVarPattern.ReplaceAllStringFunc(s, func(match string) string {
		if firstErr != nil {
			return match
		}

		submatches := envVarPattern.FindStringSubmatch(match)
		varName := submatches[1]
		hasDefault := submatches[2] != ""

		value, exists := os.LookupEnv(varName)
		if !exists {
			if hasDefault {
				return submatches[3]
			}
			firstErr = fmt.Errorf("environment variable %q is not set", varName)
			return match
		}
		return value
	})

	if firstErr != nil {
		return "", firstErr
	}
	return result, nil
}

// Load reads and parses a YAML configuration file.
//
// Environment variables in the file are expanded before validation.
// Returns an error if the file cannot be read, parsed or validated.
func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read config file: %w", err)
	}
	return Parse(data)
}

// Parse parses YAML configuration data.
//
// Environment variables are expanded in manifest, status API, static dir and
// history values. Defaults are applied for Port (8080), PollInterval (30s),
// MaxConcurrency (1) and the status provider (mcsrvstat).
func Parse(data []byte) (*Config, error) {
	var cfg Config
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return nil, fmt.Errorf("failed to parse YAML: %w", err)
	}

	cfg.applyDefaults()

	if err := cfg.expand(); err != nil {
		return nil, err
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	return &cfg, nil
}

func (c *Config) applyDefaults() {
	if c.Port == 0 {
		c.Port = defaultPort
	}
	if c.PollInterval == 0 {
		c.PollInterval = Duration(defaultPollInterval)
	}
	if c.MaxConcurrency == 0 {
		c.MaxConcurrency = 1
	}
	if c.StatusAPI.Provider == "" {
		c.StatusAPI.Provider = ProviderMCSrvStat
	}
}

// expand substitutes environment variables in every string field that may
// carry a URL or path.
func (c *Config) expand() error {
	fields := []struct {
		name string
		ptr  *string
	}{
		{"manifest.url", &c.Manifest.URL},
		{"manifest.file", &c.Manifest.File},
		{"manifest.default_host", &c.Manifest.DefaultHost},
		{"status_api.base_url", &c.StatusAPI.BaseURL},
		{"static_dir", &c.StaticDir},
		{"history.path", &c.History.Path},
	}
	if c.Manifest.Docker != nil {
		fields = append(fields, struct {
			name string
			ptr  *string
		}{"manifest.docker.query_host", &c.Manifest.Docker.QueryHost})
	}

	for _, f := range fields {
		expanded, err := expandEnvVars(*f.ptr)
		if err != nil {
			return fmt.Errorf("%s: %w", f.name, err)
		}
		*f.ptr = expanded
	}
	return nil
}

// Validate checks the configuration. It is called by [Parse] and may be
// called again after overrides are applied.
func (c *Config) Validate() error {
	if c.Port < 1 || c.Port > 65535 {
		return fmt.Errorf("port must be between 1 and 65535, got %d", c.Port)
	}

	if c.PollInterval.Duration() < minPollInterval {
		return fmt.Errorf("poll_interval must be at least %s, got %s", minPollInterval, c.PollInterval.Duration())
	}

	if c.MaxConcurrency < 1 {
		return fmt.Errorf("max_concurrency must be positive, got %d", c.MaxConcurrency)
	}

	if err := c.Manifest.validate(); err != nil {
		return err
	}
	if err := c.StatusAPI.validate(); err != nil {
		return err
	}

	if c.History.Retention.Duration() < 0 {
		return fmt.Errorf("history.retention cannot be negative, got %s", c.History.Retention.Duration())
	}
	if c.History.Path == "" && c.History.Retention != 0 {
		return errors.New("history.retention requires history.path")
	}

	return nil
}

func (m *ManifestConfig) validate() error {
	sources := 0
	for _, set := range []bool{m.URL != "", m.File != "", m.Docker != nil} {
		if set {
			sources++
		}
	}
	if sources != 1 {
		return errors.New("manifest: exactly one of url, file or docker is required")
	}

	if m.URL != "" {
		if err := validateHTTPURL(m.URL); err != nil {
			return fmt.Errorf("manifest.url: %w", err)
		}
	}

	if m.Docker != nil && m.DefaultHost != "" {
		return errors.New("manifest.default_host is not used with docker discovery")
	}

	if m.Timeout.Duration() < 0 {
		return fmt.Errorf("manifest.timeout cannot be negative, got %s", m.Timeout.Duration())
	}

	return nil
}

func (s *StatusAPIConfig) validate() error {
	switch s.Provider {
	case ProviderMCSrvStat, ProviderMCAPI:
		if s.BaseURL != "" {
			if err := validateHTTPURL(s.BaseURL); err != nil {
				return fmt.Errorf("status_api.base_url: %w", err)
			}
		}
	case ProviderPing:
		if s.BaseURL != "" {
			return errors.New("status_api.base_url is not used by the ping provider")
		}
	default:
		return fmt.Errorf("status_api.provider must be %s, %s or %s, got %q",
			ProviderMCSrvStat, ProviderMCAPI, ProviderPing, s.Provider)
	}

	if s.Timeout.Duration() < 0 {
		return fmt.Errorf("status_api.timeout cannot be negative, got %s", s.Timeout.Duration())
	}

	return nil
}

func validateHTTPURL(raw string) error {
	parsed, err := url.Parse(raw)
	if err != nil {
		return fmt.Errorf("invalid url: %w", err)
	}
	if parsed.Scheme == "" {
		return errors.New("url must have a scheme (http:// or https://)")
	}
	if parsed.Scheme != "http" && parsed.Scheme != "https" {
		return fmt.Errorf("url scheme must be http or https, got %q", parsed.Scheme)
	}
	if strings.TrimSpace(parsed.Host) == "" {
		return errors.New("url must have a host")
	}
	return nil
}
