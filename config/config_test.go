package config

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"
)

func TestParse_MinimalConfig(t *testing.T) {
	yaml := `
manifest:
  url: https://forgeserv.net/servers.json
`
	cfg, err := Parse([]byte(yaml))
	if err != nil {
		t.Fatalf("Parse() error = %v", err)
	}

	// check defaults applied
	if cfg.Port != 8080 {
		t.Errorf("Port = %d, want 8080", cfg.Port)
	}
	if cfg.PollInterval.Duration() != 30*time.Second {
		t.Errorf("PollInterval = %v, want 30s", cfg.PollInterval.Duration())
	}
	if cfg.MaxConcurrency != 1 {
		t.Errorf("MaxConcurrency = %d, want 1", cfg.MaxConcurrency)
	}
	if cfg.StatusAPI.Provider != ProviderMCSrvStat {
		t.Errorf("StatusAPI.Provider = %q, want %q", cfg.StatusAPI.Provider, ProviderMCSrvStat)
	}
	if cfg.OverlapGuard {
		t.Error("OverlapGuard = true, want false")
	}
	if cfg.History.Path != "" {
		t.Errorf("History.Path = %q, want empty", cfg.History.Path)
	}
}

func TestParse_FullConfig(t *testing.T) {
	yaml := `
title: ForgeServ
port: 9090
poll_interval: 1m

manifest:
  url: https://forgeserv.net/servers.json
  default_host: forgeserv.net
  timeout: 5s

status_api:
  provider: mcapi
  base_url: https://mcapi.example.com
  timeout: 10s

max_concurrency: 4
overlap_guard: true
static_dir: ./Resources

history:
  path: ./serverboard.db
  retention: 168h
`
	cfg, err := Parse([]byte(yaml))
	if err != nil {
		t.Fatalf("Parse() error = %v", err)
	}

	if cfg.Title != "ForgeServ" {
		t.Errorf("Title = %q, want ForgeServ", cfg.Title)
	}
	if cfg.Port != 9090 {
		t.Errorf("Port = %d, want 9090", cfg.Port)
	}
	if cfg.PollInterval.Duration() != time.Minute {
		t.Errorf("PollInterval = %v, want 1m", cfg.PollInterval.Duration())
	}
	if cfg.Manifest.URL != "https://forgeserv.net/servers.json" {
		t.Errorf("Manifest.URL = %q", cfg.Manifest.URL)
	}
	if cfg.Manifest.DefaultHost != "forgeserv.net" {
		t.Errorf("Manifest.DefaultHost = %q, want forgeserv.net", cfg.Manifest.DefaultHost)
	}
	if cfg.Manifest.Timeout.Duration() != 5*time.Second {
		t.Errorf("Manifest.Timeout = %v, want 5s", cfg.Manifest.Timeout.Duration())
	}
	if cfg.StatusAPI.Provider != ProviderMCAPI {
		t.Errorf("StatusAPI.Provider = %q, want mcapi", cfg.StatusAPI.Provider)
	}
	if cfg.StatusAPI.BaseURL != "https://mcapi.example.com" {
		t.Errorf("StatusAPI.BaseURL = %q", cfg.StatusAPI.BaseURL)
	}
	if cfg.StatusAPI.Timeout.Duration() != 10*time.Second {
		t.Errorf("StatusAPI.Timeout = %v, want 10s", cfg.StatusAPI.Timeout.Duration())
	}
	if cfg.MaxConcurrency != 4 {
		t.Errorf("MaxConcurrency = %d, want 4", cfg.MaxConcurrency)
	}
	if !cfg.OverlapGuard {
		t.Error("OverlapGuard = false, want true")
	}
	if cfg.StaticDir != "./Resources" {
		t.Errorf("StaticDir = %q, want ./Resources", cfg.StaticDir)
	}
	if cfg.History.Path != "./serverboard.db" || cfg.History.Retention.Duration() != 168*time.Hour {
		t.Errorf("History = %+v, want ./serverboard.db / 168h", cfg.History)
	}
}

func TestParse_ManifestSources(t *testing.T) {
	tests := []struct {
		name  string
		yaml  string
		check func(t *testing.T, mc ManifestConfig)
	}{
		{
			name: "file",
			yaml: `
manifest:
  file: ./servers.json
  default_host: forgeserv.net
`,
			check: func(t *testing.T, mc ManifestConfig) {
				if mc.File != "./servers.json" {
					t.Errorf("File = %q, want ./servers.json", mc.File)
				}
			},
		},
		{
			name: "docker with defaults",
			yaml: `
manifest:
  docker: {}
`,
			check: func(t *testing.T, mc ManifestConfig) {
				if mc.Docker == nil {
					t.Fatal("Docker = nil, want set")
				}
				if mc.Docker.QueryHost != "" || mc.Docker.Image != "" {
					t.Errorf("Docker = %+v, want zero values", mc.Docker)
				}
			},
		},
		{
			name: "docker with overrides",
			yaml: `
manifest:
  docker:
    query_host: mc.internal
    image: custom/minecraft
`,
			check: func(t *testing.T, mc ManifestConfig) {
				if mc.Docker == nil || mc.Docker.QueryHost != "mc.internal" || mc.Docker.Image != "custom/minecraft" {
					t.Errorf("Docker = %+v", mc.Docker)
				}
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg, err := Parse([]byte(tt.yaml))
			if err != nil {
				t.Fatalf("Parse() error = %v", err)
			}
			tt.check(t, cfg.Manifest)
		})
	}
}

func TestParse_EnvVarSubstitution(t *testing.T) {
	t.Setenv("TEST_MANIFEST_HOST", "servers.test.com")
	t.Setenv("TEST_HISTORY_DIR", "/var/lib/serverboard")

	yaml := `
manifest:
  url: https://${TEST_MANIFEST_HOST}/servers.json
  default_host: ${TEST_MANIFEST_HOST}
history:
  path: ${TEST_HISTORY_DIR}/history.db
`
	cfg, err := Parse([]byte(yaml))
	if err != nil {
		t.Fatalf("Parse() error = %v", err)
	}

	if cfg.Manifest.URL != "https://servers.test.com/servers.json" {
		t.Errorf("Manifest.URL = %q, want https://servers.test.com/servers.json", cfg.Manifest.URL)
	}
	if cfg.Manifest.DefaultHost != "servers.test.com" {
		t.Errorf("Manifest.DefaultHost = %q, want servers.test.com", cfg.Manifest.DefaultHost)
	}
	if cfg.History.Path != "/var/lib/serverboard/history.db" {
		t.Errorf("History.Path = %q, want /var/lib/serverboard/history.db", cfg.History.Path)
	}
}

func TestParse_EnvVarDefault(t *testing.T) {
	yaml := `
manifest:
  docker:
    query_host: ${UNSET_QUERY_HOST:-localhost}
status_api:
  provider: ping
`
	cfg, err := Parse([]byte(yaml))
	if err != nil {
		t.Fatalf("Parse() error = %v", err)
	}

	if cfg.Manifest.Docker.QueryHost != "localhost" {
		t.Errorf("Docker.QueryHost = %q, want localhost", cfg.Manifest.Docker.QueryHost)
	}
}

func TestParse_EnvVarMissing(t *testing.T) {
	// MISSING_STATUS_API is expected to not exist in the environment
	yaml := `
manifest:
  url: https://forgeserv.net/servers.json
status_api:
  base_url: https://${MISSING_STATUS_API}
`
	_, err := Parse([]byte(yaml))
	if err == nil {
		t.Fatal("Parse() expected error for missing env var, got nil")
	}
	if !strings.Contains(err.Error(), "MISSING_STATUS_API") {
		t.Errorf("error should mention MISSING_STATUS_API: %v", err)
	}
	if !strings.Contains(err.Error(), "status_api.base_url") {
		t.Errorf("error should name the field: %v", err)
	}
}

func TestParse_ValidationErrors(t *testing.T) {
	tests := []struct {
		name        string
		yaml        string
		wantErrLike string
	}{
		{
			name:        "no manifest",
			yaml:        `port: 8080`,
			wantErrLike: "exactly one of url, file or docker",
		},
		{
			name: "two manifest sources",
			yaml: `
manifest:
  url: https://forgeserv.net/servers.json
  file: ./servers.json
`,
			wantErrLike: "exactly one of url, file or docker",
		},
		{
			name: "manifest url without scheme",
			yaml: `
manifest:
  url: forgeserv.net/servers.json
`,
			wantErrLike: "manifest.url",
		},
		{
			name: "manifest url with ftp scheme",
			yaml: `
manifest:
  url: ftp://forgeserv.net/servers.json
`,
			wantErrLike: "http or https",
		},
		{
			name: "default host with docker",
			yaml: `
manifest:
  docker: {}
  default_host: forgeserv.net
`,
			wantErrLike: "default_host is not used with docker",
		},
		{
			name: "negative manifest timeout",
			yaml: `
manifest:
  url: https://forgeserv.net/servers.json
  timeout: -1s
`,
			wantErrLike: "manifest.timeout cannot be negative",
		},
		{
			name: "unknown provider",
			yaml: `
manifest:
  url: https://forgeserv.net/servers.json
status_api:
  provider: minetools
`,
			wantErrLike: "status_api.provider",
		},
		{
			name: "base url with ping",
			yaml: `
manifest:
  url: https://forgeserv.net/servers.json
status_api:
  provider: ping
  base_url: https://api.mcsrvstat.us
`,
			wantErrLike: "not used by the ping provider",
		},
		{
			name: "invalid base url",
			yaml: `
manifest:
  url: https://forgeserv.net/servers.json
status_api:
  base_url: api.mcsrvstat.us
`,
			wantErrLike: "status_api.base_url",
		},
		{
			name: "negative status timeout",
			yaml: `
manifest:
  url: https://forgeserv.net/servers.json
status_api:
  timeout: -5s
`,
			wantErrLike: "status_api.timeout cannot be negative",
		},
		{
			name: "port out of range",
			yaml: `
port: 70000
manifest:
  url: https://forgeserv.net/servers.json
`,
			wantErrLike: "port must be between",
		},
		{
			name: "negative max concurrency",
			yaml: `
max_concurrency: -2
manifest:
  url: https://forgeserv.net/servers.json
`,
			wantErrLike: "max_concurrency must be positive",
		},
		{
			name: "retention without path",
			yaml: `
manifest:
  url: https://forgeserv.net/servers.json
history:
  retention: 24h
`,
			wantErrLike: "history.retention requires history.path",
		},
		{
			name: "negative retention",
			yaml: `
manifest:
  url: https://forgeserv.net/servers.json
history:
  path: ./history.db
  retention: -1h
`,
			wantErrLike: "history.retention cannot be negative",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := Parse([]byte(tt.yaml))
			if err == nil {
				t.Fatal("Parse() expected error, got nil")
			}
			if !strings.Contains(err.Error(), tt.wantErrLike) {
				t.Errorf("error = %q, want to contain %q", err.Error(), tt.wantErrLike)
			}
		})
	}
}

func TestParse_InvalidYAML(t *testing.T) {
	yaml := `
this is not: valid: yaml: at all
  - broken
`
	_, err := Parse([]byte(yaml))
	if err == nil {
		t.Fatal("Parse() expected error for invalid YAML, got nil")
	}
}

func TestParse_InvalidDuration(t *testing.T) {
	yaml := `
poll_interval: not-a-duration
manifest:
  url: https://forgeserv.net/servers.json
`
	_, err := Parse([]byte(yaml))
	if err == nil {
		t.Fatal("Parse() expected error for invalid duration, got nil")
	}
	if !strings.Contains(err.Error(), "invalid duration") {
		t.Errorf("error = %q, want to contain 'invalid duration'", err.Error())
	}
}

func TestDuration_UnmarshalYAML(t *testing.T) {
	tests := []struct {
		name    string
		input   string
		want    time.Duration
		wantErr bool
	}{
		{"seconds", "10s", 10 * time.Second, false},
		{"milliseconds", "1500ms", 1500 * time.Millisecond, false},
		{"minutes", "2m", 2 * time.Minute, false},
		{"hours", "1h", 1 * time.Hour, false},
		{"combined", "1m30s", 90 * time.Second, false},
		{"invalid", "not-a-duration", 0, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			yaml := `
manifest:
  url: https://forgeserv.net/servers.json
status_api:
  timeout: ` + tt.input

			cfg, err := Parse([]byte(yaml))
			if tt.wantErr {
				if err == nil {
					t.Fatal("Parse() expected error, got nil")
				}
				return
			}
			if err != nil {
				t.Fatalf("Parse() error = %v", err)
			}
			if cfg.StatusAPI.Timeout.Duration() != tt.want {
				t.Errorf("Timeout = %v, want %v", cfg.StatusAPI.Timeout.Duration(), tt.want)
			}
		})
	}
}

func TestParse_PollIntervalMinimum(t *testing.T) {
	tests := []struct {
		name     string
		interval string
		wantErr  bool
	}{
		{"below minimum", "500ms", true},
		{"at minimum", "1s", false},
		{"default rate", "30s", false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			yaml := `
poll_interval: ` + tt.interval + `
manifest:
  url: https://forgeserv.net/servers.json
`
			_, err := Parse([]byte(yaml))
			if tt.wantErr {
				if err == nil {
					t.Fatal("Parse() expected error, got nil")
				}
				if !strings.Contains(err.Error(), "poll_interval must be at least") {
					t.Errorf("error = %q, want poll_interval minimum", err.Error())
				}
				return
			}
			if err != nil {
				t.Fatalf("Parse() error = %v", err)
			}
		})
	}
}

func TestValidate_AfterOverride(t *testing.T) {
	cfg, err := Parse([]byte(`
manifest:
  url: https://forgeserv.net/servers.json
`))
	if err != nil {
		t.Fatalf("Parse() error = %v", err)
	}

	cfg.Port = 0
	if err := cfg.Validate(); err == nil {
		t.Error("Validate() expected error after invalid port override, got nil")
	}

	cfg.Port = 9000
	if err := cfg.Validate(); err != nil {
		t.Errorf("Validate() error = %v, want nil", err)
	}
}

func TestExpandEnvVars(t *testing.T) {
	t.Setenv("TEST_VAR", "value")
	t.Setenv("EMPTY_VAR", "") // set but empty

	tests := []struct {
		name    string
		input   string
		want    string
		wantErr bool
	}{
		{"no vars", "plain text", "plain text", false},
		{"simple var", "${TEST_VAR}", "value", false},
		{"var in text", "prefix ${TEST_VAR} suffix", "prefix value suffix", false},
		{"multiple vars", "${TEST_VAR}-${TEST_VAR}", "value-value", false},
		{"with default (var set)", "${TEST_VAR:-default}", "value", false},
		{"with default (var unset)", "${UNSET:-default}", "default", false},
		{"missing required", "${MISSING}", "", true},
		{"empty default (var unset)", "${UNSET:-}", "", false},
		{"set but empty var", "${EMPTY_VAR}", "", false},
		{"set but empty with default", "${EMPTY_VAR:-fallback}", "", false}, // set var takes precedence
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			// UNSET and MISSING are expected to not exist in environment
			got, err := expandEnvVars(tt.input)
			if tt.wantErr {
				if err == nil {
					t.Fatal("expandEnvVars() expected error, got nil")
				}
				return
			}
			if err != nil {
				t.Fatalf("expandEnvVars() error = %v", err)
			}
			if got != tt.want {
				t.Errorf("expandEnvVars() = %q, want %q", got, tt.want)
			}
		})
	}
}

func TestLoad(t *testing.T) {
	path := filepath.Join(t.TempDir(), "serverboard.yaml")
	content := `
title: ForgeServ
manifest:
  url: https://forgeserv.net/servers.json
`
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatalf("write config: %v", err)
	}

	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}
	if cfg.Title != "ForgeServ" {
		t.Errorf("Title = %q, want ForgeServ", cfg.Title)
	}
}

func TestLoad_MissingFile(t *testing.T) {
	_, err := Load(filepath.Join(t.TempDir(), "missing.yaml"))
	if err == nil {
		t.Fatal("Load() expected error for missing file, got nil")
	}
	if !strings.Contains(err.Error(), "failed to read config file") {
		t.Errorf("error = %q, want read failure", err.Error())
	}
}

func TestParse_TitleEmpty(t *testing.T) {
	yaml := `
manifest:
  url: https://forgeserv.net/servers.json
`
	cfg, err := Parse([]byte(yaml))
	if err != nil {
		t.Fatalf("Parse() error = %v", err)
	}

	// empty title is valid (defaults to "Serverboard" at render time)
	if cfg.Title != "" {
		t.Errorf("Title = %q, want empty string", cfg.Title)
	}
}
