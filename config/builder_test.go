package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/jpalmerr/serverboard"
)

func TestBuild_URLManifest(t *testing.T) {
	cfg, err := Parse([]byte(`
title: ForgeServ
port: 9191
poll_interval: 45s
max_concurrency: 3
manifest:
  url: https://forgeserv.net/servers.json
  default_host: forgeserv.net
`))
	if err != nil {
		t.Fatalf("Parse() error = %v", err)
	}

	opts, closer, err := Build(cfg)
	if err != nil {
		t.Fatalf("Build() error = %v", err)
	}
	defer func() { _ = closer.Close() }()

	b, err := serverboard.New(opts...)
	if err != nil {
		t.Fatalf("serverboard.New() error = %v", err)
	}

	if b.Port() != 9191 {
		t.Errorf("Port() = %d, want 9191", b.Port())
	}
	if b.PollingInterval() != 45*time.Second {
		t.Errorf("PollingInterval() = %v, want 45s", b.PollingInterval())
	}
	if b.Provider().Name() != "mcsrvstat" {
		t.Errorf("Provider().Name() = %q, want mcsrvstat", b.Provider().Name())
	}
}

func TestBuild_FileManifestWithHistory(t *testing.T) {
	dir := t.TempDir()
	manifest := filepath.Join(dir, "servers.json")
	if err := os.WriteFile(manifest, []byte(`{"servers":[]}`), 0o644); err != nil {
		t.Fatalf("write manifest: %v", err)
	}

	cfg := &Config{
		Port:           8080,
		PollInterval:   Duration(30 * time.Second),
		MaxConcurrency: 1,
		Manifest:       ManifestConfig{File: manifest},
		StatusAPI:      StatusAPIConfig{Provider: ProviderPing, Timeout: Duration(2 * time.Second)},
		StaticDir:      dir,
		History:        HistoryConfig{Path: filepath.Join(dir, "history.db"), Retention: Duration(24 * time.Hour)},
	}

	opts, closer, err := Build(cfg)
	if err != nil {
		t.Fatalf("Build() error = %v", err)
	}
	defer func() { _ = closer.Close() }()

	b, err := serverboard.New(opts...)
	if err != nil {
		t.Fatalf("serverboard.New() error = %v", err)
	}
	if b.Provider().Name() != "ping" {
		t.Errorf("Provider().Name() = %q, want ping", b.Provider().Name())
	}
}

func TestBuild_MissingManifestFile(t *testing.T) {
	cfg := &Config{
		Port:           8080,
		PollInterval:   Duration(30 * time.Second),
		MaxConcurrency: 1,
		Manifest:       ManifestConfig{File: filepath.Join(t.TempDir(), "missing.json")},
	}

	opts, closer, err := Build(cfg)
	if err != nil {
		t.Fatalf("Build() error = %v", err)
	}
	defer func() { _ = closer.Close() }()

	// the file is checked when the option is applied
	if _, err := serverboard.New(opts...); err == nil {
		t.Error("serverboard.New() expected error for missing manifest file, got nil")
	}
}

func TestBuildManifest_Docker(t *testing.T) {
	// client construction does not dial the engine
	t.Setenv("DOCKER_HOST", "unix:///nonexistent/docker.sock")

	opt, closer, err := BuildManifest(ManifestConfig{Docker: &DockerConfig{QueryHost: "mc.internal"}})
	if err != nil {
		t.Fatalf("BuildManifest() error = %v", err)
	}
	if opt == nil {
		t.Fatal("BuildManifest() returned nil option")
	}
	if _, ok := closer.(*serverboard.DockerManifest); !ok {
		t.Errorf("closer = %T, want *serverboard.DockerManifest", closer)
	}
	if err := closer.Close(); err != nil {
		t.Errorf("Close() error = %v", err)
	}
}

func TestBuildManifest_NoSource(t *testing.T) {
	if _, _, err := BuildManifest(ManifestConfig{}); err == nil {
		t.Error("BuildManifest() expected error for empty config, got nil")
	}
}

func TestBuildProvider(t *testing.T) {
	tests := []struct {
		name     string
		cfg      StatusAPIConfig
		wantName string
	}{
		{"default", StatusAPIConfig{}, "mcsrvstat"},
		{"mcsrvstat", StatusAPIConfig{Provider: ProviderMCSrvStat, BaseURL: "https://mirror.example.com"}, "mcsrvstat"},
		{"mcapi", StatusAPIConfig{Provider: ProviderMCAPI, Timeout: Duration(5 * time.Second)}, "mcapi"},
		{"ping", StatusAPIConfig{Provider: ProviderPing}, "ping"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			p, err := BuildProvider(tt.cfg)
			if err != nil {
				t.Fatalf("BuildProvider() error = %v", err)
			}
			if p.Name() != tt.wantName {
				t.Errorf("Name() = %q, want %q", p.Name(), tt.wantName)
			}
		})
	}
}

func TestBuildProvider_Errors(t *testing.T) {
	tests := []struct {
		name string
		cfg  StatusAPIConfig
	}{
		{"unknown provider", StatusAPIConfig{Provider: "minetools"}},
		{"bad base url", StatusAPIConfig{Provider: ProviderMCAPI, BaseURL: "ftp://mcapi.us"}},
		{"negative timeout", StatusAPIConfig{Provider: ProviderPing, Timeout: Duration(-time.Second)}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if _, err := BuildProvider(tt.cfg); err == nil {
				t.Error("BuildProvider() expected error, got nil")
			}
		})
	}
}
