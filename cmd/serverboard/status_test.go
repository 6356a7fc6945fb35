package main

import (
	"bytes"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/jpalmerr/serverboard"
)

func TestWriteStatusTable(t *testing.T) {
	summaries := []serverboard.Summary{
		{ID: "survival", Name: "Survival", Online: true, StatusLabel: "Online", PlayersNow: 3, PlayersMax: 20, VersionText: "Server Running Paper 1.20.4"},
		{ID: "atm9", Name: "All The Mods 9", Online: true, StatusLabel: "Online", PlayersNow: 0, PlayersMax: 10, VersionText: "Server Running Forge", PackVersion: "0.2.44"},
		{ID: "creative", Name: "Creative", Online: false, StatusLabel: "Offline", VersionText: "Server Running "},
	}

	var buf bytes.Buffer
	if err := writeStatusTable(&buf, summaries, false); err != nil {
		t.Fatalf("writeStatusTable() error = %v", err)
	}

	lines := strings.Split(strings.TrimRight(buf.String(), "\n"), "\n")
	if len(lines) != 4 {
		t.Fatalf("got %d lines, want header + 3 rows:\n%s", len(lines), buf.String())
	}
	if !strings.HasPrefix(lines[0], "ID") || !strings.HasSuffix(lines[0], "STATUS") {
		t.Errorf("header = %q", lines[0])
	}

	rows := []struct {
		line   string
		fields []string
	}{
		{lines[1], []string{"survival", "3/20", "Paper 1.20.4", "Online"}},
		{lines[2], []string{"atm9", "0/10", "Forge", "0.2.44"}},
		{lines[3], []string{"creative", "Offline"}},
	}
	for _, r := range rows {
		for _, f := range r.fields {
			if !strings.Contains(r.line, f) {
				t.Errorf("row %q missing %q", r.line, f)
			}
		}
	}

	if strings.Contains(buf.String(), "\x1b[") {
		t.Error("output should not contain color codes when color is off")
	}
}

func TestWriteStatusTable_Color(t *testing.T) {
	summaries := []serverboard.Summary{
		{ID: "survival", Online: true, StatusLabel: "Online"},
		{ID: "creative", Online: false, StatusLabel: "Offline"},
	}

	var buf bytes.Buffer
	if err := writeStatusTable(&buf, summaries, true); err != nil {
		t.Fatalf("writeStatusTable() error = %v", err)
	}

	out := buf.String()
	if !strings.Contains(out, ansiGreen+"Online"+ansiReset) {
		t.Error("online status should be green")
	}
	if !strings.Contains(out, ansiRed+"Offline"+ansiReset) {
		t.Error("offline status should be red")
	}
}

func TestWriteStatusTable_Empty(t *testing.T) {
	var buf bytes.Buffer
	if err := writeStatusTable(&buf, nil, false); err != nil {
		t.Fatalf("writeStatusTable() error = %v", err)
	}
	if !strings.Contains(buf.String(), "no enabled servers") {
		t.Errorf("output = %q, want empty notice", buf.String())
	}
}

func TestRunStatus(t *testing.T) {
	api := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"online":true,"players":{"online":5,"max":40},"software":"Paper"}`))
	}))
	defer api.Close()

	dir := t.TempDir()
	manifest := filepath.Join(dir, "servers.json")
	content := `{"servers":[{"id":"survival","name":"Survival","enabled":true,"queryTarget":"mc.example.com"}]}`
	if err := os.WriteFile(manifest, []byte(content), 0644); err != nil {
		t.Fatalf("write manifest: %v", err)
	}

	configPath := writeConfig(t, `
manifest:
  file: `+manifest+`
status_api:
  base_url: `+api.URL+`
`)

	output, err := executeCmd(t, "status", "-c", configPath, "--log-level", "error")
	if err != nil {
		t.Fatalf("status command error = %v", err)
	}

	for _, phrase := range []string{"survival", "5/40", "Paper", "Online"} {
		if !strings.Contains(output, phrase) {
			t.Errorf("output missing %q\nGot: %s", phrase, output)
		}
	}
}

func TestRunStatus_RefreshFailure(t *testing.T) {
	api := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusServiceUnavailable)
	}))
	defer api.Close()

	dir := t.TempDir()
	manifest := filepath.Join(dir, "servers.json")
	content := `{"servers":[{"id":"survival","name":"Survival","enabled":true,"queryTarget":"mc.example.com"}]}`
	if err := os.WriteFile(manifest, []byte(content), 0644); err != nil {
		t.Fatalf("write manifest: %v", err)
	}

	configPath := writeConfig(t, `
manifest:
  file: `+manifest+`
status_api:
  base_url: `+api.URL+`
`)

	_, err := executeCmd(t, "status", "-c", configPath, "--log-level", "error")
	if err == nil {
		t.Fatal("status command expected error, got nil")
	}
	if !strings.Contains(err.Error(), "refresh failed") {
		t.Errorf("error = %v, want refresh failed", err)
	}
}
