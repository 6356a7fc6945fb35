// Standalone mock fleet for testing the CLI.
//
// Usage:
//
//	go run ./example/cmd/mockserver
//
// Then in another terminal:
//
//	go run ./cmd/serverboard serve -c example/config.yaml
package main

import (
	"encoding/json"
	"fmt"
	"log/slog"
	"math/rand"
	"net/http"
	"os"
	"strings"
	"sync"
	"time"
)

const manifest = `{
  "servers": [
    {"id": "survival", "name": "Survival", "queryTarget": "survival.local"},
    {"id": "atm9", "name": "All The Mods 9", "hasPackVer": true, "queryTarget": "atm9.local"},
    {"id": "creative", "name": "Creative", "queryTarget": "creative.local"}
  ]
}`

func main() {
	fmt.Println("Mock fleet starting on :9999")
	fmt.Println("Manifest at /servers.json, status API at /2/<address>")
	fmt.Println("Servers flip online ↔ offline every 20-60s")
	fmt.Println("Press Ctrl+C to stop")
	fmt.Println()

	var (
		servers = make(map[string]*mockServer)
		mu      sync.Mutex
	)

	http.HandleFunc("/servers.json", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(manifest))
	})

	http.HandleFunc("/2/", func(w http.ResponseWriter, r *http.Request) {
		target := strings.TrimPrefix(r.URL.Path, "/2/")

		time.Sleep(time.Duration(50+rand.Intn(150)) * time.Millisecond)

		mu.Lock()
		s, exists := servers[target]
		if !exists {
			s = &mockServer{
				online:       true,
				players:      rand.Intn(20),
				nextChangeAt: time.Now().Add(time.Duration(20+rand.Intn(41)) * time.Second),
			}
			servers[target] = s
		}

		if time.Now().After(s.nextChangeAt) {
			s.online = !s.online
			s.players = rand.Intn(20)
			s.nextChangeAt = time.Now().Add(time.Duration(20+rand.Intn(41)) * time.Second)
			slog.Info("status change", "server", target, "online", s.online)
		}
		online, players := s.online, s.players
		mu.Unlock()

		resp := map[string]any{"online": online}
		if online {
			resp["players"] = map[string]int{"online": players, "max": 20}
			resp["software"] = "Paper 1.20.4"
			resp["motd"] = map[string][]string{"clean": {"version 0.2.44"}}
		}

		w.Header().Set("Content-Type", "application/json")
		_ = json.NewEncoder(w).Encode(resp)
	})

	if err := http.ListenAndServe(":9999", nil); err != nil {
		slog.Error("server error", "error", err)
		os.Exit(1)
	}
}

type mockServer struct {
	online       bool
	players      int
	nextChangeAt time.Time
}
