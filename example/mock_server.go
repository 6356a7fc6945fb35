package main

import (
	"encoding/json"
	"log/slog"
	"math/rand"
	"net/http"
	"strings"
	"sync"
	"time"
)

// mockManifest is served at /servers.json.
const mockManifest = `{
  "servers": [
    {"id": "survival", "name": "Survival", "queryTarget": "survival.local", "dynmapUrl": "https://map.example.com"},
    {"id": "atm9", "name": "All The Mods 9", "hasPackVer": true, "queryTarget": "atm9.local"},
    {"id": "creative", "name": "Creative", "queryTarget": "creative.local"},
    {"id": "legacy", "name": "Legacy", "enabled": false, "queryTarget": "legacy.local"}
  ]
}`

// mockServer tracks whether a fake Minecraft server is up and when it flips.
type mockServer struct {
	online       bool
	players      int
	nextChangeAt time.Time
}

// StartMockFleet runs a fake manifest host and mcsrvstat-style status API.
// Each server flips between online and offline every 20-60 seconds.
// Call this in a goroutine before creating the board.
func StartMockFleet(addr string) {
	var (
		servers = make(map[string]*mockServer)
		mu      sync.Mutex
	)

	mux := http.NewServeMux()
	mux.HandleFunc("/servers.json", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(mockManifest))
	})

	mux.HandleFunc("/2/", func(w http.ResponseWriter, r *http.Request) {
		target := strings.TrimPrefix(r.URL.Path, "/2/")

		// simulate small latency variance
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
			resp["motd"] = map[string][]string{"clean": {"Welcome to " + target + " version 0.2.44"}}
		}

		w.Header().Set("Content-Type", "application/json")
		if err := json.NewEncoder(w).Encode(resp); err != nil {
			slog.Error("failed to write response", "error", err)
		}
	})

	if err := http.ListenAndServe(addr, mux); err != nil {
		slog.Error("mock server error", "error", err)
	}
}
