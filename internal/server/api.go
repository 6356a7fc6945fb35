package server

import (
	"cmp"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"slices"
	"strconv"

	"github.com/jpalmerr/serverboard/internal/history"
	"github.com/jpalmerr/serverboard/internal/store"
)

const (
	defaultHistoryLimit = 50
	maxHistoryLimit     = history.MaxLimit
)

// HistoryReader is the read side of the cycle history.
// *history.Store satisfies it.
type HistoryReader interface {
	RecentCycles(ctx context.Context, limit int) ([]history.Cycle, error)
	ServerSamples(ctx context.Context, serverID string, limit int) ([]history.Sample, error)
}

// summaryOrder compares two server summaries for one sort key.
type summaryOrder func(a, b store.ServerSummary) int

// sortKeys are the accepted values of /api/servers?sort=.
var sortKeys = map[string]summaryOrder{
	"id":   func(a, b store.ServerSummary) int { return cmp.Compare(a.ID, b.ID) },
	"name": func(a, b store.ServerSummary) int { return cmp.Compare(a.Name, b.Name) },
	// offline first, matching an ascending sort of false < true
	"online": func(a, b store.ServerSummary) int {
		return cmp.Compare(boolRank(a.Online), boolRank(b.Online))
	},
	"players": func(a, b store.ServerSummary) int { return cmp.Compare(a.PlayersNow, b.PlayersNow) },
}

func boolRank(b bool) int {
	if b {
		return 1
	}
	return 0
}

// handleServers returns the published snapshot as JSON, optionally sorted.
func (s *Server) handleServers(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
		return
	}

	snap := s.store.Current()

	if key := r.URL.Query().Get("sort"); key != "" {
		order, ok := sortKeys[key]
		if !ok {
			s.writeJSON(w, http.StatusUnprocessableEntity, map[string]string{
				"error": fmt.Sprintf("Failed to find key '%s'", key),
			})
			return
		}
		slices.SortStableFunc(snap.Servers, order)
	}

	s.writeJSON(w, http.StatusOK, snap)
}

// handleHistory returns recent cycles, or recent samples for ?server=<id>.
func (s *Server) handleHistory(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
		return
	}
	if s.cfg.History == nil {
		http.Error(w, "History is not enabled", http.StatusNotFound)
		return
	}

	limit := defaultHistoryLimit
	if raw := r.URL.Query().Get("limit"); raw != "" {
		n, err := strconv.Atoi(raw)
		if err != nil || n < 1 {
			s.writeJSON(w, http.StatusBadRequest, map[string]string{
				"error": "limit must be a positive integer",
			})
			return
		}
		limit = min(n, maxHistoryLimit)
	}

	if id := r.URL.Query().Get("server"); id != "" {
		samples, err := s.cfg.History.ServerSamples(r.Context(), id, limit)
		if err != nil {
			s.logger.Error("history query failed", "server", id, "error", err)
			http.Error(w, "History query failed", http.StatusInternalServerError)
			return
		}
		s.writeJSON(w, http.StatusOK, samples)
		return
	}

	cycles, err := s.cfg.History.RecentCycles(r.Context(), limit)
	if err != nil {
		s.logger.Error("history query failed", "error", err)
		http.Error(w, "History query failed", http.StatusInternalServerError)
		return
	}
	s.writeJSON(w, http.StatusOK, cycles)
}

// writeJSON encodes v with the given status code.
func (s *Server) writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.Header().Set("Cache-Control", "no-cache")
	w.WriteHeader(status)

	if err := json.NewEncoder(w).Encode(v); err != nil {
		s.logger.Error("failed to encode response", "error", err)
	}
}
