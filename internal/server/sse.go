package server

import (
	"encoding/json"
	"fmt"
	"net/http"
	"time"
)

// handleSSE streams published snapshots via Server-Sent Events.
//
// Each event carries a complete snapshot, so a client only ever renders a
// whole cycle. The handler uses write deadlines to prevent goroutine leaks
// when clients are slow or disconnected. Without deadlines, a blocked Fprintf
// call would prevent the handler from detecting context cancellation or
// channel closure.
func (s *Server) handleSSE(w http.ResponseWriter, r *http.Request) {
	// check if flushing is supported
	if _, ok := w.(http.Flusher); !ok {
		http.Error(w, "SSE not supported", http.StatusInternalServerError)
		return
	}

	// ResponseController provides deadline-aware write and flush operations.
	rc := http.NewResponseController(w)

	// track if write deadlines are supported (may not be for some ResponseWriter impls)
	deadlinesSupported := true

	// writeAndFlush writes SSE data with a deadline to prevent blocking forever.
	writeAndFlush := func(data []byte) error {
		if deadlinesSupported {
			if err := rc.SetWriteDeadline(time.Now().Add(sseWriteTimeout)); err != nil {
				// deadline not supported by underlying connection, continue without
				s.logger.Warn("sse write deadlines not supported", "error", err)
				deadlinesSupported = false
			}
		}

		if _, err := fmt.Fprintf(w, "data: %s\n\n", data); err != nil {
			return err
		}

		// ResponseController.Flush respects the write deadline
		return rc.Flush()
	}

	// set SSE headers
	w.Header().Set("Content-Type", "text/event-stream")
	w.Header().Set("Cache-Control", "no-cache")
	w.Header().Set("Connection", "keep-alive")
	w.Header().Set("Access-Control-Allow-Origin", "*")

	// subscribe before reading the current snapshot so nothing published in
	// between is missed
	ch := s.store.Subscribe()
	defer s.store.Unsubscribe(ch)

	// send the current snapshot (also protected by write deadline)
	data, err := json.Marshal(s.store.Current())
	if err != nil {
		s.logger.Error("failed to encode snapshot", "error", err)
		return
	}
	if err := writeAndFlush(data); err != nil {
		return
	}

	// stream snapshots
	for {
		select {
		case snap, ok := <-ch:
			if !ok {
				return
			}
			data, err := json.Marshal(snap)
			if err != nil {
				continue
			}
			if err := writeAndFlush(data); err != nil {
				return
			}

		case <-r.Context().Done():
			// request context is derived from server context via BaseContext,
			// so this fires on both client disconnect AND server shutdown
			return
		}
	}
}
