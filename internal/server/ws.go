package server

import (
	"net/http"
	"time"

	"github.com/gorilla/websocket"

	"github.com/jpalmerr/serverboard/internal/store"
)

const (
	wsWriteTimeout = 5 * time.Second
	wsPingInterval = 30 * time.Second
	wsPongTimeout  = 2 * wsPingInterval

	// clients only send control frames
	wsReadLimit = 4096
)

var upgrader = websocket.Upgrader{
	ReadBufferSize:  1024,
	WriteBufferSize: 4096,
	// the dashboard is public and read-only
	CheckOrigin: func(r *http.Request) bool { return true },
}

// handleWS streams snapshots over a WebSocket.
//
// The current snapshot is sent on connect. After that a snapshot is sent
// only when its server cards differ from the last one sent to this client,
// so an unchanged cycle produces no traffic. Pings keep idle connections
// alive through proxies.
func (s *Server) handleWS(w http.ResponseWriter, r *http.Request) {
	conn, err := upgrader.Upgrade(w, r, nil)
	if err != nil {
		// Upgrade has already written an HTTP error response
		s.logger.Debug("websocket upgrade failed", "error", err)
		return
	}
	defer func() { _ = conn.Close() }()

	conn.SetReadLimit(wsReadLimit)
	_ = conn.SetReadDeadline(time.Now().Add(wsPongTimeout))
	conn.SetPongHandler(func(string) error {
		return conn.SetReadDeadline(time.Now().Add(wsPongTimeout))
	})

	ch := s.store.Subscribe()
	defer s.store.Unsubscribe(ch)

	// reader goroutine: detects close frames and dead peers
	closed := make(chan struct{})
	go func() {
		defer close(closed)
		for {
			if _, _, err := conn.ReadMessage(); err != nil {
				return
			}
		}
	}()

	last := s.store.Current()
	if err := writeSnapshot(conn, last); err != nil {
		return
	}

	ping := time.NewTicker(wsPingInterval)
	defer ping.Stop()

	for {
		select {
		case snap, ok := <-ch:
			if !ok {
				return
			}
			if snap.SameContent(last) {
				continue
			}
			if err := writeSnapshot(conn, snap); err != nil {
				return
			}
			last = snap

		case <-ping.C:
			deadline := time.Now().Add(wsWriteTimeout)
			if err := conn.WriteControl(websocket.PingMessage, nil, deadline); err != nil {
				return
			}

		case <-closed:
			return

		case <-r.Context().Done():
			deadline := time.Now().Add(wsWriteTimeout)
			msg := websocket.FormatCloseMessage(websocket.CloseGoingAway, "server shutting down")
			_ = conn.WriteControl(websocket.CloseMessage, msg, deadline)
			return
		}
	}
}

func writeSnapshot(conn *websocket.Conn, snap store.Snapshot) error {
	if err := conn.SetWriteDeadline(time.Now().Add(wsWriteTimeout)); err != nil {
		return err
	}
	return conn.WriteJSON(snap)
}
