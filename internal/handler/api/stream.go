package api

import (
	"net/http"
	"time"

	xhttp "StockDash/pkg/http"
	xlogger "StockDash/pkg/logger"

	"github.com/gorilla/websocket"
	"github.com/labstack/echo/v4"
)

const (
	writeWait  = 10 * time.Second
	pongWait   = 60 * time.Second
	pingPeriod = pongWait * 9 / 10
)

// Stream upgrades to a websocket and pushes a snapshot on every session change,
// starting with the current one. Client messages other than control frames are ignored.
func (h *DashboardHandler) Stream(c echo.Context) error {
	s, err := h.session(c)
	if err != nil {
		return xhttp.ErrorResponse(c, err)
	}

	conn, err := h.upgrader.Upgrade(c.Response(), c.Request(), nil)
	if err != nil {
		// Upgrade has already written the handshake error.
		h.logger.Warn("websocket upgrade failed", xlogger.Error(err))
		return nil
	}
	defer conn.Close()

	updates, cancel := s.Subscribe()
	defer cancel()

	log := h.logger.With(xlogger.String("session_id", s.ID()))
	log.Debug("stream opened")
	defer log.Debug("stream closed")

	done := make(chan struct{})
	go func() {
		defer close(done)
		conn.SetReadLimit(512)
		_ = conn.SetReadDeadline(time.Now().Add(pongWait))
		conn.SetPongHandler(func(string) error {
			return conn.SetReadDeadline(time.Now().Add(pongWait))
		})
		for {
			if _, _, err := conn.ReadMessage(); err != nil {
				return
			}
		}
	}()

	ticker := time.NewTicker(pingPeriod)
	defer ticker.Stop()

	for {
		select {
		case snap, ok := <-updates:
			_ = conn.SetWriteDeadline(time.Now().Add(writeWait))
			if !ok {
				_ = conn.WriteMessage(websocket.CloseMessage,
					websocket.FormatCloseMessage(websocket.CloseGoingAway, "session closed"))
				return nil
			}
			if err := conn.WriteJSON(h.format.toSnapshotResponse(snap)); err != nil {
				log.Debug("stream write failed", xlogger.Error(err))
				return nil
			}
		case <-ticker.C:
			if err := conn.WriteControl(websocket.PingMessage, nil, time.Now().Add(writeWait)); err != nil {
				return nil
			}
		case <-done:
			return nil
		}
	}
}

// originChecker accepts requests without an Origin header, any origin when
// "*" is listed, and otherwise only the listed origins. An empty list falls
// back to gorilla's same-origin check.
func originChecker(allow []string) func(*http.Request) bool {
	if len(allow) == 0 {
		return nil
	}
	set := make(map[string]struct{}, len(allow))
	for _, o := range allow {
		if o == "*" {
			return func(*http.Request) bool { return true }
		}
		set[o] = struct{}{}
	}
	return func(r *http.Request) bool {
		origin := r.Header.Get("Origin")
		if origin == "" {
			return true
		}
		_, ok := set[origin]
		return ok
	}
}
