package httpapi

import (
	"context"
	"log/slog"
	"net/http"
	"time"

	"github.com/coder/websocket"
	"github.com/coder/websocket/wsjson"

	"github.com/p-n-ai/pai-progress/internal/progress"
)

const streamWriteTimeout = 5 * time.Second

// handleStream upgrades to a WebSocket and sends the current snapshot followed
// by every newer one. Client messages are ignored.
func (s *server) handleStream(w http.ResponseWriter, r *http.Request) {
	conn, err := websocket.Accept(w, r, nil)
	if err != nil {
		slog.Warn("websocket accept failed", "error", err)
		return
	}
	defer conn.CloseNow()

	updates, cancel := s.engine.Subscribe()
	defer cancel()

	ctx := conn.CloseRead(r.Context())

	current := s.engine.Snapshot()
	if err := writeSnapshot(ctx, conn, current); err != nil {
		return
	}
	last := current.Version

	for {
		select {
		case <-ctx.Done():
			return
		case snap, ok := <-updates:
			if !ok {
				conn.Close(websocket.StatusGoingAway, "stream closed")
				return
			}
			if snap.Version <= last {
				continue
			}
			if err := writeSnapshot(ctx, conn, snap); err != nil {
				slog.Debug("progress stream ended", "error", err)
				return
			}
			last = snap.Version
		}
	}
}

func writeSnapshot(ctx context.Context, conn *websocket.Conn, s *progress.Snapshot) error {
	ctx, cancel := context.WithTimeout(ctx, streamWriteTimeout)
	defer cancel()
	return wsjson.Write(ctx, conn, s)
}
