// internal/app/features/teamchat/websocket.go
package teamchat

import (
	"context"
	"net/http"
	"time"

	apierrors "github.com/dalemusser/devhub/internal/app/features/errors"
	"github.com/dalemusser/devhub/internal/app/system/auth"
	"github.com/dalemusser/devhub/internal/app/system/timeouts"
	"github.com/dalemusser/devhub/internal/domain/models"
	"github.com/go-chi/chi/v5"
	"github.com/gorilla/websocket"
	"go.uber.org/zap"
)

const (
	// Time allowed to write a message to the peer.
	writeWait = 10 * time.Second

	// Time allowed to read the next pong message from the peer.
	pongWait = 60 * time.Second

	// Send pings to peer with this period. Must be less than pongWait.
	pingPeriod = (pongWait * 9) / 10

	// Clients only send control frames.
	maxMessageSize = 512
)

// ServeSocket handles GET /teams/{id}/messages/ws. Membership is checked
// before the upgrade so refusals are ordinary JSON errors. Each change to
// the channel is pushed as a full rendered snapshot.
func (h *Handler) ServeSocket(w http.ResponseWriter, r *http.Request) {
	p, _ := auth.CurrentPrincipal(r)

	openCtx, cancelOpen := timeouts.WithTimeout(r.Context(), timeouts.Read(), h.Log, "open channel")
	ch, err := h.Chat.Open(openCtx, chi.URLParam(r, "id"), p)
	cancelOpen()
	if err != nil {
		apierrors.Write(w, r, h.Log, err)
		return
	}

	ctx, cancel := context.WithCancel(r.Context())
	defer cancel()

	sub, err := ch.Subscribe(ctx)
	if err != nil {
		apierrors.Write(w, r, h.Log, err)
		return
	}
	defer sub.Close()

	conn, err := h.Upgrader.Upgrade(w, r, nil)
	if err != nil {
		// Upgrade has already answered the request.
		h.Log.Debug("websocket upgrade failed", zap.Error(err))
		return
	}
	defer conn.Close()

	teamID := ch.Team().ID.Hex()
	h.Log.Debug("chat socket opened",
		zap.String("team_id", teamID),
		zap.String("user_id", p.ID),
		zap.String("subscription_id", sub.ID))

	go h.readPump(conn, cancel)
	h.writePump(ctx, conn, sub.C(), func() error { return sub.Err() }, teamID, p.ID)

	h.Log.Debug("chat socket closed",
		zap.String("team_id", teamID),
		zap.String("subscription_id", sub.ID))
}

// readPump discards client frames and cancels ctx when the peer goes away
// or stops answering pings.
func (h *Handler) readPump(conn *websocket.Conn, cancel context.CancelFunc) {
	defer cancel()
	conn.SetReadLimit(maxMessageSize)
	_ = conn.SetReadDeadline(time.Now().Add(pongWait))
	conn.SetPongHandler(func(string) error {
		return conn.SetReadDeadline(time.Now().Add(pongWait))
	})
	for {
		if _, _, err := conn.ReadMessage(); err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseNormalClosure) {
				h.Log.Debug("chat socket read error", zap.Error(err))
			}
			return
		}
	}
}

// writePump is the only writer on conn.
func (h *Handler) writePump(ctx context.Context, conn *websocket.Conn, snapshots <-chan []models.Message, subErr func() error, teamID, viewerID string) {
	ticker := time.NewTicker(pingPeriod)
	defer ticker.Stop()

	for {
		select {
		case msgs, ok := <-snapshots:
			_ = conn.SetWriteDeadline(time.Now().Add(writeWait))
			if !ok {
				if err := subErr(); err != nil {
					_ = conn.WriteJSON(frame{Type: "error", TeamID: teamID, Error: "the data store is unavailable, please reconnect"})
				}
				_ = conn.WriteMessage(websocket.CloseMessage,
					websocket.FormatCloseMessage(websocket.CloseNormalClosure, ""))
				return
			}
			if err := conn.WriteJSON(frame{Type: "snapshot", TeamID: teamID, Days: h.render(msgs, viewerID)}); err != nil {
				return
			}
		case <-ticker.C:
			_ = conn.SetWriteDeadline(time.Now().Add(writeWait))
			if err := conn.WriteMessage(websocket.PingMessage, nil); err != nil {
				return
			}
		case <-ctx.Done():
			_ = conn.SetWriteDeadline(time.Now().Add(writeWait))
			_ = conn.WriteMessage(websocket.CloseMessage,
				websocket.FormatCloseMessage(websocket.CloseNormalClosure, ""))
			return
		}
	}
}
