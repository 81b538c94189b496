// internal/app/features/teamchat/handler.go
package teamchat

import (
	"net/http"
	"time"

	"github.com/dalemusser/devhub/internal/app/chat"
	"github.com/dalemusser/devhub/internal/app/resolver"
	"github.com/dalemusser/devhub/internal/domain/models"
	"github.com/gorilla/websocket"
	"go.uber.org/zap"
)

// Handler serves a team's chat channel over JSON and websocket.
type Handler struct {
	Chat     *chat.Service
	Resolver *resolver.Resolver
	Loc      *time.Location // day boundaries and time labels
	Now      func() time.Time
	Upgrader websocket.Upgrader
	Log      *zap.Logger
}

// NewHandler constructs a chat Handler. A nil loc means UTC. Websocket
// upgrades are accepted only from baseURL's origin unless baseURL is empty.
func NewHandler(svc *chat.Service, res *resolver.Resolver, loc *time.Location, baseURL string, logger *zap.Logger) *Handler {
	if loc == nil {
		loc = time.UTC
	}
	return &Handler{
		Chat:     svc,
		Resolver: res,
		Loc:      loc,
		Now:      time.Now,
		Upgrader: websocket.Upgrader{
			ReadBufferSize:  1024,
			WriteBufferSize: 1024,
			CheckOrigin:     checkOrigin(baseURL),
		},
		Log: logger,
	}
}

func (h *Handler) render(msgs []models.Message, viewerID string) []chat.DayView {
	return chat.Render(chat.GroupByDay(msgs, h.Loc), viewerID, h.Now(), h.Loc)
}

// checkOrigin allows same-origin requests, requests without an Origin
// header, and requests from baseURL.
func checkOrigin(baseURL string) func(*http.Request) bool {
	return func(r *http.Request) bool {
		origin := r.Header.Get("Origin")
		if origin == "" || baseURL == "" {
			return true
		}
		if origin == baseURL {
			return true
		}
		return origin == "http://"+r.Host || origin == "https://"+r.Host
	}
}
