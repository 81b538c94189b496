// internal/app/features/logout/handler.go
package logout

import (
	"net/http"

	"github.com/dalemusser/devhub/internal/app/system/auth"
	"go.uber.org/zap"
)

type Handler struct {
	Log        *zap.Logger
	SessionMgr *auth.SessionManager
}

func NewHandler(sessionMgr *auth.SessionManager, logger *zap.Logger) *Handler {
	return &Handler{
		Log:        logger,
		SessionMgr: sessionMgr,
	}
}

// ServeLogout handles POST /auth/logout. The session cookie is expired
// even if it could not be decoded. API clients get 204; browsers are sent
// home.
func (h *Handler) ServeLogout(w http.ResponseWriter, r *http.Request) {
	if p, ok := auth.CurrentPrincipal(r); ok {
		h.Log.Info("user signed out", zap.String("user_id", p.ID))
	}

	if err := h.SessionMgr.SignOut(w, r); err != nil {
		h.Log.Error("logout: save session", zap.Error(err))
	}

	if r.Header.Get("Accept") == "application/json" {
		w.WriteHeader(http.StatusNoContent)
		return
	}
	http.Redirect(w, r, "/", http.StatusSeeOther)
}
