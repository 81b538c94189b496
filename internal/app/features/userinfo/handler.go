// internal/app/features/userinfo/handler.go
package userinfo

import (
	"context"
	"net/http"

	apierrors "github.com/dalemusser/devhub/internal/app/features/errors"
	"github.com/dalemusser/devhub/internal/app/system/auth"
	"github.com/dalemusser/devhub/internal/app/system/timeouts"
	"github.com/dalemusser/devhub/internal/domain/models"
	"go.uber.org/zap"
)

// ProfileReader loads the stored profile for a principal.
type ProfileReader interface {
	GetByID(ctx context.Context, id string) (models.User, error)
}

// Handler serves the caller's identity.
type Handler struct {
	Users ProfileReader
	Log   *zap.Logger
}

// NewHandler creates a new userinfo handler. users may be nil, in which
// case only the principal is returned.
func NewHandler(users ProfileReader, logger *zap.Logger) *Handler {
	return &Handler{Users: users, Log: logger}
}

type meResponse struct {
	Principal auth.Principal `json:"principal"`
	Profile   *models.User   `json:"profile,omitempty"`
}

// ServeMe returns the current principal and, when one is stored, the
// matching profile. A missing profile is not an error.
func (h *Handler) ServeMe(w http.ResponseWriter, r *http.Request) {
	p, ok := auth.CurrentPrincipal(r)
	if !ok {
		apierrors.WriteError(w, http.StatusUnauthorized, "unauthorized", "sign in required")
		return
	}

	resp := meResponse{Principal: p}
	if h.Users != nil {
		ctx, cancel := timeouts.WithTimeout(r.Context(), timeouts.Read(), h.Log, "me")
		defer cancel()
		if u, err := h.Users.GetByID(ctx, p.ID); err == nil {
			resp.Profile = &u
		} else {
			h.Log.Debug("me: profile unavailable", zap.String("user_id", p.ID), zap.Error(err))
		}
	}

	apierrors.WriteJSON(w, http.StatusOK, resp)
}
