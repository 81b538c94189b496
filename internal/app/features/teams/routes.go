// internal/app/features/teams/routes.go
package teams

import (
	"net/http"

	"github.com/dalemusser/devhub/internal/app/system/auth"
	"github.com/dalemusser/devhub/internal/app/system/ratelimit"
	"github.com/go-chi/chi/v5"
)

// Routes is mounted at /teams. inviteLimiter may be nil to disable invite
// rate limiting.
func Routes(h *Handler, sm *auth.SessionManager, inviteLimiter *ratelimit.Limiter) chi.Router {
	r := chi.NewRouter()

	r.Group(func(pr chi.Router) {
		pr.Use(sm.RequireSignedIn)

		pr.Get("/", h.ServeList)
		pr.Post("/", h.HandleCreate)
		pr.Get("/invites", h.ServePending)

		pr.Get("/{id}", h.ServeTeam)
		pr.Post("/{id}/join", h.HandleJoin)

		pr.Post("/{id}/invites/accept", h.HandleAccept)
		pr.Post("/{id}/invites/reject", h.HandleReject)

		pr.Group(func(ir chi.Router) {
			if inviteLimiter != nil {
				ir.Use(ratelimit.Middleware(inviteLimiter, InviteKey))
			}
			ir.Post("/{id}/invites", h.HandleInvite)
		})
	})

	return r
}

// InviteKey rate-limits invites per signed-in user, or per client IP when
// there is no principal.
func InviteKey(r *http.Request) string {
	if p, ok := auth.CurrentPrincipal(r); ok {
		return "user:" + p.ID
	}
	return "ip:" + ratelimit.ClientIP(r)
}
