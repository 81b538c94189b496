// internal/app/features/teamchat/routes.go
package teamchat

import (
	"github.com/dalemusser/devhub/internal/app/system/auth"
	"github.com/go-chi/chi/v5"
)

// Routes is mounted at /teams/{id}/messages.
func Routes(h *Handler, sm *auth.SessionManager) chi.Router {
	r := chi.NewRouter()

	r.Group(func(pr chi.Router) {
		pr.Use(sm.RequireSignedIn)

		pr.Get("/", h.ServeMessages)
		pr.Post("/", h.HandleSend)
		pr.Get("/ws", h.ServeSocket)
	})

	return r
}
