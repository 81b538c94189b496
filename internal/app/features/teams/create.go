// internal/app/features/teams/create.go
package teams

import (
	"net/http"

	apierrors "github.com/dalemusser/devhub/internal/app/features/errors"
	"github.com/dalemusser/devhub/internal/app/system/auth"
	"github.com/dalemusser/devhub/internal/app/system/timeouts"
	"github.com/dalemusser/devhub/internal/domain/models"
)

// HandleCreate handles POST /teams.
func (h *Handler) HandleCreate(w http.ResponseWriter, r *http.Request) {
	p, _ := auth.CurrentPrincipal(r)

	var req createTeamRequest
	if !decode(w, r, &req) {
		return
	}

	ctx, cancel := timeouts.WithTimeout(r.Context(), timeouts.Write(), h.Log, "create team")
	defer cancel()

	t, err := h.Directory.CreateTeam(ctx, p, req.Name, req.Description, req.IsPublic)
	if err != nil {
		apierrors.Write(w, r, h.Log, err)
		return
	}

	creator := models.MemberSummary{ID: p.ID, Name: p.DisplayName, PhotoURL: p.PhotoURL, Email: p.Email}
	apierrors.WriteJSON(w, http.StatusCreated, newTeamView(t, p.ID, []models.MemberSummary{creator}))
}
