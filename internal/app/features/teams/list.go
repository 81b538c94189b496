// internal/app/features/teams/list.go
package teams

import (
	"context"
	"net/http"

	apierrors "github.com/dalemusser/devhub/internal/app/features/errors"
	"github.com/dalemusser/devhub/internal/app/system/auth"
	"github.com/dalemusser/devhub/internal/app/system/timeouts"
	"github.com/dalemusser/devhub/internal/domain/models"
)

// ServeList handles GET /teams: the caller's teams followed by the public
// teams they have not joined, each with its resolved member summaries.
func (h *Handler) ServeList(w http.ResponseWriter, r *http.Request) {
	p, _ := auth.CurrentPrincipal(r)

	ctx, cancel := timeouts.WithTimeout(r.Context(), timeouts.List(), h.Log, "list visible teams")
	defer cancel()

	list, err := h.Directory.ListVisibleTeams(ctx, p.ID)
	if err != nil {
		apierrors.Write(w, r, h.Log, err)
		return
	}
	h.writeTeams(ctx, w, r, list, p.ID)
}

// ServePending handles GET /teams/invites.
func (h *Handler) ServePending(w http.ResponseWriter, r *http.Request) {
	p, _ := auth.CurrentPrincipal(r)

	ctx, cancel := timeouts.WithTimeout(r.Context(), timeouts.List(), h.Log, "pending invites")
	defer cancel()

	list, err := h.Invites.PendingFor(ctx, p.ID)
	if err != nil {
		apierrors.Write(w, r, h.Log, err)
		return
	}
	h.writeTeams(ctx, w, r, list, p.ID)
}

// writeTeams resolves members under ctx, the caller's list deadline.
func (h *Handler) writeTeams(ctx context.Context, w http.ResponseWriter, r *http.Request, list []models.Team, viewerID string) {
	members, err := h.Resolver.ResolveForTeams(ctx, list)
	if err != nil {
		apierrors.Write(w, r, h.Log, err)
		return
	}

	resp := teamListResponse{Teams: make([]teamView, 0, len(list))}
	for _, t := range list {
		resp.Teams = append(resp.Teams, newTeamView(t, viewerID, members[t.ID.Hex()]))
	}
	apierrors.WriteJSON(w, http.StatusOK, resp)
}
