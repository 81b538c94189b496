// internal/app/features/teams/view.go
package teams

import (
	"net/http"

	apierrors "github.com/dalemusser/devhub/internal/app/features/errors"
	"github.com/dalemusser/devhub/internal/app/policy/teampolicy"
	"github.com/dalemusser/devhub/internal/app/resolver"
	"github.com/dalemusser/devhub/internal/app/system/apperr"
	"github.com/dalemusser/devhub/internal/app/system/auth"
	"github.com/dalemusser/devhub/internal/app/system/timeouts"
	"github.com/dalemusser/devhub/internal/domain/models"
	"github.com/go-chi/chi/v5"
)

// ServeTeam handles GET /teams/{id}. A private team is reported missing to
// anyone who is neither a member nor invited.
func (h *Handler) ServeTeam(w http.ResponseWriter, r *http.Request) {
	p, _ := auth.CurrentPrincipal(r)

	ctx, cancel := timeouts.WithTimeout(r.Context(), timeouts.Read(), h.Log, "view team")
	defer cancel()

	t, err := h.Directory.Get(ctx, chi.URLParam(r, "id"))
	if err != nil {
		apierrors.Write(w, r, h.Log, err)
		return
	}
	if !teampolicy.CanView(t, p.ID) {
		apierrors.Write(w, r, h.Log, apperr.NotFound("view team", "team"))
		return
	}

	ids := t.Members
	isMember := t.HasMember(p.ID)
	if isMember {
		ids = append(append([]string{}, t.Members...), t.Invites...)
	}
	found, err := h.Resolver.ResolveBatch(ctx, ids)
	if err != nil {
		apierrors.Write(w, r, h.Log, err)
		return
	}

	view := newTeamView(t, p.ID, summaries(found, t.Members))
	if isMember {
		view.Invited = summaries(found, t.Invites)
	}
	apierrors.WriteJSON(w, http.StatusOK, view)
}

// summaries keeps ids order; unresolved ids get a placeholder.
func summaries(found map[string]models.MemberSummary, ids []string) []models.MemberSummary {
	out := make([]models.MemberSummary, 0, len(ids))
	for _, id := range ids {
		out = append(out, resolver.Lookup(found, id))
	}
	return out
}
