// internal/app/features/teams/actions.go
package teams

import (
	"context"
	"net/http"
	"strings"

	apierrors "github.com/dalemusser/devhub/internal/app/features/errors"
	"github.com/dalemusser/devhub/internal/app/policy/teampolicy"
	"github.com/dalemusser/devhub/internal/app/system/apperr"
	"github.com/dalemusser/devhub/internal/app/system/auth"
	"github.com/dalemusser/devhub/internal/app/system/timeouts"
	"github.com/dalemusser/devhub/internal/domain/models"
	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"
)

// HandleJoin handles POST /teams/{id}/join.
func (h *Handler) HandleJoin(w http.ResponseWriter, r *http.Request) {
	h.withTeam(w, r, "join team", func(ctx context.Context, t models.Team, p auth.Principal) (models.Team, error) {
		return h.Directory.JoinPublicTeam(ctx, t, p)
	})
}

// HandleInvite handles POST /teams/{id}/invites with either
// {"user_id": "..."} or {"email": "..."}.
func (h *Handler) HandleInvite(w http.ResponseWriter, r *http.Request) {
	var req inviteRequest
	if !decode(w, r, &req) {
		return
	}
	req.UserID = strings.TrimSpace(req.UserID)
	req.Email = strings.TrimSpace(req.Email)
	if (req.UserID == "") == (req.Email == "") {
		writeBadRequest(w, "provide exactly one of user_id or email")
		return
	}

	h.withTeam(w, r, "invite", func(ctx context.Context, t models.Team, p auth.Principal) (models.Team, error) {
		if req.Email != "" {
			return h.Invites.InviteByEmail(ctx, t, p.ID, req.Email)
		}
		return h.Invites.Invite(ctx, t, p.ID, req.UserID)
	})
}

// HandleAccept handles POST /teams/{id}/invites/accept for the caller.
func (h *Handler) HandleAccept(w http.ResponseWriter, r *http.Request) {
	h.withTeam(w, r, "accept invite", func(ctx context.Context, t models.Team, p auth.Principal) (models.Team, error) {
		updated, err := h.Invites.AcceptInvite(ctx, t, p.ID)
		if err == nil {
			h.Log.Info("invite accepted", zap.String("team_id", t.ID.Hex()), zap.String("user_id", p.ID))
		}
		return updated, err
	})
}

// HandleReject handles POST /teams/{id}/invites/reject for the caller.
func (h *Handler) HandleReject(w http.ResponseWriter, r *http.Request) {
	h.withTeam(w, r, "reject invite", func(ctx context.Context, t models.Team, p auth.Principal) (models.Team, error) {
		return h.Invites.RejectInvite(ctx, t, p.ID)
	})
}

// withTeam loads the {id} team, runs fn against that snapshot, and writes
// the updated team. Like ServeTeam, a private team is reported missing to
// callers who are neither members nor invited.
func (h *Handler) withTeam(w http.ResponseWriter, r *http.Request, op string, fn func(context.Context, models.Team, auth.Principal) (models.Team, error)) {
	p, _ := auth.CurrentPrincipal(r)

	ctx, cancel := timeouts.WithTimeout(r.Context(), timeouts.Write(), h.Log, op)
	defer cancel()

	t, err := h.Directory.Get(ctx, chi.URLParam(r, "id"))
	if err != nil {
		apierrors.Write(w, r, h.Log, err)
		return
	}
	if !teampolicy.CanView(t, p.ID) {
		apierrors.Write(w, r, h.Log, apperr.NotFound(op, "team"))
		return
	}

	updated, err := fn(ctx, t, p)
	if err != nil {
		apierrors.Write(w, r, h.Log, err)
		return
	}

	found, err := h.Resolver.ResolveBatch(ctx, updated.Members)
	if err != nil {
		// The write already happened; report it without names.
		h.Log.Warn("resolve members after write", zap.String("op", op), zap.Error(err))
		found = nil
	}
	apierrors.WriteJSON(w, http.StatusOK, newTeamView(updated, p.ID, summaries(found, updated.Members)))
}

func writeBadRequest(w http.ResponseWriter, msg string) {
	apierrors.BadRequest(w, msg)
}
