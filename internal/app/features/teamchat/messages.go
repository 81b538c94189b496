// internal/app/features/teamchat/messages.go
package teamchat

import (
	"encoding/json"
	"net/http"

	apierrors "github.com/dalemusser/devhub/internal/app/features/errors"
	"github.com/dalemusser/devhub/internal/app/resolver"
	"github.com/dalemusser/devhub/internal/app/system/auth"
	"github.com/dalemusser/devhub/internal/app/system/timeouts"
	"github.com/dalemusser/devhub/internal/domain/models"
	"github.com/go-chi/chi/v5"
)

const maxBodyBytes = 32 << 10

// ServeMessages handles GET /teams/{id}/messages: the channel in order,
// grouped by day and rendered for the caller, plus the team's members.
func (h *Handler) ServeMessages(w http.ResponseWriter, r *http.Request) {
	p, _ := auth.CurrentPrincipal(r)

	ctx, cancel := timeouts.WithTimeout(r.Context(), timeouts.Snapshot(), h.Log, "list messages")
	defer cancel()

	ch, err := h.Chat.Open(ctx, chi.URLParam(r, "id"), p)
	if err != nil {
		apierrors.Write(w, r, h.Log, err)
		return
	}
	msgs, err := ch.Messages(ctx)
	if err != nil {
		apierrors.Write(w, r, h.Log, err)
		return
	}

	team := ch.Team()
	found, err := h.Resolver.ResolveBatch(ctx, team.Members)
	if err != nil {
		apierrors.Write(w, r, h.Log, err)
		return
	}
	members := make([]models.MemberSummary, 0, len(team.Members))
	for _, id := range team.Members {
		members = append(members, resolver.Lookup(found, id))
	}

	apierrors.WriteJSON(w, http.StatusOK, messagesResponse{
		TeamID:  team.ID.Hex(),
		Days:    h.render(msgs, p.ID),
		Members: members,
	})
}

// HandleSend handles POST /teams/{id}/messages with {"text": "..."}.
func (h *Handler) HandleSend(w http.ResponseWriter, r *http.Request) {
	p, _ := auth.CurrentPrincipal(r)

	var req sendRequest
	r.Body = http.MaxBytesReader(w, r.Body, maxBodyBytes)
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		apierrors.BadRequest(w, "request body must be a JSON object")
		return
	}

	ctx, cancel := timeouts.WithTimeout(r.Context(), timeouts.Write(), h.Log, "send message")
	defer cancel()

	ch, err := h.Chat.Open(ctx, chi.URLParam(r, "id"), p)
	if err != nil {
		apierrors.Write(w, r, h.Log, err)
		return
	}
	msg, err := ch.Send(ctx, p, req.Text)
	if err != nil {
		apierrors.Write(w, r, h.Log, err)
		return
	}

	resp := sentResponse{
		ID:       msg.ID.Hex(),
		TeamID:   msg.TeamID,
		Text:     msg.Text,
		UserID:   msg.UserID,
		UserName: msg.UserName,
	}
	if msg.Timestamp != nil {
		ts := msg.Timestamp.In(h.Loc)
		resp.Timestamp = &ts
	}
	apierrors.WriteJSON(w, http.StatusCreated, resp)
}
