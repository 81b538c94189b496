// internal/app/features/teams/types.go
package teams

import (
	"time"

	"github.com/dalemusser/devhub/internal/app/invitations"
	"github.com/dalemusser/devhub/internal/app/system/htmlsanitize"
	"github.com/dalemusser/devhub/internal/domain/models"
)

// teamView is a team as seen by one viewer. Invitees are listed only to
// members.
type teamView struct {
	ID          string                 `json:"id"`
	Name        string                 `json:"name"`
	Description string                 `json:"description"`
	DescHTML    string                 `json:"description_html"`
	CreatedBy   string                 `json:"created_by"`
	CreatedAt   time.Time              `json:"created_at"`
	IsPublic    bool                   `json:"is_public"`
	MemberCount int                    `json:"member_count"`
	Members     []models.MemberSummary `json:"members"`
	Invited     []models.MemberSummary `json:"invited,omitempty"`
	Viewer      string                 `json:"viewer"` // none, invited, member
}

func newTeamView(t models.Team, viewerID string, members []models.MemberSummary) teamView {
	if members == nil {
		members = []models.MemberSummary{}
	}
	return teamView{
		ID:          t.ID.Hex(),
		Name:        t.Name,
		Description: t.Description,
		DescHTML:    htmlsanitize.TextHTML(t.Description),
		CreatedBy:   t.CreatedBy,
		CreatedAt:   t.CreatedAt,
		IsPublic:    t.IsPublic,
		MemberCount: len(t.Members),
		Members:     members,
		Viewer:      invitations.StateOf(t, viewerID).String(),
	}
}

type teamListResponse struct {
	Teams []teamView `json:"teams"`
}

type createTeamRequest struct {
	Name        string `json:"name"`
	Description string `json:"description"`
	IsPublic    bool   `json:"is_public"`
}

// inviteRequest carries exactly one of UserID or Email.
type inviteRequest struct {
	UserID string `json:"user_id"`
	Email  string `json:"email"`
}
