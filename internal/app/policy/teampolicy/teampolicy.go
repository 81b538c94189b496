// internal/app/policy/teampolicy/teampolicy.go
package teampolicy

import (
	"strings"

	teamstore "github.com/dalemusser/devhub/internal/app/store/teams"
	"github.com/dalemusser/devhub/internal/app/system/apperr"
	"github.com/dalemusser/devhub/internal/domain/models"
)

// CheckInvite reports whether inviterID may invite targetID to team, judged
// against the given snapshot only. The store write that follows is guarded
// separately, so a stale snapshot can at worst produce a no-op.
//
// Order matters for callers: a target that is already a member is reported
// as AlreadyMember even if a stale invite is also recorded.
func CheckInvite(team models.Team, inviterID, targetID string) error {
	const op = "invite"
	if strings.TrimSpace(targetID) == "" {
		return apperr.Validation(op, "a user to invite is required")
	}
	if !team.HasMember(inviterID) {
		return apperr.Validation(op, "only team members can send invites")
	}
	if team.HasMember(targetID) {
		return apperr.AlreadyMember(op, targetID)
	}
	if team.HasInvite(targetID) {
		return apperr.AlreadyInvited(op, targetID)
	}
	return nil
}

// CheckJoin reports whether userID may join team without an invite. A
// private team yields a validation error wrapping teamstore.ErrNotPublic.
func CheckJoin(team models.Team, userID string) error {
	if strings.TrimSpace(userID) == "" {
		return apperr.Validation("join", "user id is required")
	}
	if !team.IsPublic {
		return apperr.Invalid("join", teamstore.ErrNotPublic)
	}
	return nil
}

// CanView reports whether userID may see team details.
func CanView(team models.Team, userID string) bool {
	return team.IsPublic || team.HasMember(userID) || team.HasInvite(userID)
}

// CanChat reports whether userID may read and post in the team channel.
func CanChat(team models.Team, userID string) bool {
	return userID != "" && team.HasMember(userID)
}
