package teampolicy_test

import (
	"errors"
	"testing"

	"github.com/dalemusser/devhub/internal/app/policy/teampolicy"
	teamstore "github.com/dalemusser/devhub/internal/app/store/teams"
	"github.com/dalemusser/devhub/internal/app/system/apperr"
	"github.com/dalemusser/devhub/internal/domain/models"
)

func TestCheckInvite(t *testing.T) {
	team := models.Team{Name: "Alpha", Members: []string{"u1"}, Invites: []string{"u2"}}

	tests := []struct {
		name    string
		inviter string
		target  string
		want    error
	}{
		{"ok", "u1", "u3", nil},
		{"empty target", "u1", "  ", apperr.ErrValidation},
		{"inviter not member", "u9", "u3", apperr.ErrValidation},
		{"target is member", "u1", "u1", apperr.ErrAlreadyMember},
		{"target already invited", "u1", "u2", apperr.ErrAlreadyInvited},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := teampolicy.CheckInvite(team, tt.inviter, tt.target)
			if tt.want == nil {
				if err != nil {
					t.Fatalf("CheckInvite() error = %v, want nil", err)
				}
				return
			}
			if !errors.Is(err, tt.want) {
				t.Errorf("CheckInvite() error = %v, want %v", err, tt.want)
			}
		})
	}
}

func TestCheckJoin(t *testing.T) {
	if err := teampolicy.CheckJoin(models.Team{IsPublic: true}, "u3"); err != nil {
		t.Errorf("public team: %v", err)
	}
	err := teampolicy.CheckJoin(models.Team{Name: "Secret"}, "u3")
	if !errors.Is(err, apperr.ErrValidation) || !errors.Is(err, teamstore.ErrNotPublic) {
		t.Errorf("private team: error = %v, want validation wrapping ErrNotPublic", err)
	}
	if err := teampolicy.CheckJoin(models.Team{IsPublic: true}, ""); !errors.Is(err, apperr.ErrValidation) {
		t.Errorf("empty user: error = %v, want validation", err)
	}
}

func TestCanViewAndChat(t *testing.T) {
	private := models.Team{Members: []string{"u1"}, Invites: []string{"u2"}}

	if !teampolicy.CanView(private, "u1") || !teampolicy.CanView(private, "u2") {
		t.Error("members and invitees should see a private team")
	}
	if teampolicy.CanView(private, "u3") {
		t.Error("outsider should not see a private team")
	}
	if !teampolicy.CanView(models.Team{IsPublic: true}, "u3") {
		t.Error("anyone should see a public team")
	}
	if !teampolicy.CanChat(private, "u1") {
		t.Error("member should be able to chat")
	}
	if teampolicy.CanChat(private, "u2") {
		t.Error("invitee should not be able to chat")
	}
}
