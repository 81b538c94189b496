// internal/app/invitations/invitations.go
// Package invitations moves a (team, user) pair through
// NONE → INVITED → MEMBER, with INVITED → NONE on rejection.
package invitations

import (
	"context"
	"errors"

	"github.com/dalemusser/devhub/internal/app/policy/teampolicy"
	teamstore "github.com/dalemusser/devhub/internal/app/store/teams"
	userstore "github.com/dalemusser/devhub/internal/app/store/users"
	"github.com/dalemusser/devhub/internal/app/system/apperr"
	"github.com/dalemusser/devhub/internal/app/system/metrics"
	"github.com/dalemusser/devhub/internal/app/system/normalize"
	"github.com/dalemusser/devhub/internal/domain/models"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.uber.org/zap"
)

// State of one user with respect to one team.
type State int

const (
	StateNone State = iota
	StateInvited
	StateMember
)

func (s State) String() string {
	switch s {
	case StateInvited:
		return "invited"
	case StateMember:
		return "member"
	default:
		return "none"
	}
}

// ErrNotInvited is the cause of the precondition error from AcceptInvite.
var ErrNotInvited = teamstore.ErrNotInvited

// TeamStore is the subset of the team store the workflow writes through.
type TeamStore interface {
	AddInvite(ctx context.Context, id primitive.ObjectID, userID string) (models.Team, error)
	AcceptInvite(ctx context.Context, id primitive.ObjectID, userID string) (models.Team, error)
	RemoveInvite(ctx context.Context, id primitive.ObjectID, userID string) (models.Team, error)
	ListInvited(ctx context.Context, userID string) ([]models.Team, error)
}

// UserLookup resolves an email address to a user record.
type UserLookup interface {
	GetByEmail(ctx context.Context, email string) (models.User, error)
}

type Service struct {
	Teams   TeamStore
	Users   UserLookup
	Metrics *metrics.Metrics
	Log     *zap.Logger
}

func NewService(teams TeamStore, users UserLookup, m *metrics.Metrics, logger *zap.Logger) *Service {
	return &Service{Teams: teams, Users: users, Metrics: m, Log: logger}
}

// StateOf reads the state of userID from a team snapshot.
func StateOf(team models.Team, userID string) State {
	switch {
	case team.HasMember(userID):
		return StateMember
	case team.HasInvite(userID):
		return StateInvited
	default:
		return StateNone
	}
}

// Invite records a pending invite for targetUserID. Preconditions are
// checked against the caller's snapshot; the store write is a set-add that
// refuses targets who are already members. Two concurrent inviters may both
// pass the snapshot check, which is harmless because the add is idempotent.
func (s *Service) Invite(ctx context.Context, team models.Team, inviterID, targetUserID string) (updated models.Team, err error) {
	const op = "invite"
	defer func() { s.Metrics.ObserveOp("invite", err) }()

	targetUserID = normalize.UserID(targetUserID)
	if err := teampolicy.CheckInvite(team, inviterID, targetUserID); err != nil {
		return models.Team{}, err
	}

	updated, err = s.Teams.AddInvite(ctx, team.ID, targetUserID)
	switch {
	case errors.Is(err, teamstore.ErrAlreadyMember):
		return models.Team{}, apperr.AlreadyMember(op, targetUserID)
	case errors.Is(err, teamstore.ErrNotFound):
		return models.Team{}, apperr.NotFound(op, "team")
	case err != nil:
		return models.Team{}, apperr.Store(op, err)
	}

	s.Log.Info("invite sent",
		zap.String("team_id", team.ID.Hex()),
		zap.String("inviter", inviterID),
		zap.String("invitee", targetUserID))
	return updated, nil
}

// AcceptInvite moves userID from invites to members in one write. The
// write only matches while the invite is still pending, so an accept that
// races a reject either wins outright or changes nothing.
func (s *Service) AcceptInvite(ctx context.Context, team models.Team, userID string) (updated models.Team, err error) {
	const op = "accept invite"
	defer func() { s.Metrics.ObserveOp("accept_invite", err) }()

	if normalize.UserID(userID) == "" {
		return models.Team{}, apperr.Validation(op, "user id is required")
	}

	updated, err = s.Teams.AcceptInvite(ctx, team.ID, userID)
	switch {
	case errors.Is(err, teamstore.ErrNotInvited):
		return models.Team{}, apperr.Precondition(op, ErrNotInvited)
	case errors.Is(err, teamstore.ErrNotFound):
		return models.Team{}, apperr.NotFound(op, "team")
	case err != nil:
		return models.Team{}, apperr.Store(op, err)
	}
	return updated, nil
}

// RejectInvite removes userID from invites. Members are untouched, and
// rejecting an invite that is not pending succeeds without change.
func (s *Service) RejectInvite(ctx context.Context, team models.Team, userID string) (updated models.Team, err error) {
	const op = "reject invite"
	defer func() { s.Metrics.ObserveOp("reject_invite", err) }()

	if normalize.UserID(userID) == "" {
		return models.Team{}, apperr.Validation(op, "user id is required")
	}

	updated, err = s.Teams.RemoveInvite(ctx, team.ID, userID)
	switch {
	case errors.Is(err, teamstore.ErrNotFound):
		return models.Team{}, apperr.NotFound(op, "team")
	case err != nil:
		return models.Team{}, apperr.Store(op, err)
	}
	return updated, nil
}

// InviteByEmail resolves email to a user and invites them. The resolved id
// is not re-checked before the invite is written.
func (s *Service) InviteByEmail(ctx context.Context, team models.Team, inviterID, email string) (models.Team, error) {
	const op = "invite by email"

	email = normalize.Email(email)
	if email == "" {
		return models.Team{}, apperr.Validation(op, "email is required")
	}

	u, err := s.Users.GetByEmail(ctx, email)
	switch {
	case errors.Is(err, userstore.ErrNotFound):
		return models.Team{}, apperr.UserNotFound(op, email)
	case err != nil:
		return models.Team{}, apperr.Store(op, err)
	}
	return s.Invite(ctx, team, inviterID, u.ID)
}

// PendingFor lists the teams where userID has an invite waiting.
func (s *Service) PendingFor(ctx context.Context, userID string) ([]models.Team, error) {
	if normalize.UserID(userID) == "" {
		return nil, apperr.Validation("pending invites", "user id is required")
	}
	teams, err := s.Teams.ListInvited(ctx, userID)
	if err != nil {
		return nil, apperr.Store("pending invites", err)
	}
	return teams, nil
}
