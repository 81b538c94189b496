// internal/app/directory/directory.go
// Package directory creates teams and lists the teams a user can see.
package directory

import (
	"context"
	"errors"
	"strings"

	"github.com/dalemusser/devhub/internal/app/policy/teampolicy"
	teamstore "github.com/dalemusser/devhub/internal/app/store/teams"
	"github.com/dalemusser/devhub/internal/app/system/apperr"
	"github.com/dalemusser/devhub/internal/app/system/auth"
	"github.com/dalemusser/devhub/internal/app/system/metrics"
	"github.com/dalemusser/devhub/internal/app/system/normalize"
	"github.com/dalemusser/devhub/internal/domain/models"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"
)

// ErrTeamNotPublic is the cause of a validation error from JoinPublicTeam.
var ErrTeamNotPublic = teamstore.ErrNotPublic

// TeamStore is the subset of the team store the directory writes through.
type TeamStore interface {
	Create(ctx context.Context, t models.Team) (models.Team, error)
	GetByID(ctx context.Context, id primitive.ObjectID) (models.Team, error)
	ListByMember(ctx context.Context, userID string) ([]models.Team, error)
	ListPublicExcluding(ctx context.Context, userID string) ([]models.Team, error)
	JoinPublic(ctx context.Context, id primitive.ObjectID, userID string) (models.Team, error)
}

// ProfileStore keeps the denormalized member summary in sync.
type ProfileStore interface {
	EnsureSummary(ctx context.Context, sum models.MemberSummary) error
}

type Service struct {
	Teams    TeamStore
	Profiles ProfileStore
	Metrics  *metrics.Metrics
	Log      *zap.Logger
}

func NewService(teams TeamStore, profiles ProfileStore, m *metrics.Metrics, logger *zap.Logger) *Service {
	return &Service{Teams: teams, Profiles: profiles, Metrics: m, Log: logger}
}

// CreateTeam validates the name, upserts the creator's summary, then
// inserts the team with the creator as its only member. The summary upsert
// is not undone if the insert fails.
func (s *Service) CreateTeam(ctx context.Context, creator auth.Principal, name, description string, isPublic bool) (team models.Team, err error) {
	const op = "create team"
	defer func() { s.Metrics.ObserveOp("create_team", err) }()

	name = normalize.Name(name)
	if name == "" {
		return models.Team{}, apperr.Validation(op, "team name is required")
	}
	if normalize.UserID(creator.ID) == "" {
		return models.Team{}, apperr.Validation(op, "creator id is required")
	}

	if err := s.Profiles.EnsureSummary(ctx, summaryOf(creator)); err != nil {
		return models.Team{}, apperr.Store(op, err)
	}

	team, err = s.Teams.Create(ctx, models.Team{
		Name:        name,
		Description: strings.TrimSpace(description),
		CreatedBy:   creator.ID,
		IsPublic:    isPublic,
	})
	if err != nil {
		return models.Team{}, apperr.Store(op, err)
	}

	s.Log.Info("team created",
		zap.String("team_id", team.ID.Hex()),
		zap.String("created_by", creator.ID),
		zap.Bool("public", isPublic))
	return team, nil
}

// ListVisibleTeams returns the teams userID belongs to, newest first,
// followed by public teams userID has not joined, newest first.
//
// The two reads run concurrently and are not isolated from each other. A
// team that changes between them (made public, or gains userID as a
// member) may show up once, or not at all, for this call.
func (s *Service) ListVisibleTeams(ctx context.Context, userID string) ([]models.Team, error) {
	const op = "list teams"
	if normalize.UserID(userID) == "" {
		return nil, apperr.Validation(op, "user id is required")
	}

	var member, public []models.Team
	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		var err error
		member, err = s.Teams.ListByMember(gctx, userID)
		return err
	})
	g.Go(func() error {
		var err error
		public, err = s.Teams.ListPublicExcluding(gctx, userID)
		return err
	})
	if err := g.Wait(); err != nil {
		return nil, apperr.Store(op, err)
	}

	seen := make(map[primitive.ObjectID]struct{}, len(member)+len(public))
	out := make([]models.Team, 0, len(member)+len(public))
	for _, list := range [][]models.Team{member, public} {
		for _, t := range list {
			if _, dup := seen[t.ID]; dup {
				continue
			}
			seen[t.ID] = struct{}{}
			out = append(out, t)
		}
	}
	return out, nil
}

// JoinPublicTeam adds the user to a public team. The snapshot must say the
// team is public; the store re-checks it in the same write and also drops
// any pending invite for the user. Joining twice is a no-op.
func (s *Service) JoinPublicTeam(ctx context.Context, team models.Team, user auth.Principal) (joined models.Team, err error) {
	const op = "join"
	defer func() { s.Metrics.ObserveOp("join", err) }()

	if err := teampolicy.CheckJoin(team, user.ID); err != nil {
		return models.Team{}, err
	}
	if err := s.Profiles.EnsureSummary(ctx, summaryOf(user)); err != nil {
		return models.Team{}, apperr.Store(op, err)
	}

	joined, err = s.Teams.JoinPublic(ctx, team.ID, user.ID)
	switch {
	case errors.Is(err, teamstore.ErrNotPublic):
		return models.Team{}, apperr.Invalid(op, ErrTeamNotPublic)
	case errors.Is(err, teamstore.ErrNotFound):
		return models.Team{}, apperr.NotFound(op, "team")
	case err != nil:
		return models.Team{}, apperr.Store(op, err)
	}
	return joined, nil
}

// Get loads a team by its hex id.
func (s *Service) Get(ctx context.Context, teamID string) (models.Team, error) {
	const op = "get team"
	oid, err := primitive.ObjectIDFromHex(teamID)
	if err != nil {
		return models.Team{}, apperr.NotFound(op, "team")
	}
	t, err := s.Teams.GetByID(ctx, oid)
	switch {
	case errors.Is(err, teamstore.ErrNotFound):
		return models.Team{}, apperr.NotFound(op, "team")
	case err != nil:
		return models.Team{}, apperr.Store(op, err)
	}
	return t, nil
}

func summaryOf(p auth.Principal) models.MemberSummary {
	return models.MemberSummary{
		ID:       p.ID,
		Name:     normalize.DisplayName(p.DisplayName, models.UnknownUserName),
		PhotoURL: p.PhotoURL,
		Email:    normalize.Email(p.Email),
	}
}
