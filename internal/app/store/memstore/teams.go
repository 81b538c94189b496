package memstore

import (
	"context"
	"sync"

	teamstore "github.com/dalemusser/devhub/internal/app/store/teams"
	"github.com/dalemusser/devhub/internal/domain/models"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

// Teams is the in-memory counterpart of teamstore.Store.
type Teams struct {
	failer
	mu    sync.Mutex
	teams map[string]models.Team

	// AfterMemberRead, when set, runs after ListByMember has read its
	// result and before it returns. Tests use it to interleave writes.
	AfterMemberRead func()
}

// Put stores t as-is. Test seeding only.
func (s *Teams) Put(t models.Team) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.teams[t.ID.Hex()] = cloneTeam(t)
}

func (s *Teams) Create(ctx context.Context, t models.Team) (models.Team, error) {
	if err := s.failure(); err != nil {
		return models.Team{}, err
	}
	t.ID = primitive.NewObjectID()
	t.CreatedAt = defaultNow()
	t.Members = []string{t.CreatedBy}
	t.Invites = []string{}

	s.mu.Lock()
	s.teams[t.ID.Hex()] = cloneTeam(t)
	s.mu.Unlock()
	return cloneTeam(t), nil
}

func (s *Teams) GetByID(ctx context.Context, id primitive.ObjectID) (models.Team, error) {
	if err := s.failure(); err != nil {
		return models.Team{}, err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	t, ok := s.teams[id.Hex()]
	if !ok {
		return models.Team{}, teamstore.ErrNotFound
	}
	return cloneTeam(t), nil
}

func (s *Teams) ListByMember(ctx context.Context, userID string) ([]models.Team, error) {
	out, err := s.list(func(t models.Team) bool { return t.HasMember(userID) })
	if s.AfterMemberRead != nil {
		s.AfterMemberRead()
	}
	return out, err
}

func (s *Teams) ListPublicExcluding(ctx context.Context, userID string) ([]models.Team, error) {
	return s.list(func(t models.Team) bool { return t.IsPublic && !t.HasMember(userID) })
}

func (s *Teams) ListInvited(ctx context.Context, userID string) ([]models.Team, error) {
	return s.list(func(t models.Team) bool { return t.HasInvite(userID) })
}

func (s *Teams) list(match func(models.Team) bool) ([]models.Team, error) {
	if err := s.failure(); err != nil {
		return nil, err
	}
	s.mu.Lock()
	out := []models.Team{}
	for _, t := range s.teams {
		if match(t) {
			out = append(out, cloneTeam(t))
		}
	}
	s.mu.Unlock()
	sortNewestFirst(out)
	return out, nil
}

func (s *Teams) AddInvite(ctx context.Context, id primitive.ObjectID, userID string) (models.Team, error) {
	return s.update(id, func(t *models.Team) error {
		if t.HasMember(userID) {
			return teamstore.ErrAlreadyMember
		}
		t.Invites = addToSet(t.Invites, userID)
		return nil
	})
}

func (s *Teams) AcceptInvite(ctx context.Context, id primitive.ObjectID, userID string) (models.Team, error) {
	return s.update(id, func(t *models.Team) error {
		if !t.HasInvite(userID) {
			return teamstore.ErrNotInvited
		}
		t.Invites = pull(t.Invites, userID)
		t.Members = addToSet(t.Members, userID)
		return nil
	})
}

func (s *Teams) RemoveInvite(ctx context.Context, id primitive.ObjectID, userID string) (models.Team, error) {
	return s.update(id, func(t *models.Team) error {
		t.Invites = pull(t.Invites, userID)
		return nil
	})
}

func (s *Teams) JoinPublic(ctx context.Context, id primitive.ObjectID, userID string) (models.Team, error) {
	return s.update(id, func(t *models.Team) error {
		if !t.IsPublic {
			return teamstore.ErrNotPublic
		}
		t.Members = addToSet(t.Members, userID)
		t.Invites = pull(t.Invites, userID)
		return nil
	})
}

// update applies fn to a copy of the team under the lock and stores the
// result only when fn succeeds, so a failed guard changes nothing.
func (s *Teams) update(id primitive.ObjectID, fn func(*models.Team) error) (models.Team, error) {
	if err := s.failure(); err != nil {
		return models.Team{}, err
	}
	s.mu.Lock()
	defer s.mu.Unlock()

	cur, ok := s.teams[id.Hex()]
	if !ok {
		return models.Team{}, teamstore.ErrNotFound
	}
	next := cloneTeam(cur)
	if err := fn(&next); err != nil {
		return models.Team{}, err
	}
	s.teams[id.Hex()] = next
	return cloneTeam(next), nil
}
