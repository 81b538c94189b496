package memstore

import (
	"context"
	"slices"
	"sort"
	"sync"

	userstore "github.com/dalemusser/devhub/internal/app/store/users"
	"github.com/dalemusser/devhub/internal/app/system/normalize"
	"github.com/dalemusser/devhub/internal/domain/models"
)

// Users is the in-memory counterpart of userstore.Store.
type Users struct {
	failer
	mu    sync.Mutex
	users map[string]models.User

	// SummaryQueries counts FindSummaries calls.
	SummaryQueries counter

	// BeforeSummaries, when set, sees the context of every FindSummaries
	// call before it runs.
	BeforeSummaries func(ctx context.Context)
}

// Put stores u as-is. Test seeding only.
func (s *Users) Put(u models.User) {
	s.mu.Lock()
	defer s.mu.Unlock()
	u.Email = normalize.Email(u.Email)
	s.users[u.ID] = u
}

func (s *Users) EnsureSummary(ctx context.Context, sum models.MemberSummary) error {
	if err := s.failure(); err != nil {
		return err
	}
	s.mu.Lock()
	defer s.mu.Unlock()

	now := defaultNow()
	u, ok := s.users[sum.ID]
	if !ok {
		u = models.User{ID: sum.ID, Skills: []string{}, CreatedAt: now}
	}
	u.Name = sum.Name
	u.Email = normalize.Email(sum.Email)
	u.PhotoURL = sum.PhotoURL
	u.UpdatedAt = now
	s.users[sum.ID] = u
	return nil
}

func (s *Users) CreateIfMissing(ctx context.Context, u models.User) (bool, error) {
	if err := s.failure(); err != nil {
		return false, err
	}
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.users[u.ID]; ok {
		return false, nil
	}
	now := defaultNow()
	u.Name = normalize.Name(u.Name)
	u.Email = normalize.Email(u.Email)
	if u.Skills == nil {
		u.Skills = []string{}
	}
	u.CreatedAt, u.UpdatedAt = now, now
	s.users[u.ID] = u
	return true, nil
}

func (s *Users) GetByID(ctx context.Context, id string) (models.User, error) {
	if err := s.failure(); err != nil {
		return models.User{}, err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	u, ok := s.users[id]
	if !ok {
		return models.User{}, userstore.ErrNotFound
	}
	return u, nil
}

func (s *Users) GetByEmail(ctx context.Context, email string) (models.User, error) {
	if err := s.failure(); err != nil {
		return models.User{}, err
	}
	email = normalize.Email(email)

	s.mu.Lock()
	defer s.mu.Unlock()
	var matches []models.User
	for _, u := range s.users {
		if u.Email == email && email != "" {
			matches = append(matches, u)
		}
	}
	if len(matches) == 0 {
		return models.User{}, userstore.ErrNotFound
	}
	sort.Slice(matches, func(i, j int) bool { return matches[i].CreatedAt.Before(matches[j].CreatedAt) })
	return matches[0], nil
}

func (s *Users) FindSummaries(ctx context.Context, ids []string) ([]models.MemberSummary, error) {
	s.SummaryQueries.inc()
	if s.BeforeSummaries != nil {
		s.BeforeSummaries(ctx)
	}
	if err := s.failure(); err != nil {
		return nil, err
	}
	if len(ids) > userstore.MaxIDsPerQuery {
		return nil, userstore.ErrTooManyIDs
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	out := []models.MemberSummary{}
	for id, u := range s.users {
		if slices.Contains(ids, id) {
			out = append(out, models.MemberSummary{ID: u.ID, Name: u.Name, PhotoURL: u.PhotoURL, Email: u.Email})
		}
	}
	return out, nil
}
