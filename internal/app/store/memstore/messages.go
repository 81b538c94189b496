package memstore

import (
	"context"
	"slices"
	"sync"
	"time"

	"github.com/dalemusser/devhub/internal/domain/models"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

// Messages is the in-memory counterpart of messagestore.Store.
type Messages struct {
	failer
	mu     sync.Mutex
	byTeam map[string][]models.Message
	now    func() time.Time

	// Lists counts ListByTeam calls.
	Lists counter
}

// SetClock replaces the timestamp source used by Append.
func (s *Messages) SetClock(now func() time.Time) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.now = now
}

// Put stores m as-is (including a nil Timestamp). Test seeding only.
func (s *Messages) Put(m models.Message) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if m.ID.IsZero() {
		m.ID = primitive.NewObjectID()
	}
	s.byTeam[m.TeamID] = append(s.byTeam[m.TeamID], m)
}

func (s *Messages) Append(ctx context.Context, m models.Message) (models.Message, error) {
	if err := s.failure(); err != nil {
		return models.Message{}, err
	}
	s.mu.Lock()
	defer s.mu.Unlock()

	ts := s.now()
	m.ID = primitive.NewObjectID()
	m.Timestamp = &ts
	s.byTeam[m.TeamID] = append(s.byTeam[m.TeamID], m)
	return m, nil
}

func (s *Messages) ListByTeam(ctx context.Context, teamID string) ([]models.Message, error) {
	s.Lists.inc()
	if err := s.failure(); err != nil {
		return nil, err
	}
	s.mu.Lock()
	out := slices.Clone(s.byTeam[teamID])
	s.mu.Unlock()

	if out == nil {
		out = []models.Message{}
	}
	slices.SortStableFunc(out, func(a, b models.Message) int {
		switch {
		case a.Before(b):
			return -1
		case b.Before(a):
			return 1
		default:
			return 0
		}
	})
	return out, nil
}
