// internal/app/chat/subscription.go
package chat

import (
	"context"
	"sync"

	"github.com/dalemusser/devhub/internal/app/system/apperr"
	"github.com/dalemusser/devhub/internal/domain/models"
	"github.com/google/uuid"
	"go.uber.org/zap"
)

// Subscription is a live, ordered view of one team's messages. Every
// change redelivers the full snapshot. It must be closed by its owner.
type Subscription struct {
	ID string

	ch     chan []models.Message
	cancel context.CancelFunc
	done   chan struct{}
	once   sync.Once

	mu  sync.Mutex
	err error
}

// C delivers snapshots. Only the latest undelivered snapshot is kept, so a
// slow reader skips straight to the newest state. C is closed when the
// subscription ends.
func (s *Subscription) C() <-chan []models.Message { return s.ch }

// Err reports why delivery stopped early, or nil.
func (s *Subscription) Err() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.err
}

// Close stops delivery and waits for the delivery goroutine to exit. It is
// safe to call more than once. Other subscriptions and the store are not
// affected.
func (s *Subscription) Close() error {
	s.once.Do(func() {
		s.cancel()
		<-s.done
	})
	return nil
}

// Done is closed once the subscription has fully stopped.
func (s *Subscription) Done() <-chan struct{} { return s.done }

// Subscribe registers for change signals, then loads and queues the first
// snapshot before returning, so a store failure surfaces here. Cancelling
// ctx has the same effect as Close.
func (c *Channel) Subscribe(ctx context.Context) (*Subscription, error) {
	teamID := c.team.ID.Hex()
	l := c.svc.Hub.listen(teamID)

	first, err := c.svc.Messages.ListByTeam(ctx, teamID)
	if err != nil {
		c.svc.Hub.unlisten(teamID, l)
		return nil, apperr.Store("subscribe", err)
	}

	subCtx, cancel := context.WithCancel(ctx)
	s := &Subscription{
		ID:     uuid.NewString(),
		ch:     make(chan []models.Message, 1),
		cancel: cancel,
		done:   make(chan struct{}),
	}
	s.ch <- first
	c.svc.Metrics.SubscriptionOpened()
	c.svc.Metrics.SnapshotDelivered()

	go s.run(subCtx, c, l)
	return s, nil
}

func (s *Subscription) run(ctx context.Context, c *Channel, l *listener) {
	teamID := c.team.ID.Hex()
	defer func() {
		c.svc.Hub.unlisten(teamID, l)
		c.svc.Metrics.SubscriptionClosed()
		close(s.ch)
		close(s.done)
	}()

	for {
		select {
		case <-ctx.Done():
			return
		case <-l.wake:
		}

		msgs, err := c.svc.Messages.ListByTeam(ctx, teamID)
		if err != nil {
			if ctx.Err() == nil {
				s.mu.Lock()
				s.err = apperr.Store("subscribe", err)
				s.mu.Unlock()
				c.svc.Log.Warn("chat subscription reload failed",
					zap.String("team_id", teamID),
					zap.String("subscription_id", s.ID),
					zap.Error(err))
			}
			return
		}

		// Replace any snapshot the reader has not taken yet. Only this
		// goroutine sends, so after the drain the send cannot block.
		select {
		case <-s.ch:
		default:
		}
		s.ch <- msgs
		c.svc.Metrics.SnapshotDelivered()
	}
}
