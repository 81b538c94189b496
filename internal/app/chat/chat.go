// internal/app/chat/chat.go
// Package chat is the per-team message channel: an append-only log ordered
// by server timestamp, with live subscriptions that redeliver the whole
// ordered log on every change.
package chat

import (
	"context"
	"errors"
	"strings"
	"unicode/utf8"

	"github.com/dalemusser/devhub/internal/app/policy/teampolicy"
	teamstore "github.com/dalemusser/devhub/internal/app/store/teams"
	"github.com/dalemusser/devhub/internal/app/system/apperr"
	"github.com/dalemusser/devhub/internal/app/system/auth"
	"github.com/dalemusser/devhub/internal/app/system/metrics"
	"github.com/dalemusser/devhub/internal/app/system/normalize"
	"github.com/dalemusser/devhub/internal/domain/models"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.uber.org/zap"
)

// DefaultMaxMessageLen is used when Service.MaxLen is not positive.
const DefaultMaxMessageLen = 2000

// ErrNotMember is the cause of the validation error returned when a
// non-member opens or posts to a team channel.
var ErrNotMember = errors.New("not a member of this team")

// MessageStore appends and lists a team's messages in channel order.
type MessageStore interface {
	Append(ctx context.Context, m models.Message) (models.Message, error)
	ListByTeam(ctx context.Context, teamID string) ([]models.Message, error)
}

// TeamReader loads the team snapshot a channel is opened against.
type TeamReader interface {
	GetByID(ctx context.Context, id primitive.ObjectID) (models.Team, error)
}

type Service struct {
	Teams    TeamReader
	Messages MessageStore
	Hub      *Hub
	MaxLen   int
	Metrics  *metrics.Metrics
	Log      *zap.Logger
}

func NewService(teams TeamReader, messages MessageStore, hub *Hub, maxLen int, m *metrics.Metrics, logger *zap.Logger) *Service {
	if maxLen <= 0 {
		maxLen = DefaultMaxMessageLen
	}
	return &Service{Teams: teams, Messages: messages, Hub: hub, MaxLen: maxLen, Metrics: m, Log: logger}
}

// Channel is one viewer's handle on a team channel. Membership checks use
// the team as loaded by Open; they are not repeated against the store.
type Channel struct {
	svc    *Service
	team   models.Team
	viewer auth.Principal
}

// Open loads the team once and returns a channel for a member viewer.
func (s *Service) Open(ctx context.Context, teamID string, viewer auth.Principal) (*Channel, error) {
	const op = "open channel"
	oid, err := primitive.ObjectIDFromHex(teamID)
	if err != nil {
		return nil, apperr.NotFound(op, "team")
	}
	team, err := s.Teams.GetByID(ctx, oid)
	switch {
	case errors.Is(err, teamstore.ErrNotFound):
		return nil, apperr.NotFound(op, "team")
	case err != nil:
		return nil, apperr.Store(op, err)
	}
	if !teampolicy.CanChat(team, viewer.ID) {
		return nil, apperr.Invalid(op, ErrNotMember)
	}
	return &Channel{svc: s, team: team, viewer: viewer}, nil
}

// Team returns the snapshot the channel was opened with.
func (c *Channel) Team() models.Team { return c.team }

// Viewer returns the principal that opened the channel.
func (c *Channel) Viewer() auth.Principal { return c.viewer }

// Send appends a message from sender. The sender's name and photo are
// copied into the message and never updated afterwards. Failures are not
// retried.
func (c *Channel) Send(ctx context.Context, sender auth.Principal, text string) (msg models.Message, err error) {
	const op = "send"
	defer func() {
		if err == nil {
			c.svc.Metrics.MessageSent()
		}
	}()

	text = strings.TrimSpace(text)
	if text == "" {
		return models.Message{}, apperr.Validation(op, "message text is required")
	}
	if n := utf8.RuneCountInString(text); n > c.svc.MaxLen {
		return models.Message{}, apperr.Validation(op, "message is %d characters, the limit is %d", n, c.svc.MaxLen)
	}
	if !teampolicy.CanChat(c.team, sender.ID) {
		return models.Message{}, apperr.Invalid(op, ErrNotMember)
	}

	teamID := c.team.ID.Hex()
	msg, err = c.svc.Messages.Append(ctx, models.Message{
		TeamID:    teamID,
		Text:      text,
		UserID:    sender.ID,
		UserName:  normalize.DisplayName(sender.DisplayName, models.UnknownUserName),
		UserPhoto: sender.PhotoURL,
	})
	if err != nil {
		return models.Message{}, apperr.Store(op, err)
	}

	c.svc.Hub.Notify(teamID)
	return msg, nil
}

// Messages reads the channel once, in channel order.
func (c *Channel) Messages(ctx context.Context) ([]models.Message, error) {
	msgs, err := c.svc.Messages.ListByTeam(ctx, c.team.ID.Hex())
	if err != nil {
		return nil, apperr.Store("list messages", err)
	}
	return msgs, nil
}
