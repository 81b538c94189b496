package messagestore

import (
	"context"
	"time"

	"github.com/dalemusser/devhub/internal/domain/models"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

// CollectionName is the messages collection, shared with the change-stream watcher.
const CollectionName = "messages"

type Store struct {
	c *mongo.Collection
}

func New(db *mongo.Database) *Store {
	return &Store{c: db.Collection(CollectionName)}
}

// Append writes m with a store-assigned id and timestamp and returns the
// stored message. Messages are never updated after this call.
func (s *Store) Append(ctx context.Context, m models.Message) (models.Message, error) {
	now := time.Now().UTC().Truncate(time.Millisecond)
	m.ID = primitive.NewObjectID()
	m.Timestamp = &now

	if _, err := s.c.InsertOne(ctx, m); err != nil {
		return models.Message{}, err
	}
	return m, nil
}

// ListByTeam returns every message of a team in channel order:
// timestamp ascending, ties by id.
func (s *Store) ListByTeam(ctx context.Context, teamID string) ([]models.Message, error) {
	opts := options.Find().SetSort(bson.D{{Key: "timestamp", Value: 1}, {Key: "_id", Value: 1}})
	cur, err := s.c.Find(ctx, bson.M{"team_id": teamID}, opts)
	if err != nil {
		return nil, err
	}
	defer cur.Close(ctx)

	out := []models.Message{}
	if err := cur.All(ctx, &out); err != nil {
		return nil, err
	}
	return out, nil
}
