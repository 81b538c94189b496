package teamstore

import (
	"context"
	"errors"
	"time"

	"github.com/dalemusser/devhub/internal/domain/models"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

var (
	// ErrNotFound is returned when no team has the given id.
	ErrNotFound = errors.New("team not found")
	// ErrNotInvited is returned by AcceptInvite when the user has no pending invite.
	ErrNotInvited = errors.New("user has no pending invite to this team")
	// ErrNotPublic is returned by JoinPublic for a private team.
	ErrNotPublic = errors.New("team is not public")
	// ErrAlreadyMember is returned by AddInvite when the target is already a member.
	ErrAlreadyMember = errors.New("user is already a member of this team")
)

type Store struct {
	c *mongo.Collection
}

func New(db *mongo.Database) *Store {
	return &Store{c: db.Collection("teams")}
}

// Create inserts a new team. The creator becomes the only member and the
// invite set starts empty; any Members/Invites on t are ignored.
func (s *Store) Create(ctx context.Context, t models.Team) (models.Team, error) {
	t.ID = primitive.NewObjectID()
	t.CreatedAt = time.Now().UTC().Truncate(time.Millisecond)
	t.Members = []string{t.CreatedBy}
	t.Invites = []string{}

	if _, err := s.c.InsertOne(ctx, t); err != nil {
		return models.Team{}, err
	}
	return t, nil
}

// GetByID loads a team. Returns ErrNotFound if it does not exist.
func (s *Store) GetByID(ctx context.Context, id primitive.ObjectID) (models.Team, error) {
	var t models.Team
	if err := s.c.FindOne(ctx, bson.M{"_id": id}).Decode(&t); err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return models.Team{}, ErrNotFound
		}
		return models.Team{}, err
	}
	return t, nil
}

// ListByMember returns teams whose member set contains userID, newest first.
func (s *Store) ListByMember(ctx context.Context, userID string) ([]models.Team, error) {
	return s.find(ctx, bson.M{"members": userID})
}

// ListPublicExcluding returns public teams that userID is not a member of,
// newest first.
func (s *Store) ListPublicExcluding(ctx context.Context, userID string) ([]models.Team, error) {
	return s.find(ctx, bson.M{"is_public": true, "members": bson.M{"$ne": userID}})
}

// ListInvited returns teams with a pending invite for userID.
func (s *Store) ListInvited(ctx context.Context, userID string) ([]models.Team, error) {
	return s.find(ctx, bson.M{"invites": userID})
}

func (s *Store) find(ctx context.Context, filter bson.M) ([]models.Team, error) {
	opts := options.Find().SetSort(bson.D{{Key: "created_at", Value: -1}, {Key: "_id", Value: -1}})
	cur, err := s.c.Find(ctx, filter, opts)
	if err != nil {
		return nil, err
	}
	defer cur.Close(ctx)

	out := []models.Team{}
	if err := cur.All(ctx, &out); err != nil {
		return nil, err
	}
	return out, nil
}

// AddInvite adds userID to the invite set. The write only applies while
// userID is not a member, so the store never holds an id in both sets.
// Adding an id that is already invited is a no-op.
func (s *Store) AddInvite(ctx context.Context, id primitive.ObjectID, userID string) (models.Team, error) {
	return s.guardedUpdate(ctx,
		bson.M{"_id": id, "members": bson.M{"$ne": userID}},
		bson.M{"$addToSet": bson.M{"invites": userID}},
		id, ErrAlreadyMember)
}

// AcceptInvite moves userID from invites to members in one write. The
// filter requires userID to still be in invites, so an invite removed by a
// concurrent reject cannot turn into a membership.
func (s *Store) AcceptInvite(ctx context.Context, id primitive.ObjectID, userID string) (models.Team, error) {
	return s.guardedUpdate(ctx,
		bson.M{"_id": id, "invites": userID},
		bson.M{
			"$pull":     bson.M{"invites": userID},
			"$addToSet": bson.M{"members": userID},
		},
		id, ErrNotInvited)
}

// RemoveInvite drops userID from invites. Members are untouched.
// Removing an absent id is a no-op.
func (s *Store) RemoveInvite(ctx context.Context, id primitive.ObjectID, userID string) (models.Team, error) {
	return s.guardedUpdate(ctx,
		bson.M{"_id": id},
		bson.M{"$pull": bson.M{"invites": userID}},
		id, ErrNotFound)
}

// JoinPublic adds userID to members of a public team and clears any
// pending invite for them. A repeated join is a no-op.
func (s *Store) JoinPublic(ctx context.Context, id primitive.ObjectID, userID string) (models.Team, error) {
	return s.guardedUpdate(ctx,
		bson.M{"_id": id, "is_public": true},
		bson.M{
			"$addToSet": bson.M{"members": userID},
			"$pull":     bson.M{"invites": userID},
		},
		id, ErrNotPublic)
}

// guardedUpdate applies update where filter matches and returns the team
// after the write. When nothing matches it reports ErrNotFound if the team
// is missing and guardErr otherwise.
func (s *Store) guardedUpdate(ctx context.Context, filter, update bson.M, id primitive.ObjectID, guardErr error) (models.Team, error) {
	opts := options.FindOneAndUpdate().SetReturnDocument(options.After)

	var t models.Team
	err := s.c.FindOneAndUpdate(ctx, filter, update, opts).Decode(&t)
	if err == nil {
		return t, nil
	}
	if !errors.Is(err, mongo.ErrNoDocuments) {
		return models.Team{}, err
	}

	n, cerr := s.c.CountDocuments(ctx, bson.M{"_id": id}, options.Count().SetLimit(1))
	if cerr != nil {
		return models.Team{}, cerr
	}
	if n == 0 {
		return models.Team{}, ErrNotFound
	}
	return models.Team{}, guardErr
}
