package userstore

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/dalemusser/devhub/internal/app/system/normalize"
	"github.com/dalemusser/devhub/internal/domain/models"
	wafflemongo "github.com/dalemusser/waffle/pantry/mongo"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

// MaxIDsPerQuery is the largest id list FindSummaries accepts in one call.
const MaxIDsPerQuery = 10

var (
	// ErrNotFound is returned when no user matches.
	ErrNotFound = errors.New("user not found")
	// ErrTooManyIDs is returned when FindSummaries is given more than MaxIDsPerQuery ids.
	ErrTooManyIDs = fmt.Errorf("at most %d ids per query", MaxIDsPerQuery)
)

type Store struct {
	c *mongo.Collection
}

func New(db *mongo.Database) *Store {
	return &Store{c: db.Collection("users")}
}

// summaryProjection limits reads to the fields of a MemberSummary.
var summaryProjection = bson.M{"_id": 1, "name": 1, "email": 1, "photo_url": 1}

// EnsureSummary upserts the name, email, and photo of a user, creating a
// profile with empty optional fields when none exists. Safe to repeat.
func (s *Store) EnsureSummary(ctx context.Context, sum models.MemberSummary) error {
	now := time.Now().UTC()
	_, err := s.c.UpdateOne(ctx,
		bson.M{"_id": sum.ID},
		bson.M{
			"$set": bson.M{
				"name":       sum.Name,
				"email":      normalize.Email(sum.Email),
				"photo_url":  sum.PhotoURL,
				"updated_at": now,
			},
			"$setOnInsert": bson.M{
				"university": "",
				"skills":     bson.A{},
				"bio":        "",
				"github":     "",
				"linkedin":   "",
				"created_at": now,
			},
		},
		options.Update().SetUpsert(true),
	)
	return err
}

// CreateIfMissing inserts u only when no profile with its id exists.
// Existing profiles are left untouched. Reports whether a profile was created.
func (s *Store) CreateIfMissing(ctx context.Context, u models.User) (bool, error) {
	now := time.Now().UTC()
	if u.Skills == nil {
		u.Skills = []string{}
	}
	res, err := s.c.UpdateOne(ctx,
		bson.M{"_id": u.ID},
		bson.M{"$setOnInsert": bson.M{
			"name":       normalize.Name(u.Name),
			"email":      normalize.Email(u.Email),
			"photo_url":  u.PhotoURL,
			"university": u.University,
			"skills":     u.Skills,
			"bio":        u.Bio,
			"github":     u.GitHub,
			"linkedin":   u.LinkedIn,
			"created_at": now,
			"updated_at": now,
		}},
		options.Update().SetUpsert(true),
	)
	if err != nil {
		// Two first sign-ins racing on the same _id: the loser sees a
		// duplicate key and the profile exists either way.
		if wafflemongo.IsDup(err) {
			return false, nil
		}
		return false, err
	}
	return res.UpsertedCount == 1, nil
}

// GetByID loads a profile by identity-provider id.
func (s *Store) GetByID(ctx context.Context, id string) (models.User, error) {
	var u models.User
	if err := s.c.FindOne(ctx, bson.M{"_id": id}).Decode(&u); err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return models.User{}, ErrNotFound
		}
		return models.User{}, err
	}
	return u, nil
}

// GetByEmail looks up a profile by exact (normalized) email.
// When several profiles share an email the oldest wins.
func (s *Store) GetByEmail(ctx context.Context, email string) (models.User, error) {
	var u models.User
	opts := options.FindOne().SetSort(bson.D{{Key: "created_at", Value: 1}})
	if err := s.c.FindOne(ctx, bson.M{"email": normalize.Email(email)}, opts).Decode(&u); err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return models.User{}, ErrNotFound
		}
		return models.User{}, err
	}
	return u, nil
}

// FindSummaries returns the summaries of the users whose ids are in ids.
// At most MaxIDsPerQuery ids are accepted; ids without a profile are
// absent from the result.
func (s *Store) FindSummaries(ctx context.Context, ids []string) ([]models.MemberSummary, error) {
	if len(ids) > MaxIDsPerQuery {
		return nil, ErrTooManyIDs
	}
	if len(ids) == 0 {
		return []models.MemberSummary{}, nil
	}

	cur, err := s.c.Find(ctx, bson.M{"_id": bson.M{"$in": ids}}, options.Find().SetProjection(summaryProjection))
	if err != nil {
		return nil, err
	}
	defer cur.Close(ctx)

	out := []models.MemberSummary{}
	if err := cur.All(ctx, &out); err != nil {
		return nil, err
	}
	return out, nil
}
