package testutil

import (
	"context"
	"net/http"
	"testing"
	"time"

	"github.com/dalemusser/devhub/internal/domain/models"
	"github.com/go-chi/chi/v5"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
)

// WithChiURLParam adds a chi URL parameter to the request context.
func WithChiURLParam(r *http.Request, key, value string) *http.Request {
	rctx, ok := r.Context().Value(chi.RouteCtxKey).(*chi.Context)
	if !ok || rctx == nil {
		rctx = chi.NewRouteContext()
	}
	rctx.URLParams.Add(key, value)
	return r.WithContext(context.WithValue(r.Context(), chi.RouteCtxKey, rctx))
}

// Fixtures inserts test records directly into a database.
type Fixtures struct {
	db *mongo.Database
	t  *testing.T
}

// NewFixtures creates a Fixtures for the given test database.
func NewFixtures(t *testing.T, db *mongo.Database) *Fixtures {
	t.Helper()
	return &Fixtures{db: db, t: t}
}

// DB returns the underlying database.
func (f *Fixtures) DB() *mongo.Database {
	return f.db
}

// CreateUser inserts a user profile with the given id.
func (f *Fixtures) CreateUser(ctx context.Context, id, name, email string) models.User {
	f.t.Helper()

	now := time.Now().UTC()
	u := models.User{
		ID:        id,
		Name:      name,
		Email:     email,
		Skills:    []string{},
		CreatedAt: now,
		UpdatedAt: now,
	}
	if _, err := f.db.Collection("users").InsertOne(ctx, u); err != nil {
		f.t.Fatalf("CreateUser: %v", err)
	}
	return u
}

// CreateTeam inserts a team with the given members and invites.
// The first member is recorded as the creator.
func (f *Fixtures) CreateTeam(ctx context.Context, name string, public bool, members []string, invites []string) models.Team {
	f.t.Helper()

	if invites == nil {
		invites = []string{}
	}
	team := models.Team{
		ID:        primitive.NewObjectID(),
		Name:      name,
		CreatedBy: members[0],
		CreatedAt: time.Now().UTC(),
		Members:   members,
		Invites:   invites,
		IsPublic:  public,
	}
	if _, err := f.db.Collection("teams").InsertOne(ctx, team); err != nil {
		f.t.Fatalf("CreateTeam: %v", err)
	}
	return team
}
