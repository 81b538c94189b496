package validators_test

import (
	"testing"
	"time"

	"github.com/dalemusser/devhub/internal/app/system/validators"
	"github.com/dalemusser/devhub/internal/testutil"
	"go.mongodb.org/mongo-driver/bson"
)

func TestEnsureAll_Idempotent(t *testing.T) {
	db := testutil.SetupTestDB(t)
	ctx, cancel := testutil.TestContext()
	defer cancel()

	if err := validators.EnsureAll(ctx, db); err != nil {
		t.Fatalf("First EnsureAll failed: %v", err)
	}
	if err := validators.EnsureAll(ctx, db); err != nil {
		t.Fatalf("Second EnsureAll failed: %v", err)
	}
}

func TestEnsureAll_CreatesCollections(t *testing.T) {
	db := testutil.SetupTestDB(t)
	ctx, cancel := testutil.TestContext()
	defer cancel()

	if err := validators.EnsureAll(ctx, db); err != nil {
		t.Fatalf("EnsureAll failed: %v", err)
	}

	names, err := db.ListCollectionNames(ctx, bson.M{})
	if err != nil {
		t.Fatalf("ListCollectionNames failed: %v", err)
	}
	have := map[string]bool{}
	for _, n := range names {
		have[n] = true
	}
	for _, want := range validators.Collections {
		if !have[want] {
			t.Errorf("expected collection %q to exist", want)
		}
	}
}

func TestTeamsValidator_RejectsEmptyMembers(t *testing.T) {
	db := testutil.SetupTestDB(t)
	ctx, cancel := testutil.TestContext()
	defer cancel()

	if err := validators.EnsureAll(ctx, db); err != nil {
		t.Fatalf("EnsureAll failed: %v", err)
	}

	_, err := db.Collection("teams").InsertOne(ctx, bson.M{
		"name":       "Alpha",
		"created_by": "u1",
		"created_at": time.Now().UTC(),
		"members":    bson.A{},
		"invites":    bson.A{},
		"is_public":  true,
	})
	if err == nil {
		t.Error("expected validation error for a team with no members")
	}
}

func TestTeamsValidator_ValidTeam(t *testing.T) {
	db := testutil.SetupTestDB(t)
	ctx, cancel := testutil.TestContext()
	defer cancel()

	if err := validators.EnsureAll(ctx, db); err != nil {
		t.Fatalf("EnsureAll failed: %v", err)
	}

	_, err := db.Collection("teams").InsertOne(ctx, bson.M{
		"name":        "Alpha",
		"description": "",
		"created_by":  "u1",
		"created_at":  time.Now().UTC(),
		"members":     bson.A{"u1"},
		"invites":     bson.A{},
		"is_public":   false,
	})
	if err != nil {
		t.Errorf("insert valid team failed: %v", err)
	}
}

func TestMessagesValidator_RejectsBlankText(t *testing.T) {
	db := testutil.SetupTestDB(t)
	ctx, cancel := testutil.TestContext()
	defer cancel()

	if err := validators.EnsureAll(ctx, db); err != nil {
		t.Fatalf("EnsureAll failed: %v", err)
	}

	_, err := db.Collection("messages").InsertOne(ctx, bson.M{
		"team_id":   "t1",
		"user_id":   "u1",
		"text":      "   ",
		"timestamp": time.Now().UTC(),
	})
	if err == nil {
		t.Error("expected validation error for blank message text")
	}
}
