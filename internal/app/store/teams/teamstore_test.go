package teamstore_test

import (
	"errors"
	"testing"
	"time"

	teamstore "github.com/dalemusser/devhub/internal/app/store/teams"
	"github.com/dalemusser/devhub/internal/domain/models"
	"github.com/dalemusser/devhub/internal/testutil"
	"github.com/google/go-cmp/cmp"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

func TestStore_Create(t *testing.T) {
	db := testutil.SetupTestDB(t)
	store := teamstore.New(db)
	ctx, cancel := testutil.TestContext()
	defer cancel()

	created, err := store.Create(ctx, models.Team{
		Name:      "Alpha",
		CreatedBy: "u1",
		Members:   []string{"ignored"},
		Invites:   []string{"ignored"},
		IsPublic:  true,
	})
	if err != nil {
		t.Fatalf("Create failed: %v", err)
	}

	if created.ID == primitive.NilObjectID {
		t.Error("expected ID to be assigned")
	}
	if created.Name != "Alpha" {
		t.Errorf("Name = %q, want Alpha", created.Name)
	}
	if created.CreatedAt.IsZero() {
		t.Error("expected CreatedAt to be set")
	}

	got, err := store.GetByID(ctx, created.ID)
	if err != nil {
		t.Fatalf("GetByID failed: %v", err)
	}
	if diff := cmp.Diff([]string{"u1"}, got.Members); diff != "" {
		t.Errorf("Members mismatch (-want +got):\n%s", diff)
	}
	if len(got.Invites) != 0 {
		t.Errorf("Invites = %v, want empty", got.Invites)
	}
	if !got.IsPublic || got.CreatedBy != "u1" {
		t.Errorf("unexpected stored team: %+v", got)
	}
}

func TestStore_GetByID_NotFound(t *testing.T) {
	db := testutil.SetupTestDB(t)
	store := teamstore.New(db)
	ctx, cancel := testutil.TestContext()
	defer cancel()

	if _, err := store.GetByID(ctx, primitive.NewObjectID()); !errors.Is(err, teamstore.ErrNotFound) {
		t.Errorf("expected ErrNotFound, got %v", err)
	}
}

func TestStore_ListQueries(t *testing.T) {
	db := testutil.SetupTestDB(t)
	store := teamstore.New(db)
	fixtures := testutil.NewFixtures(t, db)
	ctx, cancel := testutil.TestContext()
	defer cancel()

	mine := fixtures.CreateTeam(ctx, "Mine", false, []string{"u1"}, nil)
	time.Sleep(5 * time.Millisecond)
	shared := fixtures.CreateTeam(ctx, "Shared", true, []string{"u2", "u1"}, nil)
	time.Sleep(5 * time.Millisecond)
	open := fixtures.CreateTeam(ctx, "Open", true, []string{"u2"}, []string{"u1"})
	fixtures.CreateTeam(ctx, "Closed", false, []string{"u3"}, nil)

	ids := func(ts []models.Team) []primitive.ObjectID {
		out := []primitive.ObjectID{}
		for _, t := range ts {
			out = append(out, t.ID)
		}
		return out
	}

	member, err := store.ListByMember(ctx, "u1")
	if err != nil {
		t.Fatalf("ListByMember failed: %v", err)
	}
	if diff := cmp.Diff([]primitive.ObjectID{shared.ID, mine.ID}, ids(member)); diff != "" {
		t.Errorf("ListByMember mismatch (-want +got):\n%s", diff)
	}

	public, err := store.ListPublicExcluding(ctx, "u1")
	if err != nil {
		t.Fatalf("ListPublicExcluding failed: %v", err)
	}
	if diff := cmp.Diff([]primitive.ObjectID{open.ID}, ids(public)); diff != "" {
		t.Errorf("ListPublicExcluding mismatch (-want +got):\n%s", diff)
	}

	invited, err := store.ListInvited(ctx, "u1")
	if err != nil {
		t.Fatalf("ListInvited failed: %v", err)
	}
	if diff := cmp.Diff([]primitive.ObjectID{open.ID}, ids(invited)); diff != "" {
		t.Errorf("ListInvited mismatch (-want +got):\n%s", diff)
	}
}

func TestStore_AddInvite(t *testing.T) {
	db := testutil.SetupTestDB(t)
	store := teamstore.New(db)
	fixtures := testutil.NewFixtures(t, db)
	ctx, cancel := testutil.TestContext()
	defer cancel()

	team := fixtures.CreateTeam(ctx, "Alpha", false, []string{"u1"}, nil)

	got, err := store.AddInvite(ctx, team.ID, "u2")
	if err != nil {
		t.Fatalf("AddInvite failed: %v", err)
	}
	if diff := cmp.Diff([]string{"u2"}, got.Invites); diff != "" {
		t.Errorf("Invites mismatch (-want +got):\n%s", diff)
	}

	// Set-add: a second invite is a no-op.
	got, err = store.AddInvite(ctx, team.ID, "u2")
	if err != nil {
		t.Fatalf("second AddInvite failed: %v", err)
	}
	if len(got.Invites) != 1 {
		t.Errorf("Invites = %v, want one entry", got.Invites)
	}

	// Members are never recorded as invited.
	if _, err := store.AddInvite(ctx, team.ID, "u1"); !errors.Is(err, teamstore.ErrAlreadyMember) {
		t.Errorf("expected ErrAlreadyMember, got %v", err)
	}
	if _, err := store.AddInvite(ctx, primitive.NewObjectID(), "u2"); !errors.Is(err, teamstore.ErrNotFound) {
		t.Errorf("expected ErrNotFound, got %v", err)
	}
}

func TestStore_AcceptInvite(t *testing.T) {
	db := testutil.SetupTestDB(t)
	store := teamstore.New(db)
	fixtures := testutil.NewFixtures(t, db)
	ctx, cancel := testutil.TestContext()
	defer cancel()

	team := fixtures.CreateTeam(ctx, "Alpha", false, []string{"u1"}, []string{"u2", "u3"})

	got, err := store.AcceptInvite(ctx, team.ID, "u2")
	if err != nil {
		t.Fatalf("AcceptInvite failed: %v", err)
	}
	if diff := cmp.Diff([]string{"u1", "u2"}, got.Members); diff != "" {
		t.Errorf("Members mismatch (-want +got):\n%s", diff)
	}
	if diff := cmp.Diff([]string{"u3"}, got.Invites); diff != "" {
		t.Errorf("Invites mismatch (-want +got):\n%s", diff)
	}

	// The invite is gone now; a second accept must not match.
	if _, err := store.AcceptInvite(ctx, team.ID, "u2"); !errors.Is(err, teamstore.ErrNotInvited) {
		t.Errorf("expected ErrNotInvited, got %v", err)
	}
}

func TestStore_AcceptAfterRemoveDoesNotAddMember(t *testing.T) {
	db := testutil.SetupTestDB(t)
	store := teamstore.New(db)
	fixtures := testutil.NewFixtures(t, db)
	ctx, cancel := testutil.TestContext()
	defer cancel()

	team := fixtures.CreateTeam(ctx, "Alpha", false, []string{"u1"}, []string{"u2"})

	if _, err := store.RemoveInvite(ctx, team.ID, "u2"); err != nil {
		t.Fatalf("RemoveInvite failed: %v", err)
	}
	if _, err := store.AcceptInvite(ctx, team.ID, "u2"); !errors.Is(err, teamstore.ErrNotInvited) {
		t.Fatalf("expected ErrNotInvited, got %v", err)
	}

	got, err := store.GetByID(ctx, team.ID)
	if err != nil {
		t.Fatalf("GetByID failed: %v", err)
	}
	if got.HasMember("u2") {
		t.Errorf("u2 became a member after the invite was removed: %v", got.Members)
	}
}

func TestStore_RemoveInvite(t *testing.T) {
	db := testutil.SetupTestDB(t)
	store := teamstore.New(db)
	fixtures := testutil.NewFixtures(t, db)
	ctx, cancel := testutil.TestContext()
	defer cancel()

	team := fixtures.CreateTeam(ctx, "Alpha", false, []string{"u1"}, []string{"u2"})

	got, err := store.RemoveInvite(ctx, team.ID, "u2")
	if err != nil {
		t.Fatalf("RemoveInvite failed: %v", err)
	}
	if len(got.Invites) != 0 {
		t.Errorf("Invites = %v, want empty", got.Invites)
	}
	if diff := cmp.Diff([]string{"u1"}, got.Members); diff != "" {
		t.Errorf("Members changed (-want +got):\n%s", diff)
	}

	// Removing again is a no-op.
	if _, err := store.RemoveInvite(ctx, team.ID, "u2"); err != nil {
		t.Errorf("second RemoveInvite failed: %v", err)
	}
}

func TestStore_JoinPublic(t *testing.T) {
	db := testutil.SetupTestDB(t)
	store := teamstore.New(db)
	fixtures := testutil.NewFixtures(t, db)
	ctx, cancel := testutil.TestContext()
	defer cancel()

	open := fixtures.CreateTeam(ctx, "Open", true, []string{"u1"}, []string{"u3"})
	closed := fixtures.CreateTeam(ctx, "Closed", false, []string{"u1"}, nil)

	got, err := store.JoinPublic(ctx, open.ID, "u3")
	if err != nil {
		t.Fatalf("JoinPublic failed: %v", err)
	}
	if diff := cmp.Diff([]string{"u1", "u3"}, got.Members); diff != "" {
		t.Errorf("Members mismatch (-want +got):\n%s", diff)
	}
	if len(got.Invites) != 0 {
		t.Errorf("pending invite should be cleared, got %v", got.Invites)
	}

	got, err = store.JoinPublic(ctx, open.ID, "u3")
	if err != nil {
		t.Fatalf("repeat JoinPublic failed: %v", err)
	}
	if len(got.Members) != 2 {
		t.Errorf("repeat join changed members: %v", got.Members)
	}

	if _, err := store.JoinPublic(ctx, closed.ID, "u3"); !errors.Is(err, teamstore.ErrNotPublic) {
		t.Errorf("expected ErrNotPublic, got %v", err)
	}
}
