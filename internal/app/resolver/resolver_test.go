package resolver_test

import (
	"errors"
	"fmt"
	"testing"

	"github.com/dalemusser/devhub/internal/app/resolver"
	"github.com/dalemusser/devhub/internal/app/store/memstore"
	"github.com/dalemusser/devhub/internal/app/system/apperr"
	"github.com/dalemusser/devhub/internal/domain/models"
	"github.com/dalemusser/devhub/internal/testutil"
	"github.com/google/go-cmp/cmp"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

func seedUsers(db *memstore.DB, n int) []string {
	ids := make([]string, 0, n)
	for i := 1; i <= n; i++ {
		id := fmt.Sprintf("u%02d", i)
		db.Users.Put(models.User{ID: id, Name: "User " + id, Email: id + "@test.dev"})
		ids = append(ids, id)
	}
	return ids
}

func TestResolveBatch_TwentyFiveIDsIssueThreeQueries(t *testing.T) {
	ctx, cancel := testutil.TestContext()
	defer cancel()
	db := memstore.New()
	ids := seedUsers(db, 25)
	r := resolver.New(db.Users, nil)

	got, err := r.ResolveBatch(ctx, ids)
	if err != nil {
		t.Fatalf("ResolveBatch: %v", err)
	}
	if q := db.Users.SummaryQueries.Value(); q != 3 {
		t.Errorf("queries = %d, want 3", q)
	}
	if len(got) != 25 {
		t.Errorf("resolved %d ids, want 25", len(got))
	}
}

func TestResolveBatch_OmitsMissesAndDedupes(t *testing.T) {
	ctx, cancel := testutil.TestContext()
	defer cancel()
	db := memstore.New()
	seedUsers(db, 3)
	r := resolver.New(db.Users, nil)

	got, err := r.ResolveBatch(ctx, []string{"u01", "u01", "", "ghost", "u03"})
	if err != nil {
		t.Fatalf("ResolveBatch: %v", err)
	}
	if _, ok := got["ghost"]; ok {
		t.Error("unknown id should be omitted")
	}
	if len(got) != 2 {
		t.Errorf("len = %d, want 2", len(got))
	}
	if q := db.Users.SummaryQueries.Value(); q != 1 {
		t.Errorf("queries = %d, want 1", q)
	}
}

func TestResolveBatch_EmptyInputNoQuery(t *testing.T) {
	ctx, cancel := testutil.TestContext()
	defer cancel()
	db := memstore.New()
	r := resolver.New(db.Users, nil)

	got, err := r.ResolveBatch(ctx, nil)
	if err != nil {
		t.Fatalf("ResolveBatch: %v", err)
	}
	if len(got) != 0 || db.Users.SummaryQueries.Value() != 0 {
		t.Errorf("expected empty result and no queries, got %d results, %d queries",
			len(got), db.Users.SummaryQueries.Value())
	}
}

func TestResolveBatch_StoreFailure(t *testing.T) {
	ctx, cancel := testutil.TestContext()
	defer cancel()
	db := memstore.New()
	ids := seedUsers(db, 12)
	db.Users.Fail(errors.New("network down"))
	r := resolver.New(db.Users, nil)

	_, err := r.ResolveBatch(ctx, ids)
	if !errors.Is(err, apperr.ErrStore) {
		t.Fatalf("error = %v, want store error", err)
	}
}

func TestResolveForTeams_ResolvesUnionOnce(t *testing.T) {
	ctx, cancel := testutil.TestContext()
	defer cancel()
	db := memstore.New()
	seedUsers(db, 4)
	r := resolver.New(db.Users, nil)

	a := models.Team{ID: primitive.NewObjectID(), Members: []string{"u02", "u01", "ghost"}}
	b := models.Team{ID: primitive.NewObjectID(), Members: []string{"u01", "u03"}}

	got, err := r.ResolveForTeams(ctx, []models.Team{a, b})
	if err != nil {
		t.Fatalf("ResolveForTeams: %v", err)
	}
	if q := db.Users.SummaryQueries.Value(); q != 1 {
		t.Errorf("queries = %d, want 1", q)
	}

	ids := func(list []models.MemberSummary) []string {
		out := []string{}
		for _, s := range list {
			out = append(out, s.ID)
		}
		return out
	}
	if diff := cmp.Diff([]string{"u02", "u01"}, ids(got[a.ID.Hex()])); diff != "" {
		t.Errorf("team a members mismatch (-want +got):\n%s", diff)
	}
	if diff := cmp.Diff([]string{"u01", "u03"}, ids(got[b.ID.Hex()])); diff != "" {
		t.Errorf("team b members mismatch (-want +got):\n%s", diff)
	}
}

func TestLookup_UnknownPlaceholder(t *testing.T) {
	s := resolver.Lookup(map[string]models.MemberSummary{}, "ghost")
	if s.Name != models.UnknownUserName || s.ID != "ghost" {
		t.Errorf("Lookup() = %+v", s)
	}
}
