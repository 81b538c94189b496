package messagestore_test

import (
	"testing"
	"time"

	messagestore "github.com/dalemusser/devhub/internal/app/store/messages"
	"github.com/dalemusser/devhub/internal/domain/models"
	"github.com/dalemusser/devhub/internal/testutil"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

func TestStore_AppendAssignsIDAndTimestamp(t *testing.T) {
	db := testutil.SetupTestDB(t)
	store := messagestore.New(db)
	ctx, cancel := testutil.TestContext()
	defer cancel()

	before := time.Now().UTC().Add(-time.Second)
	m, err := store.Append(ctx, models.Message{TeamID: "t1", UserID: "u1", UserName: "Ada", Text: "hi"})
	if err != nil {
		t.Fatalf("Append failed: %v", err)
	}
	if m.ID == primitive.NilObjectID {
		t.Error("expected ID to be assigned")
	}
	if m.Timestamp == nil || m.Timestamp.Before(before) {
		t.Errorf("expected server timestamp, got %v", m.Timestamp)
	}
}

func TestStore_ListByTeam_Ordered(t *testing.T) {
	db := testutil.SetupTestDB(t)
	store := messagestore.New(db)
	ctx, cancel := testutil.TestContext()
	defer cancel()

	texts := []string{"one", "two", "three", "four"}
	for _, text := range texts {
		if _, err := store.Append(ctx, models.Message{TeamID: "t1", UserID: "u1", Text: text}); err != nil {
			t.Fatalf("Append failed: %v", err)
		}
	}
	if _, err := store.Append(ctx, models.Message{TeamID: "t2", UserID: "u1", Text: "elsewhere"}); err != nil {
		t.Fatalf("Append failed: %v", err)
	}

	got, err := store.ListByTeam(ctx, "t1")
	if err != nil {
		t.Fatalf("ListByTeam failed: %v", err)
	}
	if len(got) != len(texts) {
		t.Fatalf("got %d messages, want %d", len(got), len(texts))
	}
	for i, m := range got {
		if m.Text != texts[i] {
			t.Errorf("message %d = %q, want %q", i, m.Text, texts[i])
		}
		if i > 0 && got[i-1].Timestamp.After(*m.Timestamp) {
			t.Errorf("timestamps out of order at %d", i)
		}
	}
}

func TestStore_ListByTeam_Empty(t *testing.T) {
	db := testutil.SetupTestDB(t)
	store := messagestore.New(db)
	ctx, cancel := testutil.TestContext()
	defer cancel()

	got, err := store.ListByTeam(ctx, "no-such-team")
	if err != nil {
		t.Fatalf("ListByTeam failed: %v", err)
	}
	if got == nil || len(got) != 0 {
		t.Errorf("expected empty non-nil slice, got %#v", got)
	}
}
