package sqlite

import (
	"context"
	"database/sql"
	"fmt"
	"path/filepath"
	"testing"

	"github.com/sandevgo/recall/internal/core"
)

func newTestDB(t *testing.T) *sql.DB {
	t.Helper()
	db, err := NewDB(context.Background(), filepath.Join(t.TempDir(), "test.db"))
	if err != nil {
		t.Fatalf("NewDB() error = %v", err)
	}
	t.Cleanup(func() { db.Close() })
	return db
}

func TestMessagesRoundTrip(t *testing.T) {
	db := newTestDB(t)
	repo := NewMessagesRepo(db)
	ctx := context.Background()

	for i := 0; i < 5; i++ {
		msg := core.Message{Role: core.RoleUser, Content: fmt.Sprintf("message %d", i)}
		if err := repo.AddMessage(ctx, "s1", msg); err != nil {
			t.Fatalf("AddMessage() error = %v", err)
		}
	}
	if err := repo.AddMessage(ctx, "other", core.Message{Role: core.RoleUser, Content: "elsewhere"}); err != nil {
		t.Fatal(err)
	}

	msgs, err := repo.GetMessages(ctx, "s1", 3)
	if err != nil {
		t.Fatalf("GetMessages() error = %v", err)
	}
	if len(msgs) != 3 {
		t.Fatalf("got %d messages, want 3", len(msgs))
	}

	// The trailing window in chronological order.
	for i, want := range []string{"message 2", "message 3", "message 4"} {
		if msgs[i].Content != want {
			t.Errorf("message %d = %q, want %q", i, msgs[i].Content, want)
		}
		if msgs[i].SessionID != "s1" {
			t.Errorf("message %d leaked from session %q", i, msgs[i].SessionID)
		}
		if msgs[i].CreatedAt.IsZero() {
			t.Errorf("message %d has zero created_at", i)
		}
	}
}

func TestSessionsLifecycle(t *testing.T) {
	db := newTestDB(t)
	repo := NewSessionsRepo(db)
	messages := NewMessagesRepo(db)
	ctx := context.Background()

	created, err := repo.CreateSession(ctx, "u1", "cats")
	if err != nil {
		t.Fatalf("CreateSession() error = %v", err)
	}
	if created.ID == "" || created.UserID != "u1" || created.Title != "cats" {
		t.Fatalf("created session = %+v", created)
	}

	got, err := repo.GetSession(ctx, created.ID)
	if err != nil {
		t.Fatalf("GetSession() error = %v", err)
	}
	if got == nil || got.ID != created.ID {
		t.Fatalf("GetSession() = %+v", got)
	}

	if _, err := repo.CreateSession(ctx, "u1", "dogs"); err != nil {
		t.Fatal(err)
	}
	if _, err := repo.CreateSession(ctx, "u2", "other user"); err != nil {
		t.Fatal(err)
	}

	sessions, err := repo.ListSessions(ctx, "u1")
	if err != nil {
		t.Fatalf("ListSessions() error = %v", err)
	}
	if len(sessions) != 2 {
		t.Errorf("ListSessions() returned %d, want 2", len(sessions))
	}

	found, err := repo.SearchSessions(ctx, "u1", "cat")
	if err != nil {
		t.Fatalf("SearchSessions() error = %v", err)
	}
	if len(found) != 1 || found[0].Title != "cats" {
		t.Errorf("SearchSessions() = %+v", found)
	}

	if err := repo.RenameSession(ctx, created.ID, "cat facts"); err != nil {
		t.Fatalf("RenameSession() error = %v", err)
	}
	renamed, err := repo.GetSession(ctx, created.ID)
	if err != nil {
		t.Fatal(err)
	}
	if renamed.Title != "cat facts" {
		t.Errorf("Title after rename = %q", renamed.Title)
	}
	if err := repo.RenameSession(ctx, "missing", "x"); err == nil {
		t.Error("RenameSession() on unknown id did not fail")
	}

	// Deleting a session takes its transcript with it.
	if err := messages.AddMessage(ctx, created.ID, core.Message{Role: core.RoleUser, Content: "hi"}); err != nil {
		t.Fatal(err)
	}
	if err := repo.DeleteSession(ctx, created.ID); err != nil {
		t.Fatalf("DeleteSession() error = %v", err)
	}

	gone, err := repo.GetSession(ctx, created.ID)
	if err != nil {
		t.Fatalf("GetSession() error = %v", err)
	}
	if gone != nil {
		t.Error("session still present after delete")
	}

	msgs, err := messages.GetMessages(ctx, created.ID, 10)
	if err != nil {
		t.Fatalf("GetMessages() error = %v", err)
	}
	if len(msgs) != 0 {
		t.Errorf("%d transcript messages survived session delete", len(msgs))
	}
}

func TestGetSessionUnknownID(t *testing.T) {
	db := newTestDB(t)
	repo := NewSessionsRepo(db)

	got, err := repo.GetSession(context.Background(), "nope")
	if err != nil {
		t.Fatalf("GetSession() error = %v", err)
	}
	if got != nil {
		t.Errorf("GetSession() = %+v, want nil", got)
	}
}
