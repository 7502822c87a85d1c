package chatlog

import (
	"path/filepath"
	"testing"
	"time"

	"github.com/roelfdiedericks/agentloop/internal/types"
)

func newTestStore(t *testing.T) *Store {
	t.Helper()
	store, err := OpenStore(filepath.Join(t.TempDir(), "index.db"))
	if err != nil {
		t.Fatal(err)
	}
	t.Cleanup(func() { store.Close() })
	return store
}

func TestStoreIndexAndRecent(t *testing.T) {
	store := newTestStore(t)

	base := time.Now().Add(-time.Hour)
	for i, content := range []string{"first", "second", "third"} {
		if err := store.Index("sess1", "user", content, base.Add(time.Duration(i)*time.Minute)); err != nil {
			t.Fatal(err)
		}
	}

	recent, err := store.Recent(2)
	if err != nil {
		t.Fatal(err)
	}
	if len(recent) != 2 {
		t.Fatalf("expected 2 rows, got %d", len(recent))
	}
	if recent[0].Content != "third" {
		t.Errorf("newest first expected, got %q", recent[0].Content)
	}
}

func TestStoreSessionScoping(t *testing.T) {
	store := newTestStore(t)

	now := time.Now()
	if err := store.Index("sess1", "user", "mine", now); err != nil {
		t.Fatal(err)
	}
	if err := store.Index("sess2", "user", "other", now); err != nil {
		t.Fatal(err)
	}

	rows, err := store.Session("sess1")
	if err != nil {
		t.Fatal(err)
	}
	if len(rows) != 1 || rows[0].Content != "mine" {
		t.Errorf("session query leaked rows: %+v", rows)
	}
}

func TestLoggerIndexesThroughStore(t *testing.T) {
	logger := newTestLogger(t)
	store := newTestStore(t)
	logger.AttachStore(store)

	if err := logger.LogMessage(types.RoleUser, "indexed line", nil); err != nil {
		t.Fatal(err)
	}

	recent, err := store.Recent(10)
	if err != nil {
		t.Fatal(err)
	}
	if len(recent) != 1 {
		t.Fatalf("expected 1 indexed row, got %d", len(recent))
	}
	if recent[0].Role != "user" {
		t.Errorf("role = %q", recent[0].Role)
	}
	if recent[0].SessionKey != filepath.Base(logger.SessionPath()) {
		t.Errorf("session key = %q, want %q", recent[0].SessionKey, filepath.Base(logger.SessionPath()))
	}
}
