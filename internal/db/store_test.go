package db

import (
	"context"
	"reflect"
	"testing"
	"time"

	"github.com/Joseda-hg/taskdesk/internal/model"
)

func TestLineStoreSaveAppendLoad(t *testing.T) {
	store, cleanup := newTestStore(t)
	defer cleanup()
	ctx := context.Background()

	tasks := store.Records(CollectionTasks)
	if err := tasks.SaveLines(ctx, []string{"first", "second"}); err != nil {
		t.Fatalf("save: %v", err)
	}
	if err := tasks.AppendLine(ctx, "third"); err != nil {
		t.Fatalf("append: %v", err)
	}

	lines, err := tasks.LoadLines(ctx)
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	want := []string{"first", "second", "third"}
	if !reflect.DeepEqual(lines, want) {
		t.Fatalf("expected %v, got %v", want, lines)
	}

	if err := tasks.SaveLines(ctx, []string{"replaced"}); err != nil {
		t.Fatalf("rewrite: %v", err)
	}
	lines, err = tasks.LoadLines(ctx)
	if err != nil {
		t.Fatalf("load after rewrite: %v", err)
	}
	if !reflect.DeepEqual(lines, []string{"replaced"}) {
		t.Fatalf("expected rewrite to replace lines, got %v", lines)
	}
}

func TestCollectionsAreIndependent(t *testing.T) {
	store, cleanup := newTestStore(t)
	defer cleanup()
	ctx := context.Background()

	if err := store.Records(CollectionUsers).AppendLine(ctx, "admin, adm1n"); err != nil {
		t.Fatalf("append user: %v", err)
	}
	if err := store.Records(CollectionTasks).SaveLines(ctx, nil); err != nil {
		t.Fatalf("clear tasks: %v", err)
	}

	users, err := store.Records(CollectionUsers).LoadLines(ctx)
	if err != nil {
		t.Fatalf("load users: %v", err)
	}
	if len(users) != 1 || users[0] != "admin, adm1n" {
		t.Fatalf("expected users to survive task rewrite, got %v", users)
	}
}

func TestSaveLinesCanceledContextKeepsPreviousLines(t *testing.T) {
	store, cleanup := newTestStore(t)
	defer cleanup()

	tasks := store.Records(CollectionTasks)
	if err := tasks.SaveLines(context.Background(), []string{"keep"}); err != nil {
		t.Fatalf("seed: %v", err)
	}

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	if err := tasks.SaveLines(ctx, []string{"lost"}); err == nil {
		t.Fatalf("expected canceled save to fail")
	}

	lines, err := tasks.LoadLines(context.Background())
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if !reflect.DeepEqual(lines, []string{"keep"}) {
		t.Fatalf("expected previous lines, got %v", lines)
	}
}

func TestHistoryRoundTrip(t *testing.T) {
	store, cleanup := newTestStore(t)
	defer cleanup()
	ctx := context.Background()

	when := time.Date(2024, time.March, 1, 10, 30, 0, 0, time.UTC)
	added, err := store.AddHistory(ctx, model.HistoryEntry{
		TaskKey:   "task-1",
		EventType: "updated",
		Details:   "updated: completed: 'No' -> 'Yes'",
		CreatedAt: when,
	})
	if err != nil {
		t.Fatalf("add history: %v", err)
	}
	if added.ID == 0 {
		t.Fatalf("expected history ID to be set")
	}
	if _, err := store.AddHistory(ctx, model.HistoryEntry{TaskKey: "task-2", EventType: "created", Details: "x"}); err != nil {
		t.Fatalf("add other history: %v", err)
	}

	history, err := store.ListHistory(ctx, "task-1")
	if err != nil {
		t.Fatalf("list history: %v", err)
	}
	if len(history) != 1 {
		t.Fatalf("expected 1 history entry, got %d", len(history))
	}
	if history[0].EventType != "updated" || history[0].Details != added.Details {
		t.Fatalf("unexpected history entry %+v", history[0])
	}
	if !history[0].CreatedAt.Equal(when) {
		t.Fatalf("expected created_at %v, got %v", when, history[0].CreatedAt)
	}
}

func newTestStore(t *testing.T) (*Store, func()) {
	t.Helper()
	db, err := Open(":memory:")
	if err != nil {
		t.Fatalf("open db: %v", err)
	}
	return NewStore(db), func() {
		_ = db.Close()
	}
}
