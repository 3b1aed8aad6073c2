package tasks

import (
	"bytes"
	"context"
	"errors"
	"log"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/Joseda-hg/taskdesk/internal/db"
	"github.com/Joseda-hg/taskdesk/internal/flatfile"
	"github.com/Joseda-hg/taskdesk/internal/model"
	"github.com/Joseda-hg/taskdesk/internal/record"
	"github.com/Joseda-hg/taskdesk/internal/users"
)

var testNow = time.Date(2024, time.March, 1, 9, 0, 0, 0, time.UTC)

func TestAddAppendsTaskWithID(t *testing.T) {
	store := &memStore{}
	svc := newTestService(store)
	alice := newTestSession(t, "alice")

	task, err := svc.Add(context.Background(), alice, NewTask{
		Assignee:    "Bob",
		Title:       "Deploy",
		Description: "Ship release",
		DueDate:     time.Date(2024, time.March, 10, 0, 0, 0, 0, time.UTC),
	})
	if err != nil {
		t.Fatalf("add: %v", err)
	}
	if task.ID == "" {
		t.Fatalf("expected task ID to be set")
	}
	if task.Assignee != "bob" || task.Completed != model.Incomplete {
		t.Fatalf("unexpected task %+v", task)
	}
	if !task.AssignedDate.Equal(model.DateOf(testNow)) {
		t.Fatalf("expected assigned today, got %v", task.AssignedDate)
	}

	if len(store.lines) != 1 {
		t.Fatalf("expected 1 stored line, got %d", len(store.lines))
	}
	wantPrefix := "bob, Deploy, Ship release, 01 Mar 2024, 10 Mar 2024, No, "
	if !strings.HasPrefix(store.lines[0], wantPrefix) {
		t.Fatalf("expected line prefix %q, got %q", wantPrefix, store.lines[0])
	}
}

func TestAddValidation(t *testing.T) {
	svc := newTestService(&memStore{})
	alice := newTestSession(t, "alice")
	due := time.Date(2024, time.March, 10, 0, 0, 0, 0, time.UTC)

	cases := []struct {
		name  string
		input NewTask
		want  error
	}{
		{"unregistered assignee", NewTask{Assignee: "carol", Description: "x", DueDate: due}, model.ErrInvalidTarget},
		{"long description", NewTask{Assignee: "bob", Description: strings.Repeat("a", 255), DueDate: due}, ErrDescriptionTooLong},
		{"missing due date", NewTask{Assignee: "bob", Description: "x"}, model.ErrInvalidDate},
		{"delimiter in title", NewTask{Assignee: "bob", Title: "a, b", Description: "x", DueDate: due}, ErrDelimiterInField},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			if _, err := svc.Add(context.Background(), alice, tc.input); !errors.Is(err, tc.want) {
				t.Fatalf("expected %v, got %v", tc.want, err)
			}
		})
	}

	if _, err := svc.Add(context.Background(), users.Session{}, NewTask{}); !errors.Is(err, ErrNoSession) {
		t.Fatalf("expected no session, got %v", err)
	}
}

func TestMineFiltersBySessionUser(t *testing.T) {
	store := &memStore{lines: []string{
		"alice, Report, Draft Q1 report, 01 Jan 2024, 01 Feb 2024, No",
		"bob, Deploy, Ship release, 01 Jan 2024, 10 Jan 2024, No",
		"alice, Review, Check PR, 02 Jan 2024, 05 Jan 2024, Yes",
	}}
	svc := newTestService(store)

	mine, err := svc.Mine(context.Background(), newTestSession(t, "alice"))
	if err != nil {
		t.Fatalf("mine: %v", err)
	}
	if len(mine) != 2 || mine[0].Title != "Report" || mine[1].Title != "Review" {
		t.Fatalf("unexpected tasks %+v", mine)
	}
}

func TestEditMarkCompleteUpdatesStoreLine(t *testing.T) {
	store := &memStore{lines: []string{"alice, Report, Draft Q1 report, 01 Jan 2024, 01 Feb 2024, No"}}
	svc := newTestService(store)
	alice := newTestSession(t, "alice")

	tasks, err := svc.Mine(context.Background(), alice)
	if err != nil {
		t.Fatalf("mine: %v", err)
	}
	if _, err := svc.Edit(context.Background(), alice, tasks[0], Edit{Action: ActionComplete}); err != nil {
		t.Fatalf("edit: %v", err)
	}

	want := "alice, Report, Draft Q1 report, 01 Jan 2024, 01 Feb 2024, Yes"
	if store.lines[0] != want {
		t.Fatalf("expected %q, got %q", want, store.lines[0])
	}
}

func TestEditReassignCompleteTaskIsRejected(t *testing.T) {
	original := "alice, Report, Draft Q1 report, 01 Jan 2024, 01 Feb 2024, Yes"
	store := &memStore{lines: []string{original}}
	svc := newTestService(store)
	alice := newTestSession(t, "alice")

	task, err := record.DecodeTask(original)
	if err != nil {
		t.Fatalf("decode: %v", err)
	}
	_, err = svc.Edit(context.Background(), alice, task, Edit{Action: ActionReassign, Assignee: "bob"})
	if !errors.Is(err, model.ErrIllegalTransition) {
		t.Fatalf("expected illegal transition, got %v", err)
	}
	if store.saves != 0 || store.lines[0] != original {
		t.Fatalf("expected store unchanged")
	}
}

func TestServiceHistoryWithSQLiteStore(t *testing.T) {
	conn, err := db.Open(":memory:")
	if err != nil {
		t.Fatalf("open db: %v", err)
	}
	defer conn.Close()
	sqlStore := db.NewStore(conn)

	svc := NewService(sqlStore.Records(db.CollectionTasks),
		WithHistory(sqlStore),
		WithClock(func() time.Time { return testNow }),
		WithLogger(log.New(&bytes.Buffer{}, "", 0)),
	)
	alice := newTestSession(t, "alice")
	ctx := context.Background()

	task, err := svc.Add(ctx, alice, NewTask{
		Assignee:    "alice",
		Title:       "Report",
		Description: "Draft Q1 report",
		DueDate:     time.Date(2024, time.April, 1, 0, 0, 0, 0, time.UTC),
	})
	if err != nil {
		t.Fatalf("add: %v", err)
	}
	if _, err := svc.Edit(ctx, alice, task, Edit{Action: ActionReassign, Assignee: "bob"}); err != nil {
		t.Fatalf("edit: %v", err)
	}

	history, err := svc.History(ctx, task)
	if err != nil {
		t.Fatalf("history: %v", err)
	}
	if len(history) != 2 {
		t.Fatalf("expected 2 history entries, got %d", len(history))
	}
	if history[0].EventType != "created" || history[1].EventType != "updated" {
		t.Fatalf("unexpected events %q, %q", history[0].EventType, history[1].EventType)
	}
	if history[1].Details != "updated: assignee: 'alice' -> 'bob'" {
		t.Fatalf("unexpected details %q", history[1].Details)
	}

	all, err := svc.All(ctx)
	if err != nil {
		t.Fatalf("all: %v", err)
	}
	if len(all) != 1 || all[0].Assignee != "bob" || all[0].ID != task.ID {
		t.Fatalf("unexpected stored tasks %+v", all)
	}
}

func newTestService(store RecordStore) *Service {
	return NewService(store,
		WithClock(func() time.Time { return testNow }),
		WithLogger(log.New(&bytes.Buffer{}, "", 0)),
	)
}

func newTestSession(t *testing.T, username string) users.Session {
	t.Helper()
	store, err := flatfile.New(filepath.Join(t.TempDir(), "user.txt"))
	if err != nil {
		t.Fatalf("user store: %v", err)
	}
	if err := store.SaveLines(context.Background(), []string{"admin, adm1n", "alice, a", "bob, b"}); err != nil {
		t.Fatalf("seed users: %v", err)
	}
	dir, err := users.Load(context.Background(), store, "")
	if err != nil {
		t.Fatalf("load users: %v", err)
	}
	password := map[string]string{"admin": "adm1n", "alice": "a", "bob": "b"}[username]
	session, err := dir.Authenticate(username, password)
	if err != nil {
		t.Fatalf("authenticate %s: %v", username, err)
	}
	return session
}
