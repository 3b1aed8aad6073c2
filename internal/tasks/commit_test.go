package tasks

import (
	"bytes"
	"context"
	"errors"
	"log"
	"reflect"
	"strings"
	"testing"

	"github.com/Joseda-hg/taskdesk/internal/model"
)

type memStore struct {
	lines    []string
	saves    int
	failSave bool
}

func (m *memStore) LoadLines(context.Context) ([]string, error) {
	return append([]string(nil), m.lines...), nil
}

func (m *memStore) SaveLines(_ context.Context, lines []string) error {
	if m.failSave {
		return model.Unavailable("save", errors.New("disk full"))
	}
	m.saves++
	m.lines = append([]string(nil), lines...)
	return nil
}

func (m *memStore) AppendLine(_ context.Context, line string) error {
	m.lines = append(m.lines, line)
	return nil
}

type memHistory struct {
	entries []model.HistoryEntry
}

func (h *memHistory) AddHistory(_ context.Context, entry model.HistoryEntry) (model.HistoryEntry, error) {
	entry.ID = int64(len(h.entries) + 1)
	h.entries = append(h.entries, entry)
	return entry, nil
}

func (h *memHistory) ListHistory(_ context.Context, key string) ([]model.HistoryEntry, error) {
	var out []model.HistoryEntry
	for _, entry := range h.entries {
		if entry.TaskKey == key {
			out = append(out, entry)
		}
	}
	return out, nil
}

func newTestCommitter(store RecordStore, history HistoryRecorder) *Committer {
	return NewCommitter(store, history, log.New(&bytes.Buffer{}, "", 0))
}

func TestCommitReplacesMatchingRecordAndKeepsOrder(t *testing.T) {
	store := &memStore{lines: []string{
		"bob, Deploy, Ship release, 01 Jan 2024, 10 Jan 2024, No",
		"alice, Report, Draft Q1 report, 01 Jan 2024, 01 Feb 2024, No",
		"carol, Review, Check PR, 02 Jan 2024, 05 Jan 2024, Yes",
	}}
	edited := openTask()
	edited.Completed = model.Complete

	matched, err := newTestCommitter(store, nil).Commit(context.Background(), edited)
	if err != nil {
		t.Fatalf("commit: %v", err)
	}
	if matched != 1 {
		t.Fatalf("expected 1 match, got %d", matched)
	}

	want := []string{
		"bob, Deploy, Ship release, 01 Jan 2024, 10 Jan 2024, No",
		"alice, Report, Draft Q1 report, 01 Jan 2024, 01 Feb 2024, Yes",
		"carol, Review, Check PR, 02 Jan 2024, 05 Jan 2024, Yes",
	}
	if !reflect.DeepEqual(store.lines, want) {
		t.Fatalf("unexpected store:\nwant %v\ngot  %v", want, store.lines)
	}
}

func TestCommitSharedDescriptionMutatesAllLegacyRecords(t *testing.T) {
	store := &memStore{lines: []string{
		"alice, Report, Draft Q1 report, 01 Jan 2024, 01 Feb 2024, No",
		"bob, Other, Unrelated, 01 Jan 2024, 01 Feb 2024, No",
		"bob, Report copy, Draft Q1 report, 03 Jan 2024, 09 Feb 2024, No",
	}}
	edited := openTask()
	edited.Completed = model.Complete

	matched, err := newTestCommitter(store, nil).Commit(context.Background(), edited)
	if err != nil {
		t.Fatalf("commit: %v", err)
	}
	if matched != 2 {
		t.Fatalf("expected both records sharing the description to match, got %d", matched)
	}
	if store.lines[0] != store.lines[2] {
		t.Fatalf("expected both records to receive identical values:\n%s\n%s", store.lines[0], store.lines[2])
	}
	if store.lines[1] != "bob, Other, Unrelated, 01 Jan 2024, 01 Feb 2024, No" {
		t.Fatalf("expected unrelated record untouched, got %q", store.lines[1])
	}
}

func TestCommitWithIDTouchesOnlyThatRecord(t *testing.T) {
	store := &memStore{lines: []string{
		"alice, Report, Draft Q1 report, 01 Jan 2024, 01 Feb 2024, No, id-1",
		"bob, Report copy, Draft Q1 report, 03 Jan 2024, 09 Feb 2024, No, id-2",
	}}
	edited := openTask()
	edited.ID = "id-1"
	edited.Completed = model.Complete

	matched, err := newTestCommitter(store, nil).Commit(context.Background(), edited)
	if err != nil {
		t.Fatalf("commit: %v", err)
	}
	if matched != 1 {
		t.Fatalf("expected 1 match, got %d", matched)
	}
	if !strings.HasSuffix(store.lines[0], ", Yes, id-1") {
		t.Fatalf("expected id-1 completed, got %q", store.lines[0])
	}
	if store.lines[1] != "bob, Report copy, Draft Q1 report, 03 Jan 2024, 09 Feb 2024, No, id-2" {
		t.Fatalf("expected id-2 untouched, got %q", store.lines[1])
	}
}

func TestCommitLegacyEditSkipsRecordsWithID(t *testing.T) {
	keyed := "bob, Report copy, Draft Q1 report, 03 Jan 2024, 09 Feb 2024, No, id-2"
	store := &memStore{lines: []string{
		"alice, Report, Draft Q1 report, 01 Jan 2024, 01 Feb 2024, No",
		keyed,
	}}
	edited := openTask()
	edited.Completed = model.Complete

	matched, err := newTestCommitter(store, nil).Commit(context.Background(), edited)
	if err != nil {
		t.Fatalf("commit: %v", err)
	}
	if matched != 1 {
		t.Fatalf("expected only the legacy record to match, got %d", matched)
	}
	if store.lines[0] != "alice, Report, Draft Q1 report, 01 Jan 2024, 01 Feb 2024, Yes" {
		t.Fatalf("expected legacy record completed, got %q", store.lines[0])
	}
	if store.lines[1] != keyed {
		t.Fatalf("expected keyed record untouched, got %q", store.lines[1])
	}
}

func TestCommitNoOpIsIdempotent(t *testing.T) {
	original := []string{
		"alice, Report, Draft Q1 report, 01 Jan 2024, 01 Feb 2024, No",
		"bob, Deploy, Ship release, 01 Jan 2024, 10 Jan 2024, Yes",
	}
	store := &memStore{lines: append([]string(nil), original...)}
	committer := newTestCommitter(store, nil)

	for i := 0; i < 2; i++ {
		if _, err := committer.Commit(context.Background(), openTask()); err != nil {
			t.Fatalf("commit %d: %v", i, err)
		}
		if !reflect.DeepEqual(store.lines, original) {
			t.Fatalf("commit %d changed the store: %v", i, store.lines)
		}
	}
}

func TestCommitFailuresLeaveStoreUntouched(t *testing.T) {
	t.Run("not found", func(t *testing.T) {
		store := &memStore{lines: []string{"bob, Deploy, Ship release, 01 Jan 2024, 10 Jan 2024, No"}}
		if _, err := newTestCommitter(store, nil).Commit(context.Background(), openTask()); !errors.Is(err, model.ErrTaskNotFound) {
			t.Fatalf("expected task not found, got %v", err)
		}
		if store.saves != 0 {
			t.Fatalf("expected no save, got %d", store.saves)
		}
	})

	t.Run("malformed store", func(t *testing.T) {
		store := &memStore{lines: []string{
			"alice, Report, Draft Q1 report, 01 Jan 2024, 01 Feb 2024, No",
			"garbage",
		}}
		if _, err := newTestCommitter(store, nil).Commit(context.Background(), openTask()); !errors.Is(err, model.ErrMalformedRecord) {
			t.Fatalf("expected malformed record, got %v", err)
		}
		if store.saves != 0 || store.lines[1] != "garbage" {
			t.Fatalf("expected store untouched")
		}
	})

	t.Run("store unavailable", func(t *testing.T) {
		original := "alice, Report, Draft Q1 report, 01 Jan 2024, 01 Feb 2024, No"
		store := &memStore{lines: []string{original}, failSave: true}
		edited := openTask()
		edited.Completed = model.Complete
		if _, err := newTestCommitter(store, nil).Commit(context.Background(), edited); !errors.Is(err, model.ErrStoreUnavailable) {
			t.Fatalf("expected store unavailable, got %v", err)
		}
		if store.lines[0] != original {
			t.Fatalf("expected original line, got %q", store.lines[0])
		}
	})
}

func TestCommitRecordsHistoryDiff(t *testing.T) {
	store := &memStore{lines: []string{"alice, Report, Draft Q1 report, 01 Jan 2024, 01 Feb 2024, No"}}
	history := &memHistory{}
	edited := openTask()
	edited.Completed = model.Complete

	if _, err := newTestCommitter(store, history).Commit(context.Background(), edited); err != nil {
		t.Fatalf("commit: %v", err)
	}
	if len(history.entries) != 1 {
		t.Fatalf("expected 1 history entry, got %d", len(history.entries))
	}
	entry := history.entries[0]
	if entry.TaskKey != "Draft Q1 report" || entry.EventType != "updated" {
		t.Fatalf("unexpected entry %+v", entry)
	}
	if entry.Details != "updated: completed: 'No' -> 'Yes'" {
		t.Fatalf("unexpected details %q", entry.Details)
	}
}
