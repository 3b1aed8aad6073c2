package tasks

import (
	"context"
	"log"
	"time"

	"github.com/Joseda-hg/taskdesk/internal/model"
	"github.com/Joseda-hg/taskdesk/internal/record"
)

// RecordStore is an ordered sequence of raw task lines.
type RecordStore interface {
	LoadLines(ctx context.Context) ([]string, error)
	SaveLines(ctx context.Context, lines []string) error
	AppendLine(ctx context.Context, line string) error
}

// HistoryRecorder is implemented by stores that keep an edit log.
type HistoryRecorder interface {
	AddHistory(ctx context.Context, entry model.HistoryEntry) (model.HistoryEntry, error)
}

// Committer writes one edited task back into the full record set.
//
// It reloads the store, replaces matching records and rewrites everything in
// a single SaveLines call. Reload and rewrite are not guarded against other
// writers; the store is assumed to have one writer per session.
type Committer struct {
	store   RecordStore
	history HistoryRecorder
	logger  *log.Logger
	now     func() time.Time
}

func NewCommitter(store RecordStore, history HistoryRecorder, logger *log.Logger) *Committer {
	if logger == nil {
		logger = log.Default()
	}
	return &Committer{store: store, history: history, logger: logger, now: time.Now}
}

// Commit replaces every stored task matching edited and returns how many
// records were replaced.
//
// Tasks with an ID match on ID. Tasks without one match on description
// among records that also lack an ID, so every legacy record sharing that
// description receives the same edit while ID-keyed records stay untouched.
func (c *Committer) Commit(ctx context.Context, edited model.Task) (int, error) {
	lines, err := c.store.LoadLines(ctx)
	if err != nil {
		return 0, err
	}
	stored, err := record.DecodeTasks(lines)
	if err != nil {
		return 0, err
	}

	matched := 0
	var before model.Task
	for i := range stored {
		if !matches(stored[i], edited) {
			continue
		}
		if matched == 0 {
			before = stored[i]
		}
		stored[i] = edited
		matched++
	}
	if matched == 0 {
		return 0, model.Errorf(model.ErrTaskNotFound, "no record matches %q", Key(edited))
	}

	if err := c.store.SaveLines(ctx, record.EncodeTasks(stored)); err != nil {
		return 0, err
	}
	if matched > 1 {
		c.logger.Printf("[commit][warn] description %q matched %d records; all were updated", edited.Description, matched)
	}

	if c.history != nil {
		if _, err := c.history.AddHistory(ctx, model.HistoryEntry{
			TaskKey:   Key(edited),
			EventType: "updated",
			Details:   formatTaskDiff(before, edited),
			CreatedAt: c.now(),
		}); err != nil {
			c.logger.Printf("[commit][history][err] key=%q: %v", Key(edited), err)
		}
	}

	return matched, nil
}

func matches(stored, edited model.Task) bool {
	if edited.ID != "" {
		return stored.ID == edited.ID
	}
	return stored.ID == "" && stored.Description == edited.Description
}
