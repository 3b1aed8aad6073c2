// Package tasks holds the task edit rules, the commit protocol that writes an
// edited task back to the store, and the service the user interfaces call.
package tasks

import (
	"context"
	"errors"
	"log"
	"strings"
	"time"
	"unicode/utf8"

	"github.com/google/uuid"

	"github.com/Joseda-hg/taskdesk/internal/model"
	"github.com/Joseda-hg/taskdesk/internal/record"
	"github.com/Joseda-hg/taskdesk/internal/users"
)

var (
	ErrDescriptionTooLong = errors.New("description must be shorter than 255 characters")
	ErrNoSession          = errors.New("no user is logged in")
	ErrDelimiterInField   = errors.New("title and description must not contain \", \"")
)

// HistoryLister is implemented by stores that can return the edit log.
type HistoryLister interface {
	ListHistory(ctx context.Context, taskKey string) ([]model.HistoryEntry, error)
}

type Service struct {
	store     RecordStore
	committer *Committer
	history   HistoryRecorder
	lister    HistoryLister
	logger    *log.Logger
	now       func() time.Time
	newID     func() string
}

type Option func(*Service)

// WithHistory enables edit history on stores that support it.
func WithHistory(history interface {
	HistoryRecorder
	HistoryLister
}) Option {
	return func(s *Service) {
		s.history = history
		s.lister = history
	}
}

func WithLogger(logger *log.Logger) Option {
	return func(s *Service) { s.logger = logger }
}

func WithClock(now func() time.Time) Option {
	return func(s *Service) { s.now = now }
}

func NewService(store RecordStore, opts ...Option) *Service {
	s := &Service{
		store:  store,
		logger: log.Default(),
		now:    time.Now,
		newID:  func() string { return uuid.NewString() },
	}
	for _, opt := range opts {
		opt(s)
	}
	s.committer = NewCommitter(store, s.history, s.logger)
	s.committer.now = s.now
	return s
}

// Today is the service clock truncated to a calendar date.
func (s *Service) Today() time.Time {
	return model.DateOf(s.now())
}

func (s *Service) All(ctx context.Context) ([]model.Task, error) {
	lines, err := s.store.LoadLines(ctx)
	if err != nil {
		return nil, err
	}
	return record.DecodeTasks(lines)
}

// Mine returns the tasks assigned to the session user, in store order.
func (s *Service) Mine(ctx context.Context, session users.Session) ([]model.Task, error) {
	if !session.Valid() {
		return nil, ErrNoSession
	}
	all, err := s.All(ctx)
	if err != nil {
		return nil, err
	}
	mine := make([]model.Task, 0, len(all))
	for _, task := range all {
		if task.Assignee == session.Username {
			mine = append(mine, task)
		}
	}
	return mine, nil
}

type NewTask struct {
	Assignee    string
	Title       string
	Description string
	DueDate     time.Time
}

// Add validates input and appends one incomplete task assigned today.
func (s *Service) Add(ctx context.Context, session users.Session, input NewTask) (model.Task, error) {
	if !session.Valid() {
		return model.Task{}, ErrNoSession
	}
	assignee := model.NormalizeUsername(input.Assignee)
	if !session.Directory.Has(assignee) {
		return model.Task{}, model.Errorf(model.ErrInvalidTarget, "%q is not a registered user", assignee)
	}
	title := strings.TrimSpace(input.Title)
	description := strings.TrimSpace(input.Description)
	if strings.Contains(title, record.Delimiter) || strings.Contains(description, record.Delimiter) {
		return model.Task{}, ErrDelimiterInField
	}
	if utf8.RuneCountInString(description) >= model.MaxDescriptionLength {
		return model.Task{}, ErrDescriptionTooLong
	}
	if input.DueDate.IsZero() {
		return model.Task{}, model.Errorf(model.ErrInvalidDate, "due date is required")
	}

	task := model.Task{
		ID:           s.newID(),
		Assignee:     assignee,
		Title:        title,
		Description:  description,
		AssignedDate: s.Today(),
		DueDate:      model.DateOf(input.DueDate),
		Completed:    model.Incomplete,
	}
	if err := s.store.AppendLine(ctx, record.EncodeTask(task)); err != nil {
		s.logger.Printf("[task][add][err] assignee=%s: %v", task.Assignee, err)
		return model.Task{}, err
	}
	s.logger.Printf("[task][add][ok] id=%s assignee=%s by=%s", task.ID, task.Assignee, session.Username)

	if s.history != nil {
		if _, err := s.history.AddHistory(ctx, model.HistoryEntry{
			TaskKey:   Key(task),
			EventType: "created",
			Details:   formatCreatedDetails(task),
			CreatedAt: s.now(),
		}); err != nil {
			s.logger.Printf("[task][add][history][err] id=%s: %v", task.ID, err)
		}
	}
	return task, nil
}

// Edit applies edit to task and commits the result.
func (s *Service) Edit(ctx context.Context, session users.Session, task model.Task, edit Edit) (model.Task, error) {
	if !session.Valid() {
		return model.Task{}, ErrNoSession
	}
	edited, err := Apply(task, edit, session.Directory)
	if err != nil {
		return model.Task{}, err
	}
	matched, err := s.committer.Commit(ctx, edited)
	if err != nil {
		s.logger.Printf("[task][edit][err] key=%q action=%s: %v", Key(task), edit.Action, err)
		return model.Task{}, err
	}
	s.logger.Printf("[task][edit][ok] key=%q action=%s records=%d by=%s", Key(edited), edit.Action, matched, session.Username)
	return edited, nil
}

// History returns the edit log for task, or nil when the store keeps none.
func (s *Service) History(ctx context.Context, task model.Task) ([]model.HistoryEntry, error) {
	if s.lister == nil {
		return nil, nil
	}
	return s.lister.ListHistory(ctx, Key(task))
}
