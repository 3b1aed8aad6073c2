package tasks

import (
	"errors"
	"testing"
	"time"

	"github.com/Joseda-hg/taskdesk/internal/model"
)

type setDirectory map[string]bool

func (d setDirectory) Has(username string) bool { return d[username] }

func openTask() model.Task {
	return model.Task{
		Assignee:     "alice",
		Title:        "Report",
		Description:  "Draft Q1 report",
		AssignedDate: time.Date(2024, time.January, 1, 0, 0, 0, 0, time.UTC),
		DueDate:      time.Date(2024, time.February, 1, 0, 0, 0, 0, time.UTC),
		Completed:    model.Incomplete,
	}
}

func TestApplyTransitionsFromIncomplete(t *testing.T) {
	dir := setDirectory{"alice": true, "bob": true}

	t.Run("mark complete", func(t *testing.T) {
		task := openTask()
		got, err := Apply(task, Edit{Action: ActionComplete}, dir)
		if err != nil {
			t.Fatalf("apply: %v", err)
		}
		if got.Completed != model.Complete {
			t.Fatalf("expected complete, got %q", got.Completed)
		}
		if task.Completed != model.Incomplete {
			t.Fatalf("expected input task to stay unchanged")
		}
	})

	t.Run("reassign", func(t *testing.T) {
		got, err := Apply(openTask(), Edit{Action: ActionReassign, Assignee: " Bob "}, dir)
		if err != nil {
			t.Fatalf("apply: %v", err)
		}
		if got.Assignee != "bob" {
			t.Fatalf("expected assignee bob, got %q", got.Assignee)
		}
	})

	t.Run("reschedule", func(t *testing.T) {
		due := time.Date(2024, time.March, 15, 13, 45, 0, 0, time.UTC)
		got, err := Apply(openTask(), Edit{Action: ActionReschedule, DueDate: due}, dir)
		if err != nil {
			t.Fatalf("apply: %v", err)
		}
		want := time.Date(2024, time.March, 15, 0, 0, 0, 0, time.UTC)
		if !got.DueDate.Equal(want) {
			t.Fatalf("expected due %v, got %v", want, got.DueDate)
		}
	})
}

func TestApplyRejections(t *testing.T) {
	dir := setDirectory{"alice": true, "bob": true}
	done := openTask()
	done.Completed = model.Complete

	cases := []struct {
		name string
		task model.Task
		edit Edit
		want error
	}{
		{"reassign complete task", done, Edit{Action: ActionReassign, Assignee: "bob"}, model.ErrIllegalTransition},
		{"reassign complete task to unknown user", done, Edit{Action: ActionReassign, Assignee: "carol"}, model.ErrIllegalTransition},
		{"complete complete task", done, Edit{Action: ActionComplete}, model.ErrIllegalTransition},
		{"reschedule complete task", done, Edit{Action: ActionReschedule, DueDate: time.Now()}, model.ErrIllegalTransition},
		{"reassign to unknown user", openTask(), Edit{Action: ActionReassign, Assignee: "carol"}, model.ErrInvalidTarget},
		{"reassign to empty user", openTask(), Edit{Action: ActionReassign}, model.ErrInvalidTarget},
		{"reschedule without date", openTask(), Edit{Action: ActionReschedule}, model.ErrInvalidDate},
		{"unknown action", openTask(), Edit{Action: Action(42)}, model.ErrIllegalTransition},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			if _, err := Apply(tc.task, tc.edit, dir); !errors.Is(err, tc.want) {
				t.Fatalf("expected %v, got %v", tc.want, err)
			}
		})
	}
}

func TestCanApply(t *testing.T) {
	task := openTask()
	for _, action := range []Action{ActionComplete, ActionReassign, ActionReschedule} {
		if !CanApply(task, action) {
			t.Fatalf("expected %s to be allowed on incomplete task", action)
		}
	}
	task.Completed = model.Complete
	for _, action := range []Action{ActionComplete, ActionReassign, ActionReschedule} {
		if CanApply(task, action) {
			t.Fatalf("expected %s to be rejected on complete task", action)
		}
	}
}
