package tasks

import (
	"time"

	"github.com/Joseda-hg/taskdesk/internal/model"
)

type Action int

const (
	ActionComplete Action = iota + 1
	ActionReassign
	ActionReschedule
)

func (a Action) String() string {
	switch a {
	case ActionComplete:
		return "mark complete"
	case ActionReassign:
		return "reassign"
	case ActionReschedule:
		return "reschedule"
	default:
		return "unknown action"
	}
}

// Edit is one requested change to a selected task. Assignee is read for
// ActionReassign and DueDate for ActionReschedule.
type Edit struct {
	Action   Action
	Assignee string
	DueDate  time.Time
}

// Directory answers whether a username is registered.
type Directory interface {
	Has(username string) bool
}

// Complete is terminal: nothing leaves it.
var transitions = map[model.Completion]map[Action]bool{
	model.Incomplete: {ActionComplete: true, ActionReassign: true, ActionReschedule: true},
	model.Complete:   {},
}

// CanApply reports whether action is allowed from the task's current state.
func CanApply(task model.Task, action Action) bool {
	return transitions[task.Completed][action]
}

// Apply validates edit against task and returns the mutated copy. The
// state check runs before any argument check.
func Apply(task model.Task, edit Edit, dir Directory) (model.Task, error) {
	switch edit.Action {
	case ActionComplete, ActionReassign, ActionReschedule:
	default:
		return model.Task{}, model.Errorf(model.ErrIllegalTransition, "unknown action %d", int(edit.Action))
	}
	if !CanApply(task, edit.Action) {
		return model.Task{}, model.Errorf(model.ErrIllegalTransition, "cannot %s a task that is %s", edit.Action, stateName(task.Completed))
	}

	switch edit.Action {
	case ActionComplete:
		task.Completed = model.Complete
	case ActionReassign:
		target := model.NormalizeUsername(edit.Assignee)
		if target == "" || dir == nil || !dir.Has(target) {
			return model.Task{}, model.Errorf(model.ErrInvalidTarget, "%q is not a registered user", target)
		}
		task.Assignee = target
	case ActionReschedule:
		if edit.DueDate.IsZero() {
			return model.Task{}, model.Errorf(model.ErrInvalidDate, "due date is required")
		}
		task.DueDate = model.DateOf(edit.DueDate)
	}
	return task, nil
}

func stateName(c model.Completion) string {
	if c == model.Complete {
		return "complete"
	}
	return "incomplete"
}
