package tui

import (
	"fmt"
	"time"

	"github.com/dustin/go-humanize"

	"github.com/Joseda-hg/taskdesk/internal/model"
)

func formatTaskSummary(task model.Task, today time.Time) string {
	return fmt.Sprintf("[%s] %s | %s | due %s", stateMarker(task, today), task.Title, task.Assignee, model.FormatDate(task.DueDate))
}

func stateMarker(task model.Task, today time.Time) string {
	switch {
	case task.IsComplete():
		return "x"
	case task.IsOverdue(today):
		return "!"
	}
	return " "
}

// formatTaskDetail lays out one task the way the task menu prints it.
func formatTaskDetail(task model.Task, today time.Time) []string {
	return []string{
		fmt.Sprintf("Assigned to:       %s", task.Assignee),
		fmt.Sprintf("Task:              %s", task.Title),
		fmt.Sprintf("Task description:  %s", task.Description),
		fmt.Sprintf("Date assigned:     %s", model.FormatDate(task.AssignedDate)),
		fmt.Sprintf("Due date:          %s (%s)", model.FormatDate(task.DueDate), dueLabel(task, today)),
		fmt.Sprintf("Task Completed?    %s", task.Completed),
	}
}

func dueLabel(task model.Task, today time.Time) string {
	due := model.DateOf(task.DueDate)
	day := model.DateOf(today)
	switch {
	case due.Equal(day):
		return "today"
	case task.IsOverdue(today):
		return "overdue, " + humanize.RelTime(due, day, "ago", "from now")
	}
	return humanize.RelTime(due, day, "ago", "from now")
}
