package tasks

import (
	"fmt"
	"strings"

	"github.com/Joseda-hg/taskdesk/internal/model"
)

// Key identifies a task for history lookups: its stable ID, or its
// description for records written before IDs existed.
func Key(task model.Task) string {
	if task.ID != "" {
		return task.ID
	}
	return task.Description
}

func formatCreatedDetails(task model.Task) string {
	return fmt.Sprintf("created: assignee=%s title='%s' due=%s", task.Assignee, task.Title, model.FormatDate(task.DueDate))
}

func formatTaskDiff(before, after model.Task) string {
	changes := []string{}
	if before.Assignee != after.Assignee {
		changes = append(changes, formatChange("assignee", before.Assignee, after.Assignee))
	}
	if before.Title != after.Title {
		changes = append(changes, formatChange("title", before.Title, after.Title))
	}
	if before.Description != after.Description {
		changes = append(changes, formatChange("description", before.Description, after.Description))
	}
	if !before.DueDate.Equal(after.DueDate) {
		changes = append(changes, formatChange("due", model.FormatDate(before.DueDate), model.FormatDate(after.DueDate)))
	}
	if before.Completed != after.Completed {
		changes = append(changes, formatChange("completed", string(before.Completed), string(after.Completed)))
	}

	if len(changes) == 0 {
		return "updated: no changes"
	}

	return "updated: " + strings.Join(changes, "; ")
}

func formatChange(field, before, after string) string {
	return fmt.Sprintf("%s: '%s' -> '%s'", field, valueOrNone(before), valueOrNone(after))
}

func valueOrNone(value string) string {
	trimmed := strings.TrimSpace(value)
	if trimmed == "" {
		return "none"
	}
	return trimmed
}
