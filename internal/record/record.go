// Package record converts between raw store lines and model values.
package record

import (
	"strings"
	"time"

	"github.com/Joseda-hg/taskdesk/internal/model"
)

// Delimiter separates fields in every record line. Field values are not
// escaped, so a value containing it cannot round-trip.
const Delimiter = ", "

const (
	taskFields       = 6
	taskFieldsWithID = 7
)

// ParseDate parses "day month-abbreviation year" such as "15 Mar 2024" or
// "5 mar 2024".
func ParseDate(value string) (time.Time, error) {
	trimmed := strings.TrimSpace(value)
	parsed, err := time.Parse("2 Jan 2006", trimmed)
	if err != nil {
		return time.Time{}, model.Errorf(model.ErrInvalidDate, "%q is not in dd mon yyyy format", trimmed)
	}
	return parsed, nil
}

func DecodeTask(line string) (model.Task, error) {
	fields := splitFields(line)
	if len(fields) != taskFields && len(fields) != taskFieldsWithID {
		return model.Task{}, model.Errorf(model.ErrMalformedRecord, "expected %d fields, got %d", taskFields, len(fields))
	}

	assigned, err := ParseDate(fields[3])
	if err != nil {
		return model.Task{}, model.Errorf(model.ErrMalformedRecord, "assigned date %q", fields[3])
	}
	due, err := ParseDate(fields[4])
	if err != nil {
		return model.Task{}, model.Errorf(model.ErrMalformedRecord, "due date %q", fields[4])
	}
	completed := model.Completion(fields[5])
	if !completed.Valid() {
		return model.Task{}, model.Errorf(model.ErrMalformedRecord, "completion flag %q", fields[5])
	}

	task := model.Task{
		Assignee:     fields[0],
		Title:        fields[1],
		Description:  fields[2],
		AssignedDate: assigned,
		DueDate:      due,
		Completed:    completed,
	}
	if len(fields) == taskFieldsWithID {
		task.ID = fields[6]
	}
	return task, nil
}

func EncodeTask(task model.Task) string {
	fields := []string{
		task.Assignee,
		task.Title,
		task.Description,
		model.FormatDate(task.AssignedDate),
		model.FormatDate(task.DueDate),
		string(task.Completed),
	}
	if task.ID != "" {
		fields = append(fields, task.ID)
	}
	return strings.Join(fields, Delimiter)
}

// DecodeTasks decodes a whole store. The first malformed line aborts the read.
func DecodeTasks(lines []string) ([]model.Task, error) {
	tasks := make([]model.Task, 0, len(lines))
	for i, line := range lines {
		task, err := DecodeTask(line)
		if err != nil {
			return nil, model.Errorf(model.ErrMalformedRecord, "line %d: %v", i+1, err)
		}
		tasks = append(tasks, task)
	}
	return tasks, nil
}

func EncodeTasks(tasks []model.Task) []string {
	lines := make([]string, 0, len(tasks))
	for _, task := range tasks {
		lines = append(lines, EncodeTask(task))
	}
	return lines
}

func DecodeUser(line string) (model.User, error) {
	fields := splitFields(line)
	if len(fields) != 2 {
		return model.User{}, model.Errorf(model.ErrMalformedRecord, "expected 2 user fields, got %d", len(fields))
	}
	username := model.NormalizeUsername(fields[0])
	if username == "" {
		return model.User{}, model.Errorf(model.ErrMalformedRecord, "empty username")
	}
	return model.User{Username: username, Password: fields[1]}, nil
}

func EncodeUser(user model.User) string {
	return user.Username + Delimiter + user.Password
}

func splitFields(line string) []string {
	parts := strings.Split(strings.TrimSpace(line), Delimiter)
	for i := range parts {
		parts[i] = strings.TrimSpace(parts[i])
	}
	return parts
}
