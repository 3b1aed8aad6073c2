// Package report aggregates task statistics and renders the overview
// artifacts written by the "generate reports" command.
package report

import (
	"fmt"
	"strings"

	"github.com/Joseda-hg/taskdesk/internal/model"
)

type Summary struct {
	Users int `json:"users"`
	Tasks int `json:"tasks"`
}

func Summarize(usernames []string, tasks []model.Task) Summary {
	return Summary{Users: len(usernames), Tasks: len(tasks)}
}

// FormatSummary renders the statistics block shown to the admin.
func FormatSummary(s Summary) string {
	var b strings.Builder
	b.WriteString("STATISTICS\n\n")
	fmt.Fprintf(&b, "Total number of registered users:\t\t %d\n", s.Users)
	fmt.Fprintf(&b, "Total number of tasks for all users:\t\t %d\n", s.Tasks)
	return b.String()
}
