package report

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/Joseda-hg/taskdesk/internal/model"
)

// FormatTaskOverview renders the task overview artifact without a trailing newline.
func FormatTaskOverview(o model.TaskOverview) string {
	lines := []string{
		"TASKS REPORT",
		"",
		fmt.Sprintf("Total tasks:                   %d", o.Total),
		fmt.Sprintf("Total Completed tasks:         %d", o.Completed),
		fmt.Sprintf("Total Incompleted tasks:       %d", o.Incomplete),
		fmt.Sprintf("Total Overdue tasks:           %d", o.Overdue),
		fmt.Sprintf("Incomplete tasks percent(%%):   %s%%", formatPercent(o.IncompletePct)),
		fmt.Sprintf("Overdue tasks percent(%%):      %s%%", formatPercent(o.OverduePct)),
	}
	return strings.Join(lines, "\n")
}

// FormatUserOverview renders one block per user separated by a blank line.
// No users renders an empty artifact.
func FormatUserOverview(overviews []model.UserOverview) string {
	blocks := make([]string, 0, len(overviews))
	for _, o := range overviews {
		blocks = append(blocks, formatUserBlock(o))
	}
	return strings.Join(blocks, "\n\n")
}

func formatUserBlock(o model.UserOverview) string {
	lines := []string{
		"USER TASKS REPORT",
		"",
		fmt.Sprintf("User:                   %s", o.Username),
		fmt.Sprintf("Total tasks:            %d", o.Total),
		fmt.Sprintf("%% of all tasks:         %s%%", formatPercent(o.PctOfAll)),
		fmt.Sprintf("%% of tasks completed:   %s%%", formatPercent(o.CompletePct)),
		fmt.Sprintf("%% of tasks incomplete:  %s%%", formatPercent(o.IncompletePct)),
		fmt.Sprintf("%% of tasks overdue:     %s%%", formatPercent(o.OverduePct)),
	}
	return strings.Join(lines, "\n")
}

// formatPercent prints the shortest decimal form with at least one
// fractional digit: 100.0, 33.33, 0.0.
func formatPercent(v float64) string {
	s := strconv.FormatFloat(v, 'f', -1, 64)
	if !strings.Contains(s, ".") {
		s += ".0"
	}
	return s
}
