package report

import (
	"strconv"
	"time"

	"github.com/Joseda-hg/taskdesk/internal/model"
)

// TaskOverviewOf counts tasks by state. Percentages use the total task count
// as denominator and are 0 when there are no tasks.
func TaskOverviewOf(tasks []model.Task, today time.Time) model.TaskOverview {
	overview := model.TaskOverview{Total: len(tasks)}
	for _, task := range tasks {
		switch task.Completed {
		case model.Complete:
			overview.Completed++
		case model.Incomplete:
			overview.Incomplete++
		}
		if task.IsOverdue(today) {
			overview.Overdue++
		}
	}
	overview.IncompletePct = percent(overview.Incomplete, overview.Total)
	overview.OverduePct = percent(overview.Overdue, overview.Total)
	return overview
}

// UserOverviewOf returns one entry per username, in the given order.
func UserOverviewOf(usernames []string, tasks []model.Task, today time.Time) []model.UserOverview {
	overviews := make([]model.UserOverview, 0, len(usernames))
	for _, name := range usernames {
		overview := model.UserOverview{Username: name}
		for _, task := range tasks {
			if task.Assignee != name {
				continue
			}
			overview.Total++
			if task.IsComplete() {
				overview.Completed++
			}
			if task.IsOverdue(today) {
				overview.Overdue++
			}
		}
		overview.PctOfAll = percent(overview.Total, len(tasks))
		overview.CompletePct = percent(overview.Completed, overview.Total)
		overview.OverduePct = percent(overview.Overdue, overview.Total)
		overview.IncompletePct = incompletePercent(overview.CompletePct, overview.Total)
		overviews = append(overviews, overview)
	}
	return overviews
}

// incompletePercent is 100 for a user whose tasks are all open and 0 for a
// user with no tasks, even though both have a completion percentage of 0.
func incompletePercent(completePct float64, total int) float64 {
	switch {
	case completePct == 0 && total > 0:
		return 100
	case completePct == 0:
		return 0
	default:
		return round2(100 - completePct)
	}
}

func percent(part, total int) float64 {
	if total == 0 {
		return 0
	}
	return round2(float64(part) / float64(total) * 100)
}

// round2 rounds to two decimals on the exact binary value, ties to even:
// 3.125 becomes 3.12 and 9.375 becomes 9.38.
func round2(v float64) float64 {
	rounded, _ := strconv.ParseFloat(strconv.FormatFloat(v, 'f', 2, 64), 64)
	return rounded
}
