package model

import (
	"strings"
	"time"
)

// DateLayout is the on-disk and on-screen calendar format, e.g. "05 Jan 2024".
const DateLayout = "02 Jan 2006"

// MaxDescriptionLength is the exclusive upper bound for a new task description.
const MaxDescriptionLength = 255

// AdminUsername is the only account allowed to register users and view reports.
const AdminUsername = "admin"

// Completion is the completion flag of a task as stored in the record line.
type Completion string

const (
	Incomplete Completion = "No"
	Complete   Completion = "Yes"
)

func (c Completion) Valid() bool {
	return c == Incomplete || c == Complete
}

type Task struct {
	// ID is empty for records written before tasks carried a stable key.
	ID           string     `json:"id,omitempty"`
	Assignee     string     `json:"assignee"`
	Title        string     `json:"title"`
	Description  string     `json:"description"`
	AssignedDate time.Time  `json:"assigned_date"`
	DueDate      time.Time  `json:"due_date"`
	Completed    Completion `json:"completed"`
}

func (t Task) IsComplete() bool {
	return t.Completed == Complete
}

// IsOverdue reports whether the task is incomplete and due strictly before today.
func (t Task) IsOverdue(today time.Time) bool {
	return !t.IsComplete() && DateOf(t.DueDate).Before(DateOf(today))
}

type User struct {
	Username string
	Password string
}

// NormalizeUsername applies the case folding used for every username lookup.
func NormalizeUsername(name string) string {
	return strings.ToLower(strings.TrimSpace(name))
}

// DateOf truncates t to its calendar date in UTC.
func DateOf(t time.Time) time.Time {
	y, m, d := t.Date()
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

func FormatDate(t time.Time) string {
	return t.Format(DateLayout)
}

type TaskOverview struct {
	Total         int     `json:"total"`
	Completed     int     `json:"completed"`
	Incomplete    int     `json:"incomplete"`
	Overdue       int     `json:"overdue"`
	IncompletePct float64 `json:"incomplete_pct"`
	OverduePct    float64 `json:"overdue_pct"`
}

type UserOverview struct {
	Username      string  `json:"username"`
	Total         int     `json:"total"`
	PctOfAll      float64 `json:"pct_of_all"`
	Completed     int     `json:"completed"`
	Overdue       int     `json:"overdue"`
	CompletePct   float64 `json:"complete_pct"`
	IncompletePct float64 `json:"incomplete_pct"`
	OverduePct    float64 `json:"overdue_pct"`
}

type HistoryEntry struct {
	ID        int64     `json:"id"`
	TaskKey   string    `json:"task_key"`
	EventType string    `json:"event_type"`
	Details   string    `json:"details"`
	CreatedAt time.Time `json:"created_at"`
}
