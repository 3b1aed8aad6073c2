package report

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"log"
	"os"
	"path/filepath"
	"time"

	"github.com/Joseda-hg/taskdesk/internal/flatfile"
	"github.com/Joseda-hg/taskdesk/internal/model"
)

const (
	TaskOverviewFile = "task_overview.txt"
	UserOverviewFile = "user_overview.txt"
)

var ErrNotGenerated = errors.New("reports have not been generated yet")

// TaskSource loads every stored task.
type TaskSource interface {
	All(ctx context.Context) ([]model.Task, error)
}

// UserSource lists registered usernames in store order.
type UserSource interface {
	Names() []string
}

type Reports struct {
	Tasks    model.TaskOverview   `json:"tasks"`
	Users    []model.UserOverview `json:"users"`
	TaskText string               `json:"-"`
	UserText string               `json:"-"`
}

// Generator builds both overview reports and writes them into Dir.
type Generator struct {
	Tasks  TaskSource
	Users  UserSource
	Dir    string
	Now    func() time.Time
	Logger *log.Logger
}

func (g *Generator) today() time.Time {
	if g.Now == nil {
		return model.DateOf(time.Now())
	}
	return model.DateOf(g.Now())
}

func (g *Generator) logf(format string, args ...any) {
	if g.Logger != nil {
		g.Logger.Printf(format, args...)
	}
}

// Build computes the reports without writing them.
func (g *Generator) Build(ctx context.Context) (Reports, error) {
	tasks, err := g.Tasks.All(ctx)
	if err != nil {
		return Reports{}, err
	}
	today := g.today()
	reports := Reports{
		Tasks: TaskOverviewOf(tasks, today),
		Users: UserOverviewOf(g.Users.Names(), tasks, today),
	}
	reports.TaskText = FormatTaskOverview(reports.Tasks)
	reports.UserText = FormatUserOverview(reports.Users)
	return reports, nil
}

// Generate builds both reports and replaces the two artifacts atomically.
func (g *Generator) Generate(ctx context.Context) (Reports, error) {
	reports, err := g.Build(ctx)
	if err != nil {
		g.logf("[report][generate][err] %v", err)
		return Reports{}, err
	}
	if err := os.MkdirAll(g.Dir, 0o755); err != nil {
		return Reports{}, model.Unavailable("create report dir", err)
	}
	if err := flatfile.WriteFileAtomic(filepath.Join(g.Dir, TaskOverviewFile), []byte(reports.TaskText), 0o644); err != nil {
		return Reports{}, model.Unavailable("write "+TaskOverviewFile, err)
	}
	if err := flatfile.WriteFileAtomic(filepath.Join(g.Dir, UserOverviewFile), []byte(reports.UserText), 0o644); err != nil {
		return Reports{}, model.Unavailable("write "+UserOverviewFile, err)
	}
	g.logf("[report][generate][ok] tasks=%d users=%d dir=%s", reports.Tasks.Total, len(reports.Users), g.Dir)
	return reports, nil
}

// Read returns the task and user artifacts last written by Generate.
func (g *Generator) Read() (string, string, error) {
	taskText, err := os.ReadFile(filepath.Join(g.Dir, TaskOverviewFile))
	if err != nil {
		return "", "", readError(TaskOverviewFile, err)
	}
	userText, err := os.ReadFile(filepath.Join(g.Dir, UserOverviewFile))
	if err != nil {
		return "", "", readError(UserOverviewFile, err)
	}
	return string(taskText), string(userText), nil
}

func readError(name string, err error) error {
	if errors.Is(err, fs.ErrNotExist) {
		return fmt.Errorf("%w: %s is missing", ErrNotGenerated, name)
	}
	return model.Unavailable("read "+name, err)
}
