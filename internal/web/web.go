// Package web serves a read-only view of the task store over HTTP.
package web

import (
	"context"
	"embed"
	"errors"
	"html/template"
	"log"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/Joseda-hg/taskdesk/internal/model"
	"github.com/Joseda-hg/taskdesk/internal/report"
	"github.com/Joseda-hg/taskdesk/internal/tasks"
)

//go:embed templates/*.tmpl
var templateFS embed.FS

var templates = template.Must(template.New("").Funcs(template.FuncMap{
	"formatDate": model.FormatDate,
	"taskPath":   taskPath,
}).ParseFS(templateFS, "templates/*.tmpl"))

// TaskReader is the part of the task service the web view reads from.
type TaskReader interface {
	All(ctx context.Context) ([]model.Task, error)
	History(ctx context.Context, task model.Task) ([]model.HistoryEntry, error)
	Today() time.Time
}

type Server struct {
	tasks   TaskReader
	users   report.UserSource
	reports *report.Generator
	logger  *log.Logger
}

type taskRow struct {
	Task  model.Task
	Key   string
	Class string
}

func NewServer(tasks TaskReader, users report.UserSource, reports *report.Generator, logger *log.Logger) *Server {
	if logger == nil {
		logger = log.Default()
	}
	return &Server{tasks: tasks, users: users, reports: reports, logger: logger}
}

func (s *Server) Handler() http.Handler {
	r := gin.New()
	r.Use(gin.Recovery())
	r.SetHTMLTemplate(templates)

	r.GET("/", s.indexHandler)
	r.GET("/tasks/*key", s.taskHandler)
	r.GET("/health", s.healthHandler)
	r.GET("/reports", s.reportTextHandler)

	api := r.Group("/api")
	{
		api.GET("/tasks", s.apiTasksHandler)
		api.GET("/tasks/*key", s.apiTaskHandler)
		api.GET("/stats", s.apiStatsHandler)
		api.GET("/reports", s.apiReportsHandler)
	}
	return r
}

func (s *Server) healthHandler(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"status": "ok"})
}

func (s *Server) indexHandler(c *gin.Context) {
	assignee := model.NormalizeUsername(c.Query("assignee"))
	all, err := s.tasks.All(c.Request.Context())
	if err != nil {
		s.fail(c, "index", err)
		return
	}

	today := s.tasks.Today()
	visible := filterTasks(all, assignee, "", today)
	rows := make([]taskRow, 0, len(visible))
	for _, task := range visible {
		rows = append(rows, taskRow{Task: task, Key: tasks.Key(task), Class: rowClass(task, today)})
	}

	c.HTML(http.StatusOK, "index.tmpl", gin.H{
		"Assignee": assignee,
		"Overview": report.TaskOverviewOf(visible, today),
		"Rows":     rows,
	})
}

func (s *Server) taskHandler(c *gin.Context) {
	task, history, ok := s.lookup(c)
	if !ok {
		return
	}
	c.HTML(http.StatusOK, "task.tmpl", gin.H{"Task": task, "History": history})
}

func (s *Server) apiTasksHandler(c *gin.Context) {
	status := strings.TrimSpace(c.Query("status"))
	switch status {
	case "", "open", "done", "overdue":
	default:
		c.JSON(http.StatusBadRequest, gin.H{"error": "status must be open, done or overdue"})
		return
	}

	all, err := s.tasks.All(c.Request.Context())
	if err != nil {
		s.fail(c, "tasks", err)
		return
	}
	c.JSON(http.StatusOK, filterTasks(all, model.NormalizeUsername(c.Query("assignee")), status, s.tasks.Today()))
}

func (s *Server) apiTaskHandler(c *gin.Context) {
	task, history, ok := s.lookup(c)
	if !ok {
		return
	}
	c.JSON(http.StatusOK, gin.H{"task": task, "history": history})
}

func (s *Server) apiStatsHandler(c *gin.Context) {
	all, err := s.tasks.All(c.Request.Context())
	if err != nil {
		s.fail(c, "stats", err)
		return
	}
	c.JSON(http.StatusOK, report.Summarize(s.users.Names(), all))
}

func (s *Server) apiReportsHandler(c *gin.Context) {
	reports, err := s.reports.Build(c.Request.Context())
	if err != nil {
		s.fail(c, "reports", err)
		return
	}
	c.JSON(http.StatusOK, reports)
}

// reportTextHandler serves the artifacts last written by "generate reports".
func (s *Server) reportTextHandler(c *gin.Context) {
	taskText, userText, err := s.reports.Read()
	if errors.Is(err, report.ErrNotGenerated) {
		c.String(http.StatusNotFound, err.Error())
		return
	}
	if err != nil {
		s.fail(c, "reports", err)
		return
	}
	c.String(http.StatusOK, taskText+"\n\n"+userText)
}

func (s *Server) lookup(c *gin.Context) (model.Task, []model.HistoryEntry, bool) {
	// Legacy keys are descriptions and may contain "/", so the route is a
	// wildcard and the leading slash is stripped here.
	key := strings.TrimPrefix(c.Param("key"), "/")
	all, err := s.tasks.All(c.Request.Context())
	if err != nil {
		s.fail(c, "task", err)
		return model.Task{}, nil, false
	}
	for _, task := range all {
		if tasks.Key(task) != key {
			continue
		}
		history, err := s.tasks.History(c.Request.Context(), task)
		if err != nil {
			s.fail(c, "history", err)
			return model.Task{}, nil, false
		}
		if history == nil {
			history = []model.HistoryEntry{}
		}
		return task, history, true
	}
	c.JSON(http.StatusNotFound, gin.H{"error": "task not found"})
	return model.Task{}, nil, false
}

func (s *Server) fail(c *gin.Context, op string, err error) {
	s.logger.Printf("[web][%s][err] %v", op, err)
	c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
}

// taskPath links to a task page. Keys are escaped so descriptions with "/"
// or "?" still reach the task route.
func taskPath(key string) string {
	return "/tasks/" + url.PathEscape(key)
}

func filterTasks(all []model.Task, assignee, status string, today time.Time) []model.Task {
	out := make([]model.Task, 0, len(all))
	for _, task := range all {
		if assignee != "" && task.Assignee != assignee {
			continue
		}
		switch status {
		case "open":
			if task.IsComplete() {
				continue
			}
		case "done":
			if !task.IsComplete() {
				continue
			}
		case "overdue":
			if !task.IsOverdue(today) {
				continue
			}
		}
		out = append(out, task)
	}
	return out
}

func rowClass(task model.Task, today time.Time) string {
	switch {
	case task.IsComplete():
		return "done"
	case task.IsOverdue(today):
		return "overdue"
	}
	return ""
}
