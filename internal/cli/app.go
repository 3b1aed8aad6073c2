package cli

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log"
	"os"
	"path/filepath"

	"github.com/Joseda-hg/taskdesk/internal/config"
	"github.com/Joseda-hg/taskdesk/internal/db"
	"github.com/Joseda-hg/taskdesk/internal/flatfile"
	"github.com/Joseda-hg/taskdesk/internal/report"
	"github.com/Joseda-hg/taskdesk/internal/tasks"
	"github.com/Joseda-hg/taskdesk/internal/users"
	"github.com/Joseda-hg/taskdesk/internal/web"
)

// app holds the services built from one resolved configuration.
type app struct {
	cfg     config.Config
	logger  *log.Logger
	tasks   *tasks.Service
	users   *users.Directory
	reports *report.Generator
	closers []io.Closer
}

// recordStore is what both storage backends offer to the task service and
// the user directory.
type recordStore interface {
	tasks.RecordStore
	users.RecordStore
}

func openApp(ctx context.Context, cfg config.Config, logger *log.Logger) (*app, error) {
	a := &app{cfg: cfg, logger: logger}

	var (
		taskStore recordStore
		userStore recordStore
		opts      = []tasks.Option{tasks.WithLogger(logger)}
	)
	switch cfg.Backend {
	case config.BackendSQLite:
		if err := config.EnsureDir(cfg.DBPath); err != nil {
			return nil, err
		}
		sqlDB, err := db.Open(cfg.DBPath)
		if err != nil {
			return nil, fmt.Errorf("open %s: %w", cfg.DBPath, err)
		}
		a.closers = append(a.closers, sqlDB)
		store := db.NewStore(sqlDB)
		taskStore = store.Records(db.CollectionTasks)
		userStore = store.Records(db.CollectionUsers)
		opts = append(opts, tasks.WithHistory(store))
	default:
		files, err := openFlatFiles(cfg)
		if err != nil {
			return nil, err
		}
		taskStore, userStore = files[0], files[1]
	}

	directory, err := users.Load(ctx, userStore, cfg.AdminPassword)
	if err != nil {
		a.Close()
		return nil, err
	}

	a.users = directory
	a.tasks = tasks.NewService(taskStore, opts...)
	a.reports = &report.Generator{
		Tasks:  a.tasks,
		Users:  directory,
		Dir:    cfg.ReportsDir,
		Logger: logger,
	}
	logger.Printf("[app][open][ok] backend=%s users=%d", cfg.Backend, directory.Len())
	return a, nil
}

func openFlatFiles(cfg config.Config) ([2]*flatfile.Store, error) {
	var stores [2]*flatfile.Store
	for i, path := range []string{cfg.TasksPath, cfg.UsersPath} {
		if err := config.EnsureDir(path); err != nil {
			return stores, err
		}
		store, err := flatfile.New(path)
		if err != nil {
			return stores, err
		}
		stores[i] = store
	}
	return stores, nil
}

func (a *app) webServer() *web.Server {
	return web.NewServer(a.tasks, a.users, a.reports, a.logger)
}

func (a *app) Close() error {
	var errs []error
	for _, closer := range a.closers {
		if err := closer.Close(); err != nil {
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}

// openLogFile sends logs to a file next to the config while the terminal UI
// owns the screen.
func openLogFile(cfgPath string) (*os.File, error) {
	path := filepath.Join(filepath.Dir(cfgPath), "taskdesk.log")
	if err := config.EnsureDir(path); err != nil {
		return nil, err
	}
	return os.OpenFile(path, os.O_CREATE|os.O_APPEND|os.O_WRONLY, 0o644)
}
