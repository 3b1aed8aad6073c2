package db

import (
	"context"
	"database/sql"
	"fmt"
	"strings"
	"time"

	"github.com/Joseda-hg/taskdesk/internal/model"
)

// Collections used by taskdesk inside one database file.
const (
	CollectionTasks = "tasks"
	CollectionUsers = "users"
)

type Store struct {
	DB *sql.DB
}

func NewStore(db *sql.DB) *Store {
	return &Store{DB: db}
}

// Records returns a line store over one named collection.
func (s *Store) Records(collection string) *LineStore {
	return &LineStore{db: s.DB, collection: collection}
}

// LineStore keeps an ordered sequence of record lines in the records table.
type LineStore struct {
	db         *sql.DB
	collection string
}

func (l *LineStore) LoadLines(ctx context.Context) ([]string, error) {
	rows, err := l.db.QueryContext(ctx,
		"SELECT line FROM records WHERE collection = ? ORDER BY position", l.collection)
	if err != nil {
		return nil, model.Unavailable("load "+l.collection, err)
	}
	defer rows.Close()

	var lines []string
	for rows.Next() {
		var line string
		if err := rows.Scan(&line); err != nil {
			return nil, model.Unavailable("scan "+l.collection, err)
		}
		if strings.TrimSpace(line) == "" {
			continue
		}
		lines = append(lines, line)
	}
	if err := rows.Err(); err != nil {
		return nil, model.Unavailable("load "+l.collection, err)
	}
	return lines, nil
}

// SaveLines replaces the collection inside one transaction; on any failure
// the previous lines stay in place.
func (l *LineStore) SaveLines(ctx context.Context, lines []string) (err error) {
	tx, err := l.db.BeginTx(ctx, nil)
	if err != nil {
		return model.Unavailable("begin "+l.collection, err)
	}
	defer func() {
		if err != nil {
			_ = tx.Rollback()
		}
	}()

	if _, err = tx.ExecContext(ctx, "DELETE FROM records WHERE collection = ?", l.collection); err != nil {
		return model.Unavailable("clear "+l.collection, err)
	}

	stmt, err := tx.PrepareContext(ctx, "INSERT INTO records (collection, position, line) VALUES (?, ?, ?)")
	if err != nil {
		return model.Unavailable("prepare "+l.collection, err)
	}
	defer stmt.Close()

	for i, line := range lines {
		if _, err = stmt.ExecContext(ctx, l.collection, i, line); err != nil {
			return model.Unavailable(fmt.Sprintf("insert %s[%d]", l.collection, i), err)
		}
	}

	if err = tx.Commit(); err != nil {
		return model.Unavailable("commit "+l.collection, err)
	}
	return nil
}

func (l *LineStore) AppendLine(ctx context.Context, line string) error {
	_, err := l.db.ExecContext(ctx, `
INSERT INTO records (collection, position, line)
SELECT ?, COALESCE(MAX(position), -1) + 1, ? FROM records WHERE collection = ?`,
		l.collection, line, l.collection)
	if err != nil {
		return model.Unavailable("append "+l.collection, err)
	}
	return nil
}

func (s *Store) AddHistory(ctx context.Context, entry model.HistoryEntry) (model.HistoryEntry, error) {
	createdAt := entry.CreatedAt
	if createdAt.IsZero() {
		createdAt = time.Now()
	}
	createdAt = createdAt.UTC()

	result, err := s.DB.ExecContext(ctx,
		"INSERT INTO history (task_key, event_type, details, created_at) VALUES (?, ?, ?, ?)",
		entry.TaskKey, entry.EventType, entry.Details, createdAt)
	if err != nil {
		return model.HistoryEntry{}, model.Unavailable("add history", err)
	}
	id, err := result.LastInsertId()
	if err != nil {
		return model.HistoryEntry{}, model.Unavailable("add history", err)
	}

	entry.ID = id
	entry.CreatedAt = createdAt
	return entry, nil
}

func (s *Store) ListHistory(ctx context.Context, taskKey string) ([]model.HistoryEntry, error) {
	rows, err := s.DB.QueryContext(ctx,
		"SELECT id, task_key, event_type, details, created_at FROM history WHERE task_key = ? ORDER BY id", taskKey)
	if err != nil {
		return nil, model.Unavailable("list history", err)
	}
	defer rows.Close()

	history := []model.HistoryEntry{}
	for rows.Next() {
		var entry model.HistoryEntry
		if err := rows.Scan(&entry.ID, &entry.TaskKey, &entry.EventType, &entry.Details, &entry.CreatedAt); err != nil {
			return nil, model.Unavailable("scan history", err)
		}
		history = append(history, entry)
	}
	if err := rows.Err(); err != nil {
		return nil, model.Unavailable("list history", err)
	}
	return history, nil
}
