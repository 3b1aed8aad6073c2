// Package flatfile stores ordered text records, one per line, in a plain file.
//
// Every rewrite goes to a temporary file in the same directory which is
// synced and renamed over the old file, so a failed write never truncates
// the previous contents.
package flatfile

import (
	"bufio"
	"bytes"
	"context"
	"errors"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/Joseda-hg/taskdesk/internal/model"
)

type Store struct {
	path string
}

func New(path string) (*Store, error) {
	if strings.TrimSpace(path) == "" {
		return nil, errors.New("flatfile: path is required")
	}
	return &Store{path: filepath.Clean(path)}, nil
}

func (s *Store) Path() string {
	return s.path
}

// LoadLines returns the non-blank lines of the file in order. A missing file
// is an empty store.
func (s *Store) LoadLines(ctx context.Context) ([]string, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	f, err := os.Open(s.path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, nil
		}
		return nil, model.Unavailable("open "+s.path, err)
	}
	defer f.Close()

	var lines []string
	scanner := bufio.NewScanner(f)
	scanner.Buffer(make([]byte, 0, 64*1024), 1024*1024)
	for scanner.Scan() {
		line := strings.TrimRight(scanner.Text(), "\r\n ")
		if strings.TrimSpace(line) == "" {
			continue
		}
		lines = append(lines, line)
	}
	if err := scanner.Err(); err != nil {
		return nil, model.Unavailable("read "+s.path, err)
	}
	return lines, nil
}

// SaveLines replaces the whole file with lines.
func (s *Store) SaveLines(ctx context.Context, lines []string) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	var buf bytes.Buffer
	for _, line := range lines {
		buf.WriteString(line)
		buf.WriteByte('\n')
	}
	if err := WriteFileAtomic(s.path, buf.Bytes(), 0o644); err != nil {
		return model.Unavailable("write "+s.path, err)
	}
	return nil
}

// AppendLine adds one line at the end. It rewrites the file through
// SaveLines so appends share the same replace-on-success guarantee.
func (s *Store) AppendLine(ctx context.Context, line string) error {
	lines, err := s.LoadLines(ctx)
	if err != nil {
		return err
	}
	return s.SaveLines(ctx, append(lines, line))
}

// WriteFileAtomic writes data to a temp file next to path and renames it into
// place once the bytes are synced.
func WriteFileAtomic(path string, data []byte, perm os.FileMode) error {
	dir := filepath.Dir(path)
	base := filepath.Base(path)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return err
	}

	tmp, err := os.CreateTemp(dir, base+".tmp.*")
	if err != nil {
		return err
	}
	tmpName := tmp.Name()
	committed := false
	defer func() {
		_ = tmp.Close()
		if !committed {
			_ = os.Remove(tmpName)
		}
	}()

	if _, err := io.Copy(tmp, bytes.NewReader(data)); err != nil {
		return err
	}
	if err := tmp.Chmod(perm); err != nil {
		return err
	}
	if err := tmp.Sync(); err != nil {
		return err
	}
	if err := tmp.Close(); err != nil {
		return err
	}
	if err := os.Rename(tmpName, path); err != nil {
		return err
	}
	committed = true
	return syncDir(dir)
}

func syncDir(dir string) error {
	f, err := os.Open(dir)
	if err != nil {
		return err
	}
	defer f.Close()
	// Some filesystems refuse fsync on directories; the rename already happened.
	_ = f.Sync()
	return nil
}
