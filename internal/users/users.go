// Package users holds the registered user directory: loading it from a record
// store, verifying logins and registering new accounts.
package users

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync"

	"golang.org/x/crypto/bcrypt"

	"github.com/Joseda-hg/taskdesk/internal/model"
	"github.com/Joseda-hg/taskdesk/internal/record"
)

var (
	ErrUnknownUser      = errors.New("user is not registered")
	ErrWrongPassword    = errors.New("password does not match")
	ErrUserExists       = errors.New("user is already registered")
	ErrPasswordMismatch = errors.New("password and confirmation do not match")
	ErrInvalidUsername  = errors.New("username and password must be non-empty and must not contain the record delimiter")
	ErrNotAdmin         = errors.New("only admin can register users")
)

// RecordStore is the line-oriented persistence the directory reads and appends to.
type RecordStore interface {
	LoadLines(ctx context.Context) ([]string, error)
	AppendLine(ctx context.Context, line string) error
}

// Directory is an ordered username → password mapping. Order follows the
// store and drives the per-user report order. It is safe for concurrent use;
// the web view reads it while the terminal UI registers users.
type Directory struct {
	mu    sync.RWMutex
	store RecordStore
	users []model.User
	index map[string]int
}

// Load reads every user line. When the store is empty an admin account is
// seeded with adminPassword so a fresh install can log in.
func Load(ctx context.Context, store RecordStore, adminPassword string) (*Directory, error) {
	lines, err := store.LoadLines(ctx)
	if err != nil {
		return nil, err
	}

	d := &Directory{store: store, index: make(map[string]int, len(lines))}
	for i, line := range lines {
		user, err := record.DecodeUser(line)
		if err != nil {
			return nil, fmt.Errorf("user line %d: %w", i+1, err)
		}
		d.put(user)
	}

	if len(d.users) == 0 && adminPassword != "" {
		if _, err := d.add(ctx, model.AdminUsername, adminPassword); err != nil {
			return nil, fmt.Errorf("seed admin: %w", err)
		}
	}
	return d, nil
}

func (d *Directory) put(user model.User) {
	if i, ok := d.index[user.Username]; ok {
		d.users[i] = user
		return
	}
	d.index[user.Username] = len(d.users)
	d.users = append(d.users, user)
}

// Has reports whether username (case-insensitive) is registered.
func (d *Directory) Has(username string) bool {
	if d == nil {
		return false
	}
	d.mu.RLock()
	defer d.mu.RUnlock()
	return d.has(model.NormalizeUsername(username))
}

func (d *Directory) has(name string) bool {
	_, ok := d.index[name]
	return ok
}

func (d *Directory) Len() int {
	if d == nil {
		return 0
	}
	d.mu.RLock()
	defer d.mu.RUnlock()
	return len(d.users)
}

// Names returns usernames in directory order.
func (d *Directory) Names() []string {
	if d == nil {
		return nil
	}
	d.mu.RLock()
	defer d.mu.RUnlock()
	names := make([]string, 0, len(d.users))
	for _, user := range d.users {
		names = append(names, user.Username)
	}
	return names
}

// Authenticate verifies a login and returns the session for it.
func (d *Directory) Authenticate(username, password string) (Session, error) {
	name := model.NormalizeUsername(username)
	d.mu.RLock()
	i, ok := d.index[name]
	var stored string
	if ok {
		stored = d.users[i].Password
	}
	d.mu.RUnlock()
	if !ok {
		return Session{}, ErrUnknownUser
	}
	if !passwordMatches(stored, password) {
		return Session{}, ErrWrongPassword
	}
	return Session{Username: name, Directory: d}, nil
}

// Register adds a new user on behalf of the session, which must be admin.
func (d *Directory) Register(ctx context.Context, session Session, username, password, confirm string) (model.User, error) {
	if !session.IsAdmin() {
		return model.User{}, ErrNotAdmin
	}
	name := model.NormalizeUsername(username)

	d.mu.Lock()
	defer d.mu.Unlock()
	if d.has(name) {
		return model.User{}, ErrUserExists
	}
	if password != confirm {
		return model.User{}, ErrPasswordMismatch
	}
	return d.add(ctx, name, password)
}

// add hashes, persists and indexes a new user. Callers hold d.mu or own d
// exclusively.
func (d *Directory) add(ctx context.Context, name, password string) (model.User, error) {
	if !validField(name) || !validField(password) {
		return model.User{}, ErrInvalidUsername
	}
	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return model.User{}, fmt.Errorf("hash password: %w", err)
	}
	user := model.User{Username: name, Password: string(hash)}
	if err := d.store.AppendLine(ctx, record.EncodeUser(user)); err != nil {
		return model.User{}, err
	}
	d.put(user)
	return user, nil
}

func validField(value string) bool {
	trimmed := strings.TrimSpace(value)
	return trimmed != "" && trimmed == value && !strings.Contains(value, ",")
}

// passwordMatches accepts bcrypt hashes and legacy plain-text entries.
func passwordMatches(stored, given string) bool {
	if isBcrypt(stored) {
		return bcrypt.CompareHashAndPassword([]byte(stored), []byte(given)) == nil
	}
	return stored == given
}

func isBcrypt(value string) bool {
	return strings.HasPrefix(value, "$2a$") || strings.HasPrefix(value, "$2b$") || strings.HasPrefix(value, "$2y$")
}

// Session is the logged-in identity passed explicitly into every operation
// that needs it.
type Session struct {
	Username  string
	Directory *Directory
}

func (s Session) IsAdmin() bool {
	return s.Username == model.AdminUsername
}

func (s Session) Valid() bool {
	return s.Username != "" && s.Directory != nil
}
