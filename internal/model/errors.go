package model

import (
	"errors"
	"fmt"
)

var (
	ErrMalformedRecord   = errors.New("malformed record")
	ErrInvalidDate       = errors.New("invalid date")
	ErrInvalidTarget     = errors.New("invalid target user")
	ErrIllegalTransition = errors.New("illegal transition")
	ErrStoreUnavailable  = errors.New("store unavailable")
	ErrTaskNotFound      = errors.New("task not found")
)

// Error carries one of the sentinel kinds above plus a detail message.
type Error struct {
	Kind error
	Msg  string
}

func (e *Error) Error() string {
	if e == nil {
		return ""
	}
	if e.Msg == "" {
		return e.Kind.Error()
	}
	return fmt.Sprintf("%s: %s", e.Kind.Error(), e.Msg)
}

func (e *Error) Unwrap() error { return e.Kind }

func Errorf(kind error, format string, args ...any) error {
	return &Error{Kind: kind, Msg: fmt.Sprintf(format, args...)}
}

// Unavailable wraps an I/O failure so it matches ErrStoreUnavailable while
// keeping the underlying cause reachable through errors.Is/As.
func Unavailable(op string, err error) error {
	if err == nil {
		return nil
	}
	return fmt.Errorf("%w: %s: %w", ErrStoreUnavailable, op, err)
}
