package timers

import (
	"errors"
	"fmt"

	"github.com/JorgeSaicoski/timekeeper/internal/db"
)

// Error kinds. Match them with errors.Is.
var (
	ErrConflict     = errors.New("conflict")
	ErrInvalidState = errors.New("invalid state")
	ErrNotFound     = errors.New("not found")
	ErrValidation   = errors.New("validation failed")
)

// TimerError is a recoverable error reported back to the caller. Message is
// safe to show to clients and names the timer category when one applies.
type TimerError struct {
	Kind     error
	Category db.Category
	Message  string
}

func (e *TimerError) Error() string {
	return e.Message
}

func (e *TimerError) Unwrap() error {
	return e.Kind
}

func conflictError(category db.Category) error {
	return &TimerError{
		Kind:     ErrConflict,
		Category: category,
		Message:  fmt.Sprintf("a %s timer is already active", category),
	}
}

func noRunningError(category db.Category) error {
	return &TimerError{
		Kind:     ErrInvalidState,
		Category: category,
		Message:  fmt.Sprintf("no running %s timer found", category),
	}
}

func noPausedError(category db.Category) error {
	return &TimerError{
		Kind:     ErrInvalidState,
		Category: category,
		Message:  fmt.Sprintf("no paused %s timer found", category),
	}
}

func noActiveError(category db.Category) error {
	return &TimerError{
		Kind:     ErrInvalidState,
		Category: category,
		Message:  fmt.Sprintf("no active %s timer found", category),
	}
}

func notFoundError(category db.Category) error {
	return &TimerError{
		Kind:     ErrNotFound,
		Category: category,
		Message:  fmt.Sprintf("no active %s timer", category),
	}
}

func validationError(category db.Category, format string, args ...any) error {
	return &TimerError{
		Kind:     ErrValidation,
		Category: category,
		Message:  fmt.Sprintf(format, args...),
	}
}
