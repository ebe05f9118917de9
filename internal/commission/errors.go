package commission

import (
	"errors"
	"fmt"
)

// Error taxonomy. Validation failures are rejected before any store call;
// persistence failures leave in-memory state untouched so a retried user
// action is safe.

type ValidationError struct {
	Field  string
	Reason string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("invalid %s: %s", e.Field, e.Reason)
}

type PersistenceError struct {
	Op  string
	Err error
}

func (e *PersistenceError) Error() string {
	return fmt.Sprintf("store failure during %s: %v", e.Op, e.Err)
}

func (e *PersistenceError) Unwrap() error { return e.Err }

var (
	ErrNotFound             = errors.New("commission record not found")
	ErrSettingsNotFound     = errors.New("commission settings not configured")
	ErrConfirmationRequired = errors.New("transition requires confirmation")
	ErrInvalidToken         = errors.New("confirmation token invalid or expired")
)
