package store

import (
	"errors"
	"fmt"
)

// ErrNotFound is returned by lookups that require the entity to exist.
// Plain Get methods report absence as a nil result instead.
var ErrNotFound = errors.New("not found")

// ErrStorageUnavailable indicates the database could not be opened, queried
// or committed. Callers may keep working in memory; nothing is retried.
type ErrStorageUnavailable struct {
	Op  string
	Err error
}

func (e *ErrStorageUnavailable) Error() string {
	return fmt.Sprintf("storage unavailable (%s): %v", e.Op, e.Err)
}

func (e *ErrStorageUnavailable) Unwrap() error { return e.Err }

// ErrCascade indicates a bank deletion was rolled back. None of the bank's
// rows were removed.
type ErrCascade struct {
	BankID string
	Err    error
}

func (e *ErrCascade) Error() string {
	return fmt.Sprintf("delete bank %q: cascade aborted: %v", e.BankID, e.Err)
}

func (e *ErrCascade) Unwrap() error { return e.Err }

// ErrMalformedInput indicates an entity is missing a required key. It is
// returned before any statement reaches the database.
type ErrMalformedInput struct {
	Entity string
	Field  string
}

func (e *ErrMalformedInput) Error() string {
	return fmt.Sprintf("malformed %s: missing %s", e.Entity, e.Field)
}
