package domain

import (
	"errors"
	"fmt"
)

var (
	ErrNotFound          = errors.New("not found")
	ErrInvalidTransition = errors.New("invalid status transition")
	ErrConflict          = errors.New("version conflict")
)

// NotFoundError is returned when an entity id does not exist in its collection
type NotFoundError struct {
	Collection Collection
	ID         string
}

func (e *NotFoundError) Error() string {
	return fmt.Sprintf("%s not found: id=%s", e.Collection, e.ID)
}

// Is allows errors.Is(err, ErrNotFound)
func (e *NotFoundError) Is(target error) bool {
	if target == ErrNotFound {
		return true
	}
	_, ok := target.(*NotFoundError)
	return ok
}

// InvalidTransitionError is returned when a status change is not permitted
type InvalidTransitionError struct {
	Collection Collection
	From       string
	To         string
}

func (e *InvalidTransitionError) Error() string {
	return fmt.Sprintf("%s: cannot move from %q to %q", e.Collection, e.From, e.To)
}

func (e *InvalidTransitionError) Is(target error) bool {
	if target == ErrInvalidTransition {
		return true
	}
	_, ok := target.(*InvalidTransitionError)
	return ok
}

// ConflictError is returned when a guarded write finds a newer version in the cache
type ConflictError struct {
	Key      string
	Expected uint64
	Actual   uint64
}

func (e *ConflictError) Error() string {
	return fmt.Sprintf("version conflict on %s: expected %d, found %d", e.Key, e.Expected, e.Actual)
}

func (e *ConflictError) Is(target error) bool {
	if target == ErrConflict {
		return true
	}
	_, ok := target.(*ConflictError)
	return ok
}

func NewNotFound(c Collection, id interface{}) error {
	return &NotFoundError{Collection: c, ID: fmt.Sprint(id)}
}

func NewInvalidTransition(c Collection, from, to string) error {
	return &InvalidTransitionError{Collection: c, From: from, To: to}
}

func NewConflict(key string, expected, actual uint64) error {
	return &ConflictError{Key: key, Expected: expected, Actual: actual}
}

func IsNotFound(err error) bool {
	return errors.Is(err, ErrNotFound)
}

func IsInvalidTransition(err error) bool {
	return errors.Is(err, ErrInvalidTransition)
}

func IsConflict(err error) bool {
	return errors.Is(err, ErrConflict)
}
