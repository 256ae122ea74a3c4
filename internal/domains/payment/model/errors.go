package model

import (
	"errors"
	"fmt"
)

const (
	ErrCodeStateConflict = "STATE_CONFLICT"
)

var (
	ErrAttemptNotFound     = errors.New("payment attempt not found")
	ErrAttemptInFlight     = errors.New("an open payment attempt already exists for this course")
	ErrMissingReceipt      = errors.New("receipt reference is required")
	ErrMissingRejectReason = errors.New("rejection reason is required")
	ErrStaleVersion        = errors.New("payment attempt was modified by another reviewer")
	ErrInvalidAmount       = errors.New("payment amount must be > 0")
)

// StateConflictError reports an illegal transition without losing the
// states involved
type StateConflictError struct {
	From string
	To   string
}

func NewStateConflictError(from, to string) *StateConflictError {
	return &StateConflictError{From: from, To: to}
}

func (e *StateConflictError) Error() string {
	return fmt.Sprintf("cannot transition payment attempt from %s to %s", e.From, e.To)
}
