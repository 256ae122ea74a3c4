package model

import (
	"errors"
	"fmt"
)

// =====================================================
// INTERNAL ERROR CODES
// =====================================================
const (
	ErrCodeMissingKey          = "MISSING_KEY"
	ErrCodeKeyReused           = "KEY_REUSED_DIFFERENT_REQUEST"
	ErrCodeOperationInProgress = "OPERATION_IN_PROGRESS_OR_FAILED"
)

// =====================================================
// PREDEFINED ERRORS
// =====================================================
var (
	ErrMissingKey          = errors.New("idempotency key is required")
	ErrKeyReused           = errors.New("idempotency key reused with a different request")
	ErrOperationInProgress = errors.New("operation with this key is in progress or has failed")
	ErrDuplicateRecord     = errors.New("idempotency record already exists")
	ErrRecordNotFound      = errors.New("idempotency record not found")
)

// =====================================================
// CUSTOM IDEMPOTENCY ERROR
// =====================================================

// IdempotencyError carries a stable code alongside the message so the
// boundary layer can map it without string matching
type IdempotencyError struct {
	Code    string
	Message string
	Err     error
}

func (e *IdempotencyError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %s (%v)", e.Code, e.Message, e.Err)
	}
	return fmt.Sprintf("%s: %s", e.Code, e.Message)
}

func (e *IdempotencyError) Unwrap() error {
	return e.Err
}

func NewMissingKeyError() *IdempotencyError {
	return &IdempotencyError{
		Code:    ErrCodeMissingKey,
		Message: "An idempotency key must be supplied for this operation",
		Err:     ErrMissingKey,
	}
}

func NewKeyReusedError(key string) *IdempotencyError {
	return &IdempotencyError{
		Code:    ErrCodeKeyReused,
		Message: fmt.Sprintf("Idempotency key %q was already used with a different request body", key),
		Err:     ErrKeyReused,
	}
}

func NewOperationInProgressError(key, status string) *IdempotencyError {
	return &IdempotencyError{
		Code:    ErrCodeOperationInProgress,
		Message: fmt.Sprintf("Operation for key %q is %s; retry with a fresh key", key, status),
		Err:     ErrOperationInProgress,
	}
}
