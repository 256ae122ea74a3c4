package model

import (
	"time"

	"github.com/google/uuid"
)

// =====================================================
// RECORD STATUS
// =====================================================
const (
	StatusInProgress = "in_progress"
	StatusCompleted  = "completed"
	StatusFailed     = "failed"
)

// =====================================================
// OPERATION TYPES
// =====================================================
// Each operation wrapped by the idempotency service registers a type here.
// The (key, user, operation) triple is the storage uniqueness scope.
const (
	OpCheckout             = "checkout"
	OpCreatePaymentAttempt = "payment:create_attempt"
	OpRecordPayment        = "enrollment:record_payment"
)

// =====================================================
// ENTITY: IdempotencyRecord
// =====================================================
// One record per (key, user, operation). Created in in_progress state before
// the wrapped operation runs, finalized with the serialized outcome after.
type IdempotencyRecord struct {
	ID            uuid.UUID `json:"id" db:"id"`
	Key           string    `json:"key" db:"key"`
	UserID        uuid.UUID `json:"user_id" db:"user_id"`
	OperationType string    `json:"operation_type" db:"operation_type"`

	// RequestHash is the canonical-JSON SHA-256 of the request payload.
	// Key reuse with a different hash is rejected outright.
	RequestHash string `json:"request_hash" db:"request_hash"`

	Status          string  `json:"status" db:"status"`
	ResponsePayload []byte  `json:"response_payload,omitempty" db:"response_payload"`
	ErrorMessage    *string `json:"error_message,omitempty" db:"error_message"`

	CreatedAt time.Time `json:"created_at" db:"created_at"`
	ExpiresAt time.Time `json:"expires_at" db:"expires_at"`
}

// NewRecord constructs an in_progress record. All fields are explicit so
// tests can build deterministic records.
func NewRecord(key string, userID uuid.UUID, operationType, requestHash string, now time.Time, ttl time.Duration) *IdempotencyRecord {
	return &IdempotencyRecord{
		ID:            uuid.New(),
		Key:           key,
		UserID:        userID,
		OperationType: operationType,
		RequestHash:   requestHash,
		Status:        StatusInProgress,
		CreatedAt:     now,
		ExpiresAt:     now.Add(ttl),
	}
}

// IsExpired reports whether the record is past its retention window
func (r *IdempotencyRecord) IsExpired(now time.Time) bool {
	return now.After(r.ExpiresAt)
}

// IsReplayable reports whether a matching request can be served from the
// stored response. Only completed, unexpired records replay; in_progress and
// failed records block the key until it expires.
func (r *IdempotencyRecord) IsReplayable(now time.Time) bool {
	return r.Status == StatusCompleted && !r.IsExpired(now)
}
