package repository

import (
	"context"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"

	"coursehub-backend/internal/domains/idempotency/model"
)

// RepositoryInterface defines storage for idempotency records.
// The (key, user_id, operation_type) triple carries a uniqueness constraint:
// two concurrent callers racing to create the same record get exactly one
// winner; the loser receives model.ErrDuplicateRecord.
type RepositoryInterface interface {
	// GetByKey retrieves the record for (key, user, operation)
	// Returns: nil if not exists (don't treat as error)
	GetByKey(ctx context.Context, key string, userID uuid.UUID, operationType string) (*model.IdempotencyRecord, error)

	// Create inserts a fresh in_progress record.
	// Returns model.ErrDuplicateRecord on unique-constraint conflict.
	Create(ctx context.Context, record *model.IdempotencyRecord) error

	// MarkCompletedTx finalizes the record with the serialized response inside
	// the caller's transaction, so record and business effect commit together
	MarkCompletedTx(ctx context.Context, tx pgx.Tx, recordID uuid.UUID, responsePayload []byte) error

	// MarkFailed stores the error outcome. Runs outside the business
	// transaction: the failure must persist even though the effect rolled back.
	MarkFailed(ctx context.Context, recordID uuid.UUID, errorMessage string) error

	// Delete removes a single record (used when an expired record is re-executed)
	Delete(ctx context.Context, recordID uuid.UUID) error

	// CleanupExpired deletes all expired records (background sweep)
	// Returns: number of deleted records
	CleanupExpired(ctx context.Context) (int, error)
}
