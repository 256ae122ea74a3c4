package repository

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"

	"coursehub-backend/internal/domains/idempotency/model"
)

// uniqueViolation is the PostgreSQL error code for unique-constraint conflicts
const uniqueViolation = "23505"

type postgresRepository struct {
	pool *pgxpool.Pool
}

func NewPostgresRepository(pool *pgxpool.Pool) RepositoryInterface {
	return &postgresRepository{pool: pool}
}

// GetByKey implements RepositoryInterface.GetByKey
func (r *postgresRepository) GetByKey(ctx context.Context, key string, userID uuid.UUID, operationType string) (*model.IdempotencyRecord, error) {
	query := `
		SELECT id, key, user_id, operation_type, request_hash, status,
		       response_payload, error_message, created_at, expires_at
		FROM idempotency_records
		WHERE key = $1 AND user_id = $2 AND operation_type = $3
	`

	var record model.IdempotencyRecord
	err := r.pool.QueryRow(ctx, query, key, userID, operationType).Scan(
		&record.ID,
		&record.Key,
		&record.UserID,
		&record.OperationType,
		&record.RequestHash,
		&record.Status,
		&record.ResponsePayload,
		&record.ErrorMessage,
		&record.CreatedAt,
		&record.ExpiresAt,
	)

	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to get idempotency record: %w", err)
	}

	return &record, nil
}

// Create implements RepositoryInterface.Create
func (r *postgresRepository) Create(ctx context.Context, record *model.IdempotencyRecord) error {
	query := `
		INSERT INTO idempotency_records
			(id, key, user_id, operation_type, request_hash, status, created_at, expires_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
	`

	_, err := r.pool.Exec(ctx, query,
		record.ID,
		record.Key,
		record.UserID,
		record.OperationType,
		record.RequestHash,
		record.Status,
		record.CreatedAt,
		record.ExpiresAt,
	)

	if err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == uniqueViolation {
			// Another caller won the race for this key
			return model.ErrDuplicateRecord
		}
		return fmt.Errorf("failed to create idempotency record: %w", err)
	}

	return nil
}

// MarkCompletedTx implements RepositoryInterface.MarkCompletedTx
func (r *postgresRepository) MarkCompletedTx(ctx context.Context, tx pgx.Tx, recordID uuid.UUID, responsePayload []byte) error {
	query := `
		UPDATE idempotency_records
		SET status = $2, response_payload = $3
		WHERE id = $1
	`

	tag, err := tx.Exec(ctx, query, recordID, model.StatusCompleted, responsePayload)
	if err != nil {
		return fmt.Errorf("failed to mark record completed: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return model.ErrRecordNotFound
	}

	return nil
}

// MarkFailed implements RepositoryInterface.MarkFailed
func (r *postgresRepository) MarkFailed(ctx context.Context, recordID uuid.UUID, errorMessage string) error {
	query := `
		UPDATE idempotency_records
		SET status = $2, error_message = $3
		WHERE id = $1
	`

	tag, err := r.pool.Exec(ctx, query, recordID, model.StatusFailed, errorMessage)
	if err != nil {
		return fmt.Errorf("failed to mark record failed: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return model.ErrRecordNotFound
	}

	return nil
}

// Delete implements RepositoryInterface.Delete
func (r *postgresRepository) Delete(ctx context.Context, recordID uuid.UUID) error {
	_, err := r.pool.Exec(ctx, `DELETE FROM idempotency_records WHERE id = $1`, recordID)
	if err != nil {
		return fmt.Errorf("failed to delete idempotency record: %w", err)
	}
	return nil
}

// CleanupExpired implements RepositoryInterface.CleanupExpired
func (r *postgresRepository) CleanupExpired(ctx context.Context) (int, error) {
	tag, err := r.pool.Exec(ctx, `DELETE FROM idempotency_records WHERE expires_at < NOW()`)
	if err != nil {
		return 0, fmt.Errorf("failed to cleanup expired records: %w", err)
	}
	return int(tag.RowsAffected()), nil
}
