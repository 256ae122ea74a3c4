package repository

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"

	"coursehub-backend/internal/domains/payment/model"
)

const uniqueViolation = "23505"

type postgresRepository struct {
	pool *pgxpool.Pool
}

func NewPostgresRepository(pool *pgxpool.Pool) RepositoryInterface {
	return &postgresRepository{pool: pool}
}

const attemptColumns = `id, student_id, course_id, order_id, amount, status, receipt_reference, reviewed_by, reviewed_at, reject_reason, version, created_at, updated_at`

type rowScanner interface {
	Scan(dest ...any) error
}

func scanAttempt(row rowScanner) (*model.PaymentAttempt, error) {
	var a model.PaymentAttempt
	err := row.Scan(
		&a.ID,
		&a.StudentID,
		&a.CourseID,
		&a.OrderID,
		&a.Amount,
		&a.Status,
		&a.ReceiptReference,
		&a.ReviewedBy,
		&a.ReviewedAt,
		&a.RejectReason,
		&a.Version,
		&a.CreatedAt,
		&a.UpdatedAt,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to scan payment attempt: %w", err)
	}
	return &a, nil
}

// GetByID implements RepositoryInterface.GetByID
func (r *postgresRepository) GetByID(ctx context.Context, attemptID uuid.UUID) (*model.PaymentAttempt, error) {
	query := `SELECT ` + attemptColumns + ` FROM payment_attempts WHERE id = $1`
	return scanAttempt(r.pool.QueryRow(ctx, query, attemptID))
}

// GetByIDForUpdateTx implements RepositoryInterface.GetByIDForUpdateTx
func (r *postgresRepository) GetByIDForUpdateTx(ctx context.Context, tx pgx.Tx, attemptID uuid.UUID) (*model.PaymentAttempt, error) {
	query := `SELECT ` + attemptColumns + ` FROM payment_attempts WHERE id = $1 FOR UPDATE`
	return scanAttempt(tx.QueryRow(ctx, query, attemptID))
}

// GetInFlightByStudentAndCourse implements the duplicate-attempt guard
func (r *postgresRepository) GetInFlightByStudentAndCourse(ctx context.Context, studentID, courseID uuid.UUID) (*model.PaymentAttempt, error) {
	query := `
		SELECT ` + attemptColumns + `
		FROM payment_attempts
		WHERE student_id = $1 AND course_id = $2
		  AND status IN ('pending_payment', 'awaiting_approval')
		ORDER BY created_at DESC
		LIMIT 1
	`
	return scanAttempt(r.pool.QueryRow(ctx, query, studentID, courseID))
}

// CreateTx implements RepositoryInterface.CreateTx. A partial unique index on
// (student_id, course_id) WHERE status IN ('pending_payment', 'awaiting_approval')
// allows at most one open attempt per student and course; a violation surfaces
// as ErrAttemptInFlight.
func (r *postgresRepository) CreateTx(ctx context.Context, tx pgx.Tx, attempt *model.PaymentAttempt) error {
	query := `
		INSERT INTO payment_attempts
			(id, student_id, course_id, order_id, amount, status, receipt_reference, reviewed_by, reviewed_at, reject_reason, version, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13)
	`

	_, err := tx.Exec(ctx, query,
		attempt.ID,
		attempt.StudentID,
		attempt.CourseID,
		attempt.OrderID,
		attempt.Amount,
		attempt.Status,
		attempt.ReceiptReference,
		attempt.ReviewedBy,
		attempt.ReviewedAt,
		attempt.RejectReason,
		attempt.Version,
		attempt.CreatedAt,
		attempt.UpdatedAt,
	)
	if err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == uniqueViolation {
			// Another transaction inserted an open attempt for the same course
			return model.ErrAttemptInFlight
		}
		return fmt.Errorf("failed to create payment attempt: %w", err)
	}
	return nil
}

// UpdateVersionedTx implements RepositoryInterface.UpdateVersionedTx.
// The WHERE clause on the previous version is the optimistic lock: zero rows
// affected means another transaction already moved the attempt.
func (r *postgresRepository) UpdateVersionedTx(ctx context.Context, tx pgx.Tx, attempt *model.PaymentAttempt, expectedVersion int) error {
	query := `
		UPDATE payment_attempts
		SET status = $2, receipt_reference = $3, reviewed_by = $4, reviewed_at = $5,
		    reject_reason = $6, version = $7, updated_at = $8
		WHERE id = $1 AND version = $9
	`

	tag, err := tx.Exec(ctx, query,
		attempt.ID,
		attempt.Status,
		attempt.ReceiptReference,
		attempt.ReviewedBy,
		attempt.ReviewedAt,
		attempt.RejectReason,
		attempt.Version,
		attempt.UpdatedAt,
		expectedVersion,
	)
	if err != nil {
		return fmt.Errorf("failed to update payment attempt: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return model.ErrStaleVersion
	}
	return nil
}

// ListByStudent implements RepositoryInterface.ListByStudent
func (r *postgresRepository) ListByStudent(ctx context.Context, studentID uuid.UUID) ([]model.PaymentAttempt, error) {
	query := `SELECT ` + attemptColumns + ` FROM payment_attempts WHERE student_id = $1 ORDER BY created_at DESC`

	rows, err := r.pool.Query(ctx, query, studentID)
	if err != nil {
		return nil, fmt.Errorf("failed to list payment attempts: %w", err)
	}
	defer rows.Close()

	return collectAttempts(rows)
}

// ListPendingReview implements RepositoryInterface.ListPendingReview
func (r *postgresRepository) ListPendingReview(ctx context.Context, page, limit int) ([]model.PaymentAttempt, int, error) {
	var total int
	countQuery := `SELECT COUNT(*) FROM payment_attempts WHERE status = 'awaiting_approval'`
	if err := r.pool.QueryRow(ctx, countQuery).Scan(&total); err != nil {
		return nil, 0, fmt.Errorf("failed to count pending attempts: %w", err)
	}

	offset := (page - 1) * limit
	query := `
		SELECT ` + attemptColumns + `
		FROM payment_attempts
		WHERE status = 'awaiting_approval'
		ORDER BY updated_at ASC
		LIMIT $1 OFFSET $2
	`

	rows, err := r.pool.Query(ctx, query, limit, offset)
	if err != nil {
		return nil, 0, fmt.Errorf("failed to list pending attempts: %w", err)
	}
	defer rows.Close()

	attempts, err := collectAttempts(rows)
	if err != nil {
		return nil, 0, err
	}

	return attempts, total, nil
}

func collectAttempts(rows pgx.Rows) ([]model.PaymentAttempt, error) {
	var attempts []model.PaymentAttempt
	for rows.Next() {
		var a model.PaymentAttempt
		err := rows.Scan(
			&a.ID,
			&a.StudentID,
			&a.CourseID,
			&a.OrderID,
			&a.Amount,
			&a.Status,
			&a.ReceiptReference,
			&a.ReviewedBy,
			&a.ReviewedAt,
			&a.RejectReason,
			&a.Version,
			&a.CreatedAt,
			&a.UpdatedAt,
		)
		if err != nil {
			return nil, fmt.Errorf("failed to scan payment attempt: %w", err)
		}
		attempts = append(attempts, a)
	}
	return attempts, rows.Err()
}
