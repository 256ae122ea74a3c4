package repository

import (
	"context"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"

	"coursehub-backend/internal/domains/payment/model"
)

// RepositoryInterface defines data access for payment attempts. Review
// transitions go through UpdateVersionedTx so two admins acting on the same
// attempt cannot both win.
type RepositoryInterface interface {
	// GetByID retrieves an attempt
	// Returns: nil if not exists (don't treat as error)
	GetByID(ctx context.Context, attemptID uuid.UUID) (*model.PaymentAttempt, error)

	// GetByIDForUpdateTx loads the attempt with a row lock inside the
	// caller's transaction
	GetByIDForUpdateTx(ctx context.Context, tx pgx.Tx, attemptID uuid.UUID) (*model.PaymentAttempt, error)

	// GetInFlightByStudentAndCourse returns the open attempt for
	// (student, course), nil when none
	GetInFlightByStudentAndCourse(ctx context.Context, studentID, courseID uuid.UUID) (*model.PaymentAttempt, error)

	// CreateTx inserts a new attempt in the caller's transaction.
	// Returns model.ErrAttemptInFlight when an open attempt already exists
	// for the same (student, course).
	CreateTx(ctx context.Context, tx pgx.Tx, attempt *model.PaymentAttempt) error

	// UpdateVersionedTx persists the attempt guarded by its previous version.
	// Returns model.ErrStaleVersion when the row moved underneath us.
	UpdateVersionedTx(ctx context.Context, tx pgx.Tx, attempt *model.PaymentAttempt, expectedVersion int) error

	// ListByStudent returns all attempts for a student, newest first
	ListByStudent(ctx context.Context, studentID uuid.UUID) ([]model.PaymentAttempt, error)

	// ListPendingReview returns awaiting_approval attempts for the admin
	// review queue
	ListPendingReview(ctx context.Context, page, limit int) ([]model.PaymentAttempt, int, error)
}
