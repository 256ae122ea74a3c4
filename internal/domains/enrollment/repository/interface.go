package repository

import (
	"context"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"

	"coursehub-backend/internal/domains/enrollment/model"
)

// RepositoryInterface defines data access for enrollments and their
// installment ledgers. (student_id, course_id) carries a uniqueness
// constraint: the storage layer is the last line against double enrollment.
type RepositoryInterface interface {
	// GetByID retrieves an enrollment with its installments
	// Returns: nil if not exists (don't treat as error)
	GetByID(ctx context.Context, enrollmentID uuid.UUID) (*model.CourseEnrollment, error)

	// GetByStudentAndCourse retrieves the enrollment for (student, course)
	// Returns: nil if not exists
	GetByStudentAndCourse(ctx context.Context, studentID, courseID uuid.UUID) (*model.CourseEnrollment, error)

	// ExistsTx checks for an enrollment inside a transaction.
	// Used by checkout's in-transaction duplicate re-check.
	ExistsTx(ctx context.Context, tx pgx.Tx, studentID, courseID uuid.UUID) (bool, error)

	// GetByIDForUpdateTx loads the enrollment with a row lock so concurrent
	// payment applications serialize
	GetByIDForUpdateTx(ctx context.Context, tx pgx.Tx, enrollmentID uuid.UUID) (*model.CourseEnrollment, error)

	// GetByStudentAndCourseForUpdateTx is the locked variant keyed by
	// (student, course); used by payment approval
	GetByStudentAndCourseForUpdateTx(ctx context.Context, tx pgx.Tx, studentID, courseID uuid.UUID) (*model.CourseEnrollment, error)

	// CreateTx inserts the enrollment (and any installments) in the caller's
	// transaction. Returns model.ErrEnrollmentExists on the unique constraint.
	CreateTx(ctx context.Context, tx pgx.Tx, enrollment *model.CourseEnrollment) error

	// SaveLedgerTx persists paid amounts and statuses for the enrollment and
	// all its installments
	SaveLedgerTx(ctx context.Context, tx pgx.Tx, enrollment *model.CourseEnrollment) error

	// CreateInstallmentsTx inserts a new installment plan
	CreateInstallmentsTx(ctx context.Context, tx pgx.Tx, installments []model.InstallmentPayment) error

	// RecordPaymentAuditTx appends an audit row for a recorded payment
	RecordPaymentAuditTx(ctx context.Context, tx pgx.Tx, enrollmentID uuid.UUID, amount string, reference, method string) error

	// ListByStudent returns all enrollments for a student
	ListByStudent(ctx context.Context, studentID uuid.UUID) ([]model.CourseEnrollment, error)

	// MarkOverdueInstallments flips unpaid/partial installments past their due
	// date to overdue (background sweep)
	// Returns: number of updated installments
	MarkOverdueInstallments(ctx context.Context) (int, error)
}
