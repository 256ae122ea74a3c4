package repository

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"

	"coursehub-backend/internal/domains/enrollment/model"
)

const uniqueViolation = "23505"

type postgresRepository struct {
	pool *pgxpool.Pool
}

func NewPostgresRepository(pool *pgxpool.Pool) RepositoryInterface {
	return &postgresRepository{pool: pool}
}

const enrollmentColumns = `id, student_id, course_id, total_amount, paid_amount, payment_status, enrollment_status, created_at, updated_at`

type rowScanner interface {
	Scan(dest ...any) error
}

func scanEnrollment(row rowScanner) (*model.CourseEnrollment, error) {
	var e model.CourseEnrollment
	err := row.Scan(
		&e.ID,
		&e.StudentID,
		&e.CourseID,
		&e.TotalAmount,
		&e.PaidAmount,
		&e.PaymentStatus,
		&e.EnrollmentStatus,
		&e.CreatedAt,
		&e.UpdatedAt,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to scan enrollment: %w", err)
	}
	return &e, nil
}

// loadInstallments attaches the installment plan, ordered oldest-due-first
// so payment allocation can walk the slice directly
func (r *postgresRepository) loadInstallments(ctx context.Context, q interface {
	Query(ctx context.Context, sql string, args ...any) (pgx.Rows, error)
}, enrollment *model.CourseEnrollment) error {
	query := `
		SELECT id, enrollment_id, number, amount, paid_amount, due_date, status, created_at, updated_at
		FROM installment_payments
		WHERE enrollment_id = $1
		ORDER BY due_date ASC, number ASC
	`

	rows, err := q.Query(ctx, query, enrollment.ID)
	if err != nil {
		return fmt.Errorf("failed to load installments: %w", err)
	}
	defer rows.Close()

	for rows.Next() {
		var inst model.InstallmentPayment
		err := rows.Scan(
			&inst.ID,
			&inst.EnrollmentID,
			&inst.Number,
			&inst.Amount,
			&inst.PaidAmount,
			&inst.DueDate,
			&inst.Status,
			&inst.CreatedAt,
			&inst.UpdatedAt,
		)
		if err != nil {
			return fmt.Errorf("failed to scan installment: %w", err)
		}
		enrollment.Installments = append(enrollment.Installments, inst)
	}

	return rows.Err()
}

// GetByID implements RepositoryInterface.GetByID
func (r *postgresRepository) GetByID(ctx context.Context, enrollmentID uuid.UUID) (*model.CourseEnrollment, error) {
	query := `SELECT ` + enrollmentColumns + ` FROM course_enrollments WHERE id = $1`

	enrollment, err := scanEnrollment(r.pool.QueryRow(ctx, query, enrollmentID))
	if err != nil || enrollment == nil {
		return enrollment, err
	}

	if err := r.loadInstallments(ctx, r.pool, enrollment); err != nil {
		return nil, err
	}

	return enrollment, nil
}

// GetByStudentAndCourse implements RepositoryInterface.GetByStudentAndCourse
func (r *postgresRepository) GetByStudentAndCourse(ctx context.Context, studentID, courseID uuid.UUID) (*model.CourseEnrollment, error) {
	query := `SELECT ` + enrollmentColumns + ` FROM course_enrollments WHERE student_id = $1 AND course_id = $2`

	enrollment, err := scanEnrollment(r.pool.QueryRow(ctx, query, studentID, courseID))
	if err != nil || enrollment == nil {
		return enrollment, err
	}

	if err := r.loadInstallments(ctx, r.pool, enrollment); err != nil {
		return nil, err
	}

	return enrollment, nil
}

// ExistsTx implements RepositoryInterface.ExistsTx
func (r *postgresRepository) ExistsTx(ctx context.Context, tx pgx.Tx, studentID, courseID uuid.UUID) (bool, error) {
	var exists bool
	query := `SELECT EXISTS(SELECT 1 FROM course_enrollments WHERE student_id = $1 AND course_id = $2)`
	if err := tx.QueryRow(ctx, query, studentID, courseID).Scan(&exists); err != nil {
		return false, fmt.Errorf("failed to check enrollment existence: %w", err)
	}
	return exists, nil
}

// GetByIDForUpdateTx implements RepositoryInterface.GetByIDForUpdateTx
func (r *postgresRepository) GetByIDForUpdateTx(ctx context.Context, tx pgx.Tx, enrollmentID uuid.UUID) (*model.CourseEnrollment, error) {
	query := `SELECT ` + enrollmentColumns + ` FROM course_enrollments WHERE id = $1 FOR UPDATE`

	enrollment, err := scanEnrollment(tx.QueryRow(ctx, query, enrollmentID))
	if err != nil || enrollment == nil {
		return enrollment, err
	}

	if err := r.loadInstallments(ctx, tx, enrollment); err != nil {
		return nil, err
	}

	return enrollment, nil
}

// GetByStudentAndCourseForUpdateTx implements the locked (student, course) load
func (r *postgresRepository) GetByStudentAndCourseForUpdateTx(ctx context.Context, tx pgx.Tx, studentID, courseID uuid.UUID) (*model.CourseEnrollment, error) {
	query := `SELECT ` + enrollmentColumns + ` FROM course_enrollments WHERE student_id = $1 AND course_id = $2 FOR UPDATE`

	enrollment, err := scanEnrollment(tx.QueryRow(ctx, query, studentID, courseID))
	if err != nil || enrollment == nil {
		return enrollment, err
	}

	if err := r.loadInstallments(ctx, tx, enrollment); err != nil {
		return nil, err
	}

	return enrollment, nil
}

// CreateTx implements RepositoryInterface.CreateTx
func (r *postgresRepository) CreateTx(ctx context.Context, tx pgx.Tx, enrollment *model.CourseEnrollment) error {
	query := `
		INSERT INTO course_enrollments
			(id, student_id, course_id, total_amount, paid_amount, payment_status, enrollment_status, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)
	`

	_, err := tx.Exec(ctx, query,
		enrollment.ID,
		enrollment.StudentID,
		enrollment.CourseID,
		enrollment.TotalAmount,
		enrollment.PaidAmount,
		enrollment.PaymentStatus,
		enrollment.EnrollmentStatus,
		enrollment.CreatedAt,
		enrollment.UpdatedAt,
	)

	if err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == uniqueViolation {
			return model.ErrEnrollmentExists
		}
		return fmt.Errorf("failed to create enrollment: %w", err)
	}

	if len(enrollment.Installments) > 0 {
		if err := r.CreateInstallmentsTx(ctx, tx, enrollment.Installments); err != nil {
			return err
		}
	}

	return nil
}

// SaveLedgerTx implements RepositoryInterface.SaveLedgerTx
func (r *postgresRepository) SaveLedgerTx(ctx context.Context, tx pgx.Tx, enrollment *model.CourseEnrollment) error {
	query := `
		UPDATE course_enrollments
		SET paid_amount = $2, payment_status = $3, enrollment_status = $4, updated_at = $5
		WHERE id = $1
	`

	tag, err := tx.Exec(ctx, query,
		enrollment.ID,
		enrollment.PaidAmount,
		enrollment.PaymentStatus,
		enrollment.EnrollmentStatus,
		enrollment.UpdatedAt,
	)
	if err != nil {
		return fmt.Errorf("failed to save enrollment ledger: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return model.ErrEnrollmentNotFound
	}

	for i := range enrollment.Installments {
		inst := &enrollment.Installments[i]
		instQuery := `
			UPDATE installment_payments
			SET paid_amount = $2, status = $3, updated_at = $4
			WHERE id = $1
		`
		if _, err := tx.Exec(ctx, instQuery, inst.ID, inst.PaidAmount, inst.Status, inst.UpdatedAt); err != nil {
			return fmt.Errorf("failed to save installment %d: %w", inst.Number, err)
		}
	}

	return nil
}

// CreateInstallmentsTx implements RepositoryInterface.CreateInstallmentsTx
func (r *postgresRepository) CreateInstallmentsTx(ctx context.Context, tx pgx.Tx, installments []model.InstallmentPayment) error {
	query := `
		INSERT INTO installment_payments
			(id, enrollment_id, number, amount, paid_amount, due_date, status, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)
	`

	for i := range installments {
		inst := &installments[i]
		_, err := tx.Exec(ctx, query,
			inst.ID,
			inst.EnrollmentID,
			inst.Number,
			inst.Amount,
			inst.PaidAmount,
			inst.DueDate,
			inst.Status,
			inst.CreatedAt,
			inst.UpdatedAt,
		)
		if err != nil {
			return fmt.Errorf("failed to create installment %d: %w", inst.Number, err)
		}
	}

	return nil
}

// RecordPaymentAuditTx implements RepositoryInterface.RecordPaymentAuditTx
func (r *postgresRepository) RecordPaymentAuditTx(ctx context.Context, tx pgx.Tx, enrollmentID uuid.UUID, amount string, reference, method string) error {
	query := `
		INSERT INTO enrollment_payment_audit (id, enrollment_id, amount, reference, method, recorded_at)
		VALUES ($1, $2, $3, $4, $5, NOW())
	`

	if _, err := tx.Exec(ctx, query, uuid.New(), enrollmentID, amount, reference, method); err != nil {
		return fmt.Errorf("failed to record payment audit: %w", err)
	}

	return nil
}

// ListByStudent implements RepositoryInterface.ListByStudent
func (r *postgresRepository) ListByStudent(ctx context.Context, studentID uuid.UUID) ([]model.CourseEnrollment, error) {
	query := `SELECT ` + enrollmentColumns + ` FROM course_enrollments WHERE student_id = $1 ORDER BY created_at DESC`

	rows, err := r.pool.Query(ctx, query, studentID)
	if err != nil {
		return nil, fmt.Errorf("failed to list enrollments: %w", err)
	}
	defer rows.Close()

	var enrollments []model.CourseEnrollment
	for rows.Next() {
		var e model.CourseEnrollment
		err := rows.Scan(
			&e.ID,
			&e.StudentID,
			&e.CourseID,
			&e.TotalAmount,
			&e.PaidAmount,
			&e.PaymentStatus,
			&e.EnrollmentStatus,
			&e.CreatedAt,
			&e.UpdatedAt,
		)
		if err != nil {
			return nil, fmt.Errorf("failed to scan enrollment: %w", err)
		}
		enrollments = append(enrollments, e)
	}

	return enrollments, rows.Err()
}

// MarkOverdueInstallments implements RepositoryInterface.MarkOverdueInstallments
func (r *postgresRepository) MarkOverdueInstallments(ctx context.Context) (int, error) {
	query := `
		UPDATE installment_payments
		SET status = 'overdue', updated_at = NOW()
		WHERE status IN ('unpaid', 'partial') AND due_date < NOW()
	`

	tag, err := r.pool.Exec(ctx, query)
	if err != nil {
		return 0, fmt.Errorf("failed to mark overdue installments: %w", err)
	}

	return int(tag.RowsAffected()), nil
}
