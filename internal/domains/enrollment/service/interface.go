package service

import (
	"context"

	"github.com/google/uuid"

	"coursehub-backend/internal/domains/enrollment/model"
)

type ServiceInterface interface {
	// GetEnrollment returns the ledger view for one enrollment.
	// Students may only read their own; admins read any.
	GetEnrollment(ctx context.Context, enrollmentID, requesterID uuid.UUID, isAdmin bool) (*model.EnrollmentResponse, error)

	// ListStudentEnrollments returns all enrollments for a student
	ListStudentEnrollments(ctx context.Context, studentID uuid.UUID) ([]model.EnrollmentResponse, error)

	// RecordPayment applies an offline payment to the ledger (admin).
	// Idempotent per Idempotency-Key: a retried request replays the original
	// allocation instead of applying the amount twice.
	RecordPayment(ctx context.Context, idempotencyKey string, adminID, enrollmentID uuid.UUID, req model.RecordPaymentRequest) (*model.RecordPaymentResponse, bool, error)

	// CreateInstallmentPlan attaches an installment plan to an unplanned
	// enrollment (admin). Amounts must sum exactly to the enrollment total.
	CreateInstallmentPlan(ctx context.Context, enrollmentID uuid.UUID, req model.CreateInstallmentPlanRequest) (*model.EnrollmentResponse, error)

	// MarkOverdueInstallments flips past-due unpaid/partial installments to
	// overdue. Called by the scheduled sweep.
	MarkOverdueInstallments(ctx context.Context) (int, error)
}
