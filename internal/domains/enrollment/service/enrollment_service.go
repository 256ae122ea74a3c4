package service

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/shopspring/decimal"

	"coursehub-backend/internal/domains/enrollment/model"
	repo "coursehub-backend/internal/domains/enrollment/repository"
	idemmodel "coursehub-backend/internal/domains/idempotency/model"
	idempotency "coursehub-backend/internal/domains/idempotency/service"
	"coursehub-backend/pkg/database"
	"coursehub-backend/pkg/logger"
)

type EnrollmentService struct {
	repository  repo.RepositoryInterface
	idempotency *idempotency.Service
	txRunner    database.TxRunner
	now         func() time.Time
}

func NewEnrollmentService(r repo.RepositoryInterface, idem *idempotency.Service, txRunner database.TxRunner) ServiceInterface {
	return &EnrollmentService{
		repository:  r,
		idempotency: idem,
		txRunner:    txRunner,
		now:         time.Now,
	}
}

// NewEnrollmentServiceWithClock injects a clock for deterministic
// due-date tests
func NewEnrollmentServiceWithClock(r repo.RepositoryInterface, idem *idempotency.Service, txRunner database.TxRunner, now func() time.Time) ServiceInterface {
	return &EnrollmentService{
		repository:  r,
		idempotency: idem,
		txRunner:    txRunner,
		now:         now,
	}
}

func (s *EnrollmentService) GetEnrollment(ctx context.Context, enrollmentID, requesterID uuid.UUID, isAdmin bool) (*model.EnrollmentResponse, error) {
	enrollment, err := s.repository.GetByID(ctx, enrollmentID)
	if err != nil {
		return nil, fmt.Errorf("failed to get enrollment: %w", err)
	}
	if enrollment == nil {
		return nil, model.ErrEnrollmentNotFound
	}

	// Ownership check: not-found rather than forbidden, so enrollment ids
	// don't leak across students
	if !isAdmin && enrollment.StudentID != requesterID {
		return nil, model.ErrEnrollmentNotFound
	}

	if enrollment.HasOverpayment() {
		logger.ErrorWithFields("enrollment ledger overpayment detected", model.ErrOverpaymentDetected, map[string]interface{}{
			"enrollment_id": enrollment.ID.String(),
			"total_amount":  enrollment.TotalAmount.String(),
			"paid_amount":   enrollment.PaidAmount.String(),
		})
	}

	return enrollment.ToResponse(s.now()), nil
}

func (s *EnrollmentService) ListStudentEnrollments(ctx context.Context, studentID uuid.UUID) ([]model.EnrollmentResponse, error) {
	enrollments, err := s.repository.ListByStudent(ctx, studentID)
	if err != nil {
		return nil, fmt.Errorf("failed to list enrollments: %w", err)
	}

	now := s.now()
	responses := make([]model.EnrollmentResponse, len(enrollments))
	for i := range enrollments {
		responses[i] = *enrollments[i].ToResponse(now)
	}

	return responses, nil
}

func (s *EnrollmentService) RecordPayment(ctx context.Context, idempotencyKey string, adminID, enrollmentID uuid.UUID, req model.RecordPaymentRequest) (*model.RecordPaymentResponse, bool, error) {
	amount := decimal.NewFromFloat(req.Amount)

	// The fingerprint covers the target enrollment too, so the same key
	// cannot be replayed against a different ledger
	payload := map[string]interface{}{
		"enrollment_id": enrollmentID.String(),
		"amount":        amount.String(),
		"reference":     req.Reference,
		"method":        req.Method,
	}

	outcome, err := idempotency.Execute(ctx, s.idempotency, idempotencyKey, adminID, idemmodel.OpRecordPayment,
		payload, func(ctx context.Context, tx pgx.Tx) (*model.RecordPaymentResponse, error) {
			return s.applyPayment(ctx, tx, enrollmentID, amount, req.Reference, req.Method)
		})
	if err != nil {
		return nil, false, err
	}

	if outcome.Replayed {
		logger.Info("payment record replayed from idempotency cache", map[string]interface{}{
			"enrollment_id": enrollmentID.String(),
			"reference":     req.Reference,
		})
	}

	return outcome.Data, outcome.Replayed, nil
}

// applyPayment mutates the ledger inside the caller's transaction:
// lock the enrollment row, allocate across installments, persist, audit
func (s *EnrollmentService) applyPayment(ctx context.Context, tx pgx.Tx, enrollmentID uuid.UUID, amount decimal.Decimal, reference, method string) (*model.RecordPaymentResponse, error) {
	now := s.now()

	// Step 1: Lock the ledger so concurrent payments serialize
	enrollment, err := s.repository.GetByIDForUpdateTx(ctx, tx, enrollmentID)
	if err != nil {
		return nil, fmt.Errorf("failed to lock enrollment: %w", err)
	}
	if enrollment == nil {
		return nil, model.ErrEnrollmentNotFound
	}

	// Step 2: Allocate the amount oldest-due-first
	allocations, err := enrollment.AllocatePayment(amount, now)
	if err != nil {
		return nil, err
	}

	// Step 3: Persist amounts and derived statuses
	if err := s.repository.SaveLedgerTx(ctx, tx, enrollment); err != nil {
		return nil, err
	}

	// Step 4: Audit trail
	if err := s.repository.RecordPaymentAuditTx(ctx, tx, enrollmentID, amount.String(), reference, method); err != nil {
		return nil, err
	}

	logger.Info("payment recorded", map[string]interface{}{
		"enrollment_id":  enrollmentID.String(),
		"amount":         amount.String(),
		"payment_status": enrollment.PaymentStatus,
	})

	return &model.RecordPaymentResponse{
		EnrollmentID:    enrollment.ID,
		AmountApplied:   amount,
		Allocations:     allocations,
		PaidAmount:      enrollment.PaidAmount,
		RemainingAmount: enrollment.RemainingAmount(),
		PaymentStatus:   enrollment.PaymentStatus,
	}, nil
}

func (s *EnrollmentService) CreateInstallmentPlan(ctx context.Context, enrollmentID uuid.UUID, req model.CreateInstallmentPlanRequest) (*model.EnrollmentResponse, error) {
	now := s.now()

	var response *model.EnrollmentResponse
	err := s.txRunner.RunInTx(ctx, func(tx pgx.Tx) error {
		enrollment, err := s.repository.GetByIDForUpdateTx(ctx, tx, enrollmentID)
		if err != nil {
			return fmt.Errorf("failed to lock enrollment: %w", err)
		}
		if enrollment == nil {
			return model.ErrEnrollmentNotFound
		}

		amounts := make([]decimal.Decimal, len(req.Installments))
		dueDates := make([]time.Time, len(req.Installments))
		for i, in := range req.Installments {
			amounts[i] = decimal.NewFromFloat(in.Amount)
			dueDates[i] = in.DueDate
		}

		if err := enrollment.BuildInstallmentPlan(amounts, dueDates, now); err != nil {
			return err
		}

		if err := s.repository.CreateInstallmentsTx(ctx, tx, enrollment.Installments); err != nil {
			return err
		}

		response = enrollment.ToResponse(now)
		return nil
	})
	if err != nil {
		return nil, err
	}

	logger.Info("installment plan created", map[string]interface{}{
		"enrollment_id": enrollmentID.String(),
		"installments":  len(req.Installments),
	})

	return response, nil
}

func (s *EnrollmentService) MarkOverdueInstallments(ctx context.Context) (int, error) {
	count, err := s.repository.MarkOverdueInstallments(ctx)
	if err != nil {
		return 0, fmt.Errorf("failed to mark overdue installments: %w", err)
	}

	if count > 0 {
		logger.Info("installments marked overdue", map[string]interface{}{
			"count": count,
		})
	}

	return count, nil
}
