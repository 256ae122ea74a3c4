package service

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/hibiken/asynq"
	"github.com/jackc/pgx/v5"
	"github.com/shopspring/decimal"

	enrollmentmodel "coursehub-backend/internal/domains/enrollment/model"
	enrollmentrepo "coursehub-backend/internal/domains/enrollment/repository"
	idemmodel "coursehub-backend/internal/domains/idempotency/model"
	idempotency "coursehub-backend/internal/domains/idempotency/service"
	"coursehub-backend/internal/domains/payment/model"
	repo "coursehub-backend/internal/domains/payment/repository"
	"coursehub-backend/internal/shared"
	"coursehub-backend/pkg/database"
	"coursehub-backend/pkg/logger"
)

type PaymentService struct {
	repository     repo.RepositoryInterface
	enrollmentRepo enrollmentrepo.RepositoryInterface
	idempotency    *idempotency.Service
	txRunner       database.TxRunner
	asynqClient    *asynq.Client
	now            func() time.Time
}

func NewPaymentService(
	r repo.RepositoryInterface,
	enrollmentRepo enrollmentrepo.RepositoryInterface,
	idem *idempotency.Service,
	txRunner database.TxRunner,
	asynqClient *asynq.Client,
) ServiceInterface {
	return &PaymentService{
		repository:     r,
		enrollmentRepo: enrollmentRepo,
		idempotency:    idem,
		txRunner:       txRunner,
		asynqClient:    asynqClient,
		now:            time.Now,
	}
}

// NewPaymentServiceWithClock injects a clock for deterministic tests
func NewPaymentServiceWithClock(
	r repo.RepositoryInterface,
	enrollmentRepo enrollmentrepo.RepositoryInterface,
	idem *idempotency.Service,
	txRunner database.TxRunner,
	asynqClient *asynq.Client,
	now func() time.Time,
) ServiceInterface {
	return &PaymentService{
		repository:     r,
		enrollmentRepo: enrollmentRepo,
		idempotency:    idem,
		txRunner:       txRunner,
		asynqClient:    asynqClient,
		now:            now,
	}
}

func (s *PaymentService) CreateAttempt(ctx context.Context, idempotencyKey string, studentID uuid.UUID, req model.CreateAttemptRequest) (*model.AttemptResponse, bool, error) {
	courseID, err := uuid.Parse(req.CourseID)
	if err != nil {
		return nil, false, fmt.Errorf("invalid course id: %w", err)
	}

	var orderID *uuid.UUID
	if req.OrderID != nil {
		parsed, err := uuid.Parse(*req.OrderID)
		if err != nil {
			return nil, false, fmt.Errorf("invalid order id: %w", err)
		}
		orderID = &parsed
	}

	amount := decimal.NewFromFloat(req.Amount)
	if amount.LessThanOrEqual(decimal.Zero) {
		return nil, false, model.ErrInvalidAmount
	}

	payload := map[string]interface{}{
		"course_id": courseID.String(),
		"amount":    amount.String(),
	}

	outcome, err := idempotency.Execute(ctx, s.idempotency, idempotencyKey, studentID, idemmodel.OpCreatePaymentAttempt,
		payload, func(ctx context.Context, tx pgx.Tx) (*model.AttemptResponse, error) {
			// One open attempt per (student, course): the previous one must
			// reach paid or failed before a new one starts. This read gives a
			// friendly early rejection; the partial unique index behind CreateTx
			// closes the race this read cannot see.
			inFlight, err := s.repository.GetInFlightByStudentAndCourse(ctx, studentID, courseID)
			if err != nil {
				return nil, fmt.Errorf("failed to check in-flight attempts: %w", err)
			}
			if inFlight != nil {
				return nil, model.ErrAttemptInFlight
			}

			attempt := model.NewPaymentAttempt(uuid.New(), studentID, courseID, orderID, amount, s.now())
			if err := s.repository.CreateTx(ctx, tx, attempt); err != nil {
				return nil, err
			}

			logger.Info("payment attempt created", map[string]interface{}{
				"attempt_id": attempt.ID.String(),
				"course_id":  courseID.String(),
				"amount":     amount.String(),
			})

			return attempt.ToResponse(), nil
		})
	if err != nil {
		return nil, false, err
	}

	return outcome.Data, outcome.Replayed, nil
}

func (s *PaymentService) UploadReceipt(ctx context.Context, studentID, attemptID uuid.UUID, req model.UploadReceiptRequest) (*model.AttemptResponse, error) {
	var response *model.AttemptResponse
	err := s.txRunner.RunInTx(ctx, func(tx pgx.Tx) error {
		attempt, err := s.repository.GetByIDForUpdateTx(ctx, tx, attemptID)
		if err != nil {
			return err
		}
		if attempt == nil || attempt.StudentID != studentID {
			return model.ErrAttemptNotFound
		}

		expectedVersion := attempt.Version
		if err := attempt.AttachReceipt(req.ReceiptReference, s.now()); err != nil {
			return err
		}

		if err := s.repository.UpdateVersionedTx(ctx, tx, attempt, expectedVersion); err != nil {
			return err
		}

		response = attempt.ToResponse()
		return nil
	})
	if err != nil {
		return nil, err
	}

	s.notifyTransition(response, nil)
	return response, nil
}

func (s *PaymentService) Approve(ctx context.Context, reviewerID, attemptID uuid.UUID) (*model.AttemptResponse, error) {
	var response *model.AttemptResponse
	err := s.txRunner.RunInTx(ctx, func(tx pgx.Tx) error {
		// Step 1: Lock the attempt row
		attempt, err := s.repository.GetByIDForUpdateTx(ctx, tx, attemptID)
		if err != nil {
			return err
		}
		if attempt == nil {
			return model.ErrAttemptNotFound
		}

		// Step 2: Transition; the version guard catches a reviewer who read
		// the attempt before our lock
		expectedVersion := attempt.Version
		if err := attempt.Approve(reviewerID, s.now()); err != nil {
			return err
		}
		if err := s.repository.UpdateVersionedTx(ctx, tx, attempt, expectedVersion); err != nil {
			return err
		}

		// Step 3: Apply the amount to the enrollment ledger
		if err := s.applyToLedger(ctx, tx, attempt); err != nil {
			return err
		}

		response = attempt.ToResponse()
		return nil
	})
	if err != nil {
		return nil, err
	}

	logger.Info("payment attempt approved", map[string]interface{}{
		"attempt_id":  attemptID.String(),
		"reviewed_by": reviewerID.String(),
	})

	s.notifyTransition(response, nil)
	return response, nil
}

// applyToLedger credits the approved amount to the student's enrollment,
// creating an enrollment sized to the attempt when checkout has not made one
// (direct purchase path)
func (s *PaymentService) applyToLedger(ctx context.Context, tx pgx.Tx, attempt *model.PaymentAttempt) error {
	now := s.now()

	enrollment, err := s.enrollmentRepo.GetByStudentAndCourseForUpdateTx(ctx, tx, attempt.StudentID, attempt.CourseID)
	if err != nil {
		return err
	}

	if enrollment == nil {
		enrollment = enrollmentmodel.NewEnrollment(uuid.New(), attempt.StudentID, attempt.CourseID, attempt.Amount, now)
		if err := s.enrollmentRepo.CreateTx(ctx, tx, enrollment); err != nil {
			return err
		}
	}

	if _, err := enrollment.AllocatePayment(attempt.Amount, now); err != nil {
		return fmt.Errorf("failed to apply approved payment to ledger: %w", err)
	}

	if err := s.enrollmentRepo.SaveLedgerTx(ctx, tx, enrollment); err != nil {
		return err
	}

	reference := attempt.ID.String()
	if attempt.ReceiptReference != nil {
		reference = *attempt.ReceiptReference
	}
	return s.enrollmentRepo.RecordPaymentAuditTx(ctx, tx, enrollment.ID, attempt.Amount.String(), reference, "payment_review")
}

func (s *PaymentService) Reject(ctx context.Context, reviewerID, attemptID uuid.UUID, req model.RejectRequest) (*model.AttemptResponse, error) {
	var response *model.AttemptResponse
	err := s.txRunner.RunInTx(ctx, func(tx pgx.Tx) error {
		attempt, err := s.repository.GetByIDForUpdateTx(ctx, tx, attemptID)
		if err != nil {
			return err
		}
		if attempt == nil {
			return model.ErrAttemptNotFound
		}

		expectedVersion := attempt.Version
		if err := attempt.Reject(reviewerID, req.Reason, s.now()); err != nil {
			return err
		}

		if err := s.repository.UpdateVersionedTx(ctx, tx, attempt, expectedVersion); err != nil {
			return err
		}

		response = attempt.ToResponse()
		return nil
	})
	if err != nil {
		return nil, err
	}

	logger.Info("payment attempt rejected", map[string]interface{}{
		"attempt_id":  attemptID.String(),
		"reviewed_by": reviewerID.String(),
		"reason":      req.Reason,
	})

	s.notifyTransition(response, &req.Reason)
	return response, nil
}

func (s *PaymentService) GetAttempt(ctx context.Context, attemptID, requesterID uuid.UUID, isAdmin bool) (*model.AttemptResponse, error) {
	attempt, err := s.repository.GetByID(ctx, attemptID)
	if err != nil {
		return nil, err
	}
	if attempt == nil {
		return nil, model.ErrAttemptNotFound
	}
	if !isAdmin && attempt.StudentID != requesterID {
		return nil, model.ErrAttemptNotFound
	}
	return attempt.ToResponse(), nil
}

func (s *PaymentService) ListMyAttempts(ctx context.Context, studentID uuid.UUID) ([]model.AttemptResponse, error) {
	attempts, err := s.repository.ListByStudent(ctx, studentID)
	if err != nil {
		return nil, err
	}

	responses := make([]model.AttemptResponse, len(attempts))
	for i := range attempts {
		responses[i] = *attempts[i].ToResponse()
	}
	return responses, nil
}

func (s *PaymentService) ListPendingReview(ctx context.Context, page, limit int) ([]model.AttemptResponse, int, error) {
	if page < 1 {
		page = 1
	}
	if limit < 1 || limit > 100 {
		limit = 20
	}

	attempts, total, err := s.repository.ListPendingReview(ctx, page, limit)
	if err != nil {
		return nil, 0, err
	}

	responses := make([]model.AttemptResponse, len(attempts))
	for i := range attempts {
		responses[i] = *attempts[i].ToResponse()
	}
	return responses, total, nil
}

// notifyTransition fires the status notification task after commit.
// Fire-and-forget: a lost notification never fails the review.
func (s *PaymentService) notifyTransition(resp *model.AttemptResponse, reason *string) {
	if s.asynqClient == nil || resp == nil {
		return
	}

	payload, err := json.Marshal(model.StatusNotificationPayload{
		AttemptID: resp.ID,
		StudentID: resp.StudentID,
		CourseID:  resp.CourseID,
		Status:    resp.Status,
		Reason:    reason,
	})
	if err != nil {
		logger.Error("failed to marshal payment notification payload", err)
		return
	}

	task := asynq.NewTask(shared.TypePaymentStatusNotification, payload)
	if _, err := s.asynqClient.Enqueue(task, asynq.Queue(shared.QueueDefault), asynq.MaxRetry(3)); err != nil {
		logger.Error("failed to enqueue payment notification", err)
	}
}
