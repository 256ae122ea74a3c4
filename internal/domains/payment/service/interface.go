package service

import (
	"context"

	"github.com/google/uuid"

	"coursehub-backend/internal/domains/payment/model"
)

type ServiceInterface interface {
	// CreateAttempt opens a pending_payment attempt for a course. Idempotent
	// per Idempotency-Key; rejects a second in-flight attempt for the same
	// (student, course).
	CreateAttempt(ctx context.Context, idempotencyKey string, studentID uuid.UUID, req model.CreateAttemptRequest) (*model.AttemptResponse, bool, error)

	// UploadReceipt moves the student's attempt from pending_payment to
	// awaiting_approval
	UploadReceipt(ctx context.Context, studentID, attemptID uuid.UUID, req model.UploadReceiptRequest) (*model.AttemptResponse, error)

	// Approve marks the attempt paid and applies its amount to the
	// enrollment ledger, creating the enrollment when checkout has not.
	// Exactly one of two concurrent reviewers wins.
	Approve(ctx context.Context, reviewerID, attemptID uuid.UUID) (*model.AttemptResponse, error)

	// Reject marks the attempt failed with a reason
	Reject(ctx context.Context, reviewerID, attemptID uuid.UUID, req model.RejectRequest) (*model.AttemptResponse, error)

	// GetAttempt returns one attempt; students see only their own
	GetAttempt(ctx context.Context, attemptID, requesterID uuid.UUID, isAdmin bool) (*model.AttemptResponse, error)

	// ListMyAttempts returns the student's attempts, newest first
	ListMyAttempts(ctx context.Context, studentID uuid.UUID) ([]model.AttemptResponse, error)

	// ListPendingReview returns the admin review queue, oldest first
	ListPendingReview(ctx context.Context, page, limit int) ([]model.AttemptResponse, int, error)
}
