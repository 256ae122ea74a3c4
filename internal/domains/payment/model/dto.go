package model

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// CreateAttemptRequest opens a payment attempt for a course
type CreateAttemptRequest struct {
	CourseID string  `json:"course_id" binding:"required,uuid"`
	OrderID  *string `json:"order_id,omitempty" binding:"omitempty,uuid"`
	Amount   float64 `json:"amount" binding:"required,gt=0"`
}

// UploadReceiptRequest attaches proof of payment to a pending attempt
type UploadReceiptRequest struct {
	ReceiptReference string `json:"receipt_reference" binding:"required,min=3,max=500"`
}

// RejectRequest fails an attempt under review
type RejectRequest struct {
	Reason string `json:"reason" binding:"required,min=3,max=1000"`
}

// AttemptResponse is the external view of a payment attempt
type AttemptResponse struct {
	ID               uuid.UUID       `json:"id"`
	StudentID        uuid.UUID       `json:"student_id"`
	CourseID         uuid.UUID       `json:"course_id"`
	OrderID          *uuid.UUID      `json:"order_id,omitempty"`
	Amount           decimal.Decimal `json:"amount"`
	Status           string          `json:"status"`
	ReceiptReference *string         `json:"receipt_reference,omitempty"`
	ReviewedBy       *uuid.UUID      `json:"reviewed_by,omitempty"`
	ReviewedAt       *time.Time      `json:"reviewed_at,omitempty"`
	RejectReason     *string         `json:"reject_reason,omitempty"`
	CreatedAt        time.Time       `json:"created_at"`
	UpdatedAt        time.Time       `json:"updated_at"`
}

func (p *PaymentAttempt) ToResponse() *AttemptResponse {
	return &AttemptResponse{
		ID:               p.ID,
		StudentID:        p.StudentID,
		CourseID:         p.CourseID,
		OrderID:          p.OrderID,
		Amount:           p.Amount,
		Status:           p.Status,
		ReceiptReference: p.ReceiptReference,
		ReviewedBy:       p.ReviewedBy,
		ReviewedAt:       p.ReviewedAt,
		RejectReason:     p.RejectReason,
		CreatedAt:        p.CreatedAt,
		UpdatedAt:        p.UpdatedAt,
	}
}

// StatusNotificationPayload rides the asynq task fired on every review
// transition
type StatusNotificationPayload struct {
	AttemptID uuid.UUID `json:"attempt_id"`
	StudentID uuid.UUID `json:"student_id"`
	CourseID  uuid.UUID `json:"course_id"`
	Status    string    `json:"status"`
	Reason    *string   `json:"reason,omitempty"`
}
