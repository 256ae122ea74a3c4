package model

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// =====================================================
// STATUS CONSTANTS
// =====================================================

// Attempt lifecycle: pending_payment -> awaiting_approval -> paid | failed.
// paid and failed are terminal.
const (
	StatusPendingPayment   = "pending_payment"
	StatusAwaitingApproval = "awaiting_approval"
	StatusPaid             = "paid"
	StatusFailed           = "failed"
)

// =====================================================
// ENTITY: PaymentAttempt
// =====================================================
type PaymentAttempt struct {
	ID        uuid.UUID  `json:"id" db:"id"`
	StudentID uuid.UUID  `json:"student_id" db:"student_id"`
	CourseID  uuid.UUID  `json:"course_id" db:"course_id"`
	OrderID   *uuid.UUID `json:"order_id,omitempty" db:"order_id"`

	Amount decimal.Decimal `json:"amount" db:"amount"`
	Status string          `json:"status" db:"status"`

	ReceiptReference *string `json:"receipt_reference,omitempty" db:"receipt_reference"`

	ReviewedBy   *uuid.UUID `json:"reviewed_by,omitempty" db:"reviewed_by"`
	ReviewedAt   *time.Time `json:"reviewed_at,omitempty" db:"reviewed_at"`
	RejectReason *string    `json:"reject_reason,omitempty" db:"reject_reason"`

	// Version increments on every state transition; concurrent reviewers
	// race on it and exactly one wins
	Version int `json:"version" db:"version"`

	CreatedAt time.Time `json:"created_at" db:"created_at"`
	UpdatedAt time.Time `json:"updated_at" db:"updated_at"`
}

// NewPaymentAttempt builds a fresh attempt in pending_payment
func NewPaymentAttempt(id, studentID, courseID uuid.UUID, orderID *uuid.UUID, amount decimal.Decimal, now time.Time) *PaymentAttempt {
	return &PaymentAttempt{
		ID:        id,
		StudentID: studentID,
		CourseID:  courseID,
		OrderID:   orderID,
		Amount:    amount,
		Status:    StatusPendingPayment,
		Version:   1,
		CreatedAt: now,
		UpdatedAt: now,
	}
}

// IsInFlight reports whether the attempt still occupies the
// (student, course) slot: a new attempt may not be created while one is open
func (p *PaymentAttempt) IsInFlight() bool {
	return p.Status == StatusPendingPayment || p.Status == StatusAwaitingApproval
}

// IsTerminal reports whether no further transition is allowed
func (p *PaymentAttempt) IsTerminal() bool {
	return p.Status == StatusPaid || p.Status == StatusFailed
}

// AttachReceipt moves pending_payment -> awaiting_approval.
// Any other starting state is a state conflict.
func (p *PaymentAttempt) AttachReceipt(reference string, now time.Time) error {
	if p.Status != StatusPendingPayment {
		return NewStateConflictError(p.Status, StatusAwaitingApproval)
	}
	if reference == "" {
		return ErrMissingReceipt
	}

	p.Status = StatusAwaitingApproval
	p.ReceiptReference = &reference
	p.Version++
	p.UpdatedAt = now
	return nil
}

// Approve moves awaiting_approval -> paid and records the reviewer
func (p *PaymentAttempt) Approve(reviewerID uuid.UUID, now time.Time) error {
	if p.Status != StatusAwaitingApproval {
		return NewStateConflictError(p.Status, StatusPaid)
	}

	p.Status = StatusPaid
	p.ReviewedBy = &reviewerID
	p.ReviewedAt = &now
	p.Version++
	p.UpdatedAt = now
	return nil
}

// Reject moves awaiting_approval -> failed with a mandatory reason
func (p *PaymentAttempt) Reject(reviewerID uuid.UUID, reason string, now time.Time) error {
	if p.Status != StatusAwaitingApproval {
		return NewStateConflictError(p.Status, StatusFailed)
	}
	if reason == "" {
		return ErrMissingRejectReason
	}

	p.Status = StatusFailed
	p.ReviewedBy = &reviewerID
	p.ReviewedAt = &now
	p.RejectReason = &reason
	p.Version++
	p.UpdatedAt = now
	return nil
}
