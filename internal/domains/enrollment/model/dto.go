package model

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// RecordPaymentRequest applies an amount to the enrollment ledger
type RecordPaymentRequest struct {
	Amount    float64 `json:"amount" binding:"required,gt=0"`
	Reference string  `json:"reference" binding:"required,min=3,max=255"`
	Method    string  `json:"method" binding:"required,oneof=bank_transfer cash card"`
}

// CreateInstallmentPlanRequest attaches a plan to an enrollment
type CreateInstallmentPlanRequest struct {
	Installments []InstallmentInput `json:"installments" binding:"required,min=1,dive"`
}

type InstallmentInput struct {
	Amount  float64   `json:"amount" binding:"required,gt=0"`
	DueDate time.Time `json:"due_date" binding:"required"`
}

// EnrollmentResponse is the ledger view returned to callers.
// Derived fields are recomputed on every read, never stored.
type EnrollmentResponse struct {
	ID               uuid.UUID       `json:"id"`
	StudentID        uuid.UUID       `json:"student_id"`
	CourseID         uuid.UUID       `json:"course_id"`
	TotalAmount      decimal.Decimal `json:"total_amount"`
	PaidAmount       decimal.Decimal `json:"paid_amount"`
	RemainingAmount  decimal.Decimal `json:"remaining_amount"`
	PaymentPercent   decimal.Decimal `json:"payment_percentage"`
	PaymentStatus    string          `json:"payment_status"`
	EnrollmentStatus string          `json:"enrollment_status"`

	Installments []InstallmentResponse `json:"installments,omitempty"`

	CreatedAt time.Time `json:"created_at"`
}

type InstallmentResponse struct {
	ID              uuid.UUID       `json:"id"`
	Number          int             `json:"number"`
	Amount          decimal.Decimal `json:"amount"`
	PaidAmount      decimal.Decimal `json:"paid_amount"`
	RemainingAmount decimal.Decimal `json:"remaining_amount"`
	DueDate         time.Time       `json:"due_date"`
	Status          string          `json:"status"`
	DaysUntilDue    int             `json:"days_until_due"`
	DaysOverdue     int             `json:"days_overdue"`
}

// RecordPaymentResponse reports where a payment landed
type RecordPaymentResponse struct {
	EnrollmentID    uuid.UUID           `json:"enrollment_id"`
	AmountApplied   decimal.Decimal     `json:"amount_applied"`
	Allocations     []PaymentAllocation `json:"allocations,omitempty"`
	PaidAmount      decimal.Decimal     `json:"paid_amount"`
	RemainingAmount decimal.Decimal     `json:"remaining_amount"`
	PaymentStatus   string              `json:"payment_status"`
}

// ToResponse converts the enrollment to its ledger view
func (e *CourseEnrollment) ToResponse(now time.Time) *EnrollmentResponse {
	resp := &EnrollmentResponse{
		ID:               e.ID,
		StudentID:        e.StudentID,
		CourseID:         e.CourseID,
		TotalAmount:      e.TotalAmount,
		PaidAmount:       e.PaidAmount,
		RemainingAmount:  e.RemainingAmount(),
		PaymentPercent:   e.PaymentPercentage(),
		PaymentStatus:    e.PaymentStatus,
		EnrollmentStatus: e.EnrollmentStatus,
		CreatedAt:        e.CreatedAt,
	}

	for i := range e.Installments {
		inst := &e.Installments[i]
		resp.Installments = append(resp.Installments, InstallmentResponse{
			ID:              inst.ID,
			Number:          inst.Number,
			Amount:          inst.Amount,
			PaidAmount:      inst.PaidAmount,
			RemainingAmount: inst.RemainingAmount(),
			DueDate:         inst.DueDate,
			Status:          inst.DeriveStatus(now),
			DaysUntilDue:    inst.DaysUntilDue(now),
			DaysOverdue:     inst.DaysOverdue(now),
		})
	}

	return resp
}
