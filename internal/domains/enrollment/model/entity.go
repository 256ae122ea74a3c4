package model

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// =====================================================
// STATUS CONSTANTS
// =====================================================
const (
	PaymentStatusUnpaid  = "unpaid"
	PaymentStatusPartial = "partial"
	PaymentStatusPaid    = "paid"
)

const (
	EnrollmentStatusActive    = "active"
	EnrollmentStatusCompleted = "completed"
	EnrollmentStatusCancelled = "cancelled"
	EnrollmentStatusSuspended = "suspended"
)

const (
	InstallmentStatusUnpaid  = "unpaid"
	InstallmentStatusPartial = "partial"
	InstallmentStatusPaid    = "paid"
	InstallmentStatusOverdue = "overdue"
)

// =====================================================
// ENTITY: CourseEnrollment
// =====================================================
type CourseEnrollment struct {
	ID         uuid.UUID `json:"id" db:"id"`
	StudentID  uuid.UUID `json:"student_id" db:"student_id"`
	CourseID   uuid.UUID `json:"course_id" db:"course_id"`

	TotalAmount decimal.Decimal `json:"total_amount" db:"total_amount"`
	PaidAmount  decimal.Decimal `json:"paid_amount" db:"paid_amount"`

	PaymentStatus    string `json:"payment_status" db:"payment_status"`
	EnrollmentStatus string `json:"enrollment_status" db:"enrollment_status"`

	Installments []InstallmentPayment `json:"installments,omitempty" db:"-"`

	CreatedAt time.Time `json:"created_at" db:"created_at"`
	UpdatedAt time.Time `json:"updated_at" db:"updated_at"`
}

// NewEnrollment builds an unpaid active enrollment. All fields explicit so
// tests construct deterministic instances.
func NewEnrollment(id, studentID, courseID uuid.UUID, total decimal.Decimal, now time.Time) *CourseEnrollment {
	return &CourseEnrollment{
		ID:               id,
		StudentID:        studentID,
		CourseID:         courseID,
		TotalAmount:      total,
		PaidAmount:       decimal.Zero,
		PaymentStatus:    PaymentStatusUnpaid,
		EnrollmentStatus: EnrollmentStatusActive,
		CreatedAt:        now,
		UpdatedAt:        now,
	}
}

// RemainingAmount is always total - paid, clamped at zero.
// A negative raw remainder means an upstream overpayment bug; check
// HasOverpayment before trusting the clamped value.
func (e *CourseEnrollment) RemainingAmount() decimal.Decimal {
	remaining := e.TotalAmount.Sub(e.PaidAmount)
	if remaining.LessThan(decimal.Zero) {
		return decimal.Zero
	}
	return remaining
}

// HasOverpayment reports paid > total, an integrity violation
func (e *CourseEnrollment) HasOverpayment() bool {
	return e.PaidAmount.GreaterThan(e.TotalAmount)
}

// PaymentPercentage returns paid/total in [0,1].
// A zero-total enrollment owes nothing and counts as fully paid.
func (e *CourseEnrollment) PaymentPercentage() decimal.Decimal {
	if e.TotalAmount.IsZero() {
		return decimal.NewFromInt(1)
	}
	pct := e.PaidAmount.Div(e.TotalAmount)
	if pct.GreaterThan(decimal.NewFromInt(1)) {
		return decimal.NewFromInt(1)
	}
	return pct
}

// DerivePaymentStatus recomputes the payment status from amounts.
// Never stored stale: callers must reassign after every mutation.
func (e *CourseEnrollment) DerivePaymentStatus() string {
	if e.PaidAmount.GreaterThanOrEqual(e.TotalAmount) {
		return PaymentStatusPaid
	}
	if e.PaidAmount.GreaterThan(decimal.Zero) {
		return PaymentStatusPartial
	}
	return PaymentStatusUnpaid
}

// HasInstallmentPlan reports whether the enrollment pays in installments
func (e *CourseEnrollment) HasInstallmentPlan() bool {
	return len(e.Installments) > 0
}

// =====================================================
// ENTITY: InstallmentPayment
// =====================================================
type InstallmentPayment struct {
	ID           uuid.UUID `json:"id" db:"id"`
	EnrollmentID uuid.UUID `json:"enrollment_id" db:"enrollment_id"`

	// Number orders installments within the enrollment, unique per plan
	Number int `json:"number" db:"number"`

	Amount     decimal.Decimal `json:"amount" db:"amount"`
	PaidAmount decimal.Decimal `json:"paid_amount" db:"paid_amount"`
	DueDate    time.Time       `json:"due_date" db:"due_date"`
	Status     string          `json:"status" db:"status"`

	CreatedAt time.Time `json:"created_at" db:"created_at"`
	UpdatedAt time.Time `json:"updated_at" db:"updated_at"`
}

// RemainingAmount of a single installment, clamped at zero
func (i *InstallmentPayment) RemainingAmount() decimal.Decimal {
	remaining := i.Amount.Sub(i.PaidAmount)
	if remaining.LessThan(decimal.Zero) {
		return decimal.Zero
	}
	return remaining
}

// DeriveStatus is a pure function of (paid vs amount, due date vs now).
// Overdue takes precedence over partial: a half-paid installment past its
// due date is overdue.
func (i *InstallmentPayment) DeriveStatus(now time.Time) string {
	if i.PaidAmount.GreaterThanOrEqual(i.Amount) {
		return InstallmentStatusPaid
	}
	if now.After(i.DueDate) {
		return InstallmentStatusOverdue
	}
	if i.PaidAmount.GreaterThan(decimal.Zero) {
		return InstallmentStatusPartial
	}
	return InstallmentStatusUnpaid
}

// DaysUntilDue returns the signed day count until the due date
// (negative when already past due)
func (i *InstallmentPayment) DaysUntilDue(now time.Time) int {
	return int(i.DueDate.Sub(now).Hours() / 24)
}

// DaysOverdue returns how many days past due the installment is
// (zero when not yet due)
func (i *InstallmentPayment) DaysOverdue(now time.Time) int {
	if !now.After(i.DueDate) {
		return 0
	}
	return int(now.Sub(i.DueDate).Hours() / 24)
}

// =====================================================
// PAYMENT ALLOCATION
// =====================================================

// PaymentAllocation records how much of a recorded payment landed on one
// installment
type PaymentAllocation struct {
	InstallmentID uuid.UUID       `json:"installment_id"`
	Number        int             `json:"number"`
	Amount        decimal.Decimal `json:"amount"`
}

// AllocatePayment applies amount to the ledger, oldest-due-first, cascading
// any excess across subsequent installments. Mutates paid amounts and
// recomputes statuses.
//
// Overflow beyond the whole plan (or beyond the enrollment total when there
// is no plan) is rejected with ErrPaymentExceedsBalance; nothing is silently
// dropped or applied elsewhere.
func (e *CourseEnrollment) AllocatePayment(amount decimal.Decimal, now time.Time) ([]PaymentAllocation, error) {
	if amount.LessThanOrEqual(decimal.Zero) {
		return nil, ErrInvalidPaymentAmount
	}

	if amount.GreaterThan(e.RemainingAmount()) {
		return nil, ErrPaymentExceedsBalance
	}

	if !e.HasInstallmentPlan() {
		e.PaidAmount = e.PaidAmount.Add(amount)
		e.PaymentStatus = e.DerivePaymentStatus()
		e.UpdatedAt = now
		return nil, nil
	}

	// Installments are kept ordered by due date (ties broken by number)
	remaining := amount
	var allocations []PaymentAllocation

	for idx := range e.Installments {
		if remaining.IsZero() {
			break
		}

		inst := &e.Installments[idx]
		instRemaining := inst.RemainingAmount()
		if instRemaining.IsZero() {
			continue
		}

		applied := decimal.Min(remaining, instRemaining)
		inst.PaidAmount = inst.PaidAmount.Add(applied)
		inst.Status = inst.DeriveStatus(now)
		inst.UpdatedAt = now

		allocations = append(allocations, PaymentAllocation{
			InstallmentID: inst.ID,
			Number:        inst.Number,
			Amount:        applied,
		})

		remaining = remaining.Sub(applied)
	}

	if remaining.GreaterThan(decimal.Zero) {
		// RemainingAmount() said the enrollment could absorb this, but the
		// plan could not: the plan no longer sums to the total
		return nil, ErrInstallmentSumMismatch
	}

	e.PaidAmount = e.PaidAmount.Add(amount)
	e.PaymentStatus = e.DerivePaymentStatus()
	e.UpdatedAt = now

	return allocations, nil
}

// BuildInstallmentPlan validates and attaches a plan to the enrollment.
// The amounts must sum exactly to the enrollment total.
func (e *CourseEnrollment) BuildInstallmentPlan(amounts []decimal.Decimal, dueDates []time.Time, now time.Time) error {
	if e.HasInstallmentPlan() {
		return ErrPlanAlreadyExists
	}
	if len(amounts) == 0 || len(amounts) != len(dueDates) {
		return ErrInvalidInstallmentPlan
	}

	sum := decimal.Zero
	for _, a := range amounts {
		if a.LessThanOrEqual(decimal.Zero) {
			return ErrInvalidInstallmentPlan
		}
		sum = sum.Add(a)
	}
	if !sum.Equal(e.TotalAmount) {
		return ErrInstallmentSumMismatch
	}

	installments := make([]InstallmentPayment, len(amounts))
	for i := range amounts {
		installments[i] = InstallmentPayment{
			ID:           uuid.New(),
			EnrollmentID: e.ID,
			Number:       i + 1,
			Amount:       amounts[i],
			PaidAmount:   decimal.Zero,
			DueDate:      dueDates[i],
			Status:       InstallmentStatusUnpaid,
			CreatedAt:    now,
			UpdatedAt:    now,
		}
	}

	e.Installments = installments
	return nil
}
