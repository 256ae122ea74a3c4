package model

import "errors"

var (
	ErrEnrollmentNotFound     = errors.New("enrollment not found")
	ErrEnrollmentExists       = errors.New("student is already enrolled in this course")
	ErrInvalidPaymentAmount   = errors.New("payment amount must be > 0")
	ErrPaymentExceedsBalance  = errors.New("payment exceeds remaining balance")
	ErrPlanAlreadyExists      = errors.New("enrollment already has an installment plan")
	ErrInvalidInstallmentPlan = errors.New("installment plan amounts and due dates are invalid")
	ErrInstallmentSumMismatch = errors.New("installment amounts do not sum to enrollment total")
	ErrOverpaymentDetected    = errors.New("paid amount exceeds total amount")
)
