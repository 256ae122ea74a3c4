package service

import (
	"context"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"

	enrollmentmodel "coursehub-backend/internal/domains/enrollment/model"
	idemmodel "coursehub-backend/internal/domains/idempotency/model"
	"coursehub-backend/internal/domains/payment/model"
	"coursehub-backend/pkg/database"
)

// =====================================================
// Payment repository mock
// =====================================================

type mockPaymentRepository struct {
	attempts map[uuid.UUID]*model.PaymentAttempt

	UpdateErr   error
	UpdateCalls int

	// HideInFlight makes GetInFlightByStudentAndCourse return nothing,
	// like a pool read racing an uncommitted insert in another transaction.
	// CreateTx still enforces the unique index.
	HideInFlight bool
}

func newMockPaymentRepository() *mockPaymentRepository {
	return &mockPaymentRepository{attempts: make(map[uuid.UUID]*model.PaymentAttempt)}
}

func (m *mockPaymentRepository) GetByID(_ context.Context, attemptID uuid.UUID) (*model.PaymentAttempt, error) {
	attempt, ok := m.attempts[attemptID]
	if !ok {
		return nil, nil
	}
	copied := *attempt
	return &copied, nil
}

func (m *mockPaymentRepository) GetByIDForUpdateTx(ctx context.Context, _ pgx.Tx, attemptID uuid.UUID) (*model.PaymentAttempt, error) {
	return m.GetByID(ctx, attemptID)
}

func (m *mockPaymentRepository) GetInFlightByStudentAndCourse(_ context.Context, studentID, courseID uuid.UUID) (*model.PaymentAttempt, error) {
	if m.HideInFlight {
		return nil, nil
	}
	for _, a := range m.attempts {
		if a.StudentID == studentID && a.CourseID == courseID && a.IsInFlight() {
			copied := *a
			return &copied, nil
		}
	}
	return nil, nil
}

// CreateTx mirrors the partial unique index on (student_id, course_id) over
// open attempts.
func (m *mockPaymentRepository) CreateTx(_ context.Context, _ pgx.Tx, attempt *model.PaymentAttempt) error {
	for _, a := range m.attempts {
		if a.StudentID == attempt.StudentID && a.CourseID == attempt.CourseID && a.IsInFlight() {
			return model.ErrAttemptInFlight
		}
	}
	copied := *attempt
	m.attempts[attempt.ID] = &copied
	return nil
}

func (m *mockPaymentRepository) UpdateVersionedTx(_ context.Context, _ pgx.Tx, attempt *model.PaymentAttempt, expectedVersion int) error {
	m.UpdateCalls++
	if m.UpdateErr != nil {
		return m.UpdateErr
	}
	stored, ok := m.attempts[attempt.ID]
	if !ok || stored.Version != expectedVersion {
		return model.ErrStaleVersion
	}
	copied := *attempt
	m.attempts[attempt.ID] = &copied
	return nil
}

func (m *mockPaymentRepository) ListByStudent(_ context.Context, studentID uuid.UUID) ([]model.PaymentAttempt, error) {
	var out []model.PaymentAttempt
	for _, a := range m.attempts {
		if a.StudentID == studentID {
			out = append(out, *a)
		}
	}
	return out, nil
}

func (m *mockPaymentRepository) ListPendingReview(_ context.Context, _, _ int) ([]model.PaymentAttempt, int, error) {
	var out []model.PaymentAttempt
	for _, a := range m.attempts {
		if a.Status == model.StatusAwaitingApproval {
			out = append(out, *a)
		}
	}
	return out, len(out), nil
}

// =====================================================
// Enrollment repository mock
// =====================================================

type enrollmentKey struct {
	studentID uuid.UUID
	courseID  uuid.UUID
}

type mockEnrollmentRepository struct {
	enrollments map[enrollmentKey]*enrollmentmodel.CourseEnrollment

	SavedLedgers int
	AuditEntries []string
}

func newMockEnrollmentRepository() *mockEnrollmentRepository {
	return &mockEnrollmentRepository{enrollments: make(map[enrollmentKey]*enrollmentmodel.CourseEnrollment)}
}

func (m *mockEnrollmentRepository) GetByID(_ context.Context, enrollmentID uuid.UUID) (*enrollmentmodel.CourseEnrollment, error) {
	for _, e := range m.enrollments {
		if e.ID == enrollmentID {
			return e, nil
		}
	}
	return nil, nil
}

func (m *mockEnrollmentRepository) GetByStudentAndCourse(_ context.Context, studentID, courseID uuid.UUID) (*enrollmentmodel.CourseEnrollment, error) {
	return m.enrollments[enrollmentKey{studentID, courseID}], nil
}

func (m *mockEnrollmentRepository) ExistsTx(_ context.Context, _ pgx.Tx, studentID, courseID uuid.UUID) (bool, error) {
	_, ok := m.enrollments[enrollmentKey{studentID, courseID}]
	return ok, nil
}

func (m *mockEnrollmentRepository) GetByIDForUpdateTx(ctx context.Context, _ pgx.Tx, enrollmentID uuid.UUID) (*enrollmentmodel.CourseEnrollment, error) {
	return m.GetByID(ctx, enrollmentID)
}

func (m *mockEnrollmentRepository) GetByStudentAndCourseForUpdateTx(ctx context.Context, _ pgx.Tx, studentID, courseID uuid.UUID) (*enrollmentmodel.CourseEnrollment, error) {
	return m.GetByStudentAndCourse(ctx, studentID, courseID)
}

func (m *mockEnrollmentRepository) CreateTx(_ context.Context, _ pgx.Tx, enrollment *enrollmentmodel.CourseEnrollment) error {
	key := enrollmentKey{enrollment.StudentID, enrollment.CourseID}
	if _, exists := m.enrollments[key]; exists {
		return enrollmentmodel.ErrEnrollmentExists
	}
	m.enrollments[key] = enrollment
	return nil
}

func (m *mockEnrollmentRepository) SaveLedgerTx(_ context.Context, _ pgx.Tx, enrollment *enrollmentmodel.CourseEnrollment) error {
	m.SavedLedgers++
	m.enrollments[enrollmentKey{enrollment.StudentID, enrollment.CourseID}] = enrollment
	return nil
}

func (m *mockEnrollmentRepository) CreateInstallmentsTx(_ context.Context, _ pgx.Tx, _ []enrollmentmodel.InstallmentPayment) error {
	return nil
}

func (m *mockEnrollmentRepository) RecordPaymentAuditTx(_ context.Context, _ pgx.Tx, _ uuid.UUID, amount string, _, method string) error {
	m.AuditEntries = append(m.AuditEntries, method+":"+amount)
	return nil
}

func (m *mockEnrollmentRepository) ListByStudent(_ context.Context, studentID uuid.UUID) ([]enrollmentmodel.CourseEnrollment, error) {
	var out []enrollmentmodel.CourseEnrollment
	for key, e := range m.enrollments {
		if key.studentID == studentID {
			out = append(out, *e)
		}
	}
	return out, nil
}

func (m *mockEnrollmentRepository) MarkOverdueInstallments(_ context.Context) (int, error) {
	return 0, nil
}

// =====================================================
// Idempotency repository mock (backs a real idempotency.Service)
// =====================================================

type mockIdempotencyRepository struct {
	records map[string]*idemmodel.IdempotencyRecord
}

func newMockIdempotencyRepository() *mockIdempotencyRepository {
	return &mockIdempotencyRepository{records: make(map[string]*idemmodel.IdempotencyRecord)}
}

func idemKey(key string, userID uuid.UUID, operationType string) string {
	return key + "|" + userID.String() + "|" + operationType
}

func (m *mockIdempotencyRepository) GetByKey(_ context.Context, key string, userID uuid.UUID, operationType string) (*idemmodel.IdempotencyRecord, error) {
	return m.records[idemKey(key, userID, operationType)], nil
}

func (m *mockIdempotencyRepository) Create(_ context.Context, record *idemmodel.IdempotencyRecord) error {
	k := idemKey(record.Key, record.UserID, record.OperationType)
	if _, exists := m.records[k]; exists {
		return idemmodel.ErrDuplicateRecord
	}
	m.records[k] = record
	return nil
}

func (m *mockIdempotencyRepository) MarkCompletedTx(_ context.Context, _ pgx.Tx, recordID uuid.UUID, responsePayload []byte) error {
	for _, r := range m.records {
		if r.ID == recordID {
			r.Status = idemmodel.StatusCompleted
			r.ResponsePayload = responsePayload
			return nil
		}
	}
	return idemmodel.ErrRecordNotFound
}

func (m *mockIdempotencyRepository) MarkFailed(_ context.Context, recordID uuid.UUID, errorMessage string) error {
	for _, r := range m.records {
		if r.ID == recordID {
			r.Status = idemmodel.StatusFailed
			r.ErrorMessage = &errorMessage
			return nil
		}
	}
	return idemmodel.ErrRecordNotFound
}

func (m *mockIdempotencyRepository) Delete(_ context.Context, recordID uuid.UUID) error {
	for k, r := range m.records {
		if r.ID == recordID {
			delete(m.records, k)
			return nil
		}
	}
	return nil
}

func (m *mockIdempotencyRepository) CleanupExpired(_ context.Context) (int, error) {
	return 0, nil
}

// =====================================================
// Transaction runner fake
// =====================================================

type fakeTxRunner struct {
	Err error
}

func (f *fakeTxRunner) RunInTx(_ context.Context, fn database.TxFunc) error {
	if f.Err != nil {
		return f.Err
	}
	return fn(nil)
}
