package service

import (
	"context"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"

	"coursehub-backend/internal/domains/enrollment/model"
	idemmodel "coursehub-backend/internal/domains/idempotency/model"
	"coursehub-backend/pkg/database"
)

// mockEnrollmentRepository keeps enrollments in memory by ID
type mockEnrollmentRepository struct {
	enrollments map[uuid.UUID]*model.CourseEnrollment

	SavedLedgers     int
	AuditEntries     []string
	OverdueMarked    int
	MarkOverdueErr   error
	InstallmentsSeen int
}

func newMockEnrollmentRepository() *mockEnrollmentRepository {
	return &mockEnrollmentRepository{enrollments: make(map[uuid.UUID]*model.CourseEnrollment)}
}

func (m *mockEnrollmentRepository) GetByID(_ context.Context, enrollmentID uuid.UUID) (*model.CourseEnrollment, error) {
	return m.enrollments[enrollmentID], nil
}

func (m *mockEnrollmentRepository) GetByStudentAndCourse(_ context.Context, studentID, courseID uuid.UUID) (*model.CourseEnrollment, error) {
	for _, e := range m.enrollments {
		if e.StudentID == studentID && e.CourseID == courseID {
			return e, nil
		}
	}
	return nil, nil
}

func (m *mockEnrollmentRepository) ExistsTx(ctx context.Context, _ pgx.Tx, studentID, courseID uuid.UUID) (bool, error) {
	e, _ := m.GetByStudentAndCourse(ctx, studentID, courseID)
	return e != nil, nil
}

func (m *mockEnrollmentRepository) GetByIDForUpdateTx(ctx context.Context, _ pgx.Tx, enrollmentID uuid.UUID) (*model.CourseEnrollment, error) {
	return m.GetByID(ctx, enrollmentID)
}

func (m *mockEnrollmentRepository) GetByStudentAndCourseForUpdateTx(ctx context.Context, _ pgx.Tx, studentID, courseID uuid.UUID) (*model.CourseEnrollment, error) {
	return m.GetByStudentAndCourse(ctx, studentID, courseID)
}

func (m *mockEnrollmentRepository) CreateTx(_ context.Context, _ pgx.Tx, enrollment *model.CourseEnrollment) error {
	for _, e := range m.enrollments {
		if e.StudentID == enrollment.StudentID && e.CourseID == enrollment.CourseID {
			return model.ErrEnrollmentExists
		}
	}
	m.enrollments[enrollment.ID] = enrollment
	return nil
}

func (m *mockEnrollmentRepository) SaveLedgerTx(_ context.Context, _ pgx.Tx, enrollment *model.CourseEnrollment) error {
	m.SavedLedgers++
	m.enrollments[enrollment.ID] = enrollment
	return nil
}

func (m *mockEnrollmentRepository) CreateInstallmentsTx(_ context.Context, _ pgx.Tx, installments []model.InstallmentPayment) error {
	m.InstallmentsSeen += len(installments)
	return nil
}

func (m *mockEnrollmentRepository) RecordPaymentAuditTx(_ context.Context, _ pgx.Tx, _ uuid.UUID, amount string, reference, method string) error {
	m.AuditEntries = append(m.AuditEntries, method+":"+amount+":"+reference)
	return nil
}

func (m *mockEnrollmentRepository) ListByStudent(_ context.Context, studentID uuid.UUID) ([]model.CourseEnrollment, error) {
	var out []model.CourseEnrollment
	for _, e := range m.enrollments {
		if e.StudentID == studentID {
			out = append(out, *e)
		}
	}
	return out, nil
}

func (m *mockEnrollmentRepository) MarkOverdueInstallments(_ context.Context) (int, error) {
	if m.MarkOverdueErr != nil {
		return 0, m.MarkOverdueErr
	}
	return m.OverdueMarked, nil
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
