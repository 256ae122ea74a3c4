package service

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"

	"coursehub-backend/internal/domains/cart/model"
	coursemodel "coursehub-backend/internal/domains/course/model"
	enrollmentmodel "coursehub-backend/internal/domains/enrollment/model"
	idemmodel "coursehub-backend/internal/domains/idempotency/model"
	ordermodel "coursehub-backend/internal/domains/order/model"
	"coursehub-backend/pkg/database"
)

// =====================================================
// Cart repository mock
// =====================================================

type mockCartRepository struct {
	carts map[uuid.UUID]*model.Cart // keyed by user ID

	GetErr       error
	AddItemErr   error
	DeleteCalls  int
	DeletedCarts []uuid.UUID
}

func newMockCartRepository() *mockCartRepository {
	return &mockCartRepository{carts: make(map[uuid.UUID]*model.Cart)}
}

func (m *mockCartRepository) GetByUserID(_ context.Context, userID uuid.UUID) (*model.Cart, error) {
	if m.GetErr != nil {
		return nil, m.GetErr
	}
	return m.carts[userID], nil
}

func (m *mockCartRepository) GetByUserIDForUpdateTx(_ context.Context, _ pgx.Tx, userID uuid.UUID) (*model.Cart, error) {
	if m.GetErr != nil {
		return nil, m.GetErr
	}
	return m.carts[userID], nil
}

func (m *mockCartRepository) CreateTx(_ context.Context, _ pgx.Tx, cart *model.Cart) error {
	if _, exists := m.carts[cart.UserID]; exists {
		return model.ErrDuplicateCart
	}
	m.carts[cart.UserID] = cart
	return nil
}

func (m *mockCartRepository) AddItemTx(_ context.Context, _ pgx.Tx, item *model.CartItem) error {
	if m.AddItemErr != nil {
		return m.AddItemErr
	}
	for _, cart := range m.carts {
		if cart.ID == item.CartID && cart.ContainsCourse(item.CourseID) {
			return model.ErrAlreadyInCart
		}
	}
	return nil
}

func (m *mockCartRepository) RemoveItemTx(_ context.Context, _ pgx.Tx, cartID, courseID uuid.UUID) error {
	for _, cart := range m.carts {
		if cart.ID == cartID && cart.ContainsCourse(courseID) {
			return nil
		}
	}
	return model.ErrNotInCart
}

func (m *mockCartRepository) ClearItemsTx(_ context.Context, _ pgx.Tx, _ uuid.UUID) error {
	return nil
}

func (m *mockCartRepository) DeleteTx(_ context.Context, _ pgx.Tx, cartID uuid.UUID) error {
	m.DeleteCalls++
	m.DeletedCarts = append(m.DeletedCarts, cartID)
	for userID, cart := range m.carts {
		if cart.ID == cartID {
			delete(m.carts, userID)
			return nil
		}
	}
	return nil
}

func (m *mockCartRepository) DeleteExpired(_ context.Context, now time.Time) (int, error) {
	count := 0
	for userID, cart := range m.carts {
		if cart.IsExpired(now) {
			delete(m.carts, userID)
			count++
		}
	}
	return count, nil
}

// =====================================================
// Course repository mock
// =====================================================

type mockCourseRepository struct {
	courses map[uuid.UUID]*coursemodel.Course
	GetErr  error
}

func newMockCourseRepository() *mockCourseRepository {
	return &mockCourseRepository{courses: make(map[uuid.UUID]*coursemodel.Course)}
}

func (m *mockCourseRepository) GetByID(_ context.Context, courseID uuid.UUID) (*coursemodel.Course, error) {
	if m.GetErr != nil {
		return nil, m.GetErr
	}
	return m.courses[courseID], nil
}

func (m *mockCourseRepository) GetByIDTx(_ context.Context, _ pgx.Tx, courseID uuid.UUID) (*coursemodel.Course, error) {
	if m.GetErr != nil {
		return nil, m.GetErr
	}
	return m.courses[courseID], nil
}

func (m *mockCourseRepository) List(_ context.Context, _, _ int) ([]coursemodel.Course, int, error) {
	return nil, 0, nil
}

func (m *mockCourseRepository) Create(_ context.Context, course *coursemodel.Course) error {
	m.courses[course.ID] = course
	return nil
}

func (m *mockCourseRepository) Update(_ context.Context, course *coursemodel.Course) error {
	m.courses[course.ID] = course
	return nil
}

func (m *mockCourseRepository) Delete(_ context.Context, courseID uuid.UUID) error {
	delete(m.courses, courseID)
	return nil
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

	ExistsErr error
	CreateErr error
	Created   []*enrollmentmodel.CourseEnrollment
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
	if m.ExistsErr != nil {
		return false, m.ExistsErr
	}
	_, exists := m.enrollments[enrollmentKey{studentID, courseID}]
	return exists, nil
}

func (m *mockEnrollmentRepository) GetByIDForUpdateTx(ctx context.Context, tx pgx.Tx, enrollmentID uuid.UUID) (*enrollmentmodel.CourseEnrollment, error) {
	return m.GetByID(ctx, enrollmentID)
}

func (m *mockEnrollmentRepository) GetByStudentAndCourseForUpdateTx(ctx context.Context, _ pgx.Tx, studentID, courseID uuid.UUID) (*enrollmentmodel.CourseEnrollment, error) {
	return m.GetByStudentAndCourse(ctx, studentID, courseID)
}

func (m *mockEnrollmentRepository) CreateTx(_ context.Context, _ pgx.Tx, enrollment *enrollmentmodel.CourseEnrollment) error {
	if m.CreateErr != nil {
		return m.CreateErr
	}
	key := enrollmentKey{enrollment.StudentID, enrollment.CourseID}
	if _, exists := m.enrollments[key]; exists {
		return enrollmentmodel.ErrEnrollmentExists
	}
	m.enrollments[key] = enrollment
	m.Created = append(m.Created, enrollment)
	return nil
}

func (m *mockEnrollmentRepository) SaveLedgerTx(_ context.Context, _ pgx.Tx, _ *enrollmentmodel.CourseEnrollment) error {
	return nil
}

func (m *mockEnrollmentRepository) CreateInstallmentsTx(_ context.Context, _ pgx.Tx, _ []enrollmentmodel.InstallmentPayment) error {
	return nil
}

func (m *mockEnrollmentRepository) RecordPaymentAuditTx(_ context.Context, _ pgx.Tx, _ uuid.UUID, _ string, _, _ string) error {
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
// Order repository mock
// =====================================================

type mockOrderRepository struct {
	orders    map[uuid.UUID]*ordermodel.Order
	CreateErr error
}

func newMockOrderRepository() *mockOrderRepository {
	return &mockOrderRepository{orders: make(map[uuid.UUID]*ordermodel.Order)}
}

func (m *mockOrderRepository) CreateTx(_ context.Context, _ pgx.Tx, order *ordermodel.Order) error {
	if m.CreateErr != nil {
		return m.CreateErr
	}
	m.orders[order.ID] = order
	return nil
}

func (m *mockOrderRepository) GetByID(_ context.Context, orderID uuid.UUID) (*ordermodel.Order, error) {
	return m.orders[orderID], nil
}

func (m *mockOrderRepository) ListByUser(_ context.Context, userID uuid.UUID) ([]ordermodel.Order, error) {
	var out []ordermodel.Order
	for _, o := range m.orders {
		if o.UserID == userID {
			out = append(out, *o)
		}
	}
	return out, nil
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

// fakeTxRunner executes the function with a nil transaction; the mocks
// never dereference it
type fakeTxRunner struct {
	Err error
}

func (f *fakeTxRunner) RunInTx(_ context.Context, fn database.TxFunc) error {
	if f.Err != nil {
		return f.Err
	}
	return fn(nil)
}
