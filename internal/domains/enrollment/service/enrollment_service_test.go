package service

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"coursehub-backend/internal/domains/enrollment/model"
	idemmodel "coursehub-backend/internal/domains/idempotency/model"
	idempotency "coursehub-backend/internal/domains/idempotency/service"
)

var testTime = time.Date(2026, 3, 1, 10, 0, 0, 0, time.UTC)

type enrollmentFixture struct {
	repo    *mockEnrollmentRepository
	service ServiceInterface
}

func newEnrollmentFixture() *enrollmentFixture {
	repo := newMockEnrollmentRepository()
	txRunner := &fakeTxRunner{}
	clock := func() time.Time { return testTime }
	idem := idempotency.NewServiceWithClock(newMockIdempotencyRepository(), txRunner, 24*time.Hour, clock)

	return &enrollmentFixture{
		repo:    repo,
		service: NewEnrollmentServiceWithClock(repo, idem, txRunner, clock),
	}
}

func (f *enrollmentFixture) seedEnrollment(total int64) *model.CourseEnrollment {
	e := model.NewEnrollment(uuid.New(), uuid.New(), uuid.New(), decimal.NewFromInt(total), testTime)
	f.repo.enrollments[e.ID] = e
	return e
}

func (f *enrollmentFixture) seedPlan(t *testing.T, e *model.CourseEnrollment, amounts ...int64) {
	t.Helper()
	decAmounts := make([]decimal.Decimal, len(amounts))
	dueDates := make([]time.Time, len(amounts))
	for i, a := range amounts {
		decAmounts[i] = decimal.NewFromInt(a)
		dueDates[i] = testTime.AddDate(0, i+1, 0)
	}
	require.NoError(t, e.BuildInstallmentPlan(decAmounts, dueDates, testTime))
}

// =====================================================
// GetEnrollment
// =====================================================

func TestGetEnrollment_OwnerReads(t *testing.T) {
	f := newEnrollmentFixture()
	e := f.seedEnrollment(300)

	resp, err := f.service.GetEnrollment(context.Background(), e.ID, e.StudentID, false)

	require.NoError(t, err)
	assert.Equal(t, e.ID, resp.ID)
	assert.True(t, resp.RemainingAmount.Equal(decimal.NewFromInt(300)))
	assert.True(t, resp.PaymentPercent.IsZero())
}

func TestGetEnrollment_OtherStudent_NotFound(t *testing.T) {
	f := newEnrollmentFixture()
	e := f.seedEnrollment(300)

	_, err := f.service.GetEnrollment(context.Background(), e.ID, uuid.New(), false)

	assert.ErrorIs(t, err, model.ErrEnrollmentNotFound)
}

func TestGetEnrollment_AdminReadsAny(t *testing.T) {
	f := newEnrollmentFixture()
	e := f.seedEnrollment(300)

	resp, err := f.service.GetEnrollment(context.Background(), e.ID, uuid.New(), true)

	require.NoError(t, err)
	assert.Equal(t, e.ID, resp.ID)
}

func TestGetEnrollment_Unknown(t *testing.T) {
	f := newEnrollmentFixture()

	_, err := f.service.GetEnrollment(context.Background(), uuid.New(), uuid.New(), true)

	assert.ErrorIs(t, err, model.ErrEnrollmentNotFound)
}

// =====================================================
// RecordPayment
// =====================================================

func TestRecordPayment_NoPlan(t *testing.T) {
	f := newEnrollmentFixture()
	e := f.seedEnrollment(300)
	adminID := uuid.New()

	resp, replayed, err := f.service.RecordPayment(context.Background(), uuid.NewString(), adminID, e.ID,
		model.RecordPaymentRequest{Amount: 120, Reference: "TRX-001", Method: "bank_transfer"})

	require.NoError(t, err)
	assert.False(t, replayed)
	assert.True(t, resp.PaidAmount.Equal(decimal.NewFromInt(120)))
	assert.True(t, resp.RemainingAmount.Equal(decimal.NewFromInt(180)))
	assert.Equal(t, model.PaymentStatusPartial, resp.PaymentStatus)
	assert.Equal(t, 1, f.repo.SavedLedgers)
	assert.Equal(t, []string{"bank_transfer:120:TRX-001"}, f.repo.AuditEntries)
}

func TestRecordPayment_CascadesThroughPlan(t *testing.T) {
	f := newEnrollmentFixture()
	e := f.seedEnrollment(300)
	f.seedPlan(t, e, 100, 100, 100)

	resp, _, err := f.service.RecordPayment(context.Background(), uuid.NewString(), uuid.New(), e.ID,
		model.RecordPaymentRequest{Amount: 150, Reference: "TRX-002", Method: "cash"})

	require.NoError(t, err)
	require.Len(t, resp.Allocations, 2)
	assert.True(t, resp.Allocations[0].Amount.Equal(decimal.NewFromInt(100)))
	assert.True(t, resp.Allocations[1].Amount.Equal(decimal.NewFromInt(50)))
	assert.Equal(t, model.InstallmentStatusPaid, e.Installments[0].Status)
	assert.Equal(t, model.InstallmentStatusPartial, e.Installments[1].Status)
}

func TestRecordPayment_Overflow(t *testing.T) {
	f := newEnrollmentFixture()
	e := f.seedEnrollment(100)

	_, _, err := f.service.RecordPayment(context.Background(), uuid.NewString(), uuid.New(), e.ID,
		model.RecordPaymentRequest{Amount: 101, Reference: "TRX-003", Method: "cash"})

	assert.ErrorIs(t, err, model.ErrPaymentExceedsBalance)
	assert.Equal(t, 0, f.repo.SavedLedgers)
}

func TestRecordPayment_SameKeyAppliesOnce(t *testing.T) {
	f := newEnrollmentFixture()
	e := f.seedEnrollment(300)
	adminID := uuid.New()
	key := uuid.NewString()
	req := model.RecordPaymentRequest{Amount: 100, Reference: "TRX-004", Method: "bank_transfer"}

	first, _, err := f.service.RecordPayment(context.Background(), key, adminID, e.ID, req)
	require.NoError(t, err)

	second, replayed, err := f.service.RecordPayment(context.Background(), key, adminID, e.ID, req)
	require.NoError(t, err)

	assert.True(t, replayed)
	assert.True(t, second.PaidAmount.Equal(first.PaidAmount))
	assert.True(t, e.PaidAmount.Equal(decimal.NewFromInt(100)), "retried payment must not double-apply")
	assert.Equal(t, 1, f.repo.SavedLedgers)
}

func TestRecordPayment_SameKeyDifferentAmount_Rejected(t *testing.T) {
	f := newEnrollmentFixture()
	e := f.seedEnrollment(300)
	adminID := uuid.New()
	key := uuid.NewString()

	_, _, err := f.service.RecordPayment(context.Background(), key, adminID, e.ID,
		model.RecordPaymentRequest{Amount: 100, Reference: "TRX-005", Method: "cash"})
	require.NoError(t, err)

	_, _, err = f.service.RecordPayment(context.Background(), key, adminID, e.ID,
		model.RecordPaymentRequest{Amount: 200, Reference: "TRX-005", Method: "cash"})

	var idemErr *idemmodel.IdempotencyError
	require.ErrorAs(t, err, &idemErr)
	assert.Equal(t, idemmodel.ErrCodeKeyReused, idemErr.Code)
}

func TestRecordPayment_MissingKey(t *testing.T) {
	f := newEnrollmentFixture()
	e := f.seedEnrollment(300)

	_, _, err := f.service.RecordPayment(context.Background(), "", uuid.New(), e.ID,
		model.RecordPaymentRequest{Amount: 100, Reference: "TRX-006", Method: "cash"})

	var idemErr *idemmodel.IdempotencyError
	require.ErrorAs(t, err, &idemErr)
	assert.Equal(t, idemmodel.ErrCodeMissingKey, idemErr.Code)
}

func TestRecordPayment_UnknownEnrollment(t *testing.T) {
	f := newEnrollmentFixture()

	_, _, err := f.service.RecordPayment(context.Background(), uuid.NewString(), uuid.New(), uuid.New(),
		model.RecordPaymentRequest{Amount: 100, Reference: "TRX-007", Method: "cash"})

	assert.ErrorIs(t, err, model.ErrEnrollmentNotFound)
}

// =====================================================
// CreateInstallmentPlan
// =====================================================

func TestCreateInstallmentPlan(t *testing.T) {
	f := newEnrollmentFixture()
	e := f.seedEnrollment(300)

	resp, err := f.service.CreateInstallmentPlan(context.Background(), e.ID, model.CreateInstallmentPlanRequest{
		Installments: []model.InstallmentInput{
			{Amount: 100, DueDate: testTime.AddDate(0, 1, 0)},
			{Amount: 100, DueDate: testTime.AddDate(0, 2, 0)},
			{Amount: 100, DueDate: testTime.AddDate(0, 3, 0)},
		},
	})

	require.NoError(t, err)
	assert.Len(t, resp.Installments, 3)
	assert.Equal(t, 3, f.repo.InstallmentsSeen)
}

func TestCreateInstallmentPlan_SumMismatch(t *testing.T) {
	f := newEnrollmentFixture()
	e := f.seedEnrollment(300)

	_, err := f.service.CreateInstallmentPlan(context.Background(), e.ID, model.CreateInstallmentPlanRequest{
		Installments: []model.InstallmentInput{
			{Amount: 100, DueDate: testTime.AddDate(0, 1, 0)},
		},
	})

	assert.ErrorIs(t, err, model.ErrInstallmentSumMismatch)
}

func TestCreateInstallmentPlan_AlreadyPlanned(t *testing.T) {
	f := newEnrollmentFixture()
	e := f.seedEnrollment(200)
	f.seedPlan(t, e, 100, 100)

	_, err := f.service.CreateInstallmentPlan(context.Background(), e.ID, model.CreateInstallmentPlanRequest{
		Installments: []model.InstallmentInput{
			{Amount: 200, DueDate: testTime.AddDate(0, 1, 0)},
		},
	})

	assert.ErrorIs(t, err, model.ErrPlanAlreadyExists)
}

// =====================================================
// MarkOverdueInstallments
// =====================================================

func TestMarkOverdueInstallments(t *testing.T) {
	f := newEnrollmentFixture()
	f.repo.OverdueMarked = 4

	count, err := f.service.MarkOverdueInstallments(context.Background())

	require.NoError(t, err)
	assert.Equal(t, 4, count)
}
