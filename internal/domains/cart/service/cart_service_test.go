package service

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"coursehub-backend/internal/domains/cart/model"
	coursemodel "coursehub-backend/internal/domains/course/model"
	enrollmentmodel "coursehub-backend/internal/domains/enrollment/model"
	idempotency "coursehub-backend/internal/domains/idempotency/service"
	"coursehub-backend/internal/shared/result"
)

var testTime = time.Date(2026, 3, 1, 10, 0, 0, 0, time.UTC)

type cartFixture struct {
	cartRepo       *mockCartRepository
	courseRepo     *mockCourseRepository
	enrollmentRepo *mockEnrollmentRepository
	orderRepo      *mockOrderRepository
	service        ServiceInterface
}

func newCartFixture() *cartFixture {
	cartRepo := newMockCartRepository()
	courseRepo := newMockCourseRepository()
	enrollmentRepo := newMockEnrollmentRepository()
	orderRepo := newMockOrderRepository()
	txRunner := &fakeTxRunner{}

	clock := func() time.Time { return testTime }
	validation := NewValidationService(courseRepo, enrollmentRepo)
	idem := idempotency.NewServiceWithClock(newMockIdempotencyRepository(), txRunner, 24*time.Hour, clock)

	svc := NewCartServiceWithClock(cartRepo, orderRepo, enrollmentRepo, validation, idem, txRunner, clock)

	return &cartFixture{
		cartRepo:       cartRepo,
		courseRepo:     courseRepo,
		enrollmentRepo: enrollmentRepo,
		orderRepo:      orderRepo,
		service:        svc,
	}
}

func (f *cartFixture) addCourse(price float64, active bool) *coursemodel.Course {
	course := &coursemodel.Course{
		ID:             uuid.New(),
		Title:          "Distributed Systems",
		InstructorName: "Jane Doe",
		Price:          decimal.NewFromFloat(price),
		IsActive:       active,
	}
	f.courseRepo.courses[course.ID] = course
	return course
}

// =====================================================
// GetCart
// =====================================================

func TestGetCart_NoCart_ReturnsEmptyView(t *testing.T) {
	f := newCartFixture()
	userID := uuid.New()

	res := f.service.GetCart(context.Background(), userID)

	require.True(t, res.IsOk())
	assert.Equal(t, uuid.Nil, res.Data.ID)
	assert.Empty(t, res.Data.Items)
}

func TestGetCart_ExpiredCart_ReadsAsEmpty(t *testing.T) {
	f := newCartFixture()
	userID := uuid.New()
	expired := model.RestoreCart(uuid.New(), userID,
		[]model.CartItem{model.NewCartItem(uuid.New(), uuid.New(), "Old", "X", decimal.NewFromInt(10), testTime)},
		testTime.Add(-48*time.Hour), testTime.Add(-24*time.Hour))
	f.cartRepo.carts[userID] = expired

	res := f.service.GetCart(context.Background(), userID)

	require.True(t, res.IsOk())
	assert.Empty(t, res.Data.Items)
}

// =====================================================
// AddCourse
// =====================================================

func TestAddCourse_CreatesCartAndSnapshotsPrice(t *testing.T) {
	f := newCartFixture()
	userID := uuid.New()
	course := f.addCourse(49.99, true)

	res := f.service.AddCourse(context.Background(), userID, course.ID)

	require.True(t, res.IsOk())
	require.Len(t, res.Data.Items, 1)
	assert.Equal(t, course.ID, res.Data.Items[0].CourseID)
	assert.Equal(t, course.Title, res.Data.Items[0].CourseTitle)

	// Snapshot survives a later catalog price change
	course.Price = decimal.NewFromInt(99)
	stored := f.cartRepo.carts[userID]
	require.Len(t, stored.Items, 1)
	assert.True(t, stored.Items[0].UnitPrice.Equal(decimal.NewFromFloat(49.99)))
}

func TestAddCourse_CourseNotFound(t *testing.T) {
	f := newCartFixture()

	res := f.service.AddCourse(context.Background(), uuid.New(), uuid.New())

	assert.Equal(t, result.StatusError, res.Status)
	assert.Equal(t, result.CodeCourseNotFound, res.Code)
}

func TestAddCourse_CourseInactive(t *testing.T) {
	f := newCartFixture()
	course := f.addCourse(49.99, false)

	res := f.service.AddCourse(context.Background(), uuid.New(), course.ID)

	assert.Equal(t, result.CodeCourseInactive, res.Code)
}

func TestAddCourse_AlreadyEnrolled(t *testing.T) {
	f := newCartFixture()
	userID := uuid.New()
	course := f.addCourse(49.99, true)
	f.enrollmentRepo.enrollments[enrollmentKey{userID, course.ID}] =
		enrollmentmodel.NewEnrollment(uuid.New(), userID, course.ID, course.Price, testTime)

	res := f.service.AddCourse(context.Background(), userID, course.ID)

	assert.Equal(t, result.CodeAlreadyEnrolled, res.Code)
}

func TestAddCourse_DuplicateLine(t *testing.T) {
	f := newCartFixture()
	userID := uuid.New()
	course := f.addCourse(49.99, true)

	require.True(t, f.service.AddCourse(context.Background(), userID, course.ID).IsOk())
	res := f.service.AddCourse(context.Background(), userID, course.ID)

	assert.Equal(t, result.CodeAlreadyInCart, res.Code)
}

func TestAddCourse_ExpiredCartReplaced(t *testing.T) {
	f := newCartFixture()
	userID := uuid.New()
	course := f.addCourse(49.99, true)

	staleID := uuid.New()
	f.cartRepo.carts[userID] = model.RestoreCart(staleID, userID, nil,
		testTime.Add(-48*time.Hour), testTime.Add(-24*time.Hour))

	res := f.service.AddCourse(context.Background(), userID, course.ID)

	require.True(t, res.IsOk())
	assert.Contains(t, f.cartRepo.DeletedCarts, staleID)

	fresh := f.cartRepo.carts[userID]
	require.NotNil(t, fresh)
	assert.NotEqual(t, staleID, fresh.ID)
	assert.Equal(t, testTime.Add(model.DefaultTTL), fresh.ExpiresAt)
}

// =====================================================
// RemoveCourse / ClearCart
// =====================================================

func TestRemoveCourse(t *testing.T) {
	f := newCartFixture()
	userID := uuid.New()
	course := f.addCourse(49.99, true)
	require.True(t, f.service.AddCourse(context.Background(), userID, course.ID).IsOk())

	res := f.service.RemoveCourse(context.Background(), userID, course.ID)

	require.True(t, res.IsOk())
	assert.Empty(t, res.Data.Items)
}

func TestRemoveCourse_NotInCart(t *testing.T) {
	f := newCartFixture()

	res := f.service.RemoveCourse(context.Background(), uuid.New(), uuid.New())

	assert.Equal(t, result.CodeNotInCart, res.Code)
}

func TestClearCart(t *testing.T) {
	f := newCartFixture()
	userID := uuid.New()
	course := f.addCourse(49.99, true)
	require.True(t, f.service.AddCourse(context.Background(), userID, course.ID).IsOk())

	res := f.service.ClearCart(context.Background(), userID)

	require.True(t, res.IsOk())
	assert.Empty(t, res.Data.Items)
}

// =====================================================
// Checkout
// =====================================================

func TestCheckout_ConvertsCartToOrderAndEnrollments(t *testing.T) {
	f := newCartFixture()
	userID := uuid.New()
	first := f.addCourse(100, true)
	second := f.addCourse(50, true)
	require.True(t, f.service.AddCourse(context.Background(), userID, first.ID).IsOk())
	require.True(t, f.service.AddCourse(context.Background(), userID, second.ID).IsOk())

	res := f.service.Checkout(context.Background(), userID, "checkout-key-1")

	require.True(t, res.IsOk())
	assert.False(t, res.Replayed)
	assert.True(t, res.Data.TotalAmount.Equal(decimal.NewFromInt(150)))
	assert.Len(t, res.Data.EnrollmentIDs, 2)
	assert.Empty(t, res.Warnings)

	// The order holds course snapshots
	order := f.orderRepo.orders[res.Data.OrderID]
	require.NotNil(t, order)
	assert.Len(t, order.Items, 2)

	// Enrollments start unpaid awaiting payment
	for _, e := range f.enrollmentRepo.Created {
		assert.Equal(t, enrollmentmodel.PaymentStatusUnpaid, e.PaymentStatus)
	}

	// The cart is consumed
	assert.Nil(t, f.cartRepo.carts[userID])
}

func TestCheckout_EmptyCart(t *testing.T) {
	f := newCartFixture()

	res := f.service.Checkout(context.Background(), uuid.New(), "checkout-key-1")

	assert.Equal(t, result.CodeCartEmpty, res.Code)
}

func TestCheckout_ExpiredCart(t *testing.T) {
	f := newCartFixture()
	userID := uuid.New()
	f.cartRepo.carts[userID] = model.RestoreCart(uuid.New(), userID,
		[]model.CartItem{model.NewCartItem(uuid.New(), uuid.New(), "Old", "X", decimal.NewFromInt(10), testTime)},
		testTime.Add(-48*time.Hour), testTime.Add(-24*time.Hour))

	res := f.service.Checkout(context.Background(), userID, "checkout-key-1")

	assert.Equal(t, result.CodeCartExpired, res.Code)
}

func TestCheckout_MissingIdempotencyKey(t *testing.T) {
	f := newCartFixture()
	userID := uuid.New()
	course := f.addCourse(100, true)
	require.True(t, f.service.AddCourse(context.Background(), userID, course.ID).IsOk())

	res := f.service.Checkout(context.Background(), userID, "")

	assert.Equal(t, result.CodeMissingKey, res.Code)
	assert.NotNil(t, f.cartRepo.carts[userID], "cart must survive a refused checkout")
}

func TestCheckout_CourseDeletedFromCatalog(t *testing.T) {
	f := newCartFixture()
	userID := uuid.New()
	course := f.addCourse(100, true)
	require.True(t, f.service.AddCourse(context.Background(), userID, course.ID).IsOk())
	delete(f.courseRepo.courses, course.ID)

	res := f.service.Checkout(context.Background(), userID, "checkout-key-1")

	assert.Equal(t, result.CodeCourseDeleted, res.Code)
}

func TestCheckout_PriceChangeIsWarningNotFailure(t *testing.T) {
	f := newCartFixture()
	userID := uuid.New()
	course := f.addCourse(100, true)
	require.True(t, f.service.AddCourse(context.Background(), userID, course.ID).IsOk())
	course.Price = decimal.NewFromInt(150)

	res := f.service.Checkout(context.Background(), userID, "checkout-key-1")

	require.True(t, res.IsOk())
	require.Len(t, res.Warnings, 1)
	assert.Equal(t, result.CodePriceChanged, res.Warnings[0].Code)

	// The snapshot price is what the student pays
	assert.True(t, res.Data.TotalAmount.Equal(decimal.NewFromInt(100)))
}

func TestCheckout_AlreadyEnrolledLineFailsWholeCheckout(t *testing.T) {
	f := newCartFixture()
	userID := uuid.New()
	course := f.addCourse(100, true)
	require.True(t, f.service.AddCourse(context.Background(), userID, course.ID).IsOk())

	// Enrollment races in after the cart was built
	f.enrollmentRepo.enrollments[enrollmentKey{userID, course.ID}] =
		enrollmentmodel.NewEnrollment(uuid.New(), userID, course.ID, course.Price, testTime)

	res := f.service.Checkout(context.Background(), userID, "checkout-key-1")

	assert.Equal(t, result.CodeAlreadyEnrolled, res.Code)
	assert.Empty(t, f.orderRepo.orders, "no order may be created when a line conflicts")
}

func TestCheckout_ReplayReturnsStoredOutcome(t *testing.T) {
	f := newCartFixture()
	userID := uuid.New()
	course := f.addCourse(100, true)
	require.True(t, f.service.AddCourse(context.Background(), userID, course.ID).IsOk())

	first := f.service.Checkout(context.Background(), userID, "checkout-key-1")
	require.True(t, first.IsOk())

	// The cart is gone, yet the same key replays the stored response
	second := f.service.Checkout(context.Background(), userID, "checkout-key-1")

	require.True(t, second.IsOk())
	assert.True(t, second.Replayed)
	assert.Equal(t, first.Data.OrderID, second.Data.OrderID)
	assert.Equal(t, first.Data.OrderNumber, second.Data.OrderNumber)
	assert.Len(t, f.orderRepo.orders, 1, "checkout must execute exactly once")
}

func TestCheckout_FreshKeyAfterCheckout_IsCartEmpty(t *testing.T) {
	f := newCartFixture()
	userID := uuid.New()
	course := f.addCourse(100, true)
	require.True(t, f.service.AddCourse(context.Background(), userID, course.ID).IsOk())

	require.True(t, f.service.Checkout(context.Background(), userID, "checkout-key-1").IsOk())
	res := f.service.Checkout(context.Background(), userID, "checkout-key-2")

	assert.Equal(t, result.CodeCartEmpty, res.Code)
}

// =====================================================
// CleanupExpired
// =====================================================

func TestCleanupExpired(t *testing.T) {
	f := newCartFixture()
	live := uuid.New()
	stale := uuid.New()
	f.cartRepo.carts[live] = model.RestoreCart(uuid.New(), live, nil, testTime, testTime.Add(time.Hour))
	f.cartRepo.carts[stale] = model.RestoreCart(uuid.New(), stale, nil,
		testTime.Add(-48*time.Hour), testTime.Add(-24*time.Hour))

	count, err := f.service.CleanupExpired(context.Background())

	require.NoError(t, err)
	assert.Equal(t, 1, count)
	assert.NotNil(t, f.cartRepo.carts[live])
	assert.Nil(t, f.cartRepo.carts[stale])
}
