package service

import (
	"context"

	"github.com/google/uuid"

	"coursehub-backend/internal/domains/cart/model"
	"coursehub-backend/internal/shared/result"
)

type ServiceInterface interface {
	// GetCart returns the user's cart, or an empty view when none exists
	GetCart(ctx context.Context, userID uuid.UUID) result.Result[*model.CartResponse]

	// AddCourse validates and adds a course to the cart, snapshotting the
	// current catalog price. The cart is created lazily on first add; an
	// expired cart is replaced by a fresh one.
	AddCourse(ctx context.Context, userID, courseID uuid.UUID) result.Result[*model.CartResponse]

	// RemoveCourse drops the course's line from the cart
	RemoveCourse(ctx context.Context, userID, courseID uuid.UUID) result.Result[*model.CartResponse]

	// ClearCart removes every line
	ClearCart(ctx context.Context, userID uuid.UUID) result.Result[*model.CartResponse]

	// Checkout converts the cart into an order plus unpaid enrollments,
	// atomically, exactly once per Idempotency-Key. PRICE_CHANGED surfaces
	// as a warning; the snapshot price is still charged.
	Checkout(ctx context.Context, userID uuid.UUID, idempotencyKey string) result.Result[*model.CheckoutResponse]

	// CleanupExpired deletes carts past their TTL (background sweep)
	CleanupExpired(ctx context.Context) (int, error)
}
