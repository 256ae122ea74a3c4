package repository

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"

	"coursehub-backend/internal/domains/cart/model"
)

// RepositoryInterface defines cart persistence. One cart per user
// (unique constraint on user_id) and one line per course within a cart
// (unique constraint on cart_id + course_id); the storage layer backs up
// the aggregate's in-memory checks under concurrency.
type RepositoryInterface interface {
	// GetByUserID retrieves the user's cart with items
	// Returns: nil if not exists (don't treat as error)
	GetByUserID(ctx context.Context, userID uuid.UUID) (*model.Cart, error)

	// GetByUserIDForUpdateTx loads the cart row-locked inside the caller's
	// transaction so concurrent checkouts and mutations serialize
	GetByUserIDForUpdateTx(ctx context.Context, tx pgx.Tx, userID uuid.UUID) (*model.Cart, error)

	// CreateTx inserts an empty cart. Returns model.ErrDuplicateCart on the
	// user_id unique constraint (a concurrent request created it first).
	CreateTx(ctx context.Context, tx pgx.Tx, cart *model.Cart) error

	// AddItemTx inserts one line in the caller's transaction.
	// Returns model.ErrAlreadyInCart on the (cart, course) unique constraint.
	AddItemTx(ctx context.Context, tx pgx.Tx, item *model.CartItem) error

	// RemoveItemTx deletes the line for the course.
	// Returns model.ErrNotInCart when no row matched.
	RemoveItemTx(ctx context.Context, tx pgx.Tx, cartID, courseID uuid.UUID) error

	// ClearItemsTx deletes all lines
	ClearItemsTx(ctx context.Context, tx pgx.Tx, cartID uuid.UUID) error

	// DeleteTx removes the cart and its items (successful checkout)
	DeleteTx(ctx context.Context, tx pgx.Tx, cartID uuid.UUID) error

	// DeleteExpired removes carts past their expiry (background sweep)
	// Returns: number of carts deleted
	DeleteExpired(ctx context.Context, now time.Time) (int, error)
}
