package repository

import (
	"context"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"

	"coursehub-backend/internal/domains/order/model"
)

type RepositoryInterface interface {
	// CreateTx inserts the order with its items in the caller's transaction
	// (checkout commits order, enrollments and cart deletion together)
	CreateTx(ctx context.Context, tx pgx.Tx, order *model.Order) error

	// GetByID retrieves an order with its items
	// Returns: nil if not exists (don't treat as error)
	GetByID(ctx context.Context, orderID uuid.UUID) (*model.Order, error)

	// ListByUser returns the user's orders, newest first, items included
	ListByUser(ctx context.Context, userID uuid.UUID) ([]model.Order, error)
}
