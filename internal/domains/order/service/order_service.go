package service

import (
	"context"
	"fmt"

	"github.com/google/uuid"

	"coursehub-backend/internal/domains/order/model"
	repo "coursehub-backend/internal/domains/order/repository"
)

type ServiceInterface interface {
	// GetOrder returns one order; users see only their own
	GetOrder(ctx context.Context, orderID, requesterID uuid.UUID, isAdmin bool) (*model.Order, error)

	// ListMyOrders returns the user's order history
	ListMyOrders(ctx context.Context, userID uuid.UUID) ([]model.Order, error)
}

type OrderService struct {
	repository repo.RepositoryInterface
}

func NewOrderService(r repo.RepositoryInterface) ServiceInterface {
	return &OrderService{repository: r}
}

func (s *OrderService) GetOrder(ctx context.Context, orderID, requesterID uuid.UUID, isAdmin bool) (*model.Order, error) {
	order, err := s.repository.GetByID(ctx, orderID)
	if err != nil {
		return nil, fmt.Errorf("failed to get order: %w", err)
	}
	if order == nil {
		return nil, model.ErrOrderNotFound
	}
	if !isAdmin && order.UserID != requesterID {
		return nil, model.ErrOrderNotFound
	}
	return order, nil
}

func (s *OrderService) ListMyOrders(ctx context.Context, userID uuid.UUID) ([]model.Order, error) {
	orders, err := s.repository.ListByUser(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("failed to list orders: %w", err)
	}
	return orders, nil
}
