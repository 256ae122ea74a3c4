package repository

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"coursehub-backend/internal/domains/order/model"
)

type postgresRepository struct {
	pool *pgxpool.Pool
}

func NewPostgresRepository(pool *pgxpool.Pool) RepositoryInterface {
	return &postgresRepository{pool: pool}
}

// CreateTx implements RepositoryInterface.CreateTx
func (r *postgresRepository) CreateTx(ctx context.Context, tx pgx.Tx, order *model.Order) error {
	if len(order.Items) == 0 {
		return model.ErrEmptyOrder
	}

	query := `
		INSERT INTO orders (id, user_id, order_number, total_amount, created_at)
		VALUES ($1, $2, $3, $4, $5)
	`
	_, err := tx.Exec(ctx, query, order.ID, order.UserID, order.OrderNumber, order.TotalAmount, order.CreatedAt)
	if err != nil {
		return fmt.Errorf("failed to create order: %w", err)
	}

	itemQuery := `
		INSERT INTO order_items (id, order_id, course_id, course_title, instructor_name, unit_price)
		VALUES ($1, $2, $3, $4, $5, $6)
	`
	for i := range order.Items {
		item := &order.Items[i]
		_, err := tx.Exec(ctx, itemQuery, item.ID, item.OrderID, item.CourseID, item.CourseTitle, item.InstructorName, item.UnitPrice)
		if err != nil {
			return fmt.Errorf("failed to create order item: %w", err)
		}
	}

	return nil
}

// GetByID implements RepositoryInterface.GetByID
func (r *postgresRepository) GetByID(ctx context.Context, orderID uuid.UUID) (*model.Order, error) {
	query := `SELECT id, user_id, order_number, total_amount, created_at FROM orders WHERE id = $1`

	var o model.Order
	err := r.pool.QueryRow(ctx, query, orderID).Scan(&o.ID, &o.UserID, &o.OrderNumber, &o.TotalAmount, &o.CreatedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to get order: %w", err)
	}

	if err := r.loadItems(ctx, []*model.Order{&o}); err != nil {
		return nil, err
	}

	return &o, nil
}

// ListByUser implements RepositoryInterface.ListByUser
func (r *postgresRepository) ListByUser(ctx context.Context, userID uuid.UUID) ([]model.Order, error) {
	query := `SELECT id, user_id, order_number, total_amount, created_at FROM orders WHERE user_id = $1 ORDER BY created_at DESC`

	rows, err := r.pool.Query(ctx, query, userID)
	if err != nil {
		return nil, fmt.Errorf("failed to list orders: %w", err)
	}
	defer rows.Close()

	var orders []model.Order
	for rows.Next() {
		var o model.Order
		if err := rows.Scan(&o.ID, &o.UserID, &o.OrderNumber, &o.TotalAmount, &o.CreatedAt); err != nil {
			return nil, fmt.Errorf("failed to scan order: %w", err)
		}
		orders = append(orders, o)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}

	refs := make([]*model.Order, len(orders))
	for i := range orders {
		refs[i] = &orders[i]
	}
	if err := r.loadItems(ctx, refs); err != nil {
		return nil, err
	}

	return orders, nil
}

func (r *postgresRepository) loadItems(ctx context.Context, orders []*model.Order) error {
	if len(orders) == 0 {
		return nil
	}

	ids := make([]uuid.UUID, len(orders))
	byID := make(map[uuid.UUID]*model.Order, len(orders))
	for i, o := range orders {
		ids[i] = o.ID
		byID[o.ID] = o
	}

	query := `
		SELECT id, order_id, course_id, course_title, instructor_name, unit_price
		FROM order_items
		WHERE order_id = ANY($1)
		ORDER BY course_title ASC
	`

	rows, err := r.pool.Query(ctx, query, ids)
	if err != nil {
		return fmt.Errorf("failed to load order items: %w", err)
	}
	defer rows.Close()

	for rows.Next() {
		var item model.OrderItem
		if err := rows.Scan(&item.ID, &item.OrderID, &item.CourseID, &item.CourseTitle, &item.InstructorName, &item.UnitPrice); err != nil {
			return fmt.Errorf("failed to scan order item: %w", err)
		}
		if o, ok := byID[item.OrderID]; ok {
			o.Items = append(o.Items, item)
		}
	}

	return rows.Err()
}
