package repository

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"

	"coursehub-backend/internal/domains/cart/model"
)

const uniqueViolation = "23505"

type postgresRepository struct {
	pool *pgxpool.Pool
}

func NewPostgresRepository(pool *pgxpool.Pool) RepositoryInterface {
	return &postgresRepository{pool: pool}
}

type queryer interface {
	Query(ctx context.Context, sql string, args ...any) (pgx.Rows, error)
}

const cartColumns = `id, user_id, created_at, expires_at`

// GetByUserID implements RepositoryInterface.GetByUserID
func (r *postgresRepository) GetByUserID(ctx context.Context, userID uuid.UUID) (*model.Cart, error) {
	query := `SELECT ` + cartColumns + ` FROM carts WHERE user_id = $1`

	var c model.Cart
	err := r.pool.QueryRow(ctx, query, userID).Scan(&c.ID, &c.UserID, &c.CreatedAt, &c.ExpiresAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to get cart: %w", err)
	}

	if err := r.loadItems(ctx, r.pool, &c); err != nil {
		return nil, err
	}
	return &c, nil
}

// GetByUserIDForUpdateTx implements RepositoryInterface.GetByUserIDForUpdateTx
func (r *postgresRepository) GetByUserIDForUpdateTx(ctx context.Context, tx pgx.Tx, userID uuid.UUID) (*model.Cart, error) {
	query := `SELECT ` + cartColumns + ` FROM carts WHERE user_id = $1 FOR UPDATE`

	var c model.Cart
	err := tx.QueryRow(ctx, query, userID).Scan(&c.ID, &c.UserID, &c.CreatedAt, &c.ExpiresAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to lock cart: %w", err)
	}

	if err := r.loadItems(ctx, tx, &c); err != nil {
		return nil, err
	}
	return &c, nil
}

func (r *postgresRepository) loadItems(ctx context.Context, q queryer, cart *model.Cart) error {
	query := `
		SELECT id, cart_id, course_id, course_title, instructor_name, unit_price, added_at
		FROM cart_items
		WHERE cart_id = $1
		ORDER BY added_at ASC
	`

	rows, err := q.Query(ctx, query, cart.ID)
	if err != nil {
		return fmt.Errorf("failed to load cart items: %w", err)
	}
	defer rows.Close()

	for rows.Next() {
		var item model.CartItem
		err := rows.Scan(&item.ID, &item.CartID, &item.CourseID, &item.CourseTitle, &item.InstructorName, &item.UnitPrice, &item.AddedAt)
		if err != nil {
			return fmt.Errorf("failed to scan cart item: %w", err)
		}
		cart.Items = append(cart.Items, item)
	}
	return rows.Err()
}

// CreateTx implements RepositoryInterface.CreateTx
func (r *postgresRepository) CreateTx(ctx context.Context, tx pgx.Tx, cart *model.Cart) error {
	query := `INSERT INTO carts (id, user_id, created_at, expires_at) VALUES ($1, $2, $3, $4)`

	_, err := tx.Exec(ctx, query, cart.ID, cart.UserID, cart.CreatedAt, cart.ExpiresAt)
	if err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == uniqueViolation {
			return model.ErrDuplicateCart
		}
		return fmt.Errorf("failed to create cart: %w", err)
	}
	return nil
}

// AddItemTx implements RepositoryInterface.AddItemTx
func (r *postgresRepository) AddItemTx(ctx context.Context, tx pgx.Tx, item *model.CartItem) error {
	query := `
		INSERT INTO cart_items (id, cart_id, course_id, course_title, instructor_name, unit_price, added_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7)
	`

	_, err := tx.Exec(ctx, query, item.ID, item.CartID, item.CourseID, item.CourseTitle, item.InstructorName, item.UnitPrice, item.AddedAt)
	if err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == uniqueViolation {
			return model.ErrAlreadyInCart
		}
		return fmt.Errorf("failed to add cart item: %w", err)
	}
	return nil
}

// RemoveItemTx implements RepositoryInterface.RemoveItemTx
func (r *postgresRepository) RemoveItemTx(ctx context.Context, tx pgx.Tx, cartID, courseID uuid.UUID) error {
	query := `DELETE FROM cart_items WHERE cart_id = $1 AND course_id = $2`

	tag, err := tx.Exec(ctx, query, cartID, courseID)
	if err != nil {
		return fmt.Errorf("failed to remove cart item: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return model.ErrNotInCart
	}
	return nil
}

// ClearItemsTx implements RepositoryInterface.ClearItemsTx
func (r *postgresRepository) ClearItemsTx(ctx context.Context, tx pgx.Tx, cartID uuid.UUID) error {
	if _, err := tx.Exec(ctx, `DELETE FROM cart_items WHERE cart_id = $1`, cartID); err != nil {
		return fmt.Errorf("failed to clear cart items: %w", err)
	}
	return nil
}

// DeleteTx implements RepositoryInterface.DeleteTx
func (r *postgresRepository) DeleteTx(ctx context.Context, tx pgx.Tx, cartID uuid.UUID) error {
	if _, err := tx.Exec(ctx, `DELETE FROM cart_items WHERE cart_id = $1`, cartID); err != nil {
		return fmt.Errorf("failed to delete cart items: %w", err)
	}
	if _, err := tx.Exec(ctx, `DELETE FROM carts WHERE id = $1`, cartID); err != nil {
		return fmt.Errorf("failed to delete cart: %w", err)
	}
	return nil
}

// DeleteExpired implements RepositoryInterface.DeleteExpired
func (r *postgresRepository) DeleteExpired(ctx context.Context, now time.Time) (int, error) {
	itemQuery := `
		DELETE FROM cart_items
		WHERE cart_id IN (SELECT id FROM carts WHERE expires_at < $1)
	`
	if _, err := r.pool.Exec(ctx, itemQuery, now); err != nil {
		return 0, fmt.Errorf("failed to delete expired cart items: %w", err)
	}

	tag, err := r.pool.Exec(ctx, `DELETE FROM carts WHERE expires_at < $1`, now)
	if err != nil {
		return 0, fmt.Errorf("failed to delete expired carts: %w", err)
	}
	return int(tag.RowsAffected()), nil
}
