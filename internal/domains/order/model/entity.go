package model

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// =====================================================
// ENTITY: Order
// =====================================================

// Order is the immutable record of a successful checkout. Line items carry
// the cart's price snapshots, not live catalog prices.
type Order struct {
	ID          uuid.UUID       `json:"id" db:"id"`
	UserID      uuid.UUID       `json:"user_id" db:"user_id"`
	OrderNumber string          `json:"order_number" db:"order_number"`
	TotalAmount decimal.Decimal `json:"total_amount" db:"total_amount"`

	Items []OrderItem `json:"items" db:"-"`

	CreatedAt time.Time `json:"created_at" db:"created_at"`
}

type OrderItem struct {
	ID      uuid.UUID `json:"id" db:"id"`
	OrderID uuid.UUID `json:"order_id" db:"order_id"`

	CourseID       uuid.UUID       `json:"course_id" db:"course_id"`
	CourseTitle    string          `json:"course_title" db:"course_title"`
	InstructorName string          `json:"instructor_name" db:"instructor_name"`
	UnitPrice      decimal.Decimal `json:"unit_price" db:"unit_price"`
}

// OrderLine is one checkout input line: the snapshot carried over from a
// cart item
type OrderLine struct {
	CourseID       uuid.UUID
	CourseTitle    string
	InstructorName string
	UnitPrice      decimal.Decimal
}

// NewOrder builds an order from snapshot lines. Total is the sum of unit
// prices, never re-resolved from the catalog.
func NewOrder(id, userID uuid.UUID, orderNumber string, lines []OrderLine, now time.Time) *Order {
	order := &Order{
		ID:          id,
		UserID:      userID,
		OrderNumber: orderNumber,
		TotalAmount: decimal.Zero,
		CreatedAt:   now,
	}

	for _, line := range lines {
		order.Items = append(order.Items, OrderItem{
			ID:             uuid.New(),
			OrderID:        id,
			CourseID:       line.CourseID,
			CourseTitle:    line.CourseTitle,
			InstructorName: line.InstructorName,
			UnitPrice:      line.UnitPrice,
		})
		order.TotalAmount = order.TotalAmount.Add(line.UnitPrice)
	}

	return order
}
