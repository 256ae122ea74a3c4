package model

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"coursehub-backend/internal/shared/result"
)

// AddItemRequest adds one course to the caller's cart
type AddItemRequest struct {
	CourseID string `json:"course_id" binding:"required,uuid"`
}

// CartResponse is the external cart view
type CartResponse struct {
	ID          uuid.UUID          `json:"id"`
	UserID      uuid.UUID          `json:"user_id"`
	Items       []CartItemResponse `json:"items"`
	TotalAmount decimal.Decimal    `json:"total_amount"`
	CreatedAt   time.Time          `json:"created_at"`
	ExpiresAt   time.Time          `json:"expires_at"`
}

type CartItemResponse struct {
	ID             uuid.UUID       `json:"id"`
	CourseID       uuid.UUID       `json:"course_id"`
	CourseTitle    string          `json:"course_title"`
	InstructorName string          `json:"instructor_name"`
	UnitPrice      decimal.Decimal `json:"unit_price"`
	AddedAt        time.Time       `json:"added_at"`
}

func (c *Cart) ToResponse() *CartResponse {
	resp := &CartResponse{
		ID:          c.ID,
		UserID:      c.UserID,
		Items:       []CartItemResponse{},
		TotalAmount: c.TotalAmount(),
		CreatedAt:   c.CreatedAt,
		ExpiresAt:   c.ExpiresAt,
	}
	for i := range c.Items {
		item := &c.Items[i]
		resp.Items = append(resp.Items, CartItemResponse{
			ID:             item.ID,
			CourseID:       item.CourseID,
			CourseTitle:    item.CourseTitle,
			InstructorName: item.InstructorName,
			UnitPrice:      item.UnitPrice,
			AddedAt:        item.AddedAt,
		})
	}
	return resp
}

// CheckoutResponse is the stored (and replayable) outcome of a successful
// checkout. Warnings ride inside so a replay returns them unchanged.
type CheckoutResponse struct {
	OrderID       uuid.UUID        `json:"order_id"`
	OrderNumber   string           `json:"order_number"`
	TotalAmount   decimal.Decimal  `json:"total_amount"`
	EnrollmentIDs []uuid.UUID      `json:"enrollment_ids"`
	Warnings      []result.Warning `json:"warnings,omitempty"`
	CreatedAt     time.Time        `json:"created_at"`
}

// PriceChangeDetail describes one PRICE_CHANGED warning
type PriceChangeDetail struct {
	CourseID      uuid.UUID       `json:"course_id"`
	SnapshotPrice decimal.Decimal `json:"snapshot_price"`
	CurrentPrice  decimal.Decimal `json:"current_price"`
}
