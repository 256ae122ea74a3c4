package model

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// DefaultTTL is how long a cart lives after creation. Expiry is absolute:
// adding items does not extend it.
const DefaultTTL = 24 * time.Hour

// =====================================================
// ENTITY: Cart
// =====================================================

// Cart is the per-user staging area for course purchases. At most one cart
// per user; items carry price snapshots frozen at add time.
type Cart struct {
	ID        uuid.UUID  `json:"id" db:"id"`
	UserID    uuid.UUID  `json:"user_id" db:"user_id"`
	Items     []CartItem `json:"items" db:"-"`
	CreatedAt time.Time  `json:"created_at" db:"created_at"`
	ExpiresAt time.Time  `json:"expires_at" db:"expires_at"`
}

// CartItem snapshots the course at the moment it entered the cart.
// The snapshot fields never change after creation, whatever happens to the
// catalog row.
type CartItem struct {
	ID     uuid.UUID `json:"id" db:"id"`
	CartID uuid.UUID `json:"cart_id" db:"cart_id"`

	CourseID       uuid.UUID       `json:"course_id" db:"course_id"`
	CourseTitle    string          `json:"course_title" db:"course_title"`
	InstructorName string          `json:"instructor_name" db:"instructor_name"`
	UnitPrice      decimal.Decimal `json:"unit_price" db:"unit_price"`

	AddedAt time.Time `json:"added_at" db:"added_at"`
}

// NewCart creates an empty cart expiring DefaultTTL from now
func NewCart(userID uuid.UUID, now time.Time) *Cart {
	return &Cart{
		ID:        uuid.New(),
		UserID:    userID,
		CreatedAt: now,
		ExpiresAt: now.Add(DefaultTTL),
	}
}

// RestoreCart rebuilds a cart from stored state. All fields explicit so
// tests construct carts in any state without touching the clock.
func RestoreCart(id, userID uuid.UUID, items []CartItem, createdAt, expiresAt time.Time) *Cart {
	return &Cart{
		ID:        id,
		UserID:    userID,
		Items:     items,
		CreatedAt: createdAt,
		ExpiresAt: expiresAt,
	}
}

// NewCartItem snapshots a course into a cart line
func NewCartItem(cartID, courseID uuid.UUID, title, instructor string, price decimal.Decimal, now time.Time) CartItem {
	return CartItem{
		ID:             uuid.New(),
		CartID:         cartID,
		CourseID:       courseID,
		CourseTitle:    title,
		InstructorName: instructor,
		UnitPrice:      price,
		AddedAt:        now,
	}
}

// IsExpired reports whether the cart is past its TTL
func (c *Cart) IsExpired(now time.Time) bool {
	return now.After(c.ExpiresAt)
}

// IsEmpty reports whether the cart has no items
func (c *Cart) IsEmpty() bool {
	return len(c.Items) == 0
}

// ContainsCourse reports whether the course already has a line in the cart
func (c *Cart) ContainsCourse(courseID uuid.UUID) bool {
	for i := range c.Items {
		if c.Items[i].CourseID == courseID {
			return true
		}
	}
	return false
}

// AddCourse appends a snapshot line. A course may appear at most once.
func (c *Cart) AddCourse(item CartItem) error {
	if c.ContainsCourse(item.CourseID) {
		return ErrAlreadyInCart
	}
	c.Items = append(c.Items, item)
	return nil
}

// RemoveCourse drops the line for the course
func (c *Cart) RemoveCourse(courseID uuid.UUID) error {
	for i := range c.Items {
		if c.Items[i].CourseID == courseID {
			c.Items = append(c.Items[:i], c.Items[i+1:]...)
			return nil
		}
	}
	return ErrNotInCart
}

// Clear removes every line
func (c *Cart) Clear() {
	c.Items = nil
}

// TotalAmount sums the snapshot prices, not live catalog prices
func (c *Cart) TotalAmount() decimal.Decimal {
	total := decimal.Zero
	for i := range c.Items {
		total = total.Add(c.Items[i].UnitPrice)
	}
	return total
}
