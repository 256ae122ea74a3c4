package model

import (
	"time"

	validation "github.com/go-ozzo/ozzo-validation/v4"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// =====================================================
// ENTITY: Course
// =====================================================
type Course struct {
	ID             uuid.UUID       `json:"id" db:"id"`
	Title          string          `json:"title" db:"title"`
	Slug           string          `json:"slug" db:"slug"`
	Description    *string         `json:"description,omitempty" db:"description"`
	Price          decimal.Decimal `json:"price" db:"price"`
	InstructorName string          `json:"instructor_name" db:"instructor_name"`
	IsActive       bool            `json:"is_active" db:"is_active"`
	CreatedAt      time.Time       `json:"created_at" db:"created_at"`
	UpdatedAt      time.Time       `json:"updated_at" db:"updated_at"`
}

// Validate checks model-level invariants before persisting
func (c *Course) Validate() error {
	return validation.ValidateStruct(c,
		validation.Field(&c.Title, validation.Required, validation.Length(3, 255)),
		validation.Field(&c.InstructorName, validation.Required, validation.Length(2, 255)),
		validation.Field(&c.Price, validation.By(priceNonNegative)),
	)
}

func priceNonNegative(value interface{}) error {
	price, ok := value.(decimal.Decimal)
	if !ok || price.LessThan(decimal.Zero) {
		return ErrInvalidPrice
	}
	return nil
}

// =====================================================
// REQUEST / RESPONSE DTOs
// =====================================================

type CreateCourseRequest struct {
	Title          string  `json:"title" binding:"required,min=3,max=255"`
	Description    *string `json:"description,omitempty"`
	Price          float64 `json:"price" binding:"required,gte=0"`
	InstructorName string  `json:"instructor_name" binding:"required,min=2,max=255"`
}

type UpdateCourseRequest struct {
	Title       *string  `json:"title,omitempty" binding:"omitempty,min=3,max=255"`
	Description *string  `json:"description,omitempty"`
	Price       *float64 `json:"price,omitempty" binding:"omitempty,gte=0"`
	IsActive    *bool    `json:"is_active,omitempty"`
}

type CourseResponse struct {
	ID             uuid.UUID       `json:"id"`
	Title          string          `json:"title"`
	Slug           string          `json:"slug"`
	Description    *string         `json:"description,omitempty"`
	Price          decimal.Decimal `json:"price"`
	InstructorName string          `json:"instructor_name"`
	IsActive       bool            `json:"is_active"`
	CreatedAt      time.Time       `json:"created_at"`
}

// ToResponse converts Course to CourseResponse
func (c *Course) ToResponse() *CourseResponse {
	return &CourseResponse{
		ID:             c.ID,
		Title:          c.Title,
		Slug:           c.Slug,
		Description:    c.Description,
		Price:          c.Price,
		InstructorName: c.InstructorName,
		IsActive:       c.IsActive,
		CreatedAt:      c.CreatedAt,
	}
}
