package repository

import (
	"context"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"

	"coursehub-backend/internal/domains/course/model"
)

// RepositoryInterface defines data access methods for the course catalog
type RepositoryInterface interface {
	// GetByID retrieves a course by id
	// Returns: nil if not exists (don't treat as error)
	GetByID(ctx context.Context, courseID uuid.UUID) (*model.Course, error)

	// GetByIDTx is the transactional variant used by checkout's integrity check
	GetByIDTx(ctx context.Context, tx pgx.Tx, courseID uuid.UUID) (*model.Course, error)

	// List returns active courses, newest first
	// Returns: courses, total_count, error
	List(ctx context.Context, page, limit int) ([]model.Course, int, error)

	// Create inserts a new course
	Create(ctx context.Context, course *model.Course) error

	// Update saves mutable course fields
	Update(ctx context.Context, course *model.Course) error

	// Delete removes a course from the catalog
	Delete(ctx context.Context, courseID uuid.UUID) error
}
