package service

import (
	"context"

	"github.com/google/uuid"

	"coursehub-backend/internal/domains/course/model"
)

type ServiceInterface interface {
	// GetCourse retrieves a single course by id
	GetCourse(ctx context.Context, courseID uuid.UUID) (*model.Course, error)

	// ListCourses returns paginated active courses
	ListCourses(ctx context.Context, page, limit int) ([]model.CourseResponse, int, error)

	// CreateCourse creates a new catalog entry (admin)
	CreateCourse(ctx context.Context, req model.CreateCourseRequest) (*model.CourseResponse, error)

	// UpdateCourse applies partial updates (admin).
	// Price changes affect future cart additions only; existing cart items
	// keep their snapshot price.
	UpdateCourse(ctx context.Context, courseID uuid.UUID, req model.UpdateCourseRequest) (*model.CourseResponse, error)

	// DeleteCourse removes a course (admin)
	DeleteCourse(ctx context.Context, courseID uuid.UUID) error
}
