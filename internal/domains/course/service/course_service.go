package service

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"coursehub-backend/internal/domains/course/model"
	repo "coursehub-backend/internal/domains/course/repository"
	"coursehub-backend/internal/shared/utils"
)

type CourseService struct {
	repository repo.RepositoryInterface
}

func NewCourseService(r repo.RepositoryInterface) ServiceInterface {
	return &CourseService{repository: r}
}

func (s *CourseService) GetCourse(ctx context.Context, courseID uuid.UUID) (*model.Course, error) {
	course, err := s.repository.GetByID(ctx, courseID)
	if err != nil {
		return nil, fmt.Errorf("failed to get course: %w", err)
	}
	if course == nil {
		return nil, model.ErrCourseNotFound
	}
	return course, nil
}

func (s *CourseService) ListCourses(ctx context.Context, page, limit int) ([]model.CourseResponse, int, error) {
	if page < 1 {
		page = 1
	}
	if limit < 1 || limit > 100 {
		limit = 20
	}

	courses, total, err := s.repository.List(ctx, page, limit)
	if err != nil {
		return nil, 0, fmt.Errorf("failed to list courses: %w", err)
	}

	responses := make([]model.CourseResponse, len(courses))
	for i := range courses {
		responses[i] = *courses[i].ToResponse()
	}

	return responses, total, nil
}

func (s *CourseService) CreateCourse(ctx context.Context, req model.CreateCourseRequest) (*model.CourseResponse, error) {
	now := time.Now()
	course := &model.Course{
		ID:             uuid.New(),
		Title:          req.Title,
		Slug:           utils.GenerateSlug(req.Title),
		Description:    req.Description,
		Price:          decimal.NewFromFloat(req.Price),
		InstructorName: req.InstructorName,
		IsActive:       true,
		CreatedAt:      now,
		UpdatedAt:      now,
	}

	if err := course.Validate(); err != nil {
		return nil, err
	}

	if err := s.repository.Create(ctx, course); err != nil {
		return nil, fmt.Errorf("failed to create course: %w", err)
	}

	return course.ToResponse(), nil
}

func (s *CourseService) UpdateCourse(ctx context.Context, courseID uuid.UUID, req model.UpdateCourseRequest) (*model.CourseResponse, error) {
	course, err := s.repository.GetByID(ctx, courseID)
	if err != nil {
		return nil, fmt.Errorf("failed to get course: %w", err)
	}
	if course == nil {
		return nil, model.ErrCourseNotFound
	}

	if req.Title != nil {
		course.Title = *req.Title
		course.Slug = utils.GenerateSlug(*req.Title)
	}
	if req.Description != nil {
		course.Description = req.Description
	}
	if req.Price != nil {
		course.Price = decimal.NewFromFloat(*req.Price)
	}
	if req.IsActive != nil {
		course.IsActive = *req.IsActive
	}

	if err := course.Validate(); err != nil {
		return nil, err
	}

	if err := s.repository.Update(ctx, course); err != nil {
		return nil, fmt.Errorf("failed to update course: %w", err)
	}

	return course.ToResponse(), nil
}

func (s *CourseService) DeleteCourse(ctx context.Context, courseID uuid.UUID) error {
	if err := s.repository.Delete(ctx, courseID); err != nil {
		return fmt.Errorf("failed to delete course: %w", err)
	}
	return nil
}
