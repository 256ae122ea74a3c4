package repository

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"coursehub-backend/internal/domains/course/model"
	"coursehub-backend/pkg/cache"
	"coursehub-backend/pkg/logger"
)

const (
	courseCacheKeyPrefix = "course:"
	courseCacheTTL       = 5 * time.Minute
)

type postgresRepository struct {
	pool  *pgxpool.Pool
	cache cache.Cache
}

func NewPostgresRepository(pool *pgxpool.Pool, cache cache.Cache) RepositoryInterface {
	return &postgresRepository{
		pool:  pool,
		cache: cache,
	}
}

const courseColumns = `id, title, slug, description, price, instructor_name, is_active, created_at, updated_at`

func scanCourse(row pgx.Row) (*model.Course, error) {
	var course model.Course
	err := row.Scan(
		&course.ID,
		&course.Title,
		&course.Slug,
		&course.Description,
		&course.Price,
		&course.InstructorName,
		&course.IsActive,
		&course.CreatedAt,
		&course.UpdatedAt,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil // Not found - return nil, not error
		}
		return nil, fmt.Errorf("failed to scan course: %w", err)
	}
	return &course, nil
}

// GetByID implements RepositoryInterface.GetByID (cache-aside)
func (r *postgresRepository) GetByID(ctx context.Context, courseID uuid.UUID) (*model.Course, error) {
	cacheKey := courseCacheKeyPrefix + courseID.String()

	var cached model.Course
	if found, err := r.cache.Get(ctx, cacheKey, &cached); err == nil && found {
		return &cached, nil
	}

	query := `
		SELECT ` + courseColumns + `
		FROM courses
		WHERE id = $1
	`

	course, err := scanCourse(r.pool.QueryRow(ctx, query, courseID))
	if err != nil {
		return nil, err
	}
	if course == nil {
		return nil, nil
	}

	if err := r.cache.Set(ctx, cacheKey, course, courseCacheTTL); err != nil {
		logger.Error("Failed to cache course", err)
	}

	return course, nil
}

// GetByIDTx implements RepositoryInterface.GetByIDTx.
// Bypasses the cache: checkout integrity checks must see committed truth.
func (r *postgresRepository) GetByIDTx(ctx context.Context, tx pgx.Tx, courseID uuid.UUID) (*model.Course, error) {
	query := `
		SELECT ` + courseColumns + `
		FROM courses
		WHERE id = $1
	`
	return scanCourse(tx.QueryRow(ctx, query, courseID))
}

// List implements RepositoryInterface.List
func (r *postgresRepository) List(ctx context.Context, page, limit int) ([]model.Course, int, error) {
	offset := (page - 1) * limit

	query := `
		SELECT ` + courseColumns + `
		FROM courses
		WHERE is_active = true
		ORDER BY created_at DESC
		LIMIT $1 OFFSET $2
	`

	rows, err := r.pool.Query(ctx, query, limit, offset)
	if err != nil {
		return nil, 0, fmt.Errorf("failed to list courses: %w", err)
	}
	defer rows.Close()

	var courses []model.Course
	for rows.Next() {
		var course model.Course
		err := rows.Scan(
			&course.ID,
			&course.Title,
			&course.Slug,
			&course.Description,
			&course.Price,
			&course.InstructorName,
			&course.IsActive,
			&course.CreatedAt,
			&course.UpdatedAt,
		)
		if err != nil {
			return nil, 0, fmt.Errorf("failed to scan course: %w", err)
		}
		courses = append(courses, course)
	}

	var total int
	countQuery := `SELECT COUNT(*) FROM courses WHERE is_active = true`
	if err := r.pool.QueryRow(ctx, countQuery).Scan(&total); err != nil {
		return nil, 0, fmt.Errorf("failed to count courses: %w", err)
	}

	return courses, total, nil
}

// Create implements RepositoryInterface.Create
func (r *postgresRepository) Create(ctx context.Context, course *model.Course) error {
	query := `
		INSERT INTO courses (id, title, slug, description, price, instructor_name, is_active, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)
	`

	_, err := r.pool.Exec(ctx, query,
		course.ID,
		course.Title,
		course.Slug,
		course.Description,
		course.Price,
		course.InstructorName,
		course.IsActive,
		course.CreatedAt,
		course.UpdatedAt,
	)

	if err != nil {
		return fmt.Errorf("failed to create course: %w", err)
	}

	return nil
}

// Update implements RepositoryInterface.Update
func (r *postgresRepository) Update(ctx context.Context, course *model.Course) error {
	query := `
		UPDATE courses
		SET title = $2, slug = $3, description = $4, price = $5, is_active = $6, updated_at = NOW()
		WHERE id = $1
	`

	tag, err := r.pool.Exec(ctx, query,
		course.ID,
		course.Title,
		course.Slug,
		course.Description,
		course.Price,
		course.IsActive,
	)
	if err != nil {
		return fmt.Errorf("failed to update course: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return model.ErrCourseNotFound
	}

	// Invalidate cached copy so carts see the new live price
	if err := r.cache.Delete(ctx, courseCacheKeyPrefix+course.ID.String()); err != nil {
		logger.Error("Failed to invalidate course cache", err)
	}

	return nil
}

// Delete implements RepositoryInterface.Delete
func (r *postgresRepository) Delete(ctx context.Context, courseID uuid.UUID) error {
	tag, err := r.pool.Exec(ctx, `DELETE FROM courses WHERE id = $1`, courseID)
	if err != nil {
		return fmt.Errorf("failed to delete course: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return model.ErrCourseNotFound
	}

	if err := r.cache.Delete(ctx, courseCacheKeyPrefix+courseID.String()); err != nil {
		logger.Error("Failed to invalidate course cache", err)
	}

	return nil
}
