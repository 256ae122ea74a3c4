package model

import "errors"

var (
	ErrCourseNotFound = errors.New("course not found")
	ErrCourseInactive = errors.New("course is not active")
	ErrInvalidPrice   = errors.New("price must be >= 0")
	ErrDuplicateSlug  = errors.New("course slug already exists")
)
