package handler

import (
	"errors"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"coursehub-backend/internal/domains/course/model"
	"coursehub-backend/internal/domains/course/service"
	"coursehub-backend/internal/shared/response"
)

type CourseHandler struct {
	service service.ServiceInterface
}

func NewCourseHandler(svc service.ServiceInterface) *CourseHandler {
	return &CourseHandler{service: svc}
}

// List handles GET /v1/courses
func (h *CourseHandler) List(c *gin.Context) {
	page, _ := strconv.Atoi(c.DefaultQuery("page", "1"))
	limit, _ := strconv.Atoi(c.DefaultQuery("limit", "20"))

	courses, total, err := h.service.ListCourses(c.Request.Context(), page, limit)
	if err != nil {
		response.InternalError(c, err.Error())
		return
	}

	response.SuccessWithMeta(c, http.StatusOK, courses, &response.Meta{
		Page:  page,
		Limit: limit,
		Total: total,
	})
}

// GetByID handles GET /v1/courses/:id
func (h *CourseHandler) GetByID(c *gin.Context) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		response.BadRequest(c, "invalid course id")
		return
	}

	course, err := h.service.GetCourse(c.Request.Context(), id)
	if err != nil {
		if errors.Is(err, model.ErrCourseNotFound) {
			response.NotFound(c, "course not found")
			return
		}
		response.InternalError(c, err.Error())
		return
	}

	response.Success(c, http.StatusOK, course.ToResponse())
}

// Create handles POST /v1/admin/courses
func (h *CourseHandler) Create(c *gin.Context) {
	var req model.CreateCourseRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, err.Error())
		return
	}

	course, err := h.service.CreateCourse(c.Request.Context(), req)
	if err != nil {
		response.BadRequest(c, err.Error())
		return
	}

	response.Success(c, http.StatusCreated, course)
}

// Update handles PATCH /v1/admin/courses/:id
func (h *CourseHandler) Update(c *gin.Context) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		response.BadRequest(c, "invalid course id")
		return
	}

	var req model.UpdateCourseRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, err.Error())
		return
	}

	course, err := h.service.UpdateCourse(c.Request.Context(), id, req)
	if err != nil {
		if errors.Is(err, model.ErrCourseNotFound) {
			response.NotFound(c, "course not found")
			return
		}
		response.BadRequest(c, err.Error())
		return
	}

	response.Success(c, http.StatusOK, course)
}

// Delete handles DELETE /v1/admin/courses/:id
func (h *CourseHandler) Delete(c *gin.Context) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		response.BadRequest(c, "invalid course id")
		return
	}

	if err := h.service.DeleteCourse(c.Request.Context(), id); err != nil {
		if errors.Is(err, model.ErrCourseNotFound) {
			response.NotFound(c, "course not found")
			return
		}
		response.InternalError(c, err.Error())
		return
	}

	response.Success(c, http.StatusOK, gin.H{"deleted": true})
}
