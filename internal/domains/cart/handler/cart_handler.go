package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"coursehub-backend/internal/domains/cart/model"
	"coursehub-backend/internal/domains/cart/service"
	"coursehub-backend/internal/shared"
	"coursehub-backend/internal/shared/response"
)

type CartHandler struct {
	service service.ServiceInterface
}

func NewCartHandler(svc service.ServiceInterface) *CartHandler {
	return &CartHandler{service: svc}
}

func userFromContext(c *gin.Context) (uuid.UUID, bool) {
	raw, exists := c.Get(shared.ContextUserID)
	if !exists {
		return uuid.Nil, false
	}
	userID, ok := raw.(uuid.UUID)
	return userID, ok
}

// Get handles GET /v1/cart
func (h *CartHandler) Get(c *gin.Context) {
	userID, ok := userFromContext(c)
	if !ok {
		response.Unauthorized(c, "authentication required")
		return
	}

	res := h.service.GetCart(c.Request.Context(), userID)
	response.FromResult(c, res, http.StatusOK)
}

// AddItem handles POST /v1/cart/items
func (h *CartHandler) AddItem(c *gin.Context) {
	userID, ok := userFromContext(c)
	if !ok {
		response.Unauthorized(c, "authentication required")
		return
	}

	var req model.AddItemRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, err.Error())
		return
	}

	courseID, err := uuid.Parse(req.CourseID)
	if err != nil {
		response.BadRequest(c, "invalid course id")
		return
	}

	res := h.service.AddCourse(c.Request.Context(), userID, courseID)
	response.FromResult(c, res, http.StatusCreated)
}

// RemoveItem handles DELETE /v1/cart/items/:courseId
func (h *CartHandler) RemoveItem(c *gin.Context) {
	userID, ok := userFromContext(c)
	if !ok {
		response.Unauthorized(c, "authentication required")
		return
	}

	courseID, err := uuid.Parse(c.Param("courseId"))
	if err != nil {
		response.BadRequest(c, "invalid course id")
		return
	}

	res := h.service.RemoveCourse(c.Request.Context(), userID, courseID)
	response.FromResult(c, res, http.StatusOK)
}

// Clear handles DELETE /v1/cart
func (h *CartHandler) Clear(c *gin.Context) {
	userID, ok := userFromContext(c)
	if !ok {
		response.Unauthorized(c, "authentication required")
		return
	}

	res := h.service.ClearCart(c.Request.Context(), userID)
	response.FromResult(c, res, http.StatusOK)
}

// Checkout handles POST /v1/cart/checkout
func (h *CartHandler) Checkout(c *gin.Context) {
	userID, ok := userFromContext(c)
	if !ok {
		response.Unauthorized(c, "authentication required")
		return
	}

	key := c.GetHeader(shared.IdempotencyKeyHeader)

	res := h.service.Checkout(c.Request.Context(), userID, key)

	// A replayed checkout is a read of the original outcome
	status := http.StatusCreated
	if res.Replayed {
		status = http.StatusOK
	}
	response.FromResult(c, res, status)
}
