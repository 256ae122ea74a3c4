package handler

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"coursehub-backend/internal/domains/order/model"
	"coursehub-backend/internal/domains/order/service"
	"coursehub-backend/internal/shared"
	"coursehub-backend/internal/shared/response"
)

type OrderHandler struct {
	service service.ServiceInterface
}

func NewOrderHandler(svc service.ServiceInterface) *OrderHandler {
	return &OrderHandler{service: svc}
}

func requesterFromContext(c *gin.Context) (uuid.UUID, bool, bool) {
	raw, exists := c.Get(shared.ContextUserID)
	if !exists {
		return uuid.Nil, false, false
	}
	userID, ok := raw.(uuid.UUID)
	if !ok {
		return uuid.Nil, false, false
	}

	role, _ := c.Get(shared.ContextUserRole)
	return userID, role == "admin", true
}

// Get handles GET /v1/orders/:id
func (h *OrderHandler) Get(c *gin.Context) {
	orderID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		response.BadRequest(c, "invalid order id")
		return
	}

	requesterID, isAdmin, ok := requesterFromContext(c)
	if !ok {
		response.Unauthorized(c, "authentication required")
		return
	}

	order, err := h.service.GetOrder(c.Request.Context(), orderID, requesterID, isAdmin)
	if err != nil {
		if errors.Is(err, model.ErrOrderNotFound) {
			response.NotFound(c, "order not found")
			return
		}
		response.InternalError(c, err.Error())
		return
	}

	response.Success(c, http.StatusOK, order)
}

// ListMine handles GET /v1/orders
func (h *OrderHandler) ListMine(c *gin.Context) {
	requesterID, _, ok := requesterFromContext(c)
	if !ok {
		response.Unauthorized(c, "authentication required")
		return
	}

	orders, err := h.service.ListMyOrders(c.Request.Context(), requesterID)
	if err != nil {
		response.InternalError(c, err.Error())
		return
	}

	response.Success(c, http.StatusOK, orders)
}
