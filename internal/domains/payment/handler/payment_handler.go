package handler

import (
	"errors"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	idemmodel "coursehub-backend/internal/domains/idempotency/model"
	"coursehub-backend/internal/domains/payment/model"
	"coursehub-backend/internal/domains/payment/service"
	"coursehub-backend/internal/shared"
	"coursehub-backend/internal/shared/response"
)

type PaymentHandler struct {
	service service.ServiceInterface
}

func NewPaymentHandler(svc service.ServiceInterface) *PaymentHandler {
	return &PaymentHandler{service: svc}
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

// writeError maps domain errors to HTTP once, for every endpoint
func writeError(c *gin.Context, err error) {
	var idemErr *idemmodel.IdempotencyError
	if errors.As(err, &idemErr) {
		if idemErr.Code == idemmodel.ErrCodeMissingKey {
			response.ErrorResponse(c, http.StatusBadRequest, idemErr.Code, idemErr.Message)
			return
		}
		response.Conflict(c, idemErr.Code, idemErr.Message)
		return
	}

	var stateErr *model.StateConflictError
	if errors.As(err, &stateErr) {
		response.Conflict(c, model.ErrCodeStateConflict, stateErr.Error())
		return
	}

	switch {
	case errors.Is(err, model.ErrAttemptNotFound):
		response.NotFound(c, "payment attempt not found")
	case errors.Is(err, model.ErrAttemptInFlight):
		response.Conflict(c, "ATTEMPT_IN_FLIGHT", err.Error())
	case errors.Is(err, model.ErrStaleVersion):
		response.Conflict(c, model.ErrCodeStateConflict, err.Error())
	case errors.Is(err, model.ErrInvalidAmount),
		errors.Is(err, model.ErrMissingReceipt),
		errors.Is(err, model.ErrMissingRejectReason):
		response.ErrorResponse(c, http.StatusUnprocessableEntity, "INVALID_REQUEST", err.Error())
	default:
		response.InternalError(c, err.Error())
	}
}

// Create handles POST /v1/payments
func (h *PaymentHandler) Create(c *gin.Context) {
	studentID, _, ok := requesterFromContext(c)
	if !ok {
		response.Unauthorized(c, "authentication required")
		return
	}

	var req model.CreateAttemptRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, err.Error())
		return
	}

	key := c.GetHeader(shared.IdempotencyKeyHeader)

	attempt, replayed, err := h.service.CreateAttempt(c.Request.Context(), key, studentID, req)
	if err != nil {
		writeError(c, err)
		return
	}

	status := http.StatusCreated
	if replayed {
		status = http.StatusOK
	}
	response.Success(c, status, attempt)
}

// UploadReceipt handles POST /v1/payments/:id/receipt
func (h *PaymentHandler) UploadReceipt(c *gin.Context) {
	attemptID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		response.BadRequest(c, "invalid payment attempt id")
		return
	}

	studentID, _, ok := requesterFromContext(c)
	if !ok {
		response.Unauthorized(c, "authentication required")
		return
	}

	var req model.UploadReceiptRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, err.Error())
		return
	}

	attempt, err := h.service.UploadReceipt(c.Request.Context(), studentID, attemptID, req)
	if err != nil {
		writeError(c, err)
		return
	}

	response.Success(c, http.StatusOK, attempt)
}

// Get handles GET /v1/payments/:id
func (h *PaymentHandler) Get(c *gin.Context) {
	attemptID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		response.BadRequest(c, "invalid payment attempt id")
		return
	}

	requesterID, isAdmin, ok := requesterFromContext(c)
	if !ok {
		response.Unauthorized(c, "authentication required")
		return
	}

	attempt, err := h.service.GetAttempt(c.Request.Context(), attemptID, requesterID, isAdmin)
	if err != nil {
		writeError(c, err)
		return
	}

	response.Success(c, http.StatusOK, attempt)
}

// ListMine handles GET /v1/payments
func (h *PaymentHandler) ListMine(c *gin.Context) {
	studentID, _, ok := requesterFromContext(c)
	if !ok {
		response.Unauthorized(c, "authentication required")
		return
	}

	attempts, err := h.service.ListMyAttempts(c.Request.Context(), studentID)
	if err != nil {
		writeError(c, err)
		return
	}

	response.Success(c, http.StatusOK, attempts)
}

// ListPending handles GET /v1/admin/payments/pending
func (h *PaymentHandler) ListPending(c *gin.Context) {
	page, _ := strconv.Atoi(c.DefaultQuery("page", "1"))
	limit, _ := strconv.Atoi(c.DefaultQuery("limit", "20"))

	attempts, total, err := h.service.ListPendingReview(c.Request.Context(), page, limit)
	if err != nil {
		writeError(c, err)
		return
	}

	response.SuccessWithMeta(c, http.StatusOK, attempts, &response.Meta{
		Page:  page,
		Limit: limit,
		Total: total,
	})
}

// Approve handles POST /v1/admin/payments/:id/approve
func (h *PaymentHandler) Approve(c *gin.Context) {
	attemptID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		response.BadRequest(c, "invalid payment attempt id")
		return
	}

	reviewerID, _, ok := requesterFromContext(c)
	if !ok {
		response.Unauthorized(c, "authentication required")
		return
	}

	attempt, err := h.service.Approve(c.Request.Context(), reviewerID, attemptID)
	if err != nil {
		writeError(c, err)
		return
	}

	response.Success(c, http.StatusOK, attempt)
}

// Reject handles POST /v1/admin/payments/:id/reject
func (h *PaymentHandler) Reject(c *gin.Context) {
	attemptID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		response.BadRequest(c, "invalid payment attempt id")
		return
	}

	reviewerID, _, ok := requesterFromContext(c)
	if !ok {
		response.Unauthorized(c, "authentication required")
		return
	}

	var req model.RejectRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, err.Error())
		return
	}

	attempt, err := h.service.Reject(c.Request.Context(), reviewerID, attemptID, req)
	if err != nil {
		writeError(c, err)
		return
	}

	response.Success(c, http.StatusOK, attempt)
}
