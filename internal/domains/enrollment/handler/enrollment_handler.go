package handler

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"coursehub-backend/internal/domains/enrollment/model"
	"coursehub-backend/internal/domains/enrollment/service"
	idemmodel "coursehub-backend/internal/domains/idempotency/model"
	"coursehub-backend/internal/shared"
	"coursehub-backend/internal/shared/response"
)

type EnrollmentHandler struct {
	service service.ServiceInterface
}

func NewEnrollmentHandler(svc service.ServiceInterface) *EnrollmentHandler {
	return &EnrollmentHandler{service: svc}
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
	isAdmin := role == "admin"

	return userID, isAdmin, true
}

// Get handles GET /v1/enrollments/:id
func (h *EnrollmentHandler) Get(c *gin.Context) {
	enrollmentID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		response.BadRequest(c, "invalid enrollment id")
		return
	}

	requesterID, isAdmin, ok := requesterFromContext(c)
	if !ok {
		response.Unauthorized(c, "authentication required")
		return
	}

	enrollment, err := h.service.GetEnrollment(c.Request.Context(), enrollmentID, requesterID, isAdmin)
	if err != nil {
		if errors.Is(err, model.ErrEnrollmentNotFound) {
			response.NotFound(c, "enrollment not found")
			return
		}
		response.InternalError(c, err.Error())
		return
	}

	response.Success(c, http.StatusOK, enrollment)
}

// ListMine handles GET /v1/enrollments
func (h *EnrollmentHandler) ListMine(c *gin.Context) {
	requesterID, _, ok := requesterFromContext(c)
	if !ok {
		response.Unauthorized(c, "authentication required")
		return
	}

	enrollments, err := h.service.ListStudentEnrollments(c.Request.Context(), requesterID)
	if err != nil {
		response.InternalError(c, err.Error())
		return
	}

	response.Success(c, http.StatusOK, enrollments)
}

// RecordPayment handles POST /v1/admin/enrollments/:id/payments
func (h *EnrollmentHandler) RecordPayment(c *gin.Context) {
	enrollmentID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		response.BadRequest(c, "invalid enrollment id")
		return
	}

	adminID, _, ok := requesterFromContext(c)
	if !ok {
		response.Unauthorized(c, "authentication required")
		return
	}

	var req model.RecordPaymentRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, err.Error())
		return
	}

	key := c.GetHeader(shared.IdempotencyKeyHeader)

	result, replayed, err := h.service.RecordPayment(c.Request.Context(), key, adminID, enrollmentID, req)
	if err != nil {
		h.writePaymentError(c, err)
		return
	}

	status := http.StatusCreated
	if replayed {
		status = http.StatusOK
	}
	response.Success(c, status, result)
}

func (h *EnrollmentHandler) writePaymentError(c *gin.Context, err error) {
	var idemErr *idemmodel.IdempotencyError
	if errors.As(err, &idemErr) {
		switch idemErr.Code {
		case idemmodel.ErrCodeMissingKey:
			response.ErrorResponse(c, http.StatusBadRequest, idemErr.Code, idemErr.Message)
		default:
			response.Conflict(c, idemErr.Code, idemErr.Message)
		}
		return
	}

	switch {
	case errors.Is(err, model.ErrEnrollmentNotFound):
		response.NotFound(c, "enrollment not found")
	case errors.Is(err, model.ErrInvalidPaymentAmount),
		errors.Is(err, model.ErrPaymentExceedsBalance),
		errors.Is(err, model.ErrInstallmentSumMismatch):
		response.ErrorResponse(c, http.StatusUnprocessableEntity, "INVALID_PAYMENT", err.Error())
	default:
		response.InternalError(c, err.Error())
	}
}

// CreateInstallmentPlan handles POST /v1/admin/enrollments/:id/installments
func (h *EnrollmentHandler) CreateInstallmentPlan(c *gin.Context) {
	enrollmentID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		response.BadRequest(c, "invalid enrollment id")
		return
	}

	var req model.CreateInstallmentPlanRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, err.Error())
		return
	}

	enrollment, err := h.service.CreateInstallmentPlan(c.Request.Context(), enrollmentID, req)
	if err != nil {
		switch {
		case errors.Is(err, model.ErrEnrollmentNotFound):
			response.NotFound(c, "enrollment not found")
		case errors.Is(err, model.ErrPlanAlreadyExists):
			response.Conflict(c, "PLAN_EXISTS", err.Error())
		case errors.Is(err, model.ErrInvalidInstallmentPlan),
			errors.Is(err, model.ErrInstallmentSumMismatch):
			response.ErrorResponse(c, http.StatusUnprocessableEntity, "INVALID_PLAN", err.Error())
		default:
			response.InternalError(c, err.Error())
		}
		return
	}

	response.Success(c, http.StatusCreated, enrollment)
}
