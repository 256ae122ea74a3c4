package response

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"coursehub-backend/internal/shared/result"
)

type Response struct {
	Success  bool        `json:"success"`
	Data     interface{} `json:"data,omitempty"`
	Error    *Error      `json:"error,omitempty"`
	Warnings interface{} `json:"warnings,omitempty"`
	Meta     *Meta       `json:"meta,omitempty"`
}

type Error struct {
	Code    string      `json:"code"`
	Message string      `json:"message"`
	Details interface{} `json:"details,omitempty"`
}

type Meta struct {
	Page  int `json:"page,omitempty"`
	Limit int `json:"limit,omitempty"`
	Total int `json:"total,omitempty"`
}

// Success responses
func Success(c *gin.Context, statusCode int, data interface{}) {
	c.JSON(statusCode, Response{
		Success: true,
		Data:    data,
	})
}

func SuccessWithMeta(c *gin.Context, statusCode int, data interface{}, meta *Meta) {
	c.JSON(statusCode, Response{
		Success: true,
		Data:    data,
		Meta:    meta,
	})
}

// Error responses
func ErrorResponse(c *gin.Context, statusCode int, code, message string) {
	c.JSON(statusCode, Response{
		Success: false,
		Error: &Error{
			Code:    code,
			Message: message,
		},
	})
}

func ErrorWithDetails(c *gin.Context, statusCode int, code, message string, details interface{}) {
	c.JSON(statusCode, Response{
		Success: false,
		Error: &Error{
			Code:    code,
			Message: message,
			Details: details,
		},
	})
}

// Common error responses
func BadRequest(c *gin.Context, message string) {
	ErrorResponse(c, http.StatusBadRequest, "BAD_REQUEST", message)
}

func Unauthorized(c *gin.Context, message string) {
	ErrorResponse(c, http.StatusUnauthorized, "UNAUTHORIZED", message)
}

func Forbidden(c *gin.Context, message string) {
	ErrorResponse(c, http.StatusForbidden, "FORBIDDEN", message)
}

func NotFound(c *gin.Context, message string) {
	ErrorResponse(c, http.StatusNotFound, "NOT_FOUND", message)
}

func Conflict(c *gin.Context, code, message string) {
	ErrorResponse(c, http.StatusConflict, code, message)
}

func InternalError(c *gin.Context, message string) {
	ErrorResponse(c, http.StatusInternalServerError, "INTERNAL_ERROR", message)
}

// FromResult maps a service-layer result to the transport envelope.
// successStatus is used for the Ok branch (200 for reads, 201 for creates).
func FromResult[T any](c *gin.Context, res result.Result[T], successStatus int) {
	switch res.Status {
	case result.StatusOk:
		c.JSON(successStatus, Response{
			Success:  true,
			Data:     res.Data,
			Warnings: warningsOrNil(res.Warnings),
		})
	case result.StatusNotFound:
		NotFound(c, res.Message)
	default:
		statusCode := httpStatusForCode(res.Code)
		ErrorWithDetails(c, statusCode, res.Code, res.Message, res.Details)
	}
}

func warningsOrNil(ws []result.Warning) interface{} {
	if len(ws) == 0 {
		return nil
	}
	return ws
}

// httpStatusForCode maps stable error codes to HTTP statuses.
// Conflict-class codes get 409 so callers can distinguish retryable rejections.
func httpStatusForCode(code string) int {
	switch code {
	case result.CodeMissingKey:
		return http.StatusBadRequest
	case result.CodeKeyReusedDifferentRequest,
		result.CodeOperationInProgressOrFailed,
		result.CodeAlreadyEnrolled,
		result.CodeAlreadyInCart,
		result.CodeStateConflict:
		return http.StatusConflict
	case result.CodeCartExpired:
		return http.StatusGone
	case result.CodeInternal:
		return http.StatusInternalServerError
	default:
		return http.StatusUnprocessableEntity
	}
}
