// Package result defines the tagged operation result returned by
// orchestrator-level services. The HTTP layer maps it to transport responses;
// services never return raw transport errors.
package result

// Status discriminates the result variants
type Status string

const (
	StatusOk       Status = "ok"
	StatusNotFound Status = "not_found"
	StatusError    Status = "error"
)

// Stable error codes surfaced to callers. These are part of the API contract:
// clients branch on codes, not messages.
const (
	// Cart validation
	CodeCourseNotFound  = "COURSE_NOT_FOUND"
	CodeCourseInactive  = "COURSE_INACTIVE"
	CodeAlreadyEnrolled = "ALREADY_ENROLLED"
	CodeAlreadyInCart   = "ALREADY_IN_CART"
	CodeNotInCart       = "NOT_IN_CART"
	CodeCartEmpty       = "CART_EMPTY"
	CodeCartExpired     = "CART_EXPIRED"
	CodeInvalidCartID   = "INVALID_CART_ID"
	CodeCourseDeleted   = "COURSE_DELETED"

	// Non-blocking warning
	CodePriceChanged = "PRICE_CHANGED"

	// Idempotency conflicts
	CodeMissingKey                  = "MISSING_KEY"
	CodeKeyReusedDifferentRequest   = "KEY_REUSED_DIFFERENT_REQUEST"
	CodeOperationInProgressOrFailed = "OPERATION_IN_PROGRESS_OR_FAILED"

	// State-machine conflicts (payment review)
	CodeStateConflict = "STATE_CONFLICT"

	// Integrity violations
	CodeIntegrityViolation = "INTEGRITY_VIOLATION"

	CodeInternal = "INTERNAL_ERROR"
)

// Warning is attached to an otherwise successful result
type Warning struct {
	Code    string      `json:"code"`
	Message string      `json:"message"`
	Details interface{} `json:"details,omitempty"`
}

// Result is the tagged union: Ok(T) | NotFound(message) | Error(code, message)
type Result[T any] struct {
	Status   Status      `json:"status"`
	Data     T           `json:"data,omitempty"`
	Code     string      `json:"code,omitempty"`
	Message  string      `json:"message,omitempty"`
	Details  interface{} `json:"details,omitempty"`
	Warnings []Warning   `json:"warnings,omitempty"`

	// Replayed is true when the data was served from an idempotency record
	// instead of fresh execution. The payload is identical either way.
	Replayed bool `json:"replayed,omitempty"`
}

func Ok[T any](data T) Result[T] {
	return Result[T]{Status: StatusOk, Data: data}
}

func OkWithWarnings[T any](data T, warnings []Warning) Result[T] {
	return Result[T]{Status: StatusOk, Data: data, Warnings: warnings}
}

func NotFound[T any](message string) Result[T] {
	return Result[T]{Status: StatusNotFound, Message: message}
}

func Error[T any](code, message string) Result[T] {
	return Result[T]{Status: StatusError, Code: code, Message: message}
}

func ErrorWithDetails[T any](code, message string, details interface{}) Result[T] {
	return Result[T]{Status: StatusError, Code: code, Message: message, Details: details}
}

// IsOk reports whether the result carries data
func (r Result[T]) IsOk() bool {
	return r.Status == StatusOk
}
