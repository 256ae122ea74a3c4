package shared

// Asynq task type identifiers
const (
	TypeCleanupIdempotencyRecords = "idempotency:cleanup_expired"
	TypeCleanupExpiredCarts       = "cart:cleanup_expired"
	TypeMarkOverdueInstallments   = "enrollment:mark_overdue"
	TypePaymentStatusNotification = "payment:status_notification"
)

// Asynq queue names
const (
	QueueHigh    = "high"
	QueueDefault = "default"
	QueueLow     = "low"
)

// Gin context keys set by middleware
const (
	ContextUserID    = "user_id"
	ContextUserRole  = "role"
	ContextRequestID = "request_id"
)

// IdempotencyKeyHeader is the HTTP header carrying the client-supplied key
const IdempotencyKeyHeader = "Idempotency-Key"
