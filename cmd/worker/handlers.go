package main

import (
	"github.com/hibiken/asynq"

	cartJob "coursehub-backend/internal/domains/cart/job"
	enrollmentJob "coursehub-backend/internal/domains/enrollment/job"
	idempotencyJob "coursehub-backend/internal/domains/idempotency/job"
	paymentJob "coursehub-backend/internal/domains/payment/job"
	"coursehub-backend/internal/shared"
	"coursehub-backend/pkg/container"
)

// HandlerRegistry holds all job handlers
type HandlerRegistry struct {
	// Maintenance handlers
	idempotencyCleanup *idempotencyJob.CleanupExpiredRecordsHandler
	cartCleanup        *cartJob.CleanupExpiredCartsHandler
	markOverdue        *enrollmentJob.MarkOverdueInstallmentsHandler

	// Notification handlers
	paymentNotification *paymentJob.StatusNotificationHandler
}

// initializeHandlers creates all job handlers with their dependencies
func initializeHandlers(c *container.Container) *HandlerRegistry {
	return &HandlerRegistry{
		idempotencyCleanup:  idempotencyJob.NewCleanupExpiredRecordsHandler(c.IdempotencyService),
		cartCleanup:         cartJob.NewCleanupExpiredCartsHandler(c.CartService),
		markOverdue:         enrollmentJob.NewMarkOverdueInstallmentsHandler(c.EnrollmentService),
		paymentNotification: paymentJob.NewStatusNotificationHandler(),
	}
}

// RegisterHandlers registers all handlers with the mux
func (h *HandlerRegistry) RegisterHandlers(mux *asynq.ServeMux) {
	// Maintenance tasks
	mux.HandleFunc(shared.TypeCleanupIdempotencyRecords, h.idempotencyCleanup.ProcessTask)
	mux.HandleFunc(shared.TypeCleanupExpiredCarts, h.cartCleanup.ProcessTask)
	mux.HandleFunc(shared.TypeMarkOverdueInstallments, h.markOverdue.ProcessTask)

	// Notification tasks
	mux.HandleFunc(shared.TypePaymentStatusNotification, h.paymentNotification.ProcessTask)
}
