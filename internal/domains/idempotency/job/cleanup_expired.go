package job

import (
	"context"
	"fmt"

	"github.com/hibiken/asynq"

	"coursehub-backend/internal/domains/idempotency/service"
	"coursehub-backend/pkg/logger"
)

// ================================================
// CLEANUP EXPIRED IDEMPOTENCY RECORDS JOB HANDLER
// ================================================

type CleanupExpiredRecordsHandler struct {
	idempotencyService *service.Service
}

func NewCleanupExpiredRecordsHandler(idempotencyService *service.Service) *CleanupExpiredRecordsHandler {
	return &CleanupExpiredRecordsHandler{
		idempotencyService: idempotencyService,
	}
}

func (h *CleanupExpiredRecordsHandler) ProcessTask(ctx context.Context, t *asynq.Task) error {
	logger.Info("Starting CleanupExpiredIdempotencyRecords job", nil)

	deleted, err := h.idempotencyService.CleanupExpired(ctx)
	if err != nil {
		return fmt.Errorf("cleanup expired idempotency records: %w", err)
	}

	logger.Info("Completed CleanupExpiredIdempotencyRecords job", map[string]interface{}{
		"deleted_count": deleted,
	})
	return nil
}
