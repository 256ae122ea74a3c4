package job

import (
	"context"
	"fmt"

	"github.com/hibiken/asynq"

	"coursehub-backend/internal/domains/cart/service"
	"coursehub-backend/pkg/logger"
)

// ================================================
// CLEANUP EXPIRED CARTS JOB HANDLER
// ================================================

type CleanupExpiredCartsHandler struct {
	cartService service.ServiceInterface
}

func NewCleanupExpiredCartsHandler(cartService service.ServiceInterface) *CleanupExpiredCartsHandler {
	return &CleanupExpiredCartsHandler{
		cartService: cartService,
	}
}

func (h *CleanupExpiredCartsHandler) ProcessTask(ctx context.Context, t *asynq.Task) error {
	logger.Info("Starting CleanupExpiredCarts job", nil)

	deleted, err := h.cartService.CleanupExpired(ctx)
	if err != nil {
		return fmt.Errorf("cleanup expired carts: %w", err)
	}

	logger.Info("Completed CleanupExpiredCarts job", map[string]interface{}{
		"deleted_count": deleted,
	})
	return nil
}
