package job

import (
	"context"
	"fmt"

	"github.com/hibiken/asynq"

	"coursehub-backend/internal/domains/enrollment/service"
	"coursehub-backend/pkg/logger"
)

// ================================================
// MARK OVERDUE INSTALLMENTS JOB HANDLER
// ================================================

type MarkOverdueInstallmentsHandler struct {
	enrollmentService service.ServiceInterface
}

func NewMarkOverdueInstallmentsHandler(enrollmentService service.ServiceInterface) *MarkOverdueInstallmentsHandler {
	return &MarkOverdueInstallmentsHandler{
		enrollmentService: enrollmentService,
	}
}

func (h *MarkOverdueInstallmentsHandler) ProcessTask(ctx context.Context, t *asynq.Task) error {
	logger.Info("Starting MarkOverdueInstallments job", nil)

	count, err := h.enrollmentService.MarkOverdueInstallments(ctx)
	if err != nil {
		return fmt.Errorf("mark overdue installments: %w", err)
	}

	logger.Info("Completed MarkOverdueInstallments job", map[string]interface{}{
		"updated_count": count,
	})
	return nil
}
