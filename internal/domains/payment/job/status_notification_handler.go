package job

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/hibiken/asynq"

	"coursehub-backend/internal/domains/payment/model"
	"coursehub-backend/pkg/logger"
)

// ================================================
// PAYMENT STATUS NOTIFICATION JOB HANDLER
// ================================================

// StatusNotificationHandler delivers review-transition notifications to
// students. The outbound channel is a log sink for now; swapping in a real
// mailer only touches this handler.
type StatusNotificationHandler struct{}

func NewStatusNotificationHandler() *StatusNotificationHandler {
	return &StatusNotificationHandler{}
}

func (h *StatusNotificationHandler) ProcessTask(ctx context.Context, t *asynq.Task) error {
	var payload model.StatusNotificationPayload
	if err := json.Unmarshal(t.Payload(), &payload); err != nil {
		// Malformed payload will never parse on retry
		return fmt.Errorf("unmarshal status notification payload: %v: %w", err, asynq.SkipRetry)
	}

	fields := map[string]interface{}{
		"attempt_id": payload.AttemptID.String(),
		"student_id": payload.StudentID.String(),
		"course_id":  payload.CourseID.String(),
		"status":     payload.Status,
	}
	if payload.Reason != nil {
		fields["reason"] = *payload.Reason
	}

	logger.Info("payment status notification", fields)
	return nil
}
