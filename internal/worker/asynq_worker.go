package worker

import (
	"context"
	"encoding/json"
	"errors"

	"github.com/canteen-rush/internal/logger"
	"github.com/canteen-rush/internal/prediction"
	"github.com/canteen-rush/internal/provider"
	"github.com/canteen-rush/internal/queue"
	"github.com/canteen-rush/internal/service"

	"github.com/hibiken/asynq"
)

// Consumer 异步任务消费者
type Consumer struct {
	*provider.Container
}

// NewConsumer 创建消费者
func NewConsumer(c *provider.Container) *Consumer {
	return &Consumer{
		Container: c,
	}
}

// Register 注册消费者
func (c *Consumer) Register(mux *asynq.ServeMux) {
	if c == nil || mux == nil {
		logger.Debugw("worker_register_skip_nil", "consumer_nil", c == nil, "mux_nil", mux == nil)
		return
	}
	mux.HandleFunc(queue.TaskPenaltyProcess, c.handlePenaltyProcess)
	mux.HandleFunc(queue.TaskPredictionFeedback, c.handlePredictionFeedback)
}

func (c *Consumer) handlePenaltyProcess(ctx context.Context, task *asynq.Task) error {
	if c == nil || task == nil {
		logger.Debugw("worker_penalty_process_skip_nil", "consumer_nil", c == nil, "task_nil", task == nil)
		return nil
	}
	var payload queue.PenaltyProcessPayload
	if err := json.Unmarshal(task.Payload(), &payload); err != nil {
		logger.Warnw("worker_penalty_process_unmarshal_failed", "error", err)
		return err
	}
	if payload.StudentID == 0 || payload.OrderID == 0 {
		logger.Debugw("worker_penalty_process_skip_invalid_payload",
			"student_id", payload.StudentID,
			"order_id", payload.OrderID,
		)
		return nil
	}
	if c.PenaltyService == nil {
		logger.Warnw("worker_penalty_process_skip_service_nil", "order_id", payload.OrderID)
		return nil
	}

	_, err := c.PenaltyService.EvaluateLatePickup(ctx, payload.StudentID, payload.OrderID, payload.LateByMinutes)
	if err != nil {
		if errors.Is(err, service.ErrUserNotFound) {
			logger.Debugw("worker_penalty_process_skip_user_not_found", "student_id", payload.StudentID)
			return nil
		}
		logger.Warnw("worker_penalty_process_failed",
			"student_id", payload.StudentID,
			"order_id", payload.OrderID,
			"error", err,
		)
		return err
	}
	return nil
}

func (c *Consumer) handlePredictionFeedback(ctx context.Context, task *asynq.Task) error {
	if c == nil || task == nil {
		logger.Debugw("worker_prediction_feedback_skip_nil", "consumer_nil", c == nil, "task_nil", task == nil)
		return nil
	}
	var payload queue.PredictionFeedbackPayload
	if err := json.Unmarshal(task.Payload(), &payload); err != nil {
		logger.Warnw("worker_prediction_feedback_unmarshal_failed", "error", err)
		return err
	}
	if payload.VendorID == 0 {
		logger.Debugw("worker_prediction_feedback_skip_invalid_payload", "vendor_id", payload.VendorID)
		return nil
	}
	if c.Predictor == nil || !c.Predictor.Enabled() {
		logger.Debugw("worker_prediction_feedback_skip_predictor_disabled", "vendor_id", payload.VendorID)
		return nil
	}

	err := c.Predictor.Feedback(ctx, prediction.FeedbackInput{
		VendorID:          payload.VendorID,
		QueueLength:       payload.QueueLength,
		ActualWaitMinutes: payload.ActualWaitMinutes,
		DayOfWeek:         payload.DayOfWeek,
		Hour:              payload.Hour,
	})
	if err != nil {
		logger.Warnw("worker_prediction_feedback_failed",
			"vendor_id", payload.VendorID,
			"error", err,
		)
		return err
	}
	return nil
}
