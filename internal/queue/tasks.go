package queue

import (
	"encoding/json"

	"github.com/canteen-rush/internal/constants"

	"github.com/hibiken/asynq"
)

const (
	// TaskPenaltyProcess 迟到取餐处罚任务
	TaskPenaltyProcess = constants.TaskPenaltyProcess
	// TaskPredictionFeedback 预测服务反馈任务
	TaskPredictionFeedback = constants.TaskPredictionFeedback
)

// PenaltyProcessPayload 处罚任务载荷
type PenaltyProcessPayload struct {
	StudentID     uint `json:"student_id"`
	OrderID       uint `json:"order_id"`
	LateByMinutes int  `json:"late_by_minutes"`
}

// PredictionFeedbackPayload 预测反馈任务载荷
type PredictionFeedbackPayload struct {
	VendorID          uint `json:"vendor_id"`
	QueueLength       int  `json:"queue_length"`
	ActualWaitMinutes int  `json:"actual_wait_minutes"`
	DayOfWeek         int  `json:"day_of_week"`
	Hour              int  `json:"hour"`
}

// NewPenaltyProcessTask 创建处罚任务
func NewPenaltyProcessTask(payload PenaltyProcessPayload) (*asynq.Task, error) {
	body, err := json.Marshal(payload)
	if err != nil {
		return nil, err
	}
	return asynq.NewTask(TaskPenaltyProcess, body), nil
}

// NewPredictionFeedbackTask 创建预测反馈任务
func NewPredictionFeedbackTask(payload PredictionFeedbackPayload) (*asynq.Task, error) {
	body, err := json.Marshal(payload)
	if err != nil {
		return nil, err
	}
	return asynq.NewTask(TaskPredictionFeedback, body), nil
}
