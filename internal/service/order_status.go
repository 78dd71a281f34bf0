package service

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/canteen-rush/internal/constants"
	"github.com/canteen-rush/internal/logger"
	"github.com/canteen-rush/internal/models"
	"github.com/canteen-rush/internal/queue"

	"gorm.io/gorm"
)

// 订单状态机：严格线性推进，cancelled 由 CancelOrder 单独处理
var allowedTransitions = map[string]map[string]bool{
	models.OrderStatusPlaced: {
		models.OrderStatusAccepted: true,
	},
	models.OrderStatusAccepted: {
		models.OrderStatusPreparing: true,
	},
	models.OrderStatusPreparing: {
		models.OrderStatusReady: true,
	},
	models.OrderStatusReady: {
		models.OrderStatusCompleted: true,
	},
}

// UpdateOrderStatus 档口推进订单状态
// actorVendorID 不为 0 时校验订单归属；并发更新通过状态守卫检测，守卫失败不产生任何副作用。
func (s *OrderService) UpdateOrderStatus(ctx context.Context, orderToken, targetStatus string, actorVendorID uint) (*models.Order, error) {
	order, err := s.orderRepo.GetByToken(orderToken)
	if err != nil {
		return nil, ErrOrderFetchFailed
	}
	if order == nil {
		return nil, ErrOrderNotFound
	}
	if actorVendorID != 0 && order.VendorID != actorVendorID {
		return nil, ErrOrderNotOwned
	}

	target := strings.TrimSpace(targetStatus)
	if target == "" {
		return nil, ErrOrderStatusInvalid
	}
	if !allowedTransitions[order.Status][target] {
		return nil, ErrOrderStatusInvalid
	}

	switch target {
	case models.OrderStatusReady:
		return s.markOrderReady(ctx, order)
	case models.OrderStatusCompleted:
		return s.completeOrder(ctx, order)
	default:
		return s.advanceOrderStatus(ctx, order, target)
	}
}

// advanceOrderStatus 推进不带副作用的中间状态（accepted / preparing）
func (s *OrderService) advanceOrderStatus(ctx context.Context, order *models.Order, target string) (*models.Order, error) {
	now := time.Now()
	affected, err := s.orderRepo.UpdateStatusIf(order.ID, []string{order.Status}, target, map[string]interface{}{
		"updated_at": now,
	})
	if err != nil {
		return nil, ErrOrderUpdateFailed
	}
	if affected == 0 {
		return nil, ErrOrderStatusConflict
	}

	order.Status = target
	order.UpdatedAt = now
	s.publishOrderUpdate(ctx, order)
	return order, nil
}

// markOrderReady 出餐：落 actual_ready_time 并追加出餐历史
func (s *OrderService) markOrderReady(ctx context.Context, order *models.Order) (*models.Order, error) {
	now := time.Now()
	peakLoad, err := s.orderRepo.CountPreparingAndReadyByVendor(order.VendorID)
	if err != nil {
		return nil, ErrOrderUpdateFailed
	}
	waitMinutes := int(now.Sub(order.CreatedAt).Minutes())
	if waitMinutes < 0 {
		waitMinutes = 0
	}

	err = models.DB.Transaction(func(tx *gorm.DB) error {
		orderRepo := s.orderRepo.WithTx(tx)
		historyRepo := s.historyRepo.WithTx(tx)
		affected, err := orderRepo.UpdateStatusIf(order.ID, []string{models.OrderStatusPreparing}, models.OrderStatusReady, map[string]interface{}{
			"actual_ready_time": now,
			"updated_at":        now,
		})
		if err != nil {
			return ErrOrderUpdateFailed
		}
		if affected == 0 {
			return ErrOrderStatusConflict
		}
		return historyRepo.Append(&models.OrderHistory{
			VendorID:        order.VendorID,
			DayOfWeek:       int(now.Weekday()),
			Hour:            now.Hour(),
			OrderCount:      1,
			AverageWaitTime: waitMinutes,
			PeakLoad:        int(peakLoad),
			CreatedAt:       now,
		})
	})
	if err != nil {
		if errors.Is(err, ErrOrderStatusConflict) {
			return nil, ErrOrderStatusConflict
		}
		return nil, ErrOrderUpdateFailed
	}

	order.Status = models.OrderStatusReady
	order.ActualReadyTime = &now
	order.UpdatedAt = now

	if s.publisher != nil {
		s.publisher.ToStudent(ctx, order.StudentID, constants.EventOrderReady, order)
	}
	s.publishOrderUpdate(ctx, order)
	return order, nil
}

// completeOrder 完成取餐：回退档口负载、判定迟到并触发处罚
// 处罚与反馈只影响后台任务，失败不阻断订单完成。
func (s *OrderService) completeOrder(ctx context.Context, order *models.Order) (*models.Order, error) {
	now := time.Now()
	isLate := false
	lateByMinutes := 0
	if order.ActualReadyTime != nil {
		elapsed := int(now.Sub(*order.ActualReadyTime).Minutes())
		if elapsed > constants.PenaltyLateThresholdMinutes {
			isLate = true
			lateByMinutes = elapsed
		}
	}

	err := models.DB.Transaction(func(tx *gorm.DB) error {
		orderRepo := s.orderRepo.WithTx(tx)
		vendorRepo := s.vendorRepo.WithTx(tx)
		affected, err := orderRepo.UpdateStatusIf(order.ID, []string{models.OrderStatusReady}, models.OrderStatusCompleted, map[string]interface{}{
			"completed_at":    now,
			"is_late":         isLate,
			"late_by_minutes": lateByMinutes,
			"updated_at":      now,
		})
		if err != nil {
			return ErrOrderUpdateFailed
		}
		if affected == 0 {
			return ErrOrderStatusConflict
		}
		return vendorRepo.AdjustLoad(order.VendorID, -1)
	})
	if err != nil {
		if errors.Is(err, ErrOrderStatusConflict) {
			return nil, ErrOrderStatusConflict
		}
		return nil, ErrOrderUpdateFailed
	}

	order.Status = models.OrderStatusCompleted
	order.CompletedAt = &now
	order.IsLate = isLate
	order.LateByMinutes = lateByMinutes
	order.UpdatedAt = now

	if isLate {
		s.dispatchPenalty(ctx, order, lateByMinutes)
	}
	s.dispatchPredictionFeedback(order, now)
	s.publishOrderUpdate(ctx, order)
	return order, nil
}

// dispatchPenalty 下发迟到处罚，优先走队列，队列不可用时同步执行
func (s *OrderService) dispatchPenalty(ctx context.Context, order *models.Order, lateByMinutes int) {
	if s.queueClient.Enabled() {
		err := s.queueClient.EnqueuePenaltyProcess(queue.PenaltyProcessPayload{
			StudentID:     order.StudentID,
			OrderID:       order.ID,
			LateByMinutes: lateByMinutes,
		})
		if err == nil {
			return
		}
		logger.Warnw("penalty_enqueue_failed",
			"order_id", order.ID,
			"student_id", order.StudentID,
			"error", err,
		)
	}
	if s.penaltyService == nil {
		return
	}
	if _, err := s.penaltyService.EvaluateLatePickup(ctx, order.StudentID, order.ID, lateByMinutes); err != nil {
		logger.Warnw("penalty_evaluate_failed",
			"order_id", order.ID,
			"student_id", order.StudentID,
			"error", err,
		)
	}
}

// dispatchPredictionFeedback 上报实际等待时间给预测服务（尽力而为）
func (s *OrderService) dispatchPredictionFeedback(order *models.Order, completedAt time.Time) {
	if order.ActualReadyTime == nil {
		return
	}
	actualWait := int(order.ActualReadyTime.Sub(order.CreatedAt).Minutes())
	if actualWait < 0 {
		actualWait = 0
	}
	payload := queue.PredictionFeedbackPayload{
		VendorID:          order.VendorID,
		QueueLength:       order.QueuePosition - 1,
		ActualWaitMinutes: actualWait,
		DayOfWeek:         int(order.CreatedAt.Weekday()),
		Hour:              order.CreatedAt.Hour(),
	}
	if err := s.queueClient.EnqueuePredictionFeedback(payload); err != nil {
		logger.Warnw("prediction_feedback_enqueue_failed",
			"order_id", order.ID,
			"vendor_id", order.VendorID,
			"error", err,
		)
	}
}

// GetStudentOrder 学生查看自己的订单
func (s *OrderService) GetStudentOrder(token string, studentID uint) (*models.Order, error) {
	order, err := s.GetOrderByToken(token)
	if err != nil {
		return nil, err
	}
	if order.StudentID != studentID {
		return nil, ErrOrderNotOwned
	}
	return order, nil
}

func (s *OrderService) publishOrderUpdate(ctx context.Context, order *models.Order) {
	if s.publisher == nil {
		return
	}
	s.publisher.ToOrder(ctx, order.OrderToken, constants.EventOrderUpdate, order)
	s.publisher.ToVendor(ctx, order.VendorID, constants.EventOrderUpdate, order)
}
