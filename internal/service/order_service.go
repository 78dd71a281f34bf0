package service

import (
	"context"
	"errors"
	"time"

	"github.com/canteen-rush/internal/constants"
	"github.com/canteen-rush/internal/logger"
	"github.com/canteen-rush/internal/models"
	"github.com/canteen-rush/internal/prediction"
	"github.com/canteen-rush/internal/queue"
	"github.com/canteen-rush/internal/realtime"
	"github.com/canteen-rush/internal/repository"

	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

const orderTokenMaxRetries = 5

// OrderService 订单服务
type OrderService struct {
	orderRepo      repository.OrderRepository
	userRepo       repository.UserRepository
	vendorRepo     repository.VendorRepository
	foodItemRepo   repository.FoodItemRepository
	historyRepo    repository.OrderHistoryRepository
	penaltyService *PenaltyService
	queueClient    *queue.Client
	predictor      *prediction.Client
	publisher      *realtime.Publisher
}

// NewOrderService 创建订单服务
func NewOrderService(
	orderRepo repository.OrderRepository,
	userRepo repository.UserRepository,
	vendorRepo repository.VendorRepository,
	foodItemRepo repository.FoodItemRepository,
	historyRepo repository.OrderHistoryRepository,
	penaltyService *PenaltyService,
	queueClient *queue.Client,
	predictor *prediction.Client,
	publisher *realtime.Publisher,
) *OrderService {
	return &OrderService{
		orderRepo:      orderRepo,
		userRepo:       userRepo,
		vendorRepo:     vendorRepo,
		foodItemRepo:   foodItemRepo,
		historyRepo:    historyRepo,
		penaltyService: penaltyService,
		queueClient:    queueClient,
		predictor:      predictor,
		publisher:      publisher,
	}
}

// PlaceOrderInput 下单输入
type PlaceOrderInput struct {
	VendorID            uint
	Items               []PlaceOrderItem
	RequestedPickupTime *time.Time
}

// PlaceOrderItem 下单订单项输入
type PlaceOrderItem struct {
	FoodItemID uint
	Quantity   int
}

// PlaceOrder 学生下单
// 排队位次与预计等待在下单时刻快照，后续不随队列变化回算。
func (s *OrderService) PlaceOrder(ctx context.Context, studentID uint, input PlaceOrderInput) (*models.Order, error) {
	student, err := s.userRepo.GetByID(studentID)
	if err != nil {
		return nil, err
	}
	if student == nil {
		return nil, ErrUserNotFound
	}
	if student.IsBlocked {
		return nil, ErrStudentBlocked
	}

	vendor, err := s.vendorRepo.GetByID(input.VendorID)
	if err != nil {
		return nil, err
	}
	if vendor == nil {
		return nil, ErrVendorNotFound
	}
	if !vendor.IsOpen {
		return nil, ErrVendorClosed
	}

	items, total, err := s.buildOrderItems(vendor.ID, input.Items)
	if err != nil {
		return nil, err
	}

	now := time.Now()
	pickupTime := now.Add(constants.DefaultPickupOffsetMinutes * time.Minute)
	if input.RequestedPickupTime != nil && input.RequestedPickupTime.After(now) {
		pickupTime = *input.RequestedPickupTime
	}

	// 排队位次快照：当前活跃订单数 + 1
	activeCount, err := s.orderRepo.CountActiveByVendor(vendor.ID)
	if err != nil {
		logger.Errorw("order_queue_count_failed", "student_id", studentID, "vendor_id", vendor.ID, "error", err)
		return nil, ErrOrderCreateFailed
	}
	queuePosition := int(activeCount) + 1

	// 预测基础时长取订单项备餐时长合计，而不是档口平均值
	predictionItems := make([]prediction.InputItem, 0, len(items))
	for _, item := range items {
		predictionItems = append(predictionItems, prediction.InputItem{
			FoodItemID:   item.FoodItemID,
			Quantity:     item.Quantity,
			BasePrepTime: item.PrepSnapshot,
		})
	}
	predictionInput := prediction.Input{
		VendorID:            vendor.ID,
		OrderItems:          predictionItems,
		RequestedPickupTime: pickupTime,
		CurrentTime:         now,
		CurrentQueueLength:  int(activeCount),
	}
	estimate := prediction.FallbackEstimate(predictionInput)
	if s.predictor != nil {
		estimate = s.predictor.Predict(ctx, predictionInput)
	}

	order := &models.Order{
		StudentID:            studentID,
		VendorID:             vendor.ID,
		Status:               models.OrderStatusPlaced,
		TotalAmount:          models.NewMoneyFromDecimal(total),
		QueuePosition:        queuePosition,
		EstimatedWaitMinutes: estimate.WaitMinutes,
		RequestedPickupTime:  pickupTime,
		PredictedReadyTime:   estimate.ReadyTime,
		CreatedAt:            now,
		UpdatedAt:            now,
	}

	// 取餐码唯一索引冲突时重新生成再试
	for attempt := 0; attempt < orderTokenMaxRetries; attempt++ {
		order.ID = 0
		order.OrderToken = generateOrderToken()
		err = models.DB.Transaction(func(tx *gorm.DB) error {
			orderRepo := s.orderRepo.WithTx(tx)
			vendorRepo := s.vendorRepo.WithTx(tx)
			if err := orderRepo.Create(order, items); err != nil {
				return err
			}
			return vendorRepo.AdjustLoad(vendor.ID, 1)
		})
		if err == nil {
			break
		}
		if !errors.Is(err, gorm.ErrDuplicatedKey) {
			logger.Errorw("order_create_failed", "student_id", studentID, "vendor_id", vendor.ID, "error", err)
			return nil, ErrOrderCreateFailed
		}
	}
	if err != nil {
		logger.Errorw("order_token_exhausted", "student_id", studentID, "vendor_id", vendor.ID, "error", err)
		return nil, ErrOrderCreateFailed
	}
	order.Items = items

	if s.publisher != nil {
		s.publisher.ToVendor(ctx, vendor.ID, constants.EventOrderNew, order)
		s.publisher.ToVendor(ctx, vendor.ID, constants.EventQueueUpdate, map[string]interface{}{
			"vendor_id":    vendor.ID,
			"queue_length": queuePosition,
		})
	}

	return order, nil
}

// buildOrderItems 校验菜品并生成订单项（合并重复菜品，快照名称、价格与备餐时长）
func (s *OrderService) buildOrderItems(vendorID uint, inputs []PlaceOrderItem) ([]models.OrderItem, decimal.Decimal, error) {
	if len(inputs) == 0 {
		return nil, decimal.Zero, ErrInvalidOrderItem
	}

	merged := make([]PlaceOrderItem, 0, len(inputs))
	index := map[uint]int{}
	for _, item := range inputs {
		if item.FoodItemID == 0 || item.Quantity <= 0 {
			return nil, decimal.Zero, ErrInvalidOrderItem
		}
		if pos, ok := index[item.FoodItemID]; ok {
			merged[pos].Quantity += item.Quantity
			continue
		}
		index[item.FoodItemID] = len(merged)
		merged = append(merged, item)
	}

	ids := make([]uint, 0, len(merged))
	for _, item := range merged {
		ids = append(ids, item.FoodItemID)
	}
	foodItems, err := s.foodItemRepo.ListByIDs(ids)
	if err != nil {
		return nil, decimal.Zero, err
	}
	foodByID := make(map[uint]models.FoodItem, len(foodItems))
	for _, f := range foodItems {
		foodByID[f.ID] = f
	}

	orderItems := make([]models.OrderItem, 0, len(merged))
	total := decimal.Zero
	for _, item := range merged {
		food, ok := foodByID[item.FoodItemID]
		if !ok {
			return nil, decimal.Zero, ErrFoodItemNotFound
		}
		if food.VendorID != vendorID {
			return nil, decimal.Zero, ErrFoodItemNotOfVendor
		}
		if !food.IsAvailable {
			return nil, decimal.Zero, ErrFoodItemSoldOut
		}
		subtotal := food.Price.Decimal.Mul(decimal.NewFromInt(int64(item.Quantity)))
		orderItems = append(orderItems, models.OrderItem{
			FoodItemID:    food.ID,
			NameSnapshot:  food.Name,
			PriceSnapshot: food.Price,
			PrepSnapshot:  food.PreparationTime,
			Quantity:      item.Quantity,
			Subtotal:      models.NewMoneyFromDecimal(subtotal),
		})
		total = total.Add(subtotal)
	}
	return orderItems, total, nil
}

// GetOrderByToken 根据取餐码获取订单
func (s *OrderService) GetOrderByToken(token string) (*models.Order, error) {
	order, err := s.orderRepo.GetByToken(token)
	if err != nil {
		return nil, ErrOrderFetchFailed
	}
	if order == nil {
		return nil, ErrOrderNotFound
	}
	return order, nil
}

// ListStudentOrders 获取学生订单列表
func (s *OrderService) ListStudentOrders(filter repository.OrderListFilter) ([]models.Order, int64, error) {
	if filter.PageSize <= 0 {
		filter.PageSize = 20
	}
	return s.orderRepo.ListByStudent(filter)
}

// ListVendorOrders 获取档口订单列表
func (s *OrderService) ListVendorOrders(filter repository.OrderListFilter) ([]models.Order, int64, error) {
	if filter.PageSize <= 0 {
		filter.PageSize = 20
	}
	return s.orderRepo.ListByVendor(filter)
}

// ListActiveVendorOrders 获取档口当前排队订单（按下单先后）
func (s *OrderService) ListActiveVendorOrders(vendorID uint) ([]models.Order, error) {
	return s.orderRepo.ListActiveByVendor(vendorID)
}

// CancelOrderInput 取消订单输入
type CancelOrderInput struct {
	OrderToken string
	ActorID    uint
	ActorRole  string
	Reason     string
}

// CancelOrder 取消订单
// 学生只能取消自己处于 placed 状态的订单；档口与管理员可取消任意非终态订单。
func (s *OrderService) CancelOrder(ctx context.Context, input CancelOrderInput) (*models.Order, error) {
	order, err := s.orderRepo.GetByToken(input.OrderToken)
	if err != nil {
		return nil, ErrOrderFetchFailed
	}
	if order == nil {
		return nil, ErrOrderNotFound
	}
	if order.IsTerminal() {
		return nil, ErrOrderCancelNotAllowed
	}

	fromStatuses := []string{
		models.OrderStatusPlaced,
		models.OrderStatusAccepted,
		models.OrderStatusPreparing,
		models.OrderStatusReady,
	}
	if input.ActorRole == models.RoleStudent {
		if order.StudentID != input.ActorID {
			return nil, ErrOrderNotOwned
		}
		if order.Status != models.OrderStatusPlaced {
			return nil, ErrOrderCancelNotAllowed
		}
		fromStatuses = []string{models.OrderStatusPlaced}
	}

	now := time.Now()
	err = models.DB.Transaction(func(tx *gorm.DB) error {
		orderRepo := s.orderRepo.WithTx(tx)
		vendorRepo := s.vendorRepo.WithTx(tx)
		affected, err := orderRepo.UpdateStatusIf(order.ID, fromStatuses, models.OrderStatusCancelled, map[string]interface{}{
			"cancelled_at":  now,
			"cancel_reason": input.Reason,
			"updated_at":    now,
		})
		if err != nil {
			return ErrOrderUpdateFailed
		}
		if affected == 0 {
			return ErrOrderStatusConflict
		}
		// 状态守卫保证负载恰好回退一次
		return vendorRepo.AdjustLoad(order.VendorID, -1)
	})
	if err != nil {
		if errors.Is(err, ErrOrderStatusConflict) {
			return nil, ErrOrderStatusConflict
		}
		return nil, ErrOrderUpdateFailed
	}

	order.Status = models.OrderStatusCancelled
	order.CancelledAt = &now
	order.CancelReason = input.Reason
	order.UpdatedAt = now

	if s.publisher != nil {
		s.publisher.ToOrder(ctx, order.OrderToken, constants.EventOrderUpdate, order)
		s.publisher.ToVendor(ctx, order.VendorID, constants.EventOrderUpdate, order)
	}
	return order, nil
}
