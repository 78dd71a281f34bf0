package service

import (
	"context"
	"errors"
	"fmt"
	"testing"
	"time"

	"github.com/canteen-rush/internal/models"
	"github.com/canteen-rush/internal/prediction"
	"github.com/canteen-rush/internal/queue"
	"github.com/canteen-rush/internal/realtime"
	"github.com/canteen-rush/internal/repository"

	"github.com/glebarez/sqlite"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

func setupOrderServiceTest(t *testing.T) (*OrderService, *PenaltyService, *gorm.DB) {
	t.Helper()
	dsn := fmt.Sprintf("file:order_service_test_%d?mode=memory&cache=shared", time.Now().UnixNano())
	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{TranslateError: true})
	if err != nil {
		t.Fatalf("open sqlite failed: %v", err)
	}
	if err := db.AutoMigrate(
		&models.User{},
		&models.Vendor{},
		&models.FoodItem{},
		&models.Order{},
		&models.OrderItem{},
		&models.Penalty{},
		&models.OrderHistory{},
	); err != nil {
		t.Fatalf("auto migrate failed: %v", err)
	}
	models.DB = db

	orderRepo := repository.NewOrderRepository(db)
	userRepo := repository.NewUserRepository(db)
	vendorRepo := repository.NewVendorRepository(db)
	foodItemRepo := repository.NewFoodItemRepository(db)
	historyRepo := repository.NewOrderHistoryRepository(db)
	penaltyRepo := repository.NewPenaltyRepository(db)

	penaltySvc := NewPenaltyService(penaltyRepo, userRepo, realtime.NewPublisher(nil))
	queueClient, err := queue.NewClient(nil)
	if err != nil {
		t.Fatalf("create queue client failed: %v", err)
	}
	orderSvc := NewOrderService(
		orderRepo,
		userRepo,
		vendorRepo,
		foodItemRepo,
		historyRepo,
		penaltySvc,
		queueClient,
		prediction.NewNoop(),
		realtime.NewPublisher(nil),
	)
	return orderSvc, penaltySvc, db
}

func createTestStudent(t *testing.T, db *gorm.DB, email string) *models.User {
	t.Helper()
	user := &models.User{
		Name:         "测试学生",
		Email:        email,
		PasswordHash: "hash",
		Role:         models.RoleStudent,
		CreatedAt:    time.Now(),
		UpdatedAt:    time.Now(),
	}
	if err := db.Create(user).Error; err != nil {
		t.Fatalf("create student failed: %v", err)
	}
	return user
}

func createTestVendor(t *testing.T, db *gorm.DB, name string) *models.Vendor {
	t.Helper()
	vendor := &models.Vendor{
		Name:               name,
		Location:           "一楼",
		IsOpen:             true,
		Capacity:           20,
		AvgPreparationTime: 10,
	}
	if err := db.Create(vendor).Error; err != nil {
		t.Fatalf("create vendor failed: %v", err)
	}
	return vendor
}

func createTestFoodItem(t *testing.T, db *gorm.DB, vendorID uint, name string, price string) *models.FoodItem {
	t.Helper()
	return createTestFoodItemWithPrep(t, db, vendorID, name, price, 10)
}

func createTestFoodItemWithPrep(t *testing.T, db *gorm.DB, vendorID uint, name, price string, prepMinutes int) *models.FoodItem {
	t.Helper()
	amount, err := decimal.NewFromString(price)
	if err != nil {
		t.Fatalf("parse price failed: %v", err)
	}
	item := &models.FoodItem{
		VendorID:        vendorID,
		Name:            name,
		Price:           models.NewMoneyFromDecimal(amount),
		Category:        "主食",
		IsAvailable:     true,
		PreparationTime: prepMinutes,
	}
	if err := db.Create(item).Error; err != nil {
		t.Fatalf("create food item failed: %v", err)
	}
	return item
}

func mustPlaceOrder(t *testing.T, svc *OrderService, studentID uint, input PlaceOrderInput) *models.Order {
	t.Helper()
	order, err := svc.PlaceOrder(context.Background(), studentID, input)
	if err != nil {
		t.Fatalf("place order failed: %v", err)
	}
	return order
}

func TestPlaceOrderSnapshotsQueueAndTotal(t *testing.T) {
	svc, _, db := setupOrderServiceTest(t)
	student := createTestStudent(t, db, "s1@campus.edu")
	vendor := createTestVendor(t, db, "Christ Bakery")
	noodles := createTestFoodItem(t, db, vendor.ID, "牛肉面", "6.00")
	rice := createTestFoodItem(t, db, vendor.ID, "蛋炒饭", "3.50")

	// 已有两笔活跃订单占用队列
	other := createTestStudent(t, db, "s2@campus.edu")
	for i, status := range []string{models.OrderStatusPlaced, models.OrderStatusPreparing} {
		existing := &models.Order{
			OrderToken: fmt.Sprintf("EXIST%d", i),
			StudentID:  other.ID,
			VendorID:   vendor.ID,
			Status:     status,
		}
		if err := db.Create(existing).Error; err != nil {
			t.Fatalf("create existing order failed: %v", err)
		}
	}
	if err := db.Model(&models.Vendor{}).Where("id = ?", vendor.ID).Update("current_load", 2).Error; err != nil {
		t.Fatalf("seed vendor load failed: %v", err)
	}

	order := mustPlaceOrder(t, svc, student.ID, PlaceOrderInput{
		VendorID: vendor.ID,
		Items: []PlaceOrderItem{
			{FoodItemID: rice.ID, Quantity: 2},
			{FoodItemID: noodles.ID, Quantity: 1},
		},
	})

	if order.Status != models.OrderStatusPlaced {
		t.Fatalf("expected placed, got %s", order.Status)
	}
	if order.QueuePosition != 3 {
		t.Fatalf("expected queue position 3, got %d", order.QueuePosition)
	}
	// 回退公式基础时长取订单项合计：(10×2 + 10×1) × (1 + 0.2 × 2) = 42
	if order.EstimatedWaitMinutes != 42 {
		t.Fatalf("expected estimated wait 42, got %d", order.EstimatedWaitMinutes)
	}
	if order.TotalAmount.String() != "13.00" {
		t.Fatalf("expected total 13.00, got %s", order.TotalAmount.String())
	}
	if len(order.OrderToken) != 6 {
		t.Fatalf("expected 6-char token, got %q", order.OrderToken)
	}
	for _, c := range order.OrderToken {
		if !((c >= 'A' && c <= 'Z') || (c >= '0' && c <= '9')) {
			t.Fatalf("unexpected token char %q in %q", c, order.OrderToken)
		}
	}

	var reloaded models.Vendor
	if err := db.First(&reloaded, vendor.ID).Error; err != nil {
		t.Fatalf("reload vendor failed: %v", err)
	}
	if reloaded.CurrentLoad != 3 {
		t.Fatalf("expected vendor load 3, got %d", reloaded.CurrentLoad)
	}
}

func TestPlaceOrderFallbackUsesItemPrepSum(t *testing.T) {
	svc, _, db := setupOrderServiceTest(t)
	student := createTestStudent(t, db, "s1@campus.edu")
	// 档口平均备餐 10 分钟，但预估必须按订单项时长合计
	vendor := createTestVendor(t, db, "Mingos")
	quick := createTestFoodItemWithPrep(t, db, vendor.ID, "煎饼", "50.00", 5)
	soup := createTestFoodItemWithPrep(t, db, vendor.ID, "例汤", "30.00", 3)

	before := time.Now()
	order := mustPlaceOrder(t, svc, student.ID, PlaceOrderInput{
		VendorID: vendor.ID,
		Items: []PlaceOrderItem{
			{FoodItemID: quick.ID, Quantity: 2},
			{FoodItemID: soup.ID, Quantity: 1},
		},
	})

	// 空队列：ceil((5×2 + 3×1) × 1.0) = 13
	if order.EstimatedWaitMinutes != 13 {
		t.Fatalf("expected estimated wait 13, got %d", order.EstimatedWaitMinutes)
	}
	if order.QueuePosition != 1 {
		t.Fatalf("expected queue position 1, got %d", order.QueuePosition)
	}
	if order.TotalAmount.String() != "130.00" {
		t.Fatalf("expected total 130.00, got %s", order.TotalAmount.String())
	}

	// 预计出餐时刻 = 下单时刻 + 预估等待
	earliest := before.Add(13 * time.Minute)
	latest := time.Now().Add(13 * time.Minute)
	if order.PredictedReadyTime.Before(earliest) || order.PredictedReadyTime.After(latest) {
		t.Fatalf("predicted ready time %v outside [%v, %v]", order.PredictedReadyTime, earliest, latest)
	}

	// 订单项快照包含备餐时长
	for _, item := range order.Items {
		want := 5
		if item.FoodItemID == soup.ID {
			want = 3
		}
		if item.PrepSnapshot != want {
			t.Fatalf("item %d prep snapshot want %d got %d", item.FoodItemID, want, item.PrepSnapshot)
		}
	}
}

func TestPlaceOrderMergesDuplicateItems(t *testing.T) {
	svc, _, db := setupOrderServiceTest(t)
	student := createTestStudent(t, db, "s1@campus.edu")
	vendor := createTestVendor(t, db, "Freshataria")
	item := createTestFoodItem(t, db, vendor.ID, "沙拉", "5.00")

	order := mustPlaceOrder(t, svc, student.ID, PlaceOrderInput{
		VendorID: vendor.ID,
		Items: []PlaceOrderItem{
			{FoodItemID: item.ID, Quantity: 1},
			{FoodItemID: item.ID, Quantity: 2},
		},
	})

	if len(order.Items) != 1 {
		t.Fatalf("expected 1 merged item, got %d", len(order.Items))
	}
	if order.Items[0].Quantity != 3 {
		t.Fatalf("expected quantity 3, got %d", order.Items[0].Quantity)
	}
	if order.TotalAmount.String() != "15.00" {
		t.Fatalf("expected total 15.00, got %s", order.TotalAmount.String())
	}
}

func TestPlaceOrderRejectsBlockedStudent(t *testing.T) {
	svc, _, db := setupOrderServiceTest(t)
	student := createTestStudent(t, db, "blocked@campus.edu")
	if err := db.Model(&models.User{}).Where("id = ?", student.ID).Update("is_blocked", true).Error; err != nil {
		t.Fatalf("block student failed: %v", err)
	}
	vendor := createTestVendor(t, db, "Mingos")
	item := createTestFoodItem(t, db, vendor.ID, "汉堡", "8.00")

	_, err := svc.PlaceOrder(context.Background(), student.ID, PlaceOrderInput{
		VendorID: vendor.ID,
		Items:    []PlaceOrderItem{{FoodItemID: item.ID, Quantity: 1}},
	})
	if !errors.Is(err, ErrStudentBlocked) {
		t.Fatalf("expected ErrStudentBlocked, got %v", err)
	}
}

func TestPlaceOrderRejectsClosedVendor(t *testing.T) {
	svc, _, db := setupOrderServiceTest(t)
	student := createTestStudent(t, db, "s1@campus.edu")
	vendor := createTestVendor(t, db, "Mingos")
	if err := db.Model(&models.Vendor{}).Where("id = ?", vendor.ID).Update("is_open", false).Error; err != nil {
		t.Fatalf("close vendor failed: %v", err)
	}
	item := createTestFoodItem(t, db, vendor.ID, "汉堡", "8.00")

	_, err := svc.PlaceOrder(context.Background(), student.ID, PlaceOrderInput{
		VendorID: vendor.ID,
		Items:    []PlaceOrderItem{{FoodItemID: item.ID, Quantity: 1}},
	})
	if !errors.Is(err, ErrVendorClosed) {
		t.Fatalf("expected ErrVendorClosed, got %v", err)
	}
}

func TestPlaceOrderRejectsForeignFoodItem(t *testing.T) {
	svc, _, db := setupOrderServiceTest(t)
	student := createTestStudent(t, db, "s1@campus.edu")
	vendor := createTestVendor(t, db, "Christ Bakery")
	otherVendor := createTestVendor(t, db, "Freshataria")
	foreign := createTestFoodItem(t, db, otherVendor.ID, "沙拉", "5.00")

	_, err := svc.PlaceOrder(context.Background(), student.ID, PlaceOrderInput{
		VendorID: vendor.ID,
		Items:    []PlaceOrderItem{{FoodItemID: foreign.ID, Quantity: 1}},
	})
	if !errors.Is(err, ErrFoodItemNotOfVendor) {
		t.Fatalf("expected ErrFoodItemNotOfVendor, got %v", err)
	}
}

func TestOrderStatusHappyPath(t *testing.T) {
	svc, _, db := setupOrderServiceTest(t)
	ctx := context.Background()
	student := createTestStudent(t, db, "s1@campus.edu")
	vendor := createTestVendor(t, db, "Christ Bakery")
	item := createTestFoodItem(t, db, vendor.ID, "面包", "4.00")

	order := mustPlaceOrder(t, svc, student.ID, PlaceOrderInput{
		VendorID: vendor.ID,
		Items:    []PlaceOrderItem{{FoodItemID: item.ID, Quantity: 1}},
	})

	// 不允许跳级
	if _, err := svc.UpdateOrderStatus(ctx, order.OrderToken, models.OrderStatusReady, vendor.ID); !errors.Is(err, ErrOrderStatusInvalid) {
		t.Fatalf("expected ErrOrderStatusInvalid for placed->ready, got %v", err)
	}

	for _, target := range []string{models.OrderStatusAccepted, models.OrderStatusPreparing, models.OrderStatusReady} {
		updated, err := svc.UpdateOrderStatus(ctx, order.OrderToken, target, vendor.ID)
		if err != nil {
			t.Fatalf("transition to %s failed: %v", target, err)
		}
		if updated.Status != target {
			t.Fatalf("expected status %s, got %s", target, updated.Status)
		}
	}

	var ready models.Order
	if err := db.First(&ready, order.ID).Error; err != nil {
		t.Fatalf("reload order failed: %v", err)
	}
	if ready.ActualReadyTime == nil {
		t.Fatalf("expected actual_ready_time to be set on ready")
	}

	var historyCount int64
	if err := db.Model(&models.OrderHistory{}).Where("vendor_id = ?", vendor.ID).Count(&historyCount).Error; err != nil {
		t.Fatalf("count history failed: %v", err)
	}
	if historyCount != 1 {
		t.Fatalf("expected 1 history row, got %d", historyCount)
	}

	completed, err := svc.UpdateOrderStatus(ctx, order.OrderToken, models.OrderStatusCompleted, vendor.ID)
	if err != nil {
		t.Fatalf("complete order failed: %v", err)
	}
	if completed.CompletedAt == nil {
		t.Fatalf("expected completed_at to be set")
	}
	if completed.IsLate {
		t.Fatalf("immediate pickup should not be late")
	}

	var reloaded models.Vendor
	if err := db.First(&reloaded, vendor.ID).Error; err != nil {
		t.Fatalf("reload vendor failed: %v", err)
	}
	if reloaded.CurrentLoad != 0 {
		t.Fatalf("expected vendor load back to 0, got %d", reloaded.CurrentLoad)
	}

	// 终态拒绝继续流转
	if _, err := svc.UpdateOrderStatus(ctx, order.OrderToken, models.OrderStatusReady, vendor.ID); !errors.Is(err, ErrOrderStatusInvalid) {
		t.Fatalf("expected ErrOrderStatusInvalid on terminal order, got %v", err)
	}
}

func TestCompleteLateOrderIssuesPenalty(t *testing.T) {
	svc, _, db := setupOrderServiceTest(t)
	ctx := context.Background()
	student := createTestStudent(t, db, "late@campus.edu")
	vendor := createTestVendor(t, db, "Mingos")
	item := createTestFoodItem(t, db, vendor.ID, "汉堡", "8.00")

	order := mustPlaceOrder(t, svc, student.ID, PlaceOrderInput{
		VendorID: vendor.ID,
		Items:    []PlaceOrderItem{{FoodItemID: item.ID, Quantity: 1}},
	})
	for _, target := range []string{models.OrderStatusAccepted, models.OrderStatusPreparing, models.OrderStatusReady} {
		if _, err := svc.UpdateOrderStatus(ctx, order.OrderToken, target, vendor.ID); err != nil {
			t.Fatalf("transition to %s failed: %v", target, err)
		}
	}

	// 把出餐时间拨回 12 分钟前，模拟迟到取餐
	readyAt := time.Now().Add(-12 * time.Minute)
	if err := db.Model(&models.Order{}).Where("id = ?", order.ID).Update("actual_ready_time", readyAt).Error; err != nil {
		t.Fatalf("backdate ready time failed: %v", err)
	}

	completed, err := svc.UpdateOrderStatus(ctx, order.OrderToken, models.OrderStatusCompleted, vendor.ID)
	if err != nil {
		t.Fatalf("complete order failed: %v", err)
	}
	if !completed.IsLate {
		t.Fatalf("expected order to be late")
	}
	if completed.LateByMinutes < 11 || completed.LateByMinutes > 13 {
		t.Fatalf("unexpected late minutes: %d", completed.LateByMinutes)
	}

	// 队列未启用时处罚同步落库
	var penalties []models.Penalty
	if err := db.Where("student_id = ?", student.ID).Find(&penalties).Error; err != nil {
		t.Fatalf("load penalties failed: %v", err)
	}
	if len(penalties) != 1 {
		t.Fatalf("expected 1 penalty, got %d", len(penalties))
	}
	if penalties[0].Type != models.PenaltyTypeWarning || penalties[0].Points != 0 {
		t.Fatalf("first offense should be warning with 0 points, got %+v", penalties[0])
	}

	var reloaded models.User
	if err := db.First(&reloaded, student.ID).Error; err != nil {
		t.Fatalf("reload student failed: %v", err)
	}
	if reloaded.Warnings != 1 {
		t.Fatalf("expected 1 warning, got %d", reloaded.Warnings)
	}
	if reloaded.IsBlocked {
		t.Fatalf("single warning should not block")
	}
}

func TestCancelOrderRules(t *testing.T) {
	svc, _, db := setupOrderServiceTest(t)
	ctx := context.Background()
	student := createTestStudent(t, db, "s1@campus.edu")
	vendor := createTestVendor(t, db, "Freshataria")
	item := createTestFoodItem(t, db, vendor.ID, "沙拉", "5.00")

	order := mustPlaceOrder(t, svc, student.ID, PlaceOrderInput{
		VendorID: vendor.ID,
		Items:    []PlaceOrderItem{{FoodItemID: item.ID, Quantity: 1}},
	})

	cancelled, err := svc.CancelOrder(ctx, CancelOrderInput{
		OrderToken: order.OrderToken,
		ActorID:    student.ID,
		ActorRole:  models.RoleStudent,
		Reason:     "点错了",
	})
	if err != nil {
		t.Fatalf("student cancel placed order failed: %v", err)
	}
	if cancelled.Status != models.OrderStatusCancelled || cancelled.CancelledAt == nil {
		t.Fatalf("unexpected cancelled order: %+v", cancelled)
	}

	var reloaded models.Vendor
	if err := db.First(&reloaded, vendor.ID).Error; err != nil {
		t.Fatalf("reload vendor failed: %v", err)
	}
	if reloaded.CurrentLoad != 0 {
		t.Fatalf("expected vendor load 0 after cancel, got %d", reloaded.CurrentLoad)
	}

	// 终态订单不允许再取消
	if _, err := svc.CancelOrder(ctx, CancelOrderInput{
		OrderToken: order.OrderToken,
		ActorID:    student.ID,
		ActorRole:  models.RoleStudent,
	}); !errors.Is(err, ErrOrderCancelNotAllowed) {
		t.Fatalf("expected ErrOrderCancelNotAllowed, got %v", err)
	}

	// 已接单的订单学生不能取消，档口可以
	second := mustPlaceOrder(t, svc, student.ID, PlaceOrderInput{
		VendorID: vendor.ID,
		Items:    []PlaceOrderItem{{FoodItemID: item.ID, Quantity: 1}},
	})
	if _, err := svc.UpdateOrderStatus(ctx, second.OrderToken, models.OrderStatusAccepted, vendor.ID); err != nil {
		t.Fatalf("accept order failed: %v", err)
	}
	if _, err := svc.CancelOrder(ctx, CancelOrderInput{
		OrderToken: second.OrderToken,
		ActorID:    student.ID,
		ActorRole:  models.RoleStudent,
	}); !errors.Is(err, ErrOrderCancelNotAllowed) {
		t.Fatalf("expected ErrOrderCancelNotAllowed for accepted order, got %v", err)
	}
	if _, err := svc.CancelOrder(ctx, CancelOrderInput{
		OrderToken: second.OrderToken,
		ActorID:    0,
		ActorRole:  models.RoleVendor,
		Reason:     "备餐中断",
	}); err != nil {
		t.Fatalf("vendor cancel accepted order failed: %v", err)
	}
}

func TestGetStudentOrderOwnership(t *testing.T) {
	svc, _, db := setupOrderServiceTest(t)
	student := createTestStudent(t, db, "s1@campus.edu")
	other := createTestStudent(t, db, "s2@campus.edu")
	vendor := createTestVendor(t, db, "Mingos")
	item := createTestFoodItem(t, db, vendor.ID, "汉堡", "8.00")

	order := mustPlaceOrder(t, svc, student.ID, PlaceOrderInput{
		VendorID: vendor.ID,
		Items:    []PlaceOrderItem{{FoodItemID: item.ID, Quantity: 1}},
	})

	if _, err := svc.GetStudentOrder(order.OrderToken, other.ID); !errors.Is(err, ErrOrderNotOwned) {
		t.Fatalf("expected ErrOrderNotOwned, got %v", err)
	}
	got, err := svc.GetStudentOrder(order.OrderToken, student.ID)
	if err != nil {
		t.Fatalf("owner fetch failed: %v", err)
	}
	if got.ID != order.ID {
		t.Fatalf("unexpected order: %+v", got)
	}
}

func TestGenerateOrderTokenFormat(t *testing.T) {
	seen := map[string]bool{}
	for i := 0; i < 100; i++ {
		token := generateOrderToken()
		if len(token) != 6 {
			t.Fatalf("expected 6-char token, got %q", token)
		}
		for _, c := range token {
			if !((c >= 'A' && c <= 'Z') || (c >= '0' && c <= '9')) {
				t.Fatalf("unexpected char %q in token %q", c, token)
			}
		}
		seen[token] = true
	}
	if len(seen) < 90 {
		t.Fatalf("tokens look non-random: %d unique of 100", len(seen))
	}
}
