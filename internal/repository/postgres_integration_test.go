//go:build integration
// +build integration

package repository

import (
	"os"
	"strings"
	"testing"

	"github.com/canteen-rush/internal/models"

	"gorm.io/driver/postgres"
	"gorm.io/gorm"
)

// setupPostgresIntegrationDB 初始化 PostgreSQL 集成测试数据库。
func setupPostgresIntegrationDB(t *testing.T) *gorm.DB {
	t.Helper()

	dsn := strings.TrimSpace(os.Getenv("TEST_POSTGRES_DSN"))
	if dsn == "" {
		t.Skip("skip postgres integration test: TEST_POSTGRES_DSN is empty")
	}

	db, err := gorm.Open(postgres.Open(dsn), &gorm.Config{TranslateError: true})
	if err != nil {
		t.Fatalf("open postgres failed: %v", err)
	}

	cleanupModels := []interface{}{
		&models.OrderItem{},
		&models.Order{},
		&models.FoodItem{},
		&models.Vendor{},
		&models.User{},
	}
	_ = db.Migrator().DropTable(cleanupModels...)

	if err := db.AutoMigrate(
		&models.User{},
		&models.Vendor{},
		&models.FoodItem{},
		&models.Order{},
		&models.OrderItem{},
	); err != nil {
		t.Fatalf("migrate postgres models failed: %v", err)
	}

	t.Cleanup(func() {
		_ = db.Migrator().DropTable(cleanupModels...)
		sqlDB, err := db.DB()
		if err == nil {
			_ = sqlDB.Close()
		}
	})

	return db
}

// postgres 的关键字搜索走 ILIKE，验证大小写不敏感匹配在真实库上的行为。
func TestPostgresKeywordSearchRepositories(t *testing.T) {
	db := setupPostgresIntegrationDB(t)

	vendorRepo := NewVendorRepository(db)
	vendor := &models.Vendor{
		Name:               "Noodle House",
		Location:           "Canteen Building A",
		Capacity:           20,
		AvgPreparationTime: 10,
		IsOpen:             true,
	}
	if err := vendorRepo.Create(vendor); err != nil {
		t.Fatalf("create vendor failed: %v", err)
	}

	vendors, total, err := vendorRepo.List(VendorListFilter{Search: "noodle"})
	if err != nil {
		t.Fatalf("list vendors failed: %v", err)
	}
	if total != 1 || len(vendors) != 1 {
		t.Fatalf("vendor search want 1 hit got total=%d len=%d", total, len(vendors))
	}

	foodRepo := NewFoodItemRepository(db)
	item := &models.FoodItem{
		VendorID:        vendor.ID,
		Name:            "Beef Noodles",
		Description:     "hand pulled",
		Price:           models.NewMoneyFromFloat(12),
		Category:        "noodles",
		IsAvailable:     true,
		PreparationTime: 10,
	}
	if err := foodRepo.Create(item); err != nil {
		t.Fatalf("create food item failed: %v", err)
	}

	items, total, err := foodRepo.List(FoodItemListFilter{VendorID: vendor.ID, Search: "BEEF"})
	if err != nil {
		t.Fatalf("list food items failed: %v", err)
	}
	if total != 1 || len(items) != 1 {
		t.Fatalf("food search want 1 hit got total=%d len=%d", total, len(items))
	}
}

// 条件更新在 postgres 上同样只允许单一来源状态命中一行。
func TestPostgresUpdateStatusIf(t *testing.T) {
	db := setupPostgresIntegrationDB(t)

	orderRepo := NewOrderRepository(db)
	order := &models.Order{
		OrderToken:    "PGT001",
		StudentID:     1,
		VendorID:      1,
		Status:        models.OrderStatusPlaced,
		TotalAmount:   models.NewMoneyFromFloat(12),
		QueuePosition: 1,
	}
	if err := orderRepo.Create(order, []models.OrderItem{{
		FoodItemID:    1,
		NameSnapshot:  "Beef Noodles",
		PriceSnapshot: models.NewMoneyFromFloat(12),
		Quantity:      1,
		Subtotal:      models.NewMoneyFromFloat(12),
	}}); err != nil {
		t.Fatalf("create order failed: %v", err)
	}

	rows, err := orderRepo.UpdateStatusIf(order.ID, []string{models.OrderStatusPlaced}, models.OrderStatusAccepted, nil)
	if err != nil {
		t.Fatalf("update status failed: %v", err)
	}
	if rows != 1 {
		t.Fatalf("rows affected want 1 got %d", rows)
	}

	rows, err = orderRepo.UpdateStatusIf(order.ID, []string{models.OrderStatusPlaced}, models.OrderStatusAccepted, nil)
	if err != nil {
		t.Fatalf("second update failed: %v", err)
	}
	if rows != 0 {
		t.Fatalf("stale transition rows want 0 got %d", rows)
	}
}
