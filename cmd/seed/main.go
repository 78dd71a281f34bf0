package main

import (
	"fmt"

	"github.com/canteen-rush/internal/config"
	"github.com/canteen-rush/internal/logger"
	"github.com/canteen-rush/internal/models"

	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"
)

// 演示数据种子程序，可重复执行，已存在的数据不会重复写入。
func main() {
	cfg := config.Load()
	logger.Init(cfg.Server.Mode, cfg.Log.ToLoggerOptions())
	stdLog := logger.StdLogger()

	if err := models.InitDB(cfg.Database.Driver, cfg.Database.DSN, models.DBPoolConfig{
		MaxOpenConns:           cfg.Database.Pool.MaxOpenConns,
		MaxIdleConns:           cfg.Database.Pool.MaxIdleConns,
		ConnMaxLifetimeSeconds: cfg.Database.Pool.ConnMaxLifetimeSeconds,
		ConnMaxIdleTimeSeconds: cfg.Database.Pool.ConnMaxIdleTimeSeconds,
	}); err != nil {
		stdLog.Fatalf("数据库初始化失败: %v", err)
	}

	if err := models.AutoMigrate(); err != nil {
		stdLog.Fatalf("数据库迁移失败: %v", err)
	}

	if err := models.InitDefaultAdmin(cfg.Admin.Email, cfg.Admin.Password); err != nil {
		stdLog.Fatalf("初始化默认管理员失败: %v", err)
	}

	db := models.DB

	vendors := []struct {
		vendor models.Vendor
		items  []models.FoodItem
	}{
		{
			vendor: models.Vendor{
				Name:               "一食堂麻辣烫",
				Description:        "自选食材，现烫现做",
				Location:           "第一食堂一层 3 号窗口",
				Capacity:           20,
				AvgPreparationTime: 8,
				IsOpen:             true,
			},
			items: []models.FoodItem{
				{Name: "招牌麻辣烫", Price: models.NewMoneyFromFloat(15.00), Category: "麻辣烫", PreparationTime: 8},
				{Name: "番茄汤底麻辣烫", Price: models.NewMoneyFromFloat(16.00), Category: "麻辣烫", PreparationTime: 8},
				{Name: "冰豆浆", Price: models.NewMoneyFromFloat(3.00), Category: "饮品", PreparationTime: 1},
			},
		},
		{
			vendor: models.Vendor{
				Name:               "二食堂盖浇饭",
				Description:        "大锅现炒，出餐快",
				Location:           "第二食堂二层 1 号窗口",
				Capacity:           30,
				AvgPreparationTime: 6,
				IsOpen:             true,
			},
			items: []models.FoodItem{
				{Name: "鱼香肉丝盖浇饭", Price: models.NewMoneyFromFloat(13.00), Category: "盖浇饭", PreparationTime: 6},
				{Name: "宫保鸡丁盖浇饭", Price: models.NewMoneyFromFloat(14.00), Category: "盖浇饭", PreparationTime: 6},
				{Name: "青椒土豆丝盖浇饭", Price: models.NewMoneyFromFloat(10.00), Category: "盖浇饭", PreparationTime: 5},
				{Name: "紫菜蛋花汤", Price: models.NewMoneyFromFloat(2.00), Category: "汤品", PreparationTime: 2},
			},
		},
		{
			vendor: models.Vendor{
				Name:               "清真牛肉面",
				Description:        "手工拉面，牛肉现切",
				Location:           "清真食堂 2 号窗口",
				Capacity:           15,
				AvgPreparationTime: 10,
				IsOpen:             true,
			},
			items: []models.FoodItem{
				{Name: "牛肉拉面", Price: models.NewMoneyFromFloat(12.00), Category: "面食", PreparationTime: 10},
				{Name: "牛肉炒面", Price: models.NewMoneyFromFloat(13.00), Category: "面食", PreparationTime: 12},
			},
		},
	}

	for _, entry := range vendors {
		vendor, err := ensureVendor(db, entry.vendor)
		if err != nil {
			stdLog.Fatalf("写入档口失败 %s: %v", entry.vendor.Name, err)
		}
		for _, item := range entry.items {
			item.VendorID = vendor.ID
			item.IsAvailable = true
			if err := ensureFoodItem(db, item); err != nil {
				stdLog.Fatalf("写入菜品失败 %s: %v", item.Name, err)
			}
		}
		if err := ensureVendorAccount(db, vendor); err != nil {
			stdLog.Fatalf("写入档口账号失败 %s: %v", vendor.Name, err)
		}
	}

	if err := ensureStudent(db, "张同学", "student@canteen.local", "student123"); err != nil {
		stdLog.Fatalf("写入学生账号失败: %v", err)
	}

	stdLog.Printf("种子数据写入完成")
}

func ensureVendor(db *gorm.DB, vendor models.Vendor) (models.Vendor, error) {
	var existing models.Vendor
	err := db.Where("name = ?", vendor.Name).First(&existing).Error
	if err == nil {
		return existing, nil
	}
	if err != gorm.ErrRecordNotFound {
		return models.Vendor{}, err
	}
	if err := db.Create(&vendor).Error; err != nil {
		return models.Vendor{}, err
	}
	return vendor, nil
}

func ensureFoodItem(db *gorm.DB, item models.FoodItem) error {
	var count int64
	if err := db.Model(&models.FoodItem{}).
		Where("vendor_id = ? AND name = ?", item.VendorID, item.Name).
		Count(&count).Error; err != nil {
		return err
	}
	if count > 0 {
		return nil
	}
	return db.Create(&item).Error
}

// ensureVendorAccount 为每个档口生成一个 vendor 角色登录账号，邮箱按档口ID派生。
func ensureVendorAccount(db *gorm.DB, vendor models.Vendor) error {
	email := vendorAccountEmail(vendor.ID)
	var count int64
	if err := db.Model(&models.User{}).Where("email = ?", email).Count(&count).Error; err != nil {
		return err
	}
	if count > 0 {
		return nil
	}
	hash, err := bcrypt.GenerateFromPassword([]byte("vendor123"), bcrypt.DefaultCost)
	if err != nil {
		return err
	}
	vendorID := vendor.ID
	return db.Create(&models.User{
		Name:         vendor.Name,
		Email:        email,
		PasswordHash: string(hash),
		Role:         models.RoleVendor,
		VendorID:     &vendorID,
	}).Error
}

func ensureStudent(db *gorm.DB, name, email, password string) error {
	var count int64
	if err := db.Model(&models.User{}).Where("email = ?", email).Count(&count).Error; err != nil {
		return err
	}
	if count > 0 {
		return nil
	}
	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return err
	}
	return db.Create(&models.User{
		Name:         name,
		Email:        email,
		PasswordHash: string(hash),
		Role:         models.RoleStudent,
	}).Error
}

func vendorAccountEmail(vendorID uint) string {
	return fmt.Sprintf("vendor%d@canteen.local", vendorID)
}
