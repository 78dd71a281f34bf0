package repository

import (
	"errors"

	"github.com/canteen-rush/internal/models"

	"gorm.io/gorm"
)

// 活跃订单状态（占用档口负载、计入排队）
var activeOrderStatuses = []string{
	models.OrderStatusPlaced,
	models.OrderStatusAccepted,
	models.OrderStatusPreparing,
}

// OrderRepository 订单数据访问接口
type OrderRepository interface {
	Create(order *models.Order, items []models.OrderItem) error
	GetByID(id uint) (*models.Order, error)
	GetByToken(token string) (*models.Order, error)
	CountActiveByVendor(vendorID uint) (int64, error)
	CountPreparingAndReadyByVendor(vendorID uint) (int64, error)
	ListByStudent(filter OrderListFilter) ([]models.Order, int64, error)
	ListByVendor(filter OrderListFilter) ([]models.Order, int64, error)
	ListActiveByVendor(vendorID uint) ([]models.Order, error)
	UpdateStatusIf(id uint, fromStatuses []string, toStatus string, updates map[string]interface{}) (int64, error)
	WithTx(tx *gorm.DB) *GormOrderRepository
}

// GormOrderRepository GORM 实现
type GormOrderRepository struct {
	db *gorm.DB
}

// NewOrderRepository 创建订单仓库
func NewOrderRepository(db *gorm.DB) *GormOrderRepository {
	return &GormOrderRepository{db: db}
}

// WithTx 绑定事务
func (r *GormOrderRepository) WithTx(tx *gorm.DB) *GormOrderRepository {
	if tx == nil {
		return r
	}
	return &GormOrderRepository{db: tx}
}

// Create 创建订单与订单项
func (r *GormOrderRepository) Create(order *models.Order, items []models.OrderItem) error {
	if err := r.db.Create(order).Error; err != nil {
		return err
	}
	for i := range items {
		items[i].OrderID = order.ID
	}
	if len(items) > 0 {
		if err := r.db.Create(&items).Error; err != nil {
			return err
		}
	}
	return nil
}

// GetByID 根据 ID 获取订单
func (r *GormOrderRepository) GetByID(id uint) (*models.Order, error) {
	var order models.Order
	if err := r.db.Preload("Items").First(&order, id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &order, nil
}

// GetByToken 根据取餐码获取订单
func (r *GormOrderRepository) GetByToken(token string) (*models.Order, error) {
	var order models.Order
	if err := r.db.Preload("Items").Where("order_token = ?", token).First(&order).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &order, nil
}

// CountActiveByVendor 统计档口当前活跃订单数（用于下单时的排队位次快照）
func (r *GormOrderRepository) CountActiveByVendor(vendorID uint) (int64, error) {
	var count int64
	err := r.db.Model(&models.Order{}).
		Where("vendor_id = ? AND status IN ?", vendorID, activeOrderStatuses).
		Count(&count).Error
	return count, err
}

// CountPreparingAndReadyByVendor 统计档口在制与待取订单数（出餐历史的峰值负载）
func (r *GormOrderRepository) CountPreparingAndReadyByVendor(vendorID uint) (int64, error) {
	var count int64
	err := r.db.Model(&models.Order{}).
		Where("vendor_id = ? AND status IN ?", vendorID,
			[]string{models.OrderStatusPreparing, models.OrderStatusReady}).
		Count(&count).Error
	return count, err
}

// ListByStudent 获取学生订单列表
func (r *GormOrderRepository) ListByStudent(filter OrderListFilter) ([]models.Order, int64, error) {
	var orders []models.Order
	query := r.db.Model(&models.Order{}).Where("student_id = ?", filter.StudentID)

	if filter.Status != "" {
		query = query.Where("status = ?", filter.Status)
	}

	var total int64
	if err := query.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	query = applyPagination(query, filter.Page, filter.PageSize)

	if err := query.Preload("Items").Order("id desc").Find(&orders).Error; err != nil {
		return nil, 0, err
	}
	return orders, total, nil
}

// ListByVendor 获取档口订单列表
func (r *GormOrderRepository) ListByVendor(filter OrderListFilter) ([]models.Order, int64, error) {
	var orders []models.Order
	query := r.db.Model(&models.Order{}).Where("vendor_id = ?", filter.VendorID)

	if filter.Status != "" {
		query = query.Where("status = ?", filter.Status)
	}
	if filter.OrderToken != "" {
		query = query.Where("order_token = ?", filter.OrderToken)
	}
	if filter.CreatedFrom != nil {
		query = query.Where("created_at >= ?", *filter.CreatedFrom)
	}
	if filter.CreatedTo != nil {
		query = query.Where("created_at <= ?", *filter.CreatedTo)
	}

	var total int64
	if err := query.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	query = applyPagination(query, filter.Page, filter.PageSize)

	if err := query.Preload("Items").Order("id desc").Find(&orders).Error; err != nil {
		return nil, 0, err
	}
	return orders, total, nil
}

// ListActiveByVendor 获取档口当前排队中的订单（按下单先后排序）
func (r *GormOrderRepository) ListActiveByVendor(vendorID uint) ([]models.Order, error) {
	var orders []models.Order
	if err := r.db.Preload("Items").
		Where("vendor_id = ? AND status IN ?", vendorID, activeOrderStatuses).
		Order("id asc").
		Find(&orders).Error; err != nil {
		return nil, err
	}
	return orders, nil
}

// UpdateStatusIf 带前置状态条件的状态更新，返回影响行数（0 表示状态已被并发修改）
func (r *GormOrderRepository) UpdateStatusIf(id uint, fromStatuses []string, toStatus string, updates map[string]interface{}) (int64, error) {
	if updates == nil {
		updates = map[string]interface{}{}
	}
	updates["status"] = toStatus
	result := r.db.Model(&models.Order{}).
		Where("id = ? AND status IN ?", id, fromStatuses).
		Updates(updates)
	return result.RowsAffected, result.Error
}
