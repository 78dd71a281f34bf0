package repository

import (
	"github.com/canteen-rush/internal/models"

	"gorm.io/gorm"
)

// HistoryBusyHourRow 出餐历史按时段聚合原始行
type HistoryBusyHourRow struct {
	DayOfWeek   int
	Hour        int
	OrderCount  int64
	AvgWaitTime float64
	AvgPeakLoad float64
}

// OrderHistoryRepository 出餐历史数据访问接口
// 说明：仅做追加与聚合统计，不承载业务规则。
type OrderHistoryRepository interface {
	Append(history *models.OrderHistory) error
	ListByVendor(vendorID uint, limit int) ([]models.OrderHistory, error)
	BusiestHours(vendorID uint, limit int) ([]HistoryBusyHourRow, error)
	WithTx(tx *gorm.DB) *GormOrderHistoryRepository
}

// GormOrderHistoryRepository GORM 实现
type GormOrderHistoryRepository struct {
	db *gorm.DB
}

// NewOrderHistoryRepository 创建出餐历史仓库
func NewOrderHistoryRepository(db *gorm.DB) *GormOrderHistoryRepository {
	return &GormOrderHistoryRepository{db: db}
}

// WithTx 绑定事务
func (r *GormOrderHistoryRepository) WithTx(tx *gorm.DB) *GormOrderHistoryRepository {
	if tx == nil {
		return r
	}
	return &GormOrderHistoryRepository{db: tx}
}

// Append 追加一条出餐记录
func (r *GormOrderHistoryRepository) Append(history *models.OrderHistory) error {
	return r.db.Create(history).Error
}

// ListByVendor 获取档口最近的出餐记录
func (r *GormOrderHistoryRepository) ListByVendor(vendorID uint, limit int) ([]models.OrderHistory, error) {
	if limit <= 0 {
		limit = 100
	}
	var rows []models.OrderHistory
	if err := r.db.Where("vendor_id = ?", vendorID).
		Order("id desc").
		Limit(limit).
		Find(&rows).Error; err != nil {
		return nil, err
	}
	return rows, nil
}

// BusiestHours 按星期+小时聚合出餐量，按订单量降序
func (r *GormOrderHistoryRepository) BusiestHours(vendorID uint, limit int) ([]HistoryBusyHourRow, error) {
	if limit <= 0 {
		limit = 5
	}
	query := r.db.Model(&models.OrderHistory{}).
		Select("day_of_week, hour, SUM(order_count) AS order_count, AVG(average_wait_time) AS avg_wait_time, AVG(peak_load) AS avg_peak_load").
		Group("day_of_week, hour").
		Order("order_count DESC").
		Limit(limit)
	if vendorID != 0 {
		query = query.Where("vendor_id = ?", vendorID)
	}

	var rows []HistoryBusyHourRow
	if err := query.Scan(&rows).Error; err != nil {
		return nil, err
	}
	return rows, nil
}
