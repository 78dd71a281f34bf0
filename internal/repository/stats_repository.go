package repository

import (
	"time"

	"github.com/canteen-rush/internal/models"

	"gorm.io/gorm"
)

// VendorOverviewRow 档口运营统计原始结果
type VendorOverviewRow struct {
	OrdersTotal     int64
	CompletedOrders int64
	CancelledOrders int64
	ActiveOrders    int64
	LateOrders      int64
	AvgWaitMinutes  float64
}

// VendorRankingRow 平台档口排行原始行
type VendorRankingRow struct {
	VendorID        uint
	Name            string
	OrdersTotal     int64
	CompletedOrders int64
	LateOrders      int64
	CurrentLoad     int
	Capacity        int
}

// StatsRepository 运营统计聚合查询接口
// 说明：仅聚合统计数据，不承载业务规则。
type StatsRepository interface {
	GetVendorOverview(vendorID uint, startAt, endAt time.Time) (VendorOverviewRow, error)
	GetVendorRankings(startAt, endAt time.Time) ([]VendorRankingRow, error)
}

// GormStatsRepository GORM 统计实现
type GormStatsRepository struct {
	db *gorm.DB
}

// NewStatsRepository 创建统计仓库
func NewStatsRepository(db *gorm.DB) *GormStatsRepository {
	return &GormStatsRepository{db: db}
}

// GetVendorOverview 获取单档口统计
func (r *GormStatsRepository) GetVendorOverview(vendorID uint, startAt, endAt time.Time) (VendorOverviewRow, error) {
	result := VendorOverviewRow{}

	orderBase := func() *gorm.DB {
		return r.db.Model(&models.Order{}).
			Where("vendor_id = ? AND created_at >= ? AND created_at < ?", vendorID, startAt, endAt)
	}

	if err := orderBase().Count(&result.OrdersTotal).Error; err != nil {
		return result, err
	}
	if err := orderBase().Where("status = ?", models.OrderStatusCompleted).
		Count(&result.CompletedOrders).Error; err != nil {
		return result, err
	}
	if err := orderBase().Where("status = ?", models.OrderStatusCancelled).
		Count(&result.CancelledOrders).Error; err != nil {
		return result, err
	}
	if err := orderBase().Where("status IN ?", activeOrderStatuses).
		Count(&result.ActiveOrders).Error; err != nil {
		return result, err
	}
	if err := orderBase().Where("status = ? AND is_late = ?", models.OrderStatusCompleted, true).
		Count(&result.LateOrders).Error; err != nil {
		return result, err
	}

	var avgRow struct {
		AvgWait float64
	}
	if err := r.db.Model(&models.OrderHistory{}).
		Select("COALESCE(AVG(average_wait_time), 0) AS avg_wait").
		Where("vendor_id = ? AND created_at >= ? AND created_at < ?", vendorID, startAt, endAt).
		Scan(&avgRow).Error; err != nil {
		return result, err
	}
	result.AvgWaitMinutes = avgRow.AvgWait

	return result, nil
}

// GetVendorRankings 获取平台各档口统计（按订单量降序）
func (r *GormStatsRepository) GetVendorRankings(startAt, endAt time.Time) ([]VendorRankingRow, error) {
	var rows []VendorRankingRow
	err := r.db.Model(&models.Vendor{}).
		Select(`vendors.id AS vendor_id,
			vendors.name,
			COUNT(orders.id) AS orders_total,
			SUM(CASE WHEN orders.status = ? THEN 1 ELSE 0 END) AS completed_orders,
			SUM(CASE WHEN orders.status = ? AND orders.is_late THEN 1 ELSE 0 END) AS late_orders,
			vendors.current_load,
			vendors.capacity`,
			models.OrderStatusCompleted, models.OrderStatusCompleted).
		Joins("LEFT JOIN orders ON orders.vendor_id = vendors.id AND orders.created_at >= ? AND orders.created_at < ? AND orders.deleted_at IS NULL",
			startAt, endAt).
		Where("vendors.deleted_at IS NULL").
		Group("vendors.id, vendors.name, vendors.current_load, vendors.capacity").
		Order("orders_total DESC").
		Scan(&rows).Error
	if err != nil {
		return nil, err
	}
	return rows, nil
}
