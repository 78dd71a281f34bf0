package service

import (
	"context"
	"strings"
	"time"

	"github.com/canteen-rush/internal/cache"
	"github.com/canteen-rush/internal/logger"
	"github.com/canteen-rush/internal/models"
	"github.com/canteen-rush/internal/repository"
)

// VendorService 档口服务
type VendorService struct {
	vendorRepo repository.VendorRepository
	statsRepo  repository.StatsRepository
}

// NewVendorService 创建档口服务
func NewVendorService(vendorRepo repository.VendorRepository, statsRepo repository.StatsRepository) *VendorService {
	return &VendorService{
		vendorRepo: vendorRepo,
		statsRepo:  statsRepo,
	}
}

// VendorInput 档口创建/更新输入
type VendorInput struct {
	Name               string
	Description        string
	Location           string
	Capacity           int
	AvgPreparationTime int
}

// ListVendors 档口列表
func (s *VendorService) ListVendors(filter repository.VendorListFilter) ([]models.Vendor, int64, error) {
	if filter.PageSize <= 0 {
		filter.PageSize = 50
	}
	return s.vendorRepo.List(filter)
}

// GetVendor 获取档口详情
func (s *VendorService) GetVendor(id uint) (*models.Vendor, error) {
	vendor, err := s.vendorRepo.GetByID(id)
	if err != nil {
		return nil, err
	}
	if vendor == nil {
		return nil, ErrVendorNotFound
	}
	return vendor, nil
}

// CreateVendor 创建档口
func (s *VendorService) CreateVendor(input VendorInput) (*models.Vendor, error) {
	name := strings.TrimSpace(input.Name)
	if name == "" {
		return nil, ErrInvalidInput
	}
	exist, err := s.vendorRepo.GetByName(name)
	if err != nil {
		return nil, err
	}
	if exist != nil {
		return nil, ErrVendorNameExists
	}

	capacity := input.Capacity
	if capacity <= 0 {
		capacity = 20
	}
	avgPrep := input.AvgPreparationTime
	if avgPrep <= 0 {
		avgPrep = 10
	}
	vendor := &models.Vendor{
		Name:               name,
		Description:        strings.TrimSpace(input.Description),
		Location:           strings.TrimSpace(input.Location),
		IsOpen:             true,
		Capacity:           capacity,
		AvgPreparationTime: avgPrep,
	}
	if err := s.vendorRepo.Create(vendor); err != nil {
		return nil, err
	}
	return vendor, nil
}

// UpdateVendor 更新档口
func (s *VendorService) UpdateVendor(id uint, input VendorInput) (*models.Vendor, error) {
	vendor, err := s.GetVendor(id)
	if err != nil {
		return nil, err
	}

	if name := strings.TrimSpace(input.Name); name != "" && name != vendor.Name {
		exist, err := s.vendorRepo.GetByName(name)
		if err != nil {
			return nil, err
		}
		if exist != nil && exist.ID != id {
			return nil, ErrVendorNameExists
		}
		vendor.Name = name
	}
	if desc := strings.TrimSpace(input.Description); desc != "" {
		vendor.Description = desc
	}
	if loc := strings.TrimSpace(input.Location); loc != "" {
		vendor.Location = loc
	}
	if input.Capacity > 0 {
		vendor.Capacity = input.Capacity
	}
	if input.AvgPreparationTime > 0 {
		vendor.AvgPreparationTime = input.AvgPreparationTime
	}

	if err := s.vendorRepo.Update(vendor); err != nil {
		return nil, err
	}
	return vendor, nil
}

// DeleteVendor 删除档口
func (s *VendorService) DeleteVendor(id uint) error {
	vendor, err := s.GetVendor(id)
	if err != nil {
		return err
	}
	return s.vendorRepo.Delete(vendor.ID)
}

// SetOpen 设置营业状态
func (s *VendorService) SetOpen(id uint, open bool) (*models.Vendor, error) {
	vendor, err := s.GetVendor(id)
	if err != nil {
		return nil, err
	}
	if err := s.vendorRepo.SetOpen(id, open); err != nil {
		return nil, err
	}
	vendor.IsOpen = open
	return vendor, nil
}

// VendorStats 档口运营统计
type VendorStats struct {
	VendorID        uint    `json:"vendor_id"`
	Name            string  `json:"name"`
	IsOpen          bool    `json:"is_open"`
	CurrentLoad     int     `json:"current_load"`
	Capacity        int     `json:"capacity"`
	CanAcceptOrder  bool    `json:"can_accept_order"`
	Utilization     float64 `json:"utilization"`
	OrdersTotal     int64   `json:"orders_total"`
	ActiveOrders    int64   `json:"active_orders"`
	CompletedOrders int64   `json:"completed_orders"`
	CancelledOrders int64   `json:"cancelled_orders"`
	OnTimeRate      float64 `json:"on_time_rate"`
	AvgWaitMinutes  float64 `json:"avg_wait_minutes"`
}

// GetVendorStats 获取档口统计（近 7 天，短 TTL 缓存）
func (s *VendorService) GetVendorStats(ctx context.Context, vendorID uint) (*VendorStats, error) {
	cacheKey := cache.VendorStatsKey(vendorID)
	var cached VendorStats
	if hit, err := cache.GetJSON(ctx, cacheKey, &cached); err == nil && hit {
		return &cached, nil
	}

	vendor, err := s.GetVendor(vendorID)
	if err != nil {
		return nil, err
	}

	endAt := time.Now()
	startAt := endAt.AddDate(0, 0, -7)
	row, err := s.statsRepo.GetVendorOverview(vendorID, startAt, endAt)
	if err != nil {
		return nil, err
	}

	stats := &VendorStats{
		VendorID:        vendor.ID,
		Name:            vendor.Name,
		IsOpen:          vendor.IsOpen,
		CurrentLoad:     vendor.CurrentLoad,
		Capacity:        vendor.Capacity,
		CanAcceptOrder:  vendor.CanAcceptOrder(),
		Utilization:     utilization(vendor.CurrentLoad, vendor.Capacity),
		OrdersTotal:     row.OrdersTotal,
		ActiveOrders:    row.ActiveOrders,
		CompletedOrders: row.CompletedOrders,
		CancelledOrders: row.CancelledOrders,
		OnTimeRate:      onTimeRate(row.CompletedOrders, row.LateOrders),
		AvgWaitMinutes:  row.AvgWaitMinutes,
	}

	if err := cache.SetJSON(ctx, cacheKey, stats, cache.VendorStatsTTL); err != nil {
		logger.Warnw("vendor_stats_cache_write_failed", "vendor_id", vendorID, "error", err)
	}
	return stats, nil
}

// utilization 负载利用率（百分比）
func utilization(currentLoad, capacity int) float64 {
	if capacity <= 0 {
		return 0
	}
	return float64(currentLoad) / float64(capacity) * 100
}

// onTimeRate 按时取餐率（百分比）
func onTimeRate(completed, late int64) float64 {
	if completed <= 0 {
		return 100
	}
	return float64(completed-late) / float64(completed) * 100
}
