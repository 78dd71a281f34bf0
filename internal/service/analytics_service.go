package service

import (
	"time"

	"github.com/canteen-rush/internal/repository"
)

// AnalyticsService 平台分析服务（管理端）
type AnalyticsService struct {
	statsRepo   repository.StatsRepository
	historyRepo repository.OrderHistoryRepository
}

// NewAnalyticsService 创建分析服务
func NewAnalyticsService(statsRepo repository.StatsRepository, historyRepo repository.OrderHistoryRepository) *AnalyticsService {
	return &AnalyticsService{
		statsRepo:   statsRepo,
		historyRepo: historyRepo,
	}
}

// VendorAnalytics 单档口分析结果
type VendorAnalytics struct {
	VendorID        uint    `json:"vendor_id"`
	Name            string  `json:"name"`
	OrdersTotal     int64   `json:"orders_total"`
	CompletedOrders int64   `json:"completed_orders"`
	OnTimeRate      float64 `json:"on_time_rate"`
	Utilization     float64 `json:"utilization"`
}

// BusyHour 繁忙时段
type BusyHour struct {
	DayOfWeek   int     `json:"day_of_week"`
	Hour        int     `json:"hour"`
	OrderCount  int64   `json:"order_count"`
	AvgWaitTime float64 `json:"avg_wait_time"`
	AvgPeakLoad float64 `json:"avg_peak_load"`
}

// PlatformAnalytics 平台分析结果
type PlatformAnalytics struct {
	Days       int               `json:"days"`
	Vendors    []VendorAnalytics `json:"vendors"`
	BusyHours  []BusyHour        `json:"busy_hours"`
	GeneratedAt time.Time        `json:"generated_at"`
}

// GetPlatformAnalytics 获取平台分析（近 N 天各档口订单量、按时率、利用率、繁忙时段）
func (s *AnalyticsService) GetPlatformAnalytics(days int) (*PlatformAnalytics, error) {
	if days <= 0 {
		days = 7
	}
	endAt := time.Now()
	startAt := endAt.AddDate(0, 0, -days)

	rankings, err := s.statsRepo.GetVendorRankings(startAt, endAt)
	if err != nil {
		return nil, err
	}

	vendors := make([]VendorAnalytics, 0, len(rankings))
	for _, row := range rankings {
		vendors = append(vendors, VendorAnalytics{
			VendorID:        row.VendorID,
			Name:            row.Name,
			OrdersTotal:     row.OrdersTotal,
			CompletedOrders: row.CompletedOrders,
			OnTimeRate:      onTimeRate(row.CompletedOrders, row.LateOrders),
			Utilization:     utilization(row.CurrentLoad, row.Capacity),
		})
	}

	busyRows, err := s.historyRepo.BusiestHours(0, 10)
	if err != nil {
		return nil, err
	}
	busyHours := make([]BusyHour, 0, len(busyRows))
	for _, row := range busyRows {
		busyHours = append(busyHours, BusyHour{
			DayOfWeek:   row.DayOfWeek,
			Hour:        row.Hour,
			OrderCount:  row.OrderCount,
			AvgWaitTime: row.AvgWaitTime,
			AvgPeakLoad: row.AvgPeakLoad,
		})
	}

	return &PlatformAnalytics{
		Days:        days,
		Vendors:     vendors,
		BusyHours:   busyHours,
		GeneratedAt: endAt,
	}, nil
}

// GetVendorBusyHours 获取单档口繁忙时段
func (s *AnalyticsService) GetVendorBusyHours(vendorID uint, limit int) ([]BusyHour, error) {
	rows, err := s.historyRepo.BusiestHours(vendorID, limit)
	if err != nil {
		return nil, err
	}
	result := make([]BusyHour, 0, len(rows))
	for _, row := range rows {
		result = append(result, BusyHour{
			DayOfWeek:   row.DayOfWeek,
			Hour:        row.Hour,
			OrderCount:  row.OrderCount,
			AvgWaitTime: row.AvgWaitTime,
			AvgPeakLoad: row.AvgPeakLoad,
		})
	}
	return result, nil
}
