package models

import "time"

// OrderHistory 出餐历史表（每笔出餐追加一行，供负载分析与预测服务训练使用）
type OrderHistory struct {
	ID              uint      `gorm:"primarykey" json:"id"`                     // 主键
	VendorID        uint      `gorm:"index;not null" json:"vendor_id"`          // 档口ID
	DayOfWeek       int       `gorm:"index;not null" json:"day_of_week"`        // 星期（0=周日）
	Hour            int       `gorm:"index;not null" json:"hour"`               // 小时（0-23）
	OrderCount      int       `gorm:"not null;default:1" json:"order_count"`    // 订单数（逐单记录，恒为 1）
	AverageWaitTime int       `gorm:"not null;default:0" json:"average_wait_time"` // 下单到出餐的等待（分钟）
	PeakLoad        int       `gorm:"not null;default:0" json:"peak_load"`      // 记录时该档口在制+待取订单数
	CreatedAt       time.Time `gorm:"index" json:"created_at"`                  // 创建时间
}

// TableName 指定表名
func (OrderHistory) TableName() string {
	return "order_histories"
}
