package models

import (
	"time"

	"gorm.io/gorm"
)

// 订单状态
const (
	OrderStatusPlaced    = "placed"
	OrderStatusAccepted  = "accepted"
	OrderStatusPreparing = "preparing"
	OrderStatusReady     = "ready"
	OrderStatusCompleted = "completed"
	OrderStatusCancelled = "cancelled"
)

// Order 订单表
type Order struct {
	ID                   uint           `gorm:"primarykey" json:"id"`                                      // 主键
	OrderToken           string         `gorm:"uniqueIndex;not null;type:varchar(12)" json:"order_token"`  // 取餐码（6 位大写字母数字）
	StudentID            uint           `gorm:"index;not null" json:"student_id"`                          // 下单学生ID
	VendorID             uint           `gorm:"index;not null" json:"vendor_id"`                           // 档口ID
	Status               string         `gorm:"index;not null" json:"status"`                              // 订单状态
	TotalAmount          Money          `gorm:"type:decimal(20,2);not null;default:0" json:"total_amount"` // 订单金额
	QueuePosition        int            `gorm:"not null;default:0" json:"queue_position"`                  // 下单时的排队位次（快照，不回算）
	EstimatedWaitMinutes int            `gorm:"not null;default:0" json:"estimated_wait_minutes"`          // 预计等待（分钟）
	RequestedPickupTime  time.Time      `gorm:"index" json:"requested_pickup_time"`                        // 期望取餐时间
	PredictedReadyTime   time.Time      `gorm:"index" json:"predicted_ready_time"`                         // 预计出餐时间（下单时刻预测）
	ActualReadyTime      *time.Time     `gorm:"index" json:"actual_ready_time"`                            // 出餐时间
	CompletedAt          *time.Time     `gorm:"index" json:"completed_at"`                                 // 完成（取走）时间
	CancelledAt          *time.Time     `gorm:"index" json:"cancelled_at"`                                 // 取消时间
	CancelReason         string         `json:"cancel_reason,omitempty"`                                   // 取消原因
	IsLate               bool           `gorm:"not null;default:false" json:"is_late"`                     // 是否迟到取餐
	LateByMinutes        int            `gorm:"not null;default:0" json:"late_by_minutes"`                 // 迟到分钟数
	CreatedAt            time.Time      `gorm:"index" json:"created_at"`                                   // 创建时间
	UpdatedAt            time.Time      `gorm:"index" json:"updated_at"`                                   // 更新时间
	DeletedAt            gorm.DeletedAt `gorm:"index" json:"-"`                                            // 软删除时间

	Items []OrderItem `gorm:"foreignKey:OrderID" json:"items,omitempty"` // 订单项
}

// TableName 指定表名
func (Order) TableName() string {
	return "orders"
}

// IsTerminal 是否终态（终态订单拒绝一切状态变更）
func (o Order) IsTerminal() bool {
	return o.Status == OrderStatusCompleted || o.Status == OrderStatusCancelled
}
