package models

import (
	"time"

	"gorm.io/gorm"
)

// 处罚类型
const (
	PenaltyTypeWarning = "warning"
	PenaltyTypePoints  = "points"
	PenaltyTypeBlock   = "block"
)

// Penalty 处罚记录表
type Penalty struct {
	ID        uint           `gorm:"primarykey" json:"id"`                      // 主键
	StudentID uint           `gorm:"index;not null" json:"student_id"`          // 学生ID
	OrderID   uint           `gorm:"index;not null" json:"order_id"`            // 关联订单ID
	Type      string         `gorm:"not null" json:"type"`                      // 处罚类型（warning/points/block）
	Points    int            `gorm:"not null;default:0" json:"points"`          // 本次扣分
	Reason    string         `json:"reason"`                                    // 处罚原因
	IsCleared bool           `gorm:"not null;default:false" json:"is_cleared"`  // 是否已被管理员撤销
	CreatedAt time.Time      `gorm:"index" json:"created_at"`                   // 创建时间
	UpdatedAt time.Time      `gorm:"index" json:"updated_at"`                   // 更新时间
	DeletedAt gorm.DeletedAt `gorm:"index" json:"-"`                            // 软删除时间
}

// TableName 指定表名
func (Penalty) TableName() string {
	return "penalties"
}
