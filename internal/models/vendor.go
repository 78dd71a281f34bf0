package models

import (
	"time"

	"gorm.io/gorm"
)

// Vendor 档口表
type Vendor struct {
	ID                 uint           `gorm:"primarykey" json:"id"`                       // 主键
	Name               string         `gorm:"uniqueIndex;not null" json:"name"`           // 档口名称
	Description        string         `gorm:"type:text" json:"description"`               // 简介
	Location           string         `json:"location"`                                   // 位置
	IsOpen             bool           `gorm:"not null;default:true" json:"is_open"`       // 是否营业
	CurrentLoad        int            `gorm:"not null;default:0" json:"current_load"`     // 当前在制订单数
	Capacity           int            `gorm:"not null;default:20" json:"capacity"`        // 并发订单容量
	AvgPreparationTime int            `gorm:"not null;default:10" json:"avg_preparation_time"` // 平均备餐时长（分钟）
	Rating             float64        `gorm:"not null;default:0" json:"rating"`           // 评分
	CreatedAt          time.Time      `gorm:"index" json:"created_at"`                    // 创建时间
	UpdatedAt          time.Time      `gorm:"index" json:"updated_at"`                    // 更新时间
	DeletedAt          gorm.DeletedAt `gorm:"index" json:"-"`                             // 软删除时间
}

// TableName 指定表名
func (Vendor) TableName() string {
	return "vendors"
}

// CanAcceptOrder 当前负载是否低于容量（仅用于统计展示，不做下单准入）
func (v Vendor) CanAcceptOrder() bool {
	return v.CurrentLoad < v.Capacity
}
