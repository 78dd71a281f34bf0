package models

import (
	"time"

	"gorm.io/gorm"
)

// FoodItem 菜品表
type FoodItem struct {
	ID              uint           `gorm:"primarykey" json:"id"`                            // 主键
	VendorID        uint           `gorm:"index;not null" json:"vendor_id"`                 // 所属档口ID
	Name            string         `gorm:"not null" json:"name"`                            // 菜品名称
	Description     string         `gorm:"type:text" json:"description"`                    // 描述
	Price           Money          `gorm:"type:decimal(20,2);not null;default:0" json:"price"` // 单价
	Category        string         `gorm:"index" json:"category"`                           // 分类
	IsAvailable     bool           `gorm:"not null;default:true" json:"is_available"`       // 是否可售
	PreparationTime int            `gorm:"not null;default:10" json:"preparation_time"`     // 备餐时长（分钟）
	ImageURL        string         `json:"image_url"`                                       // 图片地址
	CreatedAt       time.Time      `gorm:"index" json:"created_at"`                         // 创建时间
	UpdatedAt       time.Time      `gorm:"index" json:"updated_at"`                         // 更新时间
	DeletedAt       gorm.DeletedAt `gorm:"index" json:"-"`                                  // 软删除时间
}

// TableName 指定表名
func (FoodItem) TableName() string {
	return "food_items"
}
