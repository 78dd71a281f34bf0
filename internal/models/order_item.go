package models

import (
	"time"

	"gorm.io/gorm"
)

// OrderItem 订单项表
type OrderItem struct {
	ID            uint           `gorm:"primarykey" json:"id"`                                       // 主键
	OrderID       uint           `gorm:"index;not null" json:"order_id"`                             // 订单ID
	FoodItemID    uint           `gorm:"index;not null" json:"food_item_id"`                         // 菜品ID
	NameSnapshot  string         `gorm:"not null" json:"name"`                                       // 菜品名称快照
	PriceSnapshot Money          `gorm:"type:decimal(20,2);not null;default:0" json:"price"`         // 单价快照
	PrepSnapshot  int            `gorm:"not null;default:0" json:"preparation_time"`                 // 备餐时长快照（分钟）
	Quantity      int            `gorm:"not null" json:"quantity"`                                   // 数量
	Subtotal      Money          `gorm:"type:decimal(20,2);not null;default:0" json:"subtotal"`      // 小计
	CreatedAt     time.Time      `gorm:"index" json:"created_at"`                                    // 创建时间
	UpdatedAt     time.Time      `gorm:"index" json:"updated_at"`                                    // 更新时间
	DeletedAt     gorm.DeletedAt `gorm:"index" json:"-"`                                             // 软删除时间
}

// TableName 指定表名
func (OrderItem) TableName() string {
	return "order_items"
}
