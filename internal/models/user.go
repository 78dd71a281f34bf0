package models

import (
	"time"

	"gorm.io/gorm"
)

// 用户角色
const (
	RoleStudent = "student"
	RoleVendor  = "vendor"
	RoleAdmin   = "admin"
)

// User 用户表（学生、档口账号、管理员共用）
type User struct {
	ID            uint           `gorm:"primarykey" json:"id"`                         // 主键
	Name          string         `gorm:"not null" json:"name"`                         // 姓名
	Email         string         `gorm:"uniqueIndex;not null" json:"email"`            // 邮箱
	PasswordHash  string         `gorm:"not null" json:"-"`                            // 密码哈希（不返回给前端）
	Role          string         `gorm:"index;not null;default:'student'" json:"role"` // 角色
	PenaltyPoints int            `gorm:"not null;default:0" json:"penalty_points"`     // 累计处罚积分
	Warnings      int            `gorm:"not null;default:0" json:"warnings"`           // 历史警告次数
	IsBlocked     bool           `gorm:"not null;default:false" json:"is_blocked"`     // 是否被封禁下单
	VendorID      *uint          `gorm:"index" json:"vendor_id,omitempty"`             // 档口账号关联的档口ID
	LastLoginAt   *time.Time     `json:"last_login_at"`                                // 最后登录时间
	CreatedAt     time.Time      `gorm:"index" json:"created_at"`                      // 创建时间
	UpdatedAt     time.Time      `gorm:"index" json:"updated_at"`                      // 更新时间
	DeletedAt     gorm.DeletedAt `gorm:"index" json:"-"`                               // 软删除时间
}

// TableName 指定表名
func (User) TableName() string {
	return "users"
}
