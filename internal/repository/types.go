package repository

import "time"

// OrderListFilter 查询订单列表的过滤条件
type OrderListFilter struct {
	Page        int
	PageSize    int
	StudentID   uint
	VendorID    uint
	Status      string
	OrderToken  string
	CreatedFrom *time.Time
	CreatedTo   *time.Time
}

// PenaltyListFilter 查询处罚记录列表的过滤条件
type PenaltyListFilter struct {
	Page        int
	PageSize    int
	StudentID   uint
	Type        string
	OnlyActive  bool
	CreatedFrom *time.Time
	CreatedTo   *time.Time
}

// UserListFilter 查询用户列表的过滤条件
type UserListFilter struct {
	Page        int
	PageSize    int
	Keyword     string
	Role        string
	BlockedOnly bool
}

// FoodItemListFilter 查询菜品列表的过滤条件
type FoodItemListFilter struct {
	Page          int
	PageSize      int
	VendorID      uint
	Category      string
	Search        string
	OnlyAvailable bool
}

// VendorListFilter 查询档口列表的过滤条件
type VendorListFilter struct {
	Page     int
	PageSize int
	Search   string
	OnlyOpen bool
}
