package service

import "errors"

// 通用错误
var (
	ErrNotFound     = errors.New("记录不存在")
	ErrInvalidInput = errors.New("参数无效")
)

// 认证错误
var (
	ErrEmailExists        = errors.New("邮箱已被注册")
	ErrInvalidCredentials = errors.New("邮箱或密码错误")
	ErrInvalidEmail       = errors.New("邮箱格式无效")
	ErrPasswordTooWeak    = errors.New("密码不符合强度要求")
	ErrInvalidToken       = errors.New("无效的 token")
)

// 订单错误
var (
	ErrOrderNotFound         = errors.New("订单不存在")
	ErrOrderFetchFailed      = errors.New("订单查询失败")
	ErrOrderCreateFailed     = errors.New("订单创建失败")
	ErrOrderUpdateFailed     = errors.New("订单更新失败")
	ErrOrderStatusInvalid    = errors.New("订单状态不允许该操作")
	ErrOrderStatusConflict   = errors.New("订单状态已被并发修改")
	ErrOrderCancelNotAllowed = errors.New("当前状态不允许取消订单")
	ErrOrderNotOwned         = errors.New("无权操作该订单")
	ErrInvalidOrderItem      = errors.New("订单项无效")
	ErrStudentBlocked        = errors.New("账号因多次迟到取餐被封禁下单")
)

// 档口与菜品错误
var (
	ErrVendorNotFound    = errors.New("档口不存在")
	ErrVendorClosed      = errors.New("档口未营业")
	ErrVendorNameExists  = errors.New("档口名称已存在")
	ErrFoodItemNotFound  = errors.New("菜品不存在")
	ErrFoodItemSoldOut   = errors.New("菜品已下架")
	ErrFoodItemNotOfVendor = errors.New("菜品不属于该档口")
)

// 处罚错误
var (
	ErrPenaltyNotFound = errors.New("处罚记录不存在")
	ErrUserNotFound    = errors.New("用户不存在")
)
