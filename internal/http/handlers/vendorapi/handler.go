package vendorapi

import "github.com/canteen-rush/internal/provider"

// Handler 档口侧接口处理器入口
type Handler struct {
	*provider.Container
}

// New 创建档口处理器
func New(c *provider.Container) *Handler {
	return &Handler{Container: c}
}
