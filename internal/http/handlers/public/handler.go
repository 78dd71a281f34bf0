package public

import "github.com/canteen-rush/internal/provider"

// Handler 学生侧与公开接口处理器入口
type Handler struct {
	*provider.Container
}

// New 创建前台处理器
func New(c *provider.Container) *Handler {
	return &Handler{Container: c}
}
