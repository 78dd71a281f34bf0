package admin

import (
	"strconv"

	"github.com/canteen-rush/internal/http/response"
	"github.com/canteen-rush/internal/repository"

	"github.com/gin-gonic/gin"
)

// ListUsers 用户列表
func (h *Handler) ListUsers(c *gin.Context) {
	page, _ := strconv.Atoi(c.DefaultQuery("page", "1"))
	pageSize, _ := strconv.Atoi(c.DefaultQuery("page_size", "20"))

	users, total, err := h.UserRepo.List(repository.UserListFilter{
		Page:        page,
		PageSize:    pageSize,
		Keyword:     c.Query("keyword"),
		Role:        c.Query("role"),
		BlockedOnly: c.Query("blocked_only") == "true",
	})
	if err != nil {
		respondError(c, response.CodeInternal, "用户列表获取失败", err)
		return
	}
	response.SuccessWithPage(c, users, buildPagination(page, pageSize, total))
}
