package vendorapi

import (
	handlershared "github.com/canteen-rush/internal/http/handlers/shared"
	"github.com/canteen-rush/internal/http/response"
	"github.com/canteen-rush/internal/models"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

func getUserID(c *gin.Context) (uint, bool) {
	return handlershared.GetContextUint(c, "user_id")
}

func requestLog(c *gin.Context) *zap.SugaredLogger {
	return handlershared.RequestLog(c)
}

func respondError(c *gin.Context, code int, msg string, err error) {
	handlershared.RespondError(c, code, msg, err)
}

func buildPagination(page, pageSize int, total int64) response.Pagination {
	return handlershared.BuildPagination(page, pageSize, total)
}

// getVendorID 解析当前登录档口账号绑定的档口ID，结果缓存在请求上下文中。
func (h *Handler) getVendorID(c *gin.Context) (uint, bool) {
	if cached, ok := c.Get("vendor_id"); ok {
		if id, ok := cached.(uint); ok && id != 0 {
			return id, true
		}
	}

	uid, ok := getUserID(c)
	if !ok {
		return 0, false
	}
	user, err := h.AuthService.GetUser(uid)
	if err != nil {
		respondError(c, response.CodeInternal, "用户信息获取失败", err)
		return 0, false
	}
	if user.Role != models.RoleVendor || user.VendorID == nil || *user.VendorID == 0 {
		respondError(c, response.CodeForbidden, "当前账号未绑定档口", nil)
		return 0, false
	}
	c.Set("vendor_id", *user.VendorID)
	return *user.VendorID, true
}
