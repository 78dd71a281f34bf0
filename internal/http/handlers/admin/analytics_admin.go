package admin

import (
	"strconv"

	"github.com/canteen-rush/internal/http/response"

	"github.com/gin-gonic/gin"
)

// GetAnalytics 平台运营分析
func (h *Handler) GetAnalytics(c *gin.Context) {
	days, _ := strconv.Atoi(c.DefaultQuery("days", "7"))

	analytics, err := h.AnalyticsService.GetPlatformAnalytics(days)
	if err != nil {
		respondError(c, response.CodeInternal, "运营分析获取失败", err)
		return
	}
	response.Success(c, analytics)
}
