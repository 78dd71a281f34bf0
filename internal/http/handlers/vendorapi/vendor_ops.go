package vendorapi

import (
	"errors"
	"strconv"

	"github.com/canteen-rush/internal/http/response"
	"github.com/canteen-rush/internal/service"

	"github.com/gin-gonic/gin"
)

// SetOpenRequest 营业状态切换请求
type SetOpenRequest struct {
	IsOpen *bool `json:"is_open" binding:"required"`
}

// SetOpen 切换档口营业状态
func (h *Handler) SetOpen(c *gin.Context) {
	vendorID, ok := h.getVendorID(c)
	if !ok {
		return
	}

	var req SetOpenRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondError(c, response.CodeBadRequest, "请求参数有误", err)
		return
	}

	vendor, err := h.VendorService.SetOpen(vendorID, *req.IsOpen)
	if err != nil {
		if errors.Is(err, service.ErrVendorNotFound) {
			respondError(c, response.CodeNotFound, err.Error(), nil)
			return
		}
		respondError(c, response.CodeInternal, "营业状态更新失败", err)
		return
	}
	response.Success(c, vendor)
}

// GetStats 档口运营概览
func (h *Handler) GetStats(c *gin.Context) {
	vendorID, ok := h.getVendorID(c)
	if !ok {
		return
	}

	stats, err := h.VendorService.GetVendorStats(c.Request.Context(), vendorID)
	if err != nil {
		if errors.Is(err, service.ErrVendorNotFound) {
			respondError(c, response.CodeNotFound, err.Error(), nil)
			return
		}
		respondError(c, response.CodeInternal, "运营数据获取失败", err)
		return
	}
	response.Success(c, stats)
}

// GetBusyHours 档口高峰时段
func (h *Handler) GetBusyHours(c *gin.Context) {
	vendorID, ok := h.getVendorID(c)
	if !ok {
		return
	}

	limit, _ := strconv.Atoi(c.DefaultQuery("limit", "5"))
	hours, err := h.AnalyticsService.GetVendorBusyHours(vendorID, limit)
	if err != nil {
		respondError(c, response.CodeInternal, "高峰时段获取失败", err)
		return
	}
	response.Success(c, hours)
}
