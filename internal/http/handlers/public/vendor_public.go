package public

import (
	"strconv"

	"github.com/canteen-rush/internal/http/response"
	"github.com/canteen-rush/internal/repository"
	"github.com/canteen-rush/internal/service"

	"github.com/gin-gonic/gin"
)

// ListVendors 档口列表
func (h *Handler) ListVendors(c *gin.Context) {
	page, _ := strconv.Atoi(c.DefaultQuery("page", "1"))
	pageSize, _ := strconv.Atoi(c.DefaultQuery("page_size", "20"))
	onlyOpen := c.Query("only_open") == "true"

	vendors, total, err := h.VendorService.ListVendors(repository.VendorListFilter{
		Page:     page,
		PageSize: pageSize,
		Search:   c.Query("search"),
		OnlyOpen: onlyOpen,
	})
	if err != nil {
		respondError(c, response.CodeInternal, "档口列表获取失败", err)
		return
	}

	response.SuccessWithPage(c, vendors, buildPagination(page, pageSize, total))
}

// GetVendor 档口详情
func (h *Handler) GetVendor(c *gin.Context) {
	id, err := strconv.ParseUint(c.Param("id"), 10, 64)
	if err != nil || id == 0 {
		respondError(c, response.CodeBadRequest, "非法的档口ID", nil)
		return
	}

	vendor, err := h.VendorService.GetVendor(uint(id))
	if err != nil {
		respondWithMappedError(c, err, []mappedHandlerError{
			{target: service.ErrVendorNotFound, code: response.CodeNotFound},
		}, response.CodeInternal, "档口信息获取失败")
		return
	}
	response.Success(c, vendor)
}

// GetVendorMenu 档口菜单（仅可售菜品）
func (h *Handler) GetVendorMenu(c *gin.Context) {
	id, err := strconv.ParseUint(c.Param("id"), 10, 64)
	if err != nil || id == 0 {
		respondError(c, response.CodeBadRequest, "非法的档口ID", nil)
		return
	}

	items, err := h.FoodService.GetVendorMenu(c.Request.Context(), uint(id))
	if err != nil {
		respondWithMappedError(c, err, []mappedHandlerError{
			{target: service.ErrVendorNotFound, code: response.CodeNotFound},
		}, response.CodeInternal, "菜单获取失败")
		return
	}
	response.Success(c, items)
}
