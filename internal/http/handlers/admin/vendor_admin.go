package admin

import (
	"errors"
	"strconv"

	"github.com/canteen-rush/internal/http/response"
	"github.com/canteen-rush/internal/repository"
	"github.com/canteen-rush/internal/service"

	"github.com/gin-gonic/gin"
)

// VendorRequest 档口创建/更新请求
type VendorRequest struct {
	Name               string `json:"name" binding:"required"`
	Description        string `json:"description"`
	Location           string `json:"location"`
	Capacity           int    `json:"capacity"`
	AvgPreparationTime int    `json:"avg_preparation_time"`
}

func (r VendorRequest) toInput() service.VendorInput {
	return service.VendorInput{
		Name:               r.Name,
		Description:        r.Description,
		Location:           r.Location,
		Capacity:           r.Capacity,
		AvgPreparationTime: r.AvgPreparationTime,
	}
}

func respondVendorError(c *gin.Context, err error, fallbackMsg string) {
	switch {
	case errors.Is(err, service.ErrInvalidInput):
		respondError(c, response.CodeBadRequest, err.Error(), nil)
	case errors.Is(err, service.ErrVendorNameExists):
		respondError(c, response.CodeBadRequest, err.Error(), nil)
	case errors.Is(err, service.ErrVendorNotFound):
		respondError(c, response.CodeNotFound, err.Error(), nil)
	default:
		respondError(c, response.CodeInternal, fallbackMsg, err)
	}
}

func parseIDParam(c *gin.Context, name string) (uint, bool) {
	id, err := strconv.ParseUint(c.Param(name), 10, 64)
	if err != nil || id == 0 {
		respondError(c, response.CodeBadRequest, "非法的ID参数", nil)
		return 0, false
	}
	return uint(id), true
}

// ListVendors 档口列表
func (h *Handler) ListVendors(c *gin.Context) {
	page, _ := strconv.Atoi(c.DefaultQuery("page", "1"))
	pageSize, _ := strconv.Atoi(c.DefaultQuery("page_size", "20"))

	vendors, total, err := h.VendorService.ListVendors(repository.VendorListFilter{
		Page:     page,
		PageSize: pageSize,
		Search:   c.Query("search"),
	})
	if err != nil {
		respondError(c, response.CodeInternal, "档口列表获取失败", err)
		return
	}
	response.SuccessWithPage(c, vendors, buildPagination(page, pageSize, total))
}

// CreateVendor 新增档口
func (h *Handler) CreateVendor(c *gin.Context) {
	var req VendorRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondError(c, response.CodeBadRequest, "请求参数有误", err)
		return
	}

	vendor, err := h.VendorService.CreateVendor(req.toInput())
	if err != nil {
		respondVendorError(c, err, "档口创建失败")
		return
	}
	response.Success(c, vendor)
}

// UpdateVendor 更新档口
func (h *Handler) UpdateVendor(c *gin.Context) {
	id, ok := parseIDParam(c, "id")
	if !ok {
		return
	}

	var req VendorRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondError(c, response.CodeBadRequest, "请求参数有误", err)
		return
	}

	vendor, err := h.VendorService.UpdateVendor(id, req.toInput())
	if err != nil {
		respondVendorError(c, err, "档口更新失败")
		return
	}
	response.Success(c, vendor)
}

// DeleteVendor 删除档口
func (h *Handler) DeleteVendor(c *gin.Context) {
	id, ok := parseIDParam(c, "id")
	if !ok {
		return
	}

	if err := h.VendorService.DeleteVendor(id); err != nil {
		respondVendorError(c, err, "档口删除失败")
		return
	}
	response.Success(c, gin.H{"deleted": true})
}
