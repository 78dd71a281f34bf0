package vendorapi

import (
	"errors"
	"strconv"
	"strings"

	"github.com/canteen-rush/internal/http/response"
	"github.com/canteen-rush/internal/models"
	"github.com/canteen-rush/internal/repository"
	"github.com/canteen-rush/internal/service"

	"github.com/gin-gonic/gin"
)

// FoodItemRequest 菜品创建/更新请求
type FoodItemRequest struct {
	Name            string        `json:"name" binding:"required"`
	Description     string        `json:"description"`
	Price           *models.Money `json:"price" binding:"required"`
	Category        string        `json:"category"`
	PreparationTime int           `json:"preparation_time"`
	ImageURL        string        `json:"image_url"`
}

func (r FoodItemRequest) toInput() service.FoodItemInput {
	return service.FoodItemInput{
		Name:            strings.TrimSpace(r.Name),
		Description:     r.Description,
		Price:           r.Price,
		Category:        strings.TrimSpace(r.Category),
		PreparationTime: r.PreparationTime,
		ImageURL:        r.ImageURL,
	}
}

func respondFoodItemError(c *gin.Context, err error, fallbackMsg string) {
	switch {
	case errors.Is(err, service.ErrInvalidInput):
		respondError(c, response.CodeBadRequest, err.Error(), nil)
	case errors.Is(err, service.ErrVendorNotFound):
		respondError(c, response.CodeNotFound, err.Error(), nil)
	case errors.Is(err, service.ErrFoodItemNotFound):
		respondError(c, response.CodeNotFound, err.Error(), nil)
	case errors.Is(err, service.ErrFoodItemNotOfVendor):
		respondError(c, response.CodeForbidden, err.Error(), nil)
	default:
		respondError(c, response.CodeInternal, fallbackMsg, err)
	}
}

// ListFoodItems 档口菜品列表（含下架菜品）
func (h *Handler) ListFoodItems(c *gin.Context) {
	vendorID, ok := h.getVendorID(c)
	if !ok {
		return
	}

	page, _ := strconv.Atoi(c.DefaultQuery("page", "1"))
	pageSize, _ := strconv.Atoi(c.DefaultQuery("page_size", "20"))

	items, total, err := h.FoodService.ListFoodItems(repository.FoodItemListFilter{
		Page:     page,
		PageSize: pageSize,
		VendorID: vendorID,
		Search:   c.Query("search"),
		Category: c.Query("category"),
	})
	if err != nil {
		respondError(c, response.CodeInternal, "菜品列表获取失败", err)
		return
	}

	response.SuccessWithPage(c, items, buildPagination(page, pageSize, total))
}

// CreateFoodItem 新增菜品
func (h *Handler) CreateFoodItem(c *gin.Context) {
	vendorID, ok := h.getVendorID(c)
	if !ok {
		return
	}

	var req FoodItemRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondError(c, response.CodeBadRequest, "请求参数有误", err)
		return
	}

	item, err := h.FoodService.CreateFoodItem(c.Request.Context(), vendorID, req.toInput())
	if err != nil {
		respondFoodItemError(c, err, "菜品创建失败")
		return
	}
	response.Success(c, item)
}

// UpdateFoodItem 更新菜品
func (h *Handler) UpdateFoodItem(c *gin.Context) {
	vendorID, ok := h.getVendorID(c)
	if !ok {
		return
	}

	itemID, err := strconv.ParseUint(c.Param("id"), 10, 64)
	if err != nil || itemID == 0 {
		respondError(c, response.CodeBadRequest, "非法的菜品ID", nil)
		return
	}

	var req FoodItemRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondError(c, response.CodeBadRequest, "请求参数有误", err)
		return
	}

	item, err := h.FoodService.UpdateFoodItem(c.Request.Context(), vendorID, uint(itemID), req.toInput())
	if err != nil {
		respondFoodItemError(c, err, "菜品更新失败")
		return
	}
	response.Success(c, item)
}

// ToggleFoodItem 切换菜品上下架
func (h *Handler) ToggleFoodItem(c *gin.Context) {
	vendorID, ok := h.getVendorID(c)
	if !ok {
		return
	}

	itemID, err := strconv.ParseUint(c.Param("id"), 10, 64)
	if err != nil || itemID == 0 {
		respondError(c, response.CodeBadRequest, "非法的菜品ID", nil)
		return
	}

	item, err := h.FoodService.ToggleFoodItem(c.Request.Context(), vendorID, uint(itemID))
	if err != nil {
		respondFoodItemError(c, err, "菜品状态切换失败")
		return
	}
	response.Success(c, item)
}

// DeleteFoodItem 删除菜品
func (h *Handler) DeleteFoodItem(c *gin.Context) {
	vendorID, ok := h.getVendorID(c)
	if !ok {
		return
	}

	itemID, err := strconv.ParseUint(c.Param("id"), 10, 64)
	if err != nil || itemID == 0 {
		respondError(c, response.CodeBadRequest, "非法的菜品ID", nil)
		return
	}

	if err := h.FoodService.DeleteFoodItem(c.Request.Context(), vendorID, uint(itemID)); err != nil {
		respondFoodItemError(c, err, "菜品删除失败")
		return
	}
	response.Success(c, gin.H{"deleted": true})
}
