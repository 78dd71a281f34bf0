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

// ListOrders 档口订单列表
func (h *Handler) ListOrders(c *gin.Context) {
	vendorID, ok := h.getVendorID(c)
	if !ok {
		return
	}

	page, _ := strconv.Atoi(c.DefaultQuery("page", "1"))
	pageSize, _ := strconv.Atoi(c.DefaultQuery("page_size", "20"))

	orders, total, err := h.OrderService.ListVendorOrders(repository.OrderListFilter{
		Page:     page,
		PageSize: pageSize,
		VendorID: vendorID,
		Status:   strings.TrimSpace(c.Query("status")),
	})
	if err != nil {
		respondError(c, response.CodeInternal, "订单列表获取失败", err)
		return
	}

	response.SuccessWithPage(c, orders, buildPagination(page, pageSize, total))
}

// ListActiveOrders 档口当前排队中的订单（按下单时间排序）
func (h *Handler) ListActiveOrders(c *gin.Context) {
	vendorID, ok := h.getVendorID(c)
	if !ok {
		return
	}

	orders, err := h.OrderService.ListActiveVendorOrders(vendorID)
	if err != nil {
		respondError(c, response.CodeInternal, "排队订单获取失败", err)
		return
	}
	response.Success(c, orders)
}

// UpdateOrderStatusRequest 订单状态流转请求
type UpdateOrderStatusRequest struct {
	Status string `json:"status" binding:"required"`
}

// UpdateOrderStatus 档口流转订单状态
func (h *Handler) UpdateOrderStatus(c *gin.Context) {
	vendorID, ok := h.getVendorID(c)
	if !ok {
		return
	}

	token := strings.ToUpper(strings.TrimSpace(c.Param("token")))
	if token == "" {
		respondError(c, response.CodeBadRequest, "取餐码无效", nil)
		return
	}

	var req UpdateOrderStatusRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondError(c, response.CodeBadRequest, "请求参数有误", err)
		return
	}

	order, err := h.OrderService.UpdateOrderStatus(c.Request.Context(), token, strings.TrimSpace(req.Status), vendorID)
	if err != nil {
		switch {
		case errors.Is(err, service.ErrOrderNotFound):
			respondError(c, response.CodeNotFound, err.Error(), nil)
		case errors.Is(err, service.ErrOrderNotOwned):
			respondError(c, response.CodeForbidden, err.Error(), nil)
		case errors.Is(err, service.ErrOrderStatusInvalid):
			respondError(c, response.CodeBadRequest, err.Error(), nil)
		case errors.Is(err, service.ErrOrderStatusConflict):
			respondError(c, response.CodeConflict, err.Error(), nil)
		default:
			respondError(c, response.CodeInternal, "订单状态更新失败", err)
		}
		return
	}
	response.Success(c, order)
}

// CancelOrderRequest 档口取消订单请求
type CancelOrderRequest struct {
	Reason string `json:"reason"`
}

// CancelOrder 档口取消订单
func (h *Handler) CancelOrder(c *gin.Context) {
	vendorID, ok := h.getVendorID(c)
	if !ok {
		return
	}

	token := strings.ToUpper(strings.TrimSpace(c.Param("token")))
	if token == "" {
		respondError(c, response.CodeBadRequest, "取餐码无效", nil)
		return
	}

	var req CancelOrderRequest
	if c.Request.ContentLength > 0 {
		if err := c.ShouldBindJSON(&req); err != nil {
			respondError(c, response.CodeBadRequest, "请求参数有误", err)
			return
		}
	}

	order, err := h.OrderService.GetOrderByToken(token)
	if err != nil {
		if errors.Is(err, service.ErrOrderNotFound) {
			respondError(c, response.CodeNotFound, err.Error(), nil)
			return
		}
		respondError(c, response.CodeInternal, "订单查询失败", err)
		return
	}
	if order.VendorID != vendorID {
		respondError(c, response.CodeNotFound, "订单不存在", nil)
		return
	}

	cancelled, err := h.OrderService.CancelOrder(c.Request.Context(), service.CancelOrderInput{
		OrderToken: token,
		ActorID:    vendorID,
		ActorRole:  models.RoleVendor,
		Reason:     req.Reason,
	})
	if err != nil {
		switch {
		case errors.Is(err, service.ErrOrderNotFound):
			respondError(c, response.CodeNotFound, err.Error(), nil)
		case errors.Is(err, service.ErrOrderCancelNotAllowed):
			respondError(c, response.CodeBadRequest, err.Error(), nil)
		case errors.Is(err, service.ErrOrderStatusConflict):
			respondError(c, response.CodeConflict, err.Error(), nil)
		default:
			respondError(c, response.CodeInternal, "订单取消失败", err)
		}
		return
	}
	response.Success(c, cancelled)
}
