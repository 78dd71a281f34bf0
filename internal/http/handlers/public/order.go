package public

import (
	"strconv"
	"strings"
	"time"

	"github.com/canteen-rush/internal/http/response"
	"github.com/canteen-rush/internal/models"
	"github.com/canteen-rush/internal/repository"
	"github.com/canteen-rush/internal/service"

	"github.com/gin-gonic/gin"
)

// OrderItemRequest 订单项请求
type OrderItemRequest struct {
	FoodItemID uint `json:"food_item_id" binding:"required"`
	Quantity   int  `json:"quantity" binding:"required"`
}

// PlaceOrderRequest 下单请求
type PlaceOrderRequest struct {
	VendorID            uint               `json:"vendor_id" binding:"required"`
	Items               []OrderItemRequest `json:"items" binding:"required"`
	RequestedPickupTime *time.Time         `json:"requested_pickup_time"`
}

// PlaceOrder 学生下单
func (h *Handler) PlaceOrder(c *gin.Context) {
	uid, ok := getUserID(c)
	if !ok {
		return
	}

	var req PlaceOrderRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondError(c, response.CodeBadRequest, "请求参数有误", err)
		return
	}

	items := make([]service.PlaceOrderItem, 0, len(req.Items))
	for _, item := range req.Items {
		items = append(items, service.PlaceOrderItem{
			FoodItemID: item.FoodItemID,
			Quantity:   item.Quantity,
		})
	}

	order, err := h.OrderService.PlaceOrder(c.Request.Context(), uid, service.PlaceOrderInput{
		VendorID:            req.VendorID,
		Items:               items,
		RequestedPickupTime: req.RequestedPickupTime,
	})
	if err != nil {
		respondWithMappedError(c, err, placeOrderErrorRules, response.CodeInternal, "下单失败")
		return
	}

	response.Success(c, order)
}

// ListMyOrders 当前学生的订单列表
func (h *Handler) ListMyOrders(c *gin.Context) {
	uid, ok := getUserID(c)
	if !ok {
		return
	}

	page, _ := strconv.Atoi(c.DefaultQuery("page", "1"))
	pageSize, _ := strconv.Atoi(c.DefaultQuery("page_size", "20"))

	orders, total, err := h.OrderService.ListStudentOrders(repository.OrderListFilter{
		Page:      page,
		PageSize:  pageSize,
		StudentID: uid,
		Status:    strings.TrimSpace(c.Query("status")),
	})
	if err != nil {
		respondError(c, response.CodeInternal, "订单列表获取失败", err)
		return
	}

	response.SuccessWithPage(c, orders, buildPagination(page, pageSize, total))
}

// GetMyOrder 按取餐码查询自己的订单
func (h *Handler) GetMyOrder(c *gin.Context) {
	uid, ok := getUserID(c)
	if !ok {
		return
	}

	token := strings.ToUpper(strings.TrimSpace(c.Param("token")))
	if token == "" {
		respondError(c, response.CodeBadRequest, "取餐码无效", nil)
		return
	}

	order, err := h.OrderService.GetStudentOrder(token, uid)
	if err != nil {
		respondWithMappedError(c, err, orderAccessErrorRules, response.CodeInternal, "订单查询失败")
		return
	}
	response.Success(c, order)
}

// CancelOrderRequest 取消订单请求
type CancelOrderRequest struct {
	Reason string `json:"reason"`
}

// CancelMyOrder 学生取消订单
func (h *Handler) CancelMyOrder(c *gin.Context) {
	uid, ok := getUserID(c)
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

	order, err := h.OrderService.CancelOrder(c.Request.Context(), service.CancelOrderInput{
		OrderToken: token,
		ActorID:    uid,
		ActorRole:  models.RoleStudent,
		Reason:     req.Reason,
	})
	if err != nil {
		respondWithMappedError(c, err, cancelOrderErrorRules, response.CodeInternal, "订单取消失败")
		return
	}
	response.Success(c, order)
}

// ListMyPenalties 当前学生的处罚记录
func (h *Handler) ListMyPenalties(c *gin.Context) {
	uid, ok := getUserID(c)
	if !ok {
		return
	}

	page, _ := strconv.Atoi(c.DefaultQuery("page", "1"))
	pageSize, _ := strconv.Atoi(c.DefaultQuery("page_size", "20"))

	penalties, total, err := h.PenaltyService.ListStudentPenalties(uid, page, pageSize)
	if err != nil {
		respondError(c, response.CodeInternal, "处罚记录获取失败", err)
		return
	}

	response.SuccessWithPage(c, penalties, buildPagination(page, pageSize, total))
}
