package admin

import (
	"errors"
	"strconv"

	"github.com/canteen-rush/internal/http/response"
	"github.com/canteen-rush/internal/repository"
	"github.com/canteen-rush/internal/service"

	"github.com/gin-gonic/gin"
)

// ListPenalties 平台处罚记录列表
func (h *Handler) ListPenalties(c *gin.Context) {
	page, _ := strconv.Atoi(c.DefaultQuery("page", "1"))
	pageSize, _ := strconv.Atoi(c.DefaultQuery("page_size", "20"))
	studentID, _ := strconv.ParseUint(c.Query("student_id"), 10, 64)

	penalties, total, err := h.PenaltyService.ListPenalties(repository.PenaltyListFilter{
		Page:       page,
		PageSize:   pageSize,
		StudentID:  uint(studentID),
		Type:       c.Query("type"),
		OnlyActive: c.Query("only_active") == "true",
	})
	if err != nil {
		respondError(c, response.CodeInternal, "处罚记录获取失败", err)
		return
	}
	response.SuccessWithPage(c, penalties, buildPagination(page, pageSize, total))
}

// ClearPenalty 撤销处罚记录
func (h *Handler) ClearPenalty(c *gin.Context) {
	id, ok := parseIDParam(c, "id")
	if !ok {
		return
	}

	penalty, err := h.PenaltyService.ClearPenalty(id)
	if err != nil {
		if errors.Is(err, service.ErrPenaltyNotFound) {
			respondError(c, response.CodeNotFound, err.Error(), nil)
			return
		}
		respondError(c, response.CodeInternal, "处罚撤销失败", err)
		return
	}
	response.Success(c, penalty)
}

// UnblockStudentRequest 解封请求
type UnblockStudentRequest struct {
	ResetPoints bool `json:"reset_points"`
}

// UnblockStudent 解除学生封禁
func (h *Handler) UnblockStudent(c *gin.Context) {
	id, ok := parseIDParam(c, "id")
	if !ok {
		return
	}

	var req UnblockStudentRequest
	if c.Request.ContentLength > 0 {
		if err := c.ShouldBindJSON(&req); err != nil {
			respondError(c, response.CodeBadRequest, "请求参数有误", err)
			return
		}
	}

	user, err := h.PenaltyService.UnblockStudent(id, req.ResetPoints)
	if err != nil {
		if errors.Is(err, service.ErrUserNotFound) {
			respondError(c, response.CodeNotFound, err.Error(), nil)
			return
		}
		respondError(c, response.CodeInternal, "解除封禁失败", err)
		return
	}

	requestLog(c).Infow("student_unblocked",
		"student_id", id,
		"reset_points", req.ResetPoints,
	)
	response.Success(c, user)
}
