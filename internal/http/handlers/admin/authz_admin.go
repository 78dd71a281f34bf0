package admin

import (
	"github.com/canteen-rush/internal/http/response"

	"github.com/gin-gonic/gin"
)

// ListRoles 角色列表
func (h *Handler) ListRoles(c *gin.Context) {
	roles, err := h.AuthzService.ListRoles()
	if err != nil {
		respondError(c, response.CodeInternal, "角色列表获取失败", err)
		return
	}
	response.Success(c, roles)
}

// RolePolicyRequest 角色策略请求
type RolePolicyRequest struct {
	Role   string `json:"role" binding:"required"`
	Object string `json:"object" binding:"required"`
	Action string `json:"action" binding:"required"`
}

// GrantRolePolicy 为角色授予策略
func (h *Handler) GrantRolePolicy(c *gin.Context) {
	var req RolePolicyRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondError(c, response.CodeBadRequest, "请求参数有误", err)
		return
	}

	if err := h.AuthzService.GrantRolePolicy(req.Role, req.Object, req.Action); err != nil {
		respondError(c, response.CodeInternal, "策略授予失败", err)
		return
	}

	requestLog(c).Infow("authz_role_policy_granted",
		"role", req.Role,
		"object", req.Object,
		"action", req.Action,
	)
	response.Success(c, gin.H{"granted": true})
}

// RevokeRolePolicy 撤销角色策略
func (h *Handler) RevokeRolePolicy(c *gin.Context) {
	var req RolePolicyRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondError(c, response.CodeBadRequest, "请求参数有误", err)
		return
	}

	if err := h.AuthzService.RevokeRolePolicy(req.Role, req.Object, req.Action); err != nil {
		respondError(c, response.CodeInternal, "策略撤销失败", err)
		return
	}

	requestLog(c).Infow("authz_role_policy_revoked",
		"role", req.Role,
		"object", req.Object,
		"action", req.Action,
	)
	response.Success(c, gin.H{"revoked": true})
}

// GetRolePolicies 查询角色策略
func (h *Handler) GetRolePolicies(c *gin.Context) {
	role := c.Param("role")
	policies, err := h.AuthzService.GetRolePolicies(role)
	if err != nil {
		respondError(c, response.CodeBadRequest, "角色策略查询失败", err)
		return
	}
	response.Success(c, policies)
}
