package public

import (
	"github.com/canteen-rush/internal/http/response"
	"github.com/canteen-rush/internal/service"

	"github.com/gin-gonic/gin"
)

// RegisterRequest 注册请求
type RegisterRequest struct {
	Name     string `json:"name"`
	Email    string `json:"email" binding:"required"`
	Password string `json:"password" binding:"required"`
}

// Register 学生注册
func (h *Handler) Register(c *gin.Context) {
	var req RegisterRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondError(c, response.CodeBadRequest, "请求参数有误", err)
		return
	}

	user, token, expiresAt, err := h.AuthService.Register(service.RegisterInput{
		Name:     req.Name,
		Email:    req.Email,
		Password: req.Password,
	})
	if err != nil {
		respondWithMappedError(c, err, authErrorRules, response.CodeInternal, "注册失败")
		return
	}

	response.Success(c, gin.H{
		"user":       user,
		"token":      token,
		"expires_at": expiresAt,
	})
}

// LoginRequest 登录请求
type LoginRequest struct {
	Email    string `json:"email" binding:"required"`
	Password string `json:"password" binding:"required"`
}

// Login 登录
func (h *Handler) Login(c *gin.Context) {
	var req LoginRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondError(c, response.CodeBadRequest, "请求参数有误", err)
		return
	}

	user, token, expiresAt, err := h.AuthService.Login(req.Email, req.Password)
	if err != nil {
		respondWithMappedError(c, err, authErrorRules, response.CodeInternal, "登录失败")
		return
	}

	response.Success(c, gin.H{
		"user":       user,
		"token":      token,
		"expires_at": expiresAt,
	})
}

// Me 获取当前用户信息
func (h *Handler) Me(c *gin.Context) {
	uid, ok := getUserID(c)
	if !ok {
		return
	}

	user, err := h.AuthService.GetUser(uid)
	if err != nil {
		respondWithMappedError(c, err, authErrorRules, response.CodeInternal, "用户信息获取失败")
		return
	}
	response.Success(c, user)
}
