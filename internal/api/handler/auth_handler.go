package handler

import (
	"github.com/gin-gonic/gin"

	"github.com/SanghaLM/Code-to-Give-Team10-sub000/internal/dto"
	"github.com/SanghaLM/Code-to-Give-Team10-sub000/internal/service"
	"github.com/SanghaLM/Code-to-Give-Team10-sub000/pkg/response"
)

// AuthHandler 认证模块 HTTP 处理器
type AuthHandler struct {
	authSvc service.AuthService
}

// NewAuthHandler 创建 AuthHandler
func NewAuthHandler(authSvc service.AuthService) *AuthHandler {
	return &AuthHandler{authSvc: authSvc}
}

// RegisterParent 家长注册
// POST /api/v1/auth/parents/register
func (h *AuthHandler) RegisterParent(c *gin.Context) {
	var req dto.RegisterParentRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		handleBindError(c, err)
		return
	}

	result, err := h.authSvc.RegisterParent(c.Request.Context(), &req)
	if err != nil {
		handleServiceError(c, err)
		return
	}

	response.Created(c, result)
}

// LoginParent 家长登录
// POST /api/v1/auth/parents/login
func (h *AuthHandler) LoginParent(c *gin.Context) {
	var req dto.LoginParentRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		handleBindError(c, err)
		return
	}

	result, err := h.authSvc.LoginParent(c.Request.Context(), &req)
	if err != nil {
		handleServiceError(c, err)
		return
	}

	response.OK(c, result)
}

// RegisterTeacher 教师注册
// POST /api/v1/auth/teachers/register
func (h *AuthHandler) RegisterTeacher(c *gin.Context) {
	var req dto.RegisterTeacherRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		handleBindError(c, err)
		return
	}

	result, err := h.authSvc.RegisterTeacher(c.Request.Context(), &req)
	if err != nil {
		handleServiceError(c, err)
		return
	}

	response.Created(c, result)
}

// LoginTeacher 教师登录
// POST /api/v1/auth/teachers/login
func (h *AuthHandler) LoginTeacher(c *gin.Context) {
	var req dto.LoginTeacherRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		handleBindError(c, err)
		return
	}

	result, err := h.authSvc.LoginTeacher(c.Request.Context(), &req)
	if err != nil {
		handleServiceError(c, err)
		return
	}

	response.OK(c, result)
}

// Logout 注销当前 Token
// POST /api/v1/auth/logout
func (h *AuthHandler) Logout(c *gin.Context) {
	jti, expiresAt := tokenMeta(c)
	if err := h.authSvc.Logout(c.Request.Context(), jti, expiresAt); err != nil {
		handleServiceError(c, err)
		return
	}

	response.OK(c, nil)
}

// GetCurrentUser 当前登录主体
// GET /api/v1/auth/me
func (h *AuthHandler) GetCurrentUser(c *gin.Context) {
	p, ok := MustGetPrincipal(c)
	if !ok {
		return
	}

	result, err := h.authSvc.GetCurrentUser(c.Request.Context(), p)
	if err != nil {
		handleServiceError(c, err)
		return
	}

	response.OK(c, result)
}
