package handler

import (
	"time"

	"github.com/gin-gonic/gin"

	"github.com/SanghaLM/Code-to-Give-Team10-sub000/internal/api/middleware"
	"github.com/SanghaLM/Code-to-Give-Team10-sub000/internal/service"
	"github.com/SanghaLM/Code-to-Give-Team10-sub000/pkg/response"
)

// MustGetUserID 从 Gin 上下文中安全提取 user_id。
// 如果 JWT 中间件未正确注入 user_id，返回 false 并写入 401 响应。
// 调用方应在 ok=false 时直接 return。
func MustGetUserID(c *gin.Context) (string, bool) {
	return mustGetString(c, middleware.CtxUserID)
}

// MustGetRole 从 Gin 上下文中安全提取 role。
func MustGetRole(c *gin.Context) (string, bool) {
	return mustGetString(c, middleware.CtxRole)
}

// MustGetPrincipal 提取当前操作主体 {id, role}
func MustGetPrincipal(c *gin.Context) (service.Principal, bool) {
	id, ok := MustGetUserID(c)
	if !ok {
		return service.Principal{}, false
	}
	role, ok := MustGetRole(c)
	if !ok {
		return service.Principal{}, false
	}
	return service.Principal{ID: id, Role: role}, true
}

func mustGetString(c *gin.Context, key string) (string, bool) {
	v, exists := c.Get(key)
	if !exists {
		response.Unauthorized(c, 10002, "Unauthenticated")
		return "", false
	}
	s, ok := v.(string)
	if !ok || s == "" {
		response.Unauthorized(c, 10002, "Unauthenticated")
		return "", false
	}
	return s, true
}

// tokenMeta 读取 JWT 中间件注入的 jti 与过期时间，缺失时返回零值
func tokenMeta(c *gin.Context) (string, time.Time) {
	jti := c.GetString(middleware.CtxTokenJTI)
	exp, _ := c.Get(middleware.CtxTokenExp)
	expiresAt, _ := exp.(time.Time)
	return jti, expiresAt
}
