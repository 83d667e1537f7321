package middleware

import (
	"github.com/gin-gonic/gin"
)

// SecurityHeaders 安全 HTTP 头中间件
// 服务只返回 JSON、Excel 与录音文件，CSP 仅放行同源媒体
func SecurityHeaders() gin.HandlerFunc {
	return func(c *gin.Context) {
		c.Header("X-Frame-Options", "DENY")
		c.Header("X-Content-Type-Options", "nosniff")
		c.Header("Referrer-Policy", "strict-origin-when-cross-origin")
		c.Header("Content-Security-Policy", "default-src 'none'; media-src 'self'; frame-ancestors 'none'")
		c.Header("Permissions-Policy", "camera=(), microphone=(self), geolocation=()")

		c.Next()
	}
}
