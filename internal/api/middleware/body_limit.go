package middleware

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/SanghaLM/Code-to-Give-Team10-sub000/pkg/response"
)

// BodyLimit 全局请求体大小限制中间件
// maxBytes: 普通请求允许的最大字节数（如 1<<20 = 1MB）
// multipartMaxBytes: multipart 录音上传允许的最大字节数
func BodyLimit(maxBytes, multipartMaxBytes int64) gin.HandlerFunc {
	return func(c *gin.Context) {
		if c.Request.Body != nil {
			limit := maxBytes
			if c.ContentType() == "multipart/form-data" && multipartMaxBytes > 0 {
				limit = multipartMaxBytes
			}
			c.Request.Body = http.MaxBytesReader(c.Writer, c.Request.Body, limit)
		}

		c.Next()

		// Handler 未写响应且因超出限制而失败时补写 413
		if c.IsAborted() || c.Writer.Written() {
			return
		}
		for _, err := range c.Errors {
			var tooLarge *http.MaxBytesError
			if errors.As(err.Err, &tooLarge) {
				response.Error(c, http.StatusRequestEntityTooLarge, 10005, "Request body too large")
				return
			}
		}
	}
}
