package handler

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/SanghaLM/Code-to-Give-Team10-sub000/internal/api/validation"
	"github.com/SanghaLM/Code-to-Give-Team10-sub000/internal/service"
	pkgerrors "github.com/SanghaLM/Code-to-Give-Team10-sub000/pkg/errors"
	"github.com/SanghaLM/Code-to-Give-Team10-sub000/pkg/response"
)

// handleServiceError 按业务错误分类映射 HTTP 状态码
//
//	Validation / Conflict / InvalidState → 400
//	NotFound → 404
//	Forbidden → 403
//	其余 → 500，原始错误经 c.Error 交给日志中间件，不向客户端透出
func handleServiceError(c *gin.Context, err error) {
	if errors.Is(err, service.ErrInvalidCredentials) {
		response.Unauthorized(c, service.ErrInvalidCredentials.Code, service.ErrInvalidCredentials.Message)
		return
	}

	e, ok := pkgerrors.As(err)
	if !ok || e.Kind == pkgerrors.KindInternal {
		_ = c.Error(err)
		response.InternalError(c)
		return
	}

	switch e.Kind {
	case pkgerrors.KindNotFound:
		response.NotFound(c, e.Code, e.Message)
	case pkgerrors.KindForbidden:
		response.Forbidden(c, e.Code, e.Message)
	default:
		response.BadRequest(c, e.Code, e.Message)
	}
}

// handleBindError 参数绑定失败；请求体超限时返回 413
func handleBindError(c *gin.Context, err error) {
	var tooLarge *http.MaxBytesError
	if errors.As(err, &tooLarge) {
		response.Error(c, http.StatusRequestEntityTooLarge, 10005, "Request body too large")
		return
	}
	response.BadRequest(c, 10001, bindErrorMessage(err))
}

func bindErrorMessage(err error) string {
	if msg, ok := validation.Translate(err); ok {
		return "Invalid request parameters: " + msg
	}
	return "Invalid request parameters"
}
