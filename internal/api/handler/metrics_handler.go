package handler

import (
	"github.com/gin-gonic/gin"

	"github.com/SanghaLM/Code-to-Give-Team10-sub000/internal/service"
	"github.com/SanghaLM/Code-to-Give-Team10-sub000/pkg/response"
)

// MetricsHandler 统计 HTTP 处理器
type MetricsHandler struct {
	metricsSvc service.MetricsService
}

// NewMetricsHandler 创建 MetricsHandler
func NewMetricsHandler(metricsSvc service.MetricsService) *MetricsHandler {
	return &MetricsHandler{metricsSvc: metricsSvc}
}

// HomeworkMetrics 作业统计
// GET /api/v1/homework/:id/metrics
func (h *MetricsHandler) HomeworkMetrics(c *gin.Context) {
	p, ok := MustGetPrincipal(c)
	if !ok {
		return
	}

	m, err := h.metricsSvc.HomeworkMetrics(c.Request.Context(), p, c.Param("id"))
	if err != nil {
		handleServiceError(c, err)
		return
	}

	response.OK(c, m)
}

// StudentProgress 学生进度
// GET /api/v1/students/:id/progress
func (h *MetricsHandler) StudentProgress(c *gin.Context) {
	p, ok := MustGetPrincipal(c)
	if !ok {
		return
	}

	progress, err := h.metricsSvc.StudentProgress(c.Request.Context(), p, c.Param("id"))
	if err != nil {
		handleServiceError(c, err)
		return
	}

	response.OK(c, progress)
}
