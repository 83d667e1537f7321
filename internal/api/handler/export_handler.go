package handler

import (
	"net/http"
	"net/url"

	"github.com/gin-gonic/gin"

	"github.com/SanghaLM/Code-to-Give-Team10-sub000/internal/service"
)

const xlsxContentType = "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet"

// ExportHandler 导出模块 HTTP 处理器
type ExportHandler struct {
	exportSvc service.ExportService
}

// NewExportHandler 创建 ExportHandler
func NewExportHandler(exportSvc service.ExportService) *ExportHandler {
	return &ExportHandler{exportSvc: exportSvc}
}

// ExportHomework 导出作业统计与提交明细
// GET /api/v1/homework/:id/export
func (h *ExportHandler) ExportHomework(c *gin.Context) {
	p, ok := MustGetPrincipal(c)
	if !ok {
		return
	}

	buf, filename, err := h.exportSvc.ExportHomework(c.Request.Context(), p, c.Param("id"))
	if err != nil {
		handleServiceError(c, err)
		return
	}

	// 设置下载响应头
	c.Header("Content-Description", "File Transfer")
	c.Header("Content-Disposition", "attachment; filename*=UTF-8''"+url.QueryEscape(filename))
	c.Data(http.StatusOK, xlsxContentType, buf.Bytes())
}
