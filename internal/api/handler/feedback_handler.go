package handler

import (
	"github.com/gin-gonic/gin"

	"github.com/SanghaLM/Code-to-Give-Team10-sub000/internal/dto"
	"github.com/SanghaLM/Code-to-Give-Team10-sub000/internal/service"
	"github.com/SanghaLM/Code-to-Give-Team10-sub000/pkg/response"
)

// FeedbackHandler 教师评分 HTTP 处理器
type FeedbackHandler struct {
	feedbackSvc service.FeedbackService
}

// NewFeedbackHandler 创建 FeedbackHandler
func NewFeedbackHandler(feedbackSvc service.FeedbackService) *FeedbackHandler {
	return &FeedbackHandler{feedbackSvc: feedbackSvc}
}

// ProvideFeedback 为提交评分
// POST /api/v1/submission/:id/feedback
func (h *FeedbackHandler) ProvideFeedback(c *gin.Context) {
	var req dto.ProvideFeedbackRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		handleBindError(c, err)
		return
	}

	teacherID, ok := MustGetUserID(c)
	if !ok {
		return
	}

	fb, err := h.feedbackSvc.Provide(c.Request.Context(), teacherID, c.Param("id"), &req)
	if err != nil {
		handleServiceError(c, err)
		return
	}

	response.OK(c, fb)
}

// ListFeedback 评语历史
// GET /api/v1/submission/:id/feedback
func (h *FeedbackHandler) ListFeedback(c *gin.Context) {
	p, ok := MustGetPrincipal(c)
	if !ok {
		return
	}

	list, err := h.feedbackSvc.List(c.Request.Context(), p, c.Param("id"))
	if err != nil {
		handleServiceError(c, err)
		return
	}

	response.OK(c, gin.H{"list": list})
}
