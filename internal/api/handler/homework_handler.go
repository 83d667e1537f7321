package handler

import (
	"github.com/gin-gonic/gin"

	"github.com/SanghaLM/Code-to-Give-Team10-sub000/internal/dto"
	"github.com/SanghaLM/Code-to-Give-Team10-sub000/internal/service"
	"github.com/SanghaLM/Code-to-Give-Team10-sub000/pkg/response"
)

// HomeworkHandler 作业模块 HTTP 处理器
type HomeworkHandler struct {
	homeworkSvc service.HomeworkService
}

// NewHomeworkHandler 创建 HomeworkHandler
func NewHomeworkHandler(homeworkSvc service.HomeworkService) *HomeworkHandler {
	return &HomeworkHandler{homeworkSvc: homeworkSvc}
}

// CreateHomework 创建作业
// POST /api/v1/homework
func (h *HomeworkHandler) CreateHomework(c *gin.Context) {
	var req dto.CreateHomeworkRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		handleBindError(c, err)
		return
	}

	teacherID, ok := MustGetUserID(c)
	if !ok {
		return
	}

	hw, err := h.homeworkSvc.Create(c.Request.Context(), teacherID, &req)
	if err != nil {
		handleServiceError(c, err)
		return
	}

	response.Created(c, hw)
}

// ListHomework 我布置的作业
// GET /api/v1/homework
func (h *HomeworkHandler) ListHomework(c *gin.Context) {
	teacherID, ok := MustGetUserID(c)
	if !ok {
		return
	}

	list, err := h.homeworkSvc.ListMine(c.Request.Context(), teacherID)
	if err != nil {
		handleServiceError(c, err)
		return
	}

	response.OK(c, gin.H{"list": list})
}

// GetHomework 作业详情
// GET /api/v1/homework/:id
func (h *HomeworkHandler) GetHomework(c *gin.Context) {
	hw, err := h.homeworkSvc.GetByID(c.Request.Context(), c.Param("id"))
	if err != nil {
		handleServiceError(c, err)
		return
	}

	response.OK(c, hw)
}

// UpdateHomework 更新作业
// PUT /api/v1/homework/:id
func (h *HomeworkHandler) UpdateHomework(c *gin.Context) {
	var req dto.UpdateHomeworkRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		handleBindError(c, err)
		return
	}

	p, ok := MustGetPrincipal(c)
	if !ok {
		return
	}

	hw, err := h.homeworkSvc.Update(c.Request.Context(), p, c.Param("id"), &req)
	if err != nil {
		handleServiceError(c, err)
		return
	}

	response.OK(c, hw)
}

// DeleteHomework 删除作业（软删除）
// DELETE /api/v1/homework/:id
func (h *HomeworkHandler) DeleteHomework(c *gin.Context) {
	p, ok := MustGetPrincipal(c)
	if !ok {
		return
	}

	if err := h.homeworkSvc.Delete(c.Request.Context(), p, c.Param("id")); err != nil {
		handleServiceError(c, err)
		return
	}

	response.OK(c, nil)
}

// StartHomework 开始作业
// GET /api/v1/homework/:id/start
func (h *HomeworkHandler) StartHomework(c *gin.Context) {
	result, err := h.homeworkSvc.Start(c.Request.Context(), c.Param("id"))
	if err != nil {
		handleServiceError(c, err)
		return
	}

	response.OK(c, result)
}
