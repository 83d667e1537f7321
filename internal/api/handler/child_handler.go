package handler

import (
	"github.com/gin-gonic/gin"

	"github.com/SanghaLM/Code-to-Give-Team10-sub000/internal/dto"
	"github.com/SanghaLM/Code-to-Give-Team10-sub000/internal/service"
	"github.com/SanghaLM/Code-to-Give-Team10-sub000/pkg/response"
)

// ChildHandler 家长名下孩子的 HTTP 处理器
type ChildHandler struct {
	childSvc    service.ChildService
	homeworkSvc service.HomeworkService
}

// NewChildHandler 创建 ChildHandler
func NewChildHandler(childSvc service.ChildService, homeworkSvc service.HomeworkService) *ChildHandler {
	return &ChildHandler{childSvc: childSvc, homeworkSvc: homeworkSvc}
}

// CreateChild 登记孩子
// POST /api/v1/children
func (h *ChildHandler) CreateChild(c *gin.Context) {
	var req dto.CreateChildRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		handleBindError(c, err)
		return
	}

	parentID, ok := MustGetUserID(c)
	if !ok {
		return
	}

	child, err := h.childSvc.Create(c.Request.Context(), parentID, &req)
	if err != nil {
		handleServiceError(c, err)
		return
	}

	response.Created(c, child)
}

// ListChildren 我的孩子
// GET /api/v1/children
func (h *ChildHandler) ListChildren(c *gin.Context) {
	parentID, ok := MustGetUserID(c)
	if !ok {
		return
	}

	children, err := h.childSvc.ListMine(c.Request.Context(), parentID)
	if err != nil {
		handleServiceError(c, err)
		return
	}

	response.OK(c, gin.H{"list": children})
}

// GetAssignedHomework 布置给孩子的作业
// GET /api/v1/children/:id/homework
func (h *ChildHandler) GetAssignedHomework(c *gin.Context) {
	parentID, ok := MustGetUserID(c)
	if !ok {
		return
	}

	list, err := h.homeworkSvc.GetAssigned(c.Request.Context(), parentID, c.Param("id"))
	if err != nil {
		handleServiceError(c, err)
		return
	}

	response.OK(c, gin.H{"list": list})
}
