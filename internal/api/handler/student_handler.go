package handler

import (
	"github.com/gin-gonic/gin"

	"github.com/SanghaLM/Code-to-Give-Team10-sub000/internal/dto"
	"github.com/SanghaLM/Code-to-Give-Team10-sub000/internal/service"
	"github.com/SanghaLM/Code-to-Give-Team10-sub000/pkg/response"
)

// StudentHandler 师生关系 HTTP 处理器
type StudentHandler struct {
	studentSvc service.StudentService
}

// NewStudentHandler 创建 StudentHandler
func NewStudentHandler(studentSvc service.StudentService) *StudentHandler {
	return &StudentHandler{studentSvc: studentSvc}
}

// RequestTeacher 家长为孩子申请教师
// POST /api/v1/teachers/students
func (h *StudentHandler) RequestTeacher(c *gin.Context) {
	var req dto.RequestTeacherRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		handleBindError(c, err)
		return
	}

	parentID, ok := MustGetUserID(c)
	if !ok {
		return
	}

	rel, err := h.studentSvc.RequestTeacher(c.Request.Context(), parentID, &req)
	if err != nil {
		handleServiceError(c, err)
		return
	}

	response.Created(c, rel)
}

// ApproveStudent 教师审批学生
// POST /api/v1/students/approve
func (h *StudentHandler) ApproveStudent(c *gin.Context) {
	var req dto.ApproveStudentRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		handleBindError(c, err)
		return
	}

	teacherID, ok := MustGetUserID(c)
	if !ok {
		return
	}

	rel, err := h.studentSvc.ApproveStudent(c.Request.Context(), teacherID, req.ChildID)
	if err != nil {
		handleServiceError(c, err)
		return
	}

	response.OK(c, rel)
}

// ListPending 待审批学生
// GET /api/v1/students/pending
func (h *StudentHandler) ListPending(c *gin.Context) {
	teacherID, ok := MustGetUserID(c)
	if !ok {
		return
	}

	list, err := h.studentSvc.GetPendingStudents(c.Request.Context(), teacherID)
	if err != nil {
		handleServiceError(c, err)
		return
	}

	response.OK(c, gin.H{"list": list})
}

// ListStudents 已绑定学生
// GET /api/v1/students
func (h *StudentHandler) ListStudents(c *gin.Context) {
	teacherID, ok := MustGetUserID(c)
	if !ok {
		return
	}

	list, err := h.studentSvc.ListStudents(c.Request.Context(), teacherID)
	if err != nil {
		handleServiceError(c, err)
		return
	}

	response.OK(c, gin.H{"list": list})
}
