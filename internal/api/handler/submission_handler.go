package handler

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/SanghaLM/Code-to-Give-Team10-sub000/internal/dto"
	"github.com/SanghaLM/Code-to-Give-Team10-sub000/internal/service"
	"github.com/SanghaLM/Code-to-Give-Team10-sub000/pkg/response"
)

// SubmissionHandler 录音上传与提交 HTTP 处理器
type SubmissionHandler struct {
	submissionSvc  service.SubmissionService
	maxUploadBytes int64
}

// NewSubmissionHandler 创建 SubmissionHandler；maxUploadBytes <= 0 表示不限制单个文件大小
func NewSubmissionHandler(submissionSvc service.SubmissionService, maxUploadBytes int64) *SubmissionHandler {
	return &SubmissionHandler{submissionSvc: submissionSvc, maxUploadBytes: maxUploadBytes}
}

// UploadRecording 上传单词录音
// POST /api/v1/homework/:id/word/:wordId/upload  (multipart: file, studentId, isParent)
func (h *SubmissionHandler) UploadRecording(c *gin.Context) {
	var form dto.UploadRecordingForm
	if err := c.ShouldBind(&form); err != nil {
		handleBindError(c, err)
		return
	}

	fh, err := c.FormFile("file")
	if err != nil {
		var tooLarge *http.MaxBytesError
		if errors.As(err, &tooLarge) {
			handleBindError(c, err)
			return
		}
		handleServiceError(c, service.ErrRecordingFileMissing)
		return
	}
	if h.maxUploadBytes > 0 && fh.Size > h.maxUploadBytes {
		response.Error(c, http.StatusRequestEntityTooLarge, 10005, "Audio file too large")
		return
	}

	parentID, ok := MustGetUserID(c)
	if !ok {
		return
	}

	file, err := fh.Open()
	if err != nil {
		_ = c.Error(err)
		response.InternalError(c)
		return
	}
	defer file.Close()

	result, err := h.submissionSvc.UploadRecording(c.Request.Context(), parentID, &service.RecordingUpload{
		HomeworkID:  c.Param("id"),
		WordID:      c.Param("wordId"),
		StudentID:   form.StudentID,
		IsParent:    form.IsParent,
		File:        file,
		Filename:    fh.Filename,
		ContentType: fh.Header.Get("Content-Type"),
	})
	if err != nil {
		handleServiceError(c, err)
		return
	}

	response.OK(c, result)
}

// SubmitHomework 提交作业
// POST /api/v1/homework/:id/submit
func (h *SubmissionHandler) SubmitHomework(c *gin.Context) {
	var req dto.SubmitHomeworkRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		handleBindError(c, err)
		return
	}

	parentID, ok := MustGetUserID(c)
	if !ok {
		return
	}

	result, err := h.submissionSvc.Submit(c.Request.Context(), parentID, c.Param("id"), &req)
	if err != nil {
		handleServiceError(c, err)
		return
	}

	response.OK(c, result)
}

// ListSubmissions 作业的提交列表
// GET /api/v1/homework/:id/submissions
func (h *SubmissionHandler) ListSubmissions(c *gin.Context) {
	p, ok := MustGetPrincipal(c)
	if !ok {
		return
	}

	list, err := h.submissionSvc.ListByHomework(c.Request.Context(), p, c.Param("id"))
	if err != nil {
		handleServiceError(c, err)
		return
	}

	response.OK(c, gin.H{"list": list})
}
