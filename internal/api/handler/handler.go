package handler

import (
	"github.com/SanghaLM/Code-to-Give-Team10-sub000/config"
	"github.com/SanghaLM/Code-to-Give-Team10-sub000/internal/service"
)

// Handler 所有 Handler 的聚合入口
type Handler struct {
	Auth       *AuthHandler
	Child      *ChildHandler
	Student    *StudentHandler
	Homework   *HomeworkHandler
	Submission *SubmissionHandler
	Feedback   *FeedbackHandler
	Metrics    *MetricsHandler
	Export     *ExportHandler
}

// NewHandler 创建 Handler 聚合
func NewHandler(cfg *config.Config, svc *service.Service) *Handler {
	return &Handler{
		Auth:       NewAuthHandler(svc.Auth),
		Child:      NewChildHandler(svc.Child, svc.Homework),
		Student:    NewStudentHandler(svc.Student),
		Homework:   NewHomeworkHandler(svc.Homework),
		Submission: NewSubmissionHandler(svc.Submission, cfg.Storage.MaxUploadBytes),
		Feedback:   NewFeedbackHandler(svc.Feedback),
		Metrics:    NewMetricsHandler(svc.Metrics),
		Export:     NewExportHandler(svc.Export),
	}
}
