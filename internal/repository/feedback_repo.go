package repository

import (
	"context"

	"gorm.io/gorm"

	"github.com/SanghaLM/Code-to-Give-Team10-sub000/internal/model"
)

// FeedbackRepository 教师评语数据访问接口（只追加）
type FeedbackRepository interface {
	Create(ctx context.Context, fb *model.SubmissionFeedback) error
	// ListBySubmission 按时间倒序返回评语历史
	ListBySubmission(ctx context.Context, submissionID string) ([]model.SubmissionFeedback, error)
}

type feedbackRepo struct {
	db *gorm.DB
}

// NewFeedbackRepo 创建 FeedbackRepository 实例
func NewFeedbackRepo(db *gorm.DB) FeedbackRepository {
	return &feedbackRepo{db: db}
}

func (r *feedbackRepo) Create(ctx context.Context, fb *model.SubmissionFeedback) error {
	return r.db.WithContext(ctx).Create(fb).Error
}

func (r *feedbackRepo) ListBySubmission(ctx context.Context, submissionID string) ([]model.SubmissionFeedback, error) {
	var list []model.SubmissionFeedback
	err := r.db.WithContext(ctx).
		Preload("Teacher").
		Where("submission_id = ?", submissionID).
		Order("created_at DESC").
		Find(&list).Error
	return list, err
}
