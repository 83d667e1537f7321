package service

import (
	"context"
	"errors"
	"strings"

	"go.uber.org/zap"
	"gorm.io/gorm"

	"github.com/SanghaLM/Code-to-Give-Team10-sub000/internal/dto"
	"github.com/SanghaLM/Code-to-Give-Team10-sub000/internal/model"
	"github.com/SanghaLM/Code-to-Give-Team10-sub000/internal/repository"
	pkgerrors "github.com/SanghaLM/Code-to-Give-Team10-sub000/pkg/errors"
)

// ── 评分模块业务错误 ──

var (
	ErrFeedbackScoreRange = pkgerrors.New(pkgerrors.KindValidation, 16001, "Score must be between 0 and 100")
	ErrFeedbackEmpty      = pkgerrors.New(pkgerrors.KindValidation, 16002, "Feedback is required")
	ErrCannotGrade        = pkgerrors.New(pkgerrors.KindForbidden, 16003, "Teacher is not allowed to grade this submission")
)

// FeedbackService 教师评分业务接口
type FeedbackService interface {
	// Provide 同一事务内写入提交上的冗余 score/feedback 并追加一条评语历史
	Provide(ctx context.Context, teacherID, submissionID string, req *dto.ProvideFeedbackRequest) (*dto.FeedbackResponse, error)
	// List 按时间倒序返回评语历史；家长只能查看自己的提交
	List(ctx context.Context, p Principal, submissionID string) ([]dto.FeedbackResponse, error)
}

type feedbackService struct {
	repo   *repository.Repository
	policy Policy
	logger *zap.Logger
}

// NewFeedbackService 创建 FeedbackService 实例
func NewFeedbackService(repo *repository.Repository, policy Policy, logger *zap.Logger) FeedbackService {
	return &feedbackService{repo: repo, policy: policy, logger: logger}
}

func (s *feedbackService) Provide(ctx context.Context, teacherID, submissionID string, req *dto.ProvideFeedbackRequest) (*dto.FeedbackResponse, error) {
	if !model.IsValidID(submissionID) {
		return nil, ErrInvalidID
	}
	text := strings.TrimSpace(req.Feedback)
	if text == "" {
		return nil, ErrFeedbackEmpty
	}
	if req.Score == nil || *req.Score < 0 || *req.Score > 100 {
		return nil, ErrFeedbackScoreRange
	}
	score := *req.Score

	var fb *model.SubmissionFeedback
	err := s.repo.Transaction(ctx, func(txRepo *repository.Repository) error {
		sub, err := txRepo.Submission.GetForUpdate(ctx, submissionID)
		if err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return ErrSubmissionNotFound
			}
			return err
		}

		ok, err := s.policy.CanGrade(ctx, teacherID, sub)
		if err != nil {
			return err
		}
		if !ok {
			return ErrCannotGrade
		}

		sub.Score = &score
		sub.Feedback = &text
		sub.UpdatedBy = &teacherID
		if err := txRepo.Submission.Update(ctx, sub); err != nil {
			return err
		}

		fb = &model.SubmissionFeedback{
			SubmissionID: submissionID,
			TeacherID:    teacherID,
			Feedback:     text,
			Score:        score,
		}
		return txRepo.Feedback.Create(ctx, fb)
	})
	if err != nil {
		if pkgerrors.KindOf(err) == pkgerrors.KindInternal {
			s.logger.Error("写入评语失败", zap.String("submission_id", submissionID), zap.Error(err))
		}
		return nil, err
	}

	resp := toFeedbackResponse(fb)
	return &resp, nil
}

func (s *feedbackService) List(ctx context.Context, p Principal, submissionID string) ([]dto.FeedbackResponse, error) {
	if !model.IsValidID(submissionID) {
		return nil, ErrInvalidID
	}

	sub, err := s.repo.Submission.GetByID(ctx, submissionID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrSubmissionNotFound
		}
		s.logger.Error("查询提交失败", zap.String("submission_id", submissionID), zap.Error(err))
		return nil, err
	}
	if p.IsParent() && sub.ParentID != p.ID {
		return nil, ErrSubmissionNotFound
	}

	list, err := s.repo.Feedback.ListBySubmission(ctx, submissionID)
	if err != nil {
		s.logger.Error("查询评语历史失败", zap.String("submission_id", submissionID), zap.Error(err))
		return nil, err
	}

	out := make([]dto.FeedbackResponse, 0, len(list))
	for i := range list {
		out = append(out, toFeedbackResponse(&list[i]))
	}
	return out, nil
}

func toFeedbackResponse(fb *model.SubmissionFeedback) dto.FeedbackResponse {
	resp := dto.FeedbackResponse{
		ID:           fb.FeedbackID,
		SubmissionID: fb.SubmissionID,
		TeacherID:    fb.TeacherID,
		Feedback:     fb.Feedback,
		Score:        fb.Score,
		CreatedAt:    formatTime(fb.CreatedAt),
	}
	if fb.Teacher != nil {
		resp.TeacherName = fb.Teacher.Name
	}
	return resp
}
