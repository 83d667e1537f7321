package service

import (
	"context"
	"errors"
	"fmt"

	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"
	"gorm.io/gorm"

	"github.com/SanghaLM/Code-to-Give-Team10-sub000/internal/dto"
	"github.com/SanghaLM/Code-to-Give-Team10-sub000/internal/model"
	"github.com/SanghaLM/Code-to-Give-Team10-sub000/internal/repository"
	pkgerrors "github.com/SanghaLM/Code-to-Give-Team10-sub000/pkg/errors"
)

// ── 统计模块业务错误 ──

var (
	ErrStudentNotFound    = pkgerrors.New(pkgerrors.KindNotFound, 17001, "Student not found")
	ErrStudentNotApproved = pkgerrors.New(pkgerrors.KindForbidden, 17002, "Teacher has no approved relationship with this student")
)

// MetricsService 统计业务接口；所有结果每次请求实时计算，不落库
type MetricsService interface {
	HomeworkMetrics(ctx context.Context, p Principal, homeworkID string) (*dto.HomeworkMetricsResponse, error)
	StudentProgress(ctx context.Context, p Principal, studentID string) (*dto.StudentProgressResponse, error)
}

type metricsService struct {
	repo   *repository.Repository
	logger *zap.Logger
}

// NewMetricsService 创建 MetricsService 实例
func NewMetricsService(repo *repository.Repository, logger *zap.Logger) MetricsService {
	return &metricsService{repo: repo, logger: logger}
}

// ────────────────────── HomeworkMetrics ──────────────────────

func (s *metricsService) HomeworkMetrics(ctx context.Context, p Principal, homeworkID string) (*dto.HomeworkMetricsResponse, error) {
	if !model.IsValidID(homeworkID) {
		return nil, ErrInvalidID
	}
	if _, err := s.repo.Homework.GetByID(ctx, homeworkID); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrHomeworkNotFound
		}
		s.logger.Error("查询作业失败", zap.String("homework_id", homeworkID), zap.Error(err))
		return nil, err
	}

	subs, err := s.repo.Submission.ListByHomework(ctx, homeworkID, parentScope(p))
	if err != nil {
		s.logger.Error("查询提交列表失败", zap.String("homework_id", homeworkID), zap.Error(err))
		return nil, err
	}

	m := ComputeHomeworkMetrics(subs)
	m.HomeworkID = homeworkID
	return &m, nil
}

// ComputeHomeworkMetrics 作业维度统计：
//   - completionRate = 已完成 / 总提交 × 100
//   - parentParticipationRate = 含家长录音的提交 / 总提交 × 100
//   - averageScore = 各提交录音均值的均值（嵌套平均，无录音的提交记 0）
//   - averageTimeTakenSeconds = 用时均值，未提交的记 0
//
// 总提交为 0 时各项均为 "0.00"。
func ComputeHomeworkMetrics(subs []model.Submission) dto.HomeworkMetricsResponse {
	total := len(subs)
	var completed, withParent, timeTaken int
	var scoreSum float64

	for i := range subs {
		sub := &subs[i]
		if sub.IsCompleted() {
			completed++
		}
		if sub.HasParentRecording() {
			withParent++
		}
		scoreSum += sub.RecordingAverage()
		if sub.TimeTakenSeconds != nil {
			timeTaken += *sub.TimeTakenSeconds
		}
	}

	return dto.HomeworkMetricsResponse{
		TotalSubmissions:        total,
		CompletedSubmissions:    completed,
		CompletionRate:          formatRatio(float64(completed)*100, total),
		ParentParticipationRate: formatRatio(float64(withParent)*100, total),
		AverageScore:            formatRatio(scoreSum, total),
		AverageTimeTakenSeconds: formatRatio(float64(timeTaken), total),
	}
}

func formatRatio(numerator float64, denominator int) string {
	if denominator == 0 {
		return "0.00"
	}
	return fmt.Sprintf("%.2f", numerator/float64(denominator))
}

// ────────────────────── StudentProgress ──────────────────────

// StudentProgress 学生维度进度。avgScore 取已完成提交上教师写入的 score 字段
// （缺失记 0），与作业维度的录音均值口径不同。
func (s *metricsService) StudentProgress(ctx context.Context, p Principal, studentID string) (*dto.StudentProgressResponse, error) {
	if !model.IsValidID(studentID) {
		return nil, ErrInvalidID
	}

	child, err := s.repo.Child.GetByID(ctx, studentID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrStudentNotFound
		}
		s.logger.Error("查询学生失败", zap.String("student_id", studentID), zap.Error(err))
		return nil, err
	}

	if p.Role != model.RoleAdmin {
		rel, err := s.repo.TeacherStudent.Get(ctx, p.ID, studentID)
		if err != nil && !errors.Is(err, gorm.ErrRecordNotFound) {
			s.logger.Error("查询师生关系失败", zap.Error(err))
			return nil, err
		}
		if rel == nil || rel.Status != model.RelationApproved {
			return nil, ErrStudentNotApproved
		}
	}

	var (
		assigned int64
		subs     []model.Submission
	)
	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		var err error
		assigned, err = s.repo.Homework.CountAssignedTo(gctx, studentID)
		return err
	})
	g.Go(func() error {
		var err error
		subs, err = s.repo.Submission.ListByStudent(gctx, studentID)
		return err
	})
	if err := g.Wait(); err != nil {
		s.logger.Error("统计学生进度失败", zap.String("student_id", studentID), zap.Error(err))
		return nil, err
	}

	resp := ComputeStudentProgress(assigned, subs)
	resp.StudentID = child.ChildID
	resp.Name = child.Name
	return &resp, nil
}

// ComputeStudentProgress 学生维度统计；completionRate 为未格式化的百分比
func ComputeStudentProgress(assigned int64, subs []model.Submission) dto.StudentProgressResponse {
	var completed int
	var scoreSum float64
	for i := range subs {
		if !subs[i].IsCompleted() {
			continue
		}
		completed++
		if subs[i].Score != nil {
			scoreSum += *subs[i].Score
		}
	}

	resp := dto.StudentProgressResponse{
		TotalAssigned:  assigned,
		TotalCompleted: completed,
		Submissions:    toSubmissionResponses(subs),
	}
	if assigned > 0 {
		resp.CompletionRate = float64(completed) / float64(assigned) * 100
	}
	if completed > 0 {
		resp.AvgScore = scoreSum / float64(completed)
	}
	return resp
}
