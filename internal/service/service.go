package service

import (
	"context"
	"time"

	"go.uber.org/zap"

	"github.com/SanghaLM/Code-to-Give-Team10-sub000/config"
	"github.com/SanghaLM/Code-to-Give-Team10-sub000/internal/model"
	"github.com/SanghaLM/Code-to-Give-Team10-sub000/internal/repository"
	pkgerrors "github.com/SanghaLM/Code-to-Give-Team10-sub000/pkg/errors"
	"github.com/SanghaLM/Code-to-Give-Team10-sub000/pkg/jwt"
	"github.com/SanghaLM/Code-to-Give-Team10-sub000/pkg/storage"
)

// ── 通用业务错误 ──

var (
	ErrInvalidID    = pkgerrors.New(pkgerrors.KindValidation, 10006, "Invalid identifier")
	ErrNoPermission = pkgerrors.New(pkgerrors.KindForbidden, 10003, "Permission denied")
)

// Principal 由认证层注入的当前操作主体
type Principal struct {
	ID   string
	Role string
}

// IsParent 是否为家长
func (p Principal) IsParent() bool { return p.Role == model.RoleParent }

// IsStaff 是否为教师或管理员
func (p Principal) IsStaff() bool { return p.Role == model.RoleTeacher || p.Role == model.RoleAdmin }

// TokenBlacklist Token 注销黑名单
type TokenBlacklist interface {
	BlacklistToken(ctx context.Context, jti string, ttl time.Duration) error
}

// Service 所有 Service 的聚合入口
type Service struct {
	Auth       AuthService
	Child      ChildService
	Student    StudentService
	Homework   HomeworkService
	Submission SubmissionService
	Feedback   FeedbackService
	Metrics    MetricsService
	Export     ExportService
}

// NewService 创建 Service 聚合；blacklist 可为 nil（Redis 不可用时注销仅在客户端生效）
func NewService(
	cfg *config.Config,
	repo *repository.Repository,
	jwtMgr *jwt.Manager,
	blacklist TokenBlacklist,
	store storage.Storage,
	logger *zap.Logger,
) *Service {
	policy := NewPolicy(repo, cfg.Feature)
	metrics := NewMetricsService(repo, logger)
	return &Service{
		Auth:       NewAuthService(repo, jwtMgr, blacklist, logger),
		Child:      NewChildService(repo, logger),
		Student:    NewStudentService(repo, logger),
		Homework:   NewHomeworkService(repo, policy, logger),
		Submission: NewSubmissionService(repo, store, RandomScorer{}, logger),
		Feedback:   NewFeedbackService(repo, policy, logger),
		Metrics:    metrics,
		Export:     NewExportService(repo, metrics, logger),
	}
}

// formatTime 统一时间输出格式
func formatTime(t time.Time) string {
	return t.UTC().Format(time.RFC3339)
}

func formatTimePtr(t *time.Time) *string {
	if t == nil {
		return nil
	}
	s := formatTime(*t)
	return &s
}
