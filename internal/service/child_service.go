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

// ── 学生模块业务错误 ──

var (
	ErrChildNotFound     = pkgerrors.New(pkgerrors.KindNotFound, 12001, "Child not found")
	ErrInvalidGradeLevel = pkgerrors.New(pkgerrors.KindValidation, 12002, "Level must be one of K1, K2, K3")
)

// ChildService 学生（孩子）业务接口
type ChildService interface {
	Create(ctx context.Context, parentID string, req *dto.CreateChildRequest) (*dto.ChildResponse, error)
	ListMine(ctx context.Context, parentID string) ([]dto.ChildResponse, error)
}

type childService struct {
	repo   *repository.Repository
	logger *zap.Logger
}

// NewChildService 创建 ChildService 实例
func NewChildService(repo *repository.Repository, logger *zap.Logger) ChildService {
	return &childService{repo: repo, logger: logger}
}

func (s *childService) Create(ctx context.Context, parentID string, req *dto.CreateChildRequest) (*dto.ChildResponse, error) {
	if !model.IsValidLevel(req.Level) {
		return nil, ErrInvalidGradeLevel
	}

	child := &model.Child{
		ParentID: parentID,
		Name:     strings.TrimSpace(req.Name),
		Level:    req.Level,
		School:   strings.TrimSpace(req.School),
	}
	child.CreatedBy = &parentID
	child.UpdatedBy = &parentID

	if err := s.repo.Child.Create(ctx, child); err != nil {
		s.logger.Error("创建学生失败", zap.Error(err))
		return nil, err
	}

	resp := toChildResponse(child)
	return &resp, nil
}

func (s *childService) ListMine(ctx context.Context, parentID string) ([]dto.ChildResponse, error) {
	children, err := s.repo.Child.ListByParent(ctx, parentID)
	if err != nil {
		s.logger.Error("查询学生列表失败", zap.Error(err))
		return nil, err
	}

	result := make([]dto.ChildResponse, 0, len(children))
	for i := range children {
		result = append(result, toChildResponse(&children[i]))
	}
	return result, nil
}

// loadOwnedChild 加载学生并校验归属；不存在或不属于该家长均视为 NotFound
func loadOwnedChild(ctx context.Context, repo *repository.Repository, logger *zap.Logger, parentID, childID string) (*model.Child, error) {
	if !model.IsValidID(childID) {
		return nil, ErrInvalidID
	}
	child, err := repo.Child.GetByID(ctx, childID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrChildNotFound
		}
		logger.Error("查询学生失败", zap.String("child_id", childID), zap.Error(err))
		return nil, err
	}
	if child.ParentID != parentID {
		return nil, ErrChildNotFound
	}
	return child, nil
}

func toChildResponse(c *model.Child) dto.ChildResponse {
	return dto.ChildResponse{
		ID:       c.ChildID,
		ParentID: c.ParentID,
		Name:     c.Name,
		Level:    c.Level,
		School:   c.School,
	}
}

func toStudentSummary(c *model.Child) dto.StudentSummary {
	return dto.StudentSummary{
		ID:     c.ChildID,
		Name:   c.Name,
		School: c.School,
		Level:  c.Level,
	}
}
