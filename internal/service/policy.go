package service

import (
	"context"
	"errors"

	"gorm.io/gorm"

	"github.com/SanghaLM/Code-to-Give-Team10-sub000/config"
	"github.com/SanghaLM/Code-to-Give-Team10-sub000/internal/model"
	"github.com/SanghaLM/Code-to-Give-Team10-sub000/internal/repository"
)

// Policy 跨实体的授权与引用校验，由作业与评分流程注入使用
type Policy interface {
	// CanAssign 作业的 assignedTo 是否均为已存在的学生
	CanAssign(ctx context.Context, childIDs []string) (bool, error)
	// CanGrade 教师是否可为该提交评分
	CanGrade(ctx context.Context, teacherID string, sub *model.Submission) (bool, error)
}

type policy struct {
	repo    *repository.Repository
	feature config.FeatureConfig
}

// NewPolicy 创建 Policy；校验强度由功能开关控制
func NewPolicy(repo *repository.Repository, feature config.FeatureConfig) Policy {
	return &policy{repo: repo, feature: feature}
}

func (p *policy) CanAssign(ctx context.Context, childIDs []string) (bool, error) {
	if !p.feature.ValidateAssignees || len(childIDs) == 0 {
		return true, nil
	}
	children, err := p.repo.Child.ListByIDs(ctx, childIDs)
	if err != nil {
		return false, err
	}
	found := make(map[string]bool, len(children))
	for _, c := range children {
		found[c.ChildID] = true
	}
	for _, id := range childIDs {
		if !found[id] {
			return false, nil
		}
	}
	return true, nil
}

// CanGrade 宽松模式下任何教师均可评分；严格模式要求作业归属或已审批的师生关系
func (p *policy) CanGrade(ctx context.Context, teacherID string, sub *model.Submission) (bool, error) {
	if !p.feature.StrictGrading {
		return true, nil
	}

	hw, err := p.repo.Homework.GetByID(ctx, sub.HomeworkID)
	switch {
	case err == nil:
		if hw.TeacherID == teacherID {
			return true, nil
		}
	case !errors.Is(err, gorm.ErrRecordNotFound):
		return false, err
	}

	rel, err := p.repo.TeacherStudent.Get(ctx, teacherID, sub.StudentID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return false, nil
		}
		return false, err
	}
	return rel.Status == model.RelationApproved, nil
}
