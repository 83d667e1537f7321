package service

import (
	"context"
	"errors"
	"time"

	"go.uber.org/zap"
	"gorm.io/gorm"

	"github.com/SanghaLM/Code-to-Give-Team10-sub000/internal/dto"
	"github.com/SanghaLM/Code-to-Give-Team10-sub000/internal/model"
	"github.com/SanghaLM/Code-to-Give-Team10-sub000/internal/repository"
	pkgerrors "github.com/SanghaLM/Code-to-Give-Team10-sub000/pkg/errors"
)

// ── 师生关系模块业务错误 ──

var (
	ErrTeacherNotFound      = pkgerrors.New(pkgerrors.KindNotFound, 13001, "Teacher not found")
	ErrRequestAlreadyExists = pkgerrors.New(pkgerrors.KindConflict, 13002, "Teacher request already pending")
	ErrAlreadyApproved      = pkgerrors.New(pkgerrors.KindConflict, 13003, "Teacher already approved for this child")
	ErrNoPendingRequest     = pkgerrors.New(pkgerrors.KindInvalidState, 13004, "No pending request from this student")
)

// StudentService 师生关系业务接口
//
// 每个 (teacher, child) 对只有一行 teacher_students 记录：
//
//	none ──requestTeacher──▶ pending ──approveStudent──▶ approved
//
// 不存在回退，审批是对同一行的原子状态切换。
type StudentService interface {
	RequestTeacher(ctx context.Context, parentID string, req *dto.RequestTeacherRequest) (*dto.RelationshipResponse, error)
	ApproveStudent(ctx context.Context, teacherID, childID string) (*dto.RelationshipResponse, error)
	GetPendingStudents(ctx context.Context, teacherID string) ([]dto.StudentSummary, error)
	ListStudents(ctx context.Context, teacherID string) ([]dto.StudentSummary, error)
}

type studentService struct {
	repo   *repository.Repository
	logger *zap.Logger
}

// NewStudentService 创建 StudentService 实例
func NewStudentService(repo *repository.Repository, logger *zap.Logger) StudentService {
	return &studentService{repo: repo, logger: logger}
}

// ────────────────────── RequestTeacher ──────────────────────

func (s *studentService) RequestTeacher(ctx context.Context, parentID string, req *dto.RequestTeacherRequest) (*dto.RelationshipResponse, error) {
	if !model.IsValidID(req.TeacherID) {
		return nil, ErrInvalidID
	}
	child, err := loadOwnedChild(ctx, s.repo, s.logger, parentID, req.ChildID)
	if err != nil {
		return nil, err
	}

	if _, err := s.repo.Teacher.GetByID(ctx, req.TeacherID); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrTeacherNotFound
		}
		s.logger.Error("查询教师失败", zap.Error(err))
		return nil, err
	}

	existing, err := s.repo.TeacherStudent.Get(ctx, req.TeacherID, child.ChildID)
	if err != nil && !errors.Is(err, gorm.ErrRecordNotFound) {
		s.logger.Error("查询师生关系失败", zap.Error(err))
		return nil, err
	}
	if existing != nil {
		if existing.Status == model.RelationApproved {
			return nil, ErrAlreadyApproved
		}
		return nil, ErrRequestAlreadyExists
	}

	rel := &model.TeacherStudent{
		TeacherID:   req.TeacherID,
		ChildID:     child.ChildID,
		Status:      model.RelationPending,
		RequestedBy: parentID,
		RequestedAt: time.Now(),
	}
	if err := s.repo.TeacherStudent.Create(ctx, rel); err != nil {
		// 并发重复申请由主键约束兜底
		if errors.Is(err, gorm.ErrDuplicatedKey) {
			return nil, ErrRequestAlreadyExists
		}
		s.logger.Error("创建师生关系失败", zap.Error(err))
		return nil, err
	}

	resp := toRelationshipResponse(rel)
	return &resp, nil
}

// ────────────────────── ApproveStudent ──────────────────────

func (s *studentService) ApproveStudent(ctx context.Context, teacherID, childID string) (*dto.RelationshipResponse, error) {
	if !model.IsValidID(childID) {
		return nil, ErrInvalidID
	}

	var approved *model.TeacherStudent
	err := s.repo.Transaction(ctx, func(txRepo *repository.Repository) error {
		rel, err := txRepo.TeacherStudent.GetForUpdate(ctx, teacherID, childID)
		if err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return ErrNoPendingRequest
			}
			return err
		}
		if rel.Status != model.RelationPending {
			return ErrNoPendingRequest
		}

		now := time.Now()
		rel.Status = model.RelationApproved
		rel.ApprovedAt = &now
		if err := txRepo.TeacherStudent.Update(ctx, rel); err != nil {
			return err
		}
		approved = rel
		return nil
	})
	if err != nil {
		if !errors.Is(err, ErrNoPendingRequest) {
			s.logger.Error("审批学生失败", zap.String("child_id", childID), zap.Error(err))
		}
		return nil, err
	}

	resp := toRelationshipResponse(approved)
	return &resp, nil
}

// ────────────────────── Listing ──────────────────────

func (s *studentService) GetPendingStudents(ctx context.Context, teacherID string) ([]dto.StudentSummary, error) {
	return s.listChildren(ctx, teacherID, model.RelationPending)
}

func (s *studentService) ListStudents(ctx context.Context, teacherID string) ([]dto.StudentSummary, error) {
	return s.listChildren(ctx, teacherID, model.RelationApproved)
}

func (s *studentService) listChildren(ctx context.Context, teacherID, status string) ([]dto.StudentSummary, error) {
	children, err := s.repo.TeacherStudent.ListChildren(ctx, teacherID, status)
	if err != nil {
		s.logger.Error("查询学生列表失败", zap.String("status", status), zap.Error(err))
		return nil, err
	}

	result := make([]dto.StudentSummary, 0, len(children))
	for i := range children {
		result = append(result, toStudentSummary(&children[i]))
	}
	return result, nil
}

func toRelationshipResponse(rel *model.TeacherStudent) dto.RelationshipResponse {
	return dto.RelationshipResponse{
		TeacherID:   rel.TeacherID,
		ChildID:     rel.ChildID,
		Status:      rel.Status,
		RequestedAt: formatTime(rel.RequestedAt),
		ApprovedAt:  formatTimePtr(rel.ApprovedAt),
	}
}
