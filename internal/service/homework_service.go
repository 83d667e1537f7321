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

// ModeParentGuided 开始作业时返回的默认模式
const ModeParentGuided = "parent-guided"

// ── 作业模块业务错误 ──

var (
	ErrHomeworkNotFound = pkgerrors.New(pkgerrors.KindNotFound, 14001, "Homework not found")
	ErrHomeworkNoWords  = pkgerrors.New(pkgerrors.KindValidation, 14002, "Homework requires at least one word")
	ErrHomeworkTitle    = pkgerrors.New(pkgerrors.KindValidation, 14003, "Title is required")
	ErrUnknownAssignee  = pkgerrors.New(pkgerrors.KindValidation, 14004, "assignedTo contains unknown students")
	ErrHomeworkNotOwner = pkgerrors.New(pkgerrors.KindForbidden, 14005, "Only the owning teacher can modify this homework")
	ErrDuplicateWordID  = pkgerrors.New(pkgerrors.KindValidation, 14006, "Duplicate word id")
	ErrUnknownWordID    = pkgerrors.New(pkgerrors.KindValidation, 14007, "wordId does not belong to this homework")
)

// HomeworkService 作业业务接口
type HomeworkService interface {
	Create(ctx context.Context, teacherID string, req *dto.CreateHomeworkRequest) (*dto.HomeworkResponse, error)
	GetByID(ctx context.Context, id string) (*dto.HomeworkResponse, error)
	Update(ctx context.Context, p Principal, id string, req *dto.UpdateHomeworkRequest) (*dto.HomeworkResponse, error)
	// Delete 软删除，不级联删除已有提交
	Delete(ctx context.Context, p Principal, id string) error
	ListMine(ctx context.Context, teacherID string) ([]dto.HomeworkResponse, error)
	// GetAssigned 家长查看布置给自己孩子的作业
	GetAssigned(ctx context.Context, parentID, childID string) ([]dto.HomeworkResponse, error)
	// Start 返回单词列表与默认模式，不创建提交
	Start(ctx context.Context, id string) (*dto.StartHomeworkResponse, error)
}

type homeworkService struct {
	repo   *repository.Repository
	policy Policy
	logger *zap.Logger
}

// NewHomeworkService 创建 HomeworkService 实例
func NewHomeworkService(repo *repository.Repository, policy Policy, logger *zap.Logger) HomeworkService {
	return &homeworkService{repo: repo, policy: policy, logger: logger}
}

// ────────────────────── Create ──────────────────────

func (s *homeworkService) Create(ctx context.Context, teacherID string, req *dto.CreateHomeworkRequest) (*dto.HomeworkResponse, error) {
	title := strings.TrimSpace(req.Title)
	if title == "" {
		return nil, ErrHomeworkTitle
	}
	words, err := buildWords(req.Words, nil)
	if err != nil {
		return nil, err
	}
	assignees := dedupeIDs(req.AssignedTo)
	if err := s.checkAssignees(ctx, assignees); err != nil {
		return nil, err
	}

	hw := &model.Homework{
		Title:     title,
		TeacherID: teacherID,
		DueDate:   req.DueDate,
		Words:     words,
		Assignees: toAssignees(assignees),
	}
	hw.Version = 1
	hw.CreatedBy = &teacherID
	hw.UpdatedBy = &teacherID

	if err := s.repo.Homework.Create(ctx, hw); err != nil {
		s.logger.Error("创建作业失败", zap.Error(err))
		return nil, err
	}

	resp := toHomeworkResponse(hw)
	return &resp, nil
}

// ────────────────────── Read ──────────────────────

func (s *homeworkService) GetByID(ctx context.Context, id string) (*dto.HomeworkResponse, error) {
	hw, err := s.load(ctx, id)
	if err != nil {
		return nil, err
	}
	resp := toHomeworkResponse(hw)
	return &resp, nil
}

func (s *homeworkService) ListMine(ctx context.Context, teacherID string) ([]dto.HomeworkResponse, error) {
	list, err := s.repo.Homework.ListByTeacher(ctx, teacherID)
	if err != nil {
		s.logger.Error("查询教师作业列表失败", zap.Error(err))
		return nil, err
	}
	return toHomeworkResponses(list), nil
}

func (s *homeworkService) GetAssigned(ctx context.Context, parentID, childID string) ([]dto.HomeworkResponse, error) {
	child, err := loadOwnedChild(ctx, s.repo, s.logger, parentID, childID)
	if err != nil {
		return nil, err
	}

	list, err := s.repo.Homework.ListAssignedTo(ctx, child.ChildID)
	if err != nil {
		s.logger.Error("查询学生作业列表失败", zap.Error(err))
		return nil, err
	}
	return toHomeworkResponses(list), nil
}

func (s *homeworkService) Start(ctx context.Context, id string) (*dto.StartHomeworkResponse, error) {
	hw, err := s.load(ctx, id)
	if err != nil {
		return nil, err
	}
	return &dto.StartHomeworkResponse{
		HomeworkID: hw.HomeworkID,
		Title:      hw.Title,
		Words:      toWordResponses(hw.Words),
		Mode:       ModeParentGuided,
	}, nil
}

// ────────────────────── Update ──────────────────────

func (s *homeworkService) Update(ctx context.Context, p Principal, id string, req *dto.UpdateHomeworkRequest) (*dto.HomeworkResponse, error) {
	hw, err := s.load(ctx, id)
	if err != nil {
		return nil, err
	}
	if !canModify(p, hw) {
		return nil, ErrHomeworkNotOwner
	}
	if req.Version != nil && *req.Version != hw.Version {
		return nil, pkgerrors.ErrOptimisticLock
	}

	if req.Title != nil {
		title := strings.TrimSpace(*req.Title)
		if title == "" {
			return nil, ErrHomeworkTitle
		}
		hw.Title = title
	}
	if req.DueDate != nil {
		hw.DueDate = *req.DueDate
	}
	if req.Words != nil {
		words, err := buildWords(*req.Words, existingWordIDs(hw))
		if err != nil {
			return nil, err
		}
		hw.Words = words
	}
	if req.AssignedTo != nil {
		assignees := dedupeIDs(*req.AssignedTo)
		if err := s.checkAssignees(ctx, assignees); err != nil {
			return nil, err
		}
		hw.Assignees = toAssignees(assignees)
	}
	hw.UpdatedBy = &p.ID

	if err := s.repo.Homework.Update(ctx, hw); err != nil {
		if errors.Is(err, pkgerrors.ErrOptimisticLock) {
			return nil, err
		}
		s.logger.Error("更新作业失败", zap.String("homework_id", id), zap.Error(err))
		return nil, err
	}

	resp := toHomeworkResponse(hw)
	return &resp, nil
}

// ────────────────────── Delete ──────────────────────

func (s *homeworkService) Delete(ctx context.Context, p Principal, id string) error {
	hw, err := s.load(ctx, id)
	if err != nil {
		return err
	}
	if !canModify(p, hw) {
		return ErrHomeworkNotOwner
	}

	if err := s.repo.Homework.Delete(ctx, id, p.ID); err != nil {
		s.logger.Error("删除作业失败", zap.String("homework_id", id), zap.Error(err))
		return err
	}
	return nil
}

// ── 内部辅助 ──

func (s *homeworkService) load(ctx context.Context, id string) (*model.Homework, error) {
	if !model.IsValidID(id) {
		return nil, ErrInvalidID
	}
	hw, err := s.repo.Homework.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrHomeworkNotFound
		}
		s.logger.Error("查询作业失败", zap.String("homework_id", id), zap.Error(err))
		return nil, err
	}
	return hw, nil
}

func (s *homeworkService) checkAssignees(ctx context.Context, ids []string) error {
	for _, id := range ids {
		if !model.IsValidID(id) {
			return ErrInvalidID
		}
	}
	ok, err := s.policy.CanAssign(ctx, ids)
	if err != nil {
		s.logger.Error("校验布置对象失败", zap.Error(err))
		return err
	}
	if !ok {
		return ErrUnknownAssignee
	}
	return nil
}

func canModify(p Principal, hw *model.Homework) bool {
	return p.Role == model.RoleAdmin || hw.TeacherID == p.ID
}

// buildWords 校验并生成单词列表；携带 wordId 的单词保留原标识，
// 且该标识必须属于 known（创建时 known 为空，不接受客户端标识）
func buildWords(in []dto.WordInput, known map[string]bool) ([]model.HomeworkWord, error) {
	if len(in) == 0 {
		return nil, ErrHomeworkNoWords
	}
	seen := make(map[string]bool, len(in))
	words := make([]model.HomeworkWord, 0, len(in))
	for i, w := range in {
		text := strings.TrimSpace(w.Word)
		if text == "" {
			return nil, ErrHomeworkNoWords
		}
		if w.WordID != "" {
			if !model.IsValidID(w.WordID) {
				return nil, ErrInvalidID
			}
			if seen[w.WordID] {
				return nil, ErrDuplicateWordID
			}
			if !known[w.WordID] {
				return nil, ErrUnknownWordID
			}
			seen[w.WordID] = true
		}
		words = append(words, model.HomeworkWord{
			WordID:   w.WordID,
			Position: i + 1,
			Word:     text,
			Example:  strings.TrimSpace(w.Example),
		})
	}
	return words, nil
}

func existingWordIDs(hw *model.Homework) map[string]bool {
	ids := make(map[string]bool, len(hw.Words))
	for _, w := range hw.Words {
		ids[w.WordID] = true
	}
	return ids
}

func dedupeIDs(ids []string) []string {
	seen := make(map[string]bool, len(ids))
	out := make([]string, 0, len(ids))
	for _, id := range ids {
		if seen[id] {
			continue
		}
		seen[id] = true
		out = append(out, id)
	}
	return out
}

func toAssignees(ids []string) []model.HomeworkAssignee {
	out := make([]model.HomeworkAssignee, 0, len(ids))
	for _, id := range ids {
		out = append(out, model.HomeworkAssignee{ChildID: id})
	}
	return out
}

func toWordResponses(words []model.HomeworkWord) []dto.WordResponse {
	out := make([]dto.WordResponse, 0, len(words))
	for _, w := range words {
		out = append(out, dto.WordResponse{WordID: w.WordID, Word: w.Word, Example: w.Example})
	}
	return out
}

func toHomeworkResponse(hw *model.Homework) dto.HomeworkResponse {
	return dto.HomeworkResponse{
		ID:         hw.HomeworkID,
		Title:      hw.Title,
		TeacherID:  hw.TeacherID,
		DueDate:    formatTime(hw.DueDate),
		Words:      toWordResponses(hw.Words),
		AssignedTo: hw.AssignedTo(),
		Version:    hw.Version,
		CreatedAt:  formatTime(hw.CreatedAt),
		UpdatedAt:  formatTime(hw.UpdatedAt),
	}
}

func toHomeworkResponses(list []model.Homework) []dto.HomeworkResponse {
	out := make([]dto.HomeworkResponse, 0, len(list))
	for i := range list {
		out = append(out, toHomeworkResponse(&list[i]))
	}
	return out
}
