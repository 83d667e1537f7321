package repository

import (
	"context"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/SanghaLM/Code-to-Give-Team10-sub000/internal/model"
)

// SubmissionRepository 作业提交数据访问接口
type SubmissionRepository interface {
	Create(ctx context.Context, sub *model.Submission) error
	// GetByID 预加载按 position 排序的录音
	GetByID(ctx context.Context, id string) (*model.Submission, error)
	// GetByKeyForUpdate 按 (homework, student, parent) 行级锁读取，必须在事务内调用
	GetByKeyForUpdate(ctx context.Context, homeworkID, studentID, parentID string) (*model.Submission, error)
	// GetForUpdate 按主键行级锁读取，必须在事务内调用
	GetForUpdate(ctx context.Context, id string) (*model.Submission, error)
	Update(ctx context.Context, sub *model.Submission) error
	// ListByHomework parentID 为空时返回全部提交
	ListByHomework(ctx context.Context, homeworkID, parentID string) ([]model.Submission, error)
	ListByStudent(ctx context.Context, studentID string) ([]model.Submission, error)

	AppendRecording(ctx context.Context, rec *model.Recording) error
	CountRecordings(ctx context.Context, submissionID string) (int64, error)
}

type submissionRepo struct {
	db *gorm.DB
}

// NewSubmissionRepo 创建 SubmissionRepository 实例
func NewSubmissionRepo(db *gorm.DB) SubmissionRepository {
	return &submissionRepo{db: db}
}

func orderedRecordings(db *gorm.DB) *gorm.DB {
	return db.Order("position ASC")
}

func (r *submissionRepo) Create(ctx context.Context, sub *model.Submission) error {
	return r.db.WithContext(ctx).Omit(clause.Associations).Create(sub).Error
}

func (r *submissionRepo) GetByID(ctx context.Context, id string) (*model.Submission, error) {
	var sub model.Submission
	err := r.db.WithContext(ctx).
		Preload("Recordings", orderedRecordings).
		Preload("Student").
		Where("submission_id = ?", id).
		First(&sub).Error
	if err != nil {
		return nil, err
	}
	return &sub, nil
}

func (r *submissionRepo) GetByKeyForUpdate(ctx context.Context, homeworkID, studentID, parentID string) (*model.Submission, error) {
	var sub model.Submission
	err := r.db.WithContext(ctx).
		Clauses(clause.Locking{Strength: "UPDATE"}).
		Where("homework_id = ? AND student_id = ? AND parent_id = ?", homeworkID, studentID, parentID).
		First(&sub).Error
	if err != nil {
		return nil, err
	}
	return &sub, nil
}

func (r *submissionRepo) GetForUpdate(ctx context.Context, id string) (*model.Submission, error) {
	var sub model.Submission
	err := r.db.WithContext(ctx).
		Clauses(clause.Locking{Strength: "UPDATE"}).
		Where("submission_id = ?", id).
		First(&sub).Error
	if err != nil {
		return nil, err
	}
	return &sub, nil
}

func (r *submissionRepo) Update(ctx context.Context, sub *model.Submission) error {
	return r.db.WithContext(ctx).
		Model(&model.Submission{}).
		Where("submission_id = ?", sub.SubmissionID).
		Updates(map[string]interface{}{
			"status":             sub.Status,
			"time_taken_seconds": sub.TimeTakenSeconds,
			"completed_at":       sub.CompletedAt,
			"score":              sub.Score,
			"feedback":           sub.Feedback,
			"updated_by":         sub.UpdatedBy,
			"updated_at":         gorm.Expr("CURRENT_TIMESTAMP"),
		}).Error
}

func (r *submissionRepo) ListByHomework(ctx context.Context, homeworkID, parentID string) ([]model.Submission, error) {
	var list []model.Submission
	db := r.db.WithContext(ctx).
		Preload("Recordings", orderedRecordings).
		Preload("Student").
		Where("homework_id = ?", homeworkID)
	if parentID != "" {
		db = db.Where("parent_id = ?", parentID)
	}
	err := db.Order("created_at ASC").Find(&list).Error
	return list, err
}

func (r *submissionRepo) ListByStudent(ctx context.Context, studentID string) ([]model.Submission, error) {
	var list []model.Submission
	err := r.db.WithContext(ctx).
		Preload("Recordings", orderedRecordings).
		Where("student_id = ?", studentID).
		Order("created_at DESC").
		Find(&list).Error
	return list, err
}

func (r *submissionRepo) AppendRecording(ctx context.Context, rec *model.Recording) error {
	return r.db.WithContext(ctx).Create(rec).Error
}

func (r *submissionRepo) CountRecordings(ctx context.Context, submissionID string) (int64, error) {
	var count int64
	err := r.db.WithContext(ctx).
		Model(&model.Recording{}).
		Where("submission_id = ?", submissionID).
		Count(&count).Error
	return count, err
}
