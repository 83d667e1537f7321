package repository

import (
	"context"

	"gorm.io/gorm"

	"github.com/SanghaLM/Code-to-Give-Team10-sub000/internal/model"
	pkgerrors "github.com/SanghaLM/Code-to-Give-Team10-sub000/pkg/errors"
)

// HomeworkRepository 作业数据访问接口
type HomeworkRepository interface {
	// Create 同时写入单词列表与布置对象
	Create(ctx context.Context, hw *model.Homework) error
	// GetByID 预加载按 position 排序的单词与布置对象
	GetByID(ctx context.Context, id string) (*model.Homework, error)
	// Update 基于 version 乐观锁更新，并整体替换单词列表与布置对象
	Update(ctx context.Context, hw *model.Homework) error
	Delete(ctx context.Context, id string, deletedBy string) error
	ListByTeacher(ctx context.Context, teacherID string) ([]model.Homework, error)
	ListAssignedTo(ctx context.Context, childID string) ([]model.Homework, error)
	CountAssignedTo(ctx context.Context, childID string) (int64, error)
}

type homeworkRepo struct {
	db *gorm.DB
}

// NewHomeworkRepo 创建 HomeworkRepository 实例
func NewHomeworkRepo(db *gorm.DB) HomeworkRepository {
	return &homeworkRepo{db: db}
}

func orderedWords(db *gorm.DB) *gorm.DB {
	return db.Order("position ASC")
}

func (r *homeworkRepo) Create(ctx context.Context, hw *model.Homework) error {
	return r.db.WithContext(ctx).Create(hw).Error
}

func (r *homeworkRepo) GetByID(ctx context.Context, id string) (*model.Homework, error) {
	var hw model.Homework
	err := r.db.WithContext(ctx).
		Preload("Words", orderedWords).
		Preload("Assignees").
		Where("homework_id = ?", id).
		First(&hw).Error
	if err != nil {
		return nil, err
	}
	return &hw, nil
}

func (r *homeworkRepo) Update(ctx context.Context, hw *model.Homework) error {
	oldVersion := hw.Version
	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		result := tx.Model(&model.Homework{}).
			Where("homework_id = ? AND version = ?", hw.HomeworkID, oldVersion).
			Updates(map[string]interface{}{
				"title":      hw.Title,
				"due_date":   hw.DueDate,
				"updated_by": hw.UpdatedBy,
				"updated_at": gorm.Expr("CURRENT_TIMESTAMP"),
				"version":    oldVersion + 1,
			})
		if result.Error != nil {
			return result.Error
		}
		if result.RowsAffected == 0 {
			return pkgerrors.ErrOptimisticLock
		}

		if err := tx.Where("homework_id = ?", hw.HomeworkID).Delete(&model.HomeworkWord{}).Error; err != nil {
			return err
		}
		if len(hw.Words) > 0 {
			for i := range hw.Words {
				hw.Words[i].HomeworkID = hw.HomeworkID
			}
			if err := tx.Create(&hw.Words).Error; err != nil {
				return err
			}
		}

		if err := tx.Where("homework_id = ?", hw.HomeworkID).Delete(&model.HomeworkAssignee{}).Error; err != nil {
			return err
		}
		if len(hw.Assignees) > 0 {
			for i := range hw.Assignees {
				hw.Assignees[i].HomeworkID = hw.HomeworkID
			}
			if err := tx.Create(&hw.Assignees).Error; err != nil {
				return err
			}
		}
		return nil
	})
	if err != nil {
		return err
	}
	hw.Version = oldVersion + 1
	return nil
}

func (r *homeworkRepo) Delete(ctx context.Context, id string, deletedBy string) error {
	return r.db.WithContext(ctx).
		Model(&model.Homework{}).
		Where("homework_id = ?", id).
		Updates(map[string]interface{}{
			"deleted_by": deletedBy,
			"deleted_at": gorm.Expr("CURRENT_TIMESTAMP"),
		}).Error
}

func (r *homeworkRepo) ListByTeacher(ctx context.Context, teacherID string) ([]model.Homework, error) {
	var list []model.Homework
	err := r.db.WithContext(ctx).
		Preload("Words", orderedWords).
		Preload("Assignees").
		Where("teacher_id = ?", teacherID).
		Order("due_date ASC").
		Find(&list).Error
	return list, err
}

func (r *homeworkRepo) ListAssignedTo(ctx context.Context, childID string) ([]model.Homework, error) {
	var list []model.Homework
	err := r.db.WithContext(ctx).
		Preload("Words", orderedWords).
		Preload("Assignees").
		Joins("JOIN homework_assignees ha ON ha.homework_id = homeworks.homework_id").
		Where("ha.child_id = ?", childID).
		Order("homeworks.due_date ASC").
		Find(&list).Error
	return list, err
}

func (r *homeworkRepo) CountAssignedTo(ctx context.Context, childID string) (int64, error) {
	var count int64
	err := r.db.WithContext(ctx).
		Model(&model.Homework{}).
		Joins("JOIN homework_assignees ha ON ha.homework_id = homeworks.homework_id").
		Where("ha.child_id = ?", childID).
		Count(&count).Error
	return count, err
}
