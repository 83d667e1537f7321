package repository

import (
	"context"

	"gorm.io/gorm"

	"github.com/SanghaLM/Code-to-Give-Team10-sub000/internal/model"
)

// ParentRepository 家长数据访问接口
type ParentRepository interface {
	Create(ctx context.Context, parent *model.Parent) error
	GetByID(ctx context.Context, id string) (*model.Parent, error)
	GetByUsername(ctx context.Context, username string) (*model.Parent, error)
}

type parentRepo struct {
	db *gorm.DB
}

// NewParentRepo 创建 ParentRepository 实例
func NewParentRepo(db *gorm.DB) ParentRepository {
	return &parentRepo{db: db}
}

func (r *parentRepo) Create(ctx context.Context, parent *model.Parent) error {
	return r.db.WithContext(ctx).Create(parent).Error
}

func (r *parentRepo) GetByID(ctx context.Context, id string) (*model.Parent, error) {
	var parent model.Parent
	err := r.db.WithContext(ctx).
		Where("parent_id = ?", id).
		First(&parent).Error
	if err != nil {
		return nil, err
	}
	return &parent, nil
}

func (r *parentRepo) GetByUsername(ctx context.Context, username string) (*model.Parent, error) {
	var parent model.Parent
	err := r.db.WithContext(ctx).
		Where("username = ?", username).
		First(&parent).Error
	if err != nil {
		return nil, err
	}
	return &parent, nil
}

// TeacherRepository 教师数据访问接口
type TeacherRepository interface {
	Create(ctx context.Context, teacher *model.Teacher) error
	GetByID(ctx context.Context, id string) (*model.Teacher, error)
	GetByEmail(ctx context.Context, email string) (*model.Teacher, error)
}

type teacherRepo struct {
	db *gorm.DB
}

// NewTeacherRepo 创建 TeacherRepository 实例
func NewTeacherRepo(db *gorm.DB) TeacherRepository {
	return &teacherRepo{db: db}
}

func (r *teacherRepo) Create(ctx context.Context, teacher *model.Teacher) error {
	return r.db.WithContext(ctx).Create(teacher).Error
}

func (r *teacherRepo) GetByID(ctx context.Context, id string) (*model.Teacher, error) {
	var teacher model.Teacher
	err := r.db.WithContext(ctx).
		Where("teacher_id = ?", id).
		First(&teacher).Error
	if err != nil {
		return nil, err
	}
	return &teacher, nil
}

func (r *teacherRepo) GetByEmail(ctx context.Context, email string) (*model.Teacher, error) {
	var teacher model.Teacher
	err := r.db.WithContext(ctx).
		Where("email = ?", email).
		First(&teacher).Error
	if err != nil {
		return nil, err
	}
	return &teacher, nil
}

// ChildRepository 学生数据访问接口
type ChildRepository interface {
	Create(ctx context.Context, child *model.Child) error
	GetByID(ctx context.Context, id string) (*model.Child, error)
	ListByParent(ctx context.Context, parentID string) ([]model.Child, error)
	ListByIDs(ctx context.Context, ids []string) ([]model.Child, error)
}

type childRepo struct {
	db *gorm.DB
}

// NewChildRepo 创建 ChildRepository 实例
func NewChildRepo(db *gorm.DB) ChildRepository {
	return &childRepo{db: db}
}

func (r *childRepo) Create(ctx context.Context, child *model.Child) error {
	return r.db.WithContext(ctx).Create(child).Error
}

func (r *childRepo) GetByID(ctx context.Context, id string) (*model.Child, error) {
	var child model.Child
	err := r.db.WithContext(ctx).
		Where("child_id = ?", id).
		First(&child).Error
	if err != nil {
		return nil, err
	}
	return &child, nil
}

func (r *childRepo) ListByParent(ctx context.Context, parentID string) ([]model.Child, error) {
	var children []model.Child
	err := r.db.WithContext(ctx).
		Where("parent_id = ?", parentID).
		Order("created_at ASC").
		Find(&children).Error
	return children, err
}

func (r *childRepo) ListByIDs(ctx context.Context, ids []string) ([]model.Child, error) {
	var children []model.Child
	if len(ids) == 0 {
		return children, nil
	}
	err := r.db.WithContext(ctx).
		Where("child_id IN ?", ids).
		Find(&children).Error
	return children, err
}
