package repository

import (
	"context"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/SanghaLM/Code-to-Give-Team10-sub000/internal/model"
)

// TeacherStudentRepository 师生关系数据访问接口
type TeacherStudentRepository interface {
	Get(ctx context.Context, teacherID, childID string) (*model.TeacherStudent, error)
	// GetForUpdate 行级锁读取关系行，必须在事务内调用
	GetForUpdate(ctx context.Context, teacherID, childID string) (*model.TeacherStudent, error)
	Create(ctx context.Context, rel *model.TeacherStudent) error
	Update(ctx context.Context, rel *model.TeacherStudent) error
	// ListChildren 按状态列出某教师关联的学生
	ListChildren(ctx context.Context, teacherID, status string) ([]model.Child, error)
	// ListTeachers 按状态列出某学生关联的教师
	ListTeachers(ctx context.Context, childID, status string) ([]model.Teacher, error)
}

type teacherStudentRepo struct {
	db *gorm.DB
}

// NewTeacherStudentRepo 创建 TeacherStudentRepository 实例
func NewTeacherStudentRepo(db *gorm.DB) TeacherStudentRepository {
	return &teacherStudentRepo{db: db}
}

func (r *teacherStudentRepo) Get(ctx context.Context, teacherID, childID string) (*model.TeacherStudent, error) {
	var rel model.TeacherStudent
	err := r.db.WithContext(ctx).
		Where("teacher_id = ? AND child_id = ?", teacherID, childID).
		First(&rel).Error
	if err != nil {
		return nil, err
	}
	return &rel, nil
}

func (r *teacherStudentRepo) GetForUpdate(ctx context.Context, teacherID, childID string) (*model.TeacherStudent, error) {
	var rel model.TeacherStudent
	err := r.db.WithContext(ctx).
		Clauses(clause.Locking{Strength: "UPDATE"}).
		Where("teacher_id = ? AND child_id = ?", teacherID, childID).
		First(&rel).Error
	if err != nil {
		return nil, err
	}
	return &rel, nil
}

func (r *teacherStudentRepo) Create(ctx context.Context, rel *model.TeacherStudent) error {
	return r.db.WithContext(ctx).Create(rel).Error
}

func (r *teacherStudentRepo) Update(ctx context.Context, rel *model.TeacherStudent) error {
	return r.db.WithContext(ctx).
		Model(&model.TeacherStudent{}).
		Where("teacher_id = ? AND child_id = ?", rel.TeacherID, rel.ChildID).
		Updates(map[string]interface{}{
			"status":      rel.Status,
			"approved_at": rel.ApprovedAt,
		}).Error
}

func (r *teacherStudentRepo) ListChildren(ctx context.Context, teacherID, status string) ([]model.Child, error) {
	var children []model.Child
	err := r.db.WithContext(ctx).
		Joins("JOIN teacher_students ts ON ts.child_id = children.child_id").
		Where("ts.teacher_id = ? AND ts.status = ?", teacherID, status).
		Order("ts.requested_at ASC").
		Find(&children).Error
	return children, err
}

func (r *teacherStudentRepo) ListTeachers(ctx context.Context, childID, status string) ([]model.Teacher, error) {
	var teachers []model.Teacher
	err := r.db.WithContext(ctx).
		Joins("JOIN teacher_students ts ON ts.teacher_id = teachers.teacher_id").
		Where("ts.child_id = ? AND ts.status = ?", childID, status).
		Order("ts.requested_at ASC").
		Find(&teachers).Error
	return teachers, err
}
