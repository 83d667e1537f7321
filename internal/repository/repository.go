package repository

import (
	"context"

	"gorm.io/gorm"
)

// Repository 所有 Repository 的聚合入口
type Repository struct {
	db *gorm.DB

	Parent         ParentRepository
	Teacher        TeacherRepository
	Child          ChildRepository
	TeacherStudent TeacherStudentRepository
	Homework       HomeworkRepository
	Submission     SubmissionRepository
	Feedback       FeedbackRepository
}

// NewRepository 创建 Repository 聚合
func NewRepository(db *gorm.DB) *Repository {
	return &Repository{
		db:             db,
		Parent:         NewParentRepo(db),
		Teacher:        NewTeacherRepo(db),
		Child:          NewChildRepo(db),
		TeacherStudent: NewTeacherStudentRepo(db),
		Homework:       NewHomeworkRepo(db),
		Submission:     NewSubmissionRepo(db),
		Feedback:       NewFeedbackRepo(db),
	}
}

// WithTx 返回绑定到事务连接的 Repository 聚合
func (r *Repository) WithTx(tx *gorm.DB) *Repository {
	if tx == nil {
		return r
	}
	return NewRepository(tx)
}

// Transaction 在单个数据库事务中执行 fn，fn 返回错误则整体回滚
// 未绑定数据库（单元测试中手工组装的聚合）时直接执行 fn
func (r *Repository) Transaction(ctx context.Context, fn func(txRepo *Repository) error) error {
	if r.db == nil {
		return fn(r)
	}
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		return fn(r.WithTx(tx))
	})
}
