package model

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// BaseModel 通用审计字段（所有业务模型嵌入）
type BaseModel struct {
	CreatedAt time.Time `gorm:"not null;default:CURRENT_TIMESTAMP" json:"created_at"`
	CreatedBy *string   `gorm:"type:uuid"                          json:"created_by,omitempty"`
	UpdatedAt time.Time `gorm:"not null;default:CURRENT_TIMESTAMP" json:"updated_at"`
	UpdatedBy *string   `gorm:"type:uuid"                          json:"updated_by,omitempty"`
}

// SoftDeleteModel 支持软删除的审计字段
type SoftDeleteModel struct {
	BaseModel
	DeletedAt gorm.DeletedAt `gorm:"index"     json:"deleted_at,omitempty"`
	DeletedBy *string        `gorm:"type:uuid" json:"deleted_by,omitempty"`
}

// VersionedModel 支持乐观锁的软删除模型
type VersionedModel struct {
	SoftDeleteModel
	Version int `gorm:"not null;default:1" json:"version"`
}

// newID 主键为空时生成 UUID；postgres 侧同时有 gen_random_uuid() 默认值
func newID(id *string) {
	if *id == "" {
		*id = uuid.NewString()
	}
}

// IsValidID 判断标识符是否为合法 UUID
func IsValidID(id string) bool {
	if id == "" {
		return false
	}
	_, err := uuid.Parse(id)
	return err == nil
}

// All 返回全部持久化模型，供 sqlite AutoMigrate 使用
func All() []interface{} {
	return []interface{}{
		&Parent{},
		&Teacher{},
		&Child{},
		&TeacherStudent{},
		&Homework{},
		&HomeworkWord{},
		&HomeworkAssignee{},
		&Submission{},
		&Recording{},
		&SubmissionFeedback{},
	}
}
