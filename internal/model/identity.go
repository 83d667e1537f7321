package model

import "gorm.io/gorm"

// 角色
const (
	RoleParent  = "parent"
	RoleTeacher = "teacher"
	RoleAdmin   = "admin"
)

// 年级
const (
	LevelK1 = "K1"
	LevelK2 = "K2"
	LevelK3 = "K3"
)

// IsValidLevel 判断年级枚举是否合法
func IsValidLevel(level string) bool {
	switch level {
	case LevelK1, LevelK2, LevelK3:
		return true
	}
	return false
}

// Parent 家长表：对应 parents
type Parent struct {
	ParentID     string `gorm:"type:uuid;primaryKey"               json:"parent_id"`
	Name         string `gorm:"type:varchar(100);not null"         json:"name"`
	Username     string `gorm:"type:varchar(50);not null;uniqueIndex" json:"username"`
	PasswordHash string `gorm:"type:varchar(255);not null"         json:"-"`
	BaseModel

	Children []Child `gorm:"foreignKey:ParentID;references:ParentID" json:"children,omitempty"`
}

// TableName 指定表名
func (Parent) TableName() string { return "parents" }

func (p *Parent) BeforeCreate(*gorm.DB) error {
	newID(&p.ParentID)
	return nil
}

// Teacher 教师表：对应 teachers
type Teacher struct {
	TeacherID    string `gorm:"type:uuid;primaryKey"                       json:"teacher_id"`
	Name         string `gorm:"type:varchar(100);not null"                 json:"name"`
	Email        string `gorm:"type:varchar(255);not null;uniqueIndex"     json:"email"`
	PasswordHash string `gorm:"type:varchar(255);not null"                 json:"-"`
	Role         string `gorm:"type:varchar(20);not null;default:'teacher'" json:"role"` // teacher | admin
	BaseModel
}

// TableName 指定表名
func (Teacher) TableName() string { return "teachers" }

func (t *Teacher) BeforeCreate(*gorm.DB) error {
	newID(&t.TeacherID)
	return nil
}

// Child 学生表：对应 children，由唯一的家长拥有
type Child struct {
	ChildID  string `gorm:"type:uuid;primaryKey"         json:"child_id"`
	ParentID string `gorm:"type:uuid;not null;index"     json:"parent_id"`
	Name     string `gorm:"type:varchar(100);not null"   json:"name"`
	Level    string `gorm:"type:varchar(4);not null"     json:"level"` // K1 | K2 | K3
	School   string `gorm:"type:varchar(200);not null"   json:"school"`
	BaseModel
}

// TableName 指定表名
func (Child) TableName() string { return "children" }

func (c *Child) BeforeCreate(*gorm.DB) error {
	newID(&c.ChildID)
	return nil
}
