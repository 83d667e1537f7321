package model

import "time"

// 师生关系状态：none → pending → approved，无回退
const (
	RelationPending  = "pending"
	RelationApproved = "approved"
)

// TeacherStudent 师生关系表：对应 teacher_students
//
// 每个 (teacher, child) 仅一行：Child 的待审批教师、已绑定教师以及
// Teacher 的学生列表都是这张表按 status 的投影。
type TeacherStudent struct {
	TeacherID   string     `gorm:"type:uuid;primaryKey"        json:"teacher_id"`
	ChildID     string     `gorm:"type:uuid;primaryKey;index"  json:"child_id"`
	Status      string     `gorm:"type:varchar(20);not null"   json:"status"`
	RequestedBy string     `gorm:"type:uuid;not null"          json:"requested_by"`
	RequestedAt time.Time  `gorm:"not null"                    json:"requested_at"`
	ApprovedAt  *time.Time `json:"approved_at,omitempty"`

	Child   *Child   `gorm:"foreignKey:ChildID;references:ChildID"     json:"child,omitempty"`
	Teacher *Teacher `gorm:"foreignKey:TeacherID;references:TeacherID" json:"teacher,omitempty"`
}

// TableName 指定表名
func (TeacherStudent) TableName() string { return "teacher_students" }
