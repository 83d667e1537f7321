package model

import (
	"time"

	"gorm.io/gorm"
)

// Homework 作业表：对应 homeworks
type Homework struct {
	HomeworkID string    `gorm:"type:uuid;primaryKey"        json:"homework_id"`
	Title      string    `gorm:"type:varchar(200);not null"  json:"title"`
	TeacherID  string    `gorm:"type:uuid;not null;index"    json:"teacher_id"`
	DueDate    time.Time `gorm:"not null"                    json:"due_date"`
	VersionedModel

	Words     []HomeworkWord     `gorm:"foreignKey:HomeworkID;references:HomeworkID" json:"words,omitempty"`
	Assignees []HomeworkAssignee `gorm:"foreignKey:HomeworkID;references:HomeworkID" json:"assignees,omitempty"`
}

// TableName 指定表名
func (Homework) TableName() string { return "homeworks" }

func (h *Homework) BeforeCreate(*gorm.DB) error {
	newID(&h.HomeworkID)
	return nil
}

// FindWord 按 wordId 查找作业中的单词
func (h *Homework) FindWord(wordID string) (*HomeworkWord, bool) {
	for i := range h.Words {
		if h.Words[i].WordID == wordID {
			return &h.Words[i], true
		}
	}
	return nil, false
}

// AssignedTo 返回被布置作业的学生 ID 列表
func (h *Homework) AssignedTo() []string {
	ids := make([]string, 0, len(h.Assignees))
	for _, a := range h.Assignees {
		ids = append(ids, a.ChildID)
	}
	return ids
}

// IsAssignedTo 判断作业是否布置给了该学生
func (h *Homework) IsAssignedTo(childID string) bool {
	for _, a := range h.Assignees {
		if a.ChildID == childID {
			return true
		}
	}
	return false
}

// HomeworkWord 作业单词表：对应 homework_words，按 position 排序
type HomeworkWord struct {
	WordID     string `gorm:"type:uuid;primaryKey"       json:"word_id"`
	HomeworkID string `gorm:"type:uuid;not null;index"   json:"homework_id"`
	Position   int    `gorm:"not null"                   json:"position"`
	Word       string `gorm:"type:varchar(100);not null" json:"word"`
	Example    string `gorm:"type:varchar(500);not null" json:"example"`
}

// TableName 指定表名
func (HomeworkWord) TableName() string { return "homework_words" }

func (w *HomeworkWord) BeforeCreate(*gorm.DB) error {
	newID(&w.WordID)
	return nil
}

// HomeworkAssignee 作业布置对象：对应 homework_assignees
type HomeworkAssignee struct {
	HomeworkID string `gorm:"type:uuid;primaryKey"       json:"homework_id"`
	ChildID    string `gorm:"type:uuid;primaryKey;index" json:"child_id"`
}

// TableName 指定表名
func (HomeworkAssignee) TableName() string { return "homework_assignees" }
