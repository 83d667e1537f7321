package model

import (
	"time"

	"gorm.io/gorm"
)

// 提交状态：(absent) → in-progress → completed，无回退
const (
	SubmissionInProgress = "in-progress"
	SubmissionCompleted  = "completed"
)

// Submission 作业提交表：对应 submissions，(homework, student, parent) 唯一
type Submission struct {
	SubmissionID     string     `gorm:"type:uuid;primaryKey"                                 json:"submission_id"`
	HomeworkID       string     `gorm:"type:uuid;not null;uniqueIndex:uk_submissions_key"    json:"homework_id"`
	StudentID        string     `gorm:"type:uuid;not null;uniqueIndex:uk_submissions_key;index" json:"student_id"`
	ParentID         string     `gorm:"type:uuid;not null;uniqueIndex:uk_submissions_key"    json:"parent_id"`
	Status           string     `gorm:"type:varchar(20);not null;default:'in-progress'"      json:"status"`
	TimeTakenSeconds *int       `json:"time_taken_seconds,omitempty"`
	CompletedAt      *time.Time `json:"completed_at,omitempty"`
	// Score/Feedback 为教师评分的冗余字段，完整历史见 SubmissionFeedback
	Score    *float64 `gorm:"type:numeric(5,2)" json:"score,omitempty"`
	Feedback *string  `gorm:"type:text"         json:"feedback,omitempty"`
	BaseModel

	Recordings []Recording `gorm:"foreignKey:SubmissionID;references:SubmissionID" json:"recordings,omitempty"`
	Student    *Child      `gorm:"foreignKey:StudentID;references:ChildID"         json:"student,omitempty"`
}

// TableName 指定表名
func (Submission) TableName() string { return "submissions" }

func (s *Submission) BeforeCreate(*gorm.DB) error {
	newID(&s.SubmissionID)
	return nil
}

// IsCompleted 是否已完成
func (s *Submission) IsCompleted() bool { return s.Status == SubmissionCompleted }

// HasParentRecording 是否至少有一条家长录音
func (s *Submission) HasParentRecording() bool {
	for i := range s.Recordings {
		if s.Recordings[i].ParentAudioURL != nil {
			return true
		}
	}
	return false
}

// RecordingAverage 录音得分均值；每条录音只计一个分数，家长分优先于孩子分，
// 二者皆无记 0。没有录音时返回 0。
func (s *Submission) RecordingAverage() float64 {
	if len(s.Recordings) == 0 {
		return 0
	}
	total := 0
	for i := range s.Recordings {
		total += s.Recordings[i].Contribution()
	}
	return float64(total) / float64(len(s.Recordings))
}

// Recording 单词录音表：对应 recordings；同一单词重复上传会追加新行
type Recording struct {
	RecordingID    string    `gorm:"type:uuid;primaryKey"       json:"recording_id"`
	SubmissionID   string    `gorm:"type:uuid;not null;index"   json:"submission_id"`
	WordID         string    `gorm:"type:uuid;not null"         json:"word_id"`
	Position       int       `gorm:"not null"                   json:"position"`
	ChildAudioURL  *string   `gorm:"type:text"                  json:"child_audio_url,omitempty"`
	ChildScore     *int      `json:"child_score,omitempty"`
	ParentAudioURL *string   `gorm:"type:text"                  json:"parent_audio_url,omitempty"`
	ParentScore    *int      `json:"parent_score,omitempty"`
	Feedback       string    `gorm:"type:varchar(200);not null" json:"feedback"`
	CreatedAt      time.Time `gorm:"not null;default:CURRENT_TIMESTAMP" json:"created_at"`
}

// TableName 指定表名
func (Recording) TableName() string { return "recordings" }

func (r *Recording) BeforeCreate(*gorm.DB) error {
	newID(&r.RecordingID)
	return nil
}

// Contribution 该录音计入平均分的得分
func (r *Recording) Contribution() int {
	switch {
	case r.ParentScore != nil:
		return *r.ParentScore
	case r.ChildScore != nil:
		return *r.ChildScore
	default:
		return 0
	}
}

// SubmissionFeedback 教师评语表：对应 submission_feedbacks，只追加
type SubmissionFeedback struct {
	FeedbackID   string    `gorm:"type:uuid;primaryKey"      json:"feedback_id"`
	SubmissionID string    `gorm:"type:uuid;not null;index"  json:"submission_id"`
	TeacherID    string    `gorm:"type:uuid;not null"        json:"teacher_id"`
	Feedback     string    `gorm:"type:text;not null"        json:"feedback"`
	Score        float64   `gorm:"type:numeric(5,2);not null" json:"score"`
	CreatedAt    time.Time `gorm:"not null;default:CURRENT_TIMESTAMP" json:"created_at"`

	Teacher *Teacher `gorm:"foreignKey:TeacherID;references:TeacherID" json:"teacher,omitempty"`
}

// TableName 指定表名
func (SubmissionFeedback) TableName() string { return "submission_feedbacks" }

func (f *SubmissionFeedback) BeforeCreate(*gorm.DB) error {
	newID(&f.FeedbackID)
	return nil
}
