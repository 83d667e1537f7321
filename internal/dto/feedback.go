package dto

// ProvideFeedbackRequest 教师评分请求
type ProvideFeedbackRequest struct {
	Feedback string   `json:"feedback" binding:"required,max=2000"`
	Score    *float64 `json:"score"    binding:"required,min=0,max=100"`
}

// FeedbackResponse 教师评语
type FeedbackResponse struct {
	ID           string  `json:"id"`
	SubmissionID string  `json:"submissionId"`
	TeacherID    string  `json:"teacherId"`
	TeacherName  string  `json:"teacherName,omitempty"`
	Feedback     string  `json:"feedback"`
	Score        float64 `json:"score"`
	CreatedAt    string  `json:"createdAt"`
}
