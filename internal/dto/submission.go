package dto

// ── 提交模块 DTO ──

// UploadRecordingForm 录音上传表单字段（文件字段为 file）
type UploadRecordingForm struct {
	StudentID string `form:"studentId" binding:"required"`
	IsParent  bool   `form:"isParent"`
}

// UploadRecordingResponse 录音上传响应
type UploadRecordingResponse struct {
	Score        int    `json:"score"`
	Feedback     string `json:"feedback"`
	RetriesLeft  int    `json:"retriesLeft"`
	SubmissionID string `json:"submissionId"`
	RecordingID  string `json:"recordingId"`
	AudioURL     string `json:"audioUrl"`
}

// SubmitHomeworkRequest 提交作业请求
type SubmitHomeworkRequest struct {
	StudentID string `json:"studentId" binding:"required"`
	TimeTaken *int   `json:"timeTaken" binding:"omitempty,min=0"`
}

// SubmitHomeworkResponse 提交作业响应
type SubmitHomeworkResponse struct {
	SubmissionID string  `json:"submissionId"`
	Status       string  `json:"status"`
	AverageScore float64 `json:"averageScore"`
	CompletedAt  string  `json:"completedAt"`
	TimeTaken    *int    `json:"timeTaken,omitempty"`
}

// RecordingResponse 单词录音
type RecordingResponse struct {
	ID             string  `json:"id"`
	WordID         string  `json:"wordId"`
	ChildAudioURL  *string `json:"childAudioUrl,omitempty"`
	ChildScore     *int    `json:"childScore,omitempty"`
	ParentAudioURL *string `json:"parentAudioUrl,omitempty"`
	ParentScore    *int    `json:"parentScore,omitempty"`
	Feedback       string  `json:"feedback"`
	CreatedAt      string  `json:"createdAt"`
}

// SubmissionResponse 提交详情
type SubmissionResponse struct {
	ID           string              `json:"id"`
	HomeworkID   string              `json:"homeworkId"`
	StudentID    string              `json:"studentId"`
	StudentName  string              `json:"studentName,omitempty"`
	ParentID     string              `json:"parentId"`
	Status       string              `json:"status"`
	TimeTaken    *int                `json:"timeTaken,omitempty"`
	CompletedAt  *string             `json:"completedAt,omitempty"`
	Score        *float64            `json:"score,omitempty"`
	Feedback     *string             `json:"feedback,omitempty"`
	AverageScore float64             `json:"averageScore"`
	Recordings   []RecordingResponse `json:"recordings"`
}
