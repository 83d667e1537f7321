package dto

// HomeworkMetricsResponse 作业统计；比率与均值均为保留两位小数的字符串
type HomeworkMetricsResponse struct {
	HomeworkID              string `json:"homeworkId"`
	TotalSubmissions        int    `json:"totalSubmissions"`
	CompletedSubmissions    int    `json:"completedSubmissions"`
	CompletionRate          string `json:"completionRate"`
	ParentParticipationRate string `json:"parentParticipationRate"`
	AverageScore            string `json:"averageScore"`
	AverageTimeTakenSeconds string `json:"averageTimeTakenSeconds"`
}

// StudentProgressResponse 学生学习进度
type StudentProgressResponse struct {
	StudentID      string               `json:"studentId"`
	Name           string               `json:"name"`
	TotalAssigned  int64                `json:"totalAssigned"`
	TotalCompleted int                  `json:"totalCompleted"`
	CompletionRate float64              `json:"completionRate"`
	AvgScore       float64              `json:"avgScore"`
	Submissions    []SubmissionResponse `json:"submissions"`
}
