package dto

import "time"

// ── 作业模块 DTO ──

// WordInput 作业单词；更新时携带 wordId 可保留原标识
type WordInput struct {
	WordID  string `json:"wordId"  binding:"omitempty,uuid"`
	Word    string `json:"word"    binding:"required,max=100"`
	Example string `json:"example" binding:"required,max=500"`
}

// CreateHomeworkRequest 创建作业请求
type CreateHomeworkRequest struct {
	Title      string      `json:"title"      binding:"required,notblank,max=200"`
	Words      []WordInput `json:"words"      binding:"required,min=1,dive"`
	AssignedTo []string    `json:"assignedTo" binding:"omitempty,dive,uuid"`
	DueDate    time.Time   `json:"dueDate"    binding:"required"`
}

// UpdateHomeworkRequest 更新作业请求（字段为空表示不修改）
type UpdateHomeworkRequest struct {
	Title      *string      `json:"title"      binding:"omitempty,min=1,max=200"`
	Words      *[]WordInput `json:"words"      binding:"omitempty,min=1,dive"`
	AssignedTo *[]string    `json:"assignedTo" binding:"omitempty,dive,uuid"`
	DueDate    *time.Time   `json:"dueDate"`
	// Version 客户端读取时的版本号，为空时以服务端当前版本为准
	Version *int `json:"version" binding:"omitempty,min=1"`
}

// WordResponse 作业单词
type WordResponse struct {
	WordID  string `json:"wordId"`
	Word    string `json:"word"`
	Example string `json:"example"`
}

// HomeworkResponse 作业详情
type HomeworkResponse struct {
	ID         string         `json:"id"`
	Title      string         `json:"title"`
	TeacherID  string         `json:"createdBy"`
	DueDate    string         `json:"dueDate"`
	Words      []WordResponse `json:"words"`
	AssignedTo []string       `json:"assignedTo"`
	Version    int            `json:"version"`
	CreatedAt  string         `json:"createdAt"`
	UpdatedAt  string         `json:"updatedAt"`
}

// StartHomeworkResponse 开始作业响应
type StartHomeworkResponse struct {
	HomeworkID string         `json:"homeworkId"`
	Title      string         `json:"title"`
	Words      []WordResponse `json:"words"`
	Mode       string         `json:"mode"`
}
