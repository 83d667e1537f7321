package dto

// ── 学生 / 师生关系 DTO ──

// CreateChildRequest 家长登记孩子
type CreateChildRequest struct {
	Name   string `json:"name"   binding:"required,notblank,max=100"`
	Level  string `json:"level"  binding:"required,grade_level"`
	School string `json:"school" binding:"required,max=200"`
}

// ChildResponse 学生详情
type ChildResponse struct {
	ID       string `json:"id"`
	ParentID string `json:"parentId"`
	Name     string `json:"name"`
	Level    string `json:"level"`
	School   string `json:"school"`
}

// StudentSummary 教师视角的学生摘要（仅姓名、学校、年级）
type StudentSummary struct {
	ID     string `json:"id"`
	Name   string `json:"name"`
	School string `json:"school"`
	Level  string `json:"level"`
}

// RequestTeacherRequest 家长为孩子申请教师
type RequestTeacherRequest struct {
	ChildID   string `json:"childId"   binding:"required"`
	TeacherID string `json:"teacherId" binding:"required"`
}

// ApproveStudentRequest 教师审批学生
type ApproveStudentRequest struct {
	ChildID string `json:"childId" binding:"required"`
}

// RelationshipResponse 师生关系
type RelationshipResponse struct {
	TeacherID   string  `json:"teacherId"`
	ChildID     string  `json:"childId"`
	Status      string  `json:"status"`
	RequestedAt string  `json:"requestedAt"`
	ApprovedAt  *string `json:"approvedAt,omitempty"`
}
