package dto

// ── 认证模块 DTO ──

// RegisterParentRequest 家长注册请求
type RegisterParentRequest struct {
	Name     string `json:"name"     binding:"required,notblank,max=100"`
	Username string `json:"username" binding:"required,min=3,max=50"`
	Password string `json:"password" binding:"required,min=8,max=72"`
}

// LoginParentRequest 家长登录请求
type LoginParentRequest struct {
	Username string `json:"username" binding:"required"`
	Password string `json:"password" binding:"required"`
}

// RegisterTeacherRequest 教师注册请求
type RegisterTeacherRequest struct {
	Name     string `json:"name"     binding:"required,notblank,max=100"`
	Email    string `json:"email"    binding:"required,email"`
	Password string `json:"password" binding:"required,min=8,max=72"`
	Role     string `json:"role"     binding:"omitempty,oneof=teacher admin"`
}

// LoginTeacherRequest 教师登录请求
type LoginTeacherRequest struct {
	Email    string `json:"email"    binding:"required,email"`
	Password string `json:"password" binding:"required"`
}

// TokenResponse 登录/注册成功响应
type TokenResponse struct {
	AccessToken string            `json:"accessToken"`
	ExpiresIn   int               `json:"expiresIn"` // 秒
	User        PrincipalResponse `json:"user"`
}

// PrincipalResponse 当前登录主体信息（脱敏）
type PrincipalResponse struct {
	ID       string `json:"id"`
	Name     string `json:"name"`
	Role     string `json:"role"`
	Username string `json:"username,omitempty"` // 家长
	Email    string `json:"email,omitempty"`    // 教师
}
