package dto

// ── 通用响应片段 ──

// UserResponse 用户信息响应（脱敏）
type UserResponse struct {
	ID          string `json:"id"`
	Username    string `json:"username"`
	Email       string `json:"email"`
	FullName    string `json:"full_name"`
	Role        string `json:"role"`
	IsSuperuser bool   `json:"is_superuser"`
	LastLogin   string `json:"last_login,omitempty"`
}

// UserBrief 列表中使用的用户摘要
type UserBrief struct {
	ID       string `json:"id"`
	Username string `json:"username"`
	FullName string `json:"full_name"`
	Email    string `json:"email"`
}
