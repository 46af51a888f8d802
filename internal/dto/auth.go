package dto

// ── 认证模块 DTO ──

// LoginRequest 登录请求，login 可为用户名或邮箱
type LoginRequest struct {
	Login    string `json:"login"    binding:"required,max=254"`
	Password string `json:"password" binding:"required"`
}

// TokenResponse 登录成功响应
type TokenResponse struct {
	AccessToken string       `json:"access_token"`
	ExpiresIn   int          `json:"expires_in"` // 秒
	User        UserResponse `json:"user"`
}
