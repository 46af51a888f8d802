package dto

// ── 团队模块 DTO ──

// CreateTeamRequest 创建团队请求
type CreateTeamRequest struct {
	TeamName    string  `json:"team_name"   binding:"required,min=1,max=255"`
	Description *string `json:"description" binding:"omitempty,max=1000"`
}

// AddTeamMembersRequest 添加团队成员请求
type AddTeamMembersRequest struct {
	UserIDs       []string `json:"user_ids"        binding:"required,min=1,dive,uuid"`
	IsPrimaryTeam bool     `json:"is_primary_team"`
}

// AddTeamMembersResponse 添加结果，已是成员的计入 skipped
type AddTeamMembersResponse struct {
	Added   int `json:"added"`
	Skipped int `json:"skipped"`
}

// TeamResponse 团队信息
type TeamResponse struct {
	ID          string  `json:"id"`
	TeamName    string  `json:"team_name"`
	Description *string `json:"description,omitempty"`
	IsActive    bool    `json:"is_active"`
	MemberCount int64   `json:"member_count"`
	CreatedAt   string  `json:"created_at"`
}

// TeamMemberResponse 团队成员
type TeamMemberResponse struct {
	UserID        string `json:"user_id"`
	Username      string `json:"username"`
	FullName      string `json:"full_name"`
	Email         string `json:"email"`
	IsPrimaryTeam bool   `json:"is_primary_team"`
	AssignedAt    string `json:"assigned_at"`
}
