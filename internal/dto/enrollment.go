package dto

// ── 选课分配 DTO ──

// AssignCourseRequest 按用户与团队分配课程
type AssignCourseRequest struct {
	UserIDs []string `json:"user_ids"`
	TeamIDs []string `json:"team_ids"`
}

// AssignCourseResponse 分配结果
type AssignCourseResponse struct {
	Created int `json:"created"`
	Skipped int `json:"skipped"`
	Failed  int `json:"failed,omitempty"`
}

// BulkEnrollRequest 批量报名，course 为 course_id 的旧字段名
type BulkEnrollRequest struct {
	CourseID string   `json:"course_id"`
	Course   string   `json:"course"`
	UserIDs  []string `json:"user_ids"`
}

// ResolvedCourseID 规范字段优先
func (r *BulkEnrollRequest) ResolvedCourseID() string {
	if r.CourseID != "" {
		return r.CourseID
	}
	return r.Course
}

// BulkEnrollResponse 批量报名结果
type BulkEnrollResponse struct {
	Created int64  `json:"created"`
	Message string `json:"message"`
}

// EnrollmentResponse 选课记录
type EnrollmentResponse struct {
	ID                 string     `json:"id"`
	CourseID           string     `json:"course_id"`
	User               *UserBrief `json:"user,omitempty"`
	Status             string     `json:"status"`
	ProgressPercentage int        `json:"progress_percentage"`
	AssignedBy         string     `json:"assigned_by,omitempty"`
	AssignedAt         string     `json:"assigned_at"`
	StartedAt          string     `json:"started_at,omitempty"`
	CompletedAt        string     `json:"completed_at,omitempty"`
}

// EnrollmentStatsResponse 课程选课统计
type EnrollmentStatsResponse struct {
	Total      int64 `json:"total"`
	Assigned   int64 `json:"assigned"`
	InProgress int64 `json:"in_progress"`
	Completed  int64 `json:"completed"`
}
