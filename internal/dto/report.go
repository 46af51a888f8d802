package dto

// ── 报表 DTO ──

// CourseReportResponse 课程报表
type CourseReportResponse struct {
	CourseID         string                  `json:"course_id"`
	Title            string                  `json:"title"`
	Status           string                  `json:"status"`
	TotalUnits       int                     `json:"total_units"`
	Enrollments      EnrollmentStatsResponse `json:"enrollments"`
	AverageProgress  float64                 `json:"average_progress"`
	AverageQuizScore *float64                `json:"average_quiz_score,omitempty"`
	Learners         []LearnerReportRow      `json:"learners"`
}

// LearnerReportRow 学员明细行
type LearnerReportRow struct {
	UserID             string `json:"user_id"`
	FullName           string `json:"full_name"`
	Email              string `json:"email"`
	Status             string `json:"status"`
	ProgressPercentage int    `json:"progress_percentage"`
	AssignedAt         string `json:"assigned_at"`
	CompletedAt        string `json:"completed_at,omitempty"`
}
