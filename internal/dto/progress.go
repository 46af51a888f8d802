package dto

import "encoding/json"

// ── 学习进度 DTO ──

// RecordProgressRequest 上报单元学习进度
type RecordProgressRequest struct {
	Status           string   `json:"status"             binding:"required,oneof=in_progress completed"`
	WatchPercentage  *float64 `json:"watch_percentage"   binding:"omitempty,min=0,max=100"`
	TimeSpentMinutes *int     `json:"time_spent_minutes" binding:"omitempty,min=0"`
}

// UnitProgressResponse 单元进度及所属选课的汇总
type UnitProgressResponse struct {
	UnitID             string  `json:"unit_id"`
	Status             string  `json:"status"`
	WatchPercentage    float64 `json:"watch_percentage"`
	TimeSpentMinutes   int     `json:"time_spent_minutes"`
	Score              *int    `json:"score,omitempty"`
	StartedAt          string  `json:"started_at,omitempty"`
	CompletedAt        string  `json:"completed_at,omitempty"`
	EnrollmentStatus   string  `json:"enrollment_status"`
	EnrollmentProgress int     `json:"enrollment_progress"`
}

// EnrollmentProgressResponse 选课的逐单元进度，未开始的单元状态为 not_started
type EnrollmentProgressResponse struct {
	EnrollmentID       string               `json:"enrollment_id"`
	CourseID           string               `json:"course_id"`
	UserID             string               `json:"user_id"`
	Status             string               `json:"status"`
	ProgressPercentage int                  `json:"progress_percentage"`
	Units              []UnitProgressDetail `json:"units"`
}

// UnitProgressDetail 单个单元的学习进度
type UnitProgressDetail struct {
	UnitID           string  `json:"unit_id"`
	Title            string  `json:"title"`
	SequenceOrder    int     `json:"sequence_order"`
	Status           string  `json:"status"`
	WatchPercentage  float64 `json:"watch_percentage"`
	TimeSpentMinutes int     `json:"time_spent_minutes"`
	Score            *int    `json:"score,omitempty"`
	StartedAt        string  `json:"started_at,omitempty"`
	CompletedAt      string  `json:"completed_at,omitempty"`
}

// SubmitQuizRequest 提交测验答案，键为题目 ID
type SubmitQuizRequest struct {
	Answers map[string]json.RawMessage `json:"answers" binding:"required"`
}

// QuizAttemptResponse 测验作答结果
type QuizAttemptResponse struct {
	AttemptID      string `json:"attempt_id"`
	AttemptNumber  int    `json:"attempt_number"`
	Score          int    `json:"score"`
	PointsEarned   int    `json:"points_earned"`
	PointsPossible int    `json:"points_possible"`
	Passed         bool   `json:"passed"`
	SubmittedAt    string `json:"submitted_at"`
}

// SubmitAssignmentRequest 提交作业
type SubmitAssignmentRequest struct {
	Content *string `json:"content"`
	FileURL *string `json:"file_url" binding:"omitempty,url,max=500"`
}

// GradeSubmissionRequest 作业评分
type GradeSubmissionRequest struct {
	Score    *int    `json:"score"    binding:"required,min=0"`
	Feedback *string `json:"feedback"`
}

// SubmissionResponse 作业提交记录
type SubmissionResponse struct {
	ID          string  `json:"id"`
	UnitID      string  `json:"unit_id"`
	UserID      string  `json:"user_id"`
	Status      string  `json:"status"`
	Content     *string `json:"content,omitempty"`
	FileURL     *string `json:"file_url,omitempty"`
	Score       *int    `json:"score,omitempty"`
	Feedback    *string `json:"feedback,omitempty"`
	SubmittedAt string  `json:"submitted_at"`
	GradedAt    string  `json:"graded_at,omitempty"`
}

// LeaderboardEntryResponse 排行榜条目
type LeaderboardEntryResponse struct {
	Rank           int    `json:"rank"`
	UserID         string `json:"user_id"`
	FullName       string `json:"full_name"`
	TotalPoints    int    `json:"total_points"`
	CompletedUnits int    `json:"completed_units"`
	QuizScoreTotal int    `json:"quiz_score_total"`
	ActivityPoints int    `json:"activity_points"`
}
