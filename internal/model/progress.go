package model

import (
	"time"

	"gorm.io/datatypes"
)

// 单元学习状态
const (
	ProgressNotStarted = "not_started"
	ProgressInProgress = "in_progress"
	ProgressCompleted  = "completed"
)

// 作业提交状态
const (
	SubmissionSubmitted = "submitted"
	SubmissionGraded    = "graded"
)

// UnitProgress 单元学习进度，对应 unit_progress，(enrollment_id, module_id) 唯一
type UnitProgress struct {
	ID               string     `gorm:"type:uuid;primaryKey;default:gen_random_uuid()" json:"id"`
	EnrollmentID     string     `gorm:"type:uuid;not null"                             json:"enrollment_id"`
	UnitID           string     `gorm:"column:module_id;type:uuid;not null"            json:"module_id"`
	Status           string     `gorm:"type:varchar(20);not null"                      json:"status"`
	WatchPercentage  float64    `gorm:"not null"                                       json:"watch_percentage"`
	TimeSpentMinutes int        `gorm:"not null"                                       json:"time_spent_minutes"`
	Score            *int       `json:"score,omitempty"`
	StartedAt        *time.Time `json:"started_at,omitempty"`
	CompletedAt      *time.Time `json:"completed_at,omitempty"`
	UpdatedAt        time.Time  `gorm:"not null;default:CURRENT_TIMESTAMP"             json:"updated_at"`
}

// TableName 指定表名
func (UnitProgress) TableName() string { return "unit_progress" }

// QuizAttempt 测验作答记录，对应 quiz_attempts
type QuizAttempt struct {
	AttemptID      string         `gorm:"type:uuid;primaryKey;default:gen_random_uuid()" json:"attempt_id"`
	QuizID         string         `gorm:"type:uuid;not null"                             json:"quiz_id"`
	UserID         string         `gorm:"type:uuid;not null"                             json:"user_id"`
	EnrollmentID   string         `gorm:"type:uuid;not null"                             json:"enrollment_id"`
	AttemptNumber  int            `gorm:"not null"                                       json:"attempt_number"`
	Score          int            `gorm:"not null"                                       json:"score"` // 百分制
	PointsEarned   int            `gorm:"not null"                                       json:"points_earned"`
	PointsPossible int            `gorm:"not null"                                       json:"points_possible"`
	Passed         bool           `gorm:"not null"                                       json:"passed"`
	Answers        datatypes.JSON `gorm:"type:jsonb"                                     json:"answers,omitempty"`
	StartedAt      time.Time      `gorm:"not null"                                       json:"started_at"`
	SubmittedAt    *time.Time     `json:"submitted_at,omitempty"`
}

// TableName 指定表名
func (QuizAttempt) TableName() string { return "quiz_attempts" }

// AssignmentSubmission 作业提交，对应 assignment_submissions
type AssignmentSubmission struct {
	SubmissionID string     `gorm:"type:uuid;primaryKey;default:gen_random_uuid()" json:"submission_id"`
	UnitID       string     `gorm:"column:module_id;type:uuid;not null"            json:"module_id"`
	UserID       string     `gorm:"type:uuid;not null"                             json:"user_id"`
	EnrollmentID string     `gorm:"type:uuid;not null"                             json:"enrollment_id"`
	Content      *string    `gorm:"type:text"                                      json:"content,omitempty"`
	FileURL      *string    `gorm:"column:file_url;type:varchar(500)"              json:"file_url,omitempty"`
	Status       string     `gorm:"type:varchar(20);not null"                      json:"status"`
	Score        *int       `json:"score,omitempty"`
	Feedback     *string    `gorm:"type:text"                                      json:"feedback,omitempty"`
	GradedBy     *string    `gorm:"type:uuid"                                      json:"graded_by,omitempty"`
	SubmittedAt  time.Time  `gorm:"not null"                                       json:"submitted_at"`
	GradedAt     *time.Time `json:"graded_at,omitempty"`
}

// TableName 指定表名
func (AssignmentSubmission) TableName() string { return "assignment_submissions" }

// LeaderboardEntry 排行榜，对应 leaderboard，(user_id, course_id) 唯一
type LeaderboardEntry struct {
	ID             string    `gorm:"type:uuid;primaryKey;default:gen_random_uuid()" json:"id"`
	UserID         string    `gorm:"type:uuid;not null"                             json:"user_id"`
	CourseID       string    `gorm:"type:uuid;not null"                             json:"course_id"`
	TotalPoints    int       `gorm:"not null"                                       json:"total_points"`
	CompletedUnits int       `gorm:"not null"                                       json:"completed_units"`
	QuizScoreTotal int       `gorm:"not null"                                       json:"quiz_score_total"`
	ActivityPoints int       `gorm:"not null"                                       json:"activity_points"`
	Rank           *int      `json:"rank,omitempty"`
	UpdatedAt      time.Time `gorm:"not null;default:CURRENT_TIMESTAMP"             json:"updated_at"`

	User *User `gorm:"foreignKey:UserID;references:UserID" json:"user,omitempty"`
}

// TableName 指定表名
func (LeaderboardEntry) TableName() string { return "leaderboard" }
