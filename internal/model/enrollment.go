package model

import "time"

// 选课状态
const (
	EnrollmentAssigned   = "assigned"
	EnrollmentInProgress = "in_progress"
	EnrollmentCompleted  = "completed"
)

// Enrollment 选课记录，对应 enrollments，(course_id, user_id) 唯一
type Enrollment struct {
	EnrollmentID       string     `gorm:"column:id;type:uuid;primaryKey;default:gen_random_uuid()" json:"id"`
	CourseID           string     `gorm:"type:uuid;not null"                                       json:"course_id"`
	UserID             string     `gorm:"type:uuid;not null"                                       json:"user_id"`
	AssignedBy         *string    `gorm:"type:uuid"                                                json:"assigned_by,omitempty"`
	Status             string     `gorm:"type:varchar(20);not null"                                json:"status"`
	ProgressPercentage int        `gorm:"not null"                                                 json:"progress_percentage"`
	AssignedAt         time.Time  `gorm:"not null"                                                 json:"assigned_at"`
	StartedAt          *time.Time `json:"started_at,omitempty"`
	CompletedAt        *time.Time `json:"completed_at,omitempty"`

	// 关联
	User   *User   `gorm:"foreignKey:UserID;references:UserID"     json:"user,omitempty"`
	Course *Course `gorm:"foreignKey:CourseID;references:CourseID" json:"course,omitempty"`
}

// TableName 指定表名
func (Enrollment) TableName() string { return "enrollments" }
