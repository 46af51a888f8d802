package model

import "time"

// 课程状态
const (
	CourseStatusDraft     = "draft"
	CourseStatusPublished = "published"
)

// 课程类型
const (
	CourseTypeSelfPaced  = "self_paced"
	CourseTypeInstructor = "instructor_led"
	CourseTypeBlended    = "blended"
)

// Course 课程表，对应 courses
type Course struct {
	CourseID               string     `gorm:"type:uuid;primaryKey;default:gen_random_uuid()" json:"course_id"`
	Title                  string     `gorm:"type:varchar(255);not null"                     json:"title"`
	Description            *string    `gorm:"type:text"                                      json:"description,omitempty"`
	About                  *string    `gorm:"type:text"                                      json:"about,omitempty"`
	Outcomes               *string    `gorm:"type:text"                                      json:"outcomes,omitempty"`
	CourseType             string     `gorm:"type:varchar(30);not null"                      json:"course_type"`
	Status                 string     `gorm:"type:varchar(20);not null"                      json:"status"`
	IsMandatory            bool       `gorm:"not null"                                       json:"is_mandatory"`
	EstimatedDurationHours *int       `json:"estimated_duration_hours,omitempty"`
	PassingCriteria        int        `gorm:"not null"                                       json:"passing_criteria"`
	CreatedBy              *string    `gorm:"type:uuid"                                      json:"created_by,omitempty"`
	PublishedAt            *time.Time `json:"published_at,omitempty"`
	Versioned
	Timestamps

	// 关联
	Units   []Unit `gorm:"foreignKey:CourseID;references:CourseID" json:"units,omitempty"`
	Creator *User  `gorm:"foreignKey:CreatedBy;references:UserID"  json:"creator,omitempty"`
}

// TableName 指定表名
func (Course) TableName() string { return "courses" }

// OwnedBy 是否由指定用户创建
func (c *Course) OwnedBy(userID string) bool {
	return c.CreatedBy != nil && *c.CreatedBy == userID
}
