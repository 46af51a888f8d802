package model

// 单元类型
const (
	UnitTypeVideo        = "video"
	UnitTypeAudio        = "audio"
	UnitTypePresentation = "presentation"
	UnitTypeText         = "text"
	UnitTypePage         = "page"
	UnitTypeQuiz         = "quiz"
	UnitTypeTest         = "test"
	UnitTypeAssignment   = "assignment"
	UnitTypeScorm        = "scorm"
	UnitTypeXAPI         = "xapi"
	UnitTypeSurvey       = "survey"
	UnitTypeMixed        = "mixed"
)

// Unit 课程单元，对应 modules
// 同一课程内 sequence_order 唯一（uq_module_sequence）
type Unit struct {
	UnitID                   string  `gorm:"column:module_id;type:uuid;primaryKey;default:gen_random_uuid()" json:"id"`
	CourseID                 string  `gorm:"type:uuid;not null;uniqueIndex:uq_module_sequence,priority:1"    json:"course_id"`
	ModuleType               string  `gorm:"type:varchar(30);not null"                                       json:"module_type"`
	Title                    string  `gorm:"type:varchar(255);not null"                                      json:"title"`
	Description              *string `gorm:"type:text"                                                       json:"description,omitempty"`
	SequenceOrder            int     `gorm:"not null;uniqueIndex:uq_module_sequence,priority:2"              json:"sequence_order"`
	IsMandatory              bool    `gorm:"not null"                                                        json:"is_mandatory"`
	EstimatedDurationMinutes *int    `json:"estimated_duration_minutes,omitempty"`
	VideoCount               int     `gorm:"not null"                                                        json:"video_count"`
	HasQuizzes               bool    `gorm:"not null"                                                        json:"has_quizzes"`
	Timestamps

	// 内容子表，按 module_type 至多存在其一
	Video        *VideoUnit        `gorm:"foreignKey:UnitID;references:UnitID" json:"video_details,omitempty"`
	Audio        *AudioUnit        `gorm:"foreignKey:UnitID;references:UnitID" json:"audio_details,omitempty"`
	Presentation *PresentationUnit `gorm:"foreignKey:UnitID;references:UnitID" json:"presentation_details,omitempty"`
	Text         *TextUnit         `gorm:"foreignKey:UnitID;references:UnitID" json:"text_details,omitempty"`
	Page         *PageUnit         `gorm:"foreignKey:UnitID;references:UnitID" json:"page_details,omitempty"`
	Assignment   *Assignment       `gorm:"foreignKey:UnitID;references:UnitID" json:"assignment_details,omitempty"`
	Scorm        *ScormPackage     `gorm:"foreignKey:UnitID;references:UnitID" json:"scorm_details,omitempty"`
	Survey       *Survey           `gorm:"foreignKey:UnitID;references:UnitID" json:"survey_details,omitempty"`
	Quiz         *Quiz             `gorm:"foreignKey:UnitID;references:UnitID" json:"quiz_details,omitempty"`
}

// TableName 指定表名
func (Unit) TableName() string { return "modules" }

// IsQuizType 测验/考试类单元
func (u *Unit) IsQuizType() bool {
	return u.ModuleType == UnitTypeQuiz || u.ModuleType == UnitTypeTest
}
