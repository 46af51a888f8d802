package model

import "gorm.io/datatypes"

// ── 单元内容子表：每个单元至多一条，module_id 唯一 ──

// VideoUnit 视频内容，对应 video_units
type VideoUnit struct {
	ID              string  `gorm:"type:uuid;primaryKey;default:gen_random_uuid()" json:"id"`
	UnitID          string  `gorm:"column:module_id;type:uuid;not null;uniqueIndex" json:"module_id"`
	VideoURL        *string `gorm:"column:video_url;type:varchar(500)"              json:"video_url,omitempty"`
	StoragePath     *string `gorm:"type:varchar(500)"                               json:"storage_path,omitempty"`
	DurationSeconds *int    `json:"duration_seconds,omitempty"`
	Transcript      *string `gorm:"type:text"                                       json:"transcript,omitempty"`
	AllowDownload   bool    `gorm:"not null"                                        json:"allow_download"`
}

// TableName 指定表名
func (VideoUnit) TableName() string { return "video_units" }

// AudioUnit 音频内容，对应 audio_units
type AudioUnit struct {
	ID              string  `gorm:"type:uuid;primaryKey;default:gen_random_uuid()" json:"id"`
	UnitID          string  `gorm:"column:module_id;type:uuid;not null;uniqueIndex" json:"module_id"`
	AudioURL        *string `gorm:"column:audio_url;type:varchar(500)"              json:"audio_url,omitempty"`
	DurationSeconds *int    `json:"duration_seconds,omitempty"`
	Transcript      *string `gorm:"type:text"                                       json:"transcript,omitempty"`
}

// TableName 指定表名
func (AudioUnit) TableName() string { return "audio_units" }

// PresentationUnit 演示文稿，对应 presentation_units
type PresentationUnit struct {
	ID         string  `gorm:"type:uuid;primaryKey;default:gen_random_uuid()" json:"id"`
	UnitID     string  `gorm:"column:module_id;type:uuid;not null;uniqueIndex" json:"module_id"`
	FileURL    *string `gorm:"column:file_url;type:varchar(500)"               json:"file_url,omitempty"`
	SlideCount *int    `json:"slide_count,omitempty"`
}

// TableName 指定表名
func (PresentationUnit) TableName() string { return "presentation_units" }

// TextUnit 纯文本，对应 text_units
type TextUnit struct {
	ID      string `gorm:"type:uuid;primaryKey;default:gen_random_uuid()" json:"id"`
	UnitID  string `gorm:"column:module_id;type:uuid;not null;uniqueIndex" json:"module_id"`
	Content string `gorm:"type:text;not null"                              json:"content"`
}

// TableName 指定表名
func (TextUnit) TableName() string { return "text_units" }

// PageUnit 富文本页面，对应 page_units
type PageUnit struct {
	ID      string  `gorm:"type:uuid;primaryKey;default:gen_random_uuid()" json:"id"`
	UnitID  string  `gorm:"column:module_id;type:uuid;not null;uniqueIndex" json:"module_id"`
	Content string  `gorm:"type:text;not null"                              json:"content"`
	Layout  *string `gorm:"type:varchar(30)"                                json:"layout,omitempty"`
}

// TableName 指定表名
func (PageUnit) TableName() string { return "page_units" }

// Assignment 作业，对应 assignments
type Assignment struct {
	ID             string `gorm:"type:uuid;primaryKey;default:gen_random_uuid()" json:"id"`
	UnitID         string `gorm:"column:module_id;type:uuid;not null;uniqueIndex" json:"module_id"`
	Instructions   string `gorm:"type:text;not null"                              json:"instructions"`
	SubmissionType string `gorm:"type:varchar(20);not null"                       json:"submission_type"`
	MaxScore       int    `gorm:"not null"                                        json:"max_score"`
	DueDays        *int   `json:"due_days,omitempty"`
}

// TableName 指定表名
func (Assignment) TableName() string { return "assignments" }

// ScormPackage SCORM/xAPI 课件包，对应 scorm_packages
type ScormPackage struct {
	ID         string  `gorm:"type:uuid;primaryKey;default:gen_random_uuid()" json:"id"`
	UnitID     string  `gorm:"column:module_id;type:uuid;not null;uniqueIndex" json:"module_id"`
	PackageURL *string `gorm:"column:package_url;type:varchar(500)"            json:"package_url,omitempty"`
	Version    *string `gorm:"type:varchar(20)"                                json:"version,omitempty"`
	LaunchPath *string `gorm:"type:varchar(500)"                               json:"launch_path,omitempty"`
}

// TableName 指定表名
func (ScormPackage) TableName() string { return "scorm_packages" }

// Survey 问卷，对应 surveys，题目以 JSON 存储
type Survey struct {
	ID          string         `gorm:"type:uuid;primaryKey;default:gen_random_uuid()" json:"id"`
	UnitID      string         `gorm:"column:module_id;type:uuid;not null;uniqueIndex" json:"module_id"`
	Questions   datatypes.JSON `gorm:"type:jsonb"                                      json:"questions,omitempty"`
	IsAnonymous bool           `gorm:"not null"                                        json:"is_anonymous"`
}

// TableName 指定表名
func (Survey) TableName() string { return "surveys" }
