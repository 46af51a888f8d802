package model

import "time"

// 定时开放规则
const (
	DripFeedNone  = "none"
	DripFeedDelay = "delay"
)

// ModuleSequencing 单元排序/前置规则，对应 module_sequencing
// 每个 (course_id, module_id) 至多一条规则
type ModuleSequencing struct {
	SequenceID            string    `gorm:"type:uuid;primaryKey;default:gen_random_uuid()"                  json:"sequence_id"`
	CourseID              string    `gorm:"type:uuid;not null;uniqueIndex:uq_sequencing_module,priority:1" json:"course_id"`
	ModuleID              string    `gorm:"type:uuid;not null;uniqueIndex:uq_sequencing_module,priority:2" json:"module_id"`
	PrecedingModuleID     *string   `gorm:"type:uuid"                                                       json:"preceding_module_id,omitempty"`
	DripFeedRule          string    `gorm:"type:varchar(20);not null"                                       json:"drip_feed_rule"`
	DripFeedDelayDays     int       `gorm:"not null"                                                        json:"drip_feed_delay_days"`
	PrerequisiteCompleted bool      `gorm:"not null"                                                        json:"prerequisite_completed"`
	CreatedAt             time.Time `gorm:"not null;default:CURRENT_TIMESTAMP"                              json:"created_at"`
}

// TableName 指定表名
func (ModuleSequencing) TableName() string { return "module_sequencing" }
