package dto

// ── 单元排序规则 DTO ──

// SequenceRuleRequest 单条排序规则
type SequenceRuleRequest struct {
	ModuleID              string  `json:"module_id"              validate:"required"`
	PrecedingModuleID     *string `json:"preceding_module_id"`
	DripFeedRule          string  `json:"drip_feed_rule"         validate:"omitempty,drip_rule"`
	DripFeedDelayDays     int     `json:"drip_feed_delay_days"   validate:"min=0"`
	PrerequisiteCompleted bool    `json:"prerequisite_completed"`
}

// ReplaceSequenceRequest 整体替换课程的排序规则
type ReplaceSequenceRequest struct {
	Rules []SequenceRuleRequest `json:"rules" validate:"dive"`
}

// ReplaceSequenceResponse 按提交顺序返回新规则 ID
type ReplaceSequenceResponse struct {
	Created []string `json:"created"`
}

// SequenceRuleResponse 排序规则
type SequenceRuleResponse struct {
	ID                    string  `json:"id"`
	CourseID              string  `json:"course_id"`
	ModuleID              string  `json:"module_id"`
	PrecedingModuleID     *string `json:"preceding_module_id,omitempty"`
	DripFeedRule          string  `json:"drip_feed_rule"`
	DripFeedDelayDays     int     `json:"drip_feed_delay_days"`
	PrerequisiteCompleted bool    `json:"prerequisite_completed"`
}

// UnitAvailabilityResponse 学员视角的单元解锁状态
type UnitAvailabilityResponse struct {
	UnitID        string `json:"unit_id"`
	Title         string `json:"title"`
	SequenceOrder int    `json:"sequence_order"`
	Unlocked      bool   `json:"unlocked"`
	UnlocksAt     string `json:"unlocks_at,omitempty"`
	Reason        string `json:"reason,omitempty"` // prerequisite / drip_feed
}
