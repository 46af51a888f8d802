package dto

// ── 课程模块 DTO ──

// CreateCourseRequest 创建课程请求
type CreateCourseRequest struct {
	Title                  string  `json:"title"                    binding:"required,min=1,max=255"`
	Description            *string `json:"description"`
	About                  *string `json:"about"`
	Outcomes               *string `json:"outcomes"`
	CourseType             string  `json:"course_type"              binding:"omitempty,oneof=self_paced instructor_led blended"`
	IsMandatory            bool    `json:"is_mandatory"`
	EstimatedDurationHours *int    `json:"estimated_duration_hours" binding:"omitempty,min=0"`
	PassingCriteria        *int    `json:"passing_criteria"         binding:"omitempty,min=0,max=100"`
}

// UpdateCourseRequest 更新课程请求，未提供的字段保持不变
type UpdateCourseRequest struct {
	Title                  *string `json:"title"                    binding:"omitempty,min=1,max=255"`
	Description            *string `json:"description"`
	About                  *string `json:"about"`
	Outcomes               *string `json:"outcomes"`
	CourseType             *string `json:"course_type"              binding:"omitempty,oneof=self_paced instructor_led blended"`
	IsMandatory            *bool   `json:"is_mandatory"`
	EstimatedDurationHours *int    `json:"estimated_duration_hours" binding:"omitempty,min=0"`
	PassingCriteria        *int    `json:"passing_criteria"         binding:"omitempty,min=0,max=100"`
	Version                *int    `json:"version"                  binding:"omitempty,min=1"`
}

// CourseResponse 课程基本信息
type CourseResponse struct {
	ID                     string  `json:"id"`
	Title                  string  `json:"title"`
	Description            *string `json:"description,omitempty"`
	About                  *string `json:"about,omitempty"`
	Outcomes               *string `json:"outcomes,omitempty"`
	CourseType             string  `json:"course_type"`
	Status                 string  `json:"status"`
	IsMandatory            bool    `json:"is_mandatory"`
	EstimatedDurationHours *int    `json:"estimated_duration_hours,omitempty"`
	PassingCriteria        int     `json:"passing_criteria"`
	CreatedBy              string  `json:"created_by,omitempty"`
	PublishedAt            string  `json:"published_at,omitempty"`
	Version                int     `json:"version"`
	CreatedAt              string  `json:"created_at"`
	UpdatedAt              string  `json:"updated_at"`
}

// CourseDetailResponse 课程详情，含有序单元与测验
type CourseDetailResponse struct {
	CourseResponse
	Units []UnitDetailResponse `json:"units,omitempty"`
}
