package dto

import "encoding/json"

// ── 单元模块 DTO ──

// UnitRequest 单元创建/更新请求
// 兼容旧字段名：type/module_type、order/sequence_order、course/course_id、is_required/is_mandatory
type UnitRequest struct {
	CourseID                 *string `json:"course_id"`
	Course                   *string `json:"course"`
	ModuleType               *string `json:"module_type"`
	Type                     *string `json:"type"`
	Title                    *string `json:"title"`
	Description              *string `json:"description"`
	SequenceOrder            *int    `json:"sequence_order"`
	Order                    *int    `json:"order"`
	IsMandatory              *bool   `json:"is_mandatory"`
	IsRequired               *bool   `json:"is_required"`
	EstimatedDurationMinutes *int    `json:"estimated_duration_minutes"`
	VideoCount               *int    `json:"video_count"`
	HasQuizzes               *bool   `json:"has_quizzes"`
}

// UnitInput 归一化后的单元输入，nil 表示未提供
type UnitInput struct {
	CourseID                 *string `json:"course_id"                  validate:"omitempty,uuid"`
	ModuleType               *string `json:"module_type"                validate:"omitempty,module_type"`
	Title                    *string `json:"title"                      validate:"omitempty,min=1,max=255"`
	Description              *string `json:"description"`
	SequenceOrder            *int    `json:"sequence_order"             validate:"omitempty,min=0"`
	IsMandatory              *bool   `json:"is_mandatory"`
	EstimatedDurationMinutes *int    `json:"estimated_duration_minutes" validate:"omitempty,min=0"`
	VideoCount               *int    `json:"video_count"                validate:"omitempty,min=0"`
	HasQuizzes               *bool   `json:"has_quizzes"`
}

// Normalize 合并别名字段，规范字段名优先
func (r *UnitRequest) Normalize() *UnitInput {
	return &UnitInput{
		CourseID:                 firstString(r.CourseID, r.Course),
		ModuleType:               firstString(r.ModuleType, r.Type),
		Title:                    r.Title,
		Description:              r.Description,
		SequenceOrder:            firstInt(r.SequenceOrder, r.Order),
		IsMandatory:              firstBool(r.IsMandatory, r.IsRequired),
		EstimatedDurationMinutes: r.EstimatedDurationMinutes,
		VideoCount:               r.VideoCount,
		HasQuizzes:               r.HasQuizzes,
	}
}

func firstString(canonical, alias *string) *string {
	if canonical != nil {
		return canonical
	}
	return alias
}

func firstInt(canonical, alias *int) *int {
	if canonical != nil {
		return canonical
	}
	return alias
}

func firstBool(canonical, alias *bool) *bool {
	if canonical != nil {
		return canonical
	}
	return alias
}

// UnitResponse 单元信息
type UnitResponse struct {
	ID                       string  `json:"id"`
	CourseID                 string  `json:"course_id"`
	ModuleType               string  `json:"module_type"`
	Title                    string  `json:"title"`
	Description              *string `json:"description,omitempty"`
	SequenceOrder            int     `json:"sequence_order"`
	IsMandatory              bool    `json:"is_mandatory"`
	EstimatedDurationMinutes *int    `json:"estimated_duration_minutes,omitempty"`
	VideoCount               int     `json:"video_count"`
	HasQuizzes               bool    `json:"has_quizzes"`
	CreatedAt                string  `json:"created_at"`
	UpdatedAt                string  `json:"updated_at"`
}

// UnitDetailResponse 单元详情，content 为对应类型的内容子表
type UnitDetailResponse struct {
	UnitResponse
	Content interface{}   `json:"content,omitempty"`
	Quiz    *QuizResponse `json:"quiz,omitempty"`
}

// ── 测验 ──

// SaveQuizRequest 测验配置（不存在时创建）
type SaveQuizRequest struct {
	TimeLimitMinutes    *int  `json:"time_limit_minutes"   binding:"omitempty,min=1"`
	PassingScore        *int  `json:"passing_score"        binding:"omitempty,min=0,max=100"`
	MaxAttempts         *int  `json:"max_attempts"         binding:"omitempty,min=0"`
	RandomizeQuestions  *bool `json:"randomize_questions"`
	ShowCorrectAnswers  *bool `json:"show_correct_answers"`
	MandatoryCompletion *bool `json:"mandatory_completion"`
}

// QuestionRequest 题目
type QuestionRequest struct {
	QuestionType  string          `json:"question_type"  binding:"required,oneof=multiple_choice multiple_answer true_false fill_blank matching ordering free_text"`
	QuestionText  string          `json:"question_text"  binding:"required"`
	Options       json.RawMessage `json:"options"`
	CorrectAnswer json.RawMessage `json:"correct_answer" binding:"required_unless=QuestionType free_text"`
	Points        *int            `json:"points"         binding:"omitempty,min=0"`
	Order         *int            `json:"order"          binding:"omitempty,min=0"`
	Explanation   *string         `json:"explanation"`
}

// AddQuestionsRequest 追加题目
type AddQuestionsRequest struct {
	Questions []QuestionRequest `json:"questions" binding:"required,min=1,dive"`
}

// QuizResponse 测验详情
type QuizResponse struct {
	ID                  string             `json:"id"`
	UnitID              string             `json:"unit_id"`
	TimeLimitMinutes    *int               `json:"time_limit_minutes,omitempty"`
	PassingScore        int                `json:"passing_score"`
	MaxAttempts         int                `json:"max_attempts"`
	RandomizeQuestions  bool               `json:"randomize_questions"`
	ShowCorrectAnswers  bool               `json:"show_correct_answers"`
	MandatoryCompletion bool               `json:"mandatory_completion"`
	Questions           []QuestionResponse `json:"questions"`
}

// QuestionResponse 题目信息
type QuestionResponse struct {
	ID            string          `json:"id"`
	QuestionType  string          `json:"question_type"`
	QuestionText  string          `json:"question_text"`
	Options       json.RawMessage `json:"options,omitempty"`
	CorrectAnswer json.RawMessage `json:"correct_answer,omitempty"`
	Points        int             `json:"points"`
	Order         int             `json:"order"`
	Explanation   *string         `json:"explanation,omitempty"`
}
