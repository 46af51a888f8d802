package model

import (
	"time"

	"gorm.io/datatypes"
)

// Quiz 测验配置，对应 quizzes，与单元一对一
type Quiz struct {
	QuizID              string `gorm:"type:uuid;primaryKey;default:gen_random_uuid()" json:"quiz_id"`
	UnitID              string `gorm:"column:module_id;type:uuid;not null;uniqueIndex" json:"module_id"`
	TimeLimitMinutes    *int   `json:"time_limit_minutes,omitempty"`
	PassingScore        int    `gorm:"not null"                                        json:"passing_score"`
	MaxAttempts         int    `gorm:"not null"                                        json:"max_attempts"`
	RandomizeQuestions  bool   `gorm:"not null"                                        json:"randomize_questions"`
	ShowCorrectAnswers  bool   `gorm:"not null"                                        json:"show_correct_answers"`
	MandatoryCompletion bool   `gorm:"not null"                                        json:"mandatory_completion"`
	Timestamps

	Questions []Question `gorm:"foreignKey:QuizID;references:QuizID" json:"questions,omitempty"`
}

// TableName 指定表名
func (Quiz) TableName() string { return "quizzes" }

// 题目类型
const (
	QuestionMultipleChoice = "multiple_choice"
	QuestionMultipleAnswer = "multiple_answer"
	QuestionTrueFalse      = "true_false"
	QuestionFillBlank      = "fill_blank"
	QuestionMatching       = "matching"
	QuestionOrdering       = "ordering"
	// QuestionFreeText 主观题，不参与自动判分
	QuestionFreeText = "free_text"
)

// Question 测验题目，对应 questions
type Question struct {
	QuestionID    string         `gorm:"type:uuid;primaryKey;default:gen_random_uuid()" json:"question_id"`
	QuizID        string         `gorm:"type:uuid;not null;index"                       json:"quiz_id"`
	QuestionType  string         `gorm:"type:varchar(30);not null"                      json:"question_type"`
	QuestionText  string         `gorm:"type:text;not null"                             json:"question_text"`
	Options       datatypes.JSON `gorm:"type:jsonb"                                     json:"options,omitempty"`
	CorrectAnswer datatypes.JSON `gorm:"type:jsonb"                                     json:"correct_answer,omitempty"`
	Points        int            `gorm:"not null"                                       json:"points"`
	Order         int            `gorm:"column:sort_order;not null"                     json:"order"`
	Explanation   *string        `gorm:"type:text"                                      json:"explanation,omitempty"`
	CreatedAt     time.Time      `gorm:"not null;default:CURRENT_TIMESTAMP"             json:"created_at"`
}

// TableName 指定表名
func (Question) TableName() string { return "questions" }
