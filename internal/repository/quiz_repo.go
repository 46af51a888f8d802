package repository

import (
	"context"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"trainer-lms/internal/model"
)

// QuizRepository 测验与题目数据访问接口
type QuizRepository interface {
	Create(ctx context.Context, quiz *model.Quiz) error
	// GetByUnitID 按单元查询测验，题目按 order 升序预加载
	GetByUnitID(ctx context.Context, unitID string) (*model.Quiz, error)
	Update(ctx context.Context, quiz *model.Quiz) error
	CreateQuestions(ctx context.Context, questions []model.Question) error
	DeleteQuestions(ctx context.Context, quizID string) error
	// ListByCourse 返回课程下全部测验（不含题目）
	ListByCourse(ctx context.Context, courseID string) ([]model.Quiz, error)
}

type quizRepo struct {
	db *gorm.DB
}

// NewQuizRepo 创建 QuizRepository 实例
func NewQuizRepo(db *gorm.DB) QuizRepository {
	return &quizRepo{db: db}
}

func (r *quizRepo) Create(ctx context.Context, quiz *model.Quiz) error {
	return r.db.WithContext(ctx).Omit(clause.Associations).Create(quiz).Error
}

func (r *quizRepo) GetByUnitID(ctx context.Context, unitID string) (*model.Quiz, error) {
	if !isUUID(unitID) {
		return nil, gorm.ErrRecordNotFound
	}
	var quiz model.Quiz
	err := r.db.WithContext(ctx).
		Preload("Questions", func(db *gorm.DB) *gorm.DB {
			return db.Order("sort_order ASC")
		}).
		Where("module_id = ?", unitID).
		First(&quiz).Error
	if err != nil {
		return nil, err
	}
	return &quiz, nil
}

func (r *quizRepo) Update(ctx context.Context, quiz *model.Quiz) error {
	return r.db.WithContext(ctx).
		Model(&model.Quiz{}).
		Where("quiz_id = ?", quiz.QuizID).
		Updates(map[string]interface{}{
			"time_limit_minutes":   quiz.TimeLimitMinutes,
			"passing_score":        quiz.PassingScore,
			"max_attempts":         quiz.MaxAttempts,
			"randomize_questions":  quiz.RandomizeQuestions,
			"show_correct_answers": quiz.ShowCorrectAnswers,
			"updated_at":           gorm.Expr("NOW()"),
		}).Error
}

func (r *quizRepo) CreateQuestions(ctx context.Context, questions []model.Question) error {
	if len(questions) == 0 {
		return nil
	}
	return r.db.WithContext(ctx).Create(&questions).Error
}

func (r *quizRepo) DeleteQuestions(ctx context.Context, quizID string) error {
	return r.db.WithContext(ctx).
		Where("quiz_id = ?", quizID).
		Delete(&model.Question{}).Error
}

func (r *quizRepo) ListByCourse(ctx context.Context, courseID string) ([]model.Quiz, error) {
	var quizzes []model.Quiz
	err := r.db.WithContext(ctx).
		Joins("JOIN modules ON modules.module_id = quizzes.module_id").
		Where("modules.course_id = ?", courseID).
		Find(&quizzes).Error
	return quizzes, err
}
