package repository

import (
	"context"
	"database/sql"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"trainer-lms/internal/model"
)

// ProgressRepository 学习进度、测验作答与作业提交数据访问接口
type ProgressRepository interface {
	GetUnitProgress(ctx context.Context, enrollmentID, unitID string) (*model.UnitProgress, error)
	// SaveUnitProgress 以 (enrollment_id, module_id) 为冲突键写入进度
	SaveUnitProgress(ctx context.Context, progress *model.UnitProgress) error
	ListByEnrollment(ctx context.Context, enrollmentID string) ([]model.UnitProgress, error)

	CreateQuizAttempt(ctx context.Context, attempt *model.QuizAttempt) error
	CountQuizAttempts(ctx context.Context, quizID, userID string) (int64, error)
	// BestQuizScores 返回用户在课程内每个测验的最高分，键为 quiz_id
	BestQuizScores(ctx context.Context, userID, courseID string) (map[string]int, error)
	// AverageQuizScore 课程内全部作答的平均分，无作答时返回 nil
	AverageQuizScore(ctx context.Context, courseID string) (*float64, error)

	CreateSubmission(ctx context.Context, submission *model.AssignmentSubmission) error
	GetSubmission(ctx context.Context, id string) (*model.AssignmentSubmission, error)
	GradeSubmission(ctx context.Context, submission *model.AssignmentSubmission) error
}

type progressRepo struct {
	db *gorm.DB
}

// NewProgressRepo 创建 ProgressRepository 实例
func NewProgressRepo(db *gorm.DB) ProgressRepository {
	return &progressRepo{db: db}
}

// ── 单元进度 ──

func (r *progressRepo) GetUnitProgress(ctx context.Context, enrollmentID, unitID string) (*model.UnitProgress, error) {
	var p model.UnitProgress
	err := r.db.WithContext(ctx).
		Where("enrollment_id = ? AND module_id = ?", enrollmentID, unitID).
		First(&p).Error
	if err != nil {
		return nil, err
	}
	return &p, nil
}

func (r *progressRepo) SaveUnitProgress(ctx context.Context, progress *model.UnitProgress) error {
	return r.db.WithContext(ctx).
		Clauses(clause.OnConflict{
			Columns: []clause.Column{{Name: "enrollment_id"}, {Name: "module_id"}},
			DoUpdates: clause.AssignmentColumns([]string{
				"status", "watch_percentage", "time_spent_minutes", "score",
				"started_at", "completed_at", "updated_at",
			}),
		}).
		Create(progress).Error
}

func (r *progressRepo) ListByEnrollment(ctx context.Context, enrollmentID string) ([]model.UnitProgress, error) {
	var list []model.UnitProgress
	err := r.db.WithContext(ctx).
		Where("enrollment_id = ?", enrollmentID).
		Find(&list).Error
	return list, err
}

// ── 测验作答 ──

func (r *progressRepo) CreateQuizAttempt(ctx context.Context, attempt *model.QuizAttempt) error {
	return r.db.WithContext(ctx).Create(attempt).Error
}

func (r *progressRepo) CountQuizAttempts(ctx context.Context, quizID, userID string) (int64, error) {
	var count int64
	err := r.db.WithContext(ctx).
		Model(&model.QuizAttempt{}).
		Where("quiz_id = ? AND user_id = ?", quizID, userID).
		Count(&count).Error
	return count, err
}

func (r *progressRepo) BestQuizScores(ctx context.Context, userID, courseID string) (map[string]int, error) {
	var rows []struct {
		QuizID string
		Best   int
	}
	err := r.db.WithContext(ctx).
		Model(&model.QuizAttempt{}).
		Select("quiz_attempts.quiz_id, MAX(quiz_attempts.score) AS best").
		Joins("JOIN quizzes ON quizzes.quiz_id = quiz_attempts.quiz_id").
		Joins("JOIN modules ON modules.module_id = quizzes.module_id").
		Where("quiz_attempts.user_id = ? AND modules.course_id = ?", userID, courseID).
		Group("quiz_attempts.quiz_id").
		Scan(&rows).Error
	if err != nil {
		return nil, err
	}

	scores := make(map[string]int, len(rows))
	for _, row := range rows {
		scores[row.QuizID] = row.Best
	}
	return scores, nil
}

func (r *progressRepo) AverageQuizScore(ctx context.Context, courseID string) (*float64, error) {
	var avg sql.NullFloat64
	err := r.db.WithContext(ctx).
		Model(&model.QuizAttempt{}).
		Select("AVG(quiz_attempts.score)").
		Joins("JOIN quizzes ON quizzes.quiz_id = quiz_attempts.quiz_id").
		Joins("JOIN modules ON modules.module_id = quizzes.module_id").
		Where("modules.course_id = ?", courseID).
		Row().Scan(&avg)
	if err != nil || !avg.Valid {
		return nil, err
	}
	return &avg.Float64, nil
}

// ── 作业提交 ──

func (r *progressRepo) CreateSubmission(ctx context.Context, submission *model.AssignmentSubmission) error {
	return r.db.WithContext(ctx).Create(submission).Error
}

func (r *progressRepo) GetSubmission(ctx context.Context, id string) (*model.AssignmentSubmission, error) {
	if !isUUID(id) {
		return nil, gorm.ErrRecordNotFound
	}
	var s model.AssignmentSubmission
	err := r.db.WithContext(ctx).
		Where("submission_id = ?", id).
		First(&s).Error
	if err != nil {
		return nil, err
	}
	return &s, nil
}

func (r *progressRepo) GradeSubmission(ctx context.Context, submission *model.AssignmentSubmission) error {
	return r.db.WithContext(ctx).
		Model(&model.AssignmentSubmission{}).
		Where("submission_id = ?", submission.SubmissionID).
		Updates(map[string]interface{}{
			"status":    submission.Status,
			"score":     submission.Score,
			"feedback":  submission.Feedback,
			"graded_by": submission.GradedBy,
			"graded_at": submission.GradedAt,
		}).Error
}
