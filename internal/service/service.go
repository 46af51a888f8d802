package service

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"
	"gorm.io/gorm"

	"trainer-lms/internal/model"
	"trainer-lms/internal/repository"
	"trainer-lms/pkg/jwt"
	"trainer-lms/pkg/validate"
)

// Service 所有 Service 的聚合入口
type Service struct {
	Auth       AuthService
	Course     CourseService
	Unit       UnitService
	Sequencing SequencingService
	Enrollment EnrollmentService
	Team       TeamService
	Progress   ProgressService
	Report     ReportService
}

// NewService 创建 Service 聚合
// blacklist 可为 nil（未启用 Redis 时注销仅在客户端生效）
func NewService(
	repo *repository.Repository,
	jwtMgr *jwt.Manager,
	blacklist TokenBlacklist,
	logger *zap.Logger,
) *Service {
	v := validate.New()
	return &Service{
		Auth:       NewAuthService(repo, jwtMgr, blacklist, logger),
		Course:     NewCourseService(repo, logger),
		Unit:       NewUnitService(repo, v, logger),
		Sequencing: NewSequencingService(repo, v, logger),
		Enrollment: NewEnrollmentService(repo, logger),
		Team:       NewTeamService(repo, logger),
		Progress:   NewProgressService(repo, logger),
		Report:     NewReportService(repo, logger),
	}
}

// ── 内部辅助方法 ──

// runInTx 在事务中执行 fn，fn 返回错误或 panic 时回滚
// 仓储未绑定数据库时（mock）直接在原仓储上执行
func runInTx(ctx context.Context, repo *repository.Repository, logger *zap.Logger, fn func(txRepo *repository.Repository) error) error {
	tx, err := repo.BeginTx(ctx)
	if err != nil {
		logger.Error("开启事务失败", zap.Error(err))
		return err
	}
	defer func() {
		if r := recover(); r != nil {
			if tx != nil {
				tx.Rollback()
			}
			panic(r)
		}
	}()

	if err := fn(repo.WithTx(tx)); err != nil {
		if tx != nil {
			tx.Rollback()
		}
		return err
	}

	if tx != nil {
		if err := tx.Commit().Error; err != nil {
			logger.Error("提交事务失败", zap.Error(err))
			return err
		}
	}
	return nil
}

// canViewCourse 课程管理者、经理与已报名学员可查看课程
func canViewCourse(ctx context.Context, repo *repository.Repository, logger *zap.Logger, course *model.Course, actor Actor) (bool, error) {
	if actor.CanViewRoster(course) {
		return true, nil
	}
	_, err := repo.Enrollment.GetByCourseAndUser(ctx, course.CourseID, actor.UserID)
	if err == nil {
		return true, nil
	}
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return false, nil
	}
	logger.Error("查询报名记录失败", zap.String("course_id", course.CourseID), zap.Error(err))
	return false, err
}

// answerReveal 决定题目答案与解析是否对当前用户可见
// 课程管理者始终可见；其他用户仅在测验开启 show_correct_answers 且本人已作答后可见
func answerReveal(ctx context.Context, repo *repository.Repository, logger *zap.Logger, course *model.Course, actor Actor) func(q *model.Quiz) bool {
	if actor.CanManageCourse(course) {
		return revealAnswers
	}
	return func(q *model.Quiz) bool {
		if !q.ShowCorrectAnswers || actor.UserID == "" {
			return false
		}
		n, err := repo.Progress.CountQuizAttempts(ctx, q.QuizID, actor.UserID)
		if err != nil {
			logger.Warn("统计作答次数失败，隐藏答案", zap.String("quiz_id", q.QuizID), zap.Error(err))
			return false
		}
		return n > 0
	}
}

func revealAnswers(*model.Quiz) bool { return true }

func formatTime(t time.Time) string {
	return t.UTC().Format(time.RFC3339)
}

func formatTimePtr(t *time.Time) string {
	if t == nil {
		return ""
	}
	return formatTime(*t)
}

// dedupe 去除空串与重复项，保留首次出现的顺序
func dedupe(ids []string) []string {
	seen := make(map[string]bool, len(ids))
	out := make([]string, 0, len(ids))
	for _, id := range ids {
		if id == "" || seen[id] {
			continue
		}
		seen[id] = true
		out = append(out, id)
	}
	return out
}

// optionalID 空串视为未知操作者（如命令行系统身份）
func optionalID(id string) *string {
	if id == "" {
		return nil
	}
	return &id
}

// newID 预先生成主键，用于需要在提交前确定 ID 的批量写入
func newID() string {
	return uuid.NewString()
}
