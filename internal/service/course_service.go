package service

import (
	"context"
	"errors"
	"strings"
	"time"

	"go.uber.org/zap"
	"gorm.io/gorm"

	"trainer-lms/internal/dto"
	"trainer-lms/internal/model"
	"trainer-lms/internal/repository"
	pkgerrors "trainer-lms/pkg/errors"
)

// 复制课程时追加在标题后的标记
const copyTitleSuffix = " (copy)"

// ── 课程模块业务错误 ──

var (
	ErrCourseAlreadyPublished = errors.New("课程已发布")
	ErrCourseHasNoUnits       = errors.New("课程没有任何单元，无法发布")
)

// CourseService 课程业务接口
type CourseService interface {
	Create(ctx context.Context, req *dto.CreateCourseRequest, actor Actor) (*dto.CourseResponse, error)
	// GetDetail 课程详情，含有序单元、内容与测验
	GetDetail(ctx context.Context, id string, actor Actor) (*dto.CourseDetailResponse, error)
	// List 管理员返回全部课程，培训师返回自己创建的课程，其他角色返回已报名的已发布课程
	List(ctx context.Context, actor Actor) ([]dto.CourseResponse, error)
	Update(ctx context.Context, id string, req *dto.UpdateCourseRequest, actor Actor) (*dto.CourseResponse, error)
	Publish(ctx context.Context, id string, actor Actor) (*dto.CourseResponse, error)
	// Duplicate 复制课程为新的草稿课程，单个单元复制失败不影响其余单元
	Duplicate(ctx context.Context, id string, actor Actor) (*dto.CourseDetailResponse, error)
}

type courseService struct {
	repo   *repository.Repository
	logger *zap.Logger
}

// NewCourseService 创建 CourseService 实例
func NewCourseService(repo *repository.Repository, logger *zap.Logger) CourseService {
	return &courseService{repo: repo, logger: logger}
}

// ────────────────────── Create ──────────────────────

func (s *courseService) Create(ctx context.Context, req *dto.CreateCourseRequest, actor Actor) (*dto.CourseResponse, error) {
	if !actor.IsTrainer() {
		return nil, ErrPermissionDenied
	}

	course := &model.Course{
		Title:                  strings.TrimSpace(req.Title),
		Description:            req.Description,
		About:                  req.About,
		Outcomes:               req.Outcomes,
		CourseType:             req.CourseType,
		Status:                 model.CourseStatusDraft,
		IsMandatory:            req.IsMandatory,
		EstimatedDurationHours: req.EstimatedDurationHours,
		PassingCriteria:        70,
		CreatedBy:              optionalID(actor.UserID),
	}
	if course.CourseType == "" {
		course.CourseType = model.CourseTypeSelfPaced
	}
	if req.PassingCriteria != nil {
		course.PassingCriteria = *req.PassingCriteria
	}

	if err := s.repo.Course.Create(ctx, course); err != nil {
		s.logger.Error("创建课程失败", zap.String("title", course.Title), zap.Error(err))
		return nil, err
	}

	s.logger.Info("课程已创建", zap.String("course_id", course.CourseID), zap.String("owner", actor.UserID))
	resp := toCourseResponse(course)
	return &resp, nil
}

// ────────────────────── GetDetail ──────────────────────

func (s *courseService) GetDetail(ctx context.Context, id string, actor Actor) (*dto.CourseDetailResponse, error) {
	course, err := s.repo.Course.GetDetail(ctx, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrCourseNotFound
		}
		s.logger.Error("查询课程详情失败", zap.String("course_id", id), zap.Error(err))
		return nil, err
	}

	visible, err := canViewCourse(ctx, s.repo, s.logger, course, actor)
	if err != nil {
		return nil, err
	}
	// 无权查看时按不存在处理，避免暴露课程 ID
	if !visible {
		return nil, ErrCourseNotFound
	}

	return toCourseDetailResponse(course, answerReveal(ctx, s.repo, s.logger, course, actor)), nil
}

// ────────────────────── List ──────────────────────

func (s *courseService) List(ctx context.Context, actor Actor) ([]dto.CourseResponse, error) {
	var (
		courses []model.Course
		err     error
	)
	switch {
	case actor.IsAdmin():
		courses, err = s.repo.Course.ListAll(ctx)
	case actor.Role == model.RoleTrainer:
		courses, err = s.repo.Course.ListByCreator(ctx, actor.UserID)
	default:
		courses, err = s.repo.Course.ListByLearner(ctx, actor.UserID)
	}
	if err != nil {
		s.logger.Error("查询课程列表失败", zap.String("user_id", actor.UserID), zap.Error(err))
		return nil, err
	}

	result := make([]dto.CourseResponse, 0, len(courses))
	for i := range courses {
		result = append(result, toCourseResponse(&courses[i]))
	}
	return result, nil
}

// ────────────────────── Update ──────────────────────

func (s *courseService) Update(ctx context.Context, id string, req *dto.UpdateCourseRequest, actor Actor) (*dto.CourseResponse, error) {
	course, err := s.getManagedCourse(ctx, id, actor)
	if err != nil {
		return nil, err
	}

	if req.Title != nil {
		course.Title = strings.TrimSpace(*req.Title)
	}
	if req.Description != nil {
		course.Description = req.Description
	}
	if req.About != nil {
		course.About = req.About
	}
	if req.Outcomes != nil {
		course.Outcomes = req.Outcomes
	}
	if req.CourseType != nil {
		course.CourseType = *req.CourseType
	}
	if req.IsMandatory != nil {
		course.IsMandatory = *req.IsMandatory
	}
	if req.EstimatedDurationHours != nil {
		course.EstimatedDurationHours = req.EstimatedDurationHours
	}
	if req.PassingCriteria != nil {
		course.PassingCriteria = *req.PassingCriteria
	}
	// 客户端携带版本号时按其版本做乐观锁校验
	if req.Version != nil {
		course.Version = *req.Version
	}

	if err := s.repo.Course.Update(ctx, course); err != nil {
		if errors.Is(err, pkgerrors.ErrOptimisticLock) {
			return nil, err
		}
		s.logger.Error("更新课程失败", zap.String("course_id", id), zap.Error(err))
		return nil, err
	}

	resp := toCourseResponse(course)
	return &resp, nil
}

// ────────────────────── Publish ──────────────────────

func (s *courseService) Publish(ctx context.Context, id string, actor Actor) (*dto.CourseResponse, error) {
	course, err := s.getManagedCourse(ctx, id, actor)
	if err != nil {
		return nil, err
	}
	if course.Status == model.CourseStatusPublished {
		return nil, ErrCourseAlreadyPublished
	}

	units, err := s.repo.Unit.ListByCourse(ctx, id)
	if err != nil {
		s.logger.Error("查询课程单元失败", zap.String("course_id", id), zap.Error(err))
		return nil, err
	}
	if len(units) == 0 {
		return nil, ErrCourseHasNoUnits
	}

	publishedAt := time.Now().UTC()
	course.Status = model.CourseStatusPublished
	course.PublishedAt = &publishedAt

	if err := s.repo.Course.Update(ctx, course); err != nil {
		if errors.Is(err, pkgerrors.ErrOptimisticLock) {
			return nil, err
		}
		s.logger.Error("发布课程失败", zap.String("course_id", id), zap.Error(err))
		return nil, err
	}

	s.logger.Info("课程已发布", zap.String("course_id", id), zap.Int("units", len(units)))
	resp := toCourseResponse(course)
	return &resp, nil
}

// ════════════════════════════════════════════════════════════
// Duplicate 深拷贝课程、单元与测验
// ════════════════════════════════════════════════════════════
//
// 新课程：标题追加 (copy)，状态强制为 draft，所有者为当前培训师
// 单元：按原顺序复制单元外壳（类型、标题、排序、标记）
// 测验：配置与全部题目生成新的记录；其他类型只复制外壳
// 单个单元复制失败记录日志后跳过，整体仍返回成功

func (s *courseService) Duplicate(ctx context.Context, id string, actor Actor) (*dto.CourseDetailResponse, error) {
	if !actor.IsTrainer() {
		return nil, ErrPermissionDenied
	}

	source, err := s.repo.Course.GetDetail(ctx, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrCourseNotFound
		}
		s.logger.Error("查询待复制课程失败", zap.String("course_id", id), zap.Error(err))
		return nil, err
	}
	// 培训师可复制自己的课程或任意已发布课程
	if !actor.CanManageCourse(source) && source.Status != model.CourseStatusPublished {
		return nil, ErrCourseNotFound
	}

	copied := &model.Course{
		Title:                  source.Title + copyTitleSuffix,
		Description:            source.Description,
		About:                  source.About,
		Outcomes:               source.Outcomes,
		CourseType:             source.CourseType,
		Status:                 model.CourseStatusDraft,
		IsMandatory:            source.IsMandatory,
		EstimatedDurationHours: source.EstimatedDurationHours,
		PassingCriteria:        source.PassingCriteria,
		CreatedBy:              optionalID(actor.UserID),
	}
	if err := s.repo.Course.Create(ctx, copied); err != nil {
		s.logger.Error("创建课程副本失败", zap.String("source_id", id), zap.Error(err))
		return nil, err
	}

	var copiedUnits, skippedUnits int
	for i := range source.Units {
		if err := s.duplicateUnit(ctx, copied.CourseID, &source.Units[i]); err != nil {
			skippedUnits++
			s.logger.Warn("复制单元失败，已跳过",
				zap.String("source_unit_id", source.Units[i].UnitID),
				zap.String("course_id", copied.CourseID),
				zap.Error(err),
			)
			continue
		}
		copiedUnits++
	}

	s.logger.Info("课程已复制",
		zap.String("source_id", id),
		zap.String("course_id", copied.CourseID),
		zap.Int("units", copiedUnits),
		zap.Int("skipped", skippedUnits),
	)

	detail, err := s.repo.Course.GetDetail(ctx, copied.CourseID)
	if err != nil {
		s.logger.Warn("加载课程副本详情失败，返回基础信息", zap.String("course_id", copied.CourseID), zap.Error(err))
		return &dto.CourseDetailResponse{CourseResponse: toCourseResponse(copied)}, nil
	}
	// 副本归当前用户所有，答案可见
	return toCourseDetailResponse(detail, revealAnswers), nil
}

// duplicateUnit 复制单元外壳，测验类单元连同测验配置与题目一并复制
// 外壳已写入而测验复制失败时，外壳保留
func (s *courseService) duplicateUnit(ctx context.Context, courseID string, src *model.Unit) error {
	unit := &model.Unit{
		CourseID:                 courseID,
		ModuleType:               src.ModuleType,
		Title:                    src.Title,
		Description:              src.Description,
		SequenceOrder:            src.SequenceOrder,
		IsMandatory:              src.IsMandatory,
		EstimatedDurationMinutes: src.EstimatedDurationMinutes,
		VideoCount:               src.VideoCount,
		HasQuizzes:               src.HasQuizzes,
	}
	if err := s.repo.Unit.Create(ctx, unit); err != nil {
		return err
	}

	if src.Quiz == nil {
		return nil
	}

	return runInTx(ctx, s.repo, s.logger, func(txRepo *repository.Repository) error {
		quiz := &model.Quiz{
			UnitID:              unit.UnitID,
			TimeLimitMinutes:    src.Quiz.TimeLimitMinutes,
			PassingScore:        src.Quiz.PassingScore,
			MaxAttempts:         src.Quiz.MaxAttempts,
			RandomizeQuestions:  src.Quiz.RandomizeQuestions,
			ShowCorrectAnswers:  src.Quiz.ShowCorrectAnswers,
			MandatoryCompletion: src.Quiz.MandatoryCompletion,
		}
		if err := txRepo.Quiz.Create(ctx, quiz); err != nil {
			return err
		}

		questions := make([]model.Question, 0, len(src.Quiz.Questions))
		for _, q := range src.Quiz.Questions {
			questions = append(questions, model.Question{
				QuizID:        quiz.QuizID,
				QuestionType:  q.QuestionType,
				QuestionText:  q.QuestionText,
				Options:       cloneJSON(q.Options),
				CorrectAnswer: cloneJSON(q.CorrectAnswer),
				Points:        q.Points,
				Order:         q.Order,
				Explanation:   q.Explanation,
			})
		}
		return txRepo.Quiz.CreateQuestions(ctx, questions)
	})
}

// ── 内部辅助方法 ──

func (s *courseService) getManagedCourse(ctx context.Context, id string, actor Actor) (*model.Course, error) {
	course, err := s.repo.Course.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrCourseNotFound
		}
		s.logger.Error("查询课程失败", zap.String("course_id", id), zap.Error(err))
		return nil, err
	}
	if !actor.CanManageCourse(course) {
		return nil, ErrPermissionDenied
	}
	return course, nil
}

func cloneJSON(src []byte) []byte {
	if src == nil {
		return nil
	}
	return append([]byte(nil), src...)
}
