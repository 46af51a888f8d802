package service

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"

	"go.uber.org/zap"
	"gorm.io/datatypes"
	"gorm.io/gorm"

	"trainer-lms/internal/dto"
	"trainer-lms/internal/model"
	"trainer-lms/internal/repository"
	pkgerrors "trainer-lms/pkg/errors"
	"trainer-lms/pkg/validate"
)

// ── 单元模块业务错误 ──

var (
	ErrQuizNotFound = errors.New("该单元尚未配置测验")
)

// 课程内排序位置唯一约束
const constraintUnitSequence = "uq_module_sequence"

// 测验默认配置
const (
	defaultPassingScore  = 70
	defaultMaxAttempts   = 3
	defaultQuestionPoint = 1
)

// UnitService 课程单元业务接口
type UnitService interface {
	// Create 创建单元；未指定 sequence_order 时排在课程末尾
	Create(ctx context.Context, in *dto.UnitInput, actor Actor) (*dto.UnitResponse, error)
	// GetByID 单元详情；仅课程可见者可读，题目答案按 answerReveal 规则输出
	GetByID(ctx context.Context, id string, actor Actor) (*dto.UnitDetailResponse, error)
	Update(ctx context.Context, id string, in *dto.UnitInput, actor Actor) (*dto.UnitResponse, error)
	// Delete 删除单元，其余单元的排序位置保持不变
	Delete(ctx context.Context, id string, actor Actor) error
	ListByCourse(ctx context.Context, courseID string, actor Actor) ([]dto.UnitResponse, error)
	// SaveContent 写入非测验类单元的内容子表
	SaveContent(ctx context.Context, id string, raw json.RawMessage, actor Actor) (*dto.UnitDetailResponse, error)
	SaveQuiz(ctx context.Context, id string, req *dto.SaveQuizRequest, actor Actor) (*dto.QuizResponse, error)
	AddQuestions(ctx context.Context, id string, req *dto.AddQuestionsRequest, actor Actor) (*dto.QuizResponse, error)
}

type unitService struct {
	repo      *repository.Repository
	validator *validate.Validator
	logger    *zap.Logger
}

// NewUnitService 创建 UnitService 实例
func NewUnitService(repo *repository.Repository, v *validate.Validator, logger *zap.Logger) UnitService {
	return &unitService{repo: repo, validator: v, logger: logger}
}

// ════════════════════════════════════════════════════════════
// Create 创建单元并分配排序位置
// ════════════════════════════════════════════════════════════
//
// 未指定位置：max(课程内已有位置) + 1，无单元时为 0
// 指定位置：已被占用则返回 ErrPositionConflict
// 计算与插入在同一事务内完成，并对课程行加锁；
// 并发插入仍由 uq_module_sequence 兜底，冲突统一转换为 ErrPositionConflict

func (s *unitService) Create(ctx context.Context, in *dto.UnitInput, actor Actor) (*dto.UnitResponse, error) {
	if fe := s.validateCreate(in); fe != nil {
		return nil, fe
	}

	course, err := s.repo.Course.GetByID(ctx, *in.CourseID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, newFieldError("course_id", "课程不存在")
		}
		s.logger.Error("查询课程失败", zap.String("course_id", *in.CourseID), zap.Error(err))
		return nil, err
	}
	if !actor.CanManageCourse(course) {
		return nil, ErrPermissionDenied
	}

	unit := &model.Unit{
		CourseID:    course.CourseID,
		IsMandatory: true,
	}
	applyUnitInput(unit, in)

	err = runInTx(ctx, s.repo, s.logger, func(txRepo *repository.Repository) error {
		if _, err := txRepo.Course.GetByIDForUpdate(ctx, course.CourseID); err != nil {
			return err
		}

		if in.SequenceOrder == nil {
			maxOrder, err := txRepo.Unit.MaxSequenceOrder(ctx, course.CourseID)
			if err != nil {
				return err
			}
			unit.SequenceOrder = maxOrder + 1
		} else {
			taken, err := txRepo.Unit.PositionTaken(ctx, course.CourseID, *in.SequenceOrder, "")
			if err != nil {
				return err
			}
			if taken {
				return ErrPositionConflict
			}
		}

		if err := txRepo.Unit.Create(ctx, unit); err != nil {
			if pkgerrors.IsConstraintViolation(err, constraintUnitSequence) {
				return ErrPositionConflict
			}
			return err
		}
		return nil
	})
	if err != nil {
		switch {
		case errors.Is(err, ErrPositionConflict):
			return nil, err
		case errors.Is(err, gorm.ErrRecordNotFound):
			return nil, newFieldError("course_id", "课程不存在")
		}
		s.logger.Error("创建单元失败", zap.String("course_id", course.CourseID), zap.Error(err))
		return nil, err
	}

	s.logger.Info("单元已创建",
		zap.String("unit_id", unit.UnitID),
		zap.String("course_id", unit.CourseID),
		zap.Int("sequence_order", unit.SequenceOrder),
	)

	resp := toUnitResponse(unit)
	return &resp, nil
}

// ────────────────────── GetByID ──────────────────────

func (s *unitService) GetByID(ctx context.Context, id string, actor Actor) (*dto.UnitDetailResponse, error) {
	unit, err := s.repo.Unit.GetWithContent(ctx, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrUnitNotFound
		}
		s.logger.Error("查询单元失败", zap.String("id", id), zap.Error(err))
		return nil, err
	}

	course, err := s.repo.Course.GetByID(ctx, unit.CourseID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrUnitNotFound
		}
		s.logger.Error("查询课程失败", zap.String("course_id", unit.CourseID), zap.Error(err))
		return nil, err
	}
	visible, err := canViewCourse(ctx, s.repo, s.logger, course, actor)
	if err != nil {
		return nil, err
	}
	if !visible {
		return nil, ErrUnitNotFound
	}

	resp := toUnitDetailResponse(unit, answerReveal(ctx, s.repo, s.logger, course, actor))
	return &resp, nil
}

// ────────────────────── Update ──────────────────────

func (s *unitService) Update(ctx context.Context, id string, in *dto.UnitInput, actor Actor) (*dto.UnitResponse, error) {
	unit, course, err := s.loadManagedUnit(ctx, id, actor)
	if err != nil {
		return nil, err
	}

	if fields := s.validator.Struct(in); fields != nil {
		return nil, &FieldError{Fields: fields}
	}
	if in.CourseID != nil && *in.CourseID != unit.CourseID {
		return nil, newFieldError("course_id", "不支持将单元移动到其他课程")
	}

	if in.SequenceOrder != nil {
		taken, err := s.repo.Unit.PositionTaken(ctx, course.CourseID, *in.SequenceOrder, unit.UnitID)
		if err != nil {
			s.logger.Error("检查排序位置失败", zap.String("unit_id", id), zap.Error(err))
			return nil, err
		}
		if taken {
			return nil, ErrPositionConflict
		}
	}

	applyUnitInput(unit, in)

	if err := s.repo.Unit.Update(ctx, unit); err != nil {
		if pkgerrors.IsConstraintViolation(err, constraintUnitSequence) {
			return nil, ErrPositionConflict
		}
		s.logger.Error("更新单元失败", zap.String("unit_id", id), zap.Error(err))
		return nil, err
	}

	resp := toUnitResponse(unit)
	return &resp, nil
}

// ────────────────────── Delete ──────────────────────

func (s *unitService) Delete(ctx context.Context, id string, actor Actor) error {
	unit, _, err := s.loadManagedUnit(ctx, id, actor)
	if err != nil {
		return err
	}

	if err := s.repo.Unit.Delete(ctx, unit.UnitID); err != nil {
		s.logger.Error("删除单元失败", zap.String("unit_id", id), zap.Error(err))
		return err
	}

	s.logger.Info("单元已删除", zap.String("unit_id", id), zap.String("course_id", unit.CourseID))
	return nil
}

// ────────────────────── ListByCourse ──────────────────────

func (s *unitService) ListByCourse(ctx context.Context, courseID string, actor Actor) ([]dto.UnitResponse, error) {
	course, err := s.repo.Course.GetByID(ctx, courseID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrCourseNotFound
		}
		s.logger.Error("查询课程失败", zap.String("course_id", courseID), zap.Error(err))
		return nil, err
	}
	visible, err := canViewCourse(ctx, s.repo, s.logger, course, actor)
	if err != nil {
		return nil, err
	}
	if !visible {
		return nil, ErrCourseNotFound
	}

	units, err := s.repo.Unit.ListByCourse(ctx, courseID)
	if err != nil {
		s.logger.Error("列出课程单元失败", zap.String("course_id", courseID), zap.Error(err))
		return nil, err
	}

	result := make([]dto.UnitResponse, 0, len(units))
	for i := range units {
		result = append(result, toUnitResponse(&units[i]))
	}
	return result, nil
}

// ────────────────────── SaveContent ──────────────────────

func (s *unitService) SaveContent(ctx context.Context, id string, raw json.RawMessage, actor Actor) (*dto.UnitDetailResponse, error) {
	unit, _, err := s.loadManagedUnit(ctx, id, actor)
	if err != nil {
		return nil, err
	}

	if unit.IsQuizType() {
		return nil, newFieldError("module_type", "测验类单元请使用测验配置接口")
	}
	content := newUnitContent(unit.ModuleType)
	if content == nil {
		return nil, newFieldError("module_type", "该类型单元没有独立内容")
	}
	if err := json.Unmarshal(raw, content); err != nil {
		return nil, newFieldError("content", "内容格式错误")
	}
	bindUnitContent(content, unit.UnitID)

	if err := s.repo.UnitContent.Upsert(ctx, content); err != nil {
		s.logger.Error("保存单元内容失败", zap.String("unit_id", id), zap.Error(err))
		return nil, err
	}

	return s.GetByID(ctx, id, actor)
}

// ────────────────────── SaveQuiz ──────────────────────

func (s *unitService) SaveQuiz(ctx context.Context, id string, req *dto.SaveQuizRequest, actor Actor) (*dto.QuizResponse, error) {
	unit, _, err := s.loadManagedUnit(ctx, id, actor)
	if err != nil {
		return nil, err
	}
	if !unit.IsQuizType() {
		return nil, newFieldError("module_type", "仅测验类单元可配置测验")
	}

	quiz, err := s.repo.Quiz.GetByUnitID(ctx, unit.UnitID)
	if err != nil && !errors.Is(err, gorm.ErrRecordNotFound) {
		s.logger.Error("查询测验失败", zap.String("unit_id", id), zap.Error(err))
		return nil, err
	}

	created := quiz == nil
	if created {
		quiz = &model.Quiz{
			UnitID:             unit.UnitID,
			PassingScore:       defaultPassingScore,
			MaxAttempts:        defaultMaxAttempts,
			ShowCorrectAnswers: true,
		}
	}
	applyQuizRequest(quiz, req)

	err = runInTx(ctx, s.repo, s.logger, func(txRepo *repository.Repository) error {
		if created {
			if err := txRepo.Quiz.Create(ctx, quiz); err != nil {
				return err
			}
		} else if err := txRepo.Quiz.Update(ctx, quiz); err != nil {
			return err
		}

		if !unit.HasQuizzes {
			unit.HasQuizzes = true
			return txRepo.Unit.Update(ctx, unit)
		}
		return nil
	})
	if err != nil {
		s.logger.Error("保存测验失败", zap.String("unit_id", id), zap.Error(err))
		return nil, err
	}

	return toQuizResponse(quiz, true), nil
}

// ────────────────────── AddQuestions ──────────────────────

func (s *unitService) AddQuestions(ctx context.Context, id string, req *dto.AddQuestionsRequest, actor Actor) (*dto.QuizResponse, error) {
	unit, _, err := s.loadManagedUnit(ctx, id, actor)
	if err != nil {
		return nil, err
	}

	quiz, err := s.repo.Quiz.GetByUnitID(ctx, unit.UnitID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrQuizNotFound
		}
		s.logger.Error("查询测验失败", zap.String("unit_id", id), zap.Error(err))
		return nil, err
	}

	nextOrder := 0
	for _, q := range quiz.Questions {
		if q.Order >= nextOrder {
			nextOrder = q.Order + 1
		}
	}

	questions := make([]model.Question, 0, len(req.Questions))
	for i, qr := range req.Questions {
		// free_text 由讲师人工评阅，可不提供标准答案
		freeText := qr.QuestionType == model.QuestionFreeText && len(qr.CorrectAnswer) == 0
		if !freeText && !json.Valid(qr.CorrectAnswer) {
			return nil, newFieldError(fmt.Sprintf("questions[%d].correct_answer", i), "必须为合法 JSON")
		}
		if len(qr.Options) > 0 && !json.Valid(qr.Options) {
			return nil, newFieldError(fmt.Sprintf("questions[%d].options", i), "必须为合法 JSON")
		}

		q := model.Question{
			QuizID:        quiz.QuizID,
			QuestionType:  qr.QuestionType,
			QuestionText:  strings.TrimSpace(qr.QuestionText),
			Points:        defaultQuestionPoint,
			Order:         nextOrder,
			Explanation:   qr.Explanation,
		}
		if !freeText {
			q.CorrectAnswer = datatypes.JSON(qr.CorrectAnswer)
		}
		if len(qr.Options) > 0 {
			q.Options = datatypes.JSON(qr.Options)
		}
		if qr.Points != nil {
			q.Points = *qr.Points
		}
		if qr.Order != nil {
			q.Order = *qr.Order
		}
		if q.Order >= nextOrder {
			nextOrder = q.Order + 1
		}
		questions = append(questions, q)
	}

	if err := s.repo.Quiz.CreateQuestions(ctx, questions); err != nil {
		s.logger.Error("添加题目失败", zap.String("quiz_id", quiz.QuizID), zap.Error(err))
		return nil, err
	}

	quiz.Questions = append(quiz.Questions, questions...)
	return toQuizResponse(quiz, true), nil
}

// ── 内部辅助方法 ──

// validateCreate 创建时 course_id、module_type、title 必填
func (s *unitService) validateCreate(in *dto.UnitInput) *FieldError {
	fields := s.validator.Struct(in)
	if fields == nil {
		fields = make(map[string]string)
	}
	if in.CourseID == nil || *in.CourseID == "" {
		fields["course_id"] = "course_id为必填字段"
	}
	if in.ModuleType == nil || *in.ModuleType == "" {
		fields["module_type"] = "module_type为必填字段"
	}
	if in.Title == nil || strings.TrimSpace(*in.Title) == "" {
		fields["title"] = "title为必填字段"
	}
	if len(fields) > 0 {
		return &FieldError{Fields: fields}
	}
	return nil
}

// loadManagedUnit 加载单元及所属课程并校验管理权限
func (s *unitService) loadManagedUnit(ctx context.Context, id string, actor Actor) (*model.Unit, *model.Course, error) {
	unit, err := s.repo.Unit.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil, ErrUnitNotFound
		}
		s.logger.Error("查询单元失败", zap.String("id", id), zap.Error(err))
		return nil, nil, err
	}

	course, err := s.repo.Course.GetByID(ctx, unit.CourseID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil, ErrCourseNotFound
		}
		s.logger.Error("查询课程失败", zap.String("course_id", unit.CourseID), zap.Error(err))
		return nil, nil, err
	}
	if !actor.CanManageCourse(course) {
		return nil, nil, ErrPermissionDenied
	}
	return unit, course, nil
}

func applyUnitInput(unit *model.Unit, in *dto.UnitInput) {
	if in.ModuleType != nil {
		unit.ModuleType = *in.ModuleType
	}
	if in.Title != nil {
		unit.Title = strings.TrimSpace(*in.Title)
	}
	if in.Description != nil {
		unit.Description = in.Description
	}
	if in.SequenceOrder != nil {
		unit.SequenceOrder = *in.SequenceOrder
	}
	if in.IsMandatory != nil {
		unit.IsMandatory = *in.IsMandatory
	}
	if in.EstimatedDurationMinutes != nil {
		unit.EstimatedDurationMinutes = in.EstimatedDurationMinutes
	}
	if in.VideoCount != nil {
		unit.VideoCount = *in.VideoCount
	}
	if in.HasQuizzes != nil {
		unit.HasQuizzes = *in.HasQuizzes
	}
}

func applyQuizRequest(quiz *model.Quiz, req *dto.SaveQuizRequest) {
	if req.TimeLimitMinutes != nil {
		quiz.TimeLimitMinutes = req.TimeLimitMinutes
	}
	if req.PassingScore != nil {
		quiz.PassingScore = *req.PassingScore
	}
	if req.MaxAttempts != nil {
		quiz.MaxAttempts = *req.MaxAttempts
	}
	if req.RandomizeQuestions != nil {
		quiz.RandomizeQuestions = *req.RandomizeQuestions
	}
	if req.ShowCorrectAnswers != nil {
		quiz.ShowCorrectAnswers = *req.ShowCorrectAnswers
	}
	if req.MandatoryCompletion != nil {
		quiz.MandatoryCompletion = *req.MandatoryCompletion
	}
}

// newUnitContent 返回单元类型对应的内容子表，无独立内容时返回 nil
func newUnitContent(moduleType string) interface{} {
	switch moduleType {
	case model.UnitTypeVideo:
		return &model.VideoUnit{}
	case model.UnitTypeAudio:
		return &model.AudioUnit{}
	case model.UnitTypePresentation:
		return &model.PresentationUnit{}
	case model.UnitTypeText:
		return &model.TextUnit{}
	case model.UnitTypePage:
		return &model.PageUnit{}
	case model.UnitTypeAssignment:
		return &model.Assignment{SubmissionType: "text", MaxScore: 100}
	case model.UnitTypeScorm, model.UnitTypeXAPI:
		return &model.ScormPackage{}
	case model.UnitTypeSurvey:
		return &model.Survey{}
	}
	return nil
}

// bindUnitContent 绑定所属单元并丢弃客户端传入的主键
func bindUnitContent(content interface{}, unitID string) {
	switch c := content.(type) {
	case *model.VideoUnit:
		c.ID, c.UnitID = "", unitID
	case *model.AudioUnit:
		c.ID, c.UnitID = "", unitID
	case *model.PresentationUnit:
		c.ID, c.UnitID = "", unitID
	case *model.TextUnit:
		c.ID, c.UnitID = "", unitID
	case *model.PageUnit:
		c.ID, c.UnitID = "", unitID
	case *model.Assignment:
		c.ID, c.UnitID = "", unitID
	case *model.ScormPackage:
		c.ID, c.UnitID = "", unitID
	case *model.Survey:
		c.ID, c.UnitID = "", unitID
	}
}
