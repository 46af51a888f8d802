package service

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/jinzhu/now"
	"go.uber.org/zap"
	"gorm.io/gorm"

	"trainer-lms/internal/dto"
	"trainer-lms/internal/model"
	"trainer-lms/internal/repository"
	pkgerrors "trainer-lms/pkg/errors"
	"trainer-lms/pkg/validate"
)

// 单元锁定原因
const (
	LockReasonPrerequisite = "prerequisite"
	LockReasonDripFeed     = "drip_feed"
)

// SequencingService 单元排序规则业务接口
type SequencingService interface {
	// ListRules 课程可见者可读
	ListRules(ctx context.Context, courseID string, actor Actor) ([]dto.SequenceRuleResponse, error)
	// ReplaceRules 整体替换课程的排序规则，任一规则非法则全部不生效
	ReplaceRules(ctx context.Context, courseID string, rules []dto.SequenceRuleRequest, actor Actor) (*dto.ReplaceSequenceResponse, error)
	// Availability 计算学员在课程内各单元的解锁状态
	Availability(ctx context.Context, courseID, userID string, actor Actor) ([]dto.UnitAvailabilityResponse, error)
}

type sequencingService struct {
	repo      *repository.Repository
	validator *validate.Validator
	logger    *zap.Logger
	clock     func() time.Time
}

// NewSequencingService 创建 SequencingService 实例
func NewSequencingService(repo *repository.Repository, v *validate.Validator, logger *zap.Logger) SequencingService {
	return &sequencingService{repo: repo, validator: v, logger: logger, clock: time.Now}
}

// ────────────────────── ListRules ──────────────────────

func (s *sequencingService) ListRules(ctx context.Context, courseID string, actor Actor) ([]dto.SequenceRuleResponse, error) {
	course, err := s.getCourse(ctx, courseID)
	if err != nil {
		return nil, err
	}
	visible, err := canViewCourse(ctx, s.repo, s.logger, course, actor)
	if err != nil {
		return nil, err
	}
	if !visible {
		return nil, ErrCourseNotFound
	}

	rules, err := s.repo.Sequencing.ListByCourse(ctx, courseID)
	if err != nil {
		s.logger.Error("查询排序规则失败", zap.String("course_id", courseID), zap.Error(err))
		return nil, err
	}

	result := make([]dto.SequenceRuleResponse, 0, len(rules))
	for _, r := range rules {
		result = append(result, dto.SequenceRuleResponse{
			ID:                    r.SequenceID,
			CourseID:              r.CourseID,
			ModuleID:              r.ModuleID,
			PrecedingModuleID:     r.PrecedingModuleID,
			DripFeedRule:          r.DripFeedRule,
			DripFeedDelayDays:     r.DripFeedDelayDays,
			PrerequisiteCompleted: r.PrerequisiteCompleted,
		})
	}
	return result, nil
}

// ════════════════════════════════════════════════════════════
// ReplaceRules 删除旧规则并写入新规则
// ════════════════════════════════════════════════════════════
//
// 规则引用的单元（本体及前置单元）必须属于该课程，否则返回 ErrUnitNotFound
// 删除与插入在同一事务内，读者不会观察到空规则集的中间状态

func (s *sequencingService) ReplaceRules(ctx context.Context, courseID string, rules []dto.SequenceRuleRequest, actor Actor) (*dto.ReplaceSequenceResponse, error) {
	course, err := s.getCourse(ctx, courseID)
	if err != nil {
		return nil, err
	}
	if !actor.CanManageCourse(course) {
		return nil, ErrPermissionDenied
	}

	if fields := s.validator.Struct(&dto.ReplaceSequenceRequest{Rules: rules}); fields != nil {
		return nil, &FieldError{Fields: fields}
	}

	units, err := s.repo.Unit.ListByCourse(ctx, courseID)
	if err != nil {
		s.logger.Error("查询课程单元失败", zap.String("course_id", courseID), zap.Error(err))
		return nil, err
	}
	inCourse := make(map[string]bool, len(units))
	for _, u := range units {
		inCourse[u.UnitID] = true
	}

	models, err := buildSequencingRules(courseID, rules, inCourse)
	if err != nil {
		return nil, err
	}

	err = runInTx(ctx, s.repo, s.logger, func(txRepo *repository.Repository) error {
		if err := txRepo.Sequencing.DeleteByCourse(ctx, courseID); err != nil {
			return err
		}
		if err := txRepo.Sequencing.BatchCreate(ctx, models); err != nil {
			// 校验后单元被并发删除
			if pkgerrors.IsForeignKeyViolation(err) {
				return fmt.Errorf("规则引用的单元已被删除: %w", ErrUnitNotFound)
			}
			return err
		}
		return nil
	})
	if err != nil {
		if errors.Is(err, ErrUnitNotFound) {
			return nil, err
		}
		s.logger.Error("替换排序规则失败", zap.String("course_id", courseID), zap.Error(err))
		return nil, err
	}

	created := make([]string, 0, len(models))
	for _, m := range models {
		created = append(created, m.SequenceID)
	}

	s.logger.Info("排序规则已替换",
		zap.String("course_id", courseID),
		zap.Int("count", len(created)),
		zap.String("actor", actor.UserID),
	)
	return &dto.ReplaceSequenceResponse{Created: created}, nil
}

// ════════════════════════════════════════════════════════════
// Availability 学员视角的单元解锁状态
// ════════════════════════════════════════════════════════════
//
// 需要完成前置单元且前置单元未完成 → 锁定（prerequisite）
// 延迟规则：解锁时间 = 锚点当天零点 + N 天；锚点为前置单元完成时间，否则为报名时间

func (s *sequencingService) Availability(ctx context.Context, courseID, userID string, actor Actor) ([]dto.UnitAvailabilityResponse, error) {
	course, err := s.getCourse(ctx, courseID)
	if err != nil {
		return nil, err
	}
	if userID != actor.UserID && !actor.CanManageCourse(course) {
		return nil, ErrPermissionDenied
	}

	enrollment, err := s.repo.Enrollment.GetByCourseAndUser(ctx, courseID, userID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrEnrollmentNotFound
		}
		s.logger.Error("查询报名记录失败", zap.String("course_id", courseID), zap.Error(err))
		return nil, err
	}

	units, err := s.repo.Unit.ListByCourse(ctx, courseID)
	if err != nil {
		s.logger.Error("查询课程单元失败", zap.String("course_id", courseID), zap.Error(err))
		return nil, err
	}
	rules, err := s.repo.Sequencing.ListByCourse(ctx, courseID)
	if err != nil {
		s.logger.Error("查询排序规则失败", zap.String("course_id", courseID), zap.Error(err))
		return nil, err
	}
	progress, err := s.repo.Progress.ListByEnrollment(ctx, enrollment.EnrollmentID)
	if err != nil {
		s.logger.Error("查询学习进度失败", zap.String("enrollment_id", enrollment.EnrollmentID), zap.Error(err))
		return nil, err
	}

	ruleByUnit := make(map[string]model.ModuleSequencing, len(rules))
	for _, r := range rules {
		ruleByUnit[r.ModuleID] = r
	}
	progressByUnit := make(map[string]model.UnitProgress, len(progress))
	for _, p := range progress {
		progressByUnit[p.UnitID] = p
	}

	current := s.clock()
	result := make([]dto.UnitAvailabilityResponse, 0, len(units))
	for _, u := range units {
		item := dto.UnitAvailabilityResponse{
			UnitID:        u.UnitID,
			Title:         u.Title,
			SequenceOrder: u.SequenceOrder,
			Unlocked:      true,
		}

		rule, ok := ruleByUnit[u.UnitID]
		if ok {
			evaluateRule(&item, rule, enrollment, progressByUnit, current)
		}
		result = append(result, item)
	}
	return result, nil
}

// ── 内部辅助方法 ──

func (s *sequencingService) getCourse(ctx context.Context, courseID string) (*model.Course, error) {
	course, err := s.repo.Course.GetByID(ctx, courseID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrCourseNotFound
		}
		s.logger.Error("查询课程失败", zap.String("course_id", courseID), zap.Error(err))
		return nil, err
	}
	return course, nil
}

// buildSequencingRules 校验引用关系并转换为模型，ID 预先生成以便按提交顺序返回
func buildSequencingRules(courseID string, rules []dto.SequenceRuleRequest, inCourse map[string]bool) ([]model.ModuleSequencing, error) {
	seen := make(map[string]int, len(rules))
	models := make([]model.ModuleSequencing, 0, len(rules))

	for i, r := range rules {
		if !inCourse[r.ModuleID] {
			return nil, fmt.Errorf("rules[%d].module_id: %w", i, ErrUnitNotFound)
		}
		if prev, dup := seen[r.ModuleID]; dup {
			return nil, newFieldError(fmt.Sprintf("rules[%d].module_id", i),
				fmt.Sprintf("与 rules[%d] 重复", prev))
		}
		seen[r.ModuleID] = i

		var preceding *string
		if r.PrecedingModuleID != nil && *r.PrecedingModuleID != "" {
			if *r.PrecedingModuleID == r.ModuleID {
				return nil, newFieldError(fmt.Sprintf("rules[%d].preceding_module_id", i), "不能以自身作为前置单元")
			}
			if !inCourse[*r.PrecedingModuleID] {
				return nil, fmt.Errorf("rules[%d].preceding_module_id: %w", i, ErrUnitNotFound)
			}
			p := *r.PrecedingModuleID
			preceding = &p
		}

		drip := r.DripFeedRule
		if drip == "" {
			drip = model.DripFeedNone
		}
		if drip == model.DripFeedNone && r.DripFeedDelayDays != 0 {
			return nil, newFieldError(fmt.Sprintf("rules[%d].drip_feed_delay_days", i), "drip_feed_rule 为 none 时延迟天数必须为 0")
		}

		models = append(models, model.ModuleSequencing{
			SequenceID:            newID(),
			CourseID:              courseID,
			ModuleID:              r.ModuleID,
			PrecedingModuleID:     preceding,
			DripFeedRule:          drip,
			DripFeedDelayDays:     r.DripFeedDelayDays,
			PrerequisiteCompleted: r.PrerequisiteCompleted,
		})
	}
	return models, nil
}

// evaluateRule 按规则更新单元的解锁状态，前置条件优先于延迟
func evaluateRule(item *dto.UnitAvailabilityResponse, rule model.ModuleSequencing, enrollment *model.Enrollment, progress map[string]model.UnitProgress, current time.Time) {
	var precedingDone *time.Time
	if rule.PrecedingModuleID != nil {
		if p, ok := progress[*rule.PrecedingModuleID]; ok && p.Status == model.ProgressCompleted {
			completedAt := p.UpdatedAt
			if p.CompletedAt != nil {
				completedAt = *p.CompletedAt
			}
			precedingDone = &completedAt
		}
		if rule.PrerequisiteCompleted && precedingDone == nil {
			item.Unlocked = false
			item.Reason = LockReasonPrerequisite
			return
		}
	}

	if rule.DripFeedRule != model.DripFeedDelay {
		return
	}

	anchor := enrollment.AssignedAt
	if precedingDone != nil {
		anchor = *precedingDone
	}
	unlocksAt := now.With(anchor.UTC()).BeginningOfDay().AddDate(0, 0, rule.DripFeedDelayDays)
	item.UnlocksAt = formatTime(unlocksAt)
	if current.Before(unlocksAt) {
		item.Unlocked = false
		item.Reason = LockReasonDripFeed
	}
}
