package service

import (
	"context"
	"errors"
	"fmt"
	"time"

	"go.uber.org/zap"
	"gorm.io/gorm"

	"trainer-lms/internal/dto"
	"trainer-lms/internal/model"
	"trainer-lms/internal/repository"
)

// EnrollmentService 选课分配业务接口
type EnrollmentService interface {
	// Assign 按用户与团队分配课程，已报名的用户跳过
	Assign(ctx context.Context, courseID string, req *dto.AssignCourseRequest, actor Actor) (*dto.AssignCourseResponse, error)
	// BulkEnroll 直接用户列表的批量报名，单次批量写入
	BulkEnroll(ctx context.Context, req *dto.BulkEnrollRequest, actor Actor) (*dto.BulkEnrollResponse, error)
	ListByCourse(ctx context.Context, courseID string, actor Actor) ([]dto.EnrollmentResponse, error)
	ListMine(ctx context.Context, userID string) ([]dto.EnrollmentResponse, error)
	// AssignableLearners 尚未报名该课程的在职学员
	AssignableLearners(ctx context.Context, courseID string, actor Actor) ([]dto.UserBrief, error)
	Stats(ctx context.Context, courseID string, actor Actor) (*dto.EnrollmentStatsResponse, error)
}

type enrollmentService struct {
	repo   *repository.Repository
	logger *zap.Logger
}

// NewEnrollmentService 创建 EnrollmentService 实例
func NewEnrollmentService(repo *repository.Repository, logger *zap.Logger) EnrollmentService {
	return &enrollmentService{repo: repo, logger: logger}
}

// ════════════════════════════════════════════════════════════
// Assign 用户与团队成员展开、去重、逐个幂等写入
// ════════════════════════════════════════════════════════════
//
// 未知用户跳过，未知团队不贡献成员
// 写入使用 ON CONFLICT DO NOTHING，并发重复分配计为 skipped
// 单个用户写入失败只记录日志并计入 failed，不影响其他用户

func (s *enrollmentService) Assign(ctx context.Context, courseID string, req *dto.AssignCourseRequest, actor Actor) (*dto.AssignCourseResponse, error) {
	course, err := s.getCourse(ctx, courseID)
	if err != nil {
		return nil, err
	}
	if !actor.CanManageCourse(course) {
		return nil, ErrPermissionDenied
	}

	candidates := append([]string{}, req.UserIDs...)
	for _, teamID := range dedupe(req.TeamIDs) {
		members, err := s.repo.Team.MemberUserIDs(ctx, teamID)
		if err != nil {
			s.logger.Error("展开团队成员失败", zap.String("team_id", teamID), zap.Error(err))
			return nil, err
		}
		candidates = append(candidates, members...)
	}
	candidates = dedupe(candidates)

	targets, err := s.resolveNewLearners(ctx, course.CourseID, candidates)
	if err != nil {
		return nil, err
	}

	resp := &dto.AssignCourseResponse{}
	assignedAt := time.Now().UTC()
	for _, userID := range targets {
		created, err := s.repo.Enrollment.CreateIfAbsent(ctx, newEnrollment(course.CourseID, userID, actor.UserID, assignedAt))
		if err != nil {
			s.logger.Warn("分配课程失败，已跳过",
				zap.String("course_id", course.CourseID),
				zap.String("user_id", userID),
				zap.Error(err),
			)
			resp.Failed++
			continue
		}
		if created {
			resp.Created++
		}
	}
	resp.Skipped = len(candidates) - resp.Created - resp.Failed

	s.logger.Info("课程分配完成",
		zap.String("course_id", course.CourseID),
		zap.Int("created", resp.Created),
		zap.Int("skipped", resp.Skipped),
		zap.Int("failed", resp.Failed),
		zap.String("actor", actor.UserID),
	)
	return resp, nil
}

// ────────────────────── BulkEnroll ──────────────────────

func (s *enrollmentService) BulkEnroll(ctx context.Context, req *dto.BulkEnrollRequest, actor Actor) (*dto.BulkEnrollResponse, error) {
	courseID := req.ResolvedCourseID()
	if courseID == "" {
		return nil, newFieldError("course_id", "course_id为必填字段")
	}
	userIDs := dedupe(req.UserIDs)
	if len(userIDs) == 0 {
		return nil, newFieldError("user_ids", "user_ids不能为空")
	}

	course, err := s.getCourse(ctx, courseID)
	if err != nil {
		return nil, err
	}
	if !actor.CanManageCourse(course) {
		return nil, ErrPermissionDenied
	}

	targets, err := s.resolveNewLearners(ctx, course.CourseID, userIDs)
	if err != nil {
		return nil, err
	}

	assignedAt := time.Now().UTC()
	batch := make([]model.Enrollment, 0, len(targets))
	for _, userID := range targets {
		batch = append(batch, *newEnrollment(course.CourseID, userID, actor.UserID, assignedAt))
	}

	created, err := s.repo.Enrollment.BatchCreateIfAbsent(ctx, batch)
	if err != nil {
		s.logger.Error("批量报名失败", zap.String("course_id", course.CourseID), zap.Error(err))
		return nil, err
	}

	s.logger.Info("批量报名完成",
		zap.String("course_id", course.CourseID),
		zap.Int64("created", created),
		zap.Int("requested", len(userIDs)),
	)
	return &dto.BulkEnrollResponse{
		Created: created,
		Message: fmt.Sprintf("%d 名学员报名成功", created),
	}, nil
}

// ────────────────────── 查询 ──────────────────────

func (s *enrollmentService) ListByCourse(ctx context.Context, courseID string, actor Actor) ([]dto.EnrollmentResponse, error) {
	course, err := s.getCourse(ctx, courseID)
	if err != nil {
		return nil, err
	}
	if !actor.CanViewRoster(course) {
		return nil, ErrPermissionDenied
	}

	list, err := s.repo.Enrollment.ListByCourse(ctx, courseID)
	if err != nil {
		s.logger.Error("查询课程选课记录失败", zap.String("course_id", courseID), zap.Error(err))
		return nil, err
	}

	result := make([]dto.EnrollmentResponse, 0, len(list))
	for i := range list {
		result = append(result, toEnrollmentResponse(&list[i]))
	}
	return result, nil
}

func (s *enrollmentService) ListMine(ctx context.Context, userID string) ([]dto.EnrollmentResponse, error) {
	list, err := s.repo.Enrollment.ListByUser(ctx, userID)
	if err != nil {
		s.logger.Error("查询个人选课记录失败", zap.String("user_id", userID), zap.Error(err))
		return nil, err
	}

	result := make([]dto.EnrollmentResponse, 0, len(list))
	for i := range list {
		result = append(result, toEnrollmentResponse(&list[i]))
	}
	return result, nil
}

func (s *enrollmentService) AssignableLearners(ctx context.Context, courseID string, actor Actor) ([]dto.UserBrief, error) {
	course, err := s.getCourse(ctx, courseID)
	if err != nil {
		return nil, err
	}
	if !actor.CanManageCourse(course) {
		return nil, ErrPermissionDenied
	}

	learners, err := s.repo.User.ListActiveByRole(ctx, model.RoleTrainee)
	if err != nil {
		s.logger.Error("查询学员列表失败", zap.Error(err))
		return nil, err
	}

	ids := make([]string, 0, len(learners))
	for _, u := range learners {
		ids = append(ids, u.UserID)
	}
	enrolled, err := s.repo.Enrollment.EnrolledUserIDs(ctx, courseID, ids)
	if err != nil {
		s.logger.Error("查询已报名学员失败", zap.String("course_id", courseID), zap.Error(err))
		return nil, err
	}

	result := make([]dto.UserBrief, 0, len(learners))
	for i := range learners {
		if enrolled[learners[i].UserID] {
			continue
		}
		result = append(result, *toUserBrief(&learners[i]))
	}
	return result, nil
}

func (s *enrollmentService) Stats(ctx context.Context, courseID string, actor Actor) (*dto.EnrollmentStatsResponse, error) {
	course, err := s.getCourse(ctx, courseID)
	if err != nil {
		return nil, err
	}
	if !actor.CanViewRoster(course) {
		return nil, ErrPermissionDenied
	}

	counts, err := s.repo.Enrollment.CountByStatus(ctx, courseID)
	if err != nil {
		s.logger.Error("统计选课状态失败", zap.String("course_id", courseID), zap.Error(err))
		return nil, err
	}
	return statsFromCounts(counts), nil
}

// ── 内部辅助方法 ──

func (s *enrollmentService) getCourse(ctx context.Context, courseID string) (*model.Course, error) {
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

// resolveNewLearners 过滤不存在的用户与已报名用户，保持输入顺序
func (s *enrollmentService) resolveNewLearners(ctx context.Context, courseID string, userIDs []string) ([]string, error) {
	if len(userIDs) == 0 {
		return nil, nil
	}

	users, err := s.repo.User.ListByIDs(ctx, userIDs)
	if err != nil {
		s.logger.Error("查询用户失败", zap.Error(err))
		return nil, err
	}
	known := make(map[string]bool, len(users))
	for _, u := range users {
		known[u.UserID] = true
	}

	enrolled, err := s.repo.Enrollment.EnrolledUserIDs(ctx, courseID, userIDs)
	if err != nil {
		s.logger.Error("查询已报名用户失败", zap.String("course_id", courseID), zap.Error(err))
		return nil, err
	}

	targets := make([]string, 0, len(userIDs))
	for _, id := range userIDs {
		if !known[id] {
			s.logger.Debug("用户不存在，已跳过", zap.String("user_id", id))
			continue
		}
		if enrolled[id] {
			continue
		}
		targets = append(targets, id)
	}
	return targets, nil
}

func newEnrollment(courseID, userID, assignedBy string, assignedAt time.Time) *model.Enrollment {
	e := &model.Enrollment{
		CourseID:   courseID,
		UserID:     userID,
		Status:     model.EnrollmentAssigned,
		AssignedAt: assignedAt,
	}
	if assignedBy != "" {
		by := assignedBy
		e.AssignedBy = &by
	}
	return e
}

func statsFromCounts(counts map[string]int64) *dto.EnrollmentStatsResponse {
	stats := &dto.EnrollmentStatsResponse{
		Assigned:   counts[model.EnrollmentAssigned],
		InProgress: counts[model.EnrollmentInProgress],
		Completed:  counts[model.EnrollmentCompleted],
	}
	stats.Total = stats.Assigned + stats.InProgress + stats.Completed
	return stats
}
