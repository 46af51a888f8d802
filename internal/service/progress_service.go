package service

import (
	"context"
	"encoding/json"
	"errors"
	"math"
	"reflect"
	"strings"
	"time"

	"go.uber.org/zap"
	"gorm.io/gorm"

	"trainer-lms/internal/dto"
	"trainer-lms/internal/model"
	"trainer-lms/internal/repository"
)

// 排行榜积分：每完成一个单元计 10 分，另加各测验最高分之和
const pointsPerCompletedUnit = 10

// ── 学习进度模块业务错误 ──

var (
	ErrMaxAttemptsReached = errors.New("已达到测验最大作答次数")
	ErrSubmissionNotFound = errors.New("作业提交记录不存在")
)

// ProgressService 学习进度、测验作答、作业与排行榜业务接口
type ProgressService interface {
	// RecordProgress 记录当前用户的单元进度，状态只前进不回退
	RecordProgress(ctx context.Context, unitID string, req *dto.RecordProgressRequest, actor Actor) (*dto.UnitProgressResponse, error)
	// SubmitQuiz 提交测验答案并判分
	SubmitQuiz(ctx context.Context, unitID string, req *dto.SubmitQuizRequest, actor Actor) (*dto.QuizAttemptResponse, error)
	// EnrollmentProgress 选课的逐单元进度，本人或可查看学员名单的用户可读
	EnrollmentProgress(ctx context.Context, enrollmentID string, actor Actor) (*dto.EnrollmentProgressResponse, error)
	SubmitAssignment(ctx context.Context, unitID string, req *dto.SubmitAssignmentRequest, actor Actor) (*dto.SubmissionResponse, error)
	GradeSubmission(ctx context.Context, submissionID string, req *dto.GradeSubmissionRequest, actor Actor) (*dto.SubmissionResponse, error)
	Leaderboard(ctx context.Context, courseID string, actor Actor) ([]dto.LeaderboardEntryResponse, error)
}

type progressService struct {
	repo   *repository.Repository
	logger *zap.Logger
}

// NewProgressService 创建 ProgressService 实例
func NewProgressService(repo *repository.Repository, logger *zap.Logger) ProgressService {
	return &progressService{repo: repo, logger: logger}
}

// ────────────────────── RecordProgress ──────────────────────

func (s *progressService) RecordProgress(ctx context.Context, unitID string, req *dto.RecordProgressRequest, actor Actor) (*dto.UnitProgressResponse, error) {
	unit, enrollment, err := s.loadLearnerUnit(ctx, unitID, actor)
	if err != nil {
		return nil, err
	}

	status := req.Status
	if status == model.ProgressCompleted && unit.IsQuizType() {
		// 强制完成的测验只能通过 SubmitQuiz 及格来完成
		quiz, err := s.repo.Quiz.GetByUnitID(ctx, unit.UnitID)
		if err != nil && !errors.Is(err, gorm.ErrRecordNotFound) {
			s.logger.Error("查询测验失败", zap.String("unit_id", unitID), zap.Error(err))
			return nil, err
		}
		if quiz != nil && quiz.MandatoryCompletion {
			status = model.ProgressInProgress
		}
	}

	timeSpent := 0
	if req.TimeSpentMinutes != nil {
		timeSpent = *req.TimeSpentMinutes
	}
	progress, err := s.saveProgress(ctx, enrollment, unit.UnitID, status, req.WatchPercentage, timeSpent, nil)
	if err != nil {
		return nil, err
	}

	if err := s.refreshEnrollment(ctx, enrollment); err != nil {
		return nil, err
	}
	s.refreshLeaderboard(ctx, enrollment)

	return toUnitProgressResponse(progress, enrollment), nil
}

// ────────────────────── EnrollmentProgress ──────────────────────

func (s *progressService) EnrollmentProgress(ctx context.Context, enrollmentID string, actor Actor) (*dto.EnrollmentProgressResponse, error) {
	enrollment, err := s.repo.Enrollment.GetByID(ctx, enrollmentID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrEnrollmentNotFound
		}
		s.logger.Error("查询选课记录失败", zap.String("enrollment_id", enrollmentID), zap.Error(err))
		return nil, err
	}

	if enrollment.UserID != actor.UserID || actor.UserID == "" {
		course, err := s.repo.Course.GetByID(ctx, enrollment.CourseID)
		if err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return nil, ErrCourseNotFound
			}
			s.logger.Error("查询课程失败", zap.String("course_id", enrollment.CourseID), zap.Error(err))
			return nil, err
		}
		if !actor.CanViewRoster(course) {
			return nil, ErrPermissionDenied
		}
	}

	units, err := s.repo.Unit.ListByCourse(ctx, enrollment.CourseID)
	if err != nil {
		s.logger.Error("查询课程单元失败", zap.String("course_id", enrollment.CourseID), zap.Error(err))
		return nil, err
	}
	progress, err := s.repo.Progress.ListByEnrollment(ctx, enrollment.EnrollmentID)
	if err != nil {
		s.logger.Error("查询学习进度失败", zap.String("enrollment_id", enrollment.EnrollmentID), zap.Error(err))
		return nil, err
	}
	byUnit := make(map[string]model.UnitProgress, len(progress))
	for _, p := range progress {
		byUnit[p.UnitID] = p
	}

	resp := &dto.EnrollmentProgressResponse{
		EnrollmentID:       enrollment.EnrollmentID,
		CourseID:           enrollment.CourseID,
		UserID:             enrollment.UserID,
		Status:             enrollment.Status,
		ProgressPercentage: enrollment.ProgressPercentage,
		Units:              make([]dto.UnitProgressDetail, 0, len(units)),
	}
	for _, u := range units {
		item := dto.UnitProgressDetail{
			UnitID:        u.UnitID,
			Title:         u.Title,
			SequenceOrder: u.SequenceOrder,
			Status:        model.ProgressNotStarted,
		}
		if p, ok := byUnit[u.UnitID]; ok {
			item.Status = p.Status
			item.WatchPercentage = p.WatchPercentage
			item.TimeSpentMinutes = p.TimeSpentMinutes
			item.Score = p.Score
			item.StartedAt = formatTimePtr(p.StartedAt)
			item.CompletedAt = formatTimePtr(p.CompletedAt)
		}
		resp.Units = append(resp.Units, item)
	}
	return resp, nil
}

// ════════════════════════════════════════════════════════════
// SubmitQuiz 判分、记录作答并更新单元进度
// ════════════════════════════════════════════════════════════
//
// 得分 = 答对题目分值之和 / 总分值 × 100（四舍五入）
// 答案按题型比较，free_text 题不计入自动判分
// 通过则单元进度记为 completed，否则为 in_progress

func (s *progressService) SubmitQuiz(ctx context.Context, unitID string, req *dto.SubmitQuizRequest, actor Actor) (*dto.QuizAttemptResponse, error) {
	unit, enrollment, err := s.loadLearnerUnit(ctx, unitID, actor)
	if err != nil {
		return nil, err
	}
	if !unit.IsQuizType() {
		return nil, newFieldError("unit_id", "该单元不是测验")
	}

	quiz, err := s.repo.Quiz.GetByUnitID(ctx, unit.UnitID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrQuizNotFound
		}
		s.logger.Error("查询测验失败", zap.String("unit_id", unitID), zap.Error(err))
		return nil, err
	}

	attempts, err := s.repo.Progress.CountQuizAttempts(ctx, quiz.QuizID, actor.UserID)
	if err != nil {
		s.logger.Error("统计作答次数失败", zap.String("quiz_id", quiz.QuizID), zap.Error(err))
		return nil, err
	}
	if quiz.MaxAttempts > 0 && attempts >= int64(quiz.MaxAttempts) {
		return nil, ErrMaxAttemptsReached
	}

	earned, possible := gradeQuiz(quiz.Questions, req.Answers)
	score := 0
	if possible > 0 {
		score = int(math.Round(float64(earned) * 100 / float64(possible)))
	}

	answers, err := json.Marshal(req.Answers)
	if err != nil {
		return nil, newFieldError("answers", "答案格式错误")
	}

	submittedAt := time.Now().UTC()
	attempt := &model.QuizAttempt{
		QuizID:         quiz.QuizID,
		UserID:         actor.UserID,
		EnrollmentID:   enrollment.EnrollmentID,
		AttemptNumber:  int(attempts) + 1,
		Score:          score,
		PointsEarned:   earned,
		PointsPossible: possible,
		Passed:         score >= quiz.PassingScore,
		Answers:        answers,
		StartedAt:      submittedAt,
		SubmittedAt:    &submittedAt,
	}
	if err := s.repo.Progress.CreateQuizAttempt(ctx, attempt); err != nil {
		s.logger.Error("保存测验作答失败", zap.String("quiz_id", quiz.QuizID), zap.Error(err))
		return nil, err
	}

	status := model.ProgressInProgress
	if attempt.Passed {
		status = model.ProgressCompleted
	}
	if _, err := s.saveProgress(ctx, enrollment, unit.UnitID, status, nil, 0, &score); err != nil {
		return nil, err
	}
	if err := s.refreshEnrollment(ctx, enrollment); err != nil {
		return nil, err
	}
	s.refreshLeaderboard(ctx, enrollment)

	s.logger.Info("测验已提交",
		zap.String("quiz_id", quiz.QuizID),
		zap.String("user_id", actor.UserID),
		zap.Int("score", score),
		zap.Bool("passed", attempt.Passed),
	)

	return &dto.QuizAttemptResponse{
		AttemptID:      attempt.AttemptID,
		AttemptNumber:  attempt.AttemptNumber,
		Score:          attempt.Score,
		PointsEarned:   attempt.PointsEarned,
		PointsPossible: attempt.PointsPossible,
		Passed:         attempt.Passed,
		SubmittedAt:    formatTime(submittedAt),
	}, nil
}

// ────────────────────── SubmitAssignment ──────────────────────

func (s *progressService) SubmitAssignment(ctx context.Context, unitID string, req *dto.SubmitAssignmentRequest, actor Actor) (*dto.SubmissionResponse, error) {
	unit, enrollment, err := s.loadLearnerUnit(ctx, unitID, actor)
	if err != nil {
		return nil, err
	}
	if unit.ModuleType != model.UnitTypeAssignment {
		return nil, newFieldError("unit_id", "该单元不是作业")
	}
	if (req.Content == nil || strings.TrimSpace(*req.Content) == "") && (req.FileURL == nil || *req.FileURL == "") {
		return nil, newFieldError("content", "content 与 file_url 至少提供一项")
	}

	submission := &model.AssignmentSubmission{
		UnitID:       unit.UnitID,
		UserID:       actor.UserID,
		EnrollmentID: enrollment.EnrollmentID,
		Content:      req.Content,
		FileURL:      req.FileURL,
		Status:       model.SubmissionSubmitted,
		SubmittedAt:  time.Now().UTC(),
	}
	if err := s.repo.Progress.CreateSubmission(ctx, submission); err != nil {
		s.logger.Error("保存作业提交失败", zap.String("unit_id", unitID), zap.Error(err))
		return nil, err
	}

	if _, err := s.saveProgress(ctx, enrollment, unit.UnitID, model.ProgressInProgress, nil, 0, nil); err != nil {
		return nil, err
	}
	if err := s.refreshEnrollment(ctx, enrollment); err != nil {
		return nil, err
	}

	return toSubmissionResponse(submission), nil
}

// ────────────────────── GradeSubmission ──────────────────────

func (s *progressService) GradeSubmission(ctx context.Context, submissionID string, req *dto.GradeSubmissionRequest, actor Actor) (*dto.SubmissionResponse, error) {
	submission, err := s.repo.Progress.GetSubmission(ctx, submissionID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrSubmissionNotFound
		}
		s.logger.Error("查询作业提交失败", zap.String("submission_id", submissionID), zap.Error(err))
		return nil, err
	}

	unit, err := s.repo.Unit.GetByID(ctx, submission.UnitID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrUnitNotFound
		}
		s.logger.Error("查询单元失败", zap.String("unit_id", submission.UnitID), zap.Error(err))
		return nil, err
	}
	course, err := s.repo.Course.GetByID(ctx, unit.CourseID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrCourseNotFound
		}
		s.logger.Error("查询课程失败", zap.String("course_id", unit.CourseID), zap.Error(err))
		return nil, err
	}
	if !actor.CanManageCourse(course) {
		return nil, ErrPermissionDenied
	}

	gradedAt := time.Now().UTC()
	submission.Status = model.SubmissionGraded
	submission.Score = req.Score
	submission.Feedback = req.Feedback
	submission.GradedBy = optionalID(actor.UserID)
	submission.GradedAt = &gradedAt

	if err := s.repo.Progress.GradeSubmission(ctx, submission); err != nil {
		s.logger.Error("作业评分失败", zap.String("submission_id", submissionID), zap.Error(err))
		return nil, err
	}

	// 评分后单元视为完成
	enrollment, err := s.repo.Enrollment.GetByID(ctx, submission.EnrollmentID)
	if err != nil {
		s.logger.Warn("查询作业所属选课失败，跳过进度更新", zap.String("submission_id", submissionID), zap.Error(err))
		return toSubmissionResponse(submission), nil
	}
	if _, err := s.saveProgress(ctx, enrollment, unit.UnitID, model.ProgressCompleted, nil, 0, req.Score); err != nil {
		return nil, err
	}
	if err := s.refreshEnrollment(ctx, enrollment); err != nil {
		return nil, err
	}
	s.refreshLeaderboard(ctx, enrollment)

	return toSubmissionResponse(submission), nil
}

// ────────────────────── Leaderboard ──────────────────────

func (s *progressService) Leaderboard(ctx context.Context, courseID string, actor Actor) ([]dto.LeaderboardEntryResponse, error) {
	course, err := s.repo.Course.GetByID(ctx, courseID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrCourseNotFound
		}
		s.logger.Error("查询课程失败", zap.String("course_id", courseID), zap.Error(err))
		return nil, err
	}
	if !actor.CanViewRoster(course) {
		if _, err := s.repo.Enrollment.GetByCourseAndUser(ctx, courseID, actor.UserID); err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return nil, ErrPermissionDenied
			}
			return nil, err
		}
	}

	entries, err := s.repo.Leaderboard.ListByCourse(ctx, courseID)
	if err != nil {
		s.logger.Error("查询排行榜失败", zap.String("course_id", courseID), zap.Error(err))
		return nil, err
	}

	ranks := competitionRanks(entries)
	result := make([]dto.LeaderboardEntryResponse, 0, len(entries))
	for i, e := range entries {
		item := dto.LeaderboardEntryResponse{
			Rank:           ranks[i],
			UserID:         e.UserID,
			TotalPoints:    e.TotalPoints,
			CompletedUnits: e.CompletedUnits,
			QuizScoreTotal: e.QuizScoreTotal,
			ActivityPoints: e.ActivityPoints,
		}
		if e.User != nil {
			item.FullName = e.User.FullName()
		}
		result = append(result, item)
	}
	return result, nil
}

// ── 内部辅助方法 ──

// loadLearnerUnit 加载单元与当前用户在所属课程的选课记录
func (s *progressService) loadLearnerUnit(ctx context.Context, unitID string, actor Actor) (*model.Unit, *model.Enrollment, error) {
	unit, err := s.repo.Unit.GetByID(ctx, unitID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil, ErrUnitNotFound
		}
		s.logger.Error("查询单元失败", zap.String("unit_id", unitID), zap.Error(err))
		return nil, nil, err
	}

	enrollment, err := s.repo.Enrollment.GetByCourseAndUser(ctx, unit.CourseID, actor.UserID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil, ErrEnrollmentNotFound
		}
		s.logger.Error("查询选课记录失败", zap.String("course_id", unit.CourseID), zap.Error(err))
		return nil, nil, err
	}
	return unit, enrollment, nil
}

// saveProgress 首次交互时创建进度记录，之后合并更新
// 状态只前进；观看百分比取较大值；学习时长累加；分数取较高值
func (s *progressService) saveProgress(ctx context.Context, enrollment *model.Enrollment, unitID, status string, watch *float64, timeSpent int, score *int) (*model.UnitProgress, error) {
	progress, err := s.repo.Progress.GetUnitProgress(ctx, enrollment.EnrollmentID, unitID)
	if err != nil {
		if !errors.Is(err, gorm.ErrRecordNotFound) {
			s.logger.Error("查询单元进度失败", zap.String("unit_id", unitID), zap.Error(err))
			return nil, err
		}
		progress = &model.UnitProgress{
			EnrollmentID: enrollment.EnrollmentID,
			UnitID:       unitID,
			Status:       model.ProgressNotStarted,
		}
	}

	ts := time.Now().UTC()
	if progressRank(status) > progressRank(progress.Status) {
		progress.Status = status
	}
	if progress.StartedAt == nil {
		progress.StartedAt = &ts
	}
	if progress.Status == model.ProgressCompleted && progress.CompletedAt == nil {
		progress.CompletedAt = &ts
	}
	if watch != nil && *watch > progress.WatchPercentage {
		progress.WatchPercentage = *watch
	}
	progress.TimeSpentMinutes += timeSpent
	if score != nil && (progress.Score == nil || *score > *progress.Score) {
		v := *score
		progress.Score = &v
	}
	progress.UpdatedAt = ts

	if err := s.repo.Progress.SaveUnitProgress(ctx, progress); err != nil {
		s.logger.Error("保存单元进度失败", zap.String("unit_id", unitID), zap.Error(err))
		return nil, err
	}
	return progress, nil
}

// refreshEnrollment 按已完成单元数重算选课进度与状态
func (s *progressService) refreshEnrollment(ctx context.Context, enrollment *model.Enrollment) error {
	units, err := s.repo.Unit.ListByCourse(ctx, enrollment.CourseID)
	if err != nil {
		s.logger.Error("查询课程单元失败", zap.String("course_id", enrollment.CourseID), zap.Error(err))
		return err
	}
	progress, err := s.repo.Progress.ListByEnrollment(ctx, enrollment.EnrollmentID)
	if err != nil {
		s.logger.Error("查询学习进度失败", zap.String("enrollment_id", enrollment.EnrollmentID), zap.Error(err))
		return err
	}

	completed := countCompleted(units, progress)
	pct := 0
	if len(units) > 0 {
		pct = completed * 100 / len(units)
	}

	ts := time.Now().UTC()
	enrollment.ProgressPercentage = pct
	if enrollment.StartedAt == nil {
		enrollment.StartedAt = &ts
	}
	// 课程新增单元后进度低于 100% 时，已完成的选课回到 in_progress
	switch {
	case pct >= 100:
		enrollment.Status = model.EnrollmentCompleted
		if enrollment.CompletedAt == nil {
			enrollment.CompletedAt = &ts
		}
	case enrollment.Status == model.EnrollmentAssigned, enrollment.Status == model.EnrollmentCompleted:
		enrollment.Status = model.EnrollmentInProgress
		enrollment.CompletedAt = nil
	}

	if err := s.repo.Enrollment.UpdateProgress(ctx, enrollment); err != nil {
		s.logger.Error("更新选课进度失败", zap.String("enrollment_id", enrollment.EnrollmentID), zap.Error(err))
		return err
	}
	return nil
}

// refreshLeaderboard 重算用户在课程内的积分并刷新课程排名，失败只记录告警
func (s *progressService) refreshLeaderboard(ctx context.Context, enrollment *model.Enrollment) {
	if err := s.updateLeaderboard(ctx, enrollment); err != nil {
		s.logger.Warn("刷新排行榜失败",
			zap.String("course_id", enrollment.CourseID),
			zap.String("user_id", enrollment.UserID),
			zap.Error(err),
		)
	}
}

func (s *progressService) updateLeaderboard(ctx context.Context, enrollment *model.Enrollment) error {
	units, err := s.repo.Unit.ListByCourse(ctx, enrollment.CourseID)
	if err != nil {
		return err
	}
	progress, err := s.repo.Progress.ListByEnrollment(ctx, enrollment.EnrollmentID)
	if err != nil {
		return err
	}
	best, err := s.repo.Progress.BestQuizScores(ctx, enrollment.UserID, enrollment.CourseID)
	if err != nil {
		return err
	}

	quizTotal := 0
	for _, score := range best {
		quizTotal += score
	}
	completed := countCompleted(units, progress)

	entry := &model.LeaderboardEntry{
		UserID:         enrollment.UserID,
		CourseID:       enrollment.CourseID,
		TotalPoints:    completed*pointsPerCompletedUnit + quizTotal,
		CompletedUnits: completed,
		QuizScoreTotal: quizTotal,
		ActivityPoints: len(progress),
		UpdatedAt:      time.Now().UTC(),
	}
	if err := s.repo.Leaderboard.Upsert(ctx, entry); err != nil {
		return err
	}

	entries, err := s.repo.Leaderboard.ListByCourse(ctx, enrollment.CourseID)
	if err != nil {
		return err
	}
	for i, rank := range competitionRanks(entries) {
		if entries[i].Rank != nil && *entries[i].Rank == rank {
			continue
		}
		if err := s.repo.Leaderboard.UpdateRank(ctx, entries[i].ID, rank); err != nil {
			return err
		}
	}
	return nil
}

func progressRank(status string) int {
	switch status {
	case model.ProgressInProgress:
		return 1
	case model.ProgressCompleted:
		return 2
	}
	return 0
}

// countCompleted 只统计仍属于课程的已完成单元
func countCompleted(units []model.Unit, progress []model.UnitProgress) int {
	inCourse := make(map[string]bool, len(units))
	for _, u := range units {
		inCourse[u.UnitID] = true
	}
	completed := 0
	for _, p := range progress {
		if p.Status == model.ProgressCompleted && inCourse[p.UnitID] {
			completed++
		}
	}
	return completed
}

// competitionRanks 按已排序的积分计算名次，同分同名次（1,1,3）
func competitionRanks(entries []model.LeaderboardEntry) []int {
	ranks := make([]int, len(entries))
	for i := range entries {
		if i > 0 && entries[i].TotalPoints == entries[i-1].TotalPoints {
			ranks[i] = ranks[i-1]
			continue
		}
		ranks[i] = i + 1
	}
	return ranks
}

// gradeQuiz 自动判分，主观题（free_text）不计入得分与总分
func gradeQuiz(questions []model.Question, answers map[string]json.RawMessage) (earned, possible int) {
	for _, q := range questions {
		if q.QuestionType == model.QuestionFreeText {
			continue
		}
		possible += q.Points
		if answer, ok := answers[q.QuestionID]; ok && questionCorrect(q.QuestionType, q.CorrectAnswer, answer) {
			earned += q.Points
		}
	}
	return earned, possible
}

// questionCorrect 按题型比较答案
// 填空题忽略首尾空白与大小写，标准答案为数组时命中任一即可；多选题与顺序无关；其余题型按 JSON 语义严格比较
func questionCorrect(questionType string, correct, submitted []byte) bool {
	var want, got interface{}
	if err := json.Unmarshal(correct, &want); err != nil {
		return false
	}
	if err := json.Unmarshal(submitted, &got); err != nil {
		return false
	}

	switch questionType {
	case model.QuestionFillBlank:
		text, ok := got.(string)
		if !ok {
			return false
		}
		return textMatches(want, text)
	case model.QuestionMultipleAnswer:
		return sameAnswerSet(want, got)
	}
	return reflect.DeepEqual(want, got)
}

func textMatches(want interface{}, text string) bool {
	switch w := want.(type) {
	case string:
		return strings.EqualFold(strings.TrimSpace(w), strings.TrimSpace(text))
	case []interface{}:
		for _, item := range w {
			if textMatches(item, text) {
				return true
			}
		}
	}
	return false
}

// sameAnswerSet 两个 JSON 数组的元素集合相同
func sameAnswerSet(want, got interface{}) bool {
	a, okA := want.([]interface{})
	b, okB := got.([]interface{})
	if !okA || !okB || len(a) != len(b) {
		return reflect.DeepEqual(want, got)
	}
	used := make([]bool, len(b))
	for _, x := range a {
		found := false
		for j, y := range b {
			if !used[j] && reflect.DeepEqual(x, y) {
				used[j], found = true, true
				break
			}
		}
		if !found {
			return false
		}
	}
	return true
}

func toUnitProgressResponse(p *model.UnitProgress, e *model.Enrollment) *dto.UnitProgressResponse {
	return &dto.UnitProgressResponse{
		UnitID:             p.UnitID,
		Status:             p.Status,
		WatchPercentage:    p.WatchPercentage,
		TimeSpentMinutes:   p.TimeSpentMinutes,
		Score:              p.Score,
		StartedAt:          formatTimePtr(p.StartedAt),
		CompletedAt:        formatTimePtr(p.CompletedAt),
		EnrollmentStatus:   e.Status,
		EnrollmentProgress: e.ProgressPercentage,
	}
}
