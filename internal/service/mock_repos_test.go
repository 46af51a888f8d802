package service

import (
	"context"
	"sort"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgconn"
	"gorm.io/gorm"

	"trainer-lms/internal/model"
	"trainer-lms/internal/repository"
	pkgerrors "trainer-lms/pkg/errors"
)

// ── 内存数据集 ──
// 各 mock 仓储共享同一份数据，唯一约束与数据库保持一致：
// (course_id, sequence_order)、(course_id, user_id)、(team_id, user_id)、(course_id, module_id)

type memStore struct {
	users       map[string]*model.User
	courses     map[string]*model.Course
	units       map[string]*model.Unit
	contents    map[string]interface{}
	quizzes     map[string]*model.Quiz
	questions   map[string]*model.Question
	rules       map[string]*model.ModuleSequencing
	enrollments map[string]*model.Enrollment
	teams       map[string]*model.Team
	members     map[string]*model.TeamMember
	progress    map[string]*model.UnitProgress
	attempts    map[string]*model.QuizAttempt
	submissions map[string]*model.AssignmentSubmission
	leaderboard map[string]*model.LeaderboardEntry
}

func newMemStore() *memStore {
	return &memStore{
		users:       make(map[string]*model.User),
		courses:     make(map[string]*model.Course),
		units:       make(map[string]*model.Unit),
		contents:    make(map[string]interface{}),
		quizzes:     make(map[string]*model.Quiz),
		questions:   make(map[string]*model.Question),
		rules:       make(map[string]*model.ModuleSequencing),
		enrollments: make(map[string]*model.Enrollment),
		teams:       make(map[string]*model.Team),
		members:     make(map[string]*model.TeamMember),
		progress:    make(map[string]*model.UnitProgress),
		attempts:    make(map[string]*model.QuizAttempt),
		submissions: make(map[string]*model.AssignmentSubmission),
		leaderboard: make(map[string]*model.LeaderboardEntry),
	}
}

// mockRepos 测试用仓储集合，fail* 字段用于注入写入失败
type mockRepos struct {
	store *memStore

	unitCreateErr func(u *model.Unit) error
	quizCreateErr func(q *model.Quiz) error
	enrollErr     func(e *model.Enrollment) error
	ruleCreateErr error
	courseGetErr  error
}

// unitSequenceConflict 模拟 PostgreSQL 在 uq_module_sequence 上的唯一冲突
func unitSequenceConflict() error {
	return &pgconn.PgError{Code: "23505", ConstraintName: "uq_module_sequence"}
}

func newMockRepos() (*repository.Repository, *mockRepos) {
	m := &mockRepos{store: newMemStore()}
	repo := &repository.Repository{
		User:        &mockUserRepo{m},
		Course:      &mockCourseRepo{m},
		Unit:        &mockUnitRepo{m},
		UnitContent: &mockUnitContentRepo{m},
		Quiz:        &mockQuizRepo{m},
		Sequencing:  &mockSequencingRepo{m},
		Enrollment:  &mockEnrollmentRepo{m},
		Team:        &mockTeamRepo{m},
		Progress:    &mockProgressRepo{m},
		Leaderboard: &mockLeaderboardRepo{m},
	}
	return repo, m
}

// ── 数据构造辅助 ──

func (m *mockRepos) addUser(username, role string) *model.User {
	u := &model.User{
		UserID:      uuid.NewString(),
		Username:    username,
		Email:       username + "@example.com",
		FirstName:   username,
		PrimaryRole: role,
		IsActive:    true,
	}
	m.store.users[u.UserID] = u
	return u
}

func (m *mockRepos) addCourse(title, ownerID, status string) *model.Course {
	owner := ownerID
	c := &model.Course{
		CourseID:        uuid.NewString(),
		Title:           title,
		CourseType:      model.CourseTypeSelfPaced,
		Status:          status,
		PassingCriteria: 70,
		CreatedBy:       &owner,
		Versioned:       model.Versioned{Version: 1},
	}
	m.store.courses[c.CourseID] = c
	return c
}

func (m *mockRepos) addUnit(courseID, moduleType, title string, order int) *model.Unit {
	u := &model.Unit{
		UnitID:        uuid.NewString(),
		CourseID:      courseID,
		ModuleType:    moduleType,
		Title:         title,
		SequenceOrder: order,
		IsMandatory:   true,
	}
	m.store.units[u.UnitID] = u
	return u
}

func (m *mockRepos) addTeam(name string, memberIDs ...string) *model.Team {
	t := &model.Team{TeamID: uuid.NewString(), TeamName: name, IsActive: true}
	m.store.teams[t.TeamID] = t
	for i, id := range memberIDs {
		mem := &model.TeamMember{
			ID:         uuid.NewString(),
			TeamID:     t.TeamID,
			UserID:     id,
			AssignedAt: time.Now().Add(time.Duration(i) * time.Second),
		}
		m.store.members[mem.ID] = mem
	}
	return t
}

func (m *mockRepos) addEnrollment(courseID, userID, status string, assignedAt time.Time) *model.Enrollment {
	e := &model.Enrollment{
		EnrollmentID: uuid.NewString(),
		CourseID:     courseID,
		UserID:       userID,
		Status:       status,
		AssignedAt:   assignedAt,
	}
	m.store.enrollments[e.EnrollmentID] = e
	return e
}

func (m *mockRepos) enrollmentCount(courseID string) int {
	n := 0
	for _, e := range m.store.enrollments {
		if e.CourseID == courseID {
			n++
		}
	}
	return n
}

func (m *mockRepos) unitsOf(courseID string) []model.Unit {
	var list []model.Unit
	for _, u := range m.store.units {
		if u.CourseID == courseID {
			list = append(list, *u)
		}
	}
	sort.Slice(list, func(i, j int) bool { return list[i].SequenceOrder < list[j].SequenceOrder })
	return list
}

func (m *mockRepos) quizWithQuestions(unitID string) *model.Quiz {
	for _, q := range m.store.quizzes {
		if q.UnitID != unitID {
			continue
		}
		cp := *q
		cp.Questions = nil
		for _, qu := range m.store.questions {
			if qu.QuizID == q.QuizID {
				cp.Questions = append(cp.Questions, *qu)
			}
		}
		sort.Slice(cp.Questions, func(i, j int) bool { return cp.Questions[i].Order < cp.Questions[j].Order })
		return &cp
	}
	return nil
}

// ── Mock UserRepository ──

type mockUserRepo struct{ m *mockRepos }

func (r *mockUserRepo) Create(_ context.Context, user *model.User) error {
	for _, u := range r.m.store.users {
		if u.Username == user.Username || u.Email == user.Email {
			return gorm.ErrDuplicatedKey
		}
	}
	if user.UserID == "" {
		user.UserID = uuid.NewString()
	}
	cp := *user
	r.m.store.users[user.UserID] = &cp
	return nil
}

func (r *mockUserRepo) GetByID(_ context.Context, id string) (*model.User, error) {
	if u, ok := r.m.store.users[id]; ok {
		cp := *u
		return &cp, nil
	}
	return nil, gorm.ErrRecordNotFound
}

func (r *mockUserRepo) GetByEmail(_ context.Context, email string) (*model.User, error) {
	for _, u := range r.m.store.users {
		if u.Email == email {
			cp := *u
			return &cp, nil
		}
	}
	return nil, gorm.ErrRecordNotFound
}

func (r *mockUserRepo) GetByUsername(_ context.Context, username string) (*model.User, error) {
	for _, u := range r.m.store.users {
		if u.Username == username {
			cp := *u
			return &cp, nil
		}
	}
	return nil, gorm.ErrRecordNotFound
}

func (r *mockUserRepo) ListByIDs(_ context.Context, ids []string) ([]model.User, error) {
	var list []model.User
	for _, id := range ids {
		if u, ok := r.m.store.users[id]; ok {
			list = append(list, *u)
		}
	}
	return list, nil
}

func (r *mockUserRepo) ListActiveByRole(_ context.Context, role string) ([]model.User, error) {
	var list []model.User
	for _, u := range r.m.store.users {
		if u.PrimaryRole == role && u.IsActive {
			list = append(list, *u)
		}
	}
	sort.Slice(list, func(i, j int) bool { return list[i].Username < list[j].Username })
	return list, nil
}

func (r *mockUserRepo) UpdateLastLogin(_ context.Context, id string) error {
	if u, ok := r.m.store.users[id]; ok {
		ts := time.Now()
		u.LastLogin = &ts
	}
	return nil
}

// ── Mock CourseRepository ──

type mockCourseRepo struct{ m *mockRepos }

func (r *mockCourseRepo) Create(_ context.Context, course *model.Course) error {
	if course.CourseID == "" {
		course.CourseID = uuid.NewString()
	}
	if course.Version == 0 {
		course.Version = 1
	}
	ts := time.Now()
	course.CreatedAt, course.UpdatedAt = ts, ts
	cp := *course
	cp.Units = nil
	r.m.store.courses[course.CourseID] = &cp
	return nil
}

func (r *mockCourseRepo) GetByID(_ context.Context, id string) (*model.Course, error) {
	if r.m.courseGetErr != nil {
		return nil, r.m.courseGetErr
	}
	if c, ok := r.m.store.courses[id]; ok {
		cp := *c
		return &cp, nil
	}
	return nil, gorm.ErrRecordNotFound
}

func (r *mockCourseRepo) GetByIDForUpdate(ctx context.Context, id string) (*model.Course, error) {
	return r.GetByID(ctx, id)
}

func (r *mockCourseRepo) GetDetail(ctx context.Context, id string) (*model.Course, error) {
	course, err := r.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	course.Units = r.m.unitsOf(id)
	for i := range course.Units {
		course.Units[i].Quiz = r.m.quizWithQuestions(course.Units[i].UnitID)
	}
	return course, nil
}

func (r *mockCourseRepo) ListByCreator(_ context.Context, userID string) ([]model.Course, error) {
	var list []model.Course
	for _, c := range r.m.store.courses {
		if c.OwnedBy(userID) {
			list = append(list, *c)
		}
	}
	return list, nil
}

func (r *mockCourseRepo) ListByLearner(_ context.Context, userID string) ([]model.Course, error) {
	var list []model.Course
	for _, e := range r.m.store.enrollments {
		if e.UserID != userID {
			continue
		}
		if c, ok := r.m.store.courses[e.CourseID]; ok && c.Status == model.CourseStatusPublished {
			list = append(list, *c)
		}
	}
	return list, nil
}

func (r *mockCourseRepo) ListAll(_ context.Context) ([]model.Course, error) {
	var list []model.Course
	for _, c := range r.m.store.courses {
		list = append(list, *c)
	}
	return list, nil
}

func (r *mockCourseRepo) Update(_ context.Context, course *model.Course) error {
	stored, ok := r.m.store.courses[course.CourseID]
	if !ok || stored.Version != course.Version {
		return pkgerrors.ErrOptimisticLock
	}
	course.Version++
	cp := *course
	cp.Units = nil
	r.m.store.courses[course.CourseID] = &cp
	return nil
}

// ── Mock UnitRepository ──

type mockUnitRepo struct{ m *mockRepos }

func (r *mockUnitRepo) Create(_ context.Context, unit *model.Unit) error {
	if r.m.unitCreateErr != nil {
		if err := r.m.unitCreateErr(unit); err != nil {
			return err
		}
	}
	for _, u := range r.m.store.units {
		if u.CourseID == unit.CourseID && u.SequenceOrder == unit.SequenceOrder {
			return unitSequenceConflict()
		}
	}
	if unit.UnitID == "" {
		unit.UnitID = uuid.NewString()
	}
	ts := time.Now()
	unit.CreatedAt, unit.UpdatedAt = ts, ts
	cp := *unit
	r.m.store.units[unit.UnitID] = &cp
	return nil
}

func (r *mockUnitRepo) GetByID(_ context.Context, id string) (*model.Unit, error) {
	if u, ok := r.m.store.units[id]; ok {
		cp := *u
		return &cp, nil
	}
	return nil, gorm.ErrRecordNotFound
}

func (r *mockUnitRepo) GetWithContent(ctx context.Context, id string) (*model.Unit, error) {
	unit, err := r.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	switch c := r.m.store.contents[id].(type) {
	case *model.VideoUnit:
		unit.Video = c
	case *model.TextUnit:
		unit.Text = c
	case *model.PageUnit:
		unit.Page = c
	case *model.Assignment:
		unit.Assignment = c
	}
	unit.Quiz = r.m.quizWithQuestions(id)
	return unit, nil
}

func (r *mockUnitRepo) ListByCourse(_ context.Context, courseID string) ([]model.Unit, error) {
	return r.m.unitsOf(courseID), nil
}

func (r *mockUnitRepo) MaxSequenceOrder(_ context.Context, courseID string) (int, error) {
	maxOrder := -1
	for _, u := range r.m.store.units {
		if u.CourseID == courseID && u.SequenceOrder > maxOrder {
			maxOrder = u.SequenceOrder
		}
	}
	return maxOrder, nil
}

func (r *mockUnitRepo) PositionTaken(_ context.Context, courseID string, position int, excludeID string) (bool, error) {
	for _, u := range r.m.store.units {
		if u.CourseID == courseID && u.SequenceOrder == position && u.UnitID != excludeID {
			return true, nil
		}
	}
	return false, nil
}

func (r *mockUnitRepo) Update(_ context.Context, unit *model.Unit) error {
	for _, u := range r.m.store.units {
		if u.UnitID != unit.UnitID && u.CourseID == unit.CourseID && u.SequenceOrder == unit.SequenceOrder {
			return unitSequenceConflict()
		}
	}
	cp := *unit
	r.m.store.units[unit.UnitID] = &cp
	return nil
}

func (r *mockUnitRepo) Delete(_ context.Context, id string) error {
	delete(r.m.store.units, id)
	return nil
}

// ── Mock UnitContentRepository ──

type mockUnitContentRepo struct{ m *mockRepos }

func (r *mockUnitContentRepo) Upsert(_ context.Context, content interface{}) error {
	var unitID string
	switch c := content.(type) {
	case *model.VideoUnit:
		unitID = c.UnitID
	case *model.TextUnit:
		unitID = c.UnitID
	case *model.PageUnit:
		unitID = c.UnitID
	case *model.Assignment:
		unitID = c.UnitID
	default:
		return nil
	}
	r.m.store.contents[unitID] = content
	return nil
}

// ── Mock QuizRepository ──

type mockQuizRepo struct{ m *mockRepos }

func (r *mockQuizRepo) Create(_ context.Context, quiz *model.Quiz) error {
	if r.m.quizCreateErr != nil {
		if err := r.m.quizCreateErr(quiz); err != nil {
			return err
		}
	}
	for _, q := range r.m.store.quizzes {
		if q.UnitID == quiz.UnitID {
			return gorm.ErrDuplicatedKey
		}
	}
	if quiz.QuizID == "" {
		quiz.QuizID = uuid.NewString()
	}
	cp := *quiz
	cp.Questions = nil
	r.m.store.quizzes[quiz.QuizID] = &cp
	return nil
}

func (r *mockQuizRepo) GetByUnitID(_ context.Context, unitID string) (*model.Quiz, error) {
	if q := r.m.quizWithQuestions(unitID); q != nil {
		return q, nil
	}
	return nil, gorm.ErrRecordNotFound
}

func (r *mockQuizRepo) Update(_ context.Context, quiz *model.Quiz) error {
	cp := *quiz
	cp.Questions = nil
	r.m.store.quizzes[quiz.QuizID] = &cp
	return nil
}

func (r *mockQuizRepo) CreateQuestions(_ context.Context, questions []model.Question) error {
	for i := range questions {
		if questions[i].QuestionID == "" {
			questions[i].QuestionID = uuid.NewString()
		}
		cp := questions[i]
		r.m.store.questions[cp.QuestionID] = &cp
	}
	return nil
}

func (r *mockQuizRepo) DeleteQuestions(_ context.Context, quizID string) error {
	for id, q := range r.m.store.questions {
		if q.QuizID == quizID {
			delete(r.m.store.questions, id)
		}
	}
	return nil
}

func (r *mockQuizRepo) ListByCourse(_ context.Context, courseID string) ([]model.Quiz, error) {
	var list []model.Quiz
	for _, q := range r.m.store.quizzes {
		if u, ok := r.m.store.units[q.UnitID]; ok && u.CourseID == courseID {
			list = append(list, *q)
		}
	}
	return list, nil
}

// ── Mock SequencingRepository ──

type mockSequencingRepo struct{ m *mockRepos }

func (r *mockSequencingRepo) ListByCourse(_ context.Context, courseID string) ([]model.ModuleSequencing, error) {
	var list []model.ModuleSequencing
	for _, s := range r.m.store.rules {
		if s.CourseID == courseID {
			list = append(list, *s)
		}
	}
	sort.Slice(list, func(i, j int) bool {
		return r.m.store.units[list[i].ModuleID].SequenceOrder < r.m.store.units[list[j].ModuleID].SequenceOrder
	})
	return list, nil
}

func (r *mockSequencingRepo) DeleteByCourse(_ context.Context, courseID string) error {
	for id, s := range r.m.store.rules {
		if s.CourseID == courseID {
			delete(r.m.store.rules, id)
		}
	}
	return nil
}

func (r *mockSequencingRepo) BatchCreate(_ context.Context, rules []model.ModuleSequencing) error {
	if r.m.ruleCreateErr != nil {
		return r.m.ruleCreateErr
	}
	for _, rule := range rules {
		for _, s := range r.m.store.rules {
			if s.CourseID == rule.CourseID && s.ModuleID == rule.ModuleID {
				return gorm.ErrDuplicatedKey
			}
		}
		cp := rule
		r.m.store.rules[cp.SequenceID] = &cp
	}
	return nil
}

// ── Mock EnrollmentRepository ──

type mockEnrollmentRepo struct{ m *mockRepos }

func (r *mockEnrollmentRepo) GetByID(_ context.Context, id string) (*model.Enrollment, error) {
	if e, ok := r.m.store.enrollments[id]; ok {
		cp := *e
		return &cp, nil
	}
	return nil, gorm.ErrRecordNotFound
}

func (r *mockEnrollmentRepo) GetByCourseAndUser(_ context.Context, courseID, userID string) (*model.Enrollment, error) {
	for _, e := range r.m.store.enrollments {
		if e.CourseID == courseID && e.UserID == userID {
			cp := *e
			return &cp, nil
		}
	}
	return nil, gorm.ErrRecordNotFound
}

func (r *mockEnrollmentRepo) EnrolledUserIDs(_ context.Context, courseID string, userIDs []string) (map[string]bool, error) {
	wanted := make(map[string]bool, len(userIDs))
	for _, id := range userIDs {
		wanted[id] = true
	}
	result := make(map[string]bool)
	for _, e := range r.m.store.enrollments {
		if e.CourseID == courseID && wanted[e.UserID] {
			result[e.UserID] = true
		}
	}
	return result, nil
}

func (r *mockEnrollmentRepo) CreateIfAbsent(_ context.Context, enrollment *model.Enrollment) (bool, error) {
	if r.m.enrollErr != nil {
		if err := r.m.enrollErr(enrollment); err != nil {
			return false, err
		}
	}
	for _, e := range r.m.store.enrollments {
		if e.CourseID == enrollment.CourseID && e.UserID == enrollment.UserID {
			return false, nil
		}
	}
	enrollment.EnrollmentID = uuid.NewString()
	cp := *enrollment
	r.m.store.enrollments[cp.EnrollmentID] = &cp
	return true, nil
}

func (r *mockEnrollmentRepo) BatchCreateIfAbsent(ctx context.Context, enrollments []model.Enrollment) (int64, error) {
	var created int64
	for i := range enrollments {
		ok, err := r.CreateIfAbsent(ctx, &enrollments[i])
		if err != nil {
			return 0, err
		}
		if ok {
			created++
		}
	}
	return created, nil
}

func (r *mockEnrollmentRepo) ListByCourse(_ context.Context, courseID string) ([]model.Enrollment, error) {
	var list []model.Enrollment
	for _, e := range r.m.store.enrollments {
		if e.CourseID == courseID {
			cp := *e
			if u, ok := r.m.store.users[e.UserID]; ok {
				cp.User = u
			}
			list = append(list, cp)
		}
	}
	sort.Slice(list, func(i, j int) bool { return list[i].AssignedAt.Before(list[j].AssignedAt) })
	return list, nil
}

func (r *mockEnrollmentRepo) ListByUser(_ context.Context, userID string) ([]model.Enrollment, error) {
	var list []model.Enrollment
	for _, e := range r.m.store.enrollments {
		if e.UserID == userID {
			list = append(list, *e)
		}
	}
	return list, nil
}

func (r *mockEnrollmentRepo) CountByStatus(_ context.Context, courseID string) (map[string]int64, error) {
	counts := make(map[string]int64)
	for _, e := range r.m.store.enrollments {
		if e.CourseID == courseID {
			counts[e.Status]++
		}
	}
	return counts, nil
}

func (r *mockEnrollmentRepo) UpdateProgress(_ context.Context, enrollment *model.Enrollment) error {
	if e, ok := r.m.store.enrollments[enrollment.EnrollmentID]; ok {
		e.Status = enrollment.Status
		e.ProgressPercentage = enrollment.ProgressPercentage
		e.StartedAt = enrollment.StartedAt
		e.CompletedAt = enrollment.CompletedAt
	}
	return nil
}

// ── Mock TeamRepository ──

type mockTeamRepo struct{ m *mockRepos }

func (r *mockTeamRepo) Create(_ context.Context, team *model.Team) error {
	for _, t := range r.m.store.teams {
		if t.TeamName == team.TeamName {
			return gorm.ErrDuplicatedKey
		}
	}
	if team.TeamID == "" {
		team.TeamID = uuid.NewString()
	}
	cp := *team
	r.m.store.teams[team.TeamID] = &cp
	return nil
}

func (r *mockTeamRepo) GetByID(_ context.Context, id string) (*model.Team, error) {
	if t, ok := r.m.store.teams[id]; ok {
		cp := *t
		return &cp, nil
	}
	return nil, gorm.ErrRecordNotFound
}

func (r *mockTeamRepo) GetByName(_ context.Context, name string) (*model.Team, error) {
	for _, t := range r.m.store.teams {
		if t.TeamName == name {
			cp := *t
			return &cp, nil
		}
	}
	return nil, gorm.ErrRecordNotFound
}

func (r *mockTeamRepo) List(_ context.Context, activeOnly bool) ([]model.Team, error) {
	var list []model.Team
	for _, t := range r.m.store.teams {
		if activeOnly && !t.IsActive {
			continue
		}
		list = append(list, *t)
	}
	sort.Slice(list, func(i, j int) bool { return list[i].TeamName < list[j].TeamName })
	return list, nil
}

func (r *mockTeamRepo) AddMember(_ context.Context, member *model.TeamMember) (bool, error) {
	for _, mem := range r.m.store.members {
		if mem.TeamID == member.TeamID && mem.UserID == member.UserID {
			return false, nil
		}
	}
	member.ID = uuid.NewString()
	cp := *member
	r.m.store.members[cp.ID] = &cp
	return true, nil
}

func (r *mockTeamRepo) teamMembers(teamID string) []model.TeamMember {
	var list []model.TeamMember
	for _, mem := range r.m.store.members {
		if mem.TeamID == teamID {
			cp := *mem
			if u, ok := r.m.store.users[mem.UserID]; ok {
				cp.User = u
			}
			list = append(list, cp)
		}
	}
	sort.Slice(list, func(i, j int) bool { return list[i].AssignedAt.Before(list[j].AssignedAt) })
	return list
}

func (r *mockTeamRepo) ListMembers(_ context.Context, teamID string) ([]model.TeamMember, error) {
	return r.teamMembers(teamID), nil
}

func (r *mockTeamRepo) MemberUserIDs(_ context.Context, teamID string) ([]string, error) {
	var ids []string
	for _, mem := range r.teamMembers(teamID) {
		ids = append(ids, mem.UserID)
	}
	return ids, nil
}

func (r *mockTeamRepo) CountMembers(_ context.Context, teamID string) (int64, error) {
	return int64(len(r.teamMembers(teamID))), nil
}

// ── Mock ProgressRepository ──

type mockProgressRepo struct{ m *mockRepos }

func (r *mockProgressRepo) GetUnitProgress(_ context.Context, enrollmentID, unitID string) (*model.UnitProgress, error) {
	for _, p := range r.m.store.progress {
		if p.EnrollmentID == enrollmentID && p.UnitID == unitID {
			cp := *p
			return &cp, nil
		}
	}
	return nil, gorm.ErrRecordNotFound
}

func (r *mockProgressRepo) SaveUnitProgress(_ context.Context, progress *model.UnitProgress) error {
	for id, p := range r.m.store.progress {
		if p.EnrollmentID == progress.EnrollmentID && p.UnitID == progress.UnitID {
			progress.ID = id
			break
		}
	}
	if progress.ID == "" {
		progress.ID = uuid.NewString()
	}
	cp := *progress
	r.m.store.progress[cp.ID] = &cp
	return nil
}

func (r *mockProgressRepo) ListByEnrollment(_ context.Context, enrollmentID string) ([]model.UnitProgress, error) {
	var list []model.UnitProgress
	for _, p := range r.m.store.progress {
		if p.EnrollmentID == enrollmentID {
			list = append(list, *p)
		}
	}
	return list, nil
}

func (r *mockProgressRepo) CreateQuizAttempt(_ context.Context, attempt *model.QuizAttempt) error {
	attempt.AttemptID = uuid.NewString()
	cp := *attempt
	r.m.store.attempts[cp.AttemptID] = &cp
	return nil
}

func (r *mockProgressRepo) CountQuizAttempts(_ context.Context, quizID, userID string) (int64, error) {
	var n int64
	for _, a := range r.m.store.attempts {
		if a.QuizID == quizID && a.UserID == userID {
			n++
		}
	}
	return n, nil
}

func (r *mockProgressRepo) BestQuizScores(_ context.Context, userID, courseID string) (map[string]int, error) {
	scores := make(map[string]int)
	for _, a := range r.m.store.attempts {
		if a.UserID != userID {
			continue
		}
		q, ok := r.m.store.quizzes[a.QuizID]
		if !ok {
			continue
		}
		if u, ok := r.m.store.units[q.UnitID]; !ok || u.CourseID != courseID {
			continue
		}
		if a.Score > scores[a.QuizID] {
			scores[a.QuizID] = a.Score
		}
	}
	return scores, nil
}

func (r *mockProgressRepo) AverageQuizScore(_ context.Context, courseID string) (*float64, error) {
	sum, n := 0, 0
	for _, a := range r.m.store.attempts {
		q, ok := r.m.store.quizzes[a.QuizID]
		if !ok {
			continue
		}
		if u, ok := r.m.store.units[q.UnitID]; ok && u.CourseID == courseID {
			sum += a.Score
			n++
		}
	}
	if n == 0 {
		return nil, nil
	}
	avg := float64(sum) / float64(n)
	return &avg, nil
}

func (r *mockProgressRepo) CreateSubmission(_ context.Context, submission *model.AssignmentSubmission) error {
	submission.SubmissionID = uuid.NewString()
	cp := *submission
	r.m.store.submissions[cp.SubmissionID] = &cp
	return nil
}

func (r *mockProgressRepo) GetSubmission(_ context.Context, id string) (*model.AssignmentSubmission, error) {
	if s, ok := r.m.store.submissions[id]; ok {
		cp := *s
		return &cp, nil
	}
	return nil, gorm.ErrRecordNotFound
}

func (r *mockProgressRepo) GradeSubmission(_ context.Context, submission *model.AssignmentSubmission) error {
	cp := *submission
	r.m.store.submissions[cp.SubmissionID] = &cp
	return nil
}

// ── Mock LeaderboardRepository ──

type mockLeaderboardRepo struct{ m *mockRepos }

func (r *mockLeaderboardRepo) Upsert(_ context.Context, entry *model.LeaderboardEntry) error {
	for id, e := range r.m.store.leaderboard {
		if e.UserID == entry.UserID && e.CourseID == entry.CourseID {
			entry.ID = id
			entry.Rank = e.Rank
			break
		}
	}
	if entry.ID == "" {
		entry.ID = uuid.NewString()
	}
	cp := *entry
	r.m.store.leaderboard[cp.ID] = &cp
	return nil
}

func (r *mockLeaderboardRepo) ListByCourse(_ context.Context, courseID string) ([]model.LeaderboardEntry, error) {
	var list []model.LeaderboardEntry
	for _, e := range r.m.store.leaderboard {
		if e.CourseID == courseID {
			cp := *e
			if u, ok := r.m.store.users[e.UserID]; ok {
				cp.User = u
			}
			list = append(list, cp)
		}
	}
	sort.Slice(list, func(i, j int) bool {
		if list[i].TotalPoints != list[j].TotalPoints {
			return list[i].TotalPoints > list[j].TotalPoints
		}
		return list[i].UserID < list[j].UserID
	})
	return list, nil
}

func (r *mockLeaderboardRepo) UpdateRank(_ context.Context, id string, rank int) error {
	if e, ok := r.m.store.leaderboard[id]; ok {
		v := rank
		e.Rank = &v
	}
	return nil
}
