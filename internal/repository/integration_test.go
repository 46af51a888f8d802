//go:build integration

package repository_test

import (
	"context"
	"errors"
	"fmt"
	"os"
	"testing"
	"time"

	"go.uber.org/zap"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"trainer-lms/internal/model"
	"trainer-lms/internal/repository"
	"trainer-lms/pkg/database"
	pkgerrors "trainer-lms/pkg/errors"
)

// ═══════════════════════════════════════════════════════════
// Test Setup
// ═══════════════════════════════════════════════════════════

var testDB *gorm.DB

func TestMain(m *testing.M) {
	dsn := os.Getenv("TEST_DATABASE_DSN")
	if dsn == "" {
		dsn = "host=localhost port=5433 user=postgres password=postgres dbname=trainer_lms_test sslmode=disable TimeZone=UTC"
	}

	var err error
	testDB, err = gorm.Open(postgres.Open(dsn), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	if err != nil {
		fmt.Fprintf(os.Stderr, "无法连接测试数据库: %v\n", err)
		os.Exit(1)
	}

	// 使用与生产一致的迁移文件，唯一约束由迁移声明
	sqlDB, err := testDB.DB()
	if err != nil {
		fmt.Fprintf(os.Stderr, "获取 sql.DB 失败: %v\n", err)
		os.Exit(1)
	}
	if err := database.RunMigrations(sqlDB, zap.NewNop()); err != nil {
		fmt.Fprintf(os.Stderr, "迁移失败: %v\n", err)
		os.Exit(1)
	}

	os.Exit(m.Run())
}

type fixture struct {
	repo    *repository.Repository
	trainer *model.User
	learner *model.User
	course  *model.Course
}

// setupTestData 创建培训师、学员与草稿课程并返回清理函数
func setupTestData(t *testing.T) (*fixture, func()) {
	t.Helper()
	ctx := context.Background()
	suffix := time.Now().UnixNano()

	newUser := func(role string) *model.User {
		u := &model.User{
			Username:     fmt.Sprintf("%s-%d", role, suffix),
			Email:        fmt.Sprintf("%s-%d@example.com", role, suffix),
			FirstName:    "测试",
			LastName:     role,
			PasswordHash: "x",
			PrimaryRole:  role,
			IsActive:     true,
		}
		if err := testDB.WithContext(ctx).Create(u).Error; err != nil {
			t.Fatalf("创建用户失败: %v", err)
		}
		return u
	}
	trainer := newUser(model.RoleTrainer)
	learner := newUser(model.RoleTrainee)

	owner := trainer.UserID
	course := &model.Course{
		Title:           fmt.Sprintf("集成测试课程-%d", suffix),
		CourseType:      model.CourseTypeSelfPaced,
		Status:          model.CourseStatusDraft,
		PassingCriteria: 70,
		CreatedBy:       &owner,
	}
	if err := testDB.WithContext(ctx).Create(course).Error; err != nil {
		t.Fatalf("创建课程失败: %v", err)
	}

	cleanup := func() {
		testDB.Exec("DELETE FROM module_sequencing WHERE course_id = ?", course.CourseID)
		testDB.Exec("DELETE FROM enrollments WHERE course_id = ?", course.CourseID)
		testDB.Exec("DELETE FROM modules WHERE course_id = ?", course.CourseID)
		testDB.Exec("DELETE FROM team_members WHERE user_id IN ?", []string{trainer.UserID, learner.UserID})
		testDB.Exec("DELETE FROM teams WHERE created_by = ?", trainer.UserID)
		testDB.Exec("DELETE FROM courses WHERE course_id = ?", course.CourseID)
		testDB.Exec("DELETE FROM users WHERE user_id IN ?", []string{trainer.UserID, learner.UserID})
	}

	return &fixture{
		repo:    repository.NewRepository(testDB),
		trainer: trainer,
		learner: learner,
		course:  course,
	}, cleanup
}

func createUnit(t *testing.T, f *fixture, position int) *model.Unit {
	t.Helper()
	unit := &model.Unit{
		CourseID:      f.course.CourseID,
		ModuleType:    model.UnitTypeVideo,
		Title:         fmt.Sprintf("单元 %d", position),
		SequenceOrder: position,
		IsMandatory:   true,
	}
	if err := f.repo.Unit.Create(context.Background(), unit); err != nil {
		t.Fatalf("创建单元失败: %v", err)
	}
	return unit
}

// ═══════════════════════════════════════════════════════════
// Unit / Course
// ═══════════════════════════════════════════════════════════

func TestUnitRepo_PositionUnique(t *testing.T) {
	f, cleanup := setupTestData(t)
	defer cleanup()
	ctx := context.Background()

	createUnit(t, f, 0)
	dup := &model.Unit{
		CourseID:      f.course.CourseID,
		ModuleType:    model.UnitTypeText,
		Title:         "重复位置",
		SequenceOrder: 0,
	}
	err := f.repo.Unit.Create(ctx, dup)
	if !pkgerrors.IsConstraintViolation(err, "uq_module_sequence") {
		t.Fatalf("期望 uq_module_sequence 冲突，实际 %v", err)
	}

	taken, err := f.repo.Unit.PositionTaken(ctx, f.course.CourseID, 0, "")
	if err != nil || !taken {
		t.Errorf("位置 0 应被占用: taken=%v err=%v", taken, err)
	}
	maxSeq, err := f.repo.Unit.MaxSequenceOrder(ctx, f.course.CourseID)
	if err != nil || maxSeq != 0 {
		t.Errorf("期望最大序号 0，实际 %d (%v)", maxSeq, err)
	}
}

func TestCourseRepo_OptimisticLock(t *testing.T) {
	f, cleanup := setupTestData(t)
	defer cleanup()
	ctx := context.Background()

	a, err := f.repo.Course.GetByID(ctx, f.course.CourseID)
	if err != nil {
		t.Fatalf("查询课程失败: %v", err)
	}
	b := *a

	a.Title = "第一次修改"
	if err := f.repo.Course.Update(ctx, a); err != nil {
		t.Fatalf("首次更新失败: %v", err)
	}
	b.Title = "过期写入"
	if err := f.repo.Course.Update(ctx, &b); !errors.Is(err, pkgerrors.ErrOptimisticLock) {
		t.Errorf("期望 ErrOptimisticLock，实际 %v", err)
	}
}

// ═══════════════════════════════════════════════════════════
// Sequencing
// ═══════════════════════════════════════════════════════════

func TestSequencingRepo_ReplaceInTransaction(t *testing.T) {
	f, cleanup := setupTestData(t)
	defer cleanup()
	ctx := context.Background()

	u1 := createUnit(t, f, 0)
	u2 := createUnit(t, f, 1)
	prev := u1.UnitID

	replace := func(rules []model.ModuleSequencing) error {
		tx, err := f.repo.BeginTx(ctx)
		if err != nil {
			return err
		}
		txRepo := f.repo.WithTx(tx)
		if err := txRepo.Sequencing.DeleteByCourse(ctx, f.course.CourseID); err != nil {
			tx.Rollback()
			return err
		}
		if err := txRepo.Sequencing.BatchCreate(ctx, rules); err != nil {
			tx.Rollback()
			return err
		}
		return tx.Commit().Error
	}

	first := []model.ModuleSequencing{
		{CourseID: f.course.CourseID, ModuleID: u1.UnitID, DripFeedRule: model.DripFeedNone},
		{CourseID: f.course.CourseID, ModuleID: u2.UnitID, PrecedingModuleID: &prev, PrerequisiteCompleted: true, DripFeedRule: model.DripFeedNone},
	}
	if err := replace(first); err != nil {
		t.Fatalf("写入规则失败: %v", err)
	}

	// 同一单元两条规则违反唯一约束，整批回滚，旧规则保留
	bad := []model.ModuleSequencing{
		{CourseID: f.course.CourseID, ModuleID: u1.UnitID, DripFeedRule: model.DripFeedNone},
		{CourseID: f.course.CourseID, ModuleID: u1.UnitID, DripFeedRule: model.DripFeedDelay, DripFeedDelayDays: 2},
	}
	if err := replace(bad); err == nil {
		t.Fatal("期望唯一约束冲突")
	}

	rules, err := f.repo.Sequencing.ListByCourse(ctx, f.course.CourseID)
	if err != nil {
		t.Fatalf("查询规则失败: %v", err)
	}
	if len(rules) != 2 {
		t.Errorf("期望保留 2 条旧规则，实际 %d", len(rules))
	}
}

// ═══════════════════════════════════════════════════════════
// Enrollment / Team
// ═══════════════════════════════════════════════════════════

func TestEnrollmentRepo_CreateIfAbsent(t *testing.T) {
	f, cleanup := setupTestData(t)
	defer cleanup()
	ctx := context.Background()

	newEnrollment := func(userID string) *model.Enrollment {
		return &model.Enrollment{
			CourseID:   f.course.CourseID,
			UserID:     userID,
			Status:     model.EnrollmentAssigned,
			AssignedAt: time.Now().UTC(),
		}
	}

	created, err := f.repo.Enrollment.CreateIfAbsent(ctx, newEnrollment(f.learner.UserID))
	if err != nil || !created {
		t.Fatalf("首次报名应成功: created=%v err=%v", created, err)
	}
	created, err = f.repo.Enrollment.CreateIfAbsent(ctx, newEnrollment(f.learner.UserID))
	if err != nil || created {
		t.Errorf("重复报名应跳过: created=%v err=%v", created, err)
	}

	n, err := f.repo.Enrollment.BatchCreateIfAbsent(ctx, []model.Enrollment{
		*newEnrollment(f.learner.UserID),
		*newEnrollment(f.trainer.UserID),
	})
	if err != nil {
		t.Fatalf("批量报名失败: %v", err)
	}
	if n != 1 {
		t.Errorf("期望新增 1 条，实际 %d", n)
	}

	counts, err := f.repo.Enrollment.CountByStatus(ctx, f.course.CourseID)
	if err != nil {
		t.Fatalf("统计失败: %v", err)
	}
	if counts[model.EnrollmentAssigned] != 2 {
		t.Errorf("期望 assigned=2，实际 %d", counts[model.EnrollmentAssigned])
	}
}

func TestTeamRepo_AddMemberIdempotent(t *testing.T) {
	f, cleanup := setupTestData(t)
	defer cleanup()
	ctx := context.Background()

	creator := f.trainer.UserID
	team := &model.Team{
		TeamName:  fmt.Sprintf("集成测试团队-%d", time.Now().UnixNano()),
		IsActive:  true,
		CreatedBy: &creator,
	}
	if err := f.repo.Team.Create(ctx, team); err != nil {
		t.Fatalf("创建团队失败: %v", err)
	}

	member := func() *model.TeamMember {
		return &model.TeamMember{TeamID: team.TeamID, UserID: f.learner.UserID, AssignedAt: time.Now().UTC()}
	}
	added, err := f.repo.Team.AddMember(ctx, member())
	if err != nil || !added {
		t.Fatalf("首次添加应成功: added=%v err=%v", added, err)
	}
	added, err = f.repo.Team.AddMember(ctx, member())
	if err != nil || added {
		t.Errorf("重复添加应跳过: added=%v err=%v", added, err)
	}

	ids, err := f.repo.Team.MemberUserIDs(ctx, team.TeamID)
	if err != nil || len(ids) != 1 || ids[0] != f.learner.UserID {
		t.Errorf("成员列表不符: %v (%v)", ids, err)
	}

	dup := &model.Team{TeamName: team.TeamName, IsActive: true}
	if err := f.repo.Team.Create(ctx, dup); !pkgerrors.IsUniqueViolation(err) {
		t.Errorf("期望团队名称唯一约束冲突，实际 %v", err)
	}
}
