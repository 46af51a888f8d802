package service

import (
	"context"
	"encoding/json"
	"errors"
	"testing"
	"time"

	"github.com/jackc/pgx/v5/pgconn"
	"go.uber.org/zap"
	"gorm.io/datatypes"
	"gorm.io/gorm"

	"trainer-lms/internal/dto"
	"trainer-lms/internal/model"
	"trainer-lms/pkg/validate"
)

// ── 测试辅助 ──

func strPtr(s string) *string { return &s }
func intPtr(i int) *int       { return &i }
func boolPtr(b bool) *bool    { return &b }

func setupTestUnitService() (UnitService, *mockRepos, *model.Course, Actor) {
	repo, m := newMockRepos()
	trainer := m.addUser("trainer", model.RoleTrainer)
	course := m.addCourse("Go 入门", trainer.UserID, model.CourseStatusDraft)
	svc := NewUnitService(repo, validate.New(), zap.NewNop())
	return svc, m, course, Actor{UserID: trainer.UserID, Role: model.RoleTrainer}
}

func unitInput(courseID, moduleType, title string) *dto.UnitInput {
	return &dto.UnitInput{
		CourseID:   strPtr(courseID),
		ModuleType: strPtr(moduleType),
		Title:      strPtr(title),
	}
}

// ── Create 测试 ──

func TestUnitService_Create_AutoPosition(t *testing.T) {
	svc, _, course, actor := setupTestUnitService()
	ctx := context.Background()

	for i := 0; i < 4; i++ {
		unit, err := svc.Create(ctx, unitInput(course.CourseID, model.UnitTypeText, "单元"), actor)
		if err != nil {
			t.Fatalf("第 %d 次 Create 应成功: %v", i+1, err)
		}
		if unit.SequenceOrder != i {
			t.Errorf("第 %d 个单元期望 sequence_order=%d，实际=%d", i+1, i, unit.SequenceOrder)
		}
	}
}

func TestUnitService_Create_ExplicitConflictScenario(t *testing.T) {
	svc, _, course, actor := setupTestUnitService()
	ctx := context.Background()

	first, err := svc.Create(ctx, unitInput(course.CourseID, model.UnitTypeVideo, "Intro"), actor)
	if err != nil {
		t.Fatalf("第一个单元应创建成功: %v", err)
	}
	if first.SequenceOrder != 0 {
		t.Errorf("期望第一个单元位置为 0，实际=%d", first.SequenceOrder)
	}

	second, err := svc.Create(ctx, unitInput(course.CourseID, model.UnitTypeVideo, "Part 2"), actor)
	if err != nil {
		t.Fatalf("第二个单元应创建成功: %v", err)
	}
	if second.SequenceOrder != 1 {
		t.Errorf("期望第二个单元位置为 1，实际=%d", second.SequenceOrder)
	}

	in := unitInput(course.CourseID, model.UnitTypeVideo, "Part 3")
	in.SequenceOrder = intPtr(1)
	if _, err := svc.Create(ctx, in, actor); !errors.Is(err, ErrPositionConflict) {
		t.Errorf("期望 ErrPositionConflict，实际: %v", err)
	}
}

func TestUnitService_Create_ExplicitGapThenAuto(t *testing.T) {
	svc, _, course, actor := setupTestUnitService()
	ctx := context.Background()

	in := unitInput(course.CourseID, model.UnitTypeText, "第五节")
	in.SequenceOrder = intPtr(5)
	unit, err := svc.Create(ctx, in, actor)
	if err != nil {
		t.Fatalf("Create 应成功: %v", err)
	}
	if unit.SequenceOrder != 5 {
		t.Errorf("期望 sequence_order=5，实际=%d", unit.SequenceOrder)
	}

	next, err := svc.Create(ctx, unitInput(course.CourseID, model.UnitTypeText, "之后"), actor)
	if err != nil {
		t.Fatalf("Create 应成功: %v", err)
	}
	if next.SequenceOrder != 6 {
		t.Errorf("期望自动位置为 6，实际=%d", next.SequenceOrder)
	}
}

func TestUnitService_Create_StoreRaceMapsToConflict(t *testing.T) {
	svc, m, course, actor := setupTestUnitService()
	// 模拟并发请求在检查之后抢先写入相同位置
	m.unitCreateErr = func(*model.Unit) error { return unitSequenceConflict() }

	_, err := svc.Create(context.Background(), unitInput(course.CourseID, model.UnitTypeText, "并发"), actor)
	if !errors.Is(err, ErrPositionConflict) {
		t.Errorf("唯一约束冲突应转换为 ErrPositionConflict，实际: %v", err)
	}
}

func TestUnitService_Create_OtherUniqueViolationIsNotConflict(t *testing.T) {
	svc, m, course, actor := setupTestUnitService()
	m.unitCreateErr = func(*model.Unit) error {
		return &pgconn.PgError{Code: "23505", ConstraintName: "units_pkey"}
	}

	_, err := svc.Create(context.Background(), unitInput(course.CourseID, model.UnitTypeText, "主键冲突"), actor)
	if err == nil || errors.Is(err, ErrPositionConflict) {
		t.Errorf("非 uq_module_sequence 的唯一冲突不应视为位置冲突，实际: %v", err)
	}

	m.unitCreateErr = func(*model.Unit) error { return gorm.ErrDuplicatedKey }
	_, err = svc.Create(context.Background(), unitInput(course.CourseID, model.UnitTypeText, "未知约束"), actor)
	if errors.Is(err, ErrPositionConflict) {
		t.Errorf("缺少约束名的唯一冲突不应视为位置冲突，实际: %v", err)
	}
}

func TestUnitService_Create_MissingCourse(t *testing.T) {
	svc, _, _, actor := setupTestUnitService()

	in := &dto.UnitInput{ModuleType: strPtr(model.UnitTypeVideo), Title: strPtr("Intro")}
	_, err := svc.Create(context.Background(), in, actor)
	if !errors.Is(err, ErrValidation) {
		t.Fatalf("期望校验错误，实际: %v", err)
	}
	var fe *FieldError
	if !errors.As(err, &fe) || fe.Fields["course_id"] == "" {
		t.Errorf("期望 course_id 字段错误，实际: %v", err)
	}
}

func TestUnitService_Create_UnknownCourse(t *testing.T) {
	svc, _, _, actor := setupTestUnitService()

	in := unitInput("8a1f0a52-8d0e-4a43-9d57-2e5b3c1f7b11", model.UnitTypeVideo, "Intro")
	_, err := svc.Create(context.Background(), in, actor)
	var fe *FieldError
	if !errors.As(err, &fe) || fe.Fields["course_id"] == "" {
		t.Errorf("不存在的课程应返回 course_id 字段错误，实际: %v", err)
	}
}

func TestUnitService_Create_InvalidType(t *testing.T) {
	svc, _, course, actor := setupTestUnitService()

	_, err := svc.Create(context.Background(), unitInput(course.CourseID, "hologram", "未知"), actor)
	var fe *FieldError
	if !errors.As(err, &fe) || fe.Fields["module_type"] == "" {
		t.Errorf("期望 module_type 字段错误，实际: %v", err)
	}
}

func TestUnitService_Create_AliasFields(t *testing.T) {
	svc, _, course, actor := setupTestUnitService()

	req := &dto.UnitRequest{
		Course:     strPtr(course.CourseID),
		Type:       strPtr(model.UnitTypeAudio),
		Title:      strPtr("播客"),
		Order:      intPtr(3),
		IsRequired: boolPtr(false),
	}
	unit, err := svc.Create(context.Background(), req.Normalize(), actor)
	if err != nil {
		t.Fatalf("别名字段应可创建单元: %v", err)
	}
	if unit.ModuleType != model.UnitTypeAudio || unit.SequenceOrder != 3 || unit.IsMandatory {
		t.Errorf("别名字段未正确归一化: %+v", unit)
	}
}

func TestUnitService_Create_PermissionDenied(t *testing.T) {
	svc, m, course, _ := setupTestUnitService()
	other := m.addUser("other", model.RoleTrainer)
	trainee := m.addUser("learner", model.RoleTrainee)

	for _, actor := range []Actor{
		{UserID: other.UserID, Role: model.RoleTrainer},
		{UserID: trainee.UserID, Role: model.RoleTrainee},
	} {
		_, err := svc.Create(context.Background(), unitInput(course.CourseID, model.UnitTypeText, "越权"), actor)
		if !errors.Is(err, ErrPermissionDenied) {
			t.Errorf("角色 %s 期望 ErrPermissionDenied，实际: %v", actor.Role, err)
		}
	}
	if len(m.unitsOf(course.CourseID)) != 0 {
		t.Error("权限校验失败时不应写入单元")
	}
}

func TestUnitService_Create_AdminMayManageAnyCourse(t *testing.T) {
	svc, m, course, _ := setupTestUnitService()
	admin := m.addUser("root", model.RoleTrainee)

	_, err := svc.Create(context.Background(), unitInput(course.CourseID, model.UnitTypeText, "超级用户"),
		Actor{UserID: admin.UserID, Role: model.RoleTrainee, IsSuperuser: true})
	if err != nil {
		t.Errorf("超级用户应可管理任意课程: %v", err)
	}
}

// ── Update 测试 ──

func TestUnitService_Update_KeepOwnPosition(t *testing.T) {
	svc, m, course, actor := setupTestUnitService()
	unit := m.addUnit(course.CourseID, model.UnitTypeText, "原标题", 0)
	m.addUnit(course.CourseID, model.UnitTypeText, "其他", 1)

	in := &dto.UnitInput{Title: strPtr("新标题"), SequenceOrder: intPtr(0)}
	result, err := svc.Update(context.Background(), unit.UnitID, in, actor)
	if err != nil {
		t.Fatalf("保持自身位置的更新应成功: %v", err)
	}
	if result.Title != "新标题" || result.SequenceOrder != 0 {
		t.Errorf("更新结果不符: %+v", result)
	}
}

func TestUnitService_Update_PositionConflict(t *testing.T) {
	svc, m, course, actor := setupTestUnitService()
	m.addUnit(course.CourseID, model.UnitTypeText, "一", 0)
	m.addUnit(course.CourseID, model.UnitTypeText, "二", 1)
	third := m.addUnit(course.CourseID, model.UnitTypeText, "三", 2)

	for _, pos := range []int{0, 1} {
		in := &dto.UnitInput{SequenceOrder: intPtr(pos)}
		if _, err := svc.Update(context.Background(), third.UnitID, in, actor); !errors.Is(err, ErrPositionConflict) {
			t.Errorf("移动到位置 %d 期望 ErrPositionConflict，实际: %v", pos, err)
		}
	}
	if m.store.units[third.UnitID].SequenceOrder != 2 {
		t.Error("冲突时不应修改单元位置")
	}
}

func TestUnitService_Update_RejectCourseChange(t *testing.T) {
	svc, m, course, actor := setupTestUnitService()
	other := m.addCourse("另一门课", actor.UserID, model.CourseStatusDraft)
	unit := m.addUnit(course.CourseID, model.UnitTypeText, "单元", 0)

	_, err := svc.Update(context.Background(), unit.UnitID, &dto.UnitInput{CourseID: strPtr(other.CourseID)}, actor)
	if !errors.Is(err, ErrValidation) {
		t.Errorf("期望校验错误，实际: %v", err)
	}
}

func TestUnitService_Update_NotFound(t *testing.T) {
	svc, _, _, actor := setupTestUnitService()

	_, err := svc.Update(context.Background(), "missing", &dto.UnitInput{}, actor)
	if !errors.Is(err, ErrUnitNotFound) {
		t.Errorf("期望 ErrUnitNotFound，实际: %v", err)
	}
}

// ── Delete 测试 ──

func TestUnitService_Delete_NoResequence(t *testing.T) {
	svc, m, course, actor := setupTestUnitService()
	m.addUnit(course.CourseID, model.UnitTypeText, "一", 0)
	middle := m.addUnit(course.CourseID, model.UnitTypeText, "二", 1)
	last := m.addUnit(course.CourseID, model.UnitTypeText, "三", 2)

	if err := svc.Delete(context.Background(), middle.UnitID, actor); err != nil {
		t.Fatalf("Delete 应成功: %v", err)
	}
	if m.store.units[last.UnitID].SequenceOrder != 2 {
		t.Error("删除单元后不应重排其他单元")
	}

	next, err := svc.Create(context.Background(), unitInput(course.CourseID, model.UnitTypeText, "四"), actor)
	if err != nil {
		t.Fatalf("Create 应成功: %v", err)
	}
	if next.SequenceOrder != 3 {
		t.Errorf("期望 sequence_order=3，实际=%d", next.SequenceOrder)
	}
}

// ── 内容与测验 ──

func TestUnitService_SaveContent_Video(t *testing.T) {
	svc, m, course, actor := setupTestUnitService()
	unit := m.addUnit(course.CourseID, model.UnitTypeVideo, "视频", 0)

	raw := json.RawMessage(`{"id":"client-id","video_url":"https://cdn.example.com/a.mp4","duration_seconds":120}`)
	detail, err := svc.SaveContent(context.Background(), unit.UnitID, raw, actor)
	if err != nil {
		t.Fatalf("SaveContent 应成功: %v", err)
	}
	video, ok := detail.Content.(*model.VideoUnit)
	if !ok {
		t.Fatalf("期望视频内容，实际: %T", detail.Content)
	}
	if video.UnitID != unit.UnitID || video.ID != "" {
		t.Errorf("内容应绑定到单元且忽略客户端主键: %+v", video)
	}
}

func TestUnitService_SaveContent_QuizRejected(t *testing.T) {
	svc, m, course, actor := setupTestUnitService()
	unit := m.addUnit(course.CourseID, model.UnitTypeQuiz, "测验", 0)

	_, err := svc.SaveContent(context.Background(), unit.UnitID, json.RawMessage(`{}`), actor)
	if !errors.Is(err, ErrValidation) {
		t.Errorf("测验类单元不应通过内容接口写入，实际: %v", err)
	}
}

func TestUnitService_SaveQuizAndAddQuestions(t *testing.T) {
	svc, m, course, actor := setupTestUnitService()
	unit := m.addUnit(course.CourseID, model.UnitTypeQuiz, "测验", 0)
	ctx := context.Background()

	quiz, err := svc.SaveQuiz(ctx, unit.UnitID, &dto.SaveQuizRequest{PassingScore: intPtr(60)}, actor)
	if err != nil {
		t.Fatalf("SaveQuiz 应成功: %v", err)
	}
	if quiz.PassingScore != 60 || quiz.MaxAttempts != defaultMaxAttempts {
		t.Errorf("测验配置不符: %+v", quiz)
	}
	if !m.store.units[unit.UnitID].HasQuizzes {
		t.Error("配置测验后单元 has_quizzes 应为 true")
	}

	req := &dto.AddQuestionsRequest{Questions: []dto.QuestionRequest{
		{QuestionType: "true_false", QuestionText: "Go 有泛型", CorrectAnswer: json.RawMessage(`true`)},
		{QuestionType: "multiple_choice", QuestionText: "选择", Options: json.RawMessage(`["a","b"]`), CorrectAnswer: json.RawMessage(`"a"`), Points: intPtr(3)},
	}}
	result, err := svc.AddQuestions(ctx, unit.UnitID, req, actor)
	if err != nil {
		t.Fatalf("AddQuestions 应成功: %v", err)
	}
	if len(result.Questions) != 2 {
		t.Fatalf("期望 2 道题，实际=%d", len(result.Questions))
	}
	if result.Questions[0].Points != 1 || result.Questions[1].Points != 3 {
		t.Errorf("题目分值不符: %+v", result.Questions)
	}
	if result.Questions[0].Order != 0 || result.Questions[1].Order != 1 {
		t.Errorf("题目顺序不符: %+v", result.Questions)
	}
}

func TestUnitService_AddQuestions_FreeTextWithoutAnswer(t *testing.T) {
	svc, m, course, actor := setupTestUnitService()
	unit := m.addUnit(course.CourseID, model.UnitTypeQuiz, "问答", 0)
	ctx := context.Background()

	if _, err := svc.SaveQuiz(ctx, unit.UnitID, &dto.SaveQuizRequest{MandatoryCompletion: boolPtr(true)}, actor); err != nil {
		t.Fatalf("SaveQuiz 应成功: %v", err)
	}
	req := &dto.AddQuestionsRequest{Questions: []dto.QuestionRequest{
		{QuestionType: model.QuestionFreeText, QuestionText: "谈谈你对 channel 的理解"},
	}}
	result, err := svc.AddQuestions(ctx, unit.UnitID, req, actor)
	if err != nil {
		t.Fatalf("free_text 题可不提供标准答案: %v", err)
	}
	if !result.MandatoryCompletion || len(result.Questions) != 1 || len(result.Questions[0].CorrectAnswer) != 0 {
		t.Errorf("测验结果不符: %+v", result)
	}

	req.Questions[0].QuestionType = model.QuestionFillBlank
	if _, err := svc.AddQuestions(ctx, unit.UnitID, req, actor); !errors.Is(err, ErrValidation) {
		t.Errorf("非 free_text 题缺少答案期望校验错误，实际: %v", err)
	}
}

func TestUnitService_AddQuestions_NoQuiz(t *testing.T) {
	svc, m, course, actor := setupTestUnitService()
	unit := m.addUnit(course.CourseID, model.UnitTypeQuiz, "测验", 0)

	req := &dto.AddQuestionsRequest{Questions: []dto.QuestionRequest{
		{QuestionType: "true_false", QuestionText: "?", CorrectAnswer: json.RawMessage(`true`)},
	}}
	if _, err := svc.AddQuestions(context.Background(), unit.UnitID, req, actor); !errors.Is(err, ErrQuizNotFound) {
		t.Errorf("期望 ErrQuizNotFound，实际: %v", err)
	}
}

// ── 读取与答案可见性 ──

type quizUnitFixture struct {
	svc     UnitService
	m       *mockRepos
	course  *model.Course
	unit    *model.Unit
	quiz    *model.Quiz
	trainer Actor
	learner Actor
}

func setupQuizUnit(showCorrect bool) *quizUnitFixture {
	svc, m, course, trainer := setupTestUnitService()
	unit := m.addUnit(course.CourseID, model.UnitTypeQuiz, "测验", 0)
	quiz := &model.Quiz{QuizID: "quiz-1", UnitID: unit.UnitID, PassingScore: 60, MaxAttempts: 3, ShowCorrectAnswers: showCorrect}
	m.store.quizzes[quiz.QuizID] = quiz
	m.store.questions["qa"] = &model.Question{
		QuestionID: "qa", QuizID: quiz.QuizID, QuestionType: model.QuestionMultipleChoice,
		Options: datatypes.JSON(`["a","b"]`), CorrectAnswer: datatypes.JSON(`"b"`), Points: 1,
		Explanation: strPtr("b 是正确答案"),
	}
	learner := m.addUser("learner", model.RoleTrainee)
	m.addEnrollment(course.CourseID, learner.UserID, model.EnrollmentAssigned, time.Now())
	return &quizUnitFixture{
		svc: svc, m: m, course: course, unit: unit, quiz: quiz, trainer: trainer,
		learner: Actor{UserID: learner.UserID, Role: model.RoleTrainee},
	}
}

func answerShown(d *dto.UnitDetailResponse) bool {
	q := d.Quiz.Questions[0]
	return len(q.CorrectAnswer) > 0 || q.Explanation != nil
}

func TestUnitService_GetByID_TraineeCannotSeeAnswers(t *testing.T) {
	f := setupQuizUnit(false)
	ctx := context.Background()

	detail, err := f.svc.GetByID(ctx, f.unit.UnitID, f.learner)
	if err != nil {
		t.Fatalf("已报名学员应可读取单元: %v", err)
	}
	if detail.Quiz == nil || len(detail.Quiz.Questions) != 1 {
		t.Fatalf("期望返回测验题目: %+v", detail.Quiz)
	}
	if answerShown(detail) {
		t.Errorf("学员不应看到答案与解析: %+v", detail.Quiz.Questions[0])
	}
	if len(detail.Quiz.Questions[0].Options) == 0 {
		t.Error("选项应保留")
	}

	// 已作答但测验未开启 show_correct_answers
	f.m.store.attempts["a1"] = &model.QuizAttempt{AttemptID: "a1", QuizID: f.quiz.QuizID, UserID: f.learner.UserID}
	detail, _ = f.svc.GetByID(ctx, f.unit.UnitID, f.learner)
	if answerShown(detail) {
		t.Error("未开启 show_correct_answers 时作答后仍应隐藏答案")
	}
}

func TestUnitService_GetByID_RevealAfterAttempt(t *testing.T) {
	f := setupQuizUnit(true)
	ctx := context.Background()

	detail, err := f.svc.GetByID(ctx, f.unit.UnitID, f.learner)
	if err != nil {
		t.Fatalf("GetByID 应成功: %v", err)
	}
	if answerShown(detail) {
		t.Error("作答前不应显示答案")
	}

	f.m.store.attempts["a1"] = &model.QuizAttempt{AttemptID: "a1", QuizID: f.quiz.QuizID, UserID: f.learner.UserID}
	detail, err = f.svc.GetByID(ctx, f.unit.UnitID, f.learner)
	if err != nil {
		t.Fatalf("GetByID 应成功: %v", err)
	}
	if !answerShown(detail) || string(detail.Quiz.Questions[0].CorrectAnswer) != `"b"` {
		t.Errorf("作答后应显示答案: %+v", detail.Quiz.Questions[0])
	}
}

func TestUnitService_GetByID_TrainerSeesAnswers(t *testing.T) {
	f := setupQuizUnit(false)

	detail, err := f.svc.GetByID(context.Background(), f.unit.UnitID, f.trainer)
	if err != nil {
		t.Fatalf("GetByID 应成功: %v", err)
	}
	if !answerShown(detail) {
		t.Error("课程讲师应看到答案")
	}
}

func TestUnitService_Reads_HiddenFromStrangers(t *testing.T) {
	f := setupQuizUnit(true)
	ctx := context.Background()
	stranger := f.m.addUser("stranger", model.RoleTrainee)
	actor := Actor{UserID: stranger.UserID, Role: model.RoleTrainee}

	if _, err := f.svc.GetByID(ctx, f.unit.UnitID, actor); !errors.Is(err, ErrUnitNotFound) {
		t.Errorf("未报名学员读取单元期望 ErrUnitNotFound，实际: %v", err)
	}
	if _, err := f.svc.ListByCourse(ctx, f.course.CourseID, actor); !errors.Is(err, ErrCourseNotFound) {
		t.Errorf("未报名学员列出单元期望 ErrCourseNotFound，实际: %v", err)
	}

	units, err := f.svc.ListByCourse(ctx, f.course.CourseID, f.learner)
	if err != nil || len(units) != 1 {
		t.Errorf("已报名学员应可列出单元: %v %+v", err, units)
	}
}
