package cli

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"trainer-lms/internal/dto"
	"trainer-lms/internal/service"
)

// ── fakes ──

type fakeTeams struct {
	teams   []dto.TeamResponse
	members map[string]map[string]bool
	primary map[string]bool
}

func newFakeTeams() *fakeTeams {
	return &fakeTeams{members: map[string]map[string]bool{}, primary: map[string]bool{}}
}

func (f *fakeTeams) Create(_ context.Context, req *dto.CreateTeamRequest, actor service.Actor) (*dto.TeamResponse, error) {
	if !actor.CanManageTeams() {
		return nil, service.ErrPermissionDenied
	}
	for _, t := range f.teams {
		if t.TeamName == req.TeamName {
			return nil, service.ErrTeamNameExists
		}
	}
	t := dto.TeamResponse{ID: fmt.Sprintf("team-%d", len(f.teams)+1), TeamName: req.TeamName, IsActive: true}
	f.teams = append(f.teams, t)
	f.members[t.ID] = map[string]bool{}
	return &t, nil
}

func (f *fakeTeams) List(_ context.Context) ([]dto.TeamResponse, error) {
	out := make([]dto.TeamResponse, len(f.teams))
	for i, t := range f.teams {
		t.MemberCount = int64(len(f.members[t.ID]))
		out[i] = t
	}
	return out, nil
}

func (f *fakeTeams) AddMembers(_ context.Context, teamID string, req *dto.AddTeamMembersRequest, _ service.Actor) (*dto.AddTeamMembersResponse, error) {
	set, ok := f.members[teamID]
	if !ok {
		return nil, service.ErrTeamNotFound
	}
	resp := &dto.AddTeamMembersResponse{}
	for _, id := range req.UserIDs {
		if set[id] {
			resp.Skipped++
			continue
		}
		set[id] = true
		if req.IsPrimaryTeam {
			f.primary[teamID+"/"+id] = true
		}
		resp.Added++
	}
	return resp, nil
}

func (f *fakeTeams) ListMembers(_ context.Context, teamID string) ([]dto.TeamMemberResponse, error) {
	var out []dto.TeamMemberResponse
	for id := range f.members[teamID] {
		out = append(out, dto.TeamMemberResponse{UserID: id, Email: id + "@example.com", IsPrimaryTeam: f.primary[teamID+"/"+id]})
	}
	return out, nil
}

type fakeDirectory struct {
	users map[string]string
	roles map[string]string
}

func newFakeDirectory() *fakeDirectory {
	return &fakeDirectory{users: map[string]string{}, roles: map[string]string{"trainer@example.com": "trainer"}}
}

func (f *fakeDirectory) ResolveActor(_ context.Context, ref string) (service.Actor, error) {
	if ref == "" {
		return SystemActor, nil
	}
	role, ok := f.roles[ref]
	if !ok {
		return service.Actor{}, fmt.Errorf("操作者 %s 不存在", ref)
	}
	return service.Actor{UserID: "id-" + ref, Role: role}, nil
}

func (f *fakeDirectory) EnsureLearner(_ context.Context, email, _ string) (string, bool, error) {
	if id, ok := f.users[email]; ok {
		return id, false, nil
	}
	id := "user-" + email
	f.users[email] = id
	return id, true, nil
}

type fakeEnrollment struct {
	service.EnrollmentService
	lastCourse string
	lastReq    *dto.AssignCourseRequest
	lastActor  service.Actor
	err        error
}

func (f *fakeEnrollment) Assign(_ context.Context, courseID string, req *dto.AssignCourseRequest, actor service.Actor) (*dto.AssignCourseResponse, error) {
	f.lastCourse, f.lastReq, f.lastActor = courseID, req, actor
	if f.err != nil {
		return nil, f.err
	}
	return &dto.AssignCourseResponse{Created: len(req.UserIDs) + 2*len(req.TeamIDs), Skipped: 1}, nil
}

type fakeUnits struct {
	service.UnitService
	units     []dto.UnitResponse
	lastActor service.Actor
	err       error
}

func (f *fakeUnits) ListByCourse(_ context.Context, _ string, actor service.Actor) ([]dto.UnitResponse, error) {
	f.lastActor = actor
	return f.units, f.err
}

type fakeMigrator struct {
	ups   int
	downs []int
}

func (f *fakeMigrator) Up() error { f.ups++; return nil }

func (f *fakeMigrator) Down(steps int) error { f.downs = append(f.downs, steps); return nil }

func testApp() *App {
	return &App{
		Teams:      newFakeTeams(),
		Enrollment: &fakeEnrollment{},
		Units:      &fakeUnits{},
		Directory:  newFakeDirectory(),
		Migrator:   &fakeMigrator{},
	}
}

// executeCmd 执行命令并捕获输出
func executeCmd(t *testing.T, app *App, args ...string) (string, error) {
	t.Helper()
	root := NewRootCmd(app)
	buf := new(bytes.Buffer)
	root.SetOut(buf)
	root.SetErr(buf)
	root.SetArgs(args)
	err := root.Execute()
	return buf.String(), err
}

// ── migrate ──

func TestMigrateCmd(t *testing.T) {
	app := testApp()
	m := app.Migrator.(*fakeMigrator)

	out, err := executeCmd(t, app, "migrate")
	require.NoError(t, err)
	assert.Contains(t, out, "迁移完成")
	assert.Equal(t, 1, m.ups)

	out, err = executeCmd(t, app, "migrate", "--down", "2")
	require.NoError(t, err)
	assert.Contains(t, out, "已回退 2 步迁移")
	assert.Equal(t, []int{2}, m.downs)
}

func TestMigrateCmd_NotConfigured(t *testing.T) {
	app := testApp()
	app.Migrator = nil

	_, err := executeCmd(t, app, "migrate")
	assert.Error(t, err)
}

// ── seed-teams / verify-teams ──

func TestSeedTeamsCmd_Idempotent(t *testing.T) {
	app := testApp()
	teams := app.Teams.(*fakeTeams)

	out, err := executeCmd(t, app, "seed-teams")
	require.NoError(t, err)
	assert.Contains(t, out, "已创建用户 alice@example.com")
	assert.Contains(t, out, "Team Alpha: 新增 3，已存在 0")
	assert.Contains(t, out, "Team Beta: 新增 1，已存在 0")
	require.Len(t, teams.teams, 2)
	assert.True(t, teams.primary["team-2/user-carol@example.com"])

	out, err = executeCmd(t, app, "seed-teams")
	require.NoError(t, err)
	assert.Contains(t, out, "用户已存在 bob@example.com")
	assert.Contains(t, out, "Team Alpha: 新增 0，已存在 3")
	assert.Len(t, teams.teams, 2)
}

func TestSeedTeamsCmd_UnknownActor(t *testing.T) {
	app := testApp()

	_, err := executeCmd(t, app, "seed-teams", "--actor", "ghost@example.com")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "不存在")
}

func TestVerifyTeamsCmd(t *testing.T) {
	app := testApp()

	out, err := executeCmd(t, app, "verify-teams")
	require.NoError(t, err)
	assert.Contains(t, out, "暂无团队")

	_, err = executeCmd(t, app, "seed-teams")
	require.NoError(t, err)

	out, err = executeCmd(t, app, "verify-teams")
	require.NoError(t, err)
	assert.Contains(t, out, "Team Alpha\t成员 3")
	assert.Contains(t, out, "Team Beta\t成员 1")
	assert.Contains(t, out, "主团队")
}

// ── assign ──

func TestAssignCmd(t *testing.T) {
	app := testApp()
	enroll := app.Enrollment.(*fakeEnrollment)

	out, err := executeCmd(t, app, "assign",
		"--course", "course-1",
		"--user", "u1,u2",
		"--team", "t1",
		"--actor", "trainer@example.com",
	)
	require.NoError(t, err)
	assert.Contains(t, out, "created: 4, skipped: 1, failed: 0")
	assert.Equal(t, "course-1", enroll.lastCourse)
	assert.Equal(t, []string{"u1", "u2"}, enroll.lastReq.UserIDs)
	assert.Equal(t, "trainer", enroll.lastActor.Role)
}

func TestAssignCmd_Validation(t *testing.T) {
	app := testApp()

	_, err := executeCmd(t, app, "assign", "--user", "u1")
	assert.Error(t, err, "missing --course")

	_, err = executeCmd(t, app, "assign", "--course", "c1")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "--user")
}

func TestAssignCmd_ServiceError(t *testing.T) {
	app := testApp()
	app.Enrollment.(*fakeEnrollment).err = service.ErrCourseNotFound

	_, err := executeCmd(t, app, "assign", "--course", "c1", "--user", "u1")
	assert.ErrorIs(t, err, service.ErrCourseNotFound)
}

// ── list-units ──

func TestListUnitsCmd(t *testing.T) {
	app := testApp()
	app.Units.(*fakeUnits).units = []dto.UnitResponse{
		{ID: "u-a", Title: "导论", SequenceOrder: 0},
		{ID: "u-b", Title: "实践", SequenceOrder: 3},
	}

	out, err := executeCmd(t, app, "list-units", "--course", "c1")
	require.NoError(t, err)
	assert.Contains(t, out, "u-a\t导论\t0")
	assert.Contains(t, out, "max_seq: 3")
}

func TestListUnitsCmd_ActorFlag(t *testing.T) {
	app := testApp()

	_, err := executeCmd(t, app, "list-units", "--course", "c1")
	require.NoError(t, err)
	assert.Equal(t, SystemActor, app.Units.(*fakeUnits).lastActor)

	_, err = executeCmd(t, app, "list-units", "--course", "c1", "--actor", "trainer@example.com")
	require.NoError(t, err)
	assert.Equal(t, "id-trainer@example.com", app.Units.(*fakeUnits).lastActor.UserID)

	_, err = executeCmd(t, app, "list-units", "--course", "c1", "--actor", "ghost@example.com")
	assert.Error(t, err)
}

func TestListUnitsCmd_Empty(t *testing.T) {
	app := testApp()

	out, err := executeCmd(t, app, "list-units", "--course", "c1")
	require.NoError(t, err)
	assert.Contains(t, out, "max_seq: -")
}

func TestListUnitsCmd_Error(t *testing.T) {
	app := testApp()
	app.Units.(*fakeUnits).err = errors.New("db down")

	_, err := executeCmd(t, app, "list-units", "--course", "c1")
	assert.Error(t, err)
}
