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

// ── 团队模块业务错误 ──

var (
	ErrTeamNameExists = errors.New("团队名称已存在")
)

// TeamService 团队业务接口
type TeamService interface {
	Create(ctx context.Context, req *dto.CreateTeamRequest, actor Actor) (*dto.TeamResponse, error)
	List(ctx context.Context) ([]dto.TeamResponse, error)
	// AddMembers 添加成员，已是成员的用户与不存在的用户计入 skipped
	AddMembers(ctx context.Context, teamID string, req *dto.AddTeamMembersRequest, actor Actor) (*dto.AddTeamMembersResponse, error)
	ListMembers(ctx context.Context, teamID string) ([]dto.TeamMemberResponse, error)
}

type teamService struct {
	repo   *repository.Repository
	logger *zap.Logger
}

// NewTeamService 创建 TeamService 实例
func NewTeamService(repo *repository.Repository, logger *zap.Logger) TeamService {
	return &teamService{repo: repo, logger: logger}
}

// ────────────────────── Create ──────────────────────

func (s *teamService) Create(ctx context.Context, req *dto.CreateTeamRequest, actor Actor) (*dto.TeamResponse, error) {
	if !actor.CanManageTeams() {
		return nil, ErrPermissionDenied
	}

	name := strings.TrimSpace(req.TeamName)
	existing, err := s.repo.Team.GetByName(ctx, name)
	if err != nil && !errors.Is(err, gorm.ErrRecordNotFound) {
		s.logger.Error("查询团队失败", zap.String("team_name", name), zap.Error(err))
		return nil, err
	}
	if existing != nil {
		return nil, ErrTeamNameExists
	}

	team := &model.Team{
		TeamName:    name,
		Description: req.Description,
		IsActive:    true,
		CreatedBy:   optionalID(actor.UserID),
	}
	if err := s.repo.Team.Create(ctx, team); err != nil {
		if pkgerrors.IsUniqueViolation(err) {
			return nil, ErrTeamNameExists
		}
		s.logger.Error("创建团队失败", zap.String("team_name", name), zap.Error(err))
		return nil, err
	}

	s.logger.Info("团队已创建", zap.String("team_id", team.TeamID), zap.String("team_name", name))
	return toTeamResponse(team, 0), nil
}

// ────────────────────── List ──────────────────────

func (s *teamService) List(ctx context.Context) ([]dto.TeamResponse, error) {
	teams, err := s.repo.Team.List(ctx, true)
	if err != nil {
		s.logger.Error("查询团队列表失败", zap.Error(err))
		return nil, err
	}

	result := make([]dto.TeamResponse, 0, len(teams))
	for i := range teams {
		count, err := s.repo.Team.CountMembers(ctx, teams[i].TeamID)
		if err != nil {
			s.logger.Error("统计团队成员失败", zap.String("team_id", teams[i].TeamID), zap.Error(err))
			return nil, err
		}
		result = append(result, *toTeamResponse(&teams[i], count))
	}
	return result, nil
}

// ────────────────────── AddMembers ──────────────────────

func (s *teamService) AddMembers(ctx context.Context, teamID string, req *dto.AddTeamMembersRequest, actor Actor) (*dto.AddTeamMembersResponse, error) {
	if !actor.CanManageTeams() {
		return nil, ErrPermissionDenied
	}

	team, err := s.getTeam(ctx, teamID)
	if err != nil {
		return nil, err
	}

	userIDs := dedupe(req.UserIDs)
	users, err := s.repo.User.ListByIDs(ctx, userIDs)
	if err != nil {
		s.logger.Error("查询用户失败", zap.Error(err))
		return nil, err
	}
	known := make(map[string]bool, len(users))
	for _, u := range users {
		known[u.UserID] = true
	}

	resp := &dto.AddTeamMembersResponse{}
	assignedBy := optionalID(actor.UserID)
	for _, userID := range userIDs {
		if !known[userID] {
			resp.Skipped++
			continue
		}
		added, err := s.repo.Team.AddMember(ctx, &model.TeamMember{
			TeamID:        team.TeamID,
			UserID:        userID,
			IsPrimaryTeam: req.IsPrimaryTeam,
			AssignedBy:    assignedBy,
			AssignedAt:    time.Now().UTC(),
		})
		if err != nil {
			s.logger.Error("添加团队成员失败",
				zap.String("team_id", team.TeamID),
				zap.String("user_id", userID),
				zap.Error(err),
			)
			return nil, err
		}
		if added {
			resp.Added++
		} else {
			resp.Skipped++
		}
	}
	// 请求中的重复 ID 同样计入 skipped
	resp.Skipped += len(req.UserIDs) - len(userIDs)

	return resp, nil
}

// ────────────────────── ListMembers ──────────────────────

func (s *teamService) ListMembers(ctx context.Context, teamID string) ([]dto.TeamMemberResponse, error) {
	if _, err := s.getTeam(ctx, teamID); err != nil {
		return nil, err
	}

	members, err := s.repo.Team.ListMembers(ctx, teamID)
	if err != nil {
		s.logger.Error("查询团队成员失败", zap.String("team_id", teamID), zap.Error(err))
		return nil, err
	}

	result := make([]dto.TeamMemberResponse, 0, len(members))
	for _, m := range members {
		item := dto.TeamMemberResponse{
			UserID:        m.UserID,
			IsPrimaryTeam: m.IsPrimaryTeam,
			AssignedAt:    formatTime(m.AssignedAt),
		}
		if m.User != nil {
			item.Username = m.User.Username
			item.FullName = m.User.FullName()
			item.Email = m.User.Email
		}
		result = append(result, item)
	}
	return result, nil
}

// ── 内部辅助方法 ──

func (s *teamService) getTeam(ctx context.Context, teamID string) (*model.Team, error) {
	team, err := s.repo.Team.GetByID(ctx, teamID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrTeamNotFound
		}
		s.logger.Error("查询团队失败", zap.String("team_id", teamID), zap.Error(err))
		return nil, err
	}
	return team, nil
}

func toTeamResponse(t *model.Team, memberCount int64) *dto.TeamResponse {
	return &dto.TeamResponse{
		ID:          t.TeamID,
		TeamName:    t.TeamName,
		Description: t.Description,
		IsActive:    t.IsActive,
		MemberCount: memberCount,
		CreatedAt:   formatTime(t.CreatedAt),
	}
}
