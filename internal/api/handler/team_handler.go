package handler

import (
	"errors"

	"github.com/gin-gonic/gin"

	"trainer-lms/internal/dto"
	"trainer-lms/internal/service"
	"trainer-lms/pkg/response"
)

// TeamHandler 团队模块 HTTP 处理器
type TeamHandler struct {
	teamSvc service.TeamService
}

// NewTeamHandler 创建 TeamHandler
func NewTeamHandler(teamSvc service.TeamService) *TeamHandler {
	return &TeamHandler{teamSvc: teamSvc}
}

// ListTeams 团队列表
// GET /api/v1/teams
func (h *TeamHandler) ListTeams(c *gin.Context) {
	teams, err := h.teamSvc.List(c.Request.Context())
	if err != nil {
		h.handleTeamError(c, err)
		return
	}
	response.OK(c, gin.H{"list": teams})
}

// CreateTeam 创建团队
// POST /api/v1/teams
func (h *TeamHandler) CreateTeam(c *gin.Context) {
	actor, ok := MustGetActor(c)
	if !ok {
		return
	}
	var req dto.CreateTeamRequest
	if !bindJSON(c, &req) {
		return
	}

	team, err := h.teamSvc.Create(c.Request.Context(), &req, actor)
	if err != nil {
		h.handleTeamError(c, err)
		return
	}
	response.Created(c, team)
}

// ListMembers 团队成员
// GET /api/v1/teams/:id/members
func (h *TeamHandler) ListMembers(c *gin.Context) {
	members, err := h.teamSvc.ListMembers(c.Request.Context(), c.Param("id"))
	if err != nil {
		h.handleTeamError(c, err)
		return
	}
	response.OK(c, gin.H{"list": members})
}

// AddMembers 添加团队成员
// POST /api/v1/teams/:id/members
func (h *TeamHandler) AddMembers(c *gin.Context) {
	actor, ok := MustGetActor(c)
	if !ok {
		return
	}
	var req dto.AddTeamMembersRequest
	if !bindJSON(c, &req) {
		return
	}

	result, err := h.teamSvc.AddMembers(c.Request.Context(), c.Param("id"), &req, actor)
	if err != nil {
		h.handleTeamError(c, err)
		return
	}
	response.OK(c, result)
}

func (h *TeamHandler) handleTeamError(c *gin.Context, err error) {
	if errors.Is(err, service.ErrTeamNameExists) {
		response.Conflict(c, 16002, "团队名称已存在")
		return
	}
	handleCommonError(c, err)
}
