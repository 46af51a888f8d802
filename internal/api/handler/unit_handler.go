package handler

import (
	"encoding/json"
	"errors"

	"github.com/gin-gonic/gin"

	"trainer-lms/internal/dto"
	"trainer-lms/internal/service"
	"trainer-lms/pkg/response"
)

// UnitHandler 单元模块 HTTP 处理器
type UnitHandler struct {
	unitSvc service.UnitService
}

// NewUnitHandler 创建 UnitHandler
func NewUnitHandler(unitSvc service.UnitService) *UnitHandler {
	return &UnitHandler{unitSvc: unitSvc}
}

// CreateUnit 创建单元
// POST /api/v1/units
func (h *UnitHandler) CreateUnit(c *gin.Context) {
	actor, ok := MustGetActor(c)
	if !ok {
		return
	}
	var req dto.UnitRequest
	if !bindJSON(c, &req) {
		return
	}

	unit, err := h.unitSvc.Create(c.Request.Context(), req.Normalize(), actor)
	if err != nil {
		h.handleUnitError(c, err)
		return
	}
	response.Created(c, unit)
}

// GetUnit 单元详情，含内容与测验
// GET /api/v1/units/:id
func (h *UnitHandler) GetUnit(c *gin.Context) {
	actor, ok := MustGetActor(c)
	if !ok {
		return
	}

	unit, err := h.unitSvc.GetByID(c.Request.Context(), c.Param("id"), actor)
	if err != nil {
		h.handleUnitError(c, err)
		return
	}
	response.OK(c, unit)
}

// UpdateUnit 更新单元
// PUT /api/v1/units/:id
func (h *UnitHandler) UpdateUnit(c *gin.Context) {
	actor, ok := MustGetActor(c)
	if !ok {
		return
	}
	var req dto.UnitRequest
	if !bindJSON(c, &req) {
		return
	}

	unit, err := h.unitSvc.Update(c.Request.Context(), c.Param("id"), req.Normalize(), actor)
	if err != nil {
		h.handleUnitError(c, err)
		return
	}
	response.OK(c, unit)
}

// DeleteUnit 删除单元
// DELETE /api/v1/units/:id
func (h *UnitHandler) DeleteUnit(c *gin.Context) {
	actor, ok := MustGetActor(c)
	if !ok {
		return
	}

	if err := h.unitSvc.Delete(c.Request.Context(), c.Param("id"), actor); err != nil {
		h.handleUnitError(c, err)
		return
	}
	response.OK(c, nil)
}

// ListUnits 课程内单元，按排序位置升序
// GET /api/v1/courses/:id/units
func (h *UnitHandler) ListUnits(c *gin.Context) {
	actor, ok := MustGetActor(c)
	if !ok {
		return
	}

	units, err := h.unitSvc.ListByCourse(c.Request.Context(), c.Param("id"), actor)
	if err != nil {
		h.handleUnitError(c, err)
		return
	}
	response.OK(c, gin.H{"list": units})
}

// SaveContent 写入单元内容
// PUT /api/v1/units/:id/content
func (h *UnitHandler) SaveContent(c *gin.Context) {
	actor, ok := MustGetActor(c)
	if !ok {
		return
	}
	var raw json.RawMessage
	if !bindJSON(c, &raw) {
		return
	}

	unit, err := h.unitSvc.SaveContent(c.Request.Context(), c.Param("id"), raw, actor)
	if err != nil {
		h.handleUnitError(c, err)
		return
	}
	response.OK(c, unit)
}

// SaveQuiz 创建或更新测验配置
// PUT /api/v1/units/:id/quiz
func (h *UnitHandler) SaveQuiz(c *gin.Context) {
	actor, ok := MustGetActor(c)
	if !ok {
		return
	}
	var req dto.SaveQuizRequest
	if !bindJSON(c, &req) {
		return
	}

	quiz, err := h.unitSvc.SaveQuiz(c.Request.Context(), c.Param("id"), &req, actor)
	if err != nil {
		h.handleUnitError(c, err)
		return
	}
	response.OK(c, quiz)
}

// AddQuestions 追加测验题目
// POST /api/v1/units/:id/quiz/questions
func (h *UnitHandler) AddQuestions(c *gin.Context) {
	actor, ok := MustGetActor(c)
	if !ok {
		return
	}
	var req dto.AddQuestionsRequest
	if !bindJSON(c, &req) {
		return
	}

	quiz, err := h.unitSvc.AddQuestions(c.Request.Context(), c.Param("id"), &req, actor)
	if err != nil {
		h.handleUnitError(c, err)
		return
	}
	response.Created(c, quiz)
}

func (h *UnitHandler) handleUnitError(c *gin.Context, err error) {
	switch {
	case errors.Is(err, service.ErrPositionConflict):
		response.Conflict(c, 13002, "排序位置已被占用")
	case errors.Is(err, service.ErrQuizNotFound):
		response.NotFound(c, 13003, "测验不存在")
	default:
		handleCommonError(c, err)
	}
}
