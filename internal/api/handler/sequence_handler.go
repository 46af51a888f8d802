package handler

import (
	"bytes"
	"encoding/json"
	"errors"
	"io"
	"net/http"

	"github.com/gin-gonic/gin"

	"trainer-lms/internal/dto"
	"trainer-lms/internal/service"
	"trainer-lms/pkg/response"
)

// SequenceHandler 单元排序规则 HTTP 处理器
type SequenceHandler struct {
	seqSvc service.SequencingService
}

// NewSequenceHandler 创建 SequenceHandler
func NewSequenceHandler(seqSvc service.SequencingService) *SequenceHandler {
	return &SequenceHandler{seqSvc: seqSvc}
}

// ListRules 课程排序规则
// GET /api/v1/courses/:id/sequence
func (h *SequenceHandler) ListRules(c *gin.Context) {
	actor, ok := MustGetActor(c)
	if !ok {
		return
	}

	rules, err := h.seqSvc.ListRules(c.Request.Context(), c.Param("id"), actor)
	if err != nil {
		h.handleSequenceError(c, err)
		return
	}
	response.OK(c, gin.H{"list": rules})
}

// ReplaceRules 整体替换排序规则
// PUT /api/v1/courses/:id/sequence
// 请求体可为规则数组，或 {"rules": [...]}
func (h *SequenceHandler) ReplaceRules(c *gin.Context) {
	actor, ok := MustGetActor(c)
	if !ok {
		return
	}

	rules, err := decodeRules(c.Request.Body)
	if err != nil {
		var tooLarge *http.MaxBytesError
		if errors.As(err, &tooLarge) {
			response.Error(c, http.StatusRequestEntityTooLarge, 10005, "请求体过大")
			return
		}
		response.ErrorWithDetails(c, http.StatusBadRequest, 10001, "参数校验失败", err.Error())
		return
	}

	result, err := h.seqSvc.ReplaceRules(c.Request.Context(), c.Param("id"), rules, actor)
	if err != nil {
		h.handleSequenceError(c, err)
		return
	}
	response.OK(c, result)
}

// Availability 学员视角的单元解锁状态，默认当前用户
// GET /api/v1/courses/:id/availability?user_id=
func (h *SequenceHandler) Availability(c *gin.Context) {
	actor, ok := MustGetActor(c)
	if !ok {
		return
	}
	userID := c.DefaultQuery("user_id", actor.UserID)

	items, err := h.seqSvc.Availability(c.Request.Context(), c.Param("id"), userID, actor)
	if err != nil {
		h.handleSequenceError(c, err)
		return
	}
	response.OK(c, gin.H{"list": items})
}

func (h *SequenceHandler) handleSequenceError(c *gin.Context, err error) {
	handleCommonError(c, err)
}

// decodeRules 兼容两种请求体形态
func decodeRules(body io.Reader) ([]dto.SequenceRuleRequest, error) {
	raw, err := io.ReadAll(body)
	if err != nil {
		return nil, err
	}
	raw = bytes.TrimSpace(raw)
	if len(raw) == 0 {
		return nil, errors.New("请求体不能为空")
	}

	if raw[0] == '[' {
		var rules []dto.SequenceRuleRequest
		if err := json.Unmarshal(raw, &rules); err != nil {
			return nil, err
		}
		return rules, nil
	}

	var req dto.ReplaceSequenceRequest
	if err := json.Unmarshal(raw, &req); err != nil {
		return nil, err
	}
	return req.Rules, nil
}
