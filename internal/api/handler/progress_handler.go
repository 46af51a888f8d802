package handler

import (
	"errors"

	"github.com/gin-gonic/gin"

	"trainer-lms/internal/dto"
	"trainer-lms/internal/service"
	"trainer-lms/pkg/response"
)

// ProgressHandler 学习进度、测验作答与作业 HTTP 处理器
type ProgressHandler struct {
	progressSvc service.ProgressService
}

// NewProgressHandler 创建 ProgressHandler
func NewProgressHandler(progressSvc service.ProgressService) *ProgressHandler {
	return &ProgressHandler{progressSvc: progressSvc}
}

// RecordProgress 上报单元进度
// POST /api/v1/units/:id/progress
func (h *ProgressHandler) RecordProgress(c *gin.Context) {
	actor, ok := MustGetActor(c)
	if !ok {
		return
	}
	var req dto.RecordProgressRequest
	if !bindJSON(c, &req) {
		return
	}

	result, err := h.progressSvc.RecordProgress(c.Request.Context(), c.Param("id"), &req, actor)
	if err != nil {
		h.handleProgressError(c, err)
		return
	}
	response.OK(c, result)
}

// EnrollmentProgress 选课的逐单元进度
// GET /api/v1/enrollments/:id/progress
func (h *ProgressHandler) EnrollmentProgress(c *gin.Context) {
	actor, ok := MustGetActor(c)
	if !ok {
		return
	}

	result, err := h.progressSvc.EnrollmentProgress(c.Request.Context(), c.Param("id"), actor)
	if err != nil {
		h.handleProgressError(c, err)
		return
	}
	response.OK(c, result)
}

// SubmitQuiz 提交测验答案
// POST /api/v1/units/:id/quiz/attempts
func (h *ProgressHandler) SubmitQuiz(c *gin.Context) {
	actor, ok := MustGetActor(c)
	if !ok {
		return
	}
	var req dto.SubmitQuizRequest
	if !bindJSON(c, &req) {
		return
	}

	result, err := h.progressSvc.SubmitQuiz(c.Request.Context(), c.Param("id"), &req, actor)
	if err != nil {
		h.handleProgressError(c, err)
		return
	}
	response.Created(c, result)
}

// SubmitAssignment 提交作业
// POST /api/v1/units/:id/submissions
func (h *ProgressHandler) SubmitAssignment(c *gin.Context) {
	actor, ok := MustGetActor(c)
	if !ok {
		return
	}
	var req dto.SubmitAssignmentRequest
	if !bindJSON(c, &req) {
		return
	}

	result, err := h.progressSvc.SubmitAssignment(c.Request.Context(), c.Param("id"), &req, actor)
	if err != nil {
		h.handleProgressError(c, err)
		return
	}
	response.Created(c, result)
}

// GradeSubmission 作业评分
// PUT /api/v1/submissions/:id/grade
func (h *ProgressHandler) GradeSubmission(c *gin.Context) {
	actor, ok := MustGetActor(c)
	if !ok {
		return
	}
	var req dto.GradeSubmissionRequest
	if !bindJSON(c, &req) {
		return
	}

	result, err := h.progressSvc.GradeSubmission(c.Request.Context(), c.Param("id"), &req, actor)
	if err != nil {
		h.handleProgressError(c, err)
		return
	}
	response.OK(c, result)
}

// Leaderboard 课程排行榜
// GET /api/v1/courses/:id/leaderboard
func (h *ProgressHandler) Leaderboard(c *gin.Context) {
	actor, ok := MustGetActor(c)
	if !ok {
		return
	}

	list, err := h.progressSvc.Leaderboard(c.Request.Context(), c.Param("id"), actor)
	if err != nil {
		h.handleProgressError(c, err)
		return
	}
	response.OK(c, gin.H{"list": list})
}

func (h *ProgressHandler) handleProgressError(c *gin.Context, err error) {
	switch {
	case errors.Is(err, service.ErrMaxAttemptsReached):
		response.Conflict(c, 17001, "已达到测验最大作答次数")
	case errors.Is(err, service.ErrSubmissionNotFound):
		response.NotFound(c, 17002, "作业提交记录不存在")
	case errors.Is(err, service.ErrQuizNotFound):
		response.NotFound(c, 13003, "测验不存在")
	default:
		handleCommonError(c, err)
	}
}
