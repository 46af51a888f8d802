package handler

import (
	"github.com/gin-gonic/gin"

	"trainer-lms/internal/dto"
	"trainer-lms/internal/service"
	"trainer-lms/pkg/response"
)

// EnrollmentHandler 选课分配 HTTP 处理器
type EnrollmentHandler struct {
	enrollSvc service.EnrollmentService
}

// NewEnrollmentHandler 创建 EnrollmentHandler
func NewEnrollmentHandler(enrollSvc service.EnrollmentService) *EnrollmentHandler {
	return &EnrollmentHandler{enrollSvc: enrollSvc}
}

// Assign 按用户与团队分配课程
// POST /api/v1/courses/:id/assign
func (h *EnrollmentHandler) Assign(c *gin.Context) {
	actor, ok := MustGetActor(c)
	if !ok {
		return
	}
	var req dto.AssignCourseRequest
	if !bindJSON(c, &req) {
		return
	}

	result, err := h.enrollSvc.Assign(c.Request.Context(), c.Param("id"), &req, actor)
	if err != nil {
		handleCommonError(c, err)
		return
	}
	response.OK(c, result)
}

// BulkEnroll 批量报名
// POST /api/v1/enrollments/bulk
func (h *EnrollmentHandler) BulkEnroll(c *gin.Context) {
	actor, ok := MustGetActor(c)
	if !ok {
		return
	}
	var req dto.BulkEnrollRequest
	if !bindJSON(c, &req) {
		return
	}

	result, err := h.enrollSvc.BulkEnroll(c.Request.Context(), &req, actor)
	if err != nil {
		handleCommonError(c, err)
		return
	}
	response.Created(c, result)
}

// ListByCourse 课程选课名单
// GET /api/v1/courses/:id/enrollments
func (h *EnrollmentHandler) ListByCourse(c *gin.Context) {
	actor, ok := MustGetActor(c)
	if !ok {
		return
	}

	list, err := h.enrollSvc.ListByCourse(c.Request.Context(), c.Param("id"), actor)
	if err != nil {
		handleCommonError(c, err)
		return
	}
	response.OK(c, gin.H{"list": list})
}

// ListMine 当前用户的选课
// GET /api/v1/enrollments/me
func (h *EnrollmentHandler) ListMine(c *gin.Context) {
	userID, ok := MustGetUserID(c)
	if !ok {
		return
	}

	list, err := h.enrollSvc.ListMine(c.Request.Context(), userID)
	if err != nil {
		handleCommonError(c, err)
		return
	}
	response.OK(c, gin.H{"list": list})
}

// AssignableLearners 尚未报名的学员
// GET /api/v1/courses/:id/assignable-learners
func (h *EnrollmentHandler) AssignableLearners(c *gin.Context) {
	actor, ok := MustGetActor(c)
	if !ok {
		return
	}

	list, err := h.enrollSvc.AssignableLearners(c.Request.Context(), c.Param("id"), actor)
	if err != nil {
		handleCommonError(c, err)
		return
	}
	response.OK(c, gin.H{"list": list})
}

// Stats 选课状态统计
// GET /api/v1/courses/:id/enrollment-stats
func (h *EnrollmentHandler) Stats(c *gin.Context) {
	actor, ok := MustGetActor(c)
	if !ok {
		return
	}

	stats, err := h.enrollSvc.Stats(c.Request.Context(), c.Param("id"), actor)
	if err != nil {
		handleCommonError(c, err)
		return
	}
	response.OK(c, stats)
}
