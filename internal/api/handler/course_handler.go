package handler

import (
	"errors"

	"github.com/gin-gonic/gin"

	"trainer-lms/internal/dto"
	"trainer-lms/internal/service"
	pkgerrors "trainer-lms/pkg/errors"
	"trainer-lms/pkg/response"
)

// CourseHandler 课程模块 HTTP 处理器
type CourseHandler struct {
	courseSvc service.CourseService
}

// NewCourseHandler 创建 CourseHandler
func NewCourseHandler(courseSvc service.CourseService) *CourseHandler {
	return &CourseHandler{courseSvc: courseSvc}
}

// ListCourses 课程列表（按角色过滤）
// GET /api/v1/courses
func (h *CourseHandler) ListCourses(c *gin.Context) {
	actor, ok := MustGetActor(c)
	if !ok {
		return
	}

	courses, err := h.courseSvc.List(c.Request.Context(), actor)
	if err != nil {
		h.handleCourseError(c, err)
		return
	}
	response.OK(c, gin.H{"list": courses})
}

// GetCourse 课程详情，含有序单元
// GET /api/v1/courses/:id
func (h *CourseHandler) GetCourse(c *gin.Context) {
	actor, ok := MustGetActor(c)
	if !ok {
		return
	}

	course, err := h.courseSvc.GetDetail(c.Request.Context(), c.Param("id"), actor)
	if err != nil {
		h.handleCourseError(c, err)
		return
	}
	response.OK(c, course)
}

// CreateCourse 创建课程
// POST /api/v1/courses
func (h *CourseHandler) CreateCourse(c *gin.Context) {
	actor, ok := MustGetActor(c)
	if !ok {
		return
	}
	var req dto.CreateCourseRequest
	if !bindJSON(c, &req) {
		return
	}

	course, err := h.courseSvc.Create(c.Request.Context(), &req, actor)
	if err != nil {
		h.handleCourseError(c, err)
		return
	}
	response.Created(c, course)
}

// UpdateCourse 更新课程
// PUT /api/v1/courses/:id
func (h *CourseHandler) UpdateCourse(c *gin.Context) {
	actor, ok := MustGetActor(c)
	if !ok {
		return
	}
	var req dto.UpdateCourseRequest
	if !bindJSON(c, &req) {
		return
	}

	course, err := h.courseSvc.Update(c.Request.Context(), c.Param("id"), &req, actor)
	if err != nil {
		h.handleCourseError(c, err)
		return
	}
	response.OK(c, course)
}

// PublishCourse 发布课程
// POST /api/v1/courses/:id/publish
func (h *CourseHandler) PublishCourse(c *gin.Context) {
	actor, ok := MustGetActor(c)
	if !ok {
		return
	}

	course, err := h.courseSvc.Publish(c.Request.Context(), c.Param("id"), actor)
	if err != nil {
		h.handleCourseError(c, err)
		return
	}
	response.OK(c, course)
}

// DuplicateCourse 复制课程为新的草稿
// POST /api/v1/courses/:id/duplicate
func (h *CourseHandler) DuplicateCourse(c *gin.Context) {
	actor, ok := MustGetActor(c)
	if !ok {
		return
	}

	course, err := h.courseSvc.Duplicate(c.Request.Context(), c.Param("id"), actor)
	if err != nil {
		h.handleCourseError(c, err)
		return
	}
	response.Created(c, course)
}

func (h *CourseHandler) handleCourseError(c *gin.Context, err error) {
	switch {
	case errors.Is(err, pkgerrors.ErrOptimisticLock):
		response.Conflict(c, 12002, "课程已被其他操作修改，请刷新后重试")
	case errors.Is(err, service.ErrCourseAlreadyPublished):
		response.Conflict(c, 12003, "课程已发布")
	case errors.Is(err, service.ErrCourseHasNoUnits):
		response.BadRequest(c, 12004, "课程没有任何单元，无法发布")
	default:
		handleCommonError(c, err)
	}
}
