package handler

import (
	"errors"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"trainer-lms/internal/api/middleware"
	"trainer-lms/internal/service"
	"trainer-lms/pkg/response"
)

// MustGetUserID 从 Gin 上下文中安全提取 user_id。
// 如果 JWT 中间件未正确注入 user_id，返回 false 并写入 401 响应。
// 调用方应在 ok=false 时直接 return。
func MustGetUserID(c *gin.Context) (string, bool) {
	s := c.GetString(middleware.CtxUserID)
	if s == "" {
		response.Unauthorized(c, 10002, "未认证")
		return "", false
	}
	return s, true
}

// MustGetActor 构造当前请求的操作者身份
func MustGetActor(c *gin.Context) (service.Actor, bool) {
	userID, ok := MustGetUserID(c)
	if !ok {
		return service.Actor{}, false
	}
	role := c.GetString(middleware.CtxRole)
	if role == "" {
		response.Unauthorized(c, 10002, "未认证")
		return service.Actor{}, false
	}
	return service.Actor{
		UserID:      userID,
		Role:        role,
		IsSuperuser: c.GetBool(middleware.CtxIsSuperuser),
	}, true
}

// tokenMeta 当前 Token 的 jti 与过期时间，登出时使用
func tokenMeta(c *gin.Context) (string, time.Time) {
	return c.GetString(middleware.CtxTokenJTI), c.GetTime(middleware.CtxTokenExp)
}

// bindJSON 绑定请求体，失败时写入 400（超出大小限制为 413）并返回 false
func bindJSON(c *gin.Context, obj interface{}) bool {
	if err := c.ShouldBindJSON(obj); err != nil {
		var tooLarge *http.MaxBytesError
		if errors.As(err, &tooLarge) {
			response.Error(c, http.StatusRequestEntityTooLarge, 10005, "请求体过大")
			return false
		}
		response.ErrorWithDetails(c, http.StatusBadRequest, 10001, "参数校验失败", err.Error())
		return false
	}
	return true
}

// handleCommonError 各模块共用的错误映射，模块错误由各 Handler 先行处理
func handleCommonError(c *gin.Context, err error) {
	var fe *service.FieldError
	switch {
	case errors.As(err, &fe):
		response.ValidationFailed(c, 10001, "参数校验失败", fe.Fields)
	case errors.Is(err, service.ErrValidation):
		response.BadRequest(c, 10001, "参数校验失败")
	case errors.Is(err, service.ErrPermissionDenied):
		response.Forbidden(c, 10003, "无权执行该操作")
	case errors.Is(err, service.ErrCourseNotFound):
		response.NotFound(c, 12001, "课程不存在")
	case errors.Is(err, service.ErrUnitNotFound):
		response.NotFound(c, 13001, "单元不存在")
	case errors.Is(err, service.ErrUserNotFound):
		response.NotFound(c, 11004, "用户不存在")
	case errors.Is(err, service.ErrTeamNotFound):
		response.NotFound(c, 16001, "团队不存在")
	case errors.Is(err, service.ErrEnrollmentNotFound):
		response.NotFound(c, 15001, "尚未报名该课程")
	default:
		_ = c.Error(err)
		response.InternalError(c)
	}
}
