package service

import (
	"errors"
	"sort"
	"strings"
)

// ── 通用业务错误 ──

var (
	ErrValidation         = errors.New("参数校验失败")
	ErrPermissionDenied   = errors.New("无权执行该操作")
	ErrPositionConflict   = errors.New("排序位置已被占用")
	ErrCourseNotFound     = errors.New("课程不存在")
	ErrUnitNotFound       = errors.New("单元不存在")
	ErrUserNotFound       = errors.New("用户不存在")
	ErrTeamNotFound       = errors.New("团队不存在")
	ErrEnrollmentNotFound = errors.New("尚未报名该课程")
)

// FieldError 字段级校验错误，errors.Is(err, ErrValidation) 为真
type FieldError struct {
	Fields map[string]string
}

func newFieldError(field, message string) *FieldError {
	return &FieldError{Fields: map[string]string{field: message}}
}

func (e *FieldError) Error() string {
	keys := make([]string, 0, len(e.Fields))
	for k := range e.Fields {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	parts := make([]string, 0, len(keys))
	for _, k := range keys {
		parts = append(parts, k+": "+e.Fields[k])
	}
	return ErrValidation.Error() + ": " + strings.Join(parts, "; ")
}

// Is 使 FieldError 可按 ErrValidation 判定
func (e *FieldError) Is(target error) bool {
	return target == ErrValidation
}
