package handler

import (
	"errors"
	"net/http"
	"net/url"

	"github.com/gin-gonic/gin"

	"trainer-lms/internal/service"
	"trainer-lms/pkg/response"
)

const xlsxContentType = "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet"

// ReportHandler 课程报表 HTTP 处理器
type ReportHandler struct {
	reportSvc service.ReportService
}

// NewReportHandler 创建 ReportHandler
func NewReportHandler(reportSvc service.ReportService) *ReportHandler {
	return &ReportHandler{reportSvc: reportSvc}
}

// CourseReport 课程报表
// GET /api/v1/courses/:id/report
func (h *ReportHandler) CourseReport(c *gin.Context) {
	actor, ok := MustGetActor(c)
	if !ok {
		return
	}

	report, err := h.reportSvc.CourseReport(c.Request.Context(), c.Param("id"), actor)
	if err != nil {
		h.handleReportError(c, err)
		return
	}
	response.OK(c, report)
}

// ExportCourseReport 导出课程报表
// GET /api/v1/courses/:id/report/export
func (h *ReportHandler) ExportCourseReport(c *gin.Context) {
	actor, ok := MustGetActor(c)
	if !ok {
		return
	}

	buf, filename, err := h.reportSvc.ExportCourseReport(c.Request.Context(), c.Param("id"), actor)
	if err != nil {
		h.handleReportError(c, err)
		return
	}

	// 设置下载响应头
	c.Header("Content-Description", "File Transfer")
	c.Header("Content-Disposition", "attachment; filename*=UTF-8''"+url.QueryEscape(filename))
	c.Data(http.StatusOK, xlsxContentType, buf.Bytes())
}

func (h *ReportHandler) handleReportError(c *gin.Context, err error) {
	if errors.Is(err, service.ErrReportGenerateFail) {
		_ = c.Error(err)
		response.InternalError(c)
		return
	}
	handleCommonError(c, err)
}
