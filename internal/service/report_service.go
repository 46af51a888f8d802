package service

import (
	"bytes"
	"context"
	"errors"
	"fmt"

	"github.com/xuri/excelize/v2"
	"go.uber.org/zap"
	"gorm.io/gorm"

	"trainer-lms/internal/dto"
	"trainer-lms/internal/model"
	"trainer-lms/internal/repository"
)

// ── 报表模块业务错误 ──

var (
	ErrReportGenerateFail = errors.New("生成 Excel 文件失败")
)

// ReportService 课程报表业务接口
//
// 导出以 bytes.Buffer 返回，由 Handler 层设置响应头后写入
type ReportService interface {
	CourseReport(ctx context.Context, courseID string, actor Actor) (*dto.CourseReportResponse, error)
	// ExportCourseReport 导出为 .xlsx，包含「概览」与「学员明细」两个 Sheet
	ExportCourseReport(ctx context.Context, courseID string, actor Actor) (*bytes.Buffer, string, error)
}

type reportService struct {
	repo   *repository.Repository
	logger *zap.Logger
}

// NewReportService 创建 ReportService 实例
func NewReportService(repo *repository.Repository, logger *zap.Logger) ReportService {
	return &reportService{repo: repo, logger: logger}
}

// ────────────────────── CourseReport ──────────────────────

func (s *reportService) CourseReport(ctx context.Context, courseID string, actor Actor) (*dto.CourseReportResponse, error) {
	course, err := s.repo.Course.GetByID(ctx, courseID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrCourseNotFound
		}
		s.logger.Error("查询课程失败", zap.String("course_id", courseID), zap.Error(err))
		return nil, err
	}
	if !actor.CanViewRoster(course) {
		return nil, ErrPermissionDenied
	}

	units, err := s.repo.Unit.ListByCourse(ctx, courseID)
	if err != nil {
		s.logger.Error("查询课程单元失败", zap.String("course_id", courseID), zap.Error(err))
		return nil, err
	}
	enrollments, err := s.repo.Enrollment.ListByCourse(ctx, courseID)
	if err != nil {
		s.logger.Error("查询选课记录失败", zap.String("course_id", courseID), zap.Error(err))
		return nil, err
	}
	avgQuiz, err := s.repo.Progress.AverageQuizScore(ctx, courseID)
	if err != nil {
		s.logger.Error("统计测验平均分失败", zap.String("course_id", courseID), zap.Error(err))
		return nil, err
	}

	report := &dto.CourseReportResponse{
		CourseID:         course.CourseID,
		Title:            course.Title,
		Status:           course.Status,
		TotalUnits:       len(units),
		AverageQuizScore: avgQuiz,
		Learners:         make([]dto.LearnerReportRow, 0, len(enrollments)),
	}

	counts := make(map[string]int64, 3)
	progressSum := 0
	for _, e := range enrollments {
		counts[e.Status]++
		progressSum += e.ProgressPercentage

		row := dto.LearnerReportRow{
			UserID:             e.UserID,
			Status:             e.Status,
			ProgressPercentage: e.ProgressPercentage,
			AssignedAt:         formatTime(e.AssignedAt),
			CompletedAt:        formatTimePtr(e.CompletedAt),
		}
		if e.User != nil {
			row.FullName = e.User.FullName()
			row.Email = e.User.Email
		}
		report.Learners = append(report.Learners, row)
	}
	report.Enrollments = *statsFromCounts(counts)
	if len(enrollments) > 0 {
		report.AverageProgress = float64(progressSum) / float64(len(enrollments))
	}

	return report, nil
}

// ═══════════════════════════════════════════════════════════
// ExportCourseReport 导出课程报表为 Excel
// ═══════════════════════════════════════════════════════════
//
// Sheet「概览」：课程信息与选课统计，两列键值
// Sheet「学员明细」：每位学员一行，按报名时间排序
//
// 返回值：buf（Excel 内容）, filename（建议文件名）, error

func (s *reportService) ExportCourseReport(ctx context.Context, courseID string, actor Actor) (*bytes.Buffer, string, error) {
	report, err := s.CourseReport(ctx, courseID, actor)
	if err != nil {
		return nil, "", err
	}

	f := excelize.NewFile()
	defer f.Close()

	headerStyle, _ := f.NewStyle(&excelize.Style{
		Font:      &excelize.Font{Bold: true, Size: 11, Color: "#FFFFFF"},
		Fill:      excelize.Fill{Type: "pattern", Color: []string{"#4472C4"}, Pattern: 1},
		Alignment: &excelize.Alignment{Horizontal: "center", Vertical: "center"},
	})

	// 概览
	summary := "概览"
	idx, err := f.NewSheet(summary)
	if err != nil {
		s.logger.Error("创建 Sheet 失败", zap.Error(err))
		return nil, "", ErrReportGenerateFail
	}
	f.SetActiveSheet(idx)
	f.DeleteSheet("Sheet1")
	f.SetColWidth(summary, "A", "A", 16)
	f.SetColWidth(summary, "B", "B", 40)

	avgQuiz := "-"
	if report.AverageQuizScore != nil {
		avgQuiz = fmt.Sprintf("%.1f", *report.AverageQuizScore)
	}
	pairs := [][2]interface{}{
		{"课程", report.Title},
		{"状态", report.Status},
		{"单元数", report.TotalUnits},
		{"报名总数", report.Enrollments.Total},
		{"未开始", report.Enrollments.Assigned},
		{"学习中", report.Enrollments.InProgress},
		{"已完成", report.Enrollments.Completed},
		{"平均进度(%)", fmt.Sprintf("%.1f", report.AverageProgress)},
		{"测验平均分", avgQuiz},
	}
	for i, p := range pairs {
		row := i + 1
		f.SetCellValue(summary, cell("A", row), p[0])
		f.SetCellValue(summary, cell("B", row), p[1])
		f.SetCellStyle(summary, cell("A", row), cell("A", row), headerStyle)
	}

	// 学员明细
	detail := "学员明细"
	if _, err := f.NewSheet(detail); err != nil {
		s.logger.Error("创建 Sheet 失败", zap.Error(err))
		return nil, "", ErrReportGenerateFail
	}
	headers := []string{"姓名", "邮箱", "状态", "进度(%)", "分配时间", "完成时间"}
	widths := []float64{18, 28, 12, 10, 22, 22}
	for i, h := range headers {
		col := colName(i)
		f.SetColWidth(detail, col, col, widths[i])
		f.SetCellValue(detail, cell(col, 1), h)
	}
	f.SetCellStyle(detail, "A1", cell(colName(len(headers)-1), 1), headerStyle)

	for i, l := range report.Learners {
		row := i + 2
		f.SetCellValue(detail, cell("A", row), l.FullName)
		f.SetCellValue(detail, cell("B", row), l.Email)
		f.SetCellValue(detail, cell("C", row), enrollmentStatusLabel(l.Status))
		f.SetCellValue(detail, cell("D", row), l.ProgressPercentage)
		f.SetCellValue(detail, cell("E", row), l.AssignedAt)
		completedAt := l.CompletedAt
		if completedAt == "" {
			completedAt = "-"
		}
		f.SetCellValue(detail, cell("F", row), completedAt)
	}

	buf := new(bytes.Buffer)
	if err := f.Write(buf); err != nil {
		s.logger.Error("写入 Excel 失败", zap.Error(err))
		return nil, "", ErrReportGenerateFail
	}

	filename := fmt.Sprintf("课程报表_%s.xlsx", report.Title)
	return buf, filename, nil
}

// ── 辅助函数 ──

func enrollmentStatusLabel(status string) string {
	switch status {
	case model.EnrollmentAssigned:
		return "未开始"
	case model.EnrollmentInProgress:
		return "学习中"
	case model.EnrollmentCompleted:
		return "已完成"
	}
	return status
}

func colName(idx int) string {
	name, _ := excelize.ColumnNumberToName(idx + 1)
	return name
}

func cell(col string, row int) string {
	return fmt.Sprintf("%s%d", col, row)
}
