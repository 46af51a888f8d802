package handler

import "trainer-lms/internal/service"

// Handler 所有 Handler 的聚合入口
type Handler struct {
	Auth       *AuthHandler
	Course     *CourseHandler
	Unit       *UnitHandler
	Sequence   *SequenceHandler
	Enrollment *EnrollmentHandler
	Team       *TeamHandler
	Progress   *ProgressHandler
	Report     *ReportHandler
}

// NewHandler 创建 Handler 聚合
func NewHandler(svc *service.Service) *Handler {
	return &Handler{
		Auth:       NewAuthHandler(svc.Auth),
		Course:     NewCourseHandler(svc.Course),
		Unit:       NewUnitHandler(svc.Unit),
		Sequence:   NewSequenceHandler(svc.Sequencing),
		Enrollment: NewEnrollmentHandler(svc.Enrollment),
		Team:       NewTeamHandler(svc.Team),
		Progress:   NewProgressHandler(svc.Progress),
		Report:     NewReportHandler(svc.Report),
	}
}
