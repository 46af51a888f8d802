package service

import (
	"encoding/json"

	"trainer-lms/internal/dto"
	"trainer-lms/internal/model"
)

// ── 模型到响应的转换 ──

func toUserResponse(u *model.User) dto.UserResponse {
	return dto.UserResponse{
		ID:          u.UserID,
		Username:    u.Username,
		Email:       u.Email,
		FullName:    u.FullName(),
		Role:        u.PrimaryRole,
		IsSuperuser: u.IsSuperuser,
		LastLogin:   formatTimePtr(u.LastLogin),
	}
}

func toUserBrief(u *model.User) *dto.UserBrief {
	if u == nil {
		return nil
	}
	return &dto.UserBrief{
		ID:       u.UserID,
		Username: u.Username,
		FullName: u.FullName(),
		Email:    u.Email,
	}
}

func toCourseResponse(c *model.Course) dto.CourseResponse {
	resp := dto.CourseResponse{
		ID:                     c.CourseID,
		Title:                  c.Title,
		Description:            c.Description,
		About:                  c.About,
		Outcomes:               c.Outcomes,
		CourseType:             c.CourseType,
		Status:                 c.Status,
		IsMandatory:            c.IsMandatory,
		EstimatedDurationHours: c.EstimatedDurationHours,
		PassingCriteria:        c.PassingCriteria,
		PublishedAt:            formatTimePtr(c.PublishedAt),
		Version:                c.Version,
		CreatedAt:              formatTime(c.CreatedAt),
		UpdatedAt:              formatTime(c.UpdatedAt),
	}
	if c.CreatedBy != nil {
		resp.CreatedBy = *c.CreatedBy
	}
	return resp
}

// reveal 为 nil 时按不可见处理
func toCourseDetailResponse(c *model.Course, reveal func(q *model.Quiz) bool) *dto.CourseDetailResponse {
	resp := &dto.CourseDetailResponse{CourseResponse: toCourseResponse(c)}
	resp.Units = make([]dto.UnitDetailResponse, 0, len(c.Units))
	for i := range c.Units {
		resp.Units = append(resp.Units, toUnitDetailResponse(&c.Units[i], reveal))
	}
	return resp
}

func toUnitResponse(u *model.Unit) dto.UnitResponse {
	return dto.UnitResponse{
		ID:                       u.UnitID,
		CourseID:                 u.CourseID,
		ModuleType:               u.ModuleType,
		Title:                    u.Title,
		Description:              u.Description,
		SequenceOrder:            u.SequenceOrder,
		IsMandatory:              u.IsMandatory,
		EstimatedDurationMinutes: u.EstimatedDurationMinutes,
		VideoCount:               u.VideoCount,
		HasQuizzes:               u.HasQuizzes,
		CreatedAt:                formatTime(u.CreatedAt),
		UpdatedAt:                formatTime(u.UpdatedAt),
	}
}

func toUnitDetailResponse(u *model.Unit, reveal func(q *model.Quiz) bool) dto.UnitDetailResponse {
	resp := dto.UnitDetailResponse{UnitResponse: toUnitResponse(u)}
	if content := unitContent(u); content != nil {
		resp.Content = content
	}
	if u.Quiz != nil {
		resp.Quiz = toQuizResponse(u.Quiz, reveal != nil && reveal(u.Quiz))
	}
	return resp
}

// unitContent 按单元类型取出已加载的内容子表
func unitContent(u *model.Unit) interface{} {
	switch u.ModuleType {
	case model.UnitTypeVideo:
		if u.Video != nil {
			return u.Video
		}
	case model.UnitTypeAudio:
		if u.Audio != nil {
			return u.Audio
		}
	case model.UnitTypePresentation:
		if u.Presentation != nil {
			return u.Presentation
		}
	case model.UnitTypeText:
		if u.Text != nil {
			return u.Text
		}
	case model.UnitTypePage:
		if u.Page != nil {
			return u.Page
		}
	case model.UnitTypeAssignment:
		if u.Assignment != nil {
			return u.Assignment
		}
	case model.UnitTypeScorm, model.UnitTypeXAPI:
		if u.Scorm != nil {
			return u.Scorm
		}
	case model.UnitTypeSurvey:
		if u.Survey != nil {
			return u.Survey
		}
	}
	return nil
}

// withAnswers 为 false 时不输出正确答案与解析
func toQuizResponse(q *model.Quiz, withAnswers bool) *dto.QuizResponse {
	resp := &dto.QuizResponse{
		ID:                  q.QuizID,
		UnitID:              q.UnitID,
		TimeLimitMinutes:    q.TimeLimitMinutes,
		PassingScore:        q.PassingScore,
		MaxAttempts:         q.MaxAttempts,
		RandomizeQuestions:  q.RandomizeQuestions,
		ShowCorrectAnswers:  q.ShowCorrectAnswers,
		MandatoryCompletion: q.MandatoryCompletion,
		Questions:           make([]dto.QuestionResponse, 0, len(q.Questions)),
	}
	for _, question := range q.Questions {
		item := dto.QuestionResponse{
			ID:           question.QuestionID,
			QuestionType: question.QuestionType,
			QuestionText: question.QuestionText,
			Options:      json.RawMessage(question.Options),
			Points:       question.Points,
			Order:        question.Order,
		}
		if withAnswers {
			item.CorrectAnswer = json.RawMessage(question.CorrectAnswer)
			item.Explanation = question.Explanation
		}
		resp.Questions = append(resp.Questions, item)
	}
	return resp
}

func toEnrollmentResponse(e *model.Enrollment) dto.EnrollmentResponse {
	resp := dto.EnrollmentResponse{
		ID:                 e.EnrollmentID,
		CourseID:           e.CourseID,
		User:               toUserBrief(e.User),
		Status:             e.Status,
		ProgressPercentage: e.ProgressPercentage,
		AssignedAt:         formatTime(e.AssignedAt),
		StartedAt:          formatTimePtr(e.StartedAt),
		CompletedAt:        formatTimePtr(e.CompletedAt),
	}
	if e.AssignedBy != nil {
		resp.AssignedBy = *e.AssignedBy
	}
	return resp
}

func toSubmissionResponse(s *model.AssignmentSubmission) *dto.SubmissionResponse {
	return &dto.SubmissionResponse{
		ID:          s.SubmissionID,
		UnitID:      s.UnitID,
		UserID:      s.UserID,
		Status:      s.Status,
		Content:     s.Content,
		FileURL:     s.FileURL,
		Score:       s.Score,
		Feedback:    s.Feedback,
		SubmittedAt: formatTime(s.SubmittedAt),
		GradedAt:    formatTimePtr(s.GradedAt),
	}
}
