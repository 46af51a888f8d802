package repository

import (
	"context"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"trainer-lms/internal/model"
)

// EnrollmentRepository 选课记录数据访问接口
type EnrollmentRepository interface {
	GetByID(ctx context.Context, id string) (*model.Enrollment, error)
	GetByCourseAndUser(ctx context.Context, courseID, userID string) (*model.Enrollment, error)
	// EnrolledUserIDs 返回 userIDs 中已报名该课程的用户集合
	EnrolledUserIDs(ctx context.Context, courseID string, userIDs []string) (map[string]bool, error)
	// CreateIfAbsent 插入选课记录，(course_id, user_id) 已存在时不做任何修改并返回 false
	CreateIfAbsent(ctx context.Context, enrollment *model.Enrollment) (bool, error)
	// BatchCreateIfAbsent 批量插入并忽略已存在的记录，返回实际新增数量
	BatchCreateIfAbsent(ctx context.Context, enrollments []model.Enrollment) (int64, error)
	// ListByCourse 预加载学员信息，按报名时间升序
	ListByCourse(ctx context.Context, courseID string) ([]model.Enrollment, error)
	ListByUser(ctx context.Context, userID string) ([]model.Enrollment, error)
	// CountByStatus 统计课程各状态的选课数
	CountByStatus(ctx context.Context, courseID string) (map[string]int64, error)
	UpdateProgress(ctx context.Context, enrollment *model.Enrollment) error
}

type enrollmentRepo struct {
	db *gorm.DB
}

// NewEnrollmentRepo 创建 EnrollmentRepository 实例
func NewEnrollmentRepo(db *gorm.DB) EnrollmentRepository {
	return &enrollmentRepo{db: db}
}

var enrollmentConflict = clause.OnConflict{
	Columns:   []clause.Column{{Name: "course_id"}, {Name: "user_id"}},
	DoNothing: true,
}

func (r *enrollmentRepo) GetByID(ctx context.Context, id string) (*model.Enrollment, error) {
	if !isUUID(id) {
		return nil, gorm.ErrRecordNotFound
	}
	var e model.Enrollment
	err := r.db.WithContext(ctx).
		Where("id = ?", id).
		First(&e).Error
	if err != nil {
		return nil, err
	}
	return &e, nil
}

func (r *enrollmentRepo) GetByCourseAndUser(ctx context.Context, courseID, userID string) (*model.Enrollment, error) {
	if !isUUID(courseID) || !isUUID(userID) {
		return nil, gorm.ErrRecordNotFound
	}
	var e model.Enrollment
	err := r.db.WithContext(ctx).
		Where("course_id = ? AND user_id = ?", courseID, userID).
		First(&e).Error
	if err != nil {
		return nil, err
	}
	return &e, nil
}

func (r *enrollmentRepo) EnrolledUserIDs(ctx context.Context, courseID string, userIDs []string) (map[string]bool, error) {
	result := make(map[string]bool)
	userIDs = validUUIDs(userIDs)
	if len(userIDs) == 0 {
		return result, nil
	}

	var ids []string
	err := r.db.WithContext(ctx).
		Model(&model.Enrollment{}).
		Where("course_id = ? AND user_id IN ?", courseID, userIDs).
		Pluck("user_id", &ids).Error
	if err != nil {
		return nil, err
	}
	for _, id := range ids {
		result[id] = true
	}
	return result, nil
}

func (r *enrollmentRepo) CreateIfAbsent(ctx context.Context, enrollment *model.Enrollment) (bool, error) {
	result := r.db.WithContext(ctx).
		Omit(clause.Associations).
		Clauses(enrollmentConflict).
		Create(enrollment)
	if result.Error != nil {
		return false, result.Error
	}
	return result.RowsAffected == 1, nil
}

func (r *enrollmentRepo) BatchCreateIfAbsent(ctx context.Context, enrollments []model.Enrollment) (int64, error) {
	if len(enrollments) == 0 {
		return 0, nil
	}
	result := r.db.WithContext(ctx).
		Omit(clause.Associations).
		Clauses(enrollmentConflict).
		Create(&enrollments)
	if result.Error != nil {
		return 0, result.Error
	}
	return result.RowsAffected, nil
}

func (r *enrollmentRepo) ListByCourse(ctx context.Context, courseID string) ([]model.Enrollment, error) {
	if !isUUID(courseID) {
		return nil, nil
	}
	var list []model.Enrollment
	err := r.db.WithContext(ctx).
		Preload("User").
		Where("course_id = ?", courseID).
		Order("assigned_at ASC").
		Find(&list).Error
	return list, err
}

func (r *enrollmentRepo) ListByUser(ctx context.Context, userID string) ([]model.Enrollment, error) {
	var list []model.Enrollment
	err := r.db.WithContext(ctx).
		Preload("Course").
		Where("user_id = ?", userID).
		Order("assigned_at DESC").
		Find(&list).Error
	return list, err
}

func (r *enrollmentRepo) CountByStatus(ctx context.Context, courseID string) (map[string]int64, error) {
	var rows []struct {
		Status string
		Total  int64
	}
	err := r.db.WithContext(ctx).
		Model(&model.Enrollment{}).
		Select("status, COUNT(*) AS total").
		Where("course_id = ?", courseID).
		Group("status").
		Scan(&rows).Error
	if err != nil {
		return nil, err
	}

	counts := make(map[string]int64, len(rows))
	for _, row := range rows {
		counts[row.Status] = row.Total
	}
	return counts, nil
}

func (r *enrollmentRepo) UpdateProgress(ctx context.Context, enrollment *model.Enrollment) error {
	return r.db.WithContext(ctx).
		Model(&model.Enrollment{}).
		Where("id = ?", enrollment.EnrollmentID).
		Updates(map[string]interface{}{
			"status":              enrollment.Status,
			"progress_percentage": enrollment.ProgressPercentage,
			"started_at":          enrollment.StartedAt,
			"completed_at":        enrollment.CompletedAt,
		}).Error
}
