package repository

import (
	"context"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"trainer-lms/internal/model"
	pkgerrors "trainer-lms/pkg/errors"
)

// CourseRepository 课程数据访问接口
type CourseRepository interface {
	Create(ctx context.Context, course *model.Course) error
	GetByID(ctx context.Context, id string) (*model.Course, error)
	// GetByIDForUpdate 对课程行加 FOR UPDATE 锁，串行化同一课程下的单元排位
	// 必须在事务连接上调用（通过 Repository.WithTx 注入）
	GetByIDForUpdate(ctx context.Context, id string) (*model.Course, error)
	// GetDetail 预加载按 sequence_order 排序的单元及其内容、测验题目
	GetDetail(ctx context.Context, id string) (*model.Course, error)
	ListByCreator(ctx context.Context, userID string) ([]model.Course, error)
	ListByLearner(ctx context.Context, userID string) ([]model.Course, error)
	ListAll(ctx context.Context) ([]model.Course, error)
	// Update 乐观锁更新，版本不一致时返回 ErrOptimisticLock
	Update(ctx context.Context, course *model.Course) error
}

type courseRepo struct {
	db *gorm.DB
}

// NewCourseRepo 创建 CourseRepository 实例
func NewCourseRepo(db *gorm.DB) CourseRepository {
	return &courseRepo{db: db}
}

func (r *courseRepo) Create(ctx context.Context, course *model.Course) error {
	return r.db.WithContext(ctx).Omit(clause.Associations).Create(course).Error
}

func (r *courseRepo) GetByID(ctx context.Context, id string) (*model.Course, error) {
	if !isUUID(id) {
		return nil, gorm.ErrRecordNotFound
	}
	var course model.Course
	err := r.db.WithContext(ctx).
		Where("course_id = ?", id).
		First(&course).Error
	if err != nil {
		return nil, err
	}
	return &course, nil
}

func (r *courseRepo) GetByIDForUpdate(ctx context.Context, id string) (*model.Course, error) {
	if !isUUID(id) {
		return nil, gorm.ErrRecordNotFound
	}
	var course model.Course
	err := r.db.WithContext(ctx).
		Clauses(clause.Locking{Strength: "UPDATE"}).
		Where("course_id = ?", id).
		First(&course).Error
	if err != nil {
		return nil, err
	}
	return &course, nil
}

func (r *courseRepo) GetDetail(ctx context.Context, id string) (*model.Course, error) {
	if !isUUID(id) {
		return nil, gorm.ErrRecordNotFound
	}
	var course model.Course
	err := r.db.WithContext(ctx).
		Preload("Units", func(db *gorm.DB) *gorm.DB {
			return db.Order("sequence_order ASC")
		}).
		Preload("Units.Video").
		Preload("Units.Audio").
		Preload("Units.Presentation").
		Preload("Units.Text").
		Preload("Units.Page").
		Preload("Units.Assignment").
		Preload("Units.Scorm").
		Preload("Units.Survey").
		Preload("Units.Quiz.Questions", func(db *gorm.DB) *gorm.DB {
			return db.Order("sort_order ASC")
		}).
		Where("course_id = ?", id).
		First(&course).Error
	if err != nil {
		return nil, err
	}
	return &course, nil
}

func (r *courseRepo) ListByCreator(ctx context.Context, userID string) ([]model.Course, error) {
	var courses []model.Course
	err := r.db.WithContext(ctx).
		Where("created_by = ?", userID).
		Order("created_at DESC").
		Find(&courses).Error
	return courses, err
}

func (r *courseRepo) ListByLearner(ctx context.Context, userID string) ([]model.Course, error) {
	var courses []model.Course
	err := r.db.WithContext(ctx).
		Joins("JOIN enrollments ON enrollments.course_id = courses.course_id").
		Where("enrollments.user_id = ? AND courses.status = ?", userID, model.CourseStatusPublished).
		Order("enrollments.assigned_at DESC").
		Find(&courses).Error
	return courses, err
}

func (r *courseRepo) ListAll(ctx context.Context) ([]model.Course, error) {
	var courses []model.Course
	err := r.db.WithContext(ctx).
		Order("created_at DESC").
		Find(&courses).Error
	return courses, err
}

func (r *courseRepo) Update(ctx context.Context, course *model.Course) error {
	oldVersion := course.Version
	result := r.db.WithContext(ctx).
		Model(&model.Course{}).
		Where("course_id = ? AND version = ?", course.CourseID, oldVersion).
		Updates(map[string]interface{}{
			"title":                    course.Title,
			"description":              course.Description,
			"about":                    course.About,
			"outcomes":                 course.Outcomes,
			"course_type":              course.CourseType,
			"status":                   course.Status,
			"is_mandatory":             course.IsMandatory,
			"estimated_duration_hours": course.EstimatedDurationHours,
			"passing_criteria":         course.PassingCriteria,
			"published_at":             course.PublishedAt,
			"updated_at":               gorm.Expr("NOW()"),
			"version":                  oldVersion + 1,
		})
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return pkgerrors.ErrOptimisticLock
	}
	course.Version = oldVersion + 1
	return nil
}
