package repository

import (
	"context"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"trainer-lms/internal/model"
)

// UnitRepository 课程单元数据访问接口
type UnitRepository interface {
	Create(ctx context.Context, unit *model.Unit) error
	GetByID(ctx context.Context, id string) (*model.Unit, error)
	// GetWithContent 预加载单元内容子表与测验题目
	GetWithContent(ctx context.Context, id string) (*model.Unit, error)
	// ListByCourse 按 sequence_order 升序返回课程单元
	ListByCourse(ctx context.Context, courseID string) ([]model.Unit, error)
	// MaxSequenceOrder 返回课程内最大排序位置，无单元时返回 -1
	MaxSequenceOrder(ctx context.Context, courseID string) (int, error)
	// PositionTaken 判断排序位置是否已被其他单元占用，excludeID 为空表示不排除
	PositionTaken(ctx context.Context, courseID string, position int, excludeID string) (bool, error)
	Update(ctx context.Context, unit *model.Unit) error
	Delete(ctx context.Context, id string) error
}

type unitRepo struct {
	db *gorm.DB
}

// NewUnitRepo 创建 UnitRepository 实例
func NewUnitRepo(db *gorm.DB) UnitRepository {
	return &unitRepo{db: db}
}

func (r *unitRepo) Create(ctx context.Context, unit *model.Unit) error {
	return r.db.WithContext(ctx).Omit(clause.Associations).Create(unit).Error
}

func (r *unitRepo) GetByID(ctx context.Context, id string) (*model.Unit, error) {
	if !isUUID(id) {
		return nil, gorm.ErrRecordNotFound
	}
	var unit model.Unit
	err := r.db.WithContext(ctx).
		Where("module_id = ?", id).
		First(&unit).Error
	if err != nil {
		return nil, err
	}
	return &unit, nil
}

func (r *unitRepo) GetWithContent(ctx context.Context, id string) (*model.Unit, error) {
	if !isUUID(id) {
		return nil, gorm.ErrRecordNotFound
	}
	var unit model.Unit
	err := r.db.WithContext(ctx).
		Preload("Video").
		Preload("Audio").
		Preload("Presentation").
		Preload("Text").
		Preload("Page").
		Preload("Assignment").
		Preload("Scorm").
		Preload("Survey").
		Preload("Quiz.Questions", func(db *gorm.DB) *gorm.DB {
			return db.Order("sort_order ASC")
		}).
		Where("module_id = ?", id).
		First(&unit).Error
	if err != nil {
		return nil, err
	}
	return &unit, nil
}

func (r *unitRepo) ListByCourse(ctx context.Context, courseID string) ([]model.Unit, error) {
	if !isUUID(courseID) {
		return nil, nil
	}
	var units []model.Unit
	err := r.db.WithContext(ctx).
		Where("course_id = ?", courseID).
		Order("sequence_order ASC").
		Find(&units).Error
	return units, err
}

func (r *unitRepo) MaxSequenceOrder(ctx context.Context, courseID string) (int, error) {
	var maxOrder int
	err := r.db.WithContext(ctx).
		Model(&model.Unit{}).
		Where("course_id = ?", courseID).
		Select("COALESCE(MAX(sequence_order), -1)").
		Scan(&maxOrder).Error
	return maxOrder, err
}

func (r *unitRepo) PositionTaken(ctx context.Context, courseID string, position int, excludeID string) (bool, error) {
	var count int64
	db := r.db.WithContext(ctx).
		Model(&model.Unit{}).
		Where("course_id = ? AND sequence_order = ?", courseID, position)
	if excludeID != "" {
		db = db.Where("module_id <> ?", excludeID)
	}
	if err := db.Count(&count).Error; err != nil {
		return false, err
	}
	return count > 0, nil
}

func (r *unitRepo) Update(ctx context.Context, unit *model.Unit) error {
	return r.db.WithContext(ctx).
		Model(&model.Unit{}).
		Where("module_id = ?", unit.UnitID).
		Updates(map[string]interface{}{
			"module_type":                unit.ModuleType,
			"title":                      unit.Title,
			"description":                unit.Description,
			"sequence_order":             unit.SequenceOrder,
			"is_mandatory":               unit.IsMandatory,
			"estimated_duration_minutes": unit.EstimatedDurationMinutes,
			"video_count":                unit.VideoCount,
			"has_quizzes":                unit.HasQuizzes,
			"updated_at":                 gorm.Expr("NOW()"),
		}).Error
}

func (r *unitRepo) Delete(ctx context.Context, id string) error {
	return r.db.WithContext(ctx).
		Where("module_id = ?", id).
		Delete(&model.Unit{}).Error
}
