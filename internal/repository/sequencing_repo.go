package repository

import (
	"context"

	"gorm.io/gorm"

	"trainer-lms/internal/model"
)

// SequencingRepository 单元排序规则数据访问接口
type SequencingRepository interface {
	// ListByCourse 按被约束单元的 sequence_order 升序返回规则
	ListByCourse(ctx context.Context, courseID string) ([]model.ModuleSequencing, error)
	DeleteByCourse(ctx context.Context, courseID string) error
	BatchCreate(ctx context.Context, rules []model.ModuleSequencing) error
}

type sequencingRepo struct {
	db *gorm.DB
}

// NewSequencingRepo 创建 SequencingRepository 实例
func NewSequencingRepo(db *gorm.DB) SequencingRepository {
	return &sequencingRepo{db: db}
}

func (r *sequencingRepo) ListByCourse(ctx context.Context, courseID string) ([]model.ModuleSequencing, error) {
	if !isUUID(courseID) {
		return nil, nil
	}
	var rules []model.ModuleSequencing
	err := r.db.WithContext(ctx).
		Select("module_sequencing.*").
		Joins("JOIN modules ON modules.module_id = module_sequencing.module_id").
		Where("module_sequencing.course_id = ?", courseID).
		Order("modules.sequence_order ASC").
		Find(&rules).Error
	return rules, err
}

func (r *sequencingRepo) DeleteByCourse(ctx context.Context, courseID string) error {
	return r.db.WithContext(ctx).
		Where("course_id = ?", courseID).
		Delete(&model.ModuleSequencing{}).Error
}

func (r *sequencingRepo) BatchCreate(ctx context.Context, rules []model.ModuleSequencing) error {
	if len(rules) == 0 {
		return nil
	}
	return r.db.WithContext(ctx).Create(&rules).Error
}
