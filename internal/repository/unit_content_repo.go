package repository

import (
	"context"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// UnitContentRepository 单元内容子表数据访问接口
// content 为 model 包中的内容子表指针（*model.VideoUnit 等），以 module_id 为冲突键
type UnitContentRepository interface {
	Upsert(ctx context.Context, content interface{}) error
}

type unitContentRepo struct {
	db *gorm.DB
}

// NewUnitContentRepo 创建 UnitContentRepository 实例
func NewUnitContentRepo(db *gorm.DB) UnitContentRepository {
	return &unitContentRepo{db: db}
}

func (r *unitContentRepo) Upsert(ctx context.Context, content interface{}) error {
	return r.db.WithContext(ctx).
		Clauses(clause.OnConflict{
			Columns:   []clause.Column{{Name: "module_id"}},
			UpdateAll: true,
		}).
		Create(content).Error
}
