package repository

import (
	"context"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"trainer-lms/internal/model"
)

// LeaderboardRepository 排行榜数据访问接口
type LeaderboardRepository interface {
	// Upsert 以 (user_id, course_id) 为冲突键写入积分
	Upsert(ctx context.Context, entry *model.LeaderboardEntry) error
	// ListByCourse 按总积分降序返回，预加载用户
	ListByCourse(ctx context.Context, courseID string) ([]model.LeaderboardEntry, error)
	UpdateRank(ctx context.Context, id string, rank int) error
}

type leaderboardRepo struct {
	db *gorm.DB
}

// NewLeaderboardRepo 创建 LeaderboardRepository 实例
func NewLeaderboardRepo(db *gorm.DB) LeaderboardRepository {
	return &leaderboardRepo{db: db}
}

func (r *leaderboardRepo) Upsert(ctx context.Context, entry *model.LeaderboardEntry) error {
	return r.db.WithContext(ctx).
		Omit(clause.Associations).
		Clauses(clause.OnConflict{
			Columns: []clause.Column{{Name: "user_id"}, {Name: "course_id"}},
			DoUpdates: clause.AssignmentColumns([]string{
				"total_points", "completed_units", "quiz_score_total", "activity_points", "updated_at",
			}),
		}).
		Create(entry).Error
}

func (r *leaderboardRepo) ListByCourse(ctx context.Context, courseID string) ([]model.LeaderboardEntry, error) {
	if !isUUID(courseID) {
		return nil, nil
	}
	var list []model.LeaderboardEntry
	err := r.db.WithContext(ctx).
		Preload("User").
		Where("course_id = ?", courseID).
		Order("total_points DESC, updated_at ASC").
		Find(&list).Error
	return list, err
}

func (r *leaderboardRepo) UpdateRank(ctx context.Context, id string, rank int) error {
	return r.db.WithContext(ctx).
		Model(&model.LeaderboardEntry{}).
		Where("id = ?", id).
		Update("rank", rank).Error
}
