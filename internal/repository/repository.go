package repository

import (
	"context"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// Repository 所有 Repository 的聚合入口
type Repository struct {
	db *gorm.DB

	User        UserRepository
	Course      CourseRepository
	Unit        UnitRepository
	UnitContent UnitContentRepository
	Quiz        QuizRepository
	Sequencing  SequencingRepository
	Enrollment  EnrollmentRepository
	Team        TeamRepository
	Progress    ProgressRepository
	Leaderboard LeaderboardRepository
}

// NewRepository 创建 Repository 聚合
func NewRepository(db *gorm.DB) *Repository {
	return &Repository{
		db:          db,
		User:        NewUserRepo(db),
		Course:      NewCourseRepo(db),
		Unit:        NewUnitRepo(db),
		UnitContent: NewUnitContentRepo(db),
		Quiz:        NewQuizRepo(db),
		Sequencing:  NewSequencingRepo(db),
		Enrollment:  NewEnrollmentRepo(db),
		Team:        NewTeamRepo(db),
		Progress:    NewProgressRepo(db),
		Leaderboard: NewLeaderboardRepo(db),
	}
}

// BeginTx 开启事务
// 未绑定数据库连接（单元测试注入 mock）时返回 nil 事务，调用方按无事务执行
func (r *Repository) BeginTx(ctx context.Context) (*gorm.DB, error) {
	if r.db == nil {
		return nil, nil
	}
	tx := r.db.WithContext(ctx).Begin()
	if tx.Error != nil {
		return nil, tx.Error
	}
	return tx, nil
}

// WithTx 返回绑定到事务连接的 Repository 副本
func (r *Repository) WithTx(tx *gorm.DB) *Repository {
	if tx == nil {
		return r
	}
	return NewRepository(tx)
}

// validUUIDs 过滤非法 UUID，避免 PostgreSQL 类型转换报错
func validUUIDs(ids []string) []string {
	out := make([]string, 0, len(ids))
	for _, id := range ids {
		if isUUID(id) {
			out = append(out, id)
		}
	}
	return out
}

func isUUID(id string) bool {
	_, err := uuid.Parse(id)
	return err == nil
}
