package repository

import (
	"context"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"trainer-lms/internal/model"
)

// TeamRepository 团队与成员数据访问接口
type TeamRepository interface {
	Create(ctx context.Context, team *model.Team) error
	GetByID(ctx context.Context, id string) (*model.Team, error)
	GetByName(ctx context.Context, name string) (*model.Team, error)
	List(ctx context.Context, activeOnly bool) ([]model.Team, error)
	// AddMember 添加成员，已是成员时返回 false
	AddMember(ctx context.Context, member *model.TeamMember) (bool, error)
	ListMembers(ctx context.Context, teamID string) ([]model.TeamMember, error)
	// MemberUserIDs 按加入顺序返回成员用户 ID，团队不存在时返回空
	MemberUserIDs(ctx context.Context, teamID string) ([]string, error)
	CountMembers(ctx context.Context, teamID string) (int64, error)
}

type teamRepo struct {
	db *gorm.DB
}

// NewTeamRepo 创建 TeamRepository 实例
func NewTeamRepo(db *gorm.DB) TeamRepository {
	return &teamRepo{db: db}
}

func (r *teamRepo) Create(ctx context.Context, team *model.Team) error {
	return r.db.WithContext(ctx).Create(team).Error
}

func (r *teamRepo) GetByID(ctx context.Context, id string) (*model.Team, error) {
	if !isUUID(id) {
		return nil, gorm.ErrRecordNotFound
	}
	var team model.Team
	err := r.db.WithContext(ctx).
		Where("team_id = ?", id).
		First(&team).Error
	if err != nil {
		return nil, err
	}
	return &team, nil
}

func (r *teamRepo) GetByName(ctx context.Context, name string) (*model.Team, error) {
	var team model.Team
	err := r.db.WithContext(ctx).
		Where("team_name = ?", name).
		First(&team).Error
	if err != nil {
		return nil, err
	}
	return &team, nil
}

func (r *teamRepo) List(ctx context.Context, activeOnly bool) ([]model.Team, error) {
	var teams []model.Team
	db := r.db.WithContext(ctx)
	if activeOnly {
		db = db.Where("is_active = ?", true)
	}
	err := db.Order("team_name ASC").Find(&teams).Error
	return teams, err
}

func (r *teamRepo) AddMember(ctx context.Context, member *model.TeamMember) (bool, error) {
	result := r.db.WithContext(ctx).
		Omit(clause.Associations).
		Clauses(clause.OnConflict{
			Columns:   []clause.Column{{Name: "team_id"}, {Name: "user_id"}},
			DoNothing: true,
		}).
		Create(member)
	if result.Error != nil {
		return false, result.Error
	}
	return result.RowsAffected == 1, nil
}

func (r *teamRepo) ListMembers(ctx context.Context, teamID string) ([]model.TeamMember, error) {
	if !isUUID(teamID) {
		return nil, nil
	}
	var members []model.TeamMember
	err := r.db.WithContext(ctx).
		Preload("User").
		Where("team_id = ?", teamID).
		Order("assigned_at ASC").
		Find(&members).Error
	return members, err
}

func (r *teamRepo) MemberUserIDs(ctx context.Context, teamID string) ([]string, error) {
	if !isUUID(teamID) {
		return nil, nil
	}
	var ids []string
	err := r.db.WithContext(ctx).
		Model(&model.TeamMember{}).
		Where("team_id = ?", teamID).
		Order("assigned_at ASC, id ASC").
		Pluck("user_id", &ids).Error
	return ids, err
}

func (r *teamRepo) CountMembers(ctx context.Context, teamID string) (int64, error) {
	var count int64
	err := r.db.WithContext(ctx).
		Model(&model.TeamMember{}).
		Where("team_id = ?", teamID).
		Count(&count).Error
	return count, err
}
