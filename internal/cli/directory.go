package cli

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"

	"go.uber.org/zap"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"

	"trainer-lms/internal/model"
	"trainer-lms/internal/repository"
	"trainer-lms/internal/service"
	"trainer-lms/pkg/database"
)

// SystemActor 未指定 --actor 时使用的系统身份
var SystemActor = service.Actor{Role: model.RoleAdmin, IsSuperuser: true}

type repoDirectory struct {
	repo *repository.Repository
}

// NewDirectory 基于仓储的用户目录
func NewDirectory(repo *repository.Repository) Directory {
	return &repoDirectory{repo: repo}
}

func (d *repoDirectory) ResolveActor(ctx context.Context, ref string) (service.Actor, error) {
	ref = strings.TrimSpace(ref)
	if ref == "" {
		return SystemActor, nil
	}

	var (
		user *model.User
		err  error
	)
	if strings.Contains(ref, "@") {
		user, err = d.repo.User.GetByEmail(ctx, ref)
	} else {
		user, err = d.repo.User.GetByID(ctx, ref)
	}
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return service.Actor{}, fmt.Errorf("操作者 %s 不存在", ref)
	}
	if err != nil {
		return service.Actor{}, fmt.Errorf("查询操作者失败: %w", err)
	}

	return service.Actor{
		UserID:      user.UserID,
		Role:        user.PrimaryRole,
		IsSuperuser: user.IsSuperuser,
	}, nil
}

func (d *repoDirectory) EnsureLearner(ctx context.Context, email, password string) (string, bool, error) {
	existing, err := d.repo.User.GetByEmail(ctx, email)
	if err == nil {
		return existing.UserID, false, nil
	}
	if !errors.Is(err, gorm.ErrRecordNotFound) {
		return "", false, fmt.Errorf("查询用户失败: %w", err)
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return "", false, fmt.Errorf("密码加密失败: %w", err)
	}

	local := strings.SplitN(email, "@", 2)[0]
	user := &model.User{
		Username:     local,
		Email:        email,
		FirstName:    capitalize(local),
		LastName:     "Learner",
		PasswordHash: string(hash),
		PrimaryRole:  model.RoleTrainee,
		IsActive:     true,
	}
	if err := d.repo.User.Create(ctx, user); err != nil {
		return "", false, fmt.Errorf("创建用户失败: %w", err)
	}
	return user.UserID, true, nil
}

func capitalize(s string) string {
	if s == "" {
		return s
	}
	return strings.ToUpper(s[:1]) + s[1:]
}

type sqlMigrator struct {
	db     *sql.DB
	logger *zap.Logger
}

// NewMigrator 基于内嵌迁移文件的 Migrator
func NewMigrator(db *sql.DB, logger *zap.Logger) Migrator {
	return &sqlMigrator{db: db, logger: logger}
}

func (m *sqlMigrator) Up() error {
	return database.RunMigrations(m.db, m.logger)
}

func (m *sqlMigrator) Down(steps int) error {
	return database.RollbackMigrations(m.db, steps, m.logger)
}
