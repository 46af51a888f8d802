package cli

import (
	"context"

	"github.com/spf13/cobra"

	"trainer-lms/internal/service"
)

// App 命令行依赖的服务集合
type App struct {
	Teams      service.TeamService
	Enrollment service.EnrollmentService
	Units      service.UnitService
	Directory  Directory
	Migrator   Migrator
}

// Directory 用户目录：解析操作者身份、补齐演示学员
type Directory interface {
	// ResolveActor 按用户 ID 或邮箱构造操作者，空串返回系统管理员身份
	ResolveActor(ctx context.Context, ref string) (service.Actor, error)
	// EnsureLearner 邮箱不存在时创建学员账号
	EnsureLearner(ctx context.Context, email, password string) (userID string, created bool, err error)
}

// Migrator 数据库迁移
type Migrator interface {
	Up() error
	Down(steps int) error
}

// NewRootCmd 创建 lmsctl 根命令并注册全部子命令
func NewRootCmd(app *App) *cobra.Command {
	root := &cobra.Command{
		Use:           "lmsctl",
		Short:         "培训平台运维命令行",
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	root.AddCommand(
		newMigrateCmd(app),
		newSeedTeamsCmd(app),
		newVerifyTeamsCmd(app),
		newAssignCmd(app),
		newListUnitsCmd(app),
	)

	return root
}
