package cli

import (
	"context"
	"errors"
	"fmt"
	"io"

	"github.com/spf13/cobra"

	"trainer-lms/internal/dto"
	"trainer-lms/internal/service"
)

// 演示数据
var (
	seedLearners = []string{"alice@example.com", "bob@example.com", "carol@example.com"}
	seedTeams    = []struct{ name, description string }{
		{"Team Alpha", "Alpha team"},
		{"Team Beta", "Beta team"},
	}
)

func newSeedTeamsCmd(app *App) *cobra.Command {
	var actorRef, password string

	cmd := &cobra.Command{
		Use:   "seed-teams",
		Short: "写入演示学员、团队与成员（可重复执行）",
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			actor, err := app.Directory.ResolveActor(ctx, actorRef)
			if err != nil {
				return err
			}
			return seedTeamData(ctx, app, actor, password, cmd.OutOrStdout())
		},
	}

	cmd.Flags().StringVar(&actorRef, "actor", "", "操作者用户 ID 或邮箱（默认系统身份）")
	cmd.Flags().StringVar(&password, "password", "password", "新建学员的初始密码")

	return cmd
}

func seedTeamData(ctx context.Context, app *App, actor service.Actor, password string, out io.Writer) error {
	learnerIDs := make([]string, 0, len(seedLearners))
	for _, email := range seedLearners {
		id, created, err := app.Directory.EnsureLearner(ctx, email, password)
		if err != nil {
			return err
		}
		if created {
			fmt.Fprintln(out, "已创建用户", email)
		} else {
			fmt.Fprintln(out, "用户已存在", email)
		}
		learnerIDs = append(learnerIDs, id)
	}

	teamIDs := make([]string, 0, len(seedTeams))
	for _, t := range seedTeams {
		id, err := ensureTeam(ctx, app, actor, t.name, t.description)
		if err != nil {
			return err
		}
		teamIDs = append(teamIDs, id)
	}
	fmt.Fprintln(out, "团队已就绪:", teamIDs[0], teamIDs[1])

	// 全部学员加入 Alpha，最后一位以主团队身份加入 Beta
	alpha, err := app.Teams.AddMembers(ctx, teamIDs[0], &dto.AddTeamMembersRequest{UserIDs: learnerIDs}, actor)
	if err != nil {
		return fmt.Errorf("添加 %s 成员失败: %w", seedTeams[0].name, err)
	}
	beta, err := app.Teams.AddMembers(ctx, teamIDs[1], &dto.AddTeamMembersRequest{
		UserIDs:       learnerIDs[len(learnerIDs)-1:],
		IsPrimaryTeam: true,
	}, actor)
	if err != nil {
		return fmt.Errorf("添加 %s 成员失败: %w", seedTeams[1].name, err)
	}

	fmt.Fprintf(out, "%s: 新增 %d，已存在 %d\n", seedTeams[0].name, alpha.Added, alpha.Skipped)
	fmt.Fprintf(out, "%s: 新增 %d，已存在 %d\n", seedTeams[1].name, beta.Added, beta.Skipped)
	fmt.Fprintln(out, "演示数据写入完成")
	return nil
}

// ensureTeam 按名称查找团队，不存在时创建
func ensureTeam(ctx context.Context, app *App, actor service.Actor, name, description string) (string, error) {
	desc := description
	team, err := app.Teams.Create(ctx, &dto.CreateTeamRequest{TeamName: name, Description: &desc}, actor)
	if err == nil {
		return team.ID, nil
	}
	if !errors.Is(err, service.ErrTeamNameExists) {
		return "", fmt.Errorf("创建团队 %s 失败: %w", name, err)
	}

	teams, err := app.Teams.List(ctx)
	if err != nil {
		return "", err
	}
	for _, t := range teams {
		if t.TeamName == name {
			return t.ID, nil
		}
	}
	return "", fmt.Errorf("团队 %s 已存在但不可用", name)
}

func newVerifyTeamsCmd(app *App) *cobra.Command {
	return &cobra.Command{
		Use:   "verify-teams",
		Short: "打印团队及其成员",
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			out := cmd.OutOrStdout()

			teams, err := app.Teams.List(ctx)
			if err != nil {
				return err
			}
			if len(teams) == 0 {
				fmt.Fprintln(out, "暂无团队")
				return nil
			}

			for _, t := range teams {
				fmt.Fprintf(out, "team: %s\t%s\t成员 %d\n", t.ID, t.TeamName, t.MemberCount)
				members, err := app.Teams.ListMembers(ctx, t.ID)
				if err != nil {
					return err
				}
				for _, m := range members {
					primary := ""
					if m.IsPrimaryTeam {
						primary = "\t主团队"
					}
					fmt.Fprintf(out, "  member: %s\t%s%s\n", m.UserID, m.Email, primary)
				}
			}
			return nil
		},
	}
}
