package cli

import (
	"errors"
	"fmt"

	"github.com/spf13/cobra"

	"trainer-lms/internal/dto"
)

func newAssignCmd(app *App) *cobra.Command {
	var courseID, actorRef string
	var userIDs, teamIDs []string

	cmd := &cobra.Command{
		Use:   "assign",
		Short: "将课程分配给用户与团队成员",
		RunE: func(cmd *cobra.Command, args []string) error {
			if len(userIDs) == 0 && len(teamIDs) == 0 {
				return errors.New("至少指定一个 --user 或 --team")
			}
			ctx := cmd.Context()

			actor, err := app.Directory.ResolveActor(ctx, actorRef)
			if err != nil {
				return err
			}

			result, err := app.Enrollment.Assign(ctx, courseID, &dto.AssignCourseRequest{
				UserIDs: userIDs,
				TeamIDs: teamIDs,
			}, actor)
			if err != nil {
				return err
			}

			fmt.Fprintf(cmd.OutOrStdout(), "created: %d, skipped: %d, failed: %d\n",
				result.Created, result.Skipped, result.Failed)
			return nil
		},
	}

	cmd.Flags().StringVar(&courseID, "course", "", "课程 ID")
	cmd.Flags().StringSliceVar(&userIDs, "user", nil, "用户 ID，可重复或逗号分隔")
	cmd.Flags().StringSliceVar(&teamIDs, "team", nil, "团队 ID，可重复或逗号分隔")
	cmd.Flags().StringVar(&actorRef, "actor", "", "操作者用户 ID 或邮箱（默认系统身份）")
	_ = cmd.MarkFlagRequired("course")

	return cmd
}

func newListUnitsCmd(app *App) *cobra.Command {
	var courseID, actorRef string

	cmd := &cobra.Command{
		Use:   "list-units",
		Short: "按顺序列出课程单元",
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			out := cmd.OutOrStdout()

			actor, err := app.Directory.ResolveActor(ctx, actorRef)
			if err != nil {
				return err
			}

			units, err := app.Units.ListByCourse(ctx, courseID, actor)
			if err != nil {
				return err
			}

			maxSeq := -1
			for _, u := range units {
				fmt.Fprintf(out, "%s\t%s\t%d\n", u.ID, u.Title, u.SequenceOrder)
				if u.SequenceOrder > maxSeq {
					maxSeq = u.SequenceOrder
				}
			}
			if maxSeq < 0 {
				fmt.Fprintln(out, "max_seq: -")
				return nil
			}
			fmt.Fprintf(out, "max_seq: %d\n", maxSeq)
			return nil
		},
	}

	cmd.Flags().StringVar(&courseID, "course", "", "课程 ID")
	cmd.Flags().StringVar(&actorRef, "actor", "", "以该用户身份查看（默认系统身份）")
	_ = cmd.MarkFlagRequired("course")

	return cmd
}
