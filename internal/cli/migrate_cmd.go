package cli

import (
	"errors"
	"fmt"

	"github.com/spf13/cobra"
)

func newMigrateCmd(app *App) *cobra.Command {
	var down int

	cmd := &cobra.Command{
		Use:   "migrate",
		Short: "执行数据库迁移（--down N 回退 N 步）",
		RunE: func(cmd *cobra.Command, args []string) error {
			if app.Migrator == nil {
				return errors.New("未配置数据库迁移")
			}
			if down > 0 {
				if err := app.Migrator.Down(down); err != nil {
					return err
				}
				fmt.Fprintf(cmd.OutOrStdout(), "已回退 %d 步迁移\n", down)
				return nil
			}
			if err := app.Migrator.Up(); err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), "迁移完成")
			return nil
		},
	}

	cmd.Flags().IntVar(&down, "down", 0, "回退的迁移步数")

	return cmd
}
