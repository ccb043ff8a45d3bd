package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/seunghochoi2018/soslab/pkg/database"
)

// MigrateCmd DB 스키마 마이그레이션
func MigrateCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "migrate",
		Short: "DB 스키마 마이그레이션",
	}

	cmd.AddCommand(&cobra.Command{
		Use:   "up",
		Short: "적용되지 않은 마이그레이션을 모두 실행",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			rt, err := openRuntime(cmd)
			if err != nil {
				return err
			}
			defer rt.Close()

			sqlDB, err := rt.db.DB()
			if err != nil {
				return err
			}
			if err := database.RunMigrations(sqlDB, rt.logger); err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "%s 마이그레이션 완료\n", okMark)
			return nil
		},
	})

	down := &cobra.Command{
		Use:   "down",
		Short: "마이그레이션 되돌리기",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			steps, _ := cmd.Flags().GetInt("steps")
			if steps <= 0 {
				return fmt.Errorf("--steps 는 1 이상이어야 합니다")
			}
			rt, err := openRuntime(cmd)
			if err != nil {
				return err
			}
			defer rt.Close()

			sqlDB, err := rt.db.DB()
			if err != nil {
				return err
			}
			if err := database.RollbackMigrations(sqlDB, steps, rt.logger); err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "%s %d 단계 되돌림\n", okMark, steps)
			return nil
		},
	}
	down.Flags().Int("steps", 1, "되돌릴 단계 수")
	cmd.AddCommand(down)

	return cmd
}
