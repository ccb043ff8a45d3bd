package cli

import "github.com/spf13/cobra"

// RootCmd pointctl 최상위 명령
func RootCmd() *cobra.Command {
	root := &cobra.Command{
		Use:   "pointctl",
		Short: "싣고받고 포인트 관리 도구",
		Long: `싣고받고 포인트 서버의 운영 도구.
DB 마이그레이션, 예시 데이터, 메시지 해석 확인, 대화 가져오기, 관리자 비밀번호 해시를 다룬다.`,
		SilenceUsage: true,
	}
	root.PersistentFlags().String("config", "", "설정 파일 경로 (기본: ./config/config.yaml)")

	root.AddCommand(MigrateCmd())
	root.AddCommand(SeedCmd())
	root.AddCommand(ParseCmd())
	root.AddCommand(PointsCmd())
	root.AddCommand(ImportChatCmd())
	root.AddCommand(HashPasswordCmd())
	return root
}
