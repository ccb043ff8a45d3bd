package cli

import (
	"fmt"
	"io"
	"os"

	"github.com/spf13/cobra"

	"github.com/seunghochoi2018/soslab/internal/dto"
	"github.com/seunghochoi2018/soslab/internal/service"
)

// ImportChatCmd 내보낸 대화 파일을 재생해 기록으로 만든다
func ImportChatCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "import-chat <file|->",
		Short: "카카오톡/잔디 대화 내보내기 파일을 가져오기",
		Long: `대화 내보내기 텍스트를 한 줄씩 재생해 요청 생성/전달자 배정/완료를 적용한다.
"2025년 3월 4일" 형태의 날짜 머리글로 날짜를 정한다. 알림은 보내지 않는다.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			text, err := readInput(cmd, args[0])
			if err != nil {
				return err
			}

			rt, err := openRuntime(cmd)
			if err != nil {
				return err
			}
			defer rt.Close()

			svc := service.NewChatImportService(rt.cfg, rt.repo, rt.coordination().Locker, rt.logger)
			res, err := svc.Import(cmd.Context(), &dto.ChatImportRequest{ChatText: text}, cliCaller)
			if err != nil {
				return err
			}

			out := cmd.OutOrStdout()
			for _, r := range res.Records {
				fmt.Fprintf(out, "%s #%d %s %s→%s %s [%s]\n", okMark, r.ID, r.Applicant, r.FromLocation, r.ToLocation, r.Item, r.StatusLabel)
			}
			fmt.Fprintf(out, "추가 %d, 전달자 배정 %d, 완료 %d", res.Added, res.Assigned, res.Completed)
			if res.Skipped > 0 {
				fmt.Fprintf(out, ", %s 건너뜀 %d", warnMark, res.Skipped)
			}
			fmt.Fprintln(out)
			return nil
		},
	}
}

// readInput 파일 또는 "-" 이면 표준 입력
func readInput(cmd *cobra.Command, path string) (string, error) {
	if path == "-" {
		b, err := io.ReadAll(cmd.InOrStdin())
		if err != nil {
			return "", fmt.Errorf("표준 입력 읽기 실패: %w", err)
		}
		return string(b), nil
	}
	b, err := os.ReadFile(path)
	if err != nil {
		return "", fmt.Errorf("파일 읽기 실패: %w", err)
	}
	return string(b), nil
}
