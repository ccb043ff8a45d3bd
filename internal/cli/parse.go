package cli

import (
	"fmt"
	"strings"

	"github.com/fatih/color"
	"github.com/spf13/cobra"

	"github.com/seunghochoi2018/soslab/config"
	"github.com/seunghochoi2018/soslab/internal/courier"
	"github.com/seunghochoi2018/soslab/internal/service"
)

// ParseCmd 메시지 해석 결과 확인 (DB 불필요)
func ParseCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "parse <message>",
		Short: "채팅 메시지를 해석해 의도/경로/포인트를 출력",
		Example: `  pointctl parse "/싣고받고 평촌 판교 센서"
  pointctl parse "Paul(윤희선): 제가 전달하겠습니다"`,
		Args: cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			command, _ := cmd.Flags().GetString("command")
			parser := service.NewParser(&config.ParserConfig{Command: command})
			message := strings.Join(args, " ")
			intent := parser.Parse(message)

			out := cmd.OutOrStdout()
			fmt.Fprintf(out, "의도:   %s\n", intentLabel(intent))
			if !intent.HasRoute() {
				if intent.Malformed() {
					fmt.Fprintf(out, "%s 사무실 명칭을 해석할 수 없습니다. 형식: %s 출발지 도착지 물품\n", failMark, parser.Command())
				}
				return nil
			}
			pts := courier.CalculatePoints(intent.From, intent.To)
			fmt.Fprintf(out, "경로:   %s → %s (%s)\n", intent.From, intent.To, intent.Form)
			fmt.Fprintf(out, "물품:   %s\n", intent.Item)
			fmt.Fprintf(out, "포인트: 요청자 %d / 전달자 %d\n", pts.Applicant, pts.Transporter)
			for _, n := range intent.TaggedNames {
				fmt.Fprintf(out, "태그:   %s(%s)\n", n.Handle, n.DisplayName)
			}
			return nil
		},
	}
	cmd.Flags().String("command", "", "요청 명령어 (기본 /싣고받고)")
	return cmd
}

func intentLabel(p courier.ParsedIntent) string {
	switch {
	case p.Malformed():
		return color.New(color.FgRed).Sprint("요청 (경로 해석 실패)")
	case p.Type == courier.IntentRequest:
		return color.New(color.FgGreen).Sprint("요청")
	case p.Type == courier.IntentAccept:
		return color.New(color.FgGreen).Sprint("전달 수락")
	case p.Type == courier.IntentComplete:
		return color.New(color.FgGreen).Sprint("수령 완료")
	default:
		return color.New(color.FgYellow).Sprint("인식 불가")
	}
}

// PointsCmd 두 사무실 사이 포인트 조회
func PointsCmd() *cobra.Command {
	return &cobra.Command{
		Use:     "points <from> <to>",
		Short:   "두 사무실 사이 운송 포인트 조회",
		Example: "  pointctl points 제조혁신센터 광주R&D",
		Args:    cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			from, ok := courier.Normalize(args[0])
			if !ok {
				return fmt.Errorf("알 수 없는 사무실: %s", args[0])
			}
			to, ok := courier.Normalize(args[1])
			if !ok {
				return fmt.Errorf("알 수 없는 사무실: %s", args[1])
			}
			pts := courier.CalculatePoints(from, to)
			fmt.Fprintf(cmd.OutOrStdout(), "%s → %s: 요청자 %d / 전달자 %d\n", from, to, pts.Applicant, pts.Transporter)
			return nil
		},
	}
}
