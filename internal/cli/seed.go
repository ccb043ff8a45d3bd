package cli

import (
	"errors"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/seunghochoi2018/soslab/internal/dto"
	"github.com/seunghochoi2018/soslab/internal/notify"
	"github.com/seunghochoi2018/soslab/internal/service"
)

// sampleEmployees 예시 직원
var sampleEmployees = []dto.CreateEmployeeRequest{
	{EmployeeID: "Paul", Name: "Paul", Department: "연구소"},
	{EmployeeID: "L", Name: "L", Department: "생산"},
	{EmployeeID: "Sammy", Name: "Sammy", Department: "연구소"},
	{EmployeeID: "Kai", Name: "Kai", Department: "생산"},
	{EmployeeID: "Jack", Name: "Jack", Department: "품질"},
	{EmployeeID: "Anna", Name: "Anna", Department: "경영지원"},
	{EmployeeID: "Jake", Name: "Jake", Department: "연구소"},
	{EmployeeID: "James", Name: "James", Department: "생산"},
	{EmployeeID: "Jinie", Name: "Jinie", Department: "품질"},
	{EmployeeID: "Yup", Name: "Yup", Department: "연구소"},
	{EmployeeID: "Brown", Name: "Brown", Department: "경영지원"},
	{EmployeeID: "Jayone", Name: "Jayone", Department: "연구소"},
}

// sampleRecords 예시 운송 기록. 적립일이 있으면 완료로 등록되어 포인트가 적립된다.
var sampleRecords = []dto.CreateRecordRequest{
	{RequestDate: "2025-09-12", Applicant: "Paul", Transporter: "L", FromLocation: "평촌", ToLocation: "판교", Item: "센서 2개", AccumulateDate: "2025-09-16"},
	{RequestDate: "2025-09-13", Applicant: "Sammy", Transporter: "Kai", FromLocation: "평촌", ToLocation: "판교", Item: "박스", AccumulateDate: "2025-09-17"},
	{RequestDate: "2025-09-14", Applicant: "Jack", Transporter: "Anna", FromLocation: "판교", ToLocation: "광주", Item: "박스", AccumulateDate: "2025-09-19"},
	{RequestDate: "2025-09-15", Applicant: "Jake", Transporter: "James", FromLocation: "광주", ToLocation: "판교", Item: "ML-U 센서", AccumulateDate: "2025-09-19"},
	{RequestDate: "2025-09-15", Applicant: "Jinie", Transporter: "James", FromLocation: "판교", ToLocation: "광주", Item: "SL-U 보드 세트", AccumulateDate: "2025-09-17"},
	{RequestDate: "2025-09-16", Applicant: "Yup", Transporter: "Brown", FromLocation: "평촌", ToLocation: "판교", Item: "임시노트북", AccumulateDate: "2025-09-17"},
	{RequestDate: "2025-09-20", Applicant: "Jayone", FromLocation: "판교", ToLocation: "광주", Item: "ML-U 센서"},
}

// SeedCmd 예시 직원/기록 등록
func SeedCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "seed",
		Short: "예시 직원 12명과 운송 기록 7건을 등록",
		Long: `예시 데이터를 등록한다.
이미 있는 직원은 건너뛰고, 운송 기록이 하나라도 있으면 기록 등록은 하지 않는다.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			rt, err := openRuntime(cmd)
			if err != nil {
				return err
			}
			defer rt.Close()

			ctx := cmd.Context()
			out := cmd.OutOrStdout()
			coord := rt.coordination()
			dispatcher := notify.NewDispatcher(notify.NopSender{}, 0, 0, rt.logger)
			defer dispatcher.Close()

			employees := service.NewEmployeeService(rt.cfg, rt.repo, coord.Locker, dispatcher, rt.logger)
			for i := range sampleEmployees {
				req := sampleEmployees[i]
				if _, err := employees.Create(ctx, &req, cliCaller); err != nil {
					if errors.Is(err, service.ErrEmployeeExists) {
						fmt.Fprintf(out, "%s 직원 %s 이미 있음\n", warnMark, req.EmployeeID)
						continue
					}
					return fmt.Errorf("직원 %s 등록 실패: %w", req.EmployeeID, err)
				}
				fmt.Fprintf(out, "%s 직원 %s\n", okMark, req.EmployeeID)
			}

			maxID, err := rt.repo.TransportRequest.MaxID(ctx)
			if err != nil {
				return err
			}
			if maxID > 0 {
				fmt.Fprintf(out, "%s 운송 기록이 이미 있어 예시 기록은 건너뜀 (마지막 ID %d)\n", warnMark, maxID)
				return nil
			}

			records := service.NewRecordService(rt.cfg, rt.repo, coord.Locker, rt.logger)
			for i := range sampleRecords {
				req := sampleRecords[i]
				rec, err := records.Create(ctx, &req, cliCaller)
				if err != nil {
					return fmt.Errorf("기록 등록 실패 (%s→%s): %w", req.FromLocation, req.ToLocation, err)
				}
				fmt.Fprintf(out, "%s #%d %s→%s %s [%s]\n", okMark, rec.ID, rec.FromLocation, rec.ToLocation, rec.Item, rec.StatusLabel)
			}
			return nil
		},
	}
}
