package service

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"time"

	ics "github.com/arran4/golang-ical"
	"github.com/xuri/excelize/v2"
	"go.uber.org/zap"

	"github.com/seunghochoi2018/soslab/config"
	"github.com/seunghochoi2018/soslab/internal/dto"
	"github.com/seunghochoi2018/soslab/internal/model"
	"github.com/seunghochoi2018/soslab/internal/repository"
)

// ── 내보내기 업무 오류 ──

var (
	ErrExportNoRecords    = errors.New("내보낼 기록이 없습니다")
	ErrExportGenerateFail = errors.New("파일 생성에 실패했습니다")
)

const calendarProductID = "-//soslab//courier-point//KO"

// ExportService 내보내기
//
//   - 기록 목록을 엑셀(.xlsx)로 내보낸다. 조회 조건은 목록 API와 같다.
//   - 마감일이 있는 미완료 기록을 iCalendar 피드로 만든다.
//
// 결과는 bytes.Buffer 로 돌려주고 응답 헤더는 Handler 가 설정한다.
type ExportService interface {
	ExportRecords(ctx context.Context, req *dto.RecordListRequest) (*bytes.Buffer, string, error)
	DeadlineCalendar(ctx context.Context) (string, error)
}

type exportService struct {
	cfg    *config.Config
	repo   *repository.Repository
	logger *zap.Logger
	now    func() time.Time
}

// NewExportService ExportService 생성
func NewExportService(cfg *config.Config, repo *repository.Repository, logger *zap.Logger) ExportService {
	return &exportService{cfg: cfg, repo: repo, logger: logger, now: time.Now}
}

// ────────────────────── ExportRecords ──────────────────────

var recordExportHeader = []string{
	"ID", "신청일", "신청자", "전달자", "출발", "도착", "물품",
	"신청자 포인트", "전달자 포인트", "적립일", "마감일", "지급일", "세금일", "상태", "출처",
}

func (s *exportService) ExportRecords(ctx context.Context, req *dto.RecordListRequest) (*bytes.Buffer, string, error) {
	filter, err := toFilter(req)
	if err != nil {
		return nil, "", err
	}
	rows, err := s.repo.TransportRequest.List(ctx, filter)
	if err != nil {
		s.logger.Error("내보낼 기록 조회 실패", zap.Error(err))
		return nil, "", err
	}
	if len(rows) == 0 {
		return nil, "", ErrExportNoRecords
	}

	f := excelize.NewFile()
	defer f.Close()

	sheet := "운송기록"
	idx, _ := f.NewSheet(sheet)
	f.SetActiveSheet(idx)
	f.DeleteSheet("Sheet1")

	headerStyle, _ := f.NewStyle(&excelize.Style{
		Font:      &excelize.Font{Bold: true, Size: 11},
		Fill:      excelize.Fill{Type: "pattern", Color: []string{"#4472C4"}, Pattern: 1},
		Alignment: &excelize.Alignment{Horizontal: "center", Vertical: "center"},
	})
	amountStyle, _ := f.NewStyle(&excelize.Style{NumFmt: 3}) // #,##0

	for i, h := range recordExportHeader {
		f.SetCellValue(sheet, cell(colName(i), 1), h)
	}
	last := colName(len(recordExportHeader) - 1)
	f.SetCellStyle(sheet, "A1", cell(last, 1), headerStyle)
	f.SetColWidth(sheet, "A", "A", 6)
	f.SetColWidth(sheet, "B", last, 14)
	f.SetColWidth(sheet, "G", "G", 24)

	row := 2
	for i := range rows {
		r := &rows[i]
		values := []interface{}{
			r.ID, r.RequestDate, r.Applicant, r.Transporter, r.FromLocation, r.ToLocation, r.Item,
			r.ApplicantAmount, r.TransporterAmount,
			r.AccumulateDate, r.DeadlineDate, r.PaymentDate, r.TaxDate,
			model.StatusLabel(r.Status), r.Source,
		}
		for c, v := range values {
			f.SetCellValue(sheet, cell(colName(c), row), v)
		}
		row++
	}

	// 합계 행
	stats := summarize(rows)
	f.SetCellValue(sheet, cell("A", row), "합계")
	f.SetCellValue(sheet, cell("H", row), stats.TotalApplicantAmount)
	f.SetCellValue(sheet, cell("I", row), stats.TotalTransporterAmount)
	f.SetCellStyle(sheet, "H2", cell("I", row), amountStyle)

	buf := new(bytes.Buffer)
	if err := f.Write(buf); err != nil {
		s.logger.Error("엑셀 쓰기 실패", zap.Error(err))
		return nil, "", ErrExportGenerateFail
	}

	filename := fmt.Sprintf("운송기록_%s.xlsx", s.now().In(s.cfg.App.Location()).Format("20060102"))
	return buf, filename, nil
}

// ────────────────────── DeadlineCalendar ──────────────────────

// DeadlineCalendar 마감일이 있는 미완료 기록을 종일 일정으로 만든다.
// UID 는 기록 ID 기반이라 구독 클라이언트가 같은 일정을 갱신한다.
func (s *exportService) DeadlineCalendar(ctx context.Context) (string, error) {
	rows, err := s.repo.TransportRequest.List(ctx, repository.RecordFilter{})
	if err != nil {
		s.logger.Error("마감 일정 조회 실패", zap.Error(err))
		return "", err
	}

	loc := s.cfg.App.Location()
	cal := ics.NewCalendar()
	cal.SetMethod(ics.MethodPublish)
	cal.SetProductId(calendarProductID)
	cal.SetXWRCalName("싣고받고 마감일")
	cal.SetXWRTimezone(loc.String())

	stamp := s.now().UTC()
	count := 0
	for i := range rows {
		r := &rows[i]
		if r.Status == model.StatusCompleted || r.DeadlineDate == "" {
			continue
		}
		day, err := time.ParseInLocation(model.DateLayout, r.DeadlineDate, loc)
		if err != nil {
			s.logger.Warn("마감일 형식 오류, 건너뜀", zap.Int64("id", r.ID), zap.String("deadline", r.DeadlineDate))
			continue
		}
		evt := cal.AddEvent(fmt.Sprintf("transport-%d@courier-point", r.ID))
		evt.SetDtStampTime(stamp)
		evt.SetAllDayStartAt(day)
		evt.SetAllDayEndAt(day.AddDate(0, 0, 1))
		evt.SetSummary(deadlineSummary(r))
		evt.SetDescription(fmt.Sprintf("신청자: %s\n전달자: %s\n상태: %s",
			r.Applicant, orDefault(r.Transporter, "미정"), model.StatusLabel(r.Status)))
		count++
	}
	s.logger.Debug("마감 일정 생성", zap.Int("events", count))
	return cal.Serialize(), nil
}

func deadlineSummary(r *model.TransportRequest) string {
	item := orDefault(r.Item, "물품")
	return fmt.Sprintf("[#%d] %s→%s %s", r.ID, r.FromLocation, r.ToLocation, item)
}

// ── 보조 함수 ──

func colName(idx int) string {
	name, _ := excelize.ColumnNumberToName(idx + 1)
	return name
}

func cell(col string, row int) string {
	return fmt.Sprintf("%s%d", col, row)
}
