package service

import (
	"bytes"
	"context"
	"errors"
	"strings"
	"testing"
	"time"

	ics "github.com/arran4/golang-ical"
	"github.com/xuri/excelize/v2"

	"github.com/seunghochoi2018/soslab/internal/dto"
	"github.com/seunghochoi2018/soslab/internal/model"
)

// ── 테스트 보조 ──

func setupTestExportService() (ExportService, *testDeps) {
	d := newTestDeps()
	svc := NewExportService(d.cfg, d.repo, d.logger)
	svc.(*exportService).now = func() time.Time { return kst(2025, 7, 1, 10, 0) }
	return svc, d
}

// ── ExportRecords ──

func TestExportRecords_NoRecords(t *testing.T) {
	svc, _ := setupTestExportService()

	_, _, err := svc.ExportRecords(context.Background(), &dto.RecordListRequest{})
	if !errors.Is(err, ErrExportNoRecords) {
		t.Errorf("기대 ErrExportNoRecords, 실제: %v", err)
	}
}

func TestExportRecords_Success(t *testing.T) {
	svc, d := setupTestExportService()
	seedRecord(d, completed(1, "Paul", "Kai", 5000))
	seedRecord(d, completed(2, "Alex", "Jin", 10000))
	seedRecord(d, model.TransportRequest{ID: 3, Applicant: "Jin", FromLocation: "평촌", ToLocation: "판교",
		ApplicantAmount: 5000, TransporterAmount: 5000, Status: model.StatusPending, Source: model.SourceManual})

	buf, filename, err := svc.ExportRecords(context.Background(), &dto.RecordListRequest{Status: "완료"})
	if err != nil {
		t.Fatalf("ExportRecords 실패: %v", err)
	}
	if filename != "운송기록_20250701.xlsx" {
		t.Errorf("파일명 오류: %s", filename)
	}

	f, err := excelize.OpenReader(bytes.NewReader(buf.Bytes()))
	if err != nil {
		t.Fatalf("생성된 엑셀을 열 수 없음: %v", err)
	}
	defer f.Close()

	rows, err := f.GetRows("운송기록")
	if err != nil {
		t.Fatalf("시트 읽기 실패: %v", err)
	}
	// 머리글 + 완료 2건 + 합계
	if len(rows) != 4 {
		t.Fatalf("4행 기대, 실제 %d", len(rows))
	}
	if rows[0][0] != "ID" || rows[0][13] != "상태" {
		t.Errorf("머리글 오류: %v", rows[0])
	}
	if rows[1][2] != "Paul" || rows[1][13] != "완료" {
		t.Errorf("데이터 행 오류: %v", rows[1])
	}
	if rows[3][0] != "합계" {
		t.Errorf("합계 행 오류: %v", rows[3])
	}
	total, _ := f.GetCellValue("운송기록", "H4", excelize.Options{RawCellValue: true})
	if total != "15000" {
		t.Errorf("신청자 포인트 합계 15000 기대, 실제 %s", total)
	}
}

func TestExportRecords_InvalidStatus(t *testing.T) {
	svc, _ := setupTestExportService()

	_, _, err := svc.ExportRecords(context.Background(), &dto.RecordListRequest{Status: "취소"})
	if !errors.Is(err, ErrInvalidStatus) {
		t.Errorf("기대 ErrInvalidStatus, 실제: %v", err)
	}
}

// ── DeadlineCalendar ──

func TestDeadlineCalendar_OpenRecordsOnly(t *testing.T) {
	svc, d := setupTestExportService()

	done := completed(1, "Paul", "Kai", 5000)
	done.DeadlineDate = "2025-07-10"
	seedRecord(d, done)
	seedRecord(d, model.TransportRequest{ID: 2, Applicant: "Jin", Transporter: "Kai", FromLocation: "평촌", ToLocation: "판교",
		Item: "센서", DeadlineDate: "2025-07-15", Status: model.StatusInProgress, Source: model.SourceWebhook})
	seedRecord(d, model.TransportRequest{ID: 3, Applicant: "Alex", FromLocation: "판교", ToLocation: "광주본사",
		Status: model.StatusPending, Source: model.SourceWebhook})
	seedRecord(d, model.TransportRequest{ID: 4, Applicant: "Alex", FromLocation: "판교", ToLocation: "평촌",
		DeadlineDate: "다음주", Status: model.StatusPending, Source: model.SourceManual})

	out, err := svc.DeadlineCalendar(context.Background())
	if err != nil {
		t.Fatalf("DeadlineCalendar 실패: %v", err)
	}
	if !strings.Contains(out, "BEGIN:VCALENDAR") || !strings.Contains(out, "METHOD:PUBLISH") {
		t.Errorf("iCalendar 머리글이 없음:\n%s", out)
	}

	cal, err := ics.ParseCalendar(strings.NewReader(out))
	if err != nil {
		t.Fatalf("생성된 일정을 다시 읽을 수 없음: %v", err)
	}
	events := cal.Events()
	if len(events) != 1 {
		t.Fatalf("미완료 + 마감일 있는 1건 기대, 실제 %d", len(events))
	}
	evt := events[0]
	uid := evt.GetProperty(ics.ComponentPropertyUniqueId)
	if uid == nil || uid.Value != "transport-2@courier-point" {
		t.Errorf("UID 오류: %+v", uid)
	}
	summary := evt.GetProperty(ics.ComponentPropertySummary)
	if summary == nil || !strings.Contains(summary.Value, "평촌→판교 센서") {
		t.Errorf("요약 오류: %+v", summary)
	}
	start := evt.GetProperty(ics.ComponentPropertyDtStart)
	if start == nil || start.Value != "20250715" {
		t.Errorf("종일 시작일 20250715 기대: %+v", start)
	}
}
