package service

import (
	"context"
	"testing"

	"github.com/seunghochoi2018/soslab/internal/model"
)

func completed(id int64, applicant, transporter string, amount int64) model.TransportRequest {
	return model.TransportRequest{
		ID: id, Applicant: applicant, Transporter: transporter,
		ApplicantAmount: amount, TransporterAmount: amount,
		Status: model.StatusCompleted, AccumulateDate: "2025-03-02", Source: model.SourceWebhook,
	}
}

func TestDashboard_Leaderboards(t *testing.T) {
	d := newTestDeps()
	svc := NewDashboardService(d.repo, d.logger)

	seedRecord(d, completed(1, "Paul", "Kai", 5000))
	seedRecord(d, completed(2, "Paul", "Kai", 5000))
	seedRecord(d, completed(3, "Alex", "Jin", 10000))
	seedRecord(d, completed(4, "Alex", "Kai", 5000))
	seedRecord(d, completed(5, "Jin", "Paul", 5000))
	seedRecord(d, model.TransportRequest{ID: 6, Applicant: "Jin", Status: model.StatusPending, Source: model.SourceWebhook})
	adj := completed(7, "Jin", "SYSTEM", 90000)
	adj.Source = model.SourceAdminAdjustment
	seedRecord(d, adj)
	seedEmployee(d, "Paul", "Paul(윤희선)", 15000)
	seedEmployee(d, "Kai", "Kai(김카이)", 20000)

	resp, err := svc.Get(context.Background())
	if err != nil {
		t.Fatalf("Get 실패: %v", err)
	}

	// 신청: Alex 2, Paul 2, Jin 1 (대기중/관리자조정 제외)
	req := resp.TopRequesters
	if len(req) != 3 {
		t.Fatalf("신청 순위 3명 기대, 실제 %+v", req)
	}
	if req[0].Name != "Alex" || req[1].Name != "Paul" || req[2].Name != "Jin" {
		t.Errorf("동률은 이름순: %+v", req)
	}
	if req[0].Rank != 1 || req[1].Rank != 1 || req[2].Rank != 3 {
		t.Errorf("경쟁 순위(1,1,3) 기대: %d,%d,%d", req[0].Rank, req[1].Rank, req[2].Rank)
	}
	if req[0].DisplayRank == nil || req[1].DisplayRank != nil || req[2].DisplayRank == nil || *req[2].DisplayRank != 3 {
		t.Errorf("동률 표시 순위는 비어 있어야 함: %+v", req)
	}
	if req[0].Points != 15000 {
		t.Errorf("Alex 신청 포인트 15000 기대, 실제 %d", req[0].Points)
	}

	// 전달: Kai 3, Jin 1, Paul 1
	tr := resp.TopTransporters
	if tr[0].Name != "Kai" || tr[0].Count != 3 {
		t.Errorf("전달 1위 Kai(3) 기대: %+v", tr[0])
	}
	for _, e := range tr {
		if e.Name == "SYSTEM" {
			t.Error("관리자조정은 순위에서 제외")
		}
	}

	if resp.Stats.TotalRecords != 7 || resp.Stats.PendingCount != 1 {
		t.Errorf("통계 오류: %+v", resp.Stats)
	}
	if len(resp.Recent) != 7 || resp.Recent[0].ID != 7 {
		t.Errorf("최근 기록은 ID 내림차순: %+v", resp.Recent)
	}

	if len(resp.Employees) != 2 || resp.Employees[0].EmployeeID != "Kai" {
		t.Fatalf("직원 현황은 누계 내림차순: %+v", resp.Employees)
	}
	kai := resp.Employees[0]
	if kai.TransportCount != 3 || kai.RequestCount != 0 || kai.EarnedPoints != 15000 {
		t.Errorf("Kai 현황 오류: %+v", kai)
	}
}

func TestRankByCount_Limit(t *testing.T) {
	m := make(map[string]*tallyEntry)
	for _, name := range []string{"a", "b", "c", "d", "e", "f", "g", "h", "i", "j", "k", "l"} {
		m[name] = &tallyEntry{count: 1}
	}
	m["z"] = &tallyEntry{count: 5}

	got := rankByCount(m, leaderboardSize)
	if len(got) != leaderboardSize {
		t.Fatalf("상위 %d명 기대, 실제 %d", leaderboardSize, len(got))
	}
	if got[0].Name != "z" || got[1].Rank != 2 || got[9].Rank != 2 {
		t.Errorf("순위 오류: %+v", got)
	}
}
