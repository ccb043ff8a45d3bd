package service

import (
	"context"
	"sort"

	"go.uber.org/zap"

	"github.com/seunghochoi2018/soslab/internal/dto"
	"github.com/seunghochoi2018/soslab/internal/model"
	"github.com/seunghochoi2018/soslab/internal/repository"
)

const (
	leaderboardSize = 10
	recentSize      = 20
)

// DashboardService 현황판
type DashboardService interface {
	Get(ctx context.Context) (*dto.DashboardResponse, error)
}

type dashboardService struct {
	repo   *repository.Repository
	logger *zap.Logger
}

// NewDashboardService DashboardService 생성
func NewDashboardService(repo *repository.Repository, logger *zap.Logger) DashboardService {
	return &dashboardService{repo: repo, logger: logger}
}

func (s *dashboardService) Get(ctx context.Context) (*dto.DashboardResponse, error) {
	rows, err := s.repo.TransportRequest.List(ctx, repository.RecordFilter{})
	if err != nil {
		s.logger.Error("현황 조회 실패", zap.Error(err))
		return nil, err
	}
	employees, err := s.repo.Employee.List(ctx)
	if err != nil {
		s.logger.Error("직원 조회 실패", zap.Error(err))
		return nil, err
	}

	requesters, transporters := tally(rows)
	resp := &dto.DashboardResponse{
		TopRequesters:   rankByCount(requesters, leaderboardSize),
		TopTransporters: rankByCount(transporters, leaderboardSize),
		Employees:       overview(employees, requesters, transporters),
		Stats:           summarize(rows),
		Recent:          recent(rows, recentSize),
	}
	return resp, nil
}

type tallyEntry struct {
	count  int
	points int64
}

// tally 완료된 운송만 요청자/전달자별로 센다. 관리자 조정 기록은 제외.
func tally(rows []model.TransportRequest) (map[string]*tallyEntry, map[string]*tallyEntry) {
	requesters := make(map[string]*tallyEntry)
	transporters := make(map[string]*tallyEntry)
	add := func(m map[string]*tallyEntry, name string, points int64) {
		if name == "" {
			return
		}
		e, ok := m[name]
		if !ok {
			e = &tallyEntry{}
			m[name] = e
		}
		e.count++
		e.points += points
	}
	for i := range rows {
		r := &rows[i]
		if r.Status != model.StatusCompleted || r.Source == model.SourceAdminAdjustment {
			continue
		}
		add(requesters, r.Applicant, r.ApplicantAmount)
		add(transporters, r.Transporter, r.TransporterAmount)
	}
	return requesters, transporters
}

// rankByCount 건수 내림차순 상위 limit 명. 경쟁 순위(1,1,3)를 매기고
// 앞 사람과 건수가 같으면 DisplayRank 를 비운다. 동률은 이름순으로 나열한다.
func rankByCount(m map[string]*tallyEntry, limit int) []dto.RankEntry {
	entries := make([]dto.RankEntry, 0, len(m))
	for name, e := range m {
		entries = append(entries, dto.RankEntry{Name: name, Count: e.count, Points: e.points})
	}
	sort.Slice(entries, func(i, j int) bool {
		if entries[i].Count != entries[j].Count {
			return entries[i].Count > entries[j].Count
		}
		return entries[i].Name < entries[j].Name
	})
	if len(entries) > limit {
		entries = entries[:limit]
	}

	rank := 1
	for i := range entries {
		if i > 0 && entries[i].Count != entries[i-1].Count {
			rank = i + 1
		}
		entries[i].Rank = rank
		if i == 0 || entries[i].Count != entries[i-1].Count {
			r := rank
			entries[i].DisplayRank = &r
		}
	}
	return entries
}

func overview(employees []model.Employee, requesters, transporters map[string]*tallyEntry) []dto.EmployeeOverview {
	out := make([]dto.EmployeeOverview, 0, len(employees))
	for i := range employees {
		e := &employees[i]
		o := dto.EmployeeOverview{
			EmployeeID:  e.EmployeeID,
			Name:        e.Name,
			Department:  e.Department,
			TotalPoints: e.TotalPoints,
		}
		if t, ok := requesters[e.EmployeeID]; ok {
			o.RequestCount = t.count
			o.EarnedPoints += t.points
		}
		if t, ok := transporters[e.EmployeeID]; ok {
			o.TransportCount = t.count
			o.EarnedPoints += t.points
		}
		out = append(out, o)
	}
	sort.SliceStable(out, func(i, j int) bool { return out[i].TotalPoints > out[j].TotalPoints })
	return out
}

// recent ID 내림차순 최근 기록
func recent(rows []model.TransportRequest, n int) []dto.RecordResponse {
	out := make([]dto.RecordResponse, 0, n)
	for i := len(rows) - 1; i >= 0 && len(out) < n; i-- {
		out = append(out, dto.NewRecordResponse(&rows[i]))
	}
	return out
}
