package dto

// ── 현황판 DTO ──

// RankEntry 순위표 한 줄.
// 동순위가 이어지면 첫 줄만 DisplayRank 를 가진다.
type RankEntry struct {
	Name        string `json:"name"`
	Count       int    `json:"count"`
	Points      int64  `json:"points"`
	Rank        int    `json:"rank"`
	DisplayRank *int   `json:"display_rank"`
}

// DashboardResponse 현황판
type DashboardResponse struct {
	TopRequesters   []RankEntry         `json:"top_requesters"`
	TopTransporters []RankEntry         `json:"top_transporters"`
	Employees       []EmployeeOverview  `json:"employees"`
	Stats           RecordStatsResponse `json:"stats"`
	Recent          []RecordResponse    `json:"recent"`
}

// EmployeeOverview 직원별 요약
type EmployeeOverview struct {
	EmployeeID     string `json:"employee_id"`
	Name           string `json:"name"`
	Department     string `json:"department"`
	TotalPoints    int64  `json:"total_points"`
	RequestCount   int    `json:"request_count"`
	TransportCount int    `json:"transport_count"`
	EarnedPoints   int64  `json:"earned_points"`
}

// ── 대화 가져오기 DTO ──

// ChatImportRequest 대화 내용 일괄 처리
type ChatImportRequest struct {
	ChatText string `json:"chat_text" binding:"required"`
}

// ChatImportResponse 일괄 처리 결과
type ChatImportResponse struct {
	Added     int              `json:"added"`
	Assigned  int              `json:"assigned"`
	Completed int              `json:"completed"`
	Skipped   int              `json:"skipped"`
	Records   []RecordResponse `json:"records"`
}
