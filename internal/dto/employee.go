package dto

import "github.com/seunghochoi2018/soslab/internal/model"

// ── 직원 DTO ──

// CreateEmployeeRequest 직원 등록
type CreateEmployeeRequest struct {
	EmployeeID  string `json:"employee_id"  binding:"required,max=50"`
	Name        string `json:"name"         binding:"required,max=100"`
	Department  string `json:"department"   binding:"omitempty,max=50"`
	TotalPoints int64  `json:"total_points"`
}

// UpdateEmployeeRequest 직원 수정. nil 필드는 그대로 둔다.
// 누계는 여기서 바꾸지 않고 포인트 조정으로만 바꾼다.
type UpdateEmployeeRequest struct {
	Name       *string `json:"name"       binding:"omitempty,min=1,max=100"`
	Department *string `json:"department" binding:"omitempty,max=50"`
}

// AdjustPointsRequest 포인트 수동 조정
type AdjustPointsRequest struct {
	Adjustment int64  `json:"adjustment" binding:"required"`
	Reason     string `json:"reason"     binding:"omitempty,max=200"`
}

// AdjustPointsResponse 조정 결과
type AdjustPointsResponse struct {
	EmployeeID string `json:"employee_id"`
	NewPoints  int64  `json:"new_points"`
	RecordID   int64  `json:"record_id"`
}

// EmployeeResponse 직원 응답
type EmployeeResponse struct {
	EmployeeID  string `json:"employee_id"`
	Name        string `json:"name"`
	Department  string `json:"department"`
	TotalPoints int64  `json:"total_points"`
	Version     int    `json:"version"`
}

// NewEmployeeResponse 모델 → 응답
func NewEmployeeResponse(e *model.Employee) EmployeeResponse {
	return EmployeeResponse{
		EmployeeID:  e.EmployeeID,
		Name:        e.Name,
		Department:  e.Department,
		TotalPoints: e.TotalPoints,
		Version:     e.Version,
	}
}

// ImportEmployeeResponse 일괄 등록 결과
type ImportEmployeeResponse struct {
	Total   int              `json:"total"`
	Added   int              `json:"added"`
	Updated int              `json:"updated"`
	Failed  int              `json:"failed"`
	Errors  []ImportRowError `json:"errors,omitempty"`
}

// ImportRowError 행 단위 오류
type ImportRowError struct {
	Row    int    `json:"row"`
	Reason string `json:"reason"`
}
