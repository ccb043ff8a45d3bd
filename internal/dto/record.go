package dto

import (
	"time"

	"github.com/seunghochoi2018/soslab/internal/model"
)

// ── 운송 기록 DTO ──

// RecordListRequest 기록 조회 조건
type RecordListRequest struct {
	PaginationRequest
	Search   string `form:"search"    binding:"omitempty,max=100"`
	DateFrom string `form:"date_from" binding:"omitempty,datetime=2006-01-02"`
	DateTo   string `form:"date_to"   binding:"omitempty,datetime=2006-01-02"`
	Status   string `form:"status"    binding:"omitempty,max=20"`
	Source   string `form:"source"    binding:"omitempty,oneof=manual webhook chat_import admin_adjustment"`
}

// CreateRecordRequest 관리자 수동 등록.
// 금액을 생략하면 출발지/도착지로 계산한다. 상태를 생략하면 전달자 유무로 정한다.
type CreateRecordRequest struct {
	RequestDate       string `json:"request_date"       binding:"omitempty,datetime=2006-01-02"`
	Applicant         string `json:"applicant"          binding:"required,max=100"`
	Transporter       string `json:"transporter"        binding:"omitempty,max=100"`
	FromLocation      string `json:"from_location"      binding:"required,max=50"`
	ToLocation        string `json:"to_location"        binding:"required,max=50"`
	Item              string `json:"item"               binding:"omitempty,max=200"`
	ApplicantAmount   *int64 `json:"applicant_amount"   binding:"omitempty,min=0"`
	TransporterAmount *int64 `json:"transporter_amount" binding:"omitempty,min=0"`
	AccumulateDate    string `json:"accumulate_date"    binding:"omitempty,datetime=2006-01-02"`
	DeadlineDate      string `json:"deadline_date"      binding:"omitempty,datetime=2006-01-02"`
	PaymentDate       string `json:"payment_date"       binding:"omitempty,datetime=2006-01-02"`
	TaxDate           string `json:"tax_date"           binding:"omitempty,datetime=2006-01-02"`
	Status            string `json:"status"             binding:"omitempty,max=20"`
}

// UpdateRecordRequest 기록 수정. nil 필드는 그대로 둔다.
// 빈 문자열은 날짜를 지운다.
type UpdateRecordRequest struct {
	RequestDate       *string `json:"request_date"`
	Transporter       *string `json:"transporter"        binding:"omitempty,max=100"`
	Item              *string `json:"item"               binding:"omitempty,max=200"`
	ApplicantAmount   *int64  `json:"applicant_amount"   binding:"omitempty,min=0"`
	TransporterAmount *int64  `json:"transporter_amount" binding:"omitempty,min=0"`
	AccumulateDate    *string `json:"accumulate_date"`
	DeadlineDate      *string `json:"deadline_date"`
	PaymentDate       *string `json:"payment_date"`
	TaxDate           *string `json:"tax_date"`
	Status            *string `json:"status"             binding:"omitempty,max=20"`
	Version           *int    `json:"version"`
}

// RecordResponse 기록 응답
type RecordResponse struct {
	ID                int64      `json:"id"`
	RequestDate       string     `json:"request_date"`
	Applicant         string     `json:"applicant"`
	Transporter       string     `json:"transporter"`
	FromLocation      string     `json:"from_location"`
	ToLocation        string     `json:"to_location"`
	Item              string     `json:"item"`
	ApplicantAmount   int64      `json:"applicant_amount"`
	TransporterAmount int64      `json:"transporter_amount"`
	AccumulateDate    string     `json:"accumulate_date"`
	DeadlineDate      string     `json:"deadline_date"`
	PaymentDate       string     `json:"payment_date"`
	TaxDate           string     `json:"tax_date"`
	Status            string     `json:"status"`
	StatusLabel       string     `json:"status_label"`
	Source            string     `json:"source"`
	ThreadID          string     `json:"thread_id,omitempty"`
	MessageID         string     `json:"message_id,omitempty"`
	CreatedAt         time.Time  `json:"created_at"`
	UpdatedAt         *time.Time `json:"updated_at,omitempty"`
	CompletedAt       *time.Time `json:"completed_at,omitempty"`
	Version           int        `json:"version"`
}

// NewRecordResponse 모델 → 응답
func NewRecordResponse(r *model.TransportRequest) RecordResponse {
	return RecordResponse{
		ID:                r.ID,
		RequestDate:       r.RequestDate,
		Applicant:         r.Applicant,
		Transporter:       r.Transporter,
		FromLocation:      r.FromLocation,
		ToLocation:        r.ToLocation,
		Item:              r.Item,
		ApplicantAmount:   r.ApplicantAmount,
		TransporterAmount: r.TransporterAmount,
		AccumulateDate:    r.AccumulateDate,
		DeadlineDate:      r.DeadlineDate,
		PaymentDate:       r.PaymentDate,
		TaxDate:           r.TaxDate,
		Status:            r.Status,
		StatusLabel:       model.StatusLabel(r.Status),
		Source:            r.Source,
		ThreadID:          r.ThreadID,
		MessageID:         r.MessageID,
		CreatedAt:         r.CreatedAt,
		UpdatedAt:         r.UpdatedAt,
		CompletedAt:       r.CompletedAt,
		Version:           r.Version,
	}
}

// RecordStatsResponse 조회 조건에 대한 합계
type RecordStatsResponse struct {
	TotalApplicantAmount   int64 `json:"total_applicant_amount"`
	TotalTransporterAmount int64 `json:"total_transporter_amount"`
	TotalRecords           int   `json:"total_records"`
	PendingCount           int   `json:"pending_count"`
	InProgressCount        int   `json:"in_progress_count"`
	CompletedCount         int   `json:"completed_count"`
}
