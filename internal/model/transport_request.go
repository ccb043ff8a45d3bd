package model

import (
	"strings"
	"time"
)

// ── 상태 ──

const (
	StatusPending    = "pending"
	StatusInProgress = "in_progress"
	StatusCompleted  = "completed"
)

var statusLabels = map[string]string{
	StatusPending:    "대기중",
	StatusInProgress: "진행중",
	StatusCompleted:  "완료",
}

var statusRanks = map[string]int{
	StatusPending:    1,
	StatusInProgress: 2,
	StatusCompleted:  3,
}

// StatusLabel 상태 코드의 한글 표기
func StatusLabel(status string) string {
	if l, ok := statusLabels[status]; ok {
		return l
	}
	return status
}

// ParseStatus 상태 코드 또는 한글 표기(대기중/진행중/완료)를 상태 코드로 바꾼다.
func ParseStatus(s string) (string, bool) {
	s = strings.TrimSpace(s)
	if _, ok := statusRanks[s]; ok {
		return s, true
	}
	for code, label := range statusLabels {
		if s == label {
			return code, true
		}
	}
	return "", false
}

// StatusRank 상태의 진행 순서 (알 수 없는 값은 0)
func StatusRank(status string) int {
	return statusRanks[status]
}

// ── 출처 ──

const (
	SourceManual          = "manual"
	SourceWebhook         = "webhook"
	SourceChatImport      = "chat_import"
	SourceAdminAdjustment = "admin_adjustment"
)

// IsValidSource 알려진 출처인지
func IsValidSource(s string) bool {
	switch s {
	case SourceManual, SourceWebhook, SourceChatImport, SourceAdminAdjustment:
		return true
	}
	return false
}

// TransportRequest 운송 요청 (transport_requests)
//
// ID 는 max+1 로 할당되며 삭제된 행도 계산에 포함되므로 재사용되지 않는다.
// 날짜 필드(RequestDate, AccumulateDate ...)는 YYYY-MM-DD 문자열, 비어 있으면 미정.
type TransportRequest struct {
	ID                int64      `gorm:"primaryKey;autoIncrement:false"             json:"id"`
	RequestDate       string     `gorm:"type:varchar(10);not null"                  json:"request_date"`
	Applicant         string     `gorm:"type:varchar(100);not null;index"           json:"applicant"`
	Transporter       string     `gorm:"type:varchar(100);not null;default:''"      json:"transporter"`
	FromLocation      string     `gorm:"type:varchar(50);not null"                  json:"from_location"`
	ToLocation        string     `gorm:"type:varchar(50);not null"                  json:"to_location"`
	Item              string     `gorm:"type:varchar(200);not null"                 json:"item"`
	ApplicantAmount   int64      `gorm:"not null"                                   json:"applicant_amount"`
	TransporterAmount int64      `gorm:"not null"                                   json:"transporter_amount"`
	AccumulateDate    string     `gorm:"type:varchar(10);not null;default:''"       json:"accumulate_date"`
	DeadlineDate      string     `gorm:"type:varchar(10);not null;default:''"       json:"deadline_date"`
	PaymentDate       string     `gorm:"type:varchar(10);not null;default:''"       json:"payment_date"`
	TaxDate           string     `gorm:"type:varchar(10);not null;default:''"       json:"tax_date"`
	Status            string     `gorm:"type:varchar(20);not null;index"            json:"status"` // pending | in_progress | completed
	Source            string     `gorm:"type:varchar(30);not null"                  json:"source"` // manual | webhook | chat_import | admin_adjustment
	ThreadID          string     `gorm:"type:varchar(100);not null;default:''"      json:"thread_id,omitempty"`
	MessageID         string     `gorm:"type:varchar(100);not null;default:'';index" json:"message_id,omitempty"`
	CreatedAt         time.Time  `gorm:"not null"                                   json:"created_at"`
	UpdatedAt         *time.Time `gorm:"autoUpdateTime:false"                       json:"updated_at,omitempty"`
	CompletedAt       *time.Time `json:"completed_at,omitempty"`
	CreatedBy         *string    `gorm:"type:varchar(50)"                           json:"created_by,omitempty"`
	UpdatedBy         *string    `gorm:"type:varchar(50)"                           json:"updated_by,omitempty"`
	Version           int        `gorm:"not null;default:1"                         json:"version"`
	SoftDelete
}

// TableName 테이블명
func (TransportRequest) TableName() string { return "transport_requests" }

// LastActivity 마지막 변경 시각 (UpdatedAt, 없으면 CreatedAt)
func (r *TransportRequest) LastActivity() time.Time {
	if r.UpdatedAt != nil {
		return *r.UpdatedAt
	}
	return r.CreatedAt
}

// IsDeleted 소프트 삭제 여부
func (r *TransportRequest) IsDeleted() bool {
	return r.DeletedAt.Valid
}
