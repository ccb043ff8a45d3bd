package courier

import (
	"errors"
	"strings"
	"time"

	"github.com/seunghochoi2018/soslab/internal/model"
)

// ── 수명주기 오류 ──

var (
	ErrMalformedRequest    = errors.New("사무실 명칭을 해석할 수 없는 운송 요청입니다")
	ErrNoPendingRequest    = errors.New("대기중인 운송 요청이 없습니다")
	ErrNoInProgressRequest = errors.New("진행중인 운송 요청이 없습니다")
	ErrUnrecognizedMessage = errors.New("인식할 수 없는 메시지 형식입니다")
	ErrEmptyApplicant      = errors.New("요청자가 비어 있습니다")
)

// CreditRole 적립 대상 역할
type CreditRole string

const (
	RoleApplicant   CreditRole = "applicant"
	RoleTransporter CreditRole = "transporter"
)

// Credit 직원 한 명에 대한 포인트 가산
type Credit struct {
	EmployeeID string     `json:"employee_id"`
	Role       CreditRole `json:"role"`
	Amount     int64      `json:"amount"`
}

// CreditEvent 완료 시 발생하는 적립 이벤트. 직원 누계 반영은 저장 계층이 한다.
type CreditEvent struct {
	RequestID int64    `json:"request_id"`
	Credits   []Credit `json:"credits"`
}

// CreateInput 요청 생성 입력
type CreateInput struct {
	Applicant string
	Intent    ParsedIntent
	At        time.Time
	ThreadID  string
	Source    string // 비어 있으면 webhook
}

// Lifecycle 운송 요청 상태 전이
//
//	pending --Assign--> in_progress --Complete--> completed
//
// 모든 연산은 호출자가 넘긴 전체 컬렉션(삭제된 행 포함) 위에서 동작하며
// 호출자가 load→mutate→save 를 하나의 단위로 직렬화한다고 가정한다.
type Lifecycle struct {
	loc *time.Location
}

// NewLifecycle 날짜 계산에 쓸 시간대를 받아 Lifecycle 을 만든다.
func NewLifecycle(loc *time.Location) *Lifecycle {
	if loc == nil {
		loc = time.Local
	}
	return &Lifecycle{loc: loc}
}

// Date 시각을 YYYY-MM-DD 로
func (l *Lifecycle) Date(t time.Time) string {
	return t.In(l.loc).Format(model.DateLayout)
}

// NextID 다음 요청 ID (max+1, 비어 있으면 1). 삭제된 행도 포함해 계산한다.
func NextID(all []*model.TransportRequest) int64 {
	var maxID int64
	for _, r := range all {
		if r.ID > maxID {
			maxID = r.ID
		}
	}
	return maxID + 1
}

// ────────────────────── Create ──────────────────────

// CreateRequest 새 대기중 요청을 만든다. 컬렉션에는 추가하지 않는다.
func (l *Lifecycle) CreateRequest(all []*model.TransportRequest, in CreateInput) (*model.TransportRequest, error) {
	if !in.Intent.HasRoute() {
		return nil, ErrMalformedRequest
	}
	applicant := strings.TrimSpace(in.Applicant)
	if applicant == "" {
		return nil, ErrEmptyApplicant
	}

	source := in.Source
	if source == "" {
		source = model.SourceWebhook
	}
	item := strings.TrimSpace(in.Intent.Item)
	if item == "" {
		item = DefaultItem
	}

	points := CalculatePoints(in.Intent.From, in.Intent.To)
	return &model.TransportRequest{
		ID:                NextID(all),
		RequestDate:       l.Date(in.At),
		Applicant:         applicant,
		FromLocation:      string(in.Intent.From),
		ToLocation:        string(in.Intent.To),
		Item:              item,
		ApplicantAmount:   points.Applicant,
		TransporterAmount: points.Transporter,
		Status:            model.StatusPending,
		Source:            source,
		ThreadID:          in.ThreadID,
		MessageID:         in.ThreadID,
		CreatedAt:         in.At,
		Version:           1,
	}, nil
}

// ────────────────────── Assign ──────────────────────

// AssignTransporter 전달자를 배정한다.
//
// replyTo 가 있으면 MessageID 가 일치하는 대기중 요청만 대상이다.
// 없으면 전달자가 비어 있는 대기중 요청 중 가장 최근 생성된 것(동률이면 큰 ID)을 고른다.
// 선택된 요소는 컬렉션 안에서 직접 변경된다.
func (l *Lifecycle) AssignTransporter(all []*model.TransportRequest, transporter, replyTo string, at time.Time) (*model.TransportRequest, error) {
	transporter = strings.TrimSpace(transporter)
	replyTo = strings.TrimSpace(replyTo)

	var target *model.TransportRequest
	for _, r := range all {
		if r.IsDeleted() || r.Status != model.StatusPending {
			continue
		}
		if replyTo != "" {
			if r.MessageID != replyTo {
				continue
			}
		} else if r.Transporter != "" {
			continue
		}
		if target == nil || newer(r.CreatedAt, r.ID, target.CreatedAt, target.ID) {
			target = r
		}
	}
	if target == nil {
		return nil, ErrNoPendingRequest
	}

	updated := at
	target.Transporter = transporter
	target.Status = model.StatusInProgress
	target.UpdatedAt = &updated
	return target, nil
}

// ────────────────────── Complete ──────────────────────

// CompleteRequest 가장 최근 활동(UpdatedAt, 없으면 CreatedAt)의 진행중 요청을 완료한다.
// 동률이면 큰 ID. 완료와 함께 요청자/전달자 적립 이벤트를 돌려준다.
func (l *Lifecycle) CompleteRequest(all []*model.TransportRequest, at time.Time) (*model.TransportRequest, *CreditEvent, error) {
	var target *model.TransportRequest
	for _, r := range all {
		if r.IsDeleted() || r.Status != model.StatusInProgress {
			continue
		}
		if target == nil || newer(r.LastActivity(), r.ID, target.LastActivity(), target.ID) {
			target = r
		}
	}
	if target == nil {
		return nil, nil, ErrNoInProgressRequest
	}

	completed := at
	target.Status = model.StatusCompleted
	target.AccumulateDate = l.Date(at)
	target.CompletedAt = &completed
	target.UpdatedAt = &completed

	return target, CreditsFor(target), nil
}

// CreditsFor 완료된 요청에서 발생하는 적립 이벤트. 비어 있는 당사자는 건너뛴다.
func CreditsFor(r *model.TransportRequest) *CreditEvent {
	ev := &CreditEvent{RequestID: r.ID}
	if r.Applicant != "" && r.ApplicantAmount != 0 {
		ev.Credits = append(ev.Credits, Credit{EmployeeID: r.Applicant, Role: RoleApplicant, Amount: r.ApplicantAmount})
	}
	if r.Transporter != "" && r.TransporterAmount != 0 {
		ev.Credits = append(ev.Credits, Credit{EmployeeID: r.Transporter, Role: RoleTransporter, Amount: r.TransporterAmount})
	}
	return ev
}

func newer(at time.Time, id int64, otherAt time.Time, otherID int64) bool {
	if at.Equal(otherAt) {
		return id > otherID
	}
	return at.After(otherAt)
}
