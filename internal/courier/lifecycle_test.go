package courier

import (
	"errors"
	"testing"
	"time"

	"gorm.io/gorm"

	"github.com/seunghochoi2018/soslab/internal/model"
)

var (
	seoul = time.FixedZone("KST", 9*60*60)
	t0    = time.Date(2025, 9, 20, 10, 0, 0, 0, seoul)
)

func routeIntent(from, to Office, item string) ParsedIntent {
	return ParsedIntent{Type: IntentRequest, From: from, To: to, Item: item}
}

func TestCreateRequest_AllocatesSequentialIDs(t *testing.T) {
	lc := NewLifecycle(seoul)
	var all []*model.TransportRequest

	first, err := lc.CreateRequest(all, CreateInput{Applicant: "Paul", Intent: routeIntent(OfficePyeongchon, OfficePangyo, "센서"), At: t0})
	if err != nil {
		t.Fatalf("생성 실패: %v", err)
	}
	all = append(all, first)
	second, err := lc.CreateRequest(all, CreateInput{Applicant: "Paul", Intent: routeIntent(OfficePyeongchon, OfficePangyo, "센서"), At: t0})
	if err != nil {
		t.Fatalf("생성 실패: %v", err)
	}

	if first.ID != 1 {
		t.Errorf("빈 컬렉션의 첫 ID 는 1, 실제 %d", first.ID)
	}
	if second.ID != first.ID+1 {
		t.Errorf("두 번째 ID 는 %d 여야 함, 실제 %d", first.ID+1, second.ID)
	}
}

func TestCreateRequest_Fields(t *testing.T) {
	lc := NewLifecycle(seoul)
	r, err := lc.CreateRequest(nil, CreateInput{
		Applicant: "Jack",
		Intent:    routeIntent(OfficePangyo, OfficeGwangjuHQ, ""),
		At:        t0,
		ThreadID:  "msg-1",
	})
	if err != nil {
		t.Fatalf("생성 실패: %v", err)
	}
	if r.Status != model.StatusPending || r.Source != model.SourceWebhook {
		t.Errorf("상태/출처 오류: %s / %s", r.Status, r.Source)
	}
	if r.ApplicantAmount != 5000 || r.TransporterAmount != 10000 {
		t.Errorf("포인트 오류: %d / %d", r.ApplicantAmount, r.TransporterAmount)
	}
	if r.Item != DefaultItem {
		t.Errorf("기본 물품 기대, 실제 %q", r.Item)
	}
	if r.RequestDate != "2025-09-20" {
		t.Errorf("요청일 오류: %s", r.RequestDate)
	}
	if r.MessageID != "msg-1" || r.ThreadID != "msg-1" {
		t.Errorf("스레드 ID 오류: %s / %s", r.ThreadID, r.MessageID)
	}
	if r.Transporter != "" || r.AccumulateDate != "" {
		t.Error("신규 요청은 전달자/적립일이 비어 있어야 함")
	}
}

func TestCreateRequest_Malformed(t *testing.T) {
	lc := NewLifecycle(seoul)
	_, err := lc.CreateRequest(nil, CreateInput{Applicant: "Paul", Intent: ParsedIntent{Type: IntentRequest}, At: t0})
	if !errors.Is(err, ErrMalformedRequest) {
		t.Errorf("기대 ErrMalformedRequest, 실제 %v", err)
	}
}

func TestCreateRequest_IDsNotReusedAfterDelete(t *testing.T) {
	lc := NewLifecycle(seoul)
	deleted := &model.TransportRequest{ID: 7, Status: model.StatusCompleted}
	deleted.DeletedAt = gorm.DeletedAt{Time: t0, Valid: true}
	all := []*model.TransportRequest{{ID: 3, Status: model.StatusCompleted}, deleted}

	r, err := lc.CreateRequest(all, CreateInput{Applicant: "Paul", Intent: routeIntent(OfficePyeongchon, OfficePangyo, "박스"), At: t0})
	if err != nil {
		t.Fatalf("생성 실패: %v", err)
	}
	if r.ID != 8 {
		t.Errorf("삭제된 ID 7 이후인 8 기대, 실제 %d", r.ID)
	}
}

func TestAssignTransporter_EmptyFails(t *testing.T) {
	lc := NewLifecycle(seoul)
	_, err := lc.AssignTransporter(nil, "Kai", "", t0)
	if !errors.Is(err, ErrNoPendingRequest) {
		t.Errorf("기대 ErrNoPendingRequest, 실제 %v", err)
	}
}

func TestAssignTransporter_PicksLatestPending(t *testing.T) {
	lc := NewLifecycle(seoul)
	all := []*model.TransportRequest{
		{ID: 1, Status: model.StatusPending, CreatedAt: t0},
		{ID: 2, Status: model.StatusPending, CreatedAt: t0.Add(time.Hour)},
		{ID: 3, Status: model.StatusPending, CreatedAt: t0.Add(time.Hour)},
		{ID: 4, Status: model.StatusPending, CreatedAt: t0.Add(-time.Hour)},
	}
	got, err := lc.AssignTransporter(all, "Kai", "", t0.Add(2*time.Hour))
	if err != nil {
		t.Fatalf("배정 실패: %v", err)
	}
	if got.ID != 3 {
		t.Errorf("동률이면 큰 ID(3) 기대, 실제 %d", got.ID)
	}
	if got.Status != model.StatusInProgress || got.Transporter != "Kai" || got.UpdatedAt == nil {
		t.Errorf("전이 결과 오류: %+v", got)
	}
	if all[2].Transporter != "Kai" {
		t.Error("컬렉션 안의 요소가 직접 변경되어야 함")
	}
}

func TestAssignTransporter_ReplyCorrelation(t *testing.T) {
	lc := NewLifecycle(seoul)
	all := []*model.TransportRequest{
		{ID: 1, Status: model.StatusPending, CreatedAt: t0, MessageID: "thread-a"},
		{ID: 2, Status: model.StatusPending, CreatedAt: t0.Add(time.Hour), MessageID: "thread-b"},
	}
	got, err := lc.AssignTransporter(all, "Kai", "thread-a", t0.Add(2*time.Hour))
	if err != nil {
		t.Fatalf("배정 실패: %v", err)
	}
	if got.ID != 1 {
		t.Errorf("reply 대상(1) 기대, 실제 %d", got.ID)
	}

	if _, err := lc.AssignTransporter(all, "Anna", "thread-x", t0); !errors.Is(err, ErrNoPendingRequest) {
		t.Errorf("일치하는 요청이 없으면 ErrNoPendingRequest, 실제 %v", err)
	}
}

func TestAssignTransporter_SecondCallFails(t *testing.T) {
	lc := NewLifecycle(seoul)
	all := []*model.TransportRequest{{ID: 1, Status: model.StatusPending, CreatedAt: t0}}

	if _, err := lc.AssignTransporter(all, "Kai", "", t0); err != nil {
		t.Fatalf("첫 배정 실패: %v", err)
	}
	if _, err := lc.AssignTransporter(all, "Anna", "", t0); !errors.Is(err, ErrNoPendingRequest) {
		t.Errorf("두 번째 배정은 ErrNoPendingRequest, 실제 %v", err)
	}
	if all[0].Transporter != "Kai" {
		t.Errorf("전달자는 한 번만 설정되어야 함, 실제 %s", all[0].Transporter)
	}
}

func TestAssignTransporter_SkipsDeleted(t *testing.T) {
	lc := NewLifecycle(seoul)
	r := &model.TransportRequest{ID: 1, Status: model.StatusPending, CreatedAt: t0}
	r.DeletedAt = gorm.DeletedAt{Time: t0, Valid: true}
	if _, err := lc.AssignTransporter([]*model.TransportRequest{r}, "Kai", "", t0); !errors.Is(err, ErrNoPendingRequest) {
		t.Errorf("삭제된 요청은 대상이 아님, 실제 %v", err)
	}
}

func TestCompleteRequest_PicksLatestActivity(t *testing.T) {
	lc := NewLifecycle(seoul)
	updated := t0.Add(3 * time.Hour)
	all := []*model.TransportRequest{
		{ID: 1, Status: model.StatusInProgress, CreatedAt: t0, UpdatedAt: &updated, Applicant: "Paul", Transporter: "Kai", ApplicantAmount: 5000, TransporterAmount: 5000},
		{ID: 2, Status: model.StatusInProgress, CreatedAt: t0.Add(2 * time.Hour), Applicant: "Jack", Transporter: "Anna", ApplicantAmount: 5000, TransporterAmount: 10000},
		{ID: 3, Status: model.StatusCompleted, CreatedAt: t0.Add(5 * time.Hour)},
	}
	done := time.Date(2025, 9, 21, 23, 30, 0, 0, seoul)
	got, ev, err := lc.CompleteRequest(all, done)
	if err != nil {
		t.Fatalf("완료 실패: %v", err)
	}
	if got.ID != 1 {
		t.Errorf("최근 활동(1) 기대, 실제 %d", got.ID)
	}
	if got.Status != model.StatusCompleted || got.AccumulateDate != "2025-09-21" || got.CompletedAt == nil {
		t.Errorf("완료 전이 오류: %+v", got)
	}
	if ev == nil || len(ev.Credits) != 2 {
		t.Fatalf("적립 이벤트 2건 기대, 실제 %+v", ev)
	}
	if ev.Credits[0].EmployeeID != "Paul" || ev.Credits[0].Amount != 5000 || ev.Credits[1].EmployeeID != "Kai" {
		t.Errorf("적립 이벤트 내용 오류: %+v", ev.Credits)
	}
}

func TestCompleteRequest_NoneInProgress(t *testing.T) {
	lc := NewLifecycle(seoul)
	all := []*model.TransportRequest{{ID: 1, Status: model.StatusInProgress, CreatedAt: t0, Applicant: "Paul"}}

	if _, _, err := lc.CompleteRequest(all, t0); err != nil {
		t.Fatalf("완료 실패: %v", err)
	}
	_, ev, err := lc.CompleteRequest(all, t0)
	if !errors.Is(err, ErrNoInProgressRequest) {
		t.Errorf("두 번째 완료는 ErrNoInProgressRequest, 실제 %v", err)
	}
	if ev != nil {
		t.Error("실패 시 적립 이벤트가 없어야 함")
	}
}

func TestCompleteRequest_TieBreaksOnID(t *testing.T) {
	lc := NewLifecycle(seoul)
	all := []*model.TransportRequest{
		{ID: 5, Status: model.StatusInProgress, CreatedAt: t0},
		{ID: 9, Status: model.StatusInProgress, CreatedAt: t0},
	}
	got, _, err := lc.CompleteRequest(all, t0)
	if err != nil {
		t.Fatalf("완료 실패: %v", err)
	}
	if got.ID != 9 {
		t.Errorf("큰 ID(9) 기대, 실제 %d", got.ID)
	}
}

func TestCreditsFor_SkipsMissingTransporter(t *testing.T) {
	ev := CreditsFor(&model.TransportRequest{ID: 1, Applicant: "Jayone", ApplicantAmount: 5000, TransporterAmount: 10000})
	if len(ev.Credits) != 1 || ev.Credits[0].Role != RoleApplicant {
		t.Errorf("요청자 적립 1건만 기대, 실제 %+v", ev.Credits)
	}
}
