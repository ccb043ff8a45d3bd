package notify

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"
	"time"

	"go.uber.org/zap"

	"github.com/seunghochoi2018/soslab/internal/model"
)

func TestJandiSender_Payload(t *testing.T) {
	var got jandiPayload
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodPost {
			t.Errorf("기대 POST, 실제 %s", r.Method)
		}
		if err := json.NewDecoder(r.Body).Decode(&got); err != nil {
			t.Errorf("payload 해석 실패: %v", err)
		}
		w.WriteHeader(http.StatusOK)
	}))
	defer srv.Close()

	s := NewJandiSender(srv.URL, time.Second)
	err := s.Send(context.Background(), Message{Title: "제목", Body: "본문", Color: ColorHint})
	if err != nil {
		t.Fatalf("Send 실패: %v", err)
	}

	if got.Body != "본문" || got.ConnectColor != ColorHint {
		t.Errorf("body/color 불일치: %+v", got)
	}
	if len(got.ConnectInfo) != 1 || got.ConnectInfo[0].Title != "제목" || got.ConnectInfo[0].Description != "본문" {
		t.Errorf("connectInfo 불일치: %+v", got.ConnectInfo)
	}
}

func TestJandiSender_DefaultColor(t *testing.T) {
	var got jandiPayload
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_ = json.NewDecoder(r.Body).Decode(&got)
	}))
	defer srv.Close()

	if err := NewJandiSender(srv.URL, time.Second).Send(context.Background(), Message{Title: "t", Body: "b"}); err != nil {
		t.Fatalf("Send 실패: %v", err)
	}
	if got.ConnectColor != ColorInfo {
		t.Errorf("기대 기본 색상 %s, 실제 %s", ColorInfo, got.ConnectColor)
	}
}

func TestJandiSender_ErrorStatus(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "nope", http.StatusBadRequest)
	}))
	defer srv.Close()

	err := NewJandiSender(srv.URL, time.Second).Send(context.Background(), Message{Title: "t", Body: "b"})
	if err == nil || !strings.Contains(err.Error(), "400") {
		t.Errorf("기대 400 오류, 실제: %v", err)
	}
}

// ── Dispatcher ──

type recordingSender struct {
	mu   sync.Mutex
	msgs []Message
	err  error
}

func (s *recordingSender) Send(_ context.Context, msg Message) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.msgs = append(s.msgs, msg)
	return s.err
}

func (s *recordingSender) titles() []string {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]string, 0, len(s.msgs))
	for _, m := range s.msgs {
		out = append(out, m.Title)
	}
	return out
}

func TestDispatcher_DeliversInOrderAndDrainsOnClose(t *testing.T) {
	rec := &recordingSender{}
	d := NewDispatcher(rec, 16, time.Second, zap.NewNop())

	d.Notify(Message{Title: "a"})
	d.Notify(Message{Title: "b"})
	d.Notify(Message{Title: "c"})
	d.Close()

	got := rec.titles()
	if strings.Join(got, ",") != "a,b,c" {
		t.Errorf("기대 a,b,c, 실제 %v", got)
	}
}

func TestDispatcher_SendErrorIsSwallowed(t *testing.T) {
	rec := &recordingSender{err: errors.New("down")}
	d := NewDispatcher(rec, 4, time.Second, zap.NewNop())
	d.Notify(Message{Title: "x"})
	d.Close()

	if len(rec.titles()) != 1 {
		t.Error("실패해도 전송 시도는 한 번 해야 함")
	}
}

func TestDispatcher_NotifyAfterCloseIsIgnored(t *testing.T) {
	rec := &recordingSender{}
	d := NewDispatcher(rec, 4, time.Second, zap.NewNop())
	d.Close()
	d.Notify(Message{Title: "late"})
	d.Close()

	if len(rec.titles()) != 0 {
		t.Errorf("종료 후 알림은 무시되어야 함: %v", rec.titles())
	}
}

// ── 메시지 ──

func TestMessages(t *testing.T) {
	r := &model.TransportRequest{
		ID: 8, Applicant: "Paul", Transporter: "Kai",
		FromLocation: "판교", ToLocation: "광주본사", Item: "센서",
		ApplicantAmount: 5000, TransporterAmount: 10000,
	}

	created := RequestCreated(r)
	if !strings.Contains(created.Body, "#8번") || !strings.Contains(created.Body, "5,000P") {
		t.Errorf("접수 메시지 불일치: %s", created.Body)
	}

	done := RequestCompleted(r)
	if !strings.Contains(done.Body, "Kai (+10,000P)") {
		t.Errorf("완료 메시지 불일치: %s", done.Body)
	}

	if m := MalformedRequest("/싣고받고"); m.Color != ColorError || !strings.Contains(m.Body, "/싣고받고 평촌 판교 센서") {
		t.Errorf("안내 메시지 불일치: %+v", m)
	}

	minus := PointAdjustment("Paul", -3000, "정정", 12000)
	if minus.Color != ColorError || !strings.Contains(minus.Body, "-3,000P") || !strings.Contains(minus.Body, "차감") {
		t.Errorf("차감 메시지 불일치: %s", minus.Body)
	}
}

func TestFormatPoints(t *testing.T) {
	cases := map[int64]string{0: "0", 999: "999", 5000: "5,000", 1234567: "1,234,567", -10000: "-10,000"}
	for in, want := range cases {
		if got := formatPoints(in); got != want {
			t.Errorf("formatPoints(%d)=%s, 기대 %s", in, got, want)
		}
	}
}

func TestMessage_JSONFields(t *testing.T) {
	raw, err := json.Marshal(Message{Title: "제목", Body: "본문", Color: ColorSuccess})
	if err != nil {
		t.Fatalf("Marshal 실패: %v", err)
	}
	var fields map[string]string
	if err := json.Unmarshal(raw, &fields); err != nil {
		t.Fatalf("Unmarshal 실패: %v", err)
	}
	if fields["title"] != "제목" || fields["body"] != "본문" || fields["colorHint"] != ColorSuccess {
		t.Errorf("알림 필드 이름 오류: %s", raw)
	}
}
