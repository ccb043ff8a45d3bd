package service

import (
	"context"
	"crypto/sha256"
	"crypto/subtle"
	"encoding/hex"
	"errors"
	"fmt"
	"regexp"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/seunghochoi2018/soslab/config"
	"github.com/seunghochoi2018/soslab/internal/courier"
	"github.com/seunghochoi2018/soslab/internal/dto"
	"github.com/seunghochoi2018/soslab/internal/model"
	"github.com/seunghochoi2018/soslab/internal/notify"
	"github.com/seunghochoi2018/soslab/internal/repository"
)

// ── 웹훅 업무 오류 ──

var (
	ErrWebhookToken = errors.New("웹훅 토큰이 일치하지 않습니다")
	ErrEmptyMessage = errors.New("메시지가 비어 있습니다")
)

// WebhookService 채팅 웹훅 처리
type WebhookService interface {
	// Handle 메시지 한 건을 해석해 요청 생성/전달자 배정/완료 중 하나를 적용한다.
	Handle(ctx context.Context, payload *dto.WebhookPayload) (*dto.WebhookResult, error)
}

type webhookService struct {
	cfg       *config.Config
	repo      *repository.Repository
	parser    *courier.Parser
	lifecycle *courier.Lifecycle
	coord     Coordination
	notifier  notify.Notifier
	logger    *zap.Logger
	now       func() time.Time
}

// NewWebhookService WebhookService 생성
func NewWebhookService(
	cfg *config.Config,
	repo *repository.Repository,
	coord Coordination,
	notifier notify.Notifier,
	logger *zap.Logger,
) WebhookService {
	return &webhookService{
		cfg:       cfg,
		repo:      repo,
		parser:    NewParser(&cfg.Parser),
		lifecycle: courier.NewLifecycle(cfg.App.Location()),
		coord:     coord,
		notifier:  notifier,
		logger:    logger,
		now:       time.Now,
	}
}

func (s *webhookService) Handle(ctx context.Context, payload *dto.WebhookPayload) (*dto.WebhookResult, error) {
	if want := s.cfg.Webhook.Token; want != "" {
		if subtle.ConstantTimeCompare([]byte(want), []byte(payload.Token)) != 1 {
			return nil, ErrWebhookToken
		}
	}

	message := payload.GetMessage()
	if message == "" {
		return nil, ErrEmptyMessage
	}
	intent := s.parser.Parse(message)
	log := s.logger.With(
		zap.String("sender", payload.GetSender()),
		zap.String("intent", string(intent.Type)),
		zap.String("thread_id", payload.GetThreadID()),
	)
	at, ok := s.parseTimestamp(payload.Timestamp)
	if !ok {
		log.Warn("timestamp 해석 실패, 대체 시각 사용", zap.String("timestamp", payload.Timestamp), zap.Time("at", at))
	}

	// 1. 상태를 바꾸지 않는 경우: 안내만 보낸다
	if intent.Type == courier.IntentUnrecognized {
		if courier.ContainsAny(message, hintKeywords(&s.cfg.Parser)) {
			s.notifier.Notify(notify.UsageHint(s.parser.Command()))
		}
		log.Debug("인식하지 못한 메시지")
		return nil, courier.ErrUnrecognizedMessage
	}
	if intent.Malformed() {
		s.notifier.Notify(notify.MalformedRequest(s.parser.Command()))
		log.Info("사무실 명칭을 해석하지 못한 요청", zap.String("message", message))
		return nil, courier.ErrMalformedRequest
	}

	// 2. 같은 메시지의 재전송 차단
	threadID := payload.GetThreadID()
	dedupeKey := deliveryKey(threadID, payload.GetSender(), message)
	if dedupeKey != "" {
		first, err := s.coord.Deduper.MarkOnce(ctx, dedupeKey, s.cfg.Webhook.DedupeWindow())
		if err != nil {
			log.Warn("중복 확인 실패, 계속 처리", zap.Error(err))
		} else if !first {
			log.Info("중복 이벤트 무시")
			return &dto.WebhookResult{Action: dto.ActionDuplicate}, nil
		}
	}

	ev := chatEvent{
		Intent:   intent,
		Sender:   payload.GetSender(),
		At:       at,
		ThreadID: threadID,
		ReplyTo:  payload.GetReplyTo(),
		Source:   model.SourceWebhook,
	}
	t, err := s.apply(ctx, ev)
	if err != nil {
		if dedupeKey != "" {
			if ferr := s.coord.Deduper.Forget(ctx, dedupeKey); ferr != nil {
				log.Warn("중복 표시 해제 실패", zap.Error(ferr))
			}
		}
		if isDomainError(err) {
			log.Info("웹훅 처리 거절", zap.Error(err))
		} else {
			log.Error("웹훅 처리 실패", zap.Error(err))
		}
		return nil, err
	}

	// 3. 커밋 이후 알림
	switch t.Action {
	case dto.ActionRequestCreated:
		s.notifier.Notify(notify.RequestCreated(t.Record))
	case dto.ActionTransporterAssigned:
		s.notifier.Notify(notify.TransporterAssigned(t.Record))
	case dto.ActionCompleted:
		s.notifier.Notify(notify.RequestCompleted(t.Record))
	}
	log.Info("웹훅 처리 완료", zap.String("action", t.Action), zap.Int64("record_id", t.Record.ID))

	rec := dto.NewRecordResponse(t.Record)
	return &dto.WebhookResult{Action: t.Action, Record: &rec, Credits: t.Credits}, nil
}

// apply 쓰기 잠금 → 트랜잭션 → 전체 로드 → 전이 → 저장
func (s *webhookService) apply(ctx context.Context, ev chatEvent) (*transition, error) {
	unlock, err := acquireWriterLock(ctx, s.coord.Locker, s.cfg.Webhook.WriterLockTTL())
	if err != nil {
		return nil, err
	}
	defer unlock()

	var result *transition
	err = s.repo.Transaction(ctx, func(tx *repository.Repository) error {
		all, err := tx.TransportRequest.ListAll(ctx)
		if err != nil {
			return fmt.Errorf("load transport requests: %w", err)
		}
		_, result, err = applyEvent(ctx, tx, s.lifecycle, all, ev)
		return err
	})
	if err != nil {
		return nil, err
	}
	return result, nil
}

// deliveryKey 재전송 판별 키. 같은 스레드의 댓글은 ID 를 공유하므로 보낸 사람과 본문까지 묶는다.
func deliveryKey(threadID, sender, message string) string {
	if threadID == "" {
		return ""
	}
	sum := sha256.Sum256([]byte(sender + "\x00" + message))
	return "webhook:" + threadID + ":" + hex.EncodeToString(sum[:8])
}

var timestampLayouts = []string{
	time.RFC3339Nano,
	"2006-01-02T15:04:05.999999999Z0700",
	"2006-01-02T15:04Z07:00",
	"2006-01-02T15:04Z0700",
	"2006-01-02T15:04:05.999999999",
	"2006-01-02T15:04",
	"2006-01-02 15:04:05",
	"2006-01-02 15:04",
	"20060102T150405Z0700",
	"20060102T150405",
	"2006-01-02",
	"20060102",
}

var leadingDate = regexp.MustCompile(`^(\d{4})-(\d{2})-(\d{2})`)

// parseTimestamp 빈 값이면 현재 시각. 시간대가 없는 값은 app.timezone 기준으로 본다.
// 어떤 형식에도 맞지 않으면 앞의 YYYY-MM-DD(당일 0시) 또는 현재 시각으로 대신하고 false 를 돌려준다.
func (s *webhookService) parseTimestamp(raw string) (time.Time, bool) {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return s.now(), true
	}
	loc := s.cfg.App.Location()
	for _, layout := range timestampLayouts {
		if t, err := time.ParseInLocation(layout, raw, loc); err == nil {
			return t, true
		}
	}
	if m := leadingDate.FindString(raw); m != "" {
		if t, err := time.ParseInLocation("2006-01-02", m, loc); err == nil {
			return t, false
		}
	}
	return s.now(), false
}

// isDomainError 사용자 입력으로 인한 거절인지 (로그 수준 결정용)
func isDomainError(err error) bool {
	return errors.Is(err, courier.ErrNoPendingRequest) ||
		errors.Is(err, courier.ErrNoInProgressRequest) ||
		errors.Is(err, courier.ErrMalformedRequest) ||
		errors.Is(err, courier.ErrUnrecognizedMessage) ||
		errors.Is(err, courier.ErrEmptyApplicant) ||
		errors.Is(err, ErrEmptySender)
}
