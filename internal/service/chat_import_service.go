package service

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"regexp"
	"strconv"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/seunghochoi2018/soslab/config"
	"github.com/seunghochoi2018/soslab/internal/courier"
	"github.com/seunghochoi2018/soslab/internal/dto"
	"github.com/seunghochoi2018/soslab/internal/model"
	"github.com/seunghochoi2018/soslab/internal/repository"
)

var ErrEmptyChatText = errors.New("대화 내용이 비어 있습니다")

// unknownSpeaker 발화자를 알 수 없는 줄의 신청자/전달자
const unknownSpeaker = "미지정"

// 대화 기록에서만 쓰는 수락 표현
var chatAcceptKeywords = []string{"전달드리겠습니다", "제가 전달", "전달하겠습니다"}

var (
	chatDatePattern = regexp.MustCompile(`(\d{4})년\s*(\d{1,2})월\s*(\d{1,2})일`)
	// [Paul(윤희선)] [오후 2:13] 메시지
	bracketSpeakerPattern = regexp.MustCompile(`^\[([^\]]+)\]\s*(?:\[[^\]]*\]\s*)?(.*)$`)
	// Paul(윤희선): 메시지
	colonSpeakerPattern = regexp.MustCompile(`^([^\s:][^:]{0,40}?)\s*:\s+(.+)$`)
)

// ChatImportService 붙여넣은 대화 기록을 순서대로 재생한다.
type ChatImportService interface {
	Import(ctx context.Context, req *dto.ChatImportRequest, callerID string) (*dto.ChatImportResponse, error)
}

type chatImportService struct {
	cfg       *config.Config
	repo      *repository.Repository
	parser    *courier.Parser
	lifecycle *courier.Lifecycle
	locker    Locker
	logger    *zap.Logger
	now       func() time.Time
}

// NewChatImportService ChatImportService 생성
func NewChatImportService(cfg *config.Config, repo *repository.Repository, locker Locker, logger *zap.Logger) ChatImportService {
	parser := chatImportParser(&cfg.Parser)
	return &chatImportService{
		cfg:       cfg,
		repo:      repo,
		parser:    parser,
		lifecycle: courier.NewLifecycle(cfg.App.Location()),
		locker:    locker,
		logger:    logger,
		now:       time.Now,
	}
}

// chatImportParser 설정 규칙(없으면 기본 규칙) 뒤에 대화 기록용 수락 규칙을 붙인다.
func chatImportParser(cfg *config.ParserConfig) *courier.Parser {
	opts := courier.ParserOptions{
		Command:      cfg.Command,
		ItemKeywords: cfg.ItemKeywords,
	}
	if len(cfg.Rules) == 0 {
		opts.Rules = courier.DefaultIntentRules()
	}
	for _, r := range cfg.Rules {
		opts.Rules = append(opts.Rules, courier.IntentRule{Intent: courier.IntentType(r.Intent), Keywords: r.Keywords})
	}
	opts.Rules = append(opts.Rules, courier.IntentRule{Intent: courier.IntentAccept, Keywords: chatAcceptKeywords})
	return courier.NewParser(opts)
}

// chatLine 대화 한 줄
type chatLine struct {
	Speaker string
	Text    string
	At      time.Time
}

// splitChat 날짜 머리글과 발화자를 해석해 메시지 줄만 돌려준다.
// 같은 날짜 안에서는 줄 순서대로 1초씩 증가하는 시각을 붙인다.
func splitChat(text string, start time.Time, loc *time.Location) []chatLine {
	day := time.Date(start.Year(), start.Month(), start.Day(), 0, 0, 0, 0, loc)
	offset := 0

	var lines []chatLine
	sc := bufio.NewScanner(strings.NewReader(text))
	sc.Buffer(make([]byte, 0, 64*1024), 1024*1024)
	for sc.Scan() {
		raw := strings.TrimSpace(sc.Text())
		if raw == "" {
			continue
		}
		if m := chatDatePattern.FindStringSubmatch(raw); m != nil && !strings.Contains(raw, ":") {
			y, _ := strconv.Atoi(m[1])
			mo, _ := strconv.Atoi(m[2])
			d, _ := strconv.Atoi(m[3])
			day = time.Date(y, time.Month(mo), d, 0, 0, 0, 0, loc)
			offset = 0
			continue
		}

		speaker, body := splitSpeaker(raw)
		lines = append(lines, chatLine{
			Speaker: speaker,
			Text:    body,
			At:      day.Add(time.Duration(offset) * time.Second),
		})
		offset++
	}
	return lines
}

func splitSpeaker(line string) (string, string) {
	if m := bracketSpeakerPattern.FindStringSubmatch(line); m != nil {
		return courier.ResolveIdentity(m[1]), strings.TrimSpace(m[2])
	}
	if m := colonSpeakerPattern.FindStringSubmatch(line); m != nil {
		return courier.ResolveIdentity(m[1]), strings.TrimSpace(m[2])
	}
	return "", line
}

// Import 모든 줄을 하나의 트랜잭션에서 적용한다. 알림은 보내지 않는다.
// 해석되지 않거나 상태 전이에 실패한 줄은 건너뛴 것으로 센다.
func (s *chatImportService) Import(ctx context.Context, req *dto.ChatImportRequest, callerID string) (*dto.ChatImportResponse, error) {
	if strings.TrimSpace(req.ChatText) == "" {
		return nil, ErrEmptyChatText
	}
	loc := s.cfg.App.Location()
	lines := splitChat(req.ChatText, s.now().In(loc), loc)

	unlock, err := acquireWriterLock(ctx, s.locker, s.cfg.Webhook.WriterLockTTL())
	if err != nil {
		return nil, err
	}
	defer unlock()

	var resp *dto.ChatImportResponse
	err = s.repo.Transaction(ctx, func(tx *repository.Repository) error {
		all, err := tx.TransportRequest.ListAll(ctx)
		if err != nil {
			return fmt.Errorf("load transport requests: %w", err)
		}

		out := &dto.ChatImportResponse{Records: []dto.RecordResponse{}}
		for i, line := range lines {
			intent := s.parser.Parse(line.Text)
			if intent.Type == courier.IntentUnrecognized {
				continue
			}
			if intent.Malformed() {
				out.Skipped++
				continue
			}

			ev := chatEvent{
				Intent: intent,
				Sender: orDefault(line.Speaker, unknownSpeaker),
				At:     line.At,
				Source: model.SourceChatImport,
			}
			var t *transition
			all, t, err = applyEvent(ctx, tx, s.lifecycle, all, ev)
			if err != nil {
				if isDomainError(err) {
					s.logger.Debug("대화 줄 건너뜀", zap.Int("line", i+1), zap.Error(err))
					out.Skipped++
					continue
				}
				return err
			}

			switch t.Action {
			case dto.ActionRequestCreated:
				out.Added++
				out.Records = append(out.Records, dto.NewRecordResponse(t.Record))
			case dto.ActionTransporterAssigned:
				out.Assigned++
			case dto.ActionCompleted:
				out.Completed++
			}
		}
		resp = out
		return nil
	})
	if err != nil {
		s.logger.Error("대화 가져오기 실패", zap.Error(err))
		return nil, err
	}

	s.logger.Info("대화 가져오기 완료",
		zap.String("caller", callerID),
		zap.Int("lines", len(lines)),
		zap.Int("added", resp.Added),
		zap.Int("assigned", resp.Assigned),
		zap.Int("completed", resp.Completed),
		zap.Int("skipped", resp.Skipped),
	)
	return resp, nil
}
