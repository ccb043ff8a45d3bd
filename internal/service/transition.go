package service

import (
	"context"
	"errors"
	"fmt"
	"time"

	"gorm.io/gorm"

	"github.com/seunghochoi2018/soslab/config"
	"github.com/seunghochoi2018/soslab/internal/courier"
	"github.com/seunghochoi2018/soslab/internal/dto"
	"github.com/seunghochoi2018/soslab/internal/model"
	"github.com/seunghochoi2018/soslab/internal/repository"
)

// ErrEmptySender 요청/수락에는 보낸 사람이 필요하다
var ErrEmptySender = errors.New("보낸 사람을 알 수 없습니다")

// NewParser 설정의 키워드 규칙으로 파서를 만든다. 비어 있는 항목은 기본값.
func NewParser(cfg *config.ParserConfig) *courier.Parser {
	opts := courier.ParserOptions{
		Command:      cfg.Command,
		ItemKeywords: cfg.ItemKeywords,
	}
	for _, r := range cfg.Rules {
		opts.Rules = append(opts.Rules, courier.IntentRule{
			Intent:   courier.IntentType(r.Intent),
			Keywords: r.Keywords,
		})
	}
	return courier.NewParser(opts)
}

// hintKeywords 사용법 안내 키워드
func hintKeywords(cfg *config.ParserConfig) []string {
	if len(cfg.HintKeywords) > 0 {
		return cfg.HintKeywords
	}
	return courier.DefaultHintKeywords()
}

// chatEvent 해석이 끝난 메시지 한 건
type chatEvent struct {
	Intent   courier.ParsedIntent
	Sender   string
	At       time.Time
	ThreadID string
	ReplyTo  string
	Source   string
}

// transition 상태 전이 한 건의 결과
type transition struct {
	Action  string
	Record  *model.TransportRequest
	Credits *courier.CreditEvent
}

// applyEvent 전체 컬렉션 위에서 상태 전이를 하나 적용하고 tx 로 저장한다.
// 생성된 요청은 반환되는 컬렉션에 추가된다. 호출자는 쓰기 잠금과 트랜잭션 안에 있어야 한다.
func applyEvent(
	ctx context.Context,
	tx *repository.Repository,
	lc *courier.Lifecycle,
	all []*model.TransportRequest,
	ev chatEvent,
) ([]*model.TransportRequest, *transition, error) {
	switch ev.Intent.Type {
	case courier.IntentRequest:
		if ev.Sender == "" {
			return all, nil, ErrEmptySender
		}
		r, err := lc.CreateRequest(all, courier.CreateInput{
			Applicant: ev.Sender,
			Intent:    ev.Intent,
			At:        ev.At,
			ThreadID:  ev.ThreadID,
			Source:    ev.Source,
		})
		if err != nil {
			return all, nil, err
		}
		if err := tx.TransportRequest.Create(ctx, r); err != nil {
			return all, nil, fmt.Errorf("save transport request: %w", err)
		}
		return append(all, r), &transition{Action: dto.ActionRequestCreated, Record: r}, nil

	case courier.IntentAccept:
		if ev.Sender == "" {
			return all, nil, ErrEmptySender
		}
		r, err := lc.AssignTransporter(all, ev.Sender, ev.ReplyTo, ev.At)
		if err != nil {
			return all, nil, err
		}
		if err := tx.TransportRequest.Update(ctx, r); err != nil {
			return all, nil, fmt.Errorf("save transport request %d: %w", r.ID, err)
		}
		return all, &transition{Action: dto.ActionTransporterAssigned, Record: r}, nil

	case courier.IntentComplete:
		r, credits, err := lc.CompleteRequest(all, ev.At)
		if err != nil {
			return all, nil, err
		}
		if err := tx.TransportRequest.Update(ctx, r); err != nil {
			return all, nil, fmt.Errorf("save transport request %d: %w", r.ID, err)
		}
		if err := applyCredits(ctx, tx, credits); err != nil {
			return all, nil, err
		}
		return all, &transition{Action: dto.ActionCompleted, Record: r, Credits: credits}, nil
	}
	return all, nil, courier.ErrUnrecognizedMessage
}

// applyCredits 적립 이벤트를 직원 누계에 더한다.
// 등록되지 않은 직원은 핸들을 이름으로 하여 새로 만든다.
func applyCredits(ctx context.Context, tx *repository.Repository, ev *courier.CreditEvent) error {
	if ev == nil {
		return nil
	}
	for _, c := range ev.Credits {
		err := tx.Employee.AddPoints(ctx, c.EmployeeID, c.Amount)
		if errors.Is(err, gorm.ErrRecordNotFound) {
			err = tx.Employee.Create(ctx, &model.Employee{
				EmployeeID:  c.EmployeeID,
				Name:        c.EmployeeID,
				TotalPoints: c.Amount,
			})
		}
		if err != nil {
			return fmt.Errorf("credit %s for request %d: %w", c.EmployeeID, ev.RequestID, err)
		}
	}
	return nil
}
