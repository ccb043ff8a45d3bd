package service

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"go.uber.org/zap"
	"gorm.io/gorm"

	"github.com/seunghochoi2018/soslab/config"
	"github.com/seunghochoi2018/soslab/internal/courier"
	"github.com/seunghochoi2018/soslab/internal/dto"
	"github.com/seunghochoi2018/soslab/internal/model"
	"github.com/seunghochoi2018/soslab/internal/repository"
	pkgerrors "github.com/seunghochoi2018/soslab/pkg/errors"
)

// ── 운송 기록 업무 오류 ──

var (
	ErrRecordNotFound     = errors.New("기록을 찾을 수 없습니다")
	ErrInvalidStatus      = errors.New("알 수 없는 상태입니다 (대기중/진행중/완료)")
	ErrStatusRegression   = errors.New("상태는 앞으로만 바꿀 수 있습니다")
	ErrAmountImmutable    = errors.New("자동 생성되었거나 완료된 기록의 금액은 바꿀 수 없습니다")
	ErrUnknownLocation    = errors.New("사무실 명칭을 해석할 수 없어 금액을 계산할 수 없습니다")
	ErrPendingTransporter = errors.New("전달자가 지정된 기록은 대기중일 수 없습니다")
	ErrAccumulateDate     = errors.New("적립일은 완료된 기록에만 있어야 합니다")
	ErrInvalidDate        = errors.New("날짜는 YYYY-MM-DD 형식이어야 합니다")
)

// RecordService 운송 기록 관리
type RecordService interface {
	List(ctx context.Context, req *dto.RecordListRequest) ([]dto.RecordResponse, int64, error)
	GetByID(ctx context.Context, id int64) (*dto.RecordResponse, error)
	Create(ctx context.Context, req *dto.CreateRecordRequest, callerID string) (*dto.RecordResponse, error)
	Update(ctx context.Context, id int64, req *dto.UpdateRecordRequest, callerID string) (*dto.RecordResponse, error)
	Delete(ctx context.Context, id int64, callerID string) error
	Stats(ctx context.Context, req *dto.RecordListRequest) (*dto.RecordStatsResponse, error)
}

type recordService struct {
	cfg       *config.Config
	repo      *repository.Repository
	lifecycle *courier.Lifecycle
	locker    Locker
	logger    *zap.Logger
	now       func() time.Time
}

// NewRecordService RecordService 생성
func NewRecordService(cfg *config.Config, repo *repository.Repository, locker Locker, logger *zap.Logger) RecordService {
	return &recordService{
		cfg:       cfg,
		repo:      repo,
		lifecycle: courier.NewLifecycle(cfg.App.Location()),
		locker:    locker,
		logger:    logger,
		now:       time.Now,
	}
}

// toFilter 조회 조건 변환. 상태는 한글 표기도 받는다.
func toFilter(req *dto.RecordListRequest) (repository.RecordFilter, error) {
	f := repository.RecordFilter{
		Search:   req.Search,
		DateFrom: req.DateFrom,
		DateTo:   req.DateTo,
		Source:   req.Source,
	}
	if req.Status != "" {
		status, ok := model.ParseStatus(req.Status)
		if !ok {
			return f, ErrInvalidStatus
		}
		f.Status = status
	}
	return f, nil
}

// ────────────────────── List ──────────────────────

func (s *recordService) List(ctx context.Context, req *dto.RecordListRequest) ([]dto.RecordResponse, int64, error) {
	filter, err := toFilter(req)
	if err != nil {
		return nil, 0, err
	}
	rows, total, err := s.repo.TransportRequest.Search(ctx, filter, req.GetOffset(), req.GetPageSize())
	if err != nil {
		s.logger.Error("기록 조회 실패", zap.Error(err))
		return nil, 0, err
	}
	out := make([]dto.RecordResponse, 0, len(rows))
	for i := range rows {
		out = append(out, dto.NewRecordResponse(&rows[i]))
	}
	return out, total, nil
}

// ────────────────────── GetByID ──────────────────────

func (s *recordService) GetByID(ctx context.Context, id int64) (*dto.RecordResponse, error) {
	r, err := s.repo.TransportRequest.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrRecordNotFound
		}
		s.logger.Error("기록 조회 실패", zap.Int64("id", id), zap.Error(err))
		return nil, err
	}
	resp := dto.NewRecordResponse(r)
	return &resp, nil
}

// ────────────────────── Create ──────────────────────

func (s *recordService) Create(ctx context.Context, req *dto.CreateRecordRequest, callerID string) (*dto.RecordResponse, error) {
	now := s.now()
	today := s.lifecycle.Date(now)

	from, to := strings.TrimSpace(req.FromLocation), strings.TrimSpace(req.ToLocation)
	fromOffice, fromOK := courier.Normalize(from)
	toOffice, toOK := courier.Normalize(to)
	if fromOK {
		from = string(fromOffice)
	}
	if toOK {
		to = string(toOffice)
	}

	var applicantAmount, transporterAmount int64
	if req.ApplicantAmount == nil || req.TransporterAmount == nil {
		if !fromOK || !toOK {
			return nil, ErrUnknownLocation
		}
		pts := courier.CalculatePoints(fromOffice, toOffice)
		applicantAmount, transporterAmount = pts.Applicant, pts.Transporter
	}
	if req.ApplicantAmount != nil {
		applicantAmount = *req.ApplicantAmount
	}
	if req.TransporterAmount != nil {
		transporterAmount = *req.TransporterAmount
	}

	r := &model.TransportRequest{
		RequestDate:       orDefault(req.RequestDate, today),
		Applicant:         strings.TrimSpace(req.Applicant),
		Transporter:       strings.TrimSpace(req.Transporter),
		FromLocation:      from,
		ToLocation:        to,
		Item:              orDefault(strings.TrimSpace(req.Item), courier.DefaultItem),
		ApplicantAmount:   applicantAmount,
		TransporterAmount: transporterAmount,
		AccumulateDate:    req.AccumulateDate,
		DeadlineDate:      req.DeadlineDate,
		PaymentDate:       req.PaymentDate,
		TaxDate:           req.TaxDate,
		Source:            model.SourceManual,
		CreatedAt:         now,
		CreatedBy:         &callerID,
		Version:           1,
	}

	// 상태: 명시값, 없으면 적립일 → 완료, 전달자 → 진행중, 그 외 대기중
	switch {
	case req.Status != "":
		status, ok := model.ParseStatus(req.Status)
		if !ok {
			return nil, ErrInvalidStatus
		}
		r.Status = status
	case r.AccumulateDate != "":
		r.Status = model.StatusCompleted
	case r.Transporter != "":
		r.Status = model.StatusInProgress
	default:
		r.Status = model.StatusPending
	}
	if r.Status == model.StatusCompleted {
		r.AccumulateDate = orDefault(r.AccumulateDate, today)
		r.CompletedAt = &now
	}
	if err := checkRecordInvariants(r); err != nil {
		return nil, err
	}

	unlock, err := acquireWriterLock(ctx, s.locker, s.cfg.Webhook.WriterLockTTL())
	if err != nil {
		return nil, err
	}
	defer unlock()

	err = s.repo.Transaction(ctx, func(tx *repository.Repository) error {
		maxID, err := tx.TransportRequest.MaxID(ctx)
		if err != nil {
			return fmt.Errorf("allocate record id: %w", err)
		}
		r.ID = maxID + 1
		if err := tx.TransportRequest.Create(ctx, r); err != nil {
			return fmt.Errorf("save transport request: %w", err)
		}
		if r.Status == model.StatusCompleted {
			return applyCredits(ctx, tx, courier.CreditsFor(r))
		}
		return nil
	})
	if err != nil {
		s.logger.Error("기록 등록 실패", zap.Error(err))
		return nil, err
	}

	s.logger.Info("기록 등록", zap.Int64("id", r.ID), zap.String("by", callerID))
	resp := dto.NewRecordResponse(r)
	return &resp, nil
}

// ────────────────────── Update ──────────────────────

func (s *recordService) Update(ctx context.Context, id int64, req *dto.UpdateRecordRequest, callerID string) (*dto.RecordResponse, error) {
	unlock, err := acquireWriterLock(ctx, s.locker, s.cfg.Webhook.WriterLockTTL())
	if err != nil {
		return nil, err
	}
	defer unlock()

	var updated *model.TransportRequest
	err = s.repo.Transaction(ctx, func(tx *repository.Repository) error {
		r, err := tx.TransportRequest.GetByID(ctx, id)
		if err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return ErrRecordNotFound
			}
			return err
		}
		if req.Version != nil && *req.Version != r.Version {
			return pkgerrors.ErrOptimisticLock
		}
		wasCompleted := r.Status == model.StatusCompleted

		if err := s.applyUpdate(r, req); err != nil {
			return err
		}
		now := s.now()
		r.UpdatedAt = &now
		r.UpdatedBy = &callerID
		if !wasCompleted && r.Status == model.StatusCompleted {
			r.AccumulateDate = orDefault(r.AccumulateDate, s.lifecycle.Date(now))
			r.CompletedAt = &now
		}
		if err := checkRecordInvariants(r); err != nil {
			return err
		}

		if err := tx.TransportRequest.Update(ctx, r); err != nil {
			return fmt.Errorf("save transport request %d: %w", r.ID, err)
		}
		if !wasCompleted && r.Status == model.StatusCompleted {
			if err := applyCredits(ctx, tx, courier.CreditsFor(r)); err != nil {
				return err
			}
		}
		updated = r
		return nil
	})
	if err != nil {
		return nil, err
	}

	s.logger.Info("기록 수정", zap.Int64("id", id), zap.String("status", updated.Status), zap.String("by", callerID))
	resp := dto.NewRecordResponse(updated)
	return &resp, nil
}

func (s *recordService) applyUpdate(r *model.TransportRequest, req *dto.UpdateRecordRequest) error {
	amountChanged := (req.ApplicantAmount != nil && *req.ApplicantAmount != r.ApplicantAmount) ||
		(req.TransporterAmount != nil && *req.TransporterAmount != r.TransporterAmount)
	if amountChanged {
		if r.Source != model.SourceManual || r.Status == model.StatusCompleted {
			return ErrAmountImmutable
		}
		if req.ApplicantAmount != nil {
			r.ApplicantAmount = *req.ApplicantAmount
		}
		if req.TransporterAmount != nil {
			r.TransporterAmount = *req.TransporterAmount
		}
	}

	for _, d := range []struct {
		in  *string
		out *string
	}{
		{req.RequestDate, &r.RequestDate},
		{req.AccumulateDate, &r.AccumulateDate},
		{req.DeadlineDate, &r.DeadlineDate},
		{req.PaymentDate, &r.PaymentDate},
		{req.TaxDate, &r.TaxDate},
	} {
		if d.in == nil {
			continue
		}
		v := strings.TrimSpace(*d.in)
		if v != "" {
			if _, err := time.Parse(model.DateLayout, v); err != nil {
				return ErrInvalidDate
			}
		}
		*d.out = v
	}
	if r.RequestDate == "" {
		return ErrInvalidDate
	}

	if req.Item != nil {
		r.Item = orDefault(strings.TrimSpace(*req.Item), courier.DefaultItem)
	}
	if req.Transporter != nil {
		r.Transporter = strings.TrimSpace(*req.Transporter)
	}

	next := r.Status
	if req.Status != nil {
		status, ok := model.ParseStatus(*req.Status)
		if !ok {
			return ErrInvalidStatus
		}
		next = status
	} else if r.Status == model.StatusPending && r.Transporter != "" {
		// 전달자만 지정하면 진행중으로 넘긴다
		next = model.StatusInProgress
	}
	if model.StatusRank(next) < model.StatusRank(r.Status) {
		return ErrStatusRegression
	}
	r.Status = next
	return nil
}

// checkRecordInvariants 전달자 ⇒ 대기중 아님, 적립일 ⇔ 완료
func checkRecordInvariants(r *model.TransportRequest) error {
	if r.Transporter != "" && r.Status == model.StatusPending {
		return ErrPendingTransporter
	}
	if (r.AccumulateDate != "") != (r.Status == model.StatusCompleted) {
		return ErrAccumulateDate
	}
	return nil
}

// ────────────────────── Delete ──────────────────────

// Delete 소프트 삭제. ID 는 재사용되지 않고 이미 적립된 포인트는 되돌리지 않는다.
func (s *recordService) Delete(ctx context.Context, id int64, callerID string) error {
	if err := s.repo.TransportRequest.Delete(ctx, id, callerID); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return ErrRecordNotFound
		}
		s.logger.Error("기록 삭제 실패", zap.Int64("id", id), zap.Error(err))
		return err
	}
	s.logger.Info("기록 삭제", zap.Int64("id", id), zap.String("by", callerID))
	return nil
}

// ────────────────────── Stats ──────────────────────

func (s *recordService) Stats(ctx context.Context, req *dto.RecordListRequest) (*dto.RecordStatsResponse, error) {
	filter, err := toFilter(req)
	if err != nil {
		return nil, err
	}
	rows, err := s.repo.TransportRequest.List(ctx, filter)
	if err != nil {
		s.logger.Error("통계 조회 실패", zap.Error(err))
		return nil, err
	}
	stats := summarize(rows)
	return &stats, nil
}

// summarize 합계와 상태별 건수
func summarize(rows []model.TransportRequest) dto.RecordStatsResponse {
	var st dto.RecordStatsResponse
	for i := range rows {
		r := &rows[i]
		st.TotalRecords++
		st.TotalApplicantAmount += r.ApplicantAmount
		st.TotalTransporterAmount += r.TransporterAmount
		switch r.Status {
		case model.StatusPending:
			st.PendingCount++
		case model.StatusInProgress:
			st.InProgressCount++
		case model.StatusCompleted:
			st.CompletedCount++
		}
	}
	return st
}

func orDefault(v, def string) string {
	if v == "" {
		return def
	}
	return v
}
