package repository

import (
	"context"
	"strings"
	"time"

	"gorm.io/gorm"

	"github.com/seunghochoi2018/soslab/internal/model"
	pkgerrors "github.com/seunghochoi2018/soslab/pkg/errors"
)

// RecordFilter 운송 기록 검색 조건. 빈 값은 조건에서 제외된다.
type RecordFilter struct {
	Search   string // 요청자/전달자 부분 일치 (대소문자 무시)
	DateFrom string // accumulate_date >= (YYYY-MM-DD)
	DateTo   string // accumulate_date <=
	Status   string
	Source   string
}

// TransportRequestRepository 운송 요청 데이터 접근
type TransportRequestRepository interface {
	// ListAll 삭제된 행을 포함한 전체 컬렉션 (상태 전이와 ID 할당용)
	ListAll(ctx context.Context) ([]*model.TransportRequest, error)
	List(ctx context.Context, filter RecordFilter) ([]model.TransportRequest, error)
	Search(ctx context.Context, filter RecordFilter, offset, limit int) ([]model.TransportRequest, int64, error)
	GetByID(ctx context.Context, id int64) (*model.TransportRequest, error)
	MaxID(ctx context.Context) (int64, error)
	Create(ctx context.Context, r *model.TransportRequest) error
	Update(ctx context.Context, r *model.TransportRequest) error
	Delete(ctx context.Context, id int64, deletedBy string) error
}

type transportRequestRepo struct {
	db *gorm.DB
}

// NewTransportRequestRepo TransportRequestRepository 생성
func NewTransportRequestRepo(db *gorm.DB) TransportRequestRepository {
	return &transportRequestRepo{db: db}
}

func (r *transportRequestRepo) ListAll(ctx context.Context) ([]*model.TransportRequest, error) {
	var rows []*model.TransportRequest
	err := r.db.WithContext(ctx).
		Unscoped().
		Order("id ASC").
		Find(&rows).Error
	return rows, err
}

func (r *transportRequestRepo) filtered(ctx context.Context, f RecordFilter) *gorm.DB {
	db := r.db.WithContext(ctx).Model(&model.TransportRequest{})
	if s := strings.TrimSpace(f.Search); s != "" {
		like := "%" + escapeLike(strings.ToLower(s)) + "%"
		db = db.Where("LOWER(applicant) LIKE ? OR LOWER(transporter) LIKE ?", like, like)
	}
	// 적립일이 없는 행(진행중 등)은 빈 문자열이므로 date_from 조건에서 자연히 빠진다
	if f.DateFrom != "" {
		db = db.Where("accumulate_date >= ?", f.DateFrom)
	}
	if f.DateTo != "" {
		db = db.Where("accumulate_date <= ?", f.DateTo)
	}
	if f.Status != "" {
		db = db.Where("status = ?", f.Status)
	}
	if f.Source != "" {
		db = db.Where("source = ?", f.Source)
	}
	return db
}

func (r *transportRequestRepo) List(ctx context.Context, filter RecordFilter) ([]model.TransportRequest, error) {
	var rows []model.TransportRequest
	err := r.filtered(ctx, filter).Order("id ASC").Find(&rows).Error
	return rows, err
}

func (r *transportRequestRepo) Search(ctx context.Context, filter RecordFilter, offset, limit int) ([]model.TransportRequest, int64, error) {
	var total int64
	if err := r.filtered(ctx, filter).Count(&total).Error; err != nil {
		return nil, 0, err
	}

	var rows []model.TransportRequest
	if err := r.filtered(ctx, filter).
		Order("id DESC").
		Offset(offset).Limit(limit).
		Find(&rows).Error; err != nil {
		return nil, 0, err
	}
	return rows, total, nil
}

func (r *transportRequestRepo) GetByID(ctx context.Context, id int64) (*model.TransportRequest, error) {
	var row model.TransportRequest
	if err := r.db.WithContext(ctx).Where("id = ?", id).First(&row).Error; err != nil {
		return nil, err
	}
	return &row, nil
}

func (r *transportRequestRepo) MaxID(ctx context.Context) (int64, error) {
	var maxID int64
	err := r.db.WithContext(ctx).
		Unscoped().
		Model(&model.TransportRequest{}).
		Select("COALESCE(MAX(id), 0)").
		Scan(&maxID).Error
	return maxID, err
}

func (r *transportRequestRepo) Create(ctx context.Context, row *model.TransportRequest) error {
	if row.Version == 0 {
		row.Version = 1
	}
	return r.db.WithContext(ctx).Create(row).Error
}

// Update 낙관적 잠금으로 변경 가능한 필드를 저장한다.
// 경로/요청자/출처는 생성 후 바뀌지 않으므로 여기서 쓰지 않는다.
func (r *transportRequestRepo) Update(ctx context.Context, row *model.TransportRequest) error {
	oldVersion := row.Version
	result := r.db.WithContext(ctx).
		Model(&model.TransportRequest{}).
		Where("id = ? AND version = ?", row.ID, oldVersion).
		Updates(map[string]interface{}{
			"request_date":       row.RequestDate,
			"transporter":        row.Transporter,
			"item":               row.Item,
			"applicant_amount":   row.ApplicantAmount,
			"transporter_amount": row.TransporterAmount,
			"accumulate_date":    row.AccumulateDate,
			"deadline_date":      row.DeadlineDate,
			"payment_date":       row.PaymentDate,
			"tax_date":           row.TaxDate,
			"status":             row.Status,
			"updated_at":         row.UpdatedAt,
			"completed_at":       row.CompletedAt,
			"updated_by":         row.UpdatedBy,
			"version":            oldVersion + 1,
		})
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return pkgerrors.ErrOptimisticLock
	}
	row.Version = oldVersion + 1
	return nil
}

func (r *transportRequestRepo) Delete(ctx context.Context, id int64, deletedBy string) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Model(&model.TransportRequest{}).
			Where("id = ?", id).
			Updates(map[string]interface{}{"deleted_by": deletedBy, "updated_at": time.Now()}).Error; err != nil {
			return err
		}
		result := tx.Where("id = ?", id).Delete(&model.TransportRequest{})
		if result.Error != nil {
			return result.Error
		}
		if result.RowsAffected == 0 {
			return gorm.ErrRecordNotFound
		}
		return nil
	})
}

// escapeLike LIKE 패턴의 특수 문자 이스케이프
func escapeLike(s string) string {
	return strings.NewReplacer(`\`, `\\`, `%`, `\%`, `_`, `\_`).Replace(s)
}
