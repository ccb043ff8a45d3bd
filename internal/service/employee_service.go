package service

import (
	"bufio"
	"bytes"
	"context"
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/xuri/excelize/v2"
	"go.uber.org/zap"
	"gorm.io/gorm"

	"github.com/seunghochoi2018/soslab/config"
	"github.com/seunghochoi2018/soslab/internal/courier"
	"github.com/seunghochoi2018/soslab/internal/dto"
	"github.com/seunghochoi2018/soslab/internal/model"
	"github.com/seunghochoi2018/soslab/internal/notify"
	"github.com/seunghochoi2018/soslab/internal/repository"
	pkgerrors "github.com/seunghochoi2018/soslab/pkg/errors"
)

// ── 직원 업무 오류 ──

var (
	ErrEmployeeNotFound  = errors.New("직원을 찾을 수 없습니다")
	ErrEmployeeExists    = errors.New("이미 존재하는 ID입니다")
	ErrZeroAdjustment    = errors.New("조정 포인트는 0이 될 수 없습니다")
	ErrImportFileType    = errors.New("허용되지 않은 파일 형식입니다 (xlsx, xls, csv)")
	ErrImportNoData      = errors.New("파일에 데이터 행이 없습니다 (첫 행은 머리글)")
	ErrImportTooManyRows = fmt.Errorf("데이터 행이 %d행을 넘습니다", maxImportRows)
	ErrImportBadHeader   = errors.New("필수 컬럼(ID/이름/부서)이 없습니다")
)

const (
	maxImportRows = 2000

	adjustmentTransporter = "SYSTEM"
)

// EmployeeService 직원 관리
type EmployeeService interface {
	List(ctx context.Context) ([]dto.EmployeeResponse, error)
	GetByID(ctx context.Context, id string) (*dto.EmployeeResponse, error)
	Create(ctx context.Context, req *dto.CreateEmployeeRequest, callerID string) (*dto.EmployeeResponse, error)
	Update(ctx context.Context, id string, req *dto.UpdateEmployeeRequest, callerID string) (*dto.EmployeeResponse, error)
	Delete(ctx context.Context, id string) error
	ParseImportFile(reader io.Reader, filename string) ([]ImportEmployeeRow, error)
	Import(ctx context.Context, rows []ImportEmployeeRow, callerID string) (*dto.ImportEmployeeResponse, error)
	Template() (*bytes.Buffer, string, error)
	AdjustPoints(ctx context.Context, id string, req *dto.AdjustPointsRequest, callerID string) (*dto.AdjustPointsResponse, error)
}

// ImportEmployeeRow 가져오기 파일의 한 행
type ImportEmployeeRow struct {
	Row         int
	EmployeeID  string
	Name        string
	Department  string
	Points      int64
	ParseFailed string
}

type employeeService struct {
	cfg       *config.Config
	repo      *repository.Repository
	lifecycle *courier.Lifecycle
	locker    Locker
	notifier  notify.Notifier
	logger    *zap.Logger
	now       func() time.Time
}

// NewEmployeeService EmployeeService 생성
func NewEmployeeService(
	cfg *config.Config,
	repo *repository.Repository,
	locker Locker,
	notifier notify.Notifier,
	logger *zap.Logger,
) EmployeeService {
	return &employeeService{
		cfg:       cfg,
		repo:      repo,
		lifecycle: courier.NewLifecycle(cfg.App.Location()),
		locker:    locker,
		notifier:  notifier,
		logger:    logger,
		now:       time.Now,
	}
}

// ────────────────────── List / Get ──────────────────────

func (s *employeeService) List(ctx context.Context) ([]dto.EmployeeResponse, error) {
	rows, err := s.repo.Employee.List(ctx)
	if err != nil {
		s.logger.Error("직원 목록 조회 실패", zap.Error(err))
		return nil, err
	}
	out := make([]dto.EmployeeResponse, 0, len(rows))
	for i := range rows {
		out = append(out, dto.NewEmployeeResponse(&rows[i]))
	}
	return out, nil
}

func (s *employeeService) GetByID(ctx context.Context, id string) (*dto.EmployeeResponse, error) {
	e, err := s.get(ctx, s.repo, id)
	if err != nil {
		return nil, err
	}
	resp := dto.NewEmployeeResponse(e)
	return &resp, nil
}

func (s *employeeService) get(ctx context.Context, repo *repository.Repository, id string) (*model.Employee, error) {
	e, err := repo.Employee.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrEmployeeNotFound
		}
		s.logger.Error("직원 조회 실패", zap.String("id", id), zap.Error(err))
		return nil, err
	}
	return e, nil
}

// ────────────────────── Create ──────────────────────

func (s *employeeService) Create(ctx context.Context, req *dto.CreateEmployeeRequest, callerID string) (*dto.EmployeeResponse, error) {
	id := strings.TrimSpace(req.EmployeeID)
	if _, err := s.repo.Employee.GetByID(ctx, id); err == nil {
		return nil, ErrEmployeeExists
	} else if !errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, err
	}

	e := &model.Employee{
		EmployeeID:  id,
		Name:        strings.TrimSpace(req.Name),
		Department:  strings.TrimSpace(req.Department),
		TotalPoints: req.TotalPoints,
		BaseModel:   model.BaseModel{CreatedBy: &callerID},
	}
	if err := s.repo.Employee.Create(ctx, e); err != nil {
		s.logger.Error("직원 등록 실패", zap.Error(err))
		return nil, err
	}
	resp := dto.NewEmployeeResponse(e)
	return &resp, nil
}

// ────────────────────── Update ──────────────────────

func (s *employeeService) Update(ctx context.Context, id string, req *dto.UpdateEmployeeRequest, callerID string) (*dto.EmployeeResponse, error) {
	e, err := s.get(ctx, s.repo, id)
	if err != nil {
		return nil, err
	}
	if req.Name != nil {
		e.Name = strings.TrimSpace(*req.Name)
	}
	if req.Department != nil {
		e.Department = strings.TrimSpace(*req.Department)
	}
	e.UpdatedBy = &callerID

	if err := s.repo.Employee.Update(ctx, e); err != nil {
		if !errors.Is(err, pkgerrors.ErrOptimisticLock) {
			s.logger.Error("직원 수정 실패", zap.String("id", id), zap.Error(err))
		}
		return nil, err
	}
	resp := dto.NewEmployeeResponse(e)
	return &resp, nil
}

// ────────────────────── Delete ──────────────────────

func (s *employeeService) Delete(ctx context.Context, id string) error {
	if err := s.repo.Employee.Delete(ctx, id); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return ErrEmployeeNotFound
		}
		s.logger.Error("직원 삭제 실패", zap.String("id", id), zap.Error(err))
		return err
	}
	return nil
}

// ────────────────────── ParseImportFile ──────────────────────

// ParseImportFile xlsx 또는 csv 를 읽는다. 머리글 순서는 자유롭다.
func (s *employeeService) ParseImportFile(reader io.Reader, filename string) ([]ImportEmployeeRow, error) {
	var (
		table [][]string
		err   error
	)
	switch strings.ToLower(filepath.Ext(filename)) {
	case ".csv":
		table, err = readCSV(reader)
	case ".xlsx", ".xls":
		table, err = readXLSX(reader)
	default:
		return nil, ErrImportFileType
	}
	if err != nil {
		return nil, err
	}

	if len(table) < 2 {
		return nil, ErrImportNoData
	}
	if len(table)-1 > maxImportRows {
		return nil, ErrImportTooManyRows
	}

	col := parseEmployeeHeader(table[0])
	if col["id"] < 0 || col["name"] < 0 || col["department"] < 0 {
		return nil, ErrImportBadHeader
	}

	rows := make([]ImportEmployeeRow, 0, len(table)-1)
	for i := 1; i < len(table); i++ {
		line := table[i]
		at := func(key string) string {
			if idx := col[key]; idx >= 0 && idx < len(line) {
				return strings.TrimSpace(line[idx])
			}
			return ""
		}
		item := ImportEmployeeRow{
			Row:        i + 1,
			EmployeeID: at("id"),
			Name:       at("name"),
			Department: at("department"),
		}
		if item.EmployeeID == "" && item.Name == "" && item.Department == "" {
			continue // 빈 줄
		}
		if raw := strings.ReplaceAll(at("points"), ",", ""); raw != "" {
			p, err := strconv.ParseFloat(raw, 64)
			if err != nil {
				item.ParseFailed = fmt.Sprintf("포인트 %q 를 숫자로 읽을 수 없습니다", raw)
			} else {
				item.Points = int64(p)
			}
		}
		rows = append(rows, item)
	}
	if len(rows) == 0 {
		return nil, ErrImportNoData
	}
	return rows, nil
}

func readXLSX(reader io.Reader) ([][]string, error) {
	f, err := excelize.OpenReader(reader)
	if err != nil {
		return nil, fmt.Errorf("엑셀 파일을 읽을 수 없습니다: %w", err)
	}
	defer f.Close()

	rows, err := f.GetRows(f.GetSheetName(0))
	if err != nil {
		return nil, fmt.Errorf("시트 읽기 실패: %w", err)
	}
	return rows, nil
}

func readCSV(reader io.Reader) ([][]string, error) {
	br := bufio.NewReader(reader)
	// UTF-8 BOM 제거 (엑셀에서 저장한 csv)
	if b, err := br.Peek(3); err == nil && bytes.Equal(b, []byte{0xEF, 0xBB, 0xBF}) {
		_, _ = br.Discard(3)
	}
	r := csv.NewReader(br)
	r.FieldsPerRecord = -1
	rows, err := r.ReadAll()
	if err != nil {
		return nil, fmt.Errorf("CSV 읽기 실패: %w", err)
	}
	return rows, nil
}

func parseEmployeeHeader(header []string) map[string]int {
	idx := map[string]int{"id": -1, "name": -1, "department": -1, "points": -1}
	for i, h := range header {
		lower := strings.ToLower(strings.TrimSpace(strings.TrimPrefix(h, "\ufeff")))
		switch lower {
		case "id", "employee_id", "아이디":
			idx["id"] = i
		case "이름", "name":
			idx["name"] = i
		case "부서", "department":
			idx["department"] = i
		case "포인트", "points", "total_points":
			idx["points"] = i
		}
	}
	return idx
}

// ────────────────────── Import ──────────────────────

// Import 행마다 신규면 추가, 기존이면 이름/부서만 갱신한다.
// 기존 직원의 누계는 파일 값으로 덮어쓰지 않는다.
func (s *employeeService) Import(ctx context.Context, rows []ImportEmployeeRow, callerID string) (*dto.ImportEmployeeResponse, error) {
	resp := &dto.ImportEmployeeResponse{Total: len(rows)}
	fail := func(row int, reason string) {
		resp.Failed++
		resp.Errors = append(resp.Errors, dto.ImportRowError{Row: row, Reason: reason})
	}

	for _, row := range rows {
		switch {
		case row.ParseFailed != "":
			fail(row.Row, row.ParseFailed)
			continue
		case row.EmployeeID == "" || row.Name == "":
			fail(row.Row, "ID 와 이름은 필수입니다")
			continue
		case len(row.EmployeeID) > 50:
			fail(row.Row, "ID 는 50자 이하여야 합니다")
			continue
		}

		existing, err := s.repo.Employee.GetByID(ctx, row.EmployeeID)
		switch {
		case err == nil:
			existing.Name = row.Name
			existing.Department = row.Department
			existing.UpdatedBy = &callerID
			if err := s.repo.Employee.Update(ctx, existing); err != nil {
				s.logger.Warn("가져오기 갱신 실패", zap.Int("row", row.Row), zap.Error(err))
				fail(row.Row, "갱신 실패")
				continue
			}
			resp.Updated++
		case errors.Is(err, gorm.ErrRecordNotFound):
			e := &model.Employee{
				EmployeeID:  row.EmployeeID,
				Name:        row.Name,
				Department:  row.Department,
				TotalPoints: row.Points,
				BaseModel:   model.BaseModel{CreatedBy: &callerID},
			}
			if err := s.repo.Employee.Create(ctx, e); err != nil {
				s.logger.Warn("가져오기 등록 실패", zap.Int("row", row.Row), zap.Error(err))
				fail(row.Row, "등록 실패")
				continue
			}
			resp.Added++
		default:
			return nil, err
		}
	}

	s.logger.Info("직원 가져오기",
		zap.Int("added", resp.Added), zap.Int("updated", resp.Updated), zap.Int("failed", resp.Failed))
	return resp, nil
}

// ────────────────────── Template ──────────────────────

// Template 가져오기용 엑셀 양식
func (s *employeeService) Template() (*bytes.Buffer, string, error) {
	f := excelize.NewFile()
	defer f.Close()

	sheet := "직원"
	idx, _ := f.NewSheet(sheet)
	f.SetActiveSheet(idx)
	f.DeleteSheet("Sheet1")

	headerStyle, _ := f.NewStyle(&excelize.Style{
		Font:      &excelize.Font{Bold: true, Size: 11},
		Fill:      excelize.Fill{Type: "pattern", Color: []string{"#4472C4"}, Pattern: 1},
		Alignment: &excelize.Alignment{Horizontal: "center", Vertical: "center"},
	})

	header := []string{"ID", "이름", "부서", "포인트"}
	samples := [][]interface{}{
		{"예시1", "홍길동", "평촌", 0},
		{"예시2", "김철수", "판교", 0},
		{"예시3", "이영희", "광주", 0},
	}
	for i, h := range header {
		f.SetCellValue(sheet, cell(colName(i), 1), h)
	}
	f.SetCellStyle(sheet, "A1", cell(colName(len(header)-1), 1), headerStyle)
	for r, vals := range samples {
		for c, v := range vals {
			f.SetCellValue(sheet, cell(colName(c), r+2), v)
		}
	}
	f.SetColWidth(sheet, "A", "D", 14)

	buf := new(bytes.Buffer)
	if err := f.Write(buf); err != nil {
		s.logger.Error("양식 생성 실패", zap.Error(err))
		return nil, "", ErrExportGenerateFail
	}
	return buf, "직원등록_템플릿.xlsx", nil
}

// ────────────────────── AdjustPoints ──────────────────────

// AdjustPoints 누계에 조정값을 더하고 관리자조정 기록을 남긴다.
func (s *employeeService) AdjustPoints(ctx context.Context, id string, req *dto.AdjustPointsRequest, callerID string) (*dto.AdjustPointsResponse, error) {
	if req.Adjustment == 0 {
		return nil, ErrZeroAdjustment
	}
	reason := strings.TrimSpace(req.Reason)

	unlock, err := acquireWriterLock(ctx, s.locker, s.cfg.Webhook.WriterLockTTL())
	if err != nil {
		return nil, err
	}
	defer unlock()

	now := s.now()
	today := s.lifecycle.Date(now)
	var (
		employee *model.Employee
		record   *model.TransportRequest
	)
	err = s.repo.Transaction(ctx, func(tx *repository.Repository) error {
		e, err := s.get(ctx, tx, id)
		if err != nil {
			return err
		}
		if err := tx.Employee.AddPoints(ctx, id, req.Adjustment); err != nil {
			return fmt.Errorf("adjust points of %s: %w", id, err)
		}
		e.TotalPoints += req.Adjustment
		employee = e

		maxID, err := tx.TransportRequest.MaxID(ctx)
		if err != nil {
			return fmt.Errorf("allocate record id: %w", err)
		}
		var credited int64
		if req.Adjustment > 0 {
			credited = req.Adjustment
		}
		record = &model.TransportRequest{
			ID:              maxID + 1,
			RequestDate:     today,
			Applicant:       id,
			Transporter:     adjustmentTransporter,
			FromLocation:    string(courier.OfficeAdjustment),
			ToLocation:      string(courier.OfficeAdjustment),
			Item:            "포인트 조정: " + reason,
			ApplicantAmount: credited,
			AccumulateDate:  today,
			Status:          model.StatusCompleted,
			Source:          model.SourceAdminAdjustment,
			CreatedAt:       now,
			CompletedAt:     &now,
			CreatedBy:       &callerID,
			Version:         1,
		}
		if err := tx.TransportRequest.Create(ctx, record); err != nil {
			return fmt.Errorf("save adjustment record: %w", err)
		}
		return nil
	})
	if err != nil {
		if !errors.Is(err, ErrEmployeeNotFound) {
			s.logger.Error("포인트 조정 실패", zap.String("id", id), zap.Error(err))
		}
		return nil, err
	}

	s.notifier.Notify(notify.PointAdjustment(employee.Name, req.Adjustment, reason, employee.TotalPoints))
	s.logger.Info("포인트 조정",
		zap.String("employee", id), zap.Int64("adjustment", req.Adjustment), zap.String("by", callerID))

	return &dto.AdjustPointsResponse{
		EmployeeID: id,
		NewPoints:  employee.TotalPoints,
		RecordID:   record.ID,
	}, nil
}
