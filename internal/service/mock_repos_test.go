package service

import (
	"context"
	"sort"
	"strings"
	"sync"
	"time"
	_ "time/tzdata"

	"go.uber.org/zap"
	"gorm.io/gorm"

	"github.com/seunghochoi2018/soslab/config"
	"github.com/seunghochoi2018/soslab/internal/model"
	"github.com/seunghochoi2018/soslab/internal/notify"
	"github.com/seunghochoi2018/soslab/internal/repository"
	pkgerrors "github.com/seunghochoi2018/soslab/pkg/errors"
)

// ── Mock TransportRequestRepository ──

type mockTransportRequestRepo struct {
	rows map[int64]*model.TransportRequest
	// updateErr 가 설정되면 Update 가 실패한다
	updateErr error
}

func newMockTransportRequestRepo() *mockTransportRequestRepo {
	return &mockTransportRequestRepo{rows: make(map[int64]*model.TransportRequest)}
}

func (m *mockTransportRequestRepo) put(r *model.TransportRequest) {
	if r.Version == 0 {
		r.Version = 1
	}
	cp := *r
	m.rows[r.ID] = &cp
}

func (m *mockTransportRequestRepo) sorted() []*model.TransportRequest {
	out := make([]*model.TransportRequest, 0, len(m.rows))
	for _, r := range m.rows {
		out = append(out, r)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out
}

func (m *mockTransportRequestRepo) ListAll(_ context.Context) ([]*model.TransportRequest, error) {
	var out []*model.TransportRequest
	for _, r := range m.sorted() {
		cp := *r
		out = append(out, &cp)
	}
	return out, nil
}

func (m *mockTransportRequestRepo) match(r *model.TransportRequest, f repository.RecordFilter) bool {
	if r.IsDeleted() {
		return false
	}
	if f.Status != "" && r.Status != f.Status {
		return false
	}
	if f.Source != "" && r.Source != f.Source {
		return false
	}
	if f.Search != "" {
		q := strings.ToLower(f.Search)
		if !strings.Contains(strings.ToLower(r.Applicant), q) && !strings.Contains(strings.ToLower(r.Transporter), q) {
			return false
		}
	}
	if f.DateFrom != "" && r.AccumulateDate < f.DateFrom {
		return false
	}
	if f.DateTo != "" && r.AccumulateDate > f.DateTo {
		return false
	}
	return true
}

func (m *mockTransportRequestRepo) List(_ context.Context, f repository.RecordFilter) ([]model.TransportRequest, error) {
	var out []model.TransportRequest
	for _, r := range m.sorted() {
		if m.match(r, f) {
			out = append(out, *r)
		}
	}
	return out, nil
}

func (m *mockTransportRequestRepo) Search(ctx context.Context, f repository.RecordFilter, offset, limit int) ([]model.TransportRequest, int64, error) {
	all, _ := m.List(ctx, f)
	sort.Slice(all, func(i, j int) bool { return all[i].ID > all[j].ID })
	total := int64(len(all))
	if offset >= len(all) {
		return []model.TransportRequest{}, total, nil
	}
	end := offset + limit
	if end > len(all) {
		end = len(all)
	}
	return all[offset:end], total, nil
}

func (m *mockTransportRequestRepo) GetByID(_ context.Context, id int64) (*model.TransportRequest, error) {
	r, ok := m.rows[id]
	if !ok || r.IsDeleted() {
		return nil, gorm.ErrRecordNotFound
	}
	cp := *r
	return &cp, nil
}

func (m *mockTransportRequestRepo) MaxID(_ context.Context) (int64, error) {
	var max int64
	for id := range m.rows {
		if id > max {
			max = id
		}
	}
	return max, nil
}

func (m *mockTransportRequestRepo) Create(_ context.Context, r *model.TransportRequest) error {
	if r.CreatedAt.IsZero() {
		r.CreatedAt = time.Now()
	}
	if r.Version == 0 {
		r.Version = 1
	}
	m.put(r)
	return nil
}

func (m *mockTransportRequestRepo) Update(_ context.Context, r *model.TransportRequest) error {
	if m.updateErr != nil {
		return m.updateErr
	}
	cur, ok := m.rows[r.ID]
	if !ok || cur.IsDeleted() || cur.Version != r.Version {
		return pkgerrors.ErrOptimisticLock
	}
	r.Version++
	m.put(r)
	return nil
}

func (m *mockTransportRequestRepo) Delete(_ context.Context, id int64, deletedBy string) error {
	r, ok := m.rows[id]
	if !ok || r.IsDeleted() {
		return gorm.ErrRecordNotFound
	}
	r.DeletedAt = gorm.DeletedAt{Time: time.Now(), Valid: true}
	r.DeletedBy = &deletedBy
	return nil
}

// ── Mock EmployeeRepository ──

type mockEmployeeRepo struct {
	employees map[string]*model.Employee
}

func newMockEmployeeRepo() *mockEmployeeRepo {
	return &mockEmployeeRepo{employees: make(map[string]*model.Employee)}
}

func (m *mockEmployeeRepo) List(_ context.Context) ([]model.Employee, error) {
	out := make([]model.Employee, 0, len(m.employees))
	for _, e := range m.employees {
		out = append(out, *e)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].EmployeeID < out[j].EmployeeID })
	return out, nil
}

func (m *mockEmployeeRepo) GetByID(_ context.Context, id string) (*model.Employee, error) {
	if e, ok := m.employees[id]; ok {
		cp := *e
		return &cp, nil
	}
	return nil, gorm.ErrRecordNotFound
}

func (m *mockEmployeeRepo) Create(_ context.Context, e *model.Employee) error {
	if e.Version == 0 {
		e.Version = 1
	}
	cp := *e
	m.employees[e.EmployeeID] = &cp
	return nil
}

func (m *mockEmployeeRepo) Update(_ context.Context, e *model.Employee) error {
	cur, ok := m.employees[e.EmployeeID]
	if !ok || cur.Version != e.Version {
		return pkgerrors.ErrOptimisticLock
	}
	e.Version++
	cp := *e
	cp.TotalPoints = cur.TotalPoints
	m.employees[e.EmployeeID] = &cp
	return nil
}

func (m *mockEmployeeRepo) Delete(_ context.Context, id string) error {
	if _, ok := m.employees[id]; !ok {
		return gorm.ErrRecordNotFound
	}
	delete(m.employees, id)
	return nil
}

func (m *mockEmployeeRepo) AddPoints(_ context.Context, id string, delta int64) error {
	e, ok := m.employees[id]
	if !ok {
		return gorm.ErrRecordNotFound
	}
	e.TotalPoints += delta
	e.Version++
	return nil
}

func (m *mockEmployeeRepo) points(id string) int64 {
	if e, ok := m.employees[id]; ok {
		return e.TotalPoints
	}
	return 0
}

// ── Mock Notifier ──

type mockNotifier struct {
	mu       sync.Mutex
	messages []notify.Message
}

func (n *mockNotifier) Notify(msg notify.Message) {
	n.mu.Lock()
	defer n.mu.Unlock()
	n.messages = append(n.messages, msg)
}

func (n *mockNotifier) titles() []string {
	n.mu.Lock()
	defer n.mu.Unlock()
	out := make([]string, 0, len(n.messages))
	for _, m := range n.messages {
		out = append(out, m.Title)
	}
	return out
}

// ── 테스트 조립 ──

type testDeps struct {
	cfg       *config.Config
	repo      *repository.Repository
	requests  *mockTransportRequestRepo
	employees *mockEmployeeRepo
	coord     Coordination
	notifier  *mockNotifier
	logger    *zap.Logger
}

func newTestDeps() *testDeps {
	requests := newMockTransportRequestRepo()
	employees := newMockEmployeeRepo()
	cfg := &config.Config{
		App: config.AppConfig{Timezone: "Asia/Seoul"},
	}
	return &testDeps{
		cfg:       cfg,
		repo:      &repository.Repository{TransportRequest: requests, Employee: employees},
		requests:  requests,
		employees: employees,
		coord:     NewCoordination(nil),
		notifier:  &mockNotifier{},
		logger:    zap.NewNop(),
	}
}

var seoul = func() *time.Location {
	loc, err := time.LoadLocation("Asia/Seoul")
	if err != nil {
		return time.FixedZone("KST", 9*3600)
	}
	return loc
}()

func kst(y int, mo time.Month, d, h, mi int) time.Time {
	return time.Date(y, mo, d, h, mi, 0, 0, seoul)
}
