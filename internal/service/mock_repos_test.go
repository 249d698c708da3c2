package service

import (
	"context"
	"fmt"
	"strings"
	"time"

	"gorm.io/gorm"

	"yuva-vikas/backend/internal/model"
	"yuva-vikas/backend/internal/repository"
	pkgerrors "yuva-vikas/backend/pkg/errors"
)

// ── Mock EmployeeRepository ──

type mockEmployeeRepo struct {
	employees map[string]*model.Employee
	order     []string // 保持插入顺序，FirstActiveExcluding 结果确定
	targets   *mockTargetRepo
}

func newMockEmployeeRepo() *mockEmployeeRepo {
	return &mockEmployeeRepo{employees: make(map[string]*model.Employee)}
}

func (m *mockEmployeeRepo) Create(_ context.Context, emp *model.Employee) error {
	if emp.EmployeeID == "" {
		emp.EmployeeID = fmt.Sprintf("emp-%03d", len(m.order)+1)
	}
	m.employees[emp.EmployeeID] = emp
	m.order = append(m.order, emp.EmployeeID)
	return nil
}

func (m *mockEmployeeRepo) GetByID(_ context.Context, id string) (*model.Employee, error) {
	if e, ok := m.employees[id]; ok {
		return e, nil
	}
	return nil, gorm.ErrRecordNotFound
}

func (m *mockEmployeeRepo) Update(_ context.Context, emp *model.Employee) error {
	m.employees[emp.EmployeeID] = emp
	return nil
}

func (m *mockEmployeeRepo) List(_ context.Context, filter repository.EmployeeFilter, offset, limit int) ([]model.Employee, int64, error) {
	var all []model.Employee
	for _, id := range m.order {
		e := m.employees[id]
		if !filter.IncludeDeparted && e.Status != model.EmployeeStatusActive {
			continue
		}
		if filter.Role != "" && e.Role != filter.Role {
			continue
		}
		if filter.State != "" && e.State != filter.State {
			continue
		}
		if filter.NameContains != "" && !strings.Contains(e.Name, filter.NameContains) {
			continue
		}
		all = append(all, *e)
	}
	total := int64(len(all))
	if offset >= len(all) {
		return nil, total, nil
	}
	end := offset + limit
	if end > len(all) {
		end = len(all)
	}
	return all[offset:end], total, nil
}

func (m *mockEmployeeRepo) MarkDeparted(_ context.Context, id string, date time.Time, version int, updatedBy string) error {
	e, ok := m.employees[id]
	if !ok || e.Status != model.EmployeeStatusActive || e.Version != version {
		return pkgerrors.ErrOptimisticLock
	}
	e.Status = model.EmployeeStatusDeparted
	e.DepartureDate = &date
	e.UpdatedBy = &updatedBy
	e.Version++
	return nil
}

func (m *mockEmployeeRepo) FirstActiveExcluding(_ context.Context, excludeID string) (*model.Employee, error) {
	for _, id := range m.order {
		e := m.employees[id]
		if e.EmployeeID != excludeID && e.Status == model.EmployeeStatusActive {
			return e, nil
		}
	}
	return nil, gorm.ErrRecordNotFound
}

func (m *mockEmployeeRepo) CountActiveTargets(_ context.Context, employeeIDs []string) (map[string]int64, error) {
	result := make(map[string]int64)
	if m.targets == nil {
		return result, nil
	}
	for _, id := range employeeIDs {
		for _, tid := range m.targets.order {
			t := m.targets.targets[tid]
			if t.AssignedTo == id && t.Status == model.TargetStatusActive {
				result[id]++
			}
		}
	}
	return result, nil
}

// ── Mock TargetRepository ──

type mockTargetRepo struct {
	targets map[string]*model.Target
	order   []string
}

func newMockTargetRepo() *mockTargetRepo {
	return &mockTargetRepo{targets: make(map[string]*model.Target)}
}

func (m *mockTargetRepo) Create(_ context.Context, target *model.Target) error {
	if target.TargetID == "" {
		target.TargetID = fmt.Sprintf("tgt-%03d", len(m.order)+1)
	}
	m.targets[target.TargetID] = target
	m.order = append(m.order, target.TargetID)
	return nil
}

func (m *mockTargetRepo) GetByID(_ context.Context, id string) (*model.Target, error) {
	if t, ok := m.targets[id]; ok {
		// 返回副本，模拟数据库快照语义：调用方改动不回写存储
		cp := *t
		return &cp, nil
	}
	return nil, gorm.ErrRecordNotFound
}

func (m *mockTargetRepo) List(_ context.Context, filter repository.TargetFilter, offset, limit int) ([]model.Target, int64, error) {
	var all []model.Target
	for _, id := range m.order {
		t := m.targets[id]
		if filter.Status != "" && t.Status != filter.Status {
			continue
		}
		if filter.Type != "" && t.Type != filter.Type {
			continue
		}
		if filter.Role != "" && t.AssignedToRole != filter.Role {
			continue
		}
		if filter.EmployeeID != "" && t.AssignedTo != filter.EmployeeID {
			continue
		}
		if filter.NameContains != "" && !strings.Contains(t.AssignedToName, filter.NameContains) {
			continue
		}
		if !filter.PeriodStart.IsZero() && !t.PeriodEnd.After(filter.PeriodStart) {
			continue
		}
		if !filter.PeriodEnd.IsZero() && !t.PeriodStart.Before(filter.PeriodEnd) {
			continue
		}
		all = append(all, *t)
	}
	total := int64(len(all))
	if offset >= len(all) {
		return nil, total, nil
	}
	end := offset + limit
	if end > len(all) {
		end = len(all)
	}
	return all[offset:end], total, nil
}

func (m *mockTargetRepo) ListActiveByEmployee(_ context.Context, employeeID string) ([]model.Target, error) {
	var result []model.Target
	for _, id := range m.order {
		t := m.targets[id]
		if t.AssignedTo == employeeID && t.Status == model.TargetStatusActive {
			result = append(result, *t)
		}
	}
	return result, nil
}

func (m *mockTargetRepo) ListExpiredActive(_ context.Context, asOf time.Time) ([]model.Target, error) {
	var result []model.Target
	for _, id := range m.order {
		t := m.targets[id]
		if t.Status == model.TargetStatusActive && t.PeriodEnd.Before(asOf) {
			result = append(result, *t)
		}
	}
	return result, nil
}

func (m *mockTargetRepo) TransitionStatus(_ context.Context, id, newStatus string, version int, updatedBy string) error {
	t, ok := m.targets[id]
	if !ok || t.Status != model.TargetStatusActive || t.Version != version {
		return pkgerrors.ErrOptimisticLock
	}
	t.Status = newStatus
	t.UpdatedBy = &updatedBy
	t.Version++
	return nil
}

func (m *mockTargetRepo) IncrementAchieved(_ context.Context, id string, delta, version int, updatedBy string) error {
	t, ok := m.targets[id]
	if !ok || t.Status != model.TargetStatusActive || t.Version != version {
		return pkgerrors.ErrOptimisticLock
	}
	t.Achieved += delta
	t.UpdatedBy = &updatedBy
	t.Version++
	return nil
}

// ── Mock ReassignmentRepository ──

type mockReassignmentRepo struct {
	records []*model.ReassignmentRecord
}

func newMockReassignmentRepo() *mockReassignmentRepo {
	return &mockReassignmentRepo{}
}

func (m *mockReassignmentRepo) Create(_ context.Context, record *model.ReassignmentRecord) error {
	if record.ReassignmentID == "" {
		record.ReassignmentID = fmt.Sprintf("rec-%03d", len(m.records)+1)
	}
	if record.ReassignedAt.IsZero() {
		record.ReassignedAt = time.Now()
	}
	m.records = append(m.records, record)
	return nil
}

func (m *mockReassignmentRepo) ListByTargetID(_ context.Context, targetID string) ([]model.ReassignmentRecord, error) {
	var result []model.ReassignmentRecord
	for _, r := range m.records {
		if r.TargetID == targetID {
			result = append(result, *r)
		}
	}
	return result, nil
}

func (m *mockReassignmentRepo) ListByEmployee(_ context.Context, employeeID string) ([]model.ReassignmentRecord, error) {
	var result []model.ReassignmentRecord
	for _, r := range m.records {
		if r.FromEmployeeID == employeeID || r.ToEmployeeID == employeeID {
			result = append(result, *r)
		}
	}
	return result, nil
}

// ── Mock AuditRepository ──

type mockAuditRepo struct {
	entries []*model.AuditEntry
}

func newMockAuditRepo() *mockAuditRepo {
	return &mockAuditRepo{}
}

func (m *mockAuditRepo) Create(_ context.Context, entry *model.AuditEntry) error {
	if entry.EntryID == "" {
		entry.EntryID = fmt.Sprintf("audit-%03d", len(m.entries)+1)
	}
	if entry.RecordedAt.IsZero() {
		entry.RecordedAt = time.Now()
	}
	m.entries = append(m.entries, entry)
	return nil
}

func (m *mockAuditRepo) Query(_ context.Context, filter repository.AuditFilter, offset, limit int) ([]model.AuditEntry, int64, error) {
	var all []model.AuditEntry
	for _, e := range m.entries {
		if filter.EmployeeNameContains != "" && !strings.Contains(e.EmployeeName, filter.EmployeeNameContains) {
			continue
		}
		if filter.TargetType != "" && e.TargetType != filter.TargetType {
			continue
		}
		if filter.EventType != "" && e.EventType != filter.EventType {
			continue
		}
		if filter.Status != "" && e.Status != filter.Status {
			continue
		}
		if !filter.From.IsZero() && e.RecordedAt.Before(filter.From) {
			continue
		}
		if !filter.To.IsZero() && !e.RecordedAt.Before(filter.To) {
			continue
		}
		all = append(all, *e)
	}
	total := int64(len(all))
	if offset >= len(all) {
		return nil, total, nil
	}
	end := offset + limit
	if end > len(all) {
		end = len(all)
	}
	return all[offset:end], total, nil
}

// countByEvent 按事件类型统计流水条数
func (m *mockAuditRepo) countByEvent(eventType string) int {
	n := 0
	for _, e := range m.entries {
		if e.EventType == eventType {
			n++
		}
	}
	return n
}

// ── Mock AtomicRunner ──

// mockAtomicRunner 在同一份 mock 存储上执行回调；进入时做快照，
// 回调出错即恢复快照，模拟事务回滚。嵌套调用复用最外层快照
type mockAtomicRunner struct {
	repo     *repository.Repository
	emp      *mockEmployeeRepo
	target   *mockTargetRepo
	reassign *mockReassignmentRepo
	audit    *mockAuditRepo
	depth    int
}

type mockSnapshot struct {
	employees map[string]*model.Employee
	empOrder  []string
	targets   map[string]*model.Target
	tgtOrder  []string
	records   []*model.ReassignmentRecord
	entries   []*model.AuditEntry
}

func (m *mockAtomicRunner) Run(_ context.Context, fn func(r *repository.Repository) error) error {
	if m.depth > 0 {
		return fn(m.repo)
	}
	m.depth++
	defer func() { m.depth-- }()

	snap := m.snapshot()
	if err := fn(m.repo); err != nil {
		m.restore(snap)
		return err
	}
	return nil
}

func (m *mockAtomicRunner) snapshot() *mockSnapshot {
	snap := &mockSnapshot{
		employees: make(map[string]*model.Employee, len(m.emp.employees)),
		empOrder:  append([]string(nil), m.emp.order...),
		targets:   make(map[string]*model.Target, len(m.target.targets)),
		tgtOrder:  append([]string(nil), m.target.order...),
	}
	for id, e := range m.emp.employees {
		cp := *e
		snap.employees[id] = &cp
	}
	for id, t := range m.target.targets {
		cp := *t
		snap.targets[id] = &cp
	}
	for _, r := range m.reassign.records {
		cp := *r
		snap.records = append(snap.records, &cp)
	}
	for _, e := range m.audit.entries {
		cp := *e
		snap.entries = append(snap.entries, &cp)
	}
	return snap
}

func (m *mockAtomicRunner) restore(snap *mockSnapshot) {
	m.emp.employees, m.emp.order = snap.employees, snap.empOrder
	m.target.targets, m.target.order = snap.targets, snap.tgtOrder
	m.reassign.records = snap.records
	m.audit.entries = snap.entries
}

// newMockRepository 组装全套 mock Repository
func newMockRepository() (*repository.Repository, *mockEmployeeRepo, *mockTargetRepo, *mockReassignmentRepo, *mockAuditRepo) {
	empRepo := newMockEmployeeRepo()
	targetRepo := newMockTargetRepo()
	empRepo.targets = targetRepo
	reassignRepo := newMockReassignmentRepo()
	auditRepo := newMockAuditRepo()
	repo := &repository.Repository{
		Employee:     empRepo,
		Target:       targetRepo,
		Reassignment: reassignRepo,
		Audit:        auditRepo,
	}
	repo.Atomic = &mockAtomicRunner{
		repo:     repo,
		emp:      empRepo,
		target:   targetRepo,
		reassign: reassignRepo,
		audit:    auditRepo,
	}
	return repo, empRepo, targetRepo, reassignRepo, auditRepo
}
