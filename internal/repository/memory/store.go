// Package memory holds in-memory implementations of every repository. They back the service
// tests and local runs without PostgreSQL.
package memory

import (
	"context"
	"maps"
	"sync"
	"time"

	"github.com/cmlabs-hris/payroll-engine/internal/domain/attendance"
	"github.com/cmlabs-hris/payroll-engine/internal/domain/compensation"
	"github.com/cmlabs-hris/payroll-engine/internal/domain/employee"
	"github.com/cmlabs-hris/payroll-engine/internal/domain/payroll"
	"github.com/cmlabs-hris/payroll-engine/internal/domain/schedule"
	"github.com/google/uuid"
)

type txKey struct{}

type recordKey struct {
	companyID  string
	employeeID string
	date       time.Time
}

type state struct {
	employees   map[string]employee.Employee
	schedules   map[string]schedule.WorkSchedule
	records     map[string]attendance.Record
	recordIndex map[recordKey]string
	rules       map[string]compensation.Rule
	assignments map[string]compensation.Assignment
	structures  map[string]payroll.SalaryStructure
	periods     map[string]payroll.Period
	payslips    map[string]payroll.Payslip
	components  map[string][]payroll.Component
}

func newState() *state {
	return &state{
		employees:   make(map[string]employee.Employee),
		schedules:   make(map[string]schedule.WorkSchedule),
		records:     make(map[string]attendance.Record),
		recordIndex: make(map[recordKey]string),
		rules:       make(map[string]compensation.Rule),
		assignments: make(map[string]compensation.Assignment),
		structures:  make(map[string]payroll.SalaryStructure),
		periods:     make(map[string]payroll.Period),
		payslips:    make(map[string]payroll.Payslip),
		components:  make(map[string][]payroll.Component),
	}
}

// clone copies every map. Values are replaced wholesale on write, never mutated in place, so a
// shallow copy of each value is enough.
func (s *state) clone() *state {
	return &state{
		employees:   maps.Clone(s.employees),
		schedules:   maps.Clone(s.schedules),
		records:     maps.Clone(s.records),
		recordIndex: maps.Clone(s.recordIndex),
		rules:       maps.Clone(s.rules),
		assignments: maps.Clone(s.assignments),
		structures:  maps.Clone(s.structures),
		periods:     maps.Clone(s.periods),
		payslips:    maps.Clone(s.payslips),
		components:  maps.Clone(s.components),
	}
}

// Store is the shared backing state of the memory repositories.
type Store struct {
	mu   sync.RWMutex
	txMu sync.Mutex
	data *state
	now  func() time.Time
}

func NewStore() *Store {
	return &Store{
		data: newState(),
		now:  func() time.Time { return time.Now().UTC() },
	}
}

// WithinTransaction implements database.Transactor. Transactions are serialised; on error the
// state is restored from a snapshot taken when the transaction began. Nested calls join the
// outer transaction.
func (s *Store) WithinTransaction(ctx context.Context, fn func(ctx context.Context) error) error {
	if _, ok := ctx.Value(txKey{}).(bool); ok {
		return fn(ctx)
	}

	s.txMu.Lock()
	defer s.txMu.Unlock()

	s.mu.RLock()
	snapshot := s.data.clone()
	s.mu.RUnlock()

	if err := fn(context.WithValue(ctx, txKey{}, true)); err != nil {
		s.mu.Lock()
		s.data = snapshot
		s.mu.Unlock()
		return err
	}
	return nil
}

func newID() string {
	return uuid.Must(uuid.NewV7()).String()
}

// ========== SEEDING ==========
// Employees and schedules are owned by the organisation service; these helpers stand in for it.

// AddEmployee stores e, assigning an ID when it has none.
func (s *Store) AddEmployee(e employee.Employee) employee.Employee {
	s.mu.Lock()
	defer s.mu.Unlock()

	if e.ID == "" {
		e.ID = newID()
	}
	now := s.now()
	e.CreatedAt, e.UpdatedAt = now, now
	s.data.employees[e.ID] = e
	return e
}

// AddWorkSchedule stores ws, assigning IDs to it and its shift when missing.
func (s *Store) AddWorkSchedule(ws schedule.WorkSchedule) schedule.WorkSchedule {
	s.mu.Lock()
	defer s.mu.Unlock()

	if ws.ID == "" {
		ws.ID = newID()
	}
	if ws.Shift.ID == "" {
		ws.Shift.ID = newID()
	}
	ws.ShiftID = ws.Shift.ID
	if ws.CreatedAt.IsZero() {
		ws.CreatedAt = s.now()
	}
	ws.UpdatedAt = ws.CreatedAt
	ws.EmployeeIDs = append([]string(nil), ws.EmployeeIDs...)
	s.data.schedules[ws.ID] = ws
	return ws
}
