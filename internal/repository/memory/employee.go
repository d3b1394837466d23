package memory

import (
	"context"
	"slices"
	"sort"
	"time"

	"github.com/cmlabs-hris/payroll-engine/internal/domain/employee"
	"github.com/cmlabs-hris/payroll-engine/internal/domain/schedule"
)

type employeeRepository struct {
	s *Store
}

func NewEmployeeRepository(s *Store) employee.EmployeeRepository {
	return &employeeRepository{s: s}
}

// GetByID implements employee.EmployeeRepository.
func (r *employeeRepository) GetByID(ctx context.Context, id string, companyID string) (employee.Employee, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()

	e, ok := r.s.data.employees[id]
	if !ok || e.CompanyID != companyID {
		return employee.Employee{}, employee.ErrEmployeeNotFound
	}
	return e, nil
}

// GetActiveByCompanyID implements employee.EmployeeRepository.
func (r *employeeRepository) GetActiveByCompanyID(ctx context.Context, companyID string) ([]employee.Employee, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()

	var out []employee.Employee
	for _, e := range r.s.data.employees {
		if e.CompanyID == companyID && e.IsPayable() {
			out = append(out, e)
		}
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].EmployeeCode != out[j].EmployeeCode {
			return out[i].EmployeeCode < out[j].EmployeeCode
		}
		return out[i].ID < out[j].ID
	})
	return out, nil
}

// ListCompanyIDs implements employee.EmployeeRepository.
func (r *employeeRepository) ListCompanyIDs(ctx context.Context) ([]string, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()

	var ids []string
	for _, e := range r.s.data.employees {
		if e.IsPayable() && !slices.Contains(ids, e.CompanyID) {
			ids = append(ids, e.CompanyID)
		}
	}
	slices.Sort(ids)
	return ids, nil
}

type workScheduleRepository struct {
	s *Store
}

func NewWorkScheduleRepository(s *Store) schedule.WorkScheduleRepository {
	return &workScheduleRepository{s: s}
}

// FindCandidates implements schedule.WorkScheduleRepository.
func (r *workScheduleRepository) FindCandidates(ctx context.Context, companyID, employeeID string, date time.Time) ([]schedule.WorkSchedule, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()

	var out []schedule.WorkSchedule
	for _, ws := range r.s.data.schedules {
		if ws.CompanyID == companyID && ws.HasEmployee(employeeID) && ws.Covers(date) {
			out = append(out, ws)
		}
	}
	return out, nil
}
