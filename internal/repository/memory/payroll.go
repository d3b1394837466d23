package memory

import (
	"context"
	"sort"
	"time"

	"github.com/cmlabs-hris/payroll-engine/internal/domain/compensation"
	"github.com/cmlabs-hris/payroll-engine/internal/domain/payroll"
	"github.com/shopspring/decimal"
)

type periodRepository struct {
	s *Store
}

func NewPeriodRepository(s *Store) payroll.PeriodRepository {
	return &periodRepository{s: s}
}

// Create implements payroll.PeriodRepository.
func (r *periodRepository) Create(ctx context.Context, p payroll.Period) (payroll.Period, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	for _, existing := range r.s.data.periods {
		if existing.CompanyID == p.CompanyID && existing.StartDate.Equal(p.StartDate) && existing.EndDate.Equal(p.EndDate) {
			return payroll.Period{}, payroll.ErrPeriodExists
		}
	}

	p.ID = newID()
	now := r.s.now()
	p.CreatedAt, p.UpdatedAt = now, now
	r.s.data.periods[p.ID] = p
	return p, nil
}

// GetByID implements payroll.PeriodRepository.
func (r *periodRepository) GetByID(ctx context.Context, id string, companyID string) (payroll.Period, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()

	p, ok := r.s.data.periods[id]
	if !ok || p.CompanyID != companyID {
		return payroll.Period{}, payroll.ErrPeriodNotFound
	}
	return p, nil
}

// List implements payroll.PeriodRepository.
func (r *periodRepository) List(ctx context.Context, companyID string, status *payroll.PeriodStatus) ([]payroll.Period, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()

	var out []payroll.Period
	for _, p := range r.s.data.periods {
		if p.CompanyID != companyID || (status != nil && p.Status != *status) {
			continue
		}
		out = append(out, p)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].StartDate.After(out[j].StartDate) })
	return out, nil
}

// TransitionStatus implements payroll.PeriodRepository.
func (r *periodRepository) TransitionStatus(ctx context.Context, id string, companyID string, from, to payroll.PeriodStatus) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	p, ok := r.s.data.periods[id]
	if !ok || p.CompanyID != companyID {
		return payroll.ErrPeriodNotFound
	}
	if p.Status != from {
		return payroll.ErrStatusConflict
	}
	now := r.s.now()
	p.Status = to
	p.UpdatedAt = now
	if to == payroll.PeriodStatusCompleted {
		p.ProcessedAt = &now
	}
	r.s.data.periods[id] = p
	return nil
}

type payslipRepository struct {
	s *Store
}

func NewPayslipRepository(s *Store) payroll.PayslipRepository {
	return &payslipRepository{s: s}
}

// Upsert implements payroll.PayslipRepository.
func (r *payslipRepository) Upsert(ctx context.Context, p payroll.Payslip) (payroll.Payslip, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	now := r.s.now()
	p.ID = newID()
	p.CreatedAt = now
	for _, existing := range r.s.data.payslips {
		if existing.CompanyID == p.CompanyID && existing.EmployeeID == p.EmployeeID && existing.PeriodID == p.PeriodID {
			p.ID = existing.ID
			p.CreatedAt = existing.CreatedAt
			break
		}
	}
	p.UpdatedAt = now
	p.Components = nil
	p.EmployeeName = nil
	r.s.data.payslips[p.ID] = p
	return p, nil
}

// ReplaceComponents implements payroll.PayslipRepository.
func (r *payslipRepository) ReplaceComponents(ctx context.Context, payslipID string, companyID string, comps []payroll.Component) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	p, ok := r.s.data.payslips[payslipID]
	if !ok || p.CompanyID != companyID {
		return payroll.ErrPayslipNotFound
	}

	stored := make([]payroll.Component, len(comps))
	for i, c := range comps {
		c.ID = newID()
		c.CompanyID = companyID
		c.PayslipID = payslipID
		stored[i] = c
	}
	r.s.data.components[payslipID] = stored
	return nil
}

// GetByID implements payroll.PayslipRepository.
func (r *payslipRepository) GetByID(ctx context.Context, id string, companyID string) (payroll.Payslip, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()

	p, ok := r.s.data.payslips[id]
	if !ok || p.CompanyID != companyID {
		return payroll.Payslip{}, payroll.ErrPayslipNotFound
	}
	p = r.withEmployeeName(p)
	p.Components = append([]payroll.Component(nil), r.s.data.components[id]...)
	sort.SliceStable(p.Components, func(i, j int) bool {
		ci, cj := p.Components[i], p.Components[j]
		if ci.ComponentType != cj.ComponentType {
			return ci.ComponentType == compensation.RuleTypeEarning
		}
		return ci.DisplayOrder < cj.DisplayOrder
	})
	return p, nil
}

// ListByPeriod implements payroll.PayslipRepository.
func (r *payslipRepository) ListByPeriod(ctx context.Context, periodID string, companyID string) ([]payroll.Payslip, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()

	var out []payroll.Payslip
	for _, p := range r.s.data.payslips {
		if p.CompanyID == companyID && p.PeriodID == periodID {
			out = append(out, r.withEmployeeName(p))
		}
	}
	sort.Slice(out, func(i, j int) bool {
		ni, nj := nameOf(out[i]), nameOf(out[j])
		if ni != nj {
			return ni < nj
		}
		return out[i].ID < out[j].ID
	})
	return out, nil
}

// Summarize implements payroll.PayslipRepository.
func (r *payslipRepository) Summarize(ctx context.Context, periodID string, companyID string) (payroll.Summary, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()

	sum := payroll.Summary{
		PeriodID:         periodID,
		TotalBasicSalary: decimal.Zero,
		TotalAllowances:  decimal.Zero,
		TotalOvertime:    decimal.Zero,
		TotalGross:       decimal.Zero,
		TotalDeductions:  decimal.Zero,
		TotalNet:         decimal.Zero,
	}
	for _, p := range r.s.data.payslips {
		if p.CompanyID != companyID || p.PeriodID != periodID {
			continue
		}
		sum.EmployeeCount++
		sum.TotalBasicSalary = sum.TotalBasicSalary.Add(p.BasicSalary)
		sum.TotalAllowances = sum.TotalAllowances.Add(p.Allowances)
		sum.TotalOvertime = sum.TotalOvertime.Add(p.OvertimePay)
		sum.TotalGross = sum.TotalGross.Add(p.GrossSalary)
		sum.TotalDeductions = sum.TotalDeductions.Add(p.TotalDeductions)
		sum.TotalNet = sum.TotalNet.Add(p.NetSalary)
	}
	return sum, nil
}

// withEmployeeName must be called with the read lock held.
func (r *payslipRepository) withEmployeeName(p payroll.Payslip) payroll.Payslip {
	if e, ok := r.s.data.employees[p.EmployeeID]; ok {
		name := e.FullName
		p.EmployeeName = &name
	}
	return p
}

func nameOf(p payroll.Payslip) string {
	if p.EmployeeName == nil {
		return ""
	}
	return *p.EmployeeName
}

type salaryStructureRepository struct {
	s *Store
}

func NewSalaryStructureRepository(s *Store) payroll.SalaryStructureRepository {
	return &salaryStructureRepository{s: s}
}

// Create implements payroll.SalaryStructureRepository.
func (r *salaryStructureRepository) Create(ctx context.Context, ss payroll.SalaryStructure) (payroll.SalaryStructure, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	ss.ID = newID()
	now := r.s.now()
	ss.CreatedAt, ss.UpdatedAt = now, now
	r.s.data.structures[ss.ID] = ss
	return ss, nil
}

// GetCurrent implements payroll.SalaryStructureRepository.
func (r *salaryStructureRepository) GetCurrent(ctx context.Context, companyID, employeeID string, asOf time.Time) (payroll.SalaryStructure, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()

	var (
		best  payroll.SalaryStructure
		found bool
	)
	for _, ss := range r.s.data.structures {
		if ss.CompanyID != companyID || ss.EmployeeID != employeeID || !ss.IsActive || ss.EffectiveDate.After(asOf) {
			continue
		}
		if !found || ss.EffectiveDate.After(best.EffectiveDate) ||
			(ss.EffectiveDate.Equal(best.EffectiveDate) && ss.ID > best.ID) {
			best, found = ss, true
		}
	}
	if !found {
		return payroll.SalaryStructure{}, payroll.ErrSalaryStructureNotFound
	}
	return best, nil
}
