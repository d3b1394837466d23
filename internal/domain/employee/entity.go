package employee

import (
	"time"
)

// Employee is the engine's read-only view of a person on the payroll. The record is owned by
// the organizational-structure service.
type Employee struct {
	ID               string
	CompanyID        string
	EmployeeCode     string
	FullName         string
	EmploymentStatus EmploymentStatus
	IsActive         bool
	CreatedAt        time.Time
	UpdatedAt        time.Time
}

type EmploymentStatus string

const (
	EmploymentStatusActive     EmploymentStatus = "active"
	EmploymentStatusResigned   EmploymentStatus = "resigned"
	EmploymentStatusTerminated EmploymentStatus = "terminated"
)

// IsPayable reports whether the employee takes part in a payroll run.
func (e Employee) IsPayable() bool {
	return e.IsActive && e.EmploymentStatus == EmploymentStatusActive
}
