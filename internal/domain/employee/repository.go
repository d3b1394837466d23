package employee

import "context"

type EmployeeRepository interface {
	GetByID(ctx context.Context, id string, companyID string) (Employee, error)
	// GetActiveByCompanyID returns employees with employment_status = active and is_active = true,
	// ordered by employee code.
	GetActiveByCompanyID(ctx context.Context, companyID string) ([]Employee, error)
	// ListCompanyIDs returns every company that has at least one active employee.
	ListCompanyIDs(ctx context.Context) ([]string, error)
}
