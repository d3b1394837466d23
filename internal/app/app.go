// Package app wires repositories and services over a PostgreSQL pool. Both the API server and
// payrollctl build their object graph here.
package app

import (
	"github.com/cmlabs-hris/payroll-engine/internal/config"
	"github.com/cmlabs-hris/payroll-engine/internal/domain/attendance"
	"github.com/cmlabs-hris/payroll-engine/internal/domain/compensation"
	"github.com/cmlabs-hris/payroll-engine/internal/domain/employee"
	"github.com/cmlabs-hris/payroll-engine/internal/domain/payroll"
	"github.com/cmlabs-hris/payroll-engine/internal/pkg/clock"
	"github.com/cmlabs-hris/payroll-engine/internal/pkg/database"
	"github.com/cmlabs-hris/payroll-engine/internal/repository/postgresql"
	attendanceService "github.com/cmlabs-hris/payroll-engine/internal/service/attendance"
	compensationService "github.com/cmlabs-hris/payroll-engine/internal/service/compensation"
	payrollService "github.com/cmlabs-hris/payroll-engine/internal/service/payroll"
	scheduleService "github.com/cmlabs-hris/payroll-engine/internal/service/schedule"
)

type Services struct {
	Clock        clock.Clock
	EmployeeRepo employee.EmployeeRepository
	Attendance   attendance.AttendanceService
	Compensation compensation.CompensationService
	Payroll      payroll.PayrollService
}

func NewServices(db *database.DB, cfg *config.Config) (*Services, error) {
	loc, err := cfg.Location()
	if err != nil {
		return nil, err
	}
	clk := clock.NewSystemClock(loc)

	transactor := postgresql.NewTransactor(db)
	employeeRepo := postgresql.NewEmployeeRepository(db)
	workScheduleRepo := postgresql.NewWorkScheduleRepository(db)
	attendanceRepo := postgresql.NewAttendanceRepository(db)
	ruleRepo := postgresql.NewRuleRepository(db)
	assignmentRepo := postgresql.NewAssignmentRepository(db)
	periodRepo := postgresql.NewPeriodRepository(db)
	payslipRepo := postgresql.NewPayslipRepository(db)
	salaryRepo := postgresql.NewSalaryStructureRepository(db)

	resolver := compensationService.NewRuleResolver(ruleRepo, assignmentRepo, clk)

	return &Services{
		Clock:        clk,
		EmployeeRepo: employeeRepo,
		Attendance: attendanceService.NewAttendanceService(
			transactor,
			attendanceRepo,
			employeeRepo,
			scheduleService.NewResolver(workScheduleRepo),
			clk,
		),
		Compensation: compensationService.NewCompensationService(
			transactor,
			ruleRepo,
			assignmentRepo,
			employeeRepo,
			clk,
		),
		Payroll: payrollService.NewPayrollService(
			transactor,
			periodRepo,
			payslipRepo,
			salaryRepo,
			employeeRepo,
			attendanceRepo,
			resolver,
			clk,
			cfg.Payroll.Workers,
		),
	}, nil
}
