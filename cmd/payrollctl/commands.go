package main

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/cmlabs-hris/payroll-engine/internal/app"
	"github.com/cmlabs-hris/payroll-engine/internal/domain/attendance"
	"github.com/cmlabs-hris/payroll-engine/internal/domain/payroll"
	"github.com/cmlabs-hris/payroll-engine/internal/pkg/clock"
	"github.com/cmlabs-hris/payroll-engine/internal/pkg/database"
	"github.com/cmlabs-hris/payroll-engine/internal/pkg/jwt"
	"github.com/cmlabs-hris/payroll-engine/internal/pkg/validator"
	"github.com/spf13/cobra"
)

func newMigrateCmd(e *env) *cobra.Command {
	return &cobra.Command{
		Use:   "migrate",
		Short: "Apply pending database migrations",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			db, err := database.NewPostgreSQLDB(cmd.Context(), e.cfg.DatabaseURL(), database.PoolOptions{MaxConns: 2, MinConns: 1})
			if err != nil {
				return fmt.Errorf("failed to connect to database: %w", err)
			}
			defer db.Close()
			return database.RunMigrations(db)
		},
	}
}

func newRunCmd(e *env) *cobra.Command {
	var companyID string
	cmd := &cobra.Command{
		Use:   "run <period-id>",
		Short: "Run payroll for a draft pay period",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return e.withServices(cmd.Context(), func(s *app.Services) error {
				result, err := s.Payroll.RunPayroll(cmd.Context(), companyID, args[0])
				if err != nil && !errors.Is(err, payroll.ErrRunFailed) {
					return err
				}
				if printErr := e.printJSON(result); printErr != nil {
					return printErr
				}
				return err
			})
		},
	}
	cmd.Flags().StringVar(&companyID, "company", "", "company ID")
	_ = cmd.MarkFlagRequired("company")
	return cmd
}

func newRecalculateCmd(e *env) *cobra.Command {
	var companyID string
	cmd := &cobra.Command{
		Use:   "recalculate <payslip-id>",
		Short: "Recompute one payslip from current rules and attendance",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return e.withServices(cmd.Context(), func(s *app.Services) error {
				payslip, err := s.Payroll.RecalculatePayslip(cmd.Context(), companyID, args[0])
				if err != nil {
					return err
				}
				return e.printJSON(payslip)
			})
		},
	}
	cmd.Flags().StringVar(&companyID, "company", "", "company ID")
	_ = cmd.MarkFlagRequired("company")
	return cmd
}

func newEvaluateCmd(e *env) *cobra.Command {
	var companyID, employeeID, date string
	cmd := &cobra.Command{
		Use:   "evaluate",
		Short: "Evaluate attendance for one employee, or every employee when --employee is omitted",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return e.withServices(cmd.Context(), func(s *app.Services) error {
				day, err := evaluationDate(date, s.Clock)
				if err != nil {
					return err
				}
				return e.evaluate(cmd.Context(), s, companyID, employeeID, day)
			})
		},
	}
	cmd.Flags().StringVar(&companyID, "company", "", "company ID")
	cmd.Flags().StringVar(&employeeID, "employee", "", "employee ID")
	cmd.Flags().StringVar(&date, "date", "", "date to evaluate (YYYY-MM-DD, default yesterday)")
	_ = cmd.MarkFlagRequired("company")
	return cmd
}

func (e *env) evaluate(ctx context.Context, s *app.Services, companyID, employeeID string, day time.Time) error {
	if employeeID == "" {
		result, err := s.Attendance.EvaluateDay(ctx, companyID, day)
		if err != nil {
			return err
		}
		return e.printJSON(result)
	}
	rec, err := s.Attendance.EvaluateAttendance(ctx, companyID, employeeID, day)
	if err != nil {
		return err
	}
	return e.printJSON(attendance.NewRecordResponse(rec))
}

// evaluationDate parses --date, defaulting to yesterday in the configured timezone.
func evaluationDate(s string, clk clock.Clock) (time.Time, error) {
	if s == "" {
		return clock.Today(clk).AddDate(0, 0, -1), nil
	}
	day, ok := validator.IsValidDate(s)
	if !ok {
		return time.Time{}, fmt.Errorf("invalid --date %q: expected YYYY-MM-DD", s)
	}
	return day, nil
}

func newTokenCmd(e *env) *cobra.Command {
	var companyID string
	var ttl time.Duration
	cmd := &cobra.Command{
		Use:   "token",
		Short: "Issue a service token scoped to one company",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			if !validator.IsValidUUID(companyID) {
				return fmt.Errorf("--company must be a valid UUID")
			}
			token, expiresAt, err := jwt.NewJWTService(e.cfg.JWT.Secret).IssueServiceToken(companyID, ttl)
			if err != nil {
				return err
			}
			return e.printJSON(map[string]any{
				"token":      token,
				"expires_at": time.Unix(expiresAt, 0).UTC(),
			})
		},
	}
	cmd.Flags().StringVar(&companyID, "company", "", "company ID")
	cmd.Flags().DurationVar(&ttl, "ttl", time.Hour, "token lifetime")
	_ = cmd.MarkFlagRequired("company")
	return cmd
}
