package attendance

import (
	"context"
	"fmt"
	"strings"
	"testing"
	"time"

	"github.com/bxcodec/faker/v4"
	"github.com/cmlabs-hris/payroll-engine/internal/domain/attendance"
	"github.com/cmlabs-hris/payroll-engine/internal/domain/employee"
	"github.com/cmlabs-hris/payroll-engine/internal/domain/schedule"
	"github.com/cmlabs-hris/payroll-engine/internal/pkg/clock"
	"github.com/cmlabs-hris/payroll-engine/internal/repository/memory"
	schedulesvc "github.com/cmlabs-hris/payroll-engine/internal/service/schedule"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const companyID = "0190f3a0-0000-7000-8000-000000000001"

// 2024-03-04 is a Monday
var monday = time.Date(2024, 3, 4, 0, 0, 0, 0, time.UTC)

type fixture struct {
	store   *memory.Store
	records attendance.AttendanceRepository
	svc     attendance.AttendanceService
}

func newFixture() *fixture {
	store := memory.NewStore()
	records := memory.NewAttendanceRepository(store)
	resolver := schedulesvc.NewResolver(memory.NewWorkScheduleRepository(store))
	now := clock.Fixed(time.Date(2024, 3, 5, 8, 0, 0, 0, time.UTC))
	return &fixture{
		store:   store,
		records: records,
		svc:     NewAttendanceService(store, records, memory.NewEmployeeRepository(store), resolver, now),
	}
}

func (f *fixture) employee(t *testing.T) employee.Employee {
	t.Helper()
	return f.store.AddEmployee(employee.Employee{
		CompanyID:        companyID,
		EmployeeCode:     faker.Username(),
		FullName:         faker.Name(),
		EmploymentStatus: employee.EmploymentStatusActive,
		IsActive:         true,
	})
}

func (f *fixture) officeHours(employeeIDs ...string) {
	f.store.AddWorkSchedule(schedule.WorkSchedule{
		CompanyID:   companyID,
		Name:        "Office",
		StartDate:   time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC),
		WorkingDays: [7]bool{true, true, true, true, true, false, false},
		IsActive:    true,
		EmployeeIDs: employeeIDs,
		Shift:       dayShift(),
	})
}

func TestEvaluateAttendance_CreatesRecordWithoutPunches(t *testing.T) {
	ctx := context.Background()
	f := newFixture()
	emp := f.employee(t)
	f.officeHours(emp.ID)

	rec, err := f.svc.EvaluateAttendance(ctx, companyID, emp.ID, monday)
	require.NoError(t, err)
	assert.Equal(t, attendance.StatusAbsent, rec.Status)
	require.NotNil(t, rec.EvaluatedAt)

	stored, err := f.records.GetByEmployeeDate(ctx, companyID, emp.ID, monday)
	require.NoError(t, err)
	assert.Equal(t, rec.ID, stored.ID)
}

func TestEvaluateAttendance_IsRepeatable(t *testing.T) {
	ctx := context.Background()
	f := newFixture()
	emp := f.employee(t)
	f.officeHours(emp.ID)

	rec, err := f.records.GetOrCreate(ctx, companyID, emp.ID, monday)
	require.NoError(t, err)
	require.NoError(t, f.records.SavePunches(ctx, rec.ID, companyID, attendance.Punches{
		CheckInTime:  tod("09:16"),
		CheckOutTime: tod("18:30"),
	}))

	first, err := f.svc.EvaluateAttendance(ctx, companyID, emp.ID, monday)
	require.NoError(t, err)
	second, err := f.svc.EvaluateAttendance(ctx, companyID, emp.ID, monday)
	require.NoError(t, err)

	assert.Equal(t, attendance.StatusLate, first.Status)
	assert.Equal(t, 16, first.LateMinutes)
	assert.Equal(t, first.Status, second.Status)
	assert.True(t, first.TotalHours.Equal(second.TotalHours))
	assert.True(t, first.OvertimeHours.Equal(second.OvertimeHours))
	assert.Equal(t, first.ID, second.ID)
}

func TestEvaluateAttendance_NoScheduleIsAbsent(t *testing.T) {
	ctx := context.Background()
	f := newFixture()
	emp := f.employee(t)

	rec, err := f.records.GetOrCreate(ctx, companyID, emp.ID, monday)
	require.NoError(t, err)
	require.NoError(t, f.records.SavePunches(ctx, rec.ID, companyID, attendance.Punches{
		CheckInTime:  tod("09:00"),
		CheckOutTime: tod("17:00"),
	}))

	got, err := f.svc.EvaluateAttendance(ctx, companyID, emp.ID, monday)
	require.NoError(t, err)
	assert.Equal(t, attendance.StatusAbsent, got.Status)
}

func TestEvaluateAttendance_UnknownEmployee(t *testing.T) {
	f := newFixture()
	_, err := f.svc.EvaluateAttendance(context.Background(), companyID, "0190f3a0-0000-7000-8000-0000000000ff", monday)
	assert.ErrorIs(t, err, employee.ErrEmployeeNotFound)
}

func TestEvaluateDay(t *testing.T) {
	ctx := context.Background()
	f := newFixture()
	scheduled := f.employee(t)
	unscheduled := f.employee(t)
	f.officeHours(scheduled.ID)

	saturday := monday.AddDate(0, 0, 5)
	result, err := f.svc.EvaluateDay(ctx, companyID, saturday)
	require.NoError(t, err)
	assert.Equal(t, "2024-03-09", result.Date)
	assert.Equal(t, 2, result.Evaluated)
	assert.Empty(t, result.Errors)

	rec, err := f.records.GetByEmployeeDate(ctx, companyID, scheduled.ID, saturday)
	require.NoError(t, err)
	assert.Equal(t, attendance.StatusHoliday, rec.Status)

	rec, err = f.records.GetByEmployeeDate(ctx, companyID, unscheduled.ID, saturday)
	require.NoError(t, err)
	assert.Equal(t, attendance.StatusAbsent, rec.Status)
}

func TestImportPunches(t *testing.T) {
	ctx := context.Background()
	f := newFixture()
	emp := f.employee(t)
	f.officeHours(emp.ID)

	csv := strings.Join([]string{
		"employee_id,date,check_in,check_out,break_start,break_end",
		fmt.Sprintf("%s,2024-03-04,09:00,17:00,12:00,12:30", emp.ID),
		fmt.Sprintf("%s,2024-03-05,9am,17:00,,", emp.ID),
		"0190f3a0-0000-7000-8000-0000000000ff,2024-03-04,09:00,17:00,,",
		fmt.Sprintf("%s,2024-03-06,10:00,12:00,,", emp.ID),
	}, "\n")

	result, err := f.svc.ImportPunches(ctx, companyID, strings.NewReader(csv))
	require.NoError(t, err)
	assert.Equal(t, 4, result.Rows)
	assert.Equal(t, 2, result.Imported)
	require.Len(t, result.Errors, 2)
	assert.True(t, strings.HasPrefix(result.Errors[0], "row 3:"), result.Errors[0])
	assert.True(t, strings.HasPrefix(result.Errors[1], "row 4:"), result.Errors[1])

	records, err := f.svc.ListAttendance(ctx, companyID, attendance.AttendanceFilter{
		EmployeeID: emp.ID,
		From:       monday,
		To:         monday.AddDate(0, 0, 6),
	})
	require.NoError(t, err)
	require.Len(t, records, 2)

	assert.Equal(t, attendance.StatusPresent, records[0].Status)
	assert.True(t, records[0].WorkingHours.Equal(dec("7.5")), records[0].WorkingHours.String())
	assert.Equal(t, attendance.StatusHalfDay, records[1].Status)
	assert.True(t, records[1].IsLate)
}

func TestImportPunches_EmptyFile(t *testing.T) {
	f := newFixture()
	_, err := f.svc.ImportPunches(context.Background(), companyID, strings.NewReader(""))
	assert.ErrorIs(t, err, attendance.ErrInvalidImportFile)
}
