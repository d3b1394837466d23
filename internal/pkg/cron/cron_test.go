package cron

import (
	"context"
	"errors"
	"io"
	"sync"
	"testing"
	"time"

	"github.com/cmlabs-hris/payroll-engine/internal/domain/attendance"
	"github.com/cmlabs-hris/payroll-engine/internal/domain/employee"
	"github.com/cmlabs-hris/payroll-engine/internal/pkg/clock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type stubEmployees struct {
	employee.EmployeeRepository
	companyIDs []string
}

func (s stubEmployees) ListCompanyIDs(ctx context.Context) ([]string, error) {
	return s.companyIDs, nil
}

type recordingAttendance struct {
	mu       sync.Mutex
	calls    map[string]time.Time
	failFor  string
	evaluate int
}

func (r *recordingAttendance) EvaluateAttendance(ctx context.Context, companyID, employeeID string, date time.Time) (attendance.Record, error) {
	return attendance.Record{}, nil
}

func (r *recordingAttendance) EvaluateDay(ctx context.Context, companyID string, date time.Time) (attendance.EvaluateDayResult, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.calls == nil {
		r.calls = map[string]time.Time{}
	}
	r.calls[companyID] = date
	if companyID == r.failFor {
		return attendance.EvaluateDayResult{}, errors.New("boom")
	}
	return attendance.EvaluateDayResult{Date: date.Format("2006-01-02"), Evaluated: r.evaluate}, nil
}

func (r *recordingAttendance) ImportPunches(ctx context.Context, companyID string, rd io.Reader) (attendance.ImportResult, error) {
	return attendance.ImportResult{}, nil
}

func (r *recordingAttendance) ListAttendance(ctx context.Context, companyID string, filter attendance.AttendanceFilter) ([]attendance.Record, error) {
	return nil, nil
}

func TestEvaluatePreviousDay_EveryCompany(t *testing.T) {
	svc := &recordingAttendance{failFor: "b", evaluate: 3}
	now := clock.Fixed(time.Date(2024, 3, 5, 1, 30, 0, 0, time.UTC))
	jobs := NewAttendanceJobs(svc, stubEmployees{companyIDs: []string{"a", "b", "c"}}, now)

	err := jobs.EvaluatePreviousDay(context.Background())
	require.Error(t, err)
	assert.Contains(t, err.Error(), "company b")

	require.Len(t, svc.calls, 3)
	for _, id := range []string{"a", "b", "c"} {
		assert.Equal(t, time.Date(2024, 3, 4, 0, 0, 0, 0, time.UTC), svc.calls[id])
	}
}

func TestJob_DailyDue(t *testing.T) {
	hour := 1
	job := &Job{Name: "nightly", DailyAt: &hour}

	assert.False(t, job.due(time.Date(2024, 3, 5, 0, 59, 0, 0, time.UTC)))
	assert.True(t, job.due(time.Date(2024, 3, 5, 1, 0, 0, 0, time.UTC)))

	job.lastRun = time.Date(2024, 3, 5, 1, 0, 0, 0, time.UTC)
	assert.False(t, job.due(time.Date(2024, 3, 5, 23, 0, 0, 0, time.UTC)))
	assert.True(t, job.due(time.Date(2024, 3, 6, 2, 0, 0, 0, time.UTC)))
}

func TestScheduler_StartRunsAndStops(t *testing.T) {
	s := NewScheduler(clock.NewSystemClock(nil))
	ran := make(chan struct{}, 1)
	s.AddJob("ping", time.Hour, func(ctx context.Context) error {
		select {
		case ran <- struct{}{}:
		default:
		}
		return nil
	})

	s.Start(context.Background())
	select {
	case <-ran:
	case <-time.After(2 * time.Second):
		t.Fatal("job did not run on start")
	}
	s.Stop()
}
