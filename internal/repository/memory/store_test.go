package memory

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/cmlabs-hris/payroll-engine/internal/domain/payroll"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestStore_WithinTransactionRollsBack(t *testing.T) {
	ctx := context.Background()
	store := NewStore()
	periods := NewPeriodRepository(store)

	period := payroll.Period{
		CompanyID: "company-1",
		Name:      "March 2024",
		StartDate: time.Date(2024, 3, 1, 0, 0, 0, 0, time.UTC),
		EndDate:   time.Date(2024, 3, 31, 0, 0, 0, 0, time.UTC),
		Status:    payroll.PeriodStatusDraft,
	}

	boom := errors.New("boom")
	err := store.WithinTransaction(ctx, func(ctx context.Context) error {
		_, err := periods.Create(ctx, period)
		require.NoError(t, err)
		return boom
	})
	assert.ErrorIs(t, err, boom)

	list, err := periods.List(ctx, "company-1", nil)
	require.NoError(t, err)
	assert.Empty(t, list)

	err = store.WithinTransaction(ctx, func(ctx context.Context) error {
		_, err := periods.Create(ctx, period)
		return err
	})
	require.NoError(t, err)

	list, err = periods.List(ctx, "company-1", nil)
	require.NoError(t, err)
	assert.Len(t, list, 1)
}

func TestStore_NestedTransactionJoinsOuter(t *testing.T) {
	ctx := context.Background()
	store := NewStore()

	calls := 0
	err := store.WithinTransaction(ctx, func(ctx context.Context) error {
		return store.WithinTransaction(ctx, func(ctx context.Context) error {
			calls++
			return nil
		})
	})
	require.NoError(t, err)
	assert.Equal(t, 1, calls)
}

func TestPeriodRepository_TransitionStatus(t *testing.T) {
	ctx := context.Background()
	periods := NewPeriodRepository(NewStore())

	p, err := periods.Create(ctx, payroll.Period{
		CompanyID: "company-1",
		StartDate: time.Date(2024, 3, 1, 0, 0, 0, 0, time.UTC),
		EndDate:   time.Date(2024, 3, 31, 0, 0, 0, 0, time.UTC),
		Status:    payroll.PeriodStatusDraft,
	})
	require.NoError(t, err)

	require.NoError(t, periods.TransitionStatus(ctx, p.ID, "company-1", payroll.PeriodStatusDraft, payroll.PeriodStatusProcessing))
	assert.ErrorIs(t, periods.TransitionStatus(ctx, p.ID, "company-1", payroll.PeriodStatusDraft, payroll.PeriodStatusProcessing), payroll.ErrStatusConflict)
	assert.ErrorIs(t, periods.TransitionStatus(ctx, p.ID, "company-2", payroll.PeriodStatusProcessing, payroll.PeriodStatusCompleted), payroll.ErrPeriodNotFound)

	require.NoError(t, periods.TransitionStatus(ctx, p.ID, "company-1", payroll.PeriodStatusProcessing, payroll.PeriodStatusCompleted))
	got, err := periods.GetByID(ctx, p.ID, "company-1")
	require.NoError(t, err)
	assert.Equal(t, payroll.PeriodStatusCompleted, got.Status)
	assert.NotNil(t, got.ProcessedAt)
}
