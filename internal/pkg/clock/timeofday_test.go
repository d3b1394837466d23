package clock

import (
	"encoding/json"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseTimeOfDay(t *testing.T) {
	tests := []struct {
		in      string
		want    string
		wantErr bool
	}{
		{"08:00", "08:00:00", false},
		{"22:10:30", "22:10:30", false},
		{"00:00", "00:00:00", false},
		{"25:00", "", true},
		{"8am", "", true},
	}

	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			got, err := ParseTimeOfDay(tt.in)
			if tt.wantErr {
				assert.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, got.String())
		})
	}
}

func TestSpan_Overnight(t *testing.T) {
	date := time.Date(2024, 3, 4, 0, 0, 0, 0, time.UTC)

	from, to := Span(date, MustTimeOfDay("22:00"), MustTimeOfDay("06:00"))
	assert.Equal(t, time.Date(2024, 3, 4, 22, 0, 0, 0, time.UTC), from)
	assert.Equal(t, time.Date(2024, 3, 5, 6, 0, 0, 0, time.UTC), to)

	from, to = Span(date, MustTimeOfDay("09:00"), MustTimeOfDay("17:00"))
	assert.Equal(t, 8*time.Hour, to.Sub(from))

	// equal bounds count as a full day
	from, to = Span(date, MustTimeOfDay("09:00"), MustTimeOfDay("09:00"))
	assert.Equal(t, 24*time.Hour, to.Sub(from))
}

func TestTimeOfDay_JSON(t *testing.T) {
	var got struct {
		At TimeOfDay `json:"at"`
	}
	require.NoError(t, json.Unmarshal([]byte(`{"at":"07:45"}`), &got))
	assert.Equal(t, NewTimeOfDay(7, 45, 0), got.At)

	out, err := json.Marshal(got)
	require.NoError(t, err)
	assert.JSONEq(t, `{"at":"07:45:00"}`, string(out))
}

func TestIntervalsOverlap(t *testing.T) {
	d := func(m time.Month, day int) time.Time { return time.Date(2024, m, day, 0, 0, 0, 0, time.UTC) }
	ptr := func(t time.Time) *time.Time { return &t }

	assert.True(t, IntervalsOverlap(d(1, 1), ptr(d(3, 31)), d(3, 1), ptr(d(6, 30))))
	assert.False(t, IntervalsOverlap(d(1, 1), ptr(d(2, 28)), d(3, 1), ptr(d(6, 30))))
	assert.True(t, IntervalsOverlap(d(1, 1), nil, d(12, 1), ptr(d(12, 31))))
	assert.True(t, IntervalsOverlap(d(3, 31), ptr(d(3, 31)), d(3, 31), nil))
	assert.False(t, IntervalsOverlap(d(5, 1), nil, d(1, 1), ptr(d(4, 30))))
}

func TestDateRange(t *testing.T) {
	r := DateRange{Start: time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC), End: time.Date(2024, 1, 31, 0, 0, 0, 0, time.UTC)}
	to := time.Date(2023, 12, 31, 0, 0, 0, 0, time.UTC)

	assert.True(t, r.Contains(r.End))
	assert.False(t, r.Contains(r.End.AddDate(0, 0, 1)))
	assert.False(t, r.Overlaps(time.Date(2023, 6, 1, 0, 0, 0, 0, time.UTC), &to))
	assert.True(t, r.Overlaps(time.Date(2023, 6, 1, 0, 0, 0, 0, time.UTC), nil))
	assert.False(t, r.Overlaps(time.Date(2024, 2, 1, 0, 0, 0, 0, time.UTC), nil))
}
