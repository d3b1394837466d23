package clock

import (
	"encoding/json"
	"fmt"
	"time"
)

const day = 24 * time.Hour

// TimeOfDay is a wall-clock time without a date, stored as the offset from midnight.
type TimeOfDay time.Duration

var timeLayouts = []string{"15:04:05", "15:04"}

// ParseTimeOfDay accepts "HH:MM" or "HH:MM:SS".
func ParseTimeOfDay(s string) (TimeOfDay, error) {
	for _, layout := range timeLayouts {
		t, err := time.Parse(layout, s)
		if err == nil {
			return NewTimeOfDay(t.Hour(), t.Minute(), t.Second()), nil
		}
	}
	return 0, fmt.Errorf("invalid time of day %q", s)
}

func NewTimeOfDay(hour, minute, second int) TimeOfDay {
	return TimeOfDay(time.Duration(hour)*time.Hour + time.Duration(minute)*time.Minute + time.Duration(second)*time.Second)
}

// MustTimeOfDay panics on malformed input. Intended for fixtures.
func MustTimeOfDay(s string) TimeOfDay {
	t, err := ParseTimeOfDay(s)
	if err != nil {
		panic(err)
	}
	return t
}

func (t TimeOfDay) Duration() time.Duration {
	return time.Duration(t)
}

// On places the time of day on the given date.
func (t TimeOfDay) On(date time.Time) time.Time {
	return DateOf(date).Add(time.Duration(t))
}

func (t TimeOfDay) String() string {
	d := time.Duration(t) % day
	h := d / time.Hour
	m := (d % time.Hour) / time.Minute
	s := (d % time.Minute) / time.Second
	return fmt.Sprintf("%02d:%02d:%02d", h, m, s)
}

func (t TimeOfDay) MarshalJSON() ([]byte, error) {
	return json.Marshal(t.String())
}

func (t *TimeOfDay) UnmarshalJSON(data []byte) error {
	var s string
	if err := json.Unmarshal(data, &s); err != nil {
		return err
	}
	parsed, err := ParseTimeOfDay(s)
	if err != nil {
		return err
	}
	*t = parsed
	return nil
}

// Span returns the instants for start and end on date, pushing end to the next day
// when it does not fall after start.
func Span(date time.Time, start, end TimeOfDay) (time.Time, time.Time) {
	from := start.On(date)
	to := end.On(date)
	if !to.After(from) {
		to = to.Add(day)
	}
	return from, to
}
