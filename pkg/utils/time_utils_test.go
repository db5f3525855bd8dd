package utils

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseClock(t *testing.T) {
	cases := []struct {
		in      string
		minutes int
		ok      bool
	}{
		{in: "00:00", minutes: 0, ok: true},
		{in: "09:30", minutes: 570, ok: true},
		{in: "23:59", minutes: 1439, ok: true},
		{in: "24:00", ok: false},
		{in: "9am", ok: false},
		{in: "", ok: false},
	}

	for _, tc := range cases {
		got, err := ParseClock(tc.in)
		if !tc.ok {
			assert.Error(t, err, "input %q", tc.in)
			continue
		}
		require.NoError(t, err, "input %q", tc.in)
		assert.Equal(t, tc.minutes, got)
	}
}

func TestFormatClockRoundTrip(t *testing.T) {
	for _, clock := range []string{"00:00", "09:05", "12:00", "23:59"} {
		minutes, err := ParseClock(clock)
		require.NoError(t, err)
		assert.Equal(t, clock, FormatClock(minutes))
	}
}

func TestDaysBetweenInclusive(t *testing.T) {
	day := func(s string) time.Time {
		d, err := ParseDate(s)
		require.NoError(t, err)
		return d
	}

	assert.Equal(t, 1, DaysBetween(day("2026-05-01"), day("2026-05-01")))
	assert.Equal(t, 3, DaysBetween(day("2026-05-01"), day("2026-05-03")))
	assert.Equal(t, 0, DaysBetween(day("2026-05-03"), day("2026-05-01")))
}
