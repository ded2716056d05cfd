package biztime

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// Bogota is UTC-5 with no DST, so business midnight is 05:00 UTC.
func TestStartOfDayUTC(t *testing.T) {
	// 2025-03-15 03:00 UTC is still 2025-03-14 22:00 in Bogota
	input := time.Date(2025, 3, 15, 3, 0, 0, 0, time.UTC)

	start := StartOfDayUTC(input)

	assert.Equal(t, time.Date(2025, 3, 14, 5, 0, 0, 0, time.UTC), start)
}

func TestCurrentMonthPeriod(t *testing.T) {
	// 2025-07-01 02:00 UTC is 2025-06-30 21:00 in Bogota, so the period is June
	input := time.Date(2025, 7, 1, 2, 0, 0, 0, time.UTC)

	start, end := CurrentMonthPeriod(input)

	assert.Equal(t, time.Date(2025, 6, 1, 5, 0, 0, 0, time.UTC), start)
	assert.Equal(t, time.Date(2025, 7, 1, 5, 0, 0, 0, time.UTC).Add(-time.Nanosecond), end)
	assert.True(t, start.Before(end))
}

func TestDateInBiz(t *testing.T) {
	morning := time.Date(2025, 5, 10, 13, 0, 0, 0, time.UTC)
	night := time.Date(2025, 5, 10, 23, 30, 0, 0, time.UTC)

	assert.Equal(t, DateInBiz(morning), DateInBiz(night))

	// 04:00 UTC belongs to the previous Bogota day
	early := time.Date(2025, 5, 10, 4, 0, 0, 0, time.UTC)
	assert.Equal(t, time.Date(2025, 5, 9, 5, 0, 0, 0, time.UTC), DateInBiz(early))
}

func TestDaysUntil(t *testing.T) {
	assert.Equal(t, 0, DaysUntil(NowUTC()))
	assert.Equal(t, 0, DaysUntil(NowUTC().AddDate(0, 0, -5)), "past dates clamp to zero")

	future := NowUTC().AddDate(0, 0, 3)
	days := DaysUntil(future)
	assert.InDelta(t, 3, days, 1, "whole-day count may straddle a boundary")
}

func TestParseDateInBizTimezone(t *testing.T) {
	parsed, err := ParseDateInBizTimezone("2025-01-15")
	require.NoError(t, err)
	assert.Equal(t, time.Date(2025, 1, 15, 5, 0, 0, 0, time.UTC), parsed)

	_, err = ParseDateInBizTimezone("15/01/2025")
	require.Error(t, err)
}
