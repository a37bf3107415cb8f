package services

import (
	"testing"
	"time"

	"billing-backend/db/models"

	"github.com/stretchr/testify/require"
)

func date(y int, m time.Month, d int) time.Time {
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

func TestValidateFrequency(t *testing.T) {
	require.NoError(t, ValidateFrequency(models.Frequency{Unit: models.DailyFrequency, Interval: 1}))
	require.NoError(t, ValidateFrequency(models.Frequency{Unit: models.MonthlyFrequency, Interval: 3}))

	err := ValidateFrequency(models.Frequency{Unit: models.MonthlyFrequency, Interval: 0})
	require.ErrorIs(t, err, ErrInvalidFrequency)

	err = ValidateFrequency(models.Frequency{Unit: "FORTNIGHTLY", Interval: 1})
	require.ErrorIs(t, err, ErrInvalidFrequency)

	err = ValidateFrequency(models.Frequency{Unit: models.WeeklyFrequency, Interval: -2})
	require.ErrorIs(t, err, ErrInvalidFrequency)
}

func TestNextOccurrenceDailyAndWeekly(t *testing.T) {
	daily := models.Frequency{Unit: models.DailyFrequency, Interval: 1}
	next, err := NextOccurrence(date(2024, time.March, 10), daily, 10)
	require.NoError(t, err)
	require.Equal(t, date(2024, time.March, 11), next)

	everyThreeDays := models.Frequency{Unit: models.DailyFrequency, Interval: 3}
	next, err = NextOccurrence(date(2024, time.March, 30), everyThreeDays, 30)
	require.NoError(t, err)
	require.Equal(t, date(2024, time.April, 2), next)

	biweekly := models.Frequency{Unit: models.WeeklyFrequency, Interval: 2}
	next, err = NextOccurrence(date(2024, time.March, 10), biweekly, 10)
	require.NoError(t, err)
	require.Equal(t, date(2024, time.March, 24), next)
}

func TestNextOccurrenceMonthlyClampsShortMonths(t *testing.T) {
	monthly := models.Frequency{Unit: models.MonthlyFrequency, Interval: 1}

	// Anchored on the 31st: February clamps, March snaps back to the 31st.
	next, err := NextOccurrence(date(2024, time.January, 31), monthly, 31)
	require.NoError(t, err)
	require.Equal(t, date(2024, time.February, 29), next, "leap year February keeps the 29th")

	next, err = NextOccurrence(next, monthly, 31)
	require.NoError(t, err)
	require.Equal(t, date(2024, time.March, 31), next, "anchor day returns once the month is long enough")

	// Non-leap year clamps to the 28th.
	next, err = NextOccurrence(date(2025, time.January, 31), monthly, 31)
	require.NoError(t, err)
	require.Equal(t, date(2025, time.February, 28), next)

	// The 30th clamps in February only.
	next, err = NextOccurrence(date(2025, time.March, 30), monthly, 30)
	require.NoError(t, err)
	require.Equal(t, date(2025, time.April, 30), next)
}

func TestNextOccurrenceMonthlyNeverSkipsMonths(t *testing.T) {
	// Stepping from Jan 31 must land in February, not normalize into March.
	monthly := models.Frequency{Unit: models.MonthlyFrequency, Interval: 1}
	occurrence := date(2024, time.January, 31)

	months := []time.Month{
		time.February, time.March, time.April, time.May, time.June,
		time.July, time.August, time.September, time.October,
		time.November, time.December,
	}
	for _, want := range months {
		next, err := NextOccurrence(occurrence, monthly, 31)
		require.NoError(t, err)
		require.Equal(t, want, next.Month())
		occurrence = next
	}
}

func TestNextOccurrenceYearly(t *testing.T) {
	yearly := models.Frequency{Unit: models.YearlyFrequency, Interval: 1}

	// Feb 29 anchors clamp to Feb 28 in non-leap years.
	next, err := NextOccurrence(date(2024, time.February, 29), yearly, 29)
	require.NoError(t, err)
	require.Equal(t, date(2025, time.February, 28), next)

	next, err = NextOccurrence(date(2027, time.February, 28), yearly, 29)
	require.NoError(t, err)
	require.Equal(t, date(2028, time.February, 29), next, "leap year restores the anchor day")
}

func TestFirstOccurrence(t *testing.T) {
	monthly := models.Frequency{Unit: models.MonthlyFrequency, Interval: 1}

	// Future start date is used as-is.
	first, err := FirstOccurrence(date(2024, time.June, 15), monthly, date(2024, time.June, 1))
	require.NoError(t, err)
	require.Equal(t, date(2024, time.June, 15), first)

	// Start date today fires today.
	first, err = FirstOccurrence(date(2024, time.June, 15), monthly, date(2024, time.June, 15))
	require.NoError(t, err)
	require.Equal(t, date(2024, time.June, 15), first)

	// Past start date iterates forward, keeping the anchor day.
	first, err = FirstOccurrence(date(2024, time.January, 31), monthly, date(2024, time.March, 15))
	require.NoError(t, err)
	require.Equal(t, date(2024, time.March, 31), first)

	_, err = FirstOccurrence(date(2024, time.January, 31), models.Frequency{Unit: "BAD", Interval: 1}, date(2024, time.March, 15))
	require.ErrorIs(t, err, ErrInvalidFrequency)
}
