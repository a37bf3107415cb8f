package services

import (
	"fmt"
	"time"

	"billing-backend/db/models"
)

// ValidateFrequency checks the frequency specifier without computing
// anything. Unknown units are an error, never a default.
func ValidateFrequency(freq models.Frequency) error {
	if freq.Interval < 1 {
		return fmt.Errorf("%w: interval must be positive, got %d", ErrInvalidFrequency, freq.Interval)
	}

	switch freq.Unit {
	case models.DailyFrequency, models.WeeklyFrequency, models.MonthlyFrequency, models.YearlyFrequency:
		return nil
	default:
		return fmt.Errorf("%w: unknown unit %q", ErrInvalidFrequency, freq.Unit)
	}
}

// NextOccurrence returns the occurrence that follows the given one. Daily
// and weekly steps are plain day arithmetic. Monthly and yearly steps stay
// pinned to anchorDay and clamp to the last valid day of the target month,
// so a template anchored on the 31st fires on Feb 29 in a leap year and is
// back on the 31st in March instead of drifting into April.
func NextOccurrence(after time.Time, freq models.Frequency, anchorDay int) (time.Time, error) {
	if err := ValidateFrequency(freq); err != nil {
		return time.Time{}, err
	}

	switch freq.Unit {
	case models.DailyFrequency:
		return dateOf(after).AddDate(0, 0, freq.Interval), nil
	case models.WeeklyFrequency:
		return dateOf(after).AddDate(0, 0, 7*freq.Interval), nil
	case models.MonthlyFrequency:
		return addMonthsClamped(after, freq.Interval, anchorDay), nil
	default: // YearlyFrequency, ValidateFrequency already rejected the rest
		return addMonthsClamped(after, 12*freq.Interval, anchorDay), nil
	}
}

// FirstOccurrence computes the initial next_invoice_at for a schedule: the
// starts_at date itself if it is on or after now, otherwise the first
// future iterate the calculator produces from it.
func FirstOccurrence(startsAt time.Time, freq models.Frequency, now time.Time) (time.Time, error) {
	if err := ValidateFrequency(freq); err != nil {
		return time.Time{}, err
	}

	occurrence := dateOf(startsAt)
	today := dateOf(now)
	for occurrence.Before(today) {
		next, err := NextOccurrence(occurrence, freq, startsAt.Day())
		if err != nil {
			return time.Time{}, err
		}
		occurrence = next
	}
	return occurrence, nil
}

func addMonthsClamped(after time.Time, months int, anchorDay int) time.Time {
	y, m, _ := after.Date()

	// Step from the first of the month so AddDate cannot normalize a short
	// month into the one after it.
	first := time.Date(y, m, 1, 0, 0, 0, 0, time.UTC).AddDate(0, months, 0)

	day := anchorDay
	if last := lastDayOfMonth(first.Year(), first.Month()); day > last {
		day = last
	}
	return time.Date(first.Year(), first.Month(), day, 0, 0, 0, 0, time.UTC)
}

func lastDayOfMonth(year int, month time.Month) int {
	return time.Date(year, month, 1, 0, 0, 0, 0, time.UTC).AddDate(0, 1, -1).Day()
}

func dateOf(t time.Time) time.Time {
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, time.UTC)
}
