package services

import (
	"fmt"
	"time"

	"billing-backend/db/models"
)

// ValidateSchedule rejects malformed frequency or limit configuration at
// template creation/edit time, before the scheduler can ever see it.
func ValidateSchedule(tpl *models.RecurringInvoice) error {
	if err := ValidateFrequency(tpl.Frequency); err != nil {
		return err
	}

	switch tpl.LimitType {
	case models.NoLimit:
		return nil
	case models.CountLimit:
		if tpl.LimitCount == nil || *tpl.LimitCount < 1 {
			return fmt.Errorf("%w: COUNT limit requires a positive limit_count", ErrInvalidSchedule)
		}
		return nil
	case models.DateLimit:
		if tpl.LimitDate == nil {
			return fmt.Errorf("%w: DATE limit requires a limit_date", ErrInvalidSchedule)
		}
		return nil
	default:
		return fmt.Errorf("%w: unknown limit type %q", ErrInvalidSchedule, tpl.LimitType)
	}
}

// InitializeSchedule puts a freshly created template into ACTIVE state with
// its first occurrence computed from starts_at.
func InitializeSchedule(tpl *models.RecurringInvoice, now time.Time) error {
	if err := ValidateSchedule(tpl); err != nil {
		return err
	}

	first, err := FirstOccurrence(tpl.StartsAt, tpl.Frequency, now)
	if err != nil {
		return err
	}

	tpl.Status = models.ActiveRecurring
	tpl.NextInvoiceAt = &first
	tpl.GeneratedCount = 0
	return nil
}

// AdvanceAfterGeneration moves the schedule forward after an invoice was
// generated for the given occurrence. The next occurrence is computed from
// that occurrence, not from "now", so a catch-up run after downtime fires
// each missed occurrence exactly once. When the limit policy is satisfied
// the template transitions to its terminal COMPLETED state.
func AdvanceAfterGeneration(tpl *models.RecurringInvoice, occurrence time.Time) error {
	if tpl.Status != models.ActiveRecurring {
		return fmt.Errorf("cannot advance %s recurring invoice %s", tpl.Status, tpl.ID)
	}

	tpl.GeneratedCount++

	if tpl.LimitType == models.CountLimit && tpl.GeneratedCount >= *tpl.LimitCount {
		complete(tpl)
		return nil
	}

	next, err := NextOccurrence(occurrence, tpl.Frequency, tpl.AnchorDay())
	if err != nil {
		return err
	}

	if tpl.LimitType == models.DateLimit && next.After(dateOf(*tpl.LimitDate)) {
		complete(tpl)
		return nil
	}

	tpl.NextInvoiceAt = &next
	return nil
}

// Hold pauses an ACTIVE template. The scheduler skips it entirely until it
// is resumed.
func Hold(tpl *models.RecurringInvoice) error {
	if tpl.Status == models.CompletedRecurring {
		return ErrAlreadyCompleted
	}

	tpl.Status = models.OnHoldRecurring
	return nil
}

// Resume reactivates an ON_HOLD template. Occurrences missed while on hold
// are not generated retroactively: next_invoice_at becomes the next
// occurrence on or after now, still anchored to the starts_at day-of-month.
func Resume(tpl *models.RecurringInvoice, now time.Time) error {
	if tpl.Status == models.CompletedRecurring {
		return ErrAlreadyCompleted
	}

	next, err := FirstOccurrence(tpl.StartsAt, tpl.Frequency, now)
	if err != nil {
		return err
	}

	tpl.Status = models.ActiveRecurring
	tpl.NextInvoiceAt = &next
	return nil
}

func complete(tpl *models.RecurringInvoice) {
	tpl.Status = models.CompletedRecurring
	tpl.NextInvoiceAt = nil
}
