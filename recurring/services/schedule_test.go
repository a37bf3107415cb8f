package services

import (
	"testing"
	"time"

	"billing-backend/db/models"
	"billing-backend/utils"

	"github.com/google/uuid"
	"github.com/stretchr/testify/require"
)

func monthlyTemplate(startsAt time.Time) *models.RecurringInvoice {
	return &models.RecurringInvoice{
		ID:         uuid.New(),
		CompanyID:  uuid.New(),
		CustomerID: uuid.New(),
		Frequency:  models.Frequency{Unit: models.MonthlyFrequency, Interval: 1},
		StartsAt:   startsAt,
		LimitType:  models.NoLimit,
	}
}

func TestValidateSchedule(t *testing.T) {
	tpl := monthlyTemplate(date(2024, time.January, 1))
	require.NoError(t, ValidateSchedule(tpl))

	tpl.LimitType = models.CountLimit
	require.ErrorIs(t, ValidateSchedule(tpl), ErrInvalidSchedule, "COUNT limit without a count")

	tpl.LimitCount = utils.IntPtr(0)
	require.ErrorIs(t, ValidateSchedule(tpl), ErrInvalidSchedule, "COUNT limit with a zero count")

	tpl.LimitCount = utils.IntPtr(3)
	require.NoError(t, ValidateSchedule(tpl))

	tpl.LimitType = models.DateLimit
	tpl.LimitDate = nil
	require.ErrorIs(t, ValidateSchedule(tpl), ErrInvalidSchedule, "DATE limit without a date")

	limitDate := date(2024, time.June, 1)
	tpl.LimitDate = &limitDate
	require.NoError(t, ValidateSchedule(tpl))

	tpl.LimitType = "FOREVER"
	require.ErrorIs(t, ValidateSchedule(tpl), ErrInvalidSchedule)

	tpl.LimitType = models.NoLimit
	tpl.Frequency.Interval = 0
	require.ErrorIs(t, ValidateSchedule(tpl), ErrInvalidFrequency)
}

func TestInitializeSchedule(t *testing.T) {
	tpl := monthlyTemplate(date(2024, time.January, 31))

	require.NoError(t, InitializeSchedule(tpl, date(2024, time.January, 1)))
	require.Equal(t, models.ActiveRecurring, tpl.Status)
	require.NotNil(t, tpl.NextInvoiceAt)
	require.Equal(t, date(2024, time.January, 31), *tpl.NextInvoiceAt)
	require.Zero(t, tpl.GeneratedCount)
}

func TestAdvanceAfterGenerationCountLimit(t *testing.T) {
	// Monthly from Jan 31 in a leap year, limited to 3 invoices: the
	// occurrences are Jan 31, Feb 29, Mar 31, then the template completes.
	tpl := monthlyTemplate(date(2024, time.January, 31))
	tpl.LimitType = models.CountLimit
	tpl.LimitCount = utils.IntPtr(3)
	require.NoError(t, InitializeSchedule(tpl, date(2024, time.January, 1)))

	require.Equal(t, date(2024, time.January, 31), *tpl.NextInvoiceAt)

	require.NoError(t, AdvanceAfterGeneration(tpl, *tpl.NextInvoiceAt))
	require.Equal(t, 1, tpl.GeneratedCount)
	require.Equal(t, date(2024, time.February, 29), *tpl.NextInvoiceAt)

	require.NoError(t, AdvanceAfterGeneration(tpl, *tpl.NextInvoiceAt))
	require.Equal(t, 2, tpl.GeneratedCount)
	require.Equal(t, date(2024, time.March, 31), *tpl.NextInvoiceAt)

	require.NoError(t, AdvanceAfterGeneration(tpl, *tpl.NextInvoiceAt))
	require.Equal(t, 3, tpl.GeneratedCount)
	require.Equal(t, models.CompletedRecurring, tpl.Status)
	require.Nil(t, tpl.NextInvoiceAt, "completed templates carry no next occurrence")

	err := AdvanceAfterGeneration(tpl, date(2024, time.April, 30))
	require.Error(t, err, "a completed template never advances again")
}

func TestAdvanceAfterGenerationDateLimit(t *testing.T) {
	tpl := monthlyTemplate(date(2024, time.January, 15))
	tpl.LimitType = models.DateLimit
	limitDate := date(2024, time.February, 20)
	tpl.LimitDate = &limitDate
	require.NoError(t, InitializeSchedule(tpl, date(2024, time.January, 1)))

	require.NoError(t, AdvanceAfterGeneration(tpl, date(2024, time.January, 15)))
	require.Equal(t, date(2024, time.February, 15), *tpl.NextInvoiceAt)

	// The next occurrence would be Mar 15, past the limit date.
	require.NoError(t, AdvanceAfterGeneration(tpl, date(2024, time.February, 15)))
	require.Equal(t, models.CompletedRecurring, tpl.Status)
	require.Nil(t, tpl.NextInvoiceAt)
}

func TestAdvanceAfterGenerationNoLimitRunsOn(t *testing.T) {
	tpl := monthlyTemplate(date(2024, time.January, 31))
	require.NoError(t, InitializeSchedule(tpl, date(2024, time.January, 1)))

	occurrence := *tpl.NextInvoiceAt
	for i := 0; i < 24; i++ {
		require.NoError(t, AdvanceAfterGeneration(tpl, occurrence))
		require.Equal(t, models.ActiveRecurring, tpl.Status)
		occurrence = *tpl.NextInvoiceAt
	}
	require.Equal(t, 24, tpl.GeneratedCount)
}

func TestHoldAndResume(t *testing.T) {
	tpl := monthlyTemplate(date(2024, time.January, 31))
	require.NoError(t, InitializeSchedule(tpl, date(2024, time.January, 1)))

	require.NoError(t, Hold(tpl))
	require.Equal(t, models.OnHoldRecurring, tpl.Status)

	// Resuming in June skips the missed Feb-May occurrences and lands on the
	// next future one, still anchored to the 31st.
	require.NoError(t, Resume(tpl, date(2024, time.June, 5)))
	require.Equal(t, models.ActiveRecurring, tpl.Status)
	require.Equal(t, date(2024, time.June, 30), *tpl.NextInvoiceAt)
}

func TestHoldAndResumeRejectCompleted(t *testing.T) {
	tpl := monthlyTemplate(date(2024, time.January, 31))
	tpl.LimitType = models.CountLimit
	tpl.LimitCount = utils.IntPtr(1)
	require.NoError(t, InitializeSchedule(tpl, date(2024, time.January, 1)))
	require.NoError(t, AdvanceAfterGeneration(tpl, *tpl.NextInvoiceAt))
	require.Equal(t, models.CompletedRecurring, tpl.Status)

	require.ErrorIs(t, Hold(tpl), ErrAlreadyCompleted)
	require.ErrorIs(t, Resume(tpl, date(2024, time.March, 1)), ErrAlreadyCompleted)
}
