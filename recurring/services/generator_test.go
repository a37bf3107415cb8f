package services

import (
	"context"
	"errors"
	"os"
	"testing"
	"time"

	"billing-backend/config"
	"billing-backend/db/models"
	"billing-backend/utils"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func TestMain(m *testing.M) {
	config.Logger = zap.NewNop()
	os.Exit(m.Run())
}

// In-memory collaborators. The real implementations live in the
// repositories and notifications packages.

type fakeInvoiceStore struct {
	created []*models.Invoice
	err     error

	// onCreate simulates the transaction committing the advanced template
	// state alongside the invoice.
	onCreate func(tpl *models.RecurringInvoice)
}

func (f *fakeInvoiceStore) CreateGenerated(ctx context.Context, invoice *models.Invoice, tpl *models.RecurringInvoice, occurrence time.Time) error {
	if f.err != nil {
		return f.err
	}
	f.created = append(f.created, invoice)
	if f.onCreate != nil {
		f.onCreate(tpl)
	}
	return nil
}

type fakeRateSource struct {
	rate decimal.Decimal
	err  error
}

func (f *fakeRateSource) ActiveRate(ctx context.Context, companyID uuid.UUID, currencyCode string) (decimal.Decimal, error) {
	return f.rate, f.err
}

type fakeSequencer struct {
	n int
}

func (f *fakeSequencer) NextInvoiceNumber(ctx context.Context, companyID uuid.UUID) (string, error) {
	f.n++
	return utils.FormatDocumentNumber("INV", f.n), nil
}

type fakeDispatcher struct {
	sent []string
	err  error
}

func (f *fakeDispatcher) DispatchInvoice(ctx context.Context, invoice *models.Invoice) error {
	if f.err != nil {
		return f.err
	}
	f.sent = append(f.sent, invoice.InvoiceNumber)
	return nil
}

func generatorTemplate() *models.RecurringInvoice {
	tpl := monthlyTemplate(date(2024, time.January, 31))
	tpl.CurrencyCode = "EUR"
	tpl.SubTotal = 2000
	tpl.TaxTotal = 500
	tpl.Total = 2500
	tpl.Items = []models.Item{{
		ID:       uuid.New(),
		Name:     "Hosting",
		Price:    1000,
		Quantity: 2,
		Total:    2000,
		Taxes: []models.Tax{{
			ID:     uuid.New(),
			Name:   "VAT",
			Amount: 300,
		}},
	}}
	tpl.Taxes = []models.Tax{{
		ID:     uuid.New(),
		Name:   "Levy",
		Amount: 200,
	}}
	return tpl
}

func newTestGenerator(store *fakeInvoiceStore, rates *fakeRateSource, dispatcher *fakeDispatcher) *InvoiceGenerator {
	return NewInvoiceGenerator(store, rates, &fakeSequencer{}, dispatcher)
}

func TestGenerateBuildsConsistentInvoice(t *testing.T) {
	tpl := generatorTemplate()
	require.NoError(t, InitializeSchedule(tpl, date(2024, time.January, 1)))

	store := &fakeInvoiceStore{}
	rates := &fakeRateSource{rate: decimal.NewFromFloat(1.5)}
	gen := newTestGenerator(store, rates, &fakeDispatcher{})

	invoice, err := gen.Generate(context.Background(), tpl, date(2024, time.January, 31))
	require.NoError(t, err)
	require.Len(t, store.created, 1)

	require.Equal(t, "INV-000001", invoice.InvoiceNumber)
	require.Equal(t, models.DraftInvoice, invoice.Status)
	require.Equal(t, date(2024, time.January, 31), invoice.InvoiceDate)
	require.Equal(t, &tpl.ID, invoice.RecurringInvoiceID)
	require.Equal(t, int64(2500), invoice.Total)
	require.Equal(t, int64(3750), invoice.BaseTotal)

	// Lines are copies, never the template's own rows.
	require.NotEqual(t, tpl.Items[0].ID, invoice.Items[0].ID)
	require.NotEqual(t, tpl.Taxes[0].ID, invoice.Taxes[0].ID)

	// Every line carries the resolved rate and a half-up base amount.
	require.True(t, invoice.Items[0].ExchangeRate.Equal(rates.rate))
	require.Equal(t, int64(3000), invoice.Items[0].BaseTotal)
	require.Equal(t, int64(450), invoice.Items[0].Taxes[0].BaseAmount)
	require.Equal(t, int64(300), invoice.Taxes[0].BaseAmount)

	// Schedule advanced off the fired occurrence.
	require.Equal(t, 1, tpl.GeneratedCount)
	require.Equal(t, date(2024, time.February, 29), *tpl.NextInvoiceAt)
}

func TestGenerateTemplateEditsDoNotTouchGeneratedInvoice(t *testing.T) {
	tpl := generatorTemplate()
	require.NoError(t, InitializeSchedule(tpl, date(2024, time.January, 1)))

	store := &fakeInvoiceStore{}
	gen := newTestGenerator(store, &fakeRateSource{rate: decimal.NewFromInt(1)}, &fakeDispatcher{})

	invoice, err := gen.Generate(context.Background(), tpl, date(2024, time.January, 31))
	require.NoError(t, err)

	tpl.Items[0].Price = 9999
	tpl.Items[0].Name = "Renamed"
	require.Equal(t, int64(1000), invoice.Items[0].Price)
	require.Equal(t, "Hosting", invoice.Items[0].Name)
}

func TestGenerateRejectsCompletedTemplate(t *testing.T) {
	tpl := generatorTemplate()
	tpl.Status = models.CompletedRecurring

	store := &fakeInvoiceStore{}
	gen := newTestGenerator(store, &fakeRateSource{rate: decimal.NewFromInt(1)}, &fakeDispatcher{})

	_, err := gen.Generate(context.Background(), tpl, date(2024, time.January, 31))
	require.ErrorIs(t, err, ErrAlreadyCompleted)
	require.Empty(t, store.created)
}

func TestGenerateRateResolutionFailureCreatesNothing(t *testing.T) {
	tpl := generatorTemplate()
	require.NoError(t, InitializeSchedule(tpl, date(2024, time.January, 1)))

	store := &fakeInvoiceStore{}
	gen := newTestGenerator(store, &fakeRateSource{err: errors.New("provider down")}, &fakeDispatcher{})

	_, err := gen.Generate(context.Background(), tpl, date(2024, time.January, 31))
	require.Error(t, err)
	require.Empty(t, store.created)
}

func TestGeneratePersistConflictSurfacesClaimConflict(t *testing.T) {
	// Another worker advanced the schedule first: the compare-and-set inside
	// the store reports a conflict and nothing is dispatched.
	tpl := generatorTemplate()
	require.NoError(t, InitializeSchedule(tpl, date(2024, time.January, 1)))

	store := &fakeInvoiceStore{err: ErrClaimConflict}
	dispatcher := &fakeDispatcher{}
	tpl.SendAutomatically = true
	gen := newTestGenerator(store, &fakeRateSource{rate: decimal.NewFromInt(1)}, dispatcher)

	_, err := gen.Generate(context.Background(), tpl, date(2024, time.January, 31))
	require.ErrorIs(t, err, ErrClaimConflict)
	require.Empty(t, store.created)
	require.Empty(t, dispatcher.sent)
}

func TestGenerateDispatchesWhenSendAutomatically(t *testing.T) {
	tpl := generatorTemplate()
	tpl.SendAutomatically = true
	require.NoError(t, InitializeSchedule(tpl, date(2024, time.January, 1)))

	dispatcher := &fakeDispatcher{}
	gen := newTestGenerator(&fakeInvoiceStore{}, &fakeRateSource{rate: decimal.NewFromInt(1)}, dispatcher)

	invoice, err := gen.Generate(context.Background(), tpl, date(2024, time.January, 31))
	require.NoError(t, err)
	require.Equal(t, []string{invoice.InvoiceNumber}, dispatcher.sent)
}

func TestGenerateDispatchFailureDoesNotFailGeneration(t *testing.T) {
	tpl := generatorTemplate()
	tpl.SendAutomatically = true
	require.NoError(t, InitializeSchedule(tpl, date(2024, time.January, 1)))

	store := &fakeInvoiceStore{}
	gen := newTestGenerator(store, &fakeRateSource{rate: decimal.NewFromInt(1)}, &fakeDispatcher{err: errors.New("queue down")})

	_, err := gen.Generate(context.Background(), tpl, date(2024, time.January, 31))
	require.NoError(t, err, "the invoice is committed, a dispatch failure must not trigger regeneration")
	require.Len(t, store.created, 1)
}

func TestGenerateSkipsDispatchWhenManual(t *testing.T) {
	tpl := generatorTemplate()
	tpl.SendAutomatically = false
	require.NoError(t, InitializeSchedule(tpl, date(2024, time.January, 1)))

	dispatcher := &fakeDispatcher{}
	gen := newTestGenerator(&fakeInvoiceStore{}, &fakeRateSource{rate: decimal.NewFromInt(1)}, dispatcher)

	_, err := gen.Generate(context.Background(), tpl, date(2024, time.January, 31))
	require.NoError(t, err)
	require.Empty(t, dispatcher.sent)
}
