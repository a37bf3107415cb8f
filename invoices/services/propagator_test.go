package services

import (
	"context"
	"errors"
	"os"
	"testing"

	"billing-backend/config"
	"billing-backend/db/models"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func TestMain(m *testing.M) {
	config.Logger = zap.NewNop()
	os.Exit(m.Run())
}

type fakeDocumentStore struct {
	saved []MonetaryDocument
	err   error
}

func (f *fakeDocumentStore) SavePropagated(ctx context.Context, doc MonetaryDocument) error {
	if f.err != nil {
		return f.err
	}
	f.saved = append(f.saved, doc)
	return nil
}

func invoiceWithLines(rate decimal.Decimal) *models.Invoice {
	return &models.Invoice{
		ID:           uuid.New(),
		ExchangeRate: rate,
		Taxes: []models.Tax{{
			ID:     uuid.New(),
			Name:   "VAT",
			Amount: 25,
		}},
		Items: []models.Item{{
			ID:    uuid.New(),
			Name:  "Hosting",
			Total: 30,
			Taxes: []models.Tax{{
				ID:     uuid.New(),
				Name:   "Levy",
				Amount: 10,
			}},
		}},
	}
}

func TestApplyCascadesRateToEveryLine(t *testing.T) {
	rate := decimal.NewFromFloat(1.8)
	invoice := invoiceWithLines(rate)

	Apply(invoice)

	require.True(t, invoice.Taxes[0].ExchangeRate.Equal(rate))
	require.Equal(t, int64(45), invoice.Taxes[0].BaseAmount)

	require.True(t, invoice.Items[0].ExchangeRate.Equal(rate))
	require.Equal(t, int64(54), invoice.Items[0].BaseTotal)

	require.True(t, invoice.Items[0].Taxes[0].ExchangeRate.Equal(rate))
	require.Equal(t, int64(18), invoice.Items[0].Taxes[0].BaseAmount)
}

func TestApplyRoundsHalfUpPerLine(t *testing.T) {
	// 25 * 1.5 = 37.5 rounds to 38 on the line itself, not on a summed total.
	invoice := invoiceWithLines(decimal.NewFromFloat(1.5))

	Apply(invoice)

	require.Equal(t, int64(38), invoice.Taxes[0].BaseAmount)
	require.Equal(t, int64(45), invoice.Items[0].BaseTotal)
	require.Equal(t, int64(15), invoice.Items[0].Taxes[0].BaseAmount)
}

func TestPropagatePersistsTheCascade(t *testing.T) {
	rate := decimal.NewFromFloat(1.8)
	invoice := invoiceWithLines(rate)
	store := &fakeDocumentStore{}

	err := NewExchangeRatePropagator(store).Propagate(context.Background(), invoice)
	require.NoError(t, err)
	require.Len(t, store.saved, 1)
	require.Equal(t, int64(45), invoice.Taxes[0].BaseAmount)
}

func TestPropagateNoDependentsWritesNothing(t *testing.T) {
	invoice := &models.Invoice{ID: uuid.New(), ExchangeRate: decimal.NewFromInt(2)}
	store := &fakeDocumentStore{err: errors.New("must not be called")}

	err := NewExchangeRatePropagator(store).Propagate(context.Background(), invoice)
	require.NoError(t, err, "a document with no dependent lines is a no-op, not an error")
	require.Empty(t, store.saved)
}

func TestPropagateStoreFailureSurfaces(t *testing.T) {
	invoice := invoiceWithLines(decimal.NewFromInt(2))
	store := &fakeDocumentStore{err: errors.New("connection reset")}

	err := NewExchangeRatePropagator(store).Propagate(context.Background(), invoice)
	require.Error(t, err)
	require.Contains(t, err.Error(), "propagate exchange rate")
}

func TestPropagateWorksForEstimatesAndTemplates(t *testing.T) {
	rate := decimal.NewFromFloat(0.75)

	estimate := &models.Estimate{
		ID:           uuid.New(),
		ExchangeRate: rate,
		Taxes:        []models.Tax{{ID: uuid.New(), Amount: 100}},
	}
	template := &models.RecurringInvoice{
		ID:           uuid.New(),
		ExchangeRate: rate,
		Items:        []models.Item{{ID: uuid.New(), Total: 200}},
	}

	store := &fakeDocumentStore{}
	propagator := NewExchangeRatePropagator(store)

	require.NoError(t, propagator.Propagate(context.Background(), estimate))
	require.NoError(t, propagator.Propagate(context.Background(), template))

	require.Equal(t, int64(75), estimate.Taxes[0].BaseAmount)
	require.Equal(t, int64(150), template.Items[0].BaseTotal)
	require.Len(t, store.saved, 2)
}
