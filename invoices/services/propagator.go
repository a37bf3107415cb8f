package services

import (
	"context"
	"fmt"

	"billing-backend/config"
	"billing-backend/db/models"
	"billing-backend/utils"

	"github.com/shopspring/decimal"
	"go.uber.org/zap"
)

// MonetaryDocument is any document that owns an exchange rate and dependent
// item/tax lines: invoices, estimates and recurring invoices all qualify.
type MonetaryDocument interface {
	DocumentRate() decimal.Decimal
	TaxLines() []*models.Tax
	ItemLines() []*models.Item
}

// DocumentStore persists a propagated cascade. Implementations must write
// the document and all of its updated lines in a single transaction so a
// partial cascade is never observable.
type DocumentStore interface {
	SavePropagated(ctx context.Context, doc MonetaryDocument) error
}

// Apply cascades the document exchange rate onto every dependent tax and
// item line in memory. Afterwards every line agrees with the document on
// exchange_rate and carries a base amount rounded half-up per line.
func Apply(doc MonetaryDocument) {
	rate := doc.DocumentRate()

	for _, tax := range doc.TaxLines() {
		tax.ExchangeRate = rate
		tax.BaseAmount = utils.BaseAmount(tax.Amount, rate)
	}

	for _, item := range doc.ItemLines() {
		item.ExchangeRate = rate
		item.BaseTotal = utils.BaseAmount(item.Total, rate)

		// Item-level taxes carry the same consistency invariant.
		for idx := range item.Taxes {
			tax := &item.Taxes[idx]
			tax.ExchangeRate = rate
			tax.BaseAmount = utils.BaseAmount(tax.Amount, rate)
		}
	}
}

type ExchangeRatePropagator struct {
	store DocumentStore
}

func NewExchangeRatePropagator(store DocumentStore) *ExchangeRatePropagator {
	return &ExchangeRatePropagator{store: store}
}

// Propagate applies the document rate to every dependent line and persists
// the whole cascade. It must run whenever a document exchange rate is set
// or changed, on every mutation path. A document with no dependent lines is
// a no-op, not an error; any line failing to persist fails the whole
// propagation and the caller retries.
func (p *ExchangeRatePropagator) Propagate(ctx context.Context, doc MonetaryDocument) error {
	if len(doc.TaxLines()) == 0 && len(doc.ItemLines()) == 0 {
		return nil
	}

	Apply(doc)

	if err := p.store.SavePropagated(ctx, doc); err != nil {
		config.Logger.Error("Exchange rate propagation failed",
			zap.String("rate", doc.DocumentRate().String()),
			zap.Error(err))
		return fmt.Errorf("propagate exchange rate: %w", err)
	}
	return nil
}

// SaveRate persists the document rate without a cascade, for documents
// that carry no dependent lines.
func (p *ExchangeRatePropagator) SaveRate(ctx context.Context, doc MonetaryDocument) error {
	if err := p.store.SavePropagated(ctx, doc); err != nil {
		return fmt.Errorf("save document rate: %w", err)
	}
	return nil
}
