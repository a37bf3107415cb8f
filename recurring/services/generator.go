package services

import (
	"context"
	"fmt"
	"time"

	"billing-backend/config"
	"billing-backend/db/models"
	invoice_services "billing-backend/invoices/services"
	"billing-backend/utils"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"
)

// Collaborator contracts. Injected explicitly so the generator and the
// scheduler stay testable without a running database, queue or mailer.

// TemplateStore is the scheduler's view of recurring invoice persistence.
// Claim is the mutual-exclusion point: it must behave as an atomic
// compare-and-set keyed by template identifier, returning ErrClaimConflict
// when another worker already holds the template.
type TemplateStore interface {
	DueTemplates(ctx context.Context, now time.Time) ([]models.RecurringInvoice, error)
	Claim(ctx context.Context, id uuid.UUID) error
	Release(ctx context.Context, id uuid.UUID)
}

// InvoiceStore persists a generated invoice. CreateGenerated must write the
// invoice and the advanced template state in a single transaction, guarded
// by a compare-and-set on the template's next_invoice_at, so two workers
// can never both commit an invoice for the same occurrence.
type InvoiceStore interface {
	CreateGenerated(ctx context.Context, invoice *models.Invoice, tpl *models.RecurringInvoice, occurrence time.Time) error
}

// RateSource resolves the current multiplier from a document currency into
// the company base currency. Returns 1 when the currencies match.
type RateSource interface {
	ActiveRate(ctx context.Context, companyID uuid.UUID, currencyCode string) (decimal.Decimal, error)
}

// NumberSequencer hands out the next human-readable invoice number for a
// company. The generator treats the result as an opaque string.
type NumberSequencer interface {
	NextInvoiceNumber(ctx context.Context, companyID uuid.UUID) (string, error)
}

// Dispatcher triggers outward communication for a generated invoice. The
// generator only decides whether to call it.
type Dispatcher interface {
	DispatchInvoice(ctx context.Context, invoice *models.Invoice) error
}

type InvoiceGenerator struct {
	invoices   InvoiceStore
	rates      RateSource
	sequencer  NumberSequencer
	dispatcher Dispatcher
}

func NewInvoiceGenerator(invoices InvoiceStore, rates RateSource, sequencer NumberSequencer, dispatcher Dispatcher) *InvoiceGenerator {
	return &InvoiceGenerator{
		invoices:   invoices,
		rates:      rates,
		sequencer:  sequencer,
		dispatcher: dispatcher,
	}
}

// Generate materializes one invoice from the template at the given due
// occurrence and advances the schedule, committing both in one transaction.
// Items and taxes are copied by value, so later template edits never touch
// the generated invoice. The exchange rate is resolved at generation time
// and cascaded onto every copied line before the invoice is persisted.
func (g *InvoiceGenerator) Generate(ctx context.Context, tpl *models.RecurringInvoice, occurrence time.Time) (*models.Invoice, error) {
	if tpl.Status == models.CompletedRecurring {
		return nil, ErrAlreadyCompleted
	}

	rate, err := g.rates.ActiveRate(ctx, tpl.CompanyID, tpl.CurrencyCode)
	if err != nil {
		return nil, fmt.Errorf("resolve exchange rate for %s: %w", tpl.CurrencyCode, err)
	}

	number, err := g.sequencer.NextInvoiceNumber(ctx, tpl.CompanyID)
	if err != nil {
		return nil, fmt.Errorf("next invoice number for company %s: %w", tpl.CompanyID, err)
	}

	invoice := &models.Invoice{
		ID:                 uuid.New(),
		CompanyID:          tpl.CompanyID,
		CustomerID:         tpl.CustomerID,
		RecurringInvoiceID: &tpl.ID,
		InvoiceNumber:      number,
		Status:             models.DraftInvoice,
		InvoiceDate:        occurrence,
		CurrencyCode:       tpl.CurrencyCode,
		ExchangeRate:       rate,
		SubTotal:           tpl.SubTotal,
		TaxTotal:           tpl.TaxTotal,
		Total:              tpl.Total,
		BaseTotal:          utils.BaseAmount(tpl.Total, rate),
		SendAutomatically:  tpl.SendAutomatically,
		CustomFields:       tpl.CustomFields,
		Items:              copyItems(tpl.Items, tpl.CompanyID),
		Taxes:              copyTaxes(tpl.Taxes, tpl.CompanyID),
		CreatedBy:          "scheduler",
	}

	// A generated invoice must never be observable with line rates that
	// disagree with its own.
	invoice_services.Apply(invoice)

	if err := AdvanceAfterGeneration(tpl, occurrence); err != nil {
		return nil, err
	}

	if err := g.invoices.CreateGenerated(ctx, invoice, tpl, occurrence); err != nil {
		return nil, fmt.Errorf("persist generated invoice %s: %w", number, err)
	}

	if tpl.SendAutomatically {
		// The invoice is already committed; a dispatch failure must not
		// make the scheduler regenerate it. Log and carry on.
		if err := g.dispatcher.DispatchInvoice(ctx, invoice); err != nil {
			config.Logger.Error("Failed to dispatch generated invoice",
				zap.String("invoiceNumber", invoice.InvoiceNumber),
				zap.Error(err))
		}
	}

	return invoice, nil
}

func copyItems(items []models.Item, companyID uuid.UUID) []models.Item {
	copies := make([]models.Item, 0, len(items))
	for _, item := range items {
		copied := models.Item{
			ID:           uuid.New(),
			CompanyID:    companyID,
			Name:         item.Name,
			Description:  item.Description,
			Price:        item.Price,
			Quantity:     item.Quantity,
			DiscountType: item.DiscountType,
			Discount:     item.Discount,
			Total:        item.Total,
		}
		copied.Taxes = copyTaxes(item.Taxes, companyID)
		copies = append(copies, copied)
	}
	return copies
}

func copyTaxes(taxes []models.Tax, companyID uuid.UUID) []models.Tax {
	copies := make([]models.Tax, 0, len(taxes))
	for _, tax := range taxes {
		copies = append(copies, models.Tax{
			ID:        uuid.New(),
			CompanyID: companyID,
			Name:      tax.Name,
			Percent:   tax.Percent,
			Compound:  tax.Compound,
			Amount:    tax.Amount,
		})
	}
	return copies
}
