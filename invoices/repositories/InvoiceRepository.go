package repositories

import (
	"context"
	"fmt"
	"time"

	"billing-backend/config"
	"billing-backend/db/models"
	invoice_services "billing-backend/invoices/services"
	recurring_services "billing-backend/recurring/services"
	"billing-backend/utils"

	"github.com/google/uuid"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

type InvoiceRepository interface {
	CreateGenerated(ctx context.Context, invoice *models.Invoice, tpl *models.RecurringInvoice, occurrence time.Time) error
	GetInvoiceWithDependents(ctx context.Context, id uuid.UUID) (*models.Invoice, error)
	NextInvoiceNumber(ctx context.Context, companyID uuid.UUID) (string, error)
	SavePropagated(ctx context.Context, doc invoice_services.MonetaryDocument) error
}

type invoiceRepository struct {
	db *gorm.DB
}

func NewInvoiceRepository(db *gorm.DB) InvoiceRepository {
	return &invoiceRepository{db: db}
}

// CreateGenerated commits a generated invoice together with the advanced
// template state. The template update is a compare-and-set on the fired
// occurrence: if another worker advanced the schedule first, zero rows
// match, the transaction rolls back and no invoice is written.
func (ir *invoiceRepository) CreateGenerated(ctx context.Context, invoice *models.Invoice, tpl *models.RecurringInvoice, occurrence time.Time) error {
	return ir.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		res := tx.Model(&models.RecurringInvoice{}).
			Where("id = ? AND status = ? AND next_invoice_at = ?", tpl.ID, models.ActiveRecurring, occurrence).
			Updates(map[string]interface{}{
				"status":          tpl.Status,
				"next_invoice_at": tpl.NextInvoiceAt,
				"generated_count": tpl.GeneratedCount,
				"updated_at":      time.Now(),
			})
		if res.Error != nil {
			config.Logger.Error("Failed to advance recurring invoice schedule",
				zap.String("recurringInvoiceID", tpl.ID.String()),
				zap.Error(res.Error))
			return fmt.Errorf("failed to advance recurring invoice schedule: %w", res.Error)
		}
		if res.RowsAffected == 0 {
			return recurring_services.ErrClaimConflict
		}

		if err := tx.Create(invoice).Error; err != nil {
			config.Logger.Error("Failed to create generated invoice",
				zap.String("invoiceNumber", invoice.InvoiceNumber),
				zap.Error(err))
			return fmt.Errorf("failed to create generated invoice: %w", err)
		}
		return nil
	})
}

// GetInvoiceWithDependents loads the invoice together with its items and
// taxes in a single read, the shape the propagator needs.
func (ir *invoiceRepository) GetInvoiceWithDependents(ctx context.Context, id uuid.UUID) (*models.Invoice, error) {
	var invoice models.Invoice

	err := ir.db.WithContext(ctx).
		Preload("Items").
		Preload("Items.Taxes").
		Preload("Taxes").
		Preload("Customer").
		Where("id = ?", id).
		First(&invoice).Error
	if err != nil {
		if err == gorm.ErrRecordNotFound {
			return nil, nil
		}
		config.Logger.Error("Failed to get invoice",
			zap.String("invoiceID", id.String()),
			zap.Error(err))
		return nil, fmt.Errorf("failed to get invoice: %w", err)
	}

	return &invoice, nil
}

// NextInvoiceNumber hands out the next per-company serial. The unique index
// on invoice_number backstops a racing pair; the loser's generation fails
// and is retried on the next tick.
func (ir *invoiceRepository) NextInvoiceNumber(ctx context.Context, companyID uuid.UUID) (string, error) {
	var count int64

	if err := ir.db.WithContext(ctx).
		Model(&models.Invoice{}).
		Where("company_id = ?", companyID).
		Count(&count).Error; err != nil {
		return "", fmt.Errorf("failed to count invoices for company %s: %w", companyID, err)
	}

	return utils.FormatDocumentNumber("INV", int(count)+1), nil
}

// SavePropagated persists a propagated exchange-rate cascade: the document
// row plus every dependent item and tax line, in one transaction. No
// partial cascade ever commits.
func (ir *invoiceRepository) SavePropagated(ctx context.Context, doc invoice_services.MonetaryDocument) error {
	return ir.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := saveDocumentRow(tx, doc); err != nil {
			return err
		}

		for _, t := range doc.TaxLines() {
			if err := saveTaxLine(tx, t); err != nil {
				return err
			}
		}

		for _, item := range doc.ItemLines() {
			err := tx.Model(&models.Item{}).
				Where("id = ?", item.ID).
				Updates(map[string]interface{}{
					"exchange_rate": item.ExchangeRate,
					"base_total":    item.BaseTotal,
				}).Error
			if err != nil {
				return fmt.Errorf("failed to update item %s: %w", item.ID, err)
			}

			for idx := range item.Taxes {
				if err := saveTaxLine(tx, &item.Taxes[idx]); err != nil {
					return err
				}
			}
		}
		return nil
	})
}

func saveTaxLine(tx *gorm.DB, t *models.Tax) error {
	err := tx.Model(&models.Tax{}).
		Where("id = ?", t.ID).
		Updates(map[string]interface{}{
			"exchange_rate": t.ExchangeRate,
			"base_amount":   t.BaseAmount,
		}).Error
	if err != nil {
		return fmt.Errorf("failed to update tax %s: %w", t.ID, err)
	}
	return nil
}

func saveDocumentRow(tx *gorm.DB, doc invoice_services.MonetaryDocument) error {
	switch d := doc.(type) {
	case *models.Invoice:
		return tx.Model(&models.Invoice{}).Where("id = ?", d.ID).
			Updates(map[string]interface{}{"exchange_rate": d.ExchangeRate, "base_total": d.BaseTotal}).Error
	case *models.Estimate:
		return tx.Model(&models.Estimate{}).Where("id = ?", d.ID).
			Updates(map[string]interface{}{"exchange_rate": d.ExchangeRate, "base_total": d.BaseTotal}).Error
	case *models.RecurringInvoice:
		return tx.Model(&models.RecurringInvoice{}).Where("id = ?", d.ID).
			Updates(map[string]interface{}{"exchange_rate": d.ExchangeRate, "base_total": d.BaseTotal}).Error
	default:
		return fmt.Errorf("unsupported monetary document type %T", doc)
	}
}
