package controllers

import (
	"context"
	"strings"
	"time"

	"billing-backend/config"
	"billing-backend/db/models"
	invoice_services "billing-backend/invoices/services"
	"billing-backend/utils"

	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

type bulkUpdateExchangeRateRequest struct {
	CompanyID    string          `json:"company_id"`
	CurrencyCode string          `json:"currency_code"`
	Rate         decimal.Decimal `json:"rate"`
	UpdatedBy    string          `json:"updated_by"`
}

// BulkUpdateExchangeRateController records a new rate for a currency and
// pushes it onto every invoice, estimate and recurring invoice in that
// currency, cascading down to their item and tax lines. Each document
// propagates independently; one failed document does not roll back the
// others, and the failure count is reported so the caller can retry.
func (ec *ExchangeRateController) BulkUpdateExchangeRateController(c *fiber.Ctx) error {
	var req bulkUpdateExchangeRateRequest
	if err := c.BodyParser(&req); err != nil {
		config.Logger.Error("Invalid request body for BulkUpdateExchangeRateController", zap.Error(err))
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": "Invalid request body",
		})
	}

	companyID := utils.StringToUUIDPtr(req.CompanyID)
	if companyID == nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": "company_id must be a valid UUID",
		})
	}
	if req.Rate.LessThanOrEqual(decimal.Zero) {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": "rate must be positive",
		})
	}

	currencyCode := strings.ToUpper(req.CurrencyCode)

	err := ec.DB.Transaction(func(tx *gorm.DB) error {
		existing, err := ec.RateRepo.GetActiveRate(tx, *companyID, currencyCode)
		if err != nil {
			return err
		}
		if existing != nil {
			if err := ec.RateRepo.DeactivateRate(tx, existing.ID, req.UpdatedBy); err != nil {
				return err
			}
		}

		_, err = ec.RateRepo.CreateRate(tx, &models.ExchangeRate{
			CompanyID:    *companyID,
			CurrencyCode: currencyCode,
			Rate:         req.Rate,
			Active:       true,
			ValidFrom:    time.Now(),
			CreatedBy:    req.UpdatedBy,
		})
		return err
	})
	if err != nil {
		config.Logger.Error("Failed to record exchange rate for bulk update",
			zap.String("currencyCode", currencyCode),
			zap.Error(err))
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"error": "Failed to record exchange rate",
		})
	}

	updated, failed := ec.propagateCurrency(c.Context(), *companyID, currencyCode, req.Rate)

	status := fiber.StatusOK
	if failed > 0 {
		status = fiber.StatusMultiStatus
	}
	return c.Status(status).JSON(fiber.Map{
		"success": failed == 0,
		"updated": updated,
		"failed":  failed,
	})
}

// propagateCurrency pushes the new rate onto every document in the
// currency. Returns the number of documents updated and the number that
// failed to propagate.
func (ec *ExchangeRateController) propagateCurrency(ctx context.Context, companyID uuid.UUID, currencyCode string, rate decimal.Decimal) (updated, failed int) {
	var docs []invoice_services.MonetaryDocument

	invoices, err := ec.RateRepo.InvoicesByCurrency(ctx, companyID, currencyCode)
	if err != nil {
		config.Logger.Error("Failed to list invoices for bulk rate update", zap.Error(err))
	}
	for i := range invoices {
		invoices[i].ExchangeRate = rate
		invoices[i].BaseTotal = utils.BaseAmount(invoices[i].Total, rate)
		docs = append(docs, &invoices[i])
	}

	estimates, err := ec.RateRepo.EstimatesByCurrency(ctx, companyID, currencyCode)
	if err != nil {
		config.Logger.Error("Failed to list estimates for bulk rate update", zap.Error(err))
	}
	for i := range estimates {
		estimates[i].ExchangeRate = rate
		estimates[i].BaseTotal = utils.BaseAmount(estimates[i].Total, rate)
		docs = append(docs, &estimates[i])
	}

	templates, err := ec.RateRepo.RecurringInvoicesByCurrency(ctx, companyID, currencyCode)
	if err != nil {
		config.Logger.Error("Failed to list recurring invoices for bulk rate update", zap.Error(err))
	}
	for i := range templates {
		templates[i].ExchangeRate = rate
		templates[i].BaseTotal = utils.BaseAmount(templates[i].Total, rate)
		docs = append(docs, &templates[i])
	}

	for _, doc := range docs {
		var err error
		if len(doc.TaxLines()) == 0 && len(doc.ItemLines()) == 0 {
			err = ec.Propagator.SaveRate(ctx, doc)
		} else {
			err = ec.Propagator.Propagate(ctx, doc)
		}
		if err != nil {
			failed++
			continue
		}
		updated++
	}
	return updated, failed
}
