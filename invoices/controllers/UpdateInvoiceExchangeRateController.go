package controllers

import (
	"billing-backend/config"
	"billing-backend/utils"

	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"
)

type updateExchangeRateRequest struct {
	ExchangeRate decimal.Decimal `json:"exchange_rate"`
}

// UpdateInvoiceExchangeRateController sets a new exchange rate on an
// invoice and cascades it onto every dependent item and tax line. The
// cascade commits as a unit; a failed propagation leaves the invoice and
// all of its lines on the previous rate.
func (ic *InvoiceController) UpdateInvoiceExchangeRateController(c *fiber.Ctx) error {
	id, err := uuid.Parse(c.Params("id"))
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": "Invalid invoice id",
		})
	}

	var req updateExchangeRateRequest
	if err := c.BodyParser(&req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": "Invalid request body",
		})
	}
	if req.ExchangeRate.LessThanOrEqual(decimal.Zero) {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": "exchange_rate must be positive",
		})
	}

	invoice, err := ic.InvoiceRepo.GetInvoiceWithDependents(c.Context(), id)
	if err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"error": "Failed to load invoice",
		})
	}
	if invoice == nil {
		return c.Status(fiber.StatusNotFound).JSON(fiber.Map{
			"error": "Invoice not found",
		})
	}

	invoice.ExchangeRate = req.ExchangeRate
	invoice.BaseTotal = utils.BaseAmount(invoice.Total, req.ExchangeRate)

	// No dependent lines means nothing to cascade; just the invoice row
	// changes.
	if len(invoice.Items) == 0 && len(invoice.Taxes) == 0 {
		if err := ic.Propagator.SaveRate(c.Context(), invoice); err != nil {
			return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
				"error": "Failed to update invoice",
			})
		}
		return c.JSON(fiber.Map{
			"success": true,
			"invoice": invoice,
		})
	}

	if err := ic.Propagator.Propagate(c.Context(), invoice); err != nil {
		config.Logger.Error("Failed to propagate invoice exchange rate",
			zap.String("invoiceID", id.String()),
			zap.Error(err))
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"error": "Failed to propagate exchange rate",
		})
	}

	return c.JSON(fiber.Map{
		"success": true,
		"invoice": invoice,
	})
}
