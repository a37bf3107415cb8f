package controllers

import (
	"billing-backend/invoices/repositories"
	invoice_services "billing-backend/invoices/services"

	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"
)

type InvoiceController struct {
	InvoiceRepo repositories.InvoiceRepository
	Propagator  *invoice_services.ExchangeRatePropagator
}

// GetInvoiceController returns an invoice with its items, taxes and
// customer.
func (ic *InvoiceController) GetInvoiceController(c *fiber.Ctx) error {
	id, err := uuid.Parse(c.Params("id"))
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": "Invalid invoice id",
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

	return c.JSON(fiber.Map{
		"success": true,
		"invoice": invoice,
	})
}
