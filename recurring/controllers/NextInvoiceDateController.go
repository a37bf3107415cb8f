package controllers

import (
	"errors"
	"time"

	"billing-backend/db/models"
	"billing-backend/recurring/services"
	"billing-backend/utils"

	"github.com/gofiber/fiber/v2"
)

type nextInvoiceDateRequest struct {
	Frequency models.Frequency `json:"frequency"`
	StartsAt  utils.DateOnly   `json:"starts_at"`
}

// NextInvoiceDateController previews the first occurrence a candidate
// schedule would fire at, so the UI can show it before the template is
// saved.
func (rc *RecurringInvoiceController) NextInvoiceDateController(c *fiber.Ctx) error {
	var req nextInvoiceDateRequest
	if err := c.BodyParser(&req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": "Invalid request body",
		})
	}

	next, err := services.FirstOccurrence(req.StartsAt.Time(), req.Frequency, time.Now())
	if err != nil {
		if errors.Is(err, services.ErrInvalidFrequency) {
			return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
				"error": err.Error(),
			})
		}
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"error": "Failed to compute next invoice date",
		})
	}

	return c.JSON(fiber.Map{
		"success":         true,
		"next_invoice_at": next.Format("2006-01-02"),
	})
}
