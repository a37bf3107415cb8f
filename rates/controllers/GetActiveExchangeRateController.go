package controllers

import (
	"strings"

	"billing-backend/utils"

	"github.com/gofiber/fiber/v2"
)

// GetActiveExchangeRateController returns the currently active rate for a
// currency, or 404 when none is configured.
func (ec *ExchangeRateController) GetActiveExchangeRateController(c *fiber.Ctx) error {
	companyID := utils.StringToUUIDPtr(c.Query("company_id"))
	if companyID == nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": "company_id must be a valid UUID",
		})
	}

	currencyCode := strings.ToUpper(c.Params("currency_code"))
	if currencyCode == "" {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": "currency_code is required",
		})
	}

	rate, err := ec.RateRepo.ActiveRateRecord(c.Context(), *companyID, currencyCode)
	if err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"error": "Failed to get exchange rate",
		})
	}
	if rate == nil {
		return c.Status(fiber.StatusNotFound).JSON(fiber.Map{
			"error": "No active exchange rate for " + currencyCode,
		})
	}

	return c.JSON(fiber.Map{
		"success":       true,
		"exchange_rate": rate,
	})
}
