package controllers

import (
	"strings"
	"time"

	"billing-backend/config"
	"billing-backend/db/models"
	invoice_services "billing-backend/invoices/services"
	"billing-backend/rates/repositories"
	"billing-backend/utils"

	"github.com/gofiber/fiber/v2"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"
	"golang.org/x/text/cases"
	"golang.org/x/text/language"
	"gorm.io/gorm"
)

type ExchangeRateController struct {
	RateRepo   repositories.ExchangeRateRepository
	Propagator *invoice_services.ExchangeRatePropagator
	DB         *gorm.DB
}

type createExchangeRateRequest struct {
	CompanyID    string          `json:"company_id"`
	CurrencyName string          `json:"currency_name"`
	CurrencyCode string          `json:"currency_code"`
	Rate         decimal.Decimal `json:"rate"`
	CreatedBy    string          `json:"created_by"`
}

// CreateExchangeRateController records a new rate for a currency. Any
// previous active rate for the same currency is closed in the same
// transaction, so at most one rate per currency is ever active.
func (ec *ExchangeRateController) CreateExchangeRateController(c *fiber.Ctx) error {
	var req createExchangeRateRequest
	if err := c.BodyParser(&req); err != nil {
		config.Logger.Error("Invalid request body for CreateExchangeRateController", zap.Error(err))
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
	if req.CurrencyCode == "" {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": "currency_code is required",
		})
	}
	if req.Rate.LessThanOrEqual(decimal.Zero) {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": "rate must be positive",
		})
	}

	currencyCode := strings.ToUpper(req.CurrencyCode)
	currencyName := cases.Title(language.English).String(req.CurrencyName)

	var created *models.ExchangeRate
	err := ec.DB.Transaction(func(tx *gorm.DB) error {
		existing, err := ec.RateRepo.GetActiveRate(tx, *companyID, currencyCode)
		if err != nil {
			return err
		}
		if existing != nil {
			if err := ec.RateRepo.DeactivateRate(tx, existing.ID, req.CreatedBy); err != nil {
				return err
			}
		}

		rate := &models.ExchangeRate{
			CompanyID:    *companyID,
			CurrencyName: currencyName,
			CurrencyCode: currencyCode,
			Rate:         req.Rate,
			Active:       true,
			ValidFrom:    time.Now(),
			CreatedBy:    req.CreatedBy,
		}
		created, err = ec.RateRepo.CreateRate(tx, rate)
		return err
	})
	if err != nil {
		config.Logger.Error("Failed to create exchange rate",
			zap.String("currencyCode", currencyCode),
			zap.Error(err))
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"error": "Failed to create exchange rate",
		})
	}

	return c.Status(fiber.StatusCreated).JSON(fiber.Map{
		"success":       true,
		"exchange_rate": created,
	})
}
