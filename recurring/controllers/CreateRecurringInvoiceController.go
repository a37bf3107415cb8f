package controllers

import (
	"errors"
	"time"

	"billing-backend/config"
	"billing-backend/db/models"
	invoice_services "billing-backend/invoices/services"
	rate_services "billing-backend/rates/services"
	"billing-backend/recurring/repositories"
	"billing-backend/recurring/services"
	"billing-backend/utils"

	"github.com/gofiber/fiber/v2"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"
	"gorm.io/datatypes"
	"gorm.io/gorm"
)

type RecurringInvoiceController struct {
	RecurringRepo repositories.RecurringInvoiceRepository
	RateService   *rate_services.RateService
	Scheduler     *services.Scheduler
	DB            *gorm.DB
}

type createRecurringInvoiceRequest struct {
	CompanyID         string           `json:"company_id"`
	CustomerID        string           `json:"customer_id"`
	CurrencyCode      string           `json:"currency_code"`
	Frequency         models.Frequency `json:"frequency"`
	StartsAt          utils.DateOnly   `json:"starts_at"`
	LimitType         models.LimitType `json:"limit_type"`
	LimitCount        *int             `json:"limit_count"`
	LimitDate         *utils.DateOnly  `json:"limit_date"`
	SendAutomatically bool             `json:"send_automatically"`
	ExchangeRate      decimal.Decimal  `json:"exchange_rate"`
	Items             []models.Item    `json:"items"`
	Taxes             []models.Tax     `json:"taxes"`
	CustomFields      datatypes.JSON   `json:"custom_fields"`
	CreatedBy         string           `json:"created_by"`
}

// CreateRecurringInvoiceController creates a recurring invoice template.
// Malformed frequency or limit configuration is rejected here, before the
// scheduler can ever see the template.
func (rc *RecurringInvoiceController) CreateRecurringInvoiceController(c *fiber.Ctx) error {
	var req createRecurringInvoiceRequest
	if err := c.BodyParser(&req); err != nil {
		config.Logger.Error("Invalid request body for CreateRecurringInvoiceController", zap.Error(err))
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": "Invalid request body",
		})
	}

	companyID := utils.StringToUUIDPtr(req.CompanyID)
	customerID := utils.StringToUUIDPtr(req.CustomerID)
	if companyID == nil || customerID == nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": "company_id and customer_id must be valid UUIDs",
		})
	}

	limitType := req.LimitType
	if limitType == "" {
		limitType = models.NoLimit
	}

	tpl := models.RecurringInvoice{
		CompanyID:         *companyID,
		CustomerID:        *customerID,
		CurrencyCode:      req.CurrencyCode,
		Frequency:         req.Frequency,
		StartsAt:          req.StartsAt.Time(),
		LimitType:         limitType,
		LimitCount:        req.LimitCount,
		SendAutomatically: req.SendAutomatically,
		ExchangeRate:      req.ExchangeRate,
		Items:             req.Items,
		Taxes:             req.Taxes,
		CustomFields:      req.CustomFields,
		CreatedBy:         req.CreatedBy,
	}
	if req.LimitDate != nil {
		limitDate := req.LimitDate.Time()
		tpl.LimitDate = &limitDate
	}

	if err := services.InitializeSchedule(&tpl, time.Now()); err != nil {
		if errors.Is(err, services.ErrInvalidFrequency) || errors.Is(err, services.ErrInvalidSchedule) {
			return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
				"error": err.Error(),
			})
		}
		config.Logger.Error("Failed to initialize recurring invoice schedule", zap.Error(err))
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"error": "Failed to initialize schedule",
		})
	}

	// Resolve the exchange rate when the caller didn't supply one.
	if tpl.ExchangeRate.IsZero() {
		resolved, err := rc.RateService.ActiveRate(c.Context(), tpl.CompanyID, tpl.CurrencyCode)
		if err != nil {
			config.Logger.Error("Failed to resolve exchange rate for recurring invoice",
				zap.String("currencyCode", tpl.CurrencyCode),
				zap.Error(err))
			return c.Status(fiber.StatusUnprocessableEntity).JSON(fiber.Map{
				"error": "No exchange rate available for currency " + tpl.CurrencyCode,
			})
		}
		tpl.ExchangeRate = resolved
	}

	computeTotals(&tpl)

	// Every line must agree with the template on exchange rate from the
	// moment the template exists.
	invoice_services.Apply(&tpl)
	tpl.BaseTotal = utils.BaseAmount(tpl.Total, tpl.ExchangeRate)

	if err := rc.RecurringRepo.CreateRecurringInvoice(c.Context(), &tpl); err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"error": "Failed to create recurring invoice",
		})
	}

	return c.Status(fiber.StatusCreated).JSON(fiber.Map{
		"success":           true,
		"recurring_invoice": tpl,
	})
}

func computeTotals(tpl *models.RecurringInvoice) {
	var subTotal, taxTotal int64

	for i := range tpl.Items {
		item := &tpl.Items[i]
		if item.Total == 0 {
			item.Total = item.Price*item.Quantity - item.Discount
		}
		subTotal += item.Total
		for j := range item.Taxes {
			taxTotal += item.Taxes[j].Amount
		}
	}
	for i := range tpl.Taxes {
		taxTotal += tpl.Taxes[i].Amount
	}

	tpl.SubTotal = subTotal
	tpl.TaxTotal = taxTotal
	tpl.Total = subTotal + taxTotal
}
