package routes

import (
	invoice_services "billing-backend/invoices/services"
	controllers "billing-backend/rates/controllers"
	"billing-backend/rates/repositories"

	"github.com/gofiber/fiber/v2"
	"gorm.io/gorm"
)

func RateInitRoutes(
	app *fiber.App,
	rateRepo repositories.ExchangeRateRepository,
	propagator *invoice_services.ExchangeRatePropagator,
	db *gorm.DB,
) {
	rateController := &controllers.ExchangeRateController{
		RateRepo:   rateRepo,
		Propagator: propagator,
		DB:         db,
	}

	// Create API v1 group
	api := app.Group("/api/v1")

	api.Post("/exchange-rates", rateController.CreateExchangeRateController)
	api.Get("/exchange-rates/:currency_code/active", rateController.GetActiveExchangeRateController)
	api.Post("/exchange-rates/bulk-update", rateController.BulkUpdateExchangeRateController)
}
