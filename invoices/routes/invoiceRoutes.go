package routes

import (
	controllers "billing-backend/invoices/controllers"
	"billing-backend/invoices/repositories"
	invoice_services "billing-backend/invoices/services"

	"github.com/gofiber/fiber/v2"
)

func InvoiceInitRoutes(
	app *fiber.App,
	invoiceRepo repositories.InvoiceRepository,
	propagator *invoice_services.ExchangeRatePropagator,
) {
	invoiceController := &controllers.InvoiceController{
		InvoiceRepo: invoiceRepo,
		Propagator:  propagator,
	}

	// Create API v1 group
	api := app.Group("/api/v1")

	api.Get("/invoices/:id", invoiceController.GetInvoiceController)
	api.Put("/invoices/:id/exchange-rate", invoiceController.UpdateInvoiceExchangeRateController)
}
