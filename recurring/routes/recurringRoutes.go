package routes

import (
	controllers "billing-backend/recurring/controllers"
	rate_services "billing-backend/rates/services"
	"billing-backend/recurring/repositories"
	"billing-backend/recurring/services"

	"github.com/gofiber/fiber/v2"
	"gorm.io/gorm"
)

func RecurringInitRoutes(
	app *fiber.App,
	recurringRepo repositories.RecurringInvoiceRepository,
	rateService *rate_services.RateService,
	scheduler *services.Scheduler,
	db *gorm.DB,
) {
	recurringController := &controllers.RecurringInvoiceController{
		RecurringRepo: recurringRepo,
		RateService:   rateService,
		Scheduler:     scheduler,
		DB:            db,
	}

	// Create API v1 group
	api := app.Group("/api/v1")

	api.Post("/recurring-invoices", recurringController.CreateRecurringInvoiceController)
	api.Get("/recurring-invoices/:id", recurringController.GetRecurringInvoiceController)
	api.Post("/recurring-invoices/:id/hold", recurringController.HoldRecurringInvoiceController)
	api.Post("/recurring-invoices/:id/resume", recurringController.ResumeRecurringInvoiceController)
	api.Post("/recurring-invoices/frequency/next-date", recurringController.NextInvoiceDateController)
	api.Post("/recurring-invoices/run-scheduler", recurringController.RunSchedulerController)
}
