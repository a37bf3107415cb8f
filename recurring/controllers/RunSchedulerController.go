package controllers

import (
	"time"

	"billing-backend/config"

	"github.com/gofiber/fiber/v2"
)

// RunSchedulerController triggers an on-demand scheduler tick. Same
// semantics as the cron-driven tick, including the per-template claim, so
// an admin run racing the cron run cannot double-generate.
func (rc *RecurringInvoiceController) RunSchedulerController(c *fiber.Ctx) error {
	config.Logger.Info("On-demand scheduler run requested")

	rc.Scheduler.Tick(c.Context(), time.Now())

	return c.JSON(fiber.Map{
		"success": true,
	})
}
