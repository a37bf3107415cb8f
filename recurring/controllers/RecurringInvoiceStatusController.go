package controllers

import (
	"errors"
	"time"

	"billing-backend/config"
	"billing-backend/db/models"
	"billing-backend/recurring/services"

	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"
	"go.uber.org/zap"
)

// HoldRecurringInvoiceController pauses an ACTIVE template. The scheduler
// skips it until it is resumed.
func (rc *RecurringInvoiceController) HoldRecurringInvoiceController(c *fiber.Ctx) error {
	tpl, errResp := rc.loadTemplate(c)
	if tpl == nil {
		return errResp
	}

	if err := services.Hold(tpl); err != nil {
		if errors.Is(err, services.ErrAlreadyCompleted) {
			return c.Status(fiber.StatusConflict).JSON(fiber.Map{
				"error": "Recurring invoice is already completed",
			})
		}
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"error": "Failed to hold recurring invoice",
		})
	}

	if err := rc.RecurringRepo.UpdateSchedule(c.Context(), tpl); err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"error": "Failed to update recurring invoice",
		})
	}

	return c.JSON(fiber.Map{
		"success":           true,
		"recurring_invoice": tpl,
	})
}

// ResumeRecurringInvoiceController reactivates an ON_HOLD template. Missed
// occurrences are not generated retroactively; the schedule picks up at the
// next future occurrence.
func (rc *RecurringInvoiceController) ResumeRecurringInvoiceController(c *fiber.Ctx) error {
	tpl, errResp := rc.loadTemplate(c)
	if tpl == nil {
		return errResp
	}

	if err := services.Resume(tpl, time.Now()); err != nil {
		if errors.Is(err, services.ErrAlreadyCompleted) {
			return c.Status(fiber.StatusConflict).JSON(fiber.Map{
				"error": "Recurring invoice is already completed",
			})
		}
		config.Logger.Error("Failed to resume recurring invoice",
			zap.String("recurringInvoiceID", tpl.ID.String()),
			zap.Error(err))
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"error": "Failed to resume recurring invoice",
		})
	}

	if err := rc.RecurringRepo.UpdateSchedule(c.Context(), tpl); err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"error": "Failed to update recurring invoice",
		})
	}

	return c.JSON(fiber.Map{
		"success":           true,
		"recurring_invoice": tpl,
	})
}

// GetRecurringInvoiceController returns a template with its items, taxes
// and customer.
func (rc *RecurringInvoiceController) GetRecurringInvoiceController(c *fiber.Ctx) error {
	tpl, errResp := rc.loadTemplate(c)
	if tpl == nil {
		return errResp
	}

	return c.JSON(fiber.Map{
		"success":           true,
		"recurring_invoice": tpl,
	})
}

// loadTemplate parses the id param and loads the template. On failure the
// fiber response has already been written; the caller just returns it.
func (rc *RecurringInvoiceController) loadTemplate(c *fiber.Ctx) (tpl *models.RecurringInvoice, errResp error) {
	id, err := uuid.Parse(c.Params("id"))
	if err != nil {
		return nil, c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": "Invalid recurring invoice id",
		})
	}

	tpl, err = rc.RecurringRepo.GetRecurringInvoice(c.Context(), id)
	if err != nil {
		return nil, c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"error": "Failed to load recurring invoice",
		})
	}
	if tpl == nil {
		return nil, c.Status(fiber.StatusNotFound).JSON(fiber.Map{
			"error": "Recurring invoice not found",
		})
	}
	return tpl, nil
}
