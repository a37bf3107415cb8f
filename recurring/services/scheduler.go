package services

import (
	"context"
	"errors"
	"time"

	"billing-backend/config"
	"billing-backend/db/models"

	"github.com/robfig/cron/v3"
	"go.uber.org/zap"
)

// Scheduler enumerates due recurring invoices and generates one invoice per
// due occurrence. It may run as a single periodic process or as several
// concurrent workers: per-template exclusion comes from TemplateStore.Claim
// plus the compare-and-set inside InvoiceStore.CreateGenerated, so a tick is
// always safe to repeat.
type Scheduler struct {
	templates TemplateStore
	generator *InvoiceGenerator
}

func NewScheduler(templates TemplateStore, generator *InvoiceGenerator) *Scheduler {
	return &Scheduler{templates: templates, generator: generator}
}

// Tick processes every ACTIVE template whose next_invoice_at is due. Every
// failure is local to its template: the driver logs it and moves on, and
// the untouched schedule state means the same occurrence is retried on the
// next tick.
func (s *Scheduler) Tick(ctx context.Context, now time.Time) {
	due, err := s.templates.DueTemplates(ctx, now)
	if err != nil {
		config.Logger.Error("Failed to list due recurring invoices", zap.Error(err))
		return
	}

	for i := range due {
		s.processTemplate(ctx, &due[i], now)
	}
}

func (s *Scheduler) processTemplate(ctx context.Context, tpl *models.RecurringInvoice, now time.Time) {
	if err := s.templates.Claim(ctx, tpl.ID); err != nil {
		if errors.Is(err, ErrClaimConflict) {
			// Another worker is handling this template. Normal outcome.
			config.Logger.Debug("Recurring invoice already claimed",
				zap.String("recurringInvoiceID", tpl.ID.String()))
			return
		}
		config.Logger.Error("Failed to claim due recurring invoice",
			zap.String("recurringInvoiceID", tpl.ID.String()),
			zap.Error(err))
		return
	}
	defer s.templates.Release(ctx, tpl.ID)

	// Catch-up loop: after downtime each missed occurrence fires exactly
	// once, oldest first, never a single jump to now.
	for tpl.Status == models.ActiveRecurring && tpl.NextInvoiceAt != nil && !tpl.NextInvoiceAt.After(now) {
		occurrence := *tpl.NextInvoiceAt

		invoice, err := s.generator.Generate(ctx, tpl, occurrence)
		if err != nil {
			config.Logger.Error("Invoice generation failed, occurrence will be retried next tick",
				zap.String("recurringInvoiceID", tpl.ID.String()),
				zap.Time("occurrence", occurrence),
				zap.Error(err))
			return
		}

		config.Logger.Info("Generated recurring invoice",
			zap.String("recurringInvoiceID", tpl.ID.String()),
			zap.String("invoiceNumber", invoice.InvoiceNumber),
			zap.Time("occurrence", occurrence),
			zap.String("status", string(tpl.Status)))
	}
}

// StartScheduler runs Tick on the given cron schedule (SCHEDULER_CRON,
// default once per minute). Blocks, so run it in a goroutine from main. The
// admin "run now" endpoint calls the same Tick with identical semantics.
func (s *Scheduler) StartScheduler(ctx context.Context, cronSpec string) {
	if cronSpec == "" {
		cronSpec = "* * * * *"
	}

	c := cron.New()
	_, err := c.AddFunc(cronSpec, func() {
		s.Tick(ctx, time.Now())
	})
	if err != nil {
		config.Logger.Fatal("Invalid scheduler cron expression",
			zap.String("cron", cronSpec),
			zap.Error(err))
	}

	config.Logger.Info("Recurring invoice scheduler started", zap.String("cron", cronSpec))
	c.Start()

	select {}
}
