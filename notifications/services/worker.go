package services

import (
	"context"
	"encoding/json"
	"fmt"

	"billing-backend/config"
	invoice_repositories "billing-backend/invoices/repositories"
	"billing-backend/utils"

	"github.com/hibiken/asynq"
	"go.uber.org/zap"
)

// MailWorker consumes queued invoice mail tasks and delivers them through
// the SMTP mailer.
type MailWorker struct {
	invoiceRepo invoice_repositories.InvoiceRepository
}

func NewMailWorker(invoiceRepo invoice_repositories.InvoiceRepository) *MailWorker {
	return &MailWorker{invoiceRepo: invoiceRepo}
}

// Run starts the asynq server. Blocks, so run it in a goroutine from main.
func (w *MailWorker) Run(redisOpt asynq.RedisClientOpt) {
	srv := asynq.NewServer(redisOpt, asynq.Config{
		Concurrency: 5,
		Queues: map[string]int{
			"mail": 1,
		},
	})

	mux := asynq.NewServeMux()
	mux.HandleFunc(TypeInvoiceSend, w.handleInvoiceSend)

	config.Logger.Info("Mail worker started")
	if err := srv.Run(mux); err != nil {
		config.Logger.Fatal("Mail worker stopped", zap.Error(err))
	}
}

func (w *MailWorker) handleInvoiceSend(ctx context.Context, task *asynq.Task) error {
	var payload InvoiceSendPayload
	if err := json.Unmarshal(task.Payload(), &payload); err != nil {
		return fmt.Errorf("unmarshal invoice send payload: %w", err)
	}

	invoice, err := w.invoiceRepo.GetInvoiceWithDependents(ctx, payload.InvoiceID)
	if err != nil {
		return err
	}
	if invoice == nil {
		// Deleted since it was queued. Nothing to retry.
		config.Logger.Warn("Invoice for queued mail no longer exists",
			zap.String("invoiceID", payload.InvoiceID.String()))
		return nil
	}

	if invoice.Customer == nil || invoice.Customer.Email == nil {
		config.Logger.Warn("Invoice customer has no email address",
			zap.String("invoiceNumber", invoice.InvoiceNumber))
		return nil
	}

	subject := fmt.Sprintf("Invoice %s", invoice.InvoiceNumber)
	body := fmt.Sprintf(
		"Dear %s,\r\n\r\nA new invoice %s for %d %s (dated %s) has been issued to you.\r\n\r\nThank you.",
		invoice.Customer.Name,
		invoice.InvoiceNumber,
		invoice.Total,
		invoice.CurrencyCode,
		invoice.InvoiceDate.Format("2006-01-02"),
	)

	if err := utils.SendEmail(*invoice.Customer.Email, body, subject, ""); err != nil {
		return fmt.Errorf("send invoice %s email: %w", invoice.InvoiceNumber, err)
	}

	config.Logger.Info("Invoice email sent",
		zap.String("invoiceNumber", invoice.InvoiceNumber),
		zap.String("toEmail", *invoice.Customer.Email))
	return nil
}
