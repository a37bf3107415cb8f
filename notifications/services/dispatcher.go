package services

import (
	"context"
	"encoding/json"
	"fmt"

	"billing-backend/config"
	"billing-backend/db/models"

	"github.com/google/uuid"
	"github.com/hibiken/asynq"
	"go.uber.org/zap"
)

const TypeInvoiceSend = "invoice:send"

type InvoiceSendPayload struct {
	InvoiceID uuid.UUID `json:"invoice_id"`
}

// InvoiceDispatcher queues outward invoice mail instead of sending inline,
// so a slow SMTP server never stalls the scheduler tick.
type InvoiceDispatcher struct {
	client *asynq.Client
}

func NewInvoiceDispatcher(client *asynq.Client) *InvoiceDispatcher {
	return &InvoiceDispatcher{client: client}
}

func (d *InvoiceDispatcher) DispatchInvoice(ctx context.Context, invoice *models.Invoice) error {
	payload, err := json.Marshal(InvoiceSendPayload{InvoiceID: invoice.ID})
	if err != nil {
		return fmt.Errorf("marshal invoice send payload: %w", err)
	}

	task := asynq.NewTask(TypeInvoiceSend, payload)
	info, err := d.client.EnqueueContext(ctx, task, asynq.MaxRetry(5), asynq.Queue("mail"))
	if err != nil {
		return fmt.Errorf("enqueue invoice send for %s: %w", invoice.InvoiceNumber, err)
	}

	config.Logger.Info("Queued invoice for sending",
		zap.String("invoiceNumber", invoice.InvoiceNumber),
		zap.String("taskID", info.ID))
	return nil
}
