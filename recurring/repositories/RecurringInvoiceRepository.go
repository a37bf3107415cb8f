package repositories

import (
	"context"
	"fmt"
	"time"

	"billing-backend/config"
	"billing-backend/db/models"
	"billing-backend/recurring/services"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

// claimTTL bounds how long a crashed worker can keep a template locked.
// Processing a template is expected to finish well within one tick cycle.
const claimTTL = 5 * time.Minute

type RecurringInvoiceRepository interface {
	CreateRecurringInvoice(ctx context.Context, tpl *models.RecurringInvoice) error
	GetRecurringInvoice(ctx context.Context, id uuid.UUID) (*models.RecurringInvoice, error)
	UpdateSchedule(ctx context.Context, tpl *models.RecurringInvoice) error
	DueTemplates(ctx context.Context, now time.Time) ([]models.RecurringInvoice, error)
	Claim(ctx context.Context, id uuid.UUID) error
	Release(ctx context.Context, id uuid.UUID)
}

type recurringInvoiceRepository struct {
	db          *gorm.DB
	redisClient *redis.Client
}

func NewRecurringInvoiceRepository(db *gorm.DB, redisClient *redis.Client) RecurringInvoiceRepository {
	return &recurringInvoiceRepository{db: db, redisClient: redisClient}
}

func (rr *recurringInvoiceRepository) CreateRecurringInvoice(ctx context.Context, tpl *models.RecurringInvoice) error {
	if err := rr.db.WithContext(ctx).Create(tpl).Error; err != nil {
		config.Logger.Error("Failed to create recurring invoice",
			zap.String("customerID", tpl.CustomerID.String()),
			zap.Error(err))
		return fmt.Errorf("failed to create recurring invoice: %w", err)
	}
	return nil
}

func (rr *recurringInvoiceRepository) GetRecurringInvoice(ctx context.Context, id uuid.UUID) (*models.RecurringInvoice, error) {
	var tpl models.RecurringInvoice

	err := rr.db.WithContext(ctx).
		Preload("Items").
		Preload("Items.Taxes").
		Preload("Taxes").
		Preload("Customer").
		Where("id = ?", id).
		First(&tpl).Error
	if err != nil {
		if err == gorm.ErrRecordNotFound {
			return nil, nil
		}
		config.Logger.Error("Failed to get recurring invoice",
			zap.String("recurringInvoiceID", id.String()),
			zap.Error(err))
		return nil, fmt.Errorf("failed to get recurring invoice: %w", err)
	}

	return &tpl, nil
}

// UpdateSchedule persists the schedule fields mutated by hold/resume and by
// direct user edits. The scheduler path goes through CreateGenerated
// instead, which guards the update with a compare-and-set.
func (rr *recurringInvoiceRepository) UpdateSchedule(ctx context.Context, tpl *models.RecurringInvoice) error {
	updates := map[string]interface{}{
		"status":          tpl.Status,
		"next_invoice_at": tpl.NextInvoiceAt,
		"generated_count": tpl.GeneratedCount,
		"updated_at":      time.Now(),
	}

	if err := rr.db.WithContext(ctx).
		Model(&models.RecurringInvoice{}).
		Where("id = ?", tpl.ID).
		Updates(updates).Error; err != nil {
		config.Logger.Error("Failed to update recurring invoice schedule",
			zap.String("recurringInvoiceID", tpl.ID.String()),
			zap.Error(err))
		return fmt.Errorf("failed to update recurring invoice schedule: %w", err)
	}
	return nil
}

func (rr *recurringInvoiceRepository) DueTemplates(ctx context.Context, now time.Time) ([]models.RecurringInvoice, error) {
	var due []models.RecurringInvoice

	err := rr.db.WithContext(ctx).
		Preload("Items").
		Preload("Items.Taxes").
		Preload("Taxes").
		Where("status = ? AND next_invoice_at IS NOT NULL AND next_invoice_at <= ?", models.ActiveRecurring, now).
		Order("next_invoice_at asc").
		Find(&due).Error
	if err != nil {
		config.Logger.Error("Failed to list due recurring invoices", zap.Error(err))
		return nil, fmt.Errorf("failed to list due recurring invoices: %w", err)
	}

	return due, nil
}

// Claim takes the exclusive processing lease for a template. SETNX makes it
// atomic across workers and instances; the TTL frees leases abandoned by a
// crashed worker.
func (rr *recurringInvoiceRepository) Claim(ctx context.Context, id uuid.UUID) error {
	key := claimKey(id)

	acquired, err := rr.redisClient.SetNX(ctx, key, time.Now().Format(time.RFC3339), claimTTL).Result()
	if err != nil {
		return fmt.Errorf("failed to acquire claim for recurring invoice %s: %w", id, err)
	}
	if !acquired {
		return services.ErrClaimConflict
	}
	return nil
}

func (rr *recurringInvoiceRepository) Release(ctx context.Context, id uuid.UUID) {
	if err := rr.redisClient.Del(ctx, claimKey(id)).Err(); err != nil {
		// The TTL will reap the lease; losing Release only delays the next
		// claim, it cannot double-generate.
		config.Logger.Warn("Failed to release recurring invoice claim",
			zap.String("recurringInvoiceID", id.String()),
			zap.Error(err))
	}
}

func claimKey(id uuid.UUID) string {
	return fmt.Sprintf("recurring-invoice:claim:%s", id)
}
