package repositories

import (
	"context"
	"fmt"
	"time"

	"billing-backend/config"
	"billing-backend/db/models"

	"github.com/google/uuid"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

type ExchangeRateRepository interface {
	GetActiveRate(tx *gorm.DB, companyID uuid.UUID, currencyCode string) (*models.ExchangeRate, error)
	CreateRate(tx *gorm.DB, rate *models.ExchangeRate) (*models.ExchangeRate, error)
	DeactivateRate(tx *gorm.DB, rateID uuid.UUID, updatedBy string) error

	CompanyBaseCurrency(ctx context.Context, companyID uuid.UUID) (string, error)
	ActiveRateRecord(ctx context.Context, companyID uuid.UUID, currencyCode string) (*models.ExchangeRate, error)

	InvoicesByCurrency(ctx context.Context, companyID uuid.UUID, currencyCode string) ([]models.Invoice, error)
	EstimatesByCurrency(ctx context.Context, companyID uuid.UUID, currencyCode string) ([]models.Estimate, error)
	RecurringInvoicesByCurrency(ctx context.Context, companyID uuid.UUID, currencyCode string) ([]models.RecurringInvoice, error)
}

type exchangeRateRepository struct {
	db *gorm.DB
}

func NewExchangeRateRepository(db *gorm.DB) ExchangeRateRepository {
	return &exchangeRateRepository{db: db}
}

// GetActiveRate retrieves the currently active rate for a currency, if any.
func (er *exchangeRateRepository) GetActiveRate(tx *gorm.DB, companyID uuid.UUID, currencyCode string) (*models.ExchangeRate, error) {
	var rate models.ExchangeRate

	err := tx.Where(
		"company_id = ? AND currency_code = ? AND active = ? AND (valid_to IS NULL OR valid_to > ?)",
		companyID, currencyCode, true, time.Now(),
	).First(&rate).Error
	if err != nil {
		if err == gorm.ErrRecordNotFound {
			return nil, nil // No active rate found
		}
		config.Logger.Error("Failed to get active exchange rate",
			zap.String("currencyCode", currencyCode),
			zap.Error(err))
		return nil, fmt.Errorf("failed to get active exchange rate: %w", err)
	}

	return &rate, nil
}

func (er *exchangeRateRepository) CreateRate(tx *gorm.DB, rate *models.ExchangeRate) (*models.ExchangeRate, error) {
	if err := tx.Create(rate).Error; err != nil {
		config.Logger.Error("Failed to create exchange rate",
			zap.String("currencyCode", rate.CurrencyCode),
			zap.String("rate", rate.Rate.String()),
			zap.Error(err))
		return nil, fmt.Errorf("failed to create exchange rate: %w", err)
	}
	return rate, nil
}

// DeactivateRate closes the validity window of a superseded rate.
func (er *exchangeRateRepository) DeactivateRate(tx *gorm.DB, rateID uuid.UUID, updatedBy string) error {
	now := time.Now()
	updates := map[string]interface{}{
		"active":     false,
		"valid_to":   now,
		"updated_by": &updatedBy,
		"updated_at": now,
	}

	if err := tx.Model(&models.ExchangeRate{}).
		Where("id = ?", rateID).
		Updates(updates).Error; err != nil {
		config.Logger.Error("Failed to deactivate exchange rate",
			zap.String("rateID", rateID.String()),
			zap.Error(err))
		return fmt.Errorf("failed to deactivate exchange rate: %w", err)
	}
	return nil
}

func (er *exchangeRateRepository) CompanyBaseCurrency(ctx context.Context, companyID uuid.UUID) (string, error) {
	var company models.Company

	if err := er.db.WithContext(ctx).Where("id = ?", companyID).First(&company).Error; err != nil {
		return "", fmt.Errorf("failed to get company %s: %w", companyID, err)
	}
	return company.BaseCurrencyCode, nil
}

func (er *exchangeRateRepository) ActiveRateRecord(ctx context.Context, companyID uuid.UUID, currencyCode string) (*models.ExchangeRate, error) {
	return er.GetActiveRate(er.db.WithContext(ctx), companyID, currencyCode)
}

func (er *exchangeRateRepository) InvoicesByCurrency(ctx context.Context, companyID uuid.UUID, currencyCode string) ([]models.Invoice, error) {
	var invoices []models.Invoice

	err := er.db.WithContext(ctx).
		Preload("Items").
		Preload("Items.Taxes").
		Preload("Taxes").
		Where("company_id = ? AND currency_code = ?", companyID, currencyCode).
		Find(&invoices).Error
	if err != nil {
		return nil, fmt.Errorf("failed to list invoices for currency %s: %w", currencyCode, err)
	}
	return invoices, nil
}

func (er *exchangeRateRepository) EstimatesByCurrency(ctx context.Context, companyID uuid.UUID, currencyCode string) ([]models.Estimate, error) {
	var estimates []models.Estimate

	err := er.db.WithContext(ctx).
		Preload("Items").
		Preload("Items.Taxes").
		Preload("Taxes").
		Where("company_id = ? AND currency_code = ?", companyID, currencyCode).
		Find(&estimates).Error
	if err != nil {
		return nil, fmt.Errorf("failed to list estimates for currency %s: %w", currencyCode, err)
	}
	return estimates, nil
}

func (er *exchangeRateRepository) RecurringInvoicesByCurrency(ctx context.Context, companyID uuid.UUID, currencyCode string) ([]models.RecurringInvoice, error) {
	var templates []models.RecurringInvoice

	err := er.db.WithContext(ctx).
		Preload("Items").
		Preload("Items.Taxes").
		Preload("Taxes").
		Where("company_id = ? AND currency_code = ?", companyID, currencyCode).
		Find(&templates).Error
	if err != nil {
		return nil, fmt.Errorf("failed to list recurring invoices for currency %s: %w", currencyCode, err)
	}
	return templates, nil
}
