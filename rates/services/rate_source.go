package services

import (
	"context"
	"fmt"

	"billing-backend/db/models"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// RateStore is the persistence slice the rate service needs.
type RateStore interface {
	CompanyBaseCurrency(ctx context.Context, companyID uuid.UUID) (string, error)
	ActiveRateRecord(ctx context.Context, companyID uuid.UUID, currencyCode string) (*models.ExchangeRate, error)
}

// Provider is an external currency-rate lookup (third-party API).
type Provider interface {
	FetchRate(ctx context.Context, fromCurrency, toCurrency string) (decimal.Decimal, error)
}

// RateService resolves the current multiplier from a document currency into
// the company base currency. User-entered active rates win; the external
// provider is the fallback when one is configured.
type RateService struct {
	store    RateStore
	provider Provider // nil when no provider is configured
}

func NewRateService(store RateStore, provider Provider) *RateService {
	return &RateService{store: store, provider: provider}
}

func (s *RateService) ActiveRate(ctx context.Context, companyID uuid.UUID, currencyCode string) (decimal.Decimal, error) {
	base, err := s.store.CompanyBaseCurrency(ctx, companyID)
	if err != nil {
		return decimal.Decimal{}, err
	}

	if currencyCode == base {
		return decimal.NewFromInt(1), nil
	}

	record, err := s.store.ActiveRateRecord(ctx, companyID, currencyCode)
	if err != nil {
		return decimal.Decimal{}, err
	}
	if record != nil {
		return record.Rate, nil
	}

	if s.provider != nil {
		rate, err := s.provider.FetchRate(ctx, currencyCode, base)
		if err != nil {
			return decimal.Decimal{}, fmt.Errorf("fetch rate %s/%s from provider: %w", currencyCode, base, err)
		}
		return rate, nil
	}

	return decimal.Decimal{}, fmt.Errorf("no active exchange rate for %s", currencyCode)
}
