package services

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"time"

	"github.com/shopspring/decimal"
	"golang.org/x/time/rate"
)

// ProviderClient fetches live rates from a fixer-style HTTP provider.
// Lookups are throttled so a bulk run cannot burn through the provider's
// request quota.
type ProviderClient struct {
	baseURL    string
	apiKey     string
	httpClient *http.Client
	limiter    *rate.Limiter
}

func NewProviderClient(baseURL, apiKey string) *ProviderClient {
	return &ProviderClient{
		baseURL:    baseURL,
		apiKey:     apiKey,
		httpClient: &http.Client{Timeout: 10 * time.Second},
		limiter:    rate.NewLimiter(rate.Every(time.Second), 2),
	}
}

type providerResponse struct {
	Success bool                   `json:"success"`
	Rates   map[string]json.Number `json:"rates"`
}

func (p *ProviderClient) FetchRate(ctx context.Context, fromCurrency, toCurrency string) (decimal.Decimal, error) {
	if err := p.limiter.Wait(ctx); err != nil {
		return decimal.Decimal{}, err
	}

	url := fmt.Sprintf("%s/latest?access_key=%s&base=%s&symbols=%s", p.baseURL, p.apiKey, fromCurrency, toCurrency)

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return decimal.Decimal{}, fmt.Errorf("build provider request: %w", err)
	}

	resp, err := p.httpClient.Do(req)
	if err != nil {
		return decimal.Decimal{}, fmt.Errorf("call rate provider: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return decimal.Decimal{}, fmt.Errorf("rate provider returned status %d", resp.StatusCode)
	}

	var body providerResponse
	if err := json.NewDecoder(resp.Body).Decode(&body); err != nil {
		return decimal.Decimal{}, fmt.Errorf("decode provider response: %w", err)
	}

	raw, ok := body.Rates[toCurrency]
	if !ok {
		return decimal.Decimal{}, fmt.Errorf("provider response missing rate for %s", toCurrency)
	}

	parsed, err := decimal.NewFromString(raw.String())
	if err != nil {
		return decimal.Decimal{}, fmt.Errorf("parse provider rate %q: %w", raw.String(), err)
	}
	return parsed, nil
}
