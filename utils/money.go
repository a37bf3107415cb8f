package utils

import "github.com/shopspring/decimal"

// BaseAmount converts a minor-unit amount into the company base currency,
// rounding half-up to the nearest minor unit. Each line amount is converted
// independently, never pro-rated against a parent total.
func BaseAmount(amount int64, rate decimal.Decimal) int64 {
	return decimal.NewFromInt(amount).Mul(rate).Round(0).IntPart()
}
