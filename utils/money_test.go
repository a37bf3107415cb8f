package utils

import (
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/require"
)

func TestBaseAmount(t *testing.T) {
	require.Equal(t, int64(45), BaseAmount(25, decimal.NewFromFloat(1.8)))
	require.Equal(t, int64(54), BaseAmount(30, decimal.NewFromFloat(1.8)))

	// Identity rate keeps minor units unchanged.
	require.Equal(t, int64(2500), BaseAmount(2500, decimal.NewFromInt(1)))

	// Halves round up.
	require.Equal(t, int64(38), BaseAmount(25, decimal.NewFromFloat(1.5)))
	require.Equal(t, int64(1), BaseAmount(2, decimal.NewFromFloat(0.25)))

	// Fractional rates with many places still land on a whole minor unit.
	require.Equal(t, int64(35), BaseAmount(333, decimal.NewFromFloat(0.105)))

	require.Equal(t, int64(0), BaseAmount(0, decimal.NewFromFloat(1.8)))
}

func TestFormatDocumentNumber(t *testing.T) {
	require.Equal(t, "INV-000001", FormatDocumentNumber("INV", 1))
	require.Equal(t, "INV-000042", FormatDocumentNumber("INV", 42))
	require.Equal(t, "EST-001000", FormatDocumentNumber("EST", 1000))
}
