package screening

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/edipo-dados/quant-stock-rank-sub001/internal/contracts"
	"github.com/edipo-dados/quant-stock-rank-sub001/internal/strategyconfig"
	"github.com/edipo-dados/quant-stock-rank-sub001/pkg/logger"
)

func testFilter(financial ...string) *Filter {
	return NewFilter(strategyconfig.Eligibility{
		MinimumVolume:      100_000,
		MaxNetDebtToEBITDA: 8.0,
		FinancialTickers:   financial,
	}, logger.NewNop())
}

// healthyAnnual is a statement that passes every rule on its own.
func healthyAnnual(year int) *contracts.Fundamental {
	return &contracts.Fundamental{
		Ticker:             "TEST",
		PeriodEnd:          time.Date(year, 12, 31, 0, 0, 0, 0, time.UTC),
		PeriodType:         contracts.PeriodAnnual,
		Revenue:            1000,
		NetIncome:          100,
		EBITDA:             200,
		TotalDebt:          100,
		ShareholdersEquity: 500,
		MarketCap:          1200,
		EnterpriseValue:    1500,
	}
}

func TestFilter_HealthyTickerPasses(t *testing.T) {
	passed, reasons := testFilter().Evaluate(Input{
		Ticker:       "TEST",
		Annuals:      []*contracts.Fundamental{healthyAnnual(2025), healthyAnnual(2024)},
		AvgVolume90D: contracts.FloatFrom(500_000),
	})

	assert.True(t, passed)
	assert.Empty(t, reasons)
}

func TestFilter_ExclusionRules(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(*contracts.Fundamental)
		want   contracts.ExclusionReason
	}{
		{
			name:   "non-positive equity",
			mutate: func(a *contracts.Fundamental) { a.ShareholdersEquity = 0 },
			want:   contracts.ReasonNonPositiveEquity,
		},
		{
			name:   "negative revenue",
			mutate: func(a *contracts.Fundamental) { a.Revenue = -10 },
			want:   contracts.ReasonNegativeRevenue,
		},
		{
			name:   "non-positive ebitda",
			mutate: func(a *contracts.Fundamental) { a.EBITDA = -5 },
			want:   contracts.ReasonNonPositiveEBITDA,
		},
		{
			name: "excessive leverage",
			mutate: func(a *contracts.Fundamental) {
				a.EnterpriseValue = 0 // fall back to total debt
				a.TotalDebt = 2000    // 10x EBITDA
			},
			want: contracts.ReasonExcessiveLeverage,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			bad := healthyAnnual(2025)
			tt.mutate(bad)

			passed, reasons := testFilter().Evaluate(Input{
				Ticker:       "TEST",
				Annuals:      []*contracts.Fundamental{bad, healthyAnnual(2024)},
				AvgVolume90D: contracts.FloatFrom(500_000),
			})

			assert.False(t, passed)
			assert.Contains(t, reasons, tt.want)
		})
	}
}

func TestFilter_RecurringLoss(t *testing.T) {
	loss := func(year int) *contracts.Fundamental {
		a := healthyAnnual(year)
		a.NetIncome = -50
		return a
	}

	tests := []struct {
		name    string
		annuals []*contracts.Fundamental
		want    bool
	}{
		{
			name:    "two losses in three years",
			annuals: []*contracts.Fundamental{loss(2025), healthyAnnual(2024), loss(2023)},
			want:    true,
		},
		{
			name:    "single loss",
			annuals: []*contracts.Fundamental{loss(2025), healthyAnnual(2024), healthyAnnual(2023)},
			want:    false,
		},
		{
			name: "old losses outside the lookback",
			annuals: []*contracts.Fundamental{
				healthyAnnual(2025), healthyAnnual(2024), healthyAnnual(2023),
				loss(2022), loss(2021),
			},
			want: false,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, reasons := testFilter().Evaluate(Input{
				Ticker:       "TEST",
				Annuals:      tt.annuals,
				AvgVolume90D: contracts.FloatFrom(500_000),
			})

			if tt.want {
				assert.Contains(t, reasons, contracts.ReasonRecurringLoss)
			} else {
				assert.NotContains(t, reasons, contracts.ReasonRecurringLoss)
			}
		})
	}
}

func TestFilter_FinancialEBITDAWaiver(t *testing.T) {
	bank := healthyAnnual(2025)
	bank.Ticker = "BANK"
	bank.EBITDA = 0

	passed, reasons := testFilter("BANK").Evaluate(Input{
		Ticker:       "BANK",
		Annuals:      []*contracts.Fundamental{bank},
		AvgVolume90D: contracts.FloatFrom(500_000),
	})

	assert.True(t, passed)
	assert.Empty(t, reasons)

	// Same statement without the waiver fails.
	passed, reasons = testFilter().Evaluate(Input{
		Ticker:       "BANK",
		Annuals:      []*contracts.Fundamental{bank},
		AvgVolume90D: contracts.FloatFrom(500_000),
	})

	assert.False(t, passed)
	assert.Contains(t, reasons, contracts.ReasonNonPositiveEBITDA)
}

func TestFilter_LowLiquidity(t *testing.T) {
	annuals := []*contracts.Fundamental{healthyAnnual(2025)}

	_, reasons := testFilter().Evaluate(Input{
		Ticker:       "TEST",
		Annuals:      annuals,
		AvgVolume90D: contracts.FloatFrom(50_000),
	})
	assert.Contains(t, reasons, contracts.ReasonLowLiquidity)

	// Missing volume is treated as illiquid, not as a pass.
	_, reasons = testFilter().Evaluate(Input{
		Ticker:       "TEST",
		Annuals:      annuals,
		AvgVolume90D: contracts.Missing(),
	})
	assert.Contains(t, reasons, contracts.ReasonLowLiquidity)
}

func TestFilter_NoFundamentals(t *testing.T) {
	passed, reasons := testFilter().Evaluate(Input{
		Ticker:       "TEST",
		AvgVolume90D: contracts.FloatFrom(500_000),
	})

	assert.False(t, passed)
	require.Len(t, reasons, 1)
	assert.Equal(t, contracts.ReasonInsufficientData, reasons[0])
}

func TestFilter_CollectsAllReasons(t *testing.T) {
	bad := healthyAnnual(2025)
	bad.ShareholdersEquity = -100
	bad.Revenue = -10
	bad.EBITDA = -5

	passed, reasons := testFilter().Evaluate(Input{
		Ticker:       "TEST",
		Annuals:      []*contracts.Fundamental{bad},
		AvgVolume90D: contracts.FloatFrom(10),
	})

	assert.False(t, passed)
	assert.Contains(t, reasons, contracts.ReasonNonPositiveEquity)
	assert.Contains(t, reasons, contracts.ReasonNegativeRevenue)
	assert.Contains(t, reasons, contracts.ReasonNonPositiveEBITDA)
	assert.Contains(t, reasons, contracts.ReasonLowLiquidity)
}
