package factors

import (
	"math"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/edipo-dados/quant-stock-rank-sub001/internal/contracts"
	"github.com/edipo-dados/quant-stock-rank-sub001/pkg/logger"
)

// growthBars builds n daily bars with a constant daily growth rate,
// starting at 100 and ending at the last bar.
func growthBars(n int, growth float64) []*contracts.PriceBar {
	bars := make([]*contracts.PriceBar, n)
	price := 100.0
	start := time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC)
	for i := 0; i < n; i++ {
		bars[i] = &contracts.PriceBar{
			Ticker:   "TEST",
			Date:     start.AddDate(0, 0, i),
			Close:    price,
			AdjClose: price,
			Volume:   200_000,
		}
		price *= 1 + growth
	}
	return bars
}

func TestMomentumCalculator_ConstantGrowth(t *testing.T) {
	calc := NewMomentumCalculator(logger.NewNop())

	growth := 0.001
	f := calc.Calculate("TEST", growthBars(253, growth))

	require.True(t, f.Return1M.Valid)
	assert.InDelta(t, math.Pow(1+growth, 21)-1, f.Return1M.Float64, 1e-9)

	require.True(t, f.Return6M.Valid)
	assert.InDelta(t, math.Pow(1+growth, 126)-1, f.Return6M.Float64, 1e-9)

	require.True(t, f.Return12M.Valid)
	assert.InDelta(t, math.Pow(1+growth, 252)-1, f.Return12M.Float64, 1e-9)

	require.True(t, f.Momentum6MEx1M.Valid)
	assert.InDelta(t, f.Return6M.Float64-f.Return1M.Float64, f.Momentum6MEx1M.Float64, 1e-12)

	require.True(t, f.Momentum12MEx1M.Valid)
	assert.InDelta(t, f.Return12M.Float64-f.Return1M.Float64, f.Momentum12MEx1M.Float64, 1e-12)

	// Constant growth has zero log-return dispersion.
	require.True(t, f.Volatility90D.Valid)
	assert.InDelta(t, 0, f.Volatility90D.Float64, 1e-9)

	// A monotonically rising series never trades below its peak.
	require.True(t, f.RecentDrawdown.Valid)
	assert.InDelta(t, 0, f.RecentDrawdown.Float64, 1e-12)

	// All-up closes saturate RSI.
	require.True(t, f.RSI14.Valid)
	assert.InDelta(t, 100, f.RSI14.Float64, 1e-9)
}

func TestMomentumCalculator_InsufficientHistory(t *testing.T) {
	calc := NewMomentumCalculator(logger.NewNop())

	tests := []struct {
		name string
		bars int
	}{
		{"no bars", 0},
		{"below 1m lookback", 10},
		{"below 12m lookback", 200},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			f := calc.Calculate("TEST", growthBars(tt.bars, 0.001))

			assert.False(t, f.Return12M.Valid)
			assert.False(t, f.Momentum12MEx1M.Valid)
			assert.False(t, f.RecentDrawdown.Valid)
			if tt.bars < lookback1M+1 {
				assert.False(t, f.Return1M.Valid)
			}
		})
	}
}

func TestWilderRSI_FlatSeries(t *testing.T) {
	rsi := wilderRSI(growthBars(30, 0), rsiPeriod)
	require.True(t, rsi.Valid)
	assert.InDelta(t, 50, rsi.Float64, 1e-12)
}

func TestRecentDrawdown_BelowPeak(t *testing.T) {
	bars := growthBars(252, 0)
	// Peak mid-window, 10% below it at the end.
	bars[100].AdjClose = 200
	for i := 200; i < len(bars); i++ {
		bars[i].AdjClose = 180
	}

	dd := recentDrawdown(bars, drawdownWindow)
	require.True(t, dd.Valid)
	assert.InDelta(t, (180.0-200.0)/200.0, dd.Float64, 1e-12)
}

func TestTrailingReturn_NonPositivePrice(t *testing.T) {
	bars := growthBars(30, 0.001)
	bars[len(bars)-1-lookback1M].AdjClose = 0

	assert.False(t, trailingReturn(bars, lookback1M).Valid)
}

func TestSampleStdev(t *testing.T) {
	sd, ok := sampleStdev([]float64{2, 4, 4, 4, 5, 5, 7, 9})
	require.True(t, ok)
	assert.InDelta(t, 2.13809, sd, 1e-4)

	_, ok = sampleStdev([]float64{1})
	assert.False(t, ok)
}
