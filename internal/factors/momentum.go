package factors

import (
	"math"

	"github.com/edipo-dados/quant-stock-rank-sub001/internal/contracts"
	"github.com/edipo-dados/quant-stock-rank-sub001/pkg/logger"
)

// Trading-day lookbacks for the momentum factor family.
const (
	lookback1M      = 21
	lookback6M      = 126
	lookback12M     = 252
	rsiPeriod       = 14
	volatilityDays  = 90
	drawdownWindow  = 252
	tradingDaysYear = 252
)

// MomentumCalculator computes raw daily momentum factors for one ticker
// from its adjusted close series. It is pure: no I/O, no shared state.
type MomentumCalculator struct {
	logger *logger.Logger
}

// NewMomentumCalculator creates a new momentum calculator.
func NewMomentumCalculator(log *logger.Logger) *MomentumCalculator {
	return &MomentumCalculator{logger: log}
}

// MomentumFactors holds the raw (pre-normalization) momentum factors.
// A factor that cannot be computed from the available history is missing,
// never zero.
type MomentumFactors struct {
	Return1M        contracts.Float
	Return6M        contracts.Float
	Return12M       contracts.Float
	Momentum6MEx1M  contracts.Float
	Momentum12MEx1M contracts.Float
	RSI14           contracts.Float
	Volatility90D   contracts.Float
	RecentDrawdown  contracts.Float
}

// Calculate computes all momentum factors from bars ordered by date
// ascending, with the last bar being the target date.
func (c *MomentumCalculator) Calculate(ticker string, bars []*contracts.PriceBar) MomentumFactors {
	f := MomentumFactors{}
	if len(bars) == 0 {
		return f
	}

	f.Return1M = trailingReturn(bars, lookback1M)
	f.Return6M = trailingReturn(bars, lookback6M)
	f.Return12M = trailingReturn(bars, lookback12M)

	if f.Return6M.Valid && f.Return1M.Valid {
		f.Momentum6MEx1M = contracts.FloatFrom(f.Return6M.Float64 - f.Return1M.Float64)
	}
	if f.Return12M.Valid && f.Return1M.Valid {
		f.Momentum12MEx1M = contracts.FloatFrom(f.Return12M.Float64 - f.Return1M.Float64)
	}

	f.RSI14 = wilderRSI(bars, rsiPeriod)
	f.Volatility90D = annualizedVolatility(bars, volatilityDays)
	f.RecentDrawdown = recentDrawdown(bars, drawdownWindow)

	c.logger.WithFields(map[string]interface{}{
		"ticker":    ticker,
		"bars":      len(bars),
		"return_1m": f.Return1M,
	}).Debug("Calculated momentum factors")

	return f
}

// trailingReturn computes P(last)/P(last-days) - 1 on adjusted close.
func trailingReturn(bars []*contracts.PriceBar, days int) contracts.Float {
	if len(bars) < days+1 {
		return contracts.Missing()
	}
	current := bars[len(bars)-1].AdjClose
	past := bars[len(bars)-1-days].AdjClose
	if past <= 0 || current <= 0 {
		return contracts.Missing()
	}
	return contracts.FloatFrom(current/past - 1)
}

// wilderRSI computes the standard Wilder RSI on daily closes.
func wilderRSI(bars []*contracts.PriceBar, period int) contracts.Float {
	if len(bars) < period+1 {
		return contracts.Missing()
	}

	var avgGain, avgLoss float64
	for i := 1; i <= period; i++ {
		delta := bars[i].Close - bars[i-1].Close
		if delta > 0 {
			avgGain += delta
		} else {
			avgLoss -= delta
		}
	}
	avgGain /= float64(period)
	avgLoss /= float64(period)

	// Wilder smoothing over the remaining bars.
	for i := period + 1; i < len(bars); i++ {
		delta := bars[i].Close - bars[i-1].Close
		gain, loss := 0.0, 0.0
		if delta > 0 {
			gain = delta
		} else {
			loss = -delta
		}
		avgGain = (avgGain*float64(period-1) + gain) / float64(period)
		avgLoss = (avgLoss*float64(period-1) + loss) / float64(period)
	}

	if avgLoss == 0 {
		if avgGain == 0 {
			return contracts.FloatFrom(50)
		}
		return contracts.FloatFrom(100)
	}
	rs := avgGain / avgLoss
	return contracts.FloatFrom(100 - 100/(1+rs))
}

// annualizedVolatility computes stdev of daily log returns over the last
// `days` trading days, annualized by sqrt(252).
func annualizedVolatility(bars []*contracts.PriceBar, days int) contracts.Float {
	if len(bars) < days+1 {
		return contracts.Missing()
	}

	window := bars[len(bars)-1-days:]
	returns := make([]float64, 0, days)
	for i := 1; i < len(window); i++ {
		prev, cur := window[i-1].AdjClose, window[i].AdjClose
		if prev <= 0 || cur <= 0 {
			return contracts.Missing()
		}
		returns = append(returns, math.Log(cur/prev))
	}

	sd, ok := sampleStdev(returns)
	if !ok {
		return contracts.Missing()
	}
	return contracts.FloatFrom(sd * math.Sqrt(tradingDaysYear))
}

// recentDrawdown computes (P - max P over the window) / max P, always <= 0.
func recentDrawdown(bars []*contracts.PriceBar, window int) contracts.Float {
	if len(bars) < window {
		return contracts.Missing()
	}

	recent := bars[len(bars)-window:]
	peak := 0.0
	for _, b := range recent {
		if b.AdjClose > peak {
			peak = b.AdjClose
		}
	}
	if peak <= 0 {
		return contracts.Missing()
	}
	current := bars[len(bars)-1].AdjClose
	return contracts.FloatFrom((current - peak) / peak)
}

// sampleStdev returns the sample standard deviation; ok is false when fewer
// than two observations are available.
func sampleStdev(values []float64) (float64, bool) {
	if len(values) < 2 {
		return 0, false
	}
	mean := 0.0
	for _, v := range values {
		mean += v
	}
	mean /= float64(len(values))

	ss := 0.0
	for _, v := range values {
		d := v - mean
		ss += d * d
	}
	return math.Sqrt(ss / float64(len(values)-1)), true
}
