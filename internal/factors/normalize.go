package factors

import (
	"math"
	"sort"

	"github.com/edipo-dados/quant-stock-rank-sub001/internal/contracts"
)

// madScale is the consistency constant that makes MAD comparable to the
// standard deviation under normality.
const madScale = 1.4826

// winsorMADs is the half-width of the winsorization window in scaled MADs.
const winsorMADs = 3.0

// Normalize performs robust cross-sectional normalization of one factor
// column across all tickers on the same date:
//
//  1. compute median and MAD of the present values,
//  2. winsorize to [median - 3*1.4826*MAD, median + 3*1.4826*MAD],
//  3. z-score with the winsorized mean and stdev.
//
// Missing inputs stay missing. An empty column stays all-missing; a column
// with a single present value, or zero dispersion after winsorization,
// normalizes present values to 0.
func Normalize(column map[string]contracts.Float) map[string]contracts.Float {
	out := make(map[string]contracts.Float, len(column))

	// Accumulate in sorted-ticker order so repeated runs over the same
	// inputs produce bit-identical sums.
	tickers := make([]string, 0, len(column))
	for ticker := range column {
		tickers = append(tickers, ticker)
	}
	sort.Strings(tickers)

	values := make([]float64, 0, len(column))
	for _, ticker := range tickers {
		if v := column[ticker]; v.Valid {
			values = append(values, v.Float64)
		}
	}

	if len(values) == 0 {
		for _, ticker := range tickers {
			out[ticker] = contracts.Missing()
		}
		return out
	}

	m := median(values)
	deviations := make([]float64, len(values))
	for i, v := range values {
		deviations[i] = math.Abs(v - m)
	}
	mad := median(deviations)

	lo := m - winsorMADs*madScale*mad
	hi := m + winsorMADs*madScale*mad

	winsorized := make([]float64, len(values))
	for i, v := range values {
		winsorized[i] = clamp(v, lo, hi)
	}

	mean := 0.0
	for _, v := range winsorized {
		mean += v
	}
	mean /= float64(len(winsorized))

	sd, ok := sampleStdev(winsorized)
	for _, ticker := range tickers {
		v := column[ticker]
		if !v.Valid {
			out[ticker] = contracts.Missing()
			continue
		}
		if !ok || sd == 0 {
			// Degenerate cross-section: everything is at the center.
			out[ticker] = contracts.FloatFrom(0)
			continue
		}
		out[ticker] = contracts.FloatFrom((clamp(v.Float64, lo, hi) - mean) / sd)
	}

	return out
}

func median(values []float64) float64 {
	sorted := make([]float64, len(values))
	copy(sorted, values)
	sort.Float64s(sorted)

	n := len(sorted)
	if n%2 == 1 {
		return sorted[n/2]
	}
	return (sorted[n/2-1] + sorted[n/2]) / 2
}

func clamp(v, lo, hi float64) float64 {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}
