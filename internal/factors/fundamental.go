package factors

import (
	"math"
	"sort"

	"github.com/edipo-dados/quant-stock-rank-sub001/internal/contracts"
	"github.com/edipo-dados/quant-stock-rank-sub001/pkg/logger"
)

// Factor names used as confidence map keys and persisted per-factor.
const (
	FactorROE                 = "roe"
	FactorROEMean3Y           = "roe_mean_3y"
	FactorROEVolatility       = "roe_volatility"
	FactorNetIncomeVolatility = "net_income_volatility"
	FactorNetMargin           = "net_margin"
	FactorRevenueGrowth3Y     = "revenue_growth_3y"
	FactorDebtToEBITDA        = "debt_to_ebitda"
	FactorPERatio             = "pe_ratio"
	FactorEVEBITDA            = "ev_ebitda"
	FactorPriceToBook         = "price_to_book"
	FactorFCFYield            = "fcf_yield"
	FactorSizeFactor          = "size_factor"
)

// historyYears is the full lookback for adaptive-history factors.
const historyYears = 3

// FundamentalCalculator computes raw monthly fundamental factors for one
// ticker from its most recent annual statements. Pure; no I/O.
type FundamentalCalculator struct {
	minPeriods int
	logger     *logger.Logger
}

// NewFundamentalCalculator creates a fundamental calculator. minPeriods is
// the minimum number of annual periods before an adaptive-history factor
// gets nonzero confidence.
func NewFundamentalCalculator(minPeriods int, log *logger.Logger) *FundamentalCalculator {
	return &FundamentalCalculator{minPeriods: minPeriods, logger: log}
}

// FundamentalFactors holds the raw fundamental factors with per-factor
// confidence. Ratios with a non-positive denominator are skipped (missing,
// confidence 0); no extrapolation.
type FundamentalFactors struct {
	ROE                 contracts.Float
	ROEMean3Y           contracts.Float
	ROEVolatility       contracts.Float
	NetIncomeVolatility contracts.Float
	NetMargin           contracts.Float
	RevenueGrowth3Y     contracts.Float
	DebtToEBITDA        contracts.Float
	PERatio             contracts.Float
	EVEBITDA            contracts.Float
	PriceToBook         contracts.Float
	FCFYield            contracts.Float
	SizeFactor          contracts.Float

	// Confidences holds one entry per attempted factor, each in [0, 1].
	Confidences map[string]float64
	// OverallConfidence is the mean of all per-factor confidences.
	OverallConfidence float64
}

// Calculate computes all fundamental factors from up to five annual rows,
// ordered newest first.
func (c *FundamentalCalculator) Calculate(ticker string, annuals []*contracts.Fundamental) FundamentalFactors {
	f := FundamentalFactors{Confidences: make(map[string]float64)}
	if len(annuals) == 0 {
		return f
	}

	latest := annuals[0]

	// Per-period ratios from the latest annual.
	f.ROE = c.ratio(&f, FactorROE, latest.NetIncome, latest.ShareholdersEquity)
	f.NetMargin = c.ratio(&f, FactorNetMargin, latest.NetIncome, latest.Revenue)
	f.DebtToEBITDA = c.ratio(&f, FactorDebtToEBITDA, latest.TotalDebt, latest.EBITDA)
	f.PERatio = c.ratio(&f, FactorPERatio, latest.MarketCap, latest.NetIncome)
	f.EVEBITDA = c.ratio(&f, FactorEVEBITDA, latest.EnterpriseValue, latest.EBITDA)
	f.PriceToBook = c.ratio(&f, FactorPriceToBook, latest.MarketCap, latest.ShareholdersEquity)
	f.FCFYield = c.ratio(&f, FactorFCFYield, latest.FreeCashFlow, latest.MarketCap)

	if latest.MarketCap > 0 {
		f.SizeFactor = contracts.FloatFrom(-math.Log(latest.MarketCap))
		f.Confidences[FactorSizeFactor] = 1
	} else {
		f.Confidences[FactorSizeFactor] = 0
	}

	// Adaptive-history factors over up to three most recent years.
	c.roeHistory(&f, annuals)
	c.netIncomeVolatility(&f, annuals)
	c.revenueGrowth(&f, annuals)

	f.OverallConfidence = meanConfidence(f.Confidences)

	c.logger.WithFields(map[string]interface{}{
		"ticker":             ticker,
		"periods":            len(annuals),
		"overall_confidence": f.OverallConfidence,
	}).Debug("Calculated fundamental factors")

	return f
}

// ratio computes num/denom, skipping (missing, confidence 0) when the
// denominator is not strictly positive.
func (c *FundamentalCalculator) ratio(f *FundamentalFactors, name string, num, denom float64) contracts.Float {
	if denom <= 0 {
		f.Confidences[name] = 0
		return contracts.Missing()
	}
	f.Confidences[name] = 1
	return contracts.FloatFrom(num / denom)
}

// roeHistory computes roe_mean_3y and roe_volatility with adaptive history:
// confidence 1.0 with three usable years, linearly lower with fewer, zero
// below the minimum period count.
func (c *FundamentalCalculator) roeHistory(f *FundamentalFactors, annuals []*contracts.Fundamental) {
	roes := make([]float64, 0, historyYears)
	for _, a := range annuals {
		if len(roes) == historyYears {
			break
		}
		if a.ShareholdersEquity > 0 {
			roes = append(roes, a.NetIncome/a.ShareholdersEquity)
		}
	}

	conf := adaptiveConfidence(len(roes), c.minPeriods)
	f.Confidences[FactorROEMean3Y] = conf
	if conf > 0 {
		sum := 0.0
		for _, r := range roes {
			sum += r
		}
		f.ROEMean3Y = contracts.FloatFrom(sum / float64(len(roes)))
	}

	if sd, ok := sampleStdev(roes); ok && len(roes) >= c.minPeriods {
		f.ROEVolatility = contracts.FloatFrom(sd)
		f.Confidences[FactorROEVolatility] = float64(len(roes)) / historyYears
	} else {
		f.Confidences[FactorROEVolatility] = 0
	}
}

// netIncomeVolatility computes the coefficient of variation of net income
// over up to three years. Scale-free so the cross-section stays comparable.
func (c *FundamentalCalculator) netIncomeVolatility(f *FundamentalFactors, annuals []*contracts.Fundamental) {
	incomes := make([]float64, 0, historyYears)
	for _, a := range annuals {
		if len(incomes) == historyYears {
			break
		}
		incomes = append(incomes, a.NetIncome)
	}

	f.Confidences[FactorNetIncomeVolatility] = 0
	sd, ok := sampleStdev(incomes)
	if !ok || len(incomes) < c.minPeriods {
		return
	}
	mean := 0.0
	for _, v := range incomes {
		mean += v
	}
	mean /= float64(len(incomes))
	if mean == 0 {
		return
	}
	f.NetIncomeVolatility = contracts.FloatFrom(sd / math.Abs(mean))
	f.Confidences[FactorNetIncomeVolatility] = float64(len(incomes)) / historyYears
}

// revenueGrowth computes the annualized revenue growth over up to three
// prior years: (rev_T / rev_T-k)^(1/k) - 1 with k the available prior years.
func (c *FundamentalCalculator) revenueGrowth(f *FundamentalFactors, annuals []*contracts.Fundamental) {
	f.Confidences[FactorRevenueGrowth3Y] = 0
	if len(annuals) < c.minPeriods {
		return
	}

	k := len(annuals) - 1
	if k > historyYears {
		k = historyYears
	}
	if k < 1 {
		return
	}

	current := annuals[0].Revenue
	base := annuals[k].Revenue
	if current <= 0 || base <= 0 {
		return
	}

	growth := math.Pow(current/base, 1/float64(k)) - 1
	f.RevenueGrowth3Y = contracts.FloatFrom(growth)
	f.Confidences[FactorRevenueGrowth3Y] = float64(k) / historyYears
}

// adaptiveConfidence maps an available period count to [0, 1]: full history
// gives 1.0, fewer periods scale linearly, below minPeriods gives 0.
func adaptiveConfidence(available, minPeriods int) float64 {
	if available < minPeriods || available == 0 {
		return 0
	}
	conf := float64(available) / historyYears
	if conf > 1 {
		conf = 1
	}
	return conf
}

// meanConfidence sums over sorted keys so the overall confidence is
// bit-identical across runs.
func meanConfidence(confidences map[string]float64) float64 {
	if len(confidences) == 0 {
		return 0
	}
	keys := make([]string, 0, len(confidences))
	for k := range confidences {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	sum := 0.0
	for _, k := range keys {
		sum += confidences[k]
	}
	return sum / float64(len(confidences))
}
