package screening

import (
	"github.com/edipo-dados/quant-stock-rank-sub001/internal/contracts"
	"github.com/edipo-dados/quant-stock-rank-sub001/internal/strategyconfig"
	"github.com/edipo-dados/quant-stock-rank-sub001/pkg/logger"
)

// lossLookback is how many recent annual periods the recurring-loss rule
// inspects, and lossThreshold how many of them must be loss-making.
const (
	lossLookback  = 3
	lossThreshold = 2
)

// Filter evaluates per-ticker eligibility from raw fundamentals and raw
// volume only. It deliberately never looks at normalized factor columns:
// on a cold run those do not exist yet, and eligibility must still work.
type Filter struct {
	cfg       strategyconfig.Eligibility
	financial map[string]bool
	logger    *logger.Logger
}

// NewFilter creates an eligibility filter from strategy configuration.
func NewFilter(cfg strategyconfig.Eligibility, log *logger.Logger) *Filter {
	financial := make(map[string]bool, len(cfg.FinancialTickers))
	for _, t := range cfg.FinancialTickers {
		financial[t] = true
	}
	return &Filter{cfg: cfg, financial: financial, logger: log}
}

// Input carries the raw data the filter inspects for one ticker.
type Input struct {
	Ticker string
	// Annuals are the most recent annual fundamentals, newest first.
	Annuals []*contracts.Fundamental
	// AvgVolume90D is the 90-day average daily volume; missing when no
	// price history exists.
	AvgVolume90D contracts.Float
}

// Evaluate returns pass/fail plus every exclusion reason that applies.
// An ineligible ticker always has at least one reason.
func (f *Filter) Evaluate(in Input) (bool, []contracts.ExclusionReason) {
	var reasons []contracts.ExclusionReason

	if len(in.Annuals) == 0 {
		reasons = append(reasons, contracts.ReasonInsufficientData)
		return false, reasons
	}

	latest := in.Annuals[0]

	if latest.ShareholdersEquity <= 0 {
		reasons = append(reasons, contracts.ReasonNonPositiveEquity)
	}
	if latest.Revenue <= 0 {
		reasons = append(reasons, contracts.ReasonNegativeRevenue)
	}
	if latest.EBITDA <= 0 && !f.financial[in.Ticker] {
		reasons = append(reasons, contracts.ReasonNonPositiveEBITDA)
	}
	if f.recurringLoss(in.Annuals) {
		reasons = append(reasons, contracts.ReasonRecurringLoss)
	}
	// Leverage check is skipped when EBITDA is non-positive; the EBITDA
	// rule above already covers that case.
	if latest.EBITDA > 0 && latest.NetDebt()/latest.EBITDA > f.cfg.MaxNetDebtToEBITDA {
		reasons = append(reasons, contracts.ReasonExcessiveLeverage)
	}
	if !in.AvgVolume90D.Valid || in.AvgVolume90D.Float64 < f.cfg.MinimumVolume {
		reasons = append(reasons, contracts.ReasonLowLiquidity)
	}

	passed := len(reasons) == 0
	if !passed {
		f.logger.WithFields(map[string]interface{}{
			"ticker":  in.Ticker,
			"reasons": contracts.ReasonStrings(reasons),
		}).Debug("Ticker failed eligibility")
	}

	return passed, reasons
}

// recurringLoss reports whether net income was negative in at least two of
// the most recent three annual periods.
func (f *Filter) recurringLoss(annuals []*contracts.Fundamental) bool {
	losses := 0
	for i, a := range annuals {
		if i == lossLookback {
			break
		}
		if a.NetIncome < 0 {
			losses++
		}
	}
	return losses >= lossThreshold
}
