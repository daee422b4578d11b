package scoring

import (
	"github.com/edipo-dados/quant-stock-rank-sub001/internal/contracts"
	"github.com/edipo-dados/quant-stock-rank-sub001/internal/strategyconfig"
	"github.com/edipo-dados/quant-stock-rank-sub001/pkg/logger"
)

// subScoreCount is the number of category sub-scores the coverage factor
// is measured against (momentum, quality, value).
const subScoreCount = 3

// Engine combines normalized factors into category sub-scores and a
// confidence-weighted base score. It only sees eligible tickers.
type Engine struct {
	weights     strategyconfig.Weights
	sizeEnabled bool
	logger      *logger.Logger
}

// NewEngine creates a scoring engine. The weights must already be validated
// (sum to 1.0 within tolerance); NewEngine re-checks and returns a
// configuration error otherwise so a misconfigured engine can never score.
func NewEngine(weights strategyconfig.Weights, sizeEnabled bool, log *logger.Logger) (*Engine, error) {
	cfg := strategyconfig.Default()
	cfg.Weights = weights
	cfg.Size.Enabled = sizeEnabled
	if err := strategyconfig.Validate(cfg); err != nil {
		return nil, err
	}
	return &Engine{weights: weights, sizeEnabled: sizeEnabled, logger: log}, nil
}

// Inputs are the normalized factor values for one (ticker, date).
// Factors with lower-is-better semantics (volatility, drawdown, pe, ev/ebitda,
// price-to-book, debt/ebitda) are subtracted inside the category means here,
// not sign-flipped upstream.
type Inputs struct {
	// Momentum (daily, normalized)
	Momentum6MEx1M  contracts.Float
	Momentum12MEx1M contracts.Float
	Volatility90D   contracts.Float
	RecentDrawdown  contracts.Float

	// Quality (monthly, normalized)
	ROEMean3Y       contracts.Float
	NetMargin       contracts.Float
	RevenueGrowth3Y contracts.Float
	DebtToEBITDA    contracts.Float

	// Value (monthly, normalized)
	PERatio     contracts.Float
	EVEBITDA    contracts.Float
	PriceToBook contracts.Float
	FCFYield    contracts.Float

	// Size (monthly, normalized; participates only when enabled)
	SizeFactor contracts.Float

	// OverallConfidence from the monthly feature row; missing when no
	// monthly row exists for the ticker.
	OverallConfidence contracts.Float
}

// Result is the engine output for one ticker.
type Result struct {
	MomentumScore contracts.Float
	QualityScore  contracts.Float
	ValueScore    contracts.Float
	SizeScore     contracts.Float
	Confidence    float64
	BaseScore     float64
}

// Score computes sub-scores, confidence and the weighted base score.
// A missing sub-score contributes nothing: its weight is removed and the
// remaining weights are renormalized to sum to 1.
func (e *Engine) Score(in Inputs) Result {
	r := Result{}

	r.MomentumScore = contracts.MeanPresent(
		in.Momentum6MEx1M,
		in.Momentum12MEx1M,
		in.Volatility90D.Neg(),
		in.RecentDrawdown.Neg(),
	)
	r.QualityScore = contracts.MeanPresent(
		in.ROEMean3Y,
		in.NetMargin,
		in.RevenueGrowth3Y,
		in.DebtToEBITDA.Neg(),
	)
	r.ValueScore = contracts.MeanPresent(
		in.PERatio.Neg(),
		in.EVEBITDA.Neg(),
		in.PriceToBook.Neg(),
		in.FCFYield,
	)
	if e.sizeEnabled {
		r.SizeScore = in.SizeFactor
	}

	r.Confidence = e.confidence(in, r)
	r.BaseScore = e.baseScore(r)

	return r
}

// confidence combines the monthly overall confidence with the sub-score
// coverage factor, clipped to [0, 1].
func (e *Engine) confidence(in Inputs, r Result) float64 {
	present := 0
	for _, s := range []contracts.Float{r.MomentumScore, r.QualityScore, r.ValueScore} {
		if s.Valid {
			present++
		}
	}
	coverage := float64(present) / subScoreCount

	conf := coverage
	if in.OverallConfidence.Valid {
		conf = in.OverallConfidence.Float64 * coverage
	}

	if conf < 0 {
		conf = 0
	}
	if conf > 1 {
		conf = 1
	}
	return conf
}

// baseScore is the category-weighted sum over the present sub-scores with
// the present weights renormalized to 1. All sub-scores missing gives 0.
func (e *Engine) baseScore(r Result) float64 {
	type weighted struct {
		score  contracts.Float
		weight float64
	}
	parts := []weighted{
		{r.MomentumScore, e.weights.Momentum},
		{r.QualityScore, e.weights.Quality},
		{r.ValueScore, e.weights.Value},
	}
	if e.sizeEnabled {
		parts = append(parts, weighted{r.SizeScore, e.weights.Size})
	}

	totalWeight := 0.0
	for _, p := range parts {
		if p.score.Valid {
			totalWeight += p.weight
		}
	}
	if totalWeight == 0 {
		return 0
	}

	base := 0.0
	for _, p := range parts {
		if p.score.Valid {
			base += p.score.Float64 * (p.weight / totalWeight)
		}
	}
	return base
}
