package scoring

import (
	"math"

	"github.com/edipo-dados/quant-stock-rank-sub001/internal/contracts"
	"github.com/edipo-dados/quant-stock-rank-sub001/internal/strategyconfig"
	"github.com/edipo-dados/quant-stock-rank-sub001/pkg/logger"
)

// Penalty component names, exported with the factor so downstream can audit.
const (
	PenaltyVolatility = "volatility_penalty"
	PenaltyDrawdown   = "drawdown_penalty"
	PenaltyDistress   = "distress_penalty"
)

// PenaltyApplier derives a multiplicative risk penalty factor in (0, 1]
// from raw (pre-normalization) volatility, drawdown and distress flags.
type PenaltyApplier struct {
	cfg    strategyconfig.Penalties
	logger *logger.Logger
}

// NewPenaltyApplier creates a penalty applier from strategy configuration.
func NewPenaltyApplier(cfg strategyconfig.Penalties, log *logger.Logger) *PenaltyApplier {
	return &PenaltyApplier{cfg: cfg, logger: log}
}

// PenaltyInput carries the raw risk signals for one ticker.
type PenaltyInput struct {
	// Volatility90D is the raw annualized volatility.
	Volatility90D contracts.Float
	// RecentDrawdown is the raw drawdown, <= 0.
	RecentDrawdown contracts.Float
	// Distress is set when leverage is very high and margin negative.
	Distress bool
}

// PenaltyResult is the product of the component factors plus the per
// component breakdown.
type PenaltyResult struct {
	Factor     float64
	Components map[string]float64
}

// Apply computes the penalty factor. A missing risk signal imposes no
// penalty (component 1.0); missing data already reduces confidence
// elsewhere and must not be punished twice.
func (p *PenaltyApplier) Apply(in PenaltyInput) PenaltyResult {
	components := map[string]float64{
		PenaltyVolatility: 1.0,
		PenaltyDrawdown:   1.0,
		PenaltyDistress:   1.0,
	}

	if in.Volatility90D.Valid {
		components[PenaltyVolatility] = piecewise(in.Volatility90D.Float64, p.cfg.Volatility)
	}
	if in.RecentDrawdown.Valid {
		components[PenaltyDrawdown] = piecewise(math.Abs(in.RecentDrawdown.Float64), p.cfg.Drawdown)
	}
	if in.Distress {
		components[PenaltyDistress] = p.cfg.Distress.Cut
	}

	factor := 1.0
	for _, c := range components {
		factor *= c
	}

	return PenaltyResult{Factor: factor, Components: components}
}

// piecewise is 1.0 at or below soft, floor at or above hard, and linear in
// between. The result is always in (0, 1].
func piecewise(v float64, shape strategyconfig.PenaltyShape) float64 {
	if v <= shape.Soft {
		return 1.0
	}
	if v >= shape.Hard {
		return shape.Floor
	}
	frac := (v - shape.Soft) / (shape.Hard - shape.Soft)
	return 1.0 - frac*(1.0-shape.Floor)
}
