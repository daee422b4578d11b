package strategyconfig

import (
	"fmt"
	"math"
)

// WeightTolerance is the allowed deviation of the category weight sum from 1.0.
const WeightTolerance = 0.01

// ValidationError is a fatal configuration error. No per-date run may start,
// and no rows may be written, while the configuration is invalid.
type ValidationError struct {
	Field   string
	Message string
}

func (e ValidationError) Error() string {
	return fmt.Sprintf("%s: %s", e.Field, e.Message)
}

// Validate checks all required constraints. It runs once at startup.
func Validate(cfg *Config) error {
	if cfg.Meta.StrategyID == "" {
		return ValidationError{"meta.strategy_id", "required"}
	}

	// Weights
	for field, v := range map[string]float64{
		"weights.momentum_weight": cfg.Weights.Momentum,
		"weights.quality_weight":  cfg.Weights.Quality,
		"weights.value_weight":    cfg.Weights.Value,
		"weights.size_weight":     cfg.Weights.Size,
	} {
		if err := validateFinite(v, field); err != nil {
			return err
		}
		if v < 0 {
			return ValidationError{field, "must be >= 0"}
		}
	}
	if sum := cfg.Weights.Sum(); math.Abs(sum-1.0) > WeightTolerance {
		return ValidationError{"weights", fmt.Sprintf("must sum to 1.0 +- %.2f, got %.4f", WeightTolerance, sum)}
	}
	if !cfg.Size.Enabled && cfg.Weights.Size != 0 {
		return ValidationError{"weights.size_weight", "must be 0 while size.enabled is false"}
	}

	// Smoothing
	if err := validateFinite(cfg.Smoothing.Alpha, "smoothing.alpha"); err != nil {
		return err
	}
	if cfg.Smoothing.Alpha < 0 || cfg.Smoothing.Alpha > 1 {
		return ValidationError{"smoothing.alpha", "must be in [0, 1]"}
	}
	if cfg.Smoothing.LookbackDays <= 0 {
		return ValidationError{"smoothing.lookback_days", "must be > 0"}
	}

	// Eligibility
	if err := validateFinite(cfg.Eligibility.MinimumVolume, "eligibility.minimum_volume"); err != nil {
		return err
	}
	if cfg.Eligibility.MinimumVolume < 0 {
		return ValidationError{"eligibility.minimum_volume", "must be >= 0"}
	}
	if cfg.Eligibility.MaxNetDebtToEBITDA <= 0 {
		return ValidationError{"eligibility.max_net_debt_to_ebitda", "must be > 0"}
	}

	// Penalties
	if err := validateShape(cfg.Penalties.Volatility, "penalties.volatility"); err != nil {
		return err
	}
	if err := validateShape(cfg.Penalties.Drawdown, "penalties.drawdown"); err != nil {
		return err
	}
	if cfg.Penalties.Distress.Cut <= 0 || cfg.Penalties.Distress.Cut > 1 {
		return ValidationError{"penalties.distress.cut", "must be in (0, 1]"}
	}
	if cfg.Penalties.Distress.NetDebtToEBITDA <= 0 {
		return ValidationError{"penalties.distress.net_debt_to_ebitda", "must be > 0"}
	}

	// Confidence
	if cfg.Confidence.MinimumPeriods < 1 {
		return ValidationError{"confidence.minimum_periods", "must be >= 1"}
	}

	return nil
}

func validateShape(s PenaltyShape, field string) error {
	for suffix, v := range map[string]float64{
		".soft":  s.Soft,
		".hard":  s.Hard,
		".floor": s.Floor,
	} {
		if err := validateFinite(v, field+suffix); err != nil {
			return err
		}
	}
	if s.Soft < 0 {
		return ValidationError{field + ".soft", "must be >= 0"}
	}
	if s.Hard <= s.Soft {
		return ValidationError{field + ".hard", "must be > soft"}
	}
	if s.Floor <= 0 || s.Floor > 1 {
		return ValidationError{field + ".floor", "must be in (0, 1]"}
	}
	return nil
}

func validateFinite(v float64, field string) error {
	if math.IsNaN(v) || math.IsInf(v, 0) {
		return ValidationError{field, "must be finite"}
	}
	return nil
}
