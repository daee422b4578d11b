package strategyconfig

// Config is the immutable strategy configuration for the ranking engine.
// It is loaded once at startup, validated, and passed by value through the
// pipeline; nothing mutates it after construction.
type Config struct {
	Meta        Meta        `yaml:"meta" json:"meta"`
	Weights     Weights     `yaml:"weights" json:"weights"`
	Size        Size        `yaml:"size" json:"size"`
	Smoothing   Smoothing   `yaml:"smoothing" json:"smoothing"`
	Eligibility Eligibility `yaml:"eligibility" json:"eligibility"`
	Penalties   Penalties   `yaml:"penalties" json:"penalties"`
	Confidence  Confidence  `yaml:"confidence" json:"confidence"`
}

// Meta identifies the strategy for run audit.
type Meta struct {
	StrategyID string `yaml:"strategy_id" json:"strategy_id"`
	Version    string `yaml:"version" json:"version"`
}

// Weights are the category weights for base score aggregation.
// They must sum to 1.0 within 0.01.
type Weights struct {
	Momentum float64 `yaml:"momentum_weight" json:"momentum_weight"`
	Quality  float64 `yaml:"quality_weight" json:"quality_weight"`
	Value    float64 `yaml:"value_weight" json:"value_weight"`
	Size     float64 `yaml:"size_weight" json:"size_weight"`
}

// Sum returns the sum of all category weights.
func (w Weights) Sum() float64 {
	return w.Momentum + w.Quality + w.Value + w.Size
}

// Size controls whether the size factor participates in aggregation.
// Disabled by default; size_weight is ignored while disabled.
type Size struct {
	Enabled bool `yaml:"enabled" json:"enabled"`
}

// Smoothing configures the temporal smoother.
type Smoothing struct {
	Alpha        float64 `yaml:"alpha" json:"alpha"`
	LookbackDays int     `yaml:"lookback_days" json:"lookback_days"`
}

// Eligibility configures the eligibility filter thresholds.
type Eligibility struct {
	MinimumVolume      float64  `yaml:"minimum_volume" json:"minimum_volume"`
	MaxNetDebtToEBITDA float64  `yaml:"max_net_debt_to_ebitda" json:"max_net_debt_to_ebitda"`
	FinancialTickers   []string `yaml:"financial_tickers" json:"financial_tickers"`
}

// Penalties configures the risk penalty applier.
type Penalties struct {
	Volatility PenaltyShape `yaml:"volatility" json:"volatility"`
	Drawdown   PenaltyShape `yaml:"drawdown" json:"drawdown"`
	Distress   Distress     `yaml:"distress" json:"distress"`
}

// PenaltyShape is a piecewise-linear penalty: 1.0 at or below Soft,
// decaying linearly to Floor at Hard.
type PenaltyShape struct {
	Soft  float64 `yaml:"soft" json:"soft"`
	Hard  float64 `yaml:"hard" json:"hard"`
	Floor float64 `yaml:"floor" json:"floor"`
}

// Distress configures the distress penalty: when net debt to EBITDA exceeds
// NetDebtToEBITDA and the latest net margin is negative, the score is cut
// by the Cut factor.
type Distress struct {
	Cut             float64 `yaml:"cut" json:"cut"`
	NetDebtToEBITDA float64 `yaml:"net_debt_to_ebitda" json:"net_debt_to_ebitda"`
}

// Confidence configures adaptive-history confidence.
type Confidence struct {
	MinimumPeriods int `yaml:"minimum_periods" json:"minimum_periods"`
}

// Default returns the default strategy configuration.
func Default() *Config {
	return &Config{
		Meta: Meta{
			StrategyID: "equity_rank_v1",
			Version:    "1.0",
		},
		Weights: Weights{
			Momentum: 0.40,
			Quality:  0.30,
			Value:    0.30,
			Size:     0.00,
		},
		Size: Size{Enabled: false},
		Smoothing: Smoothing{
			Alpha:        0.7,
			LookbackDays: 30,
		},
		Eligibility: Eligibility{
			MinimumVolume:      100_000,
			MaxNetDebtToEBITDA: 8.0,
			FinancialTickers:   []string{},
		},
		Penalties: Penalties{
			Volatility: PenaltyShape{Soft: 0.40, Hard: 0.80, Floor: 0.5},
			Drawdown:   PenaltyShape{Soft: 0.20, Hard: 0.50, Floor: 0.5},
			Distress:   Distress{Cut: 0.5, NetDebtToEBITDA: 10.0},
		},
		Confidence: Confidence{MinimumPeriods: 2},
	}
}
