package contracts

import "time"

// PeriodType identifies the reporting cadence of a fundamental row.
type PeriodType string

const (
	PeriodAnnual    PeriodType = "annual"
	PeriodQuarterly PeriodType = "quarterly"
)

// PriceBar represents one daily price row from the raw store.
// The raw store is read-only input; rows are immutable once persisted.
type PriceBar struct {
	Ticker   string
	Date     time.Time
	Open     float64
	High     float64
	Low      float64
	Close    float64
	AdjClose float64
	Volume   int64
}

// Fundamental represents one periodic fundamental statement row.
type Fundamental struct {
	Ticker             string
	PeriodEnd          time.Time
	PeriodType         PeriodType
	Revenue            float64
	NetIncome          float64
	EBITDA             float64
	TotalAssets        float64
	TotalDebt          float64
	ShareholdersEquity float64
	OperatingCashFlow  float64
	FreeCashFlow       float64
	MarketCap          float64
	EnterpriseValue    float64
}

// NetDebt estimates net debt for leverage checks. Enterprise value minus
// market cap is preferred when both are reported; total debt is the fallback.
func (f *Fundamental) NetDebt() float64 {
	if f.EnterpriseValue > 0 && f.MarketCap > 0 {
		return f.EnterpriseValue - f.MarketCap
	}
	return f.TotalDebt
}

// FeatureDaily holds the cross-sectionally normalized momentum factors for
// one (ticker, date). Overwritten on recompute.
type FeatureDaily struct {
	Ticker          string
	Date            time.Time
	Return1M        Float
	Momentum6MEx1M  Float
	Momentum12MEx1M Float
	RSI14           Float
	Volatility90D   Float
	RecentDrawdown  Float
}

// FeatureMonthly holds the normalized fundamental factors for one
// (ticker, first-of-month), plus per-factor confidence values.
type FeatureMonthly struct {
	Ticker            string
	Month             time.Time
	ROE               Float
	ROEMean3Y         Float
	NetMargin         Float
	RevenueGrowth3Y   Float
	DebtToEBITDA      Float
	PERatio           Float
	EVEBITDA          Float
	PriceToBook       Float
	FCFYield          Float
	SizeFactor        Float
	Confidences       map[string]float64
	OverallConfidence float64
}

// FirstOfMonth truncates a date to the first day of its month (UTC midnight).
func FirstOfMonth(date time.Time) time.Time {
	return time.Date(date.Year(), date.Month(), 1, 0, 0, 0, 0, time.UTC)
}

// ScoreDaily is the authoritative scoring row for one (ticker, date).
// Every field is derived; the score store is exclusively owned by the
// scoring pipeline and overwritten on recompute.
type ScoreDaily struct {
	Ticker             string
	Date               time.Time
	FinalScore         Float
	FinalScoreSmoothed Float
	BaseScore          Float
	MomentumScore      Float
	QualityScore       Float
	ValueScore         Float
	Confidence         Float
	RiskPenaltyFactor  Float
	PassedEligibility  bool
	ExclusionReasons   []ExclusionReason
	RiskPenalties      map[string]float64
	Rank               *int
}

// DateSnapshot bundles every row the pipeline produced for one target date.
// A snapshot writer must persist it atomically: either all rows for the date
// commit or none do.
type DateSnapshot struct {
	Date    time.Time
	Daily   []*FeatureDaily
	Monthly []*FeatureMonthly
	Scores  []*ScoreDaily
}
