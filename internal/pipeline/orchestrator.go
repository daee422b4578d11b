package pipeline

import (
	"context"
	"fmt"
	"math"
	"sort"
	"time"

	"github.com/edipo-dados/quant-stock-rank-sub001/internal/contracts"
	"github.com/edipo-dados/quant-stock-rank-sub001/internal/factors"
	"github.com/edipo-dados/quant-stock-rank-sub001/internal/screening"
	"github.com/edipo-dados/quant-stock-rank-sub001/internal/scoring"
	"github.com/edipo-dados/quant-stock-rank-sub001/internal/strategyconfig"
	"github.com/edipo-dados/quant-stock-rank-sub001/pkg/logger"
)

// priceLookbackCalendarDays is the calendar window loaded per ticker; wide
// enough to always cover 252 trading days plus the RSI warmup.
const priceLookbackCalendarDays = 550

// volumeWindowDays is the trading-day window for the liquidity average.
const volumeWindowDays = 90

// Invalidator drops cached read-API payloads after a successful commit.
// It receives the committed universe so per-ticker keys are dropped too.
type Invalidator interface {
	InvalidateDate(ctx context.Context, date time.Time, tickers []string) error
}

// RunRecorder persists an audit row for each completed run.
type RunRecorder interface {
	RecordRun(ctx context.Context, result *RunResult) error
}

// Orchestrator runs the factor-to-score pipeline for one target date:
// raw data -> factor calculators -> cross-sectional normalizer -> feature
// rows -> eligibility -> scoring -> penalties -> smoothing -> ranking ->
// one atomic snapshot write. Re-running a date yields identical rows.
type Orchestrator struct {
	strategy *strategyconfig.Config

	momentum    *factors.MomentumCalculator
	fundamental *factors.FundamentalCalculator
	filter      *screening.Filter
	engine      *scoring.Engine
	penalties   *scoring.PenaltyApplier
	smoother    *scoring.Smoother
	ranker      *scoring.Ranker

	prices       contracts.PriceRepository
	fundamentals contracts.FundamentalRepository
	snapshots    contracts.SnapshotWriter
	invalidator  Invalidator
	recorder     RunRecorder

	configHash string
	logger     *logger.Logger
}

// New creates an orchestrator. The strategy configuration is validated here
// once; an invalid configuration is fatal and nothing will ever be written.
func New(
	strategy *strategyconfig.Config,
	prices contracts.PriceRepository,
	fundamentals contracts.FundamentalRepository,
	scores contracts.ScoreRepository,
	snapshots contracts.SnapshotWriter,
	log *logger.Logger,
) (*Orchestrator, error) {
	if err := strategyconfig.Validate(strategy); err != nil {
		return nil, fmt.Errorf("strategy config invalid: %w", err)
	}

	engine, err := scoring.NewEngine(strategy.Weights, strategy.Size.Enabled, log)
	if err != nil {
		return nil, fmt.Errorf("scoring engine: %w", err)
	}

	hash, err := strategyconfig.Hash(strategy)
	if err != nil {
		return nil, fmt.Errorf("hash strategy config: %w", err)
	}

	return &Orchestrator{
		strategy:     strategy,
		momentum:     factors.NewMomentumCalculator(log),
		fundamental:  factors.NewFundamentalCalculator(strategy.Confidence.MinimumPeriods, log),
		filter:       screening.NewFilter(strategy.Eligibility, log),
		engine:       engine,
		penalties:    scoring.NewPenaltyApplier(strategy.Penalties, log),
		smoother:     scoring.NewSmoother(strategy.Smoothing, scores, log),
		ranker:       scoring.NewRanker(log),
		prices:       prices,
		fundamentals: fundamentals,
		snapshots:    snapshots,
		configHash:   hash,
		logger:       log,
	}, nil
}

// SetInvalidator wires an optional cache invalidator called after each
// successful commit.
func (o *Orchestrator) SetInvalidator(inv Invalidator) {
	o.invalidator = inv
}

// SetRunRecorder wires an optional run audit recorder. Audit failures are
// logged, never fatal: the snapshot has already committed.
func (o *Orchestrator) SetRunRecorder(rec RunRecorder) {
	o.recorder = rec
}

// RunResult summarizes one per-date run.
type RunResult struct {
	Date       time.Time
	ConfigHash string
	Tickers    int
	Eligible   int
	Excluded   map[contracts.ExclusionReason]int
	Duration   time.Duration
}

// tickerData is the per-ticker working set assembled before normalization.
type tickerData struct {
	ticker    string
	bars      []*contracts.PriceBar
	annuals   []*contracts.Fundamental
	momentum  factors.MomentumFactors
	fund      factors.FundamentalFactors
	avgVolume contracts.Float
}

// RunDate runs the full pipeline for one target date and commits the
// snapshot atomically. Per-ticker and per-factor problems are contained as
// missing values or exclusion reasons; only configuration, upstream and
// persistence failures abort the run.
func (o *Orchestrator) RunDate(ctx context.Context, date time.Time) (*RunResult, error) {
	start := time.Now()
	date = time.Date(date.Year(), date.Month(), date.Day(), 0, 0, 0, 0, time.UTC)

	log := o.logger.WithFields(map[string]interface{}{
		"date":        date.Format("2006-01-02"),
		"config_hash": o.configHash[:12],
	})
	log.Info("Starting per-date scoring run")

	tickers, err := o.prices.ListTickers(ctx)
	if err != nil {
		return nil, fmt.Errorf("list tickers: %w", err)
	}
	sort.Strings(tickers)

	universe := make([]*tickerData, 0, len(tickers))
	for _, ticker := range tickers {
		td, err := o.loadTicker(ctx, ticker, date)
		if err != nil {
			return nil, err
		}
		universe = append(universe, td)
	}

	daily, monthly := o.buildFeatures(universe, date)
	normDaily := normalizeDaily(universe)
	normMonthly := normalizeMonthly(universe)
	applyNormalized(daily, normDaily)
	applyNormalizedMonthly(monthly, normMonthly)

	scores, excluded, err := o.scoreUniverse(ctx, universe, date, normDaily, normMonthly, monthly)
	if err != nil {
		return nil, err
	}

	o.ranker.Rank(scores)

	snapshot := &contracts.DateSnapshot{
		Date:    date,
		Daily:   daily,
		Monthly: monthly,
		Scores:  scores,
	}
	if err := o.snapshots.SaveSnapshot(ctx, snapshot); err != nil {
		return nil, fmt.Errorf("save snapshot for %s: %w", date.Format("2006-01-02"), err)
	}

	if o.invalidator != nil {
		if err := o.invalidator.InvalidateDate(ctx, date, tickers); err != nil {
			log.WithError(err).Warn("Cache invalidation failed after commit")
		}
	}

	eligible := 0
	for _, s := range scores {
		if s.PassedEligibility {
			eligible++
		}
	}

	result := &RunResult{
		Date:       date,
		ConfigHash: o.configHash,
		Tickers:    len(universe),
		Eligible:   eligible,
		Excluded:   excluded,
		Duration:   time.Since(start),
	}

	if o.recorder != nil {
		if err := o.recorder.RecordRun(ctx, result); err != nil {
			log.WithError(err).Warn("Run audit failed after commit")
		}
	}

	log.WithFields(map[string]interface{}{
		"tickers":  result.Tickers,
		"eligible": result.Eligible,
		"excluded": len(scores) - eligible,
		"duration": result.Duration.String(),
	}).Info("Per-date scoring run completed")

	return result, nil
}

// RunRange runs the orchestrator for every weekday in [from, to], stopping
// at the first fatal error. Each date commits on its own.
func (o *Orchestrator) RunRange(ctx context.Context, from, to time.Time) ([]*RunResult, error) {
	var results []*RunResult
	for d := from; !d.After(to); d = d.AddDate(0, 0, 1) {
		if wd := d.Weekday(); wd == time.Saturday || wd == time.Sunday {
			continue
		}
		res, err := o.RunDate(ctx, d)
		if err != nil {
			return results, err
		}
		results = append(results, res)
	}
	return results, nil
}

// loadTicker fetches raw inputs and computes raw factors for one ticker.
// Repository errors are fatal (upstream failure); empty results are not.
func (o *Orchestrator) loadTicker(ctx context.Context, ticker string, date time.Time) (*tickerData, error) {
	from := date.AddDate(0, 0, -priceLookbackCalendarDays)
	bars, err := o.prices.GetSeries(ctx, ticker, from, date)
	if err != nil {
		return nil, fmt.Errorf("load prices for %s: %w", ticker, err)
	}

	annuals, err := o.fundamentals.GetAnnual(ctx, ticker, date, 5)
	if err != nil {
		return nil, fmt.Errorf("load fundamentals for %s: %w", ticker, err)
	}

	td := &tickerData{
		ticker:  ticker,
		bars:    bars,
		annuals: annuals,
	}
	td.momentum = o.momentum.Calculate(ticker, bars)
	td.fund = o.fundamental.Calculate(ticker, annuals)
	td.avgVolume = averageVolume(bars, volumeWindowDays)
	return td, nil
}

// buildFeatures creates the un-normalized feature row skeletons. A monthly
// row exists only when at least one factor has nonzero confidence.
func (o *Orchestrator) buildFeatures(universe []*tickerData, date time.Time) ([]*contracts.FeatureDaily, []*contracts.FeatureMonthly) {
	month := contracts.FirstOfMonth(date)

	daily := make([]*contracts.FeatureDaily, 0, len(universe))
	monthly := make([]*contracts.FeatureMonthly, 0, len(universe))

	for _, td := range universe {
		if len(td.bars) > 0 {
			daily = append(daily, &contracts.FeatureDaily{Ticker: td.ticker, Date: date})
		}
		if hasNonzeroConfidence(td.fund.Confidences) {
			monthly = append(monthly, &contracts.FeatureMonthly{
				Ticker:            td.ticker,
				Month:             month,
				Confidences:       td.fund.Confidences,
				OverallConfidence: td.fund.OverallConfidence,
			})
		}
	}
	return daily, monthly
}

// scoreUniverse builds the ScoreDaily rows for every ticker, eligible or not.
func (o *Orchestrator) scoreUniverse(
	ctx context.Context,
	universe []*tickerData,
	date time.Time,
	normDaily map[string]map[string]contracts.Float,
	normMonthly map[string]map[string]contracts.Float,
	monthly []*contracts.FeatureMonthly,
) ([]*contracts.ScoreDaily, map[contracts.ExclusionReason]int, error) {
	overall := make(map[string]contracts.Float, len(monthly))
	for _, m := range monthly {
		overall[m.Ticker] = contracts.FloatFrom(m.OverallConfidence)
	}

	scores := make([]*contracts.ScoreDaily, 0, len(universe))
	excluded := make(map[contracts.ExclusionReason]int)

	for _, td := range universe {
		row := &contracts.ScoreDaily{
			Ticker:        td.ticker,
			Date:          date,
			RiskPenalties: map[string]float64{},
		}

		passed, reasons := o.filter.Evaluate(screening.Input{
			Ticker:       td.ticker,
			Annuals:      td.annuals,
			AvgVolume90D: td.avgVolume,
		})
		if len(td.bars) == 0 && !containsReason(reasons, contracts.ReasonInsufficientData) {
			passed = false
			reasons = append(reasons, contracts.ReasonInsufficientData)
		}

		row.PassedEligibility = passed
		row.ExclusionReasons = reasons

		if passed {
			if err := o.scoreTicker(ctx, td, date, normDaily, normMonthly, overall, row); err != nil {
				return nil, nil, err
			}
		}
		if !row.PassedEligibility {
			for _, r := range row.ExclusionReasons {
				excluded[r]++
			}
		}

		scores = append(scores, row)
	}

	return scores, excluded, nil
}

// scoreTicker fills the scoring columns of one eligible row. A non-finite
// final score demotes the ticker to ineligible rather than persisting a
// NaN; that is the explicit policy for numeric failures at assembly time.
func (o *Orchestrator) scoreTicker(
	ctx context.Context,
	td *tickerData,
	date time.Time,
	normDaily map[string]map[string]contracts.Float,
	normMonthly map[string]map[string]contracts.Float,
	overall map[string]contracts.Float,
	row *contracts.ScoreDaily,
) error {
	in := scoring.Inputs{
		Momentum6MEx1M:    normDaily[colMomentum6MEx1M][td.ticker],
		Momentum12MEx1M:   normDaily[colMomentum12MEx1M][td.ticker],
		Volatility90D:     normDaily[colVolatility90D][td.ticker],
		RecentDrawdown:    normDaily[colRecentDrawdown][td.ticker],
		ROEMean3Y:         normMonthly[factors.FactorROEMean3Y][td.ticker],
		NetMargin:         normMonthly[factors.FactorNetMargin][td.ticker],
		RevenueGrowth3Y:   normMonthly[factors.FactorRevenueGrowth3Y][td.ticker],
		DebtToEBITDA:      normMonthly[factors.FactorDebtToEBITDA][td.ticker],
		PERatio:           normMonthly[factors.FactorPERatio][td.ticker],
		EVEBITDA:          normMonthly[factors.FactorEVEBITDA][td.ticker],
		PriceToBook:       normMonthly[factors.FactorPriceToBook][td.ticker],
		FCFYield:          normMonthly[factors.FactorFCFYield][td.ticker],
		SizeFactor:        normMonthly[factors.FactorSizeFactor][td.ticker],
		OverallConfidence: overall[td.ticker],
	}

	result := o.engine.Score(in)

	penalty := o.penalties.Apply(scoring.PenaltyInput{
		Volatility90D:  td.momentum.Volatility90D,
		RecentDrawdown: td.momentum.RecentDrawdown,
		Distress:       o.distressed(td),
	})

	final := result.BaseScore * penalty.Factor
	smoothed, err := o.smoother.Smooth(ctx, td.ticker, date, final)
	if err != nil {
		return err
	}

	if !isFinite(result.BaseScore) || !isFinite(final) || !isFinite(smoothed) {
		o.logger.WithField("ticker", td.ticker).Warn("Non-finite score; marking ticker ineligible")
		row.PassedEligibility = false
		row.ExclusionReasons = append(row.ExclusionReasons, contracts.ReasonInsufficientData)
		return nil
	}

	row.MomentumScore = result.MomentumScore
	row.QualityScore = result.QualityScore
	row.ValueScore = result.ValueScore
	row.Confidence = contracts.FloatFrom(result.Confidence)
	row.BaseScore = contracts.FloatFrom(result.BaseScore)
	row.RiskPenaltyFactor = contracts.FloatFrom(penalty.Factor)
	row.RiskPenalties = penalty.Components
	row.FinalScore = contracts.FloatFrom(final)
	row.FinalScoreSmoothed = contracts.FloatFrom(smoothed)
	return nil
}

// distressed flags a ticker whose leverage is very high while its latest
// net margin is negative.
func (o *Orchestrator) distressed(td *tickerData) bool {
	if len(td.annuals) == 0 {
		return false
	}
	latest := td.annuals[0]
	if latest.EBITDA <= 0 || latest.Revenue <= 0 {
		return false
	}
	leverage := latest.NetDebt() / latest.EBITDA
	margin := latest.NetIncome / latest.Revenue
	return leverage > o.strategy.Penalties.Distress.NetDebtToEBITDA && margin < 0
}

func averageVolume(bars []*contracts.PriceBar, window int) contracts.Float {
	if len(bars) == 0 {
		return contracts.Missing()
	}
	if len(bars) > window {
		bars = bars[len(bars)-window:]
	}
	var sum int64
	for _, b := range bars {
		sum += b.Volume
	}
	return contracts.FloatFrom(float64(sum) / float64(len(bars)))
}

func hasNonzeroConfidence(confidences map[string]float64) bool {
	for _, c := range confidences {
		if c > 0 {
			return true
		}
	}
	return false
}

func containsReason(reasons []contracts.ExclusionReason, want contracts.ExclusionReason) bool {
	for _, r := range reasons {
		if r == want {
			return true
		}
	}
	return false
}

func isFinite(v float64) bool {
	return !math.IsNaN(v) && !math.IsInf(v, 0)
}
