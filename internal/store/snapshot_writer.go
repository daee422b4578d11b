package store

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/edipo-dados/quant-stock-rank-sub001/internal/contracts"
)

// lockNamespace separates the per-date advisory lock keys from any other
// advisory lock users of the same database.
const lockNamespace = 0x5c02e

// SnapshotWriter implements contracts.SnapshotWriter: all rows for one date
// commit in a single transaction guarded by an advisory lock keyed on the
// date, so overlapping runs for the same date serialize and readers never
// observe a partial per-date state.
type SnapshotWriter struct {
	pool *pgxpool.Pool
}

// NewSnapshotWriter creates a new snapshot writer.
func NewSnapshotWriter(pool *pgxpool.Pool) *SnapshotWriter {
	return &SnapshotWriter{pool: pool}
}

// SaveSnapshot persists the snapshot atomically. Existing rows for the date
// are overwritten, which makes the per-date run idempotent.
func (w *SnapshotWriter) SaveSnapshot(ctx context.Context, snapshot *contracts.DateSnapshot) error {
	tx, err := w.pool.Begin(ctx)
	if err != nil {
		return fmt.Errorf("begin transaction: %w", err)
	}
	defer tx.Rollback(ctx)

	// xact-scoped lock: released automatically on commit or rollback.
	epochDays := snapshot.Date.Unix() / 86400
	if _, err := tx.Exec(ctx, "SELECT pg_advisory_xact_lock($1, $2)", lockNamespace, epochDays); err != nil {
		return fmt.Errorf("acquire date lock: %w", err)
	}

	if err := w.saveDaily(ctx, tx, snapshot.Daily); err != nil {
		return err
	}
	if err := w.saveMonthly(ctx, tx, snapshot.Monthly); err != nil {
		return err
	}
	if err := w.saveScores(ctx, tx, snapshot.Date, snapshot.Scores); err != nil {
		return err
	}

	if err := tx.Commit(ctx); err != nil {
		return fmt.Errorf("commit snapshot: %w", err)
	}
	return nil
}

func (w *SnapshotWriter) saveDaily(ctx context.Context, tx pgx.Tx, rows []*contracts.FeatureDaily) error {
	query := `
		INSERT INTO quant.feature_daily (
			ticker, trade_date, return_1m, momentum_6m_ex_1m,
			momentum_12m_ex_1m, rsi_14, volatility_90d, recent_drawdown
		) VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
		ON CONFLICT (ticker, trade_date) DO UPDATE SET
			return_1m = EXCLUDED.return_1m,
			momentum_6m_ex_1m = EXCLUDED.momentum_6m_ex_1m,
			momentum_12m_ex_1m = EXCLUDED.momentum_12m_ex_1m,
			rsi_14 = EXCLUDED.rsi_14,
			volatility_90d = EXCLUDED.volatility_90d,
			recent_drawdown = EXCLUDED.recent_drawdown
	`

	for _, f := range rows {
		if _, err := tx.Exec(ctx, query,
			f.Ticker, f.Date,
			floatArg(f.Return1M), floatArg(f.Momentum6MEx1M),
			floatArg(f.Momentum12MEx1M), floatArg(f.RSI14),
			floatArg(f.Volatility90D), floatArg(f.RecentDrawdown),
		); err != nil {
			return fmt.Errorf("save daily feature %s: %w", f.Ticker, err)
		}
	}
	return nil
}

func (w *SnapshotWriter) saveMonthly(ctx context.Context, tx pgx.Tx, rows []*contracts.FeatureMonthly) error {
	query := `
		INSERT INTO quant.feature_monthly (
			ticker, month, roe, roe_mean_3y, net_margin, revenue_growth_3y,
			debt_to_ebitda, pe_ratio, ev_ebitda, price_to_book, fcf_yield,
			size_factor, confidences, overall_confidence
		) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14)
		ON CONFLICT (ticker, month) DO UPDATE SET
			roe = EXCLUDED.roe,
			roe_mean_3y = EXCLUDED.roe_mean_3y,
			net_margin = EXCLUDED.net_margin,
			revenue_growth_3y = EXCLUDED.revenue_growth_3y,
			debt_to_ebitda = EXCLUDED.debt_to_ebitda,
			pe_ratio = EXCLUDED.pe_ratio,
			ev_ebitda = EXCLUDED.ev_ebitda,
			price_to_book = EXCLUDED.price_to_book,
			fcf_yield = EXCLUDED.fcf_yield,
			size_factor = EXCLUDED.size_factor,
			confidences = EXCLUDED.confidences,
			overall_confidence = EXCLUDED.overall_confidence
	`

	for _, f := range rows {
		confidences, err := json.Marshal(f.Confidences)
		if err != nil {
			return fmt.Errorf("marshal confidences %s: %w", f.Ticker, err)
		}
		if _, err := tx.Exec(ctx, query,
			f.Ticker, f.Month,
			floatArg(f.ROE), floatArg(f.ROEMean3Y), floatArg(f.NetMargin),
			floatArg(f.RevenueGrowth3Y), floatArg(f.DebtToEBITDA),
			floatArg(f.PERatio), floatArg(f.EVEBITDA), floatArg(f.PriceToBook),
			floatArg(f.FCFYield), floatArg(f.SizeFactor),
			confidences, f.OverallConfidence,
		); err != nil {
			return fmt.Errorf("save monthly feature %s: %w", f.Ticker, err)
		}
	}
	return nil
}

func (w *SnapshotWriter) saveScores(ctx context.Context, tx pgx.Tx, date time.Time, rows []*contracts.ScoreDaily) error {
	// Delete-then-insert keeps rows for delisted tickers from lingering
	// after a recompute with a smaller universe.
	if _, err := tx.Exec(ctx, "DELETE FROM quant.score_daily WHERE trade_date = $1", date); err != nil {
		return fmt.Errorf("clear scores for date: %w", err)
	}

	query := `
		INSERT INTO quant.score_daily (
			ticker, trade_date, final_score, final_score_smoothed, base_score,
			momentum_score, quality_score, value_score, confidence,
			risk_penalty_factor, passed_eligibility, exclusion_reasons,
			risk_penalties, rank
		) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14)
	`

	for _, s := range rows {
		penalties, err := json.Marshal(s.RiskPenalties)
		if err != nil {
			return fmt.Errorf("marshal risk penalties %s: %w", s.Ticker, err)
		}
		if _, err := tx.Exec(ctx, query,
			s.Ticker, s.Date,
			floatArg(s.FinalScore), floatArg(s.FinalScoreSmoothed),
			floatArg(s.BaseScore), floatArg(s.MomentumScore),
			floatArg(s.QualityScore), floatArg(s.ValueScore),
			floatArg(s.Confidence), floatArg(s.RiskPenaltyFactor),
			s.PassedEligibility, contracts.ReasonStrings(s.ExclusionReasons),
			penalties, s.Rank,
		); err != nil {
			return fmt.Errorf("save score %s: %w", s.Ticker, err)
		}
	}
	return nil
}
