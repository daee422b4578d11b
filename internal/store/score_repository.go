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

const scoreColumns = `
	ticker, trade_date, final_score, final_score_smoothed, base_score,
	momentum_score, quality_score, value_score, confidence,
	risk_penalty_factor, passed_eligibility, exclusion_reasons,
	risk_penalties, rank
`

// ScoreRepository implements contracts.ScoreRepository over the score table.
type ScoreRepository struct {
	pool *pgxpool.Pool
}

// NewScoreRepository creates a new score repository.
func NewScoreRepository(pool *pgxpool.Pool) *ScoreRepository {
	return &ScoreRepository{pool: pool}
}

// GetByDate returns all score rows for a date, ordered by ticker.
func (r *ScoreRepository) GetByDate(ctx context.Context, date time.Time) ([]*contracts.ScoreDaily, error) {
	query := `
		SELECT ` + scoreColumns + `
		FROM quant.score_daily
		WHERE trade_date = $1
		ORDER BY ticker ASC
	`

	rows, err := r.pool.Query(ctx, query, date)
	if err != nil {
		return nil, fmt.Errorf("query scores: %w", err)
	}
	defer rows.Close()

	var scores []*contracts.ScoreDaily
	for rows.Next() {
		s, err := scanScore(rows)
		if err != nil {
			return nil, err
		}
		scores = append(scores, s)
	}
	return scores, rows.Err()
}

// GetByTickerAndDate returns one score row, or nil when absent.
func (r *ScoreRepository) GetByTickerAndDate(ctx context.Context, ticker string, date time.Time) (*contracts.ScoreDaily, error) {
	query := `
		SELECT ` + scoreColumns + `
		FROM quant.score_daily
		WHERE ticker = $1 AND trade_date = $2
	`

	rows, err := r.pool.Query(ctx, query, ticker, date)
	if err != nil {
		return nil, fmt.Errorf("query score: %w", err)
	}
	defer rows.Close()

	if !rows.Next() {
		if err := rows.Err(); err != nil {
			return nil, err
		}
		return nil, nil
	}
	return scanScore(rows)
}

// GetPriorEligible returns the most recent eligible row with trade_date <
// before within lookbackDays calendar days, or nil when none exists.
func (r *ScoreRepository) GetPriorEligible(ctx context.Context, ticker string, before time.Time, lookbackDays int) (*contracts.ScoreDaily, error) {
	query := `
		SELECT ` + scoreColumns + `
		FROM quant.score_daily
		WHERE ticker = $1
		  AND trade_date < $2
		  AND trade_date >= $2::date - $3::int
		  AND passed_eligibility = TRUE
		ORDER BY trade_date DESC
		LIMIT 1
	`

	rows, err := r.pool.Query(ctx, query, ticker, before, lookbackDays)
	if err != nil {
		return nil, fmt.Errorf("query prior score: %w", err)
	}
	defer rows.Close()

	if !rows.Next() {
		if err := rows.Err(); err != nil {
			return nil, err
		}
		return nil, nil
	}
	return scanScore(rows)
}

func scanScore(rows pgx.Rows) (*contracts.ScoreDaily, error) {
	var s contracts.ScoreDaily
	var final, smoothed, base, momentum, quality, value *float64
	var confidence, penaltyFactor *float64
	var reasons []string
	var penaltiesJSON []byte

	if err := rows.Scan(
		&s.Ticker, &s.Date, &final, &smoothed, &base,
		&momentum, &quality, &value, &confidence,
		&penaltyFactor, &s.PassedEligibility, &reasons,
		&penaltiesJSON, &s.Rank,
	); err != nil {
		return nil, fmt.Errorf("scan score: %w", err)
	}

	s.FinalScore = floatFromPtr(final)
	s.FinalScoreSmoothed = floatFromPtr(smoothed)
	s.BaseScore = floatFromPtr(base)
	s.MomentumScore = floatFromPtr(momentum)
	s.QualityScore = floatFromPtr(quality)
	s.ValueScore = floatFromPtr(value)
	s.Confidence = floatFromPtr(confidence)
	s.RiskPenaltyFactor = floatFromPtr(penaltyFactor)
	s.ExclusionReasons = contracts.ReasonsFromStrings(reasons)

	s.RiskPenalties = map[string]float64{}
	if len(penaltiesJSON) > 0 {
		if err := json.Unmarshal(penaltiesJSON, &s.RiskPenalties); err != nil {
			return nil, fmt.Errorf("unmarshal risk penalties: %w", err)
		}
	}

	return &s, nil
}
