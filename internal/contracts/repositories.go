package contracts

import (
	"context"
	"time"
)

// PriceRepository reads the raw daily price store.
type PriceRepository interface {
	// ListTickers returns every ticker with price history, sorted ascending.
	ListTickers(ctx context.Context) ([]string, error)
	// GetSeries returns bars for a ticker in [from, to], ordered by date ascending.
	GetSeries(ctx context.Context, ticker string, from, to time.Time) ([]*PriceBar, error)
}

// FundamentalRepository reads the raw fundamental store.
type FundamentalRepository interface {
	// GetAnnual returns up to limit annual rows with period_end_date <= onOrBefore,
	// ordered newest first.
	GetAnnual(ctx context.Context, ticker string, onOrBefore time.Time, limit int) ([]*Fundamental, error)
}

// ScoreRepository reads previously committed scoring rows.
type ScoreRepository interface {
	GetByDate(ctx context.Context, date time.Time) ([]*ScoreDaily, error)
	GetByTickerAndDate(ctx context.Context, ticker string, date time.Time) (*ScoreDaily, error)
	// GetPriorEligible returns the most recent row with date < before within
	// lookbackDays calendar days that passed eligibility, or nil when none exists.
	GetPriorEligible(ctx context.Context, ticker string, before time.Time, lookbackDays int) (*ScoreDaily, error)
}

// SnapshotWriter persists all pipeline output for one date atomically.
// Re-running a date overwrites the previous rows; readers never observe a
// partially written date.
type SnapshotWriter interface {
	SaveSnapshot(ctx context.Context, snapshot *DateSnapshot) error
}
