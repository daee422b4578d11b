package scoring

import (
	"context"
	"fmt"
	"time"

	"github.com/edipo-dados/quant-stock-rank-sub001/internal/contracts"
	"github.com/edipo-dados/quant-stock-rank-sub001/internal/strategyconfig"
	"github.com/edipo-dados/quant-stock-rank-sub001/pkg/logger"
)

// Smoother exponentially blends today's final score with the most recent
// prior smoothed score per ticker. It reads only previously committed
// score rows, so re-running a date observes the same prior state.
type Smoother struct {
	alpha        float64
	lookbackDays int
	scores       contracts.ScoreRepository
	logger       *logger.Logger
}

// NewSmoother creates a temporal smoother.
func NewSmoother(cfg strategyconfig.Smoothing, scores contracts.ScoreRepository, log *logger.Logger) *Smoother {
	return &Smoother{
		alpha:        cfg.Alpha,
		lookbackDays: cfg.LookbackDays,
		scores:       scores,
		logger:       log,
	}
}

// Smooth returns alpha*finalScore + (1-alpha)*prev, where prev comes from
// the most recent eligible row within the lookback window: its smoothed
// score when present, else its final score. Without a prior row the final
// score passes through unchanged.
func (s *Smoother) Smooth(ctx context.Context, ticker string, date time.Time, finalScore float64) (float64, error) {
	prior, err := s.scores.GetPriorEligible(ctx, ticker, date, s.lookbackDays)
	if err != nil {
		return 0, fmt.Errorf("lookup prior score for %s: %w", ticker, err)
	}
	if prior == nil {
		return finalScore, nil
	}

	prev := prior.FinalScore
	if prior.FinalScoreSmoothed.Valid {
		prev = prior.FinalScoreSmoothed
	}
	if !prev.Valid {
		return finalScore, nil
	}

	return s.alpha*finalScore + (1-s.alpha)*prev.Float64, nil
}
