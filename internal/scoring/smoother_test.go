package scoring

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/edipo-dados/quant-stock-rank-sub001/internal/contracts"
	"github.com/edipo-dados/quant-stock-rank-sub001/internal/strategyconfig"
	"github.com/edipo-dados/quant-stock-rank-sub001/pkg/logger"
)

// priorScoreStub serves a fixed prior row for smoothing tests.
type priorScoreStub struct {
	prior *contracts.ScoreDaily
	err   error
}

func (s *priorScoreStub) GetByDate(ctx context.Context, date time.Time) ([]*contracts.ScoreDaily, error) {
	return nil, nil
}

func (s *priorScoreStub) GetByTickerAndDate(ctx context.Context, ticker string, date time.Time) (*contracts.ScoreDaily, error) {
	return nil, nil
}

func (s *priorScoreStub) GetPriorEligible(ctx context.Context, ticker string, before time.Time, lookbackDays int) (*contracts.ScoreDaily, error) {
	return s.prior, s.err
}

func newSmoother(alpha float64, stub *priorScoreStub) *Smoother {
	return NewSmoother(strategyconfig.Smoothing{
		Alpha:        alpha,
		LookbackDays: 30,
	}, stub, logger.NewNop())
}

var smoothDate = time.Date(2026, 8, 28, 0, 0, 0, 0, time.UTC)

func TestSmoother_NoPriorPassesThrough(t *testing.T) {
	s := newSmoother(0.7, &priorScoreStub{})

	got, err := s.Smooth(context.Background(), "TEST", smoothDate, 1.5)
	require.NoError(t, err)
	assert.Equal(t, 1.5, got)
}

func TestSmoother_BlendsWithPriorSmoothed(t *testing.T) {
	s := newSmoother(0.7, &priorScoreStub{
		prior: &contracts.ScoreDaily{
			Ticker:             "TEST",
			FinalScore:         contracts.FloatFrom(9.9),
			FinalScoreSmoothed: contracts.FloatFrom(2.0),
			PassedEligibility:  true,
		},
	})

	got, err := s.Smooth(context.Background(), "TEST", smoothDate, 1.0)
	require.NoError(t, err)
	// 0.7*1.0 + 0.3*2.0
	assert.InDelta(t, 1.3, got, 1e-12)
}

func TestSmoother_FallsBackToPriorFinal(t *testing.T) {
	s := newSmoother(0.7, &priorScoreStub{
		prior: &contracts.ScoreDaily{
			Ticker:            "TEST",
			FinalScore:        contracts.FloatFrom(2.0),
			PassedEligibility: true,
		},
	})

	got, err := s.Smooth(context.Background(), "TEST", smoothDate, 1.0)
	require.NoError(t, err)
	assert.InDelta(t, 1.3, got, 1e-12)
}

func TestSmoother_PriorWithoutScoresPassesThrough(t *testing.T) {
	s := newSmoother(0.7, &priorScoreStub{
		prior: &contracts.ScoreDaily{Ticker: "TEST", PassedEligibility: true},
	})

	got, err := s.Smooth(context.Background(), "TEST", smoothDate, 1.0)
	require.NoError(t, err)
	assert.Equal(t, 1.0, got)
}

func TestSmoother_AlphaOneIgnoresHistory(t *testing.T) {
	s := newSmoother(1.0, &priorScoreStub{
		prior: &contracts.ScoreDaily{
			Ticker:             "TEST",
			FinalScoreSmoothed: contracts.FloatFrom(100),
			PassedEligibility:  true,
		},
	})

	got, err := s.Smooth(context.Background(), "TEST", smoothDate, 1.0)
	require.NoError(t, err)
	assert.InDelta(t, 1.0, got, 1e-12)
}

func TestSmoother_PropagatesLookupError(t *testing.T) {
	s := newSmoother(0.7, &priorScoreStub{err: errors.New("connection reset")})

	_, err := s.Smooth(context.Background(), "TEST", smoothDate, 1.0)
	assert.Error(t, err)
}
