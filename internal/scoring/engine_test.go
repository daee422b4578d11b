package scoring

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/edipo-dados/quant-stock-rank-sub001/internal/contracts"
	"github.com/edipo-dados/quant-stock-rank-sub001/internal/strategyconfig"
	"github.com/edipo-dados/quant-stock-rank-sub001/pkg/logger"
)

func testEngine(t *testing.T) *Engine {
	t.Helper()
	engine, err := NewEngine(strategyconfig.Weights{
		Momentum: 0.40,
		Quality:  0.30,
		Value:    0.30,
	}, false, logger.NewNop())
	require.NoError(t, err)
	return engine
}

func TestNewEngine_RejectsInvalidWeights(t *testing.T) {
	_, err := NewEngine(strategyconfig.Weights{
		Momentum: 0.50,
		Quality:  0.30,
		Value:    0.30,
	}, false, logger.NewNop())
	assert.Error(t, err)
}

func TestEngine_SubScoreDirections(t *testing.T) {
	engine := testEngine(t)

	r := engine.Score(Inputs{
		Momentum6MEx1M:  contracts.FloatFrom(1.0),
		Momentum12MEx1M: contracts.FloatFrom(1.0),
		Volatility90D:   contracts.FloatFrom(1.0), // lower is better
		RecentDrawdown:  contracts.FloatFrom(1.0), // lower is better

		ROEMean3Y:       contracts.FloatFrom(2.0),
		NetMargin:       contracts.FloatFrom(2.0),
		RevenueGrowth3Y: contracts.FloatFrom(2.0),
		DebtToEBITDA:    contracts.FloatFrom(2.0), // lower is better

		PERatio:     contracts.FloatFrom(1.0), // lower is better
		EVEBITDA:    contracts.FloatFrom(1.0), // lower is better
		PriceToBook: contracts.FloatFrom(1.0), // lower is better
		FCFYield:    contracts.FloatFrom(1.0),
	})

	// (1 + 1 - 1 - 1) / 4
	require.True(t, r.MomentumScore.Valid)
	assert.InDelta(t, 0.0, r.MomentumScore.Float64, 1e-12)

	// (2 + 2 + 2 - 2) / 4
	require.True(t, r.QualityScore.Valid)
	assert.InDelta(t, 1.0, r.QualityScore.Float64, 1e-12)

	// (-1 - 1 - 1 + 1) / 4
	require.True(t, r.ValueScore.Valid)
	assert.InDelta(t, -0.5, r.ValueScore.Float64, 1e-12)

	// 0.4*0 + 0.3*1 + 0.3*(-0.5)
	assert.InDelta(t, 0.15, r.BaseScore, 1e-12)
}

func TestEngine_RenormalizesWeightsOverPresentSubScores(t *testing.T) {
	engine := testEngine(t)

	// Only momentum factors present: its weight renormalizes to 1.
	r := engine.Score(Inputs{
		Momentum6MEx1M:  contracts.FloatFrom(0.8),
		Momentum12MEx1M: contracts.FloatFrom(0.4),
	})

	require.True(t, r.MomentumScore.Valid)
	assert.False(t, r.QualityScore.Valid)
	assert.False(t, r.ValueScore.Valid)
	assert.InDelta(t, 0.6, r.BaseScore, 1e-12)

	// Momentum and quality present: weights scale to 4/7 and 3/7.
	r = engine.Score(Inputs{
		Momentum6MEx1M: contracts.FloatFrom(0.7),
		ROEMean3Y:      contracts.FloatFrom(1.4),
	})
	assert.InDelta(t, 0.7*(0.4/0.7)+1.4*(0.3/0.7), r.BaseScore, 1e-12)
}

func TestEngine_AllSubScoresMissing(t *testing.T) {
	engine := testEngine(t)

	r := engine.Score(Inputs{})

	assert.False(t, r.MomentumScore.Valid)
	assert.False(t, r.QualityScore.Valid)
	assert.False(t, r.ValueScore.Valid)
	assert.Zero(t, r.BaseScore)
	assert.Zero(t, r.Confidence)
}

func TestEngine_Confidence(t *testing.T) {
	engine := testEngine(t)

	// One of three sub-scores present, no monthly confidence: coverage only.
	r := engine.Score(Inputs{
		Momentum6MEx1M: contracts.FloatFrom(1.0),
	})
	assert.InDelta(t, 1.0/3.0, r.Confidence, 1e-12)

	// Monthly overall confidence scales the coverage.
	r = engine.Score(Inputs{
		Momentum6MEx1M:    contracts.FloatFrom(1.0),
		ROEMean3Y:         contracts.FloatFrom(1.0),
		PERatio:           contracts.FloatFrom(1.0),
		OverallConfidence: contracts.FloatFrom(0.6),
	})
	assert.InDelta(t, 0.6, r.Confidence, 1e-12)
}

func TestEngine_SizeFactorOnlyWhenEnabled(t *testing.T) {
	in := Inputs{
		Momentum6MEx1M: contracts.FloatFrom(1.0),
		SizeFactor:     contracts.FloatFrom(5.0),
	}

	disabled := testEngine(t)
	r := disabled.Score(in)
	assert.False(t, r.SizeScore.Valid)
	assert.InDelta(t, 1.0, r.BaseScore, 1e-12)

	enabled, err := NewEngine(strategyconfig.Weights{
		Momentum: 0.30,
		Quality:  0.25,
		Value:    0.25,
		Size:     0.20,
	}, true, logger.NewNop())
	require.NoError(t, err)

	r = enabled.Score(in)
	require.True(t, r.SizeScore.Valid)
	// Momentum and size present: weights 0.30 and 0.20 renormalize.
	assert.InDelta(t, 1.0*(0.30/0.50)+5.0*(0.20/0.50), r.BaseScore, 1e-12)
}
