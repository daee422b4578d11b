package scoring

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/edipo-dados/quant-stock-rank-sub001/internal/contracts"
	"github.com/edipo-dados/quant-stock-rank-sub001/internal/strategyconfig"
	"github.com/edipo-dados/quant-stock-rank-sub001/pkg/logger"
)

func testPenalties() *PenaltyApplier {
	return NewPenaltyApplier(strategyconfig.Penalties{
		Volatility: strategyconfig.PenaltyShape{Soft: 0.40, Hard: 0.80, Floor: 0.5},
		Drawdown:   strategyconfig.PenaltyShape{Soft: 0.20, Hard: 0.50, Floor: 0.5},
		Distress:   strategyconfig.Distress{Cut: 0.5, NetDebtToEBITDA: 10.0},
	}, logger.NewNop())
}

func TestPenaltyApplier_VolatilityShape(t *testing.T) {
	p := testPenalties()

	tests := []struct {
		name string
		vol  float64
		want float64
	}{
		{"below soft knee", 0.30, 1.0},
		{"at soft knee", 0.40, 1.0},
		{"midway", 0.60, 0.75},
		{"at hard knee", 0.80, 0.5},
		{"beyond hard knee", 1.50, 0.5},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			r := p.Apply(PenaltyInput{Volatility90D: contracts.FloatFrom(tt.vol)})
			assert.InDelta(t, tt.want, r.Components[PenaltyVolatility], 1e-12)
			assert.InDelta(t, tt.want, r.Factor, 1e-12)
		})
	}
}

func TestPenaltyApplier_DrawdownUsesMagnitude(t *testing.T) {
	p := testPenalties()

	// Drawdowns are stored <= 0; the shape applies to the magnitude.
	r := p.Apply(PenaltyInput{RecentDrawdown: contracts.FloatFrom(-0.35)})
	assert.InDelta(t, 0.75, r.Components[PenaltyDrawdown], 1e-12)
}

func TestPenaltyApplier_Distress(t *testing.T) {
	p := testPenalties()

	r := p.Apply(PenaltyInput{Distress: true})
	assert.InDelta(t, 0.5, r.Components[PenaltyDistress], 1e-12)
	assert.InDelta(t, 0.5, r.Factor, 1e-12)
}

func TestPenaltyApplier_ComponentsMultiply(t *testing.T) {
	p := testPenalties()

	r := p.Apply(PenaltyInput{
		Volatility90D:  contracts.FloatFrom(1.0),  // 0.5
		RecentDrawdown: contracts.FloatFrom(-0.6), // 0.5
		Distress:       true,                      // 0.5
	})
	assert.InDelta(t, 0.125, r.Factor, 1e-12)
	assert.Greater(t, r.Factor, 0.0)
	assert.LessOrEqual(t, r.Factor, 1.0)
}

func TestPenaltyApplier_MissingSignalsImposeNoPenalty(t *testing.T) {
	p := testPenalties()

	r := p.Apply(PenaltyInput{})
	assert.Equal(t, 1.0, r.Factor)
	assert.Equal(t, 1.0, r.Components[PenaltyVolatility])
	assert.Equal(t, 1.0, r.Components[PenaltyDrawdown])
	assert.Equal(t, 1.0, r.Components[PenaltyDistress])
}
