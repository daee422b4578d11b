package scoring

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/edipo-dados/quant-stock-rank-sub001/internal/contracts"
	"github.com/edipo-dados/quant-stock-rank-sub001/pkg/logger"
)

func scoredRow(ticker string, smoothed float64, eligible bool) *contracts.ScoreDaily {
	return &contracts.ScoreDaily{
		Ticker:             ticker,
		FinalScoreSmoothed: contracts.FloatFrom(smoothed),
		PassedEligibility:  eligible,
	}
}

func rankOf(t *testing.T, scores []*contracts.ScoreDaily, ticker string) int {
	t.Helper()
	for _, s := range scores {
		if s.Ticker == ticker {
			require.NotNil(t, s.Rank, ticker)
			return *s.Rank
		}
	}
	t.Fatalf("ticker %s not found", ticker)
	return 0
}

func TestRanker_DenseDescendingRanks(t *testing.T) {
	scores := []*contracts.ScoreDaily{
		scoredRow("AAA", 0.5, true),
		scoredRow("BBB", 1.5, true),
		scoredRow("CCC", -0.2, true),
	}

	NewRanker(logger.NewNop()).Rank(scores)

	assert.Equal(t, 1, rankOf(t, scores, "BBB"))
	assert.Equal(t, 2, rankOf(t, scores, "AAA"))
	assert.Equal(t, 3, rankOf(t, scores, "CCC"))
}

func TestRanker_TieBreaksOnTicker(t *testing.T) {
	scores := []*contracts.ScoreDaily{
		scoredRow("ZZZ", 1.0, true),
		scoredRow("AAA", 1.0, true),
	}

	NewRanker(logger.NewNop()).Rank(scores)

	assert.Equal(t, 1, rankOf(t, scores, "AAA"))
	assert.Equal(t, 2, rankOf(t, scores, "ZZZ"))
}

func TestRanker_IneligibleGetNoRank(t *testing.T) {
	ineligible := scoredRow("BAD", 9.9, false)
	stale := 7
	ineligible.Rank = &stale // left over from a previous state

	scores := []*contracts.ScoreDaily{
		scoredRow("AAA", 1.0, true),
		ineligible,
	}

	NewRanker(logger.NewNop()).Rank(scores)

	assert.Equal(t, 1, rankOf(t, scores, "AAA"))
	assert.Nil(t, ineligible.Rank)
}

func TestRanker_EmptyAndAllIneligible(t *testing.T) {
	NewRanker(logger.NewNop()).Rank(nil)

	scores := []*contracts.ScoreDaily{
		scoredRow("AAA", 1.0, false),
		scoredRow("BBB", 2.0, false),
	}
	NewRanker(logger.NewNop()).Rank(scores)

	for _, s := range scores {
		assert.Nil(t, s.Rank)
	}
}

func TestRanker_RanksAreContiguous(t *testing.T) {
	scores := []*contracts.ScoreDaily{
		scoredRow("AAA", 3, true),
		scoredRow("BBB", 1, true),
		scoredRow("CCC", 2, false),
		scoredRow("DDD", 2, true),
		scoredRow("EEE", -1, true),
	}

	NewRanker(logger.NewNop()).Rank(scores)

	seen := map[int]bool{}
	for _, s := range scores {
		if s.PassedEligibility {
			require.NotNil(t, s.Rank)
			seen[*s.Rank] = true
		}
	}
	assert.Equal(t, map[int]bool{1: true, 2: true, 3: true, 4: true}, seen)
}
