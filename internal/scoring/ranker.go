package scoring

import (
	"sort"

	"github.com/edipo-dados/quant-stock-rank-sub001/internal/contracts"
	"github.com/edipo-dados/quant-stock-rank-sub001/pkg/logger"
)

// Ranker assigns dense ascending ranks 1..N over the eligible tickers,
// ordered by descending smoothed score with ties broken by ticker
// ascending. Ineligible tickers keep a nil rank.
type Ranker struct {
	logger *logger.Logger
}

// NewRanker creates a ranker.
func NewRanker(log *logger.Logger) *Ranker {
	return &Ranker{logger: log}
}

// Rank mutates the given rows in place, writing Rank on eligible rows and
// clearing it on ineligible ones. The tie-break on ticker keeps ranking
// deterministic across re-runs.
func (r *Ranker) Rank(scores []*contracts.ScoreDaily) {
	eligible := make([]*contracts.ScoreDaily, 0, len(scores))
	for _, s := range scores {
		if s.PassedEligibility {
			eligible = append(eligible, s)
		} else {
			s.Rank = nil
		}
	}

	sort.Slice(eligible, func(i, j int) bool {
		si := eligible[i].FinalScoreSmoothed.Or(0)
		sj := eligible[j].FinalScoreSmoothed.Or(0)
		if si != sj {
			return si > sj
		}
		return eligible[i].Ticker < eligible[j].Ticker
	})

	for i, s := range eligible {
		rank := i + 1
		s.Rank = &rank
	}

	if len(eligible) > 0 {
		r.logger.WithFields(map[string]interface{}{
			"eligible":   len(eligible),
			"top_ticker": eligible[0].Ticker,
			"top_score":  eligible[0].FinalScoreSmoothed,
		}).Info("Ranking completed")
	}
}
