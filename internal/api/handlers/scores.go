package handlers

import (
	"net/http"
	"strings"
	"time"

	"github.com/gorilla/mux"

	"github.com/edipo-dados/quant-stock-rank-sub001/internal/contracts"
	"github.com/edipo-dados/quant-stock-rank-sub001/pkg/logger"
	"github.com/edipo-dados/quant-stock-rank-sub001/pkg/redis"
)

const dateFormat = "2006-01-02"

// ScoreHandler serves persisted ranking output.
type ScoreHandler struct {
	scores contracts.ScoreRepository
	cache  *redis.Cache
	logger *logger.Logger
}

// NewScoreHandler creates a new score handler.
func NewScoreHandler(scores contracts.ScoreRepository, cache *redis.Cache, log *logger.Logger) *ScoreHandler {
	return &ScoreHandler{
		scores: scores,
		cache:  cache,
		logger: log,
	}
}

// ScoreItem is the wire representation of one scored ticker. Missing
// numeric values serialize as null, never as NaN.
type ScoreItem struct {
	Ticker             string             `json:"ticker"`
	Date               string             `json:"date"`
	FinalScore         contracts.Float    `json:"final_score"`
	FinalScoreSmoothed contracts.Float    `json:"final_score_smoothed"`
	BaseScore          contracts.Float    `json:"base_score"`
	MomentumScore      contracts.Float    `json:"momentum_score"`
	QualityScore       contracts.Float    `json:"quality_score"`
	ValueScore         contracts.Float    `json:"value_score"`
	Confidence         contracts.Float    `json:"confidence"`
	PenaltyFactor      contracts.Float    `json:"penalty_factor"`
	PassedEligibility  bool               `json:"passed_eligibility"`
	ExclusionReasons   []string           `json:"exclusion_reasons"`
	RiskPenalties      map[string]float64 `json:"risk_penalties"`
	Rank               *int               `json:"rank"`
}

func toScoreItem(s *contracts.ScoreDaily) ScoreItem {
	return ScoreItem{
		Ticker:             s.Ticker,
		Date:               s.Date.Format(dateFormat),
		FinalScore:         s.FinalScore,
		FinalScoreSmoothed: s.FinalScoreSmoothed,
		BaseScore:          s.BaseScore,
		MomentumScore:      s.MomentumScore,
		QualityScore:       s.QualityScore,
		ValueScore:         s.ValueScore,
		Confidence:         s.Confidence,
		PenaltyFactor:      s.RiskPenaltyFactor,
		PassedEligibility:  s.PassedEligibility,
		ExclusionReasons:   contracts.ReasonStrings(s.ExclusionReasons),
		RiskPenalties:      s.RiskPenalties,
		Rank:               s.Rank,
	}
}

// GetByDate returns all scored tickers for a date, ranked rows first.
// GET /api/v1/scores/{date}
func (h *ScoreHandler) GetByDate(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	dateStr := mux.Vars(r)["date"]

	date, err := time.Parse(dateFormat, dateStr)
	if err != nil {
		respondError(w, http.StatusBadRequest, "Invalid date, expected YYYY-MM-DD")
		return
	}

	var cached []ScoreItem
	if hit, err := h.cache.Get(ctx, redis.ScoresKey(dateStr), &cached); err == nil && hit {
		respondJSON(w, http.StatusOK, cached)
		return
	}

	scores, err := h.scores.GetByDate(ctx, date)
	if err != nil {
		h.logger.WithError(err).WithField("date", dateStr).Error("Failed to load scores")
		respondError(w, http.StatusInternalServerError, "Failed to load scores")
		return
	}
	if len(scores) == 0 {
		respondError(w, http.StatusNotFound, "No scores for date")
		return
	}

	items := make([]ScoreItem, 0, len(scores))
	for _, s := range scores {
		items = append(items, toScoreItem(s))
	}

	if err := h.cache.Set(ctx, redis.ScoresKey(dateStr), items, redis.TTLDaily); err != nil {
		h.logger.WithError(err).Warn("Failed to cache scores")
	}

	respondJSON(w, http.StatusOK, items)
}

// GetByTicker returns the score row for one ticker on one date.
// GET /api/v1/scores/{date}/{ticker}
func (h *ScoreHandler) GetByTicker(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	vars := mux.Vars(r)
	dateStr := vars["date"]
	ticker := strings.ToUpper(vars["ticker"])

	date, err := time.Parse(dateFormat, dateStr)
	if err != nil {
		respondError(w, http.StatusBadRequest, "Invalid date, expected YYYY-MM-DD")
		return
	}
	if ticker == "" {
		respondError(w, http.StatusBadRequest, "Ticker is required")
		return
	}

	var cached ScoreItem
	if hit, err := h.cache.Get(ctx, redis.ScoreKey(ticker, dateStr), &cached); err == nil && hit {
		respondJSON(w, http.StatusOK, cached)
		return
	}

	score, err := h.scores.GetByTickerAndDate(ctx, ticker, date)
	if err != nil {
		h.logger.WithError(err).WithFields(map[string]interface{}{
			"ticker": ticker,
			"date":   dateStr,
		}).Error("Failed to load score")
		respondError(w, http.StatusInternalServerError, "Failed to load score")
		return
	}
	if score == nil {
		respondError(w, http.StatusNotFound, "No score for ticker on date")
		return
	}

	item := toScoreItem(score)
	if err := h.cache.Set(ctx, redis.ScoreKey(ticker, dateStr), item, redis.TTLDaily); err != nil {
		h.logger.WithError(err).Warn("Failed to cache score")
	}

	respondJSON(w, http.StatusOK, item)
}
