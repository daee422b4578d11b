package handlers

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gorilla/mux"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/edipo-dados/quant-stock-rank-sub001/internal/contracts"
	"github.com/edipo-dados/quant-stock-rank-sub001/pkg/config"
	"github.com/edipo-dados/quant-stock-rank-sub001/pkg/logger"
	"github.com/edipo-dados/quant-stock-rank-sub001/pkg/redis"
)

type scoreRepoStub struct {
	rows []*contracts.ScoreDaily
	err  error
}

func (s *scoreRepoStub) GetByDate(ctx context.Context, date time.Time) ([]*contracts.ScoreDaily, error) {
	return s.rows, s.err
}

func (s *scoreRepoStub) GetByTickerAndDate(ctx context.Context, ticker string, date time.Time) (*contracts.ScoreDaily, error) {
	for _, r := range s.rows {
		if r.Ticker == ticker {
			return r, s.err
		}
	}
	return nil, s.err
}

func (s *scoreRepoStub) GetPriorEligible(ctx context.Context, ticker string, before time.Time, lookbackDays int) (*contracts.ScoreDaily, error) {
	return nil, nil
}

func testScoreHandler(rows []*contracts.ScoreDaily) *ScoreHandler {
	client, _ := redis.New(&config.Config{}) // redis disabled: cache is a no-op
	cache := redis.NewCache(client, "test")
	return NewScoreHandler(&scoreRepoStub{rows: rows}, cache, logger.NewNop())
}

func sampleRow() *contracts.ScoreDaily {
	rank := 1
	return &contracts.ScoreDaily{
		Ticker:             "ACME",
		Date:               time.Date(2026, 8, 28, 0, 0, 0, 0, time.UTC),
		FinalScore:         contracts.FloatFrom(1.2),
		FinalScoreSmoothed: contracts.FloatFrom(1.1),
		BaseScore:          contracts.FloatFrom(1.5),
		MomentumScore:      contracts.FloatFrom(0.8),
		Confidence:         contracts.FloatFrom(0.9),
		RiskPenaltyFactor:  contracts.FloatFrom(0.8),
		PassedEligibility:  true,
		RiskPenalties:      map[string]float64{"volatility_penalty": 0.8},
		Rank:               &rank,
	}
}

func TestScoreHandler_GetByDate(t *testing.T) {
	h := testScoreHandler([]*contracts.ScoreDaily{sampleRow()})

	req := mux.SetURLVars(
		httptest.NewRequest(http.MethodGet, "/api/v1/scores/2026-08-28", nil),
		map[string]string{"date": "2026-08-28"},
	)
	rec := httptest.NewRecorder()
	h.GetByDate(rec, req)

	require.Equal(t, http.StatusOK, rec.Code)

	var items []ScoreItem
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &items))
	require.Len(t, items, 1)
	assert.Equal(t, "ACME", items[0].Ticker)
	assert.Equal(t, "2026-08-28", items[0].Date)
	assert.InDelta(t, 1.1, items[0].FinalScoreSmoothed.Float64, 1e-12)
	require.NotNil(t, items[0].Rank)
	assert.Equal(t, 1, *items[0].Rank)

	// Missing numerics serialize as null, never NaN.
	assert.Contains(t, rec.Body.String(), `"quality_score":null`)
}

func TestScoreHandler_GetByDate_BadDate(t *testing.T) {
	h := testScoreHandler(nil)

	req := mux.SetURLVars(
		httptest.NewRequest(http.MethodGet, "/api/v1/scores/28-08-2026", nil),
		map[string]string{"date": "28-08-2026"},
	)
	rec := httptest.NewRecorder()
	h.GetByDate(rec, req)

	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestScoreHandler_GetByDate_NotFound(t *testing.T) {
	h := testScoreHandler(nil)

	req := mux.SetURLVars(
		httptest.NewRequest(http.MethodGet, "/api/v1/scores/2026-08-28", nil),
		map[string]string{"date": "2026-08-28"},
	)
	rec := httptest.NewRecorder()
	h.GetByDate(rec, req)

	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestScoreHandler_GetByTicker(t *testing.T) {
	h := testScoreHandler([]*contracts.ScoreDaily{sampleRow()})

	req := mux.SetURLVars(
		httptest.NewRequest(http.MethodGet, "/api/v1/scores/2026-08-28/acme", nil),
		map[string]string{"date": "2026-08-28", "ticker": "acme"},
	)
	rec := httptest.NewRecorder()
	h.GetByTicker(rec, req)

	require.Equal(t, http.StatusOK, rec.Code)

	var item ScoreItem
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &item))
	assert.Equal(t, "ACME", item.Ticker)
	assert.True(t, item.PassedEligibility)
}

func TestScoreHandler_GetByTicker_NotFound(t *testing.T) {
	h := testScoreHandler(nil)

	req := mux.SetURLVars(
		httptest.NewRequest(http.MethodGet, "/api/v1/scores/2026-08-28/NONE", nil),
		map[string]string{"date": "2026-08-28", "ticker": "NONE"},
	)
	rec := httptest.NewRecorder()
	h.GetByTicker(rec, req)

	assert.Equal(t, http.StatusNotFound, rec.Code)
}
