package audit

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/edipo-dados/quant-stock-rank-sub001/internal/pipeline"
	"github.com/edipo-dados/quant-stock-rank-sub001/pkg/logger"
)

// Recorder appends one audit row per completed scoring run. The config hash
// ties every run to the exact strategy configuration that produced it, so a
// score can always be traced back to its parameters.
type Recorder struct {
	pool   *pgxpool.Pool
	logger *logger.Logger
}

// NewRecorder creates a run audit recorder.
func NewRecorder(pool *pgxpool.Pool, log *logger.Logger) *Recorder {
	return &Recorder{pool: pool, logger: log}
}

// RecordRun persists the summary of one per-date run.
func (r *Recorder) RecordRun(ctx context.Context, result *pipeline.RunResult) error {
	excluded := make(map[string]int, len(result.Excluded))
	for reason, n := range result.Excluded {
		excluded[string(reason)] = n
	}
	excludedJSON, err := json.Marshal(excluded)
	if err != nil {
		return fmt.Errorf("marshal excluded counts: %w", err)
	}

	_, err = r.pool.Exec(ctx, `
		INSERT INTO quant.run_audit (
			run_date, config_hash, tickers, eligible, excluded, duration_ms
		) VALUES ($1, $2, $3, $4, $5, $6)
	`, result.Date, result.ConfigHash, result.Tickers, result.Eligible,
		excludedJSON, result.Duration.Milliseconds())
	if err != nil {
		return fmt.Errorf("record run audit: %w", err)
	}

	r.logger.WithFields(map[string]interface{}{
		"date":        result.Date.Format("2006-01-02"),
		"config_hash": result.ConfigHash[:12],
	}).Debug("Run audit recorded")
	return nil
}

var _ pipeline.RunRecorder = (*Recorder)(nil)
