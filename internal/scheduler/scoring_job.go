package scheduler

import (
	"context"
	"time"

	"github.com/edipo-dados/quant-stock-rank-sub001/internal/pipeline"
)

// ScoringJob runs the daily ranking pipeline for the current date.
type ScoringJob struct {
	orchestrator *pipeline.Orchestrator
	schedule     string
}

// NewScoringJob creates the daily scoring job with the given cron schedule.
func NewScoringJob(orchestrator *pipeline.Orchestrator, schedule string) *ScoringJob {
	return &ScoringJob{
		orchestrator: orchestrator,
		schedule:     schedule,
	}
}

// Name returns the job name.
func (j *ScoringJob) Name() string {
	return "daily-scoring"
}

// Schedule returns the cron schedule expression.
func (j *ScoringJob) Schedule() string {
	return j.schedule
}

// Run scores the date the job fires on.
func (j *ScoringJob) Run(ctx context.Context) error {
	_, err := j.orchestrator.RunDate(ctx, time.Now().UTC())
	return err
}
