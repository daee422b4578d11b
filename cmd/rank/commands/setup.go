package commands

import (
	"fmt"

	"github.com/edipo-dados/quant-stock-rank-sub001/internal/audit"
	"github.com/edipo-dados/quant-stock-rank-sub001/internal/pipeline"
	"github.com/edipo-dados/quant-stock-rank-sub001/internal/store"
	"github.com/edipo-dados/quant-stock-rank-sub001/internal/strategyconfig"
	"github.com/edipo-dados/quant-stock-rank-sub001/pkg/config"
	"github.com/edipo-dados/quant-stock-rank-sub001/pkg/database"
	"github.com/edipo-dados/quant-stock-rank-sub001/pkg/logger"
	"github.com/edipo-dados/quant-stock-rank-sub001/pkg/redis"
)

// runtime holds everything a pipeline-running command needs. Close releases
// the database pool and the redis connection.
type runtime struct {
	cfg          *config.Config
	log          *logger.Logger
	db           *database.DB
	redis        *redis.Client
	scores       *store.ScoreRepository
	orchestrator *pipeline.Orchestrator
}

func (r *runtime) Close() {
	if r.redis != nil {
		r.redis.Close()
	}
	if r.db != nil {
		r.db.Close()
	}
}

// newRuntime loads configuration, connects to the database and redis, and
// wires the full pipeline.
func newRuntime() (*runtime, error) {
	cfg, err := config.Load()
	if err != nil {
		return nil, fmt.Errorf("load config: %w", err)
	}

	log := logger.New(cfg)

	strategy, _, err := strategyconfig.Load(cfg.StrategyPath)
	if err != nil {
		return nil, fmt.Errorf("load strategy config %s: %w", cfg.StrategyPath, err)
	}

	db, err := database.New(cfg)
	if err != nil {
		return nil, fmt.Errorf("connect to database: %w", err)
	}

	redisClient, err := redis.New(cfg)
	if err != nil {
		db.Close()
		return nil, fmt.Errorf("connect to redis: %w", err)
	}

	prices := store.NewPriceRepository(db.Pool)
	fundamentals := store.NewFundamentalRepository(db.Pool)
	scores := store.NewScoreRepository(db.Pool)
	snapshots := store.NewSnapshotWriter(db.Pool)

	orchestrator, err := pipeline.New(strategy, prices, fundamentals, scores, snapshots, log)
	if err != nil {
		redisClient.Close()
		db.Close()
		return nil, fmt.Errorf("build pipeline: %w", err)
	}

	cache := redis.NewCache(redisClient, "rank")
	orchestrator.SetInvalidator(redis.NewInvalidator(cache))
	orchestrator.SetRunRecorder(audit.NewRecorder(db.Pool, log))

	return &runtime{
		cfg:          cfg,
		log:          log,
		db:           db,
		redis:        redisClient,
		scores:       scores,
		orchestrator: orchestrator,
	}, nil
}
