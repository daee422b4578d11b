package commands

import (
	"context"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"github.com/edipo-dados/quant-stock-rank-sub001/internal/api"
	"github.com/edipo-dados/quant-stock-rank-sub001/internal/api/handlers"
	"github.com/edipo-dados/quant-stock-rank-sub001/pkg/redis"
)

var apiCmd = &cobra.Command{
	Use:   "api",
	Short: "Start the read-only scores API server",
	Long: `Starts the HTTP server that serves persisted ranking output.

Endpoints:
  GET /health                          - Health check
  GET /api/v1/scores/{date}            - All scores for a date
  GET /api/v1/scores/{date}/{ticker}   - One ticker's score for a date

Example:
  rank api
  rank api --port 8080`,
	RunE: runAPIServer,
}

var apiPort string

func init() {
	rootCmd.AddCommand(apiCmd)

	apiCmd.Flags().StringVar(&apiPort, "port", "", "API server port (overrides PORT)")
}

func runAPIServer(cmd *cobra.Command, args []string) error {
	rt, err := newRuntime()
	if err != nil {
		return err
	}
	defer rt.Close()

	if apiPort != "" {
		rt.cfg.Port = apiPort
	}

	cache := redis.NewCache(rt.redis, "rank")
	scoreHandler := handlers.NewScoreHandler(rt.scores, cache, rt.log)
	healthHandler := handlers.NewHealthHandler(rt.db)
	router := api.NewRouter(scoreHandler, healthHandler, rt.log)

	server := api.New(rt.cfg, rt.log, router)

	errCh := make(chan error, 1)
	go func() {
		errCh <- server.Start()
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)

	select {
	case err := <-errCh:
		return err
	case sig := <-quit:
		rt.log.WithField("signal", sig.String()).Info("Shutdown signal received")
	}

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()
	return server.Shutdown(ctx)
}
