package commands

import (
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/edipo-dados/quant-stock-rank-sub001/internal/scheduler"
)

var schedulerCmd = &cobra.Command{
	Use:   "scheduler",
	Short: "Run the daily scoring schedule",
	Long: `Starts the in-process scheduler and runs the scoring pipeline on
the configured cron schedule (SCHEDULE_SPEC, default weekdays at 19:00).

Example:
  rank scheduler`,
	RunE: runScheduler,
}

func init() {
	rootCmd.AddCommand(schedulerCmd)
}

func runScheduler(cmd *cobra.Command, args []string) error {
	rt, err := newRuntime()
	if err != nil {
		return err
	}
	defer rt.Close()

	sched := scheduler.New(rt.log)
	job := scheduler.NewScoringJob(rt.orchestrator, rt.cfg.ScheduleSpec)
	if err := sched.AddJob(job); err != nil {
		return err
	}

	sched.Start()
	defer sched.Stop()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	sig := <-quit

	rt.log.WithField("signal", sig.String()).Info("Shutdown signal received")
	return nil
}
