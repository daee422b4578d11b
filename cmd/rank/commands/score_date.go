package commands

import (
	"context"
	"fmt"
	"time"

	"github.com/spf13/cobra"
)

var scoreDateCmd = &cobra.Command{
	Use:   "score-date",
	Short: "Score and rank the universe for one date",
	Long: `Runs the full pipeline for a single trade date and commits the
date's snapshot atomically. Re-running the same date overwrites it with
identical rows.

Example:
  rank score-date --date 2026-08-28`,
	RunE: runScoreDate,
}

var scoreDateFlag string

func init() {
	rootCmd.AddCommand(scoreDateCmd)

	scoreDateCmd.Flags().StringVar(&scoreDateFlag, "date", "", "trade date (YYYY-MM-DD, default today)")
}

func runScoreDate(cmd *cobra.Command, args []string) error {
	date := time.Now().UTC()
	if scoreDateFlag != "" {
		parsed, err := time.Parse("2006-01-02", scoreDateFlag)
		if err != nil {
			return fmt.Errorf("invalid --date %q, expected YYYY-MM-DD", scoreDateFlag)
		}
		date = parsed
	}

	rt, err := newRuntime()
	if err != nil {
		return err
	}
	defer rt.Close()

	result, err := rt.orchestrator.RunDate(context.Background(), date)
	if err != nil {
		rt.log.WithError(err).Error("Scoring run failed")
		return err
	}

	fmt.Printf("Scored %d tickers for %s (%d eligible) in %s\n",
		result.Tickers, result.Date.Format("2006-01-02"), result.Eligible, result.Duration)
	return nil
}
