package commands

import (
	"context"
	"fmt"
	"time"

	"github.com/spf13/cobra"
)

var backfillCmd = &cobra.Command{
	Use:   "backfill",
	Short: "Score every weekday in a date range",
	Long: `Runs the pipeline for each weekday from --from to --to inclusive,
in chronological order so temporal smoothing sees each prior day. Stops at
the first failed date.

Example:
  rank backfill --from 2026-08-01 --to 2026-08-28`,
	RunE: runBackfill,
}

var (
	backfillFrom string
	backfillTo   string
)

func init() {
	rootCmd.AddCommand(backfillCmd)

	backfillCmd.Flags().StringVar(&backfillFrom, "from", "", "first date (YYYY-MM-DD)")
	backfillCmd.Flags().StringVar(&backfillTo, "to", "", "last date (YYYY-MM-DD)")
	backfillCmd.MarkFlagRequired("from")
	backfillCmd.MarkFlagRequired("to")
}

func runBackfill(cmd *cobra.Command, args []string) error {
	from, err := time.Parse("2006-01-02", backfillFrom)
	if err != nil {
		return fmt.Errorf("invalid --from %q, expected YYYY-MM-DD", backfillFrom)
	}
	to, err := time.Parse("2006-01-02", backfillTo)
	if err != nil {
		return fmt.Errorf("invalid --to %q, expected YYYY-MM-DD", backfillTo)
	}
	if to.Before(from) {
		return fmt.Errorf("--to %s is before --from %s", backfillTo, backfillFrom)
	}

	rt, err := newRuntime()
	if err != nil {
		return err
	}
	defer rt.Close()

	results, err := rt.orchestrator.RunRange(context.Background(), from, to)
	if err != nil {
		rt.log.WithError(err).Error("Backfill failed")
		return err
	}

	for _, r := range results {
		fmt.Printf("%s: %d tickers, %d eligible\n",
			r.Date.Format("2006-01-02"), r.Tickers, r.Eligible)
	}
	fmt.Printf("Backfilled %d dates\n", len(results))
	return nil
}
