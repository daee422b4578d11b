package commands

import (
	"github.com/spf13/cobra"
)

// rootCmd represents the base command when called without any subcommands.
var rootCmd = &cobra.Command{
	Use:   "rank",
	Short: "Daily cross-sectional stock ranking engine",
	Long: `rank computes daily factor-based stock rankings.

Each run takes raw prices and fundamentals for one date through factor
computation, cross-sectional normalization, eligibility screening,
weighted scoring, risk penalties, temporal smoothing and dense ranking,
then commits the date's snapshot atomically.

Examples:
  rank score-date --date 2026-08-28
  rank backfill --from 2026-08-01 --to 2026-08-28
  rank api
  rank scheduler`,
	SilenceUsage: true,
}

// Execute runs the root command. Called once from main.
func Execute() error {
	return rootCmd.Execute()
}
