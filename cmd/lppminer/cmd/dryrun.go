package cmd

import (
	"github.com/spf13/cobra"
)

var dryrunJob string

var dryrunCmd = &cobra.Command{
	Use:   "dry-run",
	Short: "Mine a job without storing results",
	Long: `Dry-run loads and mines the job exactly like mine, but never writes
to the destination database and does not take the job lock.

The dry-run shows:
  - Rows read and dropped while loading
  - Frequent items with their support and periodicity verdict
  - The patterns the engine would store

Example:
  lppminer dry-run --config lppminer.yaml --job weekly_items --max-depth 2`,
	RunE: runDryrun,
}

func init() {
	dryrunCmd.Flags().StringVarP(&dryrunJob, "job", "j", "",
		"Job name from configuration file (required)")
	dryrunCmd.MarkFlagRequired("job")

	rootCmd.AddCommand(dryrunCmd)
}

func runDryrun(cmd *cobra.Command, args []string) error {
	return runJob(cmd, dryrunJob, true, false)
}
