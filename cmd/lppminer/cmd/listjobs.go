package cmd

import (
	"fmt"
	"sort"

	"github.com/spf13/cobra"

	"github.com/dbsmedya/lppminer/internal/config"
)

var listJobsCmd = &cobra.Command{
	Use:   "list-jobs",
	Short: "List all jobs defined in configuration",
	Long: `List-jobs displays all mining jobs defined in the configuration file
along with their input and effective thresholds.

Example:
  lppminer list-jobs --config lppminer.yaml`,
	RunE: runListJobs,
}

func init() {
	rootCmd.AddCommand(listJobsCmd)
}

func runListJobs(cmd *cobra.Command, args []string) error {
	configFile := GetConfigFile()

	cfg, err := config.Load(configFile)
	if err != nil {
		return fmt.Errorf("failed to load config: %w", err)
	}

	jobNames := cfg.ListJobs()

	if len(jobNames) == 0 {
		cmd.Printf("No jobs defined in %s\n", configFile)
		return nil
	}

	// Sort job names for consistent output
	sort.Strings(jobNames)

	cmd.Printf("Jobs defined in %s:\n\n", configFile)

	for i, jobName := range jobNames {
		job, err := cfg.GetJob(jobName)
		if err != nil {
			return fmt.Errorf("failed to get job %q: %w", jobName, err)
		}
		input := job.Input.WithDefaults()
		mining := job.GetJobMining(cfg.Mining)

		cmd.Printf("%d. %s\n", i+1, jobName)
		cmd.Printf("   Engine:        %s\n", job.EngineName())

		switch input.Kind {
		case config.InputCSV:
			cmd.Printf("   Input:         csv %s\n", input.Path)
		default:
			cmd.Printf("   Input:         mysql %s (key: %s)\n", input.Table, input.IDColumn)
			if input.Where != "" {
				cmd.Printf("   WHERE:         %s\n", input.Where)
			} else {
				cmd.Printf("   WHERE:         (none)\n")
			}
		}
		cmd.Printf("   Columns:       item=%s, date=%s\n", input.ItemColumn, input.DateColumn)
		cmd.Printf("   Store:         %v\n", job.Store)

		cmd.Printf("   Thresholds:    min_support=%d, min_period=%d", mining.MinSupport, mining.MinPeriod)
		if job.EngineName() == "depth" {
			cmd.Printf(", max_depth=%d", mining.MaxDepth)
		}
		if job.Mining != nil {
			cmd.Print(" (job-specific)")
		}
		cmd.Println()

		if job.Loading != nil {
			cmd.Printf("   Loading:       Custom (batch_size=%d, sleep=%.1fs)\n",
				job.Loading.BatchSize, job.Loading.SleepSeconds)
		}

		// Add spacing between jobs
		if i < len(jobNames)-1 {
			cmd.Println()
		}
	}

	cmd.Printf("\nTotal: %d job(s)\n", len(jobNames))
	return nil
}
