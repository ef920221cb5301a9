package cli

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"

	"expertminer/internal/models"
)

var jobsLimit int

var jobsCmd = &cobra.Command{
	Use:   "jobs",
	Short: "List queue jobs",
	Long: `List the durable queue jobs backing runs, newest first.

Useful to see retries, backoff schedules and dead jobs.`,
	Args: cobra.NoArgs,
	RunE: runJobs,
}

func init() {
	jobsCmd.Flags().IntVar(&jobsLimit, "limit", 20, "max jobs to list")
}

func runJobs(cmd *cobra.Command, args []string) error {
	ctx := context.Background()

	jobs, err := dbClient.ListJobs(ctx, jobsLimit)
	if err != nil {
		return fmt.Errorf("list jobs: %w", err)
	}

	if len(jobs) == 0 {
		fmt.Println("No jobs found")
		return nil
	}

	fmt.Printf("%-10s %-10s %-12s %-10s %-17s %s\n", "ID", "RUN", "STATUS", "ATTEMPTS", "NOT BEFORE", "ERROR")
	fmt.Println("-------------------------------------------------------------------------------")

	for _, job := range jobs {
		errMsg := ""
		if job.Error != nil {
			errMsg = *job.Error
			if len(errMsg) > 40 {
				errMsg = errMsg[:40] + "…"
			}
		}
		fmt.Printf("%-10s %-10s %-12s %d/%-8d %-17s %s\n",
			models.MustRecordIDString(job.ID), job.RunID, job.Status,
			job.Attempts, job.MaxAttempts,
			job.NotBefore.Format("01-02 15:04:05"), errMsg)
	}

	return nil
}
