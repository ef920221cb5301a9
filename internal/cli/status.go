package cli

import (
	"context"
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"expertminer/internal/models"
)

var statusLimit int

var statusCmd = &cobra.Command{
	Use:   "status [run-id]",
	Short: "List runs or inspect a specific run",
	Long: `List your runs or inspect a specific run by ID.

Examples:
  expertminer status           # List recent runs
  expertminer status abc123    # Show details for run abc123`,
	Args: cobra.MaximumNArgs(1),
	RunE: runStatus,
}

func init() {
	statusCmd.Flags().IntVar(&statusLimit, "limit", 20, "max runs to list")
}

func runStatus(cmd *cobra.Command, args []string) error {
	ctx := context.Background()

	if len(args) == 1 {
		return showRun(ctx, args[0])
	}

	return listRuns(ctx)
}

func listRuns(ctx context.Context) error {
	runs, err := dbClient.ListRuns(ctx, userID, statusLimit)
	if err != nil {
		return fmt.Errorf("list runs: %w", err)
	}

	if len(runs) == 0 {
		fmt.Println("No runs found")
		return nil
	}

	fmt.Printf("%-10s %-12s %-8s %-10s %s\n", "ID", "STATUS", "EXPERTS", "TOKENS", "CREATED")
	fmt.Println("------------------------------------------------------------------------")

	for _, run := range runs {
		tokens := ""
		if run.TokenEstimate > 0 {
			tokens = fmt.Sprintf("%d", run.TokenEstimate)
		}
		fmt.Printf("%-10s %-12s %-8d %-10s %s\n",
			models.MustRecordIDString(run.ID), run.Status, len(run.Config.Experts),
			tokens, run.CreatedAt.Format("2006-01-02 15:04"))
	}

	return nil
}

func showRun(ctx context.Context, id string) error {
	run, err := dbClient.GetRun(ctx, id)
	if err != nil {
		return fmt.Errorf("get run: %w", err)
	}
	if run == nil {
		return fmt.Errorf("run not found: %s", id)
	}

	fmt.Printf("Run: %s\n", models.MustRecordIDString(run.ID))
	fmt.Printf("  Status: %s\n", run.Status)
	fmt.Printf("  User: %s\n", run.UserID)
	fmt.Printf("  Experts: %d\n", len(run.Config.Experts))
	for _, e := range run.Config.Experts {
		fmt.Printf("    - %s (%s)\n", e.Name, e.ProfileURL)
	}
	if len(run.Config.FocusTopics) > 0 {
		fmt.Printf("  Topics: %v\n", run.Config.FocusTopics)
	}
	fmt.Printf("  Created: %s\n", run.CreatedAt.Format(time.RFC3339))
	if run.StartedAt != nil {
		fmt.Printf("  Started: %s\n", run.StartedAt.Format(time.RFC3339))
	}
	if run.CompletedAt != nil {
		fmt.Printf("  Completed: %s\n", run.CompletedAt.Format(time.RFC3339))
		if run.StartedAt != nil {
			fmt.Printf("  Duration: %s\n", run.CompletedAt.Sub(*run.StartedAt).Round(time.Second))
		}
	}
	if run.TokenEstimate > 0 {
		fmt.Printf("  Tokens: %d (~$%.4f)\n", run.TokenEstimate, run.CostEstimateUSD)
	}
	if run.NeedsLoginURL != nil && *run.NeedsLoginURL != "" {
		fmt.Printf("  Login URL: %s\n", *run.NeedsLoginURL)
	}
	if run.FailureReason != nil && *run.FailureReason != "" {
		fmt.Printf("  Failure: %s\n", *run.FailureReason)
	}

	events, err := dbClient.GetRunEvents(ctx, id)
	if err != nil {
		return fmt.Errorf("get run events: %w", err)
	}
	if len(events) > 0 {
		fmt.Println("\nEvents:")
		for _, ev := range events {
			fmt.Printf("  %s  %-12s", ev.CreatedAt.Format("15:04:05"), ev.Kind)
			for k, v := range ev.Detail {
				fmt.Printf(" %s=%v", k, v)
			}
			fmt.Println()
		}
	}

	artifacts, err := dbClient.ListArtifacts(ctx, id)
	if err != nil {
		return fmt.Errorf("list artifacts: %w", err)
	}
	if len(artifacts) > 0 {
		fmt.Println("\nArtifacts:")
		for _, art := range artifacts {
			fmt.Printf("  %-28s %8d bytes  %s\n", art.Kind, art.SizeBytes, art.Path)
		}
	}

	return nil
}
