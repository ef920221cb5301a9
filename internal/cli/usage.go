package cli

import (
	"context"
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"expertminer/internal/llm"
	"expertminer/internal/usage"
)

var usagePeriod string

var usageCmd = &cobra.Command{
	Use:   "usage",
	Short: "Show monthly usage counters",
	Long: `Show run and token counters for a calendar month.

Examples:
  expertminer usage
  expertminer usage --period 2026-07`,
	Args: cobra.NoArgs,
	RunE: runUsage,
}

func init() {
	usageCmd.Flags().StringVar(&usagePeriod, "period", "", "month to report, YYYY-MM (default: current)")
}

func runUsage(cmd *cobra.Command, args []string) error {
	ctx := context.Background()

	period := usagePeriod
	if period == "" {
		period = usage.PeriodKey(time.Now())
	} else if _, err := time.Parse("2006-01", period); err != nil {
		return fmt.Errorf("invalid period %q, expected YYYY-MM", usagePeriod)
	}

	summary, err := dbClient.GetUsage(ctx, userID, period)
	if err != nil {
		return fmt.Errorf("get usage: %w", err)
	}

	fmt.Printf("Usage for %s (%s)\n", userID, period)
	fmt.Println("--------------------------------")
	if summary == nil {
		fmt.Println("No runs recorded")
		return nil
	}

	fmt.Printf("Runs:   %d\n", summary.Runs)
	fmt.Printf("Tokens: %d\n", summary.Tokens)
	fmt.Printf("Cost:   ~$%.4f\n", llm.EstimateCostUSD(summary.Tokens))

	return nil
}
