package cli

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"

	"expertminer/internal/models"
)

var loginCmd = &cobra.Command{
	Use:   "login",
	Short: "Show runs waiting for an interactive login",
	Long: `Show runs parked in needs_login with the URL to complete the login in a
browser. The worker picks the run back up automatically once the session is
authenticated.`,
	Args: cobra.NoArgs,
	RunE: runLogin,
}

func runLogin(cmd *cobra.Command, args []string) error {
	ctx := context.Background()

	runs, err := dbClient.ListRuns(ctx, userID, 50)
	if err != nil {
		return fmt.Errorf("list runs: %w", err)
	}

	var waiting int
	for _, run := range runs {
		if run.Status != models.RunStatusNeedsLogin {
			continue
		}
		waiting++
		fmt.Printf("Run %s is waiting for login:\n", models.MustRecordIDString(run.ID))
		if run.NeedsLoginURL != nil && *run.NeedsLoginURL != "" {
			fmt.Printf("  %s\n", *run.NeedsLoginURL)
		} else {
			fmt.Println("  (login URL not yet available, check again shortly)")
		}
	}

	if waiting == 0 {
		fmt.Println("No runs waiting for login")
	}

	return nil
}
