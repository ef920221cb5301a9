// Package cli provides the command-line interface for expertminer.
package cli

import (
	"context"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"expertminer/internal/config"
	"expertminer/internal/db"
)

var (
	// Version is set at build time.
	Version = "0.1.0"

	// Global flags
	userID string

	// Global config and db client
	cfg      config.Config
	dbClient *db.Client
)

// rootCmd represents the base command when called without any subcommands.
var rootCmd = &cobra.Command{
	Use:   "expertminer",
	Short: "Mine expert social posts into actionable playbooks",
	Long: `Expertminer scrapes a roster of expert profiles, runs a two-pass LLM
analysis over their posts and compiles the results into per-expert playbooks
plus a combined instructions document.

Runs are durable: submit one, let the worker daemon process it, and check on
it any time with 'expertminer status'.`,
	Version: Version,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		// Skip DB connection for version and help commands
		if cmd.Name() == "version" || cmd.Name() == "help" {
			return nil
		}

		cfg = config.Load()

		ctx := context.Background()
		dbCfg := db.Config{
			URL:       cfg.SurrealDBURL,
			Namespace: cfg.SurrealDBNamespace,
			Database:  cfg.SurrealDBDatabase,
			Username:  cfg.SurrealDBUser,
			Password:  cfg.SurrealDBPass,
			AuthLevel: cfg.SurrealDBAuthLevel,
		}

		var err error
		dbClient, err = db.NewClient(ctx, dbCfg, nil)
		if err != nil {
			return fmt.Errorf("connect to database: %w", err)
		}

		if err := dbClient.InitSchema(ctx); err != nil {
			return fmt.Errorf("initialize schema: %w", err)
		}

		return nil
	},
	PersistentPostRun: func(cmd *cobra.Command, args []string) {
		if dbClient != nil {
			if err := dbClient.Close(context.Background()); err != nil {
				fmt.Fprintf(os.Stderr, "Warning: failed to close database: %v\n", err)
			}
		}
	},
}

// Execute adds all child commands to the root command and sets flags appropriately.
func Execute() error {
	return rootCmd.Execute()
}

func init() {
	rootCmd.PersistentFlags().StringVar(&userID, "user", defaultUser(), "user the runs are booked against")

	rootCmd.AddCommand(submitCmd)
	rootCmd.AddCommand(statusCmd)
	rootCmd.AddCommand(workerCmd)
	rootCmd.AddCommand(loginCmd)
	rootCmd.AddCommand(usageCmd)
	rootCmd.AddCommand(jobsCmd)
}

func defaultUser() string {
	if u := os.Getenv("EXPERTMINER_USER"); u != "" {
		return u
	}
	return "local"
}
