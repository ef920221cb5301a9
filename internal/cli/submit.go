package cli

import (
	"context"
	"fmt"
	"log/slog"
	"os"

	"github.com/google/uuid"
	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"

	"expertminer/internal/models"
	"expertminer/internal/queue"
)

var (
	submitTopics    []string
	submitPostLimit int
	submitFormat    string
	submitWatch     bool
)

var submitCmd = &cobra.Command{
	Use:   "submit <roster.yaml>",
	Short: "Submit a run for an expert roster",
	Long: `Submit a run for the experts listed in a YAML roster file.

The roster holds the profiles to mine and optional defaults, which the flags
override:

  experts:
    - name: Jane Doe
      profile_url: https://linkedin.com/in/janedoe
  focus_topics: [outbound, cold email]
  post_limit: 50

Examples:
  expertminer submit roster.yaml
  expertminer submit roster.yaml --topics fundraising --watch`,
	Args: cobra.ExactArgs(1),
	RunE: runSubmit,
}

func init() {
	submitCmd.Flags().StringSliceVar(&submitTopics, "topics", nil, "focus topics (overrides roster)")
	submitCmd.Flags().IntVar(&submitPostLimit, "post-limit", 0, "max posts per expert (overrides roster)")
	submitCmd.Flags().StringVar(&submitFormat, "format", "", "output format (overrides roster)")
	submitCmd.Flags().BoolVar(&submitWatch, "watch", false, "follow run progress interactively")
}

// roster is the on-disk submission file.
type roster struct {
	Experts      []models.ExpertConfig `yaml:"experts"`
	FocusTopics  []string              `yaml:"focus_topics"`
	PostLimit    int                   `yaml:"post_limit"`
	OutputFormat string                `yaml:"output_format"`
}

func runSubmit(cmd *cobra.Command, args []string) error {
	ctx := context.Background()

	data, err := os.ReadFile(args[0])
	if err != nil {
		return fmt.Errorf("read roster: %w", err)
	}

	var r roster
	if err := yaml.Unmarshal(data, &r); err != nil {
		return fmt.Errorf("parse roster: %w", err)
	}
	if len(r.Experts) == 0 {
		return fmt.Errorf("roster has no experts")
	}
	for i, e := range r.Experts {
		if e.Name == "" || e.ProfileURL == "" {
			return fmt.Errorf("expert %d: name and profile_url are required", i+1)
		}
	}

	runCfg := models.RunConfig{
		Experts:      r.Experts,
		FocusTopics:  r.FocusTopics,
		OutputFormat: r.OutputFormat,
		PostLimit:    r.PostLimit,
	}
	if len(submitTopics) > 0 {
		runCfg.FocusTopics = submitTopics
	}
	if submitPostLimit > 0 {
		runCfg.PostLimit = submitPostLimit
	}
	if submitFormat != "" {
		runCfg.OutputFormat = submitFormat
	}

	run, err := dbClient.CreateRun(ctx, uuid.NewString()[:8], userID, runCfg)
	if err != nil {
		return fmt.Errorf("create run: %w", err)
	}
	runID := models.MustRecordIDString(run.ID)

	q := queue.New(dbClient, slog.New(slog.DiscardHandler), cfg.PollInterval, cfg.MaxRunMinutes)
	if _, err := q.Enqueue(ctx, runID); err != nil {
		return fmt.Errorf("enqueue run: %w", err)
	}

	fmt.Printf("Run %s submitted (%d experts)\n", runID, len(runCfg.Experts))
	if !submitWatch {
		fmt.Printf("Use 'expertminer status %s' to check progress.\n", runID)
		return nil
	}

	return RunWatch(dbClient, run)
}
