package cli

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"expertminer/internal/aggregate"
	"expertminer/internal/analysis"
	"expertminer/internal/artifact"
	"expertminer/internal/browser"
	"expertminer/internal/bundle"
	"expertminer/internal/config"
	"expertminer/internal/enrich"
	"expertminer/internal/llm"
	"expertminer/internal/queue"
	"expertminer/internal/sessioncrypt"
	"expertminer/internal/usage"
	"expertminer/internal/worker"
)

var workerCmd = &cobra.Command{
	Use:   "worker",
	Short: "Run the worker daemon",
	Long: `Run the worker daemon that claims queued runs and processes them to
completion: login resolution, scraping, analysis, bundling and accounting.

The daemon runs until interrupted. Without an LLM credential it falls back to
the deterministic keyword extractor.`,
	Args: cobra.NoArgs,
	RunE: runWorker,
}

func runWorker(cmd *cobra.Command, args []string) error {
	if err := cfg.ValidateWorker(); err != nil {
		return err
	}

	logger, cleanup := config.SetupLogger(cfg.LogFile, cfg.LogLevel)
	defer cleanup()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	var completer analysis.Completer
	if cfg.HasLLMCredential() {
		llmClient, err := llm.New(ctx, cfg)
		if err != nil {
			return fmt.Errorf("create llm client: %w", err)
		}
		completer = llmClient
		logger.Info("llm analysis enabled", "provider", cfg.LLMProvider,
			"model", llmClient.Model(), "fast_model", llmClient.FastModel())
	} else {
		logger.Warn("no LLM credential, using keyword extraction")
	}

	key, err := cfg.SessionKeyBytes()
	if err != nil {
		return fmt.Errorf("decode session key: %w", err)
	}
	box, err := sessioncrypt.NewBox(key)
	if err != nil {
		return fmt.Errorf("create session box: %w", err)
	}

	browserClient := browser.NewClient(cfg.BrowserServiceURL, cfg.BrowserServiceKey, logger)

	w := worker.New(worker.Options{
		Store:     dbClient,
		Broker:    browserClient,
		Scraper:   browserClient,
		Analyzer:  analysis.New(completer, logger),
		Enricher:  enrich.New(logger),
		Aggregate: aggregate.Aggregate,
		NewBundler: func(focusTopics []string) worker.BundleBuilder {
			return bundle.NewBuilder(focusTopics)
		},
		ExpertKind:      bundle.ExpertKind,
		InstructionKind: bundle.InstructionsKind,
		Artifacts:       artifact.NewStore(cfg.ArtifactDir, dbClient, logger),
		Usage:           usage.NewAccountant(dbClient, logger),
		Crypt:           box,
		Logger:          logger,
		LoginRetryDelay: cfg.LoginRetryDelay,
		MaxRunMinutes:   cfg.MaxRunMinutes,
	})

	q := queue.New(dbClient, logger, cfg.PollInterval, cfg.MaxRunMinutes)
	if err := q.Run(ctx, w); err != nil && !errors.Is(err, context.Canceled) {
		return err
	}

	return nil
}
