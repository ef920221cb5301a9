// Package worker executes the run lifecycle: cooperative login resolution,
// scraping, analysis, bundling and accounting for one claimed job at a time.
package worker

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"expertminer/internal/browser"
	"expertminer/internal/db"
	"expertminer/internal/llm"
	"expertminer/internal/models"
	"expertminer/internal/queue"
	"expertminer/internal/sessioncrypt"
)

// Store is the database surface the worker needs. *db.Client satisfies it.
type Store interface {
	GetRun(ctx context.Context, id string) (*models.Run, error)
	MarkNeedsLogin(ctx context.Context, id, loginURL, browserSession string) error
	MarkRunning(ctx context.Context, id string) error
	CompleteRun(ctx context.Context, id string, tokenEstimate int, costUSD float64) error
	FailRun(ctx context.Context, id, reason string) error
	RecordRunEvent(ctx context.Context, runID, kind string, detail map[string]any) error
	GetActiveSession(ctx context.Context, userID string) (*models.LoginSession, error)
	SaveLoginSession(ctx context.Context, userID string, payload []byte, algorithm string, expiresAt *time.Time) (*models.LoginSession, error)
}

// Analyzer produces one expert's analysis.
type Analyzer interface {
	Analyze(ctx context.Context, expert string, posts []models.Post, focusTopics []string) (*models.ExpertAnalysis, error)
}

// Enricher fetches external article content for links found in posts.
type Enricher interface {
	EnrichLinks(ctx context.Context, urls []string) []models.ExternalArticle
}

// Aggregator merges per-expert analyses.
type Aggregator func(analyses []models.ExpertAnalysis, cfg models.RunConfig) models.AggregatedAnalysis

// BundleBuilder renders the output documents.
type BundleBuilder interface {
	ExpertDocument(analysis models.ExpertAnalysis) []byte
	InstructionsDocument(agg models.AggregatedAnalysis, articles []models.ExternalArticle) []byte
}

// ArtifactSaver persists one rendered document.
type ArtifactSaver interface {
	Save(ctx context.Context, runID, kind string, content []byte) (*models.Artifact, error)
}

// UsageRecorder books a completed run against the user's monthly counters.
type UsageRecorder interface {
	RecordRun(ctx context.Context, userID string, tokens int) error
}

// ExpertKindFunc maps an expert name to its artifact kind.
type ExpertKindFunc func(expert string) string

// Worker processes run jobs claimed from the queue.
type Worker struct {
	store      Store
	broker     browser.LoginBroker
	scraper    browser.Scraper
	analyzer   Analyzer
	enricher   Enricher
	aggregate  Aggregator
	newBundler func(focusTopics []string) BundleBuilder
	expertKind ExpertKindFunc
	artifacts  ArtifactSaver
	usage      UsageRecorder
	crypt      *sessioncrypt.Box
	logger     *slog.Logger

	loginRetryDelay time.Duration
	maxRunDuration  time.Duration
	instructionKind string
}

// Options wires the worker's collaborators.
type Options struct {
	Store           Store
	Broker          browser.LoginBroker
	Scraper         browser.Scraper
	Analyzer        Analyzer
	Enricher        Enricher
	Aggregate       Aggregator
	NewBundler      func(focusTopics []string) BundleBuilder
	ExpertKind      ExpertKindFunc
	InstructionKind string
	Artifacts       ArtifactSaver
	Usage           UsageRecorder
	Crypt           *sessioncrypt.Box
	Logger          *slog.Logger
	LoginRetryDelay time.Duration
	MaxRunMinutes   int
}

func New(opts Options) *Worker {
	return &Worker{
		store:           opts.Store,
		broker:          opts.Broker,
		scraper:         opts.Scraper,
		analyzer:        opts.Analyzer,
		enricher:        opts.Enricher,
		aggregate:       opts.Aggregate,
		newBundler:      opts.NewBundler,
		expertKind:      opts.ExpertKind,
		instructionKind: opts.InstructionKind,
		artifacts:       opts.Artifacts,
		usage:           opts.Usage,
		crypt:           opts.Crypt,
		logger:          opts.Logger,
		loginRetryDelay: opts.LoginRetryDelay,
		maxRunDuration:  time.Duration(opts.MaxRunMinutes) * time.Minute,
	}
}

// ProcessRunJob advances one run as far as it can go in a single claim.
// Login waits come back as Pending so the queue slot is never blocked.
func (w *Worker) ProcessRunJob(ctx context.Context, job models.QueueJob) queue.Result {
	log := w.logger.With("run_id", job.RunID)

	run, err := w.store.GetRun(ctx, job.RunID)
	if err != nil {
		return queue.Failed(fmt.Errorf("load run: %w", err))
	}
	if run == nil {
		log.Warn("run missing, dropping job")
		return queue.Done()
	}
	if run.Status.Terminal() {
		log.Info("run already terminal, dropping job", "status", run.Status)
		return queue.Done()
	}

	cookies, result := w.resolveLogin(ctx, run, log)
	if result != nil {
		return *result
	}

	return w.processRunning(ctx, run, cookies, log)
}

// resolveLogin produces authenticated cookies, or the queue result that
// defers the job. A non-nil result means "stop here".
func (w *Worker) resolveLogin(ctx context.Context, run *models.Run, log *slog.Logger) ([]models.Cookie, *queue.Result) {
	runID := models.MustRecordIDString(run.ID)

	session, err := w.store.GetActiveSession(ctx, run.UserID)
	if err != nil {
		r := queue.Failed(fmt.Errorf("load session: %w", err))
		return nil, &r
	}
	if session != nil {
		cookies, err := w.crypt.OpenCookies(session.Payload)
		if err == nil {
			return cookies, nil
		}
		// Undecryptable payloads (key rotation, corruption) mean a fresh
		// interactive login.
		log.Warn("stored session undecryptable, requesting new login", "error", err)
	}

	if run.BrowserSession != nil {
		cookies, err := w.broker.CaptureCookies(ctx, *run.BrowserSession)
		if err != nil {
			log.Info("cookie capture not ready", "error", err)
			r := queue.Pending(w.loginRetryDelay)
			return nil, &r
		}
		if len(cookies) == 0 {
			log.Info("login not completed yet, re-queueing")
			r := queue.Pending(w.loginRetryDelay)
			return nil, &r
		}

		sealed, err := w.crypt.SealCookies(cookies)
		if err != nil {
			r := queue.Failed(fmt.Errorf("seal cookies: %w", err))
			return nil, &r
		}
		if _, err := w.store.SaveLoginSession(ctx, run.UserID, sealed, sessioncrypt.Algorithm, nil); err != nil {
			r := queue.Failed(fmt.Errorf("save session: %w", err))
			return nil, &r
		}
		log.Info("login captured", "cookies", len(cookies))
		return cookies, nil
	}

	browserSession, err := w.broker.ProvisionSession(ctx)
	if err != nil {
		r := queue.Failed(fmt.Errorf("provision browser session: %w", err))
		return nil, &r
	}
	if browserSession.WSEndpoint != "" {
		if err := w.broker.CheckLiveness(ctx, browserSession.WSEndpoint); err != nil {
			// A session whose browser never came up must not be handed to the
			// user; release it and try again on the next claim.
			log.Warn("provisioned session unreachable, re-queueing", "error", err)
			if rerr := w.broker.ReleaseSession(ctx, browserSession.ID); rerr != nil {
				log.Warn("release unreachable session failed", "error", rerr)
			}
			r := queue.Pending(w.loginRetryDelay)
			return nil, &r
		}
	}
	if err := w.store.MarkNeedsLogin(ctx, runID, browserSession.LoginURL, browserSession.ID); err != nil {
		r := w.asQueueResult(err)
		return nil, &r
	}
	if err := w.store.RecordRunEvent(ctx, runID, models.EventNeedsLogin, map[string]any{
		"login_url": browserSession.LoginURL,
	}); err != nil {
		log.Warn("record needs_login event failed", "error", err)
	}
	log.Info("interactive login required", "login_url", browserSession.LoginURL)
	r := queue.Pending(w.loginRetryDelay)
	return nil, &r
}

// processRunning executes the full extraction pipeline. Any error fails the
// run; the provisioned browser session is always released.
func (w *Worker) processRunning(ctx context.Context, run *models.Run, cookies []models.Cookie, log *slog.Logger) queue.Result {
	runID := models.MustRecordIDString(run.ID)

	if run.BrowserSession != nil {
		sessionID := *run.BrowserSession
		defer func() {
			if err := w.broker.ReleaseSession(context.WithoutCancel(ctx), sessionID); err != nil {
				log.Warn("release browser session failed", "error", err)
			}
		}()
	}

	if err := w.store.MarkRunning(ctx, runID); err != nil {
		return w.asQueueResult(err)
	}
	if err := w.store.RecordRunEvent(ctx, runID, models.EventRunning, nil); err != nil {
		log.Warn("record running event failed", "error", err)
	}

	runCtx := ctx
	if w.maxRunDuration > 0 {
		var cancel context.CancelFunc
		runCtx, cancel = context.WithTimeout(ctx, w.maxRunDuration)
		defer cancel()
	}

	scrape, err := w.scraper.ScrapeProfiles(runCtx, cookies, run.Config.Experts, run.Config.PostLimit, run.Config.FocusTopics)
	if err != nil {
		return w.failRun(ctx, runID, fmt.Errorf("scrape: %w", err), log)
	}
	log.Info("scrape finished", "posts", len(scrape.AllPosts))

	analyses := make([]models.ExpertAnalysis, 0, len(run.Config.Experts))
	totalTokens := 0
	for _, expert := range run.Config.Experts {
		analysis, err := w.analyzer.Analyze(runCtx, expert.Name, scrape.ByExpert[expert.Name], run.Config.FocusTopics)
		if err != nil {
			return w.failRun(ctx, runID, fmt.Errorf("analyze %s: %w", expert.Name, err), log)
		}
		totalTokens += analysis.TokensUsed
		analyses = append(analyses, *analysis)
	}
	agg := w.aggregate(analyses, run.Config)

	var links []string
	for _, post := range scrape.AllPosts {
		links = append(links, post.Links...)
	}
	articles := w.enricher.EnrichLinks(runCtx, links)

	bundler := w.newBundler(run.Config.FocusTopics)
	for _, analysis := range analyses {
		doc := bundler.ExpertDocument(analysis)
		if _, err := w.artifacts.Save(runCtx, runID, w.expertKind(analysis.Expert), doc); err != nil {
			return w.failRun(ctx, runID, fmt.Errorf("save expert document: %w", err), log)
		}
	}
	instructions := bundler.InstructionsDocument(agg, articles)
	if _, err := w.artifacts.Save(runCtx, runID, w.instructionKind, instructions); err != nil {
		return w.failRun(ctx, runID, fmt.Errorf("save instructions: %w", err), log)
	}

	if len(scrape.UpdatedCookies) > 0 {
		sealed, err := w.crypt.SealCookies(scrape.UpdatedCookies)
		if err == nil {
			if _, err := w.store.SaveLoginSession(ctx, run.UserID, sealed, sessioncrypt.Algorithm, nil); err != nil {
				log.Warn("refresh session failed", "error", err)
			}
		}
	}

	if err := w.usage.RecordRun(ctx, run.UserID, totalTokens); err != nil {
		log.Warn("usage accounting failed", "error", err)
	}

	cost := llm.EstimateCostUSD(totalTokens)
	if err := w.store.CompleteRun(ctx, runID, totalTokens, cost); err != nil {
		return w.asQueueResult(err)
	}
	if err := w.store.RecordRunEvent(ctx, runID, models.EventCompleted, map[string]any{
		"posts":   len(scrape.AllPosts),
		"experts": len(analyses),
	}); err != nil {
		log.Warn("record completed event failed", "error", err)
	}
	log.Info("run completed", "tokens", totalTokens, "cost_usd", cost)
	return queue.Done()
}

// failRun records the failure on the run and hands the error back to the
// queue for its bounded generic retry.
func (w *Worker) failRun(ctx context.Context, runID string, cause error, log *slog.Logger) queue.Result {
	log.Error("run failed", "error", cause)
	if err := w.store.FailRun(ctx, runID, cause.Error()); err != nil && !errors.Is(err, db.ErrTerminalStatus) {
		log.Error("record run failure errored", "error", err)
	}
	if err := w.store.RecordRunEvent(ctx, runID, models.EventFailed, map[string]any{
		"reason": cause.Error(),
	}); err != nil {
		log.Warn("record failed event errored", "error", err)
	}
	return queue.Failed(cause)
}

// asQueueResult maps guarded-update race outcomes: a run that became
// terminal or vanished under us is dropped, anything else is a failure.
func (w *Worker) asQueueResult(err error) queue.Result {
	if errors.Is(err, db.ErrTerminalStatus) || errors.Is(err, db.ErrNotFound) {
		return queue.Done()
	}
	return queue.Failed(err)
}
