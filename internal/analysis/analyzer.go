// Package analysis turns scraped posts into categorized, deduplicated
// insights via a two-pass LLM pipeline with a deterministic keyword fallback.
package analysis

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"
	"golang.org/x/sync/errgroup"

	"expertminer/internal/llm"
	"expertminer/internal/models"
	"expertminer/internal/tokens"
)

const (
	relevanceBatchSize = 5
	relevanceThreshold = 0.6
	neutralScore       = 0.5
	maxImagesPerPost   = 5
	imageFetchTimeout  = 10 * time.Second
	maxImageBytes      = 5 << 20
	extractConcurrency = 3
)

// Completer is the model surface the analyzer needs. *llm.Client satisfies
// it; tests substitute fakes.
type Completer interface {
	FastComplete(ctx context.Context, prompt string) (string, error)
	Complete(ctx context.Context, prompt string, images [][]byte) (string, error)
}

// Analyzer runs the relevance and extraction passes. A nil model switches
// the whole pipeline to the keyword extractor.
type Analyzer struct {
	model      Completer
	httpClient *http.Client
	logger     *slog.Logger
	batchDelay time.Duration
}

func New(model Completer, logger *slog.Logger) *Analyzer {
	return &Analyzer{
		model:      model,
		httpClient: &http.Client{Timeout: imageFetchTimeout},
		logger:     logger,
		batchDelay: 500 * time.Millisecond,
	}
}

// Analyze produces one expert's analysis from their scraped posts.
func (a *Analyzer) Analyze(ctx context.Context, expert string, posts []models.Post, focusTopics []string) (*models.ExpertAnalysis, error) {
	if a.model == nil {
		a.logger.Info(describeKeywordRun(expert), "posts", len(posts))
		return keywordAnalyze(expert, posts), nil
	}

	analysis := &models.ExpertAnalysis{
		Expert:        expert,
		Insights:      []models.Insight{},
		Templates:     []string{},
		Actionables:   []string{},
		Methodologies: []models.Methodology{},
		PostsAnalyzed: len(posts),
	}
	if len(posts) == 0 {
		return analysis, nil
	}

	relevant, relevanceTokens := a.scoreRelevance(ctx, posts, focusTopics)
	analysis.TokensUsed += relevanceTokens
	analysis.PostsRelevant = len(relevant)
	a.logger.Info("relevance pass complete",
		"expert", expert,
		"posts", len(posts),
		"relevant", len(relevant))
	if len(relevant) == 0 {
		return analysis, nil
	}

	var mu sync.Mutex
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(extractConcurrency)
	for _, post := range relevant {
		g.Go(func() error {
			result, used := a.extractPost(gctx, post, focusTopics)
			mu.Lock()
			defer mu.Unlock()
			analysis.TokensUsed += used
			if result == nil {
				return nil
			}
			analysis.Insights = append(analysis.Insights, result.toInsights(post)...)
			analysis.Templates = append(analysis.Templates, result.Templates...)
			analysis.Actionables = append(analysis.Actionables, result.Actionables...)
			for _, m := range result.Methodologies {
				m.Sources = []string{post.Author}
				analysis.Methodologies = append(analysis.Methodologies, m)
			}
			return nil
		})
	}
	_ = g.Wait()

	analysis.Insights = dedupInsights(analysis.Insights)
	analysis.Templates = dedupStrings(analysis.Templates)
	analysis.Actionables = dedupStrings(analysis.Actionables)
	analysis.Methodologies = dedupMethodologies(analysis.Methodologies)
	return analysis, nil
}

// scoreRelevance runs pass 1: batches of posts scored by the fast model with
// a fixed delay between batches. A failed batch scores neutral, and posts at
// or below the threshold are discarded.
func (a *Analyzer) scoreRelevance(ctx context.Context, posts []models.Post, focusTopics []string) ([]models.Post, int) {
	var relevant []models.Post
	tokensUsed := 0

	for start := 0; start < len(posts); start += relevanceBatchSize {
		if start > 0 {
			select {
			case <-ctx.Done():
				return relevant, tokensUsed
			case <-time.After(a.batchDelay):
			}
		}

		end := start + relevanceBatchSize
		if end > len(posts) {
			end = len(posts)
		}
		batch := posts[start:end]

		prompt := relevancePrompt(batch, focusTopics)
		tokensUsed += tokens.EstimateTokens(prompt)

		scores := make([]float64, len(batch))
		response, err := a.model.FastComplete(ctx, prompt)
		if err != nil {
			a.logger.Warn("relevance batch failed, scoring neutral", "error", err)
			for i := range scores {
				scores[i] = neutralScore
			}
		} else {
			tokensUsed += tokens.EstimateTokens(response)
			scores = parseScores(response, len(batch))
		}

		for i, post := range batch {
			if scores[i] > relevanceThreshold {
				relevant = append(relevant, post)
			}
		}
	}
	return relevant, tokensUsed
}

// extractionResult is the strong model's JSON response shape.
type extractionResult struct {
	Insights []struct {
		Category    string   `json:"category"`
		Text        string   `json:"text"`
		Confidence  float64  `json:"confidence"`
		Actionables []string `json:"actionables"`
		Templates   []string `json:"templates"`
	} `json:"insights"`
	Templates     []string             `json:"templates"`
	Actionables   []string             `json:"actionables"`
	Methodologies []models.Methodology `json:"methodologies"`
}

func (r *extractionResult) toInsights(post models.Post) []models.Insight {
	out := make([]models.Insight, 0, len(r.Insights))
	for _, in := range r.Insights {
		if strings.TrimSpace(in.Text) == "" {
			continue
		}
		out = append(out, models.Insight{
			ID:          uuid.NewString()[:8],
			Category:    models.ParseCategory(in.Category),
			Text:        strings.TrimSpace(in.Text),
			Confidence:  models.ClampConfidence(in.Confidence),
			ExtractedAt: time.Now(),
			SourcePost:  post.URL,
			Actionables: in.Actionables,
			Templates:   in.Templates,
		})
	}
	return out
}

// extractPost runs pass 2 for one post. A failed request with images is
// retried once without them; a persistently failing post yields nil and the
// batch continues.
func (a *Analyzer) extractPost(ctx context.Context, post models.Post, focusTopics []string) (*extractionResult, int) {
	images := a.downloadImages(ctx, post.ImageURLs)
	prompt := extractionPrompt(post, focusTopics, len(images) > 0)
	tokensUsed := tokens.EstimateTokens(prompt)

	response, err := a.model.Complete(ctx, prompt, images)
	if err != nil && len(images) > 0 {
		a.logger.Warn("extraction with images failed, retrying without",
			"post", post.URL, "error", err)
		prompt = extractionPrompt(post, focusTopics, false)
		tokensUsed += tokens.EstimateTokens(prompt)
		response, err = a.model.Complete(ctx, prompt, nil)
	}
	if err != nil {
		a.logger.Warn("extraction failed, skipping post", "post", post.URL, "error", err)
		return nil, tokensUsed
	}
	tokensUsed += tokens.EstimateTokens(response)

	var result extractionResult
	if jsonErr := json.Unmarshal([]byte(response), &result); jsonErr != nil {
		repaired := llm.RepairJSON(response)
		if jsonErr = json.Unmarshal([]byte(repaired), &result); jsonErr != nil {
			a.logger.Warn("extraction response unparseable after repair",
				"post", post.URL, "error", jsonErr)
			return nil, tokensUsed
		}
	}
	return &result, tokensUsed
}

// downloadImages fetches up to maxImagesPerPost post images. Failures are
// skipped; the extraction proceeds with whatever downloaded.
func (a *Analyzer) downloadImages(ctx context.Context, urls []string) [][]byte {
	if len(urls) > maxImagesPerPost {
		urls = urls[:maxImagesPerPost]
	}
	var images [][]byte
	for _, url := range urls {
		data, err := a.fetchImage(ctx, url)
		if err != nil {
			a.logger.Debug("image download failed", "url", url, "error", err)
			continue
		}
		images = append(images, data)
	}
	return images
}

func (a *Analyzer) fetchImage(ctx context.Context, url string) ([]byte, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, err
	}
	resp, err := a.httpClient.Do(req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("status %d", resp.StatusCode)
	}
	return io.ReadAll(io.LimitReader(resp.Body, maxImageBytes))
}

// parseScores reads the fast model's JSON array, padding or clamping to the
// batch size. An unparseable response scores the whole batch neutral.
func parseScores(response string, n int) []float64 {
	scores := make([]float64, n)
	cleaned := llm.RepairJSON(response)

	var parsed []float64
	if err := json.Unmarshal([]byte(cleaned), &parsed); err != nil {
		for i := range scores {
			scores[i] = neutralScore
		}
		return scores
	}
	for i := range scores {
		if i < len(parsed) {
			scores[i] = models.ClampConfidence(parsed[i])
		} else {
			scores[i] = neutralScore
		}
	}
	return scores
}
