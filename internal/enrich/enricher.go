// Package enrich fetches readable article content for URLs referenced by
// scraped posts.
package enrich

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/PuerkitoBio/goquery"
	readability "github.com/go-shiori/go-readability"
	"golang.org/x/sync/errgroup"

	"expertminer/internal/models"
)

// eventDomains are platforms that host webinars/events rather than articles.
// Links to them are never fetched.
var eventDomains = []string{
	"eventbrite.com",
	"lu.ma",
	"hopin.com",
	"airmeet.com",
	"zoom.us",
	"webex.com",
	"gotowebinar.com",
	"meetup.com",
	"bigmarker.com",
}

// eventPathHints mark event/registration pages on otherwise article-bearing
// domains.
var eventPathHints = []string{"/register", "/webinar", "/event"}

const (
	maxArticles  = 10
	fetchLimit   = 4 // concurrent fetches
	fetchTimeout = 15 * time.Second
	maxBodyChars = 20000
)

// Enricher fetches and extracts readable article text from candidate URLs.
type Enricher struct {
	client *http.Client
	logger *slog.Logger
}

// New creates an Enricher. A nil logger falls back to slog.Default.
func New(logger *slog.Logger) *Enricher {
	if logger == nil {
		logger = slog.Default()
	}
	return &Enricher{
		client: &http.Client{Timeout: fetchTimeout},
		logger: logger,
	}
}

// EnrichLinks fetches readable articles for the given candidate URLs.
// Duplicate URLs are fetched once; event/webinar URLs are skipped before any
// network call. Fetch and parse failures degrade to fewer articles and are
// never returned as an error.
func (e *Enricher) EnrichLinks(ctx context.Context, candidates []string) []models.ExternalArticle {
	urls := FilterCandidates(candidates)
	if len(urls) > maxArticles {
		urls = urls[:maxArticles]
	}

	articles := make([]*models.ExternalArticle, len(urls))
	g, ctx := errgroup.WithContext(ctx)
	g.SetLimit(fetchLimit)
	for i, u := range urls {
		g.Go(func() error {
			article, err := e.fetchArticle(ctx, u)
			if err != nil {
				e.logger.Debug("article fetch failed", "url", u, "error", err)
				return nil
			}
			articles[i] = article
			return nil
		})
	}
	_ = g.Wait() // goroutines only return nil

	var out []models.ExternalArticle
	for _, a := range articles {
		if a != nil {
			out = append(out, *a)
		}
	}
	return out
}

// FilterCandidates deduplicates URLs and removes event/webinar links and
// anything unparseable. Order of first occurrence is preserved.
func FilterCandidates(candidates []string) []string {
	seen := make(map[string]struct{}, len(candidates))
	var out []string
	for _, raw := range candidates {
		raw = strings.TrimSpace(raw)
		if raw == "" {
			continue
		}
		if _, ok := seen[raw]; ok {
			continue
		}
		seen[raw] = struct{}{}
		if IsEventURL(raw) {
			continue
		}
		if u, err := url.Parse(raw); err != nil || u.Host == "" || (u.Scheme != "http" && u.Scheme != "https") {
			continue
		}
		out = append(out, raw)
	}
	return out
}

// IsEventURL reports whether a URL points at a webinar/event page.
func IsEventURL(raw string) bool {
	u, err := url.Parse(raw)
	if err != nil {
		return false
	}
	host := strings.ToLower(u.Hostname())
	for _, d := range eventDomains {
		if host == d || strings.HasSuffix(host, "."+d) {
			return true
		}
	}
	path := strings.ToLower(u.Path)
	for _, hint := range eventPathHints {
		if strings.Contains(path, hint) {
			return true
		}
	}
	return false
}

func (e *Enricher) fetchArticle(ctx context.Context, rawURL string) (*models.ExternalArticle, error) {
	parsed, err := url.Parse(rawURL)
	if err != nil {
		return nil, fmt.Errorf("parse url: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, rawURL, nil)
	if err != nil {
		return nil, err
	}
	req.Header.Set("User-Agent", "Mozilla/5.0 (compatible; expertminer/1.0)")

	resp, err := e.client.Do(req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("unexpected status %d", resp.StatusCode)
	}

	article, err := readability.FromReader(resp.Body, parsed)
	if err != nil {
		return nil, fmt.Errorf("extract readable content: %w", err)
	}

	text := strings.TrimSpace(article.TextContent)
	if text == "" {
		return nil, fmt.Errorf("no readable text")
	}
	if len(text) > maxBodyChars {
		text = text[:maxBodyChars]
	}

	result := &models.ExternalArticle{
		URL:       rawURL,
		Title:     article.Title,
		Excerpt:   strings.TrimSpace(article.Excerpt),
		Content:   text,
		Domain:    strings.ToLower(parsed.Hostname()),
		FetchedAt: time.Now(),
	}
	result.SourceType = classifySource(result.Domain)

	// Publish date from article metadata when present
	if doc, err := goquery.NewDocumentFromReader(strings.NewReader(article.Content)); err == nil {
		if when := extractPublishDate(doc); when != nil {
			result.PublishedAt = when
		}
	}

	return result, nil
}

func classifySource(domain string) string {
	switch {
	case strings.Contains(domain, "substack.com"):
		return "newsletter"
	case strings.Contains(domain, "medium.com"):
		return "blog"
	case strings.Contains(domain, "youtube.com") || strings.Contains(domain, "youtu.be"):
		return "video"
	case strings.Contains(domain, "github.com"):
		return "repository"
	default:
		return "article"
	}
}

func extractPublishDate(doc *goquery.Document) *time.Time {
	val, ok := doc.Find("time[datetime]").First().Attr("datetime")
	if !ok {
		return nil
	}
	for _, layout := range []string{time.RFC3339, "2006-01-02"} {
		if when, err := time.Parse(layout, val); err == nil {
			return &when
		}
	}
	return nil
}
