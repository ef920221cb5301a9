package models

import "time"

// ExternalArticle is enrichment content fetched from a URL referenced by
// scraped posts. URL is the dedup key within one analysis.
type ExternalArticle struct {
	URL         string     `json:"url"`
	Title       string     `json:"title"`
	Excerpt     string     `json:"excerpt,omitempty"`
	Content     string     `json:"content"`
	SourceType  string     `json:"source_type,omitempty"`
	Domain      string     `json:"domain"`
	PublishedAt *time.Time `json:"published_at,omitempty"`
	FetchedAt   time.Time  `json:"fetched_at"`
}
