package models

import "time"

// Post is one externally authored content item produced by the scraper.
type Post struct {
	ID          string    `json:"id"`
	Text        string    `json:"text"`
	PublishedAt time.Time `json:"published_at,omitempty"`
	Likes       int       `json:"likes"`
	Comments    int       `json:"comments"`
	Shares      int       `json:"shares"`
	URL         string    `json:"url"`
	Author      string    `json:"author"`
	ContentType string    `json:"content_type,omitempty"`
	Links       []string  `json:"links,omitempty"`
	ImageURLs   []string  `json:"image_urls,omitempty"`
}

// Engagement is the summed interaction count used for confidence bonuses.
func (p Post) Engagement() int {
	return p.Likes + p.Comments + p.Shares
}
