package models

import "time"

// Category buckets for extracted insights.
type Category string

const (
	CategoryProspecting Category = "PROSPECTING"
	CategoryDiscovery   Category = "DISCOVERY"
	CategoryNurture     Category = "NURTURE"
	CategoryClosing     Category = "CLOSING"
	CategoryComms       Category = "COMMS"
	CategoryCadences    Category = "CADENCES"
	CategoryStrategy    Category = "STRATEGY"
	CategoryTemplates   Category = "TEMPLATES"
	CategoryTactics     Category = "TACTICS"
)

// Categories lists every valid bucket in display order.
var Categories = []Category{
	CategoryProspecting,
	CategoryDiscovery,
	CategoryNurture,
	CategoryClosing,
	CategoryComms,
	CategoryCadences,
	CategoryStrategy,
	CategoryTemplates,
	CategoryTactics,
}

// ParseCategory maps a free-form category string onto the fixed set.
// Unrecognized values land in TACTICS.
func ParseCategory(s string) Category {
	c := Category(normalizeUpper(s))
	for _, known := range Categories {
		if c == known {
			return known
		}
	}
	return CategoryTactics
}

// Insight is one atomic extracted claim.
type Insight struct {
	ID          string    `json:"id"`
	Category    Category  `json:"category"`
	Text        string    `json:"text"`
	Confidence  float64   `json:"confidence"`
	ExtractedAt time.Time `json:"extracted_at"`
	SourcePost  string    `json:"source_post,omitempty"`
	Actionables []string  `json:"actionables,omitempty"`
	Templates   []string  `json:"templates,omitempty"`
}

// Methodology is a named, reusable framework extracted from source content.
// Name is the dedup key (case-insensitive); the first occurrence's
// description and application win, later occurrences only add sources.
type Methodology struct {
	Name        string   `json:"name"`
	Description string   `json:"description"`
	Application string   `json:"application,omitempty"`
	Sources     []string `json:"sources,omitempty"`
}
