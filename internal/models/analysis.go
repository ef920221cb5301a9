package models

// ExpertAnalysis is the per-source result of the two-pass analysis engine.
type ExpertAnalysis struct {
	Expert        string        `json:"expert"`
	Insights      []Insight     `json:"insights"`
	Templates     []string      `json:"templates"`
	Actionables   []string      `json:"actionables"`
	Methodologies []Methodology `json:"methodologies"`
	PostsAnalyzed int           `json:"posts_analyzed"`
	PostsRelevant int           `json:"posts_relevant"`
	TokensUsed    int           `json:"tokens_used"`
}

// AggregatedAnalysis is the cross-source merge of several expert analyses.
// It is derived read-only from its inputs.
type AggregatedAnalysis struct {
	Insights      []Insight              `json:"insights"`
	Templates     []AttributedText       `json:"templates"`
	Methodologies []Methodology          `json:"methodologies"`
	TopByCategory map[Category][]Insight `json:"top_by_category"`
	Summary       string                 `json:"summary"`
	ExpertCount   int                    `json:"expert_count"`
}

// AttributedText is a deduplicated text snippet with contributing sources.
type AttributedText struct {
	Text    string   `json:"text"`
	Sources []string `json:"sources,omitempty"`
}
