package bundle

import (
	"strings"
	"testing"

	"expertminer/internal/models"
)

func TestClassifyDomain(t *testing.T) {
	tests := []struct {
		name   string
		topics []string
		want   Domain
	}{
		{"empty topics", nil, DomainGeneric},
		{"sales topics", []string{"outbound prospecting", "SDR coaching"}, DomainSales},
		{"fundraising topics", []string{"seed round", "investor updates"}, DomainFundraising},
		{"fundraising wins over sales vocabulary", []string{"investor outreach pipeline"}, DomainFundraising},
		{"unrelated topics", []string{"gardening", "sourdough"}, DomainGeneric},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := ClassifyDomain(tt.topics); got != tt.want {
				t.Errorf("ClassifyDomain(%v) = %v, want %v", tt.topics, got, tt.want)
			}
		})
	}
}

func TestExpertKind(t *testing.T) {
	tests := []struct {
		in   string
		want string
	}{
		{"Jane Doe", "expert_jane-doe"},
		{"  José Álvarez  ", "expert_jos-lvarez"},
		{"A--B", "expert_a-b"},
		{"Dr. Smith, PhD", "expert_dr-smith-phd"},
	}
	for _, tt := range tests {
		if got := ExpertKind(tt.in); got != tt.want {
			t.Errorf("ExpertKind(%q) = %q, want %q", tt.in, got, tt.want)
		}
	}
}

func TestExpertDocument(t *testing.T) {
	b := NewBuilder([]string{"sales"})
	doc := string(b.ExpertDocument(models.ExpertAnalysis{
		Expert: "Jane Doe",
		Insights: []models.Insight{
			{Category: models.CategoryProspecting, Text: "Comment before you connect", Confidence: 0.9,
				Actionables: []string{"Comment on three posts this week"}},
			{Category: models.CategoryClosing, Text: "Name the objection first", Confidence: 0.8},
		},
		Templates:     []string{"Hi {{name}}, quick question about {{topic}}."},
		Actionables:   []string{"Block 30 minutes daily for outreach"},
		Methodologies: []models.Methodology{{Name: "SMYKM", Description: "Show Me You Know Me", Application: "openers"}},
		PostsAnalyzed: 12,
		PostsRelevant: 4,
	}))

	for _, want := range []string{
		"# Sales Playbook: Jane Doe",
		"### PROSPECTING",
		"Comment before you connect",
		"Action: Comment on three posts this week",
		"### CLOSING",
		"## Templates",
		"## Methodologies",
		"### SMYKM",
		"When to apply: openers",
	} {
		if !strings.Contains(doc, want) {
			t.Errorf("Expert document missing %q", want)
		}
	}
}

func TestInstructionsDocument(t *testing.T) {
	b := NewBuilder(nil)
	agg := models.AggregatedAnalysis{
		Insights: []models.Insight{{Category: models.CategoryTactics, Text: "One tactic", Confidence: 0.7}},
		TopByCategory: map[models.Category][]models.Insight{
			models.CategoryTactics: {{Category: models.CategoryTactics, Text: "One tactic", Confidence: 0.7}},
		},
		Templates:   []models.AttributedText{{Text: "Line one.\nLine two.", Sources: []string{"Jane Doe"}}},
		Summary:     "1 insights from 1 experts.",
		ExpertCount: 1,
	}
	articles := []models.ExternalArticle{
		{Title: "The Follow-Up Study", URL: "https://example.com/study", Domain: "example.com", Excerpt: "Most replies come after touch five."},
	}

	doc := string(b.InstructionsDocument(agg, articles))
	for _, want := range []string{
		"# Expert Playbook: Combined Instructions",
		"## Working Rules",
		"### TACTICS",
		"> Line one.\n> Line two.",
		"_Source: Jane Doe_",
		"## Supporting Sources",
		"### The Follow-Up Study",
		"Most replies come after touch five.",
	} {
		if !strings.Contains(doc, want) {
			t.Errorf("Instructions document missing %q", want)
		}
	}
}
