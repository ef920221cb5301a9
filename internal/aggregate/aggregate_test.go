package aggregate

import (
	"reflect"
	"testing"

	"expertminer/internal/models"
)

func sampleAnalyses() []models.ExpertAnalysis {
	return []models.ExpertAnalysis{
		{
			Expert: "Jane Doe",
			Insights: []models.Insight{
				{Category: models.CategoryProspecting, Text: "Comment before you connect", Confidence: 0.7},
				{Category: models.CategoryClosing, Text: "Name the objection before the buyer does", Confidence: 0.9},
			},
			Templates: []string{"Hi {{name}}, saw your post about {{topic}}."},
			Methodologies: []models.Methodology{
				{Name: "SMYKM", Description: "Show Me You Know Me", Application: "openers"},
			},
			PostsAnalyzed: 10,
		},
		{
			Expert: "Sam Poe",
			Insights: []models.Insight{
				// Duplicate of Jane's insight, different case and padding.
				{Category: models.CategoryProspecting, Text: "  comment BEFORE you connect ", Confidence: 0.95},
				{Category: models.CategoryProspecting, Text: "Send voice notes to warm prospects", Confidence: 0.8},
			},
			Templates: []string{"Hi {{name}}, saw your post about {{topic}}."},
			Methodologies: []models.Methodology{
				{Name: "smykm", Description: "should not overwrite the first description"},
			},
			PostsAnalyzed: 5,
		},
	}
}

func TestAggregatePurity(t *testing.T) {
	input := sampleAnalyses()
	snapshot := sampleAnalyses()

	first := Aggregate(input, models.RunConfig{})
	second := Aggregate(input, models.RunConfig{})

	if !reflect.DeepEqual(input, snapshot) {
		t.Error("Aggregate must not mutate its inputs")
	}
	if !reflect.DeepEqual(first, second) {
		t.Error("Aggregate must be deterministic for the same inputs")
	}
}

func TestAggregateInsightDedupAndOrder(t *testing.T) {
	agg := Aggregate(sampleAnalyses(), models.RunConfig{})

	if len(agg.Insights) != 3 {
		t.Fatalf("Expected 3 insights after text dedup, got %d", len(agg.Insights))
	}
	// First occurrence of the duplicated text wins, so Jane's 0.7 version
	// survives, not Sam's 0.95 one.
	for _, in := range agg.Insights {
		if models.NormalizeKey(in.Text) == "comment before you connect" && in.Confidence != 0.7 {
			t.Errorf("First occurrence should win the dedup, got confidence %v", in.Confidence)
		}
	}
	// Confidence descending.
	for i := 1; i < len(agg.Insights); i++ {
		if agg.Insights[i].Confidence > agg.Insights[i-1].Confidence {
			t.Errorf("Insights not sorted by confidence: %v then %v",
				agg.Insights[i-1].Confidence, agg.Insights[i].Confidence)
		}
	}
}

func TestAggregateMethodologySourceAccumulation(t *testing.T) {
	agg := Aggregate(sampleAnalyses(), models.RunConfig{})

	if len(agg.Methodologies) != 1 {
		t.Fatalf("Expected 1 merged methodology, got %d", len(agg.Methodologies))
	}
	m := agg.Methodologies[0]
	if m.Name != "SMYKM" {
		t.Errorf("Name = %q", m.Name)
	}
	if m.Description != "Show Me You Know Me" {
		t.Errorf("First description should win, got %q", m.Description)
	}
	if !reflect.DeepEqual(m.Sources, []string{"Jane Doe", "Sam Poe"}) {
		t.Errorf("Sources = %v, want both experts once each", m.Sources)
	}
}

func TestAggregateTemplateAttribution(t *testing.T) {
	agg := Aggregate(sampleAnalyses(), models.RunConfig{})

	if len(agg.Templates) != 1 {
		t.Fatalf("Expected 1 merged template, got %d", len(agg.Templates))
	}
	if !reflect.DeepEqual(agg.Templates[0].Sources, []string{"Jane Doe", "Sam Poe"}) {
		t.Errorf("Template sources = %v", agg.Templates[0].Sources)
	}
}

func TestTopByCategoryCap(t *testing.T) {
	var analysis models.ExpertAnalysis
	analysis.Expert = "Prolific Poster"
	for i := 0; i < 25; i++ {
		analysis.Insights = append(analysis.Insights, models.Insight{
			Category:   models.CategoryTactics,
			Text:       "distinct tactic number " + string(rune('a'+i)),
			Confidence: float64(i) / 25,
		})
	}

	agg := Aggregate([]models.ExpertAnalysis{analysis}, models.RunConfig{})
	top := agg.TopByCategory[models.CategoryTactics]
	if len(top) != 10 {
		t.Fatalf("Expected category top list capped at 10, got %d", len(top))
	}
	// Capped list keeps the highest-confidence entries.
	if top[0].Confidence != 24.0/25 {
		t.Errorf("Top entry should be the most confident, got %v", top[0].Confidence)
	}
	for i := 1; i < len(top); i++ {
		if top[i].Confidence > top[i-1].Confidence {
			t.Error("Top list not sorted by confidence")
		}
	}
}

func TestAggregateEmptyInput(t *testing.T) {
	agg := Aggregate(nil, models.RunConfig{})
	if agg.ExpertCount != 0 || len(agg.Insights) != 0 {
		t.Errorf("Empty input should aggregate to empty output: %+v", agg)
	}
	if agg.Summary == "" {
		t.Error("Summary should still be rendered for empty input")
	}
}

func TestExpertWeightNotApplied(t *testing.T) {
	analyses := sampleAnalyses()
	cfg := models.RunConfig{
		Experts: []models.ExpertConfig{
			{Name: "Jane Doe", Weight: 0.1},
			{Name: "Sam Poe", Weight: 10.0},
		},
	}

	weighted := Aggregate(analyses, cfg)
	unweighted := Aggregate(analyses, models.RunConfig{})
	if !reflect.DeepEqual(weighted, unweighted) {
		t.Error("Expert weight is reserved and must not influence aggregation")
	}
}
