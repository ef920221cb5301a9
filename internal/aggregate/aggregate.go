// Package aggregate merges per-expert analyses into one cross-expert view.
// Everything here is a pure function of its inputs.
package aggregate

import (
	"fmt"
	"sort"
	"strings"

	"expertminer/internal/models"
)

const topPerCategory = 10

// Aggregate merges expert analyses. Inputs are not modified. Expert weights
// from the run config are accepted but intentionally not applied to ranking.
func Aggregate(analyses []models.ExpertAnalysis, cfg models.RunConfig) models.AggregatedAnalysis {
	out := models.AggregatedAnalysis{
		Insights:      mergeInsights(analyses),
		Templates:     mergeTemplates(analyses),
		Methodologies: mergeMethodologies(analyses),
		ExpertCount:   len(analyses),
	}
	out.TopByCategory = topByCategory(out.Insights)
	out.Summary = summarize(out, analyses)
	return out
}

// mergeInsights concatenates all insights, drops duplicates by normalized
// full text, and orders by confidence descending. The sort is stable so
// equal-confidence insights keep expert submission order.
func mergeInsights(analyses []models.ExpertAnalysis) []models.Insight {
	seen := make(map[string]bool)
	var merged []models.Insight
	for _, a := range analyses {
		for _, in := range a.Insights {
			key := models.NormalizeKey(in.Text)
			if key == "" || seen[key] {
				continue
			}
			seen[key] = true
			merged = append(merged, in)
		}
	}
	sort.SliceStable(merged, func(i, j int) bool {
		return merged[i].Confidence > merged[j].Confidence
	})
	return merged
}

// mergeTemplates attributes each unique template text to every expert that
// produced it.
func mergeTemplates(analyses []models.ExpertAnalysis) []models.AttributedText {
	index := make(map[string]int)
	var merged []models.AttributedText
	for _, a := range analyses {
		for _, tmpl := range a.Templates {
			text := strings.TrimSpace(tmpl)
			if text == "" {
				continue
			}
			if i, ok := index[text]; ok {
				merged[i].Sources = appendUnique(merged[i].Sources, a.Expert)
				continue
			}
			index[text] = len(merged)
			merged = append(merged, models.AttributedText{
				Text:    text,
				Sources: []string{a.Expert},
			})
		}
	}
	return merged
}

// mergeMethodologies keys by case-insensitive name. The first description
// and application win; later occurrences only add their expert as a source.
func mergeMethodologies(analyses []models.ExpertAnalysis) []models.Methodology {
	index := make(map[string]int)
	var merged []models.Methodology
	for _, a := range analyses {
		for _, m := range a.Methodologies {
			key := models.NormalizeKey(m.Name)
			if key == "" {
				continue
			}
			if i, ok := index[key]; ok {
				merged[i].Sources = appendUnique(merged[i].Sources, a.Expert)
				continue
			}
			copied := m
			copied.Sources = appendUnique(nil, a.Expert)
			index[key] = len(merged)
			merged = append(merged, copied)
		}
	}
	return merged
}

// topByCategory groups merged insights and keeps the highest-confidence
// entries per bucket, capped at topPerCategory.
func topByCategory(insights []models.Insight) map[models.Category][]models.Insight {
	grouped := make(map[models.Category][]models.Insight)
	for _, in := range insights {
		grouped[in.Category] = append(grouped[in.Category], in)
	}
	for category, list := range grouped {
		sort.SliceStable(list, func(i, j int) bool {
			return list[i].Confidence > list[j].Confidence
		})
		if len(list) > topPerCategory {
			list = list[:topPerCategory]
		}
		grouped[category] = list
	}
	return grouped
}

func summarize(agg models.AggregatedAnalysis, analyses []models.ExpertAnalysis) string {
	postsAnalyzed := 0
	for _, a := range analyses {
		postsAnalyzed += a.PostsAnalyzed
	}

	var topCategories []string
	for _, category := range models.Categories {
		if n := len(agg.TopByCategory[category]); n > 0 {
			topCategories = append(topCategories, fmt.Sprintf("%s (%d)", category, n))
		}
	}

	return fmt.Sprintf(
		"%d insights, %d templates and %d methodologies distilled from %d posts across %d experts. Coverage: %s.",
		len(agg.Insights), len(agg.Templates), len(agg.Methodologies),
		postsAnalyzed, agg.ExpertCount, strings.Join(topCategories, ", "))
}

func appendUnique(existing []string, value string) []string {
	for _, s := range existing {
		if s == value {
			return existing
		}
	}
	return append(existing, value)
}
