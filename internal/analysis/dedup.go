package analysis

import (
	"strings"

	"expertminer/internal/models"
)

// dedupInsights drops insights repeating an earlier one's category and
// leading text. First occurrence wins. Idempotent.
func dedupInsights(insights []models.Insight) []models.Insight {
	seen := make(map[string]bool, len(insights))
	out := make([]models.Insight, 0, len(insights))
	for _, in := range insights {
		key := models.InsightKey(in)
		if seen[key] {
			continue
		}
		seen[key] = true
		out = append(out, in)
	}
	return out
}

// dedupStrings drops exact duplicates after trimming. Empty strings are
// dropped entirely.
func dedupStrings(values []string) []string {
	seen := make(map[string]bool, len(values))
	out := make([]string, 0, len(values))
	for _, v := range values {
		trimmed := strings.TrimSpace(v)
		if trimmed == "" || seen[trimmed] {
			continue
		}
		seen[trimmed] = true
		out = append(out, trimmed)
	}
	return out
}

// dedupMethodologies merges by case-insensitive name. The first occurrence's
// description and application win; later occurrences only contribute sources.
func dedupMethodologies(methodologies []models.Methodology) []models.Methodology {
	index := make(map[string]int, len(methodologies))
	out := make([]models.Methodology, 0, len(methodologies))
	for _, m := range methodologies {
		key := models.NormalizeKey(m.Name)
		if key == "" {
			continue
		}
		if i, ok := index[key]; ok {
			out[i].Sources = appendUniqueSources(out[i].Sources, m.Sources)
			continue
		}
		m.Sources = appendUniqueSources(nil, m.Sources)
		index[key] = len(out)
		out = append(out, m)
	}
	return out
}

func appendUniqueSources(existing, more []string) []string {
	seen := make(map[string]bool, len(existing))
	for _, s := range existing {
		seen[s] = true
	}
	for _, s := range more {
		if s == "" || seen[s] {
			continue
		}
		seen[s] = true
		existing = append(existing, s)
	}
	return existing
}
