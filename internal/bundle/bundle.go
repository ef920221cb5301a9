package bundle

import (
	"fmt"
	"strings"
	"time"

	"expertminer/internal/models"
)

// Builder renders the knowledge bundle: one playbook per expert plus a
// combined instructions document.
type Builder struct {
	domain Domain
}

func NewBuilder(focusTopics []string) *Builder {
	return &Builder{domain: ClassifyDomain(focusTopics)}
}

func (b *Builder) Domain() Domain { return b.domain }

// ExpertDocument renders one expert's playbook.
func (b *Builder) ExpertDocument(analysis models.ExpertAnalysis) []byte {
	profile := domainProfiles[b.domain]
	var doc strings.Builder

	fmt.Fprintf(&doc, "# %s: %s\n\n", profile.Title, analysis.Expert)
	fmt.Fprintf(&doc, "Compiled %s from %d posts (%d relevant).\n\n",
		time.Now().Format("2006-01-02"), analysis.PostsAnalyzed, analysis.PostsRelevant)

	fmt.Fprintf(&doc, "## %s\n\n", profile.InsightsHead)
	if len(analysis.Insights) == 0 {
		doc.WriteString("No insights extracted.\n\n")
	}
	for _, category := range models.Categories {
		var inCategory []models.Insight
		for _, in := range analysis.Insights {
			if in.Category == category {
				inCategory = append(inCategory, in)
			}
		}
		if len(inCategory) == 0 {
			continue
		}
		fmt.Fprintf(&doc, "### %s\n\n", category)
		for _, in := range inCategory {
			fmt.Fprintf(&doc, "- %s _(confidence %.2f)_\n", in.Text, in.Confidence)
			for _, act := range in.Actionables {
				fmt.Fprintf(&doc, "  - Action: %s\n", act)
			}
		}
		doc.WriteString("\n")
	}

	writeStringSection(&doc, "Templates", analysis.Templates)
	writeStringSection(&doc, "Actionables", analysis.Actionables)
	writeMethodologies(&doc, analysis.Methodologies)

	return []byte(doc.String())
}

// InstructionsDocument renders the combined cross-expert document from the
// aggregated analysis, with enriched articles as supporting sources.
func (b *Builder) InstructionsDocument(agg models.AggregatedAnalysis, articles []models.ExternalArticle) []byte {
	profile := domainProfiles[b.domain]
	var doc strings.Builder

	fmt.Fprintf(&doc, "# %s: Combined Instructions\n\n", profile.Title)
	fmt.Fprintf(&doc, "For %s. %s\n\n", profile.Audience, agg.Summary)

	fmt.Fprintf(&doc, "## %s\n\n", profile.RulesHead)
	for _, rule := range profile.Rules {
		fmt.Fprintf(&doc, "- %s\n", rule)
	}
	doc.WriteString("\n")

	fmt.Fprintf(&doc, "## %s by Category\n\n", profile.InsightsHead)
	for _, category := range models.Categories {
		top := agg.TopByCategory[category]
		if len(top) == 0 {
			continue
		}
		fmt.Fprintf(&doc, "### %s\n\n", category)
		for _, in := range top {
			fmt.Fprintf(&doc, "- %s _(confidence %.2f)_\n", in.Text, in.Confidence)
		}
		doc.WriteString("\n")
	}

	if len(agg.Templates) > 0 {
		doc.WriteString("## Templates\n\n")
		for _, tmpl := range agg.Templates {
			fmt.Fprintf(&doc, "> %s\n\n", strings.ReplaceAll(tmpl.Text, "\n", "\n> "))
			if len(tmpl.Sources) > 0 {
				fmt.Fprintf(&doc, "_Source: %s_\n\n", strings.Join(tmpl.Sources, ", "))
			}
		}
	}

	writeMethodologies(&doc, agg.Methodologies)

	if len(articles) > 0 {
		doc.WriteString("## Supporting Sources\n\n")
		for _, art := range articles {
			fmt.Fprintf(&doc, "### %s\n\n", art.Title)
			fmt.Fprintf(&doc, "%s (%s)\n\n", art.URL, art.Domain)
			if art.Excerpt != "" {
				fmt.Fprintf(&doc, "%s\n\n", art.Excerpt)
			}
		}
	}

	return []byte(doc.String())
}

// ExpertKind returns the artifact kind for an expert document.
func ExpertKind(expert string) string {
	slug := strings.ToLower(strings.TrimSpace(expert))
	slug = strings.Map(func(r rune) rune {
		switch {
		case r >= 'a' && r <= 'z', r >= '0' && r <= '9':
			return r
		default:
			return '-'
		}
	}, slug)
	slug = strings.Trim(slug, "-")
	for strings.Contains(slug, "--") {
		slug = strings.ReplaceAll(slug, "--", "-")
	}
	return "expert_" + slug
}

// InstructionsKind is the artifact kind for the combined document.
const InstructionsKind = "instructions"

func writeStringSection(doc *strings.Builder, heading string, values []string) {
	if len(values) == 0 {
		return
	}
	fmt.Fprintf(doc, "## %s\n\n", heading)
	for _, v := range values {
		fmt.Fprintf(doc, "- %s\n", strings.ReplaceAll(v, "\n", " "))
	}
	doc.WriteString("\n")
}

func writeMethodologies(doc *strings.Builder, methodologies []models.Methodology) {
	if len(methodologies) == 0 {
		return
	}
	doc.WriteString("## Methodologies\n\n")
	for _, m := range methodologies {
		fmt.Fprintf(doc, "### %s\n\n%s\n\n", m.Name, m.Description)
		if m.Application != "" {
			fmt.Fprintf(doc, "When to apply: %s\n\n", m.Application)
		}
		if len(m.Sources) > 0 {
			fmt.Fprintf(doc, "_Seen from: %s_\n\n", strings.Join(m.Sources, ", "))
		}
	}
}
