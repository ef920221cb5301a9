package analysis

import (
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"

	"expertminer/internal/models"
)

// categoryKeywords drives the deterministic fallback extractor used when no
// LLM credential is configured. Matching is case-insensitive substring.
var categoryKeywords = map[models.Category][]string{
	models.CategoryProspecting: {"prospect", "cold outreach", "cold email", "outbound", "lead gen", "pipeline", "icp", "target account"},
	models.CategoryDiscovery:   {"discovery call", "discovery question", "qualify", "qualification", "pain point", "needs analysis"},
	models.CategoryNurture:     {"follow up", "follow-up", "nurture", "stay top of mind", "check in", "touch point", "relationship"},
	models.CategoryClosing:     {"close the deal", "closing", "negotiation", "objection", "pricing", "contract", "signed"},
	models.CategoryComms:       {"messaging", "subject line", "copywriting", "tone", "personalization", "personalize", "storytelling"},
	models.CategoryCadences:    {"cadence", "sequence", "touches", "day 1", "step 1", "schedule"},
	models.CategoryStrategy:    {"strategy", "playbook", "framework", "process", "system", "methodology"},
	models.CategoryTemplates:   {"template", "script", "swipe file", "copy this", "steal this"},
	models.CategoryTactics:     {"tip", "trick", "hack", "tactic", "lesson", "mistake"},
}

// imperativeOpeners mark sentences that read as direct instructions.
var imperativeOpeners = []string{
	"start", "stop", "always", "never", "use", "try", "ask", "focus",
	"avoid", "don't", "send", "build", "make", "write", "keep", "lead with",
}

const (
	keywordBaseConfidence = 0.3
	keywordHitBonus       = 0.1
	minKeywordConfidence  = 0.1
)

// keywordAnalyze is the deterministic extractor. It mirrors the LLM output
// shape so downstream aggregation is identical either way.
func keywordAnalyze(expert string, posts []models.Post) *models.ExpertAnalysis {
	analysis := &models.ExpertAnalysis{
		Expert:        expert,
		Insights:      []models.Insight{},
		Templates:     []string{},
		Actionables:   []string{},
		Methodologies: []models.Methodology{},
		PostsAnalyzed: len(posts),
	}

	for _, post := range posts {
		insights := keywordInsights(post)
		if len(insights) == 0 {
			continue
		}
		analysis.PostsRelevant++
		analysis.Insights = append(analysis.Insights, insights...)
		analysis.Actionables = append(analysis.Actionables, imperativeSentences(post.Text)...)
		analysis.Templates = append(analysis.Templates, quotedSpans(post.Text)...)
	}

	analysis.Insights = dedupInsights(analysis.Insights)
	analysis.Templates = dedupStrings(analysis.Templates)
	analysis.Actionables = dedupStrings(analysis.Actionables)
	return analysis
}

// keywordInsights scores a post against each category's keyword table and
// emits one insight per matching category.
func keywordInsights(post models.Post) []models.Insight {
	lower := strings.ToLower(post.Text)
	var out []models.Insight
	for _, category := range models.Categories {
		hits := 0
		for _, kw := range categoryKeywords[category] {
			if strings.Contains(lower, kw) {
				hits++
			}
		}
		if hits == 0 {
			continue
		}
		confidence := keywordBaseConfidence + float64(hits)*keywordHitBonus + engagementBonus(post.Engagement())
		if confidence < minKeywordConfidence {
			confidence = minKeywordConfidence
		}
		out = append(out, models.Insight{
			ID:          uuid.NewString()[:8],
			Category:    category,
			Text:        summarizePost(post.Text),
			Confidence:  models.ClampConfidence(confidence),
			ExtractedAt: time.Now(),
			SourcePost:  post.URL,
		})
	}
	return out
}

func engagementBonus(engagement int) float64 {
	switch {
	case engagement > 100:
		return 0.2
	case engagement > 25:
		return 0.1
	default:
		return 0
	}
}

// summarizePost keeps the opening of the post as the insight text.
func summarizePost(text string) string {
	text = strings.TrimSpace(text)
	if idx := strings.Index(text, "\n"); idx > 40 {
		text = text[:idx]
	}
	if len(text) > 200 {
		text = text[:200] + "..."
	}
	return text
}

// imperativeSentences extracts sentences beginning with an instruction verb.
func imperativeSentences(text string) []string {
	var out []string
	for _, sentence := range splitSentences(text) {
		lower := strings.ToLower(sentence)
		for _, opener := range imperativeOpeners {
			if strings.HasPrefix(lower, opener+" ") {
				out = append(out, sentence)
				break
			}
		}
	}
	return out
}

// quotedSpans extracts double-quoted passages long enough to be reusable
// templates rather than quoted single words.
func quotedSpans(text string) []string {
	var out []string
	for {
		start := strings.IndexByte(text, '"')
		if start < 0 {
			break
		}
		rest := text[start+1:]
		end := strings.IndexByte(rest, '"')
		if end < 0 {
			break
		}
		span := strings.TrimSpace(rest[:end])
		if len(span) >= 40 && strings.ContainsAny(span, ".!?") {
			out = append(out, span)
		}
		text = rest[end+1:]
	}
	return out
}

func splitSentences(text string) []string {
	var out []string
	var current strings.Builder
	for _, r := range text {
		current.WriteRune(r)
		if r == '.' || r == '!' || r == '?' || r == '\n' {
			if s := strings.TrimSpace(current.String()); len(s) > 10 {
				out = append(out, s)
			}
			current.Reset()
		}
	}
	if s := strings.TrimSpace(current.String()); len(s) > 10 {
		out = append(out, s)
	}
	return out
}

// describeKeywordRun annotates a fallback run so the output is not mistaken
// for model-extracted analysis.
func describeKeywordRun(expert string) string {
	return fmt.Sprintf("keyword-only analysis for %s (no LLM credential configured)", expert)
}
