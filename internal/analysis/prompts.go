package analysis

import (
	"fmt"
	"strings"

	"expertminer/internal/models"
)

// relevancePrompt asks the fast model to score a batch of posts. The model
// returns a bare JSON array of scores in input order.
func relevancePrompt(posts []models.Post, focusTopics []string) string {
	var b strings.Builder
	b.WriteString("You are scoring social media posts for professional insight value.\n")
	if len(focusTopics) > 0 {
		fmt.Fprintf(&b, "Focus topics: %s.\n", strings.Join(focusTopics, ", "))
	}
	b.WriteString("For each post below, output a relevance score between 0.0 and 1.0.\n")
	b.WriteString("A post is relevant when it teaches a repeatable technique, framework, template, or tactic.\n")
	b.WriteString("Personal updates, congratulations, and event promotion score low.\n\n")

	for i, p := range posts {
		fmt.Fprintf(&b, "POST %d:\n%s\n\n", i+1, truncate(p.Text, 2000))
	}

	fmt.Fprintf(&b, "Respond with ONLY a JSON array of %d numbers, one per post, in order. Example: [0.8, 0.2, 0.9]\n", len(posts))
	return b.String()
}

// extractionPrompt asks the strong model for structured insights from one
// post. Attached images, when present, are part of the same message.
func extractionPrompt(post models.Post, focusTopics []string, hasImages bool) string {
	var b strings.Builder
	b.WriteString("Extract actionable professional insights from this post.\n")
	if len(focusTopics) > 0 {
		fmt.Fprintf(&b, "Focus topics: %s.\n", strings.Join(focusTopics, ", "))
	}
	fmt.Fprintf(&b, "Valid categories: %s.\n\n", categoryList())
	fmt.Fprintf(&b, "POST (by %s, %d likes, %d comments):\n%s\n\n",
		post.Author, post.Likes, post.Comments, truncate(post.Text, 6000))
	if hasImages {
		b.WriteString("The attached images are part of the post. Extract insights from them too (tables, frameworks, screenshots of messages).\n\n")
	}
	b.WriteString(`Respond with ONLY a JSON object in this shape:
{
  "insights": [
    {"category": "PROSPECTING", "text": "...", "confidence": 0.8, "actionables": ["..."], "templates": []}
  ],
  "templates": ["verbatim reusable message or post templates found in the content"],
  "actionables": ["concrete do-this-now steps"],
  "methodologies": [
    {"name": "...", "description": "...", "application": "when and how to apply it"}
  ]
}
Use empty arrays when nothing qualifies. Confidence is between 0.0 and 1.0.
`)
	return b.String()
}

func categoryList() string {
	names := make([]string, len(models.Categories))
	for i, c := range models.Categories {
		names[i] = string(c)
	}
	return strings.Join(names, ", ")
}

func truncate(s string, max int) string {
	if len(s) <= max {
		return s
	}
	return s[:max] + "..."
}
