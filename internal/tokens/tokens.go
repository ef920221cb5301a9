// Package tokens estimates token counts and splits long text into
// size-bounded chunks along section boundaries.
package tokens

import "strings"

// charsPerToken is a fixed approximation (4 characters ≈ 1 token), not exact
// tokenization.
const charsPerToken = 4

// EstimateTokens returns the approximate token count for text.
func EstimateTokens(text string) int {
	return len(text) / charsPerToken
}

// SplitByTokens splits text into chunks of at most maxTokens estimated tokens
// each, along top-level "## " section boundaries. Consecutive sections are
// packed greedily; a new chunk starts when adding the next section would
// exceed the limit. Concatenating the returned chunks reproduces the input
// exactly.
func SplitByTokens(text string, maxTokens int) []string {
	if maxTokens <= 0 || EstimateTokens(text) <= maxTokens {
		return []string{text}
	}

	sections := splitSections(text)
	if len(sections) <= 1 {
		// No boundaries to split on; the single oversized chunk is returned
		// rather than truncated.
		return []string{text}
	}

	var chunks []string
	var current strings.Builder
	for _, section := range sections {
		if current.Len() > 0 && EstimateTokens(current.String())+EstimateTokens(section) > maxTokens {
			chunks = append(chunks, current.String())
			current.Reset()
		}
		current.WriteString(section)
	}
	if current.Len() > 0 {
		chunks = append(chunks, current.String())
	}
	return chunks
}

// splitSections cuts text at every top-level "## " header, keeping the header
// with its section so the pieces concatenate losslessly. Text before the
// first header forms a leading section.
func splitSections(text string) []string {
	var boundaries []int
	if strings.HasPrefix(text, "## ") {
		boundaries = append(boundaries, 0)
	}
	for i := 0; ; {
		idx := strings.Index(text[i:], "\n## ")
		if idx < 0 {
			break
		}
		boundaries = append(boundaries, i+idx+1)
		i += idx + 1
	}

	if len(boundaries) == 0 {
		return []string{text}
	}

	var sections []string
	if boundaries[0] > 0 {
		sections = append(sections, text[:boundaries[0]])
	}
	for i, start := range boundaries {
		end := len(text)
		if i+1 < len(boundaries) {
			end = boundaries[i+1]
		}
		sections = append(sections, text[start:end])
	}
	return sections
}
