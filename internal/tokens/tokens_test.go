package tokens

import (
	"strings"
	"testing"
)

func TestEstimateTokens(t *testing.T) {
	tests := []struct {
		name string
		in   string
		want int
	}{
		{"empty", "", 0},
		{"short", "abcd", 1},
		{"sub-token remainder dropped", "abcdefg", 1},
		{"eight chars", "abcdefgh", 2},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := EstimateTokens(tt.in); got != tt.want {
				t.Errorf("EstimateTokens(%q) = %d, want %d", tt.in, got, tt.want)
			}
		})
	}
}

// section builds a "## " section with roughly n estimated tokens.
func section(title string, estTokens int) string {
	header := "## " + title + "\n\n"
	body := strings.Repeat("x", estTokens*4-len(header)-1) + "\n"
	return header + body
}

func TestSplitByTokens_UnderLimit(t *testing.T) {
	text := "## Intro\n\nshort body\n"
	chunks := SplitByTokens(text, 1000)
	if len(chunks) != 1 || chunks[0] != text {
		t.Fatalf("expected single unchanged chunk, got %d: %#v", len(chunks), chunks)
	}
}

func TestSplitByTokens_Boundary(t *testing.T) {
	// Three sections of ~20k estimated tokens with a 50k limit must produce
	// exactly two chunks: [s1+s2], [s3].
	s1 := section("One", 20000)
	s2 := section("Two", 20000)
	s3 := section("Three", 20000)
	text := s1 + s2 + s3

	chunks := SplitByTokens(text, 50000)
	if len(chunks) != 2 {
		t.Fatalf("expected 2 chunks, got %d", len(chunks))
	}
	if chunks[0] != s1+s2 {
		t.Error("first chunk should contain sections one and two")
	}
	if chunks[1] != s3 {
		t.Error("second chunk should contain section three")
	}
}

func TestSplitByTokens_RoundTrip(t *testing.T) {
	tests := []struct {
		name string
		text string
		max  int
	}{
		{"no headers oversized", strings.Repeat("word ", 2000), 100},
		{"leading preamble", "preamble text\n" + section("A", 300) + section("B", 300), 400},
		{"many small sections", section("A", 50) + section("B", 50) + section("C", 50) + section("D", 50), 90},
		{"single oversized section", section("Huge", 500), 100},
		{"header at position zero", "## First\n\nbody\n" + section("Second", 400), 200},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			chunks := SplitByTokens(tt.text, tt.max)
			if got := strings.Join(chunks, ""); got != tt.text {
				t.Errorf("round trip lost content: len(got)=%d len(want)=%d", len(got), len(tt.text))
			}
		})
	}
}
