package models

import (
	"fmt"
	"strings"

	surrealmodels "github.com/surrealdb/surrealdb.go/pkg/models"
)

// RecordIDString safely extracts the string ID from a SurrealDB RecordID.
func RecordIDString(id surrealmodels.RecordID) (string, error) {
	s, ok := id.ID.(string)
	if !ok {
		return "", fmt.Errorf("unexpected ID type: %T (expected string)", id.ID)
	}
	return s, nil
}

// MustRecordIDString extracts the string ID from a RecordID, panicking on an
// unexpected type. For code paths where IDs are known to be strings.
func MustRecordIDString(id surrealmodels.RecordID) string {
	s, err := RecordIDString(id)
	if err != nil {
		panic(err)
	}
	return s
}

// NormalizeKey lowercases and trims text for use as a dedup key.
func NormalizeKey(s string) string {
	return strings.ToLower(strings.TrimSpace(s))
}

// InsightKey is the per-analysis dedup key: category plus the first 50
// characters of the insight text.
func InsightKey(i Insight) string {
	text := strings.TrimSpace(i.Text)
	if len(text) > 50 {
		text = text[:50]
	}
	return string(i.Category) + "|" + text
}

// ClampConfidence bounds a confidence score to [0.0, 1.0].
func ClampConfidence(v float64) float64 {
	if v < 0 {
		return 0
	}
	if v > 1 {
		return 1
	}
	return v
}

func normalizeUpper(s string) string {
	return strings.ToUpper(strings.TrimSpace(s))
}
