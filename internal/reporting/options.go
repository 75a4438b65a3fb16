package reporting

import (
	"fmt"
	"sort"
	"strings"

	"github.com/spboyer/taskqa/internal/models"
)

// Options controls how much detail a report includes.
type Options struct {
	// TopN is the number of lowest-scoring samples listed.
	TopN int
	// MaxDuplicates caps the duplicate pairs listed; the count is always shown.
	MaxDuplicates int
	// MaxSimilarityExamples caps the low-similarity tasks shown per sample.
	MaxSimilarityExamples int
}

// DefaultOptions returns the standard report detail.
func DefaultOptions() Options {
	return Options{TopN: 20, MaxDuplicates: 20, MaxSimilarityExamples: 2}
}

// Format is a report output format.
type Format string

const (
	FormatText     Format = "text"
	FormatMarkdown Format = "markdown"
	FormatHTML     Format = "html"
	FormatJSON     Format = "json"
)

// Formats lists the supported report formats.
var Formats = []Format{FormatText, FormatMarkdown, FormatHTML, FormatJSON}

// ParseFormat accepts a format name case-insensitively; "md" is markdown.
func ParseFormat(s string) (Format, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "", "text", "txt":
		return FormatText, nil
	case "markdown", "md":
		return FormatMarkdown, nil
	case "html":
		return FormatHTML, nil
	case "json":
		return FormatJSON, nil
	default:
		return "", fmt.Errorf("invalid report format %q: must be text, markdown, html, or json", s)
	}
}

// LowestScoring returns up to n results ordered by ascending score. Ties keep
// corpus order.
func LowestScoring(results []models.ValidationResult, n int) []models.ValidationResult {
	sorted := make([]models.ValidationResult, len(results))
	copy(sorted, results)
	sort.SliceStable(sorted, func(i, j int) bool {
		return sorted[i].Score < sorted[j].Score
	})
	if n >= 0 && n < len(sorted) {
		sorted = sorted[:n]
	}
	return sorted
}

// InterpretScore returns a plain-language label for a mean score (0–1).
func InterpretScore(score float64) string {
	pct := score * 100
	switch {
	case pct > 90:
		return "Excellent (>90%)"
	case pct >= 70:
		return "Good (70-90%)"
	case pct >= 50:
		return "Needs Work (50-70%)"
	default:
		return "Poor (<50%)"
	}
}

func limitPairs(pairs []models.DuplicatePair, n int) []models.DuplicatePair {
	if n >= 0 && len(pairs) > n {
		return pairs[:n]
	}
	return pairs
}

func limitSimilarity(items []models.LowSimilarity, n int) []models.LowSimilarity {
	if n >= 0 && len(items) > n {
		return items[:n]
	}
	return items
}
