package metrics

import (
	"github.com/spboyer/taskqa/internal/models"
	"github.com/spboyer/taskqa/internal/statistics"
)

// Summarize computes the corpus digest from per-sample results.
// skipped is the number of input lines that could not be decoded.
func Summarize(results []models.ValidationResult, duplicates []models.DuplicatePair, skipped int, seed int64) models.OutcomeDigest {
	d := models.OutcomeDigest{
		TotalSamples:   len(results),
		SkippedLines:   skipped,
		DuplicatePairs: len(duplicates),
	}

	scores := make([]float64, 0, len(results))
	for i := range results {
		r := &results[i]
		scores = append(scores, r.Score)

		if r.SchemaOK {
			d.SchemaOK++
		} else {
			d.SchemaBad++
		}

		countIssues(&d.Issues.UnknownWho, len(r.Issues.UnknownWho))
		countIssues(&d.Issues.WhenMissing, len(r.Issues.WhenMissing))
		countIssues(&d.Issues.LowSimilarity, len(r.Issues.LowSimilarity))
	}

	d.MeanScore = Mean(scores)
	d.MinScore, d.MaxScore = MinMax(scores)
	d.StdDev = StdDev(scores)
	d.Histogram = Histogram(scores)

	if len(scores) >= 2 {
		ci := statistics.BootstrapCIWithSeed(scores, 0.95, seed)
		d.MeanScoreCI = &ci
	}

	return d
}

func countIssues(c *models.IssueCount, entries int) {
	if entries == 0 {
		return
	}
	c.Samples++
	c.Entries += entries
}
