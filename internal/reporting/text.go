package reporting

import (
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/mattn/go-runewidth"
	"github.com/spboyer/taskqa/internal/models"
	"golang.org/x/text/language"
	"golang.org/x/text/message"
)

// whatWidth is the display width allotted to a task description.
const whatWidth = 48

// WriteText writes the human-readable summary report.
func WriteText(w io.Writer, outcome *models.CorpusOutcome, opts Options) error {
	p := message.NewPrinter(language.English)
	d := outcome.Digest
	var b strings.Builder

	b.WriteString("=== Validation Report ===\n\n")
	b.WriteString(p.Sprintf("Source:        %s\n", outcome.Source))
	if outcome.Setup.EncoderModel != "" {
		b.WriteString(p.Sprintf("Encoder:       %s (similarity threshold %.2f)\n", outcome.Setup.EncoderModel, outcome.Setup.SimilarityThreshold))
	}
	b.WriteString(p.Sprintf("Samples:       %d total, %d schema OK, %d schema errors\n", d.TotalSamples, d.SchemaOK, d.SchemaBad))
	if d.SkippedLines > 0 {
		b.WriteString(p.Sprintf("Skipped:       %d malformed lines\n", d.SkippedLines))
	}
	b.WriteString(fmt.Sprintf("Score:         mean %.4f, min %.4f, max %.4f (σ=%.4f)\n", d.MeanScore, d.MinScore, d.MaxScore, d.StdDev))
	if d.MeanScoreCI != nil {
		b.WriteString(fmt.Sprintf("Mean 95%% CI:   [%.4f, %.4f] (width %.4f)\n", d.MeanScoreCI.Lower, d.MeanScoreCI.Upper, d.MeanScoreCI.Width()))
	}
	b.WriteString(fmt.Sprintf("Assessment:    %s\n", InterpretScore(d.MeanScore)))
	if d.DurationMs > 0 {
		b.WriteString(fmt.Sprintf("Duration:      %v\n", time.Duration(d.DurationMs)*time.Millisecond))
	}

	b.WriteString("\nScore distribution:\n")
	for _, bucket := range d.Histogram {
		b.WriteString(p.Sprintf("  %s : %6d  %s\n", padRight(bucket.Label, 10), bucket.Count, bar(bucket.Count, d.TotalSamples)))
	}

	b.WriteString("\nIssues:\n")
	for _, row := range issueRows(d.Issues) {
		b.WriteString(p.Sprintf("  %s samples=%d, entries=%d\n", padRight(row.name+":", 16), row.count.Samples, row.count.Entries))
	}

	b.WriteString(p.Sprintf("\nDuplicate transcripts: %d pairs\n", len(outcome.Duplicates)))
	for _, pair := range limitPairs(outcome.Duplicates, opts.MaxDuplicates) {
		b.WriteString(fmt.Sprintf("  line %d duplicates line %d\n", pair.Later, pair.First))
	}
	if hidden := len(outcome.Duplicates) - len(limitPairs(outcome.Duplicates, opts.MaxDuplicates)); hidden > 0 {
		b.WriteString(p.Sprintf("  ... and %d more\n", hidden))
	}

	lowest := LowestScoring(outcome.Results, opts.TopN)
	if len(lowest) > 0 {
		b.WriteString(fmt.Sprintf("\nLowest %d samples:\n", len(lowest)))
		for _, r := range lowest {
			b.WriteString(fmt.Sprintf("  line %-6d score=%.3f", r.Index, r.Score))
			if r.Issues.SchemaError {
				b.WriteString("  schema_error\n")
				continue
			}
			b.WriteString(fmt.Sprintf("  unknown_who=%d when_missing=%d low_similarity=%d\n",
				len(r.Issues.UnknownWho), len(r.Issues.WhenMissing), len(r.Issues.LowSimilarity)))
			for _, ls := range limitSimilarity(r.Issues.LowSimilarity, opts.MaxSimilarityExamples) {
				b.WriteString(fmt.Sprintf("      - task %d sim=%.3f what=%s\n", ls.Index, ls.Similarity, runewidth.Truncate(ls.What, whatWidth, "…")))
			}
		}
	}

	if part := outcome.Partition; part != nil {
		b.WriteString(fmt.Sprintf("\nPartition at score >= %g:\n", part.Threshold))
		b.WriteString(p.Sprintf("  kept:     %d -> %s\n", part.Kept, part.KeptPath))
		b.WriteString(p.Sprintf("  filtered: %d -> %s\n", part.Filtered, part.FilteredPath))
	}

	_, err := io.WriteString(w, b.String())
	return err
}

type issueRow struct {
	name  string
	count models.IssueCount
}

func issueRows(s models.IssueStats) []issueRow {
	return []issueRow{
		{name: string(models.GraderKindWho), count: s.UnknownWho},
		{name: string(models.GraderKindWhen), count: s.WhenMissing},
		{name: string(models.GraderKindSemantic), count: s.LowSimilarity},
	}
}

// padRight pads s with spaces to the given display width, counting wide
// (e.g. Hangul) characters as two columns.
func padRight(s string, width int) string {
	sw := runewidth.StringWidth(s)
	if sw >= width {
		return s
	}
	return s + strings.Repeat(" ", width-sw)
}

func bar(count, total int) string {
	const width = 30
	if total == 0 || count == 0 {
		return ""
	}
	n := count * width / total
	if n == 0 {
		n = 1
	}
	return strings.Repeat("█", n)
}
