package reporting

import (
	"bytes"
	"fmt"
	"html"
	"strings"

	"github.com/spboyer/taskqa/internal/models"
	"github.com/yuin/goldmark"
	"github.com/yuin/goldmark/extension"
)

// RenderMarkdown formats the outcome as a markdown document, suitable for a
// pull request comment.
func RenderMarkdown(outcome *models.CorpusOutcome, opts Options) string {
	var b strings.Builder
	d := outcome.Digest

	status := "✅ Passed"
	if (outcome.Partition != nil && outcome.Partition.Filtered > 0) || d.SchemaBad > 0 {
		status = "⚠️ Issues found"
	}

	b.WriteString("## Task Extraction Data Quality\n\n")
	b.WriteString(fmt.Sprintf("**Status:** %s | **Mean score:** %.4f | **Samples:** %d\n\n", status, d.MeanScore, d.TotalSamples))

	b.WriteString(fmt.Sprintf("- **Source:** `%s`\n", outcome.Source))
	if outcome.Setup.EncoderModel != "" {
		b.WriteString(fmt.Sprintf("- **Encoder:** %s (threshold %.2f)\n", outcome.Setup.EncoderModel, outcome.Setup.SimilarityThreshold))
	}
	b.WriteString(fmt.Sprintf("- **Schema:** %d OK, %d errors\n", d.SchemaOK, d.SchemaBad))
	b.WriteString(fmt.Sprintf("- **Score range:** %.4f - %.4f (σ=%.4f)\n", d.MinScore, d.MaxScore, d.StdDev))
	if d.MeanScoreCI != nil {
		b.WriteString(fmt.Sprintf("- **Mean 95%% CI:** [%.4f, %.4f] (width %.4f)\n", d.MeanScoreCI.Lower, d.MeanScoreCI.Upper, d.MeanScoreCI.Width()))
	}
	b.WriteString(fmt.Sprintf("- **Duplicate pairs:** %d\n\n", len(outcome.Duplicates)))

	b.WriteString("### Score distribution\n\n")
	b.WriteString("| Range | Count |\n")
	b.WriteString("|-------|------:|\n")
	for _, bucket := range d.Histogram {
		b.WriteString(fmt.Sprintf("| %s | %d |\n", bucket.Label, bucket.Count))
	}

	b.WriteString("\n### Issues\n\n")
	b.WriteString("| Check | Samples | Entries |\n")
	b.WriteString("|-------|--------:|--------:|\n")
	for _, row := range issueRows(d.Issues) {
		b.WriteString(fmt.Sprintf("| %s | %d | %d |\n", row.name, row.count.Samples, row.count.Entries))
	}

	if pairs := limitPairs(outcome.Duplicates, opts.MaxDuplicates); len(pairs) > 0 {
		b.WriteString("\n### Duplicates\n\n")
		for _, p := range pairs {
			b.WriteString(fmt.Sprintf("- line %d duplicates line %d\n", p.Later, p.First))
		}
	}

	if lowest := LowestScoring(outcome.Results, opts.TopN); len(lowest) > 0 {
		b.WriteString(fmt.Sprintf("\n### Lowest %d samples\n\n", len(lowest)))
		b.WriteString("| Line | Score | unknown_who | when_missing | low_similarity | Example |\n")
		b.WriteString("|-----:|------:|------------:|-------------:|---------------:|---------|\n")
		for _, r := range lowest {
			if r.Issues.SchemaError {
				b.WriteString(fmt.Sprintf("| %d | %.3f | - | - | - | schema error |\n", r.Index, r.Score))
				continue
			}
			var examples []string
			for _, ls := range limitSimilarity(r.Issues.LowSimilarity, opts.MaxSimilarityExamples) {
				examples = append(examples, fmt.Sprintf("#%d (%.2f) %s", ls.Index, ls.Similarity, escapeCell(ls.What)))
			}
			b.WriteString(fmt.Sprintf("| %d | %.3f | %d | %d | %d | %s |\n", r.Index, r.Score,
				len(r.Issues.UnknownWho), len(r.Issues.WhenMissing), len(r.Issues.LowSimilarity), strings.Join(examples, "<br>")))
		}
	}

	if part := outcome.Partition; part != nil {
		b.WriteString(fmt.Sprintf("\n**Partition** at score ≥ %g: %d kept, %d filtered\n", part.Threshold, part.Kept, part.Filtered))
	}

	return b.String()
}

// RenderHTML renders the markdown report as a standalone HTML page.
func RenderHTML(outcome *models.CorpusOutcome, opts Options) (string, error) {
	md := goldmark.New(goldmark.WithExtensions(extension.GFM))

	var body bytes.Buffer
	if err := md.Convert([]byte(RenderMarkdown(outcome, opts)), &body); err != nil {
		return "", fmt.Errorf("rendering HTML report: %w", err)
	}

	var b strings.Builder
	b.WriteString("<!DOCTYPE html>\n<html>\n<head>\n<meta charset=\"utf-8\">\n")
	b.WriteString(fmt.Sprintf("<title>Data quality: %s</title>\n", html.EscapeString(outcome.Source)))
	b.WriteString("<style>body{font-family:sans-serif;max-width:960px;margin:2em auto}table{border-collapse:collapse}td,th{border:1px solid #ccc;padding:4px 8px}</style>\n")
	b.WriteString("</head>\n<body>\n")
	b.Write(body.Bytes())
	b.WriteString("</body>\n</html>\n")
	return b.String(), nil
}

func escapeCell(s string) string {
	s = strings.ReplaceAll(s, "|", "\\|")
	return strings.ReplaceAll(s, "\n", " ")
}
