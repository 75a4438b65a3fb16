package reporting

import (
	"encoding/json"
	"fmt"
	"io"

	"github.com/spboyer/taskqa/internal/models"
)

// WriteJSON writes the full outcome, per-sample results included.
func WriteJSON(w io.Writer, outcome *models.CorpusOutcome) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	enc.SetEscapeHTML(false)
	if err := enc.Encode(outcome); err != nil {
		return fmt.Errorf("encoding JSON report: %w", err)
	}
	return nil
}

// Write renders the outcome in the given format.
func Write(w io.Writer, format Format, outcome *models.CorpusOutcome, opts Options) error {
	switch format {
	case FormatText, "":
		return WriteText(w, outcome, opts)
	case FormatMarkdown:
		_, err := io.WriteString(w, RenderMarkdown(outcome, opts))
		return err
	case FormatHTML:
		page, err := RenderHTML(outcome, opts)
		if err != nil {
			return err
		}
		_, err = io.WriteString(w, page)
		return err
	case FormatJSON:
		return WriteJSON(w, outcome)
	default:
		return fmt.Errorf("unsupported report format %q", format)
	}
}
