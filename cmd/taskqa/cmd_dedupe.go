package main

import (
	"encoding/json"
	"fmt"

	"github.com/spboyer/taskqa/internal/orchestration"
	"github.com/spf13/cobra"
)

func newDedupeCommand() *cobra.Command {
	var asJSON bool

	cmd := &cobra.Command{
		Use:   "dedupe <file.jsonl>",
		Short: "List samples with duplicate transcripts",
		Long: `List samples whose transcript is identical to an earlier sample.

Only transcripts are compared, so no encoder is needed. Each pair names the
later line and the first line with the same transcript (0-based line numbers).`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			scan, err := orchestration.ScanDuplicates(cmd.Context(), args[0])
			if err != nil {
				return fmt.Errorf("scanning %s: %w", args[0], err)
			}

			out := cmd.OutOrStdout()
			if asJSON {
				enc := json.NewEncoder(out)
				enc.SetIndent("", "  ")
				return enc.Encode(scan)
			}

			fmt.Fprintf(out, "Scanned %d samples", scan.Samples) //nolint:errcheck
			if scan.Skipped > 0 {
				fmt.Fprintf(out, " (%d malformed lines skipped)", scan.Skipped) //nolint:errcheck
			}
			fmt.Fprintf(out, ": %d duplicate pairs\n", len(scan.Pairs)) //nolint:errcheck
			for _, p := range scan.Pairs {
				fmt.Fprintf(out, "  line %d duplicates line %d\n", p.Later, p.First) //nolint:errcheck
			}
			return nil
		},
	}

	cmd.Flags().BoolVar(&asJSON, "json", false, "Print the result as JSON")

	return cmd
}
