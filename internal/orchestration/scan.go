package orchestration

import (
	"context"

	"github.com/spboyer/taskqa/internal/dataset"
	"github.com/spboyer/taskqa/internal/dedupe"
	"github.com/spboyer/taskqa/internal/models"
)

// DuplicateScan is the result of a duplicate-only pass.
type DuplicateScan struct {
	Source  string                 `json:"source"`
	Samples int                    `json:"samples"`
	Skipped int                    `json:"skipped_lines"`
	Pairs   []models.DuplicatePair `json:"duplicates"`
}

// ScanDuplicates hashes every transcript in path without running any checks.
func ScanDuplicates(ctx context.Context, path string) (*DuplicateScan, error) {
	scan := &DuplicateScan{Source: path}
	detector := dedupe.NewDetector()

	err := dataset.EachSample(path, func(line dataset.Line, sample *models.Sample, decodeErr error) error {
		if err := ctx.Err(); err != nil {
			return err
		}
		if decodeErr != nil {
			if !line.Blank() {
				scan.Skipped++
			}
			return nil
		}
		scan.Samples++
		detector.Observe(line.Number, sample.Transcript())
		return nil
	})
	if err != nil {
		return nil, err
	}

	scan.Pairs = detector.Pairs()
	return scan, nil
}
