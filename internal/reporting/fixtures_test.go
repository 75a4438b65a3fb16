package reporting

import (
	"time"

	"github.com/spboyer/taskqa/internal/metrics"
	"github.com/spboyer/taskqa/internal/models"
)

func newTestOutcome() *models.CorpusOutcome {
	results := []models.ValidationResult{
		{Index: 0, SchemaOK: true, Score: 1.0, Tasks: 2},
		{Index: 1, SchemaOK: false, Score: 0.0, Issues: models.Issues{SchemaError: true, SchemaErrors: []string{"/: missing property 'tasks'"}}},
		{Index: 3, SchemaOK: true, Score: 0.4, Tasks: 2, Issues: models.Issues{
			UnknownWho:  []models.UnknownWho{{Index: 0, Who: "CTO"}},
			WhenMissing: []models.WhenMissing{{Index: 1, When: "내일까지"}},
			LowSimilarity: []models.LowSimilarity{
				{Index: 0, What: "점심 메뉴 정하기", Similarity: 0.12},
				{Index: 1, What: "주차 등록", Similarity: 0.2},
			},
		}},
		{Index: 4, SchemaOK: true, Score: 0.8, Tasks: 1, Issues: models.Issues{
			UnknownWho: []models.UnknownWho{{Index: 0, Who: "디자이너"}},
		}},
		{Index: 5, SchemaOK: true, Score: 1.0, Tasks: 3},
	}
	duplicates := []models.DuplicatePair{{First: 0, Later: 5}}

	digest := metrics.Summarize(results, duplicates, 1, 42)
	digest.DurationMs = 3500

	return &models.CorpusOutcome{
		RunID:     "run-1",
		Source:    "data/train.jsonl",
		Timestamp: time.Date(2025, 6, 15, 12, 0, 0, 0, time.UTC),
		Setup: models.OutcomeSetup{
			EncoderModel:        "nomic-embed-text",
			SimilarityThreshold: 0.5,
			KeepThreshold:       0.5,
		},
		Digest:     digest,
		Results:    results,
		Duplicates: duplicates,
		Partition: &models.PartitionSummary{
			Threshold:    0.5,
			KeptPath:     "data/train.score_ge_0.5.jsonl",
			FilteredPath: "data/train.score_lt_0.5.jsonl",
			Kept:         3,
			Filtered:     3,
		},
	}
}
