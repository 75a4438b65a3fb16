// Package orchestration drives a validation run over a whole corpus.
package orchestration

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/spboyer/taskqa/internal/dataset"
	"github.com/spboyer/taskqa/internal/dedupe"
	"github.com/spboyer/taskqa/internal/metrics"
	"github.com/spboyer/taskqa/internal/models"
	"github.com/spboyer/taskqa/internal/statistics"
)

// SampleValidator scores one sample. [scoring.Validator] implements it.
type SampleValidator interface {
	Validate(ctx context.Context, sample *models.Sample) (models.ValidationResult, error)
}

// CorpusRunner validates every sample of a corpus file, tracks duplicates,
// and optionally partitions the corpus by score.
type CorpusRunner struct {
	source    string
	validator SampleValidator
	setup     models.OutcomeSetup
	seed      int64

	// Partition outputs; empty paths disable the partition pass.
	keptPath     string
	filteredPath string

	// Progress tracking
	progressMu sync.Mutex
	listeners  []ProgressListener
}

// ProgressListener receives progress updates
type ProgressListener func(event ProgressEvent)

// EventType represents the type of progress event
type EventType string

// EventType constants
const (
	EventCorpusStart       EventType = "corpus_start"
	EventSampleComplete    EventType = "sample_complete"
	EventLineSkipped       EventType = "line_skipped"
	EventDuplicateFound    EventType = "duplicate_found"
	EventPartitionComplete EventType = "partition_complete"
	EventCorpusComplete    EventType = "corpus_complete"
)

// ProgressEvent represents a progress update
type ProgressEvent struct {
	EventType EventType
	// Line is the 0-based input line the event refers to.
	Line    int
	Score   float64
	Details map[string]any
}

// RunnerOption configures a CorpusRunner.
type RunnerOption func(*CorpusRunner)

// WithPartition enables writing kept and filtered corpora after validation.
func WithPartition(keptPath, filteredPath string) RunnerOption {
	return func(r *CorpusRunner) {
		r.keptPath = keptPath
		r.filteredPath = filteredPath
	}
}

// WithSetup records the run configuration in the outcome. KeepThreshold
// and DropDuplicates also drive the partition.
func WithSetup(setup models.OutcomeSetup) RunnerOption {
	return func(r *CorpusRunner) {
		r.setup = setup
	}
}

// WithSeed sets the bootstrap seed for the mean-score interval.
func WithSeed(seed int64) RunnerOption {
	return func(r *CorpusRunner) {
		r.seed = seed
	}
}

// NewCorpusRunner creates a runner for the corpus at source.
func NewCorpusRunner(source string, validator SampleValidator, opts ...RunnerOption) *CorpusRunner {
	r := &CorpusRunner{
		source:    source,
		validator: validator,
		seed:      statistics.DefaultSeed,
		setup:     models.OutcomeSetup{KeepThreshold: DefaultKeepThreshold},
		listeners: []ProgressListener{},
	}
	for _, o := range opts {
		o(r)
	}
	return r
}

// OnProgress registers a progress listener
func (r *CorpusRunner) OnProgress(listener ProgressListener) {
	r.progressMu.Lock()
	defer r.progressMu.Unlock()
	r.listeners = append(r.listeners, listener)
}

func (r *CorpusRunner) notifyProgress(event ProgressEvent) {
	r.progressMu.Lock()
	listeners := make([]ProgressListener, len(r.listeners))
	copy(listeners, r.listeners)
	r.progressMu.Unlock()

	for _, listener := range listeners {
		listener(event)
	}
}

// Run validates the corpus in file order. Any validator error aborts the run
// and no partial outcome is returned.
func (r *CorpusRunner) Run(ctx context.Context) (*models.CorpusOutcome, error) {
	if err := r.checkPartitionPaths(); err != nil {
		return nil, fmt.Errorf("partition: %w", err)
	}
	start := time.Now()
	r.notifyProgress(ProgressEvent{EventType: EventCorpusStart, Details: map[string]any{"source": r.source}})

	detector := dedupe.NewDetector()
	var results []models.ValidationResult
	skipped := 0

	err := dataset.EachSample(r.source, func(line dataset.Line, sample *models.Sample, decodeErr error) error {
		if err := ctx.Err(); err != nil {
			return err
		}
		if decodeErr != nil {
			if !line.Blank() {
				skipped++
			}
			slog.Debug("skipping line", "line", line.Number, "err", decodeErr)
			r.notifyProgress(ProgressEvent{EventType: EventLineSkipped, Line: line.Number})
			return nil
		}

		if pair, dup := detector.Observe(line.Number, sample.Transcript()); dup {
			r.notifyProgress(ProgressEvent{
				EventType: EventDuplicateFound,
				Line:      line.Number,
				Details:   map[string]any{"first": pair.First},
			})
		}

		res, err := r.validator.Validate(ctx, sample)
		if err != nil {
			return fmt.Errorf("line %d: %w", line.Number, err)
		}
		res.Index = line.Number
		results = append(results, res)

		r.notifyProgress(ProgressEvent{EventType: EventSampleComplete, Line: line.Number, Score: res.Score})
		return nil
	})
	if err != nil {
		return nil, err
	}

	duplicates := detector.Pairs()
	outcome := &models.CorpusOutcome{
		RunID:      uuid.NewString(),
		Source:     r.source,
		Timestamp:  start,
		Setup:      r.setup,
		Digest:     metrics.Summarize(results, duplicates, skipped, r.seed),
		Results:    results,
		Duplicates: duplicates,
	}
	if outcome.Results == nil {
		outcome.Results = []models.ValidationResult{}
	}

	if r.keptPath != "" && r.filteredPath != "" {
		part, err := r.partition(ctx, outcome, detector)
		if err != nil {
			return nil, fmt.Errorf("partition: %w", err)
		}
		outcome.Partition = part
		r.notifyProgress(ProgressEvent{
			EventType: EventPartitionComplete,
			Details:   map[string]any{"kept": part.Kept, "filtered": part.Filtered},
		})
	}

	outcome.Digest.DurationMs = time.Since(start).Milliseconds()
	r.notifyProgress(ProgressEvent{EventType: EventCorpusComplete, Score: outcome.Digest.MeanScore})
	return outcome, nil
}

// checkPartitionPaths rejects outputs that would truncate the source before
// it is read.
func (r *CorpusRunner) checkPartitionPaths() error {
	if r.keptPath == "" || r.filteredPath == "" {
		return nil
	}
	if dataset.SamePath(r.keptPath, r.source) {
		return fmt.Errorf("kept output %s is the input corpus", r.keptPath)
	}
	if dataset.SamePath(r.filteredPath, r.source) {
		return fmt.Errorf("filtered output %s is the input corpus", r.filteredPath)
	}
	return nil
}

// partition re-reads the source and copies every line, unchanged, into the
// kept or filtered file.
func (r *CorpusRunner) partition(ctx context.Context, outcome *models.CorpusOutcome, detector *dedupe.Detector) (*models.PartitionSummary, error) {
	scores := make(map[int]float64, len(outcome.Results))
	for _, res := range outcome.Results {
		scores[res.Index] = res.Score
	}

	in, err := dataset.Open(r.source)
	if err != nil {
		return nil, err
	}
	defer in.Close() //nolint:errcheck

	pw, err := dataset.NewPartitionWriter(r.keptPath, r.filteredPath)
	if err != nil {
		return nil, err
	}

	rule := KeepRule{Threshold: r.setup.KeepThreshold, DropDuplicates: r.setup.DropDuplicates}
	for {
		if err := ctx.Err(); err != nil {
			_ = pw.Close()
			return nil, err
		}
		line, err := in.Next()
		if err != nil {
			if errors.Is(err, io.EOF) {
				break
			}
			_ = pw.Close()
			return nil, err
		}
		score, validated := scores[line.Number]
		keep := rule.Keep(validated, score, detector.IsLater(line.Number))
		if err := pw.Write(line, keep); err != nil {
			_ = pw.Close()
			return nil, err
		}
	}

	kept, filtered := pw.Counts()
	if err := pw.Close(); err != nil {
		return nil, err
	}

	return &models.PartitionSummary{
		Threshold:    r.setup.KeepThreshold,
		KeptPath:     r.keptPath,
		FilteredPath: r.filteredPath,
		Kept:         kept,
		Filtered:     filtered,
	}, nil
}
