package models

import (
	"encoding/json"
	"time"

	"github.com/spboyer/taskqa/internal/statistics"
)

// GraderKind identifies the type of check that produced a grader result.
type GraderKind string

const (
	GraderKindSchema   GraderKind = "schema"
	GraderKindWho      GraderKind = "unknown_who"
	GraderKindWhen     GraderKind = "when_missing"
	GraderKindSemantic GraderKind = "low_similarity"
)

// Flag marks one task rejected by a grader.
type Flag struct {
	// TaskIndex is the position of the task in the assistant output.
	TaskIndex int `json:"index"`
	// Value is the offending field value (who, when or what).
	Value string `json:"value"`
	// Similarity is only set by the semantic grader.
	Similarity float64 `json:"similarity,omitempty"`
}

// GraderResults is what a single grader reports for one sample.
type GraderResults struct {
	Name       string     `json:"identifier"`
	Type       GraderKind `json:"type"`
	Passed     bool       `json:"passed"`
	Feedback   string     `json:"feedback"`
	Flags      []Flag     `json:"flags,omitempty"`
	Checked    int        `json:"checked"`
	DurationMs int64      `json:"duration_ms"`
}

// UnknownWho is a task whose owner matched no transcript speaker.
type UnknownWho struct {
	Index int    `json:"index"`
	Who   string `json:"who"`
}

// WhenMissing is a task whose deadline does not occur in the transcript.
type WhenMissing struct {
	Index int    `json:"index"`
	When  string `json:"when"`
}

// LowSimilarity is a task whose description is not grounded in the transcript.
type LowSimilarity struct {
	Index      int     `json:"index"`
	What       string  `json:"what"`
	Similarity float64 `json:"similarity"`
}

// Issues groups flagged entries per check. For schema-invalid samples only
// SchemaError (and SchemaErrors) are populated.
type Issues struct {
	SchemaError   bool            `json:"schema_error,omitempty"`
	SchemaErrors  []string        `json:"schema_errors,omitempty"`
	UnknownWho    []UnknownWho    `json:"unknown_who"`
	WhenMissing   []WhenMissing   `json:"when_missing"`
	LowSimilarity []LowSimilarity `json:"low_similarity"`
}

// MarshalJSON writes schema failures as {"schema_error": true, ...} and
// every other sample with all three lists present, empty when nothing was
// flagged.
func (i Issues) MarshalJSON() ([]byte, error) {
	if i.SchemaError {
		return json.Marshal(struct {
			SchemaError  bool     `json:"schema_error"`
			SchemaErrors []string `json:"schema_errors,omitempty"`
		}{true, i.SchemaErrors})
	}
	type plain Issues
	p := plain(i)
	if p.UnknownWho == nil {
		p.UnknownWho = []UnknownWho{}
	}
	if p.WhenMissing == nil {
		p.WhenMissing = []WhenMissing{}
	}
	if p.LowSimilarity == nil {
		p.LowSimilarity = []LowSimilarity{}
	}
	return json.Marshal(p)
}

// ValidationResult is the per-sample outcome of the validation pipeline.
type ValidationResult struct {
	Index    int     `json:"index"`
	SchemaOK bool    `json:"schema_ok"`
	Score    float64 `json:"score"`
	Tasks    int     `json:"tasks"`
	Issues   Issues  `json:"issues"`
}

// HasIssues reports whether any check flagged the sample.
func (r *ValidationResult) HasIssues() bool {
	return r.Issues.SchemaError ||
		len(r.Issues.UnknownWho) > 0 ||
		len(r.Issues.WhenMissing) > 0 ||
		len(r.Issues.LowSimilarity) > 0
}

// DuplicatePair links a later sample to the first sample with the same transcript.
type DuplicatePair struct {
	First int `json:"first"`
	Later int `json:"later"`
}

// CorpusOutcome is the complete result of validating one JSON-Lines corpus.
type CorpusOutcome struct {
	RunID      string             `json:"run_id"`
	Source     string             `json:"source"`
	Timestamp  time.Time          `json:"timestamp"`
	Setup      OutcomeSetup       `json:"config"`
	Digest     OutcomeDigest      `json:"summary"`
	Results    []ValidationResult `json:"results"`
	Duplicates []DuplicatePair    `json:"duplicates"`
	Partition  *PartitionSummary  `json:"partition,omitempty"`
}

type OutcomeSetup struct {
	EncoderModel        string  `json:"encoder_model"`
	SimilarityThreshold float64 `json:"similarity_threshold"`
	KeepThreshold       float64 `json:"keep_threshold"`
	DropDuplicates      bool    `json:"drop_duplicates,omitempty"`
}

type OutcomeDigest struct {
	TotalSamples   int               `json:"total_samples"`
	SchemaOK       int               `json:"schema_ok"`
	SchemaBad      int               `json:"schema_bad"`
	SkippedLines   int               `json:"skipped_lines"`
	MeanScore      float64           `json:"mean_score"`
	MinScore       float64           `json:"min_score"`
	MaxScore       float64           `json:"max_score"`
	StdDev         float64           `json:"std_dev"`
	Histogram      []HistogramBucket `json:"histogram"`
	Issues         IssueStats        `json:"issues"`
	DuplicatePairs int               `json:"duplicate_pairs"`
	DurationMs     int64             `json:"duration_ms"`

	// MeanScoreCI is a bootstrap interval over per-sample scores; nil for
	// corpora with fewer than two samples.
	MeanScoreCI *statistics.ConfidenceInterval `json:"mean_score_ci,omitempty"`
}

// HistogramBucket counts scores in [Lower, Upper).
type HistogramBucket struct {
	Label string  `json:"label"`
	Lower float64 `json:"lower"`
	Upper float64 `json:"upper"`
	Count int     `json:"count"`
}

// IssueCount holds the number of affected samples and flagged entries for one check.
type IssueCount struct {
	Samples int `json:"samples"`
	Entries int `json:"entries"`
}

type IssueStats struct {
	UnknownWho    IssueCount `json:"unknown_who"`
	WhenMissing   IssueCount `json:"when_missing"`
	LowSimilarity IssueCount `json:"low_similarity"`
}

// PartitionSummary describes the kept/filtered split written after validation.
type PartitionSummary struct {
	Threshold    float64 `json:"threshold"`
	KeptPath     string  `json:"kept_path"`
	FilteredPath string  `json:"filtered_path"`
	Kept         int     `json:"kept"`
	Filtered     int     `json:"filtered"`
}
