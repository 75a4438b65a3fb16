// Package scoring validates one sample end to end and turns the check
// results into a quality score.
package scoring

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/spboyer/taskqa/internal/embedding"
	"github.com/spboyer/taskqa/internal/graders"
	"github.com/spboyer/taskqa/internal/models"
	"github.com/spboyer/taskqa/internal/transcript"
	"github.com/spboyer/taskqa/internal/validation"
)

// Options configures a [Validator].
type Options struct {
	// Encoder is required; its lifecycle belongs to the caller.
	Encoder embedding.Encoder
	// SimilarityThreshold defaults to [graders.DefaultSimilarityThreshold]
	// when nil. Zero disables the similarity check.
	SimilarityThreshold *float64
	// Penalties defaults to [DefaultPenalties] when nil.
	Penalties *Penalties
	// GraderParams holds extra parameters per grader kind, decoded by
	// [graders.Create].
	GraderParams map[models.GraderKind]map[string]any
}

// Validator runs the schema, who, when, and semantic checks for one sample.
type Validator struct {
	who       graders.Grader
	when      graders.Grader
	semantic  graders.Grader
	penalties Penalties
}

// NewValidator builds the graders once for the whole run.
func NewValidator(opts Options) (*Validator, error) {
	if opts.Encoder == nil {
		return nil, fmt.Errorf("validator requires an encoder")
	}
	threshold := graders.DefaultSimilarityThreshold
	if opts.SimilarityThreshold != nil {
		threshold = *opts.SimilarityThreshold
	}
	penalties := DefaultPenalties()
	if opts.Penalties != nil {
		penalties = *opts.Penalties
	}

	params := func(kind models.GraderKind) map[string]any {
		p := map[string]any{}
		for k, v := range opts.GraderParams[kind] {
			p[k] = v
		}
		return p
	}

	who, err := graders.Create(models.GraderKindWho, string(models.GraderKindWho), params(models.GraderKindWho), nil)
	if err != nil {
		return nil, fmt.Errorf("creating who grader: %w", err)
	}
	when, err := graders.Create(models.GraderKindWhen, string(models.GraderKindWhen), params(models.GraderKindWhen), nil)
	if err != nil {
		return nil, fmt.Errorf("creating when grader: %w", err)
	}
	semParams := params(models.GraderKindSemantic)
	if _, ok := semParams["threshold"]; !ok {
		semParams["threshold"] = threshold
	}
	semantic, err := graders.Create(models.GraderKindSemantic, string(models.GraderKindSemantic), semParams, opts.Encoder)
	if err != nil {
		return nil, fmt.Errorf("creating semantic grader: %w", err)
	}

	return &Validator{who: who, when: when, semantic: semantic, penalties: penalties}, nil
}

// Validate scores one sample. A schema-invalid output scores 0 and skips the
// remaining checks. Only encoder failures are returned as errors.
func (v *Validator) Validate(ctx context.Context, sample *models.Sample) (models.ValidationResult, error) {
	if err := sample.Check(); err != nil {
		return models.ValidationResult{}, err
	}

	schema := validation.ValidateAssistantOutput(sample.AssistantOutput())
	if !schema.OK {
		slog.Debug("schema validation failed", "errors", schema.Errors)
		return models.ValidationResult{
			SchemaOK: false,
			Score:    0,
			Issues:   models.Issues{SchemaError: true, SchemaErrors: schema.Errors},
		}, nil
	}

	text := sample.Transcript()
	gctx := &graders.Context{
		Transcript: text,
		Output:     schema.Output,
		Speakers:   transcript.ExtractSpeakers(text),
	}

	whoRes, err := v.who.Grade(ctx, gctx)
	if err != nil {
		return models.ValidationResult{}, err
	}
	whenRes, err := v.when.Grade(ctx, gctx)
	if err != nil {
		return models.ValidationResult{}, err
	}
	semRes, err := v.semantic.Grade(ctx, gctx)
	if err != nil {
		return models.ValidationResult{}, fmt.Errorf("semantic check: %w", err)
	}

	issues := models.Issues{
		UnknownWho:    []models.UnknownWho{},
		WhenMissing:   []models.WhenMissing{},
		LowSimilarity: []models.LowSimilarity{},
	}
	for _, f := range whoRes.Flags {
		issues.UnknownWho = append(issues.UnknownWho, models.UnknownWho{Index: f.TaskIndex, Who: f.Value})
	}
	for _, f := range whenRes.Flags {
		issues.WhenMissing = append(issues.WhenMissing, models.WhenMissing{Index: f.TaskIndex, When: f.Value})
	}
	for _, f := range semRes.Flags {
		issues.LowSimilarity = append(issues.LowSimilarity, models.LowSimilarity{Index: f.TaskIndex, What: f.Value, Similarity: f.Similarity})
	}

	tasks := len(schema.Output.Tasks)
	score := v.penalties.Aggregate(len(issues.UnknownWho) > 0, len(issues.WhenMissing) > 0, len(issues.LowSimilarity), tasks)

	return models.ValidationResult{
		SchemaOK: true,
		Score:    score,
		Tasks:    tasks,
		Issues:   issues,
	}, nil
}
