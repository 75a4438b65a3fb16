package graders

import (
	"context"
	"fmt"
	"strings"

	"github.com/spboyer/taskqa/internal/embedding"
	"github.com/spboyer/taskqa/internal/models"
)

// DefaultSimilarityThreshold is the minimum cosine similarity between a task
// description and its transcript.
const DefaultSimilarityThreshold = 0.5

// SemanticGraderArgs holds the arguments for creating a semantic grader.
type SemanticGraderArgs struct {
	// Name is the identifier for this grader, used in results.
	Name      string
	Encoder   embedding.Encoder
	Threshold float64 `mapstructure:"threshold"`
}

// semanticGrader flags tasks whose description embeds far from the transcript.
type semanticGrader struct {
	name      string
	encoder   embedding.Encoder
	threshold float64
}

// NewSemanticGrader creates a [semanticGrader]. Encoder is required.
func NewSemanticGrader(args SemanticGraderArgs) (*semanticGrader, error) {
	if args.Encoder == nil {
		return nil, fmt.Errorf("semantic grader '%s' requires an encoder", args.Name)
	}
	if args.Name == "" {
		args.Name = string(models.GraderKindSemantic)
	}
	return &semanticGrader{name: args.Name, encoder: args.Encoder, threshold: args.Threshold}, nil
}

func (sg *semanticGrader) Name() string            { return sg.name }
func (sg *semanticGrader) Kind() models.GraderKind { return models.GraderKindSemantic }

// Grade encodes the transcript once and compares every task description
// against it. Encoder failures are returned as errors.
func (sg *semanticGrader) Grade(ctx context.Context, gradingContext *Context) (*models.GraderResults, error) {
	return measureTime(func() (*models.GraderResults, error) {
		var transcriptVec []float32
		var flags []models.Flag
		checked := 0

		for i, task := range gradingContext.Tasks() {
			if strings.TrimSpace(task.What) == "" {
				continue
			}

			if transcriptVec == nil {
				v, err := sg.encoder.Encode(ctx, gradingContext.Transcript)
				if err != nil {
					return nil, fmt.Errorf("encoding transcript: %w", err)
				}
				transcriptVec = v
			}

			whatVec, err := sg.encoder.Encode(ctx, task.What)
			if err != nil {
				return nil, fmt.Errorf("encoding task %d: %w", i, err)
			}

			sim, err := embedding.CosineSimilarity(whatVec, transcriptVec)
			if err != nil {
				return nil, fmt.Errorf("task %d: %w", i, err)
			}
			checked++

			if sim < sg.threshold {
				flags = append(flags, models.Flag{TaskIndex: i, Value: task.What, Similarity: sim})
			}
		}

		return &models.GraderResults{
			Name:     sg.name,
			Type:     models.GraderKindSemantic,
			Passed:   len(flags) == 0,
			Feedback: feedback(flags, checked, fmt.Sprintf("similarity below %.2f", sg.threshold)),
			Flags:    flags,
			Checked:  checked,
		}, nil
	})
}
