package graders

import (
	"context"
	"fmt"
	"time"

	"github.com/go-viper/mapstructure/v2"
	"github.com/spboyer/taskqa/internal/embedding"
	"github.com/spboyer/taskqa/internal/models"
	"github.com/spboyer/taskqa/internal/transcript"
)

// Grader is the interface for all task checks
type Grader interface {
	// Name returns the grader identifier
	Name() string

	// Kind returns the grader type
	Kind() models.GraderKind

	// Grade checks the tasks of one sample and returns the flagged ones
	Grade(ctx context.Context, gradingContext *Context) (*models.GraderResults, error)
}

// Context carries one schema-valid sample through the graders.
type Context struct {
	Transcript string
	Output     *models.AssistantOutput

	// Speakers and Deadlines are derived from Transcript on first use when
	// the caller leaves them nil.
	Speakers  transcript.SpeakerSet
	Deadlines transcript.PhraseSet
}

// Tasks returns the tasks under evaluation.
func (c *Context) Tasks() []models.Task {
	if c.Output == nil {
		return nil
	}
	return c.Output.Tasks
}

func (c *Context) speakers() transcript.SpeakerSet {
	if c.Speakers == nil {
		c.Speakers = transcript.ExtractSpeakers(c.Transcript)
	}
	return c.Speakers
}

// Create builds a grader of the given kind, decoding params the same way for
// every kind. The encoder is only used by the semantic grader.
func Create(kind models.GraderKind, identifier string, params map[string]any, enc embedding.Encoder) (Grader, error) {
	switch kind {
	case models.GraderKindWho:
		var v struct {
			Delimiters string `mapstructure:"delimiters"`
		}
		if err := mapstructure.Decode(params, &v); err != nil {
			return nil, err
		}
		return NewWhoGrader(WhoGraderArgs{Name: identifier, Delimiters: v.Delimiters}), nil
	case models.GraderKindWhen:
		var v struct {
			Patterns []string `mapstructure:"patterns"`
		}
		if err := mapstructure.Decode(params, &v); err != nil {
			return nil, err
		}
		return NewWhenGrader(WhenGraderArgs{Name: identifier, ExtraPatterns: v.Patterns})
	case models.GraderKindSemantic:
		var v struct {
			Threshold *float64 `mapstructure:"threshold"`
		}
		if err := mapstructure.Decode(params, &v); err != nil {
			return nil, err
		}
		args := SemanticGraderArgs{Name: identifier, Encoder: enc, Threshold: DefaultSimilarityThreshold}
		if v.Threshold != nil {
			args.Threshold = *v.Threshold
		}
		return NewSemanticGrader(args)
	default:
		return nil, fmt.Errorf("'%s' is not a valid grader type", kind)
	}
}

// measureTime is a helper to measure grading duration
func measureTime(fn func() (*models.GraderResults, error)) (*models.GraderResults, error) {
	start := time.Now()
	result, err := fn()

	if result != nil {
		result.DurationMs = time.Since(start).Milliseconds()
	}

	return result, err
}

func feedback(flags []models.Flag, checked int, what string) string {
	if len(flags) == 0 {
		return fmt.Sprintf("All %d tasks passed", checked)
	}
	return fmt.Sprintf("%d of %d tasks flagged: %s", len(flags), checked, what)
}
