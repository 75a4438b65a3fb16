package graders

import (
	"context"
	"fmt"
	"regexp"
	"strings"

	"github.com/spboyer/taskqa/internal/models"
	"github.com/spboyer/taskqa/internal/transcript"
)

// WhenGraderArgs holds the arguments for creating a when grader.
type WhenGraderArgs struct {
	// Name is the identifier for this grader, used in results.
	Name string
	// ExtraPatterns are appended to the built-in deadline phrase table.
	ExtraPatterns []string `mapstructure:"patterns"`
}

// whenGrader flags tasks whose deadline text appears neither verbatim in the
// transcript nor among the deadline phrases extracted from it.
type whenGrader struct {
	name     string
	patterns []transcript.DeadlinePattern
}

// NewWhenGrader creates a [whenGrader].
func NewWhenGrader(args WhenGraderArgs) (*whenGrader, error) {
	if args.Name == "" {
		args.Name = string(models.GraderKindWhen)
	}
	patterns := append([]transcript.DeadlinePattern(nil), transcript.DeadlinePatterns...)
	for i, p := range args.ExtraPatterns {
		re, err := regexp.Compile(p)
		if err != nil {
			return nil, fmt.Errorf("when grader '%s': invalid pattern %q: %w", args.Name, p, err)
		}
		patterns = append(patterns, transcript.DeadlinePattern{Name: fmt.Sprintf("custom_%d", i), Pattern: re})
	}
	return &whenGrader{name: args.Name, patterns: patterns}, nil
}

func (wg *whenGrader) Name() string            { return wg.name }
func (wg *whenGrader) Kind() models.GraderKind { return models.GraderKindWhen }

func (wg *whenGrader) Grade(ctx context.Context, gradingContext *Context) (*models.GraderResults, error) {
	return measureTime(func() (*models.GraderResults, error) {
		text := gradingContext.Transcript
		phrases := gradingContext.Deadlines
		if phrases == nil {
			phrases = transcript.ExtractPhrases(text, wg.patterns)
		}

		var flags []models.Flag
		checked := 0
		for i, task := range gradingContext.Tasks() {
			if task.When == nil {
				continue
			}
			checked++
			w := *task.When
			if strings.Contains(text, w) || phrases.Contains(w) {
				continue
			}
			flags = append(flags, models.Flag{TaskIndex: i, Value: w})
		}

		return &models.GraderResults{
			Name:     wg.name,
			Type:     models.GraderKindWhen,
			Passed:   len(flags) == 0,
			Feedback: feedback(flags, checked, "deadline not found in transcript"),
			Flags:    flags,
			Checked:  checked,
		}, nil
	})
}
