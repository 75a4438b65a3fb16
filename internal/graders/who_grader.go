package graders

import (
	"context"
	"strings"

	"github.com/spboyer/taskqa/internal/models"
	"github.com/spboyer/taskqa/internal/transcript"
)

// DefaultWhoDelimiters separate several owners in one who field.
const DefaultWhoDelimiters = ",/"

// WhoGraderArgs holds the arguments for creating a who grader.
type WhoGraderArgs struct {
	// Name is the identifier for this grader, used in results.
	Name string
	// Delimiters splits a who value into candidate names (default ",/").
	Delimiters string `mapstructure:"delimiters"`
}

// whoGrader flags tasks whose owner matches no transcript speaker.
//
// A candidate matches a speaker when, after normalization, either string
// contains the other. This tolerates role-style labels ("PM") and partial
// names ("김" for "개발자 김"). A side effect is that a whitespace-only owner
// normalizes to "" and matches any speaker.
type whoGrader struct {
	name       string
	delimiters string
}

// NewWhoGrader creates a [whoGrader].
func NewWhoGrader(args WhoGraderArgs) *whoGrader {
	if args.Delimiters == "" {
		args.Delimiters = DefaultWhoDelimiters
	}
	if args.Name == "" {
		args.Name = string(models.GraderKindWho)
	}
	return &whoGrader{name: args.Name, delimiters: args.Delimiters}
}

func (wg *whoGrader) Name() string            { return wg.name }
func (wg *whoGrader) Kind() models.GraderKind { return models.GraderKindWho }

func (wg *whoGrader) Grade(ctx context.Context, gradingContext *Context) (*models.GraderResults, error) {
	return measureTime(func() (*models.GraderResults, error) {
		set := gradingContext.speakers()
		speakers := set.Normalized()

		var flags []models.Flag
		checked := 0
		for i, task := range gradingContext.Tasks() {
			if task.Who == nil {
				continue
			}
			checked++
			if !wg.matches(*task.Who, speakers) {
				flags = append(flags, models.Flag{TaskIndex: i, Value: *task.Who})
			}
		}

		return &models.GraderResults{
			Name:     wg.name,
			Type:     models.GraderKindWho,
			Passed:   len(flags) == 0,
			Feedback: feedback(flags, checked, whoFeedback(set)),
			Flags:    flags,
			Checked:  checked,
		}, nil
	})
}

func whoFeedback(set transcript.SpeakerSet) string {
	if set.Len() == 0 {
		return "transcript has no speaker lines"
	}
	return "owner not among speakers " + strings.Join(set.Labels(), ", ")
}

func (wg *whoGrader) matches(who string, speakers []string) bool {
	for _, part := range wg.candidates(who) {
		if MatchesSpeaker(part, speakers) {
			return true
		}
	}
	return false
}

// candidates splits who on the delimiters, dropping empty parts. When nothing
// is left the raw value is the only candidate.
func (wg *whoGrader) candidates(who string) []string {
	fields := strings.FieldsFunc(who, func(r rune) bool {
		return strings.ContainsRune(wg.delimiters, r)
	})
	var parts []string
	for _, f := range fields {
		if f = strings.TrimSpace(f); f != "" {
			parts = append(parts, f)
		}
	}
	if len(parts) == 0 {
		return []string{who}
	}
	return parts
}

// MatchesSpeaker reports whether name equals, contains, or is contained in
// one of the already-normalized speaker labels.
func MatchesSpeaker(name string, normalizedSpeakers []string) bool {
	n := transcript.NormalizeName(name)
	for _, sp := range normalizedSpeakers {
		if n == sp || strings.Contains(sp, n) || strings.Contains(n, sp) {
			return true
		}
	}
	return false
}
