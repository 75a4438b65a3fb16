package transcript

import (
	"regexp"
)

// DeadlinePattern is one entry of the deadline-phrase grammar.
type DeadlinePattern struct {
	Name    string
	Pattern *regexp.Regexp
}

// DeadlinePatterns lists the relative and absolute date expressions that are
// recognised in Korean meeting transcripts.
var DeadlinePatterns = []DeadlinePattern{
	{Name: "month_day", Pattern: regexp.MustCompile(`\d+월\s*\d+일`)},
	{Name: "by_day", Pattern: regexp.MustCompile(`\d+일까지`)},
	{Name: "tomorrow", Pattern: regexp.MustCompile(`내일[^\s]*`)},
	{Name: "today", Pattern: regexp.MustCompile(`오늘[^\s]*`)},
	{Name: "this_week", Pattern: regexp.MustCompile(`이번\s*주[^\s]*`)},
	{Name: "next_week", Pattern: regexp.MustCompile(`다음\s*주[^\s]*`)},
	{Name: "next_meeting", Pattern: regexp.MustCompile(`다음\s*회의[^\s]*`)},
}

// PhraseSet is the set of deadline phrases matched in a transcript.
type PhraseSet map[string]struct{}

// Contains reports whether phrase was extracted verbatim.
func (p PhraseSet) Contains(phrase string) bool {
	_, ok := p[phrase]
	return ok
}

// ExtractDeadlinePhrases returns every match of [DeadlinePatterns] in text.
func ExtractDeadlinePhrases(text string) PhraseSet {
	return ExtractPhrases(text, DeadlinePatterns)
}

// ExtractPhrases applies an arbitrary pattern table to text.
func ExtractPhrases(text string, patterns []DeadlinePattern) PhraseSet {
	set := PhraseSet{}
	for _, p := range patterns {
		for _, m := range p.Pattern.FindAllString(text, -1) {
			set[m] = struct{}{}
		}
	}
	return set
}
