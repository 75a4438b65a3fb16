package transcript

import (
	"regexp"
	"sort"
	"strings"
)

// speakerLine matches a dialogue line: the label is everything before the
// first colon.
var speakerLine = regexp.MustCompile(`^(.+?):`)

// SpeakerSet is the set of distinct speaker labels found in one transcript.
// Labels are kept as written; comparisons go through [NormalizeName].
type SpeakerSet map[string]struct{}

// ExtractSpeakers scans a transcript line by line and collects the label of
// every line of the form "label: text".
func ExtractSpeakers(text string) SpeakerSet {
	set := SpeakerSet{}
	for _, line := range strings.Split(text, "\n") {
		m := speakerLine.FindStringSubmatch(strings.TrimSpace(line))
		if m == nil {
			continue
		}
		label := strings.TrimSpace(m[1])
		if label == "" {
			continue
		}
		set[label] = struct{}{}
	}
	return set
}

// Labels returns the speaker labels in sorted order.
func (s SpeakerSet) Labels() []string {
	out := make([]string, 0, len(s))
	for label := range s {
		out = append(out, label)
	}
	sort.Strings(out)
	return out
}

// Normalized returns the distinct normalized labels in sorted order.
func (s SpeakerSet) Normalized() []string {
	seen := make(map[string]struct{}, len(s))
	out := make([]string, 0, len(s))
	for label := range s {
		n := NormalizeName(label)
		if _, ok := seen[n]; ok {
			continue
		}
		seen[n] = struct{}{}
		out = append(out, n)
	}
	sort.Strings(out)
	return out
}

// Len returns the number of distinct labels.
func (s SpeakerSet) Len() int { return len(s) }

// NormalizeName trims a name and removes all whitespace inside it, so that
// "QA 엔지니어" and "QA엔지니어" compare equal.
func NormalizeName(s string) string {
	return strings.Join(strings.Fields(s), "")
}
