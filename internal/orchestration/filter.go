package orchestration

// DefaultKeepThreshold is the score a sample needs to land in the kept file.
const DefaultKeepThreshold = 0.5

// KeepRule decides which output file a corpus line goes to.
type KeepRule struct {
	Threshold float64
	// DropDuplicates sends later copies of a repeated transcript to the
	// filtered file regardless of score.
	DropDuplicates bool
}

// Keep reports whether a line belongs in the kept file. Lines that were never
// validated, blank or malformed, always go to the filtered file regardless of
// threshold. The kept file therefore holds only scored samples, and the two
// files together still account for every input line, blank lines included.
func (k KeepRule) Keep(validated bool, score float64, laterDuplicate bool) bool {
	if !validated {
		return false
	}
	if k.DropDuplicates && laterDuplicate {
		return false
	}
	return score >= k.Threshold
}
