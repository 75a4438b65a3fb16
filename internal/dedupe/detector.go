// Package dedupe finds samples whose transcripts are byte-for-byte identical.
package dedupe

import (
	"crypto/sha256"
	"encoding/hex"

	"github.com/spboyer/taskqa/internal/models"
)

// Detector tracks the first index at which each transcript was seen.
// Observe must be called in traversal order; Detector is not safe for
// concurrent use.
type Detector struct {
	firstSeen map[string]int
	later     map[int]struct{}
	pairs     []models.DuplicatePair
}

// NewDetector returns an empty detector.
func NewDetector() *Detector {
	return &Detector{firstSeen: map[string]int{}, later: map[int]struct{}{}}
}

// Hash returns the hex SHA-256 digest of a transcript.
func Hash(transcript string) string {
	sum := sha256.Sum256([]byte(transcript))
	return hex.EncodeToString(sum[:])
}

// Observe records transcript at index. If an identical transcript was seen
// earlier, it returns the pair and true.
func (d *Detector) Observe(index int, transcript string) (models.DuplicatePair, bool) {
	h := Hash(transcript)
	if first, ok := d.firstSeen[h]; ok {
		p := models.DuplicatePair{First: first, Later: index}
		d.pairs = append(d.pairs, p)
		d.later[index] = struct{}{}
		return p, true
	}
	d.firstSeen[h] = index
	return models.DuplicatePair{}, false
}

// Pairs returns the duplicate pairs found so far, in traversal order.
func (d *Detector) Pairs() []models.DuplicatePair {
	out := make([]models.DuplicatePair, len(d.pairs))
	copy(out, d.pairs)
	return out
}

// IsLater reports whether index was recorded as a later duplicate.
func (d *Detector) IsLater(index int) bool {
	_, ok := d.later[index]
	return ok
}
