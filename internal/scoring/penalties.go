package scoring

// DefaultPenalty is the score deduction of each check.
const DefaultPenalty = 0.2

// Penalties configures how much each check deducts from a perfect score.
// Who and When are flat: any flagged task costs the full amount. Similarity
// is proportional to the share of flagged tasks.
type Penalties struct {
	Who        float64 `yaml:"who_penalty" json:"who_penalty"`
	When       float64 `yaml:"when_penalty" json:"when_penalty"`
	Similarity float64 `yaml:"similarity_penalty" json:"similarity_penalty"`
}

// DefaultPenalties returns 0.2 for every check.
func DefaultPenalties() Penalties {
	return Penalties{Who: DefaultPenalty, When: DefaultPenalty, Similarity: DefaultPenalty}
}

// Aggregate combines check outcomes into a score in [0, 1].
func (p Penalties) Aggregate(whoFlagged, whenFlagged bool, lowSimilarity, totalTasks int) float64 {
	score := 1.0
	if whoFlagged {
		score -= p.Who
	}
	if whenFlagged {
		score -= p.When
	}
	score -= p.Similarity * (float64(lowSimilarity) / float64(max(1, totalTasks)))
	if score < 0 {
		return 0
	}
	if score > 1 {
		return 1
	}
	return score
}
