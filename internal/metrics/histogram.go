package metrics

import "github.com/spboyer/taskqa/internal/models"

// ScoreBuckets are the fixed report buckets, highest first. The top bucket's
// upper bound is above 1.0 so that perfect scores are counted.
var ScoreBuckets = []models.HistogramBucket{
	{Label: "0.9 ~ 1.0", Lower: 0.9, Upper: 1.01},
	{Label: "0.8 ~ 0.9", Lower: 0.8, Upper: 0.9},
	{Label: "0.7 ~ 0.8", Lower: 0.7, Upper: 0.8},
	{Label: "0.5 ~ 0.7", Lower: 0.5, Upper: 0.7},
	{Label: "0.0 ~ 0.5", Lower: 0.0, Upper: 0.5},
}

// Histogram counts scores into a fresh copy of [ScoreBuckets].
func Histogram(scores []float64) []models.HistogramBucket {
	buckets := make([]models.HistogramBucket, len(ScoreBuckets))
	copy(buckets, ScoreBuckets)

	for _, s := range scores {
		for i := range buckets {
			if s >= buckets[i].Lower && s < buckets[i].Upper {
				buckets[i].Count++
				break
			}
		}
	}
	return buckets
}
