package embedding

import (
	"context"
	"fmt"
	"math"
	"strings"

	"github.com/cespare/xxhash/v2"
)

// DefaultHashingDimensions is the vector size of [HashingEncoder].
const DefaultHashingDimensions = 512

// HashingConfig configures [HashingEncoder].
type HashingConfig struct {
	Dimensions int `mapstructure:"dimensions"`
	// NGram is the character n-gram length (default 2).
	NGram int `mapstructure:"ngram"`
}

// HashingEncoder is an offline encoder that hashes character n-grams into a
// fixed number of signed buckets. It needs no model server, which makes it
// useful for CI and quick local checks; it captures lexical overlap only.
type HashingEncoder struct {
	dims  int
	ngram int
}

var _ Encoder = (*HashingEncoder)(nil)

// NewHashingEncoder creates an encoder, filling unset config with defaults.
func NewHashingEncoder(cfg HashingConfig) *HashingEncoder {
	if cfg.Dimensions <= 0 {
		cfg.Dimensions = DefaultHashingDimensions
	}
	if cfg.NGram <= 0 {
		cfg.NGram = 2
	}
	return &HashingEncoder{dims: cfg.Dimensions, ngram: cfg.NGram}
}

// Encode never fails.
func (e *HashingEncoder) Encode(_ context.Context, text string) ([]float32, error) {
	vec := make([]float32, e.dims)
	for _, word := range strings.Fields(strings.ToLower(text)) {
		runes := []rune(word)
		if len(runes) < e.ngram {
			e.add(vec, word)
			continue
		}
		for i := 0; i+e.ngram <= len(runes); i++ {
			e.add(vec, string(runes[i:i+e.ngram]))
		}
	}

	var norm float64
	for _, v := range vec {
		norm += float64(v) * float64(v)
	}
	if norm > 0 {
		scale := float32(1 / math.Sqrt(norm))
		for i := range vec {
			vec[i] *= scale
		}
	}
	return vec, nil
}

func (e *HashingEncoder) add(vec []float32, gram string) {
	h := xxhash.Sum64String(gram)
	idx := h % uint64(e.dims)
	if h>>63 == 1 {
		vec[idx]--
	} else {
		vec[idx]++
	}
}

// ModelName encodes the parameters so cache entries never mix settings.
func (e *HashingEncoder) ModelName() string {
	return fmt.Sprintf("hashing-%dgram-%d", e.ngram, e.dims)
}
