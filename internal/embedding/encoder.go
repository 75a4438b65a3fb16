// Package embedding turns text into vectors for the semantic similarity check.
package embedding

//go:generate go tool mockgen -source=encoder.go -destination=mocks.go -package=embedding

import (
	"context"
)

// Encoder maps text to a fixed-dimension vector. Implementations must be
// deterministic for a given model.
type Encoder interface {
	// Encode returns the embedding of text.
	Encode(ctx context.Context, text string) ([]float32, error)

	// ModelName identifies the model, and is part of every cache key.
	ModelName() string
}
