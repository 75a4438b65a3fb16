package embedding

import "context"

// EncoderFunc adapts a plain function to the [Encoder] interface.
type EncoderFunc func(ctx context.Context, text string) ([]float32, error)

// Encode calls f(ctx, text).
func (f EncoderFunc) Encode(ctx context.Context, text string) ([]float32, error) {
	return f(ctx, text)
}

// ModelName returns "func".
func (f EncoderFunc) ModelName() string { return "func" }
