package port

import (
	"context"

	"gorgonia.org/tensor"
)

// Segmenter is the trained model: normalized (1,3,H,W) input in,
// per-pixel class logits (1,K,H,W) out.
type Segmenter interface {
	// Forward runs one inference pass. It must not modify the input.
	Forward(ctx context.Context, input *tensor.Dense) (*tensor.Dense, error)

	// NumClasses is the class count K the model was built for.
	NumClasses() int

	// Close releases runtime resources held by the model.
	Close() error
}
