package models

import "context"

// Embedder produces one fixed-width vector per input text. Implementations
// must be safe for concurrent use.
type Embedder interface {
	Embed(ctx context.Context, texts []string) ([][]float32, error)
	Name() string
	Dims() int
}
