// Package embed constructs text-embedding providers. Providers turn free
// text into fixed-width vectors; the semantic miner treats them
// interchangeably via models.Embedder.
package embed

import "errors"

// Sentinel errors for embedding failures surfaced to callers that need to
// distinguish a degraded model from bad input.
var (
	ErrProviderUnavailable = errors.New("embedding provider unavailable")
	ErrInvalidResponse     = errors.New("embedding provider returned invalid response")
)
