// Package lexical is the in-process fallback embedder: hashed term-frequency
// vectors with no network dependency. Vectors are deterministic, so results
// stay reproducible when the real model is down, at the cost of capturing
// only lexical (not semantic) similarity.
package lexical

import (
	"context"
	"hash/fnv"
	"math"
	"strings"

	"github.com/rohanmhetar/failsight/pkg/models"
)

// Same width as the MiniLM family so downstream code never cares which
// provider produced a vector.
const dims = 384

// Provider implements models.Embedder with hashed term frequencies.
type Provider struct{}

func NewProvider() *Provider { return &Provider{} }

func (p *Provider) Name() string { return "lexical" }

func (p *Provider) Dims() int { return dims }

func (p *Provider) Embed(_ context.Context, texts []string) ([][]float32, error) {
	out := make([][]float32, len(texts))
	for i, text := range texts {
		out[i] = embedOne(text)
	}
	return out, nil
}

func embedOne(text string) []float32 {
	vec := make([]float32, dims)
	for _, token := range tokenize(text) {
		h := fnv.New32a()
		h.Write([]byte(token))
		vec[h.Sum32()%dims]++
	}

	var norm float64
	for _, v := range vec {
		norm += float64(v) * float64(v)
	}
	if norm > 0 {
		inv := float32(1 / math.Sqrt(norm))
		for i := range vec {
			vec[i] *= inv
		}
	}
	return vec
}

func tokenize(text string) []string {
	return strings.FieldsFunc(strings.ToLower(text), func(r rune) bool {
		return !(r >= 'a' && r <= 'z' || r >= '0' && r <= '9')
	})
}

var _ models.Embedder = (*Provider)(nil)
