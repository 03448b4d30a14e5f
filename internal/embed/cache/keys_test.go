package cache

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestEmbeddingKey(t *testing.T) {
	a := EmbeddingKey("lexical", "address not found")
	b := EmbeddingKey("lexical", "address not found")
	assert.Equal(t, a, b)

	assert.NotEqual(t, a, EmbeddingKey("lexical", "customer not available"))
	assert.NotEqual(t, a, EmbeddingKey("ollama/all-minilm", "address not found"))
	assert.Contains(t, a, "emb:lexical:")
}

func TestVectorRoundTrip(t *testing.T) {
	vec := []float32{0.25, -1.5, 3.75, 0}
	decoded, ok := decodeVector(encodeVector(vec), len(vec))
	assert.True(t, ok)
	assert.Equal(t, vec, decoded)
}

func TestDecodeVectorRejectsWrongWidth(t *testing.T) {
	_, ok := decodeVector([]byte{1, 2, 3}, 4)
	assert.False(t, ok)
}
