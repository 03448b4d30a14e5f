package lexical

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestEmbedIsDeterministic(t *testing.T) {
	p := NewProvider()

	a, err := p.Embed(context.Background(), []string{"address not found"})
	require.NoError(t, err)
	b, err := p.Embed(context.Background(), []string{"address not found"})
	require.NoError(t, err)
	assert.Equal(t, a, b)
}

func TestEmbedShape(t *testing.T) {
	p := NewProvider()

	vecs, err := p.Embed(context.Background(), []string{"one", "two", "three"})
	require.NoError(t, err)
	require.Len(t, vecs, 3)
	for _, v := range vecs {
		assert.Len(t, v, p.Dims())
	}
}

func TestEmbedVectorsAreUnitNorm(t *testing.T) {
	p := NewProvider()

	vecs, err := p.Embed(context.Background(), []string{"customer not available at address"})
	require.NoError(t, err)
	var norm float64
	for _, v := range vecs[0] {
		norm += float64(v) * float64(v)
	}
	assert.InDelta(t, 1.0, norm, 1e-5)
}

func TestSharedVocabularyScoresHigherThanDisjoint(t *testing.T) {
	p := NewProvider()

	vecs, err := p.Embed(context.Background(), []string{
		"address not found",
		"address could not be found",
		"heavy rain in mumbai",
	})
	require.NoError(t, err)

	dot := func(a, b []float32) float64 {
		var s float64
		for i := range a {
			s += float64(a[i]) * float64(b[i])
		}
		return s
	}
	assert.Greater(t, dot(vecs[0], vecs[1]), dot(vecs[0], vecs[2]))
}

func TestEmbedEmptyText(t *testing.T) {
	p := NewProvider()

	vecs, err := p.Embed(context.Background(), []string{""})
	require.NoError(t, err)
	require.Len(t, vecs, 1)
	assert.Len(t, vecs[0], p.Dims())
}
