// Package cache wraps an embedder with a Redis-backed vector cache. Texts
// repeat heavily across queries (the corpus is the dataset's free-text
// columns), so a warm cache turns most Embed calls into reads.
package cache

import (
	"context"
	"encoding/binary"
	"log/slog"
	"math"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/rohanmhetar/failsight/pkg/models"
)

const defaultTTL = 24 * time.Hour

// Embeddings is a caching decorator around any models.Embedder. Cache
// failures degrade to provider calls, never to errors; writes are
// idempotent because the vector for a text is deterministic per model.
type Embeddings struct {
	inner  models.Embedder
	client *redis.Client
	ttl    time.Duration
	logger *slog.Logger
}

// New builds the cache decorator from a Redis URL.
func New(inner models.Embedder, redisURL string, logger *slog.Logger) (*Embeddings, error) {
	opts, err := redis.ParseURL(redisURL)
	if err != nil {
		return nil, err
	}
	return &Embeddings{
		inner:  inner,
		client: redis.NewClient(opts),
		ttl:    defaultTTL,
		logger: logger,
	}, nil
}

func (e *Embeddings) Name() string { return e.inner.Name() }

func (e *Embeddings) Dims() int { return e.inner.Dims() }

func (e *Embeddings) Ping(ctx context.Context) error {
	return e.client.Ping(ctx).Err()
}

func (e *Embeddings) Embed(ctx context.Context, texts []string) ([][]float32, error) {
	out := make([][]float32, len(texts))
	var missing []int

	for i, text := range texts {
		raw, err := e.client.Get(ctx, EmbeddingKey(e.inner.Name(), text)).Bytes()
		if err == redis.Nil {
			missing = append(missing, i)
			continue
		}
		if err != nil {
			e.logger.Warn("embedding cache read failed", "error", err)
			missing = append(missing, i)
			continue
		}
		vec, ok := decodeVector(raw, e.inner.Dims())
		if !ok {
			missing = append(missing, i)
			continue
		}
		out[i] = vec
	}

	if len(missing) == 0 {
		return out, nil
	}

	fresh := make([]string, len(missing))
	for j, i := range missing {
		fresh[j] = texts[i]
	}
	vecs, err := e.inner.Embed(ctx, fresh)
	if err != nil {
		return nil, err
	}

	for j, i := range missing {
		out[i] = vecs[j]
		key := EmbeddingKey(e.inner.Name(), texts[i])
		if err := e.client.Set(ctx, key, encodeVector(vecs[j]), e.ttl).Err(); err != nil {
			e.logger.Warn("embedding cache write failed", "error", err)
		}
	}
	return out, nil
}

func encodeVector(vec []float32) []byte {
	buf := make([]byte, 4*len(vec))
	for i, v := range vec {
		binary.LittleEndian.PutUint32(buf[4*i:], math.Float32bits(v))
	}
	return buf
}

func decodeVector(raw []byte, dims int) ([]float32, bool) {
	if len(raw) != 4*dims {
		return nil, false
	}
	vec := make([]float32, dims)
	for i := range vec {
		vec[i] = math.Float32frombits(binary.LittleEndian.Uint32(raw[4*i:]))
	}
	return vec, true
}

var _ models.Embedder = (*Embeddings)(nil)
