// Package semantic mines embedding-based patterns: free-text values similar
// to the query, and clusters of related text across the relevant records.
package semantic

import (
	"context"
	"fmt"
	"log/slog"
	"math"
	"sort"

	"github.com/rohanmhetar/failsight/internal/cluster"
	"github.com/rohanmhetar/failsight/internal/config"
	"github.com/rohanmhetar/failsight/internal/dataset"
	"github.com/rohanmhetar/failsight/internal/filter"
	"github.com/rohanmhetar/failsight/pkg/models"
)

// Clustering needs enough samples to say anything; below this it is skipped.
const minClusterSamples = 5

// Only clusters that actually group texts are interesting.
const minClusterMembers = 2

const maxSimilarPatterns = 10

const maxSampleTexts = 3

// textSources lists the free-text columns mined per collection, in a fixed
// order so sampling is deterministic.
var textSources = []struct {
	collection string
	column     string
}{
	{dataset.CollectionOrders, "failure_reason"},
	{dataset.CollectionFleetLogs, "gps_delay_notes"},
	{dataset.CollectionExternalFactors, "weather_condition"},
	{dataset.CollectionExternalFactors, "traffic_condition"},
	{dataset.CollectionExternalFactors, "event_type"},
	{dataset.CollectionFeedback, "feedback_text"},
}

// Miner embeds the query against sampled dataset text. A failing provider is
// not an error: the miner retries with the fallback embedder and marks the
// resulting patterns accordingly.
type Miner struct {
	embedder Embedder
	fallback Embedder
	cfg      config.AnalysisConfig
	logger   *slog.Logger
}

// Embedder is re-declared locally to keep the miner testable with any
// implementation.
type Embedder = models.Embedder

// Result carries the mined pattern groups plus how they were derived.
type Result struct {
	Semantic   []models.Pattern
	Clustering []models.Pattern
	Embedder   string
	Fallback   bool
}

func NewMiner(embedder, fallback Embedder, cfg config.AnalysisConfig, logger *slog.Logger) *Miner {
	return &Miner{embedder: embedder, fallback: fallback, cfg: cfg, logger: logger}
}

type sample struct {
	text  string
	field string
	count int
}

// Mine embeds the query and the sampled corpus, then extracts similarity and
// cluster patterns. It never returns an error: a dead provider degrades to
// the fallback embedder.
func (m *Miner) Mine(ctx context.Context, queryText string, set *filter.RelevantSet) Result {
	samples := collectSamples(set, m.cfg.SampleSize)
	if len(samples) == 0 {
		return Result{Embedder: m.embedder.Name()}
	}

	texts := make([]string, 0, len(samples)+1)
	texts = append(texts, queryText)
	for _, s := range samples {
		texts = append(texts, s.text)
	}

	provenance := models.ProvenanceModel
	used := m.embedder
	vectors, err := used.Embed(ctx, texts)
	if err != nil {
		m.logger.Warn("embedding provider failed, using lexical fallback",
			"provider", used.Name(), "error", err)
		used = m.fallback
		provenance = models.ProvenanceFallback
		vectors, err = used.Embed(ctx, texts)
		if err != nil {
			// The lexical embedder cannot fail, but stay safe.
			m.logger.Error("fallback embedder failed", "error", err)
			return Result{Embedder: used.Name(), Fallback: true}
		}
	}

	queryVec := vectors[0]
	corpus := vectors[1:]

	res := Result{
		Semantic:   m.similarityPatterns(queryVec, corpus, samples, provenance),
		Clustering: m.clusterPatterns(corpus, samples, provenance),
		Embedder:   used.Name(),
		Fallback:   provenance == models.ProvenanceFallback,
	}
	return res
}

func (m *Miner) similarityPatterns(queryVec []float32, corpus [][]float32, samples []sample, provenance string) []models.Pattern {
	type scored struct {
		idx int
		sim float64
	}
	var hits []scored
	for i := range samples {
		sim := cosine(queryVec, corpus[i])
		if sim > m.cfg.SimilarityThreshold {
			hits = append(hits, scored{idx: i, sim: sim})
		}
	}
	sort.SliceStable(hits, func(i, j int) bool {
		if hits[i].sim != hits[j].sim {
			return hits[i].sim > hits[j].sim
		}
		return samples[hits[i].idx].text < samples[hits[j].idx].text
	})
	if len(hits) > maxSimilarPatterns {
		hits = hits[:maxSimilarPatterns]
	}

	out := make([]models.Pattern, 0, len(hits))
	for _, h := range hits {
		s := samples[h.idx]
		out = append(out, models.Pattern{
			Kind:  models.PatternSemantic,
			Type:  "semantic_similarity",
			Field: s.field,
			Value: s.text,
			Description: fmt.Sprintf("%q (%s, %d records) closely matches the query (similarity %.2f)",
				s.text, s.field, s.count, h.sim),
			Frequency:  s.count,
			Percentage: math.Round(h.sim*1000) / 10,
			Score:      h.sim,
			Severity:   models.ImpactMedium,
			Provenance: provenance,
		})
	}
	return out
}

func (m *Miner) clusterPatterns(corpus [][]float32, samples []sample, provenance string) []models.Pattern {
	if len(samples) < minClusterSamples {
		return nil
	}

	labels, centroids := cluster.KMeans(corpus, m.cfg.Clusters, m.cfg.ClusterSeed)
	members := map[int][]int{}
	for i, label := range labels {
		members[label] = append(members[label], i)
	}

	clusterIDs := make([]int, 0, len(members))
	for id := range members {
		clusterIDs = append(clusterIDs, id)
	}
	sort.Slice(clusterIDs, func(i, j int) bool {
		if len(members[clusterIDs[i]]) != len(members[clusterIDs[j]]) {
			return len(members[clusterIDs[i]]) > len(members[clusterIDs[j]])
		}
		return clusterIDs[i] < clusterIDs[j]
	})

	total := 0
	for _, s := range samples {
		total += s.count
	}

	var out []models.Pattern
	for _, id := range clusterIDs {
		idxs := members[id]
		if len(idxs) < minClusterMembers {
			continue
		}
		records := 0
		for _, i := range idxs {
			records += samples[i].count
		}
		labelIdx := cluster.Nearest(centroids[id], corpus, idxs)
		sampleTexts := make([]string, 0, maxSampleTexts)
		for _, i := range idxs {
			if len(sampleTexts) == maxSampleTexts {
				break
			}
			sampleTexts = append(sampleTexts, samples[i].text)
		}
		out = append(out, models.Pattern{
			Kind:  models.PatternClustering,
			Type:  "semantic_cluster",
			Field: samples[labelIdx].field,
			Value: samples[labelIdx].text,
			Description: fmt.Sprintf("cluster of %d related texts around %q covering %d records",
				len(idxs), samples[labelIdx].text, records),
			Frequency:   records,
			Percentage:  roundShare(records, total),
			Score:       float64(len(idxs)) / float64(len(samples)),
			Severity:    models.ImpactMedium,
			Provenance:  provenance,
			ClusterID:   id,
			ClusterSize: len(idxs),
			SampleTexts: sampleTexts,
		})
	}
	return out
}

// collectSamples gathers distinct free-text values with occurrence counts,
// capped at sampleSize distinct texts, walking sources in a fixed order.
func collectSamples(set *filter.RelevantSet, sampleSize int) []sample {
	index := map[string]int{}
	var samples []sample
	for _, src := range textSources {
		for _, row := range set.Rows(src.collection) {
			text := row.Str(src.column)
			if text == "" {
				continue
			}
			if i, ok := index[text]; ok {
				samples[i].count++
				continue
			}
			if len(samples) >= sampleSize {
				continue
			}
			index[text] = len(samples)
			samples = append(samples, sample{text: text, field: src.column, count: 1})
		}
	}
	return samples
}

func cosine(a, b []float32) float64 {
	var dot, na, nb float64
	for i := range a {
		dot += float64(a[i]) * float64(b[i])
		na += float64(a[i]) * float64(a[i])
		nb += float64(b[i]) * float64(b[i])
	}
	if na == 0 || nb == 0 {
		return 0
	}
	return dot / (math.Sqrt(na) * math.Sqrt(nb))
}

func roundShare(n, d int) float64 {
	if d == 0 {
		return 0
	}
	return math.Round(1000*float64(n)/float64(d)) / 10
}
