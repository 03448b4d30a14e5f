package models

// Pattern kinds. Traditional patterns come from frequency/correlation mining,
// semantic patterns from embedding similarity, clustering patterns from
// unsupervised grouping of embedded text.
const (
	PatternTraditional = "traditional"
	PatternSemantic    = "semantic"
	PatternClustering  = "clustering"
)

// Provenance markers for how a pattern was derived.
const (
	ProvenanceModel    = "model"
	ProvenanceFallback = "fallback"
)

// Pattern is a discovered regularity in the relevant record set. Patterns are
// ephemeral: recomputed per query, never persisted.
type Pattern struct {
	Kind        string  `json:"kind"`
	Type        string  `json:"type"`
	Description string  `json:"description"`
	Field       string  `json:"field,omitempty"`
	Value       string  `json:"value,omitempty"`
	Frequency   int     `json:"frequency"`
	Percentage  float64 `json:"percentage"`
	// Raw score used for ranking: count share, lift, or cosine similarity
	// depending on Type. Percentage is the rounded presentation value.
	Score      float64 `json:"score"`
	Severity   string  `json:"severity"`
	Provenance string  `json:"provenance,omitempty"`

	// Clustering-only fields.
	ClusterID   int      `json:"cluster_id,omitempty"`
	ClusterSize int      `json:"cluster_size,omitempty"`
	SampleTexts []string `json:"sample_texts,omitempty"`
}

// PatternGroups buckets patterns by kind for the response payload.
type PatternGroups struct {
	Traditional []Pattern `json:"traditional"`
	Semantic    []Pattern `json:"semantic"`
	Clustering  []Pattern `json:"clustering"`
	Total       int       `json:"total_patterns"`
}
