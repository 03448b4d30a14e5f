package models

import (
	"time"

	"github.com/google/uuid"
)

// ModelInfo records which embedding backend produced the semantic patterns
// and the parameters in effect, for auditability.
type ModelInfo struct {
	Embedder            string  `json:"embedder"`
	SimilarityThreshold float64 `json:"similarity_threshold"`
	Clusters            int     `json:"kmeans_clusters"`
	Fallback            bool    `json:"fallback"`
}

// AnalysisResult is the full structured answer to one analytical query.
type AnalysisResult struct {
	QueryID          uuid.UUID        `json:"query_id"`
	OriginalQuery    string           `json:"original_query"`
	InterpretedQuery string           `json:"interpreted_query"`
	AnalysisType     string           `json:"analysis_type"`
	ConfidenceScore  float64          `json:"confidence_score"`
	QueryEntities    QueryEntities    `json:"query_entities"`
	Patterns         PatternGroups    `json:"patterns_identified"`
	RootCauses       []RootCause      `json:"root_causes"`
	Recommendations  []Recommendation `json:"recommendations"`
	DataSources      []string         `json:"data_sources"`
	Unconstrained    bool             `json:"unconstrained"`
	ModelInfo        ModelInfo        `json:"model_info"`
	Timestamp        time.Time        `json:"timestamp"`
	ProcessingTimeMS int64            `json:"processing_time_ms"`
}
