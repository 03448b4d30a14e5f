// Package engine orchestrates one analytical query end to end: interpret,
// filter, mine, synthesize, recommend. The engine owns the current dataset
// behind an atomic pointer so reloads never block in-flight queries.
package engine

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"sync/atomic"
	"time"

	"github.com/google/uuid"

	"github.com/rohanmhetar/failsight/internal/config"
	"github.com/rohanmhetar/failsight/internal/dataset"
	"github.com/rohanmhetar/failsight/internal/filter"
	"github.com/rohanmhetar/failsight/internal/query"
	"github.com/rohanmhetar/failsight/internal/recommend"
	"github.com/rohanmhetar/failsight/internal/rootcause"
	"github.com/rohanmhetar/failsight/internal/semantic"
	"github.com/rohanmhetar/failsight/internal/stats"
	"github.com/rohanmhetar/failsight/internal/store"
	"github.com/rohanmhetar/failsight/pkg/models"
)

// Sentinel errors visible to callers. Everything else is recovered or wrapped.
var (
	ErrEmptyQuery = errors.New("query is empty")
	ErrNoData     = store.ErrNoData
)

// Engine answers analytical queries against the loaded dataset. Safe for
// concurrent use; Analyze keeps no shared mutable state.
type Engine struct {
	store       store.Store
	current     atomic.Pointer[dataset.Dataset]
	miner       *semantic.Miner
	synthesizer *rootcause.Synthesizer
	cfg         config.AnalysisConfig
	logger      *slog.Logger
}

// New wires the engine from its dependencies and loads the initial dataset.
func New(ctx context.Context, st store.Store, embedder, fallback models.Embedder, cfg config.AnalysisConfig, logger *slog.Logger) (*Engine, error) {
	e := &Engine{
		store:       st,
		miner:       semantic.NewMiner(embedder, fallback, cfg, logger),
		synthesizer: rootcause.New(cfg),
		cfg:         cfg,
		logger:      logger,
	}
	if err := e.Reload(ctx); err != nil {
		return nil, err
	}
	return e, nil
}

// Reload swaps in a freshly loaded dataset. In-flight queries keep the
// dataset they started with.
func (e *Engine) Reload(ctx context.Context) error {
	ds, err := e.store.LoadAll(ctx)
	if err != nil {
		return fmt.Errorf("loading dataset: %w", err)
	}
	e.current.Store(ds)
	e.logger.Info("dataset loaded",
		"total_rows", ds.TotalRows(),
		"collections", len(ds.Collections))
	return nil
}

// Dataset returns the dataset currently serving queries.
func (e *Engine) Dataset() *dataset.Dataset {
	return e.current.Load()
}

// Analyze runs the full pipeline for one query. Time expressions resolve
// against ref; pass time.Now() outside tests.
func (e *Engine) Analyze(ctx context.Context, rawQuery string, ref time.Time) (*models.AnalysisResult, error) {
	started := time.Now()

	q := strings.TrimSpace(rawQuery)
	if q == "" {
		return nil, ErrEmptyQuery
	}

	ds := e.current.Load()
	if ds == nil || ds.Empty() {
		return nil, ErrNoData
	}

	interp := query.Interpret(q, ds.Lexicon, ref)
	relevant := filter.Apply(ds, interp.Entities, interp.TimeRanges)

	traditional := stats.Mine(relevant, interp.Intent)
	mined := e.miner.Mine(ctx, q, relevant)

	groups := models.PatternGroups{
		Traditional: traditional,
		Semantic:    mined.Semantic,
		Clustering:  mined.Clustering,
	}
	groups.Total = len(groups.Traditional) + len(groups.Semantic) + len(groups.Clustering)

	causes := e.synthesizer.Synthesize(groups)
	recommendations := recommend.Generate(causes)

	result := &models.AnalysisResult{
		QueryID:          uuid.New(),
		OriginalQuery:    rawQuery,
		InterpretedQuery: interp.Interpreted,
		AnalysisType:     interp.Intent.AnalysisType(),
		ConfidenceScore:  interp.Confidence,
		QueryEntities:    interp.Entities,
		Patterns:         groups,
		RootCauses:       causes,
		Recommendations:  recommendations,
		DataSources:      relevant.DataSources(),
		Unconstrained:    relevant.Unconstrained,
		ModelInfo: models.ModelInfo{
			Embedder:            mined.Embedder,
			SimilarityThreshold: e.cfg.SimilarityThreshold,
			Clusters:            e.cfg.Clusters,
			Fallback:            mined.Fallback,
		},
		Timestamp:        time.Now().UTC(),
		ProcessingTimeMS: time.Since(started).Milliseconds(),
	}

	e.logger.Info("query analyzed",
		"query_id", result.QueryID,
		"analysis_type", result.AnalysisType,
		"patterns", groups.Total,
		"root_causes", len(causes),
		"fallback", mined.Fallback,
		"duration_ms", result.ProcessingTimeMS)

	return result, nil
}
