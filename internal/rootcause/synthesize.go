// Package rootcause turns mined patterns into a small, deduplicated list of
// evidence-backed root causes with a monetized impact estimate. Evidence text
// is interpolated only from numbers the miners computed; nothing here invents
// a statistic.
package rootcause

import (
	"fmt"
	"math"
	"sort"
	"strings"

	"github.com/rohanmhetar/failsight/internal/config"
	"github.com/rohanmhetar/failsight/pkg/models"
)

const (
	maxCauses = 3

	// Qualification floors for candidate patterns.
	minPatternCount = 3
	minLift         = 1.3
	minClusterSize  = 3

	// Weight of the dynamic strength term in the confidence formula.
	strengthWeight = 0.55

	// Confidence discount when the evidence came from the lexical fallback
	// embedder rather than the real model.
	fallbackDiscount = 0.8

	// Jaccard similarity above which two same-category causes are merged.
	dedupThreshold = 0.5
)

// Synthesizer builds root causes from pattern groups.
type Synthesizer struct {
	cfg config.AnalysisConfig
}

func New(cfg config.AnalysisConfig) *Synthesizer {
	return &Synthesizer{cfg: cfg}
}

// Synthesize generates, deduplicates and ranks root causes across all mined
// patterns, keeping at most three. When nothing qualifies it falls back to a
// single systemic cause built from the strongest traditional pattern.
func (s *Synthesizer) Synthesize(groups models.PatternGroups) []models.RootCause {
	var candidates []models.RootCause
	for _, p := range groups.Traditional {
		if !qualifies(p) {
			continue
		}
		candidates = append(candidates, s.fromPattern(p))
	}
	for _, p := range groups.Semantic {
		if !qualifies(p) {
			continue
		}
		candidates = append(candidates, s.fromPattern(p))
	}
	for _, p := range groups.Clustering {
		if !qualifies(p) {
			continue
		}
		candidates = append(candidates, s.fromPattern(p))
	}

	if len(candidates) == 0 {
		candidates = append(candidates, s.genericCause(groups.Traditional))
	}

	merged := dedupe(candidates)
	sort.SliceStable(merged, func(i, j int) bool {
		if merged[i].Confidence != merged[j].Confidence {
			return merged[i].Confidence > merged[j].Confidence
		}
		if merged[i].SupportingRecords != merged[j].SupportingRecords {
			return merged[i].SupportingRecords > merged[j].SupportingRecords
		}
		return merged[i].Category < merged[j].Category
	})
	if len(merged) > maxCauses {
		merged = merged[:maxCauses]
	}
	return merged
}

func qualifies(p models.Pattern) bool {
	switch p.Kind {
	case models.PatternClustering:
		return p.ClusterSize >= minClusterSize
	case models.PatternSemantic:
		return p.Frequency >= minPatternCount
	default:
		if isLiftType(p.Type) {
			return p.Score >= minLift
		}
		return p.Frequency >= minPatternCount
	}
}

func isLiftType(patternType string) bool {
	switch patternType {
	case "weather_correlation", "traffic_correlation", "driver_failure_correlation":
		return true
	}
	return false
}

// strength normalizes a pattern's score to [0, 1]: count shares and
// similarities pass through, lifts are halved.
func strength(p models.Pattern) float64 {
	s := p.Score
	if isLiftType(p.Type) {
		s = p.Score / 2
	}
	return clamp01(s)
}

func (s *Synthesizer) fromPattern(p models.Pattern) models.RootCause {
	category := categorize(p)
	tpl := causeTemplates[category]

	confidence := clamp01(strengthWeight*strength(p) + tpl.prior)
	if p.Provenance == models.ProvenanceFallback {
		confidence *= fallbackDiscount
	}

	return models.RootCause{
		Category:            category,
		Cause:               tpl.cause,
		Confidence:          round2(confidence),
		Impact:              impactTier(confidence, p.Frequency),
		Evidence:            evidence(p),
		ContributingFactors: append([]string(nil), tpl.factors...),
		BusinessImpact:      s.businessImpact(tpl, confidence, p.Frequency),
		SupportingRecords:   p.Frequency,
	}
}

// genericCause is the floor: when no pattern qualifies, explain the analysis
// with the strongest traditional pattern available. The caller always gets a
// cause back, even from an empty pattern set, so every analysis reports at
// least one root cause.
func (s *Synthesizer) genericCause(traditional []models.Pattern) models.RootCause {
	tpl := causeTemplates[CategorySystemic]

	best := -1
	for i, p := range traditional {
		if best == -1 || p.Frequency > traditional[best].Frequency {
			best = i
		}
	}
	if best == -1 {
		confidence := clamp01(tpl.prior)
		return models.RootCause{
			Category:            CategorySystemic,
			Cause:               tpl.cause,
			Confidence:          round2(confidence),
			Impact:              models.ImpactLow,
			Evidence:            "no dominant pattern across the analyzed records",
			ContributingFactors: append([]string(nil), tpl.factors...),
			BusinessImpact:      s.businessImpact(tpl, confidence, 0),
			SupportingRecords:   0,
		}
	}

	p := traditional[best]
	confidence := clamp01(strengthWeight*strength(p) + tpl.prior)
	return models.RootCause{
		Category:            CategorySystemic,
		Cause:               tpl.cause,
		Confidence:          round2(confidence),
		Impact:              impactTier(confidence, p.Frequency),
		Evidence:            evidence(p),
		ContributingFactors: append([]string(nil), tpl.factors...),
		BusinessImpact:      s.businessImpact(tpl, confidence, p.Frequency),
		SupportingRecords:   p.Frequency,
	}
}

// evidence renders the pattern's computed numbers into a sentence.
func evidence(p models.Pattern) string {
	switch {
	case p.Kind == models.PatternClustering:
		return fmt.Sprintf("%d related failure texts cluster around %q, covering %d records",
			p.ClusterSize, p.Value, p.Frequency)
	case isLiftType(p.Type):
		return fmt.Sprintf("orders under %q fail %.2fx more often than baseline (%d failures, %.1f%% failure rate)",
			p.Value, p.Score, p.Frequency, p.Percentage)
	default:
		return fmt.Sprintf("%q appears in %d records (%.1f%%)", p.Value, p.Frequency, p.Percentage)
	}
}

func (s *Synthesizer) businessImpact(tpl causeTemplate, confidence float64, records int) models.BusinessImpact {
	scale := confidence * math.Log10(float64(records)+1)
	return models.BusinessImpact{
		CostPerIncident:        round2(tpl.baseCostUSD * s.cfg.CurrencyRate * confidence),
		Currency:               s.cfg.Currency,
		SatisfactionDelta:      round2(tpl.satisfactionHit * clamp01(scale)),
		EfficiencyLossFraction: round2(tpl.efficiencyLoss * clamp01(scale)),
	}
}

func impactTier(confidence float64, records int) string {
	switch {
	case confidence >= 0.7 && records >= 5:
		return models.ImpactHigh
	case confidence >= 0.5:
		return models.ImpactMedium
	default:
		return models.ImpactLow
	}
}

// dedupe merges same-category causes whose evidence overlaps lexically,
// keeping the higher-confidence cause and the union of contributing factors.
func dedupe(causes []models.RootCause) []models.RootCause {
	var out []models.RootCause
	for _, c := range causes {
		merged := false
		for i := range out {
			if out[i].Category != c.Category {
				continue
			}
			if jaccard(tokens(out[i].Evidence), tokens(c.Evidence)) <= dedupThreshold {
				continue
			}
			keep, drop := out[i], c
			if drop.Confidence > keep.Confidence {
				keep, drop = drop, keep
			}
			keep.ContributingFactors = unionFactors(keep.ContributingFactors, drop.ContributingFactors)
			if drop.SupportingRecords > keep.SupportingRecords {
				keep.SupportingRecords = drop.SupportingRecords
			}
			out[i] = keep
			merged = true
			break
		}
		if !merged {
			out = append(out, c)
		}
	}
	return out
}

func unionFactors(a, b []string) []string {
	seen := make(map[string]bool, len(a))
	out := append([]string(nil), a...)
	for _, f := range a {
		seen[f] = true
	}
	for _, f := range b {
		if !seen[f] {
			out = append(out, f)
			seen[f] = true
		}
	}
	return out
}

func tokens(s string) map[string]bool {
	out := map[string]bool{}
	for _, tok := range strings.Fields(strings.ToLower(s)) {
		tok = strings.Trim(tok, `.,:;"'()%`)
		if tok != "" {
			out[tok] = true
		}
	}
	return out
}

func jaccard(a, b map[string]bool) float64 {
	if len(a) == 0 && len(b) == 0 {
		return 1
	}
	inter := 0
	for tok := range a {
		if b[tok] {
			inter++
		}
	}
	union := len(a) + len(b) - inter
	if union == 0 {
		return 0
	}
	return float64(inter) / float64(union)
}

func clamp01(v float64) float64 {
	if v < 0 {
		return 0
	}
	if v > 1 {
		return 1
	}
	return v
}

func round2(v float64) float64 {
	return math.Round(v*100) / 100
}
