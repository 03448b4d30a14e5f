package query

// Intent is the analytical goal classified from a raw query.
type Intent int

const (
	IntentGeneric Intent = iota
	IntentFailure
	IntentPerformance
	IntentTrend
	IntentPredictive
	IntentGeographic
	IntentDriver
)

// AnalysisType returns the wire string for the intent.
func (i Intent) AnalysisType() string {
	switch i {
	case IntentFailure:
		return "failure_analysis"
	case IntentPerformance:
		return "performance_analysis"
	case IntentTrend:
		return "trend_analysis"
	case IntentPredictive:
		return "predictive_analysis"
	case IntentGeographic:
		return "geographic_analysis"
	case IntentDriver:
		return "driver_analysis"
	default:
		return "general_analysis"
	}
}

func (i Intent) String() string { return i.AnalysisType() }

// intentOrder fixes the tie-break priority when keyword counts are equal.
var intentOrder = []Intent{
	IntentFailure,
	IntentPerformance,
	IntentTrend,
	IntentPredictive,
	IntentGeographic,
	IntentDriver,
}

var intentKeywords = map[Intent][]string{
	IntentFailure: {
		"fail", "failure", "failed", "failing", "undelivered", "dropped",
		"cancel", "cancelled", "reason", "why", "problem", "issue", "cause",
	},
	IntentPerformance: {
		"performance", "slow", "delay", "delayed", "late", "duration",
		"sla", "efficiency", "on-time", "turnaround",
	},
	IntentTrend: {
		"trend", "over time", "monthly", "weekly", "daily", "increase",
		"decrease", "growing", "declining", "change",
	},
	IntentPredictive: {
		"predict", "forecast", "expect", "risk", "likely", "future",
		"anticipate", "will happen", "projection",
	},
	IntentGeographic: {
		"city", "cities", "state", "states", "region", "area", "location",
		"where", "geographic", "zone",
	},
	IntentDriver: {
		"driver", "drivers", "courier", "couriers", "fleet", "agent",
		"personnel",
	},
}

const (
	baseConfidence    = 0.7
	keywordBump       = 0.05
	maxConfidence     = 0.95
	genericConfidence = 0.4
)

// classify scores every intent by matched keywords and returns the winner,
// its confidence, and the keywords that matched.
func classify(lowered string) (Intent, float64, []string) {
	best := IntentGeneric
	bestHits := []string(nil)
	for _, intent := range intentOrder {
		var hits []string
		for _, kw := range intentKeywords[intent] {
			if containsWord(lowered, kw) {
				hits = append(hits, kw)
			}
		}
		if len(hits) > len(bestHits) {
			best = intent
			bestHits = hits
		}
	}
	if best == IntentGeneric {
		return IntentGeneric, genericConfidence, nil
	}
	conf := baseConfidence + keywordBump*float64(len(bestHits)-1)
	if conf > maxConfidence {
		conf = maxConfidence
	}
	return best, conf, bestHits
}
