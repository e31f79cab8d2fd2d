package analysis

import (
	"context"

	"go-helpdesk/internal/common/models"
)

// Urgency levels reported by analyzers.
const (
	UrgencyLow    = "low"
	UrgencyMedium = "medium"
	UrgencyHigh   = "high"
)

// Result is the outcome of scoring one inbound message against a rule's
// analysis configuration.
type Result struct {
	Sentiment     float64  `json:"sentiment"`
	UrgencyLevel  string   `json:"urgency_level"`
	KeywordsFound []string `json:"keywords_found,omitempty"`
	Language      string   `json:"language,omitempty"`
	Confidence    float64  `json:"confidence"`
	Vetoed        bool     `json:"vetoed,omitempty"`
}

// Analyzer scores a message for a content-based rule. Implementations are
// swappable; the engine only depends on this contract.
type Analyzer interface {
	Analyze(ctx context.Context, message string, rules models.MessageAnalysisRule) (Result, error)
}

// Passes applies the firing gate: confidence at or above the rule's minimum,
// and no exclude-keyword veto. Exact equality with MinConfidence fires.
func Passes(res Result, rules models.MessageAnalysisRule) bool {
	return !res.Vetoed && res.Confidence >= rules.MinConfidence
}
