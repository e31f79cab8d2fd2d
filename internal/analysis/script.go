package analysis

import (
	"context"
	"fmt"

	"github.com/d5/tengo/v2"
	"github.com/d5/tengo/v2/stdlib"

	"go-helpdesk/internal/common/models"
)

// ScriptAnalyzer runs a user-provided tengo script as the scoring backend. The
// script receives `message` plus the analysis-rule inputs and is expected to
// set `sentiment` and `confidence`; `urgency_level` and `detected_language`
// are optional. Keyword matching and the exclude-keyword veto stay host-side
// so a script cannot weaken the firing contract.
type ScriptAnalyzer struct {
	source  string
	lexical *LexicalAnalyzer
}

func NewScriptAnalyzer(source string) *ScriptAnalyzer {
	return &ScriptAnalyzer{source: source, lexical: NewLexicalAnalyzer()}
}

func (a *ScriptAnalyzer) Analyze(ctx context.Context, message string, rules models.MessageAnalysisRule) (Result, error) {
	script := tengo.NewScript([]byte(a.source))
	script.SetImports(stdlib.GetModuleMap("text", "math"))

	script.Add("message", message)
	script.Add("keywords", toAnySlice(rules.Keywords))
	script.Add("urgency_keywords", toAnySlice(rules.UrgencyKeywords))
	script.Add("language", rules.Language)
	script.Add("sentiment", 0.0)
	script.Add("confidence", 0.0)
	script.Add("urgency_level", "")
	script.Add("detected_language", "")

	compiled, err := script.RunContext(ctx)
	if err != nil {
		return Result{}, fmt.Errorf("analysis script failed: %w", err)
	}

	res := Result{
		Sentiment:  clamp(compiled.Get("sentiment").Float(), -1, 1),
		Confidence: clamp(compiled.Get("confidence").Float(), 0, 1),
		Language:   compiled.Get("detected_language").String(),
	}
	if res.Language == "" {
		res.Language = detectLanguage(message)
	}

	for _, kw := range rules.Keywords {
		if kw != "" && containsFold(message, kw) {
			res.KeywordsFound = append(res.KeywordsFound, kw)
		}
	}

	res.UrgencyLevel = compiled.Get("urgency_level").String()
	if res.UrgencyLevel == "" {
		urgencyHit := false
		for _, kw := range rules.UrgencyKeywords {
			if kw != "" && containsWord(message, kw) {
				urgencyHit = true
				break
			}
		}
		res.UrgencyLevel = urgencyLevel(urgencyHit, res.Sentiment, rules.SentimentThreshold)
	}

	for _, kw := range rules.ExcludeKeywords {
		if kw != "" && containsFold(message, kw) {
			res.Vetoed = true
			res.Confidence = 0
			break
		}
	}

	return res, nil
}

func toAnySlice(in []string) []interface{} {
	out := make([]interface{}, len(in))
	for i, s := range in {
		out[i] = s
	}
	return out
}

func clamp(v, lo, hi float64) float64 {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}
