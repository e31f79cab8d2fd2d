package analysis

import (
	"context"
	"testing"

	"go-helpdesk/internal/common/models"
)

func TestScriptAnalyzerOutputs(t *testing.T) {
	a := NewScriptAnalyzer(`
text := import("text")
if text.contains(text.to_lower(message), "angry") {
	sentiment = -0.5
	confidence = 0.75
}
urgency_level = "high"
detected_language = "de"
`)

	rules := models.MessageAnalysisRule{
		Keywords: []string{"refund", "invoice"},
	}

	res, err := a.Analyze(context.Background(), "Angry customer wants a refund", rules)
	if err != nil {
		t.Fatalf("Analyze() error = %v", err)
	}

	if res.Sentiment != -0.5 {
		t.Errorf("Sentiment = %v, want -0.5", res.Sentiment)
	}
	if res.Confidence != 0.75 {
		t.Errorf("Confidence = %v, want 0.75", res.Confidence)
	}
	if res.UrgencyLevel != UrgencyHigh {
		t.Errorf("UrgencyLevel = %q, want %q", res.UrgencyLevel, UrgencyHigh)
	}
	if res.Language != "de" {
		t.Errorf("Language = %q, want %q", res.Language, "de")
	}
	// keyword matching stays host-side regardless of the script
	if len(res.KeywordsFound) != 1 || res.KeywordsFound[0] != "refund" {
		t.Errorf("KeywordsFound = %v, want [refund]", res.KeywordsFound)
	}
}

func TestScriptAnalyzerClampsScores(t *testing.T) {
	a := NewScriptAnalyzer(`
sentiment = -3.0
confidence = 7.0
`)

	res, err := a.Analyze(context.Background(), "anything", models.MessageAnalysisRule{})
	if err != nil {
		t.Fatalf("Analyze() error = %v", err)
	}

	if res.Sentiment != -1 {
		t.Errorf("Sentiment = %v, want clamped to -1", res.Sentiment)
	}
	if res.Confidence != 1 {
		t.Errorf("Confidence = %v, want clamped to 1", res.Confidence)
	}
}

func TestScriptAnalyzerVetoOverridesScript(t *testing.T) {
	a := NewScriptAnalyzer(`confidence = 1.0`)

	rules := models.MessageAnalysisRule{
		ExcludeKeywords: []string{"newsletter"},
		MinConfidence:   0.1,
	}

	res, err := a.Analyze(context.Background(), "unsubscribe me from the NEWSLETTER", rules)
	if err != nil {
		t.Fatalf("Analyze() error = %v", err)
	}

	if !res.Vetoed {
		t.Error("Vetoed = false, want true")
	}
	if res.Confidence != 0 {
		t.Errorf("Confidence = %v, want 0 after exclude veto", res.Confidence)
	}
	// a script cannot score its way past the exclude-keyword gate
	if Passes(res, rules) {
		t.Error("Passes() = true for vetoed result, want false")
	}
}

func TestScriptAnalyzerFallbacks(t *testing.T) {
	// script sets neither urgency_level nor detected_language
	a := NewScriptAnalyzer(`confidence = 0.5`)

	rules := models.MessageAnalysisRule{
		UrgencyKeywords: []string{"outage"},
	}

	res, err := a.Analyze(context.Background(), "total outage since this morning", rules)
	if err != nil {
		t.Fatalf("Analyze() error = %v", err)
	}

	if res.UrgencyLevel != UrgencyHigh {
		t.Errorf("UrgencyLevel = %q, want lexical fallback %q", res.UrgencyLevel, UrgencyHigh)
	}
	if res.Language != "en" {
		t.Errorf("Language = %q, want lexical fallback %q", res.Language, "en")
	}
}

func TestScriptAnalyzerReportsScriptErrors(t *testing.T) {
	a := NewScriptAnalyzer(`confidence = `)

	if _, err := a.Analyze(context.Background(), "anything", models.MessageAnalysisRule{}); err == nil {
		t.Fatal("Analyze() error = nil, want compile error")
	}
}
