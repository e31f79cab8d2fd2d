package analysis

import (
	"context"
	"strings"
	"unicode"

	"go-helpdesk/internal/common/models"
)

// LexicalAnalyzer scores messages with bounded keyword-lexicon heuristics. It
// has no external NLP dependency; richer backends plug in behind the Analyzer
// interface.
type LexicalAnalyzer struct{}

func NewLexicalAnalyzer() *LexicalAnalyzer {
	return &LexicalAnalyzer{}
}

var negativeWords = map[string]bool{
	"bad": true, "terrible": true, "awful": true, "angry": true,
	"unacceptable": true, "broken": true, "worst": true, "hate": true,
	"frustrated": true, "useless": true, "disappointed": true, "fail": true,
	"failing": true, "failed": true, "crash": true, "crashed": true,
	"unusable": true, "furious": true, "ridiculous": true, "slow": true,
}

var positiveWords = map[string]bool{
	"good": true, "great": true, "thanks": true, "thank": true,
	"excellent": true, "love": true, "perfect": true, "awesome": true,
	"happy": true, "appreciate": true, "resolved": true, "wonderful": true,
	"helpful": true, "fast": true,
}

var languageStopwords = map[string][]string{
	"en": {"the", "and", "is", "are", "you", "please", "not", "this", "have"},
	"es": {"el", "la", "los", "las", "es", "por", "gracias", "hola", "tengo"},
	"fr": {"le", "les", "est", "vous", "merci", "bonjour", "pas", "avec"},
	"de": {"der", "die", "das", "ist", "und", "nicht", "danke", "bitte"},
}

func (a *LexicalAnalyzer) Analyze(_ context.Context, message string, rules models.MessageAnalysisRule) (Result, error) {
	res := Result{
		Sentiment: scoreSentiment(message),
		Language:  detectLanguage(message),
	}

	for _, kw := range rules.Keywords {
		if kw != "" && containsFold(message, kw) {
			res.KeywordsFound = append(res.KeywordsFound, kw)
		}
	}

	urgencyHit := false
	for _, kw := range rules.UrgencyKeywords {
		if kw != "" && containsWord(message, kw) {
			urgencyHit = true
			break
		}
	}

	res.UrgencyLevel = urgencyLevel(urgencyHit, res.Sentiment, rules.SentimentThreshold)
	res.Confidence = confidence(res, urgencyHit, rules)

	// Exclude keywords are a hard veto: any hit forces confidence to zero
	// no matter what the other signals said.
	for _, kw := range rules.ExcludeKeywords {
		if kw != "" && containsFold(message, kw) {
			res.Vetoed = true
			res.Confidence = 0
			break
		}
	}

	return res, nil
}

func urgencyLevel(urgencyHit bool, sentiment float64, threshold *float64) string {
	if urgencyHit {
		return UrgencyHigh
	}
	// Sentiment above the configured threshold (less negative) is still
	// reported but does not escalate urgency.
	if threshold != nil && sentiment > *threshold {
		return UrgencyLow
	}
	if sentiment < -0.5 {
		return UrgencyMedium
	}
	return UrgencyLow
}

// confidence is the fraction of applicable signals that fired among
// {keyword match, urgency match, sentiment signal, language match}.
func confidence(res Result, urgencyHit bool, rules models.MessageAnalysisRule) float64 {
	applicable := 1 // sentiment always applies
	fired := 0
	if res.Sentiment <= -0.1 || res.Sentiment >= 0.1 {
		fired++
	}

	if len(rules.Keywords) > 0 {
		applicable++
		if len(res.KeywordsFound) > 0 {
			fired++
		}
	}
	if len(rules.UrgencyKeywords) > 0 {
		applicable++
		if urgencyHit {
			fired++
		}
	}
	if rules.Language != "" {
		applicable++
		if strings.EqualFold(res.Language, rules.Language) {
			fired++
		}
	}

	return float64(fired) / float64(applicable)
}

// scoreSentiment returns a bounded lexical score in [-1, 1]: the balance of
// positive and negative lexicon hits over all hits.
func scoreSentiment(message string) float64 {
	pos, neg := 0, 0
	for _, word := range tokenize(message) {
		if positiveWords[word] {
			pos++
		}
		if negativeWords[word] {
			neg++
		}
	}
	total := pos + neg
	if total == 0 {
		return 0
	}
	return float64(pos-neg) / float64(total)
}

func detectLanguage(message string) string {
	words := make(map[string]bool)
	for _, w := range tokenize(message) {
		words[w] = true
	}

	best, bestCount := "en", 0
	for _, lang := range []string{"en", "es", "fr", "de"} {
		count := 0
		for _, sw := range languageStopwords[lang] {
			if words[sw] {
				count++
			}
		}
		if count > bestCount {
			best, bestCount = lang, count
		}
	}
	return best
}

func tokenize(message string) []string {
	return strings.FieldsFunc(strings.ToLower(message), func(r rune) bool {
		return !unicode.IsLetter(r) && !unicode.IsDigit(r)
	})
}

func containsFold(message, needle string) bool {
	return strings.Contains(strings.ToLower(message), strings.ToLower(needle))
}

// containsWord is a word-boundary-safe case-insensitive substring match, so
// the urgency keyword "asap" does not fire on "asapalmes".
func containsWord(message, needle string) bool {
	msg := strings.ToLower(message)
	needle = strings.ToLower(needle)
	if needle == "" {
		return false
	}
	for start := 0; ; {
		i := strings.Index(msg[start:], needle)
		if i < 0 {
			return false
		}
		i += start
		before := i - 1
		after := i + len(needle)
		leftOK := before < 0 || isBoundary(rune(msg[before]))
		rightOK := after >= len(msg) || isBoundary(rune(msg[after]))
		if leftOK && rightOK {
			return true
		}
		start = i + 1
	}
}

func isBoundary(r rune) bool {
	return !unicode.IsLetter(r) && !unicode.IsDigit(r)
}
