package ai

import (
	"strings"
	"unicode"

	"golang.org/x/text/runes"
	"golang.org/x/text/transform"
	"golang.org/x/text/unicode/norm"
)

// FAQItem is a question the matcher can answer without calling the LLM
type FAQItem struct {
	Question string
	Answer   string
	Keywords []string
}

// Match confidence thresholds. At or above Direct the answer is served
// as-is; between Disclaimer and Direct it is served with a disclaimer;
// below Disclaimer the message goes to the LLM.
const (
	MatchThresholdDirect     = 0.8
	MatchThresholdDisclaimer = 0.5
)

// MatchResult is the best FAQ candidate for a message
type MatchResult struct {
	Item           FAQItem
	Score          float64
	Direct         bool
	WithDisclaimer bool
}

// Matched reports whether the result is good enough to skip the LLM
func (r MatchResult) Matched() bool {
	return r.Direct || r.WithDisclaimer
}

var diacriticsRemover = transform.Chain(
	norm.NFD,
	runes.Remove(runes.In(unicode.Mn)),
	norm.NFC,
)

// Normalize lowercases a string and strips diacritics so that "Déjà"
// and "deja" compare equal
func Normalize(s string) string {
	out, _, err := transform.String(diacriticsRemover, strings.ToLower(s))
	if err != nil {
		return strings.ToLower(s)
	}
	return out
}

// tokenize splits a normalized string into word tokens
func tokenize(s string) []string {
	return strings.FieldsFunc(Normalize(s), func(r rune) bool {
		return !unicode.IsLetter(r) && !unicode.IsNumber(r)
	})
}

// scoreItem scores one FAQ item against the message tokens. Each keyword
// contributes 1.0 for an exact token match, 0.7 for a partial one
// (keyword contained in a token or vice versa); the sum is divided by
// the keyword count. Items without keywords fall back to the words of
// their question.
func scoreItem(item FAQItem, messageTokens []string) float64 {
	keywords := item.Keywords
	if len(keywords) == 0 {
		keywords = tokenize(item.Question)
	}
	if len(keywords) == 0 {
		return 0
	}

	var sum float64
	for _, kw := range keywords {
		kw = Normalize(kw)
		best := 0.0
		for _, tok := range messageTokens {
			if tok == kw {
				best = 1.0
				break
			}
			if len(kw) >= 3 && len(tok) >= 3 && (strings.Contains(tok, kw) || strings.Contains(kw, tok)) {
				best = 0.7
			}
		}
		sum += best
	}
	return sum / float64(len(keywords))
}

// MatchFAQ scores every FAQ item against the message and returns the
// best one with its confidence classification
func MatchFAQ(message string, items []FAQItem) MatchResult {
	tokens := tokenize(message)
	var best MatchResult
	for _, item := range items {
		score := scoreItem(item, tokens)
		if score > best.Score {
			best = MatchResult{Item: item, Score: score}
		}
	}
	best.Direct = best.Score >= MatchThresholdDirect
	best.WithDisclaimer = !best.Direct && best.Score >= MatchThresholdDisclaimer
	return best
}
