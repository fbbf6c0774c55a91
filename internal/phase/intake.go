// Package phase implements the three pure pipeline transforms — intake,
// audit, decompose — each of which consumes and returns state while
// advancing state.Phase.
package phase

import (
	"regexp"
	"strings"

	"github.com/weavehq/weave/internal/state"
)

// Vocabulary holds the three curated term lists intake matches against.
type Vocabulary struct {
	Domain     []string
	Method     []string
	Validation []string
}

// defaultStopWords is the fixed stop-word set excluded from tokenization.
var defaultStopWords = map[string]bool{
	"the": true, "and": true, "for": true, "with": true, "that": true,
	"this": true, "from": true, "into": true, "your": true, "have": true,
	"are": true, "was": true, "will": true, "can": true, "should": true,
	"would": true, "could": true, "been": true, "being": true, "each": true,
	"when": true, "where": true, "what": true, "which": true, "while": true,
	"then": true, "than": true, "also": true, "all": true, "any": true,
}

var tokenPattern = regexp.MustCompile(`[a-z0-9]+`)

// Tokenize lowercases request and extracts alphanumeric words of at least
// 3 characters, excluding the fixed stop-word set. Order of first
// appearance is preserved; duplicates are removed.
func Tokenize(request string) []string {
	lower := strings.ToLower(request)
	raw := tokenPattern.FindAllString(lower, -1)

	seen := make(map[string]bool, len(raw))
	var tokens []string
	for _, w := range raw {
		if len(w) < 3 || defaultStopWords[w] || seen[w] {
			continue
		}
		seen[w] = true
		tokens = append(tokens, w)
	}
	return tokens
}

// matchVocabulary returns the subset of tokens present in vocab, in token
// order.
func matchVocabulary(tokens []string, vocab []string) []string {
	set := make(map[string]bool, len(vocab))
	for _, v := range vocab {
		set[strings.ToLower(v)] = true
	}
	var out []string
	for _, t := range tokens {
		if set[t] {
			out = append(out, t)
		}
	}
	return out
}

// Intake tokenizes the raw request, matches it against the three curated
// vocabularies, and populates parsed_intent. It requires the state to be
// in PhaseIntake and advances it to PhaseAudit.
func Intake(s *state.ProjectState, vocab Vocabulary) error {
	if err := s.AssertPhase(state.PhaseIntake); err != nil {
		return err
	}

	tokens := Tokenize(s.RawRequest)
	domain := matchVocabulary(tokens, vocab.Domain)
	method := matchVocabulary(tokens, vocab.Method)
	validation := matchVocabulary(tokens, vocab.Validation)

	s.ParsedIntent = map[string]any{
		"domain":      domain,
		"method":      method,
		"validation":  validation,
		"keywords":    tokens,
		"raw_request": s.RawRequest,
	}

	s.AdvancePhase(state.PhaseAudit)
	return nil
}
